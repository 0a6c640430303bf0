// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package clog

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recordCaller returns a glog *Depth replacement that records the file
// glog would attribute the entry to.
func recordCaller(t *testing.T, files *[]string) func(int, ...any) {
	t.Helper()
	return func(depth int, args ...any) {
		// depth 0 is the caller of the *Depth func.
		_, file, _, ok := runtime.Caller(1 + depth)
		if !ok {
			t.Errorf("runtime.Caller(%d) failed", 1+depth)
			return
		}
		*files = append(*files, filepath.Base(file))
	}
}

func TestLogCallerDepth(t *testing.T) {
	var files []string
	origInfo, origWarning, origError := infoDepth, warningDepth, errorDepth
	t.Cleanup(func() {
		infoDepth, warningDepth, errorDepth = origInfo, origWarning, origError
	})
	infoDepth = recordCaller(t, &files)
	warningDepth = recordCaller(t, &files)
	errorDepth = recordCaller(t, &files)

	ctx := WithLabels(context.Background(), map[string]string{"run": "r1"})
	Infof(ctx, "info")
	Warningf(ctx, "warning")
	Errorf(ctx, "error")

	want := []string{"clog_internal_test.go", "clog_internal_test.go", "clog_internal_test.go"}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("caller files diff -want +got:\n%s", diff)
	}
}

// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package iometrics

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStats(t *testing.T) {
	m := New("test")
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.OpsDone(nil)
			m.ReadDone(10, nil)
			m.WriteDone(5, nil)
		}()
	}
	wg.Wait()
	m.OpsDone(errors.New("stat failed"))
	m.ReadDone(0, errors.New("read failed"))

	want := Stats{
		Ops:     11,
		OpsErrs: 1,
		ROps:    11,
		RBytes:  100,
		RErrs:   1,
		WOps:    10,
		WBytes:  50,
	}
	if diff := cmp.Diff(want, m.Stats()); diff != "" {
		t.Errorf("Stats() diff -want +got:\n%s", diff)
	}
	if got := m.Name(); got != "test" {
		t.Errorf("Name()=%q; want %q", got, "test")
	}
}

func TestNil(t *testing.T) {
	var m *IOMetrics
	m.OpsDone(nil)
	m.ReadDone(1, nil)
	m.WriteDone(1, nil)
	if diff := cmp.Diff(Stats{}, m.Stats()); diff != "" {
		t.Errorf("nil Stats() diff -want +got:\n%s", diff)
	}
	if got := m.Name(); got != "<nil>" {
		t.Errorf("Name()=%q; want <nil>", got)
	}
}

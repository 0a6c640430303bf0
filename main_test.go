// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnihdrMain(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	for fname, content := range map[string]string{
		"includes/a.h": "#pragma once\nint a;\n#include \"b.h\"\n",
		"includes/b.h": "#pragma once\nint b;\n",
	} {
		fname := filepath.Join(dir, fname)
		err := os.MkdirAll(filepath.Dir(fname), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fname, []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	exitCode := unihdrMain([]string{"bundle", "-C", dir, "-o", "out/unified.h", "-wrap", "pragma"})
	if exitCode != 0 {
		t.Fatalf("unihdrMain(bundle)=%d; want 0", exitCode)
	}
	got, err := os.ReadFile(filepath.Join(dir, "out", "unified.h"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("#pragma once\nint a;\nint b;\n", string(got)); diff != "" {
		t.Errorf("unified.h diff -want +got:\n%s", diff)
	}
}

func TestUnihdrMainFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	exitCode := unihdrMain([]string{"bundle", "-C", dir})
	if exitCode == 0 {
		t.Errorf("unihdrMain(bundle) with missing root=0; want non-zero")
	}
	if _, err := os.Stat(filepath.Join(dir, "build")); !os.IsNotExist(err) {
		t.Errorf("output dir exists after failure: %v", err)
	}
}

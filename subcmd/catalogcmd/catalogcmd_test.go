// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package catalogcmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/unihdr/catalog"
)

func setupDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for fname, content := range files {
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
	return dir
}

func TestRun(t *testing.T) {
	t.Chdir(t.TempDir())
	ctx := context.Background()
	dir := setupDir(t, map[string]string{
		"includes/a.h":     "#include \"b.h\"\n#include <string>\n#include \"sub/c.h\"\n",
		"includes/b.h":     "int b;\n",
		"includes/sub/c.h": "#include <vector>\n",
	})

	for _, tc := range []struct {
		name string
		deps bool
		want string
	}{
		{
			name: "keys",
			want: "a.h\nb.h\nsub/c.h\n",
		},
		{
			name: "deps",
			deps: true,
			want: `a.h: b.h sub/c.h
  external: string
b.h:
sub/c.h:
  external: vector
`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := &run{}
			c.init()
			c.dir = dir
			c.deps = tc.deps
			c.jobs = 2
			var sb strings.Builder
			err := c.run(ctx, &sb, nil)
			if err != nil {
				t.Fatalf("run=%v; want nil err", err)
			}
			if diff := cmp.Diff(tc.want, sb.String()); diff != "" {
				t.Errorf("output diff -want +got:\n%s", diff)
			}
		})
	}
}

func TestRunMissingRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	c := &run{}
	c.init()
	c.dir = t.TempDir()
	var sb strings.Builder
	err := c.run(context.Background(), &sb, nil)
	var derr *catalog.DiscoveryError
	if !errors.As(err, &derr) {
		t.Errorf("run=%v; want DiscoveryError", err)
	}
}

// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package inliner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseInclude(t *testing.T) {
	for _, tc := range []struct {
		line   string
		want   string
		wantOK bool
	}{
		{line: "#include \"foo/bar.h\"\n", want: "foo/bar.h", wantOK: true},
		{line: "#include <foo/bar.h>\n", want: "foo/bar.h", wantOK: true},
		{line: "#include\t<vector>\r\n", want: "vector", wantOK: true},
		{line: "#include   \"a.h\"  // comment\n", want: "a.h", wantOK: true},
		{line: "#include\v\"a.h\"\n", want: "a.h", wantOK: true},
		{line: "#include\f<a.h>\n", want: "a.h", wantOK: true},
		{line: "#include \t\r\"a.h\"\n", want: "a.h", wantOK: true},
		{line: "#include \"a.h\"", want: "a.h", wantOK: true},
		{line: "#include \"\"\n", want: "", wantOK: true},
		{line: "  #include \"a.h\"\n"},
		{line: "# include \"a.h\"\n"},
		{line: "#include_next <a.h>\n"},
		{line: "#include\"a.h\"\n"},
		{line: "#include FOO_H\n"},
		{line: "#include \"a.h\n"},
		{line: "#include <a.h\n"},
		{line: "#include <a\".h>\n"},
		{line: "#include\n"},
		{line: "#include\r\n"},
		{line: "int a;\n"},
		{line: ""},
	} {
		got, ok := ParseInclude([]byte(tc.line))
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParseInclude(%q)=%q, %t; want %q, %t", tc.line, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestIsGuard(t *testing.T) {
	for _, tc := range []struct {
		line  string
		guard string
		want  bool
	}{
		{line: "#pragma once\n", guard: DefaultGuard, want: true},
		{line: "#pragma once // guard\n", guard: DefaultGuard, want: true},
		{line: "#pragma onceler\n", guard: DefaultGuard, want: true},
		{line: " #pragma once\n", guard: DefaultGuard},
		{line: "#pragma pack(1)\n", guard: DefaultGuard},
		{line: "#pragma once\n", guard: ""},
		{line: "#pragma ONCE\n", guard: "#pragma ONCE", want: true},
	} {
		got := IsGuard([]byte(tc.line), tc.guard)
		if got != tc.want {
			t.Errorf("IsGuard(%q, %q)=%t; want %t", tc.line, tc.guard, got, tc.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "\n", want: []string{"\n"}},
		{in: "a\nb\n", want: []string{"a\n", "b\n"}},
		{in: "a\r\nb\r\n", want: []string{"a\r\n", "b\r\n"}},
		{in: "a\nb", want: []string{"a\n", "b\n"}},
		{in: "a\n\n", want: []string{"a\n", "\n"}},
	} {
		var got []string
		for _, line := range splitLines([]byte(tc.in)) {
			got = append(got, string(line))
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("splitLines(%q) diff -want +got:\n%s", tc.in, diff)
		}
	}
}

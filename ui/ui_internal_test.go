// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import "testing"

func TestElideMiddle(t *testing.T) {
	for _, tc := range []struct {
		msg   string
		width int
		want  string
	}{
		{
			msg:   "Writing unified header to: build/includes/platform/cradle_platform_util_generated.hpp",
			width: 40,
			want:  "Writing unified he...util_generated.hpp",
		},
		{
			msg:   "Writing unified header to: unified.h",
			width: 80,
			want:  "Writing unified header to: unified.h",
		},
		{
			msg:   "short",
			width: 3,
			want:  "short",
		},
	} {
		got := elideMiddle(tc.msg, tc.width)
		if got != tc.want {
			t.Errorf("elideMiddle(%q, %d)=%q; want %q", tc.msg, tc.width, got, tc.want)
		}
	}
}

// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package inliner

import "fmt"

// ReadError is returned when a header's content can't be read.
type ReadError struct {
	Key  string
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read header %q (%s): %v", e.Key, e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError is returned when the output can't be created or written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("write output: %v", e.Err)
	}
	return fmt.Sprintf("write output %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

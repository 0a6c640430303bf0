// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package bundle writes the unified header artifact.
//
// Output is written to a temporary file next to the artifact and renamed
// onto it by Commit, so a failed run never leaves a truncated artifact.
package bundle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"go.chromium.org/infra/build/unihdr/inliner"
	"go.chromium.org/infra/build/unihdr/o11y/clog"
	"go.chromium.org/infra/build/unihdr/osfs"
)

// WrapStyle is a style of the guard wrapped around the artifact.
type WrapStyle int

const (
	// WrapNone doesn't wrap the artifact.
	WrapNone WrapStyle = iota
	// WrapPragma puts `#pragma once` at the top.
	WrapPragma
	// WrapIfndef wraps with #ifndef/#define/#endif.
	WrapIfndef
)

func (s WrapStyle) String() string {
	switch s {
	case WrapNone:
		return "none"
	case WrapPragma:
		return "pragma"
	case WrapIfndef:
		return "ifndef"
	}
	return fmt.Sprintf("WrapStyle(%d)", int(s))
}

// Set sets s from its name. It implements flag.Value.
func (s *WrapStyle) Set(v string) error {
	switch v {
	case "none":
		*s = WrapNone
	case "pragma":
		*s = WrapPragma
	case "ifndef":
		*s = WrapIfndef
	default:
		return fmt.Errorf("unknown wrap style %q: want none, pragma or ifndef", v)
	}
	return nil
}

// Options is options of the artifact.
type Options struct {
	Wrap WrapStyle
	// Macro is the macro used by WrapIfndef.
	// Default is derived from the artifact's file name.
	Macro string
	// Compress writes zstd compressed artifact.
	// It is also enabled if the artifact name ends with ".zst".
	Compress bool
}

// GuardMacro returns the default include guard macro for fname.
// e.g. "build/includes/unified.h" -> "UNIFIED_H_".
func GuardMacro(fname string) string {
	base := strings.TrimSuffix(filepath.Base(fname), ".zst")
	var sb strings.Builder
	for i, r := range base {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if i == 0 && unicode.IsDigit(r) {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToUpper(r))
		default:
			sb.WriteByte('_')
		}
	}
	sb.WriteByte('_')
	return sb.String()
}

func (o Options) prologue(macro string) string {
	switch o.Wrap {
	case WrapPragma:
		return "#pragma once\n"
	case WrapIfndef:
		return fmt.Sprintf("#ifndef %s\n#define %s\n", macro, macro)
	}
	return ""
}

func (o Options) epilogue(macro string) string {
	if o.Wrap == WrapIfndef {
		return fmt.Sprintf("#endif  // %s\n", macro)
	}
	return ""
}

// Writer writes the artifact.
type Writer struct {
	ctx   context.Context
	fsys  *osfs.OSFS
	name  string
	tmp   string
	macro string
	opts  Options

	f   *osfs.File
	zw  *zstd.Encoder
	bw  *bufio.Writer
	n   int64
	err error

	done      bool
	committed bool
}

// Create creates parent directories of name and starts writing the
// artifact to a temporary file.
func Create(ctx context.Context, fsys *osfs.OSFS, name string, opts Options) (*Writer, error) {
	err := fsys.MkdirAll(ctx, filepath.Dir(name), 0755)
	if err != nil {
		return nil, &inliner.WriteError{Path: name, Err: err}
	}
	tmp := fmt.Sprintf("%s.%s.tmp", name, uuid.New())
	f, err := fsys.Create(ctx, tmp)
	if err != nil {
		return nil, &inliner.WriteError{Path: name, Err: err}
	}
	w := &Writer{
		ctx:   ctx,
		fsys:  fsys,
		name:  name,
		tmp:   tmp,
		macro: opts.Macro,
		opts:  opts,
		f:     f,
	}
	if w.macro == "" {
		w.macro = GuardMacro(name)
	}
	var out io.Writer = f
	if opts.Compress || strings.HasSuffix(name, ".zst") {
		w.zw, err = zstd.NewWriter(f)
		if err != nil {
			w.Abort()
			return nil, &inliner.WriteError{Path: name, Err: err}
		}
		out = w.zw
	}
	w.bw = bufio.NewWriter(out)
	clog.Infof(ctx, "writing %s via %s", name, tmp)
	if _, err := io.WriteString(w, opts.prologue(w.macro)); err != nil {
		w.Abort()
		return nil, err
	}
	return w, nil
}

// Name returns the name of the artifact.
func (w *Writer) Name() string {
	return w.name
}

// Size returns the number of bytes written, before compression.
func (w *Writer) Size() int64 {
	return w.n
}

// Write writes buf to the artifact.
func (w *Writer) Write(buf []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.done {
		return 0, &inliner.WriteError{Path: w.name, Err: errors.New("write after close")}
	}
	n, err := w.bw.Write(buf)
	w.n += int64(n)
	if err != nil {
		w.err = &inliner.WriteError{Path: w.name, Err: err}
		return n, w.err
	}
	return n, nil
}

// Commit writes the epilogue, and renames the temporary file onto the
// artifact.
func (w *Writer) Commit() error {
	if w.done {
		if w.committed {
			return nil
		}
		return &inliner.WriteError{Path: w.name, Err: errors.New("commit after abort")}
	}
	if _, err := io.WriteString(w, w.opts.epilogue(w.macro)); err != nil {
		w.Abort()
		return err
	}
	w.done = true
	err := w.close(true)
	if err == nil {
		err = w.fsys.Rename(w.ctx, w.tmp, w.name)
	}
	if err != nil {
		w.err = &inliner.WriteError{Path: w.name, Err: err}
		w.remove()
		return w.err
	}
	w.committed = true
	clog.Infof(w.ctx, "wrote %s: %d bytes", w.name, w.n)
	return nil
}

// Abort discards the temporary file.
// It is no-op after Commit or Abort.
func (w *Writer) Abort() {
	if w.done {
		return
	}
	w.done = true
	if err := w.close(false); err != nil {
		clog.Warningf(w.ctx, "close %s: %v", w.tmp, err)
	}
	w.remove()
}

// close flushes buffered output and closes the temporary file.
// If sync is true, the file is synced to stable storage before closing.
func (w *Writer) close(sync bool) error {
	var errs []error
	if w.bw != nil {
		errs = append(errs, w.bw.Flush())
	}
	if w.zw != nil {
		errs = append(errs, w.zw.Close())
	}
	if sync && errors.Join(errs...) == nil {
		errs = append(errs, w.f.Sync())
	}
	errs = append(errs, w.f.Close())
	return errors.Join(errs...)
}

func (w *Writer) remove() {
	err := w.fsys.Remove(w.ctx, w.tmp)
	if err != nil {
		clog.Warningf(w.ctx, "remove %s: %v", w.tmp, err)
	}
}

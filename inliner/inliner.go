// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package inliner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/unihdr/catalog"
	"go.chromium.org/infra/build/unihdr/o11y/clog"
	"go.chromium.org/infra/build/unihdr/osfs"
)

// Options is options of Inliner.
type Options struct {
	// Guard is the guard directive to strip.
	// Default to DefaultGuard. Use Keep to keep all guard lines.
	Guard string

	// Keep keeps guard lines in output.
	Keep bool

	// FS is used to read headers. nil uses the OS filesystem without metrics.
	FS *osfs.OSFS
}

// Stats holds counters of an Inliner.
type Stats struct {
	// Headers is the number of headers emitted.
	Headers int
	// Lines is the number of lines written.
	Lines int
	// Guards is the number of guard lines dropped.
	Guards int
	// Inlined is the number of include directives resolved in the catalog.
	Inlined int
	// External is the number of include directives passed through.
	External int
}

// Inliner writes headers of a catalog to w, expanding local includes.
// It uses emitted flags of the catalog's sources, so each header is
// written at most once across all Expand calls on the same catalog.
type Inliner struct {
	cat   *catalog.Catalog
	w     io.Writer
	guard string
	fs    *osfs.OSFS

	stats Stats
}

// New creates a new Inliner writing to w.
func New(cat *catalog.Catalog, w io.Writer, opts Options) *Inliner {
	guard := opts.Guard
	if guard == "" {
		guard = DefaultGuard
	}
	if opts.Keep {
		guard = ""
	}
	return &Inliner{
		cat:   cat,
		w:     w,
		guard: guard,
		fs:    opts.FS,
	}
}

// Stats returns counters of the inliner.
func (in *Inliner) Stats() Stats {
	return in.stats
}

// Run expands all headers in the catalog in key order.
func (in *Inliner) Run(ctx context.Context) error {
	started := time.Now()
	for _, src := range in.cat.Sources() {
		err := in.Expand(ctx, src)
		if err != nil {
			return err
		}
	}
	clog.Infof(ctx, "inlined %d headers in %s: %d lines, %d includes inlined, %d external, %d guards dropped",
		in.stats.Headers, time.Since(started), in.stats.Lines, in.stats.Inlined, in.stats.External, in.stats.Guards)
	return nil
}

// frame is a header being expanded.
type frame struct {
	src   *catalog.Source
	lines [][]byte
	pos   int
}

// Expand writes src with its local includes expanded.
// It writes nothing if src was already emitted.
//
// Headers are expanded on an explicit stack, in the same pre-order as
// recursive expansion.
func (in *Inliner) Expand(ctx context.Context, src *catalog.Source) error {
	if !src.MarkEmitted() {
		if log.V(1) {
			clog.Infof(ctx, "skip %s: already emitted", src.Key)
		}
		return nil
	}
	f, err := in.open(ctx, src)
	if err != nil {
		return err
	}
	stack := []*frame{f}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.pos >= len(top.lines) {
			stack = stack[:len(stack)-1]
			continue
		}
		line := top.lines[top.pos]
		top.pos++

		if name, ok := ParseInclude(line); ok {
			if dep, ok := in.cat.Lookup(name); ok {
				in.stats.Inlined++
				if !dep.MarkEmitted() {
					if log.V(2) {
						clog.Infof(ctx, "%s: %s already emitted", top.src.Key, name)
					}
					continue
				}
				if log.V(1) {
					clog.Infof(ctx, "%s: inline %s", top.src.Key, name)
				}
				child, err := in.open(ctx, dep)
				if err != nil {
					return err
				}
				stack = append(stack, child)
				continue
			}
			in.stats.External++
			if log.V(1) {
				clog.Infof(ctx, "%s: external include %q", top.src.Key, name)
			}
		} else if IsGuard(line, in.guard) {
			in.stats.Guards++
			continue
		}
		_, err := in.w.Write(line)
		if err != nil {
			var werr *WriteError
			if errors.As(err, &werr) {
				return err
			}
			return &WriteError{Err: err}
		}
		in.stats.Lines++
	}
	return nil
}

// open reads src and returns a new frame for it.
func (in *Inliner) open(ctx context.Context, src *catalog.Source) (*frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("expand %s: %w", src.Key, err)
	}
	buf, err := in.fs.ReadFile(ctx, src.Path)
	if err != nil {
		return nil, &ReadError{Key: src.Key, Path: src.Path, Err: err}
	}
	in.stats.Headers++
	return &frame{
		src:   src,
		lines: splitLines(buf),
	}, nil
}

// Deps is include directives of a header.
type Deps struct {
	// Local is names resolved in the catalog, in order of appearance.
	Local []string
	// External is names not in the catalog, in order of appearance.
	External []string
}

// Scan reads src and returns its include directives classified against cat.
// It doesn't write nor mark src as emitted.
func Scan(ctx context.Context, fsys *osfs.OSFS, cat *catalog.Catalog, src *catalog.Source) (Deps, error) {
	buf, err := fsys.ReadFile(ctx, src.Path)
	if err != nil {
		return Deps{}, &ReadError{Key: src.Key, Path: src.Path, Err: err}
	}
	var deps Deps
	for _, line := range splitLines(buf) {
		name, ok := ParseInclude(line)
		if !ok {
			continue
		}
		if _, ok := cat.Lookup(name); ok {
			deps.Local = append(deps.Local, name)
			continue
		}
		deps.External = append(deps.External, name)
	}
	return deps, nil
}

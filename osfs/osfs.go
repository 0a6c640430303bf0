// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package osfs provides OS Filesystem access.
package osfs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.chromium.org/infra/build/unihdr/o11y/clog"
	"go.chromium.org/infra/build/unihdr/o11y/iometrics"
)

// slowThreshold is the duration after which an operation is logged as slow.
const slowThreshold = 1 * time.Minute

// OSFS provides OS Filesystem access.
// It counts metrics by iometrics.
// A nil *OSFS is usable and doesn't count metrics.
type OSFS struct {
	*iometrics.IOMetrics
}

// New creates new OSFS.
func New(name string) *OSFS {
	return &OSFS{IOMetrics: iometrics.New(name)}
}

func (fsys *OSFS) metrics() *iometrics.IOMetrics {
	if fsys == nil {
		return nil
	}
	return fsys.IOMetrics
}

func logSlow(ctx context.Context, name string, dur time.Duration, err error) {
	buf := make([]byte, 4*1024)
	n := runtime.Stack(buf, false)
	clog.Warningf(ctx, "slow op %s: %s %v\n%s", name, dur, err, buf[:n])
}

func checkSlow(ctx context.Context, name string, started time.Time, err error) {
	if dur := time.Since(started); dur > slowThreshold {
		logSlow(ctx, name, dur, err)
	}
}

// Stat returns a FileInfo describing the named file, following symlinks.
func (fsys *OSFS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	started := time.Now()
	fi, err := os.Stat(name)
	fsys.metrics().OpsDone(err)
	checkSlow(ctx, name, started, err)
	return fi, err
}

// WalkDir walks the file tree rooted at root, calling fn for each file or
// directory in lexical order. See filepath.WalkDir.
func (fsys *OSFS) WalkDir(ctx context.Context, root string, fn fs.WalkDirFunc) error {
	started := time.Now()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		fsys.metrics().OpsDone(err)
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		return fn(path, d, err)
	})
	checkSlow(ctx, root, started, err)
	return err
}

// ReadFile reads the named file and returns its contents.
func (fsys *OSFS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	started := time.Now()
	buf, err := os.ReadFile(name)
	fsys.metrics().ReadDone(len(buf), err)
	checkSlow(ctx, name, started, err)
	return buf, err
}

// MkdirAll creates a directory named path, along with any necessary parents.
func (fsys *OSFS) MkdirAll(ctx context.Context, dirname string, perm fs.FileMode) error {
	started := time.Now()
	err := os.MkdirAll(dirname, perm)
	fsys.metrics().OpsDone(err)
	checkSlow(ctx, dirname, started, err)
	return err
}

// Create creates or truncates the named file for writing.
// Writes to the returned file are counted in the metrics.
func (fsys *OSFS) Create(ctx context.Context, name string) (*File, error) {
	started := time.Now()
	f, err := os.Create(name)
	fsys.metrics().OpsDone(err)
	checkSlow(ctx, name, started, err)
	if err != nil {
		return nil, err
	}
	return &File{ctx: ctx, file: f, started: started, fs: fsys}, nil
}

// Rename renames (moves) oldpath to newpath.
func (fsys *OSFS) Rename(ctx context.Context, oldpath, newpath string) error {
	started := time.Now()
	err := os.Rename(oldpath, newpath)
	fsys.metrics().OpsDone(err)
	checkSlow(ctx, newpath, started, err)
	return err
}

// Remove removes the named file or directory.
func (fsys *OSFS) Remove(ctx context.Context, name string) error {
	started := time.Now()
	err := os.Remove(name)
	fsys.metrics().OpsDone(err)
	checkSlow(ctx, name, started, err)
	return err
}

// File is a file opened for writing by OSFS.
type File struct {
	ctx     context.Context
	file    *os.File
	started time.Time
	fs      *OSFS
}

func (f *File) Write(buf []byte) (int, error) {
	n, err := f.file.Write(buf)
	f.fs.metrics().WriteDone(n, err)
	return n, err
}

// Sync commits the current contents of the file to stable storage.
func (f *File) Sync() error {
	err := f.file.Sync()
	f.fs.metrics().OpsDone(err)
	return err
}

// Close closes the file.
func (f *File) Close() error {
	err := f.file.Close()
	f.fs.metrics().OpsDone(err)
	checkSlow(f.ctx, f.file.Name(), f.started, err)
	return err
}

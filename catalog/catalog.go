// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package catalog

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"slices"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/unihdr/o11y/clog"
	"go.chromium.org/infra/build/unihdr/osfs"
)

// Source is a header source in the catalog.
type Source struct {
	// Key is the canonical key, slash separated, relative to the root.
	Key string
	// Path is the filesystem path to read the header from.
	Path string

	emitted bool
}

// Emitted reports whether the source has been emitted.
func (s *Source) Emitted() bool {
	return s.emitted
}

// MarkEmitted marks the source as emitted.
// It returns true only for the call that changed the flag.
func (s *Source) MarkEmitted() bool {
	if s.emitted {
		return false
	}
	s.emitted = true
	return true
}

func (s *Source) String() string {
	return s.Key
}

// Catalog maps canonical keys to header sources.
type Catalog struct {
	root    string
	keys    []string
	sources map[string]*Source
}

// Build walks root recursively and catalogs every regular file in it.
// root may be a symlink to a directory. Files named in excludes are
// not cataloged.
func Build(ctx context.Context, fsys *osfs.OSFS, root string, excludes ...string) (*Catalog, error) {
	fi, err := fsys.Stat(ctx, root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	if !fi.IsDir() {
		return nil, &DiscoveryError{Root: root, Err: errors.New("not a directory")}
	}
	// WalkDir doesn't follow a symlink root.
	dir, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	skip, err := absPaths(excludes)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	paths := make(map[string][]string)
	err = fsys.WalkDir(ctx, dir, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			if d.Type()&fs.ModeSymlink == 0 {
				if log.V(1) {
					clog.Infof(ctx, "skip non-regular file %s", fname)
				}
				return nil
			}
			fi, err := fsys.Stat(ctx, fname)
			if err != nil || !fi.Mode().IsRegular() {
				if log.V(1) {
					clog.Infof(ctx, "skip symlink %s: %v", fname, err)
				}
				return nil
			}
		}
		rel, err := filepath.Rel(dir, fname)
		if err != nil {
			return err
		}
		p := filepath.Join(root, rel)
		if excluded(skip, p) || excluded(skip, fname) {
			clog.Infof(ctx, "skip excluded %s", p)
			return nil
		}
		key := canonicalKey(filepath.ToSlash(rel))
		paths[key] = append(paths[key], p)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	c, err := newCatalog(root, paths)
	if err != nil {
		return nil, err
	}
	clog.Infof(ctx, "catalog %s: %d headers", c.root, c.Len())
	if log.V(1) {
		for _, k := range c.keys {
			clog.Infof(ctx, "catalog %s -> %s", k, c.sources[k].Path)
		}
	}
	return c, nil
}

func absPaths(fnames []string) ([]string, error) {
	var paths []string
	for _, fname := range fnames {
		p, err := filepath.Abs(fname)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// excluded reports whether fname is one of skip.
// fname may be relative to the current directory.
func excluded(skip []string, fname string) bool {
	if len(skip) == 0 {
		return false
	}
	p, err := filepath.Abs(fname)
	if err != nil {
		return false
	}
	return slices.Contains(skip, p)
}

// New creates a catalog from keys to paths.
// Keys are canonicalized, and keys that canonicalize to the same key
// are reported as DuplicateKeyError.
func New(root string, sources map[string]string) (*Catalog, error) {
	paths := make(map[string][]string)
	for k, p := range sources {
		key := canonicalKey(k)
		paths[key] = append(paths[key], p)
	}
	return newCatalog(root, paths)
}

func newCatalog(root string, paths map[string][]string) (*Catalog, error) {
	c := &Catalog{
		root:    root,
		sources: make(map[string]*Source, len(paths)),
	}
	for key, ps := range paths {
		if len(ps) > 1 {
			slices.Sort(ps)
			return nil, &DuplicateKeyError{Key: key, Paths: ps}
		}
		c.sources[key] = &Source{Key: key, Path: ps[0]}
		c.keys = append(c.keys, key)
	}
	slices.Sort(c.keys)
	return c, nil
}

func canonicalKey(key string) string {
	return path.Clean(key)
}

// Root returns the search root of the catalog.
func (c *Catalog) Root() string {
	return c.root
}

// Lookup returns the source for the key.
func (c *Catalog) Lookup(key string) (*Source, bool) {
	s, ok := c.sources[key]
	return s, ok
}

// Keys returns all keys in lexicographic order.
func (c *Catalog) Keys() []string {
	return slices.Clone(c.keys)
}

// Sources returns all sources in key order.
func (c *Catalog) Sources() []*Source {
	srcs := make([]*Source, 0, len(c.keys))
	for _, k := range c.keys {
		srcs = append(srcs, c.sources[k])
	}
	return srcs
}

// Len returns the number of sources in the catalog.
func (c *Catalog) Len() int {
	return len(c.keys)
}

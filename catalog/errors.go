// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package catalog

import (
	"fmt"
	"strings"
)

// DiscoveryError is returned when the search root is missing or unreadable.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover headers in %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// DuplicateKeyError is returned when distinct paths normalize to the same key.
type DuplicateKeyError struct {
	Key   string
	Paths []string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate header key %q: %s", e.Key, strings.Join(e.Paths, ", "))
}

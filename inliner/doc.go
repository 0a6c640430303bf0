// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package inliner flattens headers in a catalog into a single stream.
//
// It only recognizes the following forms of #include at the start of line
//
//	#include "foo.h"
//	#include <foo.h>
//
// If foo.h is a key in the catalog, the directive is replaced by the
// content of foo.h, expanded the same way, unless foo.h was already
// emitted. Otherwise the line is copied as is, so system and external
// headers are left to the compiler.
//
// Lines starting with the guard directive (`#pragma once` by default) are
// dropped. Macros and conditionals are not evaluated.
package inliner

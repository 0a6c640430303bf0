// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package catalog maps canonical header keys to header sources.
//
// A key is the path of a file relative to the search root, with slash
// separators, so it matches the text used in include directives:
//
//	includes/platform/util.hpp  ->  platform/util.hpp
//
// Every regular file under the root is cataloged, regardless of extension.
package catalog

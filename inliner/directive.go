// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package inliner

import "bytes"

// DefaultGuard is the single-inclusion guard directive stripped from output.
const DefaultGuard = "#pragma once"

var includeDirective = []byte("#include")

// includeSpace is the whitespace allowed between "#include" and the name.
const includeSpace = " \t\v\f\r"

// ParseInclude returns the name referenced by an include directive in line.
// line must start with "#include", followed by whitespace other than a
// newline, then "name" or <name>.
func ParseInclude(line []byte) (string, bool) {
	if !bytes.HasPrefix(line, includeDirective) {
		return "", false
	}
	line = line[len(includeDirective):]
	rest := bytes.TrimLeft(line, includeSpace)
	if len(rest) == len(line) || len(rest) == 0 {
		// '#include_next', '#includefoo' or no path.
		return "", false
	}
	var delim byte
	switch rest[0] {
	case '"':
		delim = '"'
	case '<':
		delim = '>'
	default:
		// '#include FOO_H'
		return "", false
	}
	rest = rest[1:]
	i := bytes.IndexByte(rest, delim)
	if i < 0 {
		// unclosed path.
		return "", false
	}
	name := rest[:i]
	if bytes.ContainsAny(name, "\"\r\n") {
		return "", false
	}
	return string(name), true
}

// IsGuard reports whether line starts with guard.
// An empty guard never matches.
func IsGuard(line []byte, guard string) bool {
	if guard == "" {
		return false
	}
	return bytes.HasPrefix(line, []byte(guard))
}

// splitLines splits buf into lines, keeping line terminators.
// The last line gets "\n" if it has no terminator.
func splitLines(buf []byte) [][]byte {
	if len(buf) == 0 {
		return nil
	}
	lines := bytes.SplitAfter(buf, []byte("\n"))
	last := lines[len(lines)-1]
	switch {
	case len(last) == 0:
		lines = lines[:len(lines)-1]
	case last[len(last)-1] != '\n':
		lines[len(lines)-1] = append(last[:len(last):len(last)], '\n')
	}
	return lines
}

// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// DurationThreshold is the duration below which a finished spinner is
// erased rather than reported.
var DurationThreshold = 500 * time.Millisecond

type termSpinner struct {
	width      int
	quit, done chan struct{}
	started    time.Time
	n          int
	msg        string
}

// Start starts the spinner.
func (s *termSpinner) Start(format string, args ...any) {
	s.started = time.Now()
	s.msg = elideMiddle(fmt.Sprintf(format, args...), s.width-10)
	fmt.Printf("%s... ", s.msg)
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-s.quit:
				return
			case <-ticker.C:
				const chars = `/-\|`
				fmt.Printf("\b%c", chars[s.n])
				s.n = (s.n + 1) % len(chars)
			}
		}
	}()
}

func (s *termSpinner) stop() time.Duration {
	close(s.quit)
	<-s.done
	return time.Since(s.started)
}

// Stop stops the spinner.
func (s *termSpinner) Stop(err error) {
	d := s.stop()
	if err != nil {
		fmt.Printf("\r\033[K%6s %s %s\n", FormatDuration(d), s.msg, SGR(Red, fmt.Sprintf("failed %v", err)))
		return
	}
	if d < DurationThreshold {
		// omit if duration is too short
		fmt.Printf("\r\033[K")
		return
	}
	fmt.Printf("\r\033[K%6s %s\n", FormatDuration(d), s.msg)
}

// Done finishes the spinner with message.
func (s *termSpinner) Done(format string, args ...any) {
	d := s.stop()
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("\r\033[K%6s %s %s\n", FormatDuration(d), s.msg, SGR(Green, msg))
}

// TermUI is a terminal-based UI.
type TermUI struct {
	width int
}

func (t *TermUI) init() {
	t.width, _, _ = term.GetSize(int(os.Stdout.Fd()))
}

// Infof reports to stdout.
func (t *TermUI) Infof(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// Warningf reports to stderr.
func (t *TermUI) Warningf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, SGR(Yellow, fmt.Sprintf(format, args...)))
}

// Errorf reports to stderr.
func (t *TermUI) Errorf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, SGR(Red, fmt.Sprintf(format, args...)))
}

// NewSpinner returns a terminal-based spinner.
func (t *TermUI) NewSpinner() Spinner {
	return &termSpinner{width: t.width}
}

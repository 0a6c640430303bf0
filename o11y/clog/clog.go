// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package clog provides context aware logging.
// It can store arbitrary labels (run id, header key, etc) in each context,
// so log entries emitted while bundling a header carry that header
// automatically.
//
// Entries are shaped as Cloud logging.Entry, and written with glog.
package clog

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/logging"
	"github.com/golang/glog"
)

type contextKeyType int

// glog entry points, replaced in tests to check the logged call frame.
var (
	infoDepth    = glog.InfoDepth
	warningDepth = glog.WarningDepth
	errorDepth   = glog.ErrorDepth
)

var contextKey contextKeyType

// defaultFormatter prefixes the payload with labels in key order.
var defaultFormatter = func(e logging.Entry) string {
	if len(e.Labels) == 0 {
		return fmt.Sprintf("%v", e.Payload)
	}
	var sb strings.Builder
	for _, k := range slices.Sorted(maps.Keys(e.Labels)) {
		fmt.Fprintf(&sb, "%s=%s ", k, e.Labels[k])
	}
	fmt.Fprintf(&sb, "%v", e.Payload)
	return sb.String()
}

var defaultLogger = &Logger{Formatter: defaultFormatter}

// New creates a new Logger.
func New(ctx context.Context) *Logger {
	return &Logger{
		Formatter: defaultFormatter,
	}
}

// NewContext sets the given logger to the context.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// WithLabels sets a sub logger with additional labels to the context.
func WithLabels(ctx context.Context, labels map[string]string) context.Context {
	return NewContext(ctx, FromContext(ctx).With(labels))
}

// FromContext returns a logger in the context, or the default logger
// if it's not set.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey).(*Logger)
	if !ok || logger == nil {
		return defaultLogger
	}
	return logger
}

// Logger holds arbitrary labels of the context.
// It also can have custom formatter to generate a log content.
type Logger struct {
	// Formatter is a formatter of the entry for glog.
	// Default prints labels as key=value followed by the payload.
	Formatter func(e logging.Entry) string

	labels map[string]string
}

// With returns a sub logger that has labels merged into l's labels.
func (l *Logger) With(labels map[string]string) *Logger {
	merged := make(map[string]string, len(l.labels)+len(labels))
	maps.Copy(merged, l.labels)
	maps.Copy(merged, labels)
	return &Logger{
		Formatter: l.Formatter,
		labels:    merged,
	}
}

func (l *Logger) log(e logging.Entry) {
	format := l.Formatter
	if format == nil {
		format = defaultFormatter
	}
	msg := format(e)
	switch e.Severity {
	case logging.Info:
		infoDepth(2, msg)
	case logging.Warning:
		warningDepth(2, msg)
	case logging.Error:
		errorDepth(2, msg)
	default:
		infoDepth(2, fmt.Sprintf("%s %s", e.Severity, msg))
	}
}

// Infof logs at info log level in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Info, fmt.Sprintf(format, args...)))
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func Warningf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Warning, fmt.Sprintf(format, args...)))
}

// Errorf logs at error log level in the manner of fmt.Printf.
func Errorf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Error, fmt.Sprintf(format, args...)))
}

// Entry creates a new log entry for the given severity.
func (l *Logger) Entry(severity logging.Severity, payload any) logging.Entry {
	return logging.Entry{
		Timestamp: time.Now(),
		Severity:  severity,
		Payload:   payload,
		Labels:    l.labels,
	}
}

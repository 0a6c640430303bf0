// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package bundlecmd provides bundle subcommand.
package bundlecmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/unihdr/bundle"
	"go.chromium.org/infra/build/unihdr/catalog"
	"go.chromium.org/infra/build/unihdr/inliner"
	"go.chromium.org/infra/build/unihdr/o11y/clog"
	"go.chromium.org/infra/build/unihdr/osfs"
	"go.chromium.org/infra/build/unihdr/ui"
)

const usage = `bundle headers into a unified header

 $ unihdr bundle [-C <dir>] [-root includes] [-o build/includes/unified.h]

Every file under -root is cataloged by its path relative to -root.
Headers are written to -o in key order; an #include "x" or #include <x>
naming a cataloged file is replaced by the file's content the first time
it's seen and dropped afterwards. Other includes are kept as is.
Lines starting with -guard are dropped.
`

// Cmd returns the Command for the `bundle` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "bundle [-C <dir>] [-root <dir>] [-o <file>]",
		ShortDesc: "bundle headers into a unified header",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	dir       string
	root      string
	output    string
	guard     string
	keepGuard bool
	wrap      bundle.WrapStyle
	macro     string
	compress  bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "directory to run in. -root and -o are relative to it")
	c.Flags.StringVar(&c.root, "root", "includes", "search root of headers")
	c.Flags.StringVar(&c.output, "o", "build/includes/unified.h", "unified header to write")
	c.Flags.StringVar(&c.guard, "guard", inliner.DefaultGuard, "guard directive dropped from headers")
	c.Flags.BoolVar(&c.keepGuard, "keep_guard", false, "keep guard directives in output")
	c.Flags.Var(&c.wrap, "wrap", "guard to wrap the unified header with: none, pragma or ifndef")
	c.Flags.StringVar(&c.macro, "macro", "", "macro for -wrap=ifndef. default is derived from -o")
	c.Flags.BoolVar(&c.compress, "compress", false, "write zstd compressed output. implied by .zst suffix of -o")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
			return 2
		default:
			clog.Errorf(ctx, "bundle: %v", err)
			ui.Default.Errorf("Error: %v", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("position arguments not expected: %q: %w", args, flag.ErrHelp)
	}
	if c.keepGuard && c.guard != inliner.DefaultGuard {
		return fmt.Errorf("-guard and -keep_guard are exclusive: %w", flag.ErrHelp)
	}
	err := os.Chdir(c.dir)
	if err != nil {
		return err
	}
	ctx = clog.WithLabels(ctx, map[string]string{"run": uuid.NewString()})
	fsys := osfs.New("unihdr")
	defer func() {
		clog.Infof(ctx, "io %s", fsys.Stats())
	}()

	// exclude the artifact of a previous run, if -o is under -root.
	cat, err := catalog.Build(ctx, fsys, c.root, c.output)
	if err != nil {
		return err
	}
	clog.Infof(ctx, "bundle %s -> %s", cat.Root(), c.output)
	ui.Default.Infof("Creating unified header from:")
	for _, key := range cat.Keys() {
		ui.Default.Infof("\t%s", key)
	}
	ui.Default.Infof("")
	ui.Default.Infof("Writing unified header to: %s", c.output)

	w, err := bundle.Create(ctx, fsys, c.output, bundle.Options{
		Wrap:     c.wrap,
		Macro:    c.macro,
		Compress: c.compress,
	})
	if err != nil {
		return err
	}
	defer w.Abort()

	spin := ui.Default.NewSpinner()
	spin.Start("inlining %d headers", cat.Len())
	in := inliner.New(cat, w, inliner.Options{
		Guard: c.guard,
		Keep:  c.keepGuard,
		FS:    fsys,
	})
	err = in.Run(ctx)
	if err == nil {
		err = w.Commit()
	}
	if err != nil {
		spin.Stop(err)
		return err
	}
	st := in.Stats()
	spin.Done("%d headers, %d lines, %d bytes", st.Headers, st.Lines, w.Size())
	return nil
}

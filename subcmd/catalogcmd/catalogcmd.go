// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package catalogcmd provides catalog subcommand to inspect headers.
package catalogcmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/maruel/subcommands"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/unihdr/catalog"
	"go.chromium.org/infra/build/unihdr/inliner"
	"go.chromium.org/infra/build/unihdr/o11y/clog"
	"go.chromium.org/infra/build/unihdr/osfs"
	"go.chromium.org/infra/build/unihdr/sync/semaphore"
)

const usage = `list cataloged headers

 $ unihdr catalog [-C <dir>] [-root includes] [-deps]

prints keys of headers under -root in the order they are bundled.
With -deps, it also prints includes of each header, split into
local ones (inlined by bundle) and external ones (kept as is).
`

// Cmd returns the Command for the `catalog` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "catalog [-C <dir>] [-root <dir>] [-deps]",
		ShortDesc: "list cataloged headers",
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

	dir  string
	root string
	deps bool
	jobs int
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "directory to run in. -root is relative to it")
	c.Flags.StringVar(&c.root, "root", "includes", "search root of headers")
	c.Flags.BoolVar(&c.deps, "deps", false, "print includes of each header")
	c.Flags.IntVar(&c.jobs, "j", runtime.NumCPU(), "number of headers scanned concurrently for -deps")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, os.Stdout, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
			return 2
		default:
			clog.Errorf(ctx, "catalog: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, w io.Writer, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("position arguments not expected: %q: %w", args, flag.ErrHelp)
	}
	err := os.Chdir(c.dir)
	if err != nil {
		return err
	}
	fsys := osfs.New("unihdr")
	cat, err := catalog.Build(ctx, fsys, c.root)
	if err != nil {
		return err
	}
	srcs := cat.Sources()
	if !c.deps {
		for _, src := range srcs {
			fmt.Fprintln(w, src.Key)
		}
		return nil
	}

	deps := make([]inliner.Deps, len(srcs))
	sema := semaphore.New("catalog.scan", c.jobs)
	eg, ctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		eg.Go(func() error {
			return sema.Do(ctx, func(ctx context.Context) error {
				var err error
				deps[i], err = inliner.Scan(ctx, fsys, cat, src)
				return err
			})
		})
	}
	err = eg.Wait()
	if err != nil {
		return err
	}
	for i, src := range srcs {
		line := src.Key + ":"
		if len(deps[i].Local) > 0 {
			line += " " + strings.Join(deps[i].Local, " ")
		}
		fmt.Fprintln(w, line)
		if len(deps[i].External) > 0 {
			fmt.Fprintf(w, "  external: %s\n", strings.Join(deps[i].External, " "))
		}
	}
	return nil
}

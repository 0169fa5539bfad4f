// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"cloudeng.io/cmdutil"
	"cloudeng.io/errors"
	"github.com/go-compress/gunzip"
	"github.com/spf13/cobra"
	"v.io/x/lib/cmd/flagvar"
)

// inspectFlags mirrors the verbosity knobs of bzip2 inspection tools,
// registered the same way via v.io/x/lib/cmd/flagvar onto a
// standalone flag.FlagSet that cobra then absorbs.
var inspectFlags struct {
	Verbose bool `cmd:"verbose,false,'print a line per member, not just the totals'"`
}

func newInspectCmd() *cobra.Command {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	if err := flagvar.RegisterFlagsInStruct(fs, "cmd", &inspectFlags, nil, nil); err != nil {
		panic(err) // static struct tags; a parse failure here is a programmer error
	}

	cmd := &cobra.Command{
		Use:   "inspect file.gz [file.gz ...]",
		Short: "print gzip member counts and sizes without writing decompressed output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			cmdutil.HandleSignals(cancel, nil)
			return inspectFiles(ctx, args)
		},
	}
	cmd.Flags().AddGoFlagSet(fs)
	return cmd
}

func inspectFiles(ctx context.Context, names []string) error {
	errs := &errors.M{}
	for _, name := range names {
		errs.Append(inspectFile(ctx, name))
	}
	return errs.Err()
}

func inspectFile(ctx context.Context, name string) error {
	rd, _, cleanup, err := openFileOrURL(ctx, name)
	if err != nil {
		return err
	}
	defer cleanup()

	buf, err := io.ReadAll(rd)
	if err != nil {
		return err
	}

	ch := make(chan gunzip.Progress, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range ch {
			if inspectFlags.Verbose {
				fmt.Printf("%s: member %d: %d bytes in, %d bytes out\n", name, p.Member, p.BytesIn, p.BytesOut)
			}
		}
	}()

	stats, err := gunzip.Decompress(buf, io.Discard, gunzip.WithProgress(ch), gunzip.WithChecksumValidation(true))
	close(ch)
	<-done

	fmt.Printf("=== %s ===\n", name)
	if err != nil {
		if gzErr, ok := err.(*gunzip.Error); ok {
			fmt.Printf("member %d: offset %d: %s\n", gzErr.Member, gzErr.Offset, gzErr.Kind)
		}
		return err
	}
	fmt.Printf("members            : %d\n", stats.Members)
	fmt.Printf("decompressed bytes : %d\n", stats.BytesOut)
	return nil
}

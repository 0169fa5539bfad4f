// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gunzip decompresses gzip files, locally, on S3, or over
// HTTP(S). It is the CLI front end for the gunzip package.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"cloudeng.io/cmdutil"
	"cloudeng.io/errors"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/go-compress/gunzip"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"
)

func init() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		output   string
		toStdout bool
		progress bool
		validate bool
	)

	root := &cobra.Command{
		Use:   "gunzip [flags] file.gz",
		Short: "decompress gzip files, locally, on S3, or over HTTP(S)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			cmdutil.HandleSignals(cancel, os.Interrupt)

			input := args[0]
			out := output
			if toStdout {
				out = ""
			} else if out == "" {
				out = strings.TrimSuffix(input, ".gz")
				if out == input {
					return fmt.Errorf("%s: refusing to overwrite input, pass -o to choose an output path", input)
				}
			}
			return runDecompress(ctx, input, out, progress, validate)
		},
	}
	root.Flags().StringVarP(&output, "output", "o", "", "output file or s3:// path; defaults to the input name with .gz stripped")
	root.Flags().BoolVarP(&toStdout, "stdout", "c", false, "decompress to stdout")
	root.Flags().BoolVar(&progress, "progress", false, "display a progress bar")
	root.Flags().BoolVar(&validate, "validate", false, "verify each member's CRC-32/ISIZE trailer")

	catCmd := &cobra.Command{
		Use:   "cat [file.gz ...]",
		Short: "decompress files (or stdin) to stdout",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			cmdutil.HandleSignals(cancel, os.Interrupt)
			return runCat(ctx, args, validate)
		},
	}
	catCmd.Flags().BoolVar(&validate, "validate", false, "verify each member's CRC-32/ISIZE trailer")

	root.AddCommand(catCmd, newInspectCmd())
	return root
}

// openFileOrURL opens a local path, an s3:// path (via grailbio's file
// package), or an http(s):// URL, returning its reader, declared size
// (-1 for an HTTP response of unknown length), and a cleanup function.
func openFileOrURL(ctx context.Context, name string) (io.Reader, int64, func() error, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		var resp *http.Response
		op := func() error {
			var err error
			resp, err = http.Get(name)
			return err
		}
		if err := backoff.Retry(op, backoff.NewExponentialBackOff()); err != nil {
			return nil, 0, nil, err
		}
		return resp.Body, resp.ContentLength, resp.Body.Close, nil
	}

	var (
		f    file.File
		info file.Info
	)
	op := func() error {
		var err error
		info, err = file.Stat(ctx, name)
		if err != nil {
			return err
		}
		f, err = file.Open(ctx, name)
		return err
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(op, bo); err != nil {
		return nil, 0, nil, err
	}
	return f.Reader(ctx), info.Size(), func() error { return f.Close(ctx) }, nil
}

func createOutput(ctx context.Context, name string) (io.Writer, func(failed bool) error, error) {
	if name == "" {
		return os.Stdout, func(bool) error { return nil }, nil
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return f.Writer(ctx), func(failed bool) error {
		cerr := f.Close(ctx)
		if failed {
			_ = file.Remove(ctx, name)
		}
		return cerr
	}, nil
}

func runDecompress(ctx context.Context, input, output string, showProgress, validate bool) error {
	data, size, cleanup, err := openFileOrURL(ctx, input)
	if err != nil {
		return err
	}
	buf, err := io.ReadAll(data)
	cleanup()
	if err != nil {
		return err
	}

	w, finish, err := createOutput(ctx, output)
	if err != nil {
		return err
	}

	opts := []gunzip.Option{gunzip.WithChecksumValidation(validate)}
	var bar *progressbar.ProgressBar
	if showProgress {
		barWr := progressBarWriter(output)
		bar = progressbar.NewOptions64(size,
			progressbar.OptionSetBytes64(size),
			progressbar.OptionSetWriter(barWr),
			progressbar.OptionSetPredictTime(true))
		ch := make(chan gunzip.Progress, 1)
		opts = append(opts, gunzip.WithProgress(ch))
		done := make(chan struct{})
		go func() {
			defer close(done)
			for p := range ch {
				bar.Set64(p.BytesIn)
			}
		}()
		defer func() {
			close(ch)
			<-done
			fmt.Fprintln(barWr)
		}()
	}

	_, err = gunzip.Decompress(buf, w, opts...)
	if cerr := finish(err != nil); err == nil {
		err = cerr
	}
	return err
}

// progressBarWriter routes the progress bar to stderr when the output
// is stdout (so the bar doesn't interleave with decompressed bytes)
// or when stdout isn't a terminal.
func progressBarWriter(output string) io.Writer {
	if output == "" || !terminal.IsTerminal(int(os.Stdout.Fd())) {
		return os.Stderr
	}
	return os.Stdout
}

func runCat(ctx context.Context, args []string, validate bool) error {
	opts := []gunzip.Option{gunzip.WithChecksumValidation(validate)}
	if len(args) == 0 {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		_, err = gunzip.Decompress(buf, os.Stdout, opts...)
		return err
	}

	errs := &errors.M{}
	for _, name := range args {
		rd, _, cleanup, err := openFileOrURL(ctx, name)
		if err != nil {
			errs.Append(fmt.Errorf("%s: %w", name, err))
			continue
		}
		buf, err := io.ReadAll(rd)
		cleanup()
		if err != nil {
			errs.Append(fmt.Errorf("%s: %w", name, err))
			continue
		}
		if _, err := gunzip.Decompress(buf, os.Stdout, opts...); err != nil {
			errs.Append(fmt.Errorf("%s: %w", name, err))
		}
	}
	return errs.Err()
}

// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gunzip decodes gzip-compressed (RFC 1952) byte slices,
// built around an in-package DEFLATE (RFC 1951) bit-stream decoder.
// The whole compressed input is expected to already be in memory;
// streaming decompression from an io.Reader is out of scope.
package gunzip

import (
	"bytes"
	"io"
	"log"

	"github.com/go-compress/gunzip/internal/deflate"
)

// Kind identifies the class of a decoding failure.
type Kind = deflate.Kind

// The error taxonomy, re-exported from internal/deflate so callers
// never need to import that package directly.
const (
	Truncated            = deflate.Truncated
	BadMagic             = deflate.BadMagic
	UnsupportedMethod    = deflate.UnsupportedMethod
	ReservedFlagBits     = deflate.ReservedFlagBits
	ReservedBlockType    = deflate.ReservedBlockType
	StoredLengthMismatch = deflate.StoredLengthMismatch
	DynamicHeader        = deflate.DynamicHeader
	NoPreviousLength     = deflate.NoPreviousLength
	RepeatOverflow       = deflate.RepeatOverflow
	InvalidLengths       = deflate.InvalidLengths
	MalformedCodes       = deflate.MalformedCodes
	InvalidSymbol        = deflate.InvalidSymbol
	InvalidLengthExtra   = deflate.InvalidLengthExtra
	InvalidDistance      = deflate.InvalidDistance
	SinkWriteShort       = deflate.SinkWriteShort
	ChecksumMismatch     = deflate.ChecksumMismatch
	SizeMismatch         = deflate.SizeMismatch
)

// Error is the single error type this package produces.
type Error = deflate.Error

// Progress reports state after each gzip member finishes decoding.
type Progress = deflate.Progress

// Stats summarizes a completed Decompress call.
type Stats = deflate.Stats

type options struct {
	deflate.Options
	logger  *log.Logger
	verbose bool
}

// Option configures a Decompress or NewReader call. Mirrors the
// teacher's DecompressorOption/BZVerbose/BZSendUpdates pattern
// (parallel.go), reshaped for a single synchronous decode instead of
// a goroutine pool.
type Option func(*options)

// WithChecksumValidation enables CRC-32/ISIZE verification of each
// member's trailer against the decompressed bytes. Off by default.
func WithChecksumValidation(v bool) Option {
	return func(o *options) { o.ValidateChecksums = v }
}

// WithMaxMembers bounds the number of gzip members processed in one
// call; 0 (the default) means unlimited.
func WithMaxMembers(n int) Option {
	return func(o *options) { o.MaxMembers = n }
}

// WithProgress sends a Progress update on ch after each member
// completes. The caller owns ch and must drain it; Decompress never
// closes it.
func WithProgress(ch chan<- Progress) Option {
	return func(o *options) {
		o.OnProgress = func(p Progress) {
			ch <- p
		}
	}
}

// WithVerbose enables a log line after each completed member, written
// to the logger set by WithLogger (log.Default() otherwise). Block
// boundaries are not logged.
func WithVerbose(v bool) Option {
	return func(o *options) { o.verbose = v }
}

// WithLogger sets the logger used when WithVerbose is enabled,
// defaulting to log.Default() otherwise.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{logger: log.Default()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.verbose {
		base := o.OnProgress
		o.OnProgress = func(p Progress) {
			o.logger.Printf("gunzip: member %d done: %d bytes in, %d bytes out", p.Member, p.BytesIn, p.BytesOut)
			if base != nil {
				base(p)
			}
		}
	}
	return o
}

// Decompress decodes every gzip member in src, in order, writing the
// concatenated decompressed output to w. src must hold the entire
// compressed input; Decompress does not retain it past the call.
//
// CRC-32/ISIZE are not verified unless WithChecksumValidation(true)
// is passed.
func Decompress(src []byte, w io.Writer, opts ...Option) (Stats, error) {
	o := buildOptions(opts)
	return deflate.Decompress(src, w, o.Options)
}

// NewReader adapts Decompress to the io.Reader idiom for callers that
// already have the whole compressed input as a []byte. Decompression
// happens eagerly inside NewReader, not incrementally as Read is
// called; the returned Reader streams out of an in-memory buffer.
func NewReader(src []byte, opts ...Option) (io.Reader, error) {
	var buf bytes.Buffer
	if _, err := Decompress(src, &buf, opts...); err != nil {
		return nil, err
	}
	return &buf, nil
}

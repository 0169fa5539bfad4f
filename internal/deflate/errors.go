// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package deflate implements the DEFLATE (RFC 1951) bit-stream decoder
// and the gzip (RFC 1952) member framing around it.
package deflate

import "fmt"

// Kind identifies the class of a decoding failure. The core never
// retries; every Kind is fatal to the current decompression.
type Kind int

// The error taxonomy. Each Kind corresponds to a single named failure
// mode in the format's specification.
const (
	Truncated Kind = iota
	BadMagic
	UnsupportedMethod
	ReservedFlagBits
	ReservedBlockType
	StoredLengthMismatch
	DynamicHeader
	NoPreviousLength
	RepeatOverflow
	InvalidLengths
	MalformedCodes
	InvalidSymbol
	InvalidLengthExtra
	InvalidDistance
	SinkWriteShort
	ChecksumMismatch
	SizeMismatch
)

func (k Kind) String() string {
	switch k {
	case Truncated:
		return "truncated"
	case BadMagic:
		return "bad magic"
	case UnsupportedMethod:
		return "unsupported compression method"
	case ReservedFlagBits:
		return "reserved flag bits set"
	case ReservedBlockType:
		return "reserved block type"
	case StoredLengthMismatch:
		return "stored block length mismatch"
	case DynamicHeader:
		return "invalid dynamic block header"
	case NoPreviousLength:
		return "repeat code with no previous length"
	case RepeatOverflow:
		return "code length repeat overflows alphabet"
	case InvalidLengths:
		return "code length exceeds limit"
	case MalformedCodes:
		return "malformed huffman code set"
	case InvalidSymbol:
		return "invalid literal/length symbol"
	case InvalidLengthExtra:
		return "invalid length extra bits"
	case InvalidDistance:
		return "invalid back-reference distance"
	case SinkWriteShort:
		return "short write to output sink"
	case ChecksumMismatch:
		return "crc32 checksum mismatch"
	case SizeMismatch:
		return "isize mismatch"
	default:
		return "unknown"
	}
}

// Error is the single error type produced by this package. It carries
// enough to diagnose a failure: the kind, the byte offset into the
// input at the time of failure, and the 0-based index of the gzip
// member being processed.
type Error struct {
	Kind   Kind
	Offset int64
	Member int
	Msg    string

	// located is true once Offset/Member have been filled in by the
	// component that had that context. Errors raised deep inside the
	// bit reader or Huffman table builder, which don't know the
	// current member index, are created unlocated and annotated by
	// the first caller up the stack that does.
	located bool
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("gunzip: member %d: offset %d: %s: %s", e.Member, e.Offset, e.Kind, e.Msg)
	}
	return fmt.Sprintf("gunzip: member %d: offset %d: %s", e.Member, e.Offset, e.Kind)
}

// Unwrap reports no wrapped cause: every Error is a terminal failure,
// never retried.
func (e *Error) Unwrap() error { return nil }

// newErr creates a fully-located error, for call sites that already
// know the current byte offset and member index.
func newErr(kind Kind, offset int64, member int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Offset: offset, Member: member, Msg: fmt.Sprintf(format, args...), located: true}
}

// newBareErr creates an error with no location context, for the bit
// reader and Huffman table builder, which are used across many
// members/blocks and don't track which one is current.
func newBareErr(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// locate fills in Offset/Member on an unlocated *Error the first time
// it crosses a call site that knows them. Errors from other packages,
// or already-located Errors, pass through unchanged.
func locate(err error, offset int64, member int) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok && !e.located {
		e.Offset = offset
		e.Member = member
		e.located = true
	}
	return err
}

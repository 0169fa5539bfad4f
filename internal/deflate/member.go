// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

import "io"

// gzip member framing, RFC 1952, §4.F. The sequential, early-return
// field-by-field parse below follows the shape of bzip2's own
// reader.setup(); the multi-member loop in Decompress is the gzip
// analogue of reader.read()'s "is there another compressed file
// concatenated onto this one?" branch.

const (
	gzipID1   = 0x1f
	gzipID2   = 0x8b
	gzipCMDef = 8 // only supported compression method: DEFLATE

	flagText     = 1 << 0
	flagHCRC     = 1 << 1
	flagExtra    = 1 << 2
	flagName     = 1 << 3
	flagComment  = 1 << 4
	flagReserved = 1<<5 | 1<<6 | 1<<7
)

// Options configures a Decompress call. The zero value validates
// nothing beyond the bit stream's own structural invariants: CRC/ISIZE
// checks are opt-in.
type Options struct {
	ValidateChecksums bool
	MaxMembers        int // 0 means unlimited
	OnProgress        func(Progress)
}

// Progress reports incremental state after each gzip member finishes
// decoding, for callers that want to surface a progress indicator.
type Progress struct {
	Member   int
	BytesIn  int64
	BytesOut int64
}

// Stats summarizes a completed Decompress call.
type Stats struct {
	Members  int
	BytesOut int64
}

// Decompress decodes every gzip member in src, in order, writing the
// concatenated decompressed output to w. src must hold the entire
// compressed input in memory; streaming input is out of scope (§1).
func Decompress(src []byte, w io.Writer, opts Options) (Stats, error) {
	br := newBitReader(src)
	out := newOutputBuffer(w)

	var stats Stats
	for !br.atEOF() {
		if opts.MaxMembers > 0 && stats.Members >= opts.MaxMembers {
			break
		}
		if err := decodeMember(&br, out, stats.Members, opts); err != nil {
			return stats, err
		}
		stats.Members++
		stats.BytesOut = out.bytesWritten()
		if opts.OnProgress != nil {
			opts.OnProgress(Progress{Member: stats.Members - 1, BytesIn: br.offset(), BytesOut: stats.BytesOut})
		}
	}
	if stats.Members == 0 {
		return stats, newErr(Truncated, 0, 0, "empty input: no gzip member found")
	}
	if err := out.flush(); err != nil {
		return stats, err
	}
	stats.BytesOut = out.bytesWritten()
	return stats, nil
}

// decodeMember parses one gzip member's header, decodes its DEFLATE
// stream, and parses (and optionally verifies) its trailer. The
// window is allocated fresh here, per the first resolved Open
// Question: back-references never cross a member boundary.
func decodeMember(br *bitReader, out *outputBuffer, member int, opts Options) error {
	if err := decodeHeader(br, member); err != nil {
		return err
	}

	var crc *memberChecksum
	if opts.ValidateChecksums {
		crc = newMemberChecksum()
	}

	win := newWindow()
	if err := decodeStream(br, win, out, crc, member); err != nil {
		return err
	}

	return decodeTrailer(br, crc, member, opts.ValidateChecksums)
}

// decodeHeader parses the fixed and variable-length portions of a
// gzip member header, per RFC 1952 §2.3.1, discarding fields this
// decoder has no use for (MTIME, XFL, OS, FEXTRA payload, FNAME,
// FCOMMENT, FHCRC) once their length has been established.
func decodeHeader(br *bitReader, member int) error {
	id1 := br.readAlignedByte()
	id2 := br.readAlignedByte()
	if br.err != nil {
		return locate(br.err, br.offset(), member)
	}
	if id1 != gzipID1 || id2 != gzipID2 {
		return newErr(BadMagic, br.offset(), member, "got %02x %02x, want %02x %02x", id1, id2, gzipID1, gzipID2)
	}
	cm := br.readAlignedByte()
	flg := br.readAlignedByte()
	if br.err != nil {
		return locate(br.err, br.offset(), member)
	}
	if cm != gzipCMDef {
		return newErr(UnsupportedMethod, br.offset(), member, "compression method %d", cm)
	}
	if flg&flagReserved != 0 {
		return newErr(ReservedFlagBits, br.offset(), member, "FLG=%08b", flg)
	}

	if !br.skipAlignedBytes(6) { // MTIME(4) + XFL(1) + OS(1)
		return locate(br.err, br.offset(), member)
	}

	if flg&flagExtra != 0 {
		xlenLo := br.readAlignedByte()
		xlenHi := br.readAlignedByte()
		if br.err != nil {
			return locate(br.err, br.offset(), member)
		}
		xlen := int(xlenLo) | int(xlenHi)<<8
		if !br.skipAlignedBytes(xlen) {
			return locate(br.err, br.offset(), member)
		}
	}
	if flg&flagName != 0 {
		if err := skipCString(br, member); err != nil {
			return err
		}
	}
	if flg&flagComment != 0 {
		if err := skipCString(br, member); err != nil {
			return err
		}
	}
	if flg&flagHCRC != 0 {
		if !br.skipAlignedBytes(2) {
			return locate(br.err, br.offset(), member)
		}
	}
	return nil
}

// skipCString consumes bytes up to and including the next NUL,
// used for the header's optional null-terminated FNAME/FCOMMENT
// fields.
func skipCString(br *bitReader, member int) error {
	for {
		b := br.readAlignedByte()
		if br.err != nil {
			return locate(br.err, br.offset(), member)
		}
		if b == 0 {
			return nil
		}
	}
}

// decodeTrailer parses the 8-byte CRC32/ISIZE trailer (RFC 1952
// §2.3.1), aligning to the next byte boundary first since the final
// DEFLATE block need not end on one. When validate is true and crc is
// non-nil, the accumulated checksum and size are compared against the
// trailer's declared values.
func decodeTrailer(br *bitReader, crc *memberChecksum, member int, validate bool) error {
	br.alignToByte()

	b := [8]byte{}
	if !br.readAlignedBytes(b[:]) {
		return locate(br.err, br.offset(), member)
	}
	wantCRC := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	wantISIZE := uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16 | uint32(b[7])<<24

	if validate && crc != nil {
		return crc.verify(wantCRC, wantISIZE, br.offset(), member)
	}
	return nil
}

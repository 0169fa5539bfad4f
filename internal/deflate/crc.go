// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

import "hash/crc32"

// memberChecksum accumulates the running CRC-32 and decompressed size
// of a single gzip member, for the optional trailer verification that
// ValidateChecksums enables.
//
// bzip2's own crc.go hand-rolls a bit-reversed CRC-32 because bzip2
// reflects both its input bits and its final checksum.
// gzip's trailer CRC-32 is the ordinary, non-reflected IEEE form that
// hash/crc32 already computes, so there is nothing left for a custom
// implementation (or a third-party CRC library) to add over the
// standard one.
type memberChecksum struct {
	h    hashCRC
	size uint32
}

// hashCRC is the subset of hash.Hash32 this file needs, to keep the
// field above self-documenting about what it's for.
type hashCRC interface {
	Write(p []byte) (int, error)
	Sum32() uint32
}

func newMemberChecksum() *memberChecksum {
	return &memberChecksum{h: crc32.NewIEEE()}
}

func (c *memberChecksum) write(p []byte) {
	c.h.Write(p)
	c.size += uint32(len(p))
}

func (c *memberChecksum) writeByte(b byte) {
	c.write([]byte{b})
}

// verify compares the accumulated CRC-32 and size (mod 2^32, per
// RFC 1952 §2.3.1's ISIZE field) against the member trailer's
// declared values.
func (c *memberChecksum) verify(wantCRC, wantISIZE uint32, offset int64, member int) error {
	if got := c.h.Sum32(); got != wantCRC {
		return newErr(ChecksumMismatch, offset, member, "crc32 %08x, trailer says %08x", got, wantCRC)
	}
	if c.size != wantISIZE {
		return newErr(SizeMismatch, offset, member, "decompressed %d bytes, trailer says %d", c.size, wantISIZE)
	}
	return nil
}

// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

// Block decoders, §4.E. The overall state-machine shape here — read a
// few header bits, switch on a small integer field, loop until a
// terminal condition — mirrors bzip2's own readBlock, which does the
// same thing for bzip2's block header. The code-length RLE expansion
// in decodeDynamicBlock (codes 16/17/18) follows the repeat/previous-
// length state machine used by common DEFLATE inflate implementations.

// decodeStream decodes a full DEFLATE bit stream: a sequence of
// blocks terminated by one with BFINAL=1. It writes decompressed
// bytes into win (for back-references), out (the paged sink) and,
// when non-nil, crc (the member's running checksum).
func decodeStream(br *bitReader, win *window, out *outputBuffer, crc *memberChecksum, member int) error {
	for {
		final := br.readBits(1)
		btype := br.readBits(2)
		if br.err != nil {
			return locate(br.err, br.offset(), member)
		}

		var err error
		switch btype {
		case 0:
			err = decodeStoredBlock(br, win, out, crc, member)
		case 1:
			err = decodeFixedBlock(br, win, out, crc, member)
		case 2:
			err = decodeDynamicBlock(br, win, out, crc, member)
		default:
			err = newErr(ReservedBlockType, br.offset(), member, "BTYPE=3")
		}
		if err != nil {
			return err
		}
		if final == 1 {
			return nil
		}
	}
}

// outputByte emits a single decompressed literal byte to the window,
// the optional checksum, and the paged sink, in that order.
func outputByte(win *window, out *outputBuffer, crc *memberChecksum, b byte) error {
	win.emit(b)
	if crc != nil {
		crc.writeByte(b)
	}
	return out.writeByte(b)
}

// decodeStoredBlock handles BTYPE=00 (§4.E.1): the remaining bits of
// the current byte are discarded, then a 4-byte LEN/NLEN header and
// LEN bytes of literal payload follow, all byte-aligned.
func decodeStoredBlock(br *bitReader, win *window, out *outputBuffer, crc *memberChecksum, member int) error {
	br.alignToByte()

	lenLo := br.readAlignedByte()
	lenHi := br.readAlignedByte()
	nlenLo := br.readAlignedByte()
	nlenHi := br.readAlignedByte()
	if br.err != nil {
		return locate(br.err, br.offset(), member)
	}

	length := int(lenLo) | int(lenHi)<<8
	nlen := int(nlenLo) | int(nlenHi)<<8
	if length != (^nlen)&0xffff {
		return newErr(StoredLengthMismatch, br.offset(), member, "LEN=%d does not match ^NLEN=%d", length, (^nlen)&0xffff)
	}

	for i := 0; i < length; i++ {
		b := br.readAlignedByte()
		if br.err != nil {
			return locate(br.err, br.offset(), member)
		}
		if err := outputByte(win, out, crc, b); err != nil {
			return err
		}
	}
	return nil
}

// decodeFixedBlock handles BTYPE=01 (§4.E.2): the literal/length and
// distance alphabets are the fixed ones defined by RFC 1951 §3.2.6,
// rebuilt fresh for each fixed block rather than cached — cheap
// enough (288+30 symbols) that simple, allocate-as-needed code wins
// over a package-level cache.
func decodeFixedBlock(br *bitReader, win *window, out *outputBuffer, crc *memberChecksum, member int) error {
	litTable, err := newDecodeTable(fixedLitLengths(), litLenLimit)
	if err != nil {
		return locate(err, br.offset(), member)
	}
	distTable, err := newDecodeTable(fixedDistLengths(), distLimit)
	if err != nil {
		return locate(err, br.offset(), member)
	}
	return decodeSymbols(br, win, out, crc, member, litTable, distTable)
}

// decodeDynamicBlock handles BTYPE=10 (§4.E.3): a per-block header
// describes the literal/length and distance code tables, themselves
// encoded with a third, smaller "code length" alphabet that is in
// turn RLE-compressed with repeat codes 16/17/18.
func decodeDynamicBlock(br *bitReader, win *window, out *outputBuffer, crc *memberChecksum, member int) error {
	hlit := int(br.readBits(5)) + 257
	hdist := int(br.readBits(5)) + 1
	hclen := int(br.readBits(4)) + 4
	if br.err != nil {
		return locate(br.err, br.offset(), member)
	}

	var clLengths [maxCodeLenSymbols]uint8
	for i := 0; i < hclen; i++ {
		clLengths[codeLengthOrder[i]] = uint8(br.readBits(3))
	}
	if br.err != nil {
		return locate(br.err, br.offset(), member)
	}

	clTable, err := newDecodeTable(clLengths[:], codeLenLimit)
	if err != nil {
		return locate(err, br.offset(), member)
	}

	total := hlit + hdist
	lengths := make([]uint8, total)
	i := 0
	for i < total {
		sym, err := clTable.decode(br)
		if err != nil {
			return locate(err, br.offset(), member)
		}

		switch {
		case sym < 16:
			lengths[i] = uint8(sym)
			i++

		case sym == 16:
			if i == 0 {
				return newErr(NoPreviousLength, br.offset(), member, "repeat code 16 before any length is set")
			}
			count := int(br.readBits(2)) + 3
			if br.err != nil {
				return locate(br.err, br.offset(), member)
			}
			if i+count > total {
				return newErr(RepeatOverflow, br.offset(), member, "repeat of %d overflows %d remaining symbols", count, total-i)
			}
			prev := lengths[i-1]
			for j := 0; j < count; j++ {
				lengths[i] = prev
				i++
			}

		case sym == 17:
			count := int(br.readBits(3)) + 3
			if br.err != nil {
				return locate(br.err, br.offset(), member)
			}
			if i+count > total {
				return newErr(RepeatOverflow, br.offset(), member, "repeat of %d overflows %d remaining symbols", count, total-i)
			}
			i += count

		case sym == 18:
			count := int(br.readBits(7)) + 11
			if br.err != nil {
				return locate(br.err, br.offset(), member)
			}
			if i+count > total {
				return newErr(RepeatOverflow, br.offset(), member, "repeat of %d overflows %d remaining symbols", count, total-i)
			}
			i += count

		default:
			return newErr(DynamicHeader, br.offset(), member, "invalid code length symbol %d", sym)
		}
	}

	litTable, err := newDecodeTable(lengths[:hlit], litLenLimit)
	if err != nil {
		return locate(err, br.offset(), member)
	}
	distTable, err := newDecodeTable(lengths[hlit:], distLimit)
	if err != nil {
		return locate(err, br.offset(), member)
	}
	return decodeSymbols(br, win, out, crc, member, litTable, distTable)
}

// decodeSymbols is the shared literal/length/distance loop (§4.E.4)
// used by both the fixed and dynamic block decoders once their
// respective Huffman tables are built.
func decodeSymbols(br *bitReader, win *window, out *outputBuffer, crc *memberChecksum, member int, litTable, distTable *decodeTable) error {
	for {
		sym, err := litTable.decode(br)
		if err != nil {
			return locate(err, br.offset(), member)
		}

		switch {
		case sym < 256:
			if err := outputByte(win, out, crc, byte(sym)); err != nil {
				return err
			}
			continue

		case sym == 256:
			return nil

		case sym <= 285:
			lengthIdx := sym - 257
			extraBits := lengthExtraBits[lengthIdx]
			extra := br.readBits(extraBits)
			if br.err != nil {
				return locate(br.err, br.offset(), member)
			}
			if lengthIdx == 27 && extra == 31 {
				return newErr(InvalidLengthExtra, br.offset(), member, "code 284 with extra 31 duplicates code 285's length")
			}
			length := lengthBase[lengthIdx] + int(extra)

			distSym, err := distTable.decode(br)
			if err != nil {
				return locate(err, br.offset(), member)
			}
			if distSym >= len(distBase) {
				return newErr(InvalidSymbol, br.offset(), member, "distance symbol %d out of range", distSym)
			}
			distExtra := br.readBits(distExtraBits[distSym])
			if br.err != nil {
				return locate(br.err, br.offset(), member)
			}
			distance := distBase[distSym] + int(distExtra)

			sink := func(b byte) error {
				if crc != nil {
					crc.writeByte(b)
				}
				return out.writeByte(b)
			}
			if err := win.copyBackref(length, distance, sink); err != nil {
				return locate(err, br.offset(), member)
			}

		default:
			return newErr(InvalidSymbol, br.offset(), member, "literal/length symbol %d out of range", sym)
		}
	}
}

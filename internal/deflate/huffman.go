// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

// This file implements two separate pieces: building the canonical bit
// pattern for each symbol from a vector of code lengths (§4.B, RFC
// 1951 §3.2.2's first_code recurrence), and turning those patterns
// into a decode table capable of walking the bit stream one bit at a
// time (§4.C). bzip2's own huffman.go builds its decode tree the same
// way — a child-indexed array of nodes grown on demand, with symbols
// planted as leaves — but gets there by sorting (length, symbol) pairs
// and assigning MSB-packed uint32 codes in sorted order. That shortcut
// works for bzip2's encoder-supplied, already-canonical tables; DEFLATE
// requires reconstructing canonical codes purely from a transmitted
// length vector, so buildCanonicalCode below follows the first_code
// recurrence directly instead of sorting.

// buildCanonicalCode computes the canonical bit pattern for every
// symbol in lengths (0 meaning "symbol unused"), per RFC 1951 §3.2.2:
//
//	count[0] = 0
//	for length in 1..limit:
//	    code = (code + count[length-1]) << 1
//	    first_code[length] = code
//	for symbol in ascending order:
//	    if lengths[symbol] != 0:
//	        patterns[symbol] = first_code[lengths[symbol]]
//	        first_code[lengths[symbol]]++
//
// It returns InvalidLengths if any length exceeds limit.
func buildCanonicalCode(lengths []uint8, limit uint) ([]uint16, error) {
	var count [maxCodeLenLimit + 1]int
	for _, l := range lengths {
		if uint(l) > limit {
			return nil, newBareErr(InvalidLengths, "code length %d exceeds limit %d", l, limit)
		}
		count[l]++
	}
	count[0] = 0

	next := make([]int, limit+2)
	code := 0
	for length := uint(1); length <= limit; length++ {
		code = (code + count[length-1]) << 1
		next[length] = code
	}

	patterns := make([]uint16, len(lengths))
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		patterns[sym] = uint16(next[l])
		next[l]++
	}
	return patterns, nil
}

// maxCodeLenLimit bounds the fixed-size count array above; the
// largest limit any alphabet in this format uses is litLenLimit (15).
const maxCodeLenLimit = litLenLimit

// childKind records what a decodeNode's child slot currently holds.
type childKind uint8

const (
	childUnset childKind = iota
	childInterior
	childLeaf
)

// decodeNode is one node of the decode tree, keyed by the next bit
// read from the stream: kind[0]/idx[0] for bit 0 (left), kind[1]/idx[1]
// for bit 1 (right). An interior idx indexes into decodeTable.nodes; a
// leaf idx is the decoded symbol value.
type decodeNode struct {
	kind [2]childKind
	idx  [2]int32
}

// decodeTable is a Huffman decode tree built by walking each symbol's
// canonical pattern from its most significant bit down to its least
// significant bit — the same direction the bits arrive in the stream,
// so decode is a plain bit-by-bit descent.
type decodeTable struct {
	nodes []decodeNode
}

// newDecodeTable builds a decode tree from a code-length vector,
// computing canonical patterns internally. It returns MalformedCodes
// for any prefix collision (which is how an over-full code set shows
// up) or an empty code set, and InvalidLengths for an out-of-range
// length. An incomplete code set is accepted; decode reports
// MalformedCodes only if the stream walks into an unused path.
func newDecodeTable(lengths []uint8, limit uint) (*decodeTable, error) {
	patterns, err := buildCanonicalCode(lengths, limit)
	if err != nil {
		return nil, err
	}
	t := &decodeTable{}
	used := 0
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		if err := t.insert(sym, l, patterns[sym]); err != nil {
			return nil, err
		}
		used++
	}
	if used == 0 {
		return nil, newBareErr(MalformedCodes, "code set with no symbols")
	}
	return t, nil
}

func (t *decodeTable) ensureRoot() int32 {
	if len(t.nodes) == 0 {
		t.nodes = append(t.nodes, decodeNode{})
	}
	return 0
}

// insert plants symbol at the position described by pattern's low
// length bits, creating interior nodes on demand. A single-symbol
// alphabet (length 1, as the degenerate "only one distance code used"
// case in a dynamic block permits) is planted directly at the root.
func (t *decodeTable) insert(symbol int, length uint8, pattern uint16) error {
	idx := t.ensureRoot()
	for level := int(length) - 1; level >= 1; level-- {
		bit := (pattern >> uint(level)) & 1
		switch t.nodes[idx].kind[bit] {
		case childUnset:
			newIdx := int32(len(t.nodes))
			t.nodes = append(t.nodes, decodeNode{})
			t.nodes[idx].kind[bit] = childInterior
			t.nodes[idx].idx[bit] = newIdx
			idx = newIdx
		case childInterior:
			idx = t.nodes[idx].idx[bit]
		case childLeaf:
			return newBareErr(MalformedCodes, "code for symbol %d is a prefix of an existing leaf", symbol)
		}
	}
	bit := pattern & 1
	node := &t.nodes[idx]
	if node.kind[bit] != childUnset {
		return newBareErr(MalformedCodes, "code for symbol %d collides with an existing code", symbol)
	}
	node.kind[bit] = childLeaf
	node.idx[bit] = int32(symbol)
	return nil
}

// decode consumes bits one at a time from br, descending the tree
// until a leaf is reached, and returns the leaf's symbol. It returns
// MalformedCodes if the stream encodes a bit pattern with no leaf
// (i.e. the code set was incomplete and this path was never used).
func (t *decodeTable) decode(br *bitReader) (int, error) {
	if len(t.nodes) == 0 {
		return 0, newBareErr(MalformedCodes, "empty code set")
	}
	idx := int32(0)
	for {
		bit := br.readBit()
		if br.err != nil {
			return 0, br.err
		}
		node := &t.nodes[idx]
		switch node.kind[bit] {
		case childLeaf:
			return int(node.idx[bit]), nil
		case childInterior:
			idx = node.idx[bit]
		default:
			return 0, newBareErr(MalformedCodes, "bit pattern not present in code set")
		}
	}
}

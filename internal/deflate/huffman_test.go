// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

import "testing"

// TestBuildCanonicalCodeRFCExample reproduces RFC 1951 §3.2.2's worked
// example: an eight-symbol alphabet A..H with lengths 3,3,3,3,3,2,4,4.
func TestBuildCanonicalCodeRFCExample(t *testing.T) {
	lengths := []uint8{3, 3, 3, 3, 3, 2, 4, 4} // A B C D E F G H
	want := []uint16{2, 3, 4, 5, 6, 0, 14, 15}

	got, err := buildCanonicalCode(lengths, 4)
	if err != nil {
		t.Fatalf("buildCanonicalCode: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbol %d: pattern = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBuildCanonicalCodeExceedsLimit(t *testing.T) {
	_, err := buildCanonicalCode([]uint8{16}, litLenLimit)
	if err == nil {
		t.Fatal("expected an error for a length exceeding the limit")
	}
	de, ok := err.(*Error)
	if !ok || de.Kind != InvalidLengths {
		t.Fatalf("got %v, want InvalidLengths", err)
	}
}

func TestNewDecodeTableSingleSymbol(t *testing.T) {
	// A single-symbol alphabet (as a degenerate distance table can be)
	// plants its one leaf directly at the root.
	table, err := newDecodeTable([]uint8{1}, distLimit)
	if err != nil {
		t.Fatalf("newDecodeTable: %v", err)
	}
	br := newBitReader([]byte{0x00})
	sym, err := table.decode(&br)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sym != 0 {
		t.Fatalf("decode() = %d, want 0", sym)
	}
}

func TestNewDecodeTableIncompleteCodeSetRejectsUnusedPath(t *testing.T) {
	// Two symbols of length 2 leave half the tree unclaimed; a bit
	// pattern that walks into the unclaimed half must fail rather
	// than panic.
	table, err := newDecodeTable([]uint8{2, 2}, litLenLimit)
	if err != nil {
		t.Fatalf("newDecodeTable: %v", err)
	}
	// Symbol 0 -> pattern 0 (00), symbol 1 -> pattern 1 (01). Bit
	// sequence "1x" (MSB 1 first) has no leaf.
	br := newBitReader([]byte{0x01}) // bit0=1, bit1=0,...
	if _, err := table.decode(&br); err == nil {
		t.Fatal("expected MalformedCodes for an unused code path")
	} else if de, ok := err.(*Error); !ok || de.Kind != MalformedCodes {
		t.Fatalf("got %v, want MalformedCodes", err)
	}
}

func TestNewDecodeTableNoSymbols(t *testing.T) {
	_, err := newDecodeTable([]uint8{0, 0, 0}, litLenLimit)
	if err == nil {
		t.Fatal("expected an error for an all-zero length vector")
	}
	if de, ok := err.(*Error); !ok || de.Kind != MalformedCodes {
		t.Fatalf("got %v, want MalformedCodes", err)
	}
}

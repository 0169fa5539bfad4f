// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

// Constant reference tables from RFC 1951. These are laid out once as
// package-level arrays rather than derived at runtime, the same way
// bzip2's own magic numbers and fixed tables sit in plain var blocks.

// lengthBase and lengthExtraBits give, for length code symbols
// 257..285 (indexed from 0), the base length and number of extra bits,
// per RFC 1951 §3.2.5.
var lengthBase = [29]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
	15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtraBits = [29]uint{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
	1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distBase and distExtraBits give, for distance code symbols 0..29,
// the base distance and number of extra bits.
var distBase = [30]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
	33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
	1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}

var distExtraBits = [30]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// fixedLitLengths are the code lengths for the fixed literal/length
// alphabet, RFC 1951 §3.2.6.
func fixedLitLengths() []uint8 {
	lens := make([]uint8, 288)
	for i := 0; i < 144; i++ {
		lens[i] = 8
	}
	for i := 144; i < 256; i++ {
		lens[i] = 9
	}
	for i := 256; i < 280; i++ {
		lens[i] = 7
	}
	for i := 280; i < 288; i++ {
		lens[i] = 8
	}
	return lens
}

// fixedDistLengths are the code lengths for the fixed distance
// alphabet: all 30 codes have length 5.
func fixedDistLengths() []uint8 {
	lens := make([]uint8, 30)
	for i := range lens {
		lens[i] = 5
	}
	return lens
}

// codeLengthOrder is the order in which code-length-alphabet lengths
// are transmitted in a dynamic block header, per RFC 1951 §3.2.7.
var codeLengthOrder = [19]int{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

const (
	maxLitLenSymbols  = 288
	maxDistSymbols    = 32
	maxCodeLenSymbols = 19

	litLenLimit  = 15
	distLimit    = 15
	codeLenLimit = 7

	windowSize = 32768
	pageSize   = 8192
)

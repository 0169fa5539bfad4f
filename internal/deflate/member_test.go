// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

import (
	"bytes"
	gzip "compress/gzip"
	"testing"
)

// encodeGzip builds a real gzip member via the standard library,
// purely as a reference encoder for fixtures -- this package's own
// decoder is what's under test, never compress/gzip's reader.
func encodeGzip(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip.Write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip.Close: %v", err)
	}
	return buf.Bytes()
}

func TestDecompressSingleMember(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog, repeated: the quick brown fox jumps over the lazy dog")
	src := encodeGzip(t, payload)

	var out bytes.Buffer
	stats, err := Decompress(src, &out, Options{})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if out.String() != string(payload) {
		t.Fatalf("decompressed mismatch: got %d bytes, want %d", out.Len(), len(payload))
	}
	if stats.Members != 1 {
		t.Fatalf("Members = %d, want 1", stats.Members)
	}
}

func TestDecompressMultiMember(t *testing.T) {
	a := encodeGzip(t, []byte("first member "))
	b := encodeGzip(t, []byte("second member"))
	src := append(append([]byte{}, a...), b...)

	var out bytes.Buffer
	stats, err := Decompress(src, &out, Options{})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if out.String() != "first member second member" {
		t.Fatalf("decompressed = %q", out.String())
	}
	if stats.Members != 2 {
		t.Fatalf("Members = %d, want 2", stats.Members)
	}
}

func TestDecompressChecksumValidation(t *testing.T) {
	payload := []byte("checksum me")
	src := encodeGzip(t, payload)

	var out bytes.Buffer
	if _, err := Decompress(src, &out, Options{ValidateChecksums: true}); err != nil {
		t.Fatalf("Decompress with validation: %v", err)
	}

	// Corrupt the trailer's CRC field (last 8 bytes are CRC32+ISIZE).
	corrupt := append([]byte{}, src...)
	corrupt[len(corrupt)-8] ^= 0xff
	out.Reset()
	_, err := Decompress(corrupt, &out, Options{ValidateChecksums: true})
	if err == nil {
		t.Fatal("expected a checksum mismatch")
	}
	if de, ok := err.(*Error); !ok || de.Kind != ChecksumMismatch {
		t.Fatalf("got %v, want ChecksumMismatch", err)
	}
}

func TestDecompressBadMagic(t *testing.T) {
	_, err := Decompress([]byte{0x00, 0x00, 0x00}, &bytes.Buffer{}, Options{})
	if err == nil {
		t.Fatal("expected BadMagic")
	}
	if de, ok := err.(*Error); !ok || de.Kind != BadMagic {
		t.Fatalf("got %v, want BadMagic", err)
	}
}

func TestDecompressUnsupportedMethod(t *testing.T) {
	src := encodeGzip(t, []byte("x"))
	src[2] = 0 // CM field
	_, err := Decompress(src, &bytes.Buffer{}, Options{})
	if err == nil {
		t.Fatal("expected UnsupportedMethod")
	}
	if de, ok := err.(*Error); !ok || de.Kind != UnsupportedMethod {
		t.Fatalf("got %v, want UnsupportedMethod", err)
	}
}

func TestDecompressReservedFlagBits(t *testing.T) {
	src := encodeGzip(t, []byte("x"))
	src[3] |= 0x20 // set a reserved FLG bit
	_, err := Decompress(src, &bytes.Buffer{}, Options{})
	if err == nil {
		t.Fatal("expected ReservedFlagBits")
	}
	if de, ok := err.(*Error); !ok || de.Kind != ReservedFlagBits {
		t.Fatalf("got %v, want ReservedFlagBits", err)
	}
}

func TestDecompressTruncated(t *testing.T) {
	src := encodeGzip(t, []byte("truncate this input"))
	_, err := Decompress(src[:len(src)-10], &bytes.Buffer{}, Options{})
	if err == nil {
		t.Fatal("expected Truncated")
	}
	if de, ok := err.(*Error); !ok || de.Kind != Truncated {
		t.Fatalf("got %v, want Truncated", err)
	}
}

func TestDecompressEmptyInput(t *testing.T) {
	_, err := Decompress(nil, &bytes.Buffer{}, Options{})
	if err == nil {
		t.Fatal("expected an error for empty input")
	}
}

func TestDecompressMaxMembers(t *testing.T) {
	a := encodeGzip(t, []byte("one"))
	b := encodeGzip(t, []byte("two"))
	src := append(append([]byte{}, a...), b...)

	var out bytes.Buffer
	stats, err := Decompress(src, &out, Options{MaxMembers: 1})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if stats.Members != 1 {
		t.Fatalf("Members = %d, want 1", stats.Members)
	}
	if out.String() != "one" {
		t.Fatalf("decompressed = %q, want %q", out.String(), "one")
	}
}

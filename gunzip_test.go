// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gunzip_test

import (
	"bytes"
	gzip "compress/gzip"
	"fmt"
	"io"
	"testing"

	"github.com/go-compress/gunzip"
)

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

func TestDecompressRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"empty payload", []byte{}},
		{"short", []byte("hi")},
		{"repeats", bytes.Repeat([]byte("abcabcabc"), 200)},
		{"binary", func() []byte {
			b := make([]byte, 4096)
			for i := range b {
				b[i] = byte(i * 7)
			}
			return b
		}()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := encodeGzip(t, tc.data)
			var out bytes.Buffer
			stats, err := gunzip.Decompress(src, &out)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(out.Bytes(), tc.data) {
				t.Fatalf("round trip mismatch: got %d bytes, want %d", out.Len(), len(tc.data))
			}
			if stats.Members != 1 {
				t.Fatalf("Members = %d, want 1", stats.Members)
			}
		})
	}
}

func TestNewReader(t *testing.T) {
	src := encodeGzip(t, []byte("via io.Reader"))
	rd, err := gunzip.NewReader(src)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := io.ReadAll(rd)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "via io.Reader" {
		t.Fatalf("got %q", got)
	}
}

func TestWithProgress(t *testing.T) {
	a := encodeGzip(t, []byte("one"))
	b := encodeGzip(t, []byte("two"))
	src := append(append([]byte{}, a...), b...)

	ch := make(chan gunzip.Progress, 2)
	var out bytes.Buffer
	_, err := gunzip.Decompress(src, &out, gunzip.WithProgress(ch))
	close(ch)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	var members []int
	for p := range ch {
		members = append(members, p.Member)
	}
	if len(members) != 2 || members[0] != 0 || members[1] != 1 {
		t.Fatalf("progress members = %v, want [0 1]", members)
	}
}

func TestWithChecksumValidationCatchesCorruption(t *testing.T) {
	src := encodeGzip(t, []byte("integrity matters"))
	src[len(src)-1] ^= 0xff // corrupt ISIZE's high byte

	var out bytes.Buffer
	_, err := gunzip.Decompress(src, &out, gunzip.WithChecksumValidation(true))
	if err == nil {
		t.Fatal("expected a size or checksum mismatch")
	}
	gzErr, ok := err.(*gunzip.Error)
	if !ok {
		t.Fatalf("err is %T, want *gunzip.Error", err)
	}
	if gzErr.Kind != gunzip.SizeMismatch && gzErr.Kind != gunzip.ChecksumMismatch {
		t.Fatalf("Kind = %v, want SizeMismatch or ChecksumMismatch", gzErr.Kind)
	}
}

func ExampleDecompress() {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("A"))
	zw.Close()

	var out bytes.Buffer
	if _, err := gunzip.Decompress(buf.Bytes(), &out); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(out.String())
	// Output: A
}

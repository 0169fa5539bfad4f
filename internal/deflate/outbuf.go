// Copyright 2024 The gunzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

import "io"

// outputBuffer pages decompressed bytes into fixed pageSize (8 KiB)
// chunks before handing them to the sink (§4.G). bzip2 has no
// equivalent of its own — its reader.Read fills the caller's buffer
// directly — so this is new, shaped after the buffer-then-flush-on-full
// convention of the standard library's bufio.Writer.
type outputBuffer struct {
	w   io.Writer
	buf [pageSize]byte
	n   int

	total int64 // bytes flushed so far, across every member of the call
}

func newOutputBuffer(w io.Writer) *outputBuffer {
	return &outputBuffer{w: w}
}

// writeByte buffers a single decompressed byte, flushing the page
// first if it is already full.
func (o *outputBuffer) writeByte(b byte) error {
	if o.n == pageSize {
		if err := o.flush(); err != nil {
			return err
		}
	}
	o.buf[o.n] = b
	o.n++
	return nil
}

// flush writes any buffered bytes to the sink. A short write (n <
// len(p) with no error, or any error) is reported as SinkWriteShort;
// the sink's own error is not retried or distinguished further, since
// a truncated write into it is terminal either way.
func (o *outputBuffer) flush() error {
	if o.n == 0 {
		return nil
	}
	n, err := o.w.Write(o.buf[:o.n])
	o.total += int64(n)
	if err != nil || n != o.n {
		return newBareErr(SinkWriteShort, "wrote %d of %d buffered bytes: %v", n, o.n, err)
	}
	o.n = 0
	return nil
}

// bytesWritten reports the total number of decompressed bytes across
// the buffer's lifetime, including anything still buffered but not yet
// flushed — used for Stats.BytesOut and Progress.BytesOut.
func (o *outputBuffer) bytesWritten() int64 {
	return o.total + int64(o.n)
}

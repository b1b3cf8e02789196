// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"io"
)

// bWriter implements a ByteWriter on top of a Writer.
type bWriter struct {
	io.Writer
	a [1]byte
}

// WriteByte writes a single byte. If the byte couldn't be written an error
// is returned.
func (bw *bWriter) WriteByte(c byte) error {
	bw.a[0] = c
	n, err := bw.Write(bw.a[:])
	if n == 0 && err == nil {
		panic("WriteByte: Write returned 0 without error")
	}
	return err
}

// newByteWriter converts a Writer into a ByteWriter.
func newByteWriter(w io.Writer) io.ByteWriter {
	if bw, ok := w.(io.ByteWriter); ok {
		return bw
	}
	return &bWriter{Writer: w}
}

// bReader implements a ByteReader on top of a Reader. It doesn't read ahead,
// so readers for embedded streams stay exactly positioned.
type bReader struct {
	io.Reader
	a [1]byte
}

// ReadByte reads a single byte from the underlying reader.
func (br *bReader) ReadByte() (byte, error) {
	n, err := br.Read(br.a[:])
	if n == 0 {
		if err == nil {
			panic("ReadByte: Read returned 0 without error")
		}
		return 0, err
	}
	return br.a[0], nil
}

// newByteReader converts a Reader into a ByteReader.
func newByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &bReader{Reader: r}
}

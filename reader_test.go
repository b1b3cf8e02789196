// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"io"
	"testing"
)

func TestReaderEmptyStream(t *testing.T) {
	buf := new(bytes.Buffer)
	w, err := NewWriter(buf)
	if err != nil {
		t.Fatalf("NewWriter(buf) error %s", err)
	}
	if err = w.Finish(); err != nil {
		t.Fatalf("w.Finish() error %s", err)
	}

	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader(buf) error %s", err)
	}
	g, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("io.ReadAll(r) error %s", err)
	}
	if len(g) != 0 {
		t.Fatalf("empty stream decoded to %d bytes", len(g))
	}
}

func TestReaderEmptyStreamSizeInHeader(t *testing.T) {
	buf := new(bytes.Buffer)
	w, err := NewWriterConfig(buf, WriterConfig{SizeInHeader: true})
	if err != nil {
		t.Fatalf("NewWriterConfig error %s", err)
	}
	if _, err = w.Write([]byte{'x'}); err != ErrNoSpace {
		t.Fatalf("w.Write returns %v; want %v", err, ErrNoSpace)
	}
	if err = w.Finish(); err != nil {
		t.Fatalf("w.Finish() error %s", err)
	}

	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader(buf) error %s", err)
	}
	g, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("io.ReadAll(r) error %s", err)
	}
	if len(g) != 0 {
		t.Fatalf("empty stream decoded to %d bytes", len(g))
	}
}

func TestReaderTruncatedHeader(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{0x5d, 0, 0}))
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("NewReader returns %v; want %v",
			err, io.ErrUnexpectedEOF)
	}
}

func TestReaderTruncatedStream(t *testing.T) {
	const s = "==foobar==foobar=="

	buf := new(bytes.Buffer)
	w, err := NewWriter(buf)
	if err != nil {
		t.Fatalf("NewWriter(buf) error %s", err)
	}
	if _, err = io.WriteString(w, s); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Finish(); err != nil {
		t.Fatalf("w.Finish() error %s", err)
	}
	p := buf.Bytes()
	p = p[:len(p)-3]

	r, err := NewReader(bytes.NewReader(p))
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	if _, err = io.ReadAll(r); err != io.ErrUnexpectedEOF {
		t.Fatalf("io.ReadAll returns %v; want %v",
			err, io.ErrUnexpectedEOF)
	}
}

func TestReaderInvalidFirstByte(t *testing.T) {
	var h params
	h.props = Properties{3, 0, 2}
	h.dictSize = minDictSize
	h.uncompressedSize = eosSize
	// the first byte after the header must be zero
	p := append(h.append(nil), 0x01, 0, 0, 0, 0)

	_, err := NewReader(bytes.NewReader(p))
	if err == nil {
		t.Fatalf("NewReader accepts a non-zero first stream byte")
	}
}

func TestReaderInvalidProperties(t *testing.T) {
	p := []byte{0xff, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	if _, err := NewReader(bytes.NewReader(p)); err == nil {
		t.Fatalf("NewReader accepts invalid properties byte")
	}
}

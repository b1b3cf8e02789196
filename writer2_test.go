// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"
)

func TestUncompressedWriterChunks(t *testing.T) {
	buf := new(bytes.Buffer)
	w, err := NewWriter2Config(buf, Writer2Config{Uncompressed: true})
	if err != nil {
		t.Fatalf("NewWriter2Config error %s", err)
	}

	data := make([]byte, maxChunkSize)
	for i := range data {
		data[i] = byte(i)
	}
	if _, err = w.Write(data); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Finish(); err != nil {
		t.Fatalf("w.Finish() error %s", err)
	}

	p := buf.Bytes()
	wantLen := 3 + maxChunkSize + 1
	if len(p) != wantLen {
		t.Fatalf("stream has %d bytes; want %d", len(p), wantLen)
	}
	if p[0] != cUD {
		t.Fatalf("control byte %#02x; want %#02x", p[0], cUD)
	}
	if size := int(getBE16(p[1:3])) + 1; size != maxChunkSize {
		t.Fatalf("size field gives %d; want %d", size, maxChunkSize)
	}
	if !bytes.Equal(p[3:3+maxChunkSize], data) {
		t.Fatalf("chunk payload differs from input")
	}
	if p[len(p)-1] != cEOS {
		t.Fatalf("last byte %#02x; want terminator %#02x",
			p[len(p)-1], cEOS)
	}
}

func TestUncompressedWriterSecondChunk(t *testing.T) {
	buf := new(bytes.Buffer)
	w, err := NewWriter2Config(buf, Writer2Config{Uncompressed: true})
	if err != nil {
		t.Fatalf("NewWriter2Config error %s", err)
	}

	data := make([]byte, maxChunkSize+1)
	if _, err = w.Write(data); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Finish(); err != nil {
		t.Fatalf("w.Finish() error %s", err)
	}

	p := buf.Bytes()
	wantLen := 3 + maxChunkSize + 3 + 1 + 1
	if len(p) != wantLen {
		t.Fatalf("stream has %d bytes; want %d", len(p), wantLen)
	}
	if p[0] != cUD {
		t.Fatalf("first control byte %#02x; want %#02x", p[0], cUD)
	}
	q := p[3+maxChunkSize:]
	if q[0] != cU {
		t.Fatalf("second control byte %#02x; want %#02x", q[0], cU)
	}
	if size := int(getBE16(q[1:3])) + 1; size != 1 {
		t.Fatalf("second size field gives %d; want 1", size)
	}
	if q[4] != cEOS {
		t.Fatalf("last byte %#02x; want terminator %#02x", q[4], cEOS)
	}
}

func TestUncompressedWriterTerminatorOnce(t *testing.T) {
	buf := new(bytes.Buffer)
	w, err := NewWriter2Config(buf, Writer2Config{Uncompressed: true})
	if err != nil {
		t.Fatalf("NewWriter2Config error %s", err)
	}
	if _, err = io.WriteString(w, "foobar"); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Finish(); err != nil {
		t.Fatalf("w.Finish() error %s", err)
	}
	n := buf.Len()
	// Close after Finish must not write a second terminator.
	if err = w.Close(); err != nil {
		t.Fatalf("w.Close() error %s", err)
	}
	if buf.Len() != n {
		t.Fatalf("Close after Finish wrote %d bytes", buf.Len()-n)
	}
	if _, err = io.WriteString(w, "x"); err != ErrClosed {
		t.Fatalf("w.Write after Finish returns %v; want %v",
			err, ErrClosed)
	}
}

func TestUncompressedWriterFlush(t *testing.T) {
	buf := new(bytes.Buffer)
	w, err := NewWriter2Config(buf, Writer2Config{Uncompressed: true})
	if err != nil {
		t.Fatalf("NewWriter2Config error %s", err)
	}
	if _, err = io.WriteString(w, "foo"); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Flush(); err != nil {
		t.Fatalf("w.Flush() error %s", err)
	}
	p := buf.Bytes()
	if len(p) != 3+3 {
		t.Fatalf("flushed stream has %d bytes; want %d", len(p), 6)
	}
	if p[len(p)-1] == cEOS {
		t.Fatalf("Flush wrote the terminator")
	}
	if _, err = io.WriteString(w, "bar"); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Finish(); err != nil {
		t.Fatalf("w.Finish() error %s", err)
	}

	r, err := NewReader2(buf)
	if err != nil {
		t.Fatalf("NewReader2 error %s", err)
	}
	sb := new(strings.Builder)
	if _, err = io.Copy(sb, r); err != nil {
		t.Fatalf("io.Copy(sb, r) error %s", err)
	}
	if g := sb.String(); g != "foobar" {
		t.Fatalf("got %q; want %q", g, "foobar")
	}
}

func TestWriter2Simple(t *testing.T) {
	const s = "=====foofoobar==foobar===="

	buf := new(bytes.Buffer)
	w, err := NewWriter2(buf)
	if err != nil {
		t.Fatalf("NewWriter2(buf) error %s", err)
	}
	if _, err = io.WriteString(w, s); err != nil {
		t.Fatalf("io.WriteString(w, %q) error %s", s, err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("w.Close() error %s", err)
	}
	t.Logf("buf.Len() %d; len(s) %d", buf.Len(), len(s))

	r, err := NewReader2(buf)
	if err != nil {
		t.Fatalf("NewReader2(buf) error %s", err)
	}
	sb := new(strings.Builder)
	if _, err = io.Copy(sb, r); err != nil {
		t.Fatalf("io.Copy(sb, r) error %s", err)
	}
	if g := sb.String(); g != s {
		t.Fatalf("got %q; want %q", g, s)
	}
}

func TestWriter2(t *testing.T) {
	tests := []func(rnd *rand.Rand) []byte{
		func(rnd *rand.Rand) []byte {
			return compressibleText(rnd, 300000)
		},
		func(rnd *rand.Rand) []byte {
			// incompressible data exercises the stored chunks
			p := make([]byte, 150000)
			rnd.Read(p)
			return p
		},
		func(rnd *rand.Rand) []byte {
			p := make([]byte, 100000)
			rnd.Read(p)
			return append(p, compressibleText(rnd, 100000)...)
		},
		func(rnd *rand.Rand) []byte {
			// larger than an uncompressed chunk can hold
			return compressibleText(rnd, maxUncompressedChunkSize+4096)
		},
	}
	for i, gen := range tests {
		gen := gen
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			data := gen(rand.New(rand.NewSource(int64(i) + 99)))
			hIn := sha256.Sum256(data)

			buf := new(bytes.Buffer)
			w, err := NewWriter2(buf)
			if err != nil {
				t.Fatalf("NewWriter2 error %s", err)
			}
			if _, err = w.Write(data); err != nil {
				t.Fatalf("w.Write error %s", err)
			}
			if err = w.Close(); err != nil {
				t.Fatalf("w.Close() error %s", err)
			}
			t.Logf("uncompressed: %d bytes; compressed: %d bytes",
				len(data), buf.Len())

			r, err := NewReader2(buf)
			if err != nil {
				t.Fatalf("NewReader2 error %s", err)
			}
			h := sha256.New()
			n, err := io.Copy(h, r)
			if err != nil {
				t.Fatalf("io.Copy(h, r) error %s", err)
			}
			if n != int64(len(data)) {
				t.Fatalf("decompressed %d bytes; want %d",
					n, len(data))
			}
			if !bytes.Equal(h.Sum(nil), hIn[:]) {
				t.Fatalf("hash checksums differ")
			}
		})
	}
}

func TestWriter2Flush(t *testing.T) {
	data := compressibleText(rand.New(rand.NewSource(17)), 100000)
	hIn := sha256.Sum256(data)

	buf := new(bytes.Buffer)
	w, err := NewWriter2(buf)
	if err != nil {
		t.Fatalf("NewWriter2 error %s", err)
	}
	half := len(data) / 2
	if _, err = w.Write(data[:half]); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Flush(); err != nil {
		t.Fatalf("w.Flush() error %s", err)
	}
	// All data written so far must be encoded in complete chunks.
	flushed := buf.Len()
	if flushed == 0 {
		t.Fatalf("Flush didn't write any chunk")
	}
	if _, err = w.Write(data[half:]); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Finish(); err != nil {
		t.Fatalf("w.Finish() error %s", err)
	}

	r, err := NewReader2(buf)
	if err != nil {
		t.Fatalf("NewReader2 error %s", err)
	}
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		t.Fatalf("io.Copy(h, r) error %s", err)
	}
	if n != int64(len(data)) {
		t.Fatalf("decompressed %d bytes; want %d", n, len(data))
	}
	if !bytes.Equal(h.Sum(nil), hIn[:]) {
		t.Fatalf("hash checksums differ")
	}
}

func TestWriter2PresetDict(t *testing.T) {
	dict := []byte("the quick brown fox jumps over the lazy dog ")
	const s = "the quick brown fox jumps over the lazy dog again"

	buf := new(bytes.Buffer)
	w, err := NewWriter2Config(buf, Writer2Config{PresetDict: dict})
	if err != nil {
		t.Fatalf("NewWriter2Config error %s", err)
	}
	if _, err = io.WriteString(w, s); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Finish(); err != nil {
		t.Fatalf("w.Finish() error %s", err)
	}

	r, err := NewReader2Config(buf, Reader2Config{PresetDict: dict})
	if err != nil {
		t.Fatalf("NewReader2Config error %s", err)
	}
	sb := new(strings.Builder)
	if _, err = io.Copy(sb, r); err != nil {
		t.Fatalf("io.Copy(sb, r) error %s", err)
	}
	if g := sb.String(); g != s {
		t.Fatalf("got %q; want %q", g, s)
	}
}

func BenchmarkWriter2(b *testing.B) {
	data := silesiaFile(b)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w, err := NewWriter2(io.Discard)
		if err != nil {
			b.Fatalf("NewWriter2 error %s", err)
		}
		if _, err = w.Write(data); err != nil {
			b.Fatalf("w.Write error %s", err)
		}
		if err = w.Finish(); err != nil {
			b.Fatalf("w.Finish() error %s", err)
		}
	}
}

var errSinkClose = errors.New("sink close failed")

// breakingCloser fails like breakingWriter and also fails on Close.
type breakingCloser struct {
	breakingWriter
}

func (w *breakingCloser) Close() error { return errSinkClose }

func TestUncompressedWriterCloseStickyError(t *testing.T) {
	bw := &breakingWriter{limit: 10}
	w, err := NewWriter2Config(bw, Writer2Config{Uncompressed: true})
	if err != nil {
		t.Fatalf("NewWriter2Config error %s", err)
	}
	data := make([]byte, maxChunkSize)
	if _, err = w.Write(data); err != errSink {
		t.Fatalf("w.Write returns %v; want %v", err, errSink)
	}
	// Close must raise the recorded error again.
	if err = w.Close(); err != errSink {
		t.Fatalf("w.Close() returns %v; want %v", err, errSink)
	}
	if err = w.Close(); err != errSink {
		t.Fatalf("second w.Close() returns %v; want %v", err, errSink)
	}
}

func TestUncompressedWriterCloseErrorPrecedence(t *testing.T) {
	bw := new(breakingCloser)
	w, err := NewWriter2Config(bw, Writer2Config{Uncompressed: true})
	if err != nil {
		t.Fatalf("NewWriter2Config error %s", err)
	}
	if _, err = io.WriteString(w, "foobar"); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	// The failure writing the last chunk wins over the close failure.
	if err = w.Close(); err != errSink {
		t.Fatalf("w.Close() returns %v; want %v", err, errSink)
	}
}

func TestUncompressedWriterCloseSinkError(t *testing.T) {
	bw := &breakingCloser{breakingWriter{limit: 1 << 20}}
	w, err := NewWriter2Config(bw, Writer2Config{Uncompressed: true})
	if err != nil {
		t.Fatalf("NewWriter2Config error %s", err)
	}
	if _, err = io.WriteString(w, "foobar"); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Close(); err != errSinkClose {
		t.Fatalf("w.Close() returns %v; want %v", err, errSinkClose)
	}
	if err = w.Close(); err != ErrClosed {
		t.Fatalf("second w.Close() returns %v; want %v", err, ErrClosed)
	}
}

func TestWriter2CloseTwice(t *testing.T) {
	buf := new(bytes.Buffer)
	w, err := NewWriter2(buf)
	if err != nil {
		t.Fatalf("NewWriter2 error %s", err)
	}
	if _, err = io.WriteString(w, "foobar"); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("w.Close() error %s", err)
	}
	if err = w.Close(); err != ErrClosed {
		t.Fatalf("second w.Close() returns %v; want %v", err, ErrClosed)
	}
}

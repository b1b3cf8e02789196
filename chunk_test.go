// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/ulikunitz/lz"
)

func TestChunkHeaderMarshalling(t *testing.T) {
	tests := []chunkHeader{
		{control: cEOS},
		{control: cU, size: 1},
		{control: cU, size: maxChunkSize},
		{control: cUD, size: 5000},
		{control: cC, size: 2000, compressedSize: 1000},
		{control: cCS, size: maxUncompressedChunkSize,
			compressedSize: maxChunkSize},
		{control: cCSP, size: 3000, compressedSize: 2,
			properties: Properties{3, 0, 2}},
		{control: cCSPD, size: 3000, compressedSize: 3000,
			properties: Properties{2, 1, 1}},
	}
	for _, h := range tests {
		h := h
		t.Run(fmt.Sprintf("%02x", h.control), func(t *testing.T) {
			p, err := h.append(nil)
			if err != nil {
				t.Fatalf("h.append(nil) error %s", err)
			}
			g, err := parseChunkHeader(bytes.NewReader(p))
			if err != nil {
				t.Fatalf("parseChunkHeader error %s", err)
			}
			if h.control == cEOS {
				if g.control != cEOS {
					t.Fatalf("got control %02x; want %02x",
						g.control, cEOS)
				}
				return
			}
			if g != h {
				t.Fatalf("got %+v; want %+v", g, h)
			}
		})
	}
}

func TestChunkHeaderAppendErrors(t *testing.T) {
	tests := []chunkHeader{
		{control: cU, size: 0},
		{control: cU, size: maxChunkSize + 1},
		{control: cC, size: maxUncompressedChunkSize + 1,
			compressedSize: 100},
		{control: cC, size: 100, compressedSize: 0},
		{control: cC, size: 100, compressedSize: maxChunkSize + 1},
		{control: 0x03, size: 100, compressedSize: 100},
	}
	for _, h := range tests {
		if _, err := h.append(nil); err == nil {
			t.Errorf("h.append(nil) for %+v returns no error", h)
		}
	}
}

func TestChunkHeaderParseErrors(t *testing.T) {
	tests := [][]byte{
		{},
		{0x03},
		{cU},
		{cCSPD, 0, 0, 0, 0},
	}
	for _, p := range tests {
		_, err := parseChunkHeader(bytes.NewReader(p))
		if err == nil {
			t.Errorf("parseChunkHeader(% 02x) returns no error", p)
		}
	}
}

func TestChunkStateNext(t *testing.T) {
	tests := []struct {
		s chunkState
		c byte
		w chunkState
	}{
		{sS, cEOS, sF},
		{sS, cUD, s1},
		{sS, cU, sErr},
		{sS, cC, sErr},
		{sS, cCS, sErr},
		{sS, cCSP, sErr},
		{sS, cCSPD, s2},
		{s1, cU, s1},
		{s1, cUD, s1},
		{s1, cC, sErr},
		{s1, cCS, sErr},
		{s1, cCSP, s2},
		{s1, cCSPD, s2},
		{s1, cEOS, sF},
		{s2, cU, s2},
		{s2, cUD, s1},
		{s2, cC, s2},
		{s2, cCS, s2},
		{s2, cCSP, s2},
		{s2, cCSPD, s2},
		{s2, cEOS, sF},
		{sF, cUD, sErr},
		{sErr, cUD, sErr},
	}
	for _, tc := range tests {
		if g := tc.s.next(tc.c); g != tc.w {
			t.Errorf("state %d control %02x: got %d; want %d",
				tc.s, tc.c, g, tc.w)
		}
	}
}

func newTestSequencer(tb testing.TB, windowSize int) (seq lz.Sequencer,
	dictSize int) {
	lzCfg := &lz.DHSConfig{}
	dictSize = fixSeqConfig(lzCfg, windowSize)
	if err := lzCfg.Verify(); err != nil {
		tb.Fatalf("lzCfg.Verify() error %s", err)
	}
	seq, err := lzCfg.NewSequencer()
	if err != nil {
		tb.Fatalf("lzCfg.NewSequencer() error %s", err)
	}
	return seq, dictSize
}

func TestChunkWriterReader(t *testing.T) {
	tests := []func(rnd *rand.Rand) []byte{
		func(rnd *rand.Rand) []byte {
			return []byte("=====foofoobar==foobar====")
		},
		func(rnd *rand.Rand) []byte {
			return compressibleText(rnd, 200000)
		},
		func(rnd *rand.Rand) []byte {
			p := make([]byte, 80000)
			rnd.Read(p)
			return p
		},
	}
	for i, gen := range tests {
		gen := gen
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			data := gen(rand.New(rand.NewSource(int64(i))))
			seq, dictSize := newTestSequencer(t, 1<<16)

			buf := new(bytes.Buffer)
			var cw chunkWriter
			err := cw.init(buf, seq, nil, Properties{3, 0, 2})
			if err != nil {
				t.Fatalf("cw.init error %s", err)
			}
			if _, err = cw.Write(data); err != nil {
				t.Fatalf("cw.Write error %s", err)
			}
			if err = cw.Finish(); err != nil {
				t.Fatalf("cw.Finish() error %s", err)
			}

			var cr chunkReader
			if err = cr.init(buf, dictSize); err != nil {
				t.Fatalf("cr.init error %s", err)
			}
			g, err := io.ReadAll(&cr)
			if err != nil {
				t.Fatalf("io.ReadAll(&cr) error %s", err)
			}
			if !bytes.Equal(g, data) {
				t.Fatalf("decoded data differs from input")
			}
		})
	}
}

func TestChunkWriterReaderPresetDict(t *testing.T) {
	rnd := rand.New(rand.NewSource(43))
	dict := compressibleText(rnd, 30000)
	data := compressibleText(rnd, 60000)
	seq, dictSize := newTestSequencer(t, 1<<16)

	buf := new(bytes.Buffer)
	var cw chunkWriter
	if err := cw.init(buf, seq, dict, Properties{3, 0, 2}); err != nil {
		t.Fatalf("cw.init error %s", err)
	}
	if _, err := cw.Write(data); err != nil {
		t.Fatalf("cw.Write error %s", err)
	}
	if err := cw.Finish(); err != nil {
		t.Fatalf("cw.Finish() error %s", err)
	}

	var cr chunkReader
	if err := cr.init(buf, dictSize); err != nil {
		t.Fatalf("cr.init error %s", err)
	}
	if err := cr.preload(dict, dictSize); err != nil {
		t.Fatalf("cr.preload error %s", err)
	}
	cr.cstate = s1
	g, err := io.ReadAll(&cr)
	if err != nil {
		t.Fatalf("io.ReadAll(&cr) error %s", err)
	}
	if !bytes.Equal(g, data) {
		t.Fatalf("decoded data differs from input")
	}
}

func TestChunkReaderMissingTerminator(t *testing.T) {
	const s = "==foobar==foobar=="

	buf := new(bytes.Buffer)
	w, err := NewWriter2(buf)
	if err != nil {
		t.Fatalf("NewWriter2 error %s", err)
	}
	if _, err = io.WriteString(w, s); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Finish(); err != nil {
		t.Fatalf("w.Finish() error %s", err)
	}
	p := buf.Bytes()
	p = p[:len(p)-1]

	// without the terminating zero byte the stream is truncated
	r, err := NewReader2(bytes.NewReader(p))
	if err != nil {
		t.Fatalf("NewReader2 error %s", err)
	}
	if _, err = io.ReadAll(r); err != io.ErrUnexpectedEOF {
		t.Fatalf("io.ReadAll returns %v; want %v",
			err, io.ErrUnexpectedEOF)
	}

	// with NoEOS the truncated stream reads cleanly
	r, err = NewReader2Config(bytes.NewReader(p),
		Reader2Config{NoEOS: true})
	if err != nil {
		t.Fatalf("NewReader2Config error %s", err)
	}
	g, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("io.ReadAll error %s", err)
	}
	if string(g) != s {
		t.Fatalf("got %q; want %q", g, s)
	}
}

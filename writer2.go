// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"io"

	"github.com/ulikunitz/lz"
)

// StreamWriter is implemented by writers that frame a data stream. Flush
// forces buffered data out to the underlying writer. Finish terminates the
// stream; the writer cannot be used afterwards. Close finishes the stream
// and releases the underlying writer.
type StreamWriter interface {
	io.WriteCloser
	Flush() error
	Finish() error
}

// streamWriter turns a plain io.Writer into a StreamWriter with no-op
// framing.
type streamWriter struct {
	io.Writer
}

func (w streamWriter) Flush() error  { return nil }
func (w streamWriter) Finish() error { return nil }

func (w streamWriter) Close() error {
	if c, ok := w.Writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// asStreamWriter returns z itself if it implements StreamWriter and wraps it
// otherwise.
func asStreamWriter(z io.Writer) StreamWriter {
	if sw, ok := z.(StreamWriter); ok {
		return sw
	}
	return streamWriter{Writer: z}
}

// Writer2Config provides the configuration parameters for an LZMA2 writer.
type Writer2Config struct {
	// DictSize sets the dictionary size.
	DictSize int

	// Properties for the LZMA algorithm.
	Properties Properties
	// ZeroProperties indicates that a zero Properties value is
	// intentional.
	ZeroProperties bool

	// PresetDict provides data the first matches may refer back to. The
	// first chunk will not reset the dictionary.
	PresetDict []byte

	// Uncompressed requests a stream of uncompressed chunks only. No
	// symbol encoding takes place.
	Uncompressed bool

	// Configuration for the LZ compressor.
	LZ SeqConfig
}

// Verify checks whether the configuration is consistent and correct. Usually
// call SetDefaults before this method.
func (cfg *Writer2Config) Verify() error {
	var err error
	if cfg == nil {
		return errors.New("lzma: Writer2Config pointer must not be nil")
	}

	if cfg.Uncompressed {
		return nil
	}

	if cfg.LZ == nil {
		return errors.New("lzma: Writer2Config field LZ is nil")
	}

	if _, _, _, err = windowParams(cfg.LZ); err != nil {
		return err
	}

	if err = cfg.LZ.Verify(); err != nil {
		return err
	}

	if err = cfg.Properties.Verify(); err != nil {
		return err
	}

	if !(minDictSize <= cfg.DictSize && int64(cfg.DictSize) <= maxDictSize) {
		return errors.New("lzma: DictSize out of range")
	}

	return nil
}

// SetDefaults replaces zero values with default values.
func (cfg *Writer2Config) SetDefaults() {
	if cfg.Uncompressed {
		return
	}
	if cfg.LZ == nil {
		cfg.LZ = &lz.DHSConfig{}
	}
	cfg.DictSize = fixSeqConfig(cfg.LZ, cfg.DictSize)

	var zeroProps = Properties{}
	if cfg.Properties == zeroProps && !cfg.ZeroProperties {
		cfg.Properties = Properties{3, 0, 2}
	}
}

// NewWriter2 creates an LZMA2 chunk stream writer with default parameters.
func NewWriter2(z io.Writer) (w StreamWriter, err error) {
	return NewWriter2Config(z, Writer2Config{})
}

// NewWriter2Config creates an LZMA2 chunk stream writer using the given
// configuration.
func NewWriter2Config(z io.Writer, cfg Writer2Config) (w StreamWriter, err error) {
	if z == nil {
		return nil, errors.New("lzma: writer z must not be nil")
	}
	cfg.SetDefaults()
	if err = cfg.Verify(); err != nil {
		return nil, err
	}

	if cfg.Uncompressed {
		u := newUncompressedWriter(asStreamWriter(z))
		if len(cfg.PresetDict) > 0 {
			u.first = false
		}
		return u, nil
	}

	seq, err := cfg.LZ.NewSequencer()
	if err != nil {
		return nil, err
	}
	cw := new(writer2)
	err = cw.w.init(z, seq, cfg.PresetDict, cfg.Properties)
	if err != nil {
		return nil, err
	}
	cw.z = asStreamWriter(z)
	return cw, nil
}

// writer2 produces a stream of compressed LZMA2 chunks with uncompressed
// fallback chunks where compression doesn't pay.
type writer2 struct {
	w chunkWriter
	z StreamWriter
}

func (w *writer2) Write(p []byte) (n int, err error) { return w.w.Write(p) }

// Flush writes all buffered data out as chunks. The chunk boundary resets
// the range coder, so unlike the classic format the chunk stream can be
// flushed at any point.
func (w *writer2) Flush() error {
	if err := w.w.flush(); err != nil {
		return err
	}
	return w.z.Flush()
}

// Finish writes remaining data and the end marker of the chunk stream.
func (w *writer2) Finish() error {
	if err := w.w.Finish(); err != nil {
		return err
	}
	return w.z.Finish()
}

// Close finishes the chunk stream and closes the underlying writer.
func (w *writer2) Close() error {
	err := w.w.Close()
	if err == ErrClosed {
		return ErrClosed
	}
	if cerr := w.z.Close(); err == nil {
		err = cerr
	}
	return err
}

// uncompressedWriter writes a stream of uncompressed chunks. The first
// chunk resets the dictionary; a single zero byte terminates the chunk
// stream.
type uncompressedWriter struct {
	z   StreamWriter
	buf [maxChunkSize]byte
	n   int
	// first is true until the first chunk has been written
	first bool
	// terminated is true after the end marker has been written
	terminated bool
	err        error
}

func newUncompressedWriter(z StreamWriter) *uncompressedWriter {
	return &uncompressedWriter{z: z, first: true}
}

// writeChunk writes the buffered data as a single chunk record and empties
// the buffer.
func (w *uncompressedWriter) writeChunk() error {
	if w.n == 0 {
		return nil
	}
	h := chunkHeader{control: cU, size: w.n}
	if w.first {
		h.control = cUD
	}
	var a [3]byte
	p, err := h.append(a[:0])
	if err != nil {
		return err
	}
	if _, err = w.z.Write(p); err != nil {
		return err
	}
	if _, err = w.z.Write(w.buf[:w.n]); err != nil {
		return err
	}
	w.first = false
	w.n = 0
	return nil
}

func (w *uncompressedWriter) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.terminated {
		return 0, ErrClosed
	}
	for n < len(p) {
		k := copy(w.buf[w.n:], p[n:])
		w.n += k
		n += k
		if w.n == len(w.buf) {
			if err = w.writeChunk(); err != nil {
				w.err = err
				return n, err
			}
		}
	}
	return n, nil
}

// Flush writes buffered data as a short chunk and flushes the underlying
// writer. It doesn't terminate the chunk stream.
func (w *uncompressedWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.terminated {
		return ErrClosed
	}
	if err := w.writeChunk(); err != nil {
		w.err = err
		return err
	}
	return w.z.Flush()
}

// terminate writes remaining buffered data and the end marker. It is
// idempotent.
func (w *uncompressedWriter) terminate() error {
	if w.terminated {
		return nil
	}
	if err := w.writeChunk(); err != nil {
		return err
	}
	if _, err := w.z.Write([]byte{cEOS}); err != nil {
		return err
	}
	w.terminated = true
	return nil
}

// Finish terminates the chunk stream and finishes the underlying writer.
// The end marker is written only once, even if Finish and Close are both
// called.
func (w *uncompressedWriter) Finish() error {
	if w.terminated {
		return nil
	}
	if w.err != nil {
		return w.err
	}
	if err := w.terminate(); err != nil {
		w.err = err
		return err
	}
	return w.z.Finish()
}

// Close terminates the chunk stream and closes the underlying writer. An
// error recorded earlier is raised again; it takes precedence over an error
// from closing the underlying writer.
func (w *uncompressedWriter) Close() error {
	if w.err == ErrClosed {
		return ErrClosed
	}
	err := w.err
	if err == nil {
		if err = w.terminate(); err != nil {
			w.err = err
		}
	}
	if cerr := w.z.Close(); err == nil {
		err = cerr
	}
	if w.err == nil {
		w.err = ErrClosed
	}
	return err
}

// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/lz"
)

const mb = 1 << 20

// Constants for the dictionary size supported by the classic LZMA format.
const (
	minDictSize = 1 << 12
	maxDictSize = 1<<32 - 1
)

// WriterConfig provides the configuration parameters for a classic LZMA
// writer.
type WriterConfig struct {
	// DictSize sets the dictionary size.
	DictSize int

	// Properties for the LZMA algorithm.
	Properties Properties
	// ZeroProperties indicates that a zero Properties value is
	// intentional.
	ZeroProperties bool

	// PresetDict provides data the first matches may refer back to. It
	// cannot be combined with the classic header.
	PresetDict []byte

	// SizeInHeader requests the uncompressed size in the stream header.
	SizeInHeader bool
	// Size of the uncompressed data if SizeInHeader is set.
	Size int64

	// EOSMarker requests an end-of-stream marker after the data.
	EOSMarker bool

	// Configuration for the LZ compressor.
	LZ SeqConfig
}

// SeqConfig is the interface of the sequencer configurations provided by the
// lz package.
type SeqConfig interface {
	lz.Configurator
	ApplyDefaults()
	Verify() error
}

// windowParams provides access to the window parameters of the sequencer
// configurations of the lz package.
func windowParams(c SeqConfig) (windowSize, shrinkSize, blockSize *int, err error) {
	switch cfg := c.(type) {
	case *lz.HSConfig:
		return &cfg.WindowSize, &cfg.ShrinkSize, &cfg.BlockSize, nil
	case *lz.BHSConfig:
		return &cfg.WindowSize, &cfg.ShrinkSize, &cfg.BlockSize, nil
	case *lz.DHSConfig:
		return &cfg.WindowSize, &cfg.ShrinkSize, &cfg.BlockSize, nil
	case *lz.BDHSConfig:
		return &cfg.WindowSize, &cfg.ShrinkSize, &cfg.BlockSize, nil
	case *lz.GSASConfig:
		return &cfg.WindowSize, &cfg.ShrinkSize, &cfg.BlockSize, nil
	default:
		return nil, nil, nil, fmt.Errorf(
			"lzma: unsupported sequencer configuration %T", c)
	}
}

// Verify checks whether the configuration is consistent and correct. Usually
// call SetDefaults before this method.
func (cfg *WriterConfig) Verify() error {
	var err error
	if cfg == nil {
		return errors.New("lzma: WriterConfig pointer must not be nil")
	}

	if cfg.LZ == nil {
		return errors.New("lzma: WriterConfig field LZ is nil")
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

	if cfg.SizeInHeader && cfg.Size < 0 {
		return errors.New("lzma: Size must not be negative")
	}

	return nil
}

// fixSeqConfig aligns the window parameters of the sequencer configuration
// with the dictionary size. The shrunk window must keep enough history for
// the match contexts, so the shrink size is set to half the window unless the
// configuration provides one.
func fixSeqConfig(c SeqConfig, dictSize int) int {
	ws, ss, _, err := windowParams(c)
	if err != nil {
		// Verify will report the unsupported configuration.
		return dictSize
	}
	if dictSize > 0 {
		*ws = dictSize
	}
	if *ws > 0 && *ws < minDictSize {
		*ws = minDictSize
	}
	shrinkSet := *ss != 0
	c.ApplyDefaults()
	if *ws < minDictSize {
		*ws = minDictSize
	}
	if !shrinkSet || *ss >= *ws {
		*ss = *ws / 2
	}
	return *ws
}

// SetDefaults replaces zero values with default values.
func (cfg *WriterConfig) SetDefaults() {
	if cfg.LZ == nil {
		cfg.LZ = &lz.DHSConfig{}
	}
	cfg.DictSize = fixSeqConfig(cfg.LZ, cfg.DictSize)

	var zeroProps = Properties{}
	if cfg.Properties == zeroProps && !cfg.ZeroProperties {
		cfg.Properties = Properties{3, 0, 2}
	}

	if cfg.Size > 0 {
		cfg.SizeInHeader = true
	}
}

// Writer compresses data in the classic LZMA format. It buffers data in the
// dictionary window and encodes it when the buffer runs full, so compressed
// output may trail the Write calls by up to the buffer size. Call Finish or
// Close to encode the remaining data.
type Writer struct {
	z        io.Writer
	seq      lz.Sequencer
	blk      lz.Block
	e        encoder
	props    Properties
	size     int64
	n        int64
	eos      bool
	finished bool
	err      error
}

// NewWriter creates a writer for the classic LZMA format using default
// parameters. The stream will carry the unknown-size marker and will be
// terminated by an end-of-stream marker.
func NewWriter(z io.Writer) (w *Writer, err error) {
	return NewWriterConfig(z, WriterConfig{})
}

// NewWriterConfig creates a writer for the classic LZMA format. The 13-byte
// header is written immediately. If the configuration doesn't provide the
// uncompressed size, the header stores the unknown-size value and the stream
// will be terminated by an end-of-stream marker.
func NewWriterConfig(z io.Writer, cfg WriterConfig) (w *Writer, err error) {
	cfg.SetDefaults()
	if !cfg.SizeInHeader {
		cfg.EOSMarker = true
	}
	return newWriter(z, cfg, true)
}

// NewRawWriter creates a writer producing a raw LZMA stream without the
// classic header. The end-of-stream marker is only written if the
// configuration requests it.
func NewRawWriter(z io.Writer, cfg WriterConfig) (w *Writer, err error) {
	cfg.SetDefaults()
	cfg.SizeInHeader = false
	cfg.Size = 0
	return newWriter(z, cfg, false)
}

func newWriter(z io.Writer, cfg WriterConfig, useHeader bool) (w *Writer, err error) {
	if z == nil {
		return nil, errors.New("lzma: writer z must not be nil")
	}
	if err = cfg.Verify(); err != nil {
		return nil, err
	}
	if useHeader && len(cfg.PresetDict) > 0 {
		return nil, ErrPresetDictHeader
	}

	seq, err := cfg.LZ.NewSequencer()
	if err != nil {
		return nil, err
	}

	w = &Writer{
		z:     z,
		seq:   seq,
		props: cfg.Properties,
		eos:   cfg.EOSMarker,
		size:  -1,
	}
	if cfg.SizeInHeader {
		w.size = cfg.Size
	}

	w.e.init(newByteWriter(z), seq.WindowPtr(), cfg.Properties)

	if len(cfg.PresetDict) > 0 {
		if err = w.seedWindow(cfg.PresetDict); err != nil {
			return nil, err
		}
	}

	if useHeader {
		h := params{
			props:            cfg.Properties,
			dictSize:         uint32(cfg.DictSize),
			uncompressedSize: eosSize,
		}
		if cfg.SizeInHeader {
			h.uncompressedSize = uint64(cfg.Size)
		}
		if _, err = z.Write(h.append(nil)); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// seedWindow feeds the preset dictionary through the match finder without
// emitting symbols. Encoding continues at position len(d).
func (w *Writer) seedWindow(d []byte) error {
	if ws := w.e.window.WindowSize; len(d) > ws {
		d = d[len(d)-ws:]
	}
	// The window requires spare capacity for its 64-bit reads.
	p := make([]byte, len(d), len(d)+7)
	copy(p, d)
	if err := w.seq.Reset(p); err != nil {
		return err
	}
	for {
		_, err := w.seq.Sequence(nil, 0)
		if err != nil {
			if err == lz.ErrEmptyBuffer {
				break
			}
			return err
		}
	}
	w.e.pos = int64(len(d))
	return nil
}

// Props returns the encoded properties byte of the stream.
func (w *Writer) Props() byte { return w.props.byte() }

// UncompressedSize returns the number of bytes the writer has accepted so
// far.
func (w *Writer) UncompressedSize() int64 { return w.n }

// Write compresses the provided data. If the header declared an uncompressed
// size, writing more data returns ErrNoSpace.
func (w *Writer) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.finished {
		return 0, ErrClosed
	}
	if w.size >= 0 && w.n+int64(len(p)) > w.size {
		return 0, ErrNoSpace
	}
	for {
		k, err := w.e.window.Write(p[n:])
		n += k
		w.n += int64(k)
		if err == nil {
			return n, nil
		}
		if err != lz.ErrFullBuffer {
			w.err = err
			return n, err
		}
		if err = w.process(); err != nil {
			w.err = err
			return n, err
		}
		// All buffered data is sequenced; shrinking the window makes
		// space for new data.
		w.seq.Shrink()
	}
}

// process encodes all data the sequencer can currently provide.
func (w *Writer) process() error {
	for {
		var litIndex = 0
		for _, s := range w.blk.Sequences {
			i := litIndex
			litIndex += int(s.LitLen)
			for _, c := range w.blk.Literals[i:litIndex] {
				if err := w.e.writeLiteral(c); err != nil {
					return err
				}
			}
			// Sequences may be longer than the largest match
			// length the format supports.
			o, m := s.Offset-1, s.MatchLen
			for m > 0 {
				var u uint32
				switch {
				case m <= maxMatchLen:
					u = m
				case m >= maxMatchLen+minMatchLen:
					u = maxMatchLen
				default:
					u = m - minMatchLen
				}
				if err := w.e.writeMatch(o, u); err != nil {
					return err
				}
				m -= u
			}
		}
		w.blk.Sequences = w.blk.Sequences[:0]
		for _, c := range w.blk.Literals[litIndex:] {
			if err := w.e.writeLiteral(c); err != nil {
				return err
			}
		}
		w.blk.Literals = w.blk.Literals[:0]

		if _, err := w.seq.Sequence(&w.blk, 0); err != nil {
			if err == lz.ErrEmptyBuffer {
				return nil
			}
			return err
		}
	}
}

// Finish encodes the remaining buffered data, writes the end-of-stream
// marker if one was requested and flushes the range encoder. Further calls
// are no-ops; Write calls after Finish return ErrClosed.
func (w *Writer) Finish() error {
	if w.finished {
		return nil
	}
	if w.err != nil {
		return w.err
	}
	if w.size >= 0 && w.n != w.size {
		w.err = errors.New("lzma: more data announced in header")
		return w.err
	}
	if err := w.process(); err != nil {
		w.err = err
		return err
	}
	if w.eos {
		if err := w.e.writeEOS(); err != nil {
			w.err = err
			return err
		}
	}
	if err := w.e.re.Close(); err != nil {
		w.err = err
		return err
	}
	w.finished = true
	return nil
}

// Flush is provided for interface compatibility. The classic LZMA format has
// no flush point, so the call doesn't force out buffered data.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.finished {
		return ErrClosed
	}
	return nil
}

// Close finishes the stream and closes the underlying writer if it
// implements io.Closer.
func (w *Writer) Close() error {
	if w.err == ErrClosed {
		return ErrClosed
	}
	err := w.err
	if err == nil {
		err = w.Finish()
	}
	if c, ok := w.z.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	if w.err == nil {
		if err != nil {
			w.err = err
		} else {
			w.err = ErrClosed
		}
	}
	return err
}

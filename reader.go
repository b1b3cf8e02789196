// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"io"
)

// RawReaderConfig provides the parameters that a raw LZMA stream doesn't
// carry itself.
type RawReaderConfig struct {
	// DictSize sets the dictionary size.
	DictSize int

	// Properties for the LZMA algorithm.
	Properties Properties

	// Size of the uncompressed data; a negative value means the size is
	// unknown and the stream must carry an end-of-stream marker.
	Size int64

	// PresetDict provides data the first matches may refer back to.
	PresetDict []byte
}

// SetDefaults replaces zero values with default values.
func (cfg *RawReaderConfig) SetDefaults() {
	if cfg.DictSize == 0 {
		cfg.DictSize = 8 * mb
	}
	if cfg.Size == 0 {
		cfg.Size = -1
	}
	var zeroProps = Properties{}
	if cfg.Properties == zeroProps {
		cfg.Properties = Properties{3, 0, 2}
	}
}

// Verify checks whether the configuration is consistent and correct.
func (cfg *RawReaderConfig) Verify() error {
	if cfg == nil {
		return errors.New(
			"lzma: RawReaderConfig pointer must not be nil")
	}
	if !(minDictSize <= cfg.DictSize && int64(cfg.DictSize) <= maxDictSize) {
		return errors.New("lzma: DictSize out of range")
	}
	return cfg.Properties.Verify()
}

// rawReader decompresses a byte stream of LZMA data.
type rawReader struct {
	decoder
	p params
	// start is the buffer position where the stream data begins; non-zero
	// if a preset dictionary has been loaded.
	start int64
	err   error
}

func (r *rawReader) init(z io.Reader, p params, presetDict []byte) error {
	r.p = p
	r.start = 0
	r.err = nil

	dictSize := int(p.dictSize)
	if err := r.buf.Init(dictSize, 2*dictSize); err != nil {
		return err
	}

	if len(presetDict) > 0 {
		if err := r.preload(presetDict, dictSize); err != nil {
			return err
		}
		r.start = r.buf.Pos()
	}

	if err := r.rd.init(newByteReader(z)); err != nil {
		return err
	}
	r.state.init(p.props)
	return nil
}

// size returns the number of uncompressed bytes decoded so far.
func (r *rawReader) size() uint64 { return uint64(r.buf.Pos() - r.start) }

func (r *rawReader) fillBuffer() error {
	if r.err != nil {
		return r.err
	}
	if r.p.uncompressedSize == r.size() {
		r.err = io.EOF
		return r.err
	}
	for r.buf.Available() >= maxMatchLen {
		seq, err := r.readSeq()
		if err != nil {
			if err == errEOS {
				if !r.rd.possiblyAtEnd() {
					r.err = ErrUnexpectedEOS
					return r.err
				}
				s := r.p.uncompressedSize
				if s != eosSize && s != r.size() {
					r.err = ErrUnexpectedEOS
					return r.err
				}
				r.err = io.EOF
				return r.err
			}
			if err == io.EOF {
				s := r.p.uncompressedSize
				if !r.rd.possiblyAtEnd() || s == eosSize {
					r.err = io.ErrUnexpectedEOF
					return r.err
				}
				if s != r.size() {
					r.err = io.ErrUnexpectedEOF
				} else {
					r.err = io.EOF
				}
				return r.err
			}
			r.err = err
			return r.err
		}
		if seq.MatchLen == 0 {
			if err = r.buf.WriteByte(byte(seq.Aux)); err != nil {
				panic(err)
			}
		} else {
			err = r.buf.WriteMatch(int(seq.MatchLen),
				int(seq.Offset))
			if err != nil {
				r.err = err
				return r.err
			}
		}
		if r.p.uncompressedSize == r.size() {
			r.err = io.EOF
			return r.err
		}
	}
	return nil
}

func (r *rawReader) Read(p []byte) (n int, err error) {
	if len(p) > r.buf.Len() {
		err = r.fillBuffer()
		if err != nil && err != io.EOF {
			return 0, err
		}
	}
	n, _ = r.buf.Read(p)
	if n == 0 {
		return 0, err
	}
	return n, nil
}

// NewRawReader creates a reader for a raw LZMA stream without the classic
// header.
func NewRawReader(z io.Reader, cfg RawReaderConfig) (r io.Reader, err error) {
	cfg.SetDefaults()
	if err = cfg.Verify(); err != nil {
		return nil, err
	}
	if z == nil {
		return nil, errors.New("lzma: reader z must not be nil")
	}
	p := params{
		props:            cfg.Properties,
		dictSize:         uint32(cfg.DictSize),
		uncompressedSize: eosSize,
	}
	if cfg.Size >= 0 {
		p.uncompressedSize = uint64(cfg.Size)
	}
	rr := new(rawReader)
	if err = rr.init(z, p, cfg.PresetDict); err != nil {
		return nil, err
	}
	return rr, nil
}

// NewReader creates a reader for streams in the classic .lzma format
// starting with the 13-byte header.
func NewReader(z io.Reader) (r io.Reader, err error) {
	if z == nil {
		return nil, errors.New("lzma: reader z must not be nil")
	}
	var a [headerLen]byte
	if _, err = io.ReadFull(z, a[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	var p params
	if err = p.parse(a[:]); err != nil {
		return nil, err
	}
	if p.dictSize < minDictSize {
		p.dictSize = minDictSize
	}
	if err = p.Verify(); err != nil {
		return nil, err
	}
	rr := new(rawReader)
	if err = rr.init(z, p, nil); err != nil {
		return nil, err
	}
	return rr, nil
}

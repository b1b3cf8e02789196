// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"io"
)

// Reader2Config provides the parameters for reading LZMA2 chunk streams.
type Reader2Config struct {
	// DictSize sets the dictionary size.
	DictSize int

	// PresetDict provides the dictionary content the first chunks may
	// refer back to. The stream must not start with a dictionary reset.
	PresetDict []byte

	// NoEOS accepts chunk streams that end without the terminating zero
	// byte.
	NoEOS bool
}

// SetDefaults replaces zero values with default values.
func (cfg *Reader2Config) SetDefaults() {
	if cfg.DictSize == 0 {
		cfg.DictSize = 8 * mb
	}
}

// Verify checks whether the configuration is consistent and correct.
func (cfg *Reader2Config) Verify() error {
	if cfg == nil {
		return errors.New("lzma: Reader2Config pointer must not be nil")
	}
	if !(minDictSize <= cfg.DictSize && int64(cfg.DictSize) <= maxDictSize) {
		return errors.New("lzma: DictSize out of range")
	}
	return nil
}

// NewReader2 creates a reader for LZMA2 chunk streams using default
// parameters.
func NewReader2(z io.Reader) (r io.Reader, err error) {
	return NewReader2Config(z, Reader2Config{})
}

// NewReader2Config creates a reader for LZMA2 chunk streams using the given
// configuration.
func NewReader2Config(z io.Reader, cfg Reader2Config) (r io.Reader, err error) {
	if z == nil {
		return nil, errors.New("lzma: reader z must not be nil")
	}
	cfg.SetDefaults()
	if err = cfg.Verify(); err != nil {
		return nil, err
	}
	cr := new(chunkReader)
	if err = cr.init(z, cfg.DictSize); err != nil {
		return nil, err
	}
	cr.noEOS = cfg.NoEOS
	if len(cfg.PresetDict) > 0 {
		if err = cr.preload(cfg.PresetDict, cfg.DictSize); err != nil {
			return nil, err
		}
		// The dictionary is seeded; the stream may start without a
		// dictionary reset.
		cr.cstate = s1
	}
	return cr, nil
}

// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"fmt"
	"io"
)

// Possible values of the masked control byte in the LZMA2 chunk header. Note
// that the chunk header might contain length bits, so it has to be masked by
// cMask.
const (
	cEOS  = byte(0)
	cUD   = byte(0b01)
	cU    = byte(0b10)
	cC    = byte(0b100) << 5
	cCS   = byte(0b101) << 5
	cCSP  = byte(0b110) << 5
	cCSPD = byte(0b111) << 5
	cMask = cCSPD
)

// Limits for the data sizes a single chunk can carry.
const (
	maxChunkSize             = 1 << 16
	maxUncompressedChunkSize = 1 << 21
)

// chunkState reflects the status of a chunk stream.
type chunkState byte

const (
	sS chunkState = iota
	s1
	s2
	sF
	sErr
)

// chunkState is modified using the given control byte. If an error occurs the
// state becomes sErr.
func (s chunkState) next(c byte) chunkState {
	if s == sF || s == sErr {
		return sErr
	}
	if c&(1<<7) == 0 {
		switch c {
		case cEOS:
			return sF
		case cU:
			switch s {
			case s1:
				return s1
			case s2:
				return s2
			}
		case cUD:
			return s1
		}
	} else {
		switch c & cMask {
		case cC, cCS:
			if s == s2 {
				return s2
			}
		case cCSP:
			if s == s1 || s == s2 {
				return s2
			}
		case cCSPD:
			return s2
		}
	}
	return sErr
}

// chunkHeader represents a chunk header.
type chunkHeader struct {
	control        byte
	compressedSize int
	size           int
	properties     Properties
}

// parseChunkHeader reads the next chunk header from the reader.
func parseChunkHeader(r io.Reader) (h chunkHeader, err error) {
	p := make([]byte, 1, 6)
	if _, err = io.ReadFull(r, p); err != nil {
		return h, err
	}
	h.control = p[0]
	if h.control&(1<<7) == 0 {
		switch h.control {
		case cEOS:
			return h, nil
		case cU, cUD:
			break
		default:
			return h, fmt.Errorf(
				"lzma: unsupported chunk header"+
					" control byte %02x", h.control)
		}
		if _, err = io.ReadFull(r, p[1:3]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return h, err
		}
		h.size = int(getBE16(p[1:3])) + 1
	} else {
		h.control &= cMask
		switch h.control {
		case cC, cCS:
			p = p[0:5]
		case cCSP, cCSPD:
			p = p[0:6]
		default:
			return h, fmt.Errorf("lzma: unsupported chunk header"+
				" control byte %02x", h.control)
		}
		if _, err := io.ReadFull(r, p[1:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return h, err
		}
		h.size = int(p[0]&(1<<5-1))<<16 + int(getBE16(p[1:3])) + 1
		h.compressedSize = int(getBE16(p[3:5])) + 1
		if h.control == cCSP || h.control == cCSPD {
			if err = h.properties.fromByte(p[5]); err != nil {
				return h, err
			}
		}
	}
	return h, nil
}

// append appends the binary representation of the chunk header to p. An error
// is returned if the values in chunk header are inconsistent.
func (h chunkHeader) append(p []byte) (q []byte, err error) {
	if h.control == cEOS {
		return append(p, cEOS), nil
	}
	var d [6]byte
	d[0] = h.control
	if h.control == cU || h.control == cUD {
		if !(1 <= h.size && h.size <= maxChunkSize) {
			return p, fmt.Errorf(
				"lzma: chunk header size %d out of range"+
					" for uncompressed chunk",
				h.size)
		}
		putBE16(d[1:], uint16(h.size-1))
		return append(p, d[:3]...), nil
	}
	if !(1 <= h.size && h.size <= maxUncompressedChunkSize) {
		return p, errors.New(
			"lzma: chunk header uncompressed size out of range")
	}
	if !(1 <= h.compressedSize && h.compressedSize <= maxChunkSize) {
		return p, fmt.Errorf("lzma: chunk header compressed size %d"+
			" is out of range", h.compressedSize)
	}
	us := h.size - 1
	d[0] |= byte(us >> 16)
	putBE16(d[1:], uint16(us))
	putBE16(d[3:], uint16(h.compressedSize-1))
	if h.control == cC || h.control == cCS {
		return append(p, d[:5]...), nil
	}
	d[5] = h.properties.byte()
	if h.control == cCSP || h.control == cCSPD {
		return append(p, d[:6]...), nil
	}
	return p, errors.New("lzma: invalid chunk header")
}

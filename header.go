// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"math"
)

// eosSize is stored in the header for the uncompressed size if it is
// unknown. Streams with an unknown size must carry the end-of-stream
// marker.
const eosSize uint64 = 0xffffffffffffffff

// headerLen defines the length of the classic .lzma header.
const headerLen = 13

// params holds the information of the classic .lzma header: a packed
// properties byte, the dictionary size and the uncompressed size, which may
// be the eosSize sentinel.
type params struct {
	props            Properties
	dictSize         uint32
	uncompressedSize uint64
}

// Verify checks the parameter set for consistency.
func (h params) Verify() error {
	if uint64(h.dictSize) > math.MaxInt {
		return errors.New("lzma: dictSize exceeds maximum integer")
	}
	if h.dictSize < minDictSize {
		return errors.New("lzma: dictSize is too small")
	}
	return h.props.Verify()
}

// append adds the header to the slice s.
func (h params) append(s []byte) []byte {
	var a [headerLen]byte
	a[0] = h.props.byte()
	putLE32(a[1:], h.dictSize)
	putLE64(a[5:], h.uncompressedSize)
	return append(s, a[:]...)
}

// parse parses the header from the slice x. x must have exactly header
// length.
func (h *params) parse(x []byte) error {
	if len(x) != headerLen {
		return errors.New("lzma: LZMA header has incorrect length")
	}
	var err error
	if err = h.props.fromByte(x[0]); err != nil {
		return err
	}
	h.dictSize = getLE32(x[1:])
	h.uncompressedSize = getLE64(x[5:])
	return nil
}

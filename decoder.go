// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"

	"github.com/ulikunitz/lz"
)

// decoder converts the range-encoded symbol stream back into sequences. The
// buffer keeps the dictionary and stores the decoded data until it is read.
type decoder struct {
	buf   lz.Buffer
	state state
	rd    rangeDecoder
}

func (d *decoder) decodeLiteral() (seq lz.Seq, err error) {
	litState := d.state.litState(d.buf.ByteAtEnd(1), d.buf.Pos())
	match := d.buf.ByteAtEnd(int(d.state.rep[0]) + 1)
	s, err := d.state.litCodec.Decode(&d.rd, d.state.state, match, litState)
	if err != nil {
		return lz.Seq{}, err
	}
	return lz.Seq{LitLen: 1, Aux: uint32(s)}, nil
}

// preload moves the tail of the preset dictionary fitting dictSize into the
// buffer and consumes it, so it serves as match history without becoming
// part of the output.
func (d *decoder) preload(dict []byte, dictSize int) error {
	if len(dict) > dictSize {
		dict = dict[len(dict)-dictSize:]
	}
	for _, c := range dict {
		if err := d.buf.WriteByte(c); err != nil {
			return err
		}
	}
	var sc [4096]byte
	for n := len(dict); n > 0; {
		k := n
		if k > len(sc) {
			k = len(sc)
		}
		m, _ := d.buf.Read(sc[:k])
		if m == 0 {
			break
		}
		n -= m
	}
	return nil
}

// errEOS marks the end-of-stream marker in the symbol stream.
var errEOS = errors.New("lzma: EOS marker")

// readSeq reads a single sequence. Each sequence is either a one-byte
// literal (LitLen=1, Aux has the byte) or a match (MatchLen and Offset
// non-zero).
func (d *decoder) readSeq() (seq lz.Seq, err error) {
	state, state2, posState := d.state.states(d.buf.Pos())

	s2 := &d.state.s2[state2]
	b, err := d.rd.decodeBit(&s2.isMatch)
	if err != nil {
		return lz.Seq{}, err
	}
	if b == 0 {
		// literal
		seq, err := d.decodeLiteral()
		if err != nil {
			return lz.Seq{}, err
		}
		d.state.updateStateLiteral()
		return seq, nil
	}

	s1 := &d.state.s1[state]
	b, err = d.rd.decodeBit(&s1.isRep)
	if err != nil {
		return lz.Seq{}, err
	}
	if b == 0 {
		// simple match
		d.state.rep[3], d.state.rep[2], d.state.rep[1] =
			d.state.rep[2], d.state.rep[1], d.state.rep[0]

		d.state.updateStateMatch()
		// The length decoder returns the length offset.
		n, err := d.state.lenCodec.Decode(&d.rd, posState)
		if err != nil {
			return lz.Seq{}, err
		}
		// The dist decoder returns the distance offset. The actual
		// distance is 1 higher.
		d.state.rep[0], err = d.state.distCodec.Decode(&d.rd, n)
		if err != nil {
			return lz.Seq{}, err
		}
		if d.state.rep[0] == eosDist {
			return lz.Seq{}, errEOS
		}
		return lz.Seq{MatchLen: n + minMatchLen,
			Offset: d.state.rep[0] + minDistance}, nil
	}
	b, err = d.rd.decodeBit(&s1.isRepG0)
	if err != nil {
		return lz.Seq{}, err
	}
	dist := d.state.rep[0]
	if b == 0 {
		// rep match 0
		b, err = d.rd.decodeBit(&s2.isRepG0Long)
		if err != nil {
			return lz.Seq{}, err
		}
		if b == 0 {
			d.state.updateStateShortRep()
			return lz.Seq{MatchLen: 1, Offset: dist + minDistance},
				nil
		}
	} else {
		b, err = d.rd.decodeBit(&s1.isRepG1)
		if err != nil {
			return lz.Seq{}, err
		}
		if b == 0 {
			dist = d.state.rep[1]
		} else {
			b, err = d.rd.decodeBit(&s1.isRepG2)
			if err != nil {
				return lz.Seq{}, err
			}
			if b == 0 {
				dist = d.state.rep[2]
			} else {
				dist = d.state.rep[3]
				d.state.rep[3] = d.state.rep[2]
			}
			d.state.rep[2] = d.state.rep[1]
		}
		d.state.rep[1] = d.state.rep[0]
		d.state.rep[0] = dist
	}
	n, err := d.state.repLenCodec.Decode(&d.rd, posState)
	if err != nil {
		return lz.Seq{}, err
	}
	d.state.updateStateRep()
	return lz.Seq{MatchLen: n + minMatchLen, Offset: dist + minDistance},
		nil
}

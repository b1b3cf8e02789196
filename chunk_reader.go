// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bufio"
	"fmt"
	"io"
)

// chunkReader reads a sequence of LZMA2 chunks.
type chunkReader struct {
	decoder
	r        io.Reader
	bufr     *bufio.Reader
	scratch  []byte
	dictSize int
	bufSize  int
	cstate   chunkState
	err      error
	noEOS    bool
}

// init initializes the chunk reader. The buffer is made large enough to
// hold the dictionary and a full uncompressed chunk.
func (r *chunkReader) init(z io.Reader, dictSize int) error {
	*r = chunkReader{r: z, dictSize: dictSize}
	r.bufSize = 2 * dictSize
	if r.bufSize < dictSize+maxUncompressedChunkSize {
		r.bufSize = dictSize + maxUncompressedChunkSize
	}
	return r.buf.Init(r.dictSize, r.bufSize)
}

// reset reinitializes the chunkReader for a new chunk stream. The function
// doesn't touch the noEOS flag.
func (r *chunkReader) reset(z io.Reader) error {
	r.r = z
	r.cstate = sS
	r.err = nil
	return r.buf.Init(r.dictSize, r.bufSize)
}

// readChunk reads a single chunk into the buffer.
func (r *chunkReader) readChunk() error {
	h, err := parseChunkHeader(r.r)
	if err != nil {
		if !r.noEOS && err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	r.cstate = r.cstate.next(h.control)
	if r.cstate == sErr {
		return fmt.Errorf("lzma: unexpected chunk control byte %02x",
			h.control)
	}
	if r.cstate == sF {
		return io.EOF
	}

	if h.control == cUD || h.control == cCSPD {
		if err = r.buf.Init(r.dictSize, r.bufSize); err != nil {
			return err
		}
	}

	if h.control == cU || h.control == cUD {
		// copy uncompressed data directly into the dictionary
		if cap(r.scratch) < h.size {
			r.scratch = make([]byte, h.size)
		}
		s := r.scratch[:h.size]
		if _, err = io.ReadFull(r.r, s); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
		for _, c := range s {
			if err = r.buf.WriteByte(c); err != nil {
				return err
			}
		}
		return nil
	}

	switch h.control {
	case cCSP, cCSPD:
		r.state.init(h.properties)
	case cCS:
		r.state.reset()
	}

	lr := io.LimitReader(r.r, int64(h.compressedSize))
	if r.bufr == nil {
		r.bufr = bufio.NewReader(lr)
	} else {
		r.bufr.Reset(lr)
	}
	if err = r.rd.init(r.bufr); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	n := h.size
	for n > 0 {
		seq, err := r.readSeq()
		if err != nil {
			switch err {
			case errEOS:
				// chunks don't use the end-of-stream marker
				err = ErrUnexpectedEOS
			case io.EOF:
				err = io.ErrUnexpectedEOF
			}
			return err
		}
		if seq.MatchLen == 0 {
			if err = r.buf.WriteByte(byte(seq.Aux)); err != nil {
				panic(err)
			}
			n--
			continue
		}

		n -= int(seq.MatchLen)
		err = r.buf.WriteMatch(int(seq.MatchLen), int(seq.Offset))
		if err != nil {
			return err
		}
	}

	if n < 0 || !r.rd.possiblyAtEnd() {
		return ErrEncoding
	}

	return nil
}

// Read reads decompressed data from the chunk reader.
func (r *chunkReader) Read(p []byte) (n int, err error) {
	if r.err != nil && r.buf.Len() == 0 {
		return 0, r.err
	}
	for {
		k, _ := r.buf.Read(p[n:])
		n += k
		if n == len(p) {
			return n, nil
		}
		if r.err != nil {
			return n, r.err
		}
		if err = r.readChunk(); err != nil {
			r.err = err
			if r.buf.Len() > 0 {
				continue
			}
			return n, err
		}
	}
}

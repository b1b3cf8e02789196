// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"io"

	"github.com/ulikunitz/lz"
)

// chunkWriter converts the output of the sequencer into a sequence of LZMA2
// chunks. Chunks that would grow larger than their data are stored
// uncompressed.
type chunkWriter struct {
	encoder
	blk lz.Block
	buf bytes.Buffer
	seq lz.Sequencer
	w   io.Writer
	// dirReset is true if the dictionary reset has been signaled
	dirReset bool
	// needProps is true while no chunk with a properties byte has been
	// written
	needProps bool
	// needState is true if the next compressed chunk must signal a state
	// reset
	needState bool
	// terminated is true after the end marker has been written
	terminated bool
	err        error
}

// init initializes the chunk writer. A non-empty data slice preloads the
// dictionary; the first chunk will not signal a dictionary reset in that
// case.
func (w *chunkWriter) init(z io.Writer, seq lz.Sequencer, data []byte,
	props Properties) error {
	*w = chunkWriter{
		seq:     seq,
		encoder: encoder{window: seq.WindowPtr()},
		blk: lz.Block{
			Sequences: w.blk.Sequences[:0],
			Literals:  w.blk.Literals[:0],
		},
		buf:       w.buf,
		w:         z,
		needProps: true,
		needState: true,
	}
	if ws := w.window.WindowSize; len(data) > ws {
		data = data[len(data)-ws:]
	}
	var p []byte
	if len(data) > 0 {
		// The window requires spare capacity for its 64-bit reads.
		p = make([]byte, len(data), len(data)+7)
		copy(p, data)
	}
	if err := seq.Reset(p); err != nil {
		return err
	}
	w.state.init(props)
	if len(data) > 0 {
		// Index the preloaded data without emitting symbols.
		for {
			if _, err := w.seq.Sequence(nil, 0); err != nil {
				if err == lz.ErrEmptyBuffer {
					break
				}
				return err
			}
		}
		w.encoder.pos = int64(len(data))
		w.dirReset = true
	}
	return nil
}

// updateBlock moves the unwritten part of the block to the front.
func updateBlock(blk *lz.Block, litIndex, seqIndex int) {
	n := copy(blk.Literals, blk.Literals[litIndex:])
	blk.Literals = blk.Literals[:n]
	n = copy(blk.Sequences, blk.Sequences[seqIndex:])
	blk.Sequences = blk.Sequences[:n]
}

func (w *chunkWriter) writeChunk() error {
	// prepare writing
	w.buf.Reset()
	w.re.init(&w.buf)
	if w.needState {
		w.state.reset()
	}
	n := 0

	// The compressed data must fit the 16-bit size field with the range
	// encoder flush still to come.
	const budget = maxChunkSize - 16

	// loop until enough uncompressed data is written or the output is too
	// long
	var err error
loop:
	for {
		var litIndex = 0
		for k, s := range w.blk.Sequences {
			i := litIndex
			litIndex += int(s.LitLen)
			for j, c := range w.blk.Literals[i:litIndex] {
				err = w.writeLiteral(c)
				if err != nil {
					return err
				}
				n++
				if n >= maxUncompressedChunkSize ||
					w.buf.Len() >= budget {
					w.blk.Sequences[k].LitLen -=
						uint32(j) + 1
					updateBlock(&w.blk, i+j+1, k)
					break loop
				}
			}

			o, m := s.Offset-1, s.MatchLen
			for {
				var u uint32
				if m <= maxMatchLen {
					u = m
				} else if m >= maxMatchLen+minMatchLen {
					u = maxMatchLen
				} else {
					u = m - minMatchLen
				}
				if n+int(u) > maxUncompressedChunkSize ||
					w.buf.Len() >= budget {
					w.blk.Sequences[k].LitLen = 0
					w.blk.Sequences[k].MatchLen = m
					updateBlock(&w.blk, litIndex, k)
					break loop
				}
				if err = w.writeMatch(o, u); err != nil {
					return err
				}
				n += int(u)
				m -= u
				if m == 0 {
					break
				}
			}
		}
		w.blk.Sequences = w.blk.Sequences[:0]
		for j, c := range w.blk.Literals[litIndex:] {
			if err = w.writeLiteral(c); err != nil {
				return err
			}
			n++
			if n >= maxUncompressedChunkSize ||
				w.buf.Len() >= budget {
				updateBlock(&w.blk, litIndex+j+1,
					len(w.blk.Sequences))
				break loop
			}
		}

		_, err := w.seq.Sequence(&w.blk, 0)
		if err != nil {
			if err == lz.ErrEmptyBuffer {
				w.blk.Literals = w.blk.Literals[:0]
				w.blk.Sequences = w.blk.Sequences[:0]
				break loop
			}
			return err
		}
	}

	if err = w.re.Close(); err != nil {
		return err
	}

	hdrLen := 5
	if w.needProps {
		hdrLen++
	}
	k := w.buf.Len()
	h := chunkHeader{size: n}
	m := 3 + n
	if n <= maxChunkSize && m < hdrLen+k {
		// The chunk is stored uncompressed. The symbols encoded above
		// are discarded, so the probability models no longer match
		// the decoder and the next compressed chunk must reset them.
		w.needState = true
		if w.dirReset {
			h.control = cU
		} else {
			h.control = cUD
			w.dirReset = true
		}

		p := w.buf.Bytes()
		if cap(p) < m {
			p = make([]byte, m)
		} else {
			p = p[:m]
		}
		_, err := h.append(p[:0])
		if err != nil {
			return err
		}

		k, err := w.window.ReadAt(p[3:], w.encoder.pos-int64(n))
		if err != nil {
			return err
		}
		if k != n {
			panic("k != n")
		}

		_, err = w.w.Write(p)
		return err
	}

	// compressed write
	h.compressedSize = k
	switch {
	case w.needProps:
		h.properties = w.state.Properties
		if !w.dirReset {
			h.control = cCSPD
			w.dirReset = true
		} else {
			h.control = cCSP
		}
		w.needProps = false
		w.needState = false
	case w.needState:
		h.control = cCS
		w.needState = false
	default:
		h.control = cC
	}

	var a [6]byte
	p, err := h.append(a[:0])
	if err != nil {
		return err
	}

	if _, err = w.w.Write(p); err != nil {
		return err
	}
	if _, err = w.w.Write(w.buf.Bytes()); err != nil {
		return err
	}

	return nil
}

func (w *chunkWriter) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.terminated {
		return 0, ErrClosed
	}
	for {
		var k int
		k, err = w.window.Write(p[n:])
		n += k
		if err == nil {
			return n, nil
		}
		if err != lz.ErrFullBuffer {
			w.err = err
			return n, err
		}
		if w.window.Buffered() == 0 && len(w.blk.Sequences) == 0 &&
			len(w.blk.Literals) == 0 {
			// Everything pending has been encoded; shrinking the
			// window makes space for new data.
			w.seq.Shrink()
			continue
		}
		if err = w.writeChunk(); err != nil {
			w.err = err
			return n, err
		}
	}
}

func (w *chunkWriter) flush() error {
	if w.err != nil {
		return w.err
	}
	for {
		if len(w.blk.Sequences) == 0 &&
			len(w.blk.Literals) == 0 &&
			w.window.Buffered() == 0 {
			return nil
		}
		if err := w.writeChunk(); err != nil {
			w.err = err
			return err
		}
	}
}

// Finish flushes all buffered data and writes the end marker. The end marker
// is written only once; further calls do nothing.
func (w *chunkWriter) Finish() error {
	if w.terminated {
		return nil
	}
	if w.err != nil {
		return w.err
	}
	if err := w.flush(); err != nil {
		return err
	}
	if _, err := w.w.Write([]byte{cEOS}); err != nil {
		w.err = err
		return err
	}
	w.terminated = true
	return nil
}

func (w *chunkWriter) Close() error {
	if w.err == ErrClosed {
		return ErrClosed
	}
	err := w.Finish()
	if w.err == nil {
		w.err = ErrClosed
	}
	return err
}

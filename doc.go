// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package lzma provides writers for the classic .lzma format, for raw LZMA
// streams and for LZMA2 chunk streams, plus the readers required to decode
// them again.
//
// Usage:
//
//	w, err := lzma.NewWriter(f)
//
//	r, err := lzma.NewReader(f)
//
// The writers buffer data in the dictionary window; a stream is only
// complete after Finish or Close has been called. For high throughput wrap
// the underlying file into a bufio.Writer.
package lzma

// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import "errors"

// ErrClosed is returned by Write after the stream has been finished or
// closed.
var ErrClosed = errors.New("lzma: stream closed")

// ErrNoSpace is returned by Write if it would push the stream beyond the
// uncompressed size declared in the header. The offending write doesn't
// consume any bytes.
var ErrNoSpace = errors.New("lzma: declared uncompressed size exceeded")

// ErrPresetDictHeader is returned when a preset dictionary is combined with
// the classic .lzma header. The format has no field for it; use a raw
// stream instead.
var ErrPresetDictHeader = errors.New(
	"lzma: preset dictionary cannot be stored in the .lzma format")

// ErrUnexpectedEOS is reported by the readers if an end-of-stream marker
// appears in the wrong place.
var ErrUnexpectedEOS = errors.New("lzma: unexpected end of stream")

// ErrEncoding reports that the byte stream is not a correct encoding.
var ErrEncoding = errors.New("lzma: wrong encoding")

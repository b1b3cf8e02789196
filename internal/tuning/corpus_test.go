// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package tuning

import (
	"bytes"
	"crypto/sha256"
	"io"
	"testing"

	"github.com/ulikunitz/lzma"
	"github.com/ulikunitz/zdata"
)

func TestSilesia(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Silesia corpus test in short mode")
	}

	files, err := Files(zdata.Silesia)
	if err != nil {
		t.Fatalf("Files(zdata.Silesia) error %s", err)
	}

	for _, f := range files {
		f := f
		t.Run(f.Name, func(t *testing.T) {
			s := sha256.Sum256(f.Data)
			hsum := s[:]

			buf := new(bytes.Buffer)
			w, err := lzma.NewWriter2(buf)
			if err != nil {
				t.Fatalf("lzma.NewWriter2 error %s", err)
			}
			if _, err = w.Write(f.Data); err != nil {
				t.Fatalf("w.Write error %s", err)
			}
			if err = w.Close(); err != nil {
				t.Fatalf("w.Close() error %s", err)
			}
			t.Logf("compressed: %d, uncompressed: %d",
				buf.Len(), len(f.Data))

			r, err := lzma.NewReader2(buf)
			if err != nil {
				t.Fatalf("lzma.NewReader2 error %s", err)
			}
			h := sha256.New()
			n, err := io.Copy(h, r)
			if err != nil {
				t.Fatalf("io.Copy(h, r) error %s", err)
			}
			if n != int64(len(f.Data)) {
				t.Fatalf("decompressed length %d; want %d",
					n, len(f.Data))
			}
			if !bytes.Equal(h.Sum(nil), hsum) {
				t.Fatalf("hash checksums differ")
			}
		})
	}
}

func BenchmarkSilesia(b *testing.B) {
	files, err := Files(zdata.Silesia)
	if err != nil {
		b.Fatalf("Files(zdata.Silesia) error %s", err)
	}
	size := Size(files)

	b.SetBytes(size)
	b.ResetTimer()
	var compressedSize int64
	for i := 0; i < b.N; i++ {
		compressedSize, err = Compress2(files, lzma.Writer2Config{})
		if err != nil {
			b.Fatalf("Compress2 error %s", err)
		}
	}
	b.StopTimer()
	b.ReportMetric(float64(compressedSize)/float64(size), "c/u")
}

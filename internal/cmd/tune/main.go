// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Command tune measures compression ratio and speed of writer
// configurations over the Silesia corpus and prints the results.
package main

import (
	"flag"
	"fmt"
	"log"
	"testing"

	"github.com/kr/pretty"
	"github.com/ulikunitz/lzma"
	"github.com/ulikunitz/lzma/internal/tuning"
	"github.com/ulikunitz/zdata"
)

// mbPerSec returns the megabytes (1 000 000 bytes) per second that are
// processed.
func mbPerSec(r testing.BenchmarkResult) float64 {
	if r.Bytes <= 0 || r.T <= 0 || r.N <= 0 {
		return 0
	}
	return (float64(r.Bytes) * float64(r.N) / 1e6) / r.T.Seconds()
}

func main() {
	log.SetPrefix("tune: ")
	log.SetFlags(0)

	lzma2 := flag.Bool("2", false, "use LZMA2 chunk format")
	flag.Parse()

	files, err := tuning.Files(zdata.Silesia)
	if err != nil {
		log.Fatalf("tuning.Files(zdata.Silesia) error %s", err)
	}
	size := tuning.Size(files)
	log.Printf("corpus size %d bytes", size)

	dictSizeExps := []uint{18, 20, 22, 24, 26}
	for _, e := range dictSizeExps {
		dictSize := 1 << e
		var compressedSize int64
		run := func(b *testing.B) {
			b.SetBytes(size)
			for i := 0; i < b.N; i++ {
				if *lzma2 {
					compressedSize, err = tuning.Compress2(
						files, lzma.Writer2Config{
							DictSize: dictSize,
						})
				} else {
					compressedSize, err = tuning.Compress(
						files, lzma.WriterConfig{
							DictSize: dictSize,
						})
				}
				if err != nil {
					b.Fatalf("compress error %s", err)
				}
			}
		}
		r := testing.Benchmark(run)
		if *lzma2 {
			pretty.Println(lzma.Writer2Config{DictSize: dictSize})
		} else {
			pretty.Println(lzma.WriterConfig{DictSize: dictSize})
		}
		fmt.Printf("  ratio %.4f, %.2f MB/s\n",
			float64(compressedSize)/float64(size), mbPerSec(r))
	}
}

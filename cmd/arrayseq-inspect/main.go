// Command arrayseq-inspect prints a summary of sequence archives.
//
// Usage:
//
//	arrayseq-inspect [-elements] [-threshold n] archive...
//
// An archive is a local path or a blob URL: s3://bucket/key or
// minio://bucket/key.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hupe1980/arrayseq"
)

var (
	showElements = flag.Bool("elements", false, "print the elements (summarised above -threshold)")
	threshold    = flag.Int("threshold", arrayseq.DefaultPrintThreshold, "element count above which output is summarised")
	verbose      = flag.Bool("v", false, "log archive reads to stderr")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] archive...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	opts := []arrayseq.Option{arrayseq.WithPrintThreshold(*threshold)}
	if *verbose {
		opts = append(opts, arrayseq.WithLogLevel(slog.LevelDebug))
	}

	ctx := context.Background()
	failed := false
	for _, path := range flag.Args() {
		seq, err := load(ctx, path, opts)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failed = true
			continue
		}
		fmt.Printf("%s\n", path)
		fmt.Printf("  elements:     %d\n", seq.Len())
		fmt.Printf("  total rows:   %d\n", seq.TotalRows())
		fmt.Printf("  common shape: %v\n", seq.CommonShape())
		fmt.Printf("  dtype:        %s\n", seq.DType())
		if seq.Len() > 0 {
			lengths := seq.Lengths()
			lo, hi := lengths[0], lengths[0]
			for _, n := range lengths[1:] {
				lo, hi = min(lo, n), max(hi, n)
			}
			fmt.Printf("  lengths:      min %d, max %d, mean %.2f\n", lo, hi, float64(seq.TotalRows())/float64(seq.Len()))
		}
		if *showElements {
			fmt.Printf("  %s\n", seq)
		}
	}
	if failed {
		os.Exit(1)
	}
}

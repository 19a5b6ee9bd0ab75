// The edmfile-rewrite command decodes an EDM file and encodes it again.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/edmtools/edmfile/edm"
	"github.com/edmtools/edmfile/internal/config"
)

const usage = `usage: edmfile-rewrite [-config FILE] [-postprocess] [INPUT] [OUTPUT]

Reads an EDM file from INPUT, and writes to OUTPUT the same file as encoded by
this package. The index tables are regenerated from the content of the file.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr. Nothing is written to OUTPUT if the file cannot
be decoded or encoded.

FILE is an HCL configuration file, whose decoder block configures decoding.

With -postprocess, references are validated and render nodes with several
parents are checked for partitioning before the file is written.
`

func main() {
	var input io.Reader = os.Stdin
	var output io.Writer = os.Stdout

	configPath := flag.String("config", "", "HCL configuration file")
	postprocess := flag.Bool("postprocess", false, "validate references and partitions")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("load config: %w", err))
		os.Exit(2)
	}
	args := flag.Args()
	if len(args) >= 1 && args[0] != "-" {
		in, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("open input: %w", err))
			return
		}
		input = in
		defer in.Close()
	}

	decoder := cfg.DecoderOptions()
	f, warn, err := decoder.Decode(input)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode error: %w", err))
		return
	}
	if *postprocess {
		if err := f.Postprocess(); err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("postprocess error: %w", err))
			return
		}
	}

	var buf bytes.Buffer
	warn, err = edm.Encoder{MaxStringLength: decoder.MaxStringLength}.Encode(&buf, f)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("encode warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("encode error: %w", err))
		return
	}

	if len(args) >= 2 && args[1] != "-" {
		out, err := os.Create(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("create output: %w", err))
			return
		}
		defer out.Close()
		defer func() {
			err := out.Sync()
			if err != nil {
				fmt.Fprintln(os.Stderr, fmt.Errorf("sync output: %w", err))
				return
			}
		}()
		output = out
	}
	if _, err := buf.WriteTo(output); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("write error: %w", err))
	}
}

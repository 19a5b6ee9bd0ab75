// The edmfile-dump command dumps the content of an EDM file in a readable
// format.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/edmtools/edmfile/internal/config"
)

const usage = `usage: edmfile-dump [-config FILE] [INPUT] [OUTPUT]

Reads an EDM file from INPUT, and dumps a human-readable representation of the
file to OUTPUT. Geometry buffers are summarized by their blake2b hash.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.

FILE is an HCL configuration file, whose decoder block configures decoding.
`

func main() {
	var input io.Reader = os.Stdin
	var output io.Writer = os.Stdout

	configPath := flag.String("config", "", "HCL configuration file")
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

	warn, err := cfg.DecoderOptions().Dump(output, input)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("error: %w", err))
	}
}

// The edmfile-survey command decodes every EDM file within a directory and
// reports on the collected results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/edmtools/edmfile/internal/config"
	"github.com/edmtools/edmfile/internal/ctxlog"
	"github.com/edmtools/edmfile/internal/survey"
)

const usage = `usage: edmfile-survey [-config FILE] [-workers N] [-o STORE] DIR
       edmfile-survey -report materials|channels STORE

In the first form, decodes every file below DIR whose name matches the survey
pattern (*.edm by default), and writes a summary of each file to STORE. Files
that cannot be decoded are recorded along with the error.

In the second form, reads STORE, and writes a report to stdout:

    materials  The uniforms used with each base material.
    channels   The sizes seen for each vertex channel.

FILE is an HCL configuration file, whose decoder, survey, and log blocks apply.
Flags override values of the configuration file. Logs are written to stderr.
`

func main() {
	configPath := flag.String("config", "", "HCL configuration file")
	workers := flag.Int("workers", 0, "number of files decoded concurrently")
	outputPath := flag.String("o", "", "path of the survey store")
	report := flag.String("report", "", "report to write from a store")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("load config: %w", err))
		os.Exit(2)
	}
	if *workers > 0 {
		cfg.Survey.Workers = *workers
	}
	if *outputPath != "" {
		cfg.Survey.Output = *outputPath
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *report != "" {
		if err := writeReport(*report, flag.Arg(0)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	logger := cfg.Logger(os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	if err := run(ctx, cfg, flag.Arg(0)); err != nil {
		logger.Error("Survey failed.", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, dir string) error {
	paths, err := survey.Collect(dir, cfg.Survey.Pattern)
	if err != nil {
		return fmt.Errorf("collect files: %w", err)
	}
	store, err := survey.Run(ctx, survey.Options{
		Decoder:          cfg.DecoderOptions(),
		Workers:          cfg.Survey.Workers,
		ProgressInterval: cfg.Survey.ProgressInterval,
	}, paths)
	if err != nil {
		return err
	}
	if err := store.SaveFile(cfg.Survey.Output); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	ctxlog.FromContext(ctx).Info("Wrote survey store.", "path", cfg.Survey.Output, "files", len(store.Files))
	return nil
}

func writeReport(report, path string) error {
	store, err := survey.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	switch report {
	case "materials":
		err = survey.WriteMaterialTable(os.Stdout, store.MaterialTable())
	case "channels":
		err = survey.WriteChannelCounts(os.Stdout, store.VertexChannelCounts())
	default:
		return fmt.Errorf("unknown report %q", report)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

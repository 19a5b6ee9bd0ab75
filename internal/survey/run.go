package survey

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edmtools/edmfile/edm"
	"github.com/edmtools/edmfile/internal/ctxlog"
)

// Options configures a survey run.
type Options struct {
	// Decoder decodes each file. Its Stats field is ignored.
	Decoder edm.Decoder
	// Workers is the number of files decoded concurrently. Values less than
	// one are treated as one.
	Workers int
	// ProgressInterval is the time between progress messages. If zero,
	// progress is not logged.
	ProgressInterval time.Duration
}

// Collect returns the paths of the regular files below root whose base name
// matches pattern, compared without case, in lexical order.
func Collect(root, pattern string) ([]string, error) {
	pattern = strings.ToLower(pattern)
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, strings.ToLower(d.Name())); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Run surveys each file in paths using a pool of workers. Each file is
// decoded independently, and a file that fails to decode yields a summary
// holding the error. Summaries are returned in the order of paths.
//
// If ctx is cancelled, the files not yet surveyed are skipped, and the
// returned store contains only the completed summaries along with the error
// of ctx.
func Run(ctx context.Context, opts Options, paths []string) (*Store, error) {
	logger := ctxlog.FromContext(ctx)
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	decoder := opts.Decoder
	decoder.Stats = nil

	total := len(paths)
	results := make([]Summary, total)
	completed := make([]bool, total)
	var processed atomic.Int64
	start := time.Now()
	logger.Info("Survey started.", "files", total, "workers", workers)

	done := make(chan struct{})
	if opts.ProgressInterval > 0 {
		go func() {
			ticker := time.NewTicker(opts.ProgressInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if p := processed.Load(); p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						logger.Info("Survey progress.", "done", p, "files", total, "rate", rate)
					}
				}
			}
		}()
	}

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				results[i] = surveyFile(ctx, decoder, paths[i])
				completed[i] = true
				processed.Add(1)
			}
		}()
	}

send:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break send
		}
	}
	close(jobs)
	wg.Wait()
	close(done)

	store := &Store{Version: storeVersion, Files: make([]Summary, 0, total)}
	var failed int
	for i, ok := range completed {
		if !ok {
			continue
		}
		if results[i].Error != "" {
			failed++
		}
		store.Files = append(store.Files, results[i])
	}
	logger.Info("Survey finished.",
		"files", len(store.Files),
		"failed", failed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	if err := ctx.Err(); err != nil {
		return store, err
	}
	return store, nil
}

func surveyFile(ctx context.Context, d edm.Decoder, path string) Summary {
	logger := ctxlog.FromContext(ctx)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Could not read file.", "path", path, "error", err)
		return Summary{Path: path, Error: err.Error()}
	}
	s := Summarize(path, data, d)
	switch {
	case s.Error != "":
		logger.Warn("Could not decode file.", "path", path, "error", s.Error)
	case len(s.Warnings) > 0:
		logger.Debug("Decoded file with warnings.", "path", path, "warnings", len(s.Warnings))
	default:
		logger.Debug("Decoded file.", "path", path)
	}
	return s
}

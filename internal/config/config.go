// Package config loads the settings of the command-line tools from an HCL
// file. Expressions in the file may refer to environment variables through
// the env object:
//
//	decoder {
//	  max_string_length = 400
//	  markers           = ["RENDER_NODES", "CONNECTORS"]
//	}
//
//	survey {
//	  workers = 8
//	  output  = "${env.HOME}/edm-survey.lz4"
//	}
//
//	log {
//	  level  = "debug"
//	  format = "json"
//	}
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/edmtools/edmfile"
	"github.com/edmtools/edmfile/edm"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
)

// Config holds the settings of the command-line tools.
type Config struct {
	Decoder DecoderConfig
	Survey  SurveyConfig
	Log     LogConfig
}

// DecoderConfig configures the decoding of files.
type DecoderConfig struct {
	// MaxStringLength is the length above which a string is rejected.
	MaxStringLength int
	// Markers are the collection names that may begin the object section.
	Markers []string
	// MaxLookahead bounds the search for the object section. A negative
	// value means no bound.
	MaxLookahead int
}

// SurveyConfig configures batch surveys.
type SurveyConfig struct {
	// Workers is the number of files decoded concurrently.
	Workers int
	// Pattern selects the files to survey by base name.
	Pattern string
	// Output is the path of the survey store.
	Output string
	// ProgressInterval is the time between progress messages.
	ProgressInterval time.Duration
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", or "error".
	Level string
	// Format is "text" or "json".
	Format string
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Decoder: DecoderConfig{
			MaxStringLength: edm.DefaultMaxStringLength,
			Markers:         edmfile.CollectionNames(),
			MaxLookahead:    edm.DefaultMaxLookahead,
		},
		Survey: SurveyConfig{
			Workers:          runtime.NumCPU(),
			Pattern:          "*.edm",
			Output:           "survey.json.lz4",
			ProgressInterval: 2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// fileRoot mirrors the blocks of a configuration file. Absent attributes
// remain nil and keep their default.
type fileRoot struct {
	Decoder *struct {
		MaxStringLength *int     `hcl:"max_string_length,optional"`
		Markers         []string `hcl:"markers,optional"`
		MaxLookahead    *int     `hcl:"max_lookahead,optional"`
	} `hcl:"decoder,block"`
	Survey *struct {
		Workers          *int    `hcl:"workers,optional"`
		Pattern          *string `hcl:"pattern,optional"`
		Output           *string `hcl:"output,optional"`
		ProgressInterval *string `hcl:"progress_interval,optional"`
	} `hcl:"survey,block"`
	Log *struct {
		Level  *string `hcl:"level,optional"`
		Format *string `hcl:"format,optional"`
	} `hcl:"log,block"`
}

// Load reads the configuration file at path. If path is empty, the default
// configuration is returned.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, src, environ())
}

func environ() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// evalContext exposes env as the env object.
func evalContext(env map[string]string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

// Parse decodes the configuration in src. The syntax is chosen by the
// extension of filename, which must be ".hcl" or ".json". Values not set by
// src keep their default.
func Parse(filename string, src []byte, env map[string]string) (Config, error) {
	var root fileRoot
	if err := hclsimple.Decode(filename, src, evalContext(env), &root); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", filename, err)
	}

	c := Default()
	if d := root.Decoder; d != nil {
		setInt(&c.Decoder.MaxStringLength, d.MaxStringLength)
		setInt(&c.Decoder.MaxLookahead, d.MaxLookahead)
		if d.Markers != nil {
			c.Decoder.Markers = d.Markers
		}
	}
	if s := root.Survey; s != nil {
		setInt(&c.Survey.Workers, s.Workers)
		setString(&c.Survey.Pattern, s.Pattern)
		setString(&c.Survey.Output, s.Output)
		if s.ProgressInterval != nil {
			interval, err := time.ParseDuration(*s.ProgressInterval)
			if err != nil {
				return Config{}, fmt.Errorf("decode config %s: progress_interval: %w", filename, err)
			}
			c.Survey.ProgressInterval = interval
		}
	}
	if l := root.Log; l != nil {
		setString(&c.Log.Level, l.Level)
		setString(&c.Log.Format, l.Format)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", filename, err)
	}
	return c, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks that each value is within range.
func (c Config) Validate() error {
	if c.Decoder.MaxStringLength < 0 {
		return fmt.Errorf("max_string_length must not be negative")
	}
	if len(c.Decoder.Markers) == 0 {
		return fmt.Errorf("markers must not be empty")
	}
	for _, m := range c.Decoder.Markers {
		if m == "" {
			return fmt.Errorf("markers must not contain an empty name")
		}
	}
	if c.Survey.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.Survey.ProgressInterval <= 0 {
		return fmt.Errorf("progress_interval must be positive")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// DecoderOptions returns a decoder configured by the decoder block.
func (c Config) DecoderOptions() edm.Decoder {
	return edm.Decoder{
		MaxStringLength: c.Decoder.MaxStringLength,
		Scan: edm.ScanConfig{
			Markers:      c.Decoder.Markers,
			MaxLookahead: c.Decoder.MaxLookahead,
		},
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Logger returns a logger writing to w as configured by the log block.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

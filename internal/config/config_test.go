package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/edmtools/edmfile"
	"github.com/edmtools/edmfile/edm"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Equal(t, edm.DefaultMaxStringLength, c.Decoder.MaxStringLength)
	require.Equal(t, edmfile.CollectionNames(), c.Decoder.Markers)
	require.GreaterOrEqual(t, c.Survey.Workers, 1)
	require.Equal(t, "*.edm", c.Survey.Pattern)

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestParse(t *testing.T) {
	src := `
decoder {
  max_string_length = 400
  markers           = ["RENDER_NODES", "CONNECTORS"]
  max_lookahead     = -1
}

survey {
  workers           = 3
  output            = "${env.EDM_HOME}/survey.lz4"
  progress_interval = "500ms"
}

log {
  level  = "debug"
  format = "json"
}
`
	c, err := Parse("edm.hcl", []byte(src), map[string]string{"EDM_HOME": "/data"})
	require.NoError(t, err)

	require.Equal(t, 400, c.Decoder.MaxStringLength)
	require.Equal(t, []string{"RENDER_NODES", "CONNECTORS"}, c.Decoder.Markers)
	require.Equal(t, -1, c.Decoder.MaxLookahead)
	require.Equal(t, 3, c.Survey.Workers)
	require.Equal(t, "/data/survey.lz4", c.Survey.Output)
	require.Equal(t, 500*time.Millisecond, c.Survey.ProgressInterval)
	// Not set by the file.
	require.Equal(t, "*.edm", c.Survey.Pattern)
	require.Equal(t, LogConfig{Level: "debug", Format: "json"}, c.Log)

	d := c.DecoderOptions()
	require.Equal(t, 400, d.MaxStringLength)
	require.Equal(t, edm.ScanConfig{Markers: []string{"RENDER_NODES", "CONNECTORS"}, MaxLookahead: -1}, d.Scan)
}

func TestParsePartial(t *testing.T) {
	c, err := Parse("edm.hcl", []byte("log {\n  level = \"warn\"\n}\n"), nil)
	require.NoError(t, err)
	want := Default()
	want.Log.Level = "warn"
	require.Equal(t, want, c)

	c, err = Parse("edm.hcl", nil, nil)
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":         "decoder {",
		"unknown block":  "render {}",
		"unknown attr":   "decoder {\n  size = 1\n}\n",
		"type":           "survey {\n  workers = \"many\"\n}\n",
		"missing env":    "survey {\n  output = env.NOPE\n}\n",
		"workers":        "survey {\n  workers = 0\n}\n",
		"interval":       "survey {\n  progress_interval = \"soon\"\n}\n",
		"level":          "log {\n  level = \"loud\"\n}\n",
		"format":         "log {\n  format = \"xml\"\n}\n",
		"empty markers":  "decoder {\n  markers = []\n}\n",
		"negative limit": "decoder {\n  max_string_length = -5\n}\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("edm.hcl", []byte(src), map[string]string{})
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edm.hcl")
	require.NoError(t, os.WriteFile(path, []byte("survey {\n  pattern = \"*.EDM\"\n}\n"), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "*.EDM", c.Survey.Pattern)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	c := Default()
	c.Log.Format = "json"
	logger := c.Logger(&buf)
	logger.Debug("hidden")
	logger.Info("shown", "file", "a.edm")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"file":"a.edm"`)

	buf.Reset()
	c.Log = LogConfig{Level: "debug", Format: "text"}
	c.Logger(&buf).Debug("visible")
	require.True(t, strings.Contains(buf.String(), "msg=visible"), buf.String())
}

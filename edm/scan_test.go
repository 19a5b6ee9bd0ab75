package edm

import (
	"bytes"
	"testing"
)

func TestScanSection(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		markers   []string
		table     []string
		lookahead int
		ok        bool
		res       scanResult
	}{
		{
			name:    "immediate",
			data:    app(uint32(1), str("RENDER_NODES"), uint32(0)),
			markers: []string{"RENDER_NODES"},
			ok:      true,
			res:     scanResult{Offset: 0, Count: 1, Marker: "RENDER_NODES"},
		},
		{
			name:    "partial decoy",
			data:    app(uint32(12), "RENDER_NO", uint32(1), str("RENDER_NODES"), uint32(0)),
			markers: []string{"RENDER_NODES"},
			ok:      true,
			res:     scanResult{Offset: 13, Count: 1, Marker: "RENDER_NODES"},
		},
		{
			name:    "earliest end",
			data:    app("abc", uint32(2), str("CONNECTORS"), uint32(0), str("RENDER_NODES"), uint32(0)),
			markers: []string{"RENDER_NODES", "CONNECTORS"},
			ok:      true,
			res:     scanResult{Offset: 3, Count: 2, Marker: "CONNECTORS"},
		},
		{
			name:    "empty section",
			data:    app("abcd", uint32(0)),
			markers: []string{"RENDER_NODES"},
			ok:      true,
			res:     scanResult{Offset: 4},
		},
		{
			name:    "empty section before trailing bytes",
			data:    app("abcd", uint32(0), "tail"),
			markers: []string{"RENDER_NODES"},
			ok:      true,
			res:     scanResult{Offset: 4},
		},
		{
			name:      "empty section beyond lookahead",
			data:      app(bytes.Repeat([]byte{0xFF}, 60), uint32(0)),
			markers:   []string{"RENDER_NODES"},
			lookahead: 50,
		},
		{
			name:    "not found",
			data:    app("abcd", uint32(1)),
			markers: []string{"RENDER_NODES"},
		},
		{
			name:      "beyond lookahead",
			data:      app(bytes.Repeat([]byte{0xFF}, 100), uint32(1), str("CONNECTORS"), uint32(1)),
			markers:   []string{"CONNECTORS"},
			lookahead: 50,
		},
		{
			name:      "unbounded",
			data:      app(make([]byte, 100), uint32(1), str("CONNECTORS"), uint32(0)),
			markers:   []string{"CONNECTORS"},
			lookahead: -1,
			ok:        true,
			res:       scanResult{Offset: 100, Count: 1, Marker: "CONNECTORS"},
		},
		{
			name:    "string table",
			data:    app(byte(0xAA), uint32(2), uint32(1)),
			markers: []string{"RENDER_NODES", "CONNECTORS"},
			table:   []string{"model::RootNode", "CONNECTORS"},
			ok:      true,
			res:     scanResult{Offset: 1, Count: 2, Marker: "CONNECTORS"},
		},
	}
	for _, test := range tests {
		lookahead := test.lookahead
		if lookahead == 0 {
			lookahead = DefaultMaxLookahead
		}
		res, ok := scanSection(test.data, test.markers, test.table, lookahead)
		if ok != test.ok {
			t.Errorf("%s: expected ok %t, got %t", test.name, test.ok, ok)
			continue
		}
		if ok && res != test.res {
			t.Errorf("%s: expected %+v, got %+v", test.name, test.res, res)
		}
	}
}

func TestScanConfig(t *testing.T) {
	var c ScanConfig
	if len(c.markers()) != 4 {
		t.Errorf("expected default markers, got %v", c.markers())
	}
	if c.lookahead() != DefaultMaxLookahead {
		t.Errorf("unexpected default lookahead %d", c.lookahead())
	}
	c = ScanConfig{Markers: []string{"EXTRA_NODES"}, MaxLookahead: -1}
	if !c.known("EXTRA_NODES") || !c.known("LIGHT_NODES") || c.known("OTHER") {
		t.Error("unexpected result from known")
	}
	if c.lookahead() != -1 {
		t.Errorf("unexpected lookahead %d", c.lookahead())
	}
}

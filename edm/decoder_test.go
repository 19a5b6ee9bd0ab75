package edm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/edmtools/edmfile"
	"github.com/edmtools/edmfile/errors"
)

// rootBytes encodes a root node without materials, using enc to encode
// strings.
func rootBytes(enc func(string) []byte) []byte {
	return app(
		enc(edmfile.TagRootNode),
		enc("Scene Root"),
		uint32(2),            // version
		uint32(0),            // properties
		byte(0),              // unknown
		make([]byte, 18*8),   // bounding box and unknown vectors
		uint32(0),            // materials
		uint32(0), uint32(0), // unknown
	)
}

// minimal returns the smallest valid version 8 file, with the given node and
// object sections.
func minimal(nodes, objects []byte) []byte {
	if nodes == nil {
		nodes = app(uint32(0))
	}
	if objects == nil {
		objects = app(uint32(0))
	}
	return app("EDM", uint16(8), uint32(0), uint32(0), rootBytes(str), nodes, objects)
}

func warnings(warn error) []error {
	if warn == nil {
		return nil
	}
	if errs, ok := warn.(errors.Errors); ok {
		return errs
	}
	return []error{warn}
}

func TestDecodeMinimal(t *testing.T) {
	var stats DecoderStats
	f, warn, err := Decoder{Stats: &stats}.Decode(bytes.NewReader(minimal(nil, nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warn != nil {
		t.Errorf("unexpected warnings: %v", warn)
	}
	if f.Version != edmfile.Version8 {
		t.Errorf("unexpected version %d", f.Version)
	}
	if f.Root == nil || f.Root.Name != "Scene Root" || f.Root.Version != 2 {
		t.Fatalf("unexpected root %+v", f.Root)
	}
	if len(f.Root.Materials) != 0 || len(f.Nodes) != 0 || len(f.Parents) != 0 || len(f.Collections) != 0 {
		t.Errorf("expected empty file, got %+v", f)
	}
	if f.Padding != nil {
		t.Errorf("unexpected padding % x", f.Padding)
	}
	if stats.PaddingSize != 0 || stats.TrailingSize != 0 || stats.NodeCount != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.Tags[edmfile.TagRootNode] != 1 {
		t.Errorf("expected root tag to be counted, got %v", stats.Tags)
	}
}

func TestDecodeVersion10(t *testing.T) {
	table := "model::RootNode\x00Scene Root\x00"
	index := func(s string) []byte {
		for i, e := range strings.Split(strings.TrimSuffix(table, "\x00"), "\x00") {
			if e == s {
				return app(uint32(i))
			}
		}
		panic("missing string " + s)
	}
	data := app("EDM", uint16(10), uint32(len(table)), table, uint32(0), uint32(0), rootBytes(index), uint32(0), uint32(0))
	f, warn, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warn != nil {
		t.Errorf("unexpected warnings: %v", warn)
	}
	if f.Version != edmfile.Version10 || f.Root.Name != "Scene Root" {
		t.Errorf("unexpected file %+v", f)
	}
}

func TestDecodeErrors(t *testing.T) {
	plain := app(str(edmfile.TagNode), str("n"), uint32(0), uint32(0))
	tests := []struct {
		name  string
		data  []byte
		check func(err error) bool
	}{
		{"signature", app("EDN", uint16(8)), func(err error) bool {
			return errors.Is(err, ErrInvalidSig)
		}},
		{"version", app("EDM", uint16(9)), func(err error) bool {
			var v ErrUnrecognizedVersion
			return errors.As(err, &v) && v == 9
		}},
		{"truncated", minimal(nil, nil)[:20], func(err error) bool {
			return errors.Is(err, ErrTruncated)
		}},
		{"unknown tag", minimal(app(uint32(1), str("model::Bogus")), nil), func(err error) bool {
			var u UnknownTypeError
			var e ElementError
			return errors.As(err, &u) && u.Tag == "model::Bogus" &&
				errors.As(err, &e) && e.Section == "nodes" && e.Index == 0 && e.Tag == "model::Bogus"
		}},
		{"root type", app("EDM", uint16(8), uint32(0), uint32(0), plain), func(err error) bool {
			return errors.Is(err, ErrRootType)
		}},
		{"parent range", minimal(app(uint32(1), plain, int32(5)), nil), func(err error) bool {
			var s StructuralError
			return errors.As(err, &s)
		}},
		{"no section", minimal(app(uint32(0)), app(uint32(1))), func(err error) bool {
			var s StructuralError
			return errors.As(err, &s) && s.Reason == "object section not found"
		}},
		{"unknown collection", minimal(nil, app(uint32(2), str("RENDER_NODES"), uint32(0), str("BOGUS_NODES"), uint32(0))), func(err error) bool {
			var s StructuralError
			return errors.As(err, &s)
		}},
	}
	for _, test := range tests {
		_, _, err := Decoder{}.Decode(bytes.NewReader(test.data))
		if err == nil {
			t.Errorf("%s: expected error", test.name)
			continue
		}
		if !test.check(err) {
			t.Errorf("%s: unexpected error: %v", test.name, err)
		}
		var derr DataError
		if !errors.As(err, &derr) {
			t.Errorf("%s: expected DataError, got %T", test.name, err)
		}
	}
}

func TestDecodePadding(t *testing.T) {
	data := minimal(nil, app(1, 2, 3, uint32(0)))
	f, warn, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(f.Padding, []byte{1, 2, 3}) {
		t.Errorf("unexpected padding % x", f.Padding)
	}
	var pw PaddingWarning
	if !errors.As(warn, &pw) || pw.Size != 3 {
		t.Errorf("expected padding warning, got %v", warn)
	}

	// Padding survives a round trip.
	var buf bytes.Buffer
	if _, err := (Encoder{}).Encode(&buf, f); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	g, _, err := Decoder{}.Decode(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(g.Padding, f.Padding) {
		t.Errorf("padding changed to % x", g.Padding)
	}
}

func TestDecodeTrailing(t *testing.T) {
	data := app(minimal(nil, app(uint32(1), str("CONNECTORS"), uint32(0))), "junk")
	var stats DecoderStats
	f, warn, err := Decoder{Stats: &stats}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Collections) != 1 || f.Collections[0].Name != "CONNECTORS" || len(f.Collections[0].Objects) != 0 {
		t.Errorf("unexpected collections %+v", f.Collections)
	}
	var te TrailingDataError
	if !errors.As(warn, &te) || te.Size != 4 {
		t.Errorf("expected trailing data warning, got %v", warn)
	}
	if stats.TrailingSize != 4 {
		t.Errorf("unexpected trailing size %d", stats.TrailingSize)
	}
}

func TestDecodeEmptyTrailing(t *testing.T) {
	var buf bytes.Buffer
	if _, err := (Encoder{}).Encode(&buf, edmfile.NewFile()); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	for i, data := range [][]byte{
		app(minimal(nil, nil), byte(1), byte(2), byte(3), byte(4)),
		app(buf.Bytes(), byte(1), byte(2), byte(3), byte(4)),
	} {
		var stats DecoderStats
		f, warn, err := Decoder{Stats: &stats}.Decode(bytes.NewReader(data))
		if err != nil {
			t.Errorf("data %d: unexpected error: %v", i, err)
			continue
		}
		if len(f.Collections) != 0 || len(f.Padding) != 0 {
			t.Errorf("data %d: unexpected collections %+v, padding %v", i, f.Collections, f.Padding)
		}
		errs := warnings(warn)
		var te TrailingDataError
		if len(errs) != 1 || !errors.As(errs[0], &te) || te.Size != 4 || te.Offset != int64(len(data)-4) {
			t.Errorf("data %d: expected trailing data warning, got %v", i, warn)
		}
		if stats.TrailingSize != 4 {
			t.Errorf("data %d: unexpected trailing size %d", i, stats.TrailingSize)
		}
	}
}

func TestDecodeIndexMismatch(t *testing.T) {
	data := app("EDM", uint16(8),
		uint32(1), str(edmfile.TagRootNode), uint32(2),
		uint32(1), str(indexPropertiesSet), uint32(0),
		rootBytes(str), uint32(0), uint32(0),
	)
	_, warn, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	errs := warnings(warn)
	if len(errs) != 1 {
		t.Fatalf("expected 1 warning, got %v", warn)
	}
	want := IndexMismatch{Table: "A", Name: edmfile.TagRootNode, Stored: 2, Counted: 1}
	if errs[0] != want {
		t.Errorf("expected %v, got %v", want, errs[0])
	}
}

func TestDecodeIndexCount(t *testing.T) {
	f := edmfile.NewFile()
	f.Root.AddMaterial(edmfile.NewMaterial("m"))
	parent := f.AddNode(&edmfile.PlainNode{NodeBase: edmfile.NodeBase{Name: "p"}}, edmfile.NoRef)
	f.AddObject(edmfile.CollectionRenderNodes, &edmfile.RenderNode{
		NodeBase:   edmfile.NodeBase{Name: "r"},
		ParentData: []edmfile.ParentSection{{Parent: parent, End: -1}},
		Geometry: edmfile.Geometry{
			Stride:   1,
			Vertices: []float32{0, 1},
			Indices:  []uint32{0, 1},
		},
	})
	var buf bytes.Buffer
	if _, err := (Encoder{}).Encode(&buf, f); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	_, warn, err := Decoder{}.Decode(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ic IndexCountWarning
	if !errors.As(warn, &ic) || ic.Object != "r" || ic.Count != 2 {
		t.Errorf("expected index count warning, got %v", warn)
	}
}

func TestDecodeNil(t *testing.T) {
	if _, _, err := (Decoder{}).Decode(nil); err == nil {
		t.Error("expected error for nil reader")
	}
}

func TestDeserialize(t *testing.T) {
	f, err := Deserialize(bytes.NewReader(minimal(nil, app(9, uint32(0)))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Padding) != 1 {
		t.Errorf("unexpected padding % x", f.Padding)
	}
}

func TestGeometryStride(t *testing.T) {
	var g edmfile.Geometry
	r := reader(uint32(2), uint32(0), byte(indexUint8), uint32(0), uint32(0))
	if !readGeometry(r, "mesh", &g) {
		t.Fatal("expected failure for vertices without stride")
	}
	var serr StructuralError
	if !errors.As(r.Err(), &serr) || serr.Offset != 4 {
		t.Errorf("unexpected error %v", r.Err())
	}

	// No vertices and no stride is an empty buffer.
	g = edmfile.Geometry{}
	r = reader(uint32(0), uint32(0), byte(indexUint8), uint32(0), uint32(0))
	if readGeometry(r, "mesh", &g) {
		t.Fatalf("unexpected error: %v", r.Err())
	}
	if g.VertexCount() != 0 || len(g.Indices) != 0 {
		t.Errorf("unexpected geometry %+v", g)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	if !writeGeometry(w, "mesh", &edmfile.Geometry{Vertices: []float32{1, 2}}) {
		t.Fatal("expected failure for vertices without stride")
	}
	if !errors.As(w.Err(), &serr) {
		t.Errorf("unexpected error %v", w.Err())
	}
}

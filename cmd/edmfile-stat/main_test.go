package main

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/edmtools/edmfile"
)

func TestFill(t *testing.T) {
	f := edmfile.NewFile()
	m := f.Root.AddMaterial(edmfile.NewMaterial("paint"))
	anim := edmfile.NewArgAnimation()
	anim.RotationTracks = []edmfile.RotationTrack{{Argument: 3}}
	a := f.AddNode(&edmfile.ArgRotationNode{NodeBase: edmfile.NodeBase{Name: "gear"}, ArgAnimation: anim}, edmfile.NoRef)
	b := f.AddNode(&edmfile.PlainNode{NodeBase: edmfile.NodeBase{Name: "wheel"}}, a)
	f.AddObject(edmfile.CollectionRenderNodes, &edmfile.RenderNode{
		NodeBase:   edmfile.NodeBase{Name: "wheel_mesh"},
		Material:   m,
		ParentData: []edmfile.ParentSection{{Parent: b, End: -1}},
		Geometry: edmfile.Geometry{
			Stride:   9,
			Vertices: make([]float32, 36),
			Indices:  []uint32{0, 1, 2, 1, 2, 3},
		},
	})
	f.AddObject(edmfile.CollectionConnectors, &edmfile.Connector{NodeBase: edmfile.NodeBase{Name: "pylon"}, Parent: b})

	var s Stats
	s.Fill(f)
	if s.NodeCount != 2 || s.MaxDepth != 2 {
		t.Errorf("unexpected node count %d and depth %d", s.NodeCount, s.MaxDepth)
	}
	wantTypes := map[string]int{edmfile.TagArgRotationNode: 1, edmfile.TagNode: 1}
	if !reflect.DeepEqual(s.NodeTypeCount, wantTypes) {
		t.Errorf("unexpected node types %v", s.NodeTypeCount)
	}
	if !reflect.DeepEqual(s.ArgumentCount, map[uint32]int{3: 1}) {
		t.Errorf("unexpected arguments %v", s.ArgumentCount)
	}
	wantCollections := map[string]int{edmfile.CollectionRenderNodes: 1, edmfile.CollectionConnectors: 1}
	if !reflect.DeepEqual(s.CollectionCount, wantCollections) {
		t.Errorf("unexpected collections %v", s.CollectionCount)
	}
	if s.VertexCount != 4 || s.TriangleCount != 2 {
		t.Errorf("unexpected geometry totals %d, %d", s.VertexCount, s.TriangleCount)
	}
	if !reflect.DeepEqual(s.Materials, []string{"paint"}) {
		t.Errorf("unexpected materials %v", s.Materials)
	}
	if s.CountedA[edmfile.TagRootNode] != 1 {
		t.Errorf("unexpected counted table %v", s.CountedA)
	}
	if len(s.LargestObjects) != 1 || s.LargestObjects[0].Name != "wheel_mesh" {
		t.Errorf("unexpected largest objects %v", s.LargestObjects)
	}

	b2, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(b2), `"Name":"wheel_mesh"`) {
		t.Errorf("unexpected JSON %s", b2)
	}

	var empty Stats
	empty.Fill(nil)
	if empty.NodeTypeCount != nil {
		t.Error("expected no stats for nil file")
	}
}

func TestLargestObjects(t *testing.T) {
	var l ObjectSizeList
	for i := 0; i < 25; i++ {
		l = append(l, ObjectSize{Index: i, Vertices: i})
	}
	b, err := l.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []ObjectSize
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 20 || got[0].Vertices != 24 || got[19].Vertices != 5 {
		t.Errorf("unexpected list %v", got)
	}
	if l[0].Vertices != 0 {
		t.Error("MarshalJSON reordered the list")
	}
}

package edmfile

import (
	"errors"
	"testing"
)

// sectionedNode returns a render node whose sections cover the given triangle
// counts. Each triangle uses three vertices of its own.
func sectionedNode(counts ...int) *RenderNode {
	n := &RenderNode{NodeBase: NodeBase{Name: "node"}}
	n.Stride = 2
	tri := 0
	for k, c := range counts {
		for i := 0; i < c; i++ {
			for j := 0; j < 3; j++ {
				v := uint32(tri*3 + j)
				n.Indices = append(n.Indices, v)
				n.Vertices = append(n.Vertices, float32(v), float32(k))
			}
			tri++
		}
		n.ParentData = append(n.ParentData, ParentSection{Parent: Ref(k), End: int32(tri)})
	}
	return n
}

func TestGeometryAccessors(t *testing.T) {
	g := Geometry{Stride: 3, Vertices: []float32{0, 1, 2, 3, 4, 5}, Indices: []uint32{1, 0, 1}}
	if g.VertexCount() != 2 {
		t.Errorf("unexpected vertex count %d", g.VertexCount())
	}
	if v := g.Vertex(1); len(v) != 3 || v[0] != 3 {
		t.Errorf("unexpected vertex %v", v)
	}
	if g.TriangleCount() != 1 || g.Triangle(0) != [3]uint32{1, 0, 1} {
		t.Errorf("unexpected triangle %v", g.Triangle(0))
	}
	if (&Geometry{}).VertexCount() != 0 {
		t.Error("expected zero vertices for zero stride")
	}
}

func TestIndexWidth(t *testing.T) {
	for _, test := range []struct {
		vertices int
		width    int
	}{
		{0, 1},
		{256, 1},
		{257, 2},
		{1 << 16, 2},
		{1<<16 + 1, 4},
	} {
		g := Geometry{Stride: 1, Vertices: make([]float32, test.vertices)}
		if w := g.IndexWidth(); w != test.width {
			t.Errorf("%d vertices: expected width %d, got %d", test.vertices, test.width, w)
		}
	}
}

func TestSplit(t *testing.T) {
	n := sectionedNode(10, 15)
	children, err := n.Split()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if a, b := children[0].TriangleCount(), children[1].TriangleCount(); a != 10 || b != 15 {
		t.Errorf("expected 10 and 15 triangles, got %d and %d", a, b)
	}

	var vertices, triangles int
	for k, child := range children {
		vertices += child.VertexCount()
		triangles += child.TriangleCount()
		if len(child.ParentData) != 1 || child.ParentData[0].Parent != Ref(k) || child.ParentData[0].End != -1 {
			t.Errorf("child %d: unexpected parent data %v", k, child.ParentData)
		}
		for _, idx := range child.Indices {
			if int(idx) >= child.VertexCount() {
				t.Errorf("child %d: index %d outside of %d vertices", k, idx, child.VertexCount())
			}
			// The second float of each vertex holds its section.
			if v := child.Vertex(int(idx)); v[1] != float32(k) {
				t.Errorf("child %d: index %d refers to vertex of section %g", k, idx, v[1])
			}
		}
	}
	if vertices != n.VertexCount() {
		t.Errorf("expected %d vertices across children, got %d", n.VertexCount(), vertices)
	}
	if triangles != n.TriangleCount() {
		t.Errorf("expected %d triangles across children, got %d", n.TriangleCount(), triangles)
	}
	if children[1].Indices[0] != 0 {
		t.Errorf("expected rebased indices, got %d", children[1].Indices[0])
	}

	// Original is unchanged.
	if n.VertexCount() != 75 || n.TriangleCount() != 25 {
		t.Error("split modified the original node")
	}
}

func TestSplitSingle(t *testing.T) {
	n := sectionedNode(4)
	children, err := n.Split()
	if err != nil || children != nil {
		t.Errorf("expected no split, got %v, %v", children, err)
	}
}

func TestSplitCrossing(t *testing.T) {
	n := sectionedNode(2, 2)
	// A triangle of the first section uses a vertex of the second.
	n.Indices[5] = 7
	_, err := n.Split()
	var perr PartitionError
	if !errors.As(err, &perr) || perr.Section != 0 || perr.Triangle != 1 {
		t.Errorf("expected partition error, got %v", err)
	}
}

func TestPartitions(t *testing.T) {
	tests := []struct {
		name     string
		sections []ParentSection
		indices  int
		ranges   [][2]int
		fail     bool
	}{
		{"open", []ParentSection{{End: 2}, {End: -1}}, 12, [][2]int{{0, 2}, {2, 4}}, false},
		{"closed", []ParentSection{{End: 1}, {End: 4}}, 12, [][2]int{{0, 1}, {1, 4}}, false},
		{"open first", []ParentSection{{End: -1}, {End: 4}}, 12, nil, true},
		{"beyond", []ParentSection{{End: 5}}, 12, nil, true},
		{"backward", []ParentSection{{End: 3}, {End: 2}}, 12, nil, true},
		{"short", []ParentSection{{End: 1}, {End: 3}}, 12, nil, true},
		{"partial triangle", []ParentSection{{End: -1}}, 10, nil, true},
	}
	for _, test := range tests {
		n := &RenderNode{ParentData: test.sections}
		n.Indices = make([]uint32, test.indices)
		ranges, err := n.Partitions()
		if test.fail {
			if err == nil {
				t.Errorf("%s: expected error", test.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if len(ranges) != len(test.ranges) {
			t.Errorf("%s: unexpected ranges %v", test.name, ranges)
			continue
		}
		for i := range ranges {
			if ranges[i] != test.ranges[i] {
				t.Errorf("%s: unexpected ranges %v", test.name, ranges)
				break
			}
		}
	}
}

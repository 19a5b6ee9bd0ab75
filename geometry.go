package edmfile

import (
	"fmt"
)

// Geometry is a vertex buffer together with a triangle list indexing into it.
type Geometry struct {
	// Stride is the number of floats of each vertex.
	Stride int
	// Vertices contains the vertex data, Stride floats per vertex.
	Vertices []float32
	// IndexPrefix precedes the index data. Observed values are 1 and 5.
	IndexPrefix uint32
	// Indices is a triangle list.
	Indices []uint32
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	if g.Stride <= 0 {
		return 0
	}
	return len(g.Vertices) / g.Stride
}

// Vertex returns the floats of vertex i.
func (g *Geometry) Vertex(i int) []float32 {
	return g.Vertices[i*g.Stride : (i+1)*g.Stride]
}

// TriangleCount returns the number of complete triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Triangle returns the indices of triangle i.
func (g *Geometry) Triangle(i int) [3]uint32 {
	return [3]uint32{g.Indices[i*3], g.Indices[i*3+1], g.Indices[i*3+2]}
}

// IndexWidth returns the size in bytes of each index when encoded, which
// depends on the number of vertices.
func (g *Geometry) IndexWidth() int {
	switch n := g.VertexCount(); {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	default:
		return 4
	}
}

////////////////////////////////////////////////////////////////

// ParentSection assigns a range of triangles of a RenderNode to a parent node.
type ParentSection struct {
	Parent Ref
	// End is the exclusive triangle offset where the section ends. A value
	// less than zero indicates that the section extends to the end of the
	// index buffer, which is only meaningful for the last section.
	End int32
}

// RenderNode is renderable geometry attached to one or more nodes.
type RenderNode struct {
	NodeBase
	Unknown  uint32
	Material Ref
	// ParentData partitions the triangles between parent nodes.
	ParentData []ParentSection
	Geometry

	// Children contains one render node per parent section, after the file
	// has been postprocessed. It is never encoded.
	Children []*RenderNode
}

func (*RenderNode) TypeName() string { return TagRenderNode }

// ShellNode is collision geometry.
type ShellNode struct {
	NodeBase
	Parent       Ref
	VertexFormat VertexFormat
	Geometry
}

func (*ShellNode) TypeName() string { return TagShellNode }

// SkinNode is geometry deformed by bones.
type SkinNode struct {
	NodeBase
	Unknown  uint32
	Material Ref
	// Bones refers to the nodes that deform the geometry.
	Bones     []Ref
	PostBones uint32
	Geometry
}

func (*SkinNode) TypeName() string { return TagSkinNode }

////////////////////////////////////////////////////////////////

// PartitionError indicates that the geometry of a render node cannot be split
// along its parent sections.
type PartitionError struct {
	// Section is the index of the offending parent section.
	Section int
	// Triangle is the index of the offending triangle, or -1.
	Triangle int
	Reason   string
}

func (err PartitionError) Error() string {
	if err.Triangle < 0 {
		return fmt.Sprintf("parent section %d: %s", err.Section, err.Reason)
	}
	return fmt.Sprintf("parent section %d: triangle %d: %s", err.Section, err.Triangle, err.Reason)
}

// Partitions returns the triangle range [start, end) of each parent section.
func (n *RenderNode) Partitions() ([][2]int, error) {
	if len(n.Indices)%3 != 0 {
		return nil, PartitionError{Section: -1, Triangle: -1, Reason: fmt.Sprintf("index count %d is not a multiple of 3", len(n.Indices))}
	}
	tris := n.TriangleCount()
	ranges := make([][2]int, len(n.ParentData))
	start := 0
	for i, s := range n.ParentData {
		end := int(s.End)
		if s.End < 0 {
			if i != len(n.ParentData)-1 {
				return nil, PartitionError{Section: i, Triangle: -1, Reason: "open-ended section is not last"}
			}
			end = tris
		}
		if end < start || end > tris {
			return nil, PartitionError{Section: i, Triangle: -1, Reason: fmt.Sprintf("end %d outside of [%d, %d]", end, start, tris)}
		}
		ranges[i] = [2]int{start, end}
		start = end
	}
	if len(ranges) > 0 && start != tris {
		return nil, PartitionError{Section: len(ranges) - 1, Triangle: -1, Reason: fmt.Sprintf("sections end at %d of %d triangles", start, tris)}
	}
	return ranges, nil
}

// Split divides the geometry of a render node with several parent sections
// into one render node per section. Each child holds only the triangles of its
// section, and the contiguous block of vertices they use, with indices rebased
// to the start of the block. Returns nil if the node has fewer than two
// sections.
//
// An error is returned if any triangle references vertices outside of the
// block of its section.
func (n *RenderNode) Split() ([]*RenderNode, error) {
	if len(n.ParentData) < 2 {
		return nil, nil
	}
	ranges, err := n.Partitions()
	if err != nil {
		return nil, err
	}

	// Each section owns the vertices from the lowest index it uses up to the
	// first vertex of the next section.
	bounds := make([]int, len(ranges)+1)
	bounds[len(ranges)] = n.VertexCount()
	for k := len(ranges) - 1; k >= 1; k-- {
		lo := bounds[k+1]
		for _, idx := range n.Indices[ranges[k][0]*3 : ranges[k][1]*3] {
			if int(idx) < lo {
				lo = int(idx)
			}
		}
		bounds[k] = lo
	}

	for k, r := range ranges {
		lo, hi := bounds[k], bounds[k+1]
		for t := r[0]; t < r[1]; t++ {
			for _, idx := range n.Triangle(t) {
				if int(idx) < lo || int(idx) >= hi {
					return nil, PartitionError{
						Section:  k,
						Triangle: t,
						Reason:   fmt.Sprintf("index %d crosses section vertex range [%d, %d)", idx, lo, hi),
					}
				}
			}
		}
	}

	children := make([]*RenderNode, len(ranges))
	for k, r := range ranges {
		lo, hi := bounds[k], bounds[k+1]
		child := &RenderNode{
			NodeBase: NodeBase{
				Name:    fmt.Sprintf("%s_%d", n.Name, k),
				Version: n.Version,
			},
			Unknown:    n.Unknown,
			Material:   n.Material,
			ParentData: []ParentSection{{Parent: n.ParentData[k].Parent, End: -1}},
			Geometry: Geometry{
				Stride:      n.Stride,
				Vertices:    append([]float32(nil), n.Vertices[lo*n.Stride:hi*n.Stride]...),
				IndexPrefix: n.IndexPrefix,
				Indices:     make([]uint32, 0, (r[1]-r[0])*3),
			},
		}
		for _, idx := range n.Indices[r[0]*3 : r[1]*3] {
			child.Indices = append(child.Indices, idx-uint32(lo))
		}
		children[k] = child
	}
	return children, nil
}

package edm

import (
	"github.com/edmtools/edmfile"
)

// Names counted by the audit that are not type tags.
const (
	indexPropertiesSet   = "model::PropertiesSet"
	indexPositionTrack   = "model::ArgAnimationNode::Position"
	indexRotationTrack   = "model::ArgAnimationNode::Rotation"
	indexScaleTrack      = "model::ArgAnimationNode::Scale"
	indexVisibilityArg   = "model::ArgVisibilityNode::Arg"
	indexVisibilityRange = "model::ArgVisibilityNode::Range"
	indexLodLevel        = "model::LodNode::Level"
	indexSegments        = "model::SegmentsNode::Segments"
	indexFakeOmniLight   = "model::FakeOmniLight"
	indexFakeSpotLight   = "model::FakeSpotLight"
	indexFakeALSLight    = "model::FakeALSLight"
	indexRenderVertices  = "__gv_bytes"
	indexRenderIndices   = "__gi_bytes"
	indexShellVertices   = "__cv_bytes"
	indexShellIndices    = "__ci_bytes"
)

// auditor counts occurrences within a file.
type auditor struct {
	a, b map[string]uint32
	// width returns the encoded size of each index of g.
	width func(g *edmfile.Geometry) int
}

// Audit traverses f and returns the index tables that describe it. IndexA
// counts the root, each node, and each render object by type. IndexB counts
// properties, keys, tracks, and the total size in bytes of geometry buffers.
// Tables are sorted by name.
func Audit(f *edmfile.File) (indexA, indexB edmfile.IndexTable) {
	a, b := audit(f, nil)
	return edmfile.TableFromMap(a), edmfile.TableFromMap(b)
}

func audit(f *edmfile.File, width func(g *edmfile.Geometry) int) (a, b map[string]uint32) {
	if width == nil {
		width = func(g *edmfile.Geometry) int { return g.IndexWidth() }
	}
	c := auditor{
		a:     map[string]uint32{},
		b:     map[string]uint32{},
		width: width,
	}
	if f.Root != nil {
		c.a[f.Root.TypeName()]++
		c.props(f.Root.Props)
		for _, m := range f.Root.Materials {
			c.material(m)
		}
	}
	for _, node := range f.Nodes {
		c.node(node)
	}
	for _, coll := range f.Collections {
		for _, obj := range coll.Objects {
			c.object(obj)
		}
	}
	return c.a, c.b
}

// props counts the properties of set, without counting the set itself.
func (c *auditor) props(set edmfile.PropertySet) {
	for _, p := range set {
		if p.Value == nil {
			continue
		}
		c.b[p.TypeName()]++
		if v, ok := p.Value.(edmfile.ValueAnimatedFloat); ok {
			c.b[edmfile.TagFloatKey] += uint32(len(v.Keys))
		}
	}
}

// set counts the properties of set, and the set itself when not empty.
func (c *auditor) set(set edmfile.PropertySet) {
	if len(set) > 0 {
		c.b[indexPropertiesSet]++
	}
	c.props(set)
}

func (c *auditor) material(m *edmfile.Material) {
	if m == nil {
		return
	}
	c.set(m.Uniforms)
	c.props(m.AnimatedUniforms)
}

func (c *auditor) animation(a *edmfile.ArgAnimation) {
	for _, t := range a.PositionTracks {
		c.b[indexPositionTrack]++
		c.b[edmfile.TagPositionKey] += uint32(len(t.Keys))
	}
	for _, t := range a.RotationTracks {
		c.b[indexRotationTrack]++
		c.b[edmfile.TagRotationKey] += uint32(len(t.Keys))
	}
	for _, t := range a.ScaleTracks {
		c.b[indexScaleTrack]++
		c.b[edmfile.TagScaleKey] += uint32(len(t.Keys))
	}
}

func (c *auditor) node(node edmfile.Node) {
	if node == nil {
		return
	}
	c.a[node.TypeName()]++
	if _, ok := node.(*edmfile.ArgAnimatedBone); !ok {
		c.set(node.Base().Props)
	}
	switch n := node.(type) {
	case *edmfile.ArgAnimationNode:
		c.animation(&n.ArgAnimation)
	case *edmfile.ArgRotationNode, *edmfile.ArgPositionNode, *edmfile.ArgScaleNode:
		c.a[edmfile.TagArgAnimationNode]++
		c.animation(edmfile.Animation(n))
	case *edmfile.ArgVisibilityNode:
		for _, t := range n.Tracks {
			c.b[indexVisibilityArg]++
			c.b[indexVisibilityRange] += uint32(len(t.Ranges))
		}
	case *edmfile.LodNode:
		c.b[indexLodLevel] += uint32(len(n.Levels))
	case *edmfile.SegmentsNode:
		c.b[indexSegments] += uint32(len(n.Segments))
	case *edmfile.FakeOmniLightsNode:
		c.b[indexFakeOmniLight] += uint32(len(n.Lights))
	case *edmfile.FakeSpotLightsNode:
		c.b[indexFakeSpotLight] += uint32(len(n.Lights))
	case *edmfile.FakeALSNode:
		c.b[indexFakeALSLight] += uint32(len(n.Lights))
	}
}

func (c *auditor) geometry(g *edmfile.Geometry, vertices, indices string) {
	c.b[vertices] += uint32(4 * len(g.Vertices))
	c.b[indices] += uint32(c.width(g) * len(g.Indices))
}

func (c *auditor) object(obj edmfile.Element) {
	if obj == nil {
		return
	}
	c.a[obj.TypeName()]++
	if n, ok := obj.(edmfile.Node); ok {
		c.set(n.Base().Props)
	}
	switch n := obj.(type) {
	case *edmfile.LightNode:
		c.set(n.Light)
	case *edmfile.RenderNode:
		c.geometry(&n.Geometry, indexRenderVertices, indexRenderIndices)
	case *edmfile.SkinNode:
		c.geometry(&n.Geometry, indexRenderVertices, indexRenderIndices)
	case *edmfile.ShellNode:
		c.geometry(&n.Geometry, indexShellVertices, indexShellIndices)
	}
}

// compareTables returns an IndexMismatch for each name of stored whose count
// differs from counted, in the order of stored. Names that are counted but
// not stored are not reported.
func compareTables(table string, stored edmfile.IndexTable, counted map[string]uint32) []error {
	var errs []error
	for _, e := range stored {
		if n := counted[e.Name]; n != e.Count {
			errs = append(errs, IndexMismatch{
				Table:   table,
				Name:    e.Name,
				Stored:  e.Count,
				Counted: n,
			})
		}
	}
	return errs
}

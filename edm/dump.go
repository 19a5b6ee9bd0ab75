package edm

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode"

	"github.com/edmtools/edmfile"
	"github.com/edmtools/edmfile/errors"
	"golang.org/x/crypto/blake2b"
)

// Dump writes to w a readable representation of the file decoded from r.
func (d Decoder) Dump(w io.Writer, r io.Reader) (warn, err error) {
	if r == nil {
		return nil, errors.New("nil reader")
	}
	if w == nil {
		return nil, errors.New("nil writer")
	}

	stats := d.Stats
	if stats == nil {
		stats = &DecoderStats{}
	}
	d.Stats = stats
	f, warn, err := d.Decode(r)
	if err != nil {
		return warn, err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Version: %d", f.Version)
	dumpTable(bw, 0, "IndexA", f.IndexA)
	dumpTable(bw, 0, "IndexB", f.IndexB)
	bw.WriteString("\nRoot: ")
	dumpNode(bw, 0, f.Root)
	fmt.Fprintf(bw, "\nNodes: (count:%d) {", len(f.Nodes))
	for i, node := range f.Nodes {
		dumpNewline(bw, 1)
		fmt.Fprintf(bw, "#%d (parent:%d): ", i, f.Parents[i])
		dumpNode(bw, 1, node)
	}
	bw.WriteString("\n}")
	if len(f.Padding) > 0 {
		fmt.Fprintf(bw, "\nPadding: (offset:%d) ", stats.SectionOffset-int64(len(f.Padding)))
		dumpBytes(bw, 0, f.Padding)
	}
	fmt.Fprintf(bw, "\nObjects: (offset:%d) (count:%d) {", stats.SectionOffset, len(f.Collections))
	for _, c := range f.Collections {
		dumpNewline(bw, 1)
		dumpString(bw, 1, c.Name)
		fmt.Fprintf(bw, ": (count:%d) {", len(c.Objects))
		for j, obj := range c.Objects {
			dumpNewline(bw, 2)
			fmt.Fprintf(bw, "#%d: ", j)
			dumpObject(bw, 2, obj)
		}
		dumpNewline(bw, 1)
		bw.WriteByte('}')
	}
	bw.WriteString("\n}")
	if stats.TrailingSize > 0 {
		fmt.Fprintf(bw, "\nTrailing: %d bytes", stats.TrailingSize)
	}
	bw.WriteByte('\n')

	return warn, bw.Flush()
}

func dumpTable(w *bufio.Writer, indent int, name string, t edmfile.IndexTable) {
	dumpNewline(w, indent)
	fmt.Fprintf(w, "%s: (count:%d) {", name, len(t))
	for _, e := range t {
		dumpNewline(w, indent+1)
		dumpString(w, indent+1, e.Name)
		fmt.Fprintf(w, ": %d", e.Count)
	}
	dumpNewline(w, indent)
	w.WriteByte('}')
}

func dumpProps(w *bufio.Writer, indent int, name string, set edmfile.PropertySet) {
	if len(set) == 0 {
		return
	}
	dumpNewline(w, indent)
	fmt.Fprintf(w, "%s: (count:%d) {", name, len(set))
	for _, p := range set {
		dumpNewline(w, indent+1)
		dumpString(w, indent+1, p.Name)
		if p.Value == nil {
			w.WriteString(": <nil>")
			continue
		}
		fmt.Fprintf(w, ": %s = %s", p.Value.Type(), p.Value.String())
	}
	dumpNewline(w, indent)
	w.WriteByte('}')
}

func dumpBase(w *bufio.Writer, indent int, b *edmfile.NodeBase) {
	dumpNewline(w, indent)
	w.WriteString("Name: ")
	dumpString(w, indent, b.Name)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Version: %d", b.Version)
	dumpProps(w, indent, "Props", b.Props)
}

func dumpMatrix(w *bufio.Writer, indent int, name string, m []float64) {
	dumpNewline(w, indent)
	fmt.Fprintf(w, "%s: %v", name, m)
}

func dumpAnimation(w *bufio.Writer, indent int, a *edmfile.ArgAnimation) {
	dumpMatrix(w, indent, "Matrix", a.Matrix[:])
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Position: %v", a.Position)
	for i, q := range a.Orientation {
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Orientation%d: w:%g v:%v", i, q.W, q.V)
	}
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Scale: %v", a.Scale)
	for _, t := range a.PositionTracks {
		dumpNewline(w, indent)
		fmt.Fprintf(w, "PositionTrack: (arg:%d) (keys:%d) {", t.Argument, len(t.Keys))
		for _, k := range t.Keys {
			dumpNewline(w, indent+1)
			fmt.Fprintf(w, "%g: %v", k.Frame, k.Value)
		}
		dumpNewline(w, indent)
		w.WriteByte('}')
	}
	for _, t := range a.RotationTracks {
		dumpNewline(w, indent)
		fmt.Fprintf(w, "RotationTrack: (arg:%d) (keys:%d) {", t.Argument, len(t.Keys))
		for _, k := range t.Keys {
			dumpNewline(w, indent+1)
			fmt.Fprintf(w, "%g: w:%g v:%v", k.Frame, k.Value.W, k.Value.V)
		}
		dumpNewline(w, indent)
		w.WriteByte('}')
	}
	for _, t := range a.ScaleTracks {
		dumpNewline(w, indent)
		fmt.Fprintf(w, "ScaleTrack: (arg:%d) (keys:%d) {", t.Argument, len(t.Keys))
		for _, k := range t.Keys {
			dumpNewline(w, indent+1)
			fmt.Fprintf(w, "%g: %v", k.Frame, k.Value)
		}
		dumpNewline(w, indent)
		w.WriteByte('}')
	}
}

func dumpMaterial(w *bufio.Writer, indent int, i int, m *edmfile.Material) {
	dumpNewline(w, indent)
	fmt.Fprintf(w, "#%d: {", i)
	indent++
	dumpNewline(w, indent)
	w.WriteString("Name: ")
	dumpString(w, indent, m.Name)
	dumpNewline(w, indent)
	w.WriteString("BaseMaterial: ")
	dumpString(w, indent, m.BaseMaterial)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Blending: %d  Culling: %d  Shadows: %d  DepthBias: %d", m.Blending, m.Culling, m.Shadows, m.DepthBias)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "TexCoordChannels: %v", m.TexCoordChannels)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "VertexFormat: %v (stride:%d)", m.VertexFormat[:], m.VertexFormat.Stride())
	dumpProps(w, indent, "Uniforms", m.Uniforms)
	dumpProps(w, indent, "AnimatedUniforms", m.AnimatedUniforms)
	for _, t := range m.Textures {
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Texture: (index:%d) ", t.Index)
		dumpString(w, indent, t.Name)
	}
	indent--
	dumpNewline(w, indent)
	w.WriteByte('}')
}

func dumpNode(w *bufio.Writer, indent int, node edmfile.Node) {
	w.WriteString(node.TypeName())
	w.WriteString(" {")
	indent++
	switch n := node.(type) {
	case *edmfile.ArgAnimatedBone:
		dumpNewline(w, indent)
		w.WriteString("Name: ")
		dumpString(w, indent, n.Name)
		dumpNewline(w, indent)
		w.WriteString("Data: ")
		dumpBytes(w, indent, n.Data[:])
	default:
		dumpBase(w, indent, node.Base())
	}
	switch n := node.(type) {
	case *edmfile.RootNode:
		dumpNewline(w, indent)
		fmt.Fprintf(w, "BoundingBox: %v - %v", n.BoundingBoxMin, n.BoundingBoxMax)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Materials: (count:%d) {", len(n.Materials))
		for i, m := range n.Materials {
			dumpMaterial(w, indent+1, i, m)
		}
		dumpNewline(w, indent)
		w.WriteByte('}')
	case *edmfile.TransformNode:
		dumpMatrix(w, indent, "Matrix", n.Matrix[:])
	case *edmfile.Bone:
		dumpMatrix(w, indent, "Matrix", n.Matrix[:])
		dumpMatrix(w, indent, "InverseMatrix", n.InverseMatrix[:])
	case *edmfile.ArgVisibilityNode:
		for _, t := range n.Tracks {
			dumpNewline(w, indent)
			fmt.Fprintf(w, "VisibilityTrack: (arg:%d) %v", t.Argument, t.Ranges)
		}
	case *edmfile.LodNode:
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Levels: %v", n.Levels)
	case *edmfile.BillboardNode:
		dumpNewline(w, indent)
		w.WriteString("Data: ")
		dumpBytes(w, indent, n.Data[:])
	case *edmfile.SegmentsNode:
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Segments: (count:%d)", len(n.Segments))
	case *edmfile.FakeOmniLightsNode:
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Lights: (count:%d)", len(n.Lights))
	case *edmfile.FakeSpotLightsNode:
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Lights: (count:%d)", len(n.Lights))
	case *edmfile.FakeALSNode:
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Lights: (count:%d)", len(n.Lights))
	default:
		if a := edmfile.Animation(node); a != nil {
			dumpAnimation(w, indent, a)
		}
	}
	indent--
	dumpNewline(w, indent)
	w.WriteByte('}')
}

func dumpObject(w *bufio.Writer, indent int, obj edmfile.Element) {
	w.WriteString(obj.TypeName())
	w.WriteString(" {")
	indent++
	if n, ok := obj.(edmfile.Node); ok {
		dumpBase(w, indent, n.Base())
	}
	switch n := obj.(type) {
	case *edmfile.Connector:
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Parent: %d", n.Parent)
	case *edmfile.LightNode:
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Parent: %d", n.Parent)
		dumpProps(w, indent, "Light", n.Light)
	case *edmfile.RenderNode:
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Material: %d", n.Material)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "ParentData: %v", n.ParentData)
		dumpGeometry(w, indent, &n.Geometry)
	case *edmfile.ShellNode:
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Parent: %d", n.Parent)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "VertexFormat: %v", n.VertexFormat[:])
		dumpGeometry(w, indent, &n.Geometry)
	case *edmfile.SkinNode:
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Material: %d", n.Material)
		dumpNewline(w, indent)
		fmt.Fprintf(w, "Bones: %v", n.Bones)
		dumpGeometry(w, indent, &n.Geometry)
	}
	indent--
	dumpNewline(w, indent)
	w.WriteByte('}')
}

// Fingerprint returns the BLAKE2b-256 hash of the encoded vertex and index
// data of g, which identifies geometry independently of the index width.
func Fingerprint(g *edmfile.Geometry) (vertices, indices [32]byte) {
	vb := make([]byte, 4*len(g.Vertices))
	for i, v := range g.Vertices {
		binary.LittleEndian.PutUint32(vb[4*i:], math.Float32bits(v))
	}
	ib := make([]byte, 4*len(g.Indices))
	for i, v := range g.Indices {
		binary.LittleEndian.PutUint32(ib[4*i:], v)
	}
	return blake2b.Sum256(vb), blake2b.Sum256(ib)
}

func dumpGeometry(w *bufio.Writer, indent int, g *edmfile.Geometry) {
	vh, ih := Fingerprint(g)
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Vertices: (count:%d) (stride:%d) (blake2b:%s)", g.VertexCount(), g.Stride, hex.EncodeToString(vh[:8]))
	dumpNewline(w, indent)
	fmt.Fprintf(w, "Indices: (count:%d) (prefix:%d) (blake2b:%s)", len(g.Indices), g.IndexPrefix, hex.EncodeToString(ih[:8]))
}

func dumpNewline(w *bufio.Writer, indent int) {
	w.WriteByte('\n')
	for i := 0; i < indent; i++ {
		w.WriteByte('\t')
	}
}

func dumpString(w *bufio.Writer, indent int, s string) {
	for _, r := range s {
		if !unicode.IsGraphic(r) {
			dumpBytes(w, indent, []byte(s))
			return
		}
	}
	fmt.Fprintf(w, "(len:%d) ", len(s))
	w.WriteString(strconv.Quote(s))
}

func dumpBytes(w *bufio.Writer, indent int, b []byte) {
	fmt.Fprintf(w, "(len:%d)", len(b))
	const width = 16
	for j := 0; j < len(b); j += width {
		dumpNewline(w, indent+1)
		w.WriteString("| ")
		end := min(j+width, len(b))
		for i := j; i < j+width; i++ {
			if i < end {
				w.WriteString(hex.EncodeToString(b[i : i+1]))
			} else {
				w.WriteString("  ")
			}
			if (i+1)%8 == 0 {
				w.WriteString("  ")
			} else {
				w.WriteString(" ")
			}
		}
		w.WriteString("|")
		for _, c := range b[j:end] {
			if 32 <= c && c <= 126 {
				w.WriteByte(c)
			} else {
				w.WriteByte('.')
			}
		}
		w.WriteByte('|')
	}
}

package edm

import (
	"encoding/binary"
	"fmt"

	"github.com/edmtools/edmfile"
)

func registerObjects(reg *Registry) {
	object := func(decode func(r *Reader, tag string) (edmfile.Element, bool), encode func(w *Writer, e edmfile.Element) bool) Codec {
		return Codec{Category: CategoryObject, Decode: decode, Encode: encode}
	}
	reg.Register(edmfile.TagConnector, object(decodeConnector, encodeConnector))
	reg.Register(edmfile.TagLightNode, object(decodeLightNode, encodeLightNode))
	reg.Register(edmfile.TagRenderNode, object(decodeRenderNode, encodeRenderNode))
	reg.Register(edmfile.TagShellNode, object(decodeShellNode, encodeShellNode))
	reg.Register(edmfile.TagSkinNode, object(decodeSkinNode, encodeSkinNode))
}

// Index buffer element types.
const (
	indexUint8  = 0
	indexUint16 = 1
	indexUint32 = 2
)

// sectionEnd terminates a parent section.
const sectionEnd = 0xFFFFFFFF

////////////////////////////////////////////////////////////////

func decodeConnector(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.Connector{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	if readRef(r, &n.Parent) {
		return nil, true
	}
	if r.Uint32(&n.Unknown) {
		return nil, true
	}
	return n, false
}

func encodeConnector(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.Connector)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagConnector))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	if writeRef(w, n.Parent) {
		return true
	}
	return w.Uint32(n.Unknown)
}

////////////////

func decodeLightNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.LightNode{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	if readRef(r, &n.Parent) {
		return nil, true
	}
	if readProperties(r, &n.Light) {
		return nil, true
	}
	if r.Uint8(&n.Unknown) {
		return nil, true
	}
	return n, false
}

func encodeLightNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.LightNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagLightNode))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	if writeRef(w, n.Parent) {
		return true
	}
	if writeProperties(w, n.Light) {
		return true
	}
	return w.Uint8(n.Unknown)
}

////////////////

func decodeRenderNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.RenderNode{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	if r.Uint32(&n.Unknown) {
		return nil, true
	}
	if readRef(r, &n.Material) {
		return nil, true
	}
	var failed bool
	if n.ParentData, failed = ReadList(r, readParentSection); failed {
		return nil, true
	}
	if readGeometry(r, n.Name, &n.Geometry) {
		return nil, true
	}
	return n, false
}

func encodeRenderNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.RenderNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagRenderNode))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	if w.Uint32(n.Unknown) {
		return true
	}
	if writeRef(w, n.Material) {
		return true
	}
	if WriteList(w, n.ParentData, writeParentSection) {
		return true
	}
	return writeGeometry(w, n.Name, &n.Geometry)
}

// readParentSection reads uint32 values up to a terminator. A section holds
// either a parent, or a parent followed by an end offset.
func readParentSection(r *Reader, s *edmfile.ParentSection) bool {
	off := r.N()
	var values []uint32
	for {
		var v uint32
		if r.Uint32(&v) {
			return true
		}
		if v == sectionEnd {
			break
		}
		if len(values) == 2 {
			return r.Fail(StructuralError{Offset: off, Reason: "parent section has more than two values"})
		}
		values = append(values, v)
	}
	switch len(values) {
	case 1:
		*s = edmfile.ParentSection{Parent: edmfile.Ref(values[0]), End: -1}
	case 2:
		*s = edmfile.ParentSection{Parent: edmfile.Ref(values[0]), End: int32(values[1])}
	default:
		return r.Fail(StructuralError{Offset: off, Reason: "empty parent section"})
	}
	return false
}

func writeParentSection(w *Writer, s edmfile.ParentSection) bool {
	if s.Parent < 0 {
		return w.Fail(StructuralError{Offset: w.N(), Reason: "parent section without parent"})
	}
	if writeRef(w, s.Parent) {
		return true
	}
	if s.End >= 0 {
		if w.Uint32(uint32(s.End)) {
			return true
		}
	}
	return w.Uint32(sectionEnd)
}

////////////////

func decodeShellNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.ShellNode{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	if readRef(r, &n.Parent) {
		return nil, true
	}
	if readVertexFormat(r, &n.VertexFormat) {
		return nil, true
	}
	if readGeometry(r, n.Name, &n.Geometry) {
		return nil, true
	}
	return n, false
}

func encodeShellNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.ShellNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagShellNode))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	if writeRef(w, n.Parent) {
		return true
	}
	if writeVertexFormat(w, n.VertexFormat) {
		return true
	}
	return writeGeometry(w, n.Name, &n.Geometry)
}

////////////////

func decodeSkinNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.SkinNode{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	if r.Uint32(&n.Unknown) {
		return nil, true
	}
	if readRef(r, &n.Material) {
		return nil, true
	}
	var failed bool
	if n.Bones, failed = ReadList(r, readRef); failed {
		return nil, true
	}
	if r.Uint32(&n.PostBones) {
		return nil, true
	}
	if readGeometry(r, n.Name, &n.Geometry) {
		return nil, true
	}
	return n, false
}

func encodeSkinNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.SkinNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagSkinNode))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	if w.Uint32(n.Unknown) {
		return true
	}
	if writeRef(w, n.Material) {
		return true
	}
	if WriteList(w, n.Bones, writeRef) {
		return true
	}
	if w.Uint32(n.PostBones) {
		return true
	}
	return writeGeometry(w, n.Name, &n.Geometry)
}

////////////////////////////////////////////////////////////////

// readGeometry reads a vertex buffer followed by an index buffer.
func readGeometry(r *Reader, name string, g *edmfile.Geometry) bool {
	var count, stride uint32
	if r.Uint32(&count) {
		return true
	}
	off := r.N()
	if r.Uint32(&stride) {
		return true
	}
	if stride == 0 && count > 0 {
		return r.Fail(StructuralError{Offset: off, Reason: fmt.Sprintf("%s: %d vertices with stride 0", name, count)})
	}
	g.Stride = int(stride)
	n := uint64(count) * uint64(stride)
	g.Vertices = make([]float32, 0, min(n, maxPrealloc))
	var chunk [maxPrealloc]float32
	for n > 0 {
		k := min(n, uint64(len(chunk)))
		if r.Float32s(chunk[:k]) {
			return true
		}
		g.Vertices = append(g.Vertices, chunk[:k]...)
		n -= k
	}

	off = r.N()
	var typ uint8
	if r.Uint8(&typ) {
		return true
	}
	var width int
	switch typ {
	case indexUint8:
		width = 1
	case indexUint16:
		width = 2
	case indexUint32:
		width = 4
	default:
		return r.Fail(StructuralError{Offset: off, Reason: fmt.Sprintf("unknown index type %d", typ)})
	}
	if r.widths != nil {
		r.widths[g] = width
	}
	var indices uint32
	if r.Uint32(&indices) {
		return true
	}
	if r.Uint32(&g.IndexPrefix) {
		return true
	}
	g.Indices = make([]uint32, 0, min(indices, maxPrealloc))
	buf := make([]byte, width*maxPrealloc)
	for left := int(indices); left > 0; {
		k := min(left, maxPrealloc)
		b := buf[:k*width]
		if r.Bytes(b) {
			return true
		}
		for i := 0; i < k; i++ {
			switch width {
			case 1:
				g.Indices = append(g.Indices, uint32(b[i]))
			case 2:
				g.Indices = append(g.Indices, uint32(binary.LittleEndian.Uint16(b[2*i:])))
			case 4:
				g.Indices = append(g.Indices, binary.LittleEndian.Uint32(b[4*i:]))
			}
		}
		left -= k
	}
	if len(g.Indices)%3 != 0 {
		r.Warn(IndexCountWarning{Object: name, Count: len(g.Indices)})
	}
	return false
}

func writeGeometry(w *Writer, name string, g *edmfile.Geometry) bool {
	if g.Stride < 0 || (g.Stride == 0 && len(g.Vertices) > 0) || (g.Stride > 0 && len(g.Vertices)%g.Stride != 0) {
		return w.Fail(StructuralError{Offset: w.N(), Reason: fmt.Sprintf("%s: %d vertex floats do not fit stride %d", name, len(g.Vertices), g.Stride)})
	}
	if w.Count(g.VertexCount()) || w.Count(g.Stride) {
		return true
	}
	if w.Float32s(g.Vertices) {
		return true
	}

	width := g.IndexWidth()
	var typ uint8
	switch width {
	case 1:
		typ = indexUint8
	case 2:
		typ = indexUint16
	default:
		typ = indexUint32
	}
	limit := uint64(1) << (8 * width)
	b := make([]byte, width*len(g.Indices))
	for i, idx := range g.Indices {
		if uint64(idx) >= limit {
			return w.Fail(StructuralError{Offset: w.N(), Reason: fmt.Sprintf("%s: index %d does not fit in %d bytes", name, idx, width)})
		}
		switch width {
		case 1:
			b[i] = byte(idx)
		case 2:
			binary.LittleEndian.PutUint16(b[2*i:], uint16(idx))
		default:
			binary.LittleEndian.PutUint32(b[4*i:], idx)
		}
	}
	if w.Uint8(typ) {
		return true
	}
	if w.Count(len(g.Indices)) {
		return true
	}
	if w.Uint32(g.IndexPrefix) {
		return true
	}
	return w.Bytes(b)
}

package edm

import (
	"fmt"

	"github.com/edmtools/edmfile"
)

func readMaterial(r *Reader, mp **edmfile.Material) bool {
	off := r.N()
	var n int
	if r.Count(&n) {
		return true
	}
	m := &edmfile.Material{Fields: make([]string, 0, min(n, len(edmfile.MaterialFields())))}
	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		entryOff := r.N()
		var name string
		if r.String(&name) {
			return true
		}
		if seen[name] {
			return r.Fail(StructuralError{Offset: entryOff, Reason: fmt.Sprintf("duplicate material entry %s", name)})
		}
		seen[name] = true
		m.Fields = append(m.Fields, name)
		if readMaterialEntry(r, m, name, entryOff) {
			return true
		}
	}
	for _, name := range []string{edmfile.MaterialName, edmfile.MaterialBaseName, edmfile.MaterialVertexFormat} {
		if !seen[name] {
			return r.Fail(StructuralError{Offset: off, Reason: "material missing " + name})
		}
	}
	if chs := m.VertexFormat.Unrecognized(); len(chs) > 0 {
		r.Warn(VertexChannelWarning{Material: m.Name, Channels: chs})
	}
	*mp = m
	return false
}

func readMaterialEntry(r *Reader, m *edmfile.Material, name string, off int64) bool {
	switch name {
	case edmfile.MaterialBlending:
		return r.Uint8(&m.Blending)
	case edmfile.MaterialCulling:
		return r.Uint8(&m.Culling)
	case edmfile.MaterialShadows:
		return r.Uint8(&m.Shadows)
	case edmfile.MaterialDepthBias:
		return r.Uint32(&m.DepthBias)
	case edmfile.MaterialTexCoordChannels:
		var failed bool
		m.TexCoordChannels, failed = ReadList(r, func(r *Reader, v *int32) bool {
			return r.Int32(v)
		})
		return failed
	case edmfile.MaterialBaseName:
		return r.String(&m.BaseMaterial)
	case edmfile.MaterialName:
		return r.String(&m.Name)
	case edmfile.MaterialVertexFormat:
		return readVertexFormat(r, &m.VertexFormat)
	case edmfile.MaterialUniforms:
		return readProperties(r, &m.Uniforms)
	case edmfile.MaterialAnimatedUniforms:
		return readProperties(r, &m.AnimatedUniforms)
	case edmfile.MaterialTextures:
		var failed bool
		m.Textures, failed = ReadList(r, readTexture)
		return failed
	}
	return r.Fail(UnknownTypeError{Tag: name, Offset: off})
}

func readVertexFormat(r *Reader, f *edmfile.VertexFormat) bool {
	off := r.N()
	var n uint32
	if r.Uint32(&n) {
		return true
	}
	if n != edmfile.VertexChannels {
		return r.Fail(StructuralError{Offset: off, Reason: fmt.Sprintf("vertex format has %d channels, expected %d", n, edmfile.VertexChannels)})
	}
	return r.Bytes(f[:])
}

func readTexture(r *Reader, t *edmfile.Texture) bool {
	if r.Int32(&t.Index) {
		return true
	}
	if r.Int32(&t.UnknownA) {
		return true
	}
	if r.String(&t.Name) {
		return true
	}
	for i := range t.UnknownB {
		if r.Uint32(&t.UnknownB[i]) {
			return true
		}
	}
	return r.Matrixf(&t.Matrix)
}

////////////////////////////////////////////////////////////////

func writeMaterial(w *Writer, m *edmfile.Material) bool {
	if m == nil {
		return w.Fail(fmt.Errorf("nil material"))
	}
	fields := m.EncodedFields()
	seen := map[string]bool{}
	for _, name := range fields {
		if seen[name] {
			return w.Fail(StructuralError{Offset: w.N(), Reason: fmt.Sprintf("material %q: duplicate entry %s", m.Name, name)})
		}
		seen[name] = true
	}
	for _, name := range []string{edmfile.MaterialName, edmfile.MaterialBaseName, edmfile.MaterialVertexFormat} {
		if !seen[name] {
			return w.Fail(StructuralError{Offset: w.N(), Reason: fmt.Sprintf("material %q missing %s", m.Name, name)})
		}
	}
	if w.Count(len(fields)) {
		return true
	}
	for _, name := range fields {
		if w.String(name) {
			return true
		}
		if writeMaterialEntry(w, m, name) {
			return true
		}
	}
	return false
}

func writeMaterialEntry(w *Writer, m *edmfile.Material, name string) bool {
	switch name {
	case edmfile.MaterialBlending:
		return w.Uint8(m.Blending)
	case edmfile.MaterialCulling:
		return w.Uint8(m.Culling)
	case edmfile.MaterialShadows:
		return w.Uint8(m.Shadows)
	case edmfile.MaterialDepthBias:
		return w.Uint32(m.DepthBias)
	case edmfile.MaterialTexCoordChannels:
		return WriteList(w, m.TexCoordChannels, func(w *Writer, v int32) bool {
			return w.Int32(v)
		})
	case edmfile.MaterialBaseName:
		return w.String(m.BaseMaterial)
	case edmfile.MaterialName:
		return w.String(m.Name)
	case edmfile.MaterialVertexFormat:
		return writeVertexFormat(w, m.VertexFormat)
	case edmfile.MaterialUniforms:
		return writeProperties(w, m.Uniforms)
	case edmfile.MaterialAnimatedUniforms:
		return writeProperties(w, m.AnimatedUniforms)
	case edmfile.MaterialTextures:
		return WriteList(w, m.Textures, writeTexture)
	}
	return w.Fail(UnknownTypeError{Tag: name, Offset: -1})
}

func writeVertexFormat(w *Writer, f edmfile.VertexFormat) bool {
	if w.Uint32(edmfile.VertexChannels) {
		return true
	}
	return w.Bytes(f[:])
}

func writeTexture(w *Writer, t edmfile.Texture) bool {
	if w.Int32(t.Index) {
		return true
	}
	if w.Int32(t.UnknownA) {
		return true
	}
	if w.String(t.Name) {
		return true
	}
	for _, v := range t.UnknownB {
		if w.Uint32(v) {
			return true
		}
	}
	return w.Matrixf(t.Matrix)
}

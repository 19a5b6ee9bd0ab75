package edm

import (
	"fmt"

	"github.com/edmtools/edmfile"
)

func registerProperties(reg *Registry) {
	for _, typ := range []edmfile.Type{
		edmfile.TypeFloat,
		edmfile.TypeUint,
		edmfile.TypeVec2f,
		edmfile.TypeVec3f,
		edmfile.TypeVec4f,
		edmfile.TypeAnimatedFloat,
	} {
		reg.Register(edmfile.PropertyTag(typ), Codec{
			Category: CategoryProperty,
			Decode:   decodeProperty,
			Encode:   encodeProperty,
		})
	}
}

func decodeProperty(r *Reader, tag string) (edmfile.Element, bool) {
	typ := edmfile.TypeFromTag(tag)
	p := edmfile.Property{}
	if r.String(&p.Name) {
		return nil, true
	}
	switch typ {
	case edmfile.TypeFloat:
		var v float32
		if r.Float32(&v) {
			return nil, true
		}
		p.Value = edmfile.ValueFloat(v)
	case edmfile.TypeUint:
		var v uint32
		if r.Uint32(&v) {
			return nil, true
		}
		p.Value = edmfile.ValueUint(v)
	case edmfile.TypeVec2f:
		var v edmfile.ValueVec2f
		if r.Float32s(v[:]) {
			return nil, true
		}
		p.Value = v
	case edmfile.TypeVec3f:
		var v edmfile.ValueVec3f
		if r.Float32s(v[:]) {
			return nil, true
		}
		p.Value = v
	case edmfile.TypeVec4f:
		var v edmfile.ValueVec4f
		if r.Float32s(v[:]) {
			return nil, true
		}
		p.Value = v
	case edmfile.TypeAnimatedFloat:
		var v edmfile.ValueAnimatedFloat
		if r.Uint32(&v.Argument) {
			return nil, true
		}
		var failed bool
		if v.Keys, failed = ReadList(r, readFloatKey); failed {
			return nil, true
		}
		p.Value = v
	default:
		return nil, r.Fail(UnknownTypeError{Tag: tag, Offset: r.N()})
	}
	return p, false
}

func encodeProperty(w *Writer, e edmfile.Element) bool {
	p, ok := e.(edmfile.Property)
	if !ok {
		return w.Fail(fmt.Errorf("%T is not a property", e))
	}
	if w.String(p.Name) {
		return true
	}
	switch v := p.Value.(type) {
	case edmfile.ValueFloat:
		return w.Float32(float32(v))
	case edmfile.ValueUint:
		return w.Uint32(uint32(v))
	case edmfile.ValueVec2f:
		return w.Float32s(v[:])
	case edmfile.ValueVec3f:
		return w.Float32s(v[:])
	case edmfile.ValueVec4f:
		return w.Float32s(v[:])
	case edmfile.ValueAnimatedFloat:
		if w.Uint32(v.Argument) {
			return true
		}
		return WriteList(w, v.Keys, writeFloatKey)
	}
	return w.Fail(fmt.Errorf("property %q: unsupported value %T", p.Name, p.Value))
}

func readFloatKey(r *Reader, k *edmfile.FloatKey) bool {
	if r.Float64(&k.Frame) {
		return true
	}
	return r.Float32(&k.Value)
}

func writeFloatKey(w *Writer, k edmfile.FloatKey) bool {
	if w.Float64(k.Frame) {
		return true
	}
	return w.Float32(k.Value)
}

// readProperties reads a uint32 count followed by that many named properties.
func readProperties(r *Reader, set *edmfile.PropertySet) bool {
	var n int
	if r.Count(&n) {
		return true
	}
	props := make(edmfile.PropertySet, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		off := r.N()
		e, failed := r.Named()
		if failed {
			return true
		}
		p, ok := e.(edmfile.Property)
		if !ok {
			return r.Fail(StructuralError{Offset: off, Reason: fmt.Sprintf("%s in property set", e.TypeName())})
		}
		props = append(props, p)
	}
	*set = props
	return false
}

func writeProperties(w *Writer, set edmfile.PropertySet) bool {
	if w.Count(len(set)) {
		return true
	}
	for _, p := range set {
		if p.Value == nil {
			return w.Fail(fmt.Errorf("property %q has no value", p.Name))
		}
		if w.Named(p) {
			return true
		}
	}
	return false
}

// readBase reads the name, version, and properties shared by most nodes.
func readBase(r *Reader, b *edmfile.NodeBase) bool {
	if r.String(&b.Name) {
		return true
	}
	if r.Uint32(&b.Version) {
		return true
	}
	return readProperties(r, &b.Props)
}

func writeBase(w *Writer, b *edmfile.NodeBase) bool {
	if w.String(b.Name) {
		return true
	}
	if w.Uint32(b.Version) {
		return true
	}
	return writeProperties(w, b.Props)
}

package edm

import (
	"sort"

	"github.com/edmtools/edmfile"
)

// Category groups the element types of a registry by where they appear.
type Category uint8

const (
	// CategoryNode is an element of the node list, including the root.
	CategoryNode Category = iota + 1
	// CategoryObject is an element of a render object collection.
	CategoryObject
	// CategoryProperty is an element of a property set.
	CategoryProperty
)

func (c Category) String() string {
	switch c {
	case CategoryNode:
		return "node"
	case CategoryObject:
		return "object"
	case CategoryProperty:
		return "property"
	}
	return "invalid"
}

// Codec decodes and encodes the payload of one type of element, which is the
// data following the type tag.
type Codec struct {
	Category Category
	// Decode reads the payload of an element of the given tag. Returns true
	// if the read failed.
	Decode func(r *Reader, tag string) (e edmfile.Element, failed bool)
	// Encode writes the payload of e. Returns true if the write failed.
	Encode func(w *Writer, e edmfile.Element) (failed bool)
}

// Registry maps type tags to codecs.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry returns a registry containing every standard element type.
func NewRegistry() *Registry {
	reg := &Registry{codecs: map[string]Codec{}}
	registerProperties(reg)
	registerNodes(reg)
	registerObjects(reg)
	return reg
}

// Register adds a codec for tag, replacing any existing codec.
func (reg *Registry) Register(tag string, codec Codec) {
	if reg.codecs == nil {
		reg.codecs = map[string]Codec{}
	}
	reg.codecs[tag] = codec
}

// Lookup returns the codec of tag.
func (reg *Registry) Lookup(tag string) (codec Codec, ok bool) {
	codec, ok = reg.codecs[tag]
	return codec, ok
}

// Tags returns each registered tag of the given category, sorted. If category
// is zero, tags of every category are returned.
func (reg *Registry) Tags(category Category) []string {
	tags := make([]string, 0, len(reg.codecs))
	for tag, codec := range reg.codecs {
		if category == 0 || codec.Category == category {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

////////////////////////////////////////////////////////////////

// Named reads a type tag, then decodes the element it names. Fails with an
// UnknownTypeError if the tag is not registered.
func (r *Reader) Named() (e edmfile.Element, failed bool) {
	off := r.N()
	if r.depth == 0 {
		r.tag = ""
	}
	var tag string
	if r.String(&tag) {
		return nil, true
	}
	if r.depth == 0 {
		r.tag = tag
	}
	codec, ok := r.registry.Lookup(tag)
	if !ok {
		return nil, r.Fail(UnknownTypeError{Tag: tag, Offset: off})
	}
	if r.tags != nil {
		r.tags[tag]++
	}
	r.depth++
	e, failed = codec.Decode(r, tag)
	r.depth--
	return e, failed
}

// Named writes the type tag of e, followed by its payload. Fails with an
// UnknownTypeError if the tag is not registered.
func (w *Writer) Named(e edmfile.Element) (failed bool) {
	tag := e.TypeName()
	codec, ok := w.registry.Lookup(tag)
	if !ok {
		return w.Fail(UnknownTypeError{Tag: tag, Offset: -1})
	}
	if w.String(tag) {
		return true
	}
	return codec.Encode(w, e)
}

// The edmfile package handles the decoding, encoding, and manipulation of EDM
// scene data structures.
//
// An EDM file describes a single model: a table of materials, a hierarchy of
// transform and animation nodes, and a number of renderable objects that
// reference those nodes. Such data structures begin with a File struct. A File
// owns every node in a flat list, and every relationship between nodes and
// objects is expressed as a Ref, which is an index into that list.
//
// Every value that is written to a stream behind a type tag implements the
// Element interface. Nodes additionally implement the Node interface, and
// property values implement the Value interface, prefixed with "Value".
//
// Files can be decoded from and encoded to the binary format with the "edm"
// sub-package.
package edmfile

import (
	"sort"
)

// Known format versions.
const (
	Version8  uint16 = 8
	Version10 uint16 = 10
)

// Names of the render object collections.
const (
	CollectionRenderNodes = "RENDER_NODES"
	CollectionConnectors  = "CONNECTORS"
	CollectionShellNodes  = "SHELL_NODES"
	CollectionLightNodes  = "LIGHT_NODES"
)

// CollectionNames returns the closed set of known collection names, in the
// order they are written when a File does not specify one.
func CollectionNames() []string {
	return []string{
		CollectionConnectors,
		CollectionRenderNodes,
		CollectionShellNodes,
		CollectionLightNodes,
	}
}

// IsCollectionName returns whether name is a known collection name.
func IsCollectionName(name string) bool {
	switch name {
	case CollectionRenderNodes, CollectionConnectors, CollectionShellNodes, CollectionLightNodes:
		return true
	}
	return false
}

////////////////////////////////////////////////////////////////

// File represents the contents of an EDM file.
type File struct {
	// Version is the format version.
	Version uint16

	// IndexA counts occurrences of structural element types. IndexB counts
	// occurrences of property and key types, as well as the total size of
	// geometry buffers. Both tables are derived data: a decoder checks them,
	// and an encoder regenerates them.
	IndexA IndexTable
	IndexB IndexTable

	// Root is the root node, which holds the material table.
	Root *RootNode

	// Nodes is the node list. Every Ref in the file indexes into this list.
	Nodes []Node

	// Parents holds the parent of each node in Nodes, as a Ref into Nodes.
	Parents []Ref

	// Collections holds the render objects, grouped by collection name.
	Collections []Collection

	// Padding contains any bytes located between the parent list and the
	// render object section. The bytes are not understood, and are written
	// back unchanged.
	Padding []byte
}

// NewFile returns an empty File ready for authoring, with a root node and
// the current format version.
func NewFile() *File {
	return &File{
		Version: Version8,
		Root:    &RootNode{NodeBase: NodeBase{Name: "Scene Root", Version: 2}},
	}
}

// AddNode appends node to the node list with the given parent, and returns
// a reference to the new node.
func (f *File) AddNode(node Node, parent Ref) Ref {
	f.Nodes = append(f.Nodes, node)
	f.Parents = append(f.Parents, parent)
	return Ref(len(f.Nodes) - 1)
}

// Node returns the node referred to by ref, or nil if ref does not refer to a
// node.
func (f *File) Node(ref Ref) Node {
	if ref < 0 || int(ref) >= len(f.Nodes) {
		return nil
	}
	return f.Nodes[ref]
}

// Parent returns the parent of the node referred to by ref, or nil if the
// node has no parent.
func (f *File) Parent(ref Ref) Node {
	if ref < 0 || int(ref) >= len(f.Parents) {
		return nil
	}
	return f.Node(f.Parents[ref])
}

// Children returns references to the nodes whose parent is ref.
func (f *File) Children(ref Ref) []Ref {
	var children []Ref
	for i, p := range f.Parents {
		if p == ref {
			children = append(children, Ref(i))
		}
	}
	return children
}

// Material returns the material referred to by ref, or nil if ref does not
// refer to a material of the root node.
func (f *File) Material(ref Ref) *Material {
	if f.Root == nil || ref < 0 || int(ref) >= len(f.Root.Materials) {
		return nil
	}
	return f.Root.Materials[ref]
}

// Collection returns the objects of the collection with the given name.
func (f *File) Collection(name string) []Element {
	for _, c := range f.Collections {
		if c.Name == name {
			return c.Objects
		}
	}
	return nil
}

// AddObject appends an object to the named collection, creating the
// collection if it does not exist.
func (f *File) AddObject(collection string, obj Element) {
	for i := range f.Collections {
		if f.Collections[i].Name == collection {
			f.Collections[i].Objects = append(f.Collections[i].Objects, obj)
			return
		}
	}
	f.Collections = append(f.Collections, Collection{
		Name:    collection,
		Objects: []Element{obj},
	})
}

// RenderNodes returns every RenderNode in the render node collection.
func (f *File) RenderNodes() []*RenderNode {
	var nodes []*RenderNode
	for _, obj := range f.Collection(CollectionRenderNodes) {
		if n, ok := obj.(*RenderNode); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Connectors returns every Connector in the connector collection.
func (f *File) Connectors() []*Connector {
	var conns []*Connector
	for _, obj := range f.Collection(CollectionConnectors) {
		if c, ok := obj.(*Connector); ok {
			conns = append(conns, c)
		}
	}
	return conns
}

// Collection is a named list of render objects.
type Collection struct {
	Name    string
	Objects []Element
}

////////////////////////////////////////////////////////////////

// IndexEntry is one entry of an IndexTable.
type IndexEntry struct {
	Name  string
	Count uint32
}

// IndexTable is an ordered mapping of type names to occurrence counts.
type IndexTable []IndexEntry

// Get returns the count of name, and whether name is present.
func (t IndexTable) Get(name string) (count uint32, ok bool) {
	for _, e := range t {
		if e.Name == name {
			return e.Count, true
		}
	}
	return 0, false
}

// Map returns the table as a map.
func (t IndexTable) Map() map[string]uint32 {
	m := make(map[string]uint32, len(t))
	for _, e := range t {
		m[e.Name] += e.Count
	}
	return m
}

// TableFromMap returns a table with the entries of m sorted by name. Entries
// with a zero count are omitted.
func TableFromMap(m map[string]uint32) IndexTable {
	t := make(IndexTable, 0, len(m))
	for name, count := range m {
		if count == 0 {
			continue
		}
		t = append(t, IndexEntry{Name: name, Count: count})
	}
	sort.Slice(t, func(i, j int) bool { return t[i].Name < t[j].Name })
	return t
}

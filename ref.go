package edmfile

import (
	"fmt"
)

// Ref refers to an item of a list by its position. Depending on the field, the
// list is either the node list of a File, or the material list of its root
// node.
type Ref int32

// NoRef is a Ref that refers to nothing.
const NoRef Ref = -1

// Valid returns whether the reference points into a list of length n.
func (r Ref) Valid(n int) bool {
	return r >= 0 && int(r) < n
}

// RefError indicates a reference that points outside of its list.
type RefError struct {
	// Object describes the element holding the reference.
	Object string
	// Field is the name of the referencing field.
	Field string
	Ref   Ref
	// Len is the length of the referred list.
	Len int
}

func (err RefError) Error() string {
	return fmt.Sprintf("%s: %s %d out of range [0, %d)", err.Object, err.Field, err.Ref, err.Len)
}

func describe(e Element, index int) string {
	name := ""
	if n, ok := e.(Node); ok {
		name = n.Base().Name
	}
	return fmt.Sprintf("#%d %s %q", index, e.TypeName(), name)
}

// Validate checks that every reference held by the file points into its list,
// and that animation nodes satisfy their invariants. The first problem found
// is returned.
func (f *File) Validate() error {
	if f.Root == nil {
		return fmt.Errorf("missing root node")
	}
	if len(f.Parents) != len(f.Nodes) {
		return fmt.Errorf("node list has %d nodes but %d parents", len(f.Nodes), len(f.Parents))
	}
	nodes := len(f.Nodes)
	for i, p := range f.Parents {
		if p != NoRef && !p.Valid(nodes) {
			return RefError{Object: describe(f.Nodes[i], i), Field: "parent", Ref: p, Len: nodes}
		}
	}
	for i, node := range f.Nodes {
		if a := animationOf(node); a != nil {
			if err := a.Validate(); err != nil {
				return fmt.Errorf("%s: %w", describe(node, i), err)
			}
		}
	}
	materials := len(f.Root.Materials)
	for _, c := range f.Collections {
		for i, obj := range c.Objects {
			if err := validateObject(obj, i, nodes, materials); err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
		}
	}
	return nil
}

func validateObject(obj Element, index, nodes, materials int) error {
	check := func(field string, ref Ref, n int) error {
		if !ref.Valid(n) {
			return RefError{Object: describe(obj, index), Field: field, Ref: ref, Len: n}
		}
		return nil
	}
	switch obj := obj.(type) {
	case *Connector:
		return check("parent", obj.Parent, nodes)
	case *RenderNode:
		if err := check("material", obj.Material, materials); err != nil {
			return err
		}
		for _, s := range obj.ParentData {
			if err := check("parent", s.Parent, nodes); err != nil {
				return err
			}
		}
	case *ShellNode:
		return check("parent", obj.Parent, nodes)
	case *SkinNode:
		if err := check("material", obj.Material, materials); err != nil {
			return err
		}
		for _, b := range obj.Bones {
			if err := check("bone", b, nodes); err != nil {
				return err
			}
		}
	case *LightNode:
		return check("parent", obj.Parent, nodes)
	}
	return nil
}

// Postprocess prepares a decoded file for consumption. It validates every
// parent, material, and bone reference, then splits each render node that is
// shared between several parents into one child per parent. Children are
// stored in the Children field of the render node.
func (f *File) Postprocess() error {
	if err := f.Validate(); err != nil {
		return err
	}
	for _, c := range f.Collections {
		for i, obj := range c.Objects {
			n, ok := obj.(*RenderNode)
			if !ok {
				continue
			}
			children, err := n.Split()
			if err != nil {
				return fmt.Errorf("%s %s: %w", c.Name, describe(n, i), err)
			}
			n.Children = children
		}
	}
	return nil
}

// ObjectParent returns the node that obj is attached to, or nil if obj does
// not have a single parent.
func (f *File) ObjectParent(obj Element) Node {
	switch obj := obj.(type) {
	case *Connector:
		return f.Node(obj.Parent)
	case *ShellNode:
		return f.Node(obj.Parent)
	case *LightNode:
		return f.Node(obj.Parent)
	case *RenderNode:
		if len(obj.ParentData) == 1 {
			return f.Node(obj.ParentData[0].Parent)
		}
	}
	return nil
}

package edmfile

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Element is implemented by every value that is written to a stream behind a
// type tag.
type Element interface {
	// TypeName returns the tag that identifies the type within a stream.
	TypeName() string
}

// Node is implemented by every element of the node hierarchy.
type Node interface {
	Element
	// Base returns the fields shared by all nodes.
	Base() *NodeBase
}

// NodeBase contains the fields shared by all nodes.
type NodeBase struct {
	Name    string
	Version uint32
	Props   PropertySet
}

// Base returns b.
func (b *NodeBase) Base() *NodeBase {
	return b
}

// Type tags of each node type.
const (
	TagRootNode           = "model::RootNode"
	TagNode               = "model::Node"
	TagTransformNode      = "model::TransformNode"
	TagBone               = "model::Bone"
	TagArgAnimatedBone    = "model::ArgAnimatedBone"
	TagArgAnimationNode   = "model::ArgAnimationNode"
	TagArgRotationNode    = "model::ArgRotationNode"
	TagArgPositionNode    = "model::ArgPositionNode"
	TagArgScaleNode       = "model::ArgScaleNode"
	TagArgVisibilityNode  = "model::ArgVisibilityNode"
	TagLodNode            = "model::LodNode"
	TagBillboardNode      = "model::BillboardNode"
	TagSegmentsNode       = "model::SegmentsNode"
	TagLightNode          = "model::LightNode"
	TagFakeSpotLightsNode = "model::FakeSpotLightsNode"
	TagFakeOmniLightsNode = "model::FakeOmniLightsNode"
	TagFakeALSNode        = "model::FakeALSNode"
	TagConnector          = "model::Connector"
	TagRenderNode         = "model::RenderNode"
	TagShellNode          = "model::ShellNode"
	TagSkinNode           = "model::SkinNode"
)

////////////////////////////////////////////////////////////////

// RootNode is the first element of a file. It holds the material table.
type RootNode struct {
	NodeBase
	UnknownA       uint8
	BoundingBoxMin mgl64.Vec3
	BoundingBoxMax mgl64.Vec3
	UnknownB       [4]mgl64.Vec3
	Materials      []*Material
	UnknownC       [2]uint32
}

func (*RootNode) TypeName() string { return TagRootNode }

// AddMaterial appends a material and returns a reference to it.
func (n *RootNode) AddMaterial(m *Material) Ref {
	n.Materials = append(n.Materials, m)
	return Ref(len(n.Materials) - 1)
}

////////////////

// PlainNode is a node without a payload, usually used for grouping.
type PlainNode struct {
	NodeBase
}

func (*PlainNode) TypeName() string { return TagNode }

////////////////

// TransformNode applies a static transform to its children.
type TransformNode struct {
	NodeBase
	Matrix mgl64.Mat4
}

func (*TransformNode) TypeName() string { return TagTransformNode }

////////////////

// Bone is a node of a skeleton.
type Bone struct {
	NodeBase
	Matrix mgl64.Mat4
	// InverseMatrix is presumed to be the inverse bind matrix.
	InverseMatrix mgl64.Mat4
}

func (*Bone) TypeName() string { return TagBone }

////////////////

// ArgAnimatedBoneSize is the size of the payload of an ArgAnimatedBone.
const ArgAnimatedBoneSize = 476

// ArgAnimatedBone is an animated skeleton node. Only the name is understood;
// the Version and Props fields of the base are not encoded.
type ArgAnimatedBone struct {
	NodeBase
	Data [ArgAnimatedBoneSize]byte
}

func (*ArgAnimatedBone) TypeName() string { return TagArgAnimatedBone }

////////////////

// ArgAnimationNode transforms its children according to animation tracks.
type ArgAnimationNode struct {
	NodeBase
	ArgAnimation
}

func (*ArgAnimationNode) TypeName() string { return TagArgAnimationNode }

// ArgRotationNode is an ArgAnimationNode expected to hold only rotation
// tracks. It is encoded identically.
type ArgRotationNode struct {
	NodeBase
	ArgAnimation
}

func (*ArgRotationNode) TypeName() string { return TagArgRotationNode }

// ArgPositionNode is an ArgAnimationNode expected to hold only position
// tracks. It is encoded identically.
type ArgPositionNode struct {
	NodeBase
	ArgAnimation
}

func (*ArgPositionNode) TypeName() string { return TagArgPositionNode }

// ArgScaleNode is an ArgAnimationNode expected to hold only scale tracks. It
// is encoded identically.
type ArgScaleNode struct {
	NodeBase
	ArgAnimation
}

func (*ArgScaleNode) TypeName() string { return TagArgScaleNode }

// animationOf returns the animation of node, or nil if node is not animated
// by tracks.
func animationOf(node Element) *ArgAnimation {
	switch n := node.(type) {
	case *ArgAnimationNode:
		return &n.ArgAnimation
	case *ArgRotationNode:
		return &n.ArgAnimation
	case *ArgPositionNode:
		return &n.ArgAnimation
	case *ArgScaleNode:
		return &n.ArgAnimation
	}
	return nil
}

// Animation returns the track animation of node, or nil if node is not one of
// the argument animation nodes.
func Animation(node Node) *ArgAnimation {
	return animationOf(node)
}

////////////////

// ArgVisibilityNode shows or hides its children according to argument
// ranges.
type ArgVisibilityNode struct {
	NodeBase
	Tracks []VisibilityTrack
}

func (*ArgVisibilityNode) TypeName() string { return TagArgVisibilityNode }

////////////////

// LodLevel is one level of detail. The meaning of the values is not known.
type LodLevel [4]float32

// LodNode selects a child according to view distance.
type LodNode struct {
	NodeBase
	Levels []LodLevel
}

func (*LodNode) TypeName() string { return TagLodNode }

////////////////

// BillboardSize is the size of the payload of a BillboardNode.
const BillboardSize = 154

// BillboardNode orients its children toward the viewer.
type BillboardNode struct {
	NodeBase
	Data [BillboardSize]byte
}

func (*BillboardNode) TypeName() string { return TagBillboardNode }

////////////////

// Segment is a line segment, given as two points.
type Segment [6]float32

// SegmentsNode holds line segments.
type SegmentsNode struct {
	NodeBase
	Unknown  uint32
	Segments []Segment
}

func (*SegmentsNode) TypeName() string { return TagSegmentsNode }

////////////////

// LightNode is a light source attached to a node.
type LightNode struct {
	NodeBase
	Parent Ref
	// Light contains the light parameters, such as color and brightness,
	// which may be animated.
	Light   PropertySet
	Unknown uint8
}

func (*LightNode) TypeName() string { return TagLightNode }

////////////////

// Sizes of the records of fake light arrays.
const (
	FakeSpotLightSize = 65
	FakeALSLightSize  = 80
)

// FakeOmniLight is one light of a FakeOmniLightsNode.
type FakeOmniLight [6]float64

// FakeOmniLightsNode is an array of point lights rendered as sprites.
type FakeOmniLightsNode struct {
	NodeBase
	Unknown [5]uint32
	Lights  []FakeOmniLight
}

func (*FakeOmniLightsNode) TypeName() string { return TagFakeOmniLightsNode }

// FakeSpotLight is one light of a FakeSpotLightsNode.
type FakeSpotLight [FakeSpotLightSize]byte

// FakeSpotLightsNode is an array of directional lights rendered as sprites.
type FakeSpotLightsNode struct {
	NodeBase
	Unknown [5]uint32
	Lights  []FakeSpotLight
}

func (*FakeSpotLightsNode) TypeName() string { return TagFakeSpotLightsNode }

// FakeALSLight is one light of a FakeALSNode.
type FakeALSLight [FakeALSLightSize]byte

// FakeALSNode is an array of approach lights.
type FakeALSNode struct {
	NodeBase
	Unknown [5]uint32
	Lights  []FakeALSLight
}

func (*FakeALSNode) TypeName() string { return TagFakeALSNode }

////////////////

// Connector is a named attachment point.
type Connector struct {
	NodeBase
	Parent  Ref
	Unknown uint32
}

func (*Connector) TypeName() string { return TagConnector }

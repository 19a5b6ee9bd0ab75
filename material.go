package edmfile

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Names of material entries.
const (
	MaterialBlending         = "BLENDING"
	MaterialCulling          = "CULLING"
	MaterialDepthBias        = "DEPTH_BIAS"
	MaterialTexCoordChannels = "TEXTURE_COORDINATES_CHANNELS"
	MaterialBaseName         = "MATERIAL_NAME"
	MaterialName             = "NAME"
	MaterialShadows          = "SHADOWS"
	MaterialVertexFormat     = "VERTEX_FORMAT"
	MaterialUniforms         = "UNIFORMS"
	MaterialAnimatedUniforms = "ANIMATED_UNIFORMS"
	MaterialTextures         = "TEXTURES"
)

// MaterialFields returns the default order of material entries.
func MaterialFields() []string {
	return []string{
		MaterialBlending,
		MaterialCulling,
		MaterialDepthBias,
		MaterialTexCoordChannels,
		MaterialBaseName,
		MaterialName,
		MaterialShadows,
		MaterialVertexFormat,
		MaterialUniforms,
		MaterialAnimatedUniforms,
		MaterialTextures,
	}
}

// Material describes how geometry is shaded.
type Material struct {
	Name string
	// BaseMaterial is the name of the shader the material is based on, such
	// as "def_material".
	BaseMaterial string

	Blending uint8
	// Culling is kept as stored. Its relation to the other flags is not
	// known.
	Culling   uint8
	Shadows   uint8
	DepthBias uint32

	TexCoordChannels []int32
	VertexFormat     VertexFormat

	Uniforms         PropertySet
	AnimatedUniforms PropertySet
	Textures         []Texture

	// Fields lists the entries of the material in the order they were
	// stored. If nil, all entries are written in the order returned by
	// MaterialFields, except for ANIMATED_UNIFORMS, which is written only
	// when not empty.
	Fields []string
}

// NewMaterial returns a material with the settings commonly used for simple
// textured geometry.
func NewMaterial(name string) *Material {
	m := &Material{
		Name:             name,
		BaseMaterial:     "def_material",
		TexCoordChannels: make([]int32, 12),
		VertexFormat:     DefaultVertexFormat(),
	}
	for i := 1; i < len(m.TexCoordChannels); i++ {
		m.TexCoordChannels[i] = -1
	}
	m.Uniforms.Set("specPower", ValueFloat(1))
	m.Uniforms.Set("specFactor", ValueFloat(0))
	m.Uniforms.Set("diffuseValue", ValueFloat(1))
	m.Uniforms.Set("reflectionValue", ValueFloat(0))
	return m
}

// EncodedFields returns the entries of the material in the order they are
// written.
func (m *Material) EncodedFields() []string {
	if m.Fields != nil {
		return m.Fields
	}
	fields := MaterialFields()
	if len(m.AnimatedUniforms) == 0 {
		out := fields[:0]
		for _, f := range fields {
			if f != MaterialAnimatedUniforms {
				out = append(out, f)
			}
		}
		fields = out
	}
	return fields
}

// Texture is a reference to a texture used by a material.
type Texture struct {
	// Index is the texture slot.
	Index int32
	// UnknownA has been observed to be -1.
	UnknownA int32
	Name     string
	// UnknownB has been observed to be {2, 2, 10, 6}.
	UnknownB [4]uint32
	Matrix   mgl32.Mat4
}

// NewTexture returns a texture reference with an identity matrix and the
// commonly observed values for the unknown fields.
func NewTexture(index int32, name string) Texture {
	return Texture{
		Index:    index,
		UnknownA: -1,
		Name:     name,
		UnknownB: [4]uint32{2, 2, 10, 6},
		Matrix:   mgl32.Ident4(),
	}
}

////////////////////////////////////////////////////////////////

// VertexChannels is the number of channels of a VertexFormat.
const VertexChannels = 26

// Well-known vertex channels.
const (
	ChannelPosition    = 0
	ChannelNormal      = 1
	ChannelTexture     = 4
	ChannelBoneWeights = 20
)

// VertexFormat describes the layout of a vertex. Each channel holds the number
// of floats the channel occupies.
type VertexFormat [VertexChannels]uint8

// DefaultVertexFormat returns a format with a four-component position, a
// normal, and one set of texture coordinates.
func DefaultVertexFormat() VertexFormat {
	var f VertexFormat
	f[ChannelPosition] = 4
	f[ChannelNormal] = 3
	f[ChannelTexture] = 2
	return f
}

// Offset returns the position of the first float of channel ch within a
// vertex, which is the sum of the sizes of all lower channels.
func (f VertexFormat) Offset(ch int) int {
	n := 0
	for i := 0; i < ch && i < len(f); i++ {
		n += int(f[i])
	}
	return n
}

// Stride returns the number of floats of a vertex.
func (f VertexFormat) Stride() int {
	return f.Offset(len(f))
}

// Indices returns the positions within a vertex of each float of channel ch.
func (f VertexFormat) Indices(ch int) []int {
	if ch < 0 || ch >= len(f) {
		return nil
	}
	off := f.Offset(ch)
	idx := make([]int, f[ch])
	for i := range idx {
		idx[i] = off + i
	}
	return idx
}

// KnownChannel returns whether ch is one of the well-known channels.
func KnownChannel(ch int) bool {
	switch ch {
	case ChannelPosition, ChannelNormal, ChannelTexture, ChannelBoneWeights:
		return true
	}
	return false
}

// Unrecognized returns each channel that is not well-known but has a nonzero
// size.
func (f VertexFormat) Unrecognized() []int {
	var chs []int
	for i, n := range f {
		if n != 0 && !KnownChannel(i) {
			chs = append(chs, i)
		}
	}
	return chs
}

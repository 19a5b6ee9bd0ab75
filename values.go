package edmfile

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Type represents the type of a property value.
type Type byte

// String returns the name of the type as it appears within a property tag. If
// the type is not valid, then the returned value will be "Invalid".
func (t Type) String() string {
	s, ok := typeStrings[t]
	if !ok {
		return "Invalid"
	}
	return s
}

const (
	TypeInvalid Type = iota
	TypeFloat
	TypeUint
	TypeVec2f
	TypeVec3f
	TypeVec4f
	TypeAnimatedFloat
)

var typeStrings = map[Type]string{
	TypeFloat:         "float",
	TypeUint:          "unsigned int",
	TypeVec2f:         "osg::Vec2f",
	TypeVec3f:         "osg::Vec3f",
	TypeVec4f:         "osg::Vec4f",
	TypeAnimatedFloat: "float",
}

// TypeFromTag returns the Type of the property tag, such as
// "model::Property<float>". Returns TypeInvalid if the tag is not a property
// tag.
func TypeFromTag(tag string) Type {
	for typ := range typeStrings {
		if PropertyTag(typ) == tag {
			return typ
		}
	}
	return TypeInvalid
}

// PropertyTag returns the type tag under which a property of the given Type is
// written.
func PropertyTag(typ Type) string {
	s, ok := typeStrings[typ]
	if !ok {
		return ""
	}
	if typ == TypeAnimatedFloat {
		return "model::AnimatedProperty<" + s + ">"
	}
	return "model::Property<" + s + ">"
}

// Value holds a property value of a particular Type.
type Value interface {
	// Type returns the type of the value.
	Type() Type

	// String returns a string representation of the current value.
	String() string

	// Copy returns a copy of the value, which can be safely modified.
	Copy() Value
}

// NewValue returns new Value of the given Type.
func NewValue(typ Type) Value {
	newValue, ok := valueGenerators[typ]
	if !ok {
		return nil
	}
	return newValue()
}

type valueGenerator func() Value

var valueGenerators = map[Type]valueGenerator{
	TypeFloat:         newValueFloat,
	TypeUint:          newValueUint,
	TypeVec2f:         newValueVec2f,
	TypeVec3f:         newValueVec3f,
	TypeVec4f:         newValueVec4f,
	TypeAnimatedFloat: newValueAnimatedFloat,
}

func formatFloats(a ...float32) string {
	var s strings.Builder
	for i, v := range a {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	return s.String()
}

////////////////////////////////////////////////////////////////
// Values

type ValueFloat float32

func newValueFloat() Value {
	return *new(ValueFloat)
}

func (ValueFloat) Type() Type {
	return TypeFloat
}
func (t ValueFloat) String() string {
	return formatFloats(float32(t))
}
func (t ValueFloat) Copy() Value {
	return t
}

////////////////

type ValueUint uint32

func newValueUint() Value {
	return *new(ValueUint)
}

func (ValueUint) Type() Type {
	return TypeUint
}
func (t ValueUint) String() string {
	return strconv.FormatUint(uint64(t), 10)
}
func (t ValueUint) Copy() Value {
	return t
}

////////////////

type ValueVec2f mgl32.Vec2

func newValueVec2f() Value {
	return *new(ValueVec2f)
}

func (ValueVec2f) Type() Type {
	return TypeVec2f
}
func (t ValueVec2f) String() string {
	return formatFloats(t[:]...)
}
func (t ValueVec2f) Copy() Value {
	return t
}

////////////////

type ValueVec3f mgl32.Vec3

func newValueVec3f() Value {
	return *new(ValueVec3f)
}

func (ValueVec3f) Type() Type {
	return TypeVec3f
}
func (t ValueVec3f) String() string {
	return formatFloats(t[:]...)
}
func (t ValueVec3f) Copy() Value {
	return t
}

////////////////

type ValueVec4f mgl32.Vec4

func newValueVec4f() Value {
	return *new(ValueVec4f)
}

func (ValueVec4f) Type() Type {
	return TypeVec4f
}
func (t ValueVec4f) String() string {
	return formatFloats(t[:]...)
}
func (t ValueVec4f) Copy() Value {
	return t
}

////////////////

// ValueAnimatedFloat is a float property driven by an argument.
type ValueAnimatedFloat struct {
	Argument uint32
	Keys     []FloatKey
}

func newValueAnimatedFloat() Value {
	return ValueAnimatedFloat{}
}

func (ValueAnimatedFloat) Type() Type {
	return TypeAnimatedFloat
}
func (t ValueAnimatedFloat) String() string {
	var s strings.Builder
	s.WriteString("arg ")
	s.WriteString(strconv.FormatUint(uint64(t.Argument), 10))
	s.WriteString(": ")
	for i, k := range t.Keys {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(strconv.FormatFloat(k.Frame, 'f', -1, 64))
		s.WriteString("=")
		s.WriteString(formatFloats(k.Value))
	}
	return s.String()
}
func (t ValueAnimatedFloat) Copy() Value {
	c := t
	c.Keys = append([]FloatKey(nil), t.Keys...)
	return c
}

////////////////////////////////////////////////////////////////

// Property is a named value.
type Property struct {
	Name  string
	Value Value
}

// TypeName returns the tag of the property, which depends on the type of the
// value.
func (p Property) TypeName() string {
	if p.Value == nil {
		return ""
	}
	return PropertyTag(p.Value.Type())
}

// PropertySet is an ordered list of properties. Names are expected to be
// unique.
type PropertySet []Property

// Get returns the value of the property with the given name.
func (s PropertySet) Get(name string) (Value, bool) {
	for _, p := range s {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Set sets the value of the named property, appending the property if it does
// not exist.
func (s *PropertySet) Set(name string, value Value) {
	for i, p := range *s {
		if p.Name == name {
			(*s)[i].Value = value
			return
		}
	}
	*s = append(*s, Property{Name: name, Value: value})
}

// Names returns the names of each property, in order.
func (s PropertySet) Names() []string {
	names := make([]string, len(s))
	for i, p := range s {
		names[i] = p.Name
	}
	return names
}

// Copy returns a deep copy of the set.
func (s PropertySet) Copy() PropertySet {
	if s == nil {
		return nil
	}
	c := make(PropertySet, len(s))
	for i, p := range s {
		c[i] = Property{Name: p.Name}
		if p.Value != nil {
			c[i].Value = p.Value.Copy()
		}
	}
	return c
}

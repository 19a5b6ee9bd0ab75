package edmfile_test

import (
	"reflect"
	"testing"

	"github.com/edmtools/edmfile"
)

func TestType_String(t *testing.T) {
	if edmfile.TypeUint.String() != "unsigned int" {
		t.Error("unexpected result from String")
	}

	if edmfile.Type(0).String() != "Invalid" {
		t.Error("unexpected result from String")
	}
}

func TestPropertyTag(t *testing.T) {
	tags := map[edmfile.Type]string{
		edmfile.TypeFloat:         "model::Property<float>",
		edmfile.TypeUint:          "model::Property<unsigned int>",
		edmfile.TypeVec2f:         "model::Property<osg::Vec2f>",
		edmfile.TypeVec3f:         "model::Property<osg::Vec3f>",
		edmfile.TypeVec4f:         "model::Property<osg::Vec4f>",
		edmfile.TypeAnimatedFloat: "model::AnimatedProperty<float>",
	}
	for typ, tag := range tags {
		if got := edmfile.PropertyTag(typ); got != tag {
			t.Errorf("PropertyTag(%s): expected %q, got %q", typ, tag, got)
		}
		if got := edmfile.TypeFromTag(tag); got != typ {
			t.Errorf("TypeFromTag(%q): expected %d, got %d", tag, typ, got)
		}
	}

	if edmfile.PropertyTag(edmfile.TypeInvalid) != "" {
		t.Error("expected empty tag for invalid type")
	}
	if edmfile.TypeFromTag("model::Node") != edmfile.TypeInvalid {
		t.Error("unexpected result from TypeFromTag")
	}
}

func TestNewValue(t *testing.T) {
	if _, ok := edmfile.NewValue(edmfile.TypeVec3f).(edmfile.ValueVec3f); !ok {
		t.Error("expected ValueVec3f from NewValue")
	}

	if edmfile.NewValue(edmfile.TypeInvalid) != nil {
		t.Error("expected nil value from NewValue")
	}
}

var types = []edmfile.Type{
	edmfile.TypeFloat,
	edmfile.TypeUint,
	edmfile.TypeVec2f,
	edmfile.TypeVec3f,
	edmfile.TypeVec4f,
	edmfile.TypeAnimatedFloat,
}

func TestValueType(t *testing.T) {
	for _, typ := range types {
		if v := edmfile.NewValue(typ); v.Type() != typ {
			t.Errorf("expected type %s from NewValue, got %s", typ, v.Type())
		}
	}
}

func TestValueCopy(t *testing.T) {
	for _, typ := range types {
		v := edmfile.NewValue(typ)
		c := v.Copy()
		if !reflect.DeepEqual(v, c) {
			t.Errorf("copy of %s is not equal", typ)
		}
	}

	a := edmfile.ValueAnimatedFloat{Argument: 1, Keys: []edmfile.FloatKey{{Frame: 0, Value: 1}}}
	c := a.Copy().(edmfile.ValueAnimatedFloat)
	c.Keys[0].Value = 2
	if a.Keys[0].Value != 1 {
		t.Error("copy of animated float shares keys")
	}
}

type vtest struct {
	v edmfile.Value
	s string
}

func compareStrings(t *testing.T, vts ...vtest) {
	for _, vt := range vts {
		if s := vt.v.String(); s != vt.s {
			t.Errorf("unexpected result from String method of value %q (%q expected, got %q)", vt.v.Type().String(), vt.s, s)
		}
	}
}

func TestValueString(t *testing.T) {
	compareStrings(t,
		vtest{edmfile.ValueFloat(0.5), "0.5"},
		vtest{edmfile.ValueUint(42), "42"},
		vtest{edmfile.ValueVec2f{1, -2}, "1, -2"},
		vtest{edmfile.ValueVec3f{0.25, 0, 3}, "0.25, 0, 3"},
		vtest{edmfile.ValueVec4f{1, 2, 3, 4}, "1, 2, 3, 4"},
		vtest{edmfile.ValueAnimatedFloat{
			Argument: 7,
			Keys:     []edmfile.FloatKey{{Frame: -1, Value: 0}, {Frame: 1, Value: 0.5}},
		}, "arg 7: -1=0, 1=0.5"},
	)
}

func TestPropertySet(t *testing.T) {
	var set edmfile.PropertySet
	set.Set("a", edmfile.ValueFloat(1))
	set.Set("b", edmfile.ValueUint(2))
	set.Set("a", edmfile.ValueFloat(3))

	if !reflect.DeepEqual(set.Names(), []string{"a", "b"}) {
		t.Errorf("unexpected names %v", set.Names())
	}
	if v, ok := set.Get("a"); !ok || v != edmfile.ValueFloat(3) {
		t.Errorf("unexpected value %v", v)
	}
	if _, ok := set.Get("c"); ok {
		t.Error("expected missing property")
	}
	if tag := set[1].TypeName(); tag != "model::Property<unsigned int>" {
		t.Errorf("unexpected tag %q", tag)
	}

	c := set.Copy()
	c.Set("b", edmfile.ValueUint(5))
	if v, _ := set.Get("b"); v != edmfile.ValueUint(2) {
		t.Error("copy shares properties with original")
	}
	if edmfile.PropertySet(nil).Copy() != nil {
		t.Error("expected nil copy of nil set")
	}
}

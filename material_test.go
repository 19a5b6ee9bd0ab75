package edmfile

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestVertexFormatOffset(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 100; n++ {
		var f VertexFormat
		for i := range f {
			f[i] = uint8(rng.Intn(5))
		}
		sum := 0
		for ch := 0; ch < VertexChannels; ch++ {
			if off := f.Offset(ch); off != sum {
				t.Fatalf("format %v: channel %d: expected offset %d, got %d", f, ch, sum, off)
			}
			sum += int(f[ch])
		}
		if f.Stride() != sum {
			t.Errorf("format %v: expected stride %d, got %d", f, sum, f.Stride())
		}

		// Changing a channel does not move earlier channels.
		ch := rng.Intn(VertexChannels)
		g := f
		g[ch] += 3
		for i := 0; i <= ch; i++ {
			if f.Offset(i) != g.Offset(i) {
				t.Errorf("format %v: changing channel %d moved channel %d", f, ch, i)
			}
		}
	}
}

func TestVertexFormat(t *testing.T) {
	f := DefaultVertexFormat()
	if f.Stride() != 9 {
		t.Errorf("unexpected stride %d", f.Stride())
	}
	if !reflect.DeepEqual(f.Indices(ChannelTexture), []int{7, 8}) {
		t.Errorf("unexpected texture indices %v", f.Indices(ChannelTexture))
	}
	if f.Indices(VertexChannels) != nil || f.Indices(-1) != nil {
		t.Error("expected nil indices for invalid channel")
	}
	if len(f.Indices(2)) != 0 {
		t.Error("expected no indices for empty channel")
	}
	if f.Unrecognized() != nil {
		t.Errorf("unexpected unrecognized channels %v", f.Unrecognized())
	}
	f[ChannelBoneWeights] = 4
	f[2] = 1
	f[21] = 2
	if !reflect.DeepEqual(f.Unrecognized(), []int{2, 21}) {
		t.Errorf("unexpected unrecognized channels %v", f.Unrecognized())
	}
}

func TestMaterialFields(t *testing.T) {
	m := NewMaterial("m")
	fields := m.EncodedFields()
	if len(fields) != len(MaterialFields())-1 {
		t.Errorf("unexpected fields %v", fields)
	}
	for _, f := range fields {
		if f == MaterialAnimatedUniforms {
			t.Error("unexpected animated uniforms entry")
		}
	}
	if len(MaterialFields()) != 11 {
		t.Error("EncodedFields modified the default field list")
	}

	m.AnimatedUniforms.Set("x", ValueAnimatedFloat{})
	if !reflect.DeepEqual(m.EncodedFields(), MaterialFields()) {
		t.Errorf("unexpected fields %v", m.EncodedFields())
	}

	m.Fields = []string{MaterialName, MaterialBaseName, MaterialVertexFormat}
	if !reflect.DeepEqual(m.EncodedFields(), m.Fields) {
		t.Errorf("expected stored fields, got %v", m.EncodedFields())
	}
}

func TestNewMaterial(t *testing.T) {
	m := NewMaterial("paint")
	if m.Name != "paint" || m.BaseMaterial != "def_material" {
		t.Errorf("unexpected material %+v", m)
	}
	if len(m.TexCoordChannels) != 12 || m.TexCoordChannels[0] != 0 || m.TexCoordChannels[11] != -1 {
		t.Errorf("unexpected texture coordinate channels %v", m.TexCoordChannels)
	}
	if v, ok := m.Uniforms.Get("diffuseValue"); !ok || v != ValueFloat(1) {
		t.Errorf("unexpected diffuseValue %v", v)
	}

	tex := NewTexture(1, "paint_nm")
	if tex.Index != 1 || tex.UnknownA != -1 || tex.UnknownB != [4]uint32{2, 2, 10, 6} || tex.Matrix[0] != 1 {
		t.Errorf("unexpected texture %+v", tex)
	}
}

package edm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// app concatenates values into a byte slice. Integers of fixed size and floats
// are appended in little-endian order, and an int is appended as one byte.
func app(bs ...interface{}) []byte {
	var s []byte
	for _, b := range bs {
		switch b := b.(type) {
		case string:
			s = append(s, b...)
		case []byte:
			s = append(s, b...)
		case byte:
			s = append(s, b)
		case int:
			s = append(s, byte(b))
		case uint16:
			s = binary.LittleEndian.AppendUint16(s, b)
		case uint32:
			s = binary.LittleEndian.AppendUint32(s, b)
		case int32:
			s = binary.LittleEndian.AppendUint32(s, uint32(b))
		case float32:
			s = binary.LittleEndian.AppendUint32(s, math.Float32bits(b))
		case float64:
			s = binary.LittleEndian.AppendUint64(s, math.Float64bits(b))
		default:
			panic("app: unsupported type")
		}
	}
	return s
}

// str encodes a length-prefixed string.
func str(s string) []byte {
	return app(uint32(len(s)), s)
}

func reader(b ...interface{}) *Reader {
	return NewReader(bytes.NewReader(app(b...)), nil)
}

func TestReaderNumbers(t *testing.T) {
	r := reader(byte(7), uint16(0x0102), uint32(0x01020304), int32(-2), float32(1.5), float64(-0.25))
	var (
		u8  uint8
		u16 uint16
		u32 uint32
		i32 int32
		f32 float32
		f64 float64
	)
	if r.Uint8(&u8) || r.Uint16(&u16) || r.Uint32(&u32) || r.Int32(&i32) || r.Float32(&f32) || r.Float64(&f64) {
		t.Fatalf("unexpected error: %v", r.Err())
	}
	if u8 != 7 || u16 != 0x0102 || u32 != 0x01020304 || i32 != -2 || f32 != 1.5 || f64 != -0.25 {
		t.Errorf("unexpected values %d %d %d %d %g %g", u8, u16, u32, i32, f32, f64)
	}
	if r.N() != 1+2+4+4+4+8 {
		t.Errorf("unexpected offset %d", r.N())
	}
	if !r.Uint8(&u8) {
		t.Fatal("expected failure at end of stream")
	}
	if !errors.Is(r.Err(), ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", r.Err())
	}
}

func TestReaderString(t *testing.T) {
	var s string
	r := reader(str("model::Node"))
	if r.String(&s) || s != "model::Node" {
		t.Errorf("unexpected result from String: %q, %v", s, r.Err())
	}

	r = reader(uint32(201), bytes.Repeat([]byte{'a'}, 201))
	if !r.String(&s) {
		t.Fatal("expected failure for long string")
	}
	var serr StringError
	if !errors.As(r.Err(), &serr) || serr.Length != 201 || serr.Offset != 0 || !errors.Is(serr, errStringLength) {
		t.Errorf("unexpected error %v", r.Err())
	}

	r = reader(uint32(201), bytes.Repeat([]byte{'a'}, 201))
	r.SetMaxStringLength(300)
	if r.String(&s) || len(s) != 201 {
		t.Errorf("expected raised limit to accept string: %v", r.Err())
	}

	r = reader(uint32(0), str("\xff\xfe"))
	if r.String(&s) || s != "" {
		t.Fatalf("unexpected result for empty string: %v", r.Err())
	}
	if !r.String(&s) {
		t.Fatal("expected failure for invalid UTF-8")
	}
	if !errors.As(r.Err(), &serr) || serr.Offset != 4 || !errors.Is(serr, errStringUTF8) {
		t.Errorf("unexpected error %v", r.Err())
	}

	r = reader(uint32(5), "abc")
	if !r.String(&s) || !errors.Is(r.Err(), ErrTruncated) {
		t.Errorf("expected truncated string, got %v", r.Err())
	}
}

func TestReaderStringTable(t *testing.T) {
	r := reader(uint32(1), uint32(2))
	r.strings = []string{"a", "b"}
	var s string
	if r.String(&s) || s != "b" {
		t.Errorf("unexpected result from String: %q, %v", s, r.Err())
	}
	var serr StructuralError
	if !r.String(&s) || !errors.As(r.Err(), &serr) || serr.Offset != 4 {
		t.Errorf("expected out of range index, got %v", r.Err())
	}
}

func TestReaderConst(t *testing.T) {
	r := reader("EDN")
	if !r.Const([]byte("EDM")) {
		t.Fatal("expected mismatched constant")
	}
	var cerr ConstantError
	if !errors.As(r.Err(), &cerr) || string(cerr.Got) != "EDN" {
		t.Errorf("unexpected error %v", r.Err())
	}
}

func TestReadList(t *testing.T) {
	r := reader(uint32(3), uint32(10), uint32(20), uint32(30))
	list, failed := ReadList(r, func(r *Reader, v *uint32) bool { return r.Uint32(v) })
	if failed || len(list) != 3 || list[0] != 10 || list[2] != 30 {
		t.Errorf("unexpected list %v, %v", list, r.Err())
	}

	// A count larger than the stream fails without allocating the count.
	r = reader(uint32(0xFFFFFFFF), uint32(1))
	if _, failed := ReadList(r, func(r *Reader, v *uint32) bool { return r.Uint32(v) }); !failed {
		t.Error("expected failure for oversized list")
	}
	if !errors.Is(r.Err(), ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", r.Err())
	}
}

func TestQuaternionOrder(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	q := mgl64.Quat{W: 4, V: mgl64.Vec3{1, 2, 3}}
	if w.Quatd(q) {
		t.Fatal(w.Err())
	}
	if want := app(float64(1), float64(2), float64(3), float64(4)); !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("unexpected quaternion bytes % x", buf.Bytes())
	}
	r := NewReader(&buf, nil)
	var got mgl64.Quat
	if r.Quatd(&got) || got != q {
		t.Errorf("unexpected quaternion %v", got)
	}
}

func TestWriterString(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	if w.String("abc") {
		t.Fatal(w.Err())
	}
	if !bytes.Equal(buf.Bytes(), str("abc")) {
		t.Errorf("unexpected bytes % x", buf.Bytes())
	}
	if !w.String(string(bytes.Repeat([]byte{'x'}, 201))) {
		t.Fatal("expected failure for long string")
	}
	var serr StringError
	if !errors.As(w.Err(), &serr) || serr.Offset != 7 {
		t.Errorf("unexpected error %v", w.Err())
	}
	if !w.Uint8(1) {
		t.Error("expected writer to remain failed")
	}
	if buf.Len() != 7 {
		t.Errorf("unexpected write after failure, length %d", buf.Len())
	}
}

func TestFloats(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	if w.Float32(-1.5) || w.Float64(math.Pi) || w.Float32s([]float32{0.25, 8}) || w.Float64s([]float64{-2, 1e300}) {
		t.Fatal(w.Err())
	}
	want := app(float32(-1.5), float64(math.Pi), float32(0.25), float32(8), float64(-2), float64(1e300))
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("unexpected bytes % x", buf.Bytes())
	}

	r := NewReader(bytes.NewReader(buf.Bytes()), nil)
	var (
		f32 float32
		f64 float64
		s32 = make([]float32, 2)
		s64 = make([]float64, 2)
	)
	if r.Float32(&f32) || r.Float64(&f64) || r.Float32s(s32) || r.Float64s(s64) {
		t.Fatalf("unexpected error: %v", r.Err())
	}
	if f32 != -1.5 || f64 != math.Pi || s32[0] != 0.25 || s32[1] != 8 || s64[0] != -2 || s64[1] != 1e300 {
		t.Errorf("unexpected values %g %g %v %v", f32, f64, s32, s64)
	}

	r = reader(float32(1))
	if !r.Float64(&f64) {
		t.Fatal("expected failure for short double")
	}
	if !errors.Is(r.Err(), ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", r.Err())
	}
}

package edm

import (
	"bytes"
	"errors"
	"io"
	"math"
	"unicode/utf8"

	"github.com/anaminus/parse"
	"github.com/edmtools/edmfile"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMaxStringLength is the default limit on the length of a string.
const DefaultMaxStringLength = 200

// maxPrealloc limits the capacity allocated up front for a list, so that a
// corrupt count cannot exhaust memory before the stream runs out.
const maxPrealloc = 1 << 12

// Reader reads the primitives of the format from a stream. Each method returns
// true if the read failed. After a failure, every subsequent read fails, and
// Err returns the first error.
type Reader struct {
	fr *parse.BinaryReader

	registry  *Registry
	maxString int
	// strings is the string table of a version 10 file. When non-nil, strings
	// are read as indices into the table.
	strings []string
	// tags tallies each decoded type tag, if non-nil.
	tags map[string]int
	// tag is the last tag read by Named at the outermost level.
	tag   string
	depth int
	// widths records the stored index size of each decoded geometry, if
	// non-nil.
	widths map[*edmfile.Geometry]int
	// warn accumulates non-fatal problems.
	warn []error
}

// NewReader returns a Reader that reads from r, and decodes named elements
// with the given registry. If registry is nil, the standard registry is used.
func NewReader(r io.Reader, registry *Registry) *Reader {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Reader{
		fr:        parse.NewBinaryReader(r),
		registry:  registry,
		maxString: DefaultMaxStringLength,
	}
}

// SetMaxStringLength sets the length above which a string is rejected. A value
// of zero or less restores the default.
func (r *Reader) SetMaxStringLength(n int) {
	if n <= 0 {
		n = DefaultMaxStringLength
	}
	r.maxString = n
}

// N returns the number of bytes read.
func (r *Reader) N() int64 {
	return r.fr.N()
}

// Err returns the first error that occurred. An unexpected end of the stream
// is reported as ErrTruncated.
func (r *Reader) Err() error {
	err := r.fr.Err()
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

// Fail sets err as the error of the reader, if no error has occurred yet.
// Always returns true.
func (r *Reader) Fail(err error) bool {
	r.fr.Add(0, err)
	return true
}

// Warn records a non-fatal problem.
func (r *Reader) Warn(err error) {
	r.warn = append(r.warn, err)
}

func (r *Reader) Uint8(v *uint8) bool {
	return r.fr.Number(v)
}

func (r *Reader) Uint16(v *uint16) bool {
	return r.fr.Number(v)
}

func (r *Reader) Uint32(v *uint32) bool {
	return r.fr.Number(v)
}

func (r *Reader) Int32(v *int32) bool {
	return r.fr.Number(v)
}

func (r *Reader) Float32(v *float32) bool {
	return r.fr.Number(v)
}

func (r *Reader) Float64(v *float64) bool {
	return r.fr.Number(v)
}

// Float32s fills v with consecutive floats.
func (r *Reader) Float32s(v []float32) bool {
	for i := range v {
		if r.Float32(&v[i]) {
			return true
		}
	}
	return false
}

// Float64s fills v with consecutive doubles.
func (r *Reader) Float64s(v []float64) bool {
	for i := range v {
		if r.Float64(&v[i]) {
			return true
		}
	}
	return false
}

// Bytes reads exactly len(p) bytes into p.
func (r *Reader) Bytes(p []byte) bool {
	return r.fr.Bytes(p)
}

// Const reads len(c) bytes, failing with a ConstantError if they differ from
// c.
func (r *Reader) Const(c []byte) bool {
	off := r.N()
	got := make([]byte, len(c))
	if r.Bytes(got) {
		return true
	}
	if !bytes.Equal(got, c) {
		return r.Fail(ConstantError{Offset: off, Expected: c, Got: got})
	}
	return false
}

// Count reads a uint32 list length.
func (r *Reader) Count(n *int) bool {
	var c uint32
	if r.Uint32(&c) {
		return true
	}
	*n = int(c)
	return false
}

// String reads a string. In version 8, a string is a uint32 length followed by
// UTF-8 bytes. In version 10, it is a uint32 index into the string table.
func (r *Reader) String(s *string) bool {
	off := r.N()
	var n uint32
	if r.Uint32(&n) {
		return true
	}
	if r.strings != nil {
		if int64(n) >= int64(len(r.strings)) {
			return r.Fail(StructuralError{Offset: off, Reason: "string index out of range"})
		}
		*s = r.strings[n]
		return false
	}
	if int64(n) > int64(r.maxString) {
		return r.Fail(StringError{Offset: off, Length: n, Cause: errStringLength})
	}
	b := make([]byte, n)
	if r.Bytes(b) {
		return true
	}
	if !utf8.Valid(b) {
		return r.Fail(StringError{Offset: off, Length: n, Cause: errStringUTF8})
	}
	*s = string(b)
	return false
}

// Vec3d reads three doubles.
func (r *Reader) Vec3d(v *mgl64.Vec3) bool {
	return r.Float64s(v[:])
}

// Matrixd reads a matrix of 16 doubles, in stored order.
func (r *Reader) Matrixd(m *mgl64.Mat4) bool {
	return r.Float64s(m[:])
}

// Matrixf reads a matrix of 16 floats, in stored order.
func (r *Reader) Matrixf(m *mgl32.Mat4) bool {
	return r.Float32s(m[:])
}

// Quatd reads a quaternion stored as four doubles in x, y, z, w order.
func (r *Reader) Quatd(q *mgl64.Quat) bool {
	var d [4]float64
	if r.Float64s(d[:]) {
		return true
	}
	*q = mgl64.Quat{W: d[3], V: mgl64.Vec3{d[0], d[1], d[2]}}
	return false
}

// ReadList reads a uint32 count followed by that many items, each read by
// read.
func ReadList[T any](r *Reader, read func(r *Reader, v *T) bool) (list []T, failed bool) {
	var n int
	if r.Count(&n) {
		return nil, true
	}
	list = make([]T, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		var v T
		if read(r, &v) {
			return nil, true
		}
		list = append(list, v)
	}
	return list, false
}

////////////////////////////////////////////////////////////////

// Writer writes the primitives of the format to a stream. Each method returns
// true if the write failed. After a failure, every subsequent write fails.
type Writer struct {
	fw *parse.BinaryWriter

	registry  *Registry
	maxString int
	err       error
}

// NewWriter returns a Writer that writes to w, and encodes named elements with
// the given registry. If registry is nil, the standard registry is used.
func NewWriter(w io.Writer, registry *Registry) *Writer {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Writer{
		fw:        parse.NewBinaryWriter(w),
		registry:  registry,
		maxString: DefaultMaxStringLength,
	}
}

// SetMaxStringLength sets the length above which a string is rejected. A value
// of zero or less restores the default.
func (w *Writer) SetMaxStringLength(n int) {
	if n <= 0 {
		n = DefaultMaxStringLength
	}
	w.maxString = n
}

// N returns the number of bytes written.
func (w *Writer) N() int64 {
	return w.fw.N()
}

// Err returns the first error that occurred.
func (w *Writer) Err() error {
	if w.err != nil {
		return w.err
	}
	_, err := w.fw.End()
	return err
}

// Fail sets err as the error of the writer, if no error has occurred yet.
// Always returns true.
func (w *Writer) Fail(err error) bool {
	if w.err == nil && w.Err() == nil {
		w.err = err
	}
	return true
}

func (w *Writer) failed() bool {
	return w.err != nil
}

func (w *Writer) number(v interface{}) bool {
	if w.failed() {
		return true
	}
	return w.fw.Number(v)
}

func (w *Writer) Uint8(v uint8) bool {
	return w.number(v)
}

func (w *Writer) Uint16(v uint16) bool {
	return w.number(v)
}

func (w *Writer) Uint32(v uint32) bool {
	return w.number(v)
}

func (w *Writer) Int32(v int32) bool {
	return w.number(v)
}

func (w *Writer) Float32(v float32) bool {
	return w.number(v)
}

func (w *Writer) Float64(v float64) bool {
	return w.number(v)
}

// Float32s writes each float of v.
func (w *Writer) Float32s(v []float32) bool {
	for _, f := range v {
		if w.Float32(f) {
			return true
		}
	}
	return false
}

// Float64s writes each double of v.
func (w *Writer) Float64s(v []float64) bool {
	for _, f := range v {
		if w.Float64(f) {
			return true
		}
	}
	return false
}

// Bytes writes p.
func (w *Writer) Bytes(p []byte) bool {
	if w.failed() {
		return true
	}
	return w.fw.Bytes(p)
}

// Count writes a list length.
func (w *Writer) Count(n int) bool {
	if n < 0 || int64(n) > math.MaxUint32 {
		return w.Fail(StructuralError{Offset: w.N(), Reason: "list length out of range"})
	}
	return w.Uint32(uint32(n))
}

// String writes a uint32 length followed by the bytes of s. Fails with a
// StringError if s is longer than the limit, or is not valid UTF-8.
func (w *Writer) String(s string) bool {
	if len(s) > w.maxString {
		return w.Fail(StringError{Offset: w.N(), Length: uint32(len(s)), Cause: errStringLength})
	}
	if !utf8.ValidString(s) {
		return w.Fail(StringError{Offset: w.N(), Length: uint32(len(s)), Cause: errStringUTF8})
	}
	if w.Uint32(uint32(len(s))) {
		return true
	}
	return w.Bytes([]byte(s))
}

// Vec3d writes three doubles.
func (w *Writer) Vec3d(v mgl64.Vec3) bool {
	return w.Float64s(v[:])
}

// Matrixd writes a matrix of 16 doubles, in stored order.
func (w *Writer) Matrixd(m mgl64.Mat4) bool {
	return w.Float64s(m[:])
}

// Matrixf writes a matrix of 16 floats, in stored order.
func (w *Writer) Matrixf(m mgl32.Mat4) bool {
	return w.Float32s(m[:])
}

// Quatd writes a quaternion as four doubles in x, y, z, w order.
func (w *Writer) Quatd(q mgl64.Quat) bool {
	return w.Float64s([]float64{q.V[0], q.V[1], q.V[2], q.W})
}

// WriteList writes the length of list followed by each item, written by
// write.
func WriteList[T any](w *Writer, list []T, write func(w *Writer, v T) bool) bool {
	if w.Count(len(list)) {
		return true
	}
	for _, v := range list {
		if write(w, v) {
			return true
		}
	}
	return false
}

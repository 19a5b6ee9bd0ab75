package edm

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/edmtools/edmfile"
	"github.com/edmtools/edmfile/errors"
)

// Encoder encodes an edmfile.File into a stream of bytes.
type Encoder struct {
	// Registry supplies the codec of each type tag. If nil, a standard
	// registry is created for each call.
	Registry *Registry

	// MaxStringLength is the length above which a string is rejected. If
	// zero, DefaultMaxStringLength is used.
	MaxStringLength int
}

// Encode formats f and writes it to w. The index tables of f are ignored, and
// are regenerated from the content of f. Tables that differ from the
// regenerated tables are reported as warnings.
//
// Nothing is written to w if an error occurs while formatting.
func (e Encoder) Encode(w io.Writer, f *edmfile.File) (warn, err error) {
	if w == nil {
		return nil, errors.New("nil writer")
	}
	if f == nil {
		return nil, errors.New("nil file")
	}
	var buf bytes.Buffer
	warn, err = e.encode(&buf, f)
	if err != nil {
		return warn, err
	}
	if _, err = buf.WriteTo(w); err != nil {
		return warn, err
	}
	return warn, nil
}

// EncodeFile formats f and writes it to a file at path. The file is created
// only if formatting succeeds.
func (e Encoder) EncodeFile(path string, f *edmfile.File) (warn, err error) {
	if f == nil {
		return nil, errors.New("nil file")
	}
	var buf bytes.Buffer
	warn, err = e.encode(&buf, f)
	if err != nil {
		return warn, err
	}
	file, err := os.Create(path)
	if err != nil {
		return warn, err
	}
	defer file.Close()
	if _, err = buf.WriteTo(file); err != nil {
		return warn, err
	}
	return warn, file.Close()
}

func encodeError(w *Writer, err error) error {
	w.Fail(err)
	if err = w.Err(); err != nil {
		return DataError{Offset: w.N(), Cause: err}
	}
	return nil
}

func elementEncodeError(w *Writer, section string, index int, tag string) error {
	return DataError{Offset: w.N(), Cause: ElementError{
		Section: section,
		Index:   index,
		Tag:     tag,
		Cause:   w.Err(),
	}}
}

// check returns an error for content that cannot be encoded.
func check(f *edmfile.File) error {
	switch f.Version {
	case edmfile.Version8:
	case edmfile.Version10:
		return UnsupportedError{Feature: "writing version 10"}
	default:
		return ErrUnrecognizedVersion(f.Version)
	}
	if f.Root == nil {
		return ErrNoRoot
	}
	if err := f.Validate(); err != nil {
		return err
	}
	for i, node := range f.Nodes {
		if a := edmfile.Animation(node); a != nil && len(a.ScaleTracks) > 0 {
			return fmt.Errorf("node #%d %q: %w", i, node.Base().Name, UnsupportedError{Feature: "writing scale tracks"})
		}
	}
	for _, c := range f.Collections {
		if !edmfile.IsCollectionName(c.Name) {
			return fmt.Errorf("unknown collection %q", c.Name)
		}
	}
	return nil
}

func writeIndexTable(w *Writer, t edmfile.IndexTable) bool {
	return WriteList(w, t, func(w *Writer, e edmfile.IndexEntry) bool {
		if w.String(e.Name) {
			return true
		}
		return w.Uint32(e.Count)
	})
}

func (e Encoder) encode(out io.Writer, f *edmfile.File) (warn, err error) {
	if err := check(f); err != nil {
		return nil, err
	}

	// Regenerate index tables.
	var warns errors.Errors
	a, b := audit(f, nil)
	if len(f.IndexA) > 0 || len(f.IndexB) > 0 {
		warns = warns.Append(compareTables("A", f.IndexA, a)...)
		warns = warns.Append(compareTables("B", f.IndexB, b)...)
	}

	fw := NewWriter(out, e.Registry)
	fw.SetMaxStringLength(e.MaxStringLength)

	if fw.Bytes([]byte(Signature)) {
		return warns.Return(), encodeError(fw, nil)
	}
	if fw.Uint16(f.Version) {
		return warns.Return(), encodeError(fw, nil)
	}
	if writeIndexTable(fw, edmfile.TableFromMap(a)) {
		return warns.Return(), encodeError(fw, nil)
	}
	if writeIndexTable(fw, edmfile.TableFromMap(b)) {
		return warns.Return(), encodeError(fw, nil)
	}

	if fw.Named(f.Root) {
		return warns.Return(), elementEncodeError(fw, "root", 0, f.Root.TypeName())
	}

	if fw.Count(len(f.Nodes)) {
		return warns.Return(), encodeError(fw, nil)
	}
	for i, node := range f.Nodes {
		if node == nil {
			return warns.Return(), encodeError(fw, fmt.Errorf("node #%d is nil", i))
		}
		if fw.Named(node) {
			return warns.Return(), elementEncodeError(fw, "nodes", i, node.TypeName())
		}
	}
	for _, p := range f.Parents {
		if fw.Int32(int32(p)) {
			return warns.Return(), encodeError(fw, nil)
		}
	}

	if fw.Bytes(f.Padding) {
		return warns.Return(), encodeError(fw, nil)
	}
	if fw.Count(len(f.Collections)) {
		return warns.Return(), encodeError(fw, nil)
	}
	for _, c := range f.Collections {
		if fw.String(c.Name) {
			return warns.Return(), encodeError(fw, nil)
		}
		if fw.Count(len(c.Objects)) {
			return warns.Return(), encodeError(fw, nil)
		}
		for j, obj := range c.Objects {
			if obj == nil {
				return warns.Return(), encodeError(fw, fmt.Errorf("%s #%d is nil", c.Name, j))
			}
			if fw.Named(obj) {
				return warns.Return(), elementEncodeError(fw, c.Name, j, obj.TypeName())
			}
		}
	}
	return warns.Return(), nil
}

package edm

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edmtools/edmfile"
	"github.com/edmtools/edmfile/errors"
)

// Signature is the magic number at the start of every file.
const Signature = "EDM"

// DecoderStats contains statistics generated while decoding the format.
type DecoderStats struct {
	// Version is the format version.
	Version uint16
	// NodeCount is the number of nodes in the node list.
	NodeCount int
	// SectionOffset is the byte offset of the object section.
	SectionOffset int64
	// PaddingSize is the number of unknown bytes preceding the object
	// section.
	PaddingSize int
	// TrailingSize is the number of bytes following the object section.
	TrailingSize int
	// Tags counts each decoded type tag.
	Tags map[string]int
}

// Decoder decodes a stream of bytes into an edmfile.File.
type Decoder struct {
	// Registry supplies the codec of each type tag. If nil, a standard
	// registry is created for each call.
	Registry *Registry

	// MaxStringLength is the length above which a string is rejected. If
	// zero, DefaultMaxStringLength is used.
	MaxStringLength int

	// Scan configures the search for the object section.
	Scan ScanConfig

	// If Stats is not nil, then stats will be set while decoding.
	Stats *DecoderStats
}

// Decode reads data from r and decodes it into a File. Non-fatal problems,
// such as an index table that disagrees with the content of the file, are
// returned as warnings.
func (d Decoder) Decode(r io.Reader) (f *edmfile.File, warn, err error) {
	if r == nil {
		return nil, nil, errors.New("nil reader")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	return d.decode(data)
}

// DecodeFile opens the file at path and decodes it.
func (d Decoder) DecodeFile(path string) (f *edmfile.File, warn, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	return d.Decode(file)
}

func decodeError(r *Reader, err error) error {
	r.Fail(err)
	if err = r.Err(); err != nil {
		return DataError{Offset: r.N(), Cause: err}
	}
	return nil
}

func elementError(r *Reader, section string, index int) error {
	return DataError{Offset: r.N(), Cause: ElementError{
		Section: section,
		Index:   index,
		Tag:     r.tag,
		Cause:   r.Err(),
	}}
}

// readStringTable reads the string table of a version 10 file: a uint32 size
// followed by that many bytes of NUL-terminated strings.
func readStringTable(r *Reader, remaining int64) (table []string, failed bool) {
	var n uint32
	if r.Uint32(&n) {
		return nil, true
	}
	if int64(n) > remaining-4 {
		return nil, r.Fail(ErrTruncated)
	}
	b := make([]byte, n)
	if r.Bytes(b) {
		return nil, true
	}
	table = []string{}
	if s := strings.TrimSuffix(string(b), "\x00"); len(b) > 0 {
		table = strings.Split(s, "\x00")
	}
	return table, false
}

func readIndexTable(r *Reader, t *edmfile.IndexTable) bool {
	var failed bool
	*t, failed = ReadList(r, func(r *Reader, e *edmfile.IndexEntry) bool {
		if r.String(&e.Name) {
			return true
		}
		return r.Uint32(&e.Count)
	})
	return failed
}

func (d Decoder) decode(data []byte) (f *edmfile.File, warn, err error) {
	fr := NewReader(bytes.NewReader(data), d.Registry)
	fr.SetMaxStringLength(d.MaxStringLength)
	fr.widths = map[*edmfile.Geometry]int{}
	if d.Stats != nil {
		*d.Stats = DecoderStats{Tags: map[string]int{}}
		fr.tags = d.Stats.Tags
	}
	f = &edmfile.File{}

	// Check signature.
	sig := make([]byte, len(Signature))
	if fr.Bytes(sig) {
		return nil, nil, decodeError(fr, nil)
	}
	if !bytes.Equal(sig, []byte(Signature)) {
		return nil, nil, decodeError(fr, ErrInvalidSig)
	}

	// Check version.
	if fr.Uint16(&f.Version) {
		return nil, nil, decodeError(fr, nil)
	}
	switch f.Version {
	case edmfile.Version8:
	case edmfile.Version10:
		table, failed := readStringTable(fr, int64(len(data))-fr.N())
		if failed {
			return nil, nil, decodeError(fr, nil)
		}
		fr.strings = table
	default:
		return nil, nil, decodeError(fr, ErrUnrecognizedVersion(f.Version))
	}
	if d.Stats != nil {
		d.Stats.Version = f.Version
	}

	if readIndexTable(fr, &f.IndexA) {
		return nil, nil, decodeError(fr, nil)
	}
	if readIndexTable(fr, &f.IndexB) {
		return nil, nil, decodeError(fr, nil)
	}

	// Root node.
	root, failed := fr.Named()
	if failed {
		return nil, nil, elementError(fr, "root", 0)
	}
	var ok bool
	if f.Root, ok = root.(*edmfile.RootNode); !ok {
		return nil, nil, decodeError(fr, ErrRootType)
	}

	// Node list.
	var count int
	if fr.Count(&count) {
		return nil, nil, decodeError(fr, nil)
	}
	f.Nodes = make([]edmfile.Node, 0, min(count, maxPrealloc))
	for i := 0; i < count; i++ {
		off := fr.N()
		e, failed := fr.Named()
		if failed {
			return nil, nil, elementError(fr, "nodes", i)
		}
		node, ok := e.(edmfile.Node)
		if !ok {
			fr.Fail(StructuralError{Offset: off, Reason: fmt.Sprintf("%s is not a node", e.TypeName())})
			return nil, nil, elementError(fr, "nodes", i)
		}
		f.Nodes = append(f.Nodes, node)
	}
	if d.Stats != nil {
		d.Stats.NodeCount = len(f.Nodes)
	}

	// Parent list.
	f.Parents = make([]edmfile.Ref, len(f.Nodes))
	for i := range f.Parents {
		off := fr.N()
		var p int32
		if fr.Int32(&p) {
			return nil, nil, decodeError(fr, nil)
		}
		if p < -1 || int(p) >= len(f.Nodes) {
			return nil, nil, decodeError(fr, StructuralError{
				Offset: off,
				Reason: fmt.Sprintf("parent %d of node %d out of range", p, i),
			})
		}
		f.Parents[i] = edmfile.Ref(p)
	}

	// Object section.
	var warns errors.Errors
	pos := fr.N()
	res, ok := scanSection(data[pos:], d.Scan.markers(), fr.strings, d.Scan.lookahead())
	if !ok {
		return nil, nil, decodeError(fr, StructuralError{Offset: pos, Reason: "object section not found"})
	}
	if res.Offset > 0 {
		f.Padding = make([]byte, res.Offset)
		if fr.Bytes(f.Padding) {
			return nil, nil, decodeError(fr, nil)
		}
		warns = warns.Append(PaddingWarning{Offset: pos, Size: res.Offset})
	}
	if d.Stats != nil {
		d.Stats.SectionOffset = fr.N()
		d.Stats.PaddingSize = res.Offset
	}
	if fr.Count(&count) {
		return nil, nil, decodeError(fr, nil)
	}
	for i := 0; i < count; i++ {
		off := fr.N()
		var name string
		if fr.String(&name) {
			return nil, nil, decodeError(fr, nil)
		}
		if !d.Scan.known(name) {
			return nil, nil, decodeError(fr, StructuralError{Offset: off, Reason: fmt.Sprintf("unknown collection %q", name)})
		}
		coll := edmfile.Collection{Name: name}
		var n int
		if fr.Count(&n) {
			return nil, nil, decodeError(fr, nil)
		}
		coll.Objects = make([]edmfile.Element, 0, min(n, maxPrealloc))
		for j := 0; j < n; j++ {
			obj, failed := fr.Named()
			if failed {
				return nil, nil, elementError(fr, name, j)
			}
			coll.Objects = append(coll.Objects, obj)
		}
		f.Collections = append(f.Collections, coll)
	}

	// Check for end of file.
	if end := fr.N(); end < int64(len(data)) {
		size := len(data) - int(end)
		warns = warns.Append(TrailingDataError{Offset: end, Size: size})
		if d.Stats != nil {
			d.Stats.TrailingSize = size
		}
	}
	warns = warns.Append(fr.warn...)

	// Cross-check index tables.
	a, b := audit(f, func(g *edmfile.Geometry) int {
		if w, ok := fr.widths[g]; ok {
			return w
		}
		return g.IndexWidth()
	})
	warns = warns.Append(compareTables("A", f.IndexA, a)...)
	warns = warns.Append(compareTables("B", f.IndexB, b)...)

	return f, warns.Return(), nil
}

// known returns whether name may name a collection.
func (c ScanConfig) known(name string) bool {
	if edmfile.IsCollectionName(name) {
		return true
	}
	for _, m := range c.Markers {
		if m == name {
			return true
		}
	}
	return false
}

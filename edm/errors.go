package edm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// Indicates an unexpected file signature.
	ErrInvalidSig = errors.New("invalid signature")
	// Indicates that the stream ended before a field was complete.
	ErrTruncated = errors.New("unexpected end of stream")
	// Indicates that the root element is not a root node.
	ErrRootType = errors.New("first element is not a root node")
	// Indicates that a file has no root node.
	ErrNoRoot = errors.New("missing root node")
)

// ErrUnrecognizedVersion indicates a format version not recognized by the
// codec.
type ErrUnrecognizedVersion uint16

func (err ErrUnrecognizedVersion) Error() string {
	return fmt.Sprintf("unrecognized version %d", uint16(err))
}

// UnknownTypeError indicates a type tag that has no entry in the registry.
type UnknownTypeError struct {
	Tag string
	// Offset is the byte offset of the tag, or -1 when encoding.
	Offset int64
}

func (err UnknownTypeError) Error() string {
	if err.Offset < 0 {
		return fmt.Sprintf("unknown type %q", err.Tag)
	}
	return fmt.Sprintf("unknown type %q at %d", err.Tag, err.Offset)
}

// StructuralError indicates content that does not fit the structure of the
// format, such as an out of range index.
type StructuralError struct {
	Offset int64
	Reason string
}

func (err StructuralError) Error() string {
	return fmt.Sprintf("structural violation at %d: %s", err.Offset, err.Reason)
}

// ConstantError indicates that a fixed sequence of bytes did not match.
type ConstantError struct {
	Offset   int64
	Expected []byte
	Got      []byte
}

func (err ConstantError) Error() string {
	return fmt.Sprintf("expected constant %q at %d, got %q", err.Expected, err.Offset, err.Got)
}

// StringError indicates a string that could not be decoded.
type StringError struct {
	// Offset is the byte offset of the length prefix.
	Offset int64
	Length uint32

	Cause error
}

func (err StringError) Error() string {
	return fmt.Sprintf("string of length %d at %d: %s", err.Length, err.Offset, err.Cause)
}

func (err StringError) Unwrap() error {
	return err.Cause
}

var (
	errStringLength = errors.New("length exceeds limit")
	errStringUTF8   = errors.New("invalid UTF-8")
)

// UnsupportedError indicates a construct that is recognized, but cannot be
// handled without losing data.
type UnsupportedError struct {
	Feature string
}

func (err UnsupportedError) Error() string {
	return err.Feature + ": not implemented"
}

// DataError wraps an error that occurred while encoding or decoding byte data.
type DataError struct {
	// Offset is the byte offset where the error occurred.
	Offset int64

	Cause error
}

func (err DataError) Error() string {
	var s strings.Builder
	s.WriteString("data error")
	if err.Offset >= 0 {
		s.WriteString(" at ")
		s.Write(strconv.AppendInt(nil, err.Offset, 10))
	}
	if err.Cause != nil {
		s.WriteString(": ")
		s.WriteString(err.Cause.Error())
	}
	return s.String()
}

func (err DataError) Unwrap() error {
	return err.Cause
}

// ElementError indicates an error that occurred within a tagged element.
type ElementError struct {
	// Section names the part of the file containing the element.
	Section string
	// Index is the position of the element within its section.
	Index int
	// Tag is the type tag of the element, if known.
	Tag string

	Cause error
}

func (err ElementError) Error() string {
	if err.Tag == "" {
		return fmt.Sprintf("%s #%d: %s", err.Section, err.Index, err.Cause)
	}
	return fmt.Sprintf("%s #%d %s: %s", err.Section, err.Index, err.Tag, err.Cause)
}

func (err ElementError) Unwrap() error {
	return err.Cause
}

////////////////////////////////////////////////////////////////
// Warnings

// IndexMismatch indicates that a count of an index table differs from the
// count found by auditing the file.
type IndexMismatch struct {
	// Table is "A" or "B".
	Table   string
	Name    string
	Stored  uint32
	Counted uint32
}

func (err IndexMismatch) Error() string {
	return fmt.Sprintf("index%s: %s: stored %d, counted %d", err.Table, err.Name, err.Stored, err.Counted)
}

// PaddingWarning indicates that bytes were skipped while searching for the
// render object section.
type PaddingWarning struct {
	Offset int64
	Size   int
}

func (err PaddingWarning) Error() string {
	return fmt.Sprintf("skipped %d unknown bytes at %d before object section", err.Size, err.Offset)
}

// TrailingDataError indicates that data remains after the end of the file
// structure.
type TrailingDataError struct {
	Offset int64
	Size   int
}

func (err TrailingDataError) Error() string {
	return fmt.Sprintf("%d bytes of trailing data at %d", err.Size, err.Offset)
}

// VertexChannelWarning indicates that a material uses vertex channels whose
// meaning is not known.
type VertexChannelWarning struct {
	Material string
	Channels []int
}

func (err VertexChannelWarning) Error() string {
	return fmt.Sprintf("material %q: vertex data in unrecognized channels %v", err.Material, err.Channels)
}

// IndexCountWarning indicates geometry whose index count is not a multiple of
// three.
type IndexCountWarning struct {
	Object string
	Count  int
}

func (err IndexCountWarning) Error() string {
	return fmt.Sprintf("%s: index count %d is not a multiple of 3", err.Object, err.Count)
}

// Package edm implements a decoder and encoder for the binary EDM scene
// format.
//
// The easiest way to decode and encode files is through the functions
// Deserialize and Serialize. These decode and encode directly between byte
// streams and File structures specified by the edmfile package. A Decoder or
// Encoder can be used for more control, and to receive warnings.
//
// Elements of the format are written behind a type tag. The codec of each tag
// is held by a Registry, which can be extended with new types.
package edm

import (
	"io"

	"github.com/edmtools/edmfile"
)

// Deserialize decodes data from r into a File. Warnings are discarded.
func Deserialize(r io.Reader) (f *edmfile.File, err error) {
	f, _, err = Decoder{}.Decode(r)
	return f, err
}

// Serialize encodes f into w. Warnings are discarded.
func Serialize(w io.Writer, f *edmfile.File) (err error) {
	_, err = Encoder{}.Encode(w, f)
	return err
}

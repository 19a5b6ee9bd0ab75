package edm

import (
	"bytes"
	"encoding/binary"

	"github.com/edmtools/edmfile"
)

// DefaultMaxLookahead is the default number of bytes searched for the start
// of the object section.
const DefaultMaxLookahead = 1 << 20

// ScanConfig configures the search for the object section, which is not
// preceded by a length.
type ScanConfig struct {
	// Markers are the collection names that may begin the section. If empty,
	// edmfile.CollectionNames is used.
	Markers []string
	// MaxLookahead is the maximum number of bytes that may precede the start
	// of the section. If zero, DefaultMaxLookahead is used. If negative, the
	// search is unbounded.
	MaxLookahead int
}

func (c ScanConfig) markers() []string {
	if len(c.Markers) == 0 {
		return edmfile.CollectionNames()
	}
	return c.Markers
}

func (c ScanConfig) lookahead() int {
	if c.MaxLookahead == 0 {
		return DefaultMaxLookahead
	}
	return c.MaxLookahead
}

// scanResult locates the object section within a buffer.
type scanResult struct {
	// Offset is the position of the collection count, which is also the
	// number of bytes preceding the section.
	Offset int
	// Count is the number of collections.
	Count uint32
	// Marker is the name of the first collection, or empty if Count is zero.
	Marker string
}

// markerPattern returns the bytes that encode marker as a string. If table is
// non-nil, the marker is encoded as an index into table, and ok is false if
// the table does not contain marker.
func markerPattern(marker string, table []string) (pattern []byte, ok bool) {
	var n [4]byte
	if table != nil {
		for i, s := range table {
			if s == marker {
				binary.LittleEndian.PutUint32(n[:], uint32(i))
				return n[:], true
			}
		}
		return nil, false
	}
	binary.LittleEndian.PutUint32(n[:], uint32(len(marker)))
	return append(n[:], marker...), true
}

// scanSection searches data for the start of the object section: a uint32
// collection count followed by the encoded name of the first collection. The
// match that ends earliest is chosen, which is the first match found by a
// window sliding forward one byte at a time.
//
// If no marker is found, then the section is an empty list, located at the
// first zero count within the lookahead. Any bytes that follow it are left
// to the caller.
func scanSection(data []byte, markers []string, table []string, lookahead int) (res scanResult, ok bool) {
	limit := len(data)
	if lookahead >= 0 && lookahead+4 < limit {
		limit = lookahead + 4
	}
	best := -1
	bestEnd := 0
	for _, marker := range markers {
		pattern, ok := markerPattern(marker, table)
		if !ok {
			continue
		}
		end := limit + len(pattern)
		if end > len(data) {
			end = len(data)
		}
		// The count occupies the 4 bytes before the pattern.
		if end < 4 {
			continue
		}
		i := bytes.Index(data[4:end], pattern)
		if i < 0 {
			continue
		}
		if best < 0 || i+len(pattern) < bestEnd {
			best = i
			bestEnd = i + len(pattern)
			res = scanResult{
				Offset: i,
				Count:  binary.LittleEndian.Uint32(data[i:]),
				Marker: marker,
			}
		}
	}
	if best >= 0 {
		return res, true
	}

	for i := 0; i+4 <= len(data) && (lookahead < 0 || i <= lookahead); i++ {
		if binary.LittleEndian.Uint32(data[i:]) == 0 {
			return scanResult{Offset: i}, true
		}
	}
	return scanResult{}, false
}

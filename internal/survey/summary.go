// Package survey decodes many files at once and records a summary of each,
// so that the contents of a large set of models can be queried without
// decoding them again.
package survey

import (
	"bytes"
	"encoding/hex"

	"github.com/edmtools/edmfile"
	"github.com/edmtools/edmfile/edm"
	"github.com/edmtools/edmfile/errors"
	"golang.org/x/crypto/blake2b"
)

// Summary describes one surveyed file. Geometry buffers are reduced to their
// sizes.
type Summary struct {
	Path string `json:"path"`
	// Hash is the blake2b-256 hash of the content of the file.
	Hash string `json:"hash"`
	Size int    `json:"size"`

	// Error is set when the file could not be decoded, in which case only
	// the fields above are set.
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	Version     uint16         `json:"version"`
	PaddingSize int            `json:"padding_size,omitempty"`
	Nodes       map[string]int `json:"nodes,omitempty"`
	Objects     map[string]int `json:"objects,omitempty"`
	Materials   []Material     `json:"materials,omitempty"`
	Vertices    int            `json:"vertices"`
	Triangles   int            `json:"triangles"`
}

// Material describes one material of a surveyed file.
type Material struct {
	Name             string               `json:"name"`
	BaseMaterial     string               `json:"base_material"`
	Uniforms         []string             `json:"uniforms,omitempty"`
	AnimatedUniforms []string             `json:"animated_uniforms,omitempty"`
	Textures         []string             `json:"textures,omitempty"`
	VertexFormat     edmfile.VertexFormat `json:"vertex_format"`
}

// Summarize decodes data with d and summarizes the result. A decoding error
// is recorded in the summary rather than returned.
func Summarize(path string, data []byte, d edm.Decoder) Summary {
	sum := blake2b.Sum256(data)
	s := Summary{
		Path: path,
		Hash: hex.EncodeToString(sum[:]),
		Size: len(data),
	}

	var stats edm.DecoderStats
	d.Stats = &stats
	f, warn, err := d.Decode(bytes.NewReader(data))
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.Warnings = errors.Strings(warn)
	s.Version = f.Version
	s.PaddingSize = stats.PaddingSize
	s.fill(f)
	return s
}

func (s *Summary) fill(f *edmfile.File) {
	s.Nodes = map[string]int{}
	if f.Root != nil {
		s.Nodes[f.Root.TypeName()]++
		for _, m := range f.Root.Materials {
			s.Materials = append(s.Materials, summarizeMaterial(m))
		}
	}
	for _, node := range f.Nodes {
		if node != nil {
			s.Nodes[node.TypeName()]++
		}
	}

	for _, c := range f.Collections {
		if s.Objects == nil {
			s.Objects = map[string]int{}
		}
		s.Objects[c.Name] += len(c.Objects)
		for _, obj := range c.Objects {
			var g *edmfile.Geometry
			switch obj := obj.(type) {
			case *edmfile.RenderNode:
				g = &obj.Geometry
			case *edmfile.SkinNode:
				g = &obj.Geometry
			case *edmfile.ShellNode:
				g = &obj.Geometry
			default:
				continue
			}
			s.Vertices += g.VertexCount()
			s.Triangles += g.TriangleCount()
		}
	}
}

func summarizeMaterial(m *edmfile.Material) Material {
	sm := Material{
		Name:             m.Name,
		BaseMaterial:     m.BaseMaterial,
		Uniforms:         names(m.Uniforms),
		AnimatedUniforms: names(m.AnimatedUniforms),
		VertexFormat:     m.VertexFormat,
	}
	for _, t := range m.Textures {
		sm.Textures = append(sm.Textures, t.Name)
	}
	return sm
}

func names(set edmfile.PropertySet) []string {
	if len(set) == 0 {
		return nil
	}
	return set.Names()
}

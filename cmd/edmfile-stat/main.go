// The edmfile-stat command displays stats for an EDM file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/edmtools/edmfile"
	"github.com/edmtools/edmfile/edm"
	"github.com/edmtools/edmfile/internal/config"
)

const usage = `usage: edmfile-stat [-config FILE] [INPUT] [OUTPUT]

Reads an EDM file from INPUT, and writes to OUTPUT statistics for the file.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.

FILE is an HCL configuration file, whose decoder block configures decoding.
`

type ObjectSize struct {
	Collection string
	Index      int
	Name       string
	Type       string
	Vertices   int
	Triangles  int
}

func (o ObjectSize) String() string {
	return fmt.Sprintf("%s[%d]:%s(%d)", o.Collection, o.Index, o.Type, o.Vertices)
}

type ObjectSizeList []ObjectSize

func (l ObjectSizeList) MarshalJSON() ([]byte, error) {
	list := append([]ObjectSize{}, l...)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Vertices > list[j].Vertices
	})
	if len(list) > 20 {
		list = list[:20]
	}
	return json.Marshal(list)
}

type Stats struct {
	// Binary format data.
	Format edm.DecoderStats

	// Index tables as stored in the file.
	StoredA map[string]uint32
	StoredB map[string]uint32

	// Index tables as counted from the content of the file.
	CountedA map[string]uint32
	CountedB map[string]uint32

	// Number of nodes overall, excluding the root.
	NodeCount int

	// Depth of the deepest node in the hierarchy.
	MaxDepth int

	// Number of nodes per type.
	NodeTypeCount map[string]int

	// Number of objects per collection.
	CollectionCount map[string]int

	// Number of objects per type.
	ObjectTypeCount map[string]int

	// Number of animated nodes per argument.
	ArgumentCount map[uint32]int `json:",omitempty"`

	Materials []string

	VertexCount   int
	TriangleCount int

	LargestObjects ObjectSizeList `json:",omitempty"`
}

const Okay = 0
const (
	Exit = 1 << iota
	SkipChildren
)

// walk visits each node of refs and its descendants in depth-first order.
func walk(f *edmfile.File, refs []edmfile.Ref, depth int, cb func(ref edmfile.Ref, node edmfile.Node, depth int) int) (ok bool) {
	for _, ref := range refs {
		status := cb(ref, f.Node(ref), depth)
		if status&Exit != 0 {
			return false
		}
		if status&SkipChildren == 0 {
			if ok := walk(f, f.Children(ref), depth+1, cb); !ok {
				return false
			}
		}
	}
	return true
}

// topLevel returns the nodes without a parent.
func topLevel(f *edmfile.File) []edmfile.Ref {
	var refs []edmfile.Ref
	for i, p := range f.Parents {
		if !p.Valid(len(f.Nodes)) {
			refs = append(refs, edmfile.Ref(i))
		}
	}
	return refs
}

func geometryOf(obj edmfile.Element) *edmfile.Geometry {
	switch obj := obj.(type) {
	case *edmfile.RenderNode:
		return &obj.Geometry
	case *edmfile.SkinNode:
		return &obj.Geometry
	case *edmfile.ShellNode:
		return &obj.Geometry
	}
	return nil
}

func (s *Stats) Fill(f *edmfile.File) {
	if f == nil {
		return
	}

	s.StoredA = f.IndexA.Map()
	s.StoredB = f.IndexB.Map()
	a, b := edm.Audit(f)
	s.CountedA = a.Map()
	s.CountedB = b.Map()

	s.NodeCount = len(f.Nodes)
	s.MaxDepth = 0
	s.NodeTypeCount = map[string]int{}
	s.ArgumentCount = map[uint32]int{}
	walk(f, topLevel(f), 1, func(ref edmfile.Ref, node edmfile.Node, depth int) int {
		if node == nil {
			return SkipChildren
		}
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		s.NodeTypeCount[node.TypeName()]++
		if a := edmfile.Animation(node); a != nil {
			for _, arg := range a.Arguments() {
				s.ArgumentCount[arg]++
			}
		}
		return Okay
	})

	s.Materials = []string{}
	if f.Root != nil {
		for _, m := range f.Root.Materials {
			s.Materials = append(s.Materials, m.Name)
		}
	}

	s.CollectionCount = map[string]int{}
	s.ObjectTypeCount = map[string]int{}
	s.LargestObjects = ObjectSizeList{}
	for _, c := range f.Collections {
		s.CollectionCount[c.Name] += len(c.Objects)
		for i, obj := range c.Objects {
			s.ObjectTypeCount[obj.TypeName()]++
			g := geometryOf(obj)
			if g == nil {
				continue
			}
			s.VertexCount += g.VertexCount()
			s.TriangleCount += g.TriangleCount()
			size := ObjectSize{
				Collection: c.Name,
				Index:      i,
				Type:       obj.TypeName(),
				Vertices:   g.VertexCount(),
				Triangles:  g.TriangleCount(),
			}
			if n, ok := obj.(interface{ Base() *edmfile.NodeBase }); ok {
				size.Name = n.Base().Name
			}
			s.LargestObjects = append(s.LargestObjects, size)
		}
	}
}

func main() {
	var input io.Reader = os.Stdin
	var output io.Writer = os.Stdout

	configPath := flag.String("config", "", "HCL configuration file")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("load config: %w", err))
		os.Exit(2)
	}
	args := flag.Args()
	if len(args) >= 1 && args[0] != "-" {
		in, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("open input: %w", err))
			return
		}
		input = in
		defer in.Close()
	}
	if len(args) >= 2 && args[1] != "-" {
		out, err := os.Create(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("create output: %w", err))
			return
		}
		defer out.Close()
		defer func() {
			err := out.Sync()
			if err != nil {
				fmt.Fprintln(os.Stderr, fmt.Errorf("sync output: %w", err))
				return
			}
		}()
		output = out
	}

	var stats Stats
	decoder := cfg.DecoderOptions()
	decoder.Stats = &stats.Format
	f, warn, err := decoder.Decode(input)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode error: %w", err))
	}

	stats.Fill(f)

	je := json.NewEncoder(output)
	je.SetEscapeHTML(false)
	je.SetIndent("", "\t")
	if err := je.Encode(stats); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("write error: %w", err))
	}
}

package survey

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// MaterialTable maps each base material to the uniform names used by
// materials based on it, across every decoded file. Names are sorted, and
// include animated uniforms.
func (s *Store) MaterialTable() map[string][]string {
	sets := map[string]map[string]struct{}{}
	for _, f := range s.Decoded() {
		for _, m := range f.Materials {
			set, ok := sets[m.BaseMaterial]
			if !ok {
				set = map[string]struct{}{}
				sets[m.BaseMaterial] = set
			}
			for _, name := range m.Uniforms {
				set[name] = struct{}{}
			}
			for _, name := range m.AnimatedUniforms {
				set[name] = struct{}{}
			}
		}
	}
	table := make(map[string][]string, len(sets))
	for base, set := range sets {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		table[base] = names
	}
	return table
}

// VertexChannelCounts maps each vertex channel that is used by any material
// to the sorted set of sizes it has been seen with.
func (s *Store) VertexChannelCounts() map[int][]int {
	sets := map[int]map[int]struct{}{}
	for _, f := range s.Decoded() {
		for _, m := range f.Materials {
			for ch, n := range m.VertexFormat {
				if n == 0 {
					continue
				}
				if sets[ch] == nil {
					sets[ch] = map[int]struct{}{}
				}
				sets[ch][int(n)] = struct{}{}
			}
		}
	}
	counts := make(map[int][]int, len(sets))
	for ch, set := range sets {
		list := make([]int, 0, len(set))
		for n := range set {
			list = append(list, n)
		}
		sort.Ints(list)
		counts[ch] = list
	}
	return counts
}

func sortedKeys[K string | int, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// WriteMaterialTable writes table to w as the rows of a Markdown table.
func WriteMaterialTable(w io.Writer, table map[string][]string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "| Base material                   | Uniforms |")
	fmt.Fprintln(bw, "|---------------------------------|----------|")
	for _, base := range sortedKeys(table) {
		names := make([]string, len(table[base]))
		for i, name := range table[base] {
			names[i] = "`" + name + "`"
		}
		fmt.Fprintf(bw, "| %-31s | %s |\n", base, strings.Join(names, ", "))
	}
	return bw.Flush()
}

// WriteChannelCounts writes counts to w, one channel per line.
func WriteChannelCounts(w io.Writer, counts map[int][]int) error {
	bw := bufio.NewWriter(w)
	for _, ch := range sortedKeys(counts) {
		sizes := make([]string, len(counts[ch]))
		for i, n := range counts[ch] {
			sizes[i] = fmt.Sprint(n)
		}
		fmt.Fprintf(bw, "%2d: %s\n", ch, strings.Join(sizes, ", "))
	}
	return bw.Flush()
}

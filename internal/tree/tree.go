// Package tree renders sorted secret paths as an indented tree.
package tree

import (
	"sort"
	"strings"
)

// Node is one rendered line.
type Node struct {
	Name  string
	Depth int
	Leaf  bool
}

// Render turns paths into tree lines. Paths are sorted first; each path
// renders only the segments that differ from the previous path, and its
// last segment is always rendered as a leaf.
func Render(paths []string) []Node {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var nodes []Node
	var prev []string
	for _, p := range sorted {
		segs := strings.Split(p, "/")

		branch := 0
		for branch < len(segs)-1 && branch < len(prev) && segs[branch] == prev[branch] {
			branch++
		}
		for depth := branch; depth < len(segs); depth++ {
			nodes = append(nodes, Node{
				Name:  segs[depth],
				Depth: depth,
				Leaf:  depth == len(segs)-1,
			})
		}
		prev = segs
	}
	return nodes
}

// Formatter styles node names.
type Formatter func(name string) string

// Format renders nodes as text, two spaces per level.
func Format(nodes []Node, branch, leaf Formatter) string {
	if branch == nil {
		branch = func(s string) string { return s + "/" }
	}
	if leaf == nil {
		leaf = func(s string) string { return s }
	}

	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(strings.Repeat("  ", n.Depth))
		if n.Leaf {
			b.WriteString(leaf(n.Name))
		} else {
			b.WriteString(branch(n.Name))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

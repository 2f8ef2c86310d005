// Package hierarchy rebuilds browsable trees from flat resource listings.
// Builders are pure: the same input always yields the same roots, children
// and synthesized ids, in the same order.
package hierarchy

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicateID marks an entry skipped because its id was already used.
	ErrDuplicateID = errors.New("duplicate node id")
	// ErrCycle marks an entry whose parent link was dropped to break a cycle.
	ErrCycle = errors.New("parent cycle")
	// ErrEmptyKey marks an entry skipped because it had no key.
	ErrEmptyKey = errors.New("empty key")
)

// Node is one tree node.
type Node struct {
	ID         string
	Label      string
	Expandable bool
	// Virtual nodes stand in for a missing parent and have no backing
	// resource.
	Virtual  bool
	ARN      string
	Metadata any
}

// Result is a built tree. Children maps a node id to its ordered children;
// nodes without children have no entry. Issues lists skipped or repaired
// input entries.
type Result struct {
	Roots    []Node
	Children map[string][]Node
	Issues   []error
}

// Len counts every node in the tree.
func (r Result) Len() int {
	n := len(r.Roots)
	for _, kids := range r.Children {
		n += len(kids)
	}
	return n
}

// Find returns the node with id.
func (r Result) Find(id string) (Node, bool) {
	for _, n := range r.Roots {
		if n.ID == id {
			return n, true
		}
	}
	for _, kids := range r.Children {
		for _, n := range kids {
			if n.ID == id {
				return n, true
			}
		}
	}
	return Node{}, false
}

// Filter keeps the nodes that match or have a matching descendant. A node
// that matches keeps its whole subtree; other kept nodes keep only their
// kept children. Order is preserved.
func Filter(r Result, match func(Node) bool) Result {
	out := Result{Children: make(map[string][]Node)}
	var visit func(n Node) bool
	visit = func(n Node) bool {
		if match(n) {
			copySubtree(r, n.ID, out.Children)
			return true
		}
		var kept []Node
		for _, c := range r.Children[n.ID] {
			if visit(c) {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			return false
		}
		out.Children[n.ID] = kept
		return true
	}
	for _, root := range r.Roots {
		if visit(root) {
			out.Roots = append(out.Roots, root)
		}
	}
	return out
}

func copySubtree(r Result, id string, dst map[string][]Node) {
	kids, ok := r.Children[id]
	if !ok {
		return
	}
	dst[id] = kids
	for _, c := range kids {
		copySubtree(r, c.ID, dst)
	}
}

// LabelContains matches nodes whose label contains text, ignoring case.
func LabelContains(text string) func(Node) bool {
	needle := strings.ToLower(text)
	return func(n Node) bool {
		return strings.Contains(strings.ToLower(n.Label), needle)
	}
}

// Row is a node positioned for painting.
type Row struct {
	Node
	Depth       int
	HasChildren bool
	Open        bool
	Last        bool
}

// Flatten walks the tree depth-first, descending only into nodes for which
// open returns true.
func Flatten(r Result, open func(id string) bool) []Row {
	var rows []Row
	var walk func(nodes []Node, depth int)
	walk = func(nodes []Node, depth int) {
		for i, n := range nodes {
			kids := r.Children[n.ID]
			isOpen := len(kids) > 0 && open != nil && open(n.ID)
			rows = append(rows, Row{
				Node:        n,
				Depth:       depth,
				HasChildren: len(kids) > 0,
				Open:        isOpen,
				Last:        i == len(nodes)-1,
			})
			if isOpen {
				walk(kids, depth+1)
			}
		}
	}
	walk(r.Roots, 0)
	return rows
}

package hierarchy

import (
	"fmt"
)

// SubItemSeparator joins a node id and a sub-item name into the sub-item
// leaf id.
const SubItemSeparator = "#"

// ParentEntry is one input node for BuildParents.
type ParentEntry struct {
	ID       string
	ParentID string
	Label    string
	// SubItems become leaf children such as methods or attributes.
	SubItems []string
	ARN      string
	Metadata any
}

// BuildParents builds a tree from entries carrying explicit parent ids.
//
// Entries without a parent are roots. A parent id that matches no entry is
// synthesized once as a virtual root. Every referenced parent is
// expandable. Sub-items become leaves with id ID+SubItemSeparator+name,
// listed before the node's child nodes. Duplicate ids are skipped and a
// cycle is broken by dropping the parent link of its first member in input
// order; both are reported in Result.Issues.
func BuildParents(entries []ParentEntry) Result {
	var issues []error

	var kept []ParentEntry
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			issues = append(issues, fmt.Errorf("%w: entry with label %q", ErrEmptyKey, e.Label))
			continue
		}
		if _, dup := index[e.ID]; dup {
			issues = append(issues, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID))
			continue
		}
		index[e.ID] = len(kept)
		kept = append(kept, e)
	}

	parentOf := make(map[string]string, len(kept))
	for _, e := range kept {
		if e.ParentID != "" {
			parentOf[e.ID] = e.ParentID
		}
	}
	for _, e := range kept {
		if inCycle(e.ID, parentOf) {
			issues = append(issues, fmt.Errorf("%w: dropped parent %s of %s", ErrCycle, parentOf[e.ID], e.ID))
			delete(parentOf, e.ID)
		}
	}

	referenced := make(map[string]bool)
	for _, parent := range parentOf {
		referenced[parent] = true
	}

	res := Result{Children: make(map[string][]Node)}
	used := make(map[string]bool, len(kept))
	for _, e := range kept {
		used[e.ID] = true
	}

	for _, e := range kept {
		for _, name := range e.SubItems {
			leafID := e.ID + SubItemSeparator + name
			if used[leafID] {
				issues = append(issues, fmt.Errorf("%w: %s", ErrDuplicateID, leafID))
				continue
			}
			used[leafID] = true
			res.Children[e.ID] = append(res.Children[e.ID], Node{ID: leafID, Label: name})
		}
	}

	synthesized := make(map[string]bool)
	for _, e := range kept {
		node := Node{
			ID:         e.ID,
			Label:      e.Label,
			Expandable: referenced[e.ID] || len(res.Children[e.ID]) > 0,
			ARN:        e.ARN,
			Metadata:   e.Metadata,
		}
		if node.Label == "" {
			node.Label = e.ID
		}

		parent, hasParent := parentOf[e.ID]
		if !hasParent {
			res.Roots = append(res.Roots, node)
			continue
		}
		if _, known := index[parent]; !known && !synthesized[parent] {
			if used[parent] {
				// parent id names a sub-item leaf; attach as a root instead
				issues = append(issues, fmt.Errorf("%w: %s", ErrDuplicateID, parent))
				res.Roots = append(res.Roots, node)
				continue
			}
			synthesized[parent] = true
			res.Roots = append(res.Roots, Node{ID: parent, Label: parent, Expandable: true, Virtual: true})
		}
		res.Children[parent] = append(res.Children[parent], node)
	}

	res.Issues = issues
	return res
}

// inCycle reports whether following parent links from id leads back to id.
func inCycle(id string, parentOf map[string]string) bool {
	seen := map[string]bool{id: true}
	cur := id
	for {
		next, ok := parentOf[cur]
		if !ok {
			return false
		}
		if next == id {
			return true
		}
		if seen[next] {
			return false
		}
		seen[next] = true
		cur = next
	}
}

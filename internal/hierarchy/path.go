package hierarchy

import (
	"fmt"
	"strings"
)

// RootSigil prefixes keys that are always roots, such as "$default" or
// "$connect" routes.
const RootSigil = "$"

type pathKey struct {
	verb     string
	path     string
	segments []string
	lead     string
}

func parsePathKey(key string) pathKey {
	key = strings.TrimSpace(key)
	var pk pathKey
	if verb, rest, ok := strings.Cut(key, " "); ok && strings.TrimSpace(rest) != "" {
		pk.verb = verb
		key = strings.TrimSpace(rest)
	}
	pk.path = key
	if strings.HasPrefix(key, RootSigil) {
		return pk
	}
	if strings.HasPrefix(key, "/") {
		pk.lead = "/"
	}
	for _, seg := range strings.Split(key, "/") {
		if seg != "" {
			pk.segments = append(pk.segments, seg)
		}
	}
	pk.path = pk.prefix(len(pk.segments))
	if pk.path == "" {
		pk.path = key
	}
	return pk
}

func (pk pathKey) isSigil() bool {
	return strings.HasPrefix(pk.path, RootSigil)
}

func (pk pathKey) prefix(n int) string {
	return pk.lead + strings.Join(pk.segments[:n], "/")
}

type pathNode struct {
	node   Node
	parent string
	root   bool
}

type pathBuilder struct {
	order  []string
	nodes  map[string]*pathNode
	issues []error
}

func (b *pathBuilder) add(id string, pn *pathNode) {
	b.order = append(b.order, id)
	b.nodes[id] = pn
}

// ensure returns the node for a path, creating a virtual one when absent.
func (b *pathBuilder) ensure(id, label, parent string, root bool) *pathNode {
	if pn, ok := b.nodes[id]; ok {
		return pn
	}
	pn := &pathNode{
		node:   Node{ID: id, Label: label, Virtual: true},
		parent: parent,
		root:   root,
	}
	b.add(id, pn)
	return pn
}

// BuildPaths builds a tree from slash-delimited keys such as "/a/b" or
// verb-prefixed keys such as "GET /a/b". Missing path prefixes become
// virtual nodes labelled with their last segment. A verb key adds a leaf
// labelled with the verb under its path node. Keys starting with RootSigil
// and keys with a single segment are roots. Each entry is stored as the
// Metadata of the node it creates.
func BuildPaths[T any](entries []T, key func(T) string) Result {
	b := &pathBuilder{nodes: make(map[string]*pathNode)}

	for _, entry := range entries {
		raw := key(entry)
		if strings.TrimSpace(raw) == "" {
			b.issues = append(b.issues, fmt.Errorf("%w: %q", ErrEmptyKey, raw))
			continue
		}
		pk := parsePathKey(raw)

		var pathNodeRef *pathNode
		if pk.isSigil() || len(pk.segments) <= 1 {
			label := pk.path
			if len(pk.segments) == 1 {
				label = pk.segments[0]
			}
			pathNodeRef = b.ensure(pk.path, label, "", true)
		} else {
			for i := 1; i < len(pk.segments); i++ {
				parent := ""
				if i > 1 {
					parent = pk.prefix(i - 1)
				}
				b.ensure(pk.prefix(i), pk.segments[i-1], parent, i == 1)
			}
			n := len(pk.segments)
			pathNodeRef = b.ensure(pk.path, pk.segments[n-1], pk.prefix(n-1), false)
		}

		if pk.verb == "" {
			if !pathNodeRef.node.Virtual {
				b.issues = append(b.issues, fmt.Errorf("%w: %s", ErrDuplicateID, pk.path))
				continue
			}
			pathNodeRef.node.Virtual = false
			pathNodeRef.node.Metadata = entry
			continue
		}

		leafID := pk.verb + " " + pk.path
		if _, exists := b.nodes[leafID]; exists {
			b.issues = append(b.issues, fmt.Errorf("%w: %s", ErrDuplicateID, leafID))
			continue
		}
		b.add(leafID, &pathNode{
			node:   Node{ID: leafID, Label: pk.verb, Metadata: entry},
			parent: pk.path,
		})
	}

	return b.result()
}

func (b *pathBuilder) result() Result {
	for _, id := range b.order {
		pn := b.nodes[id]
		if pn.parent != "" {
			b.nodes[pn.parent].node.Expandable = true
		}
	}

	res := Result{Children: make(map[string][]Node), Issues: b.issues}
	for _, id := range b.order {
		pn := b.nodes[id]
		if pn.root || pn.parent == "" {
			res.Roots = append(res.Roots, pn.node)
			continue
		}
		res.Children[pn.parent] = append(res.Children[pn.parent], pn.node)
	}
	return res
}

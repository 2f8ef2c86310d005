package formatter

import (
	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/cloudx/internal/hierarchy"
)

// TreeOptions controls hierarchy output.
type TreeOptions struct {
	// MaxDepth limits tree depth (0 = unlimited).
	MaxDepth int
	// ShowIDs appends the node id when it differs from the label.
	ShowIDs bool
	// MarkVirtual suffixes synthesized nodes with "(virtual)".
	MarkVirtual bool
	// Root labels the tree's root line; empty renders a bare ".".
	Root string
}

// FormatHierarchy renders a hierarchy as an ASCII tree.
func FormatHierarchy(r hierarchy.Result, opts TreeOptions) string {
	var tree treeprint.Tree
	if opts.Root != "" {
		tree = treeprint.NewWithRoot(opts.Root)
	} else {
		tree = treeprint.New()
	}
	addNodes(tree, r, r.Roots, opts, 0)
	return tree.String()
}

func addNodes(branch treeprint.Tree, r hierarchy.Result, nodes []hierarchy.Node, opts TreeOptions, depth int) {
	for _, n := range nodes {
		label := nodeLabel(n, opts)
		children := r.Children[n.ID]
		switch {
		case len(children) == 0:
			branch.AddNode(label)
		case opts.MaxDepth > 0 && depth+1 >= opts.MaxDepth:
			branch.AddBranch(label).AddNode("...")
		default:
			addNodes(branch.AddBranch(label), r, children, opts, depth+1)
		}
	}
}

func nodeLabel(n hierarchy.Node, opts TreeOptions) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if opts.ShowIDs && n.ID != label {
		label += " [" + n.ID + "]"
	}
	if opts.MarkVirtual && n.Virtual {
		label += " (virtual)"
	}
	return label
}

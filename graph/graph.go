// Package graph defines the output of the collection engine: a tree of
// Nodes rooted at an (possibly artificial) root, plus the PathKey-based
// bookkeeping used to detect cycles along a single traversal path.
//
// Grounded on the teacher's core/resolver/graph.go GraphNode/GraphEdge/
// Disposition shapes, generalized from a single-parent NuGet restore tree to
// spec.md's explicit multi-root cross-link semantics (a Graph may have a
// null-dependency root whose children are the roots of a co-required set).
package graph

import (
	"strings"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/artifactgraph/depcollect/manage"
	"github.com/artifactgraph/depcollect/repository"
)

// Node is one vertex of the dependency graph. Dependency is nil only for an
// artificial multi-root root. Children order is visitation order — the
// order children were appended during collection, not a sorted order.
type Node struct {
	Dependency *coordinate.Dependency
	Children   []*Node

	// ResolvedVersions is the ordered (ascending) list the VersionRangeResolver
	// returned; the selected version is always the last entry and, unless the
	// descriptor relocated the artifact, equals Dependency.Coordinate.Version.
	ResolvedVersions []string

	// Repositories is the repository list in effect when this node's
	// descriptor was read (accumulated, union order).
	Repositories []repository.Repository

	ManagedBits manage.ManagedBits
	Premanaged  *manage.Premanaged

	// Cycle marks a leaf node created because its versionless coordinate was
	// already present on the current path (spec.md §4.1 step 2). Cycle nodes
	// never have children and never had their descriptor read.
	Cycle bool
}

// IsRoot reports whether n has no Dependency (the artificial multi-root root).
func (n *Node) IsRoot() bool { return n.Dependency == nil }

// Graph is the traversal result: a single root Node, possibly artificial.
type Graph struct {
	Root *Node
}

// Leaves returns every Node with no children, in a pre-order walk.
func (g *Graph) Leaves() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if len(n.Children) == 0 {
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if g.Root != nil {
		walk(g.Root)
	}
	return out
}

// Walk visits every node in pre-order (root first, then children in
// visitation order), calling fn for each. Walk does not visit the artificial
// multi-root root's nil Dependency node specially — fn is called for it too,
// so callers should check n.IsRoot().
func (g *Graph) Walk(fn func(n *Node, depth int)) {
	var walk func(*Node, int)
	walk = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	if g.Root != nil {
		walk(g.Root, 0)
	}
}

// Render serializes the graph to the textual form used by the engine's
// round-trip test: one line per node, "coord:scope", children indented two
// spaces per depth. The artificial multi-root root renders as "(root)".
func (g *Graph) Render() string {
	var b strings.Builder
	g.Walk(func(n *Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		if n.IsRoot() {
			b.WriteString("(root)\n")
			return
		}
		b.WriteString(n.Dependency.Coordinate.String())
		if n.Dependency.Scope != "" {
			b.WriteString(":")
			b.WriteString(n.Dependency.Scope)
		}
		b.WriteString("\n")
	})
	return b.String()
}

// PathSet tracks the versionless coordinates (PathKeys) visited on the
// current traversal path, per spec.md §9: "Implement with an explicit path
// set passed down the stack; do not rely on shared mutable parent pointers."
// PathSet is immutable — Add returns a new PathSet holding its own copy of
// the keys, safe to fan out across sibling frames on the work stack.
type PathSet struct {
	keys map[coordinate.PathKey]struct{}
}

// NewPathSet returns an empty PathSet.
func NewPathSet() PathSet {
	return PathSet{}
}

// Contains reports whether key is already on the path.
func (p PathSet) Contains(key coordinate.PathKey) bool {
	if p.keys == nil {
		return false
	}
	_, ok := p.keys[key]
	return ok
}

// Add returns a new PathSet containing key in addition to everything in p.
// p itself is not modified, so multiple children of the same frame can each
// call Add independently without observing each other's key.
func (p PathSet) Add(key coordinate.PathKey) PathSet {
	next := make(map[coordinate.PathKey]struct{}, len(p.keys)+1)
	for k := range p.keys {
		next[k] = struct{}{}
	}
	next[key] = struct{}{}
	return PathSet{keys: next}
}

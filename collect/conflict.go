package collect

import (
	"sort"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/artifactgraph/depcollect/graph"
	"github.com/artifactgraph/depcollect/version"
)

// VersionConflict reports every version of one versionless coordinate found
// on a finished graph. The Collector itself never deduplicates — spec.md §3:
// "Two sibling Nodes with the same Dependency are permitted (the graph is a
// tree, not a DAG) — deduplication is not a core responsibility; it is left
// to a later conflict-resolver pass" — ConflictDetector is that pass
// (SPEC_FULL §12.1).
type VersionConflict struct {
	PackageID coordinate.PathKey
	Versions  []string
	Nodes     []*graph.Node
}

// ConflictDetector walks a finished Graph and groups nodes by their
// versionless coordinate, grounded on core/resolver/conflict_detector.go's
// DetectFromGraph.
type ConflictDetector struct{}

// Detect groups every non-cycle node in g by PathKey and returns one
// VersionConflict per key that has more than one distinct version.
func (ConflictDetector) Detect(g *graph.Graph) []VersionConflict {
	byKey := make(map[coordinate.PathKey][]*graph.Node)
	var order []coordinate.PathKey

	g.Walk(func(n *graph.Node, depth int) {
		if n.IsRoot() || n.Cycle {
			return
		}
		key := n.Dependency.Coordinate.Key()
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], n)
	})

	var conflicts []VersionConflict
	for _, key := range order {
		nodes := byKey[key]
		versions := make(map[string]struct{}, len(nodes))
		for _, n := range nodes {
			versions[n.Dependency.Coordinate.Version] = struct{}{}
		}
		if len(versions) <= 1 {
			continue
		}
		conflict := VersionConflict{PackageID: key, Nodes: nodes}
		for v := range versions {
			conflict.Versions = append(conflict.Versions, v)
		}
		sort.Strings(conflict.Versions)
		conflicts = append(conflicts, conflict)
	}
	return conflicts
}

// ConflictResolver picks a single winning Node per VersionConflict using
// Maven's "nearest definition wins" rule: the node declared at the
// shallowest depth wins; ties are broken by the highest version. Grounded
// on core/resolver/conflict_resolver.go's ResolveConflict.
type ConflictResolver struct{}

// Resolve returns the winning Node for conflict, given each node's depth in
// the graph (callers typically derive depth via Graph.Walk alongside
// Detect, since Node does not carry its own depth).
func (ConflictResolver) Resolve(conflict VersionConflict, depthOf map[*graph.Node]int) *graph.Node {
	nodes := append([]*graph.Node(nil), conflict.Nodes...)
	sort.Slice(nodes, func(i, j int) bool {
		di, dj := depthOf[nodes[i]], depthOf[nodes[j]]
		if di != dj {
			return di < dj
		}
		vi, erri := version.Parse(nodes[i].Dependency.Coordinate.Version)
		vj, errj := version.Parse(nodes[j].Dependency.Coordinate.Version)
		if erri != nil || errj != nil {
			return nodes[i].Dependency.Coordinate.Version > nodes[j].Dependency.Coordinate.Version
		}
		return vi.Compare(vj) > 0
	})
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// NodeDepths computes the depth of every node in g, for use with
// ConflictResolver.Resolve.
func NodeDepths(g *graph.Graph) map[*graph.Node]int {
	depths := make(map[*graph.Node]int)
	g.Walk(func(n *graph.Node, depth int) {
		depths[n] = depth
	})
	return depths
}

package collect

import (
	"fmt"
	"strings"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/artifactgraph/depcollect/graph"
)

// CycleAnalyzer walks a finished graph and reports every cycle leaf node
// created by the Collector's step-2 cycle check, with the path that led to
// it. Grounded on core/resolver/cycle_analyzer.go's AnalyzeCycles.
type CycleAnalyzer struct{}

// Analyze returns one CycleReport per Node marked Cycle in g.
func (CycleAnalyzer) Analyze(g *graph.Graph) []CycleReport {
	var reports []CycleReport
	var path []coordinate.PathKey

	var walk func(n *graph.Node, depth int)
	walk = func(n *graph.Node, depth int) {
		if n.Cycle {
			key := n.Dependency.Coordinate.Key()
			reports = append(reports, CycleReport{
				PackageID:   key,
				PathToSelf:  append([]coordinate.PathKey(nil), path...),
				Depth:       depth,
				Description: formatCycleDescription(key, path),
			})
			return
		}
		if !n.IsRoot() {
			path = append(path, n.Dependency.Coordinate.Key())
			defer func() { path = path[:len(path)-1] }()
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	if g.Root != nil {
		walk(g.Root, 0)
	}
	return reports
}

func formatCycleDescription(key coordinate.PathKey, path []coordinate.PathKey) string {
	var b strings.Builder
	for _, k := range path {
		fmt.Fprintf(&b, "%s -> ", k.String())
	}
	b.WriteString(key.String())
	b.WriteString(" (already on path)")
	return b.String()
}

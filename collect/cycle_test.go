package collect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artifactgraph/depcollect/graph"
)

func TestCycleAnalyzer_ReportsCycleWithPath(t *testing.T) {
	b1 := dependencyNode("test", "b", "1")
	a2 := dependencyNode("test", "a", "2")
	cycleLeaf := dependencyNode("test", "a", "2")
	cycleLeaf.Cycle = true

	root := &graph.Node{Children: []*graph.Node{a2}}
	a2.Children = []*graph.Node{b1}
	b1.Children = []*graph.Node{cycleLeaf}
	g := &graph.Graph{Root: root}

	reports := CycleAnalyzer{}.Analyze(g)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, "test", r.PackageID.GroupID)
	assert.Equal(t, "a", r.PackageID.ArtifactID)
	assert.Equal(t, 3, r.Depth)
	require.Len(t, r.PathToSelf, 2)
	assert.Equal(t, "a", r.PathToSelf[0].ArtifactID)
	assert.Equal(t, "b", r.PathToSelf[1].ArtifactID)
	assert.Contains(t, r.Description, "already on path")
}

func TestCycleAnalyzer_NoCyclesInAcyclicGraph(t *testing.T) {
	a := dependencyNode("test", "a", "1")
	b := dependencyNode("test", "b", "1")
	root := &graph.Node{Children: []*graph.Node{a}}
	a.Children = []*graph.Node{b}
	g := &graph.Graph{Root: root}

	assert.Empty(t, CycleAnalyzer{}.Analyze(g))
}

func TestCycleAnalyzer_MultipleCyclesAllReported(t *testing.T) {
	cycleA := dependencyNode("test", "a", "1")
	cycleA.Cycle = true
	cycleB := dependencyNode("test", "b", "1")
	cycleB.Cycle = true

	nodeA := dependencyNode("test", "a", "1")
	nodeA.Children = []*graph.Node{cycleA}
	nodeB := dependencyNode("test", "b", "1")
	nodeB.Children = []*graph.Node{cycleB}

	root := &graph.Node{Children: []*graph.Node{nodeA, nodeB}}
	g := &graph.Graph{Root: root}

	reports := CycleAnalyzer{}.Analyze(g)
	require.Len(t, reports, 2)
}

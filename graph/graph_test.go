package graph

import (
	"testing"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/stretchr/testify/assert"
)

func leafDep(gid, aid, version, scope string) *coordinate.Dependency {
	d := coordinate.Dependency{Coordinate: coordinate.New(gid, aid, version), Scope: scope}
	return &d
}

func TestGraph_Render_SimpleTree(t *testing.T) {
	root := &Node{Dependency: leafDep("gid", "aid", "1", "")}
	child := &Node{Dependency: leafDep("gid", "aid2", "1", "compile")}
	root.Children = append(root.Children, child)

	g := &Graph{Root: root}
	rendered := g.Render()
	assert.Equal(t, "gid:aid:jar:1\n  gid:aid2:jar:1:compile\n", rendered)
}

func TestGraph_Render_ArtificialRoot(t *testing.T) {
	root := &Node{}
	root.Children = append(root.Children, &Node{Dependency: leafDep("gid", "a", "1", "")})

	g := &Graph{Root: root}
	assert.Equal(t, "(root)\n  gid:a:jar:1\n", g.Render())
}

func TestGraph_Leaves(t *testing.T) {
	root := &Node{Dependency: leafDep("gid", "aid", "1", "")}
	mid := &Node{Dependency: leafDep("gid", "mid", "1", "")}
	leaf := &Node{Dependency: leafDep("gid", "leaf", "1", "")}
	mid.Children = append(mid.Children, leaf)
	root.Children = append(root.Children, mid)

	g := &Graph{Root: root}
	leaves := g.Leaves()
	assert.Len(t, leaves, 1)
	assert.Equal(t, "leaf", leaves[0].Dependency.Coordinate.ArtifactID)
}

func TestPathSet_AddIsImmutable(t *testing.T) {
	empty := NewPathSet()
	key := coordinate.New("gid", "aid", "1").Key()

	withKey := empty.Add(key)

	assert.False(t, empty.Contains(key))
	assert.True(t, withKey.Contains(key))
}

func TestPathSet_SiblingsDoNotLeak(t *testing.T) {
	base := NewPathSet().Add(coordinate.New("gid", "root", "1").Key())

	siblingA := base.Add(coordinate.New("gid", "a", "1").Key())
	siblingB := base.Add(coordinate.New("gid", "b", "1").Key())

	assert.True(t, siblingA.Contains(coordinate.New("gid", "a", "1").Key()))
	assert.False(t, siblingA.Contains(coordinate.New("gid", "b", "1").Key()))
	assert.True(t, siblingB.Contains(coordinate.New("gid", "b", "1").Key()))
	assert.False(t, siblingB.Contains(coordinate.New("gid", "a", "1").Key()))
}

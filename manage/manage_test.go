package manage

import (
	"testing"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dep(gid, aid, version, scope string) coordinate.Dependency {
	return coordinate.Dependency{Coordinate: coordinate.New(gid, aid, version), Scope: scope}
}

func TestClassicManager_NoSeed_NoOverride(t *testing.T) {
	m := NewClassicManager(nil)
	mgmt := m.Manage(dep("gid", "aid2", "1", "compile"))
	assert.Equal(t, ManagedBits(0), mgmt.Bits)
}

func TestClassicManager_SeedOverridesVersionAndScope(t *testing.T) {
	managed := dep("gid", "aid2", "managedVersion", "managedScope")
	m := NewClassicManager([]coordinate.Dependency{managed})

	mgmt := m.Manage(dep("gid", "aid2", "1", "compile"))
	require.True(t, mgmt.Bits.Has(BitVersion))
	require.True(t, mgmt.Bits.Has(BitScope))
	assert.Equal(t, "managedVersion", mgmt.Version)
	assert.Equal(t, "managedScope", mgmt.Scope)
}

func TestApply_RecordsPremanagedInVerboseMode(t *testing.T) {
	managed := dep("gid", "aid2", "managedVersion", "managedScope")
	m := NewClassicManager([]coordinate.Dependency{managed})

	d := dep("gid", "aid2", "1", "compile")
	mgmt := m.Manage(d)
	out, pre := Apply(d, mgmt, true)

	assert.Equal(t, "managedVersion", out.Coordinate.Version)
	assert.Equal(t, "managedScope", out.Scope)
	require.NotNil(t, pre)
	assert.Equal(t, "1", pre.Version)
	assert.Equal(t, "compile", pre.Scope)
}

func TestApply_NoPremanagedWhenNotVerbose(t *testing.T) {
	managed := dep("gid", "aid2", "managedVersion", "")
	m := NewClassicManager([]coordinate.Dependency{managed})

	d := dep("gid", "aid2", "1", "compile")
	mgmt := m.Manage(d)
	_, pre := Apply(d, mgmt, false)
	assert.Nil(t, pre)
}

func TestClassicManager_DepthZeroAndOneAreGlobal(t *testing.T) {
	m := NewClassicManager(nil)

	// A managed list declared by the root's own descriptor (depth 0).
	depth0 := m.DeriveFor(DeriveContext{
		ManagedDependencies: []coordinate.Dependency{dep("gid", "deep", "managed-v", "")},
		Depth:               0,
	})
	// Descend further without redeclaring; the depth-0 layer must still apply.
	depth1 := depth0.DeriveFor(DeriveContext{Depth: 1})
	depth2 := depth1.DeriveFor(DeriveContext{Depth: 2})

	mgmt := depth2.Manage(dep("gid", "deep", "1", ""))
	assert.True(t, mgmt.Bits.Has(BitVersion))
	assert.Equal(t, "managed-v", mgmt.Version)
}

func TestClassicManager_DepthTwoAppliesOnlyToDirectChildren(t *testing.T) {
	m := NewClassicManager(nil)
	// Declared at depth 2: should manage depth-2's own children (depth 3 node)
	// but not propagate further (depth 4 node should be unaffected).
	at2 := m.DeriveFor(DeriveContext{Depth: 2})
	at2 = at2.DeriveFor(DeriveContext{
		ManagedDependencies: []coordinate.Dependency{dep("gid", "limited", "managed-v", "")},
		Depth:               2,
	})

	mgmt := at2.Manage(dep("gid", "limited", "1", ""))
	assert.True(t, mgmt.Bits.Has(BitVersion), "direct children of the depth-2 declarer are managed")

	at3 := at2.DeriveFor(DeriveContext{Depth: 3})
	mgmt2 := at3.Manage(dep("gid", "limited", "1", ""))
	assert.False(t, mgmt2.Bits.Has(BitVersion), "grandchildren are not managed by a depth-2 declaration")
}

func TestClassicManager_ShallowerWins(t *testing.T) {
	m := NewClassicManager([]coordinate.Dependency{dep("gid", "aid", "shallow-v", "")})
	deeper := m.DeriveFor(DeriveContext{
		ManagedDependencies: []coordinate.Dependency{dep("gid", "aid", "deep-v", "")},
		Depth:               0,
	})

	mgmt := deeper.Manage(dep("gid", "aid", "1", ""))
	assert.Equal(t, "shallow-v", mgmt.Version)
}

func TestTransitiveManager_AppliesRegardlessOfDepth(t *testing.T) {
	m := NewTransitiveManager(nil)
	deep := m.DeriveFor(DeriveContext{
		ManagedDependencies: []coordinate.Dependency{dep("gid", "aid", "managed-v", "")},
		Depth:               5,
	})
	deeper := deep.DeriveFor(DeriveContext{Depth: 6})

	mgmt := deeper.Manage(dep("gid", "aid", "1", ""))
	assert.True(t, mgmt.Bits.Has(BitVersion))
}

func TestNullManager_NeverManages(t *testing.T) {
	m := NewNullManager()
	derived := m.DeriveFor(DeriveContext{
		ManagedDependencies: []coordinate.Dependency{dep("gid", "aid", "managed-v", "")},
		Depth:               0,
	})
	mgmt := derived.Manage(dep("gid", "aid", "1", ""))
	assert.Equal(t, ManagedBits(0), mgmt.Bits)
}

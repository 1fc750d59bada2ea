// Package manage implements the dependency-management capability: given a
// Dependency in its current path context, decide which of its
// version/scope/optional/properties/exclusions to override, and derive the
// manager that applies to that dependency's own descendants.
//
// The source this is grounded on exposes DependencyManager as an abstract
// class with classic/transitive/null subclasses. Here it is one capability
// (Manager) with constructors per variant rather than a type hierarchy.
package manage

import "github.com/artifactgraph/depcollect/coordinate"

// ManagedBits records which aspects of a Dependency were overridden by
// management. Recorded on a Node only in verbose mode.
type ManagedBits uint8

const (
	BitVersion ManagedBits = 1 << iota
	BitScope
	BitOptional
	BitProperties
	BitExclusions
)

// Has reports whether bit is set.
func (b ManagedBits) Has(bit ManagedBits) bool { return b&bit != 0 }

// Management is the result of Manager.Manage: the overrides to apply to one
// Dependency, plus which aspects were actually overridden.
type Management struct {
	Version    string
	Scope      string
	Optional   coordinate.Optional
	Properties map[string]string
	Exclusions []coordinate.Exclusion
	Bits       ManagedBits
}

// Premanaged holds the pre-management value of every overridden aspect,
// recorded on a Node only when verbose mode is active.
type Premanaged struct {
	Version    string
	Scope      string
	Optional   coordinate.Optional
	Properties map[string]string
	Exclusions []coordinate.Exclusion
}

// DeriveContext is the information the Collector supplies when descending
// past a managed node: the (already-managed) dependency itself, the managed
// list declared by its descriptor, and the depth at which that descriptor
// was read.
type DeriveContext struct {
	Current           coordinate.Dependency
	ManagedDependencies []coordinate.Dependency
	Depth             int
}

// Manager is the pure, side-effect-free dependency-management capability.
// Manage decides overrides for one dependency; DeriveFor returns the
// manager that applies to that dependency's children.
type Manager interface {
	Manage(d coordinate.Dependency) Management
	DeriveFor(ctx DeriveContext) Manager
}

// layer is one management declaration: a set of managed dependencies keyed
// by their versionless coordinate (PathKey).
type layer struct {
	entries map[coordinate.PathKey]coordinate.Dependency
}

func buildLayer(managed []coordinate.Dependency) layer {
	entries := make(map[coordinate.PathKey]coordinate.Dependency, len(managed))
	for _, m := range managed {
		entries[m.Coordinate.Key()] = m
	}
	return layer{entries: entries}
}

func (l layer) manage(d coordinate.Dependency) (Management, bool) {
	entry, ok := l.entries[d.Coordinate.Key()]
	if !ok {
		return Management{}, false
	}

	var mgmt Management
	if entry.Coordinate.Version != "" && entry.Coordinate.Version != d.Coordinate.Version {
		mgmt.Version = entry.Coordinate.Version
		mgmt.Bits |= BitVersion
	}
	if entry.Scope != "" && entry.Scope != d.Scope {
		mgmt.Scope = entry.Scope
		mgmt.Bits |= BitScope
	}
	if entry.Optional != nil && (d.Optional == nil || *entry.Optional != *d.Optional) {
		mgmt.Optional = entry.Optional
		mgmt.Bits |= BitOptional
	}
	if len(entry.Coordinate.Properties) > 0 {
		mgmt.Properties = entry.Coordinate.Properties
		mgmt.Bits |= BitProperties
	}
	if len(entry.Exclusions) > 0 {
		mgmt.Exclusions = entry.Exclusions
		mgmt.Bits |= BitExclusions
	}
	return mgmt, mgmt.Bits != 0
}

// mode selects the depth-gating rule a layeredManager applies when a new
// layer is derived.
type mode int

const (
	modeClassic mode = iota
	modeTransitive
	modeNone
)

// layeredManager is the single Manager implementation backing all three
// variants. The classic variant gates a newly-derived layer's visibility by
// the depth at which it was declared (spec: depth 0/1 applies to every
// descendant, depth >= 2 applies only to the declaring node's direct
// children); the transitive variant treats every declaration as global; the
// null variant never manages anything.
type layeredManager struct {
	mode         mode
	globalLayers []layer // ordered shallowest (lowest declaring depth) first
	directLayer  *layer  // classic-only: applies to this derivation's immediate children only
}

// NewClassicManager returns the classic per-depth DependencyManager, seeded
// with an externally-supplied managed-dependency list (e.g. from
// CollectRequest.ManagedDependencies) treated as a depth-0 declaration.
func NewClassicManager(seed []coordinate.Dependency) Manager {
	m := layeredManager{mode: modeClassic}
	if len(seed) > 0 {
		m.globalLayers = []layer{buildLayer(seed)}
	}
	return m
}

// NewTransitiveManager returns a manager where every descriptor's managed
// list applies to every descendant regardless of the depth it was declared
// at — no depth-2 cutoff.
func NewTransitiveManager(seed []coordinate.Dependency) Manager {
	m := layeredManager{mode: modeTransitive}
	if len(seed) > 0 {
		m.globalLayers = []layer{buildLayer(seed)}
	}
	return m
}

// NewNullManager returns a Manager that never overrides anything — useful
// when a session disables dependency management entirely.
func NewNullManager() Manager {
	return layeredManager{mode: modeNone}
}

func (m layeredManager) Manage(d coordinate.Dependency) Management {
	if m.mode == modeNone {
		return Management{}
	}
	// Shallower wins: scan global layers outermost (shallowest) first.
	for _, l := range m.globalLayers {
		if mgmt, ok := l.manage(d); ok {
			return mgmt
		}
	}
	if m.directLayer != nil {
		if mgmt, ok := m.directLayer.manage(d); ok {
			return mgmt
		}
	}
	return Management{}
}

func (m layeredManager) DeriveFor(ctx DeriveContext) Manager {
	if m.mode == modeNone {
		return m
	}
	if len(ctx.ManagedDependencies) == 0 {
		// Nothing new declared; the direct-only layer (if any) does not
		// carry past its one applicable depth.
		return layeredManager{mode: m.mode, globalLayers: m.globalLayers}
	}

	newLayer := buildLayer(ctx.ManagedDependencies)

	if m.mode == modeTransitive || ctx.Depth <= 1 {
		global := make([]layer, len(m.globalLayers), len(m.globalLayers)+1)
		copy(global, m.globalLayers)
		global = append(global, newLayer)
		return layeredManager{mode: m.mode, globalLayers: global}
	}

	// modeClassic, depth >= 2: visible only to this node's direct children.
	return layeredManager{mode: m.mode, globalLayers: m.globalLayers, directLayer: &newLayer}
}

// Apply applies a Management to a Dependency, returning the managed
// dependency and, when verbose is true, the Premanaged sidecar recording
// what each overridden aspect held before management. Apply never mutates
// d; coordinate.Dependency is value-typed.
func Apply(d coordinate.Dependency, mgmt Management, verbose bool) (coordinate.Dependency, *Premanaged) {
	if mgmt.Bits == 0 {
		return d, nil
	}

	var pre *Premanaged
	if verbose {
		pre = &Premanaged{
			Version:    d.Coordinate.Version,
			Scope:      d.Scope,
			Optional:   d.Optional,
			Properties: d.Coordinate.Properties,
			Exclusions: d.Exclusions,
		}
	}

	managed := d
	if mgmt.Bits.Has(BitVersion) {
		managed.Coordinate = managed.Coordinate.WithVersion(mgmt.Version)
	}
	if mgmt.Bits.Has(BitScope) {
		managed.Scope = mgmt.Scope
	}
	if mgmt.Bits.Has(BitOptional) {
		managed.Optional = mgmt.Optional
	}
	if mgmt.Bits.Has(BitProperties) {
		managed.Coordinate.Properties = coordinate.MergeProperties(managed.Coordinate.Properties, mgmt.Properties)
	}
	if mgmt.Bits.Has(BitExclusions) {
		managed.Exclusions = coordinate.MergeExclusions(managed.Exclusions, mgmt.Exclusions)
	}

	return managed, pre
}

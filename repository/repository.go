// Package repository models remote artifact repositories and the
// order-preserving merge used to combine repository lists accumulated along
// a collection path.
package repository

// Repository is a remote (or local) artifact source. ID is the
// deduplication key; URL is where descriptors and artifacts are fetched
// from. Layout distinguishes e.g. "default" (Maven2 layout) from other
// repository layouts a DescriptorReader might support.
type Repository struct {
	ID       string
	URL      string
	Layout   string
	Releases Policy
	Snapshots Policy

	// Proxy and authentication settings are opaque to the collection engine;
	// they are carried through merges and handed to the transport layer.
	ProxyID  string
	AuthID   string
}

// Policy controls whether a repository is consulted for release or
// snapshot versions, matching Maven's per-repository release/snapshot gate.
type Policy struct {
	Enabled bool
}

// Equal reports whether two repositories have the same identity (ID) and
// connection details. Two repositories with the same ID but differing URL
// are still deduplicated by ID per Merge's contract — base wins.
func (r Repository) Equal(other Repository) bool {
	return r.ID == other.ID && r.URL == other.URL
}

// Merger combines repository lists accumulated along a collection path.
// Implementations must be order-preserving and deduplicate by ID.
type Merger interface {
	Merge(base, additions []Repository) []Repository
}

// DefaultMerger is the Merger grounded on spec.md §6's RepositoryMerger
// contract: "order-preserving, deduplicating by repository id;
// authentication/proxy settings from base win on conflict."
type DefaultMerger struct{}

// NewDefaultMerger returns the default order-preserving, base-wins Merger.
func NewDefaultMerger() DefaultMerger { return DefaultMerger{} }

// Merge returns base followed by any entries of additions whose ID is not
// already present in base. When an addition's ID collides with a base
// entry, the base entry's connection settings (proxy, auth, layout, policy)
// are kept — first-seen wins.
func (DefaultMerger) Merge(base, additions []Repository) []Repository {
	merged := make([]Repository, 0, len(base)+len(additions))
	seen := make(map[string]struct{}, len(base)+len(additions))

	for _, r := range base {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range additions {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}
	return merged
}

// URLs extracts the URL of every repository in order, a convenience for
// callers (e.g. version.AvailableVersions implementations) that only need
// the connection string.
func URLs(repos []Repository) []string {
	urls := make([]string, len(repos))
	for i, r := range repos {
		urls[i] = r.URL
	}
	return urls
}

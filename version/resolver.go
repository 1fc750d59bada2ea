package version

import "context"

// AvailableVersions supplies the concrete versions known for a coordinate
// against a set of repository URLs — the data a RangeResolver expands a
// Range against. Implementations typically come from a repository's version
// listing (e.g. Maven's maven-metadata.xml).
type AvailableVersions interface {
	// Versions returns every known version string for groupID:artifactID
	// across the given repositories, in no particular order.
	Versions(ctx context.Context, repositories []string, groupID, artifactID string) ([]string, error)
}

// RangeResolveRequest is the VersionRangeResolver request of spec.md §6.
type RangeResolveRequest struct {
	GroupID      string
	ArtifactID   string
	Constraint   string
	Repositories []string
}

// RangeResolveResult is the VersionRangeResolver result of spec.md §6.
// OrderedVersions is ascending; the engine selects OrderedVersions.Last().
type RangeResolveResult struct {
	OrderedVersions      []*Version
	VersionConstraint    string
	RepositoriesByVersion map[string][]string
}

// RangeResolver expands a version constraint to concrete versions across all
// supplied repositories (spec.md §6: "must expand ranges across all supplied
// repositories, not just one").
type RangeResolver interface {
	Resolve(ctx context.Context, req RangeResolveRequest) (*RangeResolveResult, error)
}

// DefaultRangeResolver is a RangeResolver grounded on Range.FindBestMatch,
// backed by an AvailableVersions source. It queries every repository and
// merges the results before selecting matches, satisfying the "not just one"
// requirement.
type DefaultRangeResolver struct {
	Source AvailableVersions
}

// NewDefaultRangeResolver creates a RangeResolver backed by source.
func NewDefaultRangeResolver(source AvailableVersions) *DefaultRangeResolver {
	return &DefaultRangeResolver{Source: source}
}

func (r *DefaultRangeResolver) Resolve(ctx context.Context, req RangeResolveRequest) (*RangeResolveResult, error) {
	rng, err := ParseVersionRange(req.Constraint)
	if err != nil {
		return nil, err
	}

	repoByVersion := make(map[string][]string)
	seen := make(map[string]*Version)

	for _, repo := range req.Repositories {
		versionStrings, err := r.Source.Versions(ctx, []string{repo}, req.GroupID, req.ArtifactID)
		if err != nil {
			continue
		}
		for _, vs := range versionStrings {
			v, err := Parse(vs)
			if err != nil {
				continue
			}
			if !rng.Satisfies(v) {
				continue
			}
			key := v.String()
			if _, ok := seen[key]; !ok {
				seen[key] = v
			}
			repoByVersion[key] = append(repoByVersion[key], repo)
		}
	}

	ordered := make([]*Version, 0, len(seen))
	for _, v := range seen {
		ordered = append(ordered, v)
	}
	sortVersionsAscending(ordered)

	return &RangeResolveResult{
		OrderedVersions:       ordered,
		VersionConstraint:     req.Constraint,
		RepositoriesByVersion: repoByVersion,
	}, nil
}

func sortVersionsAscending(vs []*Version) {
	// Simple insertion sort: ranges are small, and it keeps the comparator
	// (Version.Compare) as the single source of ordering truth.
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && vs[j-1].Compare(vs[j]) > 0; j-- {
			vs[j-1], vs[j] = vs[j], vs[j-1]
		}
	}
}

// Last returns the highest version in an ascending-ordered list, or nil if empty.
func (r *RangeResolveResult) Last() *Version {
	if len(r.OrderedVersions) == 0 {
		return nil
	}
	return r.OrderedVersions[len(r.OrderedVersions)-1]
}

package collect

import (
	"context"
	"fmt"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/artifactgraph/depcollect/repository"
	"github.com/artifactgraph/depcollect/version"
)

// diagnoseUnresolved enriches a failed version-range resolution by querying
// every repository for any version of the coordinate, ignoring the failed
// constraint, and classifying the result as "no such artifact anywhere" vs.
// "artifact exists, no version matches". In the second case the message
// carries the first version listed by the first repository that lists any;
// no closeness to the failed constraint is computed. Grounded on
// core/resolver/resolver.go's diagnoseUnresolvedPackage (SPEC_FULL §12.3).
//
// source may be nil (no AvailableVersions collaborator configured for
// diagnostics); in that case diagnoseUnresolved returns a plain message.
func diagnoseUnresolved(ctx context.Context, source version.AvailableVersions, c coordinate.Coordinate, repos []repository.Repository) string {
	if source == nil {
		return fmt.Sprintf("version range %q for %s resolved to no candidates", c.Version, c.Key().String())
	}

	var any bool
	var nearest string
	for _, repo := range repos {
		versions, err := source.Versions(ctx, []string{repo.URL}, c.GroupID, c.ArtifactID)
		if err != nil || len(versions) == 0 {
			continue
		}
		any = true
		if nearest == "" {
			nearest = versions[0]
		}
	}

	if !any {
		return fmt.Sprintf("no such artifact %s in any configured repository", c.Key().String())
	}
	return fmt.Sprintf("artifact %s exists but no version satisfies constraint %q; first listed available version is %s",
		c.Key().String(), c.Version, nearest)
}

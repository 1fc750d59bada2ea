package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge_PreservesOrder(t *testing.T) {
	base := []Repository{{ID: "central", URL: "https://repo.maven.apache.org"}}
	additions := []Repository{{ID: "jboss", URL: "https://repository.jboss.org"}}

	merged := NewDefaultMerger().Merge(base, additions)
	assert.Equal(t, []string{"central", "jboss"}, idsOf(merged))
}

func TestMerge_DeduplicatesByID_BaseWins(t *testing.T) {
	base := []Repository{{ID: "central", URL: "https://internal-mirror/central", AuthID: "corp"}}
	additions := []Repository{{ID: "central", URL: "https://repo.maven.apache.org", AuthID: "none"}}

	merged := NewDefaultMerger().Merge(base, additions)
	assert.Len(t, merged, 1)
	assert.Equal(t, "https://internal-mirror/central", merged[0].URL)
	assert.Equal(t, "corp", merged[0].AuthID)
}

func TestMerge_EmptyAdditions(t *testing.T) {
	base := []Repository{{ID: "central", URL: "https://repo.maven.apache.org"}}
	merged := NewDefaultMerger().Merge(base, nil)
	assert.Equal(t, base, merged)
}

func TestURLs(t *testing.T) {
	repos := []Repository{{ID: "a", URL: "u1"}, {ID: "b", URL: "u2"}}
	assert.Equal(t, []string{"u1", "u2"}, URLs(repos))
}

func idsOf(repos []Repository) []string {
	ids := make([]string, len(repos))
	for i, r := range repos {
		ids[i] = r.ID
	}
	return ids
}

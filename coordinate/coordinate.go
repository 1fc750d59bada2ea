// Package coordinate defines the identity types of the collection engine:
// Coordinate, Dependency, and Exclusion.
package coordinate

import "fmt"

// DefaultExtension is used when a Coordinate does not specify one.
const DefaultExtension = "jar"

// Coordinate is the immutable identity of an artifact: groupId, artifactId,
// extension, classifier and version, plus a property map that does not
// participate in identity.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Extension  string
	Classifier string
	Version    string

	// Properties carries out-of-band data (e.g. localPath) that travels with
	// a Coordinate but never affects equality or hashing.
	Properties map[string]string
}

// New builds a Coordinate, defaulting Extension to "jar" when empty.
func New(groupID, artifactID, version string) Coordinate {
	return Coordinate{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Extension:  DefaultExtension,
		Version:    version,
	}
}

// WithExtension returns a copy of c with Extension set.
func (c Coordinate) WithExtension(ext string) Coordinate {
	c.Extension = ext
	return c
}

// WithClassifier returns a copy of c with Classifier set.
func (c Coordinate) WithClassifier(classifier string) Coordinate {
	c.Classifier = classifier
	return c
}

// WithVersion returns a copy of c with Version replaced.
func (c Coordinate) WithVersion(version string) Coordinate {
	c.Version = version
	return c
}

func (c Coordinate) extension() string {
	if c.Extension == "" {
		return DefaultExtension
	}
	return c.Extension
}

// Equal reports whether two Coordinates share all five identity fields.
// Properties never participate.
func (c Coordinate) Equal(other Coordinate) bool {
	return c.GroupID == other.GroupID &&
		c.ArtifactID == other.ArtifactID &&
		c.extension() == other.extension() &&
		c.Classifier == other.Classifier &&
		c.Version == other.Version
}

// String renders the full identity as "groupId:artifactId:extension:classifier:version",
// omitting classifier when empty (matching Maven's conventional coordinate notation).
func (c Coordinate) String() string {
	ext := c.extension()
	if c.Classifier == "" {
		return fmt.Sprintf("%s:%s:%s:%s", c.GroupID, c.ArtifactID, ext, c.Version)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s", c.GroupID, c.ArtifactID, ext, c.Classifier, c.Version)
}

// PathKey is the versionless identity used for cycle detection and
// dependency-management matching: (groupId, artifactId, extension, classifier).
type PathKey struct {
	GroupID    string
	ArtifactID string
	Extension  string
	Classifier string
}

// Key returns the PathKey (versionless Coordinate) for c.
func (c Coordinate) Key() PathKey {
	return PathKey{
		GroupID:    c.GroupID,
		ArtifactID: c.ArtifactID,
		Extension:  c.extension(),
		Classifier: c.Classifier,
	}
}

// String renders the PathKey as "groupId:artifactId:extension:classifier".
func (k PathKey) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", k.GroupID, k.ArtifactID, k.Extension, k.Classifier)
}

// Property merging helpers used by dependency management (shallowest value per key wins;
// callers apply that rule, Merge here is a simple key-wise union favoring `override`).

// MergeProperties returns a new map containing base's entries overridden by override's.
func MergeProperties(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

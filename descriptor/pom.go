package descriptor

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/artifactgraph/depcollect/repository"
)

// pomDocument is the subset of a Maven2 POM this engine needs: coordinates,
// dependency management, direct dependencies, repositories, and relocation
// (a <distributionManagement><relocation> block).
type pomDocument struct {
	XMLName    xml.Name `xml:"project"`
	GroupID    string   `xml:"groupId"`
	ArtifactID string   `xml:"artifactId"`
	Version    string   `xml:"version"`
	Packaging  string   `xml:"packaging"`

	Properties pomProperties `xml:"properties"`

	DependencyManagement struct {
		Dependencies []pomDependency `xml:"dependencies>dependency"`
	} `xml:"dependencyManagement"`

	Dependencies []pomDependency `xml:"dependencies>dependency"`

	Repositories []pomRepository `xml:"repositories>repository"`

	DistributionManagement struct {
		Relocation *pomRelocation `xml:"relocation"`
	} `xml:"distributionManagement"`
}

// pomProperties captures arbitrary <properties> children as a map.
type pomProperties struct {
	Entries []pomProperty `xml:",any"`
}

type pomProperty struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func (p pomProperties) asMap() map[string]string {
	if len(p.Entries) == 0 {
		return nil
	}
	m := make(map[string]string, len(p.Entries))
	for _, e := range p.Entries {
		m[e.XMLName.Local] = e.Value
	}
	return m
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Type       string `xml:"type"`
	Classifier string `xml:"classifier"`
	Scope      string `xml:"scope"`
	Optional   string `xml:"optional"`
	Exclusions []struct {
		GroupID    string `xml:"groupId"`
		ArtifactID string `xml:"artifactId"`
	} `xml:"exclusions>exclusion"`
}

type pomRepository struct {
	ID  string `xml:"id"`
	URL string `xml:"url"`
}

type pomRelocation struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// parsePOM decodes a Maven2 POM document from r into a Descriptor plus the
// declaring Coordinate. groupID/artifactID/version fall back to the request
// coordinate when the POM inherits them from a parent (not modeled here —
// parent POMs are out of scope, same as this engine's property interpolation
// which is limited to literal substitution of <properties> values).
func parsePOM(r io.Reader, fallback coordinate.Coordinate) (Descriptor, coordinate.Coordinate, error) {
	var doc pomDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Descriptor{}, coordinate.Coordinate{}, fmt.Errorf("decode pom: %w", err)
	}

	self := fallback
	if doc.GroupID != "" {
		self.GroupID = doc.GroupID
	}
	if doc.ArtifactID != "" {
		self.ArtifactID = doc.ArtifactID
	}
	if doc.Version != "" {
		self.Version = doc.Version
	}

	props := doc.Properties.asMap()

	desc := Descriptor{
		ManagedDependencies: toDependencies(doc.DependencyManagement.Dependencies, props),
		Dependencies:        toDependencies(doc.Dependencies, props),
		Properties:          props,
	}

	for _, r := range doc.Repositories {
		desc.Repositories = append(desc.Repositories, repository.Repository{
			ID:       r.ID,
			URL:      r.URL,
			Layout:   "default",
			Releases: repository.Policy{Enabled: true},
		})
	}

	if rel := doc.DistributionManagement.Relocation; rel != nil && (rel.GroupID != "" || rel.ArtifactID != "" || rel.Version != "") {
		target := self
		if rel.GroupID != "" {
			target.GroupID = rel.GroupID
		}
		if rel.ArtifactID != "" {
			target.ArtifactID = rel.ArtifactID
		}
		if rel.Version != "" {
			target.Version = rel.Version
		}
		desc.Relocation = &target
	}

	return desc, self, nil
}

func toDependencies(raw []pomDependency, props map[string]string) []coordinate.Dependency {
	deps := make([]coordinate.Dependency, 0, len(raw))
	for _, d := range raw {
		c := coordinate.New(substitute(d.GroupID, props), substitute(d.ArtifactID, props), substitute(d.Version, props))
		if d.Type != "" {
			c = c.WithExtension(substitute(d.Type, props))
		}
		if d.Classifier != "" {
			c = c.WithClassifier(substitute(d.Classifier, props))
		}

		scope := d.Scope
		if scope == "" {
			scope = "compile"
		}

		var optional coordinate.Optional
		switch d.Optional {
		case "true":
			optional = coordinate.OptionalTrue
		case "false":
			optional = coordinate.OptionalFalse
		}

		exclusions := make([]coordinate.Exclusion, 0, len(d.Exclusions))
		for _, ex := range d.Exclusions {
			exclusions = append(exclusions, coordinate.Exclusion{
				GroupID:    ex.GroupID,
				ArtifactID: ex.ArtifactID,
			})
		}

		deps = append(deps, coordinate.Dependency{
			Coordinate: c,
			Scope:      scope,
			Optional:   optional,
			Exclusions: exclusions,
		})
	}
	return deps
}

// substitute resolves a literal "${key}" property reference. Nested or
// multi-token interpolation is not supported; this covers the common case of
// a version pinned entirely by a single property.
func substitute(raw string, props map[string]string) string {
	if len(raw) > 3 && raw[0] == '$' && raw[1] == '{' && raw[len(raw)-1] == '}' {
		if v, ok := props[raw[2:len(raw)-1]]; ok {
			return v
		}
	}
	return raw
}

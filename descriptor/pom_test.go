package descriptor

import (
	"strings"
	"testing"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePOM = `<?xml version="1.0" encoding="UTF-8"?>
<project>
  <groupId>com.example</groupId>
  <artifactId>widget</artifactId>
  <version>1.2.0</version>
  <properties>
    <guava.version>32.1.0-jre</guava.version>
  </properties>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>com.google.guava</groupId>
        <artifactId>guava</artifactId>
        <version>${guava.version}</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
  <dependencies>
    <dependency>
      <groupId>com.example</groupId>
      <artifactId>widget-core</artifactId>
      <version>1.2.0</version>
      <scope>compile</scope>
      <exclusions>
        <exclusion>
          <groupId>org.slf4j</groupId>
          <artifactId>slf4j-api</artifactId>
        </exclusion>
      </exclusions>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13.2</version>
      <scope>test</scope>
      <optional>true</optional>
    </dependency>
  </dependencies>
  <repositories>
    <repository>
      <id>central</id>
      <url>https://repo.maven.apache.org/maven2</url>
    </repository>
  </repositories>
</project>`

const relocatingPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project>
  <groupId>com.example</groupId>
  <artifactId>old-name</artifactId>
  <version>1.0.0</version>
  <distributionManagement>
    <relocation>
      <groupId>com.example</groupId>
      <artifactId>new-name</artifactId>
      <version>2.0.0</version>
    </relocation>
  </distributionManagement>
</project>`

func TestParsePOM_ExtractsDependenciesAndManagement(t *testing.T) {
	fallback := coordinate.New("com.example", "widget", "1.2.0")
	desc, self, err := parsePOM(strings.NewReader(samplePOM), fallback)
	require.NoError(t, err)

	assert.Equal(t, "com.example", self.GroupID)
	assert.Equal(t, "widget", self.ArtifactID)

	require.Len(t, desc.ManagedDependencies, 1)
	assert.Equal(t, "32.1.0-jre", desc.ManagedDependencies[0].Coordinate.Version)

	require.Len(t, desc.Dependencies, 2)
	assert.Equal(t, "widget-core", desc.Dependencies[0].Coordinate.ArtifactID)
	assert.Equal(t, "compile", desc.Dependencies[0].Scope)
	require.Len(t, desc.Dependencies[0].Exclusions, 1)
	assert.Equal(t, "slf4j-api", desc.Dependencies[0].Exclusions[0].ArtifactID)

	assert.Equal(t, "test", desc.Dependencies[1].Scope)
	assert.True(t, coordinate.IsTrue(desc.Dependencies[1].Optional))

	require.Len(t, desc.Repositories, 1)
	assert.Equal(t, "central", desc.Repositories[0].ID)
	assert.Nil(t, desc.Relocation)
}

func TestParsePOM_DetectsRelocation(t *testing.T) {
	fallback := coordinate.New("com.example", "old-name", "1.0.0")
	desc, _, err := parsePOM(strings.NewReader(relocatingPOM), fallback)
	require.NoError(t, err)

	require.NotNil(t, desc.Relocation)
	assert.Equal(t, "new-name", desc.Relocation.ArtifactID)
	assert.Equal(t, "2.0.0", desc.Relocation.Version)
}

func TestParsePOM_InvalidXML(t *testing.T) {
	_, _, err := parsePOM(strings.NewReader("<project><broken>"), coordinate.Coordinate{})
	require.Error(t, err)
}

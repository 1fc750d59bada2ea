package descriptor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalReader reads descriptors from an on-disk Maven2-layout repository
// (a local cache or offline mirror), mirroring the structure of a remote
// repository without any network transport.
type LocalReader struct {
	RootDir string
}

// NewLocalReader builds a LocalReader rooted at dir.
func NewLocalReader(dir string) *LocalReader {
	return &LocalReader{RootDir: dir}
}

// Read implements Reader, returning ErrDescriptorMissing when the pom file
// is absent locally; the collector records that as a DESCRIPTOR_ERROR and
// keeps the node as a leaf.
func (r *LocalReader) Read(ctx context.Context, req ReadRequest) (*ReadResult, error) {
	groupPath := filepath.Join(filepathSegments(req.Coordinate.GroupID)...)
	pomFile := filepath.Join(r.RootDir, groupPath, req.Coordinate.ArtifactID, req.Coordinate.Version,
		fmt.Sprintf("%s-%s.pom", req.Coordinate.ArtifactID, req.Coordinate.Version))

	f, err := os.Open(pomFile)
	if os.IsNotExist(err) {
		return nil, &ReadError{Code: ErrDescriptorMissing, Coordinate: req.Coordinate, Err: err}
	}
	if err != nil {
		return nil, &ReadError{Code: ErrDescriptorIO, Coordinate: req.Coordinate, Err: err}
	}
	defer func() { _ = f.Close() }()

	desc, self, err := parsePOM(f, req.Coordinate)
	if err != nil {
		return nil, &ReadError{Code: ErrDescriptorInvalid, Coordinate: req.Coordinate, Err: err}
	}

	return &ReadResult{Descriptor: desc, FullyExpandedCoordinate: self}, nil
}

func filepathSegments(groupID string) []string {
	segments := []string{""}
	start := 0
	for i, ch := range groupID {
		if ch == '.' {
			segments = append(segments, groupID[start:i])
			start = i + 1
		}
	}
	segments = append(segments, groupID[start:])
	return segments[1:]
}

// LocalAvailableVersions lists versions present in a local repository's
// artifact directory, satisfying version.AvailableVersions without a network
// call.
type LocalAvailableVersions struct {
	RootDir string
}

// NewLocalAvailableVersions builds a version source over a local repository root.
func NewLocalAvailableVersions(dir string) *LocalAvailableVersions {
	return &LocalAvailableVersions{RootDir: dir}
}

func (l *LocalAvailableVersions) Versions(ctx context.Context, repositories []string, groupID, artifactID string) ([]string, error) {
	dir := filepath.Join(append([]string{l.RootDir}, append(filepathSegments(groupID), artifactID)...)...)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	return versions, nil
}

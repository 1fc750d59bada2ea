package descriptor

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"time"

	"github.com/artifactgraph/depcollect/cache"
	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/artifactgraph/depcollect/repository"
	"github.com/artifactgraph/depcollect/telemetry"
	"github.com/artifactgraph/depcollect/transport"
)

// HTTPReader reads POM descriptors from remote, Maven2-layout repositories
// over a Transporter, with an optional two-tier cache in front of the
// network. That cache is shared across calls and is the only descriptor
// cache: neither HTTPReader nor Collector keeps a per-call memo, so without
// a configured cache a coordinate met twice in one call is fetched twice.
type HTTPReader struct {
	transporters map[string]transport.Transporter // keyed by repository.ID
	cache        *cache.MultiTierCache
	logger       telemetry.Logger
}

// NewHTTPReader builds an HTTPReader. transporters maps a repository ID to
// the Transporter that serves it; mtCache may be nil to disable caching.
func NewHTTPReader(transporters map[string]transport.Transporter, mtCache *cache.MultiTierCache, logger telemetry.Logger) *HTTPReader {
	if logger == nil {
		logger = telemetry.NewNullLogger()
	}
	return &HTTPReader{transporters: transporters, cache: mtCache, logger: logger}
}

func pomPath(c coordinate.Coordinate) string {
	groupPath := dotsToSlashes(c.GroupID)
	return fmt.Sprintf("%s/%s/%s/%s-%s.pom", groupPath, c.ArtifactID, c.Version, c.ArtifactID, c.Version)
}

func dotsToSlashes(s string) string {
	b := []byte(s)
	for i, ch := range b {
		if ch == '.' {
			b[i] = '/'
		}
	}
	return string(b)
}

// Read implements Reader. It tries each repository in order, returning the
// first descriptor found; a 404-equivalent (classified NotFound) from one
// repository is not an error, it just moves to the next.
func (r *HTTPReader) Read(ctx context.Context, req ReadRequest) (*ReadResult, error) {
	var lastErr error

	maxAge := 30 * time.Minute
	if cc := cache.FromContext(ctx); cc != nil && cc.MaxAge > 0 {
		maxAge = cc.MaxAge
	}

	for _, repo := range req.Repositories {
		t, ok := r.transporters[repo.ID]
		if !ok {
			continue
		}

		resource := pomPath(req.Coordinate)

		if r.cache != nil {
			cacheKey := fmt.Sprintf("pom:%s", req.Coordinate.String())
			if cached, hit, err := r.cache.Get(ctx, repo.URL, cacheKey, maxAge); err == nil && hit {
				desc, self, perr := parsePOM(bytes.NewReader(cached), req.Coordinate)
				if perr == nil {
					return &ReadResult{Descriptor: desc, FullyExpandedCoordinate: self}, nil
				}
			}
		}

		var buf bytes.Buffer
		err := t.Get(ctx, resource, &buf, 0, nil)
		if err != nil {
			class := t.Classify(err)
			if class == transport.ClassNotFound {
				lastErr = &ReadError{Code: ErrDescriptorMissing, Coordinate: req.Coordinate, Err: err}
				continue
			}
			lastErr = &ReadError{Code: ErrDescriptorIO, Coordinate: req.Coordinate, Err: err}
			r.logger.Warn("descriptor fetch failed for {Coordinate} from {Repository}: {Error}",
				req.Coordinate.String(), repo.ID, err)
			continue
		}

		desc, self, err := parsePOM(bytes.NewReader(buf.Bytes()), req.Coordinate)
		if err != nil {
			return nil, &ReadError{Code: ErrDescriptorInvalid, Coordinate: req.Coordinate, Err: err}
		}

		if r.cache != nil {
			cacheKey := fmt.Sprintf("pom:%s", req.Coordinate.String())
			_ = r.cache.Set(ctx, repo.URL, cacheKey, bytes.NewReader(buf.Bytes()), maxAge, nil)
		}

		return &ReadResult{Descriptor: desc, FullyExpandedCoordinate: self}, nil
	}

	if lastErr == nil {
		lastErr = &ReadError{Code: ErrDescriptorMissing, Coordinate: req.Coordinate, Err: errors.New("no repository in request")}
	}
	return nil, lastErr
}

// HTTPAvailableVersions adapts HTTPReader's repositories/transporters to the
// version package's AvailableVersions interface by reading maven-metadata.xml.
type HTTPAvailableVersions struct {
	transporters map[string]transport.Transporter
	byURL        map[string]repository.Repository
}

// NewAvailableVersions builds a version.AvailableVersions source over repos,
// each served by the matching entry in transporters (keyed by repository ID).
func NewAvailableVersions(repos []repository.Repository, transporters map[string]transport.Transporter) *HTTPAvailableVersions {
	byURL := make(map[string]repository.Repository, len(repos))
	for _, r := range repos {
		byURL[r.URL] = r
	}
	return &HTTPAvailableVersions{transporters: transporters, byURL: byURL}
}

type mavenMetadata struct {
	Versioning struct {
		Versions struct {
			Version []string `xml:"version"`
		} `xml:"versions"`
	} `xml:"versioning"`
}

func (a *HTTPAvailableVersions) Versions(ctx context.Context, repositories []string, groupID, artifactID string) ([]string, error) {
	var all []string
	for _, url := range repositories {
		repo, ok := a.byURL[url]
		if !ok {
			continue
		}
		t, ok := a.transporters[repo.ID]
		if !ok {
			continue
		}

		resource := fmt.Sprintf("%s/%s/maven-metadata.xml", dotsToSlashes(groupID), artifactID)
		var buf bytes.Buffer
		if err := t.Get(ctx, resource, &buf, 0, nil); err != nil {
			continue
		}

		var md mavenMetadata
		if err := xml.Unmarshal(buf.Bytes(), &md); err != nil {
			continue
		}
		all = append(all, md.Versioning.Versions.Version...)
	}
	return all, nil
}

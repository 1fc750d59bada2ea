// Package descriptor resolves a Coordinate to the metadata document that
// drives collection: its managed dependencies, direct dependencies,
// declared repositories, and relocation target (spec.md §3/§6).
package descriptor

import (
	"context"
	"errors"
	"fmt"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/artifactgraph/depcollect/repository"
)

// Descriptor is the metadata document an artifact publishes: its managed
// dependencies, direct dependencies, declared repositories, and an optional
// relocation target (spec.md §3).
type Descriptor struct {
	ManagedDependencies []coordinate.Dependency
	Dependencies        []coordinate.Dependency
	Repositories        []repository.Repository
	Relocation          *coordinate.Coordinate
	Properties          map[string]string
}

// ErrorCode classifies a DescriptorReader failure per spec.md §6.
type ErrorCode int

const (
	// ErrDescriptorIO marks a transient failure (network, transport) — retryable.
	ErrDescriptorIO ErrorCode = iota
	// ErrDescriptorInvalid marks a malformed descriptor — not retryable.
	ErrDescriptorInvalid
	// ErrDescriptorMissing marks an absent descriptor: the collector still
	// builds an empty-descriptor node but records one DESCRIPTOR_ERROR
	// exception for it (spec.md §8 invariant 5).
	ErrDescriptorMissing
)

func (c ErrorCode) String() string {
	switch c {
	case ErrDescriptorIO:
		return "ARTIFACT_DESCRIPTOR_IO"
	case ErrDescriptorInvalid:
		return "ARTIFACT_DESCRIPTOR_INVALID"
	case ErrDescriptorMissing:
		return "ARTIFACT_DESCRIPTOR_MISSING"
	default:
		return "ARTIFACT_DESCRIPTOR_UNKNOWN"
	}
}

// ReadError wraps a descriptor failure with its classification.
type ReadError struct {
	Code       ErrorCode
	Coordinate coordinate.Coordinate
	Err        error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Coordinate.String(), e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// IsMissing reports whether err is a ReadError classified as descriptor-missing.
func IsMissing(err error) bool {
	var re *ReadError
	if errors.As(err, &re) {
		return re.Code == ErrDescriptorMissing
	}
	return false
}

// ReadRequest is the DescriptorReader request of spec.md §6.
type ReadRequest struct {
	Coordinate     coordinate.Coordinate
	Repositories   []repository.Repository
	RequestContext map[string]string
}

// ReadResult is the DescriptorReader result of spec.md §6. FullyExpandedCoordinate
// differs from the request Coordinate only when the descriptor relocates.
type ReadResult struct {
	Descriptor              Descriptor
	FullyExpandedCoordinate coordinate.Coordinate
	AlternateRepositories   []repository.Repository
}

// Reader resolves a Coordinate's descriptor. Implementations must be
// idempotent for equal coordinates within one collection call (spec.md §6).
type Reader interface {
	Read(ctx context.Context, req ReadRequest) (*ReadResult, error)
}

// MaxRelocationDepth bounds relocation-chain following (spec.md §6: max depth 20).
const MaxRelocationDepth = 20

// ErrRelocationLoop is returned when a relocation chain revisits a Coordinate
// (spec.md §7: RELOCATION_LOOP — fatal for the subtree).
var ErrRelocationLoop = errors.New("descriptor: relocation chain revisited a coordinate")

// FollowRelocations reads start's descriptor and follows any relocation chain
// up to MaxRelocationDepth, returning the terminal ReadResult. The requester's
// scope/optional/exclusions are NOT touched here — callers apply those to the
// returned Coordinate themselves (spec.md §6: "the final Coordinate replaces
// d's Coordinate but scope/optional/exclusions of the requester are preserved").
func FollowRelocations(ctx context.Context, reader Reader, req ReadRequest) (*ReadResult, error) {
	visited := map[coordinate.PathKey]struct{}{req.Coordinate.Key(): {}}
	current := req

	for depth := 0; ; depth++ {
		if depth >= MaxRelocationDepth {
			return nil, ErrRelocationLoop
		}
		result, err := reader.Read(ctx, current)
		if err != nil {
			return nil, err
		}
		if result.Descriptor.Relocation == nil {
			return result, nil
		}

		next := *result.Descriptor.Relocation
		key := next.Key()
		if _, seen := visited[key]; seen {
			return nil, ErrRelocationLoop
		}
		visited[key] = struct{}{}

		mergedRepos := repository.NewDefaultMerger().Merge(current.Repositories, result.AlternateRepositories)
		current = ReadRequest{
			Coordinate:     next,
			Repositories:   mergedRepos,
			RequestContext: current.RequestContext,
		}
	}
}

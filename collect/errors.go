package collect

import (
	"fmt"

	"github.com/artifactgraph/depcollect/coordinate"
)

// ErrorCode is the stable error taxonomy of spec.md §7.
type ErrorCode string

const (
	// CodeCancelled — the session's cancellation token fired mid-traversal.
	CodeCancelled ErrorCode = "COLLECTION_CANCELLED"
	// CodeFailed — no root could be processed at all.
	CodeFailed ErrorCode = "COLLECTION_FAILED"
	// CodeDescriptorError — wraps any DescriptorReader failure.
	CodeDescriptorError ErrorCode = "DESCRIPTOR_ERROR"
	// CodeVersionResolutionError — a version range resolved to nothing, or was invalid.
	CodeVersionResolutionError ErrorCode = "VERSION_RESOLUTION_ERROR"
	// CodeRelocationLoop — a relocation chain revisited a Coordinate.
	CodeRelocationLoop ErrorCode = "RELOCATION_LOOP"
)

// CollectionError is the concrete error type carried on CollectResult.Exceptions
// and, when escalated, returned from Collect itself.
type CollectionError struct {
	Code       ErrorCode
	Coordinate coordinate.Coordinate
	Cause      error
}

func (e *CollectionError) Error() string {
	if e.Coordinate.GroupID == "" && e.Coordinate.ArtifactID == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Coordinate.String(), e.Cause)
}

func (e *CollectionError) Unwrap() error { return e.Cause }

func newError(code ErrorCode, c coordinate.Coordinate, cause error) *CollectionError {
	return &CollectionError{Code: code, Coordinate: c, Cause: cause}
}

package collect

import (
	"errors"
	"testing"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/stretchr/testify/assert"
)

func TestCollectionError_ErrorIncludesCoordinate(t *testing.T) {
	c := coordinate.New("com.example", "widget", "1.0.0")
	cause := errors.New("boom")
	err := newError(CodeDescriptorError, c, cause)

	assert.Contains(t, err.Error(), "DESCRIPTOR_ERROR")
	assert.Contains(t, err.Error(), "com.example:widget")
	assert.Contains(t, err.Error(), "boom")
}

func TestCollectionError_ErrorOmitsEmptyCoordinate(t *testing.T) {
	err := newError(CodeFailed, coordinate.Coordinate{}, errors.New("no roots"))
	assert.NotContains(t, err.Error(), "::")
}

func TestCollectionError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := newError(CodeVersionResolutionError, coordinate.Coordinate{}, cause)
	assert.ErrorIs(t, err, cause)
}

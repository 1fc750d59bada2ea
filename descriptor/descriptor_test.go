package descriptor

import (
	"context"
	"testing"

	"github.com/artifactgraph/depcollect/coordinate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	byKey map[coordinate.PathKey]*ReadResult
}

func (f *fakeReader) Read(ctx context.Context, req ReadRequest) (*ReadResult, error) {
	result, ok := f.byKey[req.Coordinate.Key()]
	if !ok {
		return nil, &ReadError{Code: ErrDescriptorMissing, Coordinate: req.Coordinate}
	}
	return result, nil
}

func TestFollowRelocations_NoRelocation(t *testing.T) {
	c := coordinate.New("com.example", "widget", "1.0.0")
	reader := &fakeReader{byKey: map[coordinate.PathKey]*ReadResult{
		c.Key(): {Descriptor: Descriptor{}, FullyExpandedCoordinate: c},
	}}

	result, err := FollowRelocations(context.Background(), reader, ReadRequest{Coordinate: c})
	require.NoError(t, err)
	assert.True(t, result.FullyExpandedCoordinate.Equal(c))
}

func TestFollowRelocations_FollowsChainToTerminal(t *testing.T) {
	oldC := coordinate.New("com.example", "old-name", "1.0.0")
	midC := coordinate.New("com.example", "mid-name", "1.5.0")
	newC := coordinate.New("com.example", "new-name", "2.0.0")

	reader := &fakeReader{byKey: map[coordinate.PathKey]*ReadResult{
		oldC.Key(): {Descriptor: Descriptor{Relocation: &midC}, FullyExpandedCoordinate: oldC},
		midC.Key(): {Descriptor: Descriptor{Relocation: &newC}, FullyExpandedCoordinate: midC},
		newC.Key(): {Descriptor: Descriptor{}, FullyExpandedCoordinate: newC},
	}}

	result, err := FollowRelocations(context.Background(), reader, ReadRequest{Coordinate: oldC})
	require.NoError(t, err)
	assert.True(t, result.FullyExpandedCoordinate.Equal(newC))
}

func TestFollowRelocations_DetectsLoop(t *testing.T) {
	a := coordinate.New("com.example", "a", "1.0.0")
	b := coordinate.New("com.example", "b", "1.0.0")

	reader := &fakeReader{byKey: map[coordinate.PathKey]*ReadResult{
		a.Key(): {Descriptor: Descriptor{Relocation: &b}, FullyExpandedCoordinate: a},
		b.Key(): {Descriptor: Descriptor{Relocation: &a}, FullyExpandedCoordinate: b},
	}}

	_, err := FollowRelocations(context.Background(), reader, ReadRequest{Coordinate: a})
	assert.ErrorIs(t, err, ErrRelocationLoop)
}

func TestIsMissing(t *testing.T) {
	err := &ReadError{Code: ErrDescriptorMissing}
	assert.True(t, IsMissing(err))

	other := &ReadError{Code: ErrDescriptorIO}
	assert.False(t, IsMissing(other))
}

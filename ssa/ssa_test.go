package ssa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSamplesEveryStride(t *testing.T) {
	sa := []uint32{5, 3, 1, 4, 0, 2, 6, 7}
	s, err := Build(sa, 3)
	require.NoError(t, err)
	require.Equal(t, uint32(3), s.Stride)
	require.Equal(t, []uint32{5, 4, 6}, s.Samples)
}

func TestBuildStrideOne(t *testing.T) {
	sa := []uint32{2, 0, 1}
	s, err := Build(sa, 1)
	require.NoError(t, err)
	require.Equal(t, sa, s.Samples)
}

func TestBuildEmpty(t *testing.T) {
	s, err := Build(nil, 4)
	require.NoError(t, err)
	require.Empty(t, s.Samples)
}

func TestBuildRejectsZeroStride(t *testing.T) {
	_, err := Build([]uint32{0, 1, 2}, 0)
	require.Error(t, err)
}

func TestSampleAt(t *testing.T) {
	sa := []uint32{5, 3, 1, 4, 0, 2, 6, 7}
	s, err := Build(sa, 3)
	require.NoError(t, err)
	require.Equal(t, uint32(5), s.SampleAt(0))
	require.Equal(t, uint32(4), s.SampleAt(3))
	require.Equal(t, uint32(6), s.SampleAt(6))
}

func TestSampleAtPanicsOnUnsampledIndex(t *testing.T) {
	sa := []uint32{5, 3, 1, 4, 0, 2, 6, 7}
	s, err := Build(sa, 3)
	require.NoError(t, err)
	require.Panics(t, func() { s.SampleAt(1) })
}

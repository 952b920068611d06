package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStats(t *testing.T) {
	assert.Equal(t, Stats{}, NewStats(nil))

	s := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	assert.InDelta(t, 2.0, s.StdDeviation, 1e-9)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.InDelta(t, 2.0/9.0, s.MinMaxRatio, 1e-9)
}

func TestDistributionQuality(t *testing.T) {
	even := NewDistributionStats([]float64{10, 10, 10, 10})
	assert.InDelta(t, 1.0, even.DistributionQuality, 1e-9)

	skewed := NewDistributionStats([]float64{40, 0, 0, 0})
	assert.Less(t, skewed.DistributionQuality, even.DistributionQuality)
}

func TestDepthHistogram(t *testing.T) {
	h := NewDepthHistogram(4)
	require.Equal(t, int64(0), h.GetCount())
	require.Equal(t, 0.0, h.Average())
	require.Empty(t, h.Distribution())

	for _, d := range []int{1, 2, 2, 3, 9} {
		h.AddSample(d)
	}

	assert.Equal(t, int64(5), h.GetCount())
	assert.InDelta(t, 17.0/5.0, h.Average(), 1e-9)
	assert.Equal(t, 2, h.Percentile(50))
	assert.Equal(t, 4, h.Percentile(100))
	assert.Equal(t, []float64{0, 20, 40, 20, 20}, h.Distribution())
}

func TestNewRandIsReproducible(t *testing.T) {
	a, seedA := NewRand(42)
	b, seedB := NewRand(42)
	require.Equal(t, uint64(42), seedA)
	require.Equal(t, seedA, seedB)
	require.Equal(t, a.Uint64(), b.Uint64())

	_, fresh := NewRand(0)
	require.NotZero(t, fresh)
}

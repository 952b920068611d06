package util

import (
	"math"
	"sync"
)

// ----------------------------------------------------------------------------
// Summary statistics
// ----------------------------------------------------------------------------

type Stats struct {
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	MinMaxRatio  float64 `json:"min_max_ratio"`
}

// NewStats computes mean, population standard deviation, minimum and maximum
// of the given samples.
func NewStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	lo, hi := values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	mean := sum / float64(len(values))

	var squares float64
	for _, v := range values {
		squares += (v - mean) * (v - mean)
	}

	ratio := 1.0
	if hi > 0 {
		ratio = lo / hi
	}

	return Stats{
		StdDeviation: math.Sqrt(squares / float64(len(values))),
		Min:          lo,
		Max:          hi,
		Mean:         mean,
		MinMaxRatio:  ratio,
	}
}

type DistributionStats struct {
	Stats
	DistributionQuality float64 `json:"distribution_quality"`
}

// NewDistributionStats rates how evenly samples (e.g. entries per slot) are spread.
// A quality of 1 means perfectly even, 0 means everything sits in one place.
func NewDistributionStats(sizes []float64) DistributionStats {
	stats := NewStats(sizes)

	var cv float64
	if stats.Mean > 0 {
		cv = stats.StdDeviation / stats.Mean
	}

	// lower coefficient of variation and higher min/max ratio are better
	quality := (1.0-math.Min(1.0, cv))*0.5 + stats.MinMaxRatio*0.5

	return DistributionStats{
		Stats:               stats,
		DistributionQuality: quality,
	}
}

// ----------------------------------------------------------------------------
// DepthHistogram
// ----------------------------------------------------------------------------

// DepthHistogram counts trie items per depth.
// Depths are bounded by the key width, so every depth gets its own bucket.
type DepthHistogram struct {
	mutex   sync.RWMutex
	buckets []int64
	count   int64
	sum     int64
}

// NewDepthHistogram creates a histogram for depths 0..maxDepth
func NewDepthHistogram(maxDepth int) *DepthHistogram {
	return &DepthHistogram{buckets: make([]int64, maxDepth+1)}
}

// AddSample records one item at the given depth. Depths beyond the
// configured maximum are counted in the last bucket.
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) AddSample(depth int) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	i := min(max(depth, 0), len(h.buckets)-1)
	h.buckets[i]++
	h.count++
	h.sum += int64(depth)
}

// GetCount returns the total number of samples
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) GetCount() int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.count
}

// Average returns the mean depth of all samples
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) Average() float64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 {
		return 0
	}
	return float64(h.sum) / float64(h.count)
}

// Percentile returns the smallest depth that covers the given percentile (0-100)
// of all samples.
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) Percentile(percentile int) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	target := int64(math.Ceil(float64(h.count) * float64(percentile) / 100.0))
	var cumulative int64
	for depth, n := range h.buckets {
		cumulative += n
		if cumulative >= target {
			return depth
		}
	}
	return len(h.buckets) - 1
}

// Distribution returns the share of samples (in percent) per depth,
// trimmed after the deepest non-empty bucket.
//
// Thread-safe: This method is safe for concurrent use
func (h *DepthHistogram) Distribution() []float64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	last := -1
	for depth, n := range h.buckets {
		if n > 0 {
			last = depth
		}
	}

	percentages := make([]float64, last+1)
	for depth := range percentages {
		percentages[depth] = float64(h.buckets[depth]) * 100.0 / float64(h.count)
	}
	return percentages
}

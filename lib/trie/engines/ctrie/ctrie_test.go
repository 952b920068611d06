package ctrie

import (
	"bytes"
	"sync"
	"testing"

	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/VictoriaMetrics/metrics"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConcurrentMapOptions(t *testing.T) {
	m, err := NewConcurrentMap[string](nil)
	require.NoError(t, err)
	assert.Equal(t, defaultKeyWidth, m.KeyWidth())
	assert.True(t, m.IsEmpty())
	assert.True(t, m.SupportsFeature(trie.FeatureConcurrent|trie.FeatureClosest))

	for _, width := range []int{0, -1} {
		_, err := NewConcurrentMap[string](&Options{KeyWidth: width})
		assert.True(t, errors.Is(err, trie.ErrInvalidKeyWidth), "width %d", width)
	}
}

func TestMetricsCounters(t *testing.T) {
	set := metrics.NewSet()
	m, err := NewConcurrentMap[int](&Options{KeyWidth: 2, Metrics: set, Name: "test"})
	require.NoError(t, err)

	_, _ = m.InsertOrUpdate([]byte{0x00, 0x01}, 1) // insert
	_, _ = m.InsertOrUpdate([]byte{0x00, 0x02}, 2) // insert + deepen
	_, _ = m.InsertOrUpdate([]byte{0x00, 0x02}, 3) // update
	_, _ = m.InsertOrUpdateIf([]byte{0x00, 0x02}, 0, trie.NeverUpdate[int])
	_, _ = m.Remove([]byte{0x00, 0x01}) // remove + prune

	var buf bytes.Buffer
	set.WritePrometheus(&buf)
	out := buf.String()

	for _, line := range []string{
		`qtrie_ops_total{engine="ctrie",map="test",op="insert"} 2`,
		`qtrie_ops_total{engine="ctrie",map="test",op="update"} 1`,
		`qtrie_ops_total{engine="ctrie",map="test",op="rejected"} 1`,
		`qtrie_ops_total{engine="ctrie",map="test",op="remove"} 1`,
	} {
		assert.Contains(t, out, line)
	}

	// the two keys share their first 7 nibbles, so a list is built on 8 levels
	// and all of them collapse again after the remove
	assert.Contains(t, out, `qtrie_restructure_total{engine="ctrie",map="test",op="deepen"} 8`)
	assert.Contains(t, out, `qtrie_restructure_total{engine="ctrie",map="test",op="prune"} 8`)

	info := m.GetInfo()
	require.Equal(t, 1, info.Entries)
	require.Equal(t, 1, info.Depth)
}

func TestGetInfoMetadata(t *testing.T) {
	m, err := NewConcurrentMap[int](&Options{KeyWidth: 1, Name: "info"})
	require.NoError(t, err)

	for i := 0; i < 256; i++ {
		_, err := m.InsertOrUpdate([]byte{byte(i)}, i)
		require.NoError(t, err)
	}

	info := m.GetInfo()
	assert.Equal(t, trie.ImplConcurrent, info.Engine)
	assert.Equal(t, 256, info.Entries)
	// a full 1-byte key space is a complete tree of 4 list levels
	assert.Equal(t, 5, info.Depth)
	assert.Equal(t, m.MemorySize(), info.SizeBytes)

	meta, ok := info.Metadata.(*Metadata)
	require.True(t, ok)
	assert.Equal(t, "info", meta.Name)
	assert.Equal(t, 1+4+16+64, meta.ListNodes)
	assert.Equal(t, 256, meta.ItemNodes)
	assert.Equal(t, 0, meta.EmptyNodes)
	assert.InDelta(t, 4.0, meta.AvgItemDepth, 1e-9)
	assert.Equal(t, 4, meta.ItemDepthP50)
	assert.Equal(t, 4, meta.ItemDepthP99)
	assert.InDelta(t, 1.0, meta.RootDistribution.DistributionQuality, 1e-9)
	assert.Equal(t, uint64(256), meta.Operations["inserts"])
}

func TestGetInfoDepthPercentiles(t *testing.T) {
	m, err := NewConcurrentMap[int](&Options{KeyWidth: 2})
	require.NoError(t, err)

	// three keys alone in their root slot, two keys that only differ in the last bit pair
	keys := [][]byte{{0x40, 0x00}, {0x80, 0x00}, {0xc0, 0x00}, {0x00, 0x00}, {0x00, 0x01}}
	for i, key := range keys {
		_, err := m.InsertOrUpdate(key, i)
		require.NoError(t, err)
	}

	meta := m.GetInfo().Metadata.(*Metadata)
	assert.Equal(t, 5, meta.ItemNodes)
	assert.Equal(t, 1, meta.ItemDepthP50)
	assert.Equal(t, 8, meta.ItemDepthP99)
}

func TestPredicateRunsOncePerCall(t *testing.T) {
	m, err := NewConcurrentMap[int](&Options{KeyWidth: 4})
	require.NoError(t, err)
	key := []byte{1, 2, 3, 4}
	_, _ = m.InsertOrUpdate(key, 0)

	var mu sync.Mutex
	calls := 0
	var wg sync.WaitGroup
	for i := 1; i <= 32; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_, _ = m.InsertOrUpdateIf(key, v, func(old, new int) bool {
				mu.Lock()
				calls++
				mu.Unlock()
				return new > old
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, calls)
	v, ok := m.Get(key)
	assert.True(t, ok)
	assert.Equal(t, 32, v)
}

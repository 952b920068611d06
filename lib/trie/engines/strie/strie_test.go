package strie

import (
	"testing"

	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSequentialMap(t *testing.T) {
	m, err := NewSequentialMap[string](nil)
	require.NoError(t, err)
	assert.Equal(t, defaultKeyWidth, m.KeyWidth())
	assert.False(t, m.SupportsFeature(trie.FeatureConcurrent))
	assert.True(t, m.SupportsFeature(trie.FeatureClosest|trie.FeatureMinMax))

	_, err = NewSequentialMap[string](&Options{KeyWidth: 0})
	assert.True(t, errors.Is(err, trie.ErrInvalidKeyWidth))
}

func TestLenTracksWrites(t *testing.T) {
	m, err := NewSequentialMap[string](&Options{KeyWidth: 1})
	require.NoError(t, err)

	status, err := m.InsertOrUpdateIf([]byte{1}, "a", trie.AlwaysUpdate[string])
	require.NoError(t, err)
	require.Equal(t, trie.StatusInserted, status)

	status, _ = m.InsertOrUpdateIf([]byte{1}, "b", trie.AlwaysUpdate[string])
	require.Equal(t, trie.StatusUpdated, status)
	require.Equal(t, 1, m.Len())

	_, _ = m.InsertOrUpdate([]byte{2}, "c")
	require.Equal(t, 2, m.Len())

	removed, _ := m.RemoveIf([]byte{2}, func(v string) bool { return v == "x" })
	require.False(t, removed)
	require.Equal(t, 2, m.Len())

	removed, _ = m.Remove([]byte{2})
	require.True(t, removed)
	require.Equal(t, 1, m.Len())

	// a rejected key leaves the count alone
	_, err = m.InsertOrUpdate([]byte{1, 2}, "d")
	require.True(t, errors.Is(err, trie.ErrKeyWidth))
	require.Equal(t, 1, m.Len())

	m.Clear()
	require.True(t, m.IsEmpty())
}

func TestDeepenExhaustsKeyWidth(t *testing.T) {
	_, err := deepen([]byte{0x12}, 1, []byte{0x12}, 2, 0, 4)
	require.True(t, errors.Is(err, trie.ErrMaxDepth))

	children, err := deepen([]byte{0x00}, 1, []byte{0x03}, 2, 0, 4)
	require.NoError(t, err)
	// 0x00 and 0x03 only differ in the last bit pair
	for depth := 0; depth < 3; depth++ {
		require.Equal(t, kindList, children[0].kind, "depth %d", depth)
		children = children[0].children
	}
	assert.Equal(t, kindItem, children[0].kind)
	assert.Equal(t, kindItem, children[3].kind)
	assert.Equal(t, 2, children[3].value)
}

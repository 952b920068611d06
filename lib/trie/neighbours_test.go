package trie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func entry(key byte, value int) Entry[int] {
	return Entry[int]{Key: []byte{key}, Value: value}
}

func none() (Entry[int], bool) { return Entry[int]{}, false }

func TestNeighboursKeepsNearestOnEachSide(t *testing.T) {
	n := NewNeighbours[int]([]byte{0x40}, false)
	n.Offer(entry(0x10, 1))
	n.Offer(entry(0x30, 2))
	n.Offer(entry(0x70, 3))
	n.Offer(entry(0x50, 4))

	require.True(t, n.HasLesser())
	require.True(t, n.HasGreater())
	require.False(t, n.HasExact())

	best, ok := n.Best(false, none, none)
	require.True(t, ok)
	require.Equal(t, entry(0x30, 2), best)
}

func TestNeighboursExactMatch(t *testing.T) {
	n := NewNeighbours[int]([]byte{0x40}, false)
	n.Offer(entry(0x40, 1))
	require.False(t, n.HasExact())
	_, ok := n.Best(false, none, none)
	require.False(t, ok)

	n = NewNeighbours[int]([]byte{0x40}, true)
	n.Offer(entry(0x41, 2))
	n.Offer(entry(0x40, 1))
	best, ok := n.Best(false, none, none)
	require.True(t, ok)
	require.Equal(t, entry(0x40, 1), best)
}

func TestNeighboursTieResolvesToSmallerKey(t *testing.T) {
	n := NewNeighbours[int]([]byte{0x40}, false)
	n.Offer(entry(0x42, 1))
	n.Offer(entry(0x3e, 2))

	best, ok := n.Best(false, none, none)
	require.True(t, ok)
	require.Equal(t, entry(0x3e, 2), best)
}

func TestNeighboursLoopAround(t *testing.T) {
	max := func() (Entry[int], bool) { return entry(0xff, 9), true }
	min := func() (Entry[int], bool) { return entry(0x01, 8), true }

	n := NewNeighbours[int]([]byte{0x02}, false)
	n.Offer(entry(0x80, 1))

	// without wrapping only the greater neighbour is known
	best, ok := n.Best(false, min, max)
	require.True(t, ok)
	require.Equal(t, entry(0x80, 1), best)

	// wrapping brings in the global maximum, which is 3 away
	best, ok = n.Best(true, min, max)
	require.True(t, ok)
	require.Equal(t, entry(0xff, 9), best)
}

func TestNeighboursLoopAroundSkipsProbe(t *testing.T) {
	self := func() (Entry[int], bool) { return entry(0x02, 1), true }

	n := NewNeighbours[int]([]byte{0x02}, false)
	_, ok := n.Best(true, self, self)
	require.False(t, ok)
}

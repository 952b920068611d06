package keyset

import (
	"sync"
	"testing"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/ValentinKolb/qtrie/lib/trie/engines/ctrie"
	"github.com/ValentinKolb/qtrie/lib/trie/engines/strie"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func concurrentFactory(width int) MapFactory {
	return func() trie.Map[struct{}] {
		m, err := ctrie.NewConcurrentMap[struct{}](&ctrie.Options{KeyWidth: width})
		if err != nil {
			panic(err)
		}
		return m
	}
}

func sequentialFactory(width int) MapFactory {
	return func() trie.Map[struct{}] {
		m, err := strie.NewSequentialMap[struct{}](&strie.Options{KeyWidth: width})
		if err != nil {
			panic(err)
		}
		return m
	}
}

func TestKeySet(t *testing.T) {
	for name, factory := range map[string]MapFactory{
		"concurrent": concurrentFactory(2),
		"sequential": sequentialFactory(2),
	} {
		t.Run(name, func(t *testing.T) {
			s := NewKeySet(factory)

			added, err := s.Add([]byte{0x10, 0x00})
			require.NoError(t, err)
			require.True(t, added)

			added, err = s.Add([]byte{0x10, 0x00})
			require.NoError(t, err)
			require.False(t, added, "second Add of the same key")

			for _, k := range [][]byte{{0x00, 0x05}, {0xf0, 0x00}, {0x20, 0x00}} {
				_, err := s.Add(k)
				require.NoError(t, err)
			}
			require.Equal(t, 4, s.Len())

			found, err := s.Has([]byte{0x20, 0x00})
			require.NoError(t, err)
			require.True(t, found)

			found, _ = s.Has([]byte{0x20})
			require.False(t, found, "wrong width is never found")

			lo, ok, err := s.Min()
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, []byte{0x00, 0x05}, lo)

			hi, ok, _ := s.Max()
			require.True(t, ok)
			require.Equal(t, []byte{0xf0, 0x00}, hi)

			near, ok, err := s.Closest([]byte{0x17, 0x00}, false, false)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, []byte{0x10, 0x00}, near)

			// 0xfff0 is 0x15 away from 0x0005 across the end
			near, _, _ = s.Closest([]byte{0xff, 0xf0}, false, true)
			require.Equal(t, []byte{0x00, 0x05}, near)

			// the path of 0x1700 ends in the slot holding 0x1000
			near, ok, err = s.ClosestByPrefix([]byte{0x17, 0x00}, false)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, []byte{0x10, 0x00}, near)

			// top level slot 2 is empty, its first occupied fallback is slot 3
			near, _, _ = s.ClosestByPrefix([]byte{0x80, 0x00}, true)
			require.Equal(t, []byte{0xf0, 0x00}, near)

			removed, err := s.Remove([]byte{0x10, 0x00})
			require.NoError(t, err)
			require.True(t, removed)
			require.Equal(t, 3, s.Len())

			_, err = s.Add([]byte{1, 2, 3})
			require.True(t, errors.Is(err, trie.ErrKeyWidth))

			info := s.GetInfo()
			require.Equal(t, 3, info.Entries)

			s.Clear()
			require.Equal(t, 0, s.Len())
			_, ok, _ = s.Min()
			require.False(t, ok)
			_, ok, _ = s.Closest([]byte{0, 0}, true, true)
			require.False(t, ok)
		})
	}
}

func TestConcurrentAdd(t *testing.T) {
	s := NewKeySet(concurrentFactory(4))

	var wg sync.WaitGroup
	added := make([]int, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			// all workers add the same keys, each key is new exactly once
			for i := 0; i < 1000; i++ {
				ok, err := s.Add(keyspace.FromUint64(uint64(i), 4))
				if err == nil && ok {
					added[w]++
				}
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for _, n := range added {
		total += n
	}
	assert.Equal(t, 1000, total)
	assert.Equal(t, 1000, s.Len())
}

// readOnlyMap hides the write features of a map
type readOnlyMap struct {
	trie.Map[struct{}]
}

func (readOnlyMap) SupportsFeature(f trie.Feature) bool {
	return f&(trie.FeatureInsertOrUpdate|trie.FeatureRemove) == 0
}

func TestUnsupportedOperation(t *testing.T) {
	s := NewKeySet(func() trie.Map[struct{}] {
		return readOnlyMap{concurrentFactory(1)()}
	})

	_, err := s.Add([]byte{1})
	var kerr *Error
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, RetCUnsupportedOperation, kerr.Code)
	assert.Contains(t, err.Error(), "UnsupportedOperation")

	_, err = s.Remove([]byte{1})
	require.Error(t, err)

	_, _, err = s.ClosestByPrefix([]byte{1}, true)
	require.NoError(t, err)

	found, err := s.Has([]byte{1})
	require.NoError(t, err)
	require.False(t, found)
}

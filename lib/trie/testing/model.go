package testing

import (
	"bytes"
	"sort"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
)

// model is a brute force map used as the oracle of the conformance suite.
// Every query scans all keys.
type model struct {
	entries map[string]int
}

func newModel() *model {
	return &model{entries: make(map[string]int)}
}

func (m *model) insertOrUpdateIf(key []byte, value int, shouldUpdate trie.UpdatePredicate[int]) trie.Status {
	old, ok := m.entries[string(key)]
	switch {
	case !ok:
		m.entries[string(key)] = value
		return trie.StatusInserted
	case shouldUpdate(old, value):
		m.entries[string(key)] = value
		return trie.StatusUpdated
	default:
		return trie.StatusRejected
	}
}

func (m *model) removeIf(key []byte, shouldRemove trie.RemovePredicate[int]) bool {
	old, ok := m.entries[string(key)]
	if !ok || !shouldRemove(old) {
		return false
	}
	delete(m.entries, string(key))
	return true
}

func (m *model) get(key []byte) (int, bool) {
	v, ok := m.entries[string(key)]
	return v, ok
}

// sorted returns all entries in ascending key order
func (m *model) sorted() []trie.Entry[int] {
	result := make([]trie.Entry[int], 0, len(m.entries))
	for k, v := range m.entries {
		result = append(result, trie.Entry[int]{Key: []byte(k), Value: v})
	}
	sort.Slice(result, func(i, j int) bool {
		return bytes.Compare(result[i].Key, result[j].Key) < 0
	})
	return result
}

func (m *model) min() (trie.Entry[int], bool) {
	s := m.sorted()
	if len(s) == 0 {
		return trie.Entry[int]{}, false
	}
	return s[0], true
}

func (m *model) max() (trie.Entry[int], bool) {
	s := m.sorted()
	if len(s) == 0 {
		return trie.Entry[int]{}, false
	}
	return s[len(s)-1], true
}

// closest computes the expected nearest-key result.
//
// With loopAround every key is a candidate. Without it only the greatest key below
// and the smallest key above the probe compete. In both cases the exact key wins
// if it is included, and equal distances go to the smaller key.
func (m *model) closest(probe []byte, includeKey, loopAround bool) (trie.Entry[int], bool) {
	if v, ok := m.entries[string(probe)]; ok && includeKey {
		return trie.Entry[int]{Key: probe, Value: v}, true
	}

	var candidates []trie.Entry[int]
	if loopAround {
		for _, e := range m.sorted() {
			if !bytes.Equal(e.Key, probe) {
				candidates = append(candidates, e)
			}
		}
	} else {
		var lesser, greater *trie.Entry[int]
		sorted := m.sorted()
		for i := range sorted {
			switch c := bytes.Compare(sorted[i].Key, probe); {
			case c < 0:
				lesser = &sorted[i]
			case c > 0 && greater == nil:
				greater = &sorted[i]
			}
		}
		if lesser != nil {
			candidates = append(candidates, *lesser)
		}
		if greater != nil {
			candidates = append(candidates, *greater)
		}
	}

	if len(candidates) == 0 {
		return trie.Entry[int]{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if keyspace.Closer(probe, c.Key, best.Key) {
			best = c
		}
	}
	return best, true
}

// closestByPrefix computes the expected prefix search result. A pruned trie holds
// a set of keys as an item if it has one key and as a list otherwise, so the
// search can be replayed on the sorted key set split by nibble.
func (m *model) closestByPrefix(probe []byte, includeKey bool) (trie.Entry[int], bool) {
	return prefixSearch(m.sorted(), probe, includeKey, 0)
}

func prefixSearch(entries []trie.Entry[int], probe []byte, includeKey bool, depth int) (trie.Entry[int], bool) {
	switch len(entries) {
	case 0:
		return trie.Entry[int]{}, false
	case 1:
		if includeKey || !bytes.Equal(entries[0].Key, probe) {
			return entries[0], true
		}
		return trie.Entry[int]{}, false
	}

	var slots [keyspace.Fanout][]trie.Entry[int]
	for _, e := range entries {
		i := keyspace.Nibble(e.Key, depth)
		slots[i] = append(slots[i], e)
	}

	index := keyspace.Nibble(probe, depth)
	if e, ok := prefixSearch(slots[index], probe, includeKey, depth+1); ok {
		return e, true
	}
	for _, i := range keyspace.Siblings(index) {
		// slots keep the ascending order, the last entry is the maximum
		if s := slots[i]; len(s) > 0 {
			return s[len(s)-1], true
		}
	}
	return trie.Entry[int]{}, false
}

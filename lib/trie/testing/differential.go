package testing

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
)

// RunDifferentialTests replays identical random operation streams against two
// implementations and requires identical results and identical trie shapes.
// reference is usually the sequential engine.
func RunDifferentialTests(t *testing.T, name string, factory, reference MapFactory) {
	t.Run(name, func(t *testing.T) {
		for _, width := range []int{1, 3, 8} {
			for seed := int64(0); seed < 3; seed++ {
				differential(t, factory(width), reference(width), seed)
			}
		}
	})
}

func differential(t *testing.T, m, ref trie.Map[int], seed int64) {
	t.Helper()
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureRemove|trie.FeatureGet|trie.FeatureMinMax|trie.FeatureClosest)
	requireFeature(t, ref, trie.FeatureInsertOrUpdate|trie.FeatureRemove|trie.FeatureGet|trie.FeatureMinMax|trie.FeatureClosest)

	width := m.KeyWidth()
	r := rand.New(rand.NewSource(seed))

	// keys with long shared prefixes provoke deep lists
	prefix := keyspace.Random(r, width)
	nextKey := func() []byte {
		k := bytes.Clone(prefix)
		for i := r.Intn(width + 1); i < width; i++ {
			k[i] = byte(r.Intn(256))
		}
		if r.Intn(4) == 0 {
			k[width-1] ^= 1 << r.Intn(8)
		}
		return k
	}

	for step := 0; step < 5000; step++ {
		key := nextKey()
		value := r.Intn(100)

		switch op := r.Intn(12); {
		case op < 5:
			a, errA := m.InsertOrUpdateIf(key, value, greater)
			b, errB := ref.InsertOrUpdateIf(key, value, greater)
			if a != b || (errA == nil) != (errB == nil) {
				t.Fatalf("width %d seed %d step %d: InsertOrUpdateIf(%s) = %s vs %s", width, seed, step, keyspace.String(key), a, b)
			}
		case op < 8:
			a, _ := m.Remove(key)
			b, _ := ref.Remove(key)
			if a != b {
				t.Fatalf("width %d seed %d step %d: Remove(%s) = %v vs %v", width, seed, step, keyspace.String(key), a, b)
			}
		case op < 9:
			va, oka := m.Get(key)
			vb, okb := ref.Get(key)
			if va != vb || oka != okb {
				t.Fatalf("width %d seed %d step %d: Get(%s) differs", width, seed, step, keyspace.String(key))
			}
		case op < 10:
			m.Clear()
			ref.Clear()
		case op < 11:
			include, loop := r.Intn(2) == 0, r.Intn(2) == 0
			a, oka, _ := m.GetOrClosest(key, include, loop)
			b, okb, _ := ref.GetOrClosest(key, include, loop)
			if oka != okb || !sameEntry(a, b) {
				t.Fatalf("width %d seed %d step %d: GetOrClosest(%s, %v, %v) = %s vs %s",
					width, seed, step, keyspace.String(key), include, loop, keyspace.String(a.Key), keyspace.String(b.Key))
			}
		default:
			include := r.Intn(2) == 0
			a, oka, _ := m.GetOrClosestByPrefix(key, include)
			b, okb, _ := ref.GetOrClosestByPrefix(key, include)
			if oka != okb || !sameEntry(a, b) {
				t.Fatalf("width %d seed %d step %d: GetOrClosestByPrefix(%s, %v) = %s vs %s",
					width, seed, step, keyspace.String(key), include, keyspace.String(a.Key), keyspace.String(b.Key))
			}
		}

		if m.Len() != ref.Len() || m.Depth() != ref.Depth() || m.IsEmpty() != ref.IsEmpty() {
			t.Fatalf("width %d seed %d step %d: shape differs: len %d/%d depth %d/%d",
				width, seed, step, m.Len(), ref.Len(), m.Depth(), ref.Depth())
		}
	}

	minA, okA := m.Min()
	minB, okB := ref.Min()
	if okA != okB || !sameEntry(minA, minB) {
		t.Errorf("width %d seed %d: Min differs", width, seed)
	}
	maxA, okA := m.Max()
	maxB, okB := ref.Max()
	if okA != okB || !sameEntry(maxA, maxB) {
		t.Errorf("width %d seed %d: Max differs", width, seed)
	}
}

package testing

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/cockroachdb/errors"
)

// MapFactory creates an empty map for keys of the given width
type MapFactory func(keyWidth int) trie.Map[int]

// RunMapTests runs the conformance suite for a trie.Map implementation.
func RunMapTests(t *testing.T, name string, factory MapFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("InsertGet", func(t *testing.T) {
			testInsertGet(t, factory(4))
		})

		t.Run("InsertOrUpdateIf", func(t *testing.T) {
			testInsertOrUpdateIf(t, factory(4))
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, factory(4))
		})

		t.Run("RemoveIf", func(t *testing.T) {
			testRemoveIf(t, factory(4))
		})

		t.Run("Pruning", func(t *testing.T) {
			testPruning(t, factory(4))
		})

		t.Run("DeepCollision", func(t *testing.T) {
			testDeepCollision(t, factory(4))
		})

		t.Run("MinMax", func(t *testing.T) {
			testMinMax(t, factory(8))
		})

		t.Run("ClosestScenario", func(t *testing.T) {
			testClosestScenario(t, factory(4))
		})

		t.Run("ClosestAgainstModel", func(t *testing.T) {
			testClosestAgainstModel(t, factory)
		})

		t.Run("ClosestByPrefixScenario", func(t *testing.T) {
			testClosestByPrefixScenario(t, factory(1))
		})

		t.Run("ClosestByPrefixAgainstModel", func(t *testing.T) {
			testClosestByPrefixAgainstModel(t, factory)
		})

		t.Run("KeyWidth", func(t *testing.T) {
			testKeyWidth(t, factory(4))
		})

		t.Run("ReturnedKeysAreCopies", func(t *testing.T) {
			testReturnedKeysAreCopies(t, factory(4))
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory(4))
		})

		t.Run("Diagnostics", func(t *testing.T) {
			testDiagnostics(t, factory(4))
		})

		t.Run("RandomOperations", func(t *testing.T) {
			testRandomOperations(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the map supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, m trie.Map[int], feature trie.Feature) {
	if !m.SupportsFeature(feature) {
		t.Skipf("feature %s not supported", feature)
	}
}

func greater(old, new int) bool { return new > old }

// distinctKeys returns n distinct random keys of the given width
func distinctKeys(r *rand.Rand, n, width int) [][]byte {
	seen := make(map[string]struct{}, n)
	keys := make([][]byte, 0, n)
	for len(keys) < n {
		k := keyspace.Random(r, width)
		if _, ok := seen[string(k)]; ok {
			continue
		}
		seen[string(k)] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

func mustInsert(t testing.TB, m trie.Map[int], key []byte, value int) {
	t.Helper()
	if _, err := m.InsertOrUpdate(key, value); err != nil {
		t.Fatalf("InsertOrUpdate(%s) failed: %v", keyspace.String(key), err)
	}
}

func sameEntry(a, b trie.Entry[int]) bool {
	return bytes.Equal(a.Key, b.Key) && a.Value == b.Value
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testInsertGet(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureGet)

	r := rand.New(rand.NewSource(1))
	keys := distinctKeys(r, 500, m.KeyWidth())

	for i, k := range keys {
		status, err := m.InsertOrUpdateIf(k, i, trie.AlwaysUpdate[int])
		if err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
		if status != trie.StatusInserted {
			t.Errorf("Expected Inserted for new key %s, got %s", keyspace.String(k), status)
		}
	}

	if m.Len() != len(keys) {
		t.Errorf("Expected Len %d, got %d", len(keys), m.Len())
	}

	for i, k := range keys {
		v, ok := m.Get(k)
		if !ok || v != i {
			t.Errorf("Get(%s) = %d, %v, want %d, true", keyspace.String(k), v, ok, i)
		}
	}

	// overwrite keeps the count
	for i, k := range keys[:100] {
		ok, err := m.InsertOrUpdate(k, -i)
		if err != nil || !ok {
			t.Fatalf("InsertOrUpdate on existing key = %v, %v", ok, err)
		}
	}
	if m.Len() != len(keys) {
		t.Errorf("Expected Len %d after updates, got %d", len(keys), m.Len())
	}
	for i, k := range keys[:100] {
		if v, _ := m.Get(k); v != -i {
			t.Errorf("Expected updated value %d, got %d", -i, v)
		}
	}

	absent := distinctKeys(rand.New(rand.NewSource(2)), 50, m.KeyWidth())
	for _, k := range absent {
		if _, ok := m.Get(k); ok && !containsKey(keys, k) {
			t.Errorf("Get returned a value for absent key %s", keyspace.String(k))
		}
	}
}

func containsKey(keys [][]byte, key []byte) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}

func testInsertOrUpdateIf(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureGet)

	key := []byte{0xde, 0xad, 0xbe, 0xef}

	status, err := m.InsertOrUpdateIf(key, 5, greater)
	if err != nil || status != trie.StatusInserted {
		t.Fatalf("Expected Inserted, got %s, %v", status, err)
	}

	status, _ = m.InsertOrUpdateIf(key, 3, greater)
	if status != trie.StatusRejected {
		t.Errorf("Expected Rejected for smaller value, got %s", status)
	}
	if v, _ := m.Get(key); v != 5 {
		t.Errorf("Rejected update changed the value to %d", v)
	}

	status, _ = m.InsertOrUpdateIf(key, 7, greater)
	if status != trie.StatusUpdated {
		t.Errorf("Expected Updated for greater value, got %s", status)
	}
	if v, _ := m.Get(key); v != 7 {
		t.Errorf("Expected value 7, got %d", v)
	}

	// insert-if-absent
	status, _ = m.InsertOrUpdateIf(key, 100, trie.NeverUpdate[int])
	if status != trie.StatusRejected {
		t.Errorf("NeverUpdate must reject, got %s", status)
	}

	// the predicate sees the stored and the offered value
	var seenOld, seenNew int
	_, _ = m.InsertOrUpdateIf(key, 9, func(old, new int) bool {
		seenOld, seenNew = old, new
		return false
	})
	if seenOld != 7 || seenNew != 9 {
		t.Errorf("Predicate called with (%d, %d), want (7, 9)", seenOld, seenNew)
	}

	if m.Len() != 1 {
		t.Errorf("Expected Len 1, got %d", m.Len())
	}
}

func testRemove(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureRemove|trie.FeatureGet)

	r := rand.New(rand.NewSource(3))
	keys := distinctKeys(r, 300, m.KeyWidth())
	for i, k := range keys {
		mustInsert(t, m, k, i)
	}

	for i, k := range keys {
		before := m.Len()
		removed, err := m.Remove(k)
		if err != nil || !removed {
			t.Fatalf("Remove(%s) = %v, %v", keyspace.String(k), removed, err)
		}
		if _, ok := m.Get(k); ok {
			t.Errorf("Key %s still present after Remove", keyspace.String(k))
		}
		if m.Len() != before-1 {
			t.Errorf("Expected Len %d after remove, got %d", before-1, m.Len())
		}

		// the remaining keys are untouched
		if i+1 < len(keys) {
			next := keys[i+1]
			if v, ok := m.Get(next); !ok || v != i+1 {
				t.Errorf("Remove damaged key %s", keyspace.String(next))
			}
		}

		// removing twice is a no-op
		if removed, _ := m.Remove(k); removed {
			t.Errorf("Second Remove(%s) reported a removal", keyspace.String(k))
		}
	}

	if !m.IsEmpty() {
		t.Errorf("Expected empty map after removing every key")
	}
}

func testRemoveIf(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureRemove|trie.FeatureGet)

	for i := 0; i < 64; i++ {
		mustInsert(t, m, keyspace.FromUint64(uint64(i)*0x01010101, m.KeyWidth()), i)
	}

	even := func(v int) bool { return v%2 == 0 }
	removed := 0
	for i := 0; i < 64; i++ {
		ok, err := m.RemoveIf(keyspace.FromUint64(uint64(i)*0x01010101, m.KeyWidth()), even)
		if err != nil {
			t.Fatalf("RemoveIf failed: %v", err)
		}
		if ok != (i%2 == 0) {
			t.Errorf("RemoveIf for value %d returned %v", i, ok)
		}
		if ok {
			removed++
		}
	}

	if m.Len() != 64-removed {
		t.Errorf("Expected Len %d, got %d", 64-removed, m.Len())
	}
	for i := 1; i < 64; i += 2 {
		if _, ok := m.Get(keyspace.FromUint64(uint64(i)*0x01010101, m.KeyWidth())); !ok {
			t.Errorf("Declined RemoveIf lost value %d", i)
		}
	}
}

func testPruning(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureRemove)

	if m.Depth() != 0 {
		t.Fatalf("Expected depth 0 for an empty map, got %d", m.Depth())
	}

	r := rand.New(rand.NewSource(4))
	keys := distinctKeys(r, 200, m.KeyWidth())
	for i, k := range keys {
		mustInsert(t, m, k, i)
	}
	if m.Depth() < 2 {
		t.Fatalf("Expected a deepened trie, got depth %d", m.Depth())
	}

	// remove in random order so that collapses happen at every level
	order := r.Perm(len(keys))
	for _, i := range order[:len(order)-1] {
		if removed, _ := m.Remove(keys[i]); !removed {
			t.Fatalf("Remove(%s) failed", keyspace.String(keys[i]))
		}
	}

	if m.Depth() != 1 {
		t.Errorf("Expected a lone item at the root (depth 1), got depth %d", m.Depth())
	}
	last := keys[order[len(order)-1]]
	if v, ok := m.Get(last); !ok || v != order[len(order)-1] {
		t.Errorf("Surviving key %s lost after pruning", keyspace.String(last))
	}

	if removed, _ := m.Remove(last); !removed {
		t.Fatalf("Remove of the last key failed")
	}
	if m.Depth() != 0 || !m.IsEmpty() {
		t.Errorf("Expected empty root, got depth %d, empty %v", m.Depth(), m.IsEmpty())
	}
}

func testDeepCollision(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureRemove|trie.FeatureGet)

	// keys that only differ in the last bit pair force a list on every level
	a := make([]byte, m.KeyWidth())
	b := make([]byte, m.KeyWidth())
	b[len(b)-1] = 0x01

	mustInsert(t, m, a, 1)
	mustInsert(t, m, b, 2)

	want := keyspace.MaxDepth(m.KeyWidth()) + 1
	if m.Depth() != want {
		t.Errorf("Expected depth %d, got %d", want, m.Depth())
	}
	if v, ok := m.Get(a); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if v, ok := m.Get(b); !ok || v != 2 {
		t.Errorf("Get(b) = %d, %v", v, ok)
	}

	if removed, _ := m.Remove(b); !removed {
		t.Fatalf("Remove(b) failed")
	}
	if m.Depth() != 1 {
		t.Errorf("Expected full collapse to depth 1, got %d", m.Depth())
	}
}

func testMinMax(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureMinMax|trie.FeatureRemove)

	if _, ok := m.Min(); ok {
		t.Errorf("Min on empty map returned an entry")
	}
	if _, ok := m.Max(); ok {
		t.Errorf("Max on empty map returned an entry")
	}

	r := rand.New(rand.NewSource(5))
	oracle := newModel()
	for i, k := range distinctKeys(r, 400, m.KeyWidth()) {
		mustInsert(t, m, k, i)
		oracle.insertOrUpdateIf(k, i, trie.AlwaysUpdate[int])

		if i%50 == 0 {
			checkMinMax(t, m, oracle)
		}
	}
	checkMinMax(t, m, oracle)

	// drain from the bottom
	for !m.IsEmpty() {
		e, ok := m.Min()
		if !ok {
			t.Fatalf("Min on non-empty map returned nothing")
		}
		m.Remove(e.Key)
		oracle.removeIf(e.Key, trie.AlwaysRemove[int])
		checkMinMax(t, m, oracle)
	}
}

func checkMinMax(t *testing.T, m trie.Map[int], oracle *model) {
	t.Helper()
	wantMin, okMin := oracle.min()
	gotMin, ok := m.Min()
	if ok != okMin || (ok && !sameEntry(gotMin, wantMin)) {
		t.Errorf("Min = %s, want %s", keyspace.String(gotMin.Key), keyspace.String(wantMin.Key))
	}
	wantMax, okMax := oracle.max()
	gotMax, ok := m.Max()
	if ok != okMax || (ok && !sameEntry(gotMax, wantMax)) {
		t.Errorf("Max = %s, want %s", keyspace.String(gotMax.Key), keyspace.String(wantMax.Key))
	}
}

func testClosestScenario(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureClosest)

	if _, ok, err := m.GetOrClosest([]byte{0, 0, 0, 1}, true, true); ok || err != nil {
		t.Errorf("GetOrClosest on empty map = %v, %v", ok, err)
	}

	mustInsert(t, m, []byte{0, 0, 0, 0}, 1)
	mustInsert(t, m, []byte{0, 1, 0, 0}, 2)
	mustInsert(t, m, []byte{0xff, 0xff, 0xff, 0xff}, 3)

	cases := []struct {
		probe      []byte
		include    bool
		loopAround bool
		wantKey    []byte
		wantValue  int
	}{
		{[]byte{0, 0, 0, 1}, true, false, []byte{0, 0, 0, 0}, 1},
		{[]byte{0, 0, 0, 0}, true, false, []byte{0, 0, 0, 0}, 1},
		// the exact key is skipped, its successor is far but the only candidate
		{[]byte{0, 0, 0, 0}, false, false, []byte{0, 1, 0, 0}, 2},
		// across the end of the key space 0xffffffff is 1 away
		{[]byte{0, 0, 0, 0}, false, true, []byte{0xff, 0xff, 0xff, 0xff}, 3},
		{[]byte{0xff, 0xff, 0xff, 0xfe}, false, false, []byte{0xff, 0xff, 0xff, 0xff}, 3},
		// distance 0x7fff0000 to 00010000 versus 0x7fffffff to ffffffff
		{[]byte{0x80, 0, 0, 0}, false, false, []byte{0, 1, 0, 0}, 2},
		// equal distance to 0x00000000 and 0x00010000 resolves to the smaller key
		{[]byte{0, 0, 0x80, 0}, false, false, []byte{0, 0, 0, 0}, 1},
	}

	for _, c := range cases {
		e, ok, err := m.GetOrClosest(c.probe, c.include, c.loopAround)
		if err != nil || !ok {
			t.Errorf("GetOrClosest(%s) = %v, %v", keyspace.String(c.probe), ok, err)
			continue
		}
		if !bytes.Equal(e.Key, c.wantKey) || e.Value != c.wantValue {
			t.Errorf("GetOrClosest(%s, include=%v, loop=%v) = (%s, %d), want (%s, %d)",
				keyspace.String(c.probe), c.include, c.loopAround,
				keyspace.String(e.Key), e.Value, keyspace.String(c.wantKey), c.wantValue)
		}
	}
}

func testClosestAgainstModel(t *testing.T, factory MapFactory) {
	for _, width := range []int{1, 2, 4} {
		m := factory(width)
		requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureClosest)

		r := rand.New(rand.NewSource(int64(6 + width)))
		var oracle *model
		for _, size := range []int{1, 2, 3, 10, 60} {
			m.Clear()
			oracle = newModel()
			for i := 0; i < size; i++ {
				k := keyspace.Random(r, width)
				mustInsert(t, m, k, i)
				oracle.insertOrUpdateIf(k, i, trie.AlwaysUpdate[int])
			}

			for probeIdx := 0; probeIdx < 200; probeIdx++ {
				probe := keyspace.Random(r, width)
				if probeIdx%4 == 0 {
					// probe existing keys too
					if e, ok := oracle.min(); ok {
						probe = e.Key
					}
				}
				for _, include := range []bool{true, false} {
					for _, loop := range []bool{true, false} {
						want, wantOK := oracle.closest(probe, include, loop)
						got, gotOK, err := m.GetOrClosest(probe, include, loop)
						if err != nil {
							t.Fatalf("GetOrClosest failed: %v", err)
						}
						if gotOK != wantOK || (gotOK && !sameEntry(got, want)) {
							t.Errorf("width %d size %d: GetOrClosest(%s, include=%v, loop=%v) = %s, want %s",
								width, size, keyspace.String(probe), include, loop,
								keyspace.String(got.Key), keyspace.String(want.Key))
						}
					}
				}
			}
		}
	}
}

func testClosestByPrefixScenario(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureClosest)

	if _, ok, err := m.GetOrClosestByPrefix([]byte{0x40}, true); ok || err != nil {
		t.Errorf("GetOrClosestByPrefix on empty map = %v, %v", ok, err)
	}

	// nibbles: 00 = 0000, 40 = 1000, 41 = 1001, c0 = 3000
	for i, k := range []byte{0x00, 0x40, 0x41, 0xc0} {
		mustInsert(t, m, []byte{k}, i)
	}

	cases := []struct {
		probe   byte
		include bool
		want    byte
	}{
		{0x40, true, 0x40},
		// the excluded key falls back to its sibling slot 1
		{0x40, false, 0x41},
		// the slot of 42 is empty, of its siblings 3, 1, 0 only slot 1 is occupied
		{0x42, false, 0x41},
		{0x43, true, 0x41},
		// the item in the path of the probe wins even though the key differs
		{0x01, false, 0x00},
		// 00 is excluded, the fallback order of slot 0 starts with slot 1
		{0x00, false, 0x41},
		// top level slot 2 is empty and falls back to slot 3 first
		{0x80, true, 0xc0},
	}

	for _, c := range cases {
		e, ok, err := m.GetOrClosestByPrefix([]byte{c.probe}, c.include)
		if err != nil || !ok {
			t.Errorf("GetOrClosestByPrefix(%02x) = %v, %v", c.probe, ok, err)
			continue
		}
		if !bytes.Equal(e.Key, []byte{c.want}) {
			t.Errorf("GetOrClosestByPrefix(%02x, include=%v) = %s, want %02x",
				c.probe, c.include, keyspace.String(e.Key), c.want)
		}
	}

	if _, _, err := m.GetOrClosestByPrefix([]byte{1, 2}, true); !errors.Is(err, trie.ErrKeyWidth) {
		t.Errorf("GetOrClosestByPrefix with a wrong width: error = %v, want ErrKeyWidth", err)
	}
}

func testClosestByPrefixAgainstModel(t *testing.T, factory MapFactory) {
	for _, width := range []int{1, 2, 4} {
		m := factory(width)
		requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureClosest)

		r := rand.New(rand.NewSource(int64(20 + width)))
		for _, size := range []int{1, 2, 5, 40} {
			m.Clear()
			oracle := newModel()
			for i := 0; i < size; i++ {
				k := keyspace.Random(r, width)
				mustInsert(t, m, k, i)
				oracle.insertOrUpdateIf(k, i, trie.AlwaysUpdate[int])
			}

			for probeIdx := 0; probeIdx < 200; probeIdx++ {
				probe := keyspace.Random(r, width)
				if probeIdx%4 == 0 {
					if e, ok := oracle.max(); ok {
						probe = e.Key
					}
				}
				for _, include := range []bool{true, false} {
					want, wantOK := oracle.closestByPrefix(probe, include)
					got, gotOK, err := m.GetOrClosestByPrefix(probe, include)
					if err != nil {
						t.Fatalf("GetOrClosestByPrefix failed: %v", err)
					}
					if gotOK != wantOK || (gotOK && !sameEntry(got, want)) {
						t.Errorf("width %d size %d: GetOrClosestByPrefix(%s, include=%v) = %s, want %s",
							width, size, keyspace.String(probe), include,
							keyspace.String(got.Key), keyspace.String(want.Key))
					}
				}
			}
		}
	}
}

func testKeyWidth(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureRemove|trie.FeatureGet)

	if m.KeyWidth() != 4 {
		t.Fatalf("Expected key width 4, got %d", m.KeyWidth())
	}

	short := []byte{1, 2, 3}
	long := []byte{1, 2, 3, 4, 5}

	for _, key := range [][]byte{short, long, nil} {
		if _, err := m.InsertOrUpdate(key, 1); !errors.Is(err, trie.ErrKeyWidth) {
			t.Errorf("InsertOrUpdate(%x) error = %v, want ErrKeyWidth", key, err)
		}
		if _, err := m.Remove(key); !errors.Is(err, trie.ErrKeyWidth) {
			t.Errorf("Remove(%x) error = %v, want ErrKeyWidth", key, err)
		}
		if _, _, err := m.GetOrClosest(key, true, true); !errors.Is(err, trie.ErrKeyWidth) {
			t.Errorf("GetOrClosest(%x) error = %v, want ErrKeyWidth", key, err)
		}
		if _, ok := m.Get(key); ok {
			t.Errorf("Get(%x) found a key of the wrong width", key)
		}
	}

	if !m.IsEmpty() {
		t.Errorf("Rejected keys must not be stored")
	}
}

func testReturnedKeysAreCopies(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureMinMax|trie.FeatureGet)

	key := []byte{1, 2, 3, 4}
	mustInsert(t, m, key, 1)

	// the map must not keep the caller's slice
	key[0] = 9
	if _, ok := m.Get([]byte{1, 2, 3, 4}); !ok {
		t.Errorf("Mutating the inserted key slice changed the stored key")
	}

	e, _ := m.Min()
	e.Key[0] = 7
	if e2, _ := m.Min(); e2.Key[0] != 1 {
		t.Errorf("Min should return a copy of the key, not the stored slice")
	}
}

func testClear(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureGet)

	keys := distinctKeys(rand.New(rand.NewSource(7)), 100, m.KeyWidth())
	for i, k := range keys {
		mustInsert(t, m, k, i)
	}

	m.Clear()
	if !m.IsEmpty() || m.Len() != 0 || m.Depth() != 0 {
		t.Errorf("Expected empty map after Clear, got len %d depth %d", m.Len(), m.Depth())
	}
	for _, k := range keys {
		if _, ok := m.Get(k); ok {
			t.Errorf("Key %s survived Clear", keyspace.String(k))
		}
	}

	// the map is usable after Clear
	mustInsert(t, m, keys[0], 42)
	if v, ok := m.Get(keys[0]); !ok || v != 42 {
		t.Errorf("Insert after Clear failed")
	}
}

func testDiagnostics(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureInsertOrUpdate)

	if used := m.UsedPercent(); used != 0 {
		t.Errorf("UsedPercent of an empty map should be 0, got %f", used)
	}

	keys := distinctKeys(rand.New(rand.NewSource(8)), 256, m.KeyWidth())
	for i, k := range keys {
		mustInsert(t, m, k, i)
	}

	size := m.MemorySize()
	if size <= 0 {
		t.Errorf("Expected positive memory size, got %d", size)
	}
	if used := m.UsedPercent(); used <= 0 || used > 1 {
		t.Errorf("Expected UsedPercent in (0, 1], got %f", used)
	}

	info := m.GetInfo()
	if info.Entries != m.Len() {
		t.Errorf("GetInfo reports %d entries, Len is %d", info.Entries, m.Len())
	}
	if info.Depth != m.Depth() {
		t.Errorf("GetInfo reports depth %d, Depth is %d", info.Depth, m.Depth())
	}
	if info.KeyWidth != m.KeyWidth() {
		t.Errorf("GetInfo reports key width %d", info.KeyWidth)
	}
	if info.SizeBytes != size {
		t.Errorf("GetInfo reports %d bytes, MemorySize is %d", info.SizeBytes, size)
	}
	if info.Engine == "" || len(info.SupportedFeatures) == 0 {
		t.Errorf("GetInfo misses engine or features: %+v", info)
	}
	for _, f := range info.SupportedFeatures {
		if !m.SupportsFeature(f) {
			t.Errorf("GetInfo lists feature %s which SupportsFeature denies", f)
		}
	}
}

// testRandomOperations replays a random operation stream against the map and
// the brute force model and compares every result.
func testRandomOperations(t *testing.T, factory MapFactory) {
	const width = 2
	m := factory(width)
	requireFeature(t, m, trie.FeatureInsertOrUpdate|trie.FeatureRemove|trie.FeatureGet|trie.FeatureMinMax|trie.FeatureClosest)

	r := rand.New(rand.NewSource(9))
	oracle := newModel()

	// a small key pool makes hits, updates and removals frequent
	pool := distinctKeys(r, 300, width)

	for step := 0; step < 20000; step++ {
		key := pool[r.Intn(len(pool))]
		value := r.Intn(1000)

		switch op := r.Intn(10); {
		case op < 4:
			want := oracle.insertOrUpdateIf(key, value, greater)
			got, err := m.InsertOrUpdateIf(key, value, greater)
			if err != nil || got != want {
				t.Fatalf("step %d: InsertOrUpdateIf = %s, %v, want %s", step, got, err, want)
			}
		case op < 7:
			below := func(v int) bool { return v < 700 }
			want := oracle.removeIf(key, below)
			got, err := m.RemoveIf(key, below)
			if err != nil || got != want {
				t.Fatalf("step %d: RemoveIf = %v, %v, want %v", step, got, err, want)
			}
		case op < 8:
			wantV, wantOK := oracle.get(key)
			gotV, gotOK := m.Get(key)
			if gotOK != wantOK || gotV != wantV {
				t.Fatalf("step %d: Get = %d, %v, want %d, %v", step, gotV, gotOK, wantV, wantOK)
			}
		case op < 9:
			include := r.Intn(2) == 0
			want, wantOK := oracle.closestByPrefix(key, include)
			got, gotOK, err := m.GetOrClosestByPrefix(key, include)
			if err != nil || gotOK != wantOK || (gotOK && !sameEntry(got, want)) {
				t.Fatalf("step %d: GetOrClosestByPrefix(%s, %v) = %s, want %s",
					step, keyspace.String(key), include, keyspace.String(got.Key), keyspace.String(want.Key))
			}
		default:
			include, loop := r.Intn(2) == 0, r.Intn(2) == 0
			want, wantOK := oracle.closest(key, include, loop)
			got, gotOK, err := m.GetOrClosest(key, include, loop)
			if err != nil || gotOK != wantOK || (gotOK && !sameEntry(got, want)) {
				t.Fatalf("step %d: GetOrClosest(%s, %v, %v) = %s, want %s",
					step, keyspace.String(key), include, loop, keyspace.String(got.Key), keyspace.String(want.Key))
			}
		}

		if step%500 == 0 {
			if m.Len() != len(oracle.entries) {
				t.Fatalf("step %d: Len = %d, want %d", step, m.Len(), len(oracle.entries))
			}
			checkMinMax(t, m, oracle)
		}
	}
}

package testing

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/puzpuzpuz/xsync/v3"
)

// RunConcurrencyTests runs the concurrency suite for maps that support
// trie.FeatureConcurrent. Run it with -race to catch unsynchronised access.
func RunConcurrencyTests(t *testing.T, name string, factory MapFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("DistinctInserts", func(t *testing.T) {
			testConcurrentDistinctInserts(t, factory(4))
		})

		t.Run("GreatestCounterWins", func(t *testing.T) {
			testConcurrentGreatestCounterWins(t, factory(4))
		})

		t.Run("InsertRemoveChurn", func(t *testing.T) {
			testConcurrentChurn(t, factory(2))
		})

		t.Run("ReadersDuringWrites", func(t *testing.T) {
			testConcurrentReaders(t, factory(4))
		})

		t.Run("PruneToEmpty", func(t *testing.T) {
			testConcurrentPruneToEmpty(t, factory(4))
		})
	})
}

func workers() int {
	return max(4, runtime.GOMAXPROCS(0))
}

func testConcurrentDistinctInserts(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureConcurrent|trie.FeatureInsertOrUpdate|trie.FeatureGet)

	const perWorker = 500
	n := workers()
	inserted := xsync.NewCounter()

	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				// interleaved keys make workers collide in the same subtrees
				key := keyspace.FromUint64(uint64(i*n+w)*2654435761, m.KeyWidth())
				status, err := m.InsertOrUpdateIf(key, w, trie.AlwaysUpdate[int])
				if err != nil {
					t.Errorf("insert failed: %v", err)
					return
				}
				if status == trie.StatusInserted {
					inserted.Inc()
				}
			}
		}(w)
	}
	wg.Wait()

	total := perWorker * n
	if int(inserted.Value()) != total {
		t.Errorf("Expected %d Inserted results, got %d", total, inserted.Value())
	}
	if m.Len() != total {
		t.Errorf("Expected Len %d, got %d", total, m.Len())
	}
	for w := 0; w < n; w++ {
		for i := 0; i < perWorker; i++ {
			key := keyspace.FromUint64(uint64(i*n+w)*2654435761, m.KeyWidth())
			if v, ok := m.Get(key); !ok || v != w {
				t.Fatalf("Key of worker %d lost: %d, %v", w, v, ok)
			}
		}
	}
}

func testConcurrentGreatestCounterWins(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureConcurrent|trie.FeatureInsertOrUpdate|trie.FeatureGet)

	const updates = 5000
	key := []byte{0xca, 0xfe, 0xba, 0xbe}
	n := workers()

	inserted := xsync.NewCounter()
	var first atomic.Int64
	// accepted maps every value that was stored to the worker that offered it
	accepted := xsync.NewMapOf[int, int]()
	// replaced maps every stored value to the value that overwrote it
	replaced := xsync.NewMapOf[int, int]()
	conflicts := xsync.NewMapOf[string, error]()

	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			last := 0
			for v := w + 1; v <= updates; v += n {
				// runs under the exclusive lock of the entry
				shouldUpdate := func(old, new int) bool {
					if new <= old {
						return false
					}
					if prev, loaded := replaced.LoadOrStore(old, new); loaded {
						conflicts.Store(fmt.Sprintf("replace %d", old), fmt.Errorf("replaced by %d and %d", prev, new))
					}
					return true
				}

				status, err := m.InsertOrUpdateIf(key, v, shouldUpdate)
				if err != nil {
					t.Errorf("update failed: %v", err)
					return
				}
				if status == trie.StatusRejected {
					continue
				}
				if status == trie.StatusInserted {
					inserted.Inc()
					first.Store(int64(v))
				}
				if prev, loaded := accepted.LoadOrStore(v, w); loaded {
					conflicts.Store(fmt.Sprintf("accept %d", v), fmt.Errorf("accepted by workers %d and %d", prev, w))
				}
				if v <= last {
					conflicts.Store(fmt.Sprintf("order %d", w), fmt.Errorf("accepted %d after %d", v, last))
				}
				last = v
			}
		}(w)
	}
	wg.Wait()

	conflicts.Range(func(what string, err error) bool {
		t.Errorf("%s: %v", what, err)
		return true
	})

	if inserted.Value() != 1 {
		t.Fatalf("Expected exactly one Inserted result, got %d", inserted.Value())
	}
	if v, ok := m.Get(key); !ok || v != updates {
		t.Errorf("Expected the greatest counter %d to win, got %d, %v", updates, v, ok)
	}

	// the accepted values form one strictly increasing chain from the first
	// insert to the final value, and every link was reported as accepted once
	links := 1
	for current := int(first.Load()); current != updates; links++ {
		next, ok := replaced.Load(current)
		if !ok {
			t.Fatalf("Chain of accepted values breaks after %d", current)
		}
		if next <= current {
			t.Fatalf("Accepted value %d does not exceed its predecessor %d", next, current)
		}
		if _, ok := accepted.Load(next); !ok {
			t.Errorf("Value %d replaced %d but was never reported as accepted", next, current)
		}
		current = next
	}
	if links != accepted.Size() {
		t.Errorf("Chain has %d values, %d updates were accepted", links, accepted.Size())
	}
	if m.Len() != 1 {
		t.Errorf("Expected a single entry, got %d", m.Len())
	}
}

func testConcurrentChurn(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureConcurrent|trie.FeatureInsertOrUpdate|trie.FeatureRemove|trie.FeatureGet)

	const steps = 4000
	n := workers()

	// each worker owns the keys k with k % n == w, so the expected final state
	// per key is known by its owner
	final := xsync.NewMapOf[string, int]()
	space := 1 << (8 * m.KeyWidth())

	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(w)))
			local := make(map[string]int)
			for i := 0; i < steps; i++ {
				k := r.Intn(space/n)*n + w
				if k >= space {
					continue
				}
				key := keyspace.FromUint64(uint64(k), m.KeyWidth())
				if r.Intn(3) == 0 {
					removed, err := m.Remove(key)
					_, had := local[string(key)]
					if err != nil || removed != had {
						t.Errorf("worker %d: Remove(%s) = %v, %v, owned state says %v", w, keyspace.String(key), removed, err, had)
						return
					}
					delete(local, string(key))
				} else {
					if _, err := m.InsertOrUpdate(key, i); err != nil {
						t.Errorf("worker %d: insert failed: %v", w, err)
						return
					}
					local[string(key)] = i
				}
			}
			for k, v := range local {
				final.Store(k, v)
			}
		}(w)
	}
	wg.Wait()

	if m.Len() != final.Size() {
		t.Errorf("Expected Len %d, got %d", final.Size(), m.Len())
	}
	final.Range(func(k string, v int) bool {
		got, ok := m.Get([]byte(k))
		if !ok || got != v {
			t.Errorf("Key %s = %d, %v, want %d", keyspace.String([]byte(k)), got, ok, v)
		}
		return true
	})
}

func testConcurrentReaders(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureConcurrent|trie.FeatureInsertOrUpdate|trie.FeatureRemove|trie.FeatureMinMax|trie.FeatureClosest)

	// stable keys are never touched by the writers
	stable := distinctKeys(rand.New(rand.NewSource(10)), 64, m.KeyWidth())
	isStable := make(map[string]bool, len(stable))
	for _, k := range stable {
		mustInsert(t, m, k, -1)
		isStable[string(k)] = true
	}

	done := make(chan struct{})
	var writers, readers sync.WaitGroup
	for w := 0; w < workers()/2; w++ {
		writers.Add(1)
		go func(w int) {
			defer writers.Done()
			r := rand.New(rand.NewSource(int64(100 + w)))
			for i := 0; i < 3000; i++ {
				key := keyspace.Random(r, m.KeyWidth())
				if isStable[string(key)] {
					continue
				}
				_, _ = m.InsertOrUpdate(key, i)
				if r.Intn(2) == 0 {
					_, _ = m.Remove(key)
				}
			}
		}(w)
	}

	errs := xsync.NewMapOf[string, error]()
	for rd := 0; rd < workers()/2; rd++ {
		readers.Add(1)
		go func(rd int) {
			defer readers.Done()
			r := rand.New(rand.NewSource(int64(200 + rd)))
			for {
				select {
				case <-done:
					return
				default:
				}
				for _, k := range stable {
					if v, ok := m.Get(k); !ok || v != -1 {
						errs.Store(fmt.Sprintf("get %s", keyspace.String(k)), fmt.Errorf("stable key lost: %d, %v", v, ok))
					}
				}
				if e, ok := m.Min(); !ok || len(e.Key) != m.KeyWidth() {
					errs.Store("min", fmt.Errorf("min returned %v, %v", e.Key, ok))
				}
				probe := keyspace.Random(r, m.KeyWidth())
				if e, ok, err := m.GetOrClosest(probe, false, true); err != nil || !ok || len(e.Key) != m.KeyWidth() {
					errs.Store("closest", fmt.Errorf("closest returned %v, %v, %v", e.Key, ok, err))
				}
			}
		}(rd)
	}

	writers.Wait()
	close(done)
	readers.Wait()

	errs.Range(func(op string, err error) bool {
		t.Errorf("%s: %v", op, err)
		return true
	})
}

func testConcurrentPruneToEmpty(t *testing.T, m trie.Map[int]) {
	requireFeature(t, m, trie.FeatureConcurrent|trie.FeatureInsertOrUpdate|trie.FeatureRemove)

	n := workers()
	keys := distinctKeys(rand.New(rand.NewSource(11)), 200*n, m.KeyWidth())
	for i, k := range keys {
		mustInsert(t, m, k, i)
	}

	// keep one key so that the final shape is a lone item at the root
	survivor := keys[0]
	removed := xsync.NewCounter()

	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 1 + w; i < len(keys); i += n {
				ok, err := m.Remove(keys[i])
				if err != nil {
					t.Errorf("remove failed: %v", err)
					return
				}
				if ok {
					removed.Inc()
				}
			}
		}(w)
	}
	wg.Wait()

	if int(removed.Value()) != len(keys)-1 {
		t.Errorf("Expected %d removals, got %d", len(keys)-1, removed.Value())
	}
	if m.Len() != 1 {
		t.Errorf("Expected one entry, got %d", m.Len())
	}
	if m.Depth() != 1 {
		t.Errorf("Expected depth 1 after concurrent pruning, got %d", m.Depth())
	}
	if v, ok := m.Get(survivor); !ok || v != 0 {
		t.Errorf("Survivor lost: %d, %v", v, ok)
	}
}

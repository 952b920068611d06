package testing

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
)

const benchKeyWidth = 32

// RunMapBenchmarks runs all benchmarks for a trie.Map implementation.
// Parallel variants only run for maps with trie.FeatureConcurrent.
func RunMapBenchmarks(b *testing.B, name string, factory MapFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Insert", func(b *testing.B) {
			benchmarkInsert(b, factory(benchKeyWidth))
		})

		b.Run("Update", func(b *testing.B) {
			benchmarkUpdate(b, factory(benchKeyWidth))
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory(benchKeyWidth))
		})

		b.Run("Get(miss)", func(b *testing.B) {
			benchmarkGetMiss(b, factory(benchKeyWidth))
		})

		b.Run("Remove", func(b *testing.B) {
			benchmarkRemove(b, factory(benchKeyWidth))
		})

		b.Run("Closest", func(b *testing.B) {
			benchmarkClosest(b, factory(benchKeyWidth), false)
		})

		b.Run("Closest(loop)", func(b *testing.B) {
			benchmarkClosest(b, factory(benchKeyWidth), true)
		})

		b.Run("ClosestByPrefix", func(b *testing.B) {
			benchmarkClosestByPrefix(b, factory(benchKeyWidth))
		})

		b.Run("MinMax", func(b *testing.B) {
			benchmarkMinMax(b, factory(benchKeyWidth))
		})

		b.Run("ParallelMixed", func(b *testing.B) {
			benchmarkParallelMixed(b, factory(benchKeyWidth))
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// fill inserts n random keys and returns them
func fill(b *testing.B, m trie.Map[int], n int) [][]byte {
	b.Helper()
	keys := distinctKeys(rand.New(rand.NewSource(42)), n, m.KeyWidth())
	for i, k := range keys {
		if _, err := m.InsertOrUpdate(k, i); err != nil {
			b.Fatalf("fill failed: %v", err)
		}
	}
	return keys
}

func benchmarkInsert(b *testing.B, m trie.Map[int]) {
	requireFeature(b, m, trie.FeatureInsertOrUpdate)

	keys := distinctKeys(rand.New(rand.NewSource(1)), 1<<16, m.KeyWidth())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%len(keys) == 0 && i > 0 {
			b.StopTimer()
			m.Clear()
			b.StartTimer()
		}
		_, _ = m.InsertOrUpdate(keys[i%len(keys)], i)
	}
}

func benchmarkUpdate(b *testing.B, m trie.Map[int]) {
	requireFeature(b, m, trie.FeatureInsertOrUpdate)

	keys := fill(b, m, 10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.InsertOrUpdateIf(keys[i%len(keys)], i, greater)
	}
}

func benchmarkGet(b *testing.B, m trie.Map[int]) {
	requireFeature(b, m, trie.FeatureInsertOrUpdate|trie.FeatureGet)

	keys := fill(b, m, 10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Get(keys[i%len(keys)])
	}
}

func benchmarkGetMiss(b *testing.B, m trie.Map[int]) {
	requireFeature(b, m, trie.FeatureInsertOrUpdate|trie.FeatureGet)

	fill(b, m, 10000)
	misses := distinctKeys(rand.New(rand.NewSource(2)), 1000, m.KeyWidth())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Get(misses[i%len(misses)])
	}
}

func benchmarkRemove(b *testing.B, m trie.Map[int]) {
	requireFeature(b, m, trie.FeatureInsertOrUpdate|trie.FeatureRemove)

	keys := fill(b, m, 10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := keys[i%len(keys)]
		_, _ = m.Remove(k)

		b.StopTimer()
		_, _ = m.InsertOrUpdate(k, i)
		b.StartTimer()
	}
}

func benchmarkClosest(b *testing.B, m trie.Map[int], loopAround bool) {
	requireFeature(b, m, trie.FeatureInsertOrUpdate|trie.FeatureClosest)

	fill(b, m, 10000)
	probes := distinctKeys(rand.New(rand.NewSource(3)), 1000, m.KeyWidth())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = m.GetOrClosest(probes[i%len(probes)], false, loopAround)
	}
}

func benchmarkClosestByPrefix(b *testing.B, m trie.Map[int]) {
	requireFeature(b, m, trie.FeatureInsertOrUpdate|trie.FeatureClosest)

	fill(b, m, 10000)
	probes := distinctKeys(rand.New(rand.NewSource(3)), 1000, m.KeyWidth())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = m.GetOrClosestByPrefix(probes[i%len(probes)], false)
	}
}

func benchmarkMinMax(b *testing.B, m trie.Map[int]) {
	requireFeature(b, m, trie.FeatureInsertOrUpdate|trie.FeatureMinMax)

	fill(b, m, 10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%2 == 0 {
			_, _ = m.Min()
		} else {
			_, _ = m.Max()
		}
	}
}

func benchmarkParallelMixed(b *testing.B, m trie.Map[int]) {
	requireFeature(b, m, trie.FeatureConcurrent|trie.FeatureInsertOrUpdate|trie.FeatureRemove|trie.FeatureGet|trie.FeatureClosest)

	keys := fill(b, m, 10000)
	var seed atomic.Int64
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(seed.Add(1)))
		for pb.Next() {
			k := keys[r.Intn(len(keys))]
			switch op := r.Intn(10); {
			case op < 5:
				_, _ = m.Get(k)
			case op < 7:
				_, _ = m.InsertOrUpdate(k, op)
			case op < 8:
				_, _ = m.Remove(k)
			default:
				_, _, _ = m.GetOrClosest(keyspace.Random(r, m.KeyWidth()), true, true)
			}
		}
	})
}

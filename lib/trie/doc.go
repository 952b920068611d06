// Package trie provides a standardized interface for ordered maps over
// fixed-width byte keys, implemented as 4-ary radix tries.
//
// The package focuses on:
//   - A unified interface for point, ordered and nearest-key operations
//   - Feature discovery through capability flags
//   - Comprehensive metadata reporting
//
// Key Components:
//
//   - Map Interface: The core interface that all trie engines must satisfy.
//     It provides methods for basic operations (Get, InsertOrUpdateIf, RemoveIf),
//     ordered queries (Min, Max), nearest-key search (GetOrClosest), diagnostics
//     (Len, Depth, MemorySize, UsedPercent, GetInfo) and Clear.
//
//   - Feature Flags: The Feature type defines capability flags that engines
//     advertise through the SupportsFeature method. A sequential engine, for
//     example, does not advertise FeatureConcurrent.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for the available engines ("ctrie" and "strie").
//
//   - Neighbours: The search state shared by all engines while looking for the
//     key closest to a probe. It records the exact match and the nearest key on
//     either side of the probe and picks the winner under the cyclic distance
//     defined by the keyspace package.
//
// Keys:
//   - All keys of one map have the same width, fixed at construction. Keys with a
//     different width are rejected with ErrKeyWidth by every mutating operation.
//   - A key is consumed as a sequence of 2-bit digits, most significant bits first.
//     This makes the in-order walk of a trie the lexicographic order of its keys.
//   - Keys returned by a map are copies. Mutating them never affects the map.
//
// Note on GetOrClosest:
//   - With loopAround the result is the key at the smallest cyclic distance from the
//     probe, where the key space wraps from the greatest key to zero.
//   - Without loopAround only the predecessor and the successor of the probe are
//     candidates, i.e. the search does not cross the wrap point.
//   - Ties are resolved towards the smaller key.
//
// Related Packages:
//
// The engines/ctrie package (github.com/ValentinKolb/qtrie/lib/trie/engines/ctrie)
// provides the concurrent engine using one reader/writer lock per node.
//
// The engines/strie package (github.com/ValentinKolb/qtrie/lib/trie/engines/strie)
// provides a lock-free single-threaded engine that serves as a reference.
//
// The util package (github.com/ValentinKolb/qtrie/lib/trie/util) provides
// depth and distribution statistics used by GetInfo.
//
// The testing package (github.com/ValentinKolb/qtrie/lib/trie/testing) provides
// standardized tests and benchmarks for engines that satisfy the trie.Map interface.
//   - RunMapTests: Runs a standardized test suite to validate engines
//   - RunConcurrencyTests: Stresses engines that advertise FeatureConcurrent
//   - RunDifferentialTests: Compares an engine against a reference engine
//   - RunMapBenchmarks: Provides performance benchmarks for comparing engines
package trie

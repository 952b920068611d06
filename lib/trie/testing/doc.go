// Package testing provides standardised tests and benchmarks for
// implementations of the trie.Map interface.
//
// The package contains:
//   - RunMapTests: conformance suite checked against a brute force model
//   - RunConcurrencyTests: races writers and readers on maps with trie.FeatureConcurrent
//   - RunDifferentialTests: replays random operations on two engines and compares
//     every result and the resulting trie shape
//   - RunMapBenchmarks: throughput of the common operations
//
// Tests are skipped for features an implementation does not advertise.
//
// Example usage:
//
//	factory := func(keyWidth int) trie.Map[int] {
//		m, _ := NewMyMap[int](keyWidth)
//		return m
//	}
//
//	trietesting.RunMapTests(t, "MyMap", factory)
//	trietesting.RunMapBenchmarks(b, "MyMap", factory)
package testing

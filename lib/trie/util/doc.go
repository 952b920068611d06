// Package util provides statistics and helpers shared by the trie engines,
// the conformance suite and the command line tools.
//
//   - Stats / DistributionStats: summary statistics over a set of samples, used
//     to report how evenly entries spread over the top-level slots of a trie
//   - DepthHistogram: exact per-depth counts of the items of a trie
//   - GenerateSeed / NewRand: seeding for reproducible random key streams
package util

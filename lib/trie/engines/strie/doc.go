// Package strie provides a single-threaded implementation of the trie.Map interface.
//
// It shares the structure of the concurrent engine (4-ary radix trie, deepen on
// collision, prune on remove) but takes no locks. It is meant for callers that
// own a map exclusively and as a reference model: the differential tests in
// lib/trie/testing replay the same operations against both engines.
//
// Thread-safety: No method of this map is safe for concurrent use.
package strie

// Package keyset implements a set of fixed-width keys on top of any trie.Map.
//
// A key set is a map whose values carry no information: it stores struct{}
// values and exposes membership, ordered (Min, Max) and nearest-key (Closest)
// queries. The backing map is injected through a factory, so the same set works
// with the concurrent and the sequential engine:
//
//	set := keyset.NewKeySet(func() trie.Map[struct{}] {
//		m, _ := ctrie.NewConcurrentMap[struct{}](&ctrie.Options{KeyWidth: 20})
//		return m
//	})
//	_, _ = set.Add(nodeID)
//	peer, ok, err := set.Closest(target, false, true)
//
// Operations the backing map does not support fail with an *Error carrying
// RetCUnsupportedOperation instead of panicking.
package keyset

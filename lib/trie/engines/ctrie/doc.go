// Package ctrie provides a concurrent implementation of the trie.Map interface.
//
// The map is a 4-ary radix trie over fixed-width byte keys. Each level consumes
// two bits of the key (most significant first), so a key of N bytes is resolved
// within at most 4·N levels. A node is either empty, holds exactly one entry
// (item), or is a list of four children.
//
// Structure
//
//   - Insert places a new key in the first empty slot of its path. If the slot
//     already holds a different key, both items are pushed down into a new list,
//     as deep as needed for their nibbles to diverge.
//   - Remove empties the slot and prunes on the way back: a list whose children
//     contain no list and at most one item collapses into that item.
//     Consequently a single remaining entry always ends up at the root.
//
// Concurrency
//
// Every node carries a sync.RWMutex. Operations descend with shared locks, keep
// them until they return, and lock at most one node exclusively: the node they
// modify. Writers in disjoint subtrees therefore run in parallel while readers
// never observe a half-built list. A writer that finds its target turned into a
// list between releasing the shared and taking the exclusive lock simply
// continues the descent from there.
//
// Predicates passed to InsertOrUpdateIf and RemoveIf run under the exclusive lock
// of the entry and must not call back into the same map.
//
// Metrics
//
// Every map registers counters for inserts, updates, rejected updates, removes,
// deepen and prune steps and lock upgrade retries in a VictoriaMetrics set. Pass
// a shared set via Options.Metrics to export them with the rest of a process.
//
// Usage
//
//	m, err := ctrie.NewConcurrentMap[string](&ctrie.Options{KeyWidth: 4})
//	if err != nil {
//		return err
//	}
//	_, _ = m.InsertOrUpdate([]byte{0, 0, 0, 1}, "one")
//	e, ok, _ := m.GetOrClosest([]byte{0, 0, 0, 2}, true, false)
package ctrie

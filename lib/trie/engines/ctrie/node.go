package ctrie

import (
	"bytes"
	"sync"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
)

type kind uint8

const (
	kindEmpty kind = iota // no entry
	kindItem              // exactly one entry
	kindList              // four children, one per nibble value
)

// node is one slot of the trie. Every node carries its own lock, which guards
// the kind and the fields that belong to it. The children array of a list is
// owned by the list: it is replaced only while the list is locked exclusively.
type node[V any] struct {
	mu       sync.RWMutex
	kind     kind
	key      []byte
	value    V
	children *[keyspace.Fanout]node[V]
}

// --------------------------------------------------------------------------
// State transitions (caller holds the exclusive lock or owns an unpublished node)
// --------------------------------------------------------------------------

func (n *node[V]) setEmpty() {
	var zero V
	n.kind, n.key, n.value, n.children = kindEmpty, nil, zero, nil
}

func (n *node[V]) setItem(key []byte, value V) {
	n.kind, n.key, n.value, n.children = kindItem, key, value, nil
}

func (n *node[V]) setList(children *[keyspace.Fanout]node[V]) {
	var zero V
	n.kind, n.key, n.value, n.children = kindList, nil, zero, children
}

// entry returns the item of n with a private copy of the key (caller holds a lock)
func (n *node[V]) entry() trie.Entry[V] {
	return trie.Entry[V]{Key: bytes.Clone(n.key), Value: n.value}
}

// --------------------------------------------------------------------------
// Read-side traversals. Each level is read-locked while its subtree is visited.
// --------------------------------------------------------------------------

func (n *node[V]) get(key []byte, depth int) (V, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	switch n.kind {
	case kindItem:
		if bytes.Equal(n.key, key) {
			return n.value, true
		}
	case kindList:
		return n.children[keyspace.Nibble(key, depth)].get(key, depth+1)
	}
	var zero V
	return zero, false
}

func (n *node[V]) min() (trie.Entry[V], bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	switch n.kind {
	case kindItem:
		return n.entry(), true
	case kindList:
		for i := range n.children {
			if e, ok := n.children[i].min(); ok {
				return e, true
			}
		}
	}
	return trie.Entry[V]{}, false
}

func (n *node[V]) max() (trie.Entry[V], bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	switch n.kind {
	case kindItem:
		return n.entry(), true
	case kindList:
		for i := len(n.children) - 1; i >= 0; i-- {
			if e, ok := n.children[i].max(); ok {
				return e, true
			}
		}
	}
	return trie.Entry[V]{}, false
}

// isEmpty is true for an empty node and for a list without items
func (n *node[V]) isEmpty() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	switch n.kind {
	case kindItem:
		return false
	case kindList:
		for i := range n.children {
			if !n.children[i].isEmpty() {
				return false
			}
		}
	}
	return true
}

// visit calls fn for every node of the subtree with its depth (root = 0).
// The node is read-locked while fn runs.
func (n *node[V]) visit(depth int, fn func(n *node[V], depth int)) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	fn(n, depth)
	if n.kind == kindList {
		for i := range n.children {
			n.children[i].visit(depth+1, fn)
		}
	}
}

func (n *node[V]) len() int {
	count := 0
	n.visit(0, func(n *node[V], _ int) {
		if n.kind == kindItem {
			count++
		}
	})
	return count
}

func (n *node[V]) depth() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	switch n.kind {
	case kindItem:
		return 1
	case kindList:
		deepest := 0
		for i := range n.children {
			deepest = max(deepest, n.children[i].depth())
		}
		return 1 + deepest
	}
	return 0
}

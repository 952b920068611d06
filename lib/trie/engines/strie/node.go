package strie

import (
	"bytes"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/cockroachdb/errors"
)

type kind uint8

const (
	kindEmpty kind = iota
	kindItem
	kindList
)

type node[V any] struct {
	kind     kind
	key      []byte
	value    V
	children *[keyspace.Fanout]node[V]
}

func (n *node[V]) setEmpty() {
	*n = node[V]{}
}

func (n *node[V]) setItem(key []byte, value V) {
	*n = node[V]{kind: kindItem, key: key, value: value}
}

func (n *node[V]) setList(children *[keyspace.Fanout]node[V]) {
	*n = node[V]{kind: kindList, children: children}
}

func (n *node[V]) entry() trie.Entry[V] {
	return trie.Entry[V]{Key: bytes.Clone(n.key), Value: n.value}
}

// --------------------------------------------------------------------------
// Writes
// --------------------------------------------------------------------------

func (n *node[V]) insert(key []byte, value V, shouldUpdate trie.UpdatePredicate[V], depth, maxDepth int) (trie.Status, error) {
	for n.kind == kindList {
		n = &n.children[keyspace.Nibble(key, depth)]
		depth++
	}

	if n.kind == kindEmpty {
		n.setItem(bytes.Clone(key), value)
		return trie.StatusInserted, nil
	}

	if bytes.Equal(n.key, key) {
		if !shouldUpdate(n.value, value) {
			return trie.StatusRejected, nil
		}
		n.value = value
		return trie.StatusUpdated, nil
	}

	children, err := deepen(n.key, n.value, bytes.Clone(key), value, depth, maxDepth)
	if err != nil {
		return trie.StatusRejected, err
	}
	n.setList(children)
	return trie.StatusInserted, nil
}

func deepen[V any](key1 []byte, value1 V, key2 []byte, value2 V, depth, maxDepth int) (*[keyspace.Fanout]node[V], error) {
	if depth >= maxDepth {
		return nil, errors.Wrapf(trie.ErrMaxDepth, "keys %s and %s at depth %d",
			keyspace.String(key1), keyspace.String(key2), depth)
	}

	children := new([keyspace.Fanout]node[V])
	i1, i2 := keyspace.Nibble(key1, depth), keyspace.Nibble(key2, depth)
	if i1 != i2 {
		children[i1].setItem(key1, value1)
		children[i2].setItem(key2, value2)
		return children, nil
	}

	sub, err := deepen(key1, value1, key2, value2, depth+1, maxDepth)
	if err != nil {
		return nil, err
	}
	children[i1].setList(sub)
	return children, nil
}

// remove returns whether key was removed and whether n changed shape
func (n *node[V]) remove(key []byte, shouldRemove trie.RemovePredicate[V], depth int) (removed, changed bool) {
	switch n.kind {
	case kindItem:
		if bytes.Equal(n.key, key) && shouldRemove(n.value) {
			n.setEmpty()
			return true, true
		}
		return false, false
	case kindList:
		removed, changed = n.children[keyspace.Nibble(key, depth)].remove(key, shouldRemove, depth+1)
		if !changed {
			return removed, false
		}
		return removed, n.prune(depth)
	}
	return false, false
}

// prune collapses a list without list children and with at most one item
func (n *node[V]) prune(depth int) bool {
	var last *node[V]
	items := 0
	for i := range n.children {
		switch n.children[i].kind {
		case kindList:
			return false
		case kindItem:
			items++
			last = &n.children[i]
		}
	}

	switch items {
	case 0:
		n.setEmpty()
	case 1:
		n.setItem(last.key, last.value)
	default:
		return false
	}
	plog.Debugf("pruned list at depth %d", depth)
	return true
}

// --------------------------------------------------------------------------
// Reads
// --------------------------------------------------------------------------

func (n *node[V]) get(key []byte) (V, bool) {
	for depth := 0; n.kind == kindList; depth++ {
		n = &n.children[keyspace.Nibble(key, depth)]
	}
	if n.kind == kindItem && bytes.Equal(n.key, key) {
		return n.value, true
	}
	var zero V
	return zero, false
}

func (n *node[V]) min() (trie.Entry[V], bool) {
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

func (n *node[V]) closest(nb *trie.Neighbours[V], depth int) {
	switch n.kind {
	case kindItem:
		nb.Offer(n.entry())
	case kindList:
		index := keyspace.Nibble(nb.Probe, depth)
		n.children[index].closest(nb, depth+1)
		if nb.HasExact() {
			return
		}
		for i := index - 1; i >= 0 && !nb.HasLesser(); i-- {
			if e, ok := n.children[i].max(); ok {
				nb.Offer(e)
			}
		}
		for i := index + 1; i < keyspace.Fanout && !nb.HasGreater(); i++ {
			if e, ok := n.children[i].min(); ok {
				nb.Offer(e)
			}
		}
	}
}

func (n *node[V]) closestByPrefix(key []byte, includeKey bool, depth int) (trie.Entry[V], bool) {
	switch n.kind {
	case kindItem:
		if includeKey || !bytes.Equal(n.key, key) {
			return n.entry(), true
		}
	case kindList:
		index := keyspace.Nibble(key, depth)
		if e, ok := n.children[index].closestByPrefix(key, includeKey, depth+1); ok {
			return e, true
		}
		for _, i := range keyspace.Siblings(index) {
			if e, ok := n.children[i].max(); ok {
				return e, true
			}
		}
	}
	return trie.Entry[V]{}, false
}

func (n *node[V]) visit(depth int, fn func(n *node[V], depth int)) {
	fn(n, depth)
	if n.kind == kindList {
		for i := range n.children {
			n.children[i].visit(depth+1, fn)
		}
	}
}

func (n *node[V]) depth() int {
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

package ctrie

import (
	"bytes"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
)

// --------------------------------------------------------------------------
// Remove
// --------------------------------------------------------------------------

// remove deletes key below n if shouldRemove accepts its value. The descent holds
// shared locks on every list of the path, so no ancestor can be pruned while a
// descendant is changed. On the way back each list that lost an entry is locked
// exclusively and pruned.
//
// changed reports whether n was emptied or collapsed, in which case the parent
// has to be pruned as well.
func (c *ctrieImpl[V]) remove(n *node[V], key []byte, shouldRemove trie.RemovePredicate[V], depth int) (removed, changed bool) {
	for {
		removed, changed, ok := c.removeDescend(n, key, shouldRemove, depth)
		if ok {
			if !changed {
				return removed, false
			}
			return removed, c.prune(n, depth)
		}
		if removed, changed, ok = c.removeLeaf(n, key, shouldRemove); ok {
			return removed, changed
		}
		c.metrics.retries.Inc()
	}
}

// removeDescend recurses into the matching child while n is a list.
// ok is false if n holds no children.
func (c *ctrieImpl[V]) removeDescend(n *node[V], key []byte, shouldRemove trie.RemovePredicate[V], depth int) (removed, changed, ok bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.kind != kindList {
		return false, false, false
	}
	removed, changed = c.remove(&n.children[keyspace.Nibble(key, depth)], key, shouldRemove, depth+1)
	return removed, changed, true
}

// removeLeaf empties n if it holds key and shouldRemove accepts the value.
// ok is false if n became a list after the shared lock was released.
func (c *ctrieImpl[V]) removeLeaf(n *node[V], key []byte, shouldRemove trie.RemovePredicate[V]) (removed, changed, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.kind {
	case kindList:
		return false, false, false
	case kindItem:
		if bytes.Equal(n.key, key) && shouldRemove(n.value) {
			n.setEmpty()
			return true, true, true
		}
	}
	return false, false, true
}

// --------------------------------------------------------------------------
// Prune
// --------------------------------------------------------------------------

// prune collapses the list n into its only item (or into an empty node) if
// none of its children is a list and at most one of them is occupied.
// Returns whether the parent needs to be pruned too.
func (c *ctrieImpl[V]) prune(n *node[V], depth int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.kind != kindList {
		// collapsed by a concurrent remove, the parent may still have to follow
		return true
	}

	var last *node[V]
	items := 0
	for i := range n.children {
		child := &n.children[i]
		child.mu.RLock()
		k := child.kind
		child.mu.RUnlock()

		switch k {
		case kindList:
			return false
		case kindItem:
			items++
			last = child
		}
	}

	switch items {
	case 0:
		n.setEmpty()
	case 1:
		// nobody else can reach the children while n is locked exclusively
		n.setItem(last.key, last.value)
	default:
		return false
	}

	c.metrics.prunes.Inc()
	plog.Debugf("pruned list at depth %d", depth)
	return true
}

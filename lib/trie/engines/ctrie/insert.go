package ctrie

import (
	"bytes"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/cockroachdb/errors"
)

// --------------------------------------------------------------------------
// Insert
// --------------------------------------------------------------------------

// insert places key below n. Lists are passed under a shared lock; the node that
// ends the path is re-entered exclusively. If it turned into a list in between,
// the step is repeated on the same node.
func (c *ctrieImpl[V]) insert(n *node[V], key []byte, value V, shouldUpdate trie.UpdatePredicate[V], depth int) (trie.Status, error) {
	for {
		if status, ok, err := c.insertDescend(n, key, value, shouldUpdate, depth); ok {
			return status, err
		}
		if status, ok, err := c.insertLeaf(n, key, value, shouldUpdate, depth); ok {
			return status, err
		}
		c.metrics.retries.Inc()
	}
}

// insertDescend recurses into the matching child while n is a list.
// ok is false if n holds no children and has to be written.
func (c *ctrieImpl[V]) insertDescend(n *node[V], key []byte, value V, shouldUpdate trie.UpdatePredicate[V], depth int) (trie.Status, bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.kind != kindList {
		return trie.StatusRejected, false, nil
	}
	status, err := c.insert(&n.children[keyspace.Nibble(key, depth)], key, value, shouldUpdate, depth+1)
	return status, true, err
}

// insertLeaf writes an empty or item node under the exclusive lock.
// ok is false if n became a list after the shared lock was released.
func (c *ctrieImpl[V]) insertLeaf(n *node[V], key []byte, value V, shouldUpdate trie.UpdatePredicate[V], depth int) (trie.Status, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.kind {
	case kindEmpty:
		n.setItem(bytes.Clone(key), value)
		return trie.StatusInserted, true, nil

	case kindItem:
		if bytes.Equal(n.key, key) {
			if !shouldUpdate(n.value, value) {
				return trie.StatusRejected, true, nil
			}
			n.value = value
			return trie.StatusUpdated, true, nil
		}

		children, err := c.deepen(n.key, n.value, bytes.Clone(key), value, depth)
		if err != nil {
			return trie.StatusRejected, true, err
		}
		n.setList(children)
		return trie.StatusInserted, true, nil

	default:
		return trie.StatusRejected, false, nil
	}
}

// --------------------------------------------------------------------------
// Deepen
// --------------------------------------------------------------------------

// deepen builds the children of a new list holding two items with distinct keys.
// The result is unpublished until the caller installs it, so no locks are taken.
func (c *ctrieImpl[V]) deepen(key1 []byte, value1 V, key2 []byte, value2 V, depth int) (*[keyspace.Fanout]node[V], error) {
	if depth >= c.maxDepth {
		return nil, errors.Wrapf(trie.ErrMaxDepth, "keys %s and %s at depth %d",
			keyspace.String(key1), keyspace.String(key2), depth)
	}

	c.metrics.deepens.Inc()
	plog.Debugf("deepen at depth %d", depth)

	children := new([keyspace.Fanout]node[V])
	i1, i2 := keyspace.Nibble(key1, depth), keyspace.Nibble(key2, depth)
	if i1 != i2 {
		children[i1].setItem(key1, value1)
		children[i2].setItem(key2, value2)
		return children, nil
	}

	sub, err := c.deepen(key1, value1, key2, value2, depth+1)
	if err != nil {
		return nil, err
	}
	children[i1].setList(sub)
	return children, nil
}

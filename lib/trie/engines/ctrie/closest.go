package ctrie

import (
	"bytes"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
)

// closest walks the path of the probe and offers the item at its end. On the
// way back up, every list fills a missing side with the nearest occupied sibling:
// the maximum of the closest lower slot and the minimum of the closest higher slot.
func (n *node[V]) closest(nb *trie.Neighbours[V], depth int) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	switch n.kind {
	case kindItem:
		nb.Offer(n.entry())

	case kindList:
		index := keyspace.Nibble(nb.Probe, depth)
		n.children[index].closest(nb, depth+1)
		if nb.HasExact() {
			return
		}

		if !nb.HasLesser() {
			for i := index - 1; i >= 0; i-- {
				if e, ok := n.children[i].max(); ok {
					nb.Offer(e)
					break
				}
			}
		}
		if !nb.HasGreater() {
			for i := index + 1; i < keyspace.Fanout; i++ {
				if e, ok := n.children[i].min(); ok {
					nb.Offer(e)
					break
				}
			}
		}
	}
}

// closestByPrefix follows the path of key. If the path ends in an empty slot (or
// in the excluded key itself), the largest entry of the first occupied sibling
// slot is taken, so the result shares as many leading nibbles with key as possible.
func (n *node[V]) closestByPrefix(key []byte, includeKey bool, depth int) (trie.Entry[V], bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

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

package trie

import (
	"bytes"

	"github.com/ValentinKolb/qtrie/lib/keyspace"
)

// Neighbours collects the candidates of a nearest-key search.
//
// Engines walk down the path of the probe and offer every entry they meet:
// the item at the end of the path and the nearest occupied siblings found on
// the way back up. Neighbours keeps the exact match, the greatest key below the
// probe (Lesser) and the smallest key above it (Greater).
type Neighbours[V any] struct {
	Probe      []byte
	IncludeKey bool

	exact, lesser, greater          Entry[V]
	hasExact, hasLesser, hasGreater bool
}

// NewNeighbours creates an empty candidate set for probe
func NewNeighbours[V any](probe []byte, includeKey bool) *Neighbours[V] {
	return &Neighbours[V]{Probe: probe, IncludeKey: includeKey}
}

// Offer classifies an entry relative to the probe.
// An exact match is ignored unless IncludeKey is set.
func (n *Neighbours[V]) Offer(e Entry[V]) {
	switch c := bytes.Compare(e.Key, n.Probe); {
	case c == 0:
		if n.IncludeKey {
			n.exact, n.hasExact = e, true
		}
	case c < 0:
		if !n.hasLesser || bytes.Compare(e.Key, n.lesser.Key) > 0 {
			n.lesser, n.hasLesser = e, true
		}
	default:
		if !n.hasGreater || bytes.Compare(e.Key, n.greater.Key) < 0 {
			n.greater, n.hasGreater = e, true
		}
	}
}

// HasExact reports whether the probe itself was found (and is included)
func (n *Neighbours[V]) HasExact() bool { return n.hasExact }

// HasLesser reports whether a key below the probe was found
func (n *Neighbours[V]) HasLesser() bool { return n.hasLesser }

// HasGreater reports whether a key above the probe was found
func (n *Neighbours[V]) HasGreater() bool { return n.hasGreater }

// Best picks the closest candidate under the cyclic distance metric.
//
// If loopAround is set and one side is missing, the search wraps around the key
// space: a missing lesser key is replaced by the global maximum and a missing
// greater key by the global minimum. min and max are only called in that case.
func (n *Neighbours[V]) Best(loopAround bool, min, max func() (Entry[V], bool)) (Entry[V], bool) {
	if n.hasExact {
		return n.exact, true
	}

	candidates := make([]Entry[V], 0, 4)
	if n.hasLesser {
		candidates = append(candidates, n.lesser)
	}
	if n.hasGreater {
		candidates = append(candidates, n.greater)
	}

	if loopAround {
		if !n.hasLesser {
			if e, ok := max(); ok && !bytes.Equal(e.Key, n.Probe) {
				candidates = append(candidates, e)
			}
		}
		if !n.hasGreater {
			if e, ok := min(); ok && !bytes.Equal(e.Key, n.Probe) {
				candidates = append(candidates, e)
			}
		}
	}

	if len(candidates) == 0 {
		return Entry[V]{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if keyspace.Closer(n.Probe, c.Key, best.Key) {
			best = c
		}
	}
	return best, true
}

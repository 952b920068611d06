package ctrie

import (
	"fmt"

	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/VictoriaMetrics/metrics"
)

// opMetrics holds the operation counters of one map instance
type opMetrics struct {
	set      *metrics.Set
	inserts  *metrics.Counter
	updates  *metrics.Counter
	rejected *metrics.Counter
	removes  *metrics.Counter
	prunes   *metrics.Counter
	deepens  *metrics.Counter
	retries  *metrics.Counter
}

func newOpMetrics(set *metrics.Set, name string) *opMetrics {
	if set == nil {
		set = metrics.NewSet()
	}
	counter := func(metric, op string) *metrics.Counter {
		return set.GetOrCreateCounter(fmt.Sprintf(`%s{engine=%q,map=%q,op=%q}`, metric, trie.ImplConcurrent, name, op))
	}
	return &opMetrics{
		set:      set,
		inserts:  counter("qtrie_ops_total", "insert"),
		updates:  counter("qtrie_ops_total", "update"),
		rejected: counter("qtrie_ops_total", "rejected"),
		removes:  counter("qtrie_ops_total", "remove"),
		prunes:   counter("qtrie_restructure_total", "prune"),
		deepens:  counter("qtrie_restructure_total", "deepen"),
		retries:  counter("qtrie_lock_retries_total", "upgrade"),
	}
}

func (m *opMetrics) record(status trie.Status) {
	switch status {
	case trie.StatusInserted:
		m.inserts.Inc()
	case trie.StatusUpdated:
		m.updates.Inc()
	case trie.StatusRejected:
		m.rejected.Inc()
	}
}

// snapshot returns the current counter values for GetInfo
func (m *opMetrics) snapshot() map[string]uint64 {
	return map[string]uint64{
		"inserts":  m.inserts.Get(),
		"updates":  m.updates.Get(),
		"rejected": m.rejected.Get(),
		"removes":  m.removes.Get(),
		"prunes":   m.prunes.Get(),
		"deepens":  m.deepens.Get(),
		"retries":  m.retries.Get(),
	}
}

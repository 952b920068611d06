package strie

import (
	"unsafe"

	"github.com/ValentinKolb/qtrie/lib/common"
	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/ValentinKolb/qtrie/lib/trie/util"
	"github.com/lni/dragonboat/v4/logger"
)

var plog = logger.GetLogger(common.LoggerSequential)

const defaultKeyWidth = 32

// strieImpl is the lock free single-owner variant of the trie
type strieImpl[V any] struct {
	width    int
	maxDepth int
	root     node[V]
	entries  int
}

// Options configures a sequential map
type Options struct {
	KeyWidth int // Width of every key in bytes
}

// DefaultOptions returns options for 32 byte keys
func DefaultOptions() *Options {
	return &Options{KeyWidth: defaultKeyWidth}
}

// NewSequentialMap creates an empty map with the specified options (optional)
func NewSequentialMap[V any](opts *Options) (trie.Map[V], error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := trie.CheckWidth(opts.KeyWidth); err != nil {
		return nil, err
	}
	return &strieImpl[V]{
		width:    opts.KeyWidth,
		maxDepth: keyspace.MaxDepth(opts.KeyWidth),
	}, nil
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

func (s *strieImpl[V]) InsertOrUpdate(key []byte, value V) (bool, error) {
	status, err := s.InsertOrUpdateIf(key, value, trie.AlwaysUpdate[V])
	return status != trie.StatusRejected, err
}

func (s *strieImpl[V]) InsertOrUpdateIf(key []byte, value V, shouldUpdate trie.UpdatePredicate[V]) (trie.Status, error) {
	if err := trie.CheckKey(key, s.width); err != nil {
		return trie.StatusRejected, err
	}
	status, err := s.root.insert(key, value, shouldUpdate, 0, s.maxDepth)
	if err != nil {
		plog.Errorf("insert of %s failed: %v", keyspace.String(key), err)
		return status, err
	}
	if status == trie.StatusInserted {
		s.entries++
	}
	return status, nil
}

func (s *strieImpl[V]) Remove(key []byte) (bool, error) {
	return s.RemoveIf(key, trie.AlwaysRemove[V])
}

func (s *strieImpl[V]) RemoveIf(key []byte, shouldRemove trie.RemovePredicate[V]) (bool, error) {
	if err := trie.CheckKey(key, s.width); err != nil {
		return false, err
	}
	removed, _ := s.root.remove(key, shouldRemove, 0)
	if removed {
		s.entries--
	}
	return removed, nil
}

func (s *strieImpl[V]) Clear() {
	s.root.setEmpty()
	s.entries = 0
}

// --------------------------------------------------------------------------
// Query Operations
// --------------------------------------------------------------------------

func (s *strieImpl[V]) Get(key []byte) (V, bool) {
	if len(key) != s.width {
		var zero V
		return zero, false
	}
	return s.root.get(key)
}

func (s *strieImpl[V]) Min() (trie.Entry[V], bool) {
	return s.root.min()
}

func (s *strieImpl[V]) Max() (trie.Entry[V], bool) {
	return s.root.max()
}

func (s *strieImpl[V]) GetOrClosest(key []byte, includeKey, loopAround bool) (trie.Entry[V], bool, error) {
	if err := trie.CheckKey(key, s.width); err != nil {
		return trie.Entry[V]{}, false, err
	}
	nb := trie.NewNeighbours[V](key, includeKey)
	s.root.closest(nb, 0)
	e, ok := nb.Best(loopAround, s.root.min, s.root.max)
	return e, ok, nil
}

func (s *strieImpl[V]) GetOrClosestByPrefix(key []byte, includeKey bool) (trie.Entry[V], bool, error) {
	if err := trie.CheckKey(key, s.width); err != nil {
		return trie.Entry[V]{}, false, err
	}
	e, ok := s.root.closestByPrefix(key, includeKey, 0)
	return e, ok, nil
}

// Len is tracked on every write, so it is O(1) here
func (s *strieImpl[V]) Len() int {
	return s.entries
}

func (s *strieImpl[V]) IsEmpty() bool {
	return s.entries == 0
}

// --------------------------------------------------------------------------
// Diagnostics
// --------------------------------------------------------------------------

func (s *strieImpl[V]) Depth() int {
	return s.root.depth()
}

func (s *strieImpl[V]) KeyWidth() int {
	return s.width
}

func (s *strieImpl[V]) MemorySize() int {
	nodeSize := int(unsafe.Sizeof(s.root))
	size := 0
	s.root.visit(0, func(n *node[V], _ int) {
		size += nodeSize
		if n.kind == kindItem {
			size += len(n.key)
		}
	})
	return size
}

func (s *strieImpl[V]) UsedPercent() float64 {
	var zero V
	payload := (s.width + int(unsafe.Sizeof(zero))) * s.entries
	if size := s.MemorySize(); size > 0 {
		return float64(payload) / float64(size)
	}
	return 0
}

func (s *strieImpl[V]) SupportsFeature(feature trie.Feature) bool {
	supported := trie.FeatureGet |
		trie.FeatureInsertOrUpdate |
		trie.FeatureRemove |
		trie.FeatureMinMax |
		trie.FeatureClosest
	return supported&feature == feature
}

func (s *strieImpl[V]) GetInfo() trie.MapInfo {
	histogram := util.NewDepthHistogram(s.maxDepth)
	var lists int
	s.root.visit(0, func(n *node[V], d int) {
		switch n.kind {
		case kindItem:
			histogram.AddSample(d)
		case kindList:
			lists++
		}
	})

	meta := &struct {
		ListNodes    int       `json:"list_nodes"`
		AvgItemDepth float64   `json:"avg_item_depth"`
		ItemDepthP50 int       `json:"item_depth_p50"`
		ItemDepthP99 int       `json:"item_depth_p99"`
		ItemDepths   []float64 `json:"item_depth_distribution"`
	}{
		ListNodes:    lists,
		AvgItemDepth: histogram.Average(),
		ItemDepthP50: histogram.Percentile(50),
		ItemDepthP99: histogram.Percentile(99),
		ItemDepths:   histogram.Distribution(),
	}

	return trie.MapInfo{
		SizeBytes:   s.MemorySize(),
		Engine:      trie.ImplSequential,
		KeyWidth:    s.width,
		Entries:     s.entries,
		Depth:       s.Depth(),
		UsedPercent: s.UsedPercent(),
		SupportedFeatures: []trie.Feature{
			trie.FeatureGet, trie.FeatureInsertOrUpdate, trie.FeatureRemove,
			trie.FeatureMinMax, trie.FeatureClosest,
		},
		Metadata: meta,
	}
}

package ctrie

import (
	"unsafe"

	"github.com/ValentinKolb/qtrie/lib/common"
	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/ValentinKolb/qtrie/lib/trie/util"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var plog = logger.GetLogger(common.LoggerConcurrent)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	defaultKeyWidth = 32        // SHA-256 sized keys
	defaultName     = "default" // metrics label of unnamed maps
)

// --------------------------------------------------------------------------
// Core structure
// --------------------------------------------------------------------------

// ctrieImpl is a 4-ary radix trie with one read-write lock per node.
//
// Locking protocol: operations lock nodes top-down in tree order and keep the
// shared lock of every list on their path until they return. At most one node
// per operation is held exclusively, always the deepest one. Since all locks
// are taken in the same order no cycle of waiting operations can form.
type ctrieImpl[V any] struct {
	width    int
	maxDepth int
	name     string
	root     node[V]
	metrics  *opMetrics
}

// Metadata is the engine specific part of trie.MapInfo
type Metadata struct {
	Name             string                 `json:"name"`
	ListNodes        int                    `json:"list_nodes"`
	ItemNodes        int                    `json:"item_nodes"`
	EmptyNodes       int                    `json:"empty_nodes"`
	AvgItemDepth     float64                `json:"avg_item_depth"`
	ItemDepthP50     int                    `json:"item_depth_p50"`
	ItemDepthP99     int                    `json:"item_depth_p99"`
	ItemDepths       []float64              `json:"item_depth_distribution"` // percent of items per depth
	RootDistribution util.DistributionStats `json:"root_slot_distribution"`  // items per top-level slot
	Operations       map[string]uint64      `json:"operations"`
	Info             string                 `json:"info"`
}

// Options configures a concurrent map
type Options struct {
	KeyWidth int          // Width of every key in bytes
	Metrics  *metrics.Set // Set the operation counters are registered in (nil = private set)
	Name     string       // Value of the "map" label of the counters
}

// DefaultOptions returns options for 32 byte keys with private metrics
func DefaultOptions() *Options {
	return &Options{
		KeyWidth: defaultKeyWidth,
		Name:     defaultName,
	}
}

// --------------------------------------------------------------------------
// Initialization
// --------------------------------------------------------------------------

// NewConcurrentMap creates an empty map with the specified options (optional)
func NewConcurrentMap[V any](opts *Options) (trie.Map[V], error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := trie.CheckWidth(opts.KeyWidth); err != nil {
		return nil, err
	}
	name := opts.Name
	if name == "" {
		name = defaultName
	}

	return &ctrieImpl[V]{
		width:    opts.KeyWidth,
		maxDepth: keyspace.MaxDepth(opts.KeyWidth),
		name:     name,
		metrics:  newOpMetrics(opts.Metrics, name),
	}, nil
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// InsertOrUpdate inserts the key or overwrites its value.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) InsertOrUpdate(key []byte, value V) (bool, error) {
	status, err := c.InsertOrUpdateIf(key, value, trie.AlwaysUpdate[V])
	return status != trie.StatusRejected, err
}

// InsertOrUpdateIf inserts the key if absent, otherwise lets shouldUpdate decide.
// shouldUpdate runs while the entry is locked exclusively and must not call back
// into the map.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) InsertOrUpdateIf(key []byte, value V, shouldUpdate trie.UpdatePredicate[V]) (trie.Status, error) {
	if err := trie.CheckKey(key, c.width); err != nil {
		return trie.StatusRejected, err
	}

	status, err := c.insert(&c.root, key, value, shouldUpdate, 0)
	if err != nil {
		plog.Errorf("insert of %s failed: %v", keyspace.String(key), err)
		return status, err
	}
	c.metrics.record(status)
	return status, nil
}

// Remove deletes the key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) Remove(key []byte) (bool, error) {
	return c.RemoveIf(key, trie.AlwaysRemove[V])
}

// RemoveIf deletes the key if shouldRemove accepts its value and prunes the
// lists left behind. shouldRemove must not call back into the map.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) RemoveIf(key []byte, shouldRemove trie.RemovePredicate[V]) (bool, error) {
	if err := trie.CheckKey(key, c.width); err != nil {
		return false, err
	}

	removed, _ := c.remove(&c.root, key, shouldRemove, 0)
	if removed {
		c.metrics.removes.Inc()
	}
	return removed, nil
}

// Clear drops all entries. It waits for running operations to leave the trie.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) Clear() {
	c.root.mu.Lock()
	defer c.root.mu.Unlock()

	c.root.setEmpty()
	plog.Debugf("map %s cleared", c.name)
}

// --------------------------------------------------------------------------
// Query Operations
// --------------------------------------------------------------------------

// Get retrieves the value of key. Keys of the wrong width are never found.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) Get(key []byte) (V, bool) {
	if len(key) != c.width {
		var zero V
		return zero, false
	}
	return c.root.get(key, 0)
}

// Min returns the entry with the smallest key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) Min() (trie.Entry[V], bool) {
	return c.root.min()
}

// Max returns the entry with the largest key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) Max() (trie.Entry[V], bool) {
	return c.root.max()
}

// GetOrClosest returns the entry nearest to key under the cyclic distance.
// The wrap-around candidates are read after the main walk, so under concurrent
// writes they may reflect a slightly newer state than the neighbours.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) GetOrClosest(key []byte, includeKey, loopAround bool) (trie.Entry[V], bool, error) {
	if err := trie.CheckKey(key, c.width); err != nil {
		return trie.Entry[V]{}, false, err
	}

	nb := trie.NewNeighbours[V](key, includeKey)
	c.root.closest(nb, 0)
	e, ok := nb.Best(loopAround, c.root.min, c.root.max)
	return e, ok, nil
}

// GetOrClosestByPrefix returns the entry sharing the longest prefix with key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) GetOrClosestByPrefix(key []byte, includeKey bool) (trie.Entry[V], bool, error) {
	if err := trie.CheckKey(key, c.width); err != nil {
		return trie.Entry[V]{}, false, err
	}
	e, ok := c.root.closestByPrefix(key, includeKey, 0)
	return e, ok, nil
}

// Len counts the entries. The count is exact if no writes run concurrently.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) Len() int {
	return c.root.len()
}

// IsEmpty reports whether the map holds no entries.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *ctrieImpl[V]) IsEmpty() bool {
	return c.root.isEmpty()
}

// --------------------------------------------------------------------------
// Diagnostics
// --------------------------------------------------------------------------

func (c *ctrieImpl[V]) Depth() int {
	return c.root.depth()
}

func (c *ctrieImpl[V]) KeyWidth() int {
	return c.width
}

// MemorySize estimates the bytes held by the trie: one node header per slot
// (values are stored inline) plus the key bytes of every item.
func (c *ctrieImpl[V]) MemorySize() int {
	nodeSize := int(unsafe.Sizeof(c.root))
	size := 0
	c.root.visit(0, func(n *node[V], _ int) {
		size += nodeSize
		if n.kind == kindItem {
			size += len(n.key)
		}
	})
	return size
}

// UsedPercent returns the share of MemorySize taken by keys and values
func (c *ctrieImpl[V]) UsedPercent() float64 {
	var zero V
	payload := (c.width + int(unsafe.Sizeof(zero))) * c.Len()
	if size := c.MemorySize(); size > 0 {
		return float64(payload) / float64(size)
	}
	return 0
}

// SupportsFeature checks if this implementation supports a specific feature
func (c *ctrieImpl[V]) SupportsFeature(feature trie.Feature) bool {
	supported := trie.FeatureGet |
		trie.FeatureInsertOrUpdate |
		trie.FeatureRemove |
		trie.FeatureMinMax |
		trie.FeatureClosest |
		trie.FeatureConcurrent |
		trie.FeatureMetrics
	return supported&feature == feature
}

// GetInfo walks the whole trie once and reports its shape.
//
// Thread-safety: This method is thread-safe. Under concurrent writes the numbers
// are a mix of states seen during the walk.
func (c *ctrieImpl[V]) GetInfo() trie.MapInfo {
	var zero V
	nodeSize := int(unsafe.Sizeof(c.root))
	histogram := util.NewDepthHistogram(c.maxDepth)

	var lists, empties, size, depth int
	slots := make([]float64, keyspace.Fanout)

	c.root.visit(0, func(n *node[V], d int) {
		size += nodeSize
		switch n.kind {
		case kindItem:
			size += len(n.key)
			depth = max(depth, d+1)
			histogram.AddSample(d)
			if d > 0 {
				// d > 0 implies the key went through the root list
				slots[keyspace.Nibble(n.key, 0)]++
			}
		case kindList:
			lists++
			depth = max(depth, d+1)
		default:
			empties++
		}
	})

	entries := int(histogram.GetCount())
	used := 0.0
	if size > 0 {
		used = float64((c.width+int(unsafe.Sizeof(zero)))*entries) / float64(size)
	}

	meta := &Metadata{
		Name:             c.name,
		ListNodes:        lists,
		ItemNodes:        entries,
		EmptyNodes:       empties,
		AvgItemDepth:     histogram.Average(),
		ItemDepthP50:     histogram.Percentile(50),
		ItemDepthP99:     histogram.Percentile(99),
		ItemDepths:       histogram.Distribution(),
		RootDistribution: util.NewDistributionStats(slots),
		Operations:       c.metrics.snapshot(),
		Info:             "SizeBytes is an estimate based on node header sizes.",
	}

	return trie.MapInfo{
		SizeBytes:   size,
		Engine:      trie.ImplConcurrent,
		KeyWidth:    c.width,
		Entries:     entries,
		Depth:       depth,
		UsedPercent: used,
		SupportedFeatures: []trie.Feature{
			trie.FeatureGet, trie.FeatureInsertOrUpdate, trie.FeatureRemove,
			trie.FeatureMinMax, trie.FeatureClosest,
			trie.FeatureConcurrent, trie.FeatureMetrics,
		},
		Metadata: meta,
	}
}

package trie

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplConcurrent Implementation = "ctrie"
	ImplSequential Implementation = "strie"
)

// Feature represents map features as bit flags
type Feature uint64

const (
	FeatureGet            Feature = 1 << iota // Support for Get operations
	FeatureInsertOrUpdate                     // Support for InsertOrUpdate(If) operations
	FeatureRemove                             // Support for Remove(If) operations
	FeatureMinMax                             // Support for Min and Max queries
	FeatureClosest                            // Support for GetOrClosest and GetOrClosestByPrefix queries
	FeatureConcurrent                         // All operations may be called from multiple goroutines
	FeatureMetrics                            // Operation counters are exported as metrics
)

func (f Feature) String() string {
	switch f {
	case FeatureGet:
		return "Get"
	case FeatureInsertOrUpdate:
		return "InsertOrUpdate"
	case FeatureRemove:
		return "Remove"
	case FeatureMinMax:
		return "MinMax"
	case FeatureClosest:
		return "Closest"
	case FeatureConcurrent:
		return "Concurrent"
	case FeatureMetrics:
		return "Metrics"
	default:
		return "Unknown"
	}
}

// Status is the outcome of an InsertOrUpdateIf call
type Status int

const (
	StatusInserted Status = iota // the key was not present and has been inserted
	StatusUpdated                // the key was present and the predicate accepted the new value
	StatusRejected               // the key was present and the predicate declined the new value
)

func (s Status) String() string {
	switch s {
	case StatusInserted:
		return "Inserted"
	case StatusUpdated:
		return "Updated"
	case StatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Entry is a key-value pair returned by ordered and nearest-key queries.
// Key is always a copy owned by the caller.
type Entry[V any] struct {
	Key   []byte
	Value V
}

// UpdatePredicate decides whether a stored value (old) is replaced by a new one
type UpdatePredicate[V any] func(old, new V) bool

// RemovePredicate decides whether a stored value may be removed
type RemovePredicate[V any] func(value V) bool

// AlwaysUpdate accepts every update
func AlwaysUpdate[V any](_, _ V) bool { return true }

// NeverUpdate declines every update, turning InsertOrUpdateIf into insert-if-absent
func NeverUpdate[V any](_, _ V) bool { return false }

// AlwaysRemove accepts every removal
func AlwaysRemove[V any](_ V) bool { return true }

type MapInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	Engine            Implementation `json:"engine"`
	KeyWidth          int            `json:"key_width"`
	Entries           int            `json:"entries"`
	Depth             int            `json:"depth"`
	UsedPercent       float64        `json:"used_percent"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// MapFactory is a function type that creates a new map.
// It is used by composing packages and the test suites to stay engine agnostic.
type MapFactory[V any] func() Map[V]

// --------------------------------------------------------------------------
// Map Interface
// --------------------------------------------------------------------------

// Map defines an associative container keyed by fixed-width byte-array keys.
// The key width is fixed when the map is created; every key passed to a mutating
// or nearest-key operation must have exactly KeyWidth() bytes.
// Implementations can vary in their feature support, which can be queried with SupportsFeature.
type Map[V any] interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// InsertOrUpdate inserts the key or overwrites its value.
	// Returns true unless the write was rejected (which AlwaysUpdate never does).
	InsertOrUpdate(key []byte, value V) (ok bool, err error)

	// InsertOrUpdateIf inserts the key if it is absent. If it is present, shouldUpdate
	// is called with the stored and the new value and decides whether to overwrite.
	InsertOrUpdateIf(key []byte, value V, shouldUpdate UpdatePredicate[V]) (status Status, err error)

	// Remove deletes the key. Returns whether an entry was removed.
	Remove(key []byte) (removed bool, err error)

	// RemoveIf deletes the key if shouldRemove accepts its stored value.
	// Returns whether an entry was removed.
	RemoveIf(key []byte, shouldRemove RemovePredicate[V]) (removed bool, err error)

	// Clear removes all entries
	Clear()

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was found.
	Get(key []byte) (value V, loaded bool)

	// Min returns the entry with the smallest key (big-endian order)
	Min() (entry Entry[V], ok bool)

	// Max returns the entry with the largest key (big-endian order)
	Max() (entry Entry[V], ok bool)

	// GetOrClosest returns the entry closest to key under the cyclic distance metric.
	// An exact match is only returned if includeKey is set. If loopAround is set, the
	// search wraps around the ends of the key space, otherwise only the nearest lesser
	// and greater keys are candidates.
	GetOrClosest(key []byte, includeKey, loopAround bool) (entry Entry[V], ok bool, err error)

	// GetOrClosestByPrefix returns an entry sharing the longest possible key prefix with key.
	// It follows the path of key; where the slot of key is empty it takes the largest
	// entry of the first occupied sibling slot (see keyspace.Siblings). An exact match
	// is only returned if includeKey is set.
	GetOrClosestByPrefix(key []byte, includeKey bool) (entry Entry[V], ok bool, err error)

	// Len returns the number of entries
	Len() (n int)

	// IsEmpty reports whether the map holds no entries
	IsEmpty() (empty bool)

	// --------------------------------------------------------------------------
	// Diagnostics
	// --------------------------------------------------------------------------

	// Depth returns the height of the trie (0 = empty, 1 = a single entry at the root)
	Depth() (depth int)

	// KeyWidth returns the fixed key width in bytes
	KeyWidth() (width int)

	// MemorySize returns an estimate of the bytes used by the trie
	MemorySize() (bytes int)

	// UsedPercent returns the share of MemorySize occupied by keys and values
	UsedPercent() (ratio float64)

	// SupportsFeature checks if the implementation supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the map
	GetInfo() (info MapInfo)
}

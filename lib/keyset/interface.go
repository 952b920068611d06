package keyset

import (
	"fmt"

	"github.com/ValentinKolb/qtrie/lib/trie"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// MapFactory creates the map backing a key set
type MapFactory = trie.MapFactory[struct{}]

// IKeySet is a set of fixed-width keys with ordered and nearest-key queries.
// Read operations on keys of the wrong width report "not found"; write and
// nearest-key operations return trie.ErrKeyWidth.
type IKeySet interface {
	// Add inserts a key. Returns whether the key was new.
	Add(key []byte) (added bool, err error)
	// Has reports whether a key is in the set
	Has(key []byte) (found bool, err error)
	// Remove deletes a key. Returns whether the key was present.
	Remove(key []byte) (removed bool, err error)
	// Closest returns the key nearest to probe under the cyclic distance metric
	// (see trie.Map.GetOrClosest for includeKey and loopAround).
	Closest(probe []byte, includeKey, loopAround bool) (key []byte, found bool, err error)
	// ClosestByPrefix returns the key sharing the longest prefix with probe
	// (see trie.Map.GetOrClosestByPrefix).
	ClosestByPrefix(probe []byte, includeKey bool) (key []byte, found bool, err error)
	// Min returns the smallest key
	Min() (key []byte, found bool, err error)
	// Max returns the largest key
	Max() (key []byte, found bool, err error)
	// Len returns the number of keys
	Len() (n int)
	// Clear removes all keys
	Clear()
	// GetInfo returns metadata about the map underlying the set
	GetInfo() (info trie.MapInfo)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps a return code and a message
type Error struct {
	Code RetCode
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("KeySetError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: operation executed successfully
	RetCUnsupportedOperation                // 1: operation is not supported by the underlying map
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	default:
		return "Unknown"
	}
}

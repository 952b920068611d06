package trie

import "github.com/cockroachdb/errors"

var (
	// ErrKeyWidth is returned when a key does not have the width of the map
	ErrKeyWidth = errors.New("key width mismatch")
	// ErrInvalidKeyWidth is returned when a map is created with a width below one byte
	ErrInvalidKeyWidth = errors.New("invalid key width")
	// ErrMaxDepth is returned when the trie would have to grow beyond 4 levels per key byte
	ErrMaxDepth = errors.New("maximum trie depth reached")
)

// CheckKey validates the width of a key against the width of a map
func CheckKey(key []byte, width int) error {
	if len(key) != width {
		return errors.Wrapf(ErrKeyWidth, "got %d bytes, want %d", len(key), width)
	}
	return nil
}

// CheckWidth validates the key width requested for a new map
func CheckWidth(width int) error {
	if width < 1 {
		return errors.Wrapf(ErrInvalidKeyWidth, "%d", width)
	}
	return nil
}

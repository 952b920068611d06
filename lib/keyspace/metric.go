package keyspace

import "bytes"

// --------------------------------------------------------------------------
// Ordering
// --------------------------------------------------------------------------

// Compare orders two keys by unsigned big-endian magnitude.
// The result is 0 if a == b, -1 if a < b, and +1 if a > b.
func Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}

// --------------------------------------------------------------------------
// Cyclic metric
// --------------------------------------------------------------------------

// HalfPoint returns the half-space threshold 0x80 00 .. 00 of the given width.
// A difference above this value is shorter the other way around the key space.
func HalfPoint(width int) []byte {
	half := make([]byte, width)
	if width > 0 {
		half[0] = 0x80
	}
	return half
}

// Sub returns (a - b) mod 2^(8N) where N is the width of a.
// b must be at least as long as a.
func Sub(a, b []byte) []byte {
	result := make([]byte, len(a))
	borrow := 0
	for i := len(a) - 1; i >= 0; i-- {
		d := int(a[i]) - int(b[i]) - borrow
		if d < 0 {
			d += 256
			borrow = 1
		} else {
			borrow = 0
		}
		result[i] = byte(d)
	}
	return result
}

// Distance returns the cyclic distance min(|a-b|, 2^(8N) - |a-b|) between two keys.
func Distance(a, b []byte) []byte {
	diff := Sub(a, b)
	if bytes.Compare(diff, HalfPoint(len(a))) > 0 {
		return Sub(b, a)
	}
	return diff
}

// Closer reports whether candidate a is strictly preferred over candidate b as
// the nearest key to probe. Equal distances resolve to the numerically smaller key.
func Closer(probe, a, b []byte) bool {
	switch bytes.Compare(Distance(probe, a), Distance(probe, b)) {
	case -1:
		return true
	case 1:
		return false
	default:
		return bytes.Compare(a, b) < 0
	}
}

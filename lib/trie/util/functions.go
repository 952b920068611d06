package util

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"time"
)

// --------------------------------------------------------------------------
// Seeding
// --------------------------------------------------------------------------

// GenerateSeed returns a random seed from the system entropy source
func GenerateSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// fallback to the current time if no entropy is available
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// NewRand returns a pseudo random source for reproducible key streams.
// A seed of 0 draws a fresh seed with GenerateSeed.
//
// Thread-safety: The returned source is not safe for concurrent use.
func NewRand(seed uint64) (*mrand.Rand, uint64) {
	if seed == 0 {
		seed = GenerateSeed()
	}
	return mrand.New(mrand.NewSource(int64(seed))), seed
}

package keyspace

import (
	"encoding/hex"
	"math/rand"

	"github.com/cockroachdb/errors"
)

// ErrInvalidKey is returned when a key can not be parsed into the requested width
var ErrInvalidKey = errors.New("invalid key")

// FromHex decodes a hex string into a key of exactly width bytes.
func FromHex(s string, width int) ([]byte, error) {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidKey, "decode %q: %v", s, err)
	}
	if len(decoded) != width {
		return nil, errors.Wrapf(ErrInvalidKey, "%q has %d bytes, want %d", s, len(decoded), width)
	}
	return decoded, nil
}

// String hex-encodes a key
func String(key []byte) string {
	return hex.EncodeToString(key)
}

// Random returns a pseudo random key of the given width (non-crypto)
func Random(r *rand.Rand, width int) []byte {
	key := make([]byte, width)
	r.Read(key)
	return key
}

// FromUint64 writes v big-endian into the last (up to) 8 bytes of a key of the given width.
func FromUint64(v uint64, width int) []byte {
	key := make([]byte, width)
	for i := width - 1; i >= 0 && v > 0; i-- {
		key[i] = byte(v)
		v >>= 8
	}
	return key
}

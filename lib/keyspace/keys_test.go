package keyspace

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromHex(t *testing.T) {
	key, err := FromHex("00010203", 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1, 2, 3}, key)
	require.Equal(t, "00010203", String(key))

	_, err = FromHex("0001", 4)
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = FromHex("zz", 1)
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestFromUint64(t *testing.T) {
	require.Equal(t, []byte{0, 0, 1, 2}, FromUint64(0x0102, 4))
	require.Equal(t, []byte{0x02}, FromUint64(0x0102, 1))
	require.Equal(t, make([]byte, 3), FromUint64(0, 3))
}

func TestRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	a := Random(r, 20)
	b := Random(r, 20)
	require.Len(t, a, 20)
	require.NotEqual(t, a, b)
}

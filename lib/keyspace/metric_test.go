package keyspace

import (
	"math/big"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

// bigDistance is the reference cyclic distance computed with math/big
func bigDistance(a, b []byte) *big.Int {
	modulus := new(big.Int).Lsh(big.NewInt(1), uint(8*len(a)))
	diff := new(big.Int).Sub(new(big.Int).SetBytes(a), new(big.Int).SetBytes(b))
	diff.Abs(diff)
	other := new(big.Int).Sub(modulus, diff)
	if other.Cmp(diff) < 0 {
		return other
	}
	return diff
}

func TestNibble(t *testing.T) {
	key := []byte{0b11_10_01_00, 0b00_01_10_11}
	want := []int{3, 2, 1, 0, 0, 1, 2, 3}
	for depth, w := range want {
		require.Equal(t, w, Nibble(key, depth), "depth %d", depth)
	}
	require.Equal(t, 8, MaxDepth(2))
}

func TestSiblings(t *testing.T) {
	for index := 0; index < Fanout; index++ {
		seen := map[int]bool{index: true}
		for _, s := range Siblings(index) {
			require.False(t, seen[s], "index %d lists %d twice", index, s)
			seen[s] = true
		}
		require.Len(t, seen, Fanout)
	}
	require.Equal(t, [3]int{3, 1, 0}, Siblings(2))
}

func TestSub(t *testing.T) {
	require.Equal(t, []byte{0, 0, 0, 1}, Sub([]byte{0, 0, 0, 2}, []byte{0, 0, 0, 1}))
	require.Equal(t, []byte{0, 0, 0xff, 0xff}, Sub([]byte{0, 1, 0, 0}, []byte{0, 0, 0, 1}))
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, Sub([]byte{0, 0, 0, 0}, []byte{0, 0, 0, 1}))
	require.Equal(t, []byte{0, 0}, Sub([]byte{0x12, 0x34}, []byte{0x12, 0x34}))
}

func TestDistance(t *testing.T) {
	probe := []byte{0, 0, 0, 1}

	require.Equal(t, []byte{0, 0, 0, 1}, Distance(probe, []byte{0, 0, 0, 0}))
	require.Equal(t, []byte{0, 0, 0xff, 0xff}, Distance(probe, []byte{0, 1, 0, 0}))
	// wraps around the top of the key space
	require.Equal(t, []byte{0, 0, 0, 2}, Distance(probe, []byte{0xff, 0xff, 0xff, 0xff}))

	// exactly half way is the same in both directions
	require.Equal(t, HalfPoint(2), Distance([]byte{0, 0}, []byte{0x80, 0}))
	require.Equal(t, HalfPoint(2), Distance([]byte{0x80, 0}, []byte{0, 0}))
}

func TestCloser(t *testing.T) {
	probe := []byte{0x10}
	require.True(t, Closer(probe, []byte{0x11}, []byte{0x13}))
	require.False(t, Closer(probe, []byte{0x13}, []byte{0x11}))

	// tie resolves to the smaller key
	require.True(t, Closer(probe, []byte{0x0f}, []byte{0x11}))
	require.False(t, Closer(probe, []byte{0x11}, []byte{0x0f}))

	// the cyclic neighbour across zero wins over a far linear neighbour
	require.True(t, Closer([]byte{0x01}, []byte{0xff}, []byte{0x80}))
}

func TestDistanceMatchesBigInt(t *testing.T) {
	check := func(a, b [5]byte) bool {
		got := new(big.Int).SetBytes(Distance(a[:], b[:]))
		return got.Cmp(bigDistance(a[:], b[:])) == 0
	}
	require.NoError(t, quick.Check(check, nil))
}

func TestDistanceSymmetric(t *testing.T) {
	check := func(a, b [3]byte) bool {
		return Compare(Distance(a[:], b[:]), Distance(b[:], a[:])) == 0
	}
	require.NoError(t, quick.Check(check, nil))
}

func TestSubAddsBack(t *testing.T) {
	check := func(a, b [6]byte) bool {
		diff := new(big.Int).SetBytes(Sub(a[:], b[:]))
		sum := diff.Add(diff, new(big.Int).SetBytes(b[:]))
		modulus := new(big.Int).Lsh(big.NewInt(1), 48)
		return sum.Mod(sum, modulus).Cmp(new(big.Int).SetBytes(a[:])) == 0
	}
	require.NoError(t, quick.Check(check, nil))
}

package keyspace

const (
	// Fanout is the number of children of a trie list node
	Fanout = 4
	// NibbleBits is the number of key bits consumed per trie level
	NibbleBits = 2
	// NibblesPerByte is the number of trie levels covered by one key byte
	NibblesPerByte = 8 / NibbleBits

	nibbleMask = Fanout - 1
)

// Nibble returns the child index (0..3) selected by the key at the given depth.
// Depth 0 is the most significant bit pair of the first byte.
func Nibble(key []byte, depth int) int {
	shift := 8 - NibbleBits*(depth%NibblesPerByte+1)
	return int(key[depth/NibblesPerByte]>>shift) & nibbleMask
}

// MaxDepth returns the number of trie levels needed to tell apart any two
// distinct keys of the given width.
func MaxDepth(width int) int {
	return width * NibblesPerByte
}

// siblingOrder lists for every child index the other children in the order a
// prefix search falls back to them when the probe's own slot is empty.
var siblingOrder = [Fanout][Fanout - 1]int{
	{1, 2, 3},
	{0, 2, 3},
	{3, 1, 0},
	{2, 1, 0},
}

// Siblings returns the fallback order of the children next to index
func Siblings(index int) [Fanout - 1]int {
	return siblingOrder[index]
}

// Package keyspace provides the arithmetic used on fixed-width byte-array keys.
//
// A key of N bytes is treated as an unsigned big-endian integer in a cyclic space
// of size 2^(8N). All functions work on arbitrary N without widening to native
// integer types: subtraction is performed byte by byte with a borrow.
//
// The package contains:
//   - nibble: the 2-bit key slices that select one of the four children of a trie node
//   - metric: subtraction with borrow, cyclic distance and the half-space threshold
//   - keys: helpers to parse, print and generate keys
//
// All functions expect both operands to have the same width. Callers (the trie
// engines) validate the key width before calling into this package.
package keyspace

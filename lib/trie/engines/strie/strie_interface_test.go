package strie

import (
	"testing"

	"github.com/ValentinKolb/qtrie/lib/trie"
	trietesting "github.com/ValentinKolb/qtrie/lib/trie/testing"
)

func factory(keyWidth int) trie.Map[int] {
	m, err := NewSequentialMap[int](&Options{KeyWidth: keyWidth})
	if err != nil {
		panic(err)
	}
	return m
}

func Test(t *testing.T) {
	trietesting.RunMapTests(t, "SequentialTrie", factory)
}

func Benchmark(b *testing.B) {
	trietesting.RunMapBenchmarks(b, "SequentialTrie", factory)
}

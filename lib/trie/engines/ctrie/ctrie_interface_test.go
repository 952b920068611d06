package ctrie

import (
	"testing"

	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/ValentinKolb/qtrie/lib/trie/engines/strie"
	trietesting "github.com/ValentinKolb/qtrie/lib/trie/testing"
)

func factory(keyWidth int) trie.Map[int] {
	m, err := NewConcurrentMap[int](&Options{KeyWidth: keyWidth})
	if err != nil {
		panic(err)
	}
	return m
}

func reference(keyWidth int) trie.Map[int] {
	m, err := strie.NewSequentialMap[int](&strie.Options{KeyWidth: keyWidth})
	if err != nil {
		panic(err)
	}
	return m
}

func Test(t *testing.T) {
	trietesting.RunMapTests(t, "ConcurrentTrie", factory)
	trietesting.RunConcurrencyTests(t, "ConcurrentTrie", factory)
	trietesting.RunDifferentialTests(t, "ConcurrentVsSequential", factory, reference)
}

func Benchmark(b *testing.B) {
	trietesting.RunMapBenchmarks(b, "ConcurrentTrie", factory)
}

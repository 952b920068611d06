package perf

import (
	"encoding/csv"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/qtrie/cmd/util"
	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldSkip(t *testing.T) {
	perfSkip = []string{"insert", " closest"}
	defer func() { perfSkip = nil }()

	assert.True(t, shouldSkip("insert"))
	assert.True(t, shouldSkip("closest"))
	assert.False(t, shouldSkip("closest-loop"))
}

func TestBenchmarkOperations(t *testing.T) {
	conf := &util.MapConfig{Engine: trie.ImplConcurrent, KeyWidth: 8, Name: "perf-test"}
	r := rand.New(rand.NewSource(1))
	keys := make([][]byte, 64)
	for i := range keys {
		keys[i] = keyspace.Random(r, conf.KeyWidth)
	}

	for _, bm := range benchmarks(conf.KeyWidth) {
		m, err := util.NewMap[int](conf, nil)
		require.NoError(t, err)
		if bm.prepare != nil {
			require.NoError(t, bm.prepare(m, keys), bm.name)
		}
		for i := 0; i < 200; i++ {
			require.NoError(t, bm.op(m, keys, r, i), bm.name)
		}
	}
}

func TestRunBenchmark(t *testing.T) {
	if testing.Short() {
		t.Skip("runs a full testing.Benchmark")
	}

	set := metrics.NewSet()
	conf := &util.MapConfig{Engine: trie.ImplConcurrent, KeyWidth: 4, Name: "run"}
	m, err := util.NewMap[int](conf, set)
	require.NoError(t, err)

	keys := [][]byte{{0, 0, 0, 1}, {0, 0, 0, 2}}
	bm := benchmarks(conf.KeyWidth)[0]
	res := runBenchmark(bm, m, keys, 4, gometrics.NewRegistry())

	assert.Equal(t, "insert", res.name)
	assert.Positive(t, res.bench.N)
	assert.Positive(t, res.latency.Count())
	assert.Zero(t, res.errors)
	assert.Equal(t, 2, m.Len())
}

func TestWriteResults(t *testing.T) {
	dir := t.TempDir()
	perfKeySpread = 10

	timer := gometrics.NewTimer()
	timer.Update(1000)
	results := []result{{name: "get", bench: testing.BenchmarkResult{N: 10, T: 1000}, latency: timer}}
	conf := &util.MapConfig{Engine: trie.ImplSequential, KeyWidth: 4}

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, writeResultsToCSV(csvPath, results, conf, 1))

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "get", rows[1][0])
	assert.Equal(t, "100", rows[1][1])
	assert.Equal(t, "strie", rows[1][7])

	set := metrics.NewSet()
	set.GetOrCreateCounter(`qtrie_ops_total{op="insert"}`).Add(3)
	promPath := filepath.Join(dir, "metrics.txt")
	require.NoError(t, writePrometheus(promPath, set))
	data, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `qtrie_ops_total{op="insert"} 3`)
}

package perf

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/qtrie/cmd/util"
	"github.com/ValentinKolb/qtrie/lib/common"
	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
	trieutil "github.com/ValentinKolb/qtrie/lib/trie/util"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	plog = logger.GetLogger(common.LoggerPerf)

	// PerfCmd runs throughput and latency benchmarks against a map
	PerfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the trie engines",
		RunE:    run,
		PreRunE: processPerfConfig,
	}

	perfNumThreads = 10
	perfKeySpread  = 100000
	perfSeed       uint64
	perfSkip       = make([]string, 0)
)

func init() {
	util.SetupMapFlags(PerfCmd)

	key := "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. insert,closest)"))
	key = "threads"
	PerfCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines per benchmark (sequential engines always use one)"))
	key = "keys"
	PerfCmd.Flags().Int(key, 100000, util.WrapString("How many different keys to use for the tests"))
	key = "seed"
	PerfCmd.Flags().Uint64(key, 0, util.WrapString("Seed of the key generator (0 = random)"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "prometheus"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to dump the map counters in Prometheus text format ('-' = stdout)"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSeed = viper.GetUint64("seed")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfKeySpread < 1 {
		return fmt.Errorf("keys must be positive, got %d", perfKeySpread)
	}
	return nil
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

// benchmark is one named workload. prepare fills the map before the timer starts,
// op runs one operation on the key with the given index.
type benchmark struct {
	name    string
	prepare func(m trie.Map[int], keys [][]byte) error
	op      func(m trie.Map[int], keys [][]byte, r *rand.Rand, i int) error
}

// result is the outcome of one benchmark
type result struct {
	name    string
	bench   testing.BenchmarkResult
	latency gometrics.Timer
	errors  int64
}

func benchmarks(width int) []benchmark {
	fill := func(m trie.Map[int], keys [][]byte) error {
		for i, k := range keys {
			if _, err := m.InsertOrUpdate(k, i); err != nil {
				return err
			}
		}
		return nil
	}

	return []benchmark{
		{
			name: "insert",
			op: func(m trie.Map[int], keys [][]byte, _ *rand.Rand, i int) error {
				_, err := m.InsertOrUpdate(keys[i%len(keys)], i)
				return err
			},
		},
		{
			name:    "update",
			prepare: fill,
			op: func(m trie.Map[int], keys [][]byte, _ *rand.Rand, i int) error {
				_, err := m.InsertOrUpdateIf(keys[i%len(keys)], i, func(old, new int) bool { return new > old })
				return err
			},
		},
		{
			name:    "get",
			prepare: fill,
			op: func(m trie.Map[int], keys [][]byte, _ *rand.Rand, i int) error {
				if _, ok := m.Get(keys[i%len(keys)]); !ok {
					return fmt.Errorf("key %d not found", i%len(keys))
				}
				return nil
			},
		},
		{
			name:    "remove",
			prepare: fill,
			op: func(m trie.Map[int], keys [][]byte, _ *rand.Rand, i int) error {
				k := keys[i%len(keys)]
				if _, err := m.Remove(k); err != nil {
					return err
				}
				// put it back so that the map does not drain
				_, err := m.InsertOrUpdate(k, i)
				return err
			},
		},
		{
			name:    "closest",
			prepare: fill,
			op: func(m trie.Map[int], _ [][]byte, r *rand.Rand, _ int) error {
				_, _, err := m.GetOrClosest(keyspace.Random(r, width), false, false)
				return err
			},
		},
		{
			name:    "closest-loop",
			prepare: fill,
			op: func(m trie.Map[int], _ [][]byte, r *rand.Rand, _ int) error {
				_, _, err := m.GetOrClosest(keyspace.Random(r, width), true, true)
				return err
			},
		},
		{
			name:    "closest-prefix",
			prepare: fill,
			op: func(m trie.Map[int], _ [][]byte, r *rand.Rand, _ int) error {
				_, _, err := m.GetOrClosestByPrefix(keyspace.Random(r, width), false)
				return err
			},
		},
		{
			name:    "minmax",
			prepare: fill,
			op: func(m trie.Map[int], _ [][]byte, _ *rand.Rand, i int) error {
				if i%2 == 0 {
					m.Min()
				} else {
					m.Max()
				}
				return nil
			},
		},
		{
			name:    "mixed",
			prepare: fill,
			op: func(m trie.Map[int], keys [][]byte, r *rand.Rand, i int) error {
				k := keys[r.Intn(len(keys))]
				var err error
				switch i % 4 {
				case 0:
					_, err = m.InsertOrUpdate(k, i)
				case 1:
					m.Get(k)
				case 2:
					_, err = m.Remove(k)
				case 3:
					_, _, err = m.GetOrClosest(k, true, true)
				}
				return err
			},
		},
	}
}

func run(_ *cobra.Command, _ []string) error {
	conf := util.GetMapConfig()

	fmt.Println("Performance testing tool for the trie engines")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(conf.String())

	threads := perfNumThreads
	set := metrics.NewSet()
	probe, err := util.NewMap[int](conf, set)
	if err != nil {
		return err
	}
	if !probe.SupportsFeature(trie.FeatureConcurrent) {
		threads = 1
	}
	fmt.Printf("Threads: %d\n", threads)

	rng, seed := trieutil.NewRand(perfSeed)
	fmt.Printf("Seed: %d\n", seed)
	keys := make([][]byte, perfKeySpread)
	for i := range keys {
		keys[i] = keyspace.Random(rng, conf.KeyWidth)
	}
	fmt.Println()

	fmt.Println("starting tests...")
	registry := gometrics.NewRegistry()
	var results []result

	for _, bm := range benchmarks(conf.KeyWidth) {
		if shouldSkip(bm.name) {
			printResult(result{name: bm.name})
			continue
		}

		m, err := util.NewMap[int](conf, set)
		if err != nil {
			return err
		}
		if bm.prepare != nil {
			if err := bm.prepare(m, keys); err != nil {
				return fmt.Errorf("%s: prepare failed: %w", bm.name, err)
			}
		}

		res := runBenchmark(bm, m, keys, threads, registry)
		results = append(results, res)
		printResult(res)

		plog.Debugf("%s finished with %d entries, depth %d", bm.name, m.Len(), m.Depth())
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, conf, threads); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	if promPath := viper.GetString("prometheus"); promPath != "" {
		if err := writePrometheus(promPath, set); err != nil {
			return fmt.Errorf("failed to write metrics: %v", err)
		}
	}

	return nil
}

// runBenchmark executes one workload with testing.Benchmark and samples the
// latency of every operation into a timer.
func runBenchmark(bm benchmark, m trie.Map[int], keys [][]byte, threads int, registry gometrics.Registry) result {
	latency := gometrics.GetOrRegisterTimer("qtrie/perf/"+bm.name, registry)
	errs := xsync.NewCounter()
	var seeds atomic.Int64

	bench := testing.Benchmark(func(b *testing.B) {
		b.SetParallelism(max(1, threads/runtime.GOMAXPROCS(0)))
		b.ResetTimer()

		body := func(r *rand.Rand, next func() bool) {
			for i := int(r.Int31()); next(); i++ {
				start := time.Now()
				if err := bm.op(m, keys, r, i); err != nil {
					errs.Inc()
					plog.Debugf("(%s) - %v", bm.name, err)
				}
				latency.UpdateSince(start)
			}
		}

		if threads == 1 {
			n := 0
			body(rand.New(rand.NewSource(seeds.Add(1))), func() bool { n++; return n <= b.N })
			return
		}
		b.RunParallel(func(pb *testing.PB) {
			body(rand.New(rand.NewSource(seeds.Add(1))), pb.Next)
		})
	})

	if n := errs.Value(); n > 0 {
		plog.Warningf("(%s) - %d operations failed", bm.name, n)
	}
	return result{name: bm.name, bench: bench, latency: latency, errors: errs.Value()}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if strings.TrimSpace(skip) == test {
			return true
		}
	}
	return false
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(res result) {
	if res.bench.N == 0 || res.latency == nil {
		fmt.Printf("%-15sskipped\n", res.name)
		return
	}

	nsPerOp := math.Max(float64(res.bench.NsPerOp()), 1)
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	ps := res.latency.Snapshot().Percentiles([]float64{0.5, 0.99})

	fmt.Printf("%-15s%.0fns/op (%s/op)\t%.0f ops/sec\tp50 %s\tp99 %s\n",
		res.name, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(ps[0]), time.Duration(ps[1]))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []result, conf *util.MapConfig, threads int) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P99Ns", "Errors",
		"Engine", "KeyWidth", "Threads", "Keys",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, res := range results {
		nsPerOp := math.Max(float64(res.bench.NsPerOp()), 1)
		ps := res.latency.Snapshot().Percentiles([]float64{0.5, 0.99})

		row := []string{
			res.name,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", 1.0/(nsPerOp/1e9)),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			strconv.FormatInt(res.errors, 10),
			string(conf.Engine),
			strconv.Itoa(conf.KeyWidth),
			strconv.Itoa(threads),
			strconv.Itoa(perfKeySpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", res.name, err)
		}
	}

	return nil
}

// writePrometheus dumps the counters of all maps of this run
func writePrometheus(path string, set *metrics.Set) error {
	if path == "-" {
		set.WritePrometheus(os.Stdout)
		return nil
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	set.WritePrometheus(file)
	return nil
}

// Package cmd implements the command-line interface of qtrie.
//
// The package is organized into several subpackages:
//
//   - perf: throughput and latency benchmarks against a chosen engine, with
//     optional CSV export and a Prometheus dump of the map counters
//   - query: builds a key set from hex or random keys and answers nearest-key queries
//   - util: shared flag, configuration and map construction helpers (internal use)
//
// Every flag can also be set through an environment variable with the QTRIE_
// prefix (e.g. QTRIE_KEY_WIDTH=20), also read from .env and .env.local.
//
// See qtrie -help for a list of all commands.
package cmd

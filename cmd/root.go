package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/qtrie/cmd/perf"
	"github.com/ValentinKolb/qtrie/cmd/query"
	"github.com/ValentinKolb/qtrie/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "qtrie",
		Short: "concurrent radix trie over fixed-width keys",
		Long: fmt.Sprintf(`qtrie (v%s)

A concurrent 4-ary radix trie for fixed-width byte keys with ordered
and nearest-key (cyclic distance) queries, written in Go.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of qtrie",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qtrie v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(query.QueryCmd)
	RootCmd.AddCommand(versionCmd)

	key := "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("Log level (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

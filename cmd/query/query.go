package query

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/ValentinKolb/qtrie/cmd/util"
	"github.com/ValentinKolb/qtrie/lib/common"
	"github.com/ValentinKolb/qtrie/lib/keyset"
	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
	trieutil "github.com/ValentinKolb/qtrie/lib/trie/util"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	plog = logger.GetLogger(common.LoggerQuery)

	// QueryCmd builds a key set and answers nearest-key queries against it
	QueryCmd = &cobra.Command{
		Use:   "query [probe...]",
		Short: "Build a key set and look up the keys closest to the given probes",
		Long: `Build a key set from hex encoded keys (--keys) and/or random keys (--random)
and print min, max, the closest key and the closest key by shared prefix
for every probe as JSON.

Example:
  qtrie query --key-width 4 --keys 00000000,00010000,ffffffff 00000001`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return util.BindCommandFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), util.GetMapConfig(), args)
		},
	}
)

func init() {
	util.SetupMapFlags(QueryCmd)

	key := "keys"
	QueryCmd.Flags().String(key, "", util.WrapString("Comma separated hex keys to insert"))
	key = "random"
	QueryCmd.Flags().Int(key, 0, util.WrapString("Number of random keys to insert in addition"))
	key = "seed"
	QueryCmd.Flags().Uint64(key, 0, util.WrapString("Seed of the random keys (0 = random)"))
	key = "include"
	QueryCmd.Flags().Bool(key, true, util.WrapString("Whether a probe that is itself in the set is its own closest key"))
	key = "loop"
	QueryCmd.Flags().Bool(key, false, util.WrapString("Whether the search wraps around the ends of the key space"))
	key = "info"
	QueryCmd.Flags().Bool(key, false, util.WrapString("Include the map info in the output"))
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

type closestResult struct {
	Probe   string `json:"probe"`
	Closest string `json:"closest,omitempty"`
	Found   bool   `json:"found"`
	Prefix  string `json:"closest_by_prefix,omitempty"`
}

type output struct {
	Keys    int             `json:"keys"`
	Min     string          `json:"min,omitempty"`
	Max     string          `json:"max,omitempty"`
	Closest []closestResult `json:"closest"`
	Info    *trie.MapInfo   `json:"info,omitempty"`
}

// --------------------------------------------------------------------------
// Command
// --------------------------------------------------------------------------

func run(w io.Writer, conf *util.MapConfig, probes []string) error {
	m, err := util.NewMap[struct{}](conf, nil)
	if err != nil {
		return err
	}
	set := keyset.NewKeySet(func() trie.Map[struct{}] { return m })

	if err := fill(set, conf.KeyWidth); err != nil {
		return err
	}

	out := output{Keys: set.Len(), Closest: make([]closestResult, 0, len(probes))}
	if k, ok, _ := set.Min(); ok {
		out.Min = keyspace.String(k)
	}
	if k, ok, _ := set.Max(); ok {
		out.Max = keyspace.String(k)
	}

	include, loop := viper.GetBool("include"), viper.GetBool("loop")
	for _, p := range probes {
		probe, err := keyspace.FromHex(p, conf.KeyWidth)
		if err != nil {
			return err
		}
		res := closestResult{Probe: keyspace.String(probe)}
		k, ok, err := set.Closest(probe, include, loop)
		if err != nil {
			return err
		}
		if ok {
			res.Closest, res.Found = keyspace.String(k), true
		}
		k, ok, err = set.ClosestByPrefix(probe, include)
		if err != nil {
			return err
		}
		if ok {
			res.Prefix = keyspace.String(k)
		}
		out.Closest = append(out.Closest, res)
	}

	if viper.GetBool("info") {
		info := set.GetInfo()
		out.Info = &info
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// fill inserts the keys given by --keys and --random
func fill(set keyset.IKeySet, width int) error {
	for _, s := range strings.Split(viper.GetString("keys"), ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		key, err := keyspace.FromHex(s, width)
		if err != nil {
			return err
		}
		if _, err := set.Add(key); err != nil {
			return err
		}
	}

	if n := viper.GetInt("random"); n > 0 {
		r, seed := trieutil.NewRand(viper.GetUint64("seed"))
		plog.Infof("inserting %d random keys (seed %d)", n, seed)
		for i := 0; i < n; i++ {
			if _, err := set.Add(keyspace.Random(r, width)); err != nil {
				return err
			}
		}
	}
	return nil
}

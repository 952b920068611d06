package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/qtrie/lib/common"
	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/ValentinKolb/qtrie/lib/trie/engines/ctrie"
	"github.com/ValentinKolb/qtrie/lib/trie/engines/strie"
	"github.com/VictoriaMetrics/metrics"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var lines []string
	var line strings.Builder

	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > Wrap {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n")
}

// --------------------------------------------------------------------------
// Map configuration
// --------------------------------------------------------------------------

// MapConfig describes the map a command works on
type MapConfig struct {
	Engine   trie.Implementation
	KeyWidth int
	Name     string
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *MapConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Map")
	addField("Engine", string(c.Engine))
	addField("Key Width", fmt.Sprintf("%d bytes (%d bits)", c.KeyWidth, c.KeyWidth*8))
	addField("Name", c.Name)

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// SetupMapFlags adds the flags selecting and configuring a map to a command
func SetupMapFlags(cmd *cobra.Command) {
	key := "engine"
	cmd.PersistentFlags().String(key, string(trie.ImplConcurrent), WrapString("The map engine to use (ctrie, strie)"))

	key = "key-width"
	cmd.PersistentFlags().Int(key, 32, WrapString("The width of every key in bytes"))

	key = "name"
	cmd.PersistentFlags().String(key, "cli", WrapString("Name of the map, used as metrics label"))
}

// InitConfig loads .env files and binds environment variables with the QTRIE_ prefix
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("qtrie")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// GetMapConfig reads the map configuration from viper
func GetMapConfig() *MapConfig {
	return &MapConfig{
		Engine:   trie.Implementation(viper.GetString("engine")),
		KeyWidth: viper.GetInt("key-width"),
		Name:     viper.GetString("name"),
		LogLevel: viper.GetString("log-level"),
	}
}

// BindCommandFlags binds a command's flags to viper and initializes the loggers
func BindCommandFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return common.InitLoggers(viper.GetString("log-level"))
}

// NewMap creates the configured map. Counters of the concurrent engine are
// registered in set (may be nil).
func NewMap[V any](conf *MapConfig, set *metrics.Set) (trie.Map[V], error) {
	switch conf.Engine {
	case trie.ImplConcurrent:
		return ctrie.NewConcurrentMap[V](&ctrie.Options{
			KeyWidth: conf.KeyWidth,
			Metrics:  set,
			Name:     conf.Name,
		})
	case trie.ImplSequential:
		return strie.NewSequentialMap[V](&strie.Options{KeyWidth: conf.KeyWidth})
	default:
		return nil, fmt.Errorf("invalid engine %s", conf.Engine)
	}
}

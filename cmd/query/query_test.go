package query

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ValentinKolb/qtrie/cmd/util"
	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFlags(t *testing.T, values map[string]any) {
	t.Helper()
	for k, v := range values {
		viper.Set(k, v)
	}
	t.Cleanup(viper.Reset)
}

func TestQueryScenario(t *testing.T) {
	setFlags(t, map[string]any{
		"keys":    "00000000,00010000,ffffffff",
		"include": true,
		"loop":    false,
		"info":    true,
	})

	var buf bytes.Buffer
	conf := &util.MapConfig{Engine: trie.ImplConcurrent, KeyWidth: 4, Name: "query"}
	require.NoError(t, run(&buf, conf, []string{"00000001", "fffffffe"}))

	var out output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 3, out.Keys)
	assert.Equal(t, "00000000", out.Min)
	assert.Equal(t, "ffffffff", out.Max)
	require.Len(t, out.Closest, 2)
	assert.Equal(t, closestResult{Probe: "00000001", Closest: "00000000", Found: true, Prefix: "00000000"}, out.Closest[0])
	assert.Equal(t, closestResult{Probe: "fffffffe", Closest: "ffffffff", Found: true, Prefix: "ffffffff"}, out.Closest[1])
	require.NotNil(t, out.Info)
	assert.Equal(t, 3, out.Info.Entries)
}

func TestQueryRandomKeys(t *testing.T) {
	setFlags(t, map[string]any{"random": 100, "seed": uint64(7)})

	var buf bytes.Buffer
	conf := &util.MapConfig{Engine: trie.ImplSequential, KeyWidth: 8}
	require.NoError(t, run(&buf, conf, nil))

	var out output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 100, out.Keys)
	assert.Len(t, out.Min, 16)
	assert.Nil(t, out.Info)
}

func TestQueryInvalidInput(t *testing.T) {
	setFlags(t, map[string]any{"keys": "0000"})

	conf := &util.MapConfig{Engine: trie.ImplConcurrent, KeyWidth: 4}
	require.Error(t, run(&bytes.Buffer{}, conf, nil))

	setFlags(t, map[string]any{"keys": ""})
	require.Error(t, run(&bytes.Buffer{}, conf, []string{"zz"}))

	require.Error(t, run(&bytes.Buffer{}, &util.MapConfig{Engine: "nope", KeyWidth: 4}, nil))
}

package util

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short help", WrapString("  short   help "))
	assert.Equal(t, "", WrapString(""))
}

func TestNewMap(t *testing.T) {
	for _, engine := range []trie.Implementation{trie.ImplConcurrent, trie.ImplSequential} {
		m, err := NewMap[int](&MapConfig{Engine: engine, KeyWidth: 4, Name: "t"}, nil)
		require.NoError(t, err)
		assert.Equal(t, engine, m.GetInfo().Engine)
		assert.Equal(t, 4, m.KeyWidth())
	}

	_, err := NewMap[int](&MapConfig{Engine: "btree", KeyWidth: 4}, nil)
	require.Error(t, err)

	_, err = NewMap[int](&MapConfig{Engine: trie.ImplConcurrent, KeyWidth: 0}, nil)
	require.ErrorIs(t, err, trie.ErrInvalidKeyWidth)
}

func TestMapConfigString(t *testing.T) {
	conf := &MapConfig{Engine: trie.ImplSequential, KeyWidth: 20, Name: "dht", LogLevel: "warn"}
	s := conf.String()
	assert.Contains(t, s, "MAP\n")
	assert.Contains(t, s, "strie")
	assert.Contains(t, s, "20 bytes (160 bits)")
	assert.Contains(t, s, "LOGGING\n")
}

package common

import (
	"bytes"
	"log"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"Error":   logger.ERROR,
	}
	for name, want := range cases {
		got, err := ParseLogLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLogLevel("verbose")
	require.Error(t, err)
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := &qtrieLogger{name: "ctrie", level: logger.WARNING, logger: log.New(&buf, "", 0)}

	l.Debugf("hidden %d", 1)
	l.Infof("hidden %d", 2)
	assert.Empty(t, buf.String())

	l.Warningf("shown %d", 3)
	assert.Equal(t, "WARN  | ctrie    | shown 3\n", buf.String())

	buf.Reset()
	l.SetLevel(logger.DEBUG)
	l.Debugf("now visible")
	assert.Contains(t, buf.String(), "DEBUG | ctrie    | now visible")
}

func TestPanicf(t *testing.T) {
	l := CreateLogger("test")
	assert.PanicsWithValue(t, "boom 1", func() { l.Panicf("boom %d", 1) })
}

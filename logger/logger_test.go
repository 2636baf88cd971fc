package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/isgasho/roa/config"
)

func TestBuildConfig(t *testing.T) {
	t.Run("json uses production encoding", func(t *testing.T) {
		c, err := buildConfig(config.LoggerConfig{Level: "warn", Format: "json"})
		require.NoError(t, err)

		assert.Equal(t, "json", c.Encoding)
		assert.Equal(t, zapcore.WarnLevel, c.Level.Level())
		assert.True(t, c.DisableStacktrace)
		assert.False(t, c.Development)
	})

	t.Run("console uses development encoding", func(t *testing.T) {
		c, err := buildConfig(config.LoggerConfig{Level: "debug", Format: "console"})
		require.NoError(t, err)

		assert.Equal(t, "console", c.Encoding)
		assert.Equal(t, zapcore.DebugLevel, c.Level.Level())
		assert.True(t, c.Development)
	})

	t.Run("empty format defaults to json", func(t *testing.T) {
		c, err := buildConfig(config.LoggerConfig{Level: "info"})
		require.NoError(t, err)
		assert.Equal(t, "json", c.Encoding)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := buildConfig(config.LoggerConfig{Level: "verbose", Format: "json"})
		assert.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := buildConfig(config.LoggerConfig{Level: "info", Format: "xml"})
		assert.ErrorContains(t, err, `unknown format "xml"`)
	})
}

func TestNew(t *testing.T) {
	l, err := New(config.LoggerConfig{Level: "error", Format: "json"})
	require.NoError(t, err)

	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
}

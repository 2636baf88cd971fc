package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "roa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
server:
  port: 9090
  transport: fasthttp
  read_timeout: 5s
logger:
  level: debug
  format: console
router:
  root: /api
middleware:
  max_body_bytes: 1024
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "fasthttp", cfg.Server.Transport)
		assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, "debug", cfg.Logger.Level)
		assert.Equal(t, "console", cfg.Logger.Format)
		assert.Equal(t, "/api", cfg.Router.Root)
		assert.EqualValues(t, 1024, cfg.Middleware.MaxBodyBytes)
		assert.Equal(t, "X-Request-ID", cfg.Middleware.RequestIDHeader)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "server:\n  port: 9090\n")
		t.Setenv("ROA_SERVER_PORT", "7070")
		t.Setenv("ROA_SERVER_H2C", "true")
		t.Setenv("ROA_LOGGER_LEVEL", "warn")
		t.Setenv("ROA_MIDDLEWARE_REQUEST_TIMEOUT", "2s")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 7070, cfg.Server.Port)
		assert.True(t, cfg.Server.H2C)
		assert.Equal(t, "warn", cfg.Logger.Level)
		assert.Equal(t, 2*time.Second, cfg.Middleware.RequestTimeout)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, ErrRead)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [port"))
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("malformed environment value", func(t *testing.T) {
		t.Setenv("ROA_SERVER_PORT", "eighty")

		_, err := Load("")
		assert.ErrorIs(t, err, ErrParse)
	})
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "port out of range", body: "server:\n  port: 70000\n", field: "Port"},
		{name: "unknown transport", body: "server:\n  transport: grpc\n", field: "Transport"},
		{name: "zero timeout", body: "server:\n  idle_timeout: 0s\n", field: "IdleTimeout"},
		{name: "unknown level", body: "logger:\n  level: verbose\n", field: "Level"},
		{name: "unknown format", body: "logger:\n  format: xml\n", field: "Format"},
		{name: "relative root", body: "router:\n  root: api\n", field: "Root"},
		{name: "negative body limit", body: "middleware:\n  max_body_bytes: -1\n", field: "MaxBodyBytes"},
		{name: "empty request id header", body: "middleware:\n  request_id_header: \"\"\n", field: "RequestIDHeader"},
		{name: "relative metrics path", body: "middleware:\n  metrics_path: metrics\n", field: "MetricsPath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.ErrorIs(t, err, ErrInvalid)

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}

	t.Run("metrics path may be empty", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "middleware:\n  metrics_path: \"\"\n"))
		require.NoError(t, err)
		assert.Empty(t, cfg.Middleware.MetricsPath)
	})
}

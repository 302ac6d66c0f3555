package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/langsheet/internal/schema"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".xlsx", cfg.Input.Extension)
	assert.Equal(t, "en", cfg.Input.ReferenceLanguage)
	assert.Equal(t, schema.DefaultKeys, cfg.Schema.DefaultKeys)
	assert.Equal(t, "translations", cfg.Export.FallbackName)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
}

func TestNewManager(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		mgr, err := NewManager("", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), mgr.Get())
	})

	t.Run("loads from config file", func(t *testing.T) {
		path := writeConfig(t, `
input:
  reference_language: fr
  open_delay: 1s
schema:
  essential_keys: []
server:
  port: "9999"
  session_ttl: 30m
`)
		mgr, err := NewManager(path, "")
		require.NoError(t, err)
		cfg := mgr.Get()
		assert.Equal(t, "fr", cfg.Input.ReferenceLanguage)
		assert.Equal(t, time.Second, cfg.Input.OpenDelay)
		assert.Equal(t, "9999", cfg.Server.Port)
		assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
		assert.Equal(t, ".xlsx", cfg.Input.Extension, "unset keys keep defaults")
		assert.Equal(t, path, mgr.ConfigFile())

		opts := cfg.RegistryOptions()
		assert.NotNil(t, opts.Essential)
		assert.Empty(t, opts.Essential)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("LANGSHEET_EXPORT_FALLBACK_NAME", "bundle")
		mgr, err := NewManager("", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "bundle", mgr.Get().Export.FallbackName)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := writeConfig(t, "input:\n  extension: xlsx\nserver:\n  port: nope\n")
		_, err := NewManager(path, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input.extension")
		assert.Contains(t, err.Error(), "server.port")
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeConfig(t, "input: [")
		_, err := NewManager(path, "")
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero attempts", func(c *Config) { c.Input.OpenAttempts = 0 }},
		{"blank accumulation key", func(c *Config) { c.Schema.AccumulationKey = " " }},
		{"essential not default", func(c *Config) { c.Schema.EssentialKeys = []string{"bonus"} }},
		{"indent too wide", func(c *Config) { c.Export.Indent = 20 }},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestManager_OnChange(t *testing.T) {
	path := writeConfig(t, "export:\n  fallback_name: first\n")
	mgr, err := NewManager(path, "")
	require.NoError(t, err)

	var calls atomic.Int32
	changed := make(chan *Config, 4)
	mgr.OnChange(func(cfg *Config) {
		calls.Add(1)
		changed <- cfg
	})
	mgr.WatchConfig()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("export:\n  fallback_name: second\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, "second", cfg.Export.FallbackName)
		assert.Equal(t, "second", mgr.Get().Export.FallbackName)
	case <-time.After(3 * time.Second):
		t.Skip("file watch event not delivered on this filesystem")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "open_delay: 200ms")
	assert.Contains(t, string(data), "session_ttl: 2h0m0s")

	mgr, err := NewManager(path, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), mgr.Get())
}

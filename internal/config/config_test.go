package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearOracleEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL", "LILY_MODEL", "LILY_LEDGER_PATH", "LILY_MAX_ATTEMPTS", "LILY_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "lily", cfg.Name)
	assert.Equal(t, ProviderGemini, cfg.Oracle.Provider)
	assert.Equal(t, 3, cfg.Engine.MaxAttempts)
	assert.Equal(t, 5, cfg.Engine.ContextWindow)
	assert.Equal(t, 100, cfg.Ledger.MaxRecords)
	assert.Equal(t, 3*time.Second, cfg.GetGUIGracePeriod())
	assert.Equal(t, 30*time.Second, cfg.GetCLITimeout())
	assert.Equal(t, 100*time.Millisecond, cfg.GetPollInterval())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearOracleEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Oracle.Provider = ProviderOpenAI
	cfg.Oracle.APIKey = "sk-test"
	cfg.Engine.MaxAttempts = 5
	cfg.Ledger.Backend = LedgerJSON
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, loaded.Oracle.Provider)
	assert.Equal(t, "sk-test", loaded.Oracle.APIKey)
	assert.Equal(t, 5, loaded.Engine.MaxAttempts)
	assert.Equal(t, LedgerJSON, loaded.Ledger.Backend)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearOracleEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Engine, cfg.Engine)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearOracleEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  cli_timeout: 5s\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.GetCLITimeout())
	assert.Equal(t, 3, cfg.Engine.MaxAttempts)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDurationFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.CLITimeout = "soon"
	cfg.Engine.GUIGracePeriod = "-1s"
	cfg.Oracle.Timeout = ""

	assert.Equal(t, 30*time.Second, cfg.GetCLITimeout())
	assert.Equal(t, 3*time.Second, cfg.GetGUIGracePeriod())
	assert.Equal(t, 60*time.Second, cfg.GetOracleTimeout())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Oracle.APIKey = "key"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing key", func(c *Config) { c.Oracle.APIKey = "" }},
		{"bad provider", func(c *Config) { c.Oracle.Provider = "carrier-pigeon" }},
		{"bad backend", func(c *Config) { c.Ledger.Backend = "postgres" }},
		{"zero attempts", func(c *Config) { c.Engine.MaxAttempts = 0 }},
		{"zero cap", func(c *Config) { c.Ledger.MaxRecords = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	clearOracleEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Oracle.APIKey = "key"
	require.NoError(t, cfg.Save(path))

	changes := make(chan *Config, 4)
	w, err := NewWatcher(path, func(c *Config) { changes <- c })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	cfg.Engine.MaxAttempts = 7
	require.NoError(t, cfg.Save(path))

	select {
	case got := <-changes:
		assert.Equal(t, 7, got.Engine.MaxAttempts)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not delivered")
	}
}

func TestWatcher_IgnoresInvalidReload(t *testing.T) {
	clearOracleEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Oracle.APIKey = "key"
	require.NoError(t, cfg.Save(path))

	changes := make(chan *Config, 4)
	w, err := NewWatcher(path, func(c *Config) { changes <- c })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	cfg.Engine.MaxAttempts = 0
	require.NoError(t, cfg.Save(path))

	select {
	case got := <-changes:
		t.Fatalf("invalid config delivered: %+v", got.Engine)
	case <-time.After(800 * time.Millisecond):
	}
}

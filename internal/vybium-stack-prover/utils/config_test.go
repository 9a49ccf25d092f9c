package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig tests the DefaultConfig function
func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.NotNil(t, config)
	assert.Equal(t, BackendSequential, config.Backend)
	assert.False(t, config.ValidateTrace)
	assert.False(t, config.GPUFallback)
	require.NoError(t, config.Validate())
}

// TestConfigValidate tests the Validate method
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"parallel", func(c *Config) { c.WithBackend(BackendParallel).WithWorkers(4) }, false},
		{"gpu with fallback", func(c *Config) { c.WithBackend(BackendGPU).WithGPUFallback(true) }, false},
		{"unknown backend", func(c *Config) { c.Backend = "tpu" }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"blowup not power of two", func(c *Config) { c.WithBlowupFactor(6) }, true},
		{"blowup of one", func(c *Config) { c.WithBlowupFactor(1) }, true},
		{"no queries", func(c *Config) { c.WithNumQueries(0) }, true},
		{"remainder not power of two", func(c *Config) { c.WithFRIRemainderSize(12) }, true},
		{"max trace length not power of two", func(c *Config) { c.MaxTraceLength = 1000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestConfigClone tests that a clone is independent of the original
func TestConfigClone(t *testing.T) {
	original := DefaultConfig().WithValidateTrace(true)
	clone := original.Clone()
	clone.WithNumQueries(3)
	assert.True(t, clone.ValidateTrace)
	assert.Equal(t, DefaultConfig().NumQueries, original.NumQueries)
}

// TestParseConfig tests YAML decoding on top of the defaults
func TestParseConfig(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("backend: cpu-parallel\nworkers: 3\nvalidate_trace: true\n"))
		require.NoError(t, err)
		assert.Equal(t, BackendParallel, cfg.Backend)
		assert.Equal(t, 3, cfg.Workers)
		assert.True(t, cfg.ValidateTrace)
		assert.Equal(t, DefaultConfig().BlowupFactor, cfg.BlowupFactor)
	})

	t.Run("empty document keeps defaults", func(t *testing.T) {
		cfg, err := ParseConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := ParseConfig([]byte("hash_function: sha256\n"))
		assert.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := ParseConfig([]byte("blowup_factor: 3\n"))
		assert.Error(t, err)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prover.yaml")
		require.NoError(t, os.WriteFile(path, []byte("num_queries: 8\n"), 0o600))
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.NumQueries)

		_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

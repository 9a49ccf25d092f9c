package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend names accepted in configuration
const (
	BackendSequential = "cpu-sequential"
	BackendParallel   = "cpu-parallel"
	BackendGPU        = "gpu"
)

// Config represents the configuration for one proving session
type Config struct {
	// Execution strategy: cpu-sequential, cpu-parallel or gpu
	Backend string `yaml:"backend"`

	// Worker count for cpu-parallel; 0 means GOMAXPROCS
	Workers int `yaml:"workers"`

	// Fall back to cpu-parallel when the GPU cannot be initialized
	GPUFallback bool `yaml:"gpu_fallback"`

	// GPU device type and ordinal
	GPUDevice  string `yaml:"gpu_device"`
	GPUOrdinal int    `yaml:"gpu_ordinal"`

	// Re-check every constraint on the trace before proving
	ValidateTrace bool `yaml:"validate_trace"`

	// Low-degree extension and FRI parameters
	BlowupFactor     int `yaml:"blowup_factor"`
	NumQueries       int `yaml:"num_queries"`
	FRIRemainderSize int `yaml:"fri_remainder_size"`

	// Largest trace accepted, in rows
	MaxTraceLength int `yaml:"max_trace_length"`
}

// DefaultConfig returns the configuration used when nothing is specified
func DefaultConfig() *Config {
	return &Config{
		Backend:          BackendSequential,
		Workers:          0,
		GPUFallback:      false,
		GPUDevice:        "CUDA",
		GPUOrdinal:       0,
		ValidateTrace:    false,
		BlowupFactor:     8,
		NumQueries:       32,
		FRIRemainderSize: 16,
		MaxTraceLength:   1 << 20,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSequential, BackendParallel, BackendGPU:
	default:
		return fmt.Errorf("backend must be '%s', '%s', or '%s', got '%s'",
			BackendSequential, BackendParallel, BackendGPU, c.Backend)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}

	if !IsPowerOfTwo(c.BlowupFactor) || c.BlowupFactor < 2 {
		return fmt.Errorf("blowup factor must be a power of two >= 2, got %d", c.BlowupFactor)
	}

	if c.NumQueries <= 0 {
		return fmt.Errorf("number of queries must be positive")
	}

	if !IsPowerOfTwo(c.FRIRemainderSize) {
		return fmt.Errorf("FRI remainder size must be a power of two, got %d", c.FRIRemainderSize)
	}

	if !IsPowerOfTwo(c.MaxTraceLength) {
		return fmt.Errorf("max trace length must be a power of two, got %d", c.MaxTraceLength)
	}

	return nil
}

// WithBackend sets the execution backend
func (c *Config) WithBackend(backend string) *Config {
	c.Backend = backend
	return c
}

// WithWorkers sets the worker count for the parallel backend
func (c *Config) WithWorkers(workers int) *Config {
	c.Workers = workers
	return c
}

// WithGPUFallback sets whether a failed GPU initialization falls back to the CPU
func (c *Config) WithGPUFallback(fallback bool) *Config {
	c.GPUFallback = fallback
	return c
}

// WithValidateTrace enables constraint checking before proving
func (c *Config) WithValidateTrace(validate bool) *Config {
	c.ValidateTrace = validate
	return c
}

// WithBlowupFactor sets the low-degree extension blowup factor
func (c *Config) WithBlowupFactor(blowup int) *Config {
	c.BlowupFactor = blowup
	return c
}

// WithNumQueries sets the number of query positions
func (c *Config) WithNumQueries(queries int) *Config {
	c.NumQueries = queries
	return c
}

// WithFRIRemainderSize sets the codeword length at which folding stops
func (c *Config) WithFRIRemainderSize(size int) *Config {
	c.FRIRemainderSize = size
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// LoadConfig reads a YAML file on top of the defaults. Unknown keys are
// rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of the defaults
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Package config provides configuration management for colkern kernels
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"

	gojson "github.com/goccy/go-json"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration of a kernel instance
type Config struct {
	// Parallel Processing Configuration
	ParallelThreshold int  `json:"parallel_threshold" yaml:"parallel_threshold"` // Minimum column length to trigger parallel processing
	WorkerPoolSize    int  `json:"worker_pool_size" yaml:"worker_pool_size"`     // Number of worker goroutines (0 = auto-detect)
	ChunkSize         int  `json:"chunk_size" yaml:"chunk_size"`                 // Partition size (0 = auto-calculate)
	MaxParallelism    int  `json:"max_parallelism" yaml:"max_parallelism"`       // Upper bound for auto-detected workers
	OrderedMerge      bool `json:"ordered_merge" yaml:"ordered_merge"`           // Concatenate partition results by partition index

	// Kernel Configuration
	Epsilon            float64 `json:"epsilon" yaml:"epsilon"`                           // Tolerance for approximate equality joins
	JoinProbeNeighbors bool    `json:"join_probe_neighbors" yaml:"join_probe_neighbors"` // Probe adjacent tolerance buckets
	SampleSeed         uint64  `json:"sample_seed" yaml:"sample_seed"`                   // Seed of the default sampler (0 = time based)

	// Debugging Configuration
	LogLevel          string `json:"log_level" yaml:"log_level"`                   // debug, info, warn or error
	LogEncoding       string `json:"log_encoding" yaml:"log_encoding"`             // json or console
	VerboseLogging    bool   `json:"verbose_logging" yaml:"verbose_logging"`       // Log every kernel call at debug level
	MetricsCollection bool   `json:"metrics_collection" yaml:"metrics_collection"` // Enable in-process metrics collection
}

// SystemInfo contains system information for configuration validation
type SystemInfo struct {
	CPUCount      int
	PhysicalCores int    // 0 when unknown
	TotalMemory   uint64 // bytes, 0 when unknown
	Architecture  string
	OSType        string
}

// ConfigValidator validates and provides recommendations for configuration
type ConfigValidator struct {
	systemInfo SystemInfo
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultParallelThreshold = 4096
	DefaultMaxParallelism    = 16
	DefaultEpsilon           = 1e-9
	DefaultLogLevel          = "info"
	DefaultLogEncoding       = "json"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv
const EnvPrefix = "COLKERN_"

var (
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validLogEncodings = []string{"json", "console"}
)

// Initialize global configuration with defaults
func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		// Parallel Processing defaults
		ParallelThreshold: DefaultParallelThreshold,
		WorkerPoolSize:    0, // Auto-detect
		ChunkSize:         0, // Auto-calculate
		MaxParallelism:    DefaultMaxParallelism,
		OrderedMerge:      true,

		// Kernel defaults
		Epsilon:            DefaultEpsilon,
		JoinProbeNeighbors: false,
		SampleSeed:         0,

		// Debugging defaults
		LogLevel:          DefaultLogLevel,
		LogEncoding:       DefaultLogEncoding,
		VerboseLogging:    false,
		MetricsCollection: false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.ParallelThreshold <= 0 {
		return fmt.Errorf("ParallelThreshold must be positive, got %d", c.ParallelThreshold)
	}

	if c.WorkerPoolSize < 0 {
		return fmt.Errorf("WorkerPoolSize must be non-negative, got %d", c.WorkerPoolSize)
	}

	if c.ChunkSize < 0 {
		return fmt.Errorf("ChunkSize must be non-negative, got %d", c.ChunkSize)
	}

	if c.MaxParallelism <= 0 {
		return fmt.Errorf("MaxParallelism must be positive, got %d", c.MaxParallelism)
	}

	if !(c.Epsilon > 0) {
		return fmt.Errorf("Epsilon must be positive, got %g", c.Epsilon)
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("LogLevel must be one of %v, got %q", validLogLevels, c.LogLevel)
	}

	if !slices.Contains(validLogEncodings, c.LogEncoding) {
		return fmt.Errorf("LogEncoding must be one of %v, got %q", validLogEncodings, c.LogEncoding)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.ParallelThreshold == 0 {
		c.ParallelThreshold = defaults.ParallelThreshold
	}
	if c.MaxParallelism == 0 {
		c.MaxParallelism = defaults.MaxParallelism
	}
	if c.Epsilon == 0 {
		c.Epsilon = defaults.Epsilon
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogEncoding == "" {
		c.LogEncoding = defaults.LogEncoding
	}

	// Boolean fields keep their zero values so that an explicit false is not
	// overwritten. Loaders start from NewConfig() to get boolean defaults.

	return c
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data. Fields absent from the
// document keep their defaults.
func LoadFromJSON(data []byte) (Config, error) {
	config := NewConfig()
	if err := gojson.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	config := NewConfig()
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = gojson.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from COLKERN_* environment variables.
// Unparsable values are ignored.
func LoadFromEnv() Config {
	config := NewConfig()
	config.ApplyEnv()
	return config
}

// ApplyEnv overrides fields from COLKERN_* environment variables
func (c *Config) ApplyEnv() {
	envInt("PARALLEL_THRESHOLD", &c.ParallelThreshold)
	envInt("WORKER_POOL_SIZE", &c.WorkerPoolSize)
	envInt("CHUNK_SIZE", &c.ChunkSize)
	envInt("MAX_PARALLELISM", &c.MaxParallelism)
	envBool("ORDERED_MERGE", &c.OrderedMerge)

	if val := os.Getenv(EnvPrefix + "EPSILON"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			c.Epsilon = parsed
		}
	}
	envBool("JOIN_PROBE_NEIGHBORS", &c.JoinProbeNeighbors)
	if val := os.Getenv(EnvPrefix + "SAMPLE_SEED"); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 64); err == nil {
			c.SampleSeed = parsed
		}
	}

	if val := os.Getenv(EnvPrefix + "LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
	}
	if val := os.Getenv(EnvPrefix + "LOG_ENCODING"); val != "" {
		c.LogEncoding = strings.ToLower(val)
	}
	envBool("VERBOSE_LOGGING", &c.VerboseLogging)
	envBool("METRICS_COLLECTION", &c.MetricsCollection)
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dst = parsed
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			*dst = parsed
		}
	}
}

// GetSystemInfo returns system information for configuration validation
func GetSystemInfo() SystemInfo {
	info := SystemInfo{
		CPUCount:     runtime.NumCPU(),
		Architecture: runtime.GOARCH,
		OSType:       runtime.GOOS,
	}
	if cores, err := cpu.Counts(false); err == nil {
		info.PhysicalCores = cores
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return NewConfigValidatorFor(GetSystemInfo())
}

// NewConfigValidatorFor creates a validator for the given host
func NewConfigValidatorFor(info SystemInfo) *ConfigValidator {
	return &ConfigValidator{
		systemInfo: info,
	}
}

// Validate validates a configuration, resolves auto-detected values and
// returns recommendations
func (cv *ConfigValidator) Validate(config Config) (Config, []string, error) {
	var warnings []string
	validated := config

	if err := config.Validate(); err != nil {
		return Config{}, warnings, err
	}

	if config.WorkerPoolSize > cv.systemInfo.CPUCount*2 {
		warnings = append(warnings,
			fmt.Sprintf("Worker pool size (%d) exceeds 2x CPU count (%d), may cause contention",
				config.WorkerPoolSize, cv.systemInfo.CPUCount))
	}

	if cores := cv.systemInfo.PhysicalCores; cores > 0 && config.WorkerPoolSize > cores &&
		config.WorkerPoolSize <= cv.systemInfo.CPUCount*2 {
		warnings = append(warnings,
			fmt.Sprintf("Worker pool size (%d) exceeds physical core count (%d), floating point throughput may not scale",
				config.WorkerPoolSize, cores))
	}

	if total := cv.systemInfo.TotalMemory; total > 0 && config.ChunkSize > 0 {
		// Every worker holds at most one partition of float64 results in flight.
		workers := max(config.WorkerPoolSize, 1)
		if inFlight := uint64(config.ChunkSize) * 8 * uint64(workers); inFlight > total/4 { //nolint:gosec // validated non-negative
			warnings = append(warnings,
				fmt.Sprintf("Chunk size (%d) with %d workers buffers %d bytes, more than a quarter of system memory (%d bytes)",
					config.ChunkSize, workers, inFlight, total))
		}
	}

	if config.WorkerPoolSize == 0 {
		validated.WorkerPoolSize = min(cv.systemInfo.CPUCount, config.MaxParallelism)
		warnings = append(warnings,
			fmt.Sprintf("Auto-setting worker pool size to %d (CPU count %d, max parallelism %d)",
				validated.WorkerPoolSize, cv.systemInfo.CPUCount, config.MaxParallelism))
	}

	if !config.OrderedMerge {
		warnings = append(warnings,
			"Ordered merge disabled, index results are only guaranteed as sets")
	}

	return validated, warnings, nil
}

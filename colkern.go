// Package colkern provides vectorized kernels over numeric columns: null
// handling, statistics, sorting, grouped aggregation, tolerance joins,
// selection, sampling and elementwise vector math.
// This package is the sole public API for the library.
//
// A column is a []float64 in which NaN marks a null value. Kernels never
// mutate their inputs and always return freshly allocated results. Columns
// at least Config.ParallelThreshold long are split into contiguous
// partitions and processed by a worker pool.
package colkern

import (
	"fmt"
	"sync"
	"time"

	"github.com/paveg/colkern/internal/config"
	kerrors "github.com/paveg/colkern/internal/errors"
	"github.com/paveg/colkern/internal/kernel"
	"github.com/paveg/colkern/internal/logging"
	"github.com/paveg/colkern/internal/monitoring"
	"github.com/paveg/colkern/internal/parallel"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Config is the kernel configuration
type Config = config.Config

// Summary is the result of Describe
type Summary = kernel.Summary

// IndexPair is one match of MergeIndices
type IndexPair = kernel.IndexPair

// Pairs is the result of MergeIndices
type Pairs = kernel.Pairs

// Sampler is a seedable, concurrency-safe random source for Sample
type Sampler = kernel.Sampler

// OperationMetrics is one recorded kernel call
type OperationMetrics = monitoring.OperationMetrics

// MetricsSummary aggregates recorded kernel calls
type MetricsSummary = monitoring.MetricsSummary

// DefaultConfig returns the process-wide default configuration used by New
// when no WithConfig option is given. It starts as the built-in defaults.
func DefaultConfig() Config {
	return config.GetGlobalConfig()
}

// SetDefaultConfig validates cfg and makes it the process-wide default for
// kernels created afterwards. Existing kernels are not affected.
func SetDefaultConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	config.SetGlobalConfig(cfg)
	return nil
}

// LoadConfig reads a JSON or YAML configuration file and applies COLKERN_*
// environment overrides on top of it. An empty path starts from the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := config.NewConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// NewSampler returns a sampler whose draws are fully determined by seed
func NewSampler(seed uint64) *Sampler {
	return kernel.NewSampler(seed)
}

// ToleranceEqual reports |a-b| < eps
func ToleranceEqual(a, b, eps float64) bool {
	return kernel.ToleranceEqual(a, b, eps)
}

// Option configures a Kernel
type Option func(*options)

type options struct {
	config     Config
	logger     *zap.Logger
	registerer prometheus.Registerer
	sampler    *Sampler
}

// WithConfig sets the configuration. The default is DefaultConfig().
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the logger. Without it the kernel builds one from the
// configuration when VerboseLogging is set and logs nothing otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegisterer registers Prometheus instruments for every kernel call
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithSampler sets the sampler used by Sample
func WithSampler(s *Sampler) Option {
	return func(o *options) {
		o.sampler = s
	}
}

// Kernel runs column kernels on a shared worker pool. It is safe for
// concurrent use.
type Kernel struct {
	cfg         Config
	exec        *parallel.Executor
	engine      *kernel.Engine
	sampler     *Sampler
	logger      *zap.Logger
	collector   *monitoring.MetricsCollector
	instruments *monitoring.Instruments
	closeOnce   sync.Once
}

// New creates a kernel. Call Close to release its worker pool.
func New(opts ...Option) (*Kernel, error) {
	o := options{config: config.GetGlobalConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, warnings, err := config.NewConfigValidator().Validate(o.config)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.Nop()
		if cfg.VerboseLogging {
			if logger, err = logging.New(logging.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding}); err != nil {
				return nil, err
			}
		}
	}

	var instruments *monitoring.Instruments
	if o.registerer != nil {
		if instruments, err = monitoring.NewInstruments(o.registerer); err != nil {
			return nil, err
		}
	}

	sampler := o.sampler
	if sampler == nil {
		seed := cfg.SampleSeed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano()) //nolint:gosec // seed, sign is irrelevant
		}
		sampler = kernel.NewSampler(seed)
	}

	exec := parallel.NewExecutor(parallel.Options{
		Workers:   cfg.WorkerPoolSize,
		Threshold: cfg.ParallelThreshold,
		ChunkSize: cfg.ChunkSize,
		Ordered:   cfg.OrderedMerge,
	})

	engine := kernel.NewEngine(exec,
		kernel.WithEpsilon(cfg.Epsilon),
		kernel.WithNeighborProbing(cfg.JoinProbeNeighbors),
	)

	k := &Kernel{
		cfg:         cfg,
		exec:        exec,
		engine:      engine,
		sampler:     sampler,
		logger:      logger,
		collector:   monitoring.NewMetricsCollector(cfg.MetricsCollection),
		instruments: instruments,
	}

	for _, w := range warnings {
		logger.Debug("configuration adjusted", zap.String("detail", w))
	}
	logger.Debug("kernel created",
		zap.Int("workers", exec.Workers()),
		zap.Int("parallel_threshold", cfg.ParallelThreshold),
		zap.Bool("ordered_merge", cfg.OrderedMerge),
	)

	return k, nil
}

// Config returns the resolved configuration
func (k *Kernel) Config() Config {
	return k.cfg
}

// Metrics returns the calls recorded when MetricsCollection is enabled
func (k *Kernel) Metrics() []OperationMetrics {
	return k.collector.GetMetrics()
}

// MetricsSummary aggregates the recorded calls
func (k *Kernel) MetricsSummary() MetricsSummary {
	return k.collector.GetSummary()
}

// SetMetricsCollection starts or stops recording kernel calls
func (k *Kernel) SetMetricsCollection(enabled bool) {
	k.collector.SetEnabled(enabled)
}

// ResetMetrics discards the recorded calls
func (k *Kernel) ResetMetrics() {
	k.collector.Clear()
}

// Close stops the worker pool. Kernels called after Close run sequentially.
func (k *Kernel) Close() {
	k.closeOnce.Do(func() {
		k.exec.Close()
		_ = k.logger.Sync()
	})
}

// call runs fn as operation op over rows input values. It converts panics
// into Internal errors, and records logs and metrics.
func call[R any](k *Kernel, op string, rows int, fn func() (R, error)) (result R, err error) {
	start := time.Now()
	parallelRun := len(k.exec.Partitions(rows)) > 1

	err = k.collector.RecordOperation(op, rows, parallelRun, func() (runErr error) {
		defer func() {
			if r := recover(); r != nil {
				runErr = kerrors.NewInternalError(op, fmt.Errorf("panic: %v", r))
			}
		}()
		result, runErr = fn()
		return runErr
	})
	elapsed := time.Since(start)

	if k.instruments != nil {
		k.instruments.Observe(op, rows, elapsed, err)
	}

	if err != nil {
		k.logger.Warn("kernel call failed",
			zap.String("op", op),
			zap.Int("rows", rows),
			zap.Error(err),
		)
		var zero R
		return zero, err
	}

	if ce := k.logger.Check(zap.DebugLevel, "kernel call"); ce != nil {
		ce.Write(
			zap.String("op", op),
			zap.Int("rows", rows),
			zap.Bool("parallel", parallelRun),
			zap.Duration("duration", elapsed),
		)
	}
	return result, nil
}

func noError[R any](fn func() R) func() (R, error) {
	return func() (R, error) {
		return fn(), nil
	}
}

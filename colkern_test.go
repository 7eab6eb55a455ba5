package colkern_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colkern"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// parallelConfig splits every column into partitions of two.
func parallelConfig() colkern.Config {
	cfg := colkern.DefaultConfig()
	cfg.ParallelThreshold = 1
	cfg.WorkerPoolSize = 4
	cfg.ChunkSize = 2
	cfg.SampleSeed = 1
	return cfg
}

func newKernel(t *testing.T, opts ...colkern.Option) *colkern.Kernel {
	t.Helper()
	k, err := colkern.New(opts...)
	require.NoError(t, err)
	t.Cleanup(k.Close)
	return k
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		k := newKernel(t)
		cfg := k.Config()
		assert.Equal(t, 4096, cfg.ParallelThreshold)
		assert.Positive(t, cfg.WorkerPoolSize, "worker count is resolved")
		assert.True(t, cfg.OrderedMerge)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		cfg := colkern.DefaultConfig()
		cfg.Epsilon = -1
		_, err := colkern.New(colkern.WithConfig(cfg))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("close is idempotent", func(t *testing.T) {
		k, err := colkern.New(colkern.WithConfig(parallelConfig()))
		require.NoError(t, err)
		k.Close()
		k.Close()

		// kernels keep working sequentially
		idx, err := k.FindNullIndices([]float64{math.NaN(), 1, math.NaN()})
		require.NoError(t, err)
		assert.Equal(t, []int{0, 2}, idx)
	})
}

func TestKernelScenario(t *testing.T) {
	nan := math.NaN()
	col := []float64{1.0, nan, 3.0, nan, 5.0}

	for name, cfg := range map[string]colkern.Config{
		"sequential": colkern.DefaultConfig(),
		"parallel":   parallelConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			k := newKernel(t, colkern.WithConfig(cfg))

			nulls, err := k.FindNullIndices(col)
			require.NoError(t, err)
			assert.Equal(t, []int{1, 3}, nulls)

			dropped, err := k.DropNullValues(col)
			require.NoError(t, err)
			assert.Equal(t, []float64{1, 3, 5}, dropped)

			s, err := k.Describe(col)
			require.NoError(t, err)
			assert.Equal(t, []float64{3, 3, 2, 1, 5}, s.Slice())

			pairs, err := k.MergeIndices([]float64{1.0, 2.0}, []float64{2.0, 2.0})
			require.NoError(t, err)
			assert.Equal(t, []int{1, 0, 1, 1}, pairs.Flatten())

			filled, err := k.FillNullWithConstant(col, -1)
			require.NoError(t, err)
			assert.Equal(t, []float64{1, -1, 3, -1, 5}, filled)

			mask, err := k.GreaterThan(col, 2)
			require.NoError(t, err)
			idx, err := k.Where(mask)
			require.NoError(t, err)
			assert.Equal(t, []int{2, 4}, idx)

			order, err := k.Argsort(col)
			require.NoError(t, err)
			assert.Equal(t, []int{0, 2, 4, 1, 3}, order)

			sums, err := colkern.GroupBySum(k, []float64{1, 2, 3, 4}, []int16{1, 2, 1, 2})
			require.NoError(t, err)
			assert.Equal(t, map[int16]float64{1: 4, 2: 6}, sums)

			counts, err := colkern.GroupByCount(k, []uint32{7, 7, 8})
			require.NoError(t, err)
			assert.Equal(t, map[uint32]int{7: 2, 8: 1}, counts)
		})
	}
}

func TestKernelStatistics(t *testing.T) {
	k := newKernel(t, colkern.WithConfig(parallelConfig()))
	col := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	for name, tc := range map[string]struct {
		fn       func([]float64) (float64, error)
		expected float64
	}{
		"sum":             {k.Sum, 40},
		"mean":            {k.Mean, 5},
		"min":             {k.Min, 2},
		"max":             {k.Max, 9},
		"variance":        {k.Variance, 4},
		"std":             {k.Std, 2},
		"sample variance": {k.SampleVariance, 32.0 / 7.0},
		"sample std":      {k.SampleStd, math.Sqrt(32.0 / 7.0)},
		"norm":            {k.Norm, math.Sqrt(232)},
	} {
		t.Run(name, func(t *testing.T) {
			v, err := tc.fn(col)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, v, 1e-12)
		})
	}
}

func TestKernelVectorOps(t *testing.T) {
	k := newKernel(t, colkern.WithConfig(parallelConfig()))
	a := []float64{1, 2, 3}
	b := []float64{4, 5, 6}

	sum, err := k.Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 9}, sum)

	prod, err := k.Multiply(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 10, 18}, prod)

	scaled, err := k.Scale(a, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, scaled)

	dot, err := k.DotProduct(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 32.0, dot, 0)

	z, err := k.Normalize([]float64{5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, z)

	mapped, err := k.Map(a, math.Sqrt)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(2), mapped[1], 0)

	taken, err := k.Take(b, []int{2, 2, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 6, 4}, taken)
}

func TestKernelErrors(t *testing.T) {
	k := newKernel(t)

	_, err := k.Describe(nil)
	require.ErrorIs(t, err, colkern.ErrEmptyInput)

	_, err = k.Add([]float64{1}, []float64{1, 2})
	require.ErrorIs(t, err, colkern.ErrLengthMismatch)

	_, err = colkern.GroupBySum(k, []float64{1}, []int{})
	require.ErrorIs(t, err, colkern.ErrLengthMismatch)

	_, err = k.Sample([]float64{1, 2}, -1)
	require.ErrorIs(t, err, colkern.ErrInvalidSampleSize)

	_, err = k.Take([]float64{1, 2}, []int{2})
	require.ErrorIs(t, err, colkern.ErrIndexOutOfRange)

	var ke *colkern.KernelError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "Take", ke.Op)
	assert.Equal(t, colkern.KindIndexOutOfRange, ke.Kind)
}

func TestKernelRecoversPanics(t *testing.T) {
	for name, cfg := range map[string]colkern.Config{
		"sequential": colkern.DefaultConfig(),
		"parallel":   parallelConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			k := newKernel(t, colkern.WithConfig(cfg))

			out, err := k.Map([]float64{1, 2, 3, 4, 5}, func(v float64) float64 {
				if v == 4 {
					panic("bad value")
				}
				return v
			})
			assert.Nil(t, out)
			require.ErrorIs(t, err, colkern.ErrInternal)

			var ke *colkern.KernelError
			require.ErrorAs(t, err, &ke)
			assert.Equal(t, "Map", ke.Op)
			assert.Contains(t, errors.Unwrap(err).Error(), "bad value")
		})
	}
}

func TestKernelSampling(t *testing.T) {
	col := make([]float64, 100)
	for i := range col {
		col[i] = float64(i)
	}

	cfg := colkern.DefaultConfig()
	cfg.SampleSeed = 42

	a, err := newKernel(t, colkern.WithConfig(cfg)).Sample(col, 10)
	require.NoError(t, err)
	b, err := newKernel(t, colkern.WithConfig(cfg)).Sample(col, 10)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed gives the same draw")

	k := newKernel(t, colkern.WithSampler(colkern.NewSampler(42)))
	c, err := k.Sample(col, 10)
	require.NoError(t, err)
	assert.Equal(t, a, c)

	d, err := k.SampleWith(col, 10, colkern.NewSampler(42))
	require.NoError(t, err)
	assert.Equal(t, a, d)

	all, err := k.Sample(col, 1000)
	require.NoError(t, err)
	assert.Equal(t, col, all)
}

func TestKernelLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	k := newKernel(t, colkern.WithLogger(zap.New(core)))

	_, err := k.Sum([]float64{1, 2})
	require.NoError(t, err)
	_, err = k.Sum(nil)
	require.Error(t, err)

	calls := logs.FilterMessage("kernel call").All()
	require.Len(t, calls, 1)
	assert.Equal(t, zapcore.DebugLevel, calls[0].Level)
	assert.Equal(t, "Sum", calls[0].ContextMap()["op"])
	assert.Equal(t, int64(2), calls[0].ContextMap()["rows"])

	failures := logs.FilterMessage("kernel call failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.WarnLevel, failures[0].Level)
}

func TestKernelVerboseLogging(t *testing.T) {
	cfg := colkern.DefaultConfig()
	cfg.VerboseLogging = true
	cfg.LogLevel = "error"

	k := newKernel(t, colkern.WithConfig(cfg))
	_, err := k.Mean([]float64{1})
	require.NoError(t, err)
}

func TestKernelMetrics(t *testing.T) {
	cfg := parallelConfig()
	cfg.MetricsCollection = true
	reg := prometheus.NewRegistry()

	k := newKernel(t, colkern.WithConfig(cfg), colkern.WithRegisterer(reg))

	_, err := k.Describe([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	_, err = k.Add([]float64{1}, nil)
	require.Error(t, err)

	metrics := k.Metrics()
	require.Len(t, metrics, 2)
	assert.Equal(t, "Describe", metrics[0].Operation)
	assert.True(t, metrics[0].Parallel)
	assert.Equal(t, int64(4), metrics[0].RowsProcessed)
	assert.True(t, metrics[1].Failed)

	summary := k.MetricsSummary()
	assert.Equal(t, 2, summary.TotalOperations)
	assert.Equal(t, 1, summary.FailedOperations)

	expected := `
# HELP colkern_kernel_calls_total Total number of kernel calls by operation and status.
# TYPE colkern_kernel_calls_total counter
colkern_kernel_calls_total{op="Add",status="error"} 1
colkern_kernel_calls_total{op="Describe",status="ok"} 1
`
	require.NoError(t, promtest.GatherAndCompare(reg, strings.NewReader(expected), "colkern_kernel_calls_total"))
}

func TestKernelConcurrentUse(t *testing.T) {
	k := newKernel(t, colkern.WithConfig(parallelConfig()))
	col := make([]float64, 1000)
	for i := range col {
		col[i] = float64(i % 17)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				s, err := k.Describe(col)
				assert.NoError(t, err)
				assert.Equal(t, 1000, s.Count)

				sample, err := k.Sample(col, 10)
				assert.NoError(t, err)
				assert.Len(t, sample, 10)
			}
		}()
	}
	wg.Wait()
}

func TestArrowInterop(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	k := newKernel(t)
	col := []float64{3, math.NaN(), 1}

	arr := colkern.ColumnToArrow(col, mem, true)
	defer arr.Release()
	assert.Equal(t, 1, arr.NullN())

	back, err := colkern.ColumnFromArrow(arr)
	require.NoError(t, err)

	order, err := k.Argsort(back)
	require.NoError(t, err)

	idx := colkern.IndicesToArrow(order, mem)
	defer idx.Release()
	assert.Equal(t, []int64{2, 0, 1}, idx.(*array.Int64).Int64Values())

	nulls, err := k.IsNull(back)
	require.NoError(t, err)
	maskArr := colkern.MaskToArrow(nulls, mem)
	defer maskArr.Release()

	mask, err := colkern.MaskFromArrow(maskArr)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, mask)

	count, err := k.CountNulls(back)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := colkern.LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, colkern.DefaultConfig(), cfg)
	})

	t.Run("file with env override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "colkern.yaml")
		require.NoError(t, os.WriteFile(path, []byte("chunk_size: 64\nworker_pool_size: 2\n"), 0o600))
		t.Setenv("COLKERN_WORKER_POOL_SIZE", "3")

		cfg, err := colkern.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.ChunkSize)
		assert.Equal(t, 3, cfg.WorkerPoolSize)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := colkern.LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}

func TestToleranceEqual(t *testing.T) {
	assert.True(t, colkern.ToleranceEqual(1, 1+1e-10, 1e-9))
	assert.False(t, colkern.ToleranceEqual(1, 1+1e-8, 1e-9))
}

func TestDefaultConfig(t *testing.T) {
	original := colkern.DefaultConfig()
	t.Cleanup(func() { require.NoError(t, colkern.SetDefaultConfig(original)) })

	cfg := colkern.DefaultConfig()
	cfg.ParallelThreshold = 7
	cfg.SampleSeed = 9
	require.NoError(t, colkern.SetDefaultConfig(cfg))
	assert.Equal(t, 7, colkern.DefaultConfig().ParallelThreshold)

	k := newKernel(t)
	assert.Equal(t, 7, k.Config().ParallelThreshold)
	assert.Equal(t, uint64(9), k.Config().SampleSeed)

	explicit := newKernel(t, colkern.WithConfig(parallelConfig()))
	assert.Equal(t, 1, explicit.Config().ParallelThreshold)

	cfg.Epsilon = 0
	err := colkern.SetDefaultConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Equal(t, 7, colkern.DefaultConfig().ParallelThreshold, "rejected config is not installed")
}

func TestKernelMetricsToggle(t *testing.T) {
	k := newKernel(t)
	col := []float64{1, 2, 3}

	_, err := k.Sum(col)
	require.NoError(t, err)
	assert.Empty(t, k.Metrics(), "collection is off by default")

	k.SetMetricsCollection(true)
	_, err = k.Sum(col)
	require.NoError(t, err)
	_, err = k.Mean(col)
	require.NoError(t, err)
	require.Len(t, k.Metrics(), 2)
	assert.Equal(t, map[string]int{"Sum": 1, "Mean": 1}, k.MetricsSummary().OperationCounts)

	k.ResetMetrics()
	assert.Empty(t, k.Metrics())

	k.SetMetricsCollection(false)
	_, err = k.Sum(col)
	require.NoError(t, err)
	assert.Empty(t, k.Metrics())
}

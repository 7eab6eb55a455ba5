//nolint:testpackage // requires internal access to unexported types and functions
package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector(t *testing.T) {
	t.Run("create disabled collector", func(t *testing.T) {
		collector := NewMetricsCollector(false)
		assert.NotNil(t, collector)
		assert.False(t, collector.IsEnabled())
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("record operation with disabled collector", func(t *testing.T) {
		collector := NewMetricsCollector(false)

		callCount := 0
		err := collector.RecordOperation("Sum", 10, false, func() error {
			callCount++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, callCount)
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("record operation with enabled collector", func(t *testing.T) {
		collector := NewMetricsCollector(true)

		err := collector.RecordOperation("SortIndices", 5000, true, func() error {
			time.Sleep(time.Millisecond)
			return nil
		})
		require.NoError(t, err)

		metrics := collector.GetMetrics()
		require.Len(t, metrics, 1)
		assert.Equal(t, "SortIndices", metrics[0].Operation)
		assert.Equal(t, int64(5000), metrics[0].RowsProcessed)
		assert.True(t, metrics[0].Parallel)
		assert.False(t, metrics[0].Failed)
		assert.GreaterOrEqual(t, metrics[0].Duration, time.Millisecond)
		assert.GreaterOrEqual(t, metrics[0].MemoryUsed, int64(0))
	})

	t.Run("record failing operation", func(t *testing.T) {
		collector := NewMetricsCollector(true)
		boom := errors.New("boom")

		err := collector.RecordOperation("Add", 3, false, func() error { return boom })
		require.ErrorIs(t, err, boom)

		metrics := collector.GetMetrics()
		require.Len(t, metrics, 1)
		assert.True(t, metrics[0].Failed)
	})

	t.Run("toggle and clear", func(t *testing.T) {
		collector := NewMetricsCollector(true)
		_ = collector.RecordOperation("Mean", 1, false, func() error { return nil })

		collector.SetEnabled(false)
		_ = collector.RecordOperation("Mean", 1, false, func() error { return nil })
		assert.Len(t, collector.GetMetrics(), 1)

		collector.Clear()
		assert.Empty(t, collector.GetMetrics())
	})

	t.Run("metrics are copied", func(t *testing.T) {
		collector := NewMetricsCollector(true)
		collector.Add(OperationMetrics{Operation: "Where"})

		metrics := collector.GetMetrics()
		metrics[0].Operation = "changed"
		assert.Equal(t, "Where", collector.GetMetrics()[0].Operation)
	})
}

func TestMetricsSummary(t *testing.T) {
	t.Run("empty collector", func(t *testing.T) {
		assert.Equal(t, MetricsSummary{}, NewMetricsCollector(true).GetSummary())
	})

	t.Run("aggregates", func(t *testing.T) {
		collector := NewMetricsCollector(true)
		collector.Add(OperationMetrics{Operation: "Sum", Duration: 10 * time.Millisecond, RowsProcessed: 100, MemoryUsed: 8, Parallel: true})
		collector.Add(OperationMetrics{Operation: "Sum", Duration: 20 * time.Millisecond, RowsProcessed: 200, MemoryUsed: 16})
		collector.Add(OperationMetrics{Operation: "Take", Duration: 30 * time.Millisecond, RowsProcessed: 300, Failed: true})

		summary := collector.GetSummary()
		assert.Equal(t, 3, summary.TotalOperations)
		assert.Equal(t, 1, summary.ParallelOperations)
		assert.Equal(t, 1, summary.FailedOperations)
		assert.Equal(t, 60*time.Millisecond, summary.TotalDuration)
		assert.Equal(t, 20*time.Millisecond, summary.AverageDuration)
		assert.Equal(t, int64(600), summary.TotalRows)
		assert.Equal(t, int64(24), summary.TotalMemory)
		assert.Equal(t, map[string]int{"Sum": 2, "Take": 1}, summary.OperationCounts)
	})
}

func TestMetricsCollectorConcurrent(t *testing.T) {
	collector := NewMetricsCollector(true)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				collector.Add(OperationMetrics{Operation: "Norm"})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, collector.GetMetrics(), 100)
}

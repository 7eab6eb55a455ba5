package monitoring

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

const (
	defaultIterations = 5
	bytesToMB         = 1024 * 1024
)

// BenchmarkScenario is one kernel timed over a fixed column.
type BenchmarkScenario struct {
	Name       string
	Rows       int
	Iterations int
	Operation  func() error
}

// BenchmarkResult contains the results of running a benchmark scenario.
type BenchmarkResult struct {
	Scenario        BenchmarkScenario `json:"scenario"`
	AverageDuration time.Duration     `json:"average_duration"`
	MinDuration     time.Duration     `json:"min_duration"`
	MaxDuration     time.Duration     `json:"max_duration"`
	MemoryAllocated int64             `json:"memory_allocated"`
	RowsPerSec      float64           `json:"rows_per_sec"`
	Success         bool              `json:"success"`
	ErrorMessage    string            `json:"error_message,omitempty"`
}

// BenchmarkSuite runs a list of scenarios in order.
type BenchmarkSuite struct {
	scenarios []BenchmarkScenario
	results   []BenchmarkResult
}

// NewBenchmarkSuite creates a new benchmark suite.
func NewBenchmarkSuite() *BenchmarkSuite {
	return &BenchmarkSuite{}
}

// Add adds a scenario over rows input values. Iterations <= 0 uses the default.
func (bs *BenchmarkSuite) Add(name string, rows, iterations int, operation func() error) {
	if iterations <= 0 {
		iterations = defaultIterations
	}
	bs.scenarios = append(bs.scenarios, BenchmarkScenario{
		Name:       name,
		Rows:       rows,
		Iterations: iterations,
		Operation:  operation,
	})
}

// Run executes all benchmark scenarios and returns the results.
func (bs *BenchmarkSuite) Run() []BenchmarkResult {
	bs.results = make([]BenchmarkResult, 0, len(bs.scenarios))
	for _, scenario := range bs.scenarios {
		bs.results = append(bs.results, runScenario(scenario))
	}
	return bs.results
}

func runScenario(scenario BenchmarkScenario) BenchmarkResult {
	result := BenchmarkResult{Scenario: scenario, Success: true}

	var memBefore, memAfter runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&memBefore)

	var total time.Duration
	completed := 0
	for i := range scenario.Iterations {
		start := time.Now()
		if err := scenario.Operation(); err != nil {
			result.Success = false
			result.ErrorMessage = fmt.Sprintf("iteration %d failed: %v", i+1, err)
			break
		}
		d := time.Since(start)

		if completed == 0 || d < result.MinDuration {
			result.MinDuration = d
		}
		if d > result.MaxDuration {
			result.MaxDuration = d
		}
		total += d
		completed++
	}

	runtime.ReadMemStats(&memAfter)

	if completed > 0 {
		result.AverageDuration = total / time.Duration(completed)
		result.MemoryAllocated = int64(memAfter.TotalAlloc-memBefore.TotalAlloc) / int64(completed) //nolint:gosec // bounded by process allocation
	}
	if result.AverageDuration > 0 {
		result.RowsPerSec = float64(scenario.Rows) / result.AverageDuration.Seconds()
	}
	return result
}

// GetResults returns the benchmark results.
func (bs *BenchmarkSuite) GetResults() []BenchmarkResult {
	return bs.results
}

// GenerateReport renders the results as a markdown table.
func (bs *BenchmarkSuite) GenerateReport() string {
	if len(bs.results) == 0 {
		return "# Kernel Benchmark\n\nNo benchmark results available.\n"
	}

	var report strings.Builder
	report.WriteString("# Kernel Benchmark\n\n")
	report.WriteString("| Kernel | Rows | Iterations | Avg | Min | Max | Rows/Sec | MB/op | Status |\n")
	report.WriteString("|--------|------|------------|-----|-----|-----|----------|-------|--------|\n")

	failed := 0
	for _, r := range bs.results {
		status := "ok"
		if !r.Success {
			status = "failed: " + r.ErrorMessage
			failed++
		}
		fmt.Fprintf(&report, "| %s | %d | %d | %v | %v | %v | %.0f | %.2f | %s |\n",
			r.Scenario.Name,
			r.Scenario.Rows,
			r.Scenario.Iterations,
			r.AverageDuration,
			r.MinDuration,
			r.MaxDuration,
			r.RowsPerSec,
			float64(r.MemoryAllocated)/bytesToMB,
			status)
	}

	if failed > 0 {
		fmt.Fprintf(&report, "\n%d of %d kernels failed.\n", failed, len(bs.results))
	}
	return report.String()
}

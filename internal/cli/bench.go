package cli

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/paveg/colkern"
	"github.com/paveg/colkern/internal/config"
	"github.com/paveg/colkern/internal/monitoring"
	"github.com/spf13/cobra"
)

const (
	defaultBenchRows = 1_000_000
	benchGroups      = 64
	benchNullEvery   = 10
	// MergeIndices is quadratic in the number of equal keys, so it runs on a
	// smaller column.
	benchJoinDivisor = 100
)

type benchFlags struct {
	rows       int
	iterations int
	seed       uint64
}

func newBenchCommand(gf *globalFlags, stdout io.Writer) *cobra.Command {
	bf := &benchFlags{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the kernels on a generated column",
		Long: `
Generates a normally distributed column with every tenth value null and
times every kernel over it. Prints a markdown report.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bf.rows <= 0 {
				return fmt.Errorf("rows must be positive, got %d", bf.rows)
			}

			k, err := gf.kernel(cmd, colkern.WithSampler(colkern.NewSampler(bf.seed)))
			if err != nil {
				return err
			}
			defer k.Close()

			host := config.GetSystemInfo()
			fmt.Fprintf(stdout, "Host: %s/%s, %d CPUs (%d physical), %.1f GiB memory\n",
				host.OSType, host.Architecture, host.CPUCount, host.PhysicalCores, float64(host.TotalMemory)/(1<<30))
			fmt.Fprintf(stdout, "Workers: %d, parallel threshold: %d\n\n",
				k.Config().WorkerPoolSize, k.Config().ParallelThreshold)

			suite := benchSuite(k, bf)
			suite.Run()
			if _, err := io.WriteString(stdout, suite.GenerateReport()); err != nil {
				return err
			}

			var failed []string
			for _, r := range suite.GetResults() {
				if !r.Success {
					failed = append(failed, r.Scenario.Name)
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("kernels failed: %s", strings.Join(failed, ", "))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&bf.rows, "rows", defaultBenchRows, "number of rows to generate")
	flags.IntVar(&bf.iterations, "iterations", 5, "iterations per kernel")
	flags.Uint64Var(&bf.seed, "seed", 42, "seed for data generation and sampling")
	return cmd
}

func benchSuite(k *colkern.Kernel, bf *benchFlags) *monitoring.BenchmarkSuite {
	rng := rand.New(rand.NewPCG(bf.seed, bf.seed)) //nolint:gosec // benchmark data
	col := make([]float64, bf.rows)
	other := make([]float64, bf.rows)
	keys := make([]int64, bf.rows)
	for i := range col {
		col[i] = rng.NormFloat64()*100 + 50
		if i%benchNullEvery == benchNullEvery-1 {
			col[i] = math.NaN()
		}
		other[i] = rng.Float64()
		keys[i] = int64(rng.IntN(benchGroups))
	}

	joinRows := max(bf.rows/benchJoinDivisor, 1)
	left := make([]float64, joinRows)
	right := make([]float64, joinRows)
	for i := range left {
		left[i] = float64(rng.IntN(joinRows))
		right[i] = float64(rng.IntN(joinRows))
	}

	suite := monitoring.NewBenchmarkSuite()
	add := func(name string, rows int, fn func() error) {
		suite.Add(name, rows, bf.iterations, fn)
	}
	n := len(col)

	add("FindNullIndices", n, func() error { _, err := k.FindNullIndices(col); return err })
	add("DropNullValues", n, func() error { _, err := k.DropNullValues(col); return err })
	add("Describe", n, func() error { _, err := k.Describe(col); return err })
	add("Variance", n, func() error { _, err := k.Variance(col); return err })
	add("SortIndices", n, func() error { _, err := k.SortIndices(col, false); return err })
	add("GroupBySum", n, func() error { _, err := colkern.GroupBySum(k, col, keys); return err })
	add("MergeIndices", 2*joinRows, func() error { _, err := k.MergeIndices(left, right); return err })
	add("GreaterThan+Where", n, func() error {
		mask, err := k.GreaterThan(col, 50)
		if err != nil {
			return err
		}
		_, err = k.Where(mask)
		return err
	})
	add("Sample", n, func() error { _, err := k.Sample(col, n/10); return err })
	add("Add", n, func() error { _, err := k.Add(col, other); return err })
	add("DotProduct", n, func() error { _, err := k.DotProduct(col, other); return err })
	add("Normalize", n, func() error { _, err := k.Normalize(col); return err })
	return suite
}

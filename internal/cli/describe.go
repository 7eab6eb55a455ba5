package cli

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"
)

func newDescribeCommand(gf *globalFlags, stdin io.Reader, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [file]",
		Short: "Summarize a column of numbers",
		Long: `
Reads one number per line from file, or from stdin when no file is given,
and prints count, null count, mean, sample standard deviation, min and max.
Empty lines, "NaN" and "null" are null values.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			col, err := readColumn(in)
			if err != nil {
				return err
			}

			k, err := gf.kernel(cmd)
			if err != nil {
				return err
			}
			defer k.Close()

			summary, err := k.Describe(col)
			if err != nil {
				return err
			}
			nulls, err := k.CountNulls(col)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(stdout)
			rows := []table.Row{
				{"count", strconv.Itoa(summary.Count)},
				{"nulls", strconv.Itoa(nulls)},
				{"mean", formatFloat(summary.Mean)},
				{"std", formatFloat(summary.Std)},
				{"min", formatFloat(summary.Min)},
				{"max", formatFloat(summary.Max)},
			}
			for _, row := range rows {
				t.AppendRow(row)
			}
			t.Render()
			return nil
		},
	}
}

// readColumn parses one value per line. Null lines become NaN.
func readColumn(r io.Reader) ([]float64, error) {
	var col []float64
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(text) {
		case "", "nan", "null":
			col = append(col, math.NaN())
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid number %q", line, text)
		}
		col = append(col, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading column: %w", err)
	}
	return col, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Package cli implements the colkern command line.
package cli

import (
	"io"

	"github.com/paveg/colkern"
	"github.com/paveg/colkern/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags are the persistent flags shared by every subcommand
type globalFlags struct {
	configPath string
	workers    int
	threshold  int
	logLevel   string
	verbose    bool
	stderr     io.Writer
}

// NewRootCommand builds the colkern command tree. Output goes to stdout and
// stderr so that tests can capture it.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	gf := &globalFlags{stderr: stderr}

	rc := &cobra.Command{
		Use:   "colkern",
		Short: "Vectorized kernels over numeric columns",
		Long: `colkern runs null handling, statistics, sorting, grouping, joining and
vector kernels over numeric columns.

Configuration is read from --config (JSON or YAML), then COLKERN_*
environment variables, then command line flags.
`,
		SilenceUsage: true,
	}

	flags := rc.PersistentFlags()
	flags.StringVarP(&gf.configPath, "config", "c", "", "configuration file to read from")
	flags.IntVar(&gf.workers, "workers", 0, "number of worker goroutines (0 = auto)")
	flags.IntVar(&gf.threshold, "threshold", 0, "minimum column length processed in parallel")
	flags.StringVar(&gf.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVarP(&gf.verbose, "verbose", "v", false, "log every kernel call to stderr (implies --log-level debug)")

	rc.AddCommand(newDescribeCommand(gf, stdin, stdout))
	rc.AddCommand(newBenchCommand(gf, stdout))
	rc.AddCommand(newVersionCommand(stdout))

	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// config loads the configuration and applies the flags that were set
func (gf *globalFlags) config(flags *pflag.FlagSet) (colkern.Config, error) {
	cfg, err := colkern.LoadConfig(gf.configPath)
	if err != nil {
		return colkern.Config{}, err
	}
	if flags.Changed("workers") {
		cfg.WorkerPoolSize = gf.workers
	}
	if flags.Changed("threshold") {
		cfg.ParallelThreshold = gf.threshold
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = gf.logLevel
	}
	if gf.verbose {
		cfg.VerboseLogging = true
		if !flags.Changed("log-level") {
			cfg.LogLevel = "debug"
		}
	}
	return cfg, nil
}

// kernel makes the resolved configuration the process default and builds a
// kernel from it. Verbose logs go to the command's stderr.
func (gf *globalFlags) kernel(cmd *cobra.Command, opts ...colkern.Option) (*colkern.Kernel, error) {
	cfg, err := gf.config(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := colkern.SetDefaultConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.VerboseLogging {
		logger, err := logging.New(logging.Config{
			Level:    cfg.LogLevel,
			Encoding: cfg.LogEncoding,
			Output:   gf.stderr,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, colkern.WithLogger(logger))
	}
	return colkern.New(opts...)
}

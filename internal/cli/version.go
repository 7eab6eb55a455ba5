package cli

import (
	"fmt"
	"io"

	"github.com/paveg/colkern/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand(stdout io.Writer) *cobra.Command {
	var deps bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Info()
			if _, err := io.WriteString(stdout, info.String()); err != nil {
				return err
			}
			build := "development"
			if version.IsRelease() {
				build = "release"
			}
			fmt.Fprintf(stdout, "Build: %s\n", build)
			if !deps {
				return nil
			}
			if info.Main.Path != "" {
				fmt.Fprintf(stdout, "Module: %s %s\n", info.Main.Path, info.Main.Version)
			}
			for _, d := range info.Deps {
				fmt.Fprintf(stdout, "  %s %s\n", d.Path, d.Version)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&deps, "deps", false, "also print module dependencies")
	return cmd
}

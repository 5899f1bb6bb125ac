package cmd

import (
	"vertextester/internal/version"

	"github.com/spf13/cobra"
)

// newVersionCmd creates and returns the version command.
func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show the version, commit and build time of the vertextester binary.

Values are injected at build time with -ldflags; development builds report
"dev" and "unknown".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return version.Get().Write(cmd.OutOrStdout(), short)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")
	return cmd
}

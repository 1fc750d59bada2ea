package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artifactgraph/depcollect/cmd/depcollect/cli"
	"github.com/artifactgraph/depcollect/cmd/depcollect/output"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(console *output.Console) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			console.Println(fmt.Sprintf("depcollect %s (%s, built %s)", cli.Version, cli.Commit, cli.Date))
			return nil
		},
	}
}

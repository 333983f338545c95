package commands

import (
	"github.com/spf13/cobra"

	"github.com/llamastack/llsctl/cmd/llsctl/handlers"
)

// Init returns the command that runs the interactive configuration wizard.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Long: `Walk through the deployment configuration interactively and write the
result to a YAML file. Every key in the file can later be overridden with an
LLSCTL_* environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: ~/.llsctl.yaml)")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/llamastack/llsctl/cmd/llsctl/handlers"
)

// Setup returns the command that installs the operator.
func Setup() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Install the operator and catalog source",
		Long: `Install the LlamaStack operator through OLM and wait for its controller
to become ready. When a catalog image is configured, a dedicated catalog
source is installed first; otherwise the community catalog is used.

Re-running setup against a cluster with a healthy controller does not churn
the subscription.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Setup(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ~/.llsctl.yaml)")

	return cmd
}

// Cleanup returns the command that removes the operator.
func Cleanup() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove the operator and catalog source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Cleanup(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ~/.llsctl.yaml)")

	return cmd
}

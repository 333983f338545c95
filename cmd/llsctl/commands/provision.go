package commands

import (
	"github.com/spf13/cobra"

	"github.com/llamastack/llsctl/cmd/llsctl/handlers"
)

// Provision returns the command that deploys the platform components.
//
// An optional positional argument selects an overlay, overriding the
// configured one for this run:
//
//	llsctl provision
//	llsctl provision reference-auth
func Provision() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "provision [overlay]",
		Short: "Deploy the platform components",
		Long: `Deploy the platform: namespace, inference credentials, access policy,
vector database, distribution, and route. Stages run in order; each applies
its resource with bounded retries and waits for readiness where the component
reports it.

An optional overlay argument layers a feature set on top, e.g.
'reference-auth' for the Keycloak identity provider.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overlay := ""
			if len(args) == 1 {
				overlay = args[0]
			}
			return handlers.Provision(cmd.Context(), configPath, overlay)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ~/.llsctl.yaml)")

	return cmd
}

// Unprovision returns the command that removes everything provision creates.
func Unprovision() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "unprovision",
		Short: "Remove the platform components",
		Long: `Remove every resource provision can create, in reverse creation order.
Resources that are already gone are skipped, so unprovision is safe to re-run
and works against partially provisioned clusters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Unprovision(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ~/.llsctl.yaml)")

	return cmd
}

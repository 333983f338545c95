// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the llsctl CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llsctl",
		Short: "Provision the LlamaStack platform onto a Kubernetes cluster",
		Long: `llsctl drives the full lifecycle of a LlamaStack platform deployment:
operator installation, component provisioning with readiness tracking, and
symmetric teardown.

Typical flow:
  llsctl init          # interactive configuration
  llsctl setup         # install the operator
  llsctl provision     # deploy the platform
  llsctl unprovision   # remove the platform
  llsctl cleanup       # remove the operator`,
	}

	cmd.AddCommand(Init())
	cmd.AddCommand(Setup())
	cmd.AddCommand(Provision())
	cmd.AddCommand(Unprovision())
	cmd.AddCommand(Cleanup())
	cmd.AddCommand(Version())

	return cmd
}

// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the blunux-installer CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blunux-installer",
		Short: "Install Blunux onto a target disk",
	}

	cmd.AddCommand(Install())
	cmd.AddCommand(Disks())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

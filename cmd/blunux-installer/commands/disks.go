package commands

import (
	"github.com/spf13/cobra"

	"github.com/blunux/installer/cmd/blunux-installer/handlers"
)

// Disks returns the command that lists candidate installation disks.
func Disks() *cobra.Command {
	return &cobra.Command{
		Use:   "disks",
		Short: "List candidate installation disks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Disks(cmd.Context())
		},
	}
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/blunux/installer/cmd/blunux-installer/handlers"
)

// Install returns the command that runs the full installation.
//
// Optional flags:
//
//	--config, -c: path to a YAML config file (default: auto-detect)
//	--yes:        skip the destructive confirmation (unattended installs)
//	--no-tui:     plain line-based progress output
//	--metrics-listen: expose Prometheus metrics on the given address
func Install() *cobra.Command {
	var opts handlers.InstallOptions

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Run the installation",
		Long: `Install Blunux onto a target disk.

Settings come from a YAML config file when one is found, and the interactive
wizard fills whatever is missing. A complete config file together with --yes
yields a fully unattended run.

The installation erases the target disk. There is no rollback: a failed run
leaves the disk as-is for inspection.

Examples:
  # Interactive installation
  blunux-installer install

  # Unattended installation from a config file
  blunux-installer install -c /root/config.yaml --yes

  # Watch a fleet install remotely
  blunux-installer install -c config.yaml --yes --metrics-listen :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Install(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: auto-detect)")
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "Skip the destructive confirmation")
	cmd.Flags().BoolVar(&opts.NoTUI, "no-tui", false, "Plain line-based progress output")
	cmd.Flags().StringVar(&opts.MetricsListen, "metrics-listen", "", "Expose Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

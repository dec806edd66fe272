// Package main is the entry point for the blunux-installer CLI.
//
// blunux-installer performs an unattended installation of Blunux onto a
// target disk: partitioning, optional LUKS encryption, base-system
// bootstrap, system configuration and boot setup. Settings come from a YAML
// config file, the interactive wizard, or both.
//
// Commands: install, disks, version, completion.
//
// For detailed usage information, run:
//
//	blunux-installer --help
package main

import (
	"fmt"
	"os"

	"github.com/blunux/installer/cmd/blunux-installer/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

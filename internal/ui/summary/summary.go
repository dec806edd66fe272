// Package summary renders the pre-install confirmation summary and the
// final result boxes.
package summary

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/blunux/installer/internal/config"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorDim    = lipgloss.Color("#6b7280")

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)

	successBoxStyle = boxStyle.BorderForeground(colorGreen)
	failureBoxStyle = boxStyle.BorderForeground(colorRed)

	headingStyle = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorDim).Width(16)
	dangerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	noteStyle    = lipgloss.NewStyle().Foreground(colorYellow)
)

// Render formats the installation summary shown before the destructive
// confirmation.
func Render(cfg *config.Config, uefi bool) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render(fmt.Sprintf("%s %s installation summary", cfg.Distro.Name, cfg.Distro.Version)))
	b.WriteString("\n\n")

	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(label), value)
	}

	firmware := "BIOS (MBR)"
	if uefi {
		firmware = "UEFI (GPT)"
	}

	row("Target disk", cfg.Install.TargetDisk)
	row("Firmware", firmware)
	row("Hostname", cfg.Install.Hostname)
	row("Username", cfg.Install.Username)
	row("Timezone", cfg.Locale.Timezone)
	row("Languages", strings.Join(cfg.Locale.Languages, ", "))
	row("Keyboard", strings.Join(cfg.Locale.Keyboards, ", "))
	row("Kernel", cfg.Kernel.Type)
	row("Bootloader", cfg.Install.Bootloader)
	row("Swap", cfg.Disk.Swap.Label())
	row("Encryption", yesNo(cfg.Install.UseEncryption))
	row("Autologin", yesNo(cfg.Install.Autologin))
	if cfg.InputMethod.Enabled {
		row("Input method", cfg.InputMethod.Engine)
	}
	if selected := cfg.Packages.SelectedScripts(); len(selected) > 0 {
		row("Packages", fmt.Sprintf("%d selected (installed after first boot)", len(selected)))
	}

	b.WriteString("\n")
	b.WriteString(dangerStyle.Render(fmt.Sprintf("ALL DATA ON %s WILL BE ERASED.", cfg.Install.TargetDisk)))

	return b.String()
}

// Success formats the final box after a completed run.
func Success(cfg *config.Config) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(fmt.Sprintf("%s installed successfully!", cfg.Distro.Name)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Log in as %q after reboot.\n", cfg.Install.Username)
	if len(cfg.Packages.SelectedScripts()) > 0 {
		b.WriteString("Run ~/install-packages.sh to install the selected packages.\n")
	}
	if cfg.Kernel.Type == "linux-bore" {
		b.WriteString(noteStyle.Render("Run ~/setup-linux-bore.sh to complete the kernel setup."))
		b.WriteString("\n")
	}
	b.WriteString("\nRemove the installation medium and reboot.")
	return successBoxStyle.Render(b.String())
}

// Failure formats the final box after a failed run. The disk is left as-is
// for inspection.
func Failure(lastError string) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Installation failed"))
	b.WriteString("\n\n")
	b.WriteString(lastError)
	b.WriteString("\n\n")
	b.WriteString(noteStyle.Render("The disk was left in its current state for inspection."))
	return failureBoxStyle.Render(b.String())
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

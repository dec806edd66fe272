package wizard

import (
	"context"
	"fmt"
	"regexp"

	"github.com/charmbracelet/huh"

	"github.com/blunux/installer/internal/config"
	"github.com/blunux/installer/internal/disk"
)

// hostnameRegex validates hostnames: 1-63 lowercase alphanumeric with
// hyphens, not leading or trailing.
var hostnameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// usernameRegex follows useradd's default NAME_REGEX.
var usernameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

// runDiskGroup prompts for the target disk. Always asked unless the file
// already names one: picking the wrong disk is unrecoverable.
func runDiskGroup(ctx context.Context, cfg *config.Config, disks []disk.TargetDisk) error {
	if cfg.Install.TargetDisk != "" {
		return nil
	}
	if len(disks) == 0 {
		return fmt.Errorf("no installation target disks found")
	}

	options := make([]huh.Option[string], 0, len(disks))
	for _, d := range disks {
		options = append(options,
			huh.NewOption(fmt.Sprintf("%s  %s  %s", d.Device, d.Size, d.Model), d.Device))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Target Disk").
				Description("ALL DATA ON THE SELECTED DISK WILL BE ERASED").
				Options(options...).
				Value(&cfg.Install.TargetDisk),
		).Title("Installation Target"),
	).RunWithContext(ctx)
}

// runIdentityGroup prompts for hostname and username.
func runIdentityGroup(ctx context.Context, cfg *config.Config) error {
	if cfg.LoadedFromFile {
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Hostname").
				Description("Name of this computer on the network").
				Placeholder("blunux").
				Value(&cfg.Install.Hostname).
				Validate(validateHostname),
			huh.NewInput().
				Title("Username").
				Description("Name of the first user account").
				Placeholder("user").
				Value(&cfg.Install.Username).
				Validate(validateUsername),
		).Title("Identity"),
	).RunWithContext(ctx)
}

// runPasswordsGroup prompts for the root and user passwords. Passwords are
// never read from a config file half-filled; they are asked whenever empty.
func runPasswordsGroup(ctx context.Context, cfg *config.Config) error {
	var fields []huh.Field

	if cfg.Install.RootPassword == "" {
		fields = append(fields,
			huh.NewInput().
				Title("Root Password").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Install.RootPassword).
				Validate(validatePassword))
	}
	if cfg.Install.UserPassword == "" {
		fields = append(fields,
			huh.NewInput().
				Title(fmt.Sprintf("Password for %s", cfg.Install.Username)).
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Install.UserPassword).
				Validate(validatePassword))
	}
	if len(fields) == 0 {
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(fields...).Title("Passwords"),
	).RunWithContext(ctx)
}

// runLocaleGroup prompts for timezone and keyboard layout.
func runLocaleGroup(ctx context.Context, cfg *config.Config) error {
	if cfg.LoadedFromFile {
		return nil
	}

	timezone := cfg.Locale.Timezone
	keyboard := "us"
	if len(cfg.Locale.Keyboards) > 0 {
		keyboard = cfg.Locale.Keyboards[0]
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Timezone").
				Options(
					huh.NewOption("Asia/Seoul", "Asia/Seoul"),
					huh.NewOption("Asia/Tokyo", "Asia/Tokyo"),
					huh.NewOption("Asia/Shanghai", "Asia/Shanghai"),
					huh.NewOption("Europe/Berlin", "Europe/Berlin"),
					huh.NewOption("Europe/London", "Europe/London"),
					huh.NewOption("America/New_York", "America/New_York"),
					huh.NewOption("America/Los_Angeles", "America/Los_Angeles"),
					huh.NewOption("UTC", "UTC"),
				).
				Value(&timezone),
			huh.NewSelect[string]().
				Title("Keyboard Layout").
				Options(
					huh.NewOption("US (QWERTY)", "us"),
					huh.NewOption("German", "de"),
					huh.NewOption("French", "fr"),
					huh.NewOption("UK", "uk"),
				).
				Value(&keyboard),
		).Title("Locale"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	cfg.Locale.Timezone = timezone
	cfg.Locale.Keyboards = []string{keyboard}
	return nil
}

// runSystemGroup prompts for kernel, bootloader, swap and autologin.
func runSystemGroup(ctx context.Context, cfg *config.Config) error {
	if cfg.LoadedFromFile {
		return nil
	}

	swap := string(cfg.Disk.Swap)

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Kernel").
				Options(
					huh.NewOption("linux (stable)", "linux"),
					huh.NewOption("linux-lts (long-term support)", "linux-lts"),
					huh.NewOption("linux-zen (desktop tuned)", "linux-zen"),
					huh.NewOption("linux-bore (BORE scheduler, installed after first boot)", "linux-bore"),
				).
				Value(&cfg.Kernel.Type),
			huh.NewSelect[string]().
				Title("Bootloader").
				Description("Direct boot (nmbl) needs UEFI firmware").
				Options(
					huh.NewOption("GRUB (conventional)", "grub"),
					huh.NewOption("No bootloader (EFISTUB direct boot)", "nmbl"),
				).
				Value(&cfg.Install.Bootloader),
			huh.NewSelect[string]().
				Title("Swap").
				Options(
					huh.NewOption("Swap file, up to 8 GiB", "file"),
					huh.NewOption("Small (RAM/2)", "small"),
					huh.NewOption("Suspend-capable (RAM size)", "suspend"),
					huh.NewOption("None", "none"),
				).
				Value(&swap),
			huh.NewConfirm().
				Title("Enable autologin?").
				Value(&cfg.Install.Autologin),
		).Title("System"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	cfg.Disk.Swap = config.ParseSwapMode(swap)
	return nil
}

// runEncryptionGroup prompts for full-disk encryption and its passphrase.
func runEncryptionGroup(ctx context.Context, cfg *config.Config) error {
	if !cfg.LoadedFromFile {
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Encrypt the root partition?").
					Description("LUKS2 full-disk encryption, unlocked with a passphrase at boot").
					Value(&cfg.Install.UseEncryption),
			).Title("Encryption"),
		).RunWithContext(ctx)
		if err != nil {
			return err
		}
	}

	if cfg.Install.UseEncryption && cfg.Install.EncryptionPassword == "" {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Encryption Passphrase").
					EchoMode(huh.EchoModePassword).
					Value(&cfg.Install.EncryptionPassword).
					Validate(validatePassword),
			).Title("Encryption"),
		).RunWithContext(ctx)
	}

	return nil
}

// runPackagesGroup prompts for the applications to install after first boot.
func runPackagesGroup(ctx context.Context, cfg *config.Config) error {
	if cfg.LoadedFromFile {
		return nil
	}

	var selected []string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Applications").
				Description("Installed by ~/install-packages.sh after first boot").
				Options(
					huh.NewOption("KDE extras", "kde"),
					huh.NewOption("Firefox", "firefox"),
					huh.NewOption("Chrome", "chrome"),
					huh.NewOption("LibreOffice", "libreoffice"),
					huh.NewOption("TeX Live", "texlive"),
					huh.NewOption("VS Code", "vscode"),
					huh.NewOption("Git tooling", "git"),
					huh.NewOption("Rust", "rust"),
					huh.NewOption("Julia", "julia"),
					huh.NewOption("Node.js", "nodejs"),
					huh.NewOption("GitHub CLI", "github-cli"),
					huh.NewOption("VLC", "vlc"),
					huh.NewOption("OBS Studio", "obs"),
					huh.NewOption("Steam", "steam"),
					huh.NewOption("VirtualBox", "virtualbox"),
					huh.NewOption("Docker", "docker"),
					huh.NewOption("Bluetooth", "bluetooth"),
					huh.NewOption("Samba", "samba"),
				).
				Value(&selected),
		).Title("Packages"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	applyPackageSelection(&cfg.Packages, selected)
	return nil
}

// applyPackageSelection maps wizard selections onto the package catalog.
func applyPackageSelection(p *config.Packages, selected []string) {
	for _, name := range selected {
		switch name {
		case "kde":
			p.KDE = true
		case "firefox":
			p.Firefox = true
		case "chrome":
			p.Chrome = true
		case "libreoffice":
			p.LibreOffice = true
		case "texlive":
			p.TexLive = true
		case "vscode":
			p.VSCode = true
		case "git":
			p.Git = true
		case "rust":
			p.Rust = true
		case "julia":
			p.Julia = true
		case "nodejs":
			p.NodeJS = true
		case "github-cli":
			p.GithubCLI = true
		case "vlc":
			p.VLC = true
		case "obs":
			p.OBS = true
		case "steam":
			p.Steam = true
		case "virtualbox":
			p.VirtualBox = true
		case "docker":
			p.Docker = true
		case "bluetooth":
			p.Bluetooth = true
		case "samba":
			p.Samba = true
		}
	}
}

func validateHostname(s string) error {
	if !hostnameRegex.MatchString(s) {
		return fmt.Errorf("1-63 lowercase alphanumeric characters or hyphens")
	}
	return nil
}

func validateUsername(s string) error {
	if !usernameRegex.MatchString(s) {
		return fmt.Errorf("lowercase letters, digits, - and _, starting with a letter or _")
	}
	return nil
}

func validatePassword(s string) error {
	if len(s) < 4 {
		return fmt.Errorf("at least 4 characters")
	}
	return nil
}

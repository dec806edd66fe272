// Package config defines the installer configuration and its YAML loader.
//
// A fully populated Config is assembled before the pipeline starts, either
// from a config file, from the interactive wizard, or both (file values are
// trusted and the wizard only prompts for what is missing).
package config

import (
	"fmt"
	"strings"
)

// SwapMode selects how the swap file is sized.
type SwapMode string

const (
	SwapNone    SwapMode = "none"    // no swap
	SwapSmall   SwapMode = "small"   // RAM / 2
	SwapSuspend SwapMode = "suspend" // RAM, for hibernation
	SwapFile    SwapMode = "file"    // min(RAM, 8 GiB)
)

// ParseSwapMode maps a config string to a SwapMode, defaulting to SwapFile.
func ParseSwapMode(s string) SwapMode {
	switch SwapMode(strings.ToLower(s)) {
	case SwapNone, SwapSmall, SwapSuspend, SwapFile:
		return SwapMode(strings.ToLower(s))
	default:
		return SwapFile
	}
}

// Label returns the human-readable description shown in the summary.
func (m SwapMode) Label() string {
	switch m {
	case SwapNone:
		return "none"
	case SwapSmall:
		return "small (RAM/2)"
	case SwapSuspend:
		return "suspend (RAM size)"
	default:
		return "file (up to 8 GiB)"
	}
}

// Distro identifies the distribution being installed.
type Distro struct {
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// Locale holds language, timezone and keyboard settings.
type Locale struct {
	Languages []string `mapstructure:"language"`
	Timezone  string   `mapstructure:"timezone"`
	Keyboards []string `mapstructure:"keyboard"`
}

// HasLanguage reports whether any configured language contains prefix
// (e.g. "ko" matches "ko_KR").
func (l Locale) HasLanguage(prefix string) bool {
	for _, lang := range l.Languages {
		if strings.Contains(lang, prefix) {
			return true
		}
	}
	return false
}

// IsCJK reports whether a Korean, Japanese or Chinese locale is configured.
func (l Locale) IsCJK() bool {
	return l.HasLanguage("ko") || l.HasLanguage("ja") || l.HasLanguage("zh")
}

// InputMethod selects the input-method engine for CJK locales.
type InputMethod struct {
	Enabled bool   `mapstructure:"enabled"`
	Engine  string `mapstructure:"engine"` // kime, fcitx5 or ibus
}

// Kernel selects the kernel package.
type Kernel struct {
	Type string `mapstructure:"type"` // linux, linux-lts, linux-zen, linux-bore
}

// Effective returns the kernel package installed during the run.
// linux-bore is an AUR build that cannot be installed by pacstrap; the stock
// kernel is installed instead and bore is set up after first boot.
func (k Kernel) Effective() string {
	if k.Type == "linux-bore" {
		return "linux"
	}
	return k.Type
}

// DiskOptions holds disk-related tunables outside partitioning itself.
type DiskOptions struct {
	Swap SwapMode `mapstructure:"swap"`
}

// Install holds the target disk, identity and boot choices for the run.
type Install struct {
	TargetDisk         string `mapstructure:"target_disk"`
	Hostname           string `mapstructure:"hostname"`
	Username           string `mapstructure:"username"`
	RootPassword       string `mapstructure:"root_password"`
	UserPassword       string `mapstructure:"user_password"`
	UseEncryption      bool   `mapstructure:"use_encryption"`
	EncryptionPassword string `mapstructure:"encryption_password"`
	Bootloader         string `mapstructure:"bootloader"` // grub or nmbl
	Autologin          bool   `mapstructure:"autologin"`
}

// Config is the immutable input to the installation pipeline.
type Config struct {
	Distro      Distro      `mapstructure:"blunux"`
	Locale      Locale      `mapstructure:"locale"`
	InputMethod InputMethod `mapstructure:"input_method"`
	Kernel      Kernel      `mapstructure:"kernel"`
	Disk        DiskOptions `mapstructure:"disk"`
	Install     Install     `mapstructure:"install"`
	Packages    Packages    `mapstructure:"packages"`

	// LoadedFromFile is true when the config came from a YAML file; the
	// wizard then skips prompts for fields that are already populated.
	LoadedFromFile bool `mapstructure:"-"`
}

// Default returns a Config with the shipped defaults applied.
func Default() *Config {
	return &Config{
		Distro: Distro{Version: "1.0", Name: "blunux"},
		Locale: Locale{
			Languages: []string{"ko_KR"},
			Timezone:  "Asia/Seoul",
			Keyboards: []string{"us"},
		},
		InputMethod: InputMethod{Enabled: true, Engine: "kime"},
		Kernel:      Kernel{Type: "linux"},
		Disk:        DiskOptions{Swap: SwapFile},
		Install: Install{
			Hostname:   "blunux",
			Username:   "user",
			Bootloader: "grub",
			Autologin:  true,
		},
	}
}

// Validate checks the enumerated fields. It is called after loading and
// again after the wizard completes.
func (c *Config) Validate() error {
	switch c.Install.Bootloader {
	case "grub", "nmbl":
	default:
		return fmt.Errorf("install.bootloader must be \"grub\" or \"nmbl\", got %q", c.Install.Bootloader)
	}

	switch c.Kernel.Type {
	case "linux", "linux-lts", "linux-zen", "linux-bore":
	default:
		return fmt.Errorf("kernel.type %q is not a supported kernel", c.Kernel.Type)
	}

	if c.InputMethod.Enabled {
		switch c.InputMethod.Engine {
		case "kime", "fcitx5", "ibus":
		default:
			return fmt.Errorf("input_method.engine %q is not one of kime, fcitx5, ibus", c.InputMethod.Engine)
		}
	}

	if c.Install.Hostname == "" {
		return fmt.Errorf("install.hostname must not be empty")
	}
	if c.Install.Username == "" {
		return fmt.Errorf("install.username must not be empty")
	}
	if c.Install.UseEncryption && c.Install.EncryptionPassword == "" {
		return fmt.Errorf("install.use_encryption is set but encryption_password is empty")
	}

	return nil
}

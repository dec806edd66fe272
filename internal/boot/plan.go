// Package boot configures the boot path of the installed system: either a
// conventional GRUB install or a direct EFISTUB firmware boot entry.
//
// The choice is computed once into a tagged Plan, then a single interpreter
// applies it, so firmware-mode branching stays in one place.
package boot

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/blunux/installer/internal/config"
	"github.com/blunux/installer/internal/disk"
	"github.com/blunux/installer/internal/sysexec"
)

// DirectPlan boots the kernel straight from firmware without a bootloader.
type DirectPlan struct {
	Kernel       string // effective kernel package name
	Label        string // firmware boot entry label
	ESPDisk      string // disk owning the EFI system partition
	ESPPartition int    // partition index of the ESP on that disk
	LoaderPath   string // backslash path of the kernel image on the ESP
	InitrdPath   string // backslash path of the initramfs on the ESP
	KernelParams string // root reference plus fixed flags, without initrd=
}

// ConventionalPlan installs GRUB for the firmware mode.
type ConventionalPlan struct {
	UEFI         bool
	TargetDisk   string // raw disk, used for the legacy i386-pc target
	BootloaderID string
}

// Plan is the boot configuration decided for one installation run. Exactly
// one of Direct and Conventional is set.
type Plan struct {
	Direct       *DirectPlan
	Conventional *ConventionalPlan

	// FallbackWarning is set when direct boot was requested on legacy
	// firmware and the plan degraded to GRUB.
	FallbackWarning string
}

// RegistrationError is a fatal failure to install the bootloader or to
// register the firmware boot entry.
type RegistrationError struct {
	Op  string
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("boot registration %s: %v", e.Op, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// Configurator builds and applies boot plans.
type Configurator struct {
	run sysexec.Runner
	log logr.Logger

	// ProbeUUID resolves a block device to its filesystem (or LUKS
	// container) UUID. Defaults to a blkid superblock probe; replaced in
	// tests.
	ProbeUUID func(device string) (string, error)
}

// NewConfigurator returns a Configurator issuing commands through run.
func NewConfigurator(run sysexec.Runner, log logr.Logger) *Configurator {
	return &Configurator{run: run, log: log, ProbeUUID: blkidUUID}
}

// BuildPlan computes the boot plan from the installation config, the
// produced partition layout and the firmware mode. Direct boot requires
// UEFI; when requested on legacy firmware the plan falls back to GRUB and
// carries a warning.
func (c *Configurator) BuildPlan(cfg *config.Config, layout disk.Layout, uefi bool) (Plan, error) {
	label := entryLabel(cfg.Distro.Name)

	if cfg.Install.Bootloader == "nmbl" {
		if !uefi {
			return Plan{
				Conventional: &ConventionalPlan{
					UEFI:         false,
					TargetDisk:   cfg.Install.TargetDisk,
					BootloaderID: label,
				},
				FallbackWarning: "direct boot (EFISTUB) requires UEFI firmware; falling back to GRUB",
			}, nil
		}
		direct, err := c.buildDirectPlan(cfg, layout, label)
		if err != nil {
			return Plan{}, err
		}
		return Plan{Direct: direct}, nil
	}

	return Plan{
		Conventional: &ConventionalPlan{
			UEFI:         uefi,
			TargetDisk:   cfg.Install.TargetDisk,
			BootloaderID: label,
		},
	}, nil
}

func (c *Configurator) buildDirectPlan(cfg *config.Config, layout disk.Layout, label string) (*DirectPlan, error) {
	kernel := cfg.Kernel.Effective()

	espDisk, espIndex, err := disk.SplitPartitionPath(layout.EFIPartition)
	if err != nil {
		return nil, fmt.Errorf("cannot derive ESP location from %q: %w", layout.EFIPartition, err)
	}

	// The UUID is always probed on the raw partition: with encryption it
	// identifies the LUKS container the initramfs must unlock.
	rootUUID, err := c.ProbeUUID(layout.RootPartition)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve root partition UUID: %w", err)
	}

	var rootParam string
	if cfg.Install.UseEncryption {
		rootParam = fmt.Sprintf("cryptdevice=UUID=%s:%s root=%s", rootUUID, disk.MappedRootName, disk.MappedRootDevice)
	} else {
		rootParam = fmt.Sprintf("root=UUID=%s", rootUUID)
	}

	return &DirectPlan{
		Kernel:       kernel,
		Label:        label,
		ESPDisk:      espDisk,
		ESPPartition: espIndex,
		LoaderPath:   fmt.Sprintf(`\EFI\%s\vmlinuz-%s`, label, kernel),
		InitrdPath:   fmt.Sprintf(`\EFI\%s\initramfs-%s.img`, label, kernel),
		KernelParams: rootParam + " rw quiet loglevel=3",
	}, nil
}

// entryLabel turns the distro name into the boot entry label and the ESP
// directory name ("blunux" -> "Blunux").
func entryLabel(name string) string {
	if name == "" {
		return "Blunux"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Package wizard collects the missing installation settings interactively.
//
// Values already populated from a config file are trusted and not prompted
// for again, so a complete file yields a fully unattended run.
package wizard

import (
	"context"
	"fmt"

	"github.com/blunux/installer/internal/config"
	"github.com/blunux/installer/internal/disk"
)

// RunWizard fills the gaps in cfg interactively. disks is the list of
// candidate installation targets discovered on the machine.
func RunWizard(ctx context.Context, cfg *config.Config, disks []disk.TargetDisk) error {
	if err := runDiskGroup(ctx, cfg, disks); err != nil {
		return fmt.Errorf("disk selection: %w", err)
	}

	if err := runIdentityGroup(ctx, cfg); err != nil {
		return fmt.Errorf("identity: %w", err)
	}

	if err := runPasswordsGroup(ctx, cfg); err != nil {
		return fmt.Errorf("passwords: %w", err)
	}

	if err := runLocaleGroup(ctx, cfg); err != nil {
		return fmt.Errorf("locale: %w", err)
	}

	if err := runSystemGroup(ctx, cfg); err != nil {
		return fmt.Errorf("system: %w", err)
	}

	if err := runEncryptionGroup(ctx, cfg); err != nil {
		return fmt.Errorf("encryption: %w", err)
	}

	if err := runPackagesGroup(ctx, cfg); err != nil {
		return fmt.Errorf("packages: %w", err)
	}

	return cfg.Validate()
}

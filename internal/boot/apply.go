package boot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// File writes go through vars so tests can run against a temp staging root
// without touching permissions.
var (
	writeFile = os.WriteFile
	mkdirAll  = os.MkdirAll
)

// Apply executes the chosen boot plan against the populated staging root.
// Registration failures are fatal and returned as *RegistrationError.
func (c *Configurator) Apply(ctx context.Context, plan Plan, stagingRoot string) error {
	if plan.Direct != nil {
		return c.applyDirect(ctx, plan.Direct, stagingRoot)
	}
	return c.applyConventional(ctx, plan.Conventional, stagingRoot)
}

// applyDirect copies the kernel and initramfs onto the ESP, registers the
// firmware boot entry, and installs the upgrade hook that keeps the ESP
// copies current after kernel updates.
func (c *Configurator) applyDirect(ctx context.Context, plan *DirectPlan, stagingRoot string) error {
	c.log.Info("configuring EFISTUB direct boot", "label", plan.Label, "kernel", plan.Kernel)

	espDir := fmt.Sprintf("/boot/efi/EFI/%s", plan.Label)
	if err := c.run.Chroot(ctx, stagingRoot, "mkdir -p "+espDir); err != nil {
		return &RegistrationError{Op: "prepare-esp-directory", Err: err}
	}
	copyCmd := fmt.Sprintf("cp /boot/vmlinuz-%[1]s %[2]s/vmlinuz-%[1]s && cp /boot/initramfs-%[1]s.img %[2]s/initramfs-%[1]s.img",
		plan.Kernel, espDir)
	if err := c.run.Chroot(ctx, stagingRoot, copyCmd); err != nil {
		return &RegistrationError{Op: "copy-boot-files", Err: err}
	}

	registerCmd := fmt.Sprintf(
		`efibootmgr --create --disk %s --part %d --label "%s" --loader '%s' --unicode '%s initrd=%s'`,
		plan.ESPDisk, plan.ESPPartition, plan.Label, plan.LoaderPath, plan.KernelParams, plan.InitrdPath)
	if err := c.run.Chroot(ctx, stagingRoot, registerCmd); err != nil {
		return &RegistrationError{Op: "register-firmware-entry", Err: err}
	}

	if err := c.installUpgradeHook(plan, stagingRoot); err != nil {
		// The system boots without the hook; future kernel upgrades
		// need a manual refresh.
		c.log.Error(err, "could not install kernel upgrade hook")
	}

	return nil
}

// installUpgradeHook writes the pacman post-upgrade hook and the idempotent
// refresh script it invokes, so kernel upgrades stay bootable without
// re-running the installer.
func (c *Configurator) installUpgradeHook(plan *DirectPlan, stagingRoot string) error {
	hooksDir := filepath.Join(stagingRoot, "etc/pacman.d/hooks")
	if err := mkdirAll(hooksDir, 0o755); err != nil {
		return err
	}

	hook := fmt.Sprintf(`[Trigger]
Type = Package
Operation = Upgrade
Target = %s

[Action]
Description = Updating kernel on the EFI system partition...
When = PostTransaction
Exec = /usr/local/bin/nmbl-update
Depends = coreutils
`, plan.Kernel)
	if err := writeFile(filepath.Join(hooksDir, "99-nmbl-kernel-update.hook"), []byte(hook), 0o644); err != nil {
		return err
	}

	binDir := filepath.Join(stagingRoot, "usr/local/bin")
	if err := mkdirAll(binDir, 0o755); err != nil {
		return err
	}
	script := fmt.Sprintf(`#!/bin/bash
# Refresh the kernel and initramfs copies on the EFI system partition.
cp /boot/vmlinuz-%[1]s /boot/efi/EFI/%[2]s/vmlinuz-%[1]s
cp /boot/initramfs-%[1]s.img /boot/efi/EFI/%[2]s/initramfs-%[1]s.img
`, plan.Kernel, plan.Label)
	return writeFile(filepath.Join(binDir, "nmbl-update"), []byte(script), 0o755)
}

// applyConventional installs GRUB for the firmware mode and rewrites the
// timeout settings for an immediate, menu-suppressed boot. The menu stays
// reachable by holding Shift or Esc during boot.
func (c *Configurator) applyConventional(ctx context.Context, plan *ConventionalPlan, stagingRoot string) error {
	var installCmd string
	if plan.UEFI {
		installCmd = fmt.Sprintf("grub-install --target=x86_64-efi --efi-directory=/boot/efi --bootloader-id=%s", plan.BootloaderID)
	} else {
		installCmd = fmt.Sprintf("grub-install --target=i386-pc %s", plan.TargetDisk)
	}

	c.log.Info("installing GRUB", "uefi", plan.UEFI)
	if err := c.run.Chroot(ctx, stagingRoot, installCmd); err != nil {
		return &RegistrationError{Op: "grub-install", Err: err}
	}

	// Timeout tweaks are cosmetic; a failure here still boots.
	_ = c.run.Chroot(ctx, stagingRoot, `sed -i 's/^GRUB_TIMEOUT=.*/GRUB_TIMEOUT=0/' /etc/default/grub`)
	_ = c.run.Chroot(ctx, stagingRoot, `sed -i 's/^GRUB_TIMEOUT_STYLE=.*/GRUB_TIMEOUT_STYLE=hidden/' /etc/default/grub`)
	_ = c.run.Chroot(ctx, stagingRoot, `grep -q '^GRUB_TIMEOUT_STYLE=' /etc/default/grub || echo 'GRUB_TIMEOUT_STYLE=hidden' >> /etc/default/grub`)

	if err := c.run.Chroot(ctx, stagingRoot, "grub-mkconfig -o /boot/grub/grub.cfg"); err != nil {
		return &RegistrationError{Op: "grub-mkconfig", Err: err}
	}

	return nil
}

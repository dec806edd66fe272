package install

import (
	"fmt"
	"strings"
)

// detectDriverPackages inspects the lspci inventory and returns the driver
// packages the detected GPUs and wireless chips need beyond the base mesa
// stack.
func detectDriverPackages(lspci string) []string {
	inventory := strings.ToLower(lspci)
	var packages []string

	hasNvidia := strings.Contains(inventory, "nvidia")
	hasAMD := strings.Contains(inventory, "[amd/ati]") ||
		strings.Contains(inventory, "radeon") ||
		(strings.Contains(inventory, "amd") && strings.Contains(inventory, "vga"))
	hasIntel := strings.Contains(inventory, "intel") &&
		(strings.Contains(inventory, "vga") || strings.Contains(inventory, "display"))

	if hasNvidia {
		packages = append(packages,
			"nvidia", "nvidia-utils", "nvidia-settings", "lib32-nvidia-utils", "libva-nvidia-driver")
	}
	if hasAMD {
		packages = append(packages,
			"xf86-video-amdgpu", "vulkan-radeon", "lib32-vulkan-radeon",
			"libva-mesa-driver", "lib32-libva-mesa-driver", "mesa-vdpau")
	}
	if hasIntel {
		packages = append(packages,
			"vulkan-intel", "lib32-vulkan-intel", "intel-media-driver")
	}

	if strings.Contains(inventory, "broadcom") &&
		(strings.Contains(inventory, "wireless") ||
			strings.Contains(inventory, "network") ||
			strings.Contains(inventory, "bcm43")) {
		packages = append(packages, "broadcom-wl-dkms")
	}

	return packages
}

// stepInstallPackages detects the hardware and installs matching driver
// packages into the target. The step is best-effort: the base mesa stack is
// already installed, so a missed driver degrades performance but still
// boots.
func stepInstallPackages(c *Context) error {
	// Hardware is probed on the host; the target runs on the same machine.
	lspci, err := c.Run.Output(c, "lspci", "-nn")
	if err != nil {
		return fmt.Errorf("lspci: %w", err)
	}

	packages := detectDriverPackages(lspci)
	if len(packages) == 0 {
		c.Observer.Printf("No extra hardware drivers needed, base GPU drivers (mesa) already included")
		return nil
	}
	c.Observer.Printf("Installing %d hardware driver packages...", len(packages))

	var lib32 []string
	for _, pkg := range packages {
		if strings.HasPrefix(pkg, "lib32-") {
			lib32 = append(lib32, pkg)
		}
	}
	if len(lib32) > 0 {
		if err := enableMultilib(c); err != nil {
			c.Observer.Warn(fmt.Sprintf("enable multilib: %v", err))
		}
	}

	installCmd := "pacman -S --noconfirm --needed " + strings.Join(packages, " ")
	if err := c.Run.Chroot(c, c.State.StagingRoot, installCmd); err != nil {
		return fmt.Errorf("install drivers: %w", err)
	}

	c.Observer.Printf("Hardware drivers installed")
	return nil
}

// enableMultilib uncomments the [multilib] repository in the target's
// pacman.conf and refreshes the package databases. 32-bit driver packages
// live there.
func enableMultilib(c *Context) error {
	root := c.State.StagingRoot

	conf, err := c.Run.Output(c, "cat", c.targetPath("etc/pacman.conf"))
	if err != nil {
		return err
	}
	if strings.Contains(conf, "[multilib]") && !strings.Contains(conf, "#[multilib]") {
		return nil
	}

	if err := c.Run.Chroot(c, root, `sed -i '/^#\[multilib\]/,/^#Include/ s/^#//' /etc/pacman.conf`); err != nil {
		return err
	}
	return c.Run.Chroot(c, root, "pacman -Sy --noconfirm")
}

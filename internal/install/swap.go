package install

import (
	"fmt"

	"github.com/blunux/installer/internal/config"
	"github.com/blunux/installer/internal/disk"
)

// swapSizeMiB returns the swap file size for mode given the machine's RAM.
func swapSizeMiB(mode config.SwapMode, ramMiB int) int {
	switch mode {
	case config.SwapNone:
		return 0
	case config.SwapSmall:
		return ramMiB / 2
	case config.SwapSuspend:
		return ramMiB
	default:
		if ramMiB > 8192 {
			return 8192
		}
		return ramMiB
	}
}

// setupSwap creates and registers the swap file according to the configured
// mode. Swap is a comfort feature; failures are warned, never fatal.
func setupSwap(c *Context) {
	mode := c.Config.Disk.Swap
	if mode == config.SwapNone {
		c.Observer.Printf("Swap: none")
		return
	}

	sizeMiB := swapSizeMiB(mode, disk.RAMMiB())
	if sizeMiB == 0 {
		return
	}
	c.Observer.Printf("Swap: %s (%d MiB)", mode, sizeMiB)

	swapfile := c.targetPath("swapfile")
	if err := c.Run.Run(c, "dd", "if=/dev/zero", "of="+swapfile,
		"bs=1M", fmt.Sprintf("count=%d", sizeMiB), "status=progress"); err != nil {
		c.Observer.Warn(fmt.Sprintf("create swap file: %v", err))
		return
	}
	if err := c.Run.Run(c, "chmod", "600", swapfile); err != nil {
		c.Observer.Warn(fmt.Sprintf("restrict swap file: %v", err))
	}
	if err := c.Run.Chroot(c, c.State.StagingRoot, "mkswap /swapfile"); err != nil {
		c.Observer.Warn(fmt.Sprintf("mkswap: %v", err))
		return
	}

	c.appendTargetFile("etc/fstab", "\n# Swap file\n/swapfile none swap defaults 0 0\n")

	if sizeMiB >= 1024 {
		c.Observer.Printf("%.1f GiB swap file created and configured", float64(sizeMiB)/1024)
	} else {
		c.Observer.Printf("%d MiB swap file created and configured", sizeMiB)
	}
}

package install

import (
	"fmt"
)

// stepConfigureSystem sets timezone, hostname and hosts, enables the core
// services and creates the configured swap. Service enabling and clock sync
// are tolerated failures; identity files go through the recorded config
// writes.
func stepConfigureSystem(c *Context) error {
	root := c.State.StagingRoot

	tzCmd := fmt.Sprintf("ln -sf /usr/share/zoneinfo/%s /etc/localtime", c.Config.Locale.Timezone)
	if err := c.Run.Chroot(c, root, tzCmd); err != nil {
		return fmt.Errorf("set timezone: %w", err)
	}
	if err := c.Run.Chroot(c, root, "hwclock --systohc"); err != nil {
		// No RTC in some VMs; the clock syncs over NTP after boot.
		c.Observer.Warn(fmt.Sprintf("hwclock: %v", err))
	}

	c.writeTargetFile("etc/hostname", []byte(c.Config.Install.Hostname+"\n"), 0o644)

	hosts := fmt.Sprintf("127.0.0.1    localhost\n::1          localhost\n127.0.1.1    %[1]s.localdomain %[1]s\n",
		c.Config.Install.Hostname)
	c.writeTargetFile("etc/hosts", []byte(hosts), 0o644)

	for _, service := range []string{"NetworkManager", "sddm"} {
		if err := c.Run.Chroot(c, root, "systemctl enable "+service); err != nil {
			return fmt.Errorf("enable %s: %w", service, err)
		}
	}
	// cups is optional on systems without printing.
	_ = c.Run.Chroot(c, root, "systemctl enable cups 2>/dev/null || true")

	setupSwap(c)

	return nil
}

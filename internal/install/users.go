package install

import (
	"fmt"
)

// stepConfigureUsers sets the root password, creates the primary user with
// the standard groups, grants wheel sudo and, when requested, configures
// SDDM autologin. Passwords go to chpasswd over stdin so they never appear
// in a process list.
func stepConfigureUsers(c *Context) error {
	root := c.State.StagingRoot
	install := c.Config.Install

	rootEntry := fmt.Sprintf("root:%s\n", install.RootPassword)
	if err := c.Run.ChrootWithInput(c, rootEntry, root, "chpasswd"); err != nil {
		return fmt.Errorf("set root password: %w", err)
	}

	useradd := fmt.Sprintf("useradd -m -G wheel,audio,video,storage,optical -s /bin/bash %s", install.Username)
	if err := c.Run.Chroot(c, root, useradd); err != nil {
		return fmt.Errorf("create user %s: %w", install.Username, err)
	}

	userEntry := fmt.Sprintf("%s:%s\n", install.Username, install.UserPassword)
	if err := c.Run.ChrootWithInput(c, userEntry, root, "chpasswd"); err != nil {
		return fmt.Errorf("set user password: %w", err)
	}

	// sudoers.d files must be mode 0440 or sudo ignores them.
	c.writeTargetFile("etc/sudoers.d/wheel", []byte("%wheel ALL=(ALL:ALL) ALL\n"), 0o440)

	if install.Autologin {
		autologin := fmt.Sprintf("[Autologin]\nUser=%s\nSession=plasma\nRelogin=true\n", install.Username)
		c.writeTargetFile("etc/sddm.conf.d/autologin.conf", []byte(autologin), 0o644)
		c.Observer.Printf("SDDM autologin configured for user: %s", install.Username)
	}

	return nil
}

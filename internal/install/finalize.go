package install

import (
	"fmt"
	"path/filepath"

	"github.com/blunux/installer/internal/disk"
)

// stepFinalize copies the distribution branding into the target, generates
// the first-boot helper scripts, finishes the kime setup, fixes home
// directory ownership and unmounts the staging root.
func stepFinalize(c *Context) error {
	username := c.Config.Install.Username
	userHome := filepath.Join("home", username)

	copyBranding(c, userHome)

	if selected := c.Config.Packages.SelectedScripts(); len(selected) > 0 {
		c.writeTargetFile(filepath.Join(userHome, "install-packages.sh"),
			[]byte(packageInstallScript(selected)), 0o755)
		c.Observer.Printf("Created ~/install-packages.sh, run after first boot to install selected packages")
	}

	if c.Config.InputMethod.Enabled && c.Config.InputMethod.Engine == "kime" {
		c.writeTargetFile(filepath.Join(userHome, "kime-install.sh"),
			[]byte(kimeInstallScript()), 0o755)
		configureKime(c, userHome)
	}

	if c.Config.Kernel.Type == "linux-bore" {
		c.Observer.Printf("linux-bore kernel selected, will be installed after first boot")
		c.writeTargetFile(filepath.Join(userHome, "setup-linux-bore.sh"),
			[]byte(boreSetupScript()), 0o755)
	}

	c.writeTargetFile(filepath.Join(userHome, "syschk.sh"), []byte(syschkScript()), 0o755)

	fixHomeOwnership(c, userHome)

	disk.NewMounter(c.Run, c.Log).Unmount(c, c.State.StagingRoot)

	return nil
}

// copyBranding carries the live environment's fastfetch theme and os-release
// into the target so the installed system identifies itself correctly.
func copyBranding(c *Context, userHome string) {
	c.Observer.Printf("Copying distribution branding...")

	ffDir := c.targetPath(filepath.Join(userHome, ".config/fastfetch"))
	_ = mkdirAll(ffDir, 0o755)
	_ = c.Run.Run(c, "sh", "-c",
		fmt.Sprintf("cp /etc/fastfetch/config.jsonc /etc/fastfetch/blunux-logo.txt %s/ 2>/dev/null || true", ffDir))

	_ = mkdirAll(c.targetPath("etc/fastfetch"), 0o755)
	_ = c.Run.Run(c, "sh", "-c",
		fmt.Sprintf("cp -r /etc/fastfetch/* %s/ 2>/dev/null || true", c.targetPath("etc/fastfetch")))

	_ = c.Run.Run(c, "sh", "-c", fmt.Sprintf(
		"test -f /etc/os-release && cp /etc/os-release %s && mkdir -p %s && cp /etc/os-release %s || true",
		c.targetPath("etc/os-release"), c.targetPath("usr/lib"), c.targetPath("usr/lib/os-release")))
}

// configureKime writes the user-level kime configuration: the engine config,
// the autostart entry, the systemd user service, the Plasma Wayland virtual
// keyboard binding and the shell environment exports.
func configureKime(c *Context, userHome string) {
	c.Observer.Printf("Configuring kime input method...")

	c.writeTargetFile(filepath.Join(userHome, ".config/kime/config.yaml"), []byte(kimeConfigYAML), 0o644)
	c.writeTargetFile(filepath.Join(userHome, ".config/autostart/kime.desktop"), []byte(kimeDesktopEntry), 0o644)
	c.writeTargetFile(filepath.Join(userHome, ".config/systemd/user/kime.service"), []byte(kimeUserService), 0o644)

	_ = c.Run.Chroot(c, c.State.StagingRoot, fmt.Sprintf(
		"su - %s -c 'systemctl --user enable kime.service' 2>/dev/null || true", c.Config.Install.Username))

	kwinrc := "[Wayland]\nInputMethod[$e]=/usr/share/applications/kime.desktop\n"
	c.appendTargetFile(filepath.Join(userHome, ".config/kwinrc"), "\n"+kwinrc)

	bashProfile := "# Kime Input Method\nexport GTK_IM_MODULE=kime\nexport QT_IM_MODULE=kime\nexport XMODIFIERS=@im=kime\nexport LANG=ko_KR.UTF-8\n"
	c.appendTargetFile(filepath.Join(userHome, ".bash_profile"), bashProfile)

	xprofile := "export GTK_IM_MODULE=kime\nexport QT_IM_MODULE=kime\nexport XMODIFIERS=@im=kime\n"
	c.writeTargetFile(filepath.Join(userHome, ".xprofile"), []byte(xprofile), 0o644)

	envd := "GTK_IM_MODULE=kime\nQT_IM_MODULE=kime\nXMODIFIERS=@im=kime\n"
	c.writeTargetFile("etc/environment.d/kime.conf", []byte(envd), 0o644)
}

// fixHomeOwnership hands the populated home directory to the first user.
// Everything written above was created by the installer running as root.
func fixHomeOwnership(c *Context, userHome string) {
	home := c.targetPath(userHome)
	_ = c.Run.Run(c, "chown", "-R", "1000:1000", home)
	_ = c.Run.Run(c, "chmod", "700", home)
	_ = c.Run.Run(c, "chmod", "700", filepath.Join(home, ".config"))
}

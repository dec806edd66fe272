package install

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blunux/installer/internal/config"
	"github.com/blunux/installer/internal/sysexec"
)

// newStepContext builds a Context over a scripted runner with the staging
// root pointed at a temp dir, so target-file writes are real and checkable.
func newStepContext(t *testing.T, cfg *config.Config, script *sysexec.Script) *Context {
	t.Helper()
	ctx := NewContext(context.Background(), cfg, script, &recorder{}, logr.Discard())
	ctx.State.StagingRoot = t.TempDir()
	return ctx
}

func readTarget(t *testing.T, c *Context, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(c.State.StagingRoot, rel))
	require.NoError(t, err)
	return string(data)
}

func TestStepInstallBase(t *testing.T) {
	t.Parallel()

	t.Run("grub install pulls grub", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		script := sysexec.NewScript()
		c := newStepContext(t, cfg, script)

		require.NoError(t, stepInstallBase(c))

		lines := script.Lines()
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "pacstrap -K "+c.State.StagingRoot)
		assert.Contains(t, lines[0], " base ")
		assert.Contains(t, lines[0], "networkmanager")
		assert.Contains(t, lines[0], "plasma-meta")
		assert.Contains(t, lines[0], "grub")
		assert.Contains(t, lines[0], "ttf-baekmuk") // default locale is ko_KR
	})

	// The subtest name must not contain the literal "grub": t.TempDir()
	// embeds it in the staging root, which the pacstrap line records, and
	// Issued matches substrings over whole lines.
	t.Run("direct boot on UEFI skips GRUB", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.Install.Bootloader = "nmbl"
		script := sysexec.NewScript()
		c := newStepContext(t, cfg, script)
		c.State.UEFI = true

		require.NoError(t, stepInstallBase(c))
		assert.False(t, script.Issued("grub"))
		assert.False(t, script.Issued("os-prober"))
	})

	t.Run("direct boot on legacy firmware keeps grub", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.Install.Bootloader = "nmbl"
		script := sysexec.NewScript()
		c := newStepContext(t, cfg, script)
		c.State.UEFI = false

		// The bootloader step will degrade to GRUB, so the target must
		// receive the package.
		require.NoError(t, stepInstallBase(c))
		assert.True(t, script.Issued("grub"))
	})

	t.Run("encryption pulls cryptsetup", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.Install.UseEncryption = true
		cfg.Install.EncryptionPassword = "secret"
		script := sysexec.NewScript()
		c := newStepContext(t, cfg, script)

		require.NoError(t, stepInstallBase(c))
		assert.True(t, script.Issued("cryptsetup"))
	})

	t.Run("pacstrap failure is fatal", func(t *testing.T) {
		t.Parallel()
		script := sysexec.NewScript().FailOn("pacstrap", errors.New("mirror unreachable"))
		c := newStepContext(t, config.Default(), script)

		assert.Error(t, stepInstallBase(c))
	})
}

func TestStepGenerateFstab(t *testing.T) {
	t.Parallel()

	script := sysexec.NewScript().RespondTo("genfstab",
		"UUID=1234 / ext4 rw,relatime 0 1")
	c := newStepContext(t, config.Default(), script)

	require.NoError(t, stepGenerateFstab(c))

	assert.True(t, script.Issued("genfstab -U "+c.State.StagingRoot))
	assert.Contains(t, readTarget(t, c, "etc/fstab"), "UUID=1234 / ext4")
}

func TestStepConfigureSystem(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Install.Hostname = "workstation"
	cfg.Disk.Swap = config.SwapNone
	script := sysexec.NewScript()
	c := newStepContext(t, cfg, script)

	require.NoError(t, stepConfigureSystem(c))

	assert.True(t, script.Issued("ln -sf /usr/share/zoneinfo/Asia/Seoul /etc/localtime"))
	assert.True(t, script.Issued("hwclock --systohc"))
	assert.True(t, script.Issued("systemctl enable NetworkManager"))
	assert.True(t, script.Issued("systemctl enable sddm"))

	assert.Equal(t, "workstation\n", readTarget(t, c, "etc/hostname"))
	hosts := readTarget(t, c, "etc/hosts")
	assert.Contains(t, hosts, "127.0.0.1    localhost")
	assert.Contains(t, hosts, "127.0.1.1    workstation.localdomain workstation")

	// Swap "none" creates nothing.
	assert.False(t, script.Issued("dd if=/dev/zero"))
}

func TestStepConfigureSystemServiceFailureIsFatal(t *testing.T) {
	t.Parallel()

	script := sysexec.NewScript().FailOn("systemctl enable NetworkManager", errors.New("no such unit"))
	c := newStepContext(t, config.Default(), script)

	assert.Error(t, stepConfigureSystem(c))
}

func TestSwapSizeMiB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode config.SwapMode
		ram  int
		want int
	}{
		{config.SwapNone, 16384, 0},
		{config.SwapSmall, 16384, 8192},
		{config.SwapSuspend, 16384, 16384},
		{config.SwapFile, 16384, 8192},
		{config.SwapFile, 4096, 4096},
		{config.SwapFile, 8192, 8192},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, swapSizeMiB(tt.mode, tt.ram), "%s with %d MiB RAM", tt.mode, tt.ram)
	}
}

func TestSetupSwapFile(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Disk.Swap = config.SwapFile
	script := sysexec.NewScript()
	c := newStepContext(t, cfg, script)

	setupSwap(c)

	swapfile := filepath.Join(c.State.StagingRoot, "swapfile")
	assert.True(t, script.Issued("dd if=/dev/zero of="+swapfile))
	assert.True(t, script.Issued("chmod 600 "+swapfile))
	assert.True(t, script.Issued("mkswap /swapfile"))
	assert.Contains(t, readTarget(t, c, "etc/fstab"), "/swapfile none swap defaults 0 0")
}

func TestStepConfigureLocale(t *testing.T) {
	t.Parallel()

	cfg := config.Default() // ko_KR, kime enabled
	script := sysexec.NewScript()
	c := newStepContext(t, cfg, script)

	require.NoError(t, stepConfigureLocale(c))

	gen := readTarget(t, c, "etc/locale.gen")
	assert.Contains(t, gen, "ko_KR.UTF-8 UTF-8")
	assert.Contains(t, gen, "en_US.UTF-8 UTF-8")

	assert.True(t, script.Issued("locale-gen"))
	assert.Equal(t, "LANG=ko_KR.UTF-8\n", readTarget(t, c, "etc/locale.conf"))
	assert.Equal(t, "KEYMAP=us\n", readTarget(t, c, "etc/vconsole.conf"))

	env := readTarget(t, c, "etc/environment.d/input-method.conf")
	assert.Contains(t, env, "GTK_IM_MODULE=kime")
	assert.Contains(t, env, "XMODIFIERS=@im=kime")
}

func TestStepConfigureLocaleWithoutInputMethod(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Locale.Languages = []string{"en_US"}
	cfg.InputMethod.Enabled = false
	c := newStepContext(t, cfg, sysexec.NewScript())

	require.NoError(t, stepConfigureLocale(c))

	// en_US is not duplicated.
	assert.Equal(t, "en_US.UTF-8 UTF-8\n", readTarget(t, c, "etc/locale.gen"))
	_, err := os.Stat(filepath.Join(c.State.StagingRoot, "etc/environment.d/input-method.conf"))
	assert.True(t, os.IsNotExist(err))
}

func TestStepConfigureUsers(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Install.Username = "jae"
	cfg.Install.RootPassword = "rootpw"
	cfg.Install.UserPassword = "userpw"
	script := sysexec.NewScript()
	c := newStepContext(t, cfg, script)

	require.NoError(t, stepConfigureUsers(c))

	assert.True(t, script.Issued("useradd -m -G wheel,audio,video,storage,optical -s /bin/bash jae"))

	// Passwords travel over stdin, never on the command line.
	var chpasswdInputs []string
	for _, call := range script.Calls() {
		assert.NotContains(t, call.Cmd, "rootpw")
		assert.NotContains(t, call.Cmd, "userpw")
		if call.Cmd == "chpasswd" {
			chpasswdInputs = append(chpasswdInputs, call.Input)
		}
	}
	require.Equal(t, []string{"root:rootpw\n", "jae:userpw\n"}, chpasswdInputs)

	sudoersPath := filepath.Join(c.State.StagingRoot, "etc/sudoers.d/wheel")
	assert.Equal(t, "%wheel ALL=(ALL:ALL) ALL\n", readTarget(t, c, "etc/sudoers.d/wheel"))
	info, err := os.Stat(sudoersPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o440), info.Mode().Perm())

	autologin := readTarget(t, c, "etc/sddm.conf.d/autologin.conf")
	assert.Contains(t, autologin, "User=jae")
	assert.Contains(t, autologin, "Session=plasma")
}

func TestStepConfigureUsersNoAutologin(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Install.Autologin = false
	c := newStepContext(t, cfg, sysexec.NewScript())

	require.NoError(t, stepConfigureUsers(c))

	_, err := os.Stat(filepath.Join(c.State.StagingRoot, "etc/sddm.conf.d/autologin.conf"))
	assert.True(t, os.IsNotExist(err))
}

func TestDetectDriverPackages(t *testing.T) {
	t.Parallel()

	t.Run("nvidia", func(t *testing.T) {
		t.Parallel()
		pkgs := detectDriverPackages("01:00.0 VGA compatible controller [0300]: NVIDIA Corporation GA104 [10de:2484]")
		assert.Contains(t, pkgs, "nvidia")
		assert.Contains(t, pkgs, "lib32-nvidia-utils")
	})

	t.Run("amd", func(t *testing.T) {
		t.Parallel()
		pkgs := detectDriverPackages("03:00.0 VGA compatible controller: Advanced Micro Devices [AMD/ATI] Navi 23")
		assert.Contains(t, pkgs, "vulkan-radeon")
		assert.NotContains(t, pkgs, "nvidia")
	})

	t.Run("intel", func(t *testing.T) {
		t.Parallel()
		pkgs := detectDriverPackages("00:02.0 VGA compatible controller: Intel Corporation UHD Graphics 630")
		assert.Contains(t, pkgs, "vulkan-intel")
	})

	t.Run("broadcom wifi", func(t *testing.T) {
		t.Parallel()
		pkgs := detectDriverPackages("02:00.0 Network controller: Broadcom Inc. BCM4360 802.11ac Wireless")
		assert.Contains(t, pkgs, "broadcom-wl-dkms")
	})

	t.Run("nothing detected", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, detectDriverPackages("00:1f.3 Audio device: ESS Technology ES1988"))
	})
}

func TestStepInstallPackages(t *testing.T) {
	t.Parallel()

	t.Run("installs detected drivers and enables multilib", func(t *testing.T) {
		t.Parallel()
		script := sysexec.NewScript().
			RespondTo("lspci", "01:00.0 VGA compatible controller: NVIDIA Corporation GA104").
			RespondTo("pacman.conf", "#[multilib]\n#Include = /etc/pacman.d/mirrorlist")
		c := newStepContext(t, config.Default(), script)

		require.NoError(t, stepInstallPackages(c))

		assert.True(t, script.Issued("sed -i '/^#\\[multilib\\]/,/^#Include/ s/^#//' /etc/pacman.conf"))
		assert.True(t, script.Issued("pacman -Sy --noconfirm"))
		assert.True(t, script.Issued("pacman -S --noconfirm --needed nvidia"))
	})

	t.Run("no hardware means no installs", func(t *testing.T) {
		t.Parallel()
		script := sysexec.NewScript().RespondTo("lspci", "00:1f.3 Audio device")
		c := newStepContext(t, config.Default(), script)

		require.NoError(t, stepInstallPackages(c))
		assert.False(t, script.Issued("pacman -S"))
	})
}

func TestStepFinalize(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Install.Username = "jae"
	cfg.Kernel.Type = "linux-bore"
	cfg.Packages.Docker = true
	cfg.Packages.Firefox = true
	script := sysexec.NewScript()
	c := newStepContext(t, cfg, script)

	require.NoError(t, stepFinalize(c))

	pkgScript := readTarget(t, c, "home/jae/install-packages.sh")
	assert.Contains(t, pkgScript, `install_package "firefox"`)
	assert.Contains(t, pkgScript, `install_package "docker"`)
	assert.NotContains(t, pkgScript, `install_package "steam"`)

	assert.Contains(t, readTarget(t, c, "home/jae/setup-linux-bore.sh"), "linux-cachyos")
	assert.Contains(t, readTarget(t, c, "home/jae/syschk.sh"), "syschk.jl")

	// kime is the default engine.
	assert.Contains(t, readTarget(t, c, "home/jae/.config/kime/config.yaml"), "dubeolsik")
	assert.Contains(t, readTarget(t, c, "etc/environment.d/kime.conf"), "GTK_IM_MODULE=kime")

	home := filepath.Join(c.State.StagingRoot, "home/jae")
	assert.True(t, script.Issued("chown -R 1000:1000 "+home))

	// The staging root is released at the end.
	assert.True(t, script.Issued("umount -R "+c.State.StagingRoot))
	assert.True(t, script.Issued("cryptsetup close cryptroot"))
}

func TestStepFinalizeWithoutSelections(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.InputMethod.Enabled = false
	c := newStepContext(t, cfg, sysexec.NewScript())

	require.NoError(t, stepFinalize(c))

	_, err := os.Stat(filepath.Join(c.State.StagingRoot, "home/user/install-packages.sh"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(c.State.StagingRoot, "home/user/kime-install.sh"))
	assert.True(t, os.IsNotExist(err))
}

func TestConfigWriteFailureIsRecordedNotFatal(t *testing.T) {
	cfg := config.Default()
	script := sysexec.NewScript()
	obs := &recorder{}
	c := NewContext(context.Background(), cfg, script, obs, logr.Discard())
	c.State.StagingRoot = t.TempDir()

	orig := writeFile
	writeFile = func(string, []byte, os.FileMode) error { return errors.New("read-only fs") }
	t.Cleanup(func() { writeFile = orig })

	cfg.Disk.Swap = config.SwapNone
	require.NoError(t, stepConfigureSystem(c))

	require.NotEmpty(t, c.State.ConfigErrors)
	var werr *ConfigWriteError
	require.ErrorAs(t, c.State.ConfigErrors[0], &werr)
	assert.Equal(t, "etc/hostname", werr.Artifact)
}

package boot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blunux/installer/internal/sysexec"
)

func directPlan() *DirectPlan {
	return &DirectPlan{
		Kernel:       "linux",
		Label:        "Blunux",
		ESPDisk:      "/dev/nvme0n1",
		ESPPartition: 1,
		LoaderPath:   `\EFI\Blunux\vmlinuz-linux`,
		InitrdPath:   `\EFI\Blunux\initramfs-linux.img`,
		KernelParams: "root=UUID=abcd-1234 rw quiet loglevel=3",
	}
}

func TestApplyDirect(t *testing.T) {
	script := sysexec.NewScript()
	root := t.TempDir()
	c := NewConfigurator(script, logr.Discard())

	err := c.Apply(context.Background(), Plan{Direct: directPlan()}, root)
	require.NoError(t, err)

	assert.True(t, script.Issued("mkdir -p /boot/efi/EFI/Blunux"))
	assert.True(t, script.Issued("cp /boot/vmlinuz-linux /boot/efi/EFI/Blunux/vmlinuz-linux"))
	assert.True(t, script.Issued(
		`efibootmgr --create --disk /dev/nvme0n1 --part 1 --label "Blunux" `+
			`--loader '\EFI\Blunux\vmlinuz-linux' `+
			`--unicode 'root=UUID=abcd-1234 rw quiet loglevel=3 initrd=\EFI\Blunux\initramfs-linux.img'`))

	// Upgrade hook and refresh script land on the target filesystem.
	hook, err := os.ReadFile(filepath.Join(root, "etc/pacman.d/hooks/99-nmbl-kernel-update.hook"))
	require.NoError(t, err)
	assert.Contains(t, string(hook), "Target = linux")
	assert.Contains(t, string(hook), "Exec = /usr/local/bin/nmbl-update")

	scriptPath := filepath.Join(root, "usr/local/bin/nmbl-update")
	update, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.Contains(t, string(update), "cp /boot/vmlinuz-linux /boot/efi/EFI/Blunux/vmlinuz-linux")

	info, err := os.Stat(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestApplyDirectRegistrationFailureIsFatal(t *testing.T) {
	script := sysexec.NewScript().FailOn("efibootmgr", errors.New("no NVRAM"))
	c := NewConfigurator(script, logr.Discard())

	err := c.Apply(context.Background(), Plan{Direct: directPlan()}, t.TempDir())
	require.Error(t, err)

	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "register-firmware-entry", regErr.Op)
}

func TestApplyConventionalUEFI(t *testing.T) {
	script := sysexec.NewScript()
	c := NewConfigurator(script, logr.Discard())
	plan := Plan{Conventional: &ConventionalPlan{UEFI: true, TargetDisk: "/dev/sda", BootloaderID: "Blunux"}}

	err := c.Apply(context.Background(), plan, t.TempDir())
	require.NoError(t, err)

	assert.True(t, script.Issued("grub-install --target=x86_64-efi --efi-directory=/boot/efi --bootloader-id=Blunux"))
	assert.True(t, script.Issued("GRUB_TIMEOUT=0"))
	assert.True(t, script.Issued("GRUB_TIMEOUT_STYLE=hidden"))
	assert.True(t, script.Issued("grub-mkconfig -o /boot/grub/grub.cfg"))
}

func TestApplyConventionalBIOS(t *testing.T) {
	script := sysexec.NewScript()
	c := NewConfigurator(script, logr.Discard())
	plan := Plan{Conventional: &ConventionalPlan{UEFI: false, TargetDisk: "/dev/sda", BootloaderID: "Blunux"}}

	err := c.Apply(context.Background(), plan, t.TempDir())
	require.NoError(t, err)

	assert.True(t, script.Issued("grub-install --target=i386-pc /dev/sda"))
	assert.False(t, script.Issued("x86_64-efi"))
}

func TestApplyConventionalTimeoutTweaksAreBestEffort(t *testing.T) {
	script := sysexec.NewScript().FailOn("sed -i", errors.New("no such file"))
	c := NewConfigurator(script, logr.Discard())
	plan := Plan{Conventional: &ConventionalPlan{UEFI: true, TargetDisk: "/dev/sda", BootloaderID: "Blunux"}}

	err := c.Apply(context.Background(), plan, t.TempDir())
	require.NoError(t, err)
	assert.True(t, script.Issued("grub-mkconfig"))
}

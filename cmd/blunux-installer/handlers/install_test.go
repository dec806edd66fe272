package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blunux/installer/internal/config"
	"github.com/blunux/installer/internal/disk"
	"github.com/blunux/installer/internal/sysexec"
)

// stubFactories replaces the injection points with harmless fakes and
// restores the originals when the test ends. Tests mutate the returned
// script or re-stub individual vars as needed.
func stubFactories(t *testing.T) *sysexec.Script {
	t.Helper()

	origGeteuid := geteuid
	origFind := findConfigFile
	origLoad := loadConfigFile
	origDiscover := discoverDisks
	origWizard := runWizard
	origRunner := newRunner
	origConfirm := confirmInstall
	origReboot := confirmReboot
	origTerminal := stdoutIsTerminal
	t.Cleanup(func() {
		geteuid = origGeteuid
		findConfigFile = origFind
		loadConfigFile = origLoad
		discoverDisks = origDiscover
		runWizard = origWizard
		newRunner = origRunner
		confirmInstall = origConfirm
		confirmReboot = origReboot
		stdoutIsTerminal = origTerminal
	})

	script := sysexec.NewScript()

	geteuid = func() int { return 0 }
	findConfigFile = func() (string, bool) { return "", false }
	discoverDisks = func(context.Context, sysexec.Runner) ([]disk.TargetDisk, error) {
		return []disk.TargetDisk{{Device: "/dev/sda", Size: "512G", Model: "Test SSD"}}, nil
	}
	runWizard = func(_ context.Context, cfg *config.Config, _ []disk.TargetDisk) error {
		cfg.Install.TargetDisk = "/dev/sda"
		return nil
	}
	newRunner = func(logr.Logger) sysexec.Runner { return script }
	confirmReboot = func() (bool, error) { return false, nil }
	stdoutIsTerminal = func() bool { return false }

	return script
}

func TestInstallRequiresRoot(t *testing.T) {
	stubFactories(t)
	geteuid = func() int { return 1000 }

	err := Install(context.Background(), InstallOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root")
}

func TestInstallCancelledByUser(t *testing.T) {
	script := stubFactories(t)
	confirmInstall = func(target string) (bool, error) {
		assert.Equal(t, "/dev/sda", target)
		return false, nil
	}

	err := Install(context.Background(), InstallOptions{})
	require.NoError(t, err)

	// Declined before anything touched the disk.
	assert.False(t, script.Issued("parted"))
	assert.False(t, script.Issued("pacstrap"))
}

func TestInstallConfirmError(t *testing.T) {
	stubFactories(t)
	boom := errors.New("tty gone")
	confirmInstall = func(string) (bool, error) { return false, boom }

	err := Install(context.Background(), InstallOptions{})
	require.ErrorIs(t, err, boom)
}

func TestAssembleConfigExplicitPath(t *testing.T) {
	stubFactories(t)

	var loadedPath string
	loadConfigFile = func(path string) (*config.Config, error) {
		loadedPath = path
		cfg := config.Default()
		cfg.Install.Hostname = "from-file"
		cfg.LoadedFromFile = true
		return cfg, nil
	}

	cfg, err := assembleConfig(context.Background(), "/tmp/my.yaml", sysexec.NewScript())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/my.yaml", loadedPath)
	assert.Equal(t, "from-file", cfg.Install.Hostname)
}

func TestAssembleConfigFindsDefaultPath(t *testing.T) {
	stubFactories(t)

	findConfigFile = func() (string, bool) { return "/etc/blunux/config.yaml", true }
	var loadedPath string
	loadConfigFile = func(path string) (*config.Config, error) {
		loadedPath = path
		return config.Default(), nil
	}

	_, err := assembleConfig(context.Background(), "", sysexec.NewScript())
	require.NoError(t, err)
	assert.Equal(t, "/etc/blunux/config.yaml", loadedPath)
}

func TestAssembleConfigLoadError(t *testing.T) {
	stubFactories(t)
	loadConfigFile = func(string) (*config.Config, error) {
		return nil, errors.New("yaml: line 3")
	}

	_, err := assembleConfig(context.Background(), "/tmp/bad.yaml", sysexec.NewScript())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/tmp/bad.yaml")
}

func TestAssembleConfigDiscoverError(t *testing.T) {
	stubFactories(t)
	discoverDisks = func(context.Context, sysexec.Runner) ([]disk.TargetDisk, error) {
		return nil, errors.New("lsblk missing")
	}

	_, err := assembleConfig(context.Background(), "", sysexec.NewScript())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover disks")
}

func TestAssembleConfigRunsWizardWithDiscoveredDisks(t *testing.T) {
	stubFactories(t)

	var gotDisks []disk.TargetDisk
	runWizard = func(_ context.Context, cfg *config.Config, disks []disk.TargetDisk) error {
		gotDisks = disks
		cfg.Install.TargetDisk = disks[0].Device
		return nil
	}

	cfg, err := assembleConfig(context.Background(), "", sysexec.NewScript())
	require.NoError(t, err)
	require.Len(t, gotDisks, 1)
	assert.Equal(t, "/dev/sda", cfg.Install.TargetDisk)
}

func TestDisks(t *testing.T) {
	stubFactories(t)

	require.NoError(t, Disks(context.Background()))

	discoverDisks = func(context.Context, sysexec.Runner) ([]disk.TargetDisk, error) {
		return nil, errors.New("lsblk missing")
	}
	assert.Error(t, Disks(context.Background()))
}

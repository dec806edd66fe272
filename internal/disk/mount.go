package disk

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/blunux/installer/internal/sysexec"
)

// Mounter mounts and unmounts the produced layout at the staging root,
// resolving the encrypted-device indirection through Layout.RootDevice.
type Mounter struct {
	run sysexec.Runner
	log logr.Logger
}

// NewMounter returns a Mounter issuing commands through run.
func NewMounter(run sysexec.Runner, log logr.Logger) *Mounter {
	return &Mounter{run: run, log: log}
}

// mkdirAll is stubbed in tests that drive Mount against a fake runner.
var mkdirAll = os.MkdirAll

// Mount mounts the resolved root device at stagingRoot and, under GPTUEFI,
// the EFI partition at stagingRoot/boot/efi. A partial failure leaves
// whatever succeeded mounted and returns a *MountError; the pipeline
// decides whether to unmount and abort.
func (m *Mounter) Mount(ctx context.Context, layout Layout, stagingRoot string) error {
	if err := mkdirAll(stagingRoot, 0o755); err != nil {
		return &MountError{Target: stagingRoot, Err: err}
	}

	rootDev := layout.RootDevice()
	m.log.Info("mounting root partition", "device", rootDev, "at", stagingRoot)
	if err := m.run.Run(ctx, "mount", rootDev, stagingRoot); err != nil {
		return &MountError{Target: stagingRoot, Err: err}
	}

	if layout.Scheme == GPTUEFI {
		efiDir := filepath.Join(stagingRoot, "boot", "efi")
		if err := mkdirAll(efiDir, 0o755); err != nil {
			return &MountError{Target: efiDir, Err: err}
		}
		m.log.Info("mounting EFI partition", "device", layout.EFIPartition, "at", efiDir)
		if err := m.run.Run(ctx, "mount", layout.EFIPartition, efiDir); err != nil {
			return &MountError{Target: efiDir, Err: err}
		}
	}

	return nil
}

// Unmount recursively unmounts everything under stagingRoot and closes the
// encrypted mapping if present. It is best-effort: it runs on both success
// and failure cleanup paths and never fails the caller.
func (m *Mounter) Unmount(ctx context.Context, stagingRoot string) {
	_ = m.run.Run(ctx, "umount", "-R", stagingRoot)
	_ = m.run.Run(ctx, "cryptsetup", "close", MappedRootName)
}

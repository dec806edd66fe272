package disk

import (
	"context"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/blunux/installer/internal/sysexec"
)

// Executor issues the destructive operations that turn a raw disk into a
// formatted Layout. All operations are irreversible; the caller must have
// confirmed destructive intent before Partition is reached.
type Executor struct {
	run sysexec.Runner
	log logr.Logger

	// settle waits for the kernel to catch up after partition-table
	// changes; replaced in tests.
	settle func(time.Duration)
}

// NewExecutor returns an Executor issuing commands through run.
func NewExecutor(run sysexec.Runner, log logr.Logger) *Executor {
	return &Executor{run: run, log: log, settle: time.Sleep}
}

// Partition wipes disk and creates the partition table for scheme. Any
// failing creation sub-step aborts immediately with an *OpError naming the
// sub-step. On success the derived Layout is returned after the kernel has
// re-enumerated the partitions.
func (e *Executor) Partition(ctx context.Context, disk string, scheme Scheme) (Layout, error) {
	e.releaseDisk(ctx, disk)

	e.log.Info("wiping disk", "disk", disk)
	if err := e.run.Run(ctx, "wipefs", "-af", disk); err != nil {
		// Stale signatures are overwritten by the new table anyway.
		e.log.Info("could not wipe disk signatures", "disk", disk, "error", err)
	}
	_ = e.run.Run(ctx, "partprobe", disk)
	e.settle(time.Second)

	switch scheme {
	case GPTUEFI:
		e.log.Info("creating GPT partition table", "disk", disk)
		if err := e.run.Run(ctx, "parted", "-s", disk, "mklabel", "gpt"); err != nil {
			return Layout{}, &OpError{Op: "create-partition-table", Err: err}
		}
		if err := e.run.Run(ctx, "parted", "-s", disk, "mkpart", "primary", "fat32", "1MiB", "513MiB"); err != nil {
			return Layout{}, &OpError{Op: "create-efi-partition", Err: err}
		}
		if err := e.run.Run(ctx, "parted", "-s", disk, "set", "1", "esp", "on"); err != nil {
			return Layout{}, &OpError{Op: "set-esp-flag", Err: err}
		}
		if err := e.run.Run(ctx, "parted", "-s", disk, "mkpart", "primary", "ext4", "513MiB", "100%"); err != nil {
			return Layout{}, &OpError{Op: "create-root-partition", Err: err}
		}
	case MBRBIOS:
		e.log.Info("creating MBR partition table", "disk", disk)
		if err := e.run.Run(ctx, "parted", "-s", disk, "mklabel", "msdos"); err != nil {
			return Layout{}, &OpError{Op: "create-partition-table", Err: err}
		}
		if err := e.run.Run(ctx, "parted", "-s", disk, "mkpart", "primary", "ext4", "1MiB", "100%"); err != nil {
			return Layout{}, &OpError{Op: "create-root-partition", Err: err}
		}
		if err := e.run.Run(ctx, "parted", "-s", disk, "set", "1", "boot", "on"); err != nil {
			return Layout{}, &OpError{Op: "set-boot-flag", Err: err}
		}
	}

	_ = e.run.Run(ctx, "partprobe", disk)
	e.settle(2 * time.Second)

	return DerivePartitionPaths(disk, scheme), nil
}

// releaseDisk force-unmounts partitions already using the disk, disables
// swap on them and closes a stale encrypted mapping from a previous run.
func (e *Executor) releaseDisk(ctx context.Context, disk string) {
	out, err := e.run.Output(ctx, "lsblk", "-ln", "-o", "NAME", disk)
	if err == nil {
		names := strings.Split(out, "\n")
		if len(names) > 0 {
			names = names[1:] // first line is the disk itself
		}
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			dev := "/dev/" + name
			_ = e.run.Run(ctx, "umount", "-f", dev)
			_ = e.run.Run(ctx, "swapoff", dev)
		}
	}

	_ = e.run.Run(ctx, "cryptsetup", "close", MappedRootName)
	e.settle(time.Second)
}

// Format formats the layout's partitions. The EFI partition becomes FAT32
// (GPT only). When encryption is requested the raw root partition is wrapped
// in a LUKS2 container, opened under MappedRootName and recorded on the
// layout, and the mapped device is formatted; otherwise the raw partition is
// formatted directly.
func (e *Executor) Format(ctx context.Context, layout *Layout, encrypt bool, passphrase string) error {
	if layout.Scheme == GPTUEFI {
		e.log.Info("formatting EFI partition", "device", layout.EFIPartition)
		if err := e.run.Run(ctx, "mkfs.fat", "-F32", layout.EFIPartition); err != nil {
			return &OpError{Op: "format-efi", Err: err}
		}
	}

	if encrypt {
		e.log.Info("setting up encrypted root", "device", layout.RootPartition)
		if err := e.run.RunWithInput(ctx, passphrase,
			"cryptsetup", "luksFormat", "--type", "luks2", "--batch-mode", "--key-file=-", layout.RootPartition); err != nil {
			return &OpError{Op: "encrypt-root", Err: err}
		}
		if err := e.run.RunWithInput(ctx, passphrase,
			"cryptsetup", "open", "--key-file=-", layout.RootPartition, MappedRootName); err != nil {
			return &OpError{Op: "open-encrypted-root", Err: err}
		}
		layout.MappedRoot = MappedRootDevice
	}

	// RootDevice resolves to the mapping opened above, or the raw
	// partition when encryption is off.
	rootDev := layout.RootDevice()
	e.log.Info("formatting root", "device", rootDev)
	if err := e.run.Run(ctx, "mkfs.ext4", "-F", rootDev); err != nil {
		return &OpError{Op: "format-root", Err: err}
	}

	return nil
}

// Package disk implements the disk-layout planner, the destructive partition
// executor and the mount manager for the installation pipeline.
//
// The partition naming rule and its inverse both live here so the executor
// and the boot configurator can never disagree about which device a
// partition index maps to.
package disk

import (
	"fmt"
)

// Scheme is the partition scheme chosen once per installation run.
type Scheme string

const (
	// GPTUEFI is a GPT table with a 512 MiB EFI system partition and a
	// root partition covering the rest of the disk.
	GPTUEFI Scheme = "gpt-uefi"
	// MBRBIOS is an MBR table with a single bootable root partition.
	MBRBIOS Scheme = "mbr-bios"
)

const (
	// MappedRootName is the device-mapper name of the encrypted root.
	MappedRootName = "cryptroot"
	// MappedRootDevice is the block device exposed once the encrypted
	// root container is open.
	MappedRootDevice = "/dev/mapper/" + MappedRootName
)

// TargetDisk describes a candidate installation disk, sourced from lsblk.
type TargetDisk struct {
	Device string // e.g. /dev/sda
	Size   string // human-readable, as reported by lsblk
	Model  string
}

// Layout is the partition layout produced by Partition. EFIPartition is
// empty under MBRBIOS. MappedRoot is set by Format once the encrypted root
// container has been opened. The layout is owned by a single pipeline run.
type Layout struct {
	EFIPartition  string
	RootPartition string
	Scheme        Scheme
	MappedRoot    string
}

// RootDevice resolves the block device that currently backs the root
// filesystem: the encryption mapping when it is open, the raw partition
// otherwise. Every mount, fstab and boot-parameter reference to the root
// must go through this accessor.
func (l Layout) RootDevice() string {
	if l.MappedRoot != "" {
		return l.MappedRoot
	}
	return l.RootPartition
}

// OpError is a failed destructive sub-step (wipe, table creation, partition
// creation, formatting, encryption setup). It aborts the run immediately.
type OpError struct {
	Op  string // sub-step identifier, e.g. "create-partition-table"
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("disk operation %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// MountError is a failed mount of the root or EFI partition. Whatever was
// already mounted stays mounted; the pipeline decides how to clean up.
type MountError struct {
	Target string
	Err    error
}

func (e *MountError) Error() string {
	return fmt.Sprintf("mount %s: %v", e.Target, e.Err)
}

func (e *MountError) Unwrap() error { return e.Err }

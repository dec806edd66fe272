package disk

import (
	"fmt"
	"strconv"
	"strings"
)

// DecideScheme picks the partition scheme for the firmware mode. UEFI
// firmware gets GPT with an EFI system partition; everything else gets MBR.
func DecideScheme(firmwareIsUEFI bool) Scheme {
	if firmwareIsUEFI {
		return GPTUEFI
	}
	return MBRBIOS
}

// DerivePartitionPaths applies the partition naming rule of the disk's
// device family. Under GPTUEFI partition 1 is the EFI system partition and
// partition 2 is root; under MBRBIOS partition 1 is root.
func DerivePartitionPaths(disk string, scheme Scheme) Layout {
	layout := Layout{Scheme: scheme}
	switch scheme {
	case GPTUEFI:
		layout.EFIPartition = PartitionPath(disk, 1)
		layout.RootPartition = PartitionPath(disk, 2)
	case MBRBIOS:
		layout.RootPartition = PartitionPath(disk, 1)
	}
	return layout
}

// PartitionPath returns the device path of partition index on disk.
// NVMe and MMC device names end in a namespace/device number, so their
// partitions get a "p" separator: /dev/nvme0n1 -> /dev/nvme0n1p2.
// Other families append the bare index: /dev/sda -> /dev/sda2.
func PartitionPath(disk string, index int) string {
	if hasInfixNaming(disk) {
		return fmt.Sprintf("%sp%d", disk, index)
	}
	return fmt.Sprintf("%s%d", disk, index)
}

// SplitPartitionPath is the inverse of PartitionPath: it parses a partition
// device path into its owning disk and partition index. The boot
// configurator uses it to turn the EFI partition path into efibootmgr's
// --disk/--part arguments.
func SplitPartitionPath(partition string) (disk string, index int, err error) {
	numStart := len(partition)
	for numStart > 0 && partition[numStart-1] >= '0' && partition[numStart-1] <= '9' {
		numStart--
	}
	if numStart == len(partition) {
		return "", 0, fmt.Errorf("%q has no partition index suffix", partition)
	}

	disk = partition[:numStart]
	if hasInfixNaming(partition) {
		if !strings.HasSuffix(disk, "p") {
			return "", 0, fmt.Errorf("%q does not follow p-infixed partition naming", partition)
		}
		disk = strings.TrimSuffix(disk, "p")
	}
	if disk == "" {
		return "", 0, fmt.Errorf("%q has no disk component", partition)
	}

	index, err = strconv.Atoi(partition[numStart:])
	if err != nil {
		return "", 0, fmt.Errorf("bad partition index in %q: %w", partition, err)
	}
	return disk, index, nil
}

// hasInfixNaming reports whether the device belongs to a family whose
// partitions are named with a "p" separator.
func hasInfixNaming(device string) bool {
	return strings.Contains(device, "nvme") || strings.Contains(device, "mmcblk")
}

package boot

import (
	"fmt"

	"github.com/siderolabs/go-blockdevice/v2/blkid"
)

// blkidUUID probes a block device superblock for its filesystem or LUKS
// container UUID.
func blkidUUID(device string) (string, error) {
	info, err := blkid.ProbePath(device, blkid.WithSkipLocking(true))
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", device, err)
	}
	if info.UUID == nil {
		return "", fmt.Errorf("no UUID found on %s", device)
	}
	return info.UUID.String(), nil
}

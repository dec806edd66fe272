package disk

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/blunux/installer/internal/sysexec"
)

// efiFirmwarePath exists when the machine booted in UEFI mode; stubbed in
// tests.
var efiFirmwarePath = "/sys/firmware/efi"

// FirmwareIsUEFI reports whether the running system booted via UEFI.
func FirmwareIsUEFI() bool {
	_, err := os.Stat(efiFirmwarePath)
	return err == nil
}

// Discover lists the block devices of type "disk" that can serve as
// installation targets.
func Discover(ctx context.Context, run sysexec.Runner) ([]TargetDisk, error) {
	out, err := run.Output(ctx, "lsblk", "-d", "-n", "-o", "NAME,SIZE,MODEL,TYPE")
	if err != nil {
		return nil, err
	}

	var disks []TargetDisk
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// Last field is the type; everything between size and type is
		// the (possibly multi-word) model.
		if fields[len(fields)-1] != "disk" {
			continue
		}
		model := "Unknown"
		if len(fields) > 3 {
			model = strings.Join(fields[2:len(fields)-1], " ")
		}
		disks = append(disks, TargetDisk{
			Device: "/dev/" + fields[0],
			Size:   fields[1],
			Model:  model,
		})
	}
	return disks, nil
}

// meminfoPath is stubbed in tests.
var meminfoPath = "/proc/meminfo"

// RAMMiB returns the total system memory in MiB, falling back to 4096 when
// it cannot be determined. Swap-file sizing depends on it.
func RAMMiB() int {
	const fallback = 4096

	data, err := os.ReadFile(meminfoPath)
	if err != nil {
		return fallback
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return fallback
		}
		kib, err := strconv.Atoi(fields[1])
		if err != nil {
			return fallback
		}
		return kib / 1024
	}
	return fallback
}

package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/blunux/installer/internal/disk"
)

// Disks lists the block devices that can serve as installation targets.
func Disks(ctx context.Context) error {
	runner := newRunner(newLogger())

	disks, err := discoverDisks(ctx, runner)
	if err != nil {
		return fmt.Errorf("discover disks: %w", err)
	}
	if len(disks) == 0 {
		log.Println("No candidate disks found.")
		return nil
	}

	printDisks(disks)
	return nil
}

func printDisks(disks []disk.TargetDisk) {
	fmt.Printf("%-16s %-10s %s\n", "DEVICE", "SIZE", "MODEL")
	for _, d := range disks {
		fmt.Printf("%-16s %-10s %s\n", d.Device, d.Size, d.Model)
	}
}

// Package sysexec wraps the privileged system utilities the installer
// orchestrates (parted, cryptsetup, mount, pacstrap, arch-chroot, efibootmgr,
// grub-install) behind a narrow Runner interface.
//
// Production code uses Local, which shells out via os/exec. Tests use Script,
// a scripted fake that records the exact call sequence and returns canned
// results, so destructive flows can be asserted without touching a disk.
package sysexec

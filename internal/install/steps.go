package install

import (
	"fmt"

	"github.com/blunux/installer/internal/boot"
	"github.com/blunux/installer/internal/disk"
)

// Steps returns the fixed installation sequence. Order is load-bearing:
// every step builds on the artifacts of the previous ones, so the pipeline
// stops at the first fatal failure and leaves the target as-is.
func Steps() []Step {
	return []Step{
		{
			Name:    "prepare-disk",
			Message: "Preparing disk / 디스크 준비 중...",
			Policy:  Fatal,
			Run:     stepPrepareDisk,
		},
		{
			Name:    "install-base",
			Message: "Installing base system / 기본 시스템 설치 중...",
			Policy:  Fatal,
			Run:     stepInstallBase,
		},
		{
			Name:    "generate-fstab",
			Message: "Generating fstab / fstab 생성 중...",
			Policy:  Fatal,
			Run:     stepGenerateFstab,
		},
		{
			Name:    "configure-system",
			Message: "Configuring system / 시스템 설정 중...",
			Policy:  Fatal,
			Run:     stepConfigureSystem,
		},
		{
			Name:    "install-packages",
			Message: "Installing packages / 패키지 설치 중...",
			Policy:  BestEffort,
			Run:     stepInstallPackages,
		},
		{
			Name:    "configure-locale",
			Message: "Configuring locale / 로케일 설정 중...",
			Policy:  Fatal,
			Run:     stepConfigureLocale,
		},
		{
			Name:    "configure-users",
			Message: "Configuring users / 사용자 설정 중...",
			Policy:  Fatal,
			Run:     stepConfigureUsers,
		},
		{
			Name:    "install-bootloader",
			Message: "Installing bootloader / 부트로더 설치 중...",
			Policy:  Fatal,
			Run:     stepInstallBootloader,
		},
		{
			Name:    "finalize",
			Message: "Finalizing / 마무리 중...",
			Policy:  Fatal,
			Run:     stepFinalize,
		},
	}
}

// stepPrepareDisk partitions, formats and mounts the target disk. The scheme
// is decided by the firmware mode probed at context creation.
func stepPrepareDisk(c *Context) error {
	scheme := disk.DecideScheme(c.State.UEFI)

	exec := disk.NewExecutor(c.Run, c.Log)
	layout, err := exec.Partition(c, c.Config.Install.TargetDisk, scheme)
	if err != nil {
		return fmt.Errorf("partition disk: %w", err)
	}
	c.State.Layout = layout

	// Format records the opened encryption mapping on the layout, so later
	// steps resolve the root device through the run state.
	if err := exec.Format(c, &c.State.Layout, c.Config.Install.UseEncryption, c.Config.Install.EncryptionPassword); err != nil {
		return fmt.Errorf("format partitions: %w", err)
	}

	if err := disk.NewMounter(c.Run, c.Log).Mount(c, c.State.Layout, c.State.StagingRoot); err != nil {
		return fmt.Errorf("mount partitions: %w", err)
	}

	return nil
}

// stepInstallBase bootstraps the target root with pacstrap. The package set
// is the union of base, desktop, font and input-method packages; it is
// installed in one transaction so a failure leaves no half-populated root.
func stepInstallBase(c *Context) error {
	var packages []string
	packages = append(packages, basePackages(c.Config, c.State.UEFI)...)
	packages = append(packages, desktopPackages()...)
	packages = append(packages, fontPackages(c.Config)...)
	packages = append(packages, inputMethodPackages(c.Config)...)

	c.Observer.Printf("Installing packages with pacstrap...")
	c.Observer.Printf("This may take several minutes...")

	args := append([]string{"-K", c.State.StagingRoot}, packages...)
	if err := c.Run.Run(c, "pacstrap", args...); err != nil {
		return fmt.Errorf("pacstrap: %w", err)
	}
	return nil
}

// stepGenerateFstab appends the generated UUID-based fstab entries to the
// target's /etc/fstab.
func stepGenerateFstab(c *Context) error {
	out, err := c.Run.Output(c, "genfstab", "-U", c.State.StagingRoot)
	if err != nil {
		return fmt.Errorf("genfstab: %w", err)
	}
	c.appendTargetFile("etc/fstab", out+"\n")
	return nil
}

// newBootConfigurator is replaced in tests to pin the probed root UUID.
var newBootConfigurator = boot.NewConfigurator

// stepInstallBootloader builds the boot plan once and applies it. A direct
// boot request on legacy firmware degrades to GRUB with a warning.
func stepInstallBootloader(c *Context) error {
	cfgr := newBootConfigurator(c.Run, c.Log)

	plan, err := cfgr.BuildPlan(c.Config, c.State.Layout, c.State.UEFI)
	if err != nil {
		return err
	}
	if plan.FallbackWarning != "" {
		c.Observer.Warn(plan.FallbackWarning)
	}

	return cfgr.Apply(c, plan, c.State.StagingRoot)
}

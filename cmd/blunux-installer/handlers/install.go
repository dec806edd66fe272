// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blunux/installer/internal/config"
	"github.com/blunux/installer/internal/config/wizard"
	"github.com/blunux/installer/internal/disk"
	"github.com/blunux/installer/internal/install"
	"github.com/blunux/installer/internal/metrics"
	"github.com/blunux/installer/internal/sysexec"
	"github.com/blunux/installer/internal/ui/summary"
	"github.com/blunux/installer/internal/ui/tui"
)

// InstallOptions carries the install command's flags.
type InstallOptions struct {
	ConfigPath    string
	Yes           bool
	NoTUI         bool
	MetricsListen string
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	geteuid = os.Geteuid

	findConfigFile = config.FindConfigFile
	loadConfigFile = config.LoadFile

	discoverDisks = disk.Discover
	runWizard     = wizard.RunWizard

	newRunner = func(log logr.Logger) sysexec.Runner {
		return sysexec.NewLocal(log)
	}

	runTUI = tui.RunInstall

	confirmInstall = func(target string) (bool, error) {
		var confirmed bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Erase %s and install?", target)).
					Description("This cannot be undone.").
					Value(&confirmed),
			),
		).Run()
		return confirmed, err
	}

	confirmReboot = func() (bool, error) {
		var confirmed bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Reboot now?").
					Value(&confirmed),
			),
		).Run()
		return confirmed, err
	}

	stdoutIsTerminal = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

// Install runs the full installation: configuration assembly, preflight
// checks, destructive confirmation and the pipeline itself.
func Install(ctx context.Context, opts InstallOptions) error {
	if geteuid() != 0 {
		return fmt.Errorf("the installer must run as root")
	}

	logger := newLogger()
	runner := newRunner(logger)

	cfg, err := assembleConfig(ctx, opts.ConfigPath, runner)
	if err != nil {
		return err
	}

	checkNetwork(ctx, runner)

	uefi := disk.FirmwareIsUEFI()
	fmt.Println(summary.Render(cfg, uefi))

	if !opts.Yes {
		confirmed, err := confirmInstall(cfg.Install.TargetDisk)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Installation cancelled.")
			return nil
		}
	}

	return runInstallation(ctx, cfg, runner, logger, opts)
}

// runInstallation assembles the observer chain and drives the pipeline,
// under the TUI when stdout is a terminal.
func runInstallation(ctx context.Context, cfg *config.Config, runner sysexec.Runner, logger logr.Logger, opts InstallOptions) error {
	var metricsObs func(install.Observer) install.Observer
	if opts.MetricsListen != "" {
		reg := prometheus.NewRegistry()
		metrics.Serve(opts.MetricsListen, reg, logger)
		metricsObs = func(next install.Observer) install.Observer {
			return metrics.NewObserver(next, reg)
		}
	}

	pipeline := install.NewPipeline()

	runPipeline := func(observer install.Observer) error {
		if metricsObs != nil {
			observer = metricsObs(observer)
		}
		ictx := install.NewContext(ctx, cfg, runner, observer, logger)
		err := pipeline.Run(ictx)
		if mo, ok := observer.(*metrics.Observer); ok {
			mo.Finish()
		}
		return err
	}

	var runErr error
	if opts.NoTUI || !stdoutIsTerminal() {
		runErr = runPipeline(install.NewConsoleObserver())
	} else {
		// Raw command output would corrupt the alternate screen.
		if local, ok := runner.(*sysexec.Local); ok {
			local.Quiet = true
		}
		steps := install.Steps()
		messages := make([]string, len(steps))
		for i, s := range steps {
			messages[i] = s.Message
		}
		runErr = runTUI(cfg.Distro.Name, cfg.Install.TargetDisk, messages, runPipeline)
	}

	if runErr != nil {
		fmt.Println(summary.Failure(pipeline.LastError()))
		return runErr
	}

	fmt.Println(summary.Success(cfg))

	// Unattended runs (--yes) decide reboots themselves.
	if !opts.Yes && stdoutIsTerminal() {
		if reboot, err := confirmReboot(); err == nil && reboot {
			if err := runner.Run(ctx, "reboot"); err != nil {
				log.Printf("WARNING: reboot failed (%v); reboot manually", err)
			}
		}
	}
	return nil
}

// assembleConfig builds the run configuration from the config file and the
// wizard. File values are trusted; the wizard only prompts for what is
// missing.
func assembleConfig(ctx context.Context, configPath string, runner sysexec.Runner) (*config.Config, error) {
	cfg := config.Default()

	if configPath == "" {
		if path, ok := findConfigFile(); ok {
			configPath = path
		}
	}
	if configPath != "" {
		loaded, err := loadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
		log.Printf("Using config: %s", configPath)
		cfg = loaded
	}

	disks, err := discoverDisks(ctx, runner)
	if err != nil {
		return nil, fmt.Errorf("discover disks: %w", err)
	}

	if err := runWizard(ctx, cfg, disks); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checkNetwork warns when the package mirrors look unreachable. The base
// install needs the network, but the check itself must not block a run on a
// network that drops ICMP.
func checkNetwork(ctx context.Context, runner sysexec.Runner) {
	if err := runner.Run(ctx, "ping", "-c", "1", "-W", "2", "archlinux.org"); err != nil {
		log.Printf("WARNING: network check failed (%v); the base system install needs a working connection", err)
	}
}

// newLogger builds the structured logger. Verbose exec tracing sits at
// V(1) and stays off by default.
func newLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			log.Printf("%s: %s", prefix, args)
		} else {
			log.Print(args)
		}
	}, funcr.Options{})
}

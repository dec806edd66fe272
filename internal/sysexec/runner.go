package sysexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/go-logr/logr"
)

// Runner executes privileged operations on the host and inside the staging
// root. All installer components issue external commands exclusively through
// this interface.
type Runner interface {
	// Run executes a host command and waits for it to finish.
	Run(ctx context.Context, name string, args ...string) error

	// RunWithInput executes a host command with input piped to stdin.
	// Used for cryptsetup passphrase entry and chpasswd.
	RunWithInput(ctx context.Context, input, name string, args ...string) error

	// Output executes a host command and returns its trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)

	// Chroot executes a shell command inside the target root via arch-chroot.
	Chroot(ctx context.Context, root, command string) error

	// ChrootWithInput is Chroot with input piped to stdin.
	ChrootWithInput(ctx context.Context, input, root, command string) error
}

// Local is the production Runner. Command stdout/stderr pass through to the
// console unless Quiet is set, so long operations like pacstrap remain
// visible to the operator.
type Local struct {
	Quiet bool
	Log   logr.Logger
}

// NewLocal returns a Runner that executes commands on the local host.
func NewLocal(log logr.Logger) *Local {
	return &Local{Log: log}
}

func (l *Local) Run(ctx context.Context, name string, args ...string) error {
	return l.run(ctx, "", name, args...)
}

func (l *Local) RunWithInput(ctx context.Context, input, name string, args ...string) error {
	return l.run(ctx, input, name, args...)
}

func (l *Local) Output(ctx context.Context, name string, args ...string) (string, error) {
	l.Log.V(1).Info("exec", "cmd", name, "args", args)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", wrapExitErr(name, err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (l *Local) Chroot(ctx context.Context, root, command string) error {
	return l.run(ctx, "", "arch-chroot", root, "sh", "-c", command)
}

func (l *Local) ChrootWithInput(ctx context.Context, input, root, command string) error {
	return l.run(ctx, input, "arch-chroot", root, "sh", "-c", command)
}

func (l *Local) run(ctx context.Context, input, name string, args ...string) error {
	l.Log.V(1).Info("exec", "cmd", name, "args", args)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}
	if l.Quiet {
		cmd.Stdout = io.Discard
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)
	}

	if err := cmd.Run(); err != nil {
		return wrapExitErr(name, err, stderr.String())
	}
	return nil
}

// wrapExitErr attaches the tail of stderr to the exec error so pipeline
// failures identify what the utility actually complained about.
func wrapExitErr(name string, err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return fmt.Errorf("%s: %w", name, err)
	}
	const tail = 400
	if len(stderr) > tail {
		stderr = "..." + stderr[len(stderr)-tail:]
	}
	return fmt.Errorf("%s: %w: %s", name, err, stderr)
}

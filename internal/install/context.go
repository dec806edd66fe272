package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/blunux/installer/internal/config"
	"github.com/blunux/installer/internal/disk"
	"github.com/blunux/installer/internal/sysexec"
)

// DefaultStagingRoot is where the target filesystem is assembled.
const DefaultStagingRoot = "/mnt"

// State is the run-scoped mutable state shared by the pipeline steps. It is
// created per run and discarded afterwards.
type State struct {
	StagingRoot string
	UEFI        bool

	// Layout is populated by the prepare-disk step.
	Layout disk.Layout

	// ConfigErrors collects non-fatal configuration-write failures;
	// they are reported at the end of the run.
	ConfigErrors []error
}

// Context wraps everything a pipeline step needs: the immutable
// configuration, the privileged runner, the observer and the run state.
type Context struct {
	context.Context
	Config   *config.Config
	Run      sysexec.Runner
	Observer Observer
	Log      logr.Logger
	State    *State
}

// NewContext creates the context for one installation run. A nil observer
// gets the default console reporter.
func NewContext(ctx context.Context, cfg *config.Config, run sysexec.Runner, observer Observer, log logr.Logger) *Context {
	if observer == nil {
		observer = NewConsoleObserver()
	}
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Run:      run,
		Observer: observer,
		Log:      log,
		State: &State{
			StagingRoot: DefaultStagingRoot,
			UEFI:        disk.FirmwareIsUEFI(),
		},
	}
}

// ConfigWriteError is a failed write of a target-system configuration
// artifact. It is recorded but does not stop the pipeline.
type ConfigWriteError struct {
	Artifact string
	Err      error
}

func (e *ConfigWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Artifact, e.Err)
}

func (e *ConfigWriteError) Unwrap() error { return e.Err }

// File operations go through vars so tests can fail them selectively.
var (
	writeFile = os.WriteFile
	mkdirAll  = os.MkdirAll
)

// targetPath resolves a path relative to the staging root.
func (c *Context) targetPath(rel string) string {
	return filepath.Join(c.State.StagingRoot, rel)
}

// writeTargetFile writes a configuration artifact into the target root with
// overwrite semantics. Failures are recorded as ConfigWriteErrors and do
// not abort the step.
func (c *Context) writeTargetFile(rel string, content []byte, mode os.FileMode) {
	path := c.targetPath(rel)
	if err := mkdirAll(filepath.Dir(path), 0o755); err != nil {
		c.recordConfigError(rel, err)
		return
	}
	if err := writeFile(path, content, mode); err != nil {
		c.recordConfigError(rel, err)
	}
}

// appendTargetFile appends to one of the explicitly append-only artifacts
// (fstab, locale.gen).
func (c *Context) appendTargetFile(rel, content string) {
	path := c.targetPath(rel)
	if err := mkdirAll(filepath.Dir(path), 0o755); err != nil {
		c.recordConfigError(rel, err)
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G304
	if err != nil {
		c.recordConfigError(rel, err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		c.recordConfigError(rel, err)
	}
}

func (c *Context) recordConfigError(artifact string, err error) {
	werr := &ConfigWriteError{Artifact: artifact, Err: err}
	c.State.ConfigErrors = append(c.State.ConfigErrors, werr)
	c.Log.Error(err, "configuration write failed", "artifact", artifact)
	c.Observer.Warn(werr.Error())
}

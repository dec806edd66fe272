package install

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blunux/installer/internal/config"
	"github.com/blunux/installer/internal/sysexec"
)

// recorder captures observer traffic for assertions.
type recorder struct {
	steps []string
	infos []string
	warns []string
}

func (r *recorder) Step(current, total int, message string) {
	r.steps = append(r.steps, fmt.Sprintf("%d/%d %s", current, total, message))
}

func (r *recorder) Printf(format string, v ...interface{}) {
	r.infos = append(r.infos, fmt.Sprintf(format, v...))
}

func (r *recorder) Warn(message string) {
	r.warns = append(r.warns, message)
}

func newTestContext(obs Observer) *Context {
	ctx := NewContext(context.Background(), config.Default(), sysexec.NewScript(), obs, logr.Discard())
	return ctx
}

func TestPipelineRunsStepsInOrder(t *testing.T) {
	t.Parallel()

	var ran []string
	step := func(name string) Step {
		return Step{Name: name, Message: "msg " + name, Policy: Fatal, Run: func(*Context) error {
			ran = append(ran, name)
			return nil
		}}
	}

	obs := &recorder{}
	p := NewPipelineWithSteps([]Step{step("one"), step("two"), step("three")})
	err := p.Run(newTestContext(obs))
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two", "three"}, ran)
	assert.Equal(t, []string{"1/3 msg one", "2/3 msg two", "3/3 msg three"}, obs.steps)
	assert.False(t, p.Failed())
	assert.Empty(t, p.LastError())
}

func TestPipelineStopsAtFirstFatalFailure(t *testing.T) {
	t.Parallel()

	var ran []string
	boom := errors.New("disk on fire")
	steps := []Step{
		{Name: "ok", Message: "ok", Policy: Fatal, Run: func(*Context) error { ran = append(ran, "ok"); return nil }},
		{Name: "bad", Message: "bad", Policy: Fatal, Run: func(*Context) error { ran = append(ran, "bad"); return boom }},
		{Name: "never", Message: "never", Policy: Fatal, Run: func(*Context) error { ran = append(ran, "never"); return nil }},
	}

	p := NewPipelineWithSteps(steps)
	err := p.Run(newTestContext(&recorder{}))
	require.Error(t, err)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"ok", "bad"}, ran)
	assert.True(t, p.Failed())
	assert.Contains(t, p.LastError(), "bad")
	assert.Contains(t, p.LastError(), "disk on fire")
}

func TestPipelineContinuesPastBestEffortFailure(t *testing.T) {
	t.Parallel()

	var ran []string
	steps := []Step{
		{Name: "shaky", Message: "shaky", Policy: BestEffort, Run: func(*Context) error {
			ran = append(ran, "shaky")
			return errors.New("driver mirror down")
		}},
		{Name: "after", Message: "after", Policy: Fatal, Run: func(*Context) error { ran = append(ran, "after"); return nil }},
	}

	obs := &recorder{}
	p := NewPipelineWithSteps(steps)
	err := p.Run(newTestContext(obs))
	require.NoError(t, err)

	assert.Equal(t, []string{"shaky", "after"}, ran)
	require.Len(t, obs.warns, 1)
	assert.Contains(t, obs.warns[0], "driver mirror down")
	assert.False(t, p.Failed())
}

func TestPipelineRunsOnlyOnce(t *testing.T) {
	t.Parallel()

	p := NewPipelineWithSteps(nil)
	require.NoError(t, p.Run(newTestContext(&recorder{})))
	assert.Error(t, p.Run(newTestContext(&recorder{})))
}

func TestPipelineReportsConfigWriteErrors(t *testing.T) {
	t.Parallel()

	steps := []Step{
		{Name: "writes", Message: "writes", Policy: Fatal, Run: func(c *Context) error {
			c.recordConfigError("etc/hostname", errors.New("read-only fs"))
			return nil
		}},
	}

	obs := &recorder{}
	err := NewPipelineWithSteps(steps).Run(newTestContext(obs))
	require.NoError(t, err)

	// Warned once when recorded and once in the end-of-run report.
	require.Len(t, obs.warns, 2)
	assert.Contains(t, obs.warns[1], "etc/hostname")
}

func TestStandardStepTable(t *testing.T) {
	t.Parallel()

	steps := Steps()
	require.Len(t, steps, 9)

	// Only driver installation may fail without aborting the run.
	for i, step := range steps {
		want := Fatal
		if step.Name == "install-packages" {
			want = BestEffort
		}
		assert.Equal(t, want, step.Policy, "step %d (%s)", i+1, step.Name)
	}

	assert.Equal(t, "prepare-disk", steps[0].Name)
	assert.Equal(t, "finalize", steps[8].Name)
}

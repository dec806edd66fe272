package install

import (
	"fmt"
)

// FailurePolicy controls what a step failure does to the run.
type FailurePolicy int

const (
	// Fatal failures abort the run immediately. No later step executes and
	// the target is left as-is for inspection.
	Fatal FailurePolicy = iota
	// BestEffort failures are reported as warnings and the run continues.
	BestEffort
)

// Step is one entry in the fixed installation sequence.
type Step struct {
	Name    string
	Message string
	Policy  FailurePolicy
	Run     func(*Context) error
}

// Pipeline executes the installation steps in order, reporting progress and
// stopping at the first fatal failure. A Pipeline performs exactly one run.
type Pipeline struct {
	steps []Step

	lastError string
	failed    bool
	ran       bool
}

// NewPipeline returns a pipeline over the standard step sequence.
func NewPipeline() *Pipeline {
	return &Pipeline{steps: Steps()}
}

// NewPipelineWithSteps returns a pipeline over an explicit step sequence.
func NewPipelineWithSteps(steps []Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Total returns the number of steps in the sequence.
func (p *Pipeline) Total() int { return len(p.steps) }

// LastError returns a description of the failure that terminated the run,
// or the empty string if the run succeeded or has not happened yet.
func (p *Pipeline) LastError() string { return p.lastError }

// Failed reports whether the run terminated on a fatal step failure.
func (p *Pipeline) Failed() bool { return p.failed }

// Run executes the steps against ctx. Each step is announced through the
// observer before it runs. A fatal step failure stops the run and is both
// recorded and returned; best-effort failures are warned and skipped.
func (p *Pipeline) Run(ctx *Context) error {
	if p.ran {
		return fmt.Errorf("pipeline already ran")
	}
	p.ran = true

	total := len(p.steps)
	for i, step := range p.steps {
		ctx.Observer.Step(i+1, total, step.Message)
		ctx.Log.Info("running step", "step", step.Name, "index", i+1, "total", total)

		if err := step.Run(ctx); err != nil {
			if step.Policy == BestEffort {
				ctx.Observer.Warn(fmt.Sprintf("%s: %v", step.Name, err))
				ctx.Log.Error(err, "step failed, continuing", "step", step.Name)
				continue
			}
			p.failed = true
			p.lastError = fmt.Sprintf("%s: %v", step.Name, err)
			ctx.Log.Error(err, "step failed, aborting", "step", step.Name)
			return fmt.Errorf("step %q failed: %w", step.Name, err)
		}
	}

	for _, werr := range ctx.State.ConfigErrors {
		ctx.Observer.Warn(werr.Error())
	}

	return nil
}

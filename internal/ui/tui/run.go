package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/blunux/installer/internal/install"
)

// programObserver forwards pipeline progress into the Bubble Tea program.
type programObserver struct {
	p *tea.Program
}

func (o *programObserver) Step(current, total int, message string) {
	o.p.Send(StepMsg{Current: current, Total: total, Message: message})
}

func (o *programObserver) Printf(format string, v ...interface{}) {
	o.p.Send(InfoMsg{Text: fmt.Sprintf(format, v...)})
}

func (o *programObserver) Warn(message string) {
	o.p.Send(WarnMsg{Text: message})
}

// RunInstall wraps an installation run with the TUI. installFn receives the
// observer wired to the display and runs the pipeline in the background; the
// UI stays up until the run finishes or fails.
func RunInstall(distroName, targetDisk string, stepMessages []string, installFn func(o install.Observer) error) error {
	m := NewModel(distroName, targetDisk, stepMessages)
	p := tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		if err := installFn(&programObserver{p: p}); err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	if fm.Err != nil {
		return fm.Err
	}
	return nil
}

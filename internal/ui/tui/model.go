package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// stepRow is one pipeline step for display.
type stepRow struct {
	Message string
	Done    bool
	Active  bool
}

// Model is the Bubble Tea model for the installation dashboard.
type Model struct {
	DistroName string
	TargetDisk string

	Steps   []stepRow
	Current int

	// Rolling tail of step output.
	Messages []string
	Warnings []string

	SpinnerFrame int
	StartTime    time.Time

	Width  int
	Height int
	Err    error
	Done   bool
}

// NewModel creates a model over the given step messages.
func NewModel(distroName, targetDisk string, stepMessages []string) Model {
	steps := make([]stepRow, len(stepMessages))
	for i, msg := range stepMessages {
		steps[i] = stepRow{Message: msg}
	}
	return Model{
		DistroName: distroName,
		TargetDisk: targetDisk,
		Steps:      steps,
		StartTime:  time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Detaches the UI only; the run itself is not interruptible
			// once the disk has been written.
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StepMsg:
		m.advanceStep(msg)

	case InfoMsg:
		m.Messages = append(m.Messages, msg.Text)
		if len(m.Messages) > 6 {
			m.Messages = m.Messages[len(m.Messages)-6:]
		}

	case WarnMsg:
		m.Warnings = append(m.Warnings, msg.Text)

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		for i := range m.Steps {
			m.Steps[i].Done = true
			m.Steps[i].Active = false
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) advanceStep(msg StepMsg) {
	idx := msg.Current - 1
	if idx < 0 || idx >= len(m.Steps) {
		return
	}
	for i := 0; i < idx; i++ {
		m.Steps[i].Done = true
		m.Steps[i].Active = false
	}
	m.Steps[idx].Active = true
	m.Current = msg.Current
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}

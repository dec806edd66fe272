package sysexec

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records one command issued against a Script runner.
type Call struct {
	Kind  string // "run", "output", "chroot"
	Root  string // chroot root, empty for host commands
	Input string // stdin payload, if any
	Cmd   string // command and arguments joined with spaces
}

// Script is a scripted fake Runner for tests. It records every call and
// answers from configured result tables; unconfigured calls succeed with
// empty output, which keeps happy-path tests terse.
type Script struct {
	mu    sync.Mutex
	calls []Call

	// Fail maps a command-line substring to the error returned when a
	// matching command is issued.
	Fail map[string]error

	// Stdout maps a command-line substring to the stdout returned by Output.
	Stdout map[string]string
}

// NewScript returns an empty scripted runner.
func NewScript() *Script {
	return &Script{
		Fail:   make(map[string]error),
		Stdout: make(map[string]string),
	}
}

// FailOn makes every command whose line contains substr return an error.
func (s *Script) FailOn(substr string, err error) *Script {
	s.Fail[substr] = err
	return s
}

// RespondTo sets the stdout for Output commands whose line contains substr.
func (s *Script) RespondTo(substr, stdout string) *Script {
	s.Stdout[substr] = stdout
	return s
}

// Calls returns a copy of the recorded calls in issue order.
func (s *Script) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Lines returns the recorded command lines, chroot commands prefixed with
// "chroot:".
func (s *Script) Lines() []string {
	lines := make([]string, 0, len(s.calls))
	for _, c := range s.Calls() {
		if c.Kind == "chroot" {
			lines = append(lines, "chroot:"+c.Cmd)
			continue
		}
		lines = append(lines, c.Cmd)
	}
	return lines
}

// Issued reports whether any recorded command line contains substr.
func (s *Script) Issued(substr string) bool {
	for _, l := range s.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func (s *Script) record(c Call) error {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()

	for substr, err := range s.Fail {
		if strings.Contains(c.Cmd, substr) {
			return err
		}
	}
	return nil
}

func (s *Script) Run(_ context.Context, name string, args ...string) error {
	return s.record(Call{Kind: "run", Cmd: line(name, args)})
}

func (s *Script) RunWithInput(_ context.Context, input, name string, args ...string) error {
	return s.record(Call{Kind: "run", Input: input, Cmd: line(name, args)})
}

func (s *Script) Output(_ context.Context, name string, args ...string) (string, error) {
	cmd := line(name, args)
	if err := s.record(Call{Kind: "output", Cmd: cmd}); err != nil {
		return "", err
	}
	for substr, out := range s.Stdout {
		if strings.Contains(cmd, substr) {
			return out, nil
		}
	}
	return "", nil
}

func (s *Script) Chroot(_ context.Context, root, command string) error {
	return s.record(Call{Kind: "chroot", Root: root, Cmd: command})
}

func (s *Script) ChrootWithInput(_ context.Context, input, root, command string) error {
	return s.record(Call{Kind: "chroot", Root: root, Input: input, Cmd: command})
}

func line(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return fmt.Sprintf("%s %s", name, strings.Join(args, " "))
}

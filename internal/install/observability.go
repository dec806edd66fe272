package install

import (
	"log"
)

// Observer receives progress during an installation run. Step is invoked
// before every pipeline step; Printf and Warn carry informational output
// from inside steps.
type Observer interface {
	// Step reports that step current of total is about to run.
	Step(current, total int, message string)

	// Printf logs an informational message.
	Printf(format string, v ...interface{})

	// Warn logs a non-fatal problem.
	Warn(message string)
}

// ConsoleObserver is the default Observer, writing through the standard log
// package. It is used when no observer is registered.
type ConsoleObserver struct{}

// NewConsoleObserver returns a console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

func (o *ConsoleObserver) Step(current, total int, message string) {
	log.Printf("[%d/%d] %s", current, total, message)
}

func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

func (o *ConsoleObserver) Warn(message string) {
	log.Printf("WARNING: %s", message)
}

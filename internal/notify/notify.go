package notify

import (
	"fmt"
	"io"
)

// Severity classifies a user-facing notice.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Notifier delivers fire-and-forget user feedback. Callers never consume a
// return value.
type Notifier interface {
	Notify(message string, sev Severity)
}

// Console writes notices to a writer, one per line.
type Console struct {
	W io.Writer
}

func (c Console) Notify(message string, sev Severity) {
	fmt.Fprintf(c.W, "[%s] %s\n", sev, message)
}

// Nop discards all notices.
type Nop struct{}

func (Nop) Notify(string, Severity) {}

package model

import "fmt"

// Severity of a diagnostic message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Diagnostic is one message with its source location.
type Diagnostic struct {
	Severity Severity
	Message  string
	Location Location
}

// String formats the diagnostic like a compiler message.
func (d *Diagnostic) String() string {
	if d.Location.File == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Location.File, d.Location.Line, d.Location.Column, d.Severity, d.Message)
}

// Diagnostics accumulates messages in the order they were reported.
type Diagnostics struct {
	Messages  []*Diagnostic
	hasErrors bool
}

// Add appends a diagnostic.
func (d *Diagnostics) Add(sev Severity, loc Location, format string, args ...any) {
	d.Messages = append(d.Messages, &Diagnostic{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
	if sev == SeverityError {
		d.hasErrors = true
	}
}

// Info records an informational message.
func (d *Diagnostics) Info(loc Location, format string, args ...any) {
	d.Add(SeverityInfo, loc, format, args...)
}

// Warning records a warning.
func (d *Diagnostics) Warning(loc Location, format string, args ...any) {
	d.Add(SeverityWarning, loc, format, args...)
}

// Error records an error and sets HasErrors.
func (d *Diagnostics) Error(loc Location, format string, args ...any) {
	d.Add(SeverityError, loc, format, args...)
}

// HasErrors reports whether any error was recorded.
func (d *Diagnostics) HasErrors() bool {
	return d.hasErrors
}

// Count returns how many messages have the given severity.
func (d *Diagnostics) Count(sev Severity) int {
	n := 0
	for _, m := range d.Messages {
		if m.Severity == sev {
			n++
		}
	}
	return n
}

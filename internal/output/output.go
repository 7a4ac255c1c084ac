// Package output provides consistent CLI output formatting for the
// caseintel command-line tools.
package output

import (
	"fmt"
	"io"
)

// Writer formats status, success, warning, and error lines for CLI commands.
type Writer struct {
	out io.Writer
}

// New creates a Writer that writes to out.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status line with an icon; an empty icon indents the
// message instead.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "  %s\n", msg)
	}
}

// Statusf prints a formatted status line.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success line.
func (w *Writer) Success(msg string) { w.Status("✓", msg) }

// Successf prints a formatted success line.
func (w *Writer) Successf(format string, args ...any) { w.Success(fmt.Sprintf(format, args...)) }

// Warning prints a warning line.
func (w *Writer) Warning(msg string) { w.Status("!", msg) }

// Warningf prints a formatted warning line.
func (w *Writer) Warningf(format string, args ...any) { w.Warning(fmt.Sprintf(format, args...)) }

// Error prints an error line.
func (w *Writer) Error(msg string) { w.Status("✗", msg) }

// Errorf prints a formatted error line.
func (w *Writer) Errorf(format string, args ...any) { w.Error(fmt.Sprintf(format, args...)) }

// Newline prints a blank line.
func (w *Writer) Newline() { _, _ = fmt.Fprintln(w.out) }

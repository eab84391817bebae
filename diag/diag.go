// Package diag supplies the runtime's diagnostic sink: a small Logger
// interface matching runtime.Logger, a colorized implementation for
// terminals, and a plain one for everything else (log files, pipes, CI).
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
)

// Logger is satisfied by runtime.Logger; kept as an independent type here
// so this package has no import-time dependency on runtime.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// console is the default Logger: warnings and errors go to the writer
// given to New (usually stderr), colorized when that writer is a terminal. Runtime lifecycle events (runtime
// created, forked, closed) are reported separately through commonlog so an
// embedder can route them into its own structured-logging sink.
type console struct {
	out      io.Writer
	colorize bool
}

// New builds a Logger writing to w, auto-detecting whether w is a terminal
// (via go-isatty) to decide whether to colorize. Pass os.Stderr for the
// common case.
func New(w io.Writer) Logger {
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &console{out: w, colorize: colorize}
}

func (c *console) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.colorize {
		color.New(color.FgYellow).Fprintf(c.out, "warning: %s\n", msg)
		return
	}
	fmt.Fprintf(c.out, "warning: %s\n", msg)
}

func (c *console) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.colorize {
		color.New(color.FgRed, color.Bold).Fprintf(c.out, "error: %s\n", msg)
		return
	}
	fmt.Fprintf(c.out, "error: %s\n", msg)
}

// LifecycleLogger reports one-line runtime lifecycle events (runtime
// created, forked, closed) through commonlog.NewInfoMessage, the
// leveled/sink-agnostic message constructor the pack's LSP-building repo
// (chazu-maggie) uses in place of log.Printf for server lifecycle events.
type LifecycleLogger struct{ subsystemCode int }

// NewLifecycleLogger builds a LifecycleLogger. code distinguishes this
// subsystem's messages from others sharing the same commonlog sink.
func NewLifecycleLogger(code int) *LifecycleLogger { return &LifecycleLogger{subsystemCode: code} }

func (l *LifecycleLogger) RuntimeCreated() {
	commonlog.NewInfoMessage(l.subsystemCode, "runtime created")
}
func (l *LifecycleLogger) RuntimeForked() {
	commonlog.NewInfoMessage(l.subsystemCode, "runtime forked")
}
func (l *LifecycleLogger) RuntimeClosed() {
	commonlog.NewInfoMessage(l.subsystemCode, "runtime closed")
}
func (l *LifecycleLogger) ExceptionEscaped(msg string) {
	commonlog.NewInfoMessage(l.subsystemCode, "uncaught exception escaped to embedder: "+msg)
}

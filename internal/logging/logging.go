// Package logging provides the leveled CLI logger used across lockdir.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger writes leveled, colorized messages. Info and Debug go to stdout
// and are gated by the corresponding flags; Warn and Error always print
// to stderr.
type Logger struct {
	Verbose bool
	Debug   bool

	out io.Writer
	err io.Writer
}

// New returns a logger writing to the standard streams.
func New(verbose, debug bool) *Logger {
	return &Logger{Verbose: verbose, Debug: debug, out: os.Stdout, err: os.Stderr}
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *Logger {
	return &Logger{out: io.Discard, err: io.Discard}
}

func (l *Logger) Infof(msg string, args ...any) {
	if l.Verbose {
		fmt.Fprintf(l.out, color.GreenString("[info] ")+msg+"\n", args...)
	}
}

func (l *Logger) Debugf(msg string, args ...any) {
	if l.Debug {
		fmt.Fprintf(l.out, color.CyanString("[debug] ")+msg+"\n", args...)
	}
}

func (l *Logger) Warnf(msg string, args ...any) {
	fmt.Fprintf(l.err, color.YellowString("[warn] ")+msg+"\n", args...)
}

func (l *Logger) Errorf(msg string, args ...any) {
	fmt.Fprintf(l.err, color.RedString("[error] ")+msg+"\n", args...)
}

// Package report writes operator notices for command line runs.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\x1b[0m"
	colorGreen  = "\x1b[32;1m"
	colorYellow = "\x1b[33;1m"
	colorRed    = "\x1b[31;1m"
)

// StreamReporter writes one notice per line to an io.Writer. Notices are
// coloured by severity when the writer is a terminal.
type StreamReporter struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewStreamReporter returns a reporter over out. Colour is enabled only when
// out is a terminal and NO_COLOR is unset.
func NewStreamReporter(out io.Writer) *StreamReporter {
	return &StreamReporter{out: out, color: isTerminal(out) && os.Getenv("NO_COLOR") == ""}
}

// NewStdout returns a reporter over os.Stdout.
func NewStdout() *StreamReporter {
	return NewStreamReporter(os.Stdout)
}

func (r *StreamReporter) Success(msg string) { r.write(colorGreen, msg) }

func (r *StreamReporter) Warning(msg string) { r.write(colorYellow, msg) }

func (r *StreamReporter) Error(msg string) { r.write(colorRed, msg) }

func (r *StreamReporter) write(color, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.color {
		_, _ = fmt.Fprintf(r.out, "%s%s%s\n", color, msg, colorReset)
		return
	}
	_, _ = fmt.Fprintln(r.out, msg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Package notify renders user-facing batch notifications on a terminal.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Console writes one line per notification. Writes are serialized so lines
// from concurrent completions never interleave.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	progress func(a ...interface{}) string
	success  func(a ...interface{}) string
	warning  func(a ...interface{}) string
	failure  func(a ...interface{}) string
}

// NewConsole writes to out (stdout when nil). Colors follow color.NoColor,
// which fatih/color disables automatically for non-terminals.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{
		out:      out,
		progress: color.New(color.FgCyan).SprintFunc(),
		success:  color.New(color.FgGreen).SprintFunc(),
		warning:  color.New(color.FgYellow).SprintFunc(),
		failure:  color.New(color.FgRed, color.Bold).SprintFunc(),
	}
}

// Progress implements outbound.Notifier.
func (c *Console) Progress(message string) { c.write(c.progress("…"), message) }

// Success implements outbound.Notifier.
func (c *Console) Success(message string) { c.write(c.success("✔"), message) }

// Warning implements outbound.Notifier.
func (c *Console) Warning(message string) { c.write(c.warning("!"), message) }

// Error implements outbound.Notifier.
func (c *Console) Error(message string) { c.write(c.failure("✖"), message) }

func (c *Console) write(symbol, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", symbol, message)
}

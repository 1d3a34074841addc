package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/shared"
	"github.com/desertthunder/wsctl/internal/tasks"
)

var (
	_ tasks.Notifier  = (*console)(nil)
	_ tasks.Navigator = (*console)(nil)
	_ tasks.Prompter  = (*console)(nil)
)

// console reports controller notifications on the terminal and reads prompt answers from input.
type console struct {
	mu     sync.Mutex
	out    io.Writer
	in     *bufio.Reader
	quiet  bool // drop info flashes; warnings and errors still print
	open   bool // open navigations in the browser
	resolv func(path string) string
	visit  func(ctx context.Context, location string) error // follows navigations when set
}

func (r *Runner) newConsole() *console {
	return &console{
		out:    r.output,
		in:     bufio.NewReader(r.input),
		resolv: r.api.URL,
	}
}

func (c *console) Flash(kind models.FlashKind, message string) {
	if c.quiet && kind == models.FlashInfo {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case models.FlashError:
		fmt.Fprintf(c.out, "✗ %s\n", message)
	case models.FlashWarn:
		fmt.Fprintf(c.out, "! %s\n", message)
	default:
		fmt.Fprintf(c.out, "✓ %s\n", message)
	}
}

func (c *console) Hide() {}

func (c *console) Reload(ctx context.Context) error { return nil }

// Navigate prints the location, resolving application paths against the base URL.
func (c *console) Navigate(ctx context.Context, location string) error {
	if strings.HasPrefix(location, "/") && c.resolv != nil {
		location = c.resolv(location)
	}

	c.mu.Lock()
	fmt.Fprintf(c.out, "→ %s\n", location)
	c.mu.Unlock()

	switch {
	case c.open:
		return shared.OpenBrowser(location)
	case c.visit != nil:
		return c.visit(ctx, location)
	}
	return nil
}

// Prompt prints message and reads one line. End of input cancels.
func (c *console) Prompt(ctx context.Context, message string) (string, bool) {
	c.mu.Lock()
	fmt.Fprintf(c.out, "%s: ", message)
	c.mu.Unlock()

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

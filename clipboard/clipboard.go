// Package clipboard keeps copied formatted text in process and mirrors its
// plain text to the system clipboard, using OSC52 over SSH.
package clipboard

import (
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"

	"github.com/cornish/inkwell/props"
)

// System is the platform clipboard.
type System interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type osClipboard struct{}

func (osClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }
func (osClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Clipboard provides unified clipboard access with OSC52 support for SSH.
type Clipboard struct {
	// Plain text of the last copy, for when no system clipboard is available
	internal string
	// Formatted content of the last copy
	rich props.Runs
	// Whether we're likely in an SSH session
	isSSH bool
	// Output writer for OSC52 sequences (typically os.Stdout)
	output io.Writer
	system System
}

// Option configures a Clipboard.
type Option func(*Clipboard)

// WithSystem replaces the platform clipboard.
func WithSystem(s System) Option {
	return func(c *Clipboard) {
		c.system = s
	}
}

// WithSSH overrides SSH session detection.
func WithSSH(ssh bool) Option {
	return func(c *Clipboard) {
		c.isSSH = ssh
	}
}

// New creates a new Clipboard instance.
func New(output io.Writer, opts ...Option) *Clipboard {
	if output == nil {
		output = os.Stdout
	}
	c := &Clipboard{
		isSSH:  isSSHSession(),
		output: output,
		system: osClipboard{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// isSSHSession detects if we're running in an SSH session.
func isSSHSession() bool {
	for _, v := range []string{"SSH_TTY", "SSH_CLIENT", "SSH_CONNECTION"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// SetContent stores formatted content and copies its text to the system
// clipboard. Paragraph breaks become newlines.
func (c *Clipboard) SetContent(runs props.Runs) error {
	c.rich = runs.Clone()
	return c.Copy(plainText(runs))
}

// Rich returns the formatted content of the last copy while the system
// clipboard still holds its text. Anything copied by another program since
// then hides it.
func (c *Clipboard) Rich() (props.Runs, bool) {
	if c.rich == nil {
		return nil, false
	}
	if text, err := c.system.ReadAll(); err == nil && text != "" && newlines(text) != newlines(c.internal) {
		return nil, false
	}
	return c.rich.Clone(), true
}

// Text returns the plain clipboard text.
func (c *Clipboard) Text() (string, error) {
	return c.Paste()
}

// Copy copies the given text to the clipboard.
// In SSH sessions, it uses OSC52 escape sequences.
// Locally, it tries the system clipboard first, then falls back to OSC52.
func (c *Clipboard) Copy(text string) error {
	// Always store internally as a last resort
	c.internal = text

	if c.isSSH {
		return c.copyOSC52(text)
	}
	if err := c.system.WriteAll(text); err != nil {
		return c.copyOSC52(text)
	}
	return nil
}

// copyOSC52 copies text using OSC52 escape sequence.
func (c *Clipboard) copyOSC52(text string) error {
	seq := osc52.New(text)
	_, err := io.WriteString(c.output, seq.String())
	return err
}

// Paste returns text from the clipboard.
// OSC52 queries are not widely supported, so over SSH this is the internal
// buffer unless a system clipboard happens to be reachable.
func (c *Clipboard) Paste() (string, error) {
	text, err := c.system.ReadAll()
	if err == nil && text != "" {
		return text, nil
	}
	return c.internal, nil
}

// HasContent returns true if there's content available to paste.
func (c *Clipboard) HasContent() bool {
	text, err := c.system.ReadAll()
	if err == nil && text != "" {
		return true
	}
	return c.internal != ""
}

// Clear clears the internal clipboard.
func (c *Clipboard) Clear() {
	c.internal = ""
	c.rich = nil
}

// IsSSH returns true if we're in an SSH session.
func (c *Clipboard) IsSSH() bool {
	return c.isSSH
}

func plainText(runs props.Runs) string {
	return strings.ReplaceAll(runs.Text(), string(props.ParagraphBreak), "\n")
}

// newlines folds the line endings a platform clipboard may rewrite.
func newlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

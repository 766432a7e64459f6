package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusBar represents the bottom status bar
type StatusBar struct {
	filename    string
	modified    bool
	para        int
	offset      int
	totalParas  int
	encoding    string
	style       string
	message     string // Temporary message to display
	messageType string // "info" or "error"
	width       int
	styles      Styles
}

// NewStatusBar creates a new status bar
func NewStatusBar(styles Styles) *StatusBar {
	return &StatusBar{
		para:       1,
		offset:     1,
		totalParas: 1,
		encoding:   "UTF-8",
		styles:     styles,
	}
}

// SetFilename sets the current filename
func (s *StatusBar) SetFilename(filename string) {
	s.filename = filename
}

// SetModified sets whether the document has unsaved edits
func (s *StatusBar) SetModified(modified bool) {
	s.modified = modified
}

// SetPosition sets the caret position (0-indexed, shown 1-indexed)
func (s *StatusBar) SetPosition(para, offset int) {
	s.para = para + 1
	s.offset = offset + 1
}

// SetTotalParagraphs sets the number of paragraphs
func (s *StatusBar) SetTotalParagraphs(total int) {
	s.totalParas = total
}

// SetEncoding sets the encoding the file was imported from
func (s *StatusBar) SetEncoding(encoding string) {
	s.encoding = encoding
}

// SetStyle sets the style name shown for the selection
func (s *StatusBar) SetStyle(name string) {
	s.style = name
}

// SetMessage sets a temporary message to display
func (s *StatusBar) SetMessage(message, msgType string) {
	s.message = message
	s.messageType = msgType
}

// ClearMessage clears the temporary message
func (s *StatusBar) ClearMessage() {
	s.message = ""
	s.messageType = ""
}

// Message returns the temporary message
func (s *StatusBar) Message() string {
	return s.message
}

// SetWidth sets the width of the status bar
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// SetStyles updates the styles for runtime theme changes
func (s *StatusBar) SetStyles(styles Styles) {
	s.styles = styles
}

// View renders the status bar
func (s *StatusBar) View() string {
	bar := s.styles.StatusBar

	var left strings.Builder
	if s.modified {
		left.WriteString(s.styles.StatusModified.Render("*"))
	}
	name := "[Untitled]"
	if s.filename != "" {
		name = filepath.Base(s.filename)
	}
	left.WriteString(bar.Render(name))
	if s.style != "" {
		left.WriteString(bar.Render(" "))
		left.WriteString(s.styles.StatusStyle.Render("[" + s.style + "]"))
	}

	right := bar.Render(fmt.Sprintf("¶ %d/%d, Ch %d | %s", s.para, s.totalParas, s.offset, s.encoding))

	available := s.width - lipgloss.Width(left.String()) - lipgloss.Width(right)
	if available < 0 {
		available = 0
	}

	center := strings.Repeat(" ", available)
	if s.message != "" && lipgloss.Width(s.message)+4 <= available {
		msgStyle := bar
		if s.messageType == "error" {
			msgStyle = s.styles.Warning
		}
		leftPad := (available - lipgloss.Width(s.message)) / 2
		rightPad := available - lipgloss.Width(s.message) - leftPad
		center = bar.Render(strings.Repeat(" ", leftPad)) +
			msgStyle.Render(s.message) +
			bar.Render(strings.Repeat(" ", rightPad))
	} else {
		center = bar.Render(center)
	}

	return left.String() + center + right
}

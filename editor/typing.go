package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode"

	"github.com/cornish/inkwell/props"
)

// Typed control characters.
const (
	charBackspace rune = '\b'
	charDelete    rune = 0x7f
	charBreak     rune = props.ParagraphBreak
)

// InputQueue is the host's queue of pending key events.
type InputQueue interface {
	// Peek returns the next event without removing it.
	Peek() (KeyEvent, bool)
	// Pop removes the next event.
	Pop()
}

// HandleTypedCharacter types ch together with any character input already
// waiting in the input queue, as one burst.
func (e *Editor) HandleTypedCharacter(ch rune, mods Mod) error {
	if mods&(ModCtrl|ModAlt) != 0 {
		return nil
	}
	ch = normalizeChar(ch)
	if !typeable(ch) {
		return nil
	}
	if e.focus != nil {
		e.focus.Acquire(e)
	}

	e.state = StateBuffering
	e.buf = append(e.buf[:0], ch)
	if ch != charBackspace && ch != charDelete && ch != charBreak {
		e.drain()
	}
	return e.commitTyping(string(e.buf), "Typing")
}

// drain appends queued character input to the burst.
func (e *Editor) drain() {
	if e.queue == nil {
		return
	}
	for {
		ev, ok := e.queue.Peek()
		if !ok {
			return
		}
		ch, ok := ev.Char()
		if !ok {
			return
		}
		ch = normalizeChar(ch)
		switch {
		case ch == charBackspace:
			e.queue.Pop()
			if len(e.buf) > 0 {
				e.buf = e.buf[:len(e.buf)-1]
			}
			return
		case ch == charDelete || ch == charBreak:
			return
		case !typeable(ch):
			return
		}
		e.queue.Pop()
		e.buf = append(e.buf, ch)
	}
}

// Discard drops any pending burst.
func (e *Editor) Discard() {
	e.buf = e.buf[:0]
	if e.state == StateBuffering {
		e.state = StateIdle
	}
}

// Delete deletes the selection, or the character after the insertion point.
func (e *Editor) Delete() error {
	e.Discard()
	return e.commitTyping(string(charDelete), "Delete")
}

// commitTyping applies a burst. A range spanning paragraphs is deleted first
// and the rest of the burst typed as a second step, merged into one undo unit
// when this is the outermost transaction.
func (e *Editor) commitTyping(input, label string) error {
	e.state = StateCommitting
	defer func() {
		e.state = StateIdle
		e.buf = e.buf[:0]
	}()

	sel, ok := e.current()
	if !ok {
		return nil
	}
	if input == "" && !sel.IsRange() {
		return nil
	}

	outer := e.txDepth == 0
	split := false
	e.begin(label)
	err := func() error {
		complex, err := sel.DeleteRangeIfComplex()
		if err != nil {
			return err
		}
		if !complex {
			return sel.Typing(input)
		}
		rest := []rune(input)
		if len(rest) > 0 && (rest[0] == charBackspace || rest[0] == charDelete) {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			return nil
		}
		if outer {
			e.tx.Break(label)
			split = true
		}
		sel, ok := e.current()
		if !ok {
			return fmt.Errorf("no selection after delete: %w", props.ErrOutOfRange)
		}
		return sel.Typing(string(rest))
	}()
	e.end()

	if split && err == nil && !e.tx.MergeLast(2) {
		e.logger.Warn("typing left as two undo units",
			slog.String("label", label))
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, props.ErrOutOfRange) {
		e.logger.Warn("typing out of range, rebuilding view",
			slog.String("label", label),
			slog.String("error", err.Error()))
		e.host.Warn("The edit could not be completed; the view has been refreshed.")
		e.host.Reconstruct()
		e.hasLast = false
		return nil
	}
	return err
}

func normalizeChar(ch rune) rune {
	if ch == '\n' {
		return charBreak
	}
	return ch
}

// typeable reports whether ch can be part of a typing burst.
func typeable(ch rune) bool {
	switch ch {
	case charBackspace, charDelete, charBreak, '\t':
		return true
	}
	return unicode.IsPrint(ch) || unicode.IsMark(ch)
}

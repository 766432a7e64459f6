package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cornish/inkwell/props"
	"github.com/cornish/inkwell/selection"
)

// PastePolicy decides what happens to the writing systems of pasted
// formatted text.
type PastePolicy int

const (
	PreserveWs  PastePolicy = iota // Keep the source writing systems
	UseDestWs                      // Retarget everything to one writing system
	CancelPaste                    // Do not paste
)

// ParsePastePolicy converts a config value ("preserve", "dest", "cancel").
func ParsePastePolicy(s string) (PastePolicy, error) {
	switch s {
	case "preserve", "":
		return PreserveWs, nil
	case "dest":
		return UseDestWs, nil
	case "cancel":
		return CancelPaste, nil
	}
	return PreserveWs, fmt.Errorf("unknown paste policy %q", s)
}

// String returns the config name of the policy.
func (p PastePolicy) String() string {
	switch p {
	case UseDestWs:
		return "dest"
	case CancelPaste:
		return "cancel"
	default:
		return "preserve"
	}
}

// PolicyChooser picks the policy for one paste. It gets the content and the
// writing system at the destination and returns the policy plus the writing
// system UseDestWs should retarget to.
type PolicyChooser interface {
	Choose(content props.Runs, destWS int) (PastePolicy, int)
}

// PolicyFunc adapts a function to PolicyChooser.
type PolicyFunc func(content props.Runs, destWS int) (PastePolicy, int)

// Choose calls f.
func (f PolicyFunc) Choose(content props.Runs, destWS int) (PastePolicy, int) {
	return f(content, destWS)
}

// StaticPolicy always returns p. The destination writing system is used for
// UseDestWs, or fallbackWS when the destination has none.
func StaticPolicy(p PastePolicy, fallbackWS int) PolicyChooser {
	return PolicyFunc(func(_ props.Runs, destWS int) (PastePolicy, int) {
		if destWS == 0 {
			destWS = fallbackWS
		}
		return p, destWS
	})
}

// PasteHook may rewrite content before it is pasted.
type PasteHook interface {
	Rewrite(runs props.Runs) (props.Runs, error)
}

// PasteState is the state of the last paste.
type PasteState int

const (
	PasteIdle PasteState = iota
	PasteBegin
	PasteResolved
	PasteApplied
	PasteAborted
)

// String returns the state name.
func (s PasteState) String() string {
	switch s {
	case PasteBegin:
		return "begin"
	case PasteResolved:
		return "resolved"
	case PasteApplied:
		return "applied"
	case PasteAborted:
		return "aborted"
	default:
		return "idle"
	}
}

// ContinuableError is an edit failure that left the document usable.
type ContinuableError struct {
	Op  string
	Err error
}

func (e *ContinuableError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ContinuableError) Unwrap() error {
	return e.Err
}

// Copy puts the selected range on the clipboard. It reports false when there
// is nothing to copy.
func (e *Editor) Copy() bool {
	if e.clip == nil {
		return false
	}
	sel, ok := e.current()
	if !ok || !sel.IsRange() || len(sel.Runs()) == 0 {
		return false
	}
	content, err := sel.Content()
	if err != nil {
		e.logger.Warn("copy failed", slog.String("error", err.Error()))
		return false
	}
	if err := e.clip.SetContent(content); err != nil {
		e.logger.Warn("clipboard write failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

// Cut copies the selection and deletes it as one undo unit.
func (e *Editor) Cut() (bool, error) {
	e.Discard()
	if !e.Copy() {
		return false, nil
	}
	e.begin("Cut")
	err := e.commitTyping(string(charDelete), "Cut")
	e.end()
	return err == nil, err
}

// Paste inserts clipboard content. Formatted content copied from this
// process is preferred; plain clipboard text is wrapped in the formatting at
// the destination.
func (e *Editor) Paste() (bool, error) {
	e.Discard()
	e.pasteState = PasteBegin
	if e.clip == nil {
		e.pasteState = PasteAborted
		return false, nil
	}
	sel, ok := e.current()
	if !ok {
		e.pasteState = PasteAborted
		return false, nil
	}
	dest := destProps(sel)

	var content props.Runs
	if rich, ok := e.clip.Rich(); ok && len(rich) > 0 {
		if sel.CanFormat() {
			policy, ws := e.chooser.Choose(rich, dest.WS())
			switch policy {
			case CancelPaste:
				e.pasteState = PasteAborted
				return false, nil
			case UseDestWs:
				content = retarget(rich, ws)
			default:
				content = rich.Clone()
			}
		} else {
			content = wrap(rich.Text(), plainProps(dest))
		}
	} else {
		text, err := e.clip.Text()
		if err != nil {
			e.logger.Warn("clipboard read failed", slog.String("error", err.Error()))
		}
		if text == "" {
			e.pasteState = PasteAborted
			return false, nil
		}
		if !sel.CanFormat() {
			dest = plainProps(dest)
		}
		content = wrap(normalizeNewlines(text), dest)
	}
	e.pasteState = PasteResolved
	return e.PasteCore(content)
}

// PasteCore replaces the selection with content. A replace the document
// refuses beeps and reports false; other failures come back as
// *ContinuableError.
func (e *Editor) PasteCore(content props.Runs) (bool, error) {
	sel, ok := e.current()
	if !ok {
		e.pasteState = PasteAborted
		return false, nil
	}
	if e.hook != nil {
		rewritten, err := e.hook.Rewrite(content.Clone())
		if err != nil {
			e.pasteState = PasteAborted
			return false, &ContinuableError{Op: "paste hook", Err: err}
		}
		content = rewritten
	}

	e.begin("Paste")
	err := sel.Replace(content)
	e.end()

	switch {
	case err == nil:
		e.pasteState = PasteApplied
		return true, nil
	case errors.Is(err, selection.ErrOperationFailed):
		e.pasteState = PasteAborted
		e.host.Beep()
		return false, nil
	default:
		e.pasteState = PasteAborted
		e.logger.Warn("paste failed", slog.String("error", err.Error()))
		return false, &ContinuableError{Op: "paste", Err: err}
	}
}

// destProps returns the formatting at the start of the selection.
func destProps(sel Selection) *props.Set {
	if runs := sel.Runs(); len(runs) > 0 && runs[0].Props != nil {
		return runs[0].Props.Clone()
	}
	return props.NewSet()
}

// plainProps keeps only the writing system.
func plainProps(s *props.Set) *props.Set {
	out := props.NewSet()
	if ws := s.WS(); ws != 0 {
		out.SetWS(ws)
	}
	return out
}

func retarget(runs props.Runs, ws int) props.Runs {
	out := runs.Clone()
	for i := range out {
		out[i].Props.SetWS(ws)
	}
	return out.Normalize()
}

func wrap(text string, p *props.Set) props.Runs {
	return props.Runs{{Text: text, Props: p}}
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", string(props.ParagraphBreak))
}

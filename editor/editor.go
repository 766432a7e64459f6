// Package editor turns user commands into document edits: buffered typing,
// cut, copy, delete, paste and style application. It talks to the document
// only through the capabilities it declares here.
package editor

import (
	"log/slog"

	"github.com/cornish/inkwell/props"
	"github.com/cornish/inkwell/selection"
	"github.com/cornish/inkwell/style"
)

// Selection is a live selection that can be edited.
type Selection interface {
	selection.Handle
	style.Selection
	// Content returns the selected formatted text.
	Content() (props.Runs, error)
	// Replace replaces the selection with formatted text.
	Replace(runs props.Runs) error
	// Typing applies typed input (see document.Selection.Typing).
	Typing(input string) error
	// DeleteRangeIfComplex deletes a range the typing path cannot handle and
	// reports whether it did.
	DeleteRangeIfComplex() (bool, error)
	// CanFormat reports whether formatted content may be inserted.
	CanFormat() bool
}

// Engine is the document as the editor sees it.
type Engine interface {
	selection.Engine
	style.Document
	// Current returns the installed selection, or nil.
	Current() selection.Handle
}

// Transactions groups edits into undo units. Begin and End nest.
type Transactions interface {
	Begin(label string)
	Break(label string)
	End()
	Cancel()
	MergeLast(n int) bool
}

// Undoer is implemented by transaction managers that can undo.
type Undoer interface {
	Undo() error
	Redo() error
}

// Host is the window that owns the editor.
type Host interface {
	// Warn shows a message to the user.
	Warn(msg string)
	Beep()
	// Reconstruct rebuilds the view and the selection after an edit went
	// wrong.
	Reconstruct()
}

// Clipboard holds copied content.
type Clipboard interface {
	SetContent(runs props.Runs) error
	// Rich returns formatted content copied from this process, if the
	// clipboard still holds it.
	Rich() (props.Runs, bool)
	// Text returns the plain clipboard text.
	Text() (string, error)
}

// State is the typing state.
type State int

const (
	StateIdle State = iota
	StateBuffering
	StateCommitting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateBuffering:
		return "buffering"
	case StateCommitting:
		return "committing"
	default:
		return "idle"
	}
}

// Editor executes edit commands against one document.
type Editor struct {
	engine   Engine
	tx       Transactions
	host     Host
	resolver *style.Resolver
	restorer *selection.Restorer

	clip    Clipboard
	queue   InputQueue
	focus   *Focus
	chooser PolicyChooser
	hook    PasteHook
	logger  *slog.Logger

	state      State
	pasteState PasteState
	buf        []rune
	txDepth    int

	last    selection.Snapshot
	hasLast bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the editor logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = l
	}
}

// WithClipboard sets the clipboard used by cut, copy and paste.
func WithClipboard(c Clipboard) Option {
	return func(e *Editor) {
		e.clip = c
	}
}

// WithInputQueue sets the queue typed input is drained from.
func WithInputQueue(q InputQueue) Option {
	return func(e *Editor) {
		e.queue = q
	}
}

// WithFocus shares a focus tracker between editors.
func WithFocus(f *Focus) Option {
	return func(e *Editor) {
		e.focus = f
	}
}

// WithPolicyChooser sets how pasted writing systems are handled.
func WithPolicyChooser(c PolicyChooser) Option {
	return func(e *Editor) {
		e.chooser = c
	}
}

// WithPasteHook sets a hook that may rewrite pasted content.
func WithPasteHook(h PasteHook) Option {
	return func(e *Editor) {
		e.hook = h
	}
}

// New creates an editor.
func New(engine Engine, tx Transactions, host Host, resolver *style.Resolver, opts ...Option) *Editor {
	e := &Editor{
		engine:   engine,
		tx:       tx,
		host:     host,
		resolver: resolver,
		chooser:  StaticPolicy(PreserveWs, 0),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.restorer = selection.NewRestorer(engine, selection.WithLogger(e.logger))
	return e
}

// State returns the typing state.
func (e *Editor) State() State {
	return e.state
}

// PasteState returns the state of the last paste.
func (e *Editor) PasteState() PasteState {
	return e.pasteState
}

func (e *Editor) begin(label string) {
	e.txDepth++
	e.tx.Begin(label)
}

func (e *Editor) end() {
	e.txDepth--
	e.tx.End()
}

// current returns the live selection, restoring the last known one when the
// engine has none.
func (e *Editor) current() (Selection, bool) {
	h := e.engine.Current()
	if h == nil || !h.Valid() {
		if !e.hasLast {
			return nil, false
		}
		res, ok := e.restorer.Restore(e.last, true)
		if !ok {
			e.hasLast = false
			return nil, false
		}
		e.logger.Debug("selection restored", slog.String("tier", res.Tier.String()))
		h = res.Handle
	}
	sel, ok := h.(Selection)
	if !ok {
		return nil, false
	}
	if snap, ok := selection.Capture(sel); ok {
		e.last, e.hasLast = snap, true
	}
	return sel, true
}

// Selection returns a snapshot of the current selection.
func (e *Editor) Selection() (selection.Snapshot, bool) {
	sel, ok := e.current()
	if !ok {
		return selection.Snapshot{}, false
	}
	return selection.Capture(sel)
}

// InvalidateSelection forgets the last known selection and any pending
// input.
func (e *Editor) InvalidateSelection() {
	e.hasLast = false
	e.last = selection.Snapshot{}
	e.Discard()
}

// StyleClassification reports which style the selection represents.
func (e *Editor) StyleClassification() style.Classification {
	sel, ok := e.current()
	if !ok {
		return style.Classification{Kind: style.ClassAmbiguous}
	}
	return e.resolver.Classify(e.engine, sel)
}

// ApplyStyle applies a named style of either kind.
func (e *Editor) ApplyStyle(name string) error {
	return e.withSelection("Apply Style", func(sel Selection) error {
		return e.resolver.Apply(e.engine, sel, name)
	})
}

// ApplyParagraphStyle applies a paragraph style. An empty name means the
// default paragraph style.
func (e *Editor) ApplyParagraphStyle(name string) error {
	return e.withSelection("Apply Style", func(sel Selection) error {
		return e.resolver.ApplyParagraphStyle(e.engine, sel, name)
	})
}

// RemoveCharFormatting clears explicit character formatting.
func (e *Editor) RemoveCharFormatting(removeAll bool) error {
	return e.withSelection("Remove Formatting", func(sel Selection) error {
		return e.resolver.RemoveCharFormatting(sel, removeAll)
	})
}

// SetWritingSystem sets the writing system of the selection.
func (e *Editor) SetWritingSystem(ws int) error {
	return e.withSelection("Writing System", func(sel Selection) error {
		return e.resolver.SetWritingSystem(sel, ws)
	})
}

func (e *Editor) withSelection(label string, fn func(Selection) error) error {
	e.Discard()
	sel, ok := e.current()
	if !ok {
		return nil
	}
	e.begin(label)
	defer e.end()
	return fn(sel)
}

// Undo reverts the last undo unit when the transaction manager supports it.
func (e *Editor) Undo() error {
	u, ok := e.tx.(Undoer)
	if !ok {
		return nil
	}
	e.Discard()
	e.hasLast = false
	return u.Undo()
}

// Redo reapplies the last undone unit.
func (e *Editor) Redo() error {
	u, ok := e.tx.(Undoer)
	if !ok {
		return nil
	}
	e.Discard()
	e.hasLast = false
	return u.Redo()
}

package document

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cornish/inkwell/selection"
)

// Common errors for history operations.
var (
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
	ErrTransactionOpen = errors.New("transaction in progress")
)

// Unit is one undoable step: the document state before and after it.
type Unit struct {
	ID        uuid.UUID
	Label     string
	Timestamp time.Time

	before, after       []*Text
	selBefore, selAfter selection.Snapshot
	dirty               bool
}

// History manages transactions and undo/redo for a document.
// Begin and End nest; only the outermost End records a unit.
type History struct {
	doc       *Document
	undoStack []*Unit
	redoStack []*Unit
	maxSize   int

	depth  int
	open   *Unit
	broken int // units split off the open transaction by Break
}

func newHistory(doc *Document, maxSize int) *History {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &History{doc: doc, maxSize: maxSize}
}

// Open reports whether a transaction is in progress.
func (h *History) Open() bool {
	return h.depth > 0
}

// Begin starts a transaction, or nests inside the current one.
func (h *History) Begin(label string) {
	h.depth++
	if h.depth == 1 {
		h.open = &Unit{Label: label}
		h.broken = 0
	}
}

// Break closes the steps recorded so far as their own unit and continues the
// transaction under a new label. Units split off this way are not trimmed
// from the undo stack before the transaction ends, so MergeLast can still
// join them.
func (h *History) Break(label string) {
	if h.depth == 0 {
		return
	}
	if h.commit() {
		h.broken++
	}
	h.open = &Unit{Label: label}
}

// End closes one nesting level. The outermost End records the unit.
func (h *History) End() {
	if h.depth == 0 {
		return
	}
	h.depth--
	if h.depth == 0 {
		h.commit()
		h.open = nil
		h.broken = 0
	}
}

// Cancel abandons the transaction and rolls the document back to where it
// started.
func (h *History) Cancel() {
	if h.depth == 0 {
		return
	}
	u := h.open
	h.depth = 0
	h.open = nil
	h.broken = 0
	if u != nil && u.dirty {
		h.doc.replaceRoots(u.before, u.selBefore)
	}
}

// discard drops an outermost transaction that recorded nothing.
func (h *History) discard() {
	if h.depth == 1 && (h.open == nil || !h.open.dirty) {
		h.depth = 0
		h.open = nil
		h.broken = 0
		return
	}
	h.End()
}

// record notes that the document is about to change from state roots.
func (h *History) record(roots []*Text, sel selection.Snapshot) {
	if h.open == nil || h.open.dirty {
		return
	}
	h.open.before = roots
	h.open.selBefore = sel
	h.open.dirty = true
}

// commit pushes the open unit if anything changed and reports whether it did.
// This clears the redo stack since we're making a new change.
func (h *History) commit() bool {
	u := h.open
	if u == nil || !u.dirty {
		return false
	}
	u.ID = uuid.New()
	u.Timestamp = time.Now()
	u.after = cloneRoots(h.doc.roots)
	u.selAfter, _ = h.doc.captureCurrent()
	h.push(u)
	h.open = &Unit{Label: u.Label}
	return true
}

func (h *History) push(u *Unit) {
	h.undoStack = append(h.undoStack, u)
	h.trim(h.maxSize + h.broken)
	h.redoStack = h.redoStack[:0]
	h.doc.logger.Debug("undo unit recorded",
		slog.String("id", u.ID.String()),
		slog.String("label", u.Label))
}

func (h *History) trim(limit int) {
	if len(h.undoStack) > limit {
		h.undoStack = h.undoStack[len(h.undoStack)-limit:]
	}
}

// MergeLast folds the last n units into one, keeping the label of the
// earliest. It reports false when fewer than n units exist.
func (h *History) MergeLast(n int) bool {
	if n < 2 {
		return n == 1 && len(h.undoStack) >= 1
	}
	if len(h.undoStack) < n {
		return false
	}
	start := len(h.undoStack) - n
	first, last := h.undoStack[start], h.undoStack[len(h.undoStack)-1]
	merged := &Unit{
		ID:        first.ID,
		Label:     first.Label,
		Timestamp: last.Timestamp,
		before:    first.before,
		selBefore: first.selBefore,
		after:     last.after,
		selAfter:  last.selAfter,
		dirty:     true,
	}
	h.undoStack = append(h.undoStack[:start], merged)
	h.trim(h.maxSize)
	return true
}

// Undo reverts the last unit.
func (h *History) Undo() error {
	if h.depth > 0 {
		return ErrTransactionOpen
	}
	if len(h.undoStack) == 0 {
		return ErrNothingToUndo
	}
	u := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, u)
	h.doc.replaceRoots(u.before, u.selBefore)
	return nil
}

// Redo reapplies the last undone unit.
func (h *History) Redo() error {
	if h.depth > 0 {
		return ErrTransactionOpen
	}
	if len(h.redoStack) == 0 {
		return ErrNothingToRedo
	}
	u := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, u)
	h.doc.replaceRoots(u.after, u.selAfter)
	return nil
}

// CanUndo returns true if there are units to undo.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if there are units to redo.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// Units returns the undo stack, oldest first.
func (h *History) Units() []*Unit {
	return append([]*Unit(nil), h.undoStack...)
}

// Clear clears both stacks.
func (h *History) Clear() {
	h.undoStack = h.undoStack[:0]
	h.redoStack = h.redoStack[:0]
}

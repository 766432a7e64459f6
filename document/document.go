// Package document is an in-memory rich-text engine. It stores roots of
// paragraphs, hands out live selections that are invalidated by every
// mutation, and records undo history.
package document

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cornish/inkwell/props"
	"github.com/cornish/inkwell/selection"
)

var (
	// ErrNoParagraph is returned when a level chain does not lead to a paragraph.
	ErrNoParagraph = errors.New("no such paragraph")

	// ErrReadOnly is returned by edits against a read-only document.
	ErrReadOnly = errors.New("document is read-only")

	// ErrStale is returned by edits through an invalidated selection.
	ErrStale = errors.New("selection is stale")
)

// Event is a notification sent to subscribers.
type Event int

const (
	EventSelectionChanged Event = iota + 1
	EventLayoutInvalidated
)

// Document holds the text roots and the current selection.
type Document struct {
	roots    []*Text
	gen      int
	current  *Selection
	readOnly bool

	history  *History
	restorer *selection.Restorer
	subs     map[int]func(Event)
	nextSub  int
	logger   *slog.Logger
	maxUndo  int
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the document logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		d.logger = l
	}
}

// WithMaxUndo caps the number of undo units kept.
func WithMaxUndo(n int) Option {
	return func(d *Document) {
		d.maxUndo = n
	}
}

// New creates a document over the given roots. A document always has at
// least one root, and the selection starts at the beginning of the first.
func New(roots []*Text, opts ...Option) *Document {
	if len(roots) == 0 {
		roots = []*Text{NewText()}
	}
	d := &Document{
		roots:   roots,
		subs:    make(map[int]func(Event)),
		logger:  slog.Default(),
		maxUndo: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.history = newHistory(d, d.maxUndo)
	d.restorer = selection.NewRestorer(d, selection.WithLogger(d.logger))
	d.installAt(0, nil, placement{})
	return d
}

// History returns the transaction manager.
func (d *Document) History() *History {
	return d.history
}

// SetReadOnly makes every later edit fail.
func (d *Document) SetReadOnly(ro bool) {
	d.readOnly = ro
}

// RootCount returns the number of roots.
func (d *Document) RootCount() int {
	return len(d.roots)
}

// Root returns a root text. Callers must not modify it.
func (d *Document) Root(i int) *Text {
	if i < 0 || i >= len(d.roots) {
		return nil
	}
	return d.roots[i]
}

// Subscribe registers fn for events and returns a function that removes it.
func (d *Document) Subscribe(fn func(Event)) func() {
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	return func() {
		delete(d.subs, id)
	}
}

func (d *Document) emit(events ...Event) {
	for _, ev := range events {
		for _, fn := range d.subs {
			fn(ev)
		}
	}
}

// lookup walks a level chain to the text owning the addressed paragraph and
// the paragraph's index in it.
func (d *Document) lookup(root int, levels []selection.Level) (*Text, int, error) {
	if root < 0 || root >= len(d.roots) {
		return nil, 0, fmt.Errorf("root %d: %w", root, ErrNoParagraph)
	}
	if len(levels)%2 == 0 {
		return nil, 0, fmt.Errorf("chain of %d levels: %w", len(levels), ErrNoParagraph)
	}
	t := d.roots[root]
	var p *Paragraph
	for i, lev := range levels {
		if lev.PrevOccurrences != 0 {
			return nil, 0, fmt.Errorf("level %d occurrence %d: %w", i, lev.PrevOccurrences, ErrNoParagraph)
		}
		if i%2 == 0 {
			if lev.Tag != selection.TagParagraphs || lev.Index < 0 || lev.Index >= len(t.Paras) {
				return nil, 0, fmt.Errorf("level %d paragraph %d: %w", i, lev.Index, ErrNoParagraph)
			}
			if i == len(levels)-1 {
				return t, lev.Index, nil
			}
			p = t.Paras[lev.Index]
			continue
		}
		if lev.Tag != selection.TagNotes || lev.Index < 0 || lev.Index >= len(p.Notes) {
			return nil, 0, fmt.Errorf("level %d note %d: %w", i, lev.Index, ErrNoParagraph)
		}
		t = p.Notes[lev.Index]
	}
	return nil, 0, ErrNoParagraph
}

func (d *Document) paragraph(ref selection.ParaRef) (*Text, *Paragraph, error) {
	t, idx, err := d.lookup(ref.Root, ref.Levels)
	if err != nil {
		return nil, nil, err
	}
	return t, t.Paras[idx], nil
}

// Paragraph returns copies of a paragraph's runs and properties.
func (d *Document) Paragraph(ref selection.ParaRef) (props.Runs, *props.Set, error) {
	_, p, err := d.paragraph(ref)
	if err != nil {
		return nil, nil, err
	}
	return p.Runs.Clone(), p.Props.Clone(), nil
}

// ReplaceParagraph replaces the runs of a paragraph, keeping its length.
func (d *Document) ReplaceParagraph(ref selection.ParaRef, runs props.Runs) error {
	return d.mutate("Format", nil, func() (*placement, error) {
		_, p, err := d.paragraph(ref)
		if err != nil {
			return nil, err
		}
		if runs.Len() != p.Len() {
			return nil, fmt.Errorf("replacement of %d runes for %d: %w", runs.Len(), p.Len(), props.ErrOutOfRange)
		}
		p.Runs = join(insertionProps(p.Runs, 0, false), runs.Clone())
		return nil, nil
	})
}

// SetParagraphStyle sets the style name of a paragraph.
func (d *Document) SetParagraphStyle(ref selection.ParaRef, name string) error {
	return d.mutate("Paragraph Style", nil, func() (*placement, error) {
		_, p, err := d.paragraph(ref)
		if err != nil {
			return nil, err
		}
		if p.Props == nil {
			p.Props = props.NewSet()
		}
		if name == "" {
			p.Props.ClearStr(props.NamedStyle)
		} else {
			p.Props.SetStr(props.NamedStyle, name)
		}
		return nil, nil
	})
}

// Current returns the installed selection, or nil when there is none.
func (d *Document) Current() selection.Handle {
	if d.current == nil || !d.current.Valid() {
		return nil
	}
	return d.current
}

// CurrentSelection is Current with the concrete type.
func (d *Document) CurrentSelection() (*Selection, bool) {
	if d.current == nil || !d.current.Valid() {
		return nil, false
	}
	return d.current, true
}

// Materialize builds a selection from stored endpoints. Both endpoints must
// lie in paragraphs of the same text.
func (d *Document) Materialize(anchor, end selection.Endpoint, endExplicit, install bool) (selection.Handle, error) {
	a, ins, err := d.normalize(anchor)
	if err != nil {
		return nil, err
	}
	e := a.Clone()
	if endExplicit {
		e, _, err = d.normalize(end)
		if err != nil {
			return nil, err
		}
		if a.Root != e.Root || !sameContainer(a.Levels, e.Levels) {
			return nil, fmt.Errorf("endpoints in different texts: %w", selection.ErrRejected)
		}
	}
	s := &Selection{doc: d, gen: d.gen, anchor: a, end: e, explicit: endExplicit, ins: ins}
	if install {
		d.current = s
		d.emit(EventSelectionChanged)
	}
	return s, nil
}

// normalize validates an endpoint. It also returns the insertion properties
// at the endpoint: the recorded ones, or those derived from the text.
func (d *Document) normalize(ep selection.Endpoint) (selection.Endpoint, *props.Set, error) {
	if ep.TextTag != selection.TagContents {
		return selection.Endpoint{}, nil, fmt.Errorf("text tag %d: %w", ep.TextTag, selection.ErrRejected)
	}
	t, idx, err := d.lookup(ep.Root, ep.Levels)
	if err != nil {
		return selection.Endpoint{}, nil, fmt.Errorf("%w: %w", selection.ErrRejected, err)
	}
	p := t.Paras[idx]
	if ep.Offset < 0 || ep.Offset > p.Len() {
		return selection.Endpoint{}, nil, fmt.Errorf("offset %d of %d: %w", ep.Offset, p.Len(), selection.ErrRejected)
	}
	if ep.Props != nil {
		return ep.Clone(), ep.Props.Clone(), nil
	}
	return ep.Clone(), insertionProps(p.Runs, ep.Offset, ep.AssocPrev), nil
}

func sameContainer(a, b []selection.Level) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// placement positions the selection after an edit, inside the text the edit
// happened in.
type placement struct {
	anchorIdx, anchorOff int
	endIdx, endOff       int
	explicit             bool
	props                *props.Set
}

func caret(idx, off int, ins *props.Set) *placement {
	return &placement{anchorIdx: idx, anchorOff: off, endIdx: idx, endOff: off, props: ins}
}

func (d *Document) endpointAt(root int, prefix []selection.Level, idx, off int) selection.Endpoint {
	levels := append(append([]selection.Level(nil), prefix...), selection.Level{Tag: selection.TagParagraphs, Index: idx})
	return selection.Endpoint{
		Root:      root,
		Levels:    levels,
		TextTag:   selection.TagContents,
		Offset:    off,
		AssocPrev: off > 0,
	}
}

func (d *Document) installAt(root int, prefix []selection.Level, pl placement) {
	anchor := d.endpointAt(root, prefix, pl.anchorIdx, pl.anchorOff)
	if pl.props != nil {
		anchor.Props = pl.props.Clone()
		anchor.WS = anchor.Props.WS()
	}
	end := d.endpointAt(root, prefix, pl.endIdx, pl.endOff)
	if _, err := d.Materialize(anchor, end, pl.explicit, true); err != nil {
		d.logger.Warn("could not place selection after edit", slog.String("error", err.Error()))
		d.current = nil
	}
}

// mutate runs one edit. On failure the roots are restored and outstanding
// handles stay valid. On success every handle is invalidated and the
// selection is placed where fn says, or restored from before the edit when fn
// returns no placement. sel is the selection the edit was made through.
func (d *Document) mutate(label string, sel *Selection, fn func() (*placement, error)) error {
	if d.readOnly {
		return fmt.Errorf("%s: %w: %w", label, ErrReadOnly, selection.ErrOperationFailed)
	}
	before, hadSel := d.captureCurrent()

	auto := !d.history.Open()
	if auto {
		d.history.Begin(label)
	}
	backup := cloneRoots(d.roots)

	pl, err := fn()
	if err != nil {
		d.roots = backup
		if auto {
			d.history.discard()
		}
		return err
	}

	d.history.record(backup, before)
	d.gen++
	switch {
	case pl != nil && sel != nil:
		d.installAt(sel.anchor.Root, sel.anchor.Levels[:len(sel.anchor.Levels)-1], *pl)
	case hadSel:
		d.restoreSelection(before)
	default:
		d.current = nil
	}
	if auto {
		d.history.End()
	}
	d.emit(EventLayoutInvalidated, EventSelectionChanged)
	return nil
}

func (d *Document) captureCurrent() (selection.Snapshot, bool) {
	if d.current == nil {
		return selection.Snapshot{}, false
	}
	return selection.Capture(d.current)
}

// restoreSelection reinstalls a selection recorded before a mutation. The
// insertion properties are derived afresh.
func (d *Document) restoreSelection(s selection.Snapshot) {
	s.Anchor.Props = nil
	s.End.Props = nil
	if _, ok := d.restorer.Restore(s, true); ok {
		return
	}
	d.current = nil
	d.installAt(0, nil, placement{})
}

// replaceRoots swaps in a recorded state. Used by undo and redo.
func (d *Document) replaceRoots(roots []*Text, sel selection.Snapshot) {
	d.roots = cloneRoots(roots)
	d.gen++
	d.restoreSelection(sel)
	d.emit(EventLayoutInvalidated, EventSelectionChanged)
}

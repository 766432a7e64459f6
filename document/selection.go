package document

import (
	"fmt"

	"github.com/cornish/inkwell/props"
	"github.com/cornish/inkwell/selection"
	"github.com/cornish/inkwell/style"
)

// Backspace and forward delete as they appear in typed input.
const (
	KeyBackspace = '\b'
	KeyDelete    = 0x7f
)

// Selection is a live selection. Any mutation of the document invalidates it.
type Selection struct {
	doc         *Document
	gen         int
	anchor, end selection.Endpoint
	explicit    bool
	ins         *props.Set // properties the next typed character gets
}

// Valid reports whether no mutation happened since the selection was made.
func (s *Selection) Valid() bool {
	return s != nil && s.doc != nil && s.gen == s.doc.gen
}

// IsRange reports whether the selection covers at least one character.
func (s *Selection) IsRange() bool {
	return s.explicit && !s.anchor.SamePosition(s.end)
}

// Endpoint describes one end of the selection.
func (s *Selection) Endpoint(w selection.Which) (selection.Endpoint, bool) {
	if !s.Valid() {
		return selection.Endpoint{}, false
	}
	if w == selection.End && s.explicit {
		return s.end.Clone(), true
	}
	return s.anchor.Clone(), true
}

// LevelCount returns the length of the level chain at one end.
func (s *Selection) LevelCount(w selection.Which) int {
	ep, ok := s.Endpoint(w)
	if !ok {
		return 0
	}
	return len(ep.Levels)
}

// TextLength returns the rune length of the paragraph at one end.
func (s *Selection) TextLength(w selection.Which) int {
	ep, ok := s.Endpoint(w)
	if !ok {
		return 0
	}
	_, p, err := s.doc.paragraph(ep.Para())
	if err != nil {
		return 0
	}
	return p.Len()
}

// span is a selection resolved against the document, ordered top to bottom.
type span struct {
	text           *Text
	root           int
	prefix         []selection.Level
	topIdx, topOff int
	botIdx, botOff int
}

func (sp span) isRange() bool {
	return sp.topIdx != sp.botIdx || sp.topOff != sp.botOff
}

func (sp span) ref(idx int) selection.ParaRef {
	levels := append(append([]selection.Level(nil), sp.prefix...), selection.Level{Tag: selection.TagParagraphs, Index: idx})
	return selection.ParaRef{Root: sp.root, Levels: levels}
}

// bounds returns the covered offsets within paragraph idx.
func (sp span) bounds(idx int) (int, int) {
	lo, hi := 0, sp.text.Paras[idx].Len()
	if idx == sp.topIdx {
		lo = sp.topOff
	}
	if idx == sp.botIdx {
		hi = sp.botOff
	}
	return lo, hi
}

func (s *Selection) resolve() (span, error) {
	if !s.Valid() {
		return span{}, fmt.Errorf("%w: %w", ErrStale, props.ErrOutOfRange)
	}
	t, ai, err := s.doc.lookup(s.anchor.Root, s.anchor.Levels)
	if err != nil {
		return span{}, err
	}
	sp := span{
		text:   t,
		root:   s.anchor.Root,
		prefix: s.anchor.Levels[:len(s.anchor.Levels)-1],
		topIdx: ai, topOff: s.anchor.Offset,
		botIdx: ai, botOff: s.anchor.Offset,
	}
	if !s.explicit {
		return sp, nil
	}
	_, ei, err := s.doc.lookup(s.end.Root, s.end.Levels)
	if err != nil {
		return span{}, err
	}
	if c, _ := selection.Compare(s.anchor, s.end); c > 0 {
		sp.topIdx, sp.topOff = ei, s.end.Offset
	} else {
		sp.botIdx, sp.botOff = ei, s.end.Offset
	}
	return sp, nil
}

// Paragraphs returns the paragraphs the selection touches.
func (s *Selection) Paragraphs() []selection.ParaRef {
	sp, err := s.resolve()
	if err != nil {
		return nil
	}
	var out []selection.ParaRef
	for i := sp.topIdx; i <= sp.botIdx; i++ {
		out = append(out, sp.ref(i))
	}
	return out
}

// Runs returns the covered runs. An insertion point yields its insertion
// properties.
func (s *Selection) Runs() []style.RunInfo {
	sp, err := s.resolve()
	if err != nil {
		return nil
	}
	if !sp.isRange() {
		p := sp.text.Paras[sp.topIdx]
		return []style.RunInfo{{Props: s.ins.Clone(), Para: sp.ref(sp.topIdx), ParaProps: p.Props.Clone()}}
	}
	var out []style.RunInfo
	for i := sp.topIdx; i <= sp.botIdx; i++ {
		p := sp.text.Paras[i]
		lo, hi := sp.bounds(i)
		runs, err := p.Runs.Slice(lo, hi)
		if err != nil {
			return nil
		}
		for _, r := range runs {
			out = append(out, style.RunInfo{Props: r.Props, Para: sp.ref(i), ParaProps: p.Props.Clone()})
		}
	}
	return out
}

// InsertionProps returns the properties the next typed character gets.
func (s *Selection) InsertionProps() *props.Set {
	return s.ins.Clone()
}

// SetRunProps rewrites the explicit properties of the covered runs, or the
// insertion properties of an insertion point.
func (s *Selection) SetRunProps(fn func(*props.Set) *props.Set) error {
	sp, err := s.resolve()
	if err != nil {
		return err
	}
	if !sp.isRange() {
		s.ins = fn(s.ins.Clone())
		s.anchor.Props = s.ins.Clone()
		s.anchor.WS = s.ins.WS()
		s.end = s.anchor.Clone()
		s.doc.emit(EventSelectionChanged)
		return nil
	}
	return s.doc.mutate("Format", s, func() (*placement, error) {
		for i := sp.topIdx; i <= sp.botIdx; i++ {
			p := sp.text.Paras[i]
			lo, hi := sp.bounds(i)
			if lo == hi {
				continue
			}
			runs, from, err := p.Runs.Split(lo)
			if err != nil {
				return nil, err
			}
			runs, to, err := runs.Split(hi)
			if err != nil {
				return nil, err
			}
			for j := from; j < to; j++ {
				runs[j].Props = fn(runs[j].Props.Clone())
			}
			p.Runs = runs.Normalize()
		}
		return s.samePlace(sp), nil
	})
}

// samePlace keeps the selection's offsets, deriving properties afresh.
func (s *Selection) samePlace(sp span) *placement {
	ai, ei := sp.topIdx, sp.botIdx
	if c, _ := selection.Compare(s.anchor, s.end); s.explicit && c > 0 {
		ai, ei = ei, ai
	}
	return &placement{
		anchorIdx: ai, anchorOff: s.anchor.Offset,
		endIdx: ei, endOff: s.end.Offset,
		explicit: s.explicit,
	}
}

// Content returns the selected formatted text. Paragraph boundaries appear as
// props.ParagraphBreak.
func (s *Selection) Content() (props.Runs, error) {
	sp, err := s.resolve()
	if err != nil {
		return nil, err
	}
	var out props.Runs
	for i := sp.topIdx; i <= sp.botIdx; i++ {
		p := sp.text.Paras[i]
		lo, hi := sp.bounds(i)
		runs, err := p.Runs.Slice(lo, hi)
		if err != nil {
			return nil, err
		}
		out = append(out, runs...)
		if i < sp.botIdx {
			out = append(out, props.Run{Text: string(props.ParagraphBreak), Props: insertionProps(p.Runs, p.Len(), true)})
		}
	}
	return out.Normalize(), nil
}

// CanFormat reports whether formatted content may be inserted here.
func (s *Selection) CanFormat() bool {
	sp, err := s.resolve()
	if err != nil {
		return false
	}
	return !sp.text.Plain
}

// Replace replaces the selection with formatted content and leaves an
// insertion point after it. Formatted content in a plain text fails with
// selection.ErrOperationFailed.
func (s *Selection) Replace(runs props.Runs) error {
	sp, err := s.resolve()
	if err != nil {
		return err
	}
	if sp.text.Plain && !plainOnly(runs) {
		return fmt.Errorf("formatted content in plain text: %w", selection.ErrOperationFailed)
	}
	return s.doc.mutate("Replace", s, func() (*placement, error) {
		if err := sp.text.deleteSpan(sp.topIdx, sp.topOff, sp.botIdx, sp.botOff); err != nil {
			return nil, err
		}
		idx, off, err := sp.text.insertRuns(sp.topIdx, sp.topOff, runs)
		if err != nil {
			return nil, err
		}
		return caret(idx, off, nil), nil
	})
}

func plainOnly(runs props.Runs) bool {
	for _, r := range runs {
		for _, p := range r.Props.IntProps() {
			if p != props.WritingSystem {
				return false
			}
		}
		if len(r.Props.StrProps()) > 0 {
			return false
		}
	}
	return true
}

// DeleteRangeIfComplex deletes a range that spans paragraphs and reports
// whether it did. Ranges within one paragraph are left to Typing.
func (s *Selection) DeleteRangeIfComplex() (bool, error) {
	sp, err := s.resolve()
	if err != nil {
		return false, err
	}
	if sp.topIdx == sp.botIdx {
		return false, nil
	}
	ins := insertionProps(sp.text.Paras[sp.topIdx].Runs, sp.topOff, true)
	err = s.doc.mutate("Delete", s, func() (*placement, error) {
		if err := sp.text.deleteSpan(sp.topIdx, sp.topOff, sp.botIdx, sp.botOff); err != nil {
			return nil, err
		}
		return caret(sp.topIdx, sp.topOff, ins), nil
	})
	return err == nil, err
}

// Typing applies typed input. KeyBackspace and KeyDelete delete a character,
// props.ParagraphBreak splits the paragraph, anything else is inserted with
// the insertion properties. Input against a range first deletes the range; a
// leading delete or backspace is consumed by that deletion. Empty input
// deletes a range and does nothing at an insertion point.
func (s *Selection) Typing(input string) error {
	sp, err := s.resolve()
	if err != nil {
		return err
	}
	if input == "" && !sp.isRange() {
		return nil
	}
	ins := s.ins.Clone()
	if sp.isRange() {
		ins = insertionProps(sp.text.Paras[sp.topIdx].Runs, sp.topOff, true)
	}
	return s.doc.mutate("Typing", s, func() (*placement, error) {
		t := sp.text
		idx, off := sp.topIdx, sp.topOff
		chars := []rune(input)
		if sp.isRange() {
			if err := t.deleteSpan(sp.topIdx, sp.topOff, sp.botIdx, sp.botOff); err != nil {
				return nil, err
			}
			if len(chars) > 0 && (chars[0] == KeyBackspace || chars[0] == KeyDelete) {
				chars = chars[1:]
			}
		}
		for _, ch := range chars {
			var err error
			idx, off, err = t.typeChar(idx, off, ch, ins)
			if err != nil {
				return nil, err
			}
		}
		return caret(idx, off, ins), nil
	})
}

// typeChar applies one typed character at (idx, off) and returns the new
// position.
func (t *Text) typeChar(idx, off int, ch rune, ins *props.Set) (int, int, error) {
	p, err := t.para(idx)
	if err != nil {
		return 0, 0, err
	}
	switch ch {
	case KeyBackspace:
		switch {
		case off > 0:
			runs, err := cut(p.Runs, off-1, off)
			if err != nil {
				return 0, 0, err
			}
			p.Runs = runs
			return idx, off - 1, nil
		case idx > 0:
			prevLen := t.Paras[idx-1].Len()
			return idx - 1, prevLen, t.joinNext(idx - 1)
		}
		return idx, off, nil
	case KeyDelete:
		switch {
		case off < p.Len():
			runs, err := cut(p.Runs, off, off+1)
			if err != nil {
				return 0, 0, err
			}
			p.Runs = runs
		case idx < len(t.Paras)-1:
			return idx, off, t.joinNext(idx)
		}
		return idx, off, nil
	case props.ParagraphBreak:
		if err := t.split(idx, off, ins); err != nil {
			return 0, 0, err
		}
		return idx + 1, 0, nil
	default:
		runs, err := insertAt(p.Runs, off, props.Runs{{Text: string(ch), Props: ins.Clone()}})
		if err != nil {
			return 0, 0, err
		}
		p.Runs = runs
		return idx, off + 1, nil
	}
}

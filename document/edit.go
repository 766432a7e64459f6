package document

import (
	"fmt"

	"github.com/cornish/inkwell/props"
)

// insertionProps returns the properties a character typed at offset would get.
func insertionProps(rs props.Runs, offset int, assocPrev bool) *props.Set {
	if len(rs) == 0 {
		return props.NewSet()
	}
	i, _, err := rs.RunAt(offset, assocPrev || offset == rs.Len())
	if err != nil {
		return props.NewSet()
	}
	return rs[i].Props.Clone()
}

// join concatenates runs, keeping an empty run with fallback properties when
// nothing is left.
func join(fallback *props.Set, parts ...props.Runs) props.Runs {
	var out props.Runs
	for _, p := range parts {
		out = append(out, p...)
	}
	out = out.Normalize()
	if len(out) == 0 {
		out = props.Runs{{Props: fallback}}
	}
	return out
}

func cut(rs props.Runs, from, to int) (props.Runs, error) {
	head, err := rs.Slice(0, from)
	if err != nil {
		return nil, err
	}
	tail, err := rs.Slice(to, rs.Len())
	if err != nil {
		return nil, err
	}
	return join(insertionProps(rs, from, true), head, tail), nil
}

func insertAt(rs props.Runs, offset int, ins props.Runs) (props.Runs, error) {
	head, err := rs.Slice(0, offset)
	if err != nil {
		return nil, err
	}
	tail, err := rs.Slice(offset, rs.Len())
	if err != nil {
		return nil, err
	}
	return join(insertionProps(rs, offset, true), head, ins, tail), nil
}

func (t *Text) para(i int) (*Paragraph, error) {
	if i < 0 || i >= len(t.Paras) {
		return nil, fmt.Errorf("paragraph %d of %d: %w", i, len(t.Paras), props.ErrOutOfRange)
	}
	return t.Paras[i], nil
}

// deleteSpan removes the characters from (i0, o0) up to (i1, o1), joining the
// paragraphs at both ends.
func (t *Text) deleteSpan(i0, o0, i1, o1 int) error {
	first, err := t.para(i0)
	if err != nil {
		return err
	}
	if i0 == i1 {
		runs, err := cut(first.Runs, o0, o1)
		if err != nil {
			return err
		}
		first.Runs = runs
		return nil
	}
	last, err := t.para(i1)
	if err != nil {
		return err
	}
	head, err := first.Runs.Slice(0, o0)
	if err != nil {
		return err
	}
	tail, err := last.Runs.Slice(o1, last.Runs.Len())
	if err != nil {
		return err
	}
	first.Runs = join(insertionProps(first.Runs, o0, true), head, tail)
	first.Notes = append(first.Notes, last.Notes...)
	t.Paras = append(t.Paras[:i0+1], t.Paras[i1+1:]...)
	return nil
}

// joinNext merges paragraph i+1 into paragraph i.
func (t *Text) joinNext(i int) error {
	cur, err := t.para(i)
	if err != nil {
		return err
	}
	next, err := t.para(i + 1)
	if err != nil {
		return err
	}
	cur.Runs = join(insertionProps(cur.Runs, cur.Len(), true), cur.Runs, next.Runs)
	cur.Notes = append(cur.Notes, next.Notes...)
	t.Paras = append(t.Paras[:i+1], t.Paras[i+2:]...)
	return nil
}

// split breaks paragraph i at offset. The new paragraph copies the paragraph
// properties and starts with ins when it would otherwise be empty.
func (t *Text) split(i, offset int, ins *props.Set) error {
	p, err := t.para(i)
	if err != nil {
		return err
	}
	head, err := p.Runs.Slice(0, offset)
	if err != nil {
		return err
	}
	tail, err := p.Runs.Slice(offset, p.Len())
	if err != nil {
		return err
	}
	p.Runs = join(ins.Clone(), head)
	next := &Paragraph{Props: p.Props.Clone(), Runs: join(ins.Clone(), tail)}
	t.Paras = append(t.Paras[:i+1], append([]*Paragraph{next}, t.Paras[i+1:]...)...)
	return nil
}

// insertRuns inserts formatted content at (i, offset), creating paragraphs
// for embedded breaks. It returns the position just after the content.
func (t *Text) insertRuns(i, offset int, runs props.Runs) (int, int, error) {
	p, err := t.para(i)
	if err != nil {
		return 0, 0, err
	}
	pieces := runs.SplitParagraphs()
	if len(pieces) == 1 {
		out, err := insertAt(p.Runs, offset, pieces[0])
		if err != nil {
			return 0, 0, err
		}
		p.Runs = out
		return i, offset + pieces[0].Len(), nil
	}

	fallback := insertionProps(p.Runs, offset, true)
	if err := t.split(i, offset, fallback); err != nil {
		return 0, 0, err
	}
	first, last := t.Paras[i], t.Paras[i+1]
	first.Runs = join(fallback, first.Runs, pieces[0])
	tail := pieces[len(pieces)-1]
	last.Runs = join(fallback, tail, last.Runs)

	var middle []*Paragraph
	for _, piece := range pieces[1 : len(pieces)-1] {
		middle = append(middle, &Paragraph{Props: p.Props.Clone(), Runs: join(fallback.Clone(), piece)})
	}
	t.Paras = append(t.Paras[:i+1], append(middle, t.Paras[i+1:]...)...)
	return i + len(pieces) - 1, tail.Len(), nil
}

package props

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ParagraphBreak separates paragraphs inside formatted content.
const ParagraphBreak = '\r'

// Run is a span of text sharing one explicit property set.
type Run struct {
	Text  string
	Props *Set
}

// Len returns the run length in runes.
func (r Run) Len() int {
	return utf8.RuneCountInString(r.Text)
}

// Runs is formatted text: an ordered sequence of runs.
type Runs []Run

// Text returns the concatenated text.
func (rs Runs) Text() string {
	var sb strings.Builder
	for _, r := range rs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Len returns the total length in runes.
func (rs Runs) Len() int {
	n := 0
	for _, r := range rs {
		n += r.Len()
	}
	return n
}

// Clone deep-copies the runs and their property sets.
func (rs Runs) Clone() Runs {
	if rs == nil {
		return nil
	}
	out := make(Runs, len(rs))
	for i, r := range rs {
		out[i] = Run{Text: r.Text, Props: r.Props.Clone()}
	}
	return out
}

// Normalize drops empty runs and merges neighbours with equal properties.
// A fully empty sequence keeps its first run so the properties survive.
func (rs Runs) Normalize() Runs {
	out := make(Runs, 0, len(rs))
	for _, r := range rs {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Props.Equal(r.Props) {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 && len(rs) > 0 {
		return Runs{{Text: "", Props: rs[0].Props}}
	}
	return out
}

// RunAt returns the index of the run holding the character at offset, and the
// offset of that run's first character. With preferPrev an offset on a run
// boundary resolves to the run before it.
func (rs Runs) RunAt(offset int, preferPrev bool) (int, int, error) {
	if offset < 0 || offset > rs.Len() {
		return 0, 0, fmt.Errorf("offset %d of %d: %w", offset, rs.Len(), ErrOutOfRange)
	}
	start := 0
	for i, r := range rs {
		end := start + r.Len()
		if offset < end || (preferPrev && offset == end && offset > start) {
			return i, start, nil
		}
		if offset == end && i == len(rs)-1 {
			return i, start, nil
		}
		start = end
	}
	return 0, 0, nil
}

// Slice returns the runs covering [from, to).
func (rs Runs) Slice(from, to int) (Runs, error) {
	total := rs.Len()
	if from < 0 || to > total || from > to {
		return nil, fmt.Errorf("slice [%d,%d) of %d: %w", from, to, total, ErrOutOfRange)
	}
	var out Runs
	start := 0
	for _, r := range rs {
		n := r.Len()
		end := start + n
		lo, hi := max(from, start), min(to, end)
		if lo < hi {
			runes := []rune(r.Text)
			out = append(out, Run{Text: string(runes[lo-start : hi-start]), Props: r.Props.Clone()})
		}
		start = end
	}
	return out, nil
}

// Split cuts the runs at offset, splitting a run if needed, and returns the
// index of the first run at or after the cut.
func (rs Runs) Split(offset int) (Runs, int, error) {
	total := rs.Len()
	if offset < 0 || offset > total {
		return rs, 0, fmt.Errorf("split at %d of %d: %w", offset, total, ErrOutOfRange)
	}
	out := make(Runs, 0, len(rs)+1)
	idx := -1
	start := 0
	for _, r := range rs {
		n := r.Len()
		end := start + n
		switch {
		case offset > start && offset < end:
			runes := []rune(r.Text)
			out = append(out, Run{Text: string(runes[:offset-start]), Props: r.Props})
			idx = len(out)
			out = append(out, Run{Text: string(runes[offset-start:]), Props: r.Props.Clone()})
		default:
			if idx < 0 && offset <= start && n > 0 {
				idx = len(out)
			}
			out = append(out, r)
		}
		start = end
	}
	if idx < 0 {
		idx = len(out)
	}
	return out, idx, nil
}

// SplitParagraphs cuts formatted content at paragraph breaks. The break
// characters are dropped. Content without breaks yields one element.
func (rs Runs) SplitParagraphs() []Runs {
	out := []Runs{nil}
	for _, r := range rs {
		parts := strings.Split(r.Text, string(ParagraphBreak))
		for i, part := range parts {
			if i > 0 {
				out = append(out, nil)
			}
			if part != "" || i > 0 {
				out[len(out)-1] = append(out[len(out)-1], Run{Text: part, Props: r.Props.Clone()})
			}
		}
	}
	return out
}

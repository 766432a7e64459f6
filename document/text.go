package document

import (
	"strings"

	"github.com/cornish/inkwell/props"
)

// Text is a sequence of paragraphs: a document root or a note.
type Text struct {
	Paras []*Paragraph
	// Plain texts accept only unformatted runs.
	Plain bool
}

// Paragraph is one paragraph of formatted text.
type Paragraph struct {
	Props *props.Set // NamedStyle holds the paragraph style
	Runs  props.Runs
	Notes []*Text
}

// NewText creates a text holding the given paragraphs. A text always has at
// least one paragraph.
func NewText(paras ...*Paragraph) *Text {
	if len(paras) == 0 {
		paras = []*Paragraph{NewParagraph("")}
	}
	return &Text{Paras: paras}
}

// NewParagraph creates a paragraph with the given style and runs.
func NewParagraph(styleName string, runs ...props.Run) *Paragraph {
	p := &Paragraph{Props: props.NewSet(), Runs: props.Runs(runs).Normalize()}
	if styleName != "" {
		p.Props.SetStr(props.NamedStyle, styleName)
	}
	return p
}

// FromLines creates a text with one unformatted paragraph per line.
func FromLines(lines []string, styleName string) *Text {
	t := &Text{}
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		t.Paras = append(t.Paras, NewParagraph(styleName, props.Run{Text: line, Props: props.NewSet()}))
	}
	if len(t.Paras) == 0 {
		t.Paras = append(t.Paras, NewParagraph(styleName))
	}
	return t
}

// Text returns the paragraph's characters.
func (p *Paragraph) Text() string {
	return p.Runs.Text()
}

// Len returns the paragraph length in runes.
func (p *Paragraph) Len() int {
	return p.Runs.Len()
}

// Style returns the paragraph style name.
func (p *Paragraph) Style() string {
	return p.Props.Style()
}

func (p *Paragraph) clone() *Paragraph {
	c := &Paragraph{Props: p.Props.Clone(), Runs: p.Runs.Clone()}
	for _, n := range p.Notes {
		c.Notes = append(c.Notes, n.clone())
	}
	return c
}

func (t *Text) clone() *Text {
	c := &Text{Plain: t.Plain, Paras: make([]*Paragraph, len(t.Paras))}
	for i, p := range t.Paras {
		c.Paras[i] = p.clone()
	}
	return c
}

func cloneRoots(roots []*Text) []*Text {
	out := make([]*Text, len(roots))
	for i, t := range roots {
		out[i] = t.clone()
	}
	return out
}

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/cornish/inkwell/props"
)

// Pos is a caret position in a top-level paragraph.
type Pos struct {
	Para   int
	Offset int
}

// Before reports whether p comes before o.
func (p Pos) Before(o Pos) bool {
	return p.Para < o.Para || (p.Para == o.Para && p.Offset < o.Offset)
}

// ParaView is what the renderer needs of one paragraph.
type ParaView struct {
	Style string
	Runs  props.Runs
}

// RenderState is everything needed to lay out and draw the text column.
type RenderState struct {
	Paras    []ParaView
	Caret    Pos
	Anchor   Pos // Equal to Caret when nothing is selected
	WordWrap bool
	TabWidth int
	ScrollX  int
}

// DeriveFunc returns the values a run derives from its styles.
type DeriveFunc func(paraStyle string, p *props.Set) props.Derived

type cell struct {
	text   string
	width  int
	offset int
	style  lipgloss.Style
}

// Row is one visual line of laid-out text.
type Row struct {
	Para  int
	cells []cell
	// caretEnd is set on the last row of a paragraph, which also holds the
	// position after the final character.
	caretEnd bool
	endOff   int
}

// TextRenderer lays out and renders the document text column.
type TextRenderer struct {
	styles Styles
	derive DeriveFunc
}

// NewTextRenderer creates a new text renderer.
func NewTextRenderer(styles Styles, derive DeriveFunc) *TextRenderer {
	return &TextRenderer{styles: styles, derive: derive}
}

// SetStyles updates the styles for runtime theme changes.
func (r *TextRenderer) SetStyles(styles Styles) {
	r.styles = styles
}

// Layout splits the paragraphs into visual rows of at most width columns.
func (r *TextRenderer) Layout(width int, state *RenderState) []Row {
	tabWidth := state.TabWidth
	if tabWidth <= 0 {
		tabWidth = 4
	}
	var rows []Row
	for pi, para := range state.Paras {
		cells := r.paraCells(para, tabWidth)
		end := para.Runs.Len()

		if !state.WordWrap || width <= 0 {
			rows = append(rows, Row{Para: pi, cells: cells, caretEnd: true, endOff: end})
			continue
		}

		var cur []cell
		used := 0
		for _, c := range cells {
			if used+c.width > width && len(cur) > 0 {
				rows = append(rows, Row{Para: pi, cells: cur})
				cur = nil
				used = 0
			}
			cur = append(cur, c)
			used += c.width
		}
		rows = append(rows, Row{Para: pi, cells: cur, caretEnd: true, endOff: end})
	}
	return rows
}

func (r *TextRenderer) paraCells(para ParaView, tabWidth int) []cell {
	var cells []cell
	off := 0
	for _, run := range para.Runs {
		st := lipgloss.NewStyle()
		if r.derive != nil {
			st = RunStyle(run.Props, r.derive(para.Style, run.Props))
		}
		for _, ch := range run.Text {
			c := cell{text: string(ch), width: runewidth.RuneWidth(ch), offset: off, style: st}
			if ch == '\t' {
				c.text = strings.Repeat(" ", tabWidth)
				c.width = tabWidth
			}
			cells = append(cells, c)
			off++
		}
	}
	return cells
}

// CaretRow returns the index of the row holding the caret.
func CaretRow(rows []Row, caret Pos) int {
	for i, row := range rows {
		if row.Para != caret.Para {
			continue
		}
		if row.caretEnd && caret.Offset >= row.endOff {
			return i
		}
		for _, c := range row.cells {
			if c.offset == caret.Offset {
				return i
			}
		}
	}
	return 0
}

// Render draws height rows starting at scrollY, each padded to width.
func (r *TextRenderer) Render(rows []Row, scrollY, width, height int, state *RenderState) []string {
	out := make([]string, height)
	from, to := state.Anchor, state.Caret
	if to.Before(from) {
		from, to = to, from
	}

	for i := range out {
		idx := scrollY + i
		if idx >= len(rows) {
			out[i] = r.renderEmptyLine(width)
			continue
		}
		out[i] = r.renderRow(rows[idx], width, state, from, to)
	}
	return out
}

func (r *TextRenderer) renderRow(row Row, width int, state *RenderState, from, to Pos) string {
	var sb strings.Builder
	col := 0
	skip := 0
	if !state.WordWrap {
		skip = state.ScrollX
	}

	selected := func(off int) bool {
		p := Pos{Para: row.Para, Offset: off}
		return !p.Before(from) && p.Before(to)
	}

	for _, c := range row.cells {
		if skip > 0 {
			skip -= c.width
			continue
		}
		if col+c.width > width {
			break
		}
		switch {
		case row.Para == state.Caret.Para && c.offset == state.Caret.Offset:
			sb.WriteString(r.styles.Cursor.Render(c.text))
		case selected(c.offset):
			sb.WriteString(r.styles.Selection.Render(c.text))
		default:
			sb.WriteString(c.style.Render(c.text))
		}
		col += c.width
	}

	if row.caretEnd && col < width {
		switch {
		case row.Para == state.Caret.Para && state.Caret.Offset >= row.endOff:
			sb.WriteString(r.styles.Cursor.Render(" "))
			col++
		case selected(row.endOff):
			// The paragraph break is part of the selection.
			sb.WriteString(r.styles.Selection.Render(" "))
			col++
		}
	}

	if col < width {
		sb.WriteString(strings.Repeat(" ", width-col))
	}
	return sb.String()
}

// renderEmptyLine renders the marker for rows past the end of the text.
func (r *TextRenderer) renderEmptyLine(width int) string {
	if width <= 0 {
		return ""
	}
	return r.styles.Filler.Render("~") + strings.Repeat(" ", width-1)
}

// Package ui is the terminal front end: a Bubble Tea model that draws the
// document and feeds key presses to the editor.
package ui

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cornish/inkwell/document"
	"github.com/cornish/inkwell/editor"
	"github.com/cornish/inkwell/selection"
	"github.com/cornish/inkwell/style"
)

// StylesheetMsg delivers a reloaded stylesheet. Err is set when the reload
// failed and the old styles stay in effect.
type StylesheetMsg struct {
	Sheet *style.Stylesheet
	Err   error
}

// DefaultStyleKeys maps Alt+key to the style it applies. An empty name
// resets the paragraph style to the default.
var DefaultStyleKeys = map[rune]string{
	'0': "",
	'1': "Heading 1",
	'2': "Quote",
	'e': "Emphasis",
	's': "Strong",
}

// Model is the Bubble Tea model for one document. It is the editor's host
// and input queue.
type Model struct {
	doc       *document.Document
	ed        *editor.Editor
	resolver  *style.Resolver
	statusbar *StatusBar
	renderer  *TextRenderer
	styles    Styles
	logger    *slog.Logger
	bell      io.Writer

	editorOpts []editor.Option
	styleKeys  map[rune]string
	wordWrap   bool

	pending []editor.KeyEvent
	caret   Pos
	anchor  Pos
	scrollY int
	width   int
	height  int

	modified bool
	beeps    int
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger for the model and its editor.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// WithStyles sets the color theme.
func WithStyles(s Styles) Option {
	return func(m *Model) {
		m.styles = s
	}
}

// WithBell sets where the terminal bell is written.
func WithBell(w io.Writer) Option {
	return func(m *Model) {
		m.bell = w
	}
}

// WithWordWrap turns soft wrapping on or off.
func WithWordWrap(on bool) Option {
	return func(m *Model) {
		m.wordWrap = on
	}
}

// WithStyleKeys replaces DefaultStyleKeys.
func WithStyleKeys(keys map[rune]string) Option {
	return func(m *Model) {
		m.styleKeys = keys
	}
}

// WithEditorOptions passes options through to the editor, e.g. a clipboard
// or a paste hook.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(m *Model) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// New creates a model over doc.
func New(doc *document.Document, resolver *style.Resolver, opts ...Option) *Model {
	m := &Model{
		doc:       doc,
		resolver:  resolver,
		styles:    DefaultStyles(),
		logger:    slog.Default(),
		bell:      os.Stderr,
		styleKeys: DefaultStyleKeys,
		wordWrap:  true,
		width:     80,
		height:    24,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.statusbar = NewStatusBar(m.styles)
	m.statusbar.SetWidth(m.width)
	m.renderer = NewTextRenderer(m.styles, resolver.Derived)

	edOpts := append([]editor.Option{
		editor.WithLogger(m.logger),
		editor.WithInputQueue(m),
	}, m.editorOpts...)
	m.ed = editor.New(doc, doc.History(), m, resolver, edOpts...)

	doc.Subscribe(func(ev document.Event) {
		if ev == document.EventLayoutInvalidated {
			m.modified = true
		}
	})
	m.refresh()
	return m
}

// Editor returns the editor driven by this model.
func (m *Model) Editor() *editor.Editor {
	return m.ed
}

// StatusBar returns the status bar, for setting the filename and encoding.
func (m *Model) StatusBar() *StatusBar {
	return m.statusbar
}

// Modified reports whether the document changed since it was loaded.
func (m *Model) Modified() bool {
	return m.modified
}

// Warn implements editor.Host.
func (m *Model) Warn(msg string) {
	m.statusbar.SetMessage(msg, "error")
}

// Beep implements editor.Host.
func (m *Model) Beep() {
	m.beeps++
	if m.bell != nil {
		_, _ = io.WriteString(m.bell, "\a")
	}
}

// Reconstruct implements editor.Host. It drops the selection back to the
// last position the view knew, clamped to the current text.
func (m *Model) Reconstruct() {
	m.logger.Debug("reconstructing view")
	m.place(m.clamp(m.anchor), m.clamp(m.caret))
	m.refresh()
}

// Peek implements editor.InputQueue.
func (m *Model) Peek() (editor.KeyEvent, bool) {
	if len(m.pending) == 0 {
		return editor.KeyEvent{}, false
	}
	return m.pending[0], true
}

// Pop implements editor.InputQueue.
func (m *Model) Pop() {
	if len(m.pending) > 0 {
		m.pending = m.pending[1:]
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusbar.SetWidth(msg.Width)
		m.refresh()
		return m, nil

	case StylesheetMsg:
		if msg.Err != nil {
			m.logger.Warn("stylesheet reload failed", slog.String("error", msg.Err.Error()))
			m.statusbar.SetMessage("Stylesheet not reloaded", "error")
			return m, nil
		}
		m.resolver.SetCatalog(msg.Sheet)
		m.statusbar.SetMessage("Stylesheet reloaded", "info")
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlQ {
			return m, tea.Quit
		}
		m.statusbar.ClearMessage()
		m.pending = append(m.pending, translateKey(msg)...)
		for len(m.pending) > 0 {
			ev := m.pending[0]
			m.pending = m.pending[1:]
			m.dispatch(ev)
		}
		m.refresh()
		return m, nil
	}
	return m, nil
}

// dispatch handles one key event. Typed characters may consume further
// events from the pending queue.
func (m *Model) dispatch(ev editor.KeyEvent) {
	consumed, err := m.ed.HandleKeyDown(ev)
	if err != nil {
		m.report(err)
		return
	}
	if consumed {
		return
	}

	switch {
	case isNavigation(ev.Key):
		m.move(ev)
		return
	case ev.Mods&editor.ModCtrl != 0 && ev.Key == editor.KeyRune && ev.Rune == 'a':
		m.selectAll()
		return
	case ev.Mods&editor.ModAlt != 0 && ev.Key == editor.KeyRune:
		m.applyStyleKey(ev.Rune)
		return
	}

	if ch, ok := ev.Char(); ok {
		if err := m.ed.HandleTypedCharacter(ch, ev.Mods); err != nil {
			m.report(err)
		}
	}
}

func (m *Model) applyStyleKey(r rune) {
	var err error
	switch r {
	case 'r':
		err = m.ed.RemoveCharFormatting(false)
	case 'R':
		err = m.ed.RemoveCharFormatting(true)
	default:
		name, ok := m.styleKeys[r]
		if !ok {
			return
		}
		if name == "" {
			err = m.ed.ApplyParagraphStyle("")
		} else {
			err = m.ed.ApplyStyle(name)
		}
	}
	if err != nil {
		m.report(err)
	}
}

// report shows an edit failure without stopping the program.
func (m *Model) report(err error) {
	var cerr *editor.ContinuableError
	if errors.As(err, &cerr) {
		m.logger.Warn("edit failed", slog.String("op", cerr.Op), slog.String("error", cerr.Err.Error()))
	} else {
		m.logger.Error("edit failed", slog.String("error", err.Error()))
	}
	m.statusbar.SetMessage(err.Error(), "error")
}

func isNavigation(k editor.Key) bool {
	switch k {
	case editor.KeyLeft, editor.KeyRight, editor.KeyUp, editor.KeyDown,
		editor.KeyHome, editor.KeyEnd, editor.KeyPgUp, editor.KeyPgDown:
		return true
	}
	return false
}

// positions returns the anchor and caret of the installed selection.
func (m *Model) positions() (anchor, caret Pos, ok bool) {
	sel, ok := m.doc.CurrentSelection()
	if !ok {
		return m.anchor, m.caret, false
	}
	a, _ := sel.Endpoint(selection.Anchor)
	e, _ := sel.Endpoint(selection.End)
	return toPos(a), toPos(e), true
}

func toPos(ep selection.Endpoint) Pos {
	p := Pos{Offset: ep.Offset}
	if len(ep.Levels) > 0 {
		p.Para = ep.Levels[0].Index
	}
	return p
}

func (m *Model) paraLen(i int) int {
	return m.doc.Root(0).Paras[i].Len()
}

func (m *Model) paraCount() int {
	return len(m.doc.Root(0).Paras)
}

func (m *Model) clamp(p Pos) Pos {
	if p.Para >= m.paraCount() {
		p.Para = m.paraCount() - 1
	}
	if p.Para < 0 {
		p.Para = 0
	}
	p.Offset = min(max(p.Offset, 0), m.paraLen(p.Para))
	return p
}

func (m *Model) move(ev editor.KeyEvent) {
	anchor, caret, _ := m.positions()
	anchor, caret = m.clamp(anchor), m.clamp(caret)
	extend := ev.Mods&editor.ModShift != 0
	collapsing := !extend && anchor != caret

	switch ev.Key {
	case editor.KeyLeft:
		switch {
		case collapsing:
			if anchor.Before(caret) {
				caret = anchor
			}
		case caret.Offset > 0:
			caret.Offset--
		case caret.Para > 0:
			caret.Para--
			caret.Offset = m.paraLen(caret.Para)
		}
	case editor.KeyRight:
		switch {
		case collapsing:
			if caret.Before(anchor) {
				caret = anchor
			}
		case caret.Offset < m.paraLen(caret.Para):
			caret.Offset++
		case caret.Para < m.paraCount()-1:
			caret.Para++
			caret.Offset = 0
		}
	case editor.KeyUp:
		caret.Para--
	case editor.KeyDown:
		caret.Para++
	case editor.KeyHome:
		caret.Offset = 0
	case editor.KeyEnd:
		caret.Offset = m.paraLen(caret.Para)
	case editor.KeyPgUp:
		caret.Para -= m.pageSize()
	case editor.KeyPgDown:
		caret.Para += m.pageSize()
	}

	caret = m.clamp(caret)
	if !extend {
		anchor = caret
	}
	m.place(anchor, caret)
}

func (m *Model) pageSize() int {
	return max(m.textHeight()-1, 1)
}

func (m *Model) selectAll() {
	last := m.paraCount() - 1
	m.place(Pos{}, Pos{Para: last, Offset: m.paraLen(last)})
}

// place installs a selection from anchor to caret.
func (m *Model) place(anchor, caret Pos) {
	_, err := m.doc.Materialize(
		selection.Path(0, anchor.Para).Endpoint(anchor.Offset),
		selection.Path(0, caret.Para).Endpoint(caret.Offset),
		anchor != caret, true)
	if err != nil {
		m.logger.Warn("could not place selection", slog.String("error", err.Error()))
		return
	}
	m.anchor, m.caret = anchor, caret
}

func (m *Model) textHeight() int {
	return max(m.height-1, 1)
}

func (m *Model) renderState() *RenderState {
	paras := m.doc.Root(0).Paras
	views := make([]ParaView, len(paras))
	for i, p := range paras {
		views[i] = ParaView{Style: p.Style(), Runs: p.Runs}
	}
	return &RenderState{
		Paras:    views,
		Caret:    m.caret,
		Anchor:   m.anchor,
		WordWrap: m.wordWrap,
	}
}

// refresh syncs the status bar and scroll position with the document.
func (m *Model) refresh() {
	if anchor, caret, ok := m.positions(); ok {
		m.anchor, m.caret = anchor, caret
	}
	m.statusbar.SetPosition(m.caret.Para, m.caret.Offset)
	m.statusbar.SetTotalParagraphs(m.paraCount())
	m.statusbar.SetModified(m.modified)
	m.statusbar.SetStyle(m.ed.StyleClassification().String())

	state := m.renderState()
	row := CaretRow(m.renderer.Layout(m.width, state), m.caret)
	h := m.textHeight()
	if row < m.scrollY {
		m.scrollY = row
	} else if row >= m.scrollY+h {
		m.scrollY = row - h + 1
	}
}

// View implements tea.Model
func (m *Model) View() string {
	state := m.renderState()
	rows := m.renderer.Layout(m.width, state)
	lines := m.renderer.Render(rows, m.scrollY, m.width, m.textHeight(), state)
	return strings.Join(lines, "\n") + "\n" + m.statusbar.View()
}

// translateKey converts a Bubble Tea key message into editor key events. A
// message carrying several runes becomes one event per rune.
func translateKey(msg tea.KeyMsg) []editor.KeyEvent {
	var mods editor.Mod
	if msg.Alt {
		mods |= editor.ModAlt
	}
	one := func(k editor.Key, extra editor.Mod) []editor.KeyEvent {
		return []editor.KeyEvent{{Key: k, Mods: mods | extra}}
	}
	ctrl := func(r rune) []editor.KeyEvent {
		return []editor.KeyEvent{{Key: editor.KeyRune, Rune: r, Mods: mods | editor.ModCtrl}}
	}

	switch msg.Type {
	case tea.KeyRunes:
		evs := make([]editor.KeyEvent, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			evs = append(evs, editor.KeyEvent{Key: editor.KeyRune, Rune: r, Mods: mods})
		}
		return evs
	case tea.KeySpace:
		return []editor.KeyEvent{{Key: editor.KeyRune, Rune: ' ', Mods: mods}}
	case tea.KeyEnter:
		return one(editor.KeyEnter, 0)
	case tea.KeyTab:
		return one(editor.KeyTab, 0)
	case tea.KeyBackspace, tea.KeyCtrlH:
		return one(editor.KeyBackspace, 0)
	case tea.KeyDelete:
		return one(editor.KeyDelete, 0)
	case tea.KeyEsc:
		return one(editor.KeyEscape, 0)
	case tea.KeyLeft:
		return one(editor.KeyLeft, 0)
	case tea.KeyRight:
		return one(editor.KeyRight, 0)
	case tea.KeyUp:
		return one(editor.KeyUp, 0)
	case tea.KeyDown:
		return one(editor.KeyDown, 0)
	case tea.KeyHome:
		return one(editor.KeyHome, 0)
	case tea.KeyEnd:
		return one(editor.KeyEnd, 0)
	case tea.KeyPgUp:
		return one(editor.KeyPgUp, 0)
	case tea.KeyPgDown:
		return one(editor.KeyPgDown, 0)
	case tea.KeyShiftLeft:
		return one(editor.KeyLeft, editor.ModShift)
	case tea.KeyShiftRight:
		return one(editor.KeyRight, editor.ModShift)
	case tea.KeyShiftUp:
		return one(editor.KeyUp, editor.ModShift)
	case tea.KeyShiftDown:
		return one(editor.KeyDown, editor.ModShift)
	case tea.KeyShiftHome:
		return one(editor.KeyHome, editor.ModShift)
	case tea.KeyShiftEnd:
		return one(editor.KeyEnd, editor.ModShift)
	case tea.KeyCtrlA:
		return ctrl('a')
	case tea.KeyCtrlC:
		return ctrl('c')
	case tea.KeyCtrlV:
		return ctrl('v')
	case tea.KeyCtrlX:
		return ctrl('x')
	case tea.KeyCtrlY:
		return ctrl('y')
	case tea.KeyCtrlZ:
		return ctrl('z')
	}
	return nil
}

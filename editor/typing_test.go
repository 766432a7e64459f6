package editor_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornish/inkwell/document"
	"github.com/cornish/inkwell/editor"
	"github.com/cornish/inkwell/props"
	"github.com/cornish/inkwell/selection"
	"github.com/cornish/inkwell/style"
)

func TestBurstBackspaceRemovesLastRune(t *testing.T) {
	f := newFixture(t, []string{""})
	f.queue.events = []editor.KeyEvent{key('b'), key('c'), backspace}

	require.NoError(t, f.ed.HandleTypedCharacter('a', 0))
	assert.Equal(t, []string{"ab"}, f.texts())
	assert.Empty(t, f.queue.events)
	assert.Len(t, f.doc.History().Units(), 1)
	assert.Equal(t, editor.StateIdle, f.ed.State())
}

func TestLeadingBackspaceIsBufferedAlone(t *testing.T) {
	f := newFixture(t, []string{"hello"})
	f.place(t, 0, 5, 0, 5)
	f.queue.events = []editor.KeyEvent{backspace}

	require.NoError(t, f.ed.HandleTypedCharacter('\b', 0))
	assert.Equal(t, []string{"hell"}, f.texts())
	assert.Len(t, f.queue.events, 1, "the second backspace stays queued")

	ev, _ := f.queue.Peek()
	f.queue.Pop()
	ch, ok := ev.Char()
	require.True(t, ok)
	require.NoError(t, f.ed.HandleTypedCharacter(ch, ev.Mods))
	assert.Equal(t, []string{"hel"}, f.texts())
}

func TestBurstEqualsSingleTyping(t *testing.T) {
	input := []rune("héllo wörld")

	burst := newFixture(t, []string{"<>"})
	burst.place(t, 0, 1, 0, 1)
	for _, r := range input[1:] {
		burst.queue.events = append(burst.queue.events, key(r))
	}
	require.NoError(t, burst.ed.HandleTypedCharacter(input[0], 0))

	single := newFixture(t, []string{"<>"})
	single.place(t, 0, 1, 0, 1)
	for _, r := range input {
		require.NoError(t, single.ed.HandleTypedCharacter(r, 0))
	}

	assert.Equal(t, single.texts(), burst.texts())
	assert.Equal(t, []string{"<héllo wörld>"}, burst.texts())
	assert.Len(t, burst.doc.History().Units(), 1)
	assert.Len(t, single.doc.History().Units(), len(input))
}

func TestBurstStopsAtCommandKeys(t *testing.T) {
	tests := []struct {
		name   string
		events []editor.KeyEvent
		want   string
		left   int
	}{
		{"ctrl chord", []editor.KeyEvent{key('b'), {Key: editor.KeyRune, Rune: 'v', Mods: editor.ModCtrl}}, "ab", 1},
		{"navigation", []editor.KeyEvent{{Key: editor.KeyLeft}, key('b')}, "a", 2},
		{"forward delete", []editor.KeyEvent{key('b'), {Key: editor.KeyDelete}}, "ab", 1},
		{"paragraph break", []editor.KeyEvent{key('b'), {Key: editor.KeyEnter}, key('c')}, "ab", 2},
		{"control character", []editor.KeyEvent{key('b'), key('\x01'), key('c')}, "ab", 2},
		{"tab is text", []editor.KeyEvent{key('\t'), key('b')}, "a\tb", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, []string{""})
			f.queue.events = tt.events
			require.NoError(t, f.ed.HandleTypedCharacter('a', 0))
			assert.Equal(t, tt.want, f.texts()[0])
			assert.Len(t, f.queue.events, tt.left)
		})
	}
}

func TestParagraphBreakOpensBurstAlone(t *testing.T) {
	f := newFixture(t, []string{"ab"})
	f.place(t, 0, 1, 0, 1)
	f.queue.events = []editor.KeyEvent{key('x')}

	require.NoError(t, f.ed.HandleTypedCharacter('\n', 0))
	assert.Equal(t, []string{"a", "b"}, f.texts())
	assert.Len(t, f.queue.events, 1)
}

func TestModifiedCharactersAreIgnored(t *testing.T) {
	f := newFixture(t, []string{"ab"})
	require.NoError(t, f.ed.HandleTypedCharacter('x', editor.ModAlt))
	require.NoError(t, f.ed.HandleTypedCharacter('\x02', 0))
	assert.Equal(t, []string{"ab"}, f.texts())
	assert.False(t, f.doc.History().CanUndo())
}

func TestTypingOverComplexRange(t *testing.T) {
	tests := []struct {
		name  string
		first rune
		want  []string
	}{
		{"text replaces range", 'X', []string{"oXwo"}},
		{"backspace only deletes", '\b', []string{"owo"}},
		{"break after delete", '\r', []string{"o", "wo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, []string{"one", "two"})
			f.place(t, 0, 1, 1, 1)

			require.NoError(t, f.ed.HandleTypedCharacter(tt.first, 0))
			assert.Equal(t, tt.want, f.texts())

			units := f.doc.History().Units()
			require.Len(t, units, 1, "delete and typing form one undo unit")
			assert.Equal(t, "Typing", units[0].Label)

			require.NoError(t, f.ed.Undo())
			assert.Equal(t, []string{"one", "two"}, f.texts())
		})
	}
}

func TestTypingOverSimpleRange(t *testing.T) {
	f := newFixture(t, []string{"hello"})
	f.place(t, 0, 4, 0, 1)
	f.queue.events = []editor.KeyEvent{key('y')}

	require.NoError(t, f.ed.HandleTypedCharacter('a', 0))
	assert.Equal(t, []string{"hayo"}, f.texts())
}

func TestComplexDeleteKeepsEarlierUndoUnits(t *testing.T) {
	f := newFixture(t, []string{"one", "two"})
	f.place(t, 1, 3, 1, 3)
	require.NoError(t, f.ed.HandleTypedCharacter('!', 0))

	f.place(t, 0, 1, 1, 1)
	require.NoError(t, f.ed.HandleTypedCharacter('X', 0))
	assert.Len(t, f.doc.History().Units(), 2)

	require.NoError(t, f.ed.Undo())
	assert.Equal(t, []string{"one", "two!"}, f.texts())
}

func TestComplexTypingWithSingleUndoSlot(t *testing.T) {
	d := document.New([]*document.Text{document.FromLines([]string{"one", "two"}, "Normal")}, document.WithMaxUndo(1))
	f := newFixtureWith(t, d)
	f.place(t, 0, 1, 1, 1)

	require.NoError(t, f.ed.HandleTypedCharacter('X', 0))
	assert.Equal(t, []string{"oXwo"}, f.texts())
	assert.Len(t, d.History().Units(), 1)

	require.NoError(t, f.ed.Undo())
	assert.Equal(t, []string{"one", "two"}, f.texts())
}

// splitHistory never joins units.
type splitHistory struct{ *document.History }

func (splitHistory) MergeLast(int) bool { return false }

func TestUnmergedTypingIsLogged(t *testing.T) {
	var logs bytes.Buffer
	d := document.New([]*document.Text{document.FromLines([]string{"one", "two"}, "Normal")})
	ed := editor.New(d, splitHistory{d.History()}, &fakeHost{}, style.NewResolver(style.DefaultStylesheet()),
		editor.WithInputQueue(&fakeQueue{}),
		editor.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	_, err := d.Materialize(selection.Path(0, 0).Endpoint(1), selection.Path(0, 1).Endpoint(1), true, true)
	require.NoError(t, err)

	require.NoError(t, ed.HandleTypedCharacter('X', 0))
	assert.Equal(t, "oXwo", d.Root(0).Paras[0].Text())
	assert.Contains(t, logs.String(), "typing left as two undo units")
}

func TestDelete(t *testing.T) {
	f := newFixture(t, []string{"ab", "cd"})
	f.place(t, 0, 2, 0, 2)

	handled, err := f.ed.HandleKeyDown(editor.KeyEvent{Key: editor.KeyDelete})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"abcd"}, f.texts())

	f.place(t, 0, 1, 0, 3)
	require.NoError(t, f.ed.Delete())
	assert.Equal(t, []string{"ad"}, f.texts())
	assert.Equal(t, "Delete", f.doc.History().Units()[1].Label)
}

func TestTypingOutOfRangeRebuildsView(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"direct", props.ErrOutOfRange},
		{"wrapped", fmt.Errorf("typing: %w", props.ErrOutOfRange)},
		{"joined", errors.Join(errors.New("layout"), fmt.Errorf("deep: %w", fmt.Errorf("deeper: %w", props.ErrOutOfRange)))},
		{"stale", fmt.Errorf("%w: %w", document.ErrStale, props.ErrOutOfRange)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := document.New([]*document.Text{document.FromLines([]string{"ab"}, "Normal")})
			f := newFixtureWith(t, d)
			ed := editor.New(failingEngine{Document: d, err: tt.err}, d.History(), f.host, nil)

			require.NoError(t, ed.HandleTypedCharacter('x', 0))
			assert.Len(t, f.host.warnings, 1)
			assert.Equal(t, 1, f.host.rebuilds)
			assert.False(t, d.History().Open(), "transaction left balanced")
		})
	}
}

func TestTypingOtherErrorsAreReturned(t *testing.T) {
	d := document.New([]*document.Text{document.FromLines([]string{"ab"}, "Normal")})
	f := newFixtureWith(t, d)
	boom := errors.New("boom")
	ed := editor.New(failingEngine{Document: d, err: boom}, d.History(), f.host, nil)

	err := ed.HandleTypedCharacter('x', 0)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.host.warnings)
	assert.False(t, d.History().Open())
}

func TestReadOnlyTypingFails(t *testing.T) {
	f := newFixture(t, []string{"ab"})
	f.doc.SetReadOnly(true)
	err := f.ed.HandleTypedCharacter('x', 0)
	assert.ErrorIs(t, err, document.ErrReadOnly)
	assert.Equal(t, []string{"ab"}, f.texts())
}

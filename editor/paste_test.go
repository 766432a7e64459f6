package editor_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornish/inkwell/document"
	"github.com/cornish/inkwell/editor"
	"github.com/cornish/inkwell/props"
)

func wsSet(ws int) *props.Set {
	s := props.NewSet()
	s.SetWS(ws)
	return s
}

// wsAt returns the writing system of the character at offset in paragraph i.
func wsAt(t *testing.T, d *document.Document, i, offset int) int {
	t.Helper()
	runs := d.Root(0).Paras[i].Runs
	idx, _, err := runs.RunAt(offset, false)
	require.NoError(t, err)
	return runs[idx].Props.WS()
}

func greekDoc() *document.Document {
	return document.New([]*document.Text{document.NewText(
		document.NewParagraph("Normal", props.Run{Text: "hello", Props: wsSet(5)}),
	)})
}

func TestPasteWritingSystemPolicies(t *testing.T) {
	tests := []struct {
		name    string
		chooser editor.PolicyChooser
		wantWS  int
	}{
		{"preserve", editor.StaticPolicy(editor.PreserveWs, 0), 3},
		{"destination", editor.StaticPolicy(editor.UseDestWs, 0), 5},
		{"chooser picks", editor.PolicyFunc(func(content props.Runs, destWS int) (editor.PastePolicy, int) {
			assert.Equal(t, "αβ", content.Text())
			assert.Equal(t, 5, destWS)
			return editor.UseDestWs, 9
		}), 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtureWith(t, greekDoc(), editor.WithPolicyChooser(tt.chooser))
			f.clip.rich = props.Runs{{Text: "αβ", Props: wsSet(3)}}
			f.place(t, 0, 1, 0, 3)

			ok, err := f.ed.Paste()
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []string{"hαβlo"}, f.texts())
			assert.Equal(t, tt.wantWS, wsAt(t, f.doc, 0, 1))
			assert.Equal(t, 5, wsAt(t, f.doc, 0, 4))
			assert.Equal(t, editor.PasteApplied, f.ed.PasteState())
		})
	}
}

func TestPasteDestinationFallbackWritingSystem(t *testing.T) {
	f := newFixture(t, []string{"ab"}, editor.WithPolicyChooser(editor.StaticPolicy(editor.UseDestWs, 7)))
	f.clip.rich = props.Runs{{Text: "x", Props: wsSet(3)}}
	f.place(t, 0, 1, 0, 1)

	ok, err := f.ed.Paste()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, wsAt(t, f.doc, 0, 1))
}

func TestPasteCancel(t *testing.T) {
	f := newFixture(t, []string{"ab"}, editor.WithPolicyChooser(editor.StaticPolicy(editor.CancelPaste, 0)))
	f.clip.rich = props.Runs{{Text: "x", Props: wsSet(3)}}

	ok, err := f.ed.Paste()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"ab"}, f.texts())
	assert.False(t, f.doc.History().CanUndo())
	assert.Equal(t, editor.PasteAborted, f.ed.PasteState())
}

func TestPasteFormattedIntoPlainText(t *testing.T) {
	plain := document.FromLines([]string{"ab"}, "")
	plain.Plain = true
	f := newFixtureWith(t, document.New([]*document.Text{plain}))
	bold := wsSet(2)
	bold.SetInt(props.Bold, props.ToggleOn, props.VarEnum)
	f.clip.rich = props.Runs{{Text: "X", Props: bold}}
	f.place(t, 0, 1, 0, 1)

	ok, err := f.ed.Paste()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"aXb"}, f.texts())
	for _, run := range f.doc.Root(0).Paras[0].Runs {
		_, isBold := run.Props.Int(props.Bold)
		assert.False(t, isBold)
	}
}

func TestPastePlainText(t *testing.T) {
	f := newFixtureWith(t, greekDoc())
	f.clip.text = "x\r\ny"
	f.place(t, 0, 2, 0, 2)

	ok, err := f.ed.Paste()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"hex", "yllo"}, f.texts())
	assert.Equal(t, 5, wsAt(t, f.doc, 0, 2), "wrapped in the destination properties")
	assert.Equal(t, 5, wsAt(t, f.doc, 1, 0))

	units := f.doc.History().Units()
	require.Len(t, units, 1)
	assert.Equal(t, "Paste", units[0].Label)
}

func TestPasteEmptyClipboard(t *testing.T) {
	f := newFixture(t, []string{"ab"})
	f.clip.readErr = errors.New("no clipboard")

	ok, err := f.ed.Paste()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, editor.PasteAborted, f.ed.PasteState())
}

func TestPasteRefusedBeeps(t *testing.T) {
	t.Run("read only", func(t *testing.T) {
		f := newFixture(t, []string{"ab"})
		f.doc.SetReadOnly(true)
		f.clip.text = "x"

		ok, err := f.ed.Paste()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, f.host.beeps)
		assert.Equal(t, []string{"ab"}, f.texts())
	})

	t.Run("formatting in plain text", func(t *testing.T) {
		plain := document.FromLines([]string{"ab"}, "")
		plain.Plain = true
		f := newFixtureWith(t, document.New([]*document.Text{plain}))
		bold := props.NewSet()
		bold.SetInt(props.Bold, props.ToggleOn, props.VarEnum)

		ok, err := f.ed.PasteCore(props.Runs{{Text: "X", Props: bold}})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, f.host.beeps)
		assert.Equal(t, []string{"ab"}, f.texts())
	})
}

func TestPasteUnexpectedFailure(t *testing.T) {
	d := document.New([]*document.Text{document.FromLines([]string{"ab"}, "Normal")})
	f := newFixtureWith(t, d)
	cause := errors.New("layout failed")
	ed := editor.New(failingEngine{Document: d, err: cause}, d.History(), f.host, nil, editor.WithClipboard(f.clip))
	f.clip.text = "x"

	ok, err := ed.Paste()
	assert.False(t, ok)
	var ce *editor.ContinuableError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "paste", ce.Op)
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, f.host.beeps)
	assert.False(t, d.History().Open())
}

type hookFunc func(props.Runs) (props.Runs, error)

func (h hookFunc) Rewrite(runs props.Runs) (props.Runs, error) { return h(runs) }

func TestPasteHook(t *testing.T) {
	upper := hookFunc(func(runs props.Runs) (props.Runs, error) {
		for i := range runs {
			runs[i].Text = strings.ToUpper(runs[i].Text)
		}
		return runs, nil
	})
	f := newFixture(t, []string{""}, editor.WithPasteHook(upper))
	f.clip.text = "shout"

	ok, err := f.ed.Paste()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"SHOUT"}, f.texts())

	broken := hookFunc(func(props.Runs) (props.Runs, error) { return nil, errors.New("script error") })
	g := newFixture(t, []string{"ab"}, editor.WithPasteHook(broken))
	g.clip.text = "x"
	ok, err = g.ed.Paste()
	assert.False(t, ok)
	var ce *editor.ContinuableError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "paste hook", ce.Op)
	assert.Equal(t, []string{"ab"}, g.texts())
}

func TestCopyAndCut(t *testing.T) {
	f := newFixture(t, []string{"hello", "world"})

	assert.False(t, f.ed.Copy(), "nothing selected")

	f.place(t, 0, 3, 1, 2)
	assert.True(t, f.ed.Copy())
	assert.Equal(t, "lo\rwo", f.clip.text)
	assert.Equal(t, []string{"hello", "world"}, f.texts())

	ok, err := f.ed.Cut()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"helrld"}, f.texts())
	units := f.doc.History().Units()
	require.Len(t, units, 1)
	assert.Equal(t, "Cut", units[0].Label)

	ok, err = f.ed.Paste()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"hello", "world"}, f.texts())
}

func TestCopyKeys(t *testing.T) {
	f := newFixture(t, []string{"hello"})
	f.place(t, 0, 0, 0, 2)

	handled, err := f.ed.HandleKeyDown(editor.KeyEvent{Key: editor.KeyRune, Rune: 'x', Mods: editor.ModCtrl})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"llo"}, f.texts())

	handled, err = f.ed.HandleKeyDown(editor.KeyEvent{Key: editor.KeyRune, Rune: 'v', Mods: editor.ModCtrl})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"hello"}, f.texts())
}

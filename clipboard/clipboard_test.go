package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornish/inkwell/props"
)

type fakeSystem struct {
	text     string
	readErr  error
	writeErr error
}

func (f *fakeSystem) ReadAll() (string, error) { return f.text, f.readErr }

func (f *fakeSystem) WriteAll(text string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.text = text
	return nil
}

func sample() props.Runs {
	bold := props.NewSet()
	bold.SetInt(props.Bold, props.ToggleOn, props.VarEnum)
	return props.Runs{{Text: "one\rtwo", Props: bold}}
}

func TestSetContentWritesPlainText(t *testing.T) {
	sys := &fakeSystem{}
	var out bytes.Buffer
	c := New(&out, WithSystem(sys), WithSSH(false))

	require.NoError(t, c.SetContent(sample()))
	assert.Equal(t, "one\ntwo", sys.text)
	assert.Zero(t, out.Len())

	rich, ok := c.Rich()
	require.True(t, ok)
	assert.Equal(t, "one\rtwo", rich.Text())

	text, err := c.Text()
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", text)
}

func TestRichHiddenByForeignCopy(t *testing.T) {
	sys := &fakeSystem{}
	c := New(&bytes.Buffer{}, WithSystem(sys), WithSSH(false))
	require.NoError(t, c.SetContent(sample()))

	sys.text = "from another program"
	_, ok := c.Rich()
	assert.False(t, ok)

	text, err := c.Text()
	require.NoError(t, err)
	assert.Equal(t, "from another program", text)
}

func TestRichSurvivesLineEndingRewrite(t *testing.T) {
	sys := &fakeSystem{}
	c := New(&bytes.Buffer{}, WithSystem(sys), WithSSH(false))
	require.NoError(t, c.SetContent(sample()))

	sys.text = "one\r\ntwo"
	rich, ok := c.Rich()
	require.True(t, ok)
	assert.Equal(t, "one\rtwo", rich.Text())
}

func TestSSHUsesOSC52(t *testing.T) {
	sys := &fakeSystem{readErr: errors.New("no display")}
	var out bytes.Buffer
	c := New(&out, WithSystem(sys), WithSSH(true))
	assert.True(t, c.IsSSH())

	require.NoError(t, c.SetContent(sample()))
	assert.Empty(t, sys.text)
	assert.Contains(t, out.String(), base64.StdEncoding.EncodeToString([]byte("one\ntwo")))

	_, ok := c.Rich()
	assert.True(t, ok, "unreadable system clipboard keeps the rich copy")
	text, err := c.Text()
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", text)
}

func TestWriteFailureFallsBackToOSC52(t *testing.T) {
	sys := &fakeSystem{writeErr: errors.New("no xclip")}
	var out bytes.Buffer
	c := New(&out, WithSystem(sys), WithSSH(false))

	require.NoError(t, c.Copy("hi"))
	assert.NotZero(t, out.Len())
	assert.True(t, c.HasContent())

	c.Clear()
	assert.False(t, c.HasContent())
	_, ok := c.Rich()
	assert.False(t, ok)
}

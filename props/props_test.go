package props

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBasics(t *testing.T) {
	s := NewSet()
	s.SetInt(Bold, ToggleOn, VarEnum)
	s.SetStr(FontFamily, "Charis")
	s.SetWS(7)

	v, ok := s.Int(Bold)
	require.True(t, ok)
	assert.Equal(t, IntValue{Val: ToggleOn, Var: VarEnum}, v)
	assert.Equal(t, 7, s.WS())
	assert.Equal(t, 3, s.Len())

	s.ClearInt(Bold)
	_, ok = s.Int(Bold)
	assert.False(t, ok)
	assert.Equal(t, []IntProp{WritingSystem}, s.IntProps())
}

func TestNilSetReadsEmpty(t *testing.T) {
	var s *Set
	_, ok := s.Int(Italic)
	assert.False(t, ok)
	assert.Equal(t, "", s.Style())
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Equal(NewSet()))
	assert.NotNil(t, s.Clone())
}

func TestSetCloneIsDeep(t *testing.T) {
	s := NewSet()
	s.SetStr(NamedStyle, "Emphasis")
	c := s.Clone()
	c.SetStr(NamedStyle, "Strong")
	assert.Equal(t, "Emphasis", s.Style())
	assert.False(t, s.Equal(c))
}

func TestPropNames(t *testing.T) {
	for p, name := range intNames {
		got, ok := IntPropByName(name)
		require.True(t, ok, name)
		assert.Equal(t, p, got)
		assert.Equal(t, name, p.String())
	}
	for p, name := range strNames {
		got, ok := StrPropByName(name)
		require.True(t, ok, name)
		assert.Equal(t, p, got)
	}
	_, ok := IntPropByName("nope")
	assert.False(t, ok)
}

func TestStoreApplyLineHeight(t *testing.T) {
	st := NewStore()
	assert.Equal(t, Unset, st.Int(LineHeight))

	rel := NewSet()
	rel.SetInt(LineHeight, 15000, VarRelative)
	st.Apply(rel)
	assert.Equal(t, 15000, st.Int(RelLineHeight))
	assert.Equal(t, Unset, st.Int(LineHeight))

	abs := NewSet()
	abs.SetInt(LineHeight, 12000, VarMilliPoint)
	st.Apply(abs)
	assert.Equal(t, 12000, st.Int(LineHeight))
	assert.Equal(t, Unset, st.Int(RelLineHeight))
}

func plain(text string) Run {
	return Run{Text: text, Props: NewSet()}
}

func bold(text string) Run {
	s := NewSet()
	s.SetInt(Bold, ToggleOn, VarEnum)
	return Run{Text: text, Props: s}
}

func TestRunsNormalize(t *testing.T) {
	rs := Runs{plain("ab"), plain(""), plain("cd"), bold("ef")}
	got := rs.Normalize()
	require.Len(t, got, 2)
	assert.Equal(t, "abcd", got[0].Text)
	assert.Equal(t, "ef", got[1].Text)

	empty := Runs{bold(""), plain("")}.Normalize()
	require.Len(t, empty, 1)
	v, _ := empty[0].Props.Int(Bold)
	assert.Equal(t, ToggleOn, v.Val)
}

func TestRunsRunAt(t *testing.T) {
	rs := Runs{plain("ab"), bold("cd")}
	tests := []struct {
		offset     int
		preferPrev bool
		idx, start int
	}{
		{0, false, 0, 0},
		{2, false, 1, 2},
		{2, true, 0, 0},
		{4, false, 1, 2},
		{0, true, 0, 0},
	}
	for _, tt := range tests {
		idx, start, err := rs.RunAt(tt.offset, tt.preferPrev)
		require.NoError(t, err)
		assert.Equal(t, tt.idx, idx, "offset %d prev %v", tt.offset, tt.preferPrev)
		assert.Equal(t, tt.start, start)
	}

	_, _, err := rs.RunAt(5, false)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestRunsSliceAndSplit(t *testing.T) {
	rs := Runs{plain("héllo"), bold("wörld")}

	got, err := rs.Slice(3, 7)
	require.NoError(t, err)
	assert.Equal(t, "lowö", got.Text())
	assert.Len(t, got, 2)

	split, idx, err := rs.Split(2)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "hé", split[0].Text)
	assert.Equal(t, "llo", split[1].Text)

	_, idx, err = rs.Split(5)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = rs.Slice(4, 11)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestRunsSplitParagraphs(t *testing.T) {
	rs := Runs{plain("one\rtw"), bold("o\r")}
	paras := rs.SplitParagraphs()
	require.Len(t, paras, 3)
	assert.Equal(t, "one", paras[0].Text())
	assert.Equal(t, "two", paras[1].Text())
	assert.Equal(t, "", paras[2].Text())
	require.Len(t, paras[2], 1)
}

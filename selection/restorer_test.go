package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restorerFixture() (*fakeEngine, *Restorer) {
	eng := newFakeEngine()
	eng.addPara(Path(0, 0), 10)
	eng.addPara(Path(0, 1), 4)
	eng.addPara(Path(0, 1, 0, 0), 6)
	return eng, NewRestorer(eng)
}

func TestRestoreExact(t *testing.T) {
	eng, r := restorerFixture()
	s := NewRange(ep(2, 0), ep(3, 1))

	res, ok := r.Restore(s, true)
	require.True(t, ok)
	assert.Equal(t, TierExact, res.Tier)
	assert.True(t, res.Snapshot.Equal(s))
	assert.Same(t, eng.installed, res.Handle)
}

func TestRestoreCollapsesWhenEndIsStale(t *testing.T) {
	_, r := restorerFixture()
	s := NewRange(ep(2, 0), ep(3, 7))

	res, ok := r.Restore(s, false)
	require.True(t, ok)
	assert.Equal(t, TierCollapsed, res.Tier)
	assert.False(t, res.Snapshot.IsRange())
	assert.Equal(t, 2, res.Snapshot.Anchor.Offset)
}

func TestRestoreSwapsToTopEndpoint(t *testing.T) {
	_, r := restorerFixture()
	// The anchor paragraph exists but the offset is past its end; the end is
	// valid and ranks lower.
	s := NewRange(ep(8, 1), ep(5, 0))

	res, ok := r.Restore(s, false)
	require.True(t, ok)
	assert.Equal(t, TierSwapped, res.Tier)
	assert.Equal(t, 0, res.Snapshot.Anchor.Levels[0].Index)
	assert.Equal(t, 5, res.Snapshot.Anchor.Offset)
}

func TestRestoreSkipsSwapForMismatchedChains(t *testing.T) {
	_, r := restorerFixture()
	s := NewRange(ep(9, 1), ep(2, 1, 0, 0))

	res, ok := r.Restore(s, false)
	require.True(t, ok)
	assert.Equal(t, TierClamped, res.Tier)
	assert.Equal(t, 1, res.Snapshot.Anchor.Levels[0].Index)
}

func TestRestoreClampsPastEndToParagraphEnd(t *testing.T) {
	eng, r := restorerFixture()
	s := NewInsertionPoint(ep(40, 1))

	res, ok := r.Restore(s, true)
	require.True(t, ok)
	assert.Equal(t, TierClamped, res.Tier)
	assert.Equal(t, 4, res.Snapshot.Anchor.Offset, "past-end degrades to end of paragraph")
	assert.True(t, res.Snapshot.Anchor.AssocPrev)
	require.NotNil(t, eng.installed)
	assert.Equal(t, 4, eng.installed.anchor.Offset)
}

func TestRestoreNone(t *testing.T) {
	_, r := restorerFixture()

	tests := []struct {
		name string
		snap Snapshot
	}{
		{"missing paragraph", NewInsertionPoint(ep(0, 9))},
		{"empty chain", NewInsertionPoint(Endpoint{Offset: 1})},
		{"negative offset deep", NewRange(ep(-1, 5, 2, 1), ep(-3, 7))},
		{"zero value", Snapshot{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, ok := r.Restore(tt.snap, true)
				assert.False(t, ok)
			})
		})
	}
}

func TestRestoreSurvivesPanickingEngine(t *testing.T) {
	eng, r := restorerFixture()
	eng.panics = true

	assert.NotPanics(t, func() {
		_, ok := r.Restore(NewRange(ep(1, 0), ep(2, 0)), true)
		assert.False(t, ok)
	})
	assert.Equal(t, 4, eng.calls, "collapsed, swapped and clamped tiers still tried")
}

func TestRestoreWithoutEngine(t *testing.T) {
	r := NewRestorer(nil)
	_, ok := r.Restore(NewInsertionPoint(ep(0, 0)), false)
	assert.False(t, ok)
}

func TestMaterializeCaptureRoundTrip(t *testing.T) {
	eng, r := restorerFixture()
	want := NewRange(ep(1, 1, 0, 0), ep(5, 1, 0, 0))

	res, ok := r.Restore(want, false)
	require.True(t, ok)

	again, ok := Capture(res.Handle)
	require.True(t, ok)
	assert.True(t, again.Equal(want))

	eng.mutate()
	_, ok = Capture(res.Handle)
	assert.False(t, ok, "stale handles cannot be captured")
}

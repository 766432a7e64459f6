// Package selection models engine-independent selections. A Snapshot records
// both endpoints as chains of container hops from a root object down to a
// paragraph, so it can be rebuilt after the engine handle it came from has been
// invalidated by a mutation.
package selection

import (
	"errors"

	"github.com/cornish/inkwell/props"
)

var (
	// ErrIncomparable is returned when two endpoints have level chains of
	// different lengths.
	ErrIncomparable = errors.New("endpoints have different level chain shapes")

	// ErrRejected is returned by an engine that cannot materialize a selection
	// from the given description.
	ErrRejected = errors.New("selection rejected by engine")

	// ErrOperationFailed is returned by an engine when an edit against a live
	// selection could not be carried out. The document is left unchanged.
	ErrOperationFailed = errors.New("operation failed")
)

// Tag identifies an object property that owns a sequence of children.
type Tag int

// Well-known property tags.
const (
	TagParagraphs Tag = 14 // Paragraphs of a text
	TagContents   Tag = 16 // Formatted contents of a paragraph
	TagNotes      Tag = 17 // Note texts owned by a paragraph
)

// Level is one hop in a level chain: the Index-th child under property Tag,
// the PrevOccurrences-th time Tag occurs at this level.
type Level struct {
	Tag             Tag
	Index           int
	PrevOccurrences int
	WS              int
}

// Endpoint locates one end of a selection.
// Levels run from the outermost hop to the innermost; Levels[0].Tag is
// TagParagraphs.
type Endpoint struct {
	Root      int
	Levels    []Level
	TextTag   Tag
	Offset    int
	WS        int
	AssocPrev bool
	Props     *props.Set // Insertion properties; nil when not recorded
}

// Clone returns a deep copy.
func (e Endpoint) Clone() Endpoint {
	c := e
	c.Levels = append([]Level(nil), e.Levels...)
	if e.Props != nil {
		c.Props = e.Props.Clone()
	}
	return c
}

// Equal compares every field, including insertion properties.
func (e Endpoint) Equal(o Endpoint) bool {
	if !e.SamePosition(o) || e.WS != o.WS || e.AssocPrev != o.AssocPrev {
		return false
	}
	if (e.Props == nil) != (o.Props == nil) {
		return false
	}
	return e.Props.Equal(o.Props)
}

// SamePosition reports whether both endpoints address the same character
// position, ignoring writing system and properties.
func (e Endpoint) SamePosition(o Endpoint) bool {
	if e.Root != o.Root || e.TextTag != o.TextTag || e.Offset != o.Offset || len(e.Levels) != len(o.Levels) {
		return false
	}
	for i := range e.Levels {
		if e.Levels[i] != o.Levels[i] {
			return false
		}
	}
	return true
}

// Para returns the paragraph this endpoint lies in.
func (e Endpoint) Para() ParaRef {
	return ParaRef{Root: e.Root, Levels: append([]Level(nil), e.Levels...)}
}

// Which names one end of a snapshot.
type Which int

const (
	Anchor Which = iota
	End
)

// Limit names an end of a selection either by role or by position.
type Limit int

const (
	LimitAnchor Limit = iota
	LimitEnd
	LimitTop
	LimitBottom
)

// Snapshot is a restorable selection. When EndExplicit is false the snapshot is
// an insertion point and End mirrors Anchor.
type Snapshot struct {
	Anchor      Endpoint
	End         Endpoint
	EndExplicit bool

	live Handle
}

// NewInsertionPoint creates an insertion point snapshot.
func NewInsertionPoint(at Endpoint) Snapshot {
	return Snapshot{Anchor: at.Clone(), End: at.Clone()}
}

// NewRange creates a range snapshot.
func NewRange(anchor, end Endpoint) Snapshot {
	return Snapshot{Anchor: anchor.Clone(), End: end.Clone(), EndExplicit: true}
}

// Capture records the state of a live handle.
func Capture(h Handle) (Snapshot, bool) {
	if h == nil || !h.Valid() {
		return Snapshot{}, false
	}
	anchor, ok := h.Endpoint(Anchor)
	if !ok {
		return Snapshot{}, false
	}
	s := NewInsertionPoint(anchor)
	if h.IsRange() {
		end, ok := h.Endpoint(End)
		if !ok {
			return Snapshot{}, false
		}
		s = NewRange(anchor, end)
	}
	s.live = h
	return s, true
}

// WithLive returns a copy bound to the given live handle.
func (s Snapshot) WithLive(h Handle) Snapshot {
	s.live = h
	return s
}

// Live returns the live handle if it is still valid.
func (s Snapshot) Live() (Handle, bool) {
	if s.live == nil || !s.live.Valid() {
		return nil, false
	}
	return s.live, true
}

// Endpoint returns the requested end.
func (s Snapshot) Endpoint(w Which) Endpoint {
	if w == End && s.EndExplicit {
		return s.End
	}
	return s.Anchor
}

// Levels returns the level chain of the requested end.
func (s Snapshot) Levels(w Which) []Level {
	return s.Endpoint(w).Levels
}

// FindLevelByTag returns the first anchor level owned by tag.
func (s Snapshot) FindLevelByTag(tag Tag) (Level, bool) {
	return s.FindLevelByTagAt(tag, Anchor)
}

// FindLevelByTagAt returns the first level owned by tag at the given end.
func (s Snapshot) FindLevelByTagAt(tag Tag, w Which) (Level, bool) {
	for _, lev := range s.Levels(w) {
		if lev.Tag == tag {
			return lev, true
		}
	}
	return Level{}, false
}

// IsRange reports whether the snapshot covers at least one character.
func (s Snapshot) IsRange() bool {
	if h, ok := s.Live(); ok {
		return h.IsRange()
	}
	if !s.EndExplicit {
		return false
	}
	return !s.Anchor.SamePosition(s.End)
}

// Top returns the end that comes first in document order. Incomparable
// endpoints report the anchor.
func (s Snapshot) Top() Which {
	if !s.EndExplicit {
		return Anchor
	}
	c, err := Compare(s.Anchor, s.End)
	if err != nil || c <= 0 {
		return Anchor
	}
	return End
}

// Bottom returns the end that comes last in document order.
// Incomparable endpoints report the end.
func (s Snapshot) Bottom() Which {
	if !s.EndExplicit {
		return Anchor
	}
	c, err := Compare(s.Anchor, s.End)
	if err == nil && c >= 0 {
		return Anchor
	}
	return End
}

func (s Snapshot) resolve(l Limit) Which {
	switch l {
	case LimitTop:
		return s.Top()
	case LimitBottom:
		return s.Bottom()
	case LimitEnd:
		return End
	default:
		return Anchor
	}
}

// ReduceToInsertionPoint collapses the snapshot onto one limit. The chosen
// endpoint is copied into both slots so a later extension can start from a
// complete descriptor. Nothing is installed.
func (s Snapshot) ReduceToInsertionPoint(l Limit) Snapshot {
	ep := s.Endpoint(s.resolve(l))
	return Snapshot{Anchor: ep.Clone(), End: ep.Clone()}
}

// ExtendTo returns a range from the anchor to the given endpoint.
func (s Snapshot) ExtendTo(end Endpoint) Snapshot {
	return NewRange(s.Anchor, end)
}

// Equal compares two snapshots, ignoring their live handles.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.EndExplicit == o.EndExplicit && s.Anchor.Equal(o.Anchor) && s.End.Equal(o.End)
}

// Compare orders two endpoints: by root, then level by level from the outermost
// hop comparing occurrence index and previous occurrences, then by offset.
func Compare(a, b Endpoint) (int, error) {
	if len(a.Levels) != len(b.Levels) {
		return 0, ErrIncomparable
	}
	if c := cmpInt(a.Root, b.Root); c != 0 {
		return c, nil
	}
	for i := range a.Levels {
		if c := cmpInt(a.Levels[i].Index, b.Levels[i].Index); c != 0 {
			return c, nil
		}
		if c := cmpInt(a.Levels[i].PrevOccurrences, b.Levels[i].PrevOccurrences); c != 0 {
			return c, nil
		}
	}
	return cmpInt(a.Offset, b.Offset), nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

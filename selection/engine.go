package selection

import "strconv"

// Handle is a live selection owned by the rendering engine. It may be
// invalidated by any document mutation; callers check Valid before use.
type Handle interface {
	Valid() bool
	IsRange() bool
	// Endpoint describes one end of the selection.
	Endpoint(w Which) (Endpoint, bool)
	// LevelCount returns the length of the level chain at one end.
	LevelCount(w Which) int
	// TextLength returns the rune length of the paragraph contents at one end.
	TextLength(w Which) int
}

// Engine materializes live selections from stored descriptions.
type Engine interface {
	// Materialize builds a selection. Failure is reported as an error wrapping
	// ErrRejected. With install the selection becomes the engine's current one.
	Materialize(anchor, end Endpoint, endExplicit, install bool) (Handle, error)
}

// ParaRef identifies a paragraph by root and level chain.
type ParaRef struct {
	Root   int
	Levels []Level
}

// Key returns a string usable as a map key.
func (p ParaRef) Key() string {
	b := []byte(strconv.Itoa(p.Root))
	for _, lev := range p.Levels {
		b = append(b, '/')
		b = strconv.AppendInt(b, int64(lev.Tag), 10)
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(lev.Index), 10)
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(lev.PrevOccurrences), 10)
	}
	return string(b)
}

// Endpoint returns an endpoint at offset inside the paragraph.
func (p ParaRef) Endpoint(offset int) Endpoint {
	return Endpoint{
		Root:    p.Root,
		Levels:  append([]Level(nil), p.Levels...),
		TextTag: TagContents,
		Offset:  offset,
	}
}

// Path builds a paragraph reference from alternating paragraph and note
// indexes: Path(0, 2) is paragraph 2 of root 0, Path(0, 2, 1, 0) is paragraph 0
// of note 1 of that paragraph.
func Path(root int, indexes ...int) ParaRef {
	ref := ParaRef{Root: root}
	for i, idx := range indexes {
		tag := TagParagraphs
		if i%2 == 1 {
			tag = TagNotes
		}
		ref.Levels = append(ref.Levels, Level{Tag: tag, Index: idx})
	}
	return ref
}

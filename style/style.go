// Package style resolves formatting against named styles. It removes hard
// formatting that merely repeats what a style already provides, applies
// character and paragraph styles, and classifies which style a selection
// represents.
package style

import (
	"github.com/cornish/inkwell/props"
	"github.com/cornish/inkwell/selection"
)

// Kind is the kind of a named style.
type Kind int

const (
	KindCharacter Kind = iota
	KindParagraph
)

// String returns the kind name used in stylesheets.
func (k Kind) String() string {
	if k == KindParagraph {
		return "paragraph"
	}
	return "character"
}

// ClassKind is the outcome of classifying a selection.
type ClassKind int

const (
	ClassAmbiguous ClassKind = iota
	ClassCharacter
	ClassParagraph
)

// Classification names the style a selection represents.
type Classification struct {
	Kind ClassKind
	Name string
}

// String formats the classification for display.
func (c Classification) String() string {
	switch c.Kind {
	case ClassCharacter:
		return c.Name + " (char)"
	case ClassParagraph:
		return c.Name
	default:
		return "(mixed)"
	}
}

// RunInfo describes one run covered by a selection.
type RunInfo struct {
	Props     *props.Set // explicit run properties
	Para      selection.ParaRef
	ParaProps *props.Set // paragraph properties; NamedStyle is the paragraph style
}

// Selection is the part of a live selection the resolver needs.
type Selection interface {
	IsRange() bool
	// Runs returns the covering runs. An insertion point yields its
	// insertion properties as a single run.
	Runs() []RunInfo
	// SetRunProps rewrites the explicit properties of every covered run. On an
	// insertion point it rewrites the insertion properties.
	SetRunProps(fn func(*props.Set) *props.Set) error
	// Paragraphs returns the paragraphs the selection touches, in order.
	Paragraphs() []selection.ParaRef
}

// Document is the part of the document the resolver needs.
type Document interface {
	// Paragraph returns copies of a paragraph's runs and properties.
	Paragraph(ref selection.ParaRef) (props.Runs, *props.Set, error)
	ReplaceParagraph(ref selection.ParaRef, runs props.Runs) error
	SetParagraphStyle(ref selection.ParaRef, name string) error
}

// Catalog knows the named styles and builds derived property contexts.
type Catalog interface {
	Kind(name string) (Kind, bool)
	// BaseContext returns the document-wide defaults.
	BaseContext() *props.Store
	// ParagraphContext overlays a paragraph style onto base.
	ParagraphContext(base *props.Store, name string) *props.Store
	// RunStore returns the values a run with the given character style and
	// writing system derives inside ctx.
	RunStore(ctx *props.Store, charStyle string, ws int) props.Derived
}

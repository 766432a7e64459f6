package style

import (
	"errors"
	"log/slog"

	"github.com/cornish/inkwell/props"
)

// DefaultParagraphStyle is used when no other default is configured.
const DefaultParagraphStyle = "Normal"

// Resolver applies and classifies named styles.
type Resolver struct {
	catalog     Catalog
	defaultPara string
	logger      *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithDefaultParagraphStyle sets the style that stands in for paragraphs
// without one. Empty names are ignored.
func WithDefaultParagraphStyle(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.defaultPara = name
		}
	}
}

// NewResolver creates a resolver over a style catalog.
func NewResolver(catalog Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:     catalog,
		defaultPara: DefaultParagraphStyle,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetCatalog swaps the style catalog, e.g. after a stylesheet reload.
func (r *Resolver) SetCatalog(c Catalog) {
	r.catalog = c
}

// DefaultParagraph returns the default paragraph style name.
func (r *Resolver) DefaultParagraph() string {
	return r.defaultPara
}

// Classify reports the character style shared by every covered run, or
// failing that the paragraph style shared by every touched paragraph.
func (r *Resolver) Classify(doc Document, sel Selection) Classification {
	if name, ok := sharedCharStyle(sel.Runs()); ok {
		return Classification{Kind: ClassCharacter, Name: name}
	}

	refs := sel.Paragraphs()
	if len(refs) == 0 {
		return Classification{Kind: ClassAmbiguous}
	}
	var name string
	for i, ref := range refs {
		_, pp, err := doc.Paragraph(ref)
		if err != nil {
			return Classification{Kind: ClassAmbiguous}
		}
		n := pp.Style()
		if n == "" {
			n = r.defaultPara
		}
		if i == 0 {
			name = n
		} else if n != name {
			return Classification{Kind: ClassAmbiguous}
		}
	}
	return Classification{Kind: ClassParagraph, Name: name}
}

func sharedCharStyle(runs []RunInfo) (string, bool) {
	if len(runs) == 0 {
		return "", false
	}
	name := runs[0].Props.Style()
	if name == "" {
		return "", false
	}
	for _, ri := range runs[1:] {
		if ri.Props.Style() != name {
			return "", false
		}
	}
	return name, true
}

// Apply applies a named style of either kind. Unknown and empty names are
// treated as character styles.
func (r *Resolver) Apply(doc Document, sel Selection, name string) error {
	if kind, ok := r.catalog.Kind(name); ok && name != "" && kind == KindParagraph {
		return r.ApplyParagraphStyle(doc, sel, name)
	}
	return r.ApplyCharacterStyle(sel, name)
}

// ApplyCharacterStyle sets the character style of the covered runs. An empty
// name removes it.
func (r *Resolver) ApplyCharacterStyle(sel Selection, name string) error {
	return sel.SetRunProps(func(p *props.Set) *props.Set {
		if name == "" {
			p.ClearStr(props.NamedStyle)
		} else {
			p.SetStr(props.NamedStyle, name)
		}
		return p
	})
}

// ApplyParagraphStyle sets the style of every touched paragraph and removes
// run formatting the new style makes redundant. The style written is never
// empty.
func (r *Resolver) ApplyParagraphStyle(doc Document, sel Selection, name string) error {
	if name == "" {
		name = r.defaultPara
	}
	ctx := r.catalog.ParagraphContext(r.catalog.BaseContext(), name)

	var errs []error
	for _, ref := range sel.Paragraphs() {
		runs, pp, err := doc.Paragraph(ref)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		changed := false
		for i, run := range runs {
			derived := r.catalog.RunStore(ctx, run.Props.Style(), run.Props.WS())
			if resolved, ok := ResolveRun(run.Props, derived); ok {
				runs[i].Props = resolved
				changed = true
			}
		}
		if changed {
			if err := doc.ReplaceParagraph(ref, runs); err != nil {
				errs = append(errs, err)
			}
		}

		if pp.Style() != name {
			if err := doc.SetParagraphStyle(ref, name); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		r.logger.Warn("paragraph style partly applied",
			slog.String("style", name),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// RemoveCharFormatting clears explicit run formatting, keeping the writing
// system. Unless removeAll is set the character style is kept too.
func (r *Resolver) RemoveCharFormatting(sel Selection, removeAll bool) error {
	return sel.SetRunProps(func(p *props.Set) *props.Set {
		out := props.NewSet()
		if ws, ok := p.Int(props.WritingSystem); ok {
			out.SetInt(props.WritingSystem, ws.Val, ws.Var)
		}
		if name := p.Style(); name != "" && !removeAll {
			out.SetStr(props.NamedStyle, name)
		}
		return out
	})
}

// SetWritingSystem sets the writing system of the covered runs.
func (r *Resolver) SetWritingSystem(sel Selection, ws int) error {
	return sel.SetRunProps(func(p *props.Set) *props.Set {
		p.SetWS(ws)
		return p
	})
}

// Derived returns the values a run with explicit properties p derives inside
// a paragraph of the given style. Explicit values are not applied.
func (r *Resolver) Derived(paraStyle string, p *props.Set) props.Derived {
	if paraStyle == "" {
		paraStyle = r.defaultPara
	}
	ctx := r.catalog.ParagraphContext(r.catalog.BaseContext(), paraStyle)
	return r.catalog.RunStore(ctx, p.Style(), p.WS())
}

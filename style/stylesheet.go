package style

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cornish/inkwell/props"
)

// StyleDef is one named style as written in a stylesheet.
type StyleDef struct {
	Name    string            `toml:"name" yaml:"name" validate:"required"`
	Kind    string            `toml:"kind" yaml:"kind" validate:"omitempty,oneof=character paragraph"`
	BasedOn string            `toml:"based_on,omitempty" yaml:"based_on,omitempty"`
	Ints    map[string]int    `toml:"ints,omitempty" yaml:"ints,omitempty" validate:"omitempty,dive,keys,intprop,endkeys"`
	Strings map[string]string `toml:"strings,omitempty" yaml:"strings,omitempty" validate:"omitempty,dive,keys,strprop,endkeys"`
	WSFonts map[string]string `toml:"ws_fonts,omitempty" yaml:"ws_fonts,omitempty" validate:"omitempty,dive,keys,numeric,endkeys,required"`
}

// BaseDef holds the document-wide defaults.
type BaseDef struct {
	Ints    map[string]int    `toml:"ints,omitempty" yaml:"ints,omitempty" validate:"omitempty,dive,keys,intprop,endkeys"`
	Strings map[string]string `toml:"strings,omitempty" yaml:"strings,omitempty" validate:"omitempty,dive,keys,strprop,endkeys"`
}

// SheetFile is the on-disk stylesheet layout.
type SheetFile struct {
	Defaults BaseDef    `toml:"defaults" yaml:"defaults"`
	Styles   []StyleDef `toml:"style" yaml:"styles" validate:"dive"`
}

// StylesheetError holds details about a stylesheet loading error.
type StylesheetError struct {
	FilePath string
	Err      error
}

func (e *StylesheetError) Error() string {
	if e.FilePath == "" {
		return "stylesheet: " + e.Err.Error()
	}
	return fmt.Sprintf("stylesheet %s: %v", e.FilePath, e.Err)
}

func (e *StylesheetError) Unwrap() error {
	return e.Err
}

var sheetValidate *validator.Validate

func init() {
	sheetValidate = validator.New()
	_ = sheetValidate.RegisterValidation("intprop", func(fl validator.FieldLevel) bool {
		_, ok := props.IntPropByName(fl.Field().String())
		return ok
	})
	_ = sheetValidate.RegisterValidation("strprop", func(fl validator.FieldLevel) bool {
		_, ok := props.StrPropByName(fl.Field().String())
		return ok
	})
}

type compiled struct {
	name    string
	kind    Kind
	basedOn string
	props   *props.Set
	wsFonts map[int]string
}

// Stylesheet is a Catalog backed by style definitions.
type Stylesheet struct {
	base   *props.Store
	styles map[string]*compiled
}

// LoadStylesheet reads a stylesheet. Files ending in .yaml or .yml are read
// as YAML, anything else as TOML.
func LoadStylesheet(path string) (*Stylesheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StylesheetError{FilePath: path, Err: err}
	}
	format := "toml"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	sheet, err := ParseStylesheet(data, format)
	if err != nil {
		var se *StylesheetError
		if errors.As(err, &se) {
			se.FilePath = path
		}
		return nil, err
	}
	return sheet, nil
}

// ParseStylesheet parses stylesheet data in the given format ("toml" or
// "yaml").
func ParseStylesheet(data []byte, format string) (*Stylesheet, error) {
	var file SheetFile
	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, &StylesheetError{Err: err}
		}
	case "toml":
		md, err := toml.Decode(string(data), &file)
		if err != nil {
			return nil, &StylesheetError{Err: err}
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, &StylesheetError{Err: fmt.Errorf("unknown key %q", undecoded[0].String())}
		}
	default:
		return nil, &StylesheetError{Err: fmt.Errorf("unknown format %q", format)}
	}
	return NewStylesheet(file)
}

// NewStylesheet validates and compiles style definitions.
func NewStylesheet(file SheetFile) (*Stylesheet, error) {
	if err := sheetValidate.Struct(file); err != nil {
		return nil, &StylesheetError{Err: err}
	}

	s := &Stylesheet{base: props.NewStore(), styles: make(map[string]*compiled)}
	s.base.Apply(compileProps(file.Defaults.Ints, file.Defaults.Strings))

	for _, def := range file.Styles {
		if _, dup := s.styles[def.Name]; dup {
			return nil, &StylesheetError{Err: fmt.Errorf("style %q defined twice", def.Name)}
		}
		c := &compiled{
			name:    def.Name,
			kind:    KindCharacter,
			basedOn: def.BasedOn,
			props:   compileProps(def.Ints, def.Strings),
			wsFonts: make(map[int]string),
		}
		if def.Kind == "paragraph" {
			c.kind = KindParagraph
		}
		for k, font := range def.WSFonts {
			ws, err := strconv.Atoi(k)
			if err != nil {
				return nil, &StylesheetError{Err: fmt.Errorf("style %q: writing system %q: %w", def.Name, k, err)}
			}
			c.wsFonts[ws] = font
		}
		s.styles[def.Name] = c
	}

	for _, c := range s.styles {
		if _, err := s.chain(c.name); err != nil {
			return nil, &StylesheetError{Err: err}
		}
		if c.basedOn != "" && s.styles[c.basedOn].kind != c.kind {
			return nil, &StylesheetError{Err: fmt.Errorf("style %q: based on %q of another kind", c.name, c.basedOn)}
		}
	}
	return s, nil
}

func compileProps(ints map[string]int, strs map[string]string) *props.Set {
	set := props.NewSet()
	names := make([]string, 0, len(ints))
	for name := range ints {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, _ := props.IntPropByName(name)
		v := ints[name]
		switch p {
		case props.LineHeight:
			set.SetInt(props.LineHeight, v, props.VarMilliPoint)
		case props.RelLineHeight:
			set.SetInt(props.LineHeight, v, props.VarRelative)
		default:
			set.SetInt(p, v, props.VarDefault)
		}
	}
	for name, v := range strs {
		p, _ := props.StrPropByName(name)
		set.SetStr(p, v)
	}
	return set
}

// chain returns the style and its ancestors, outermost ancestor first.
func (s *Stylesheet) chain(name string) ([]*compiled, error) {
	var out []*compiled
	seen := make(map[string]bool)
	for name != "" {
		c, ok := s.styles[name]
		if !ok {
			return nil, fmt.Errorf("unknown style %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("style %q is based on itself", name)
		}
		seen[name] = true
		out = append([]*compiled{c}, out...)
		name = c.basedOn
	}
	return out, nil
}

// Names returns the style names in order.
func (s *Stylesheet) Names() []string {
	names := make([]string, 0, len(s.styles))
	for n := range s.styles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Kind reports the kind of a named style.
func (s *Stylesheet) Kind(name string) (Kind, bool) {
	c, ok := s.styles[name]
	if !ok {
		return KindCharacter, false
	}
	return c.kind, true
}

// BaseContext returns a copy of the document-wide defaults.
func (s *Stylesheet) BaseContext() *props.Store {
	return s.base.Clone()
}

// ParagraphContext overlays a paragraph style and its ancestors onto base.
// The paragraph style name is recorded under props.NamedStyle.
func (s *Stylesheet) ParagraphContext(base *props.Store, name string) *props.Store {
	ctx := base.Clone()
	if c, ok := s.styles[name]; ok && c.kind == KindParagraph {
		chain, _ := s.chain(name)
		for _, link := range chain {
			ctx.Apply(link.props)
		}
	}
	ctx.SetStr(props.NamedStyle, name)
	return ctx
}

// RunStore overlays a character style and the font chosen for the writing
// system onto ctx.
func (s *Stylesheet) RunStore(ctx *props.Store, charStyle string, ws int) props.Derived {
	out := ctx.Clone()
	var charChain []*compiled
	if c, ok := s.styles[charStyle]; ok && c.kind == KindCharacter {
		charChain, _ = s.chain(charStyle)
		for _, link := range charChain {
			out.Apply(link.props)
		}
	}
	paraChain, _ := s.chain(ctx.Str(props.NamedStyle))
	if font, ok := wsFont(charChain, ws); ok {
		out.SetStr(props.FontFamily, font)
	} else if font, ok := wsFont(paraChain, ws); ok {
		out.SetStr(props.FontFamily, font)
	}
	return out
}

// wsFont finds the innermost font override for ws.
func wsFont(chain []*compiled, ws int) (string, bool) {
	for i := len(chain) - 1; i >= 0; i-- {
		if font, ok := chain[i].wsFonts[ws]; ok {
			return font, true
		}
	}
	return "", false
}

// DefaultStylesheet returns the built-in styles.
func DefaultStylesheet() *Stylesheet {
	s, err := NewStylesheet(SheetFile{
		Defaults: BaseDef{
			Strings: map[string]string{"font_family": "Charis SIL"},
		},
		Styles: []StyleDef{
			{
				Name: "Normal", Kind: "paragraph",
				Ints:    map[string]int{"space_after": 6000},
				WSFonts: map[string]string{"2": "Scheherazade New"},
			},
			{
				Name: "Heading 1", Kind: "paragraph", BasedOn: "Normal",
				Ints:    map[string]int{"bold": props.ToggleOn, "space_before": 12000},
				Strings: map[string]string{"font_family": "Andika"},
			},
			{
				Name: "Quote", Kind: "paragraph", BasedOn: "Normal",
				Ints: map[string]int{"italic": props.ToggleOn, "leading_indent": 36000, "trailing_indent": 36000},
			},
			{Name: "Emphasis", Kind: "character", Ints: map[string]int{"italic": props.ToggleOn}},
			{Name: "Strong", Kind: "character", Ints: map[string]int{"bold": props.ToggleOn}},
		},
	})
	if err != nil {
		panic(err)
	}
	return s
}

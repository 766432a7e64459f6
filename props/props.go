// Package props defines the text property vocabulary shared by the selection,
// style and editing packages: property tags, explicit ("hard") property sets,
// derived ("soft") property stores and formatted runs.
package props

import (
	"errors"
	"sort"
)

// ErrOutOfRange is returned when a property, run or character index falls
// outside the text it addresses.
var ErrOutOfRange = errors.New("property index out of range")

// Unset marks an integer property that carries no value.
const Unset = -1

// Toggle values for bold, italic, underline and superscript.
const (
	ToggleOff    = 0
	ToggleOn     = 1
	ToggleInvert = 2
)

// SingleSpacing is the relative line height of single spacing.
const SingleSpacing = 10000

// Variation is the unit an integer property value is expressed in.
type Variation int

const (
	VarDefault    Variation = iota // No unit (colors, counters)
	VarEnum                        // Enumerated value (toggles, alignment)
	VarMilliPoint                  // Absolute length in 1/1000 point
	VarRelative                    // Relative value, 10000 = 1.0
)

// String returns the variation name.
func (v Variation) String() string {
	switch v {
	case VarDefault:
		return "default"
	case VarEnum:
		return "enum"
	case VarMilliPoint:
		return "mpt"
	case VarRelative:
		return "relative"
	default:
		return "unknown"
	}
}

// IntProp identifies an integer text property.
type IntProp int

const (
	Bold IntProp = iota + 1
	Italic
	Underline
	Superscript
	Align
	FirstIndent
	LeadingIndent
	TrailingIndent
	MarginTop
	SpaceBefore
	SpaceAfter
	LineHeight
	RelLineHeight
	BorderTop
	BorderBottom
	BorderLeading
	BorderTrailing
	PadTop
	PadBottom
	PadLeading
	PadTrailing
	ForeColor
	BackColor
	UnderColor
	BorderColor
	BulletStartAt
	WritingSystem
)

var intNames = map[IntProp]string{
	Bold:           "bold",
	Italic:         "italic",
	Underline:      "underline",
	Superscript:    "superscript",
	Align:          "align",
	FirstIndent:    "first_indent",
	LeadingIndent:  "leading_indent",
	TrailingIndent: "trailing_indent",
	MarginTop:      "margin_top",
	SpaceBefore:    "space_before",
	SpaceAfter:     "space_after",
	LineHeight:     "line_height",
	RelLineHeight:  "rel_line_height",
	BorderTop:      "border_top",
	BorderBottom:   "border_bottom",
	BorderLeading:  "border_leading",
	BorderTrailing: "border_trailing",
	PadTop:         "pad_top",
	PadBottom:      "pad_bottom",
	PadLeading:     "pad_leading",
	PadTrailing:    "pad_trailing",
	ForeColor:      "fore_color",
	BackColor:      "back_color",
	UnderColor:     "under_color",
	BorderColor:    "border_color",
	BulletStartAt:  "bullet_start_at",
	WritingSystem:  "ws",
}

// String returns the property's configuration name.
func (p IntProp) String() string {
	if n, ok := intNames[p]; ok {
		return n
	}
	return "unknown"
}

// IntPropByName looks up an integer property by its configuration name.
func IntPropByName(name string) (IntProp, bool) {
	for p, n := range intNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}

// StrProp identifies a string text property.
type StrProp int

const (
	FontFamily StrProp = iota + 1
	WsStyle
	FontVariations
	BulletTextBefore
	BulletTextAfter
	BulletFontInfo
	NamedStyle
)

var strNames = map[StrProp]string{
	FontFamily:       "font_family",
	WsStyle:          "ws_style",
	FontVariations:   "font_variations",
	BulletTextBefore: "bullet_text_before",
	BulletTextAfter:  "bullet_text_after",
	BulletFontInfo:   "bullet_font_info",
	NamedStyle:       "style",
}

// String returns the property's configuration name.
func (p StrProp) String() string {
	if n, ok := strNames[p]; ok {
		return n
	}
	return "unknown"
}

// StrPropByName looks up a string property by its configuration name.
func StrPropByName(name string) (StrProp, bool) {
	for p, n := range strNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}

// IntValue is an integer property value together with its unit.
type IntValue struct {
	Val int
	Var Variation
}

// Set holds the explicit ("hard") properties of a run or paragraph.
// A nil *Set reads as empty.
type Set struct {
	ints map[IntProp]IntValue
	strs map[StrProp]string
}

// NewSet creates an empty property set.
func NewSet() *Set {
	return &Set{
		ints: make(map[IntProp]IntValue),
		strs: make(map[StrProp]string),
	}
}

// Int returns the explicit value of p.
func (s *Set) Int(p IntProp) (IntValue, bool) {
	if s == nil {
		return IntValue{Val: Unset}, false
	}
	v, ok := s.ints[p]
	if !ok {
		return IntValue{Val: Unset}, false
	}
	return v, true
}

// SetInt sets an explicit integer value.
func (s *Set) SetInt(p IntProp, val int, v Variation) {
	if s.ints == nil {
		s.ints = make(map[IntProp]IntValue)
	}
	s.ints[p] = IntValue{Val: val, Var: v}
}

// ClearInt removes p, leaving it unset.
func (s *Set) ClearInt(p IntProp) {
	delete(s.ints, p)
}

// Str returns the explicit value of p.
func (s *Set) Str(p StrProp) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.strs[p]
	return v, ok
}

// SetStr sets an explicit string value.
func (s *Set) SetStr(p StrProp, val string) {
	if s.strs == nil {
		s.strs = make(map[StrProp]string)
	}
	s.strs[p] = val
}

// ClearStr removes p, leaving it unset.
func (s *Set) ClearStr(p StrProp) {
	delete(s.strs, p)
}

// WS returns the writing system, or 0 when none is set.
func (s *Set) WS() int {
	if v, ok := s.Int(WritingSystem); ok {
		return v.Val
	}
	return 0
}

// SetWS sets the writing system.
func (s *Set) SetWS(ws int) {
	s.SetInt(WritingSystem, ws, VarDefault)
}

// Style returns the named style, or "" when none is set.
func (s *Set) Style() string {
	v, _ := s.Str(NamedStyle)
	return v
}

// IntProps returns the integer properties present, in tag order.
func (s *Set) IntProps() []IntProp {
	if s == nil {
		return nil
	}
	out := make([]IntProp, 0, len(s.ints))
	for p := range s.ints {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StrProps returns the string properties present, in tag order.
func (s *Set) StrProps() []StrProp {
	if s == nil {
		return nil
	}
	out := make([]StrProp, 0, len(s.strs))
	for p := range s.strs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of properties present.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ints) + len(s.strs)
}

// Clone returns a deep copy. Cloning nil yields an empty set.
func (s *Set) Clone() *Set {
	c := NewSet()
	if s == nil {
		return c
	}
	for p, v := range s.ints {
		c.ints[p] = v
	}
	for p, v := range s.strs {
		c.strs[p] = v
	}
	return c
}

// Equal reports whether both sets carry exactly the same properties.
func (s *Set) Equal(o *Set) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, p := range s.IntProps() {
		a, _ := s.Int(p)
		b, ok := o.Int(p)
		if !ok || a != b {
			return false
		}
	}
	for _, p := range s.StrProps() {
		a, _ := s.Str(p)
		b, ok := o.Str(p)
		if !ok || a != b {
			return false
		}
	}
	return true
}

package style

import "github.com/cornish/inkwell/props"

// Integer properties compared by ResolveRun, grouped by the unit their derived
// values carry.
var (
	enumProps = []props.IntProp{
		props.Bold, props.Italic, props.Underline, props.Superscript, props.Align,
	}
	lengthProps = []props.IntProp{
		props.FirstIndent, props.LeadingIndent, props.TrailingIndent, props.MarginTop,
		props.SpaceBefore, props.SpaceAfter,
		props.BorderTop, props.BorderBottom, props.BorderLeading, props.BorderTrailing,
		props.PadTop, props.PadBottom, props.PadLeading, props.PadTrailing,
	}
	plainProps = []props.IntProp{
		props.ForeColor, props.BackColor, props.UnderColor, props.BorderColor, props.BulletStartAt,
	}
	stringProps = []props.StrProp{
		props.FontFamily, props.WsStyle, props.FontVariations,
		props.BulletTextBefore, props.BulletTextAfter, props.BulletFontInfo,
	}
)

// DerivedValue returns the value and unit a run derives for p.
func DerivedValue(p props.IntProp, derived props.Derived) props.IntValue {
	switch {
	case p == props.LineHeight:
		return derivedLineHeight(derived)
	case contains(enumProps, p):
		return props.IntValue{Val: derived.Int(p), Var: props.VarEnum}
	case contains(lengthProps, p):
		return props.IntValue{Val: derived.Int(p), Var: props.VarMilliPoint}
	default:
		return props.IntValue{Val: derived.Int(p), Var: props.VarDefault}
	}
}

// derivedLineHeight prefers a relative height. Without one, an unset absolute
// height means single spacing.
func derivedLineHeight(derived props.Derived) props.IntValue {
	if rel := derived.Int(props.RelLineHeight); rel != 0 && rel != props.Unset {
		return props.IntValue{Val: rel, Var: props.VarRelative}
	}
	abs := derived.Int(props.LineHeight)
	if abs == props.Unset {
		return props.IntValue{Val: props.SingleSpacing, Var: props.VarRelative}
	}
	return props.IntValue{Val: abs, Var: props.VarMilliPoint}
}

func contains(list []props.IntProp, p props.IntProp) bool {
	for _, q := range list {
		if q == p {
			return true
		}
	}
	return false
}

// ResolveRun removes explicit properties that equal what the run already
// derives. It returns a new set and true when anything was removed, and
// explicit itself and false otherwise. An inverting bold or italic is never
// removed.
func ResolveRun(explicit *props.Set, derived props.Derived) (*props.Set, bool) {
	out := explicit.Clone()
	changed := false

	for _, group := range [][]props.IntProp{enumProps, lengthProps, {props.LineHeight}, plainProps} {
		for _, p := range group {
			v, ok := explicit.Int(p)
			if !ok {
				continue
			}
			if (p == props.Bold || p == props.Italic) && v.Val == props.ToggleInvert {
				continue
			}
			if v == DerivedValue(p, derived) {
				out.ClearInt(p)
				changed = true
			}
		}
	}

	for _, p := range stringProps {
		v, ok := explicit.Str(p)
		if ok && v == derived.Str(p) {
			out.ClearStr(p)
			changed = true
		}
	}

	if !changed {
		return explicit, false
	}
	return out, true
}

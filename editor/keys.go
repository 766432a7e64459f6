package editor

// Key identifies a key that is not plain character input.
type Key int

const (
	KeyRune Key = iota
	KeyBackspace
	KeyDelete
	KeyEnter
	KeyTab
	KeyEscape
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown
)

// Mod is a set of modifier keys.
type Mod int

const (
	ModShift Mod = 1 << iota
	ModCtrl
	ModAlt
)

// KeyEvent is one key press.
type KeyEvent struct {
	Key  Key
	Rune rune // Set for KeyRune
	Mods Mod
}

// Char returns the character the event types, if any.
func (k KeyEvent) Char() (rune, bool) {
	if k.Mods&(ModCtrl|ModAlt) != 0 {
		return 0, false
	}
	switch k.Key {
	case KeyRune:
		return k.Rune, true
	case KeyBackspace:
		return charBackspace, true
	case KeyEnter:
		return charBreak, true
	case KeyTab:
		return '\t', true
	}
	return 0, false
}

func (k KeyEvent) navigation() bool {
	switch k.Key {
	case KeyLeft, KeyRight, KeyUp, KeyDown, KeyHome, KeyEnd, KeyPgUp, KeyPgDown:
		return true
	}
	return false
}

// HandleKeyDown handles command keys. It reports whether the key was
// consumed; navigation keys drop any pending burst and are left to the host.
func (e *Editor) HandleKeyDown(ev KeyEvent) (bool, error) {
	if ev.navigation() {
		e.Discard()
		return false, nil
	}

	if ev.Mods&ModCtrl != 0 && ev.Key == KeyRune {
		switch ev.Rune {
		case 'c':
			return e.Copy(), nil
		case 'x':
			return e.Cut()
		case 'v':
			return e.Paste()
		case 'z':
			return true, e.Undo()
		case 'y':
			return true, e.Redo()
		}
		return false, nil
	}

	if ev.Key == KeyDelete && ev.Mods == 0 {
		return true, e.Delete()
	}
	return false, nil
}

// Focus tracks which editor receives input. Editors sharing a Focus drop
// their pending input when they lose it.
type Focus struct {
	owner *Editor
}

// Acquire gives e the focus.
func (f *Focus) Acquire(e *Editor) {
	if f.owner == e {
		return
	}
	if f.owner != nil {
		f.owner.Discard()
	}
	f.owner = e
}

// Release takes the focus from e if it holds it.
func (f *Focus) Release(e *Editor) {
	if f.owner != e {
		return
	}
	e.Discard()
	f.owner = nil
}

// Owner returns the focused editor, or nil.
func (f *Focus) Owner() *Editor {
	return f.owner
}

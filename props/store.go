package props

// Derived is a read-only view of the values a run would carry from style and
// context alone. Integer lookups of unknown properties return Unset.
type Derived interface {
	Int(p IntProp) int
	Str(p StrProp) string
}

// Store is a mutable derived property store.
type Store struct {
	ints map[IntProp]int
	strs map[StrProp]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		ints: make(map[IntProp]int),
		strs: make(map[StrProp]string),
	}
}

// Int returns the value of p, or Unset.
func (s *Store) Int(p IntProp) int {
	if s == nil {
		return Unset
	}
	if v, ok := s.ints[p]; ok {
		return v
	}
	return Unset
}

// Str returns the value of p, or "".
func (s *Store) Str(p StrProp) string {
	if s == nil {
		return ""
	}
	return s.strs[p]
}

// SetInt stores an integer value.
func (s *Store) SetInt(p IntProp, v int) {
	s.ints[p] = v
}

// SetStr stores a string value.
func (s *Store) SetStr(p StrProp, v string) {
	s.strs[p] = v
}

// Clone returns a deep copy.
func (s *Store) Clone() *Store {
	c := NewStore()
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

// Apply overlays explicit values onto the store. Relative line heights are
// stored under RelLineHeight so absolute and relative heights stay apart.
func (s *Store) Apply(set *Set) {
	for _, p := range set.IntProps() {
		v, _ := set.Int(p)
		if p == LineHeight && v.Var == VarRelative {
			s.ints[RelLineHeight] = v.Val
			delete(s.ints, LineHeight)
			continue
		}
		if p == LineHeight {
			delete(s.ints, RelLineHeight)
		}
		s.ints[p] = v.Val
	}
	for _, p := range set.StrProps() {
		v, _ := set.Str(p)
		s.strs[p] = v
	}
}

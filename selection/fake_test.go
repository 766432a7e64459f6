package selection

import "fmt"

// fakeEngine knows a set of paragraphs and their lengths.
type fakeEngine struct {
	lengths   map[string]int
	gen       int
	installed *fakeHandle
	panics    bool
	calls     int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{lengths: make(map[string]int)}
}

func (e *fakeEngine) addPara(ref ParaRef, length int) {
	e.lengths[ref.Key()] = length
}

func (e *fakeEngine) mutate() {
	e.gen++
}

func (e *fakeEngine) check(ep Endpoint) error {
	n, ok := e.lengths[ep.Para().Key()]
	if !ok {
		return fmt.Errorf("no paragraph %s: %w", ep.Para().Key(), ErrRejected)
	}
	if ep.Offset < 0 || ep.Offset > n {
		return fmt.Errorf("offset %d of %d: %w", ep.Offset, n, ErrRejected)
	}
	return nil
}

func (e *fakeEngine) Materialize(anchor, end Endpoint, endExplicit, install bool) (Handle, error) {
	e.calls++
	if e.panics {
		panic("engine disposed")
	}
	if err := e.check(anchor); err != nil {
		return nil, err
	}
	if endExplicit {
		if err := e.check(end); err != nil {
			return nil, err
		}
	}
	h := &fakeHandle{eng: e, gen: e.gen, anchor: anchor.Clone(), end: anchor.Clone()}
	if endExplicit {
		h.end = end.Clone()
		h.explicit = true
	}
	if install {
		e.installed = h
	}
	return h, nil
}

type fakeHandle struct {
	eng         *fakeEngine
	gen         int
	anchor, end Endpoint
	explicit    bool
}

func (h *fakeHandle) Valid() bool { return h.gen == h.eng.gen }

func (h *fakeHandle) IsRange() bool {
	return h.explicit && !h.anchor.SamePosition(h.end)
}

func (h *fakeHandle) Endpoint(w Which) (Endpoint, bool) {
	if !h.Valid() {
		return Endpoint{}, false
	}
	if w == End && h.explicit {
		return h.end.Clone(), true
	}
	return h.anchor.Clone(), true
}

func (h *fakeHandle) LevelCount(w Which) int {
	ep, _ := h.Endpoint(w)
	return len(ep.Levels)
}

func (h *fakeHandle) TextLength(w Which) int {
	ep, _ := h.Endpoint(w)
	return h.eng.lengths[ep.Para().Key()]
}

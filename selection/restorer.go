package selection

import (
	"fmt"
	"log/slog"
)

// Tier records which fallback produced a restored selection.
type Tier int

const (
	TierExact     Tier = iota + 1 // Both endpoints as given
	TierCollapsed                 // Insertion point at the anchor
	TierSwapped                   // Insertion point at the top endpoint
	TierClamped                   // Anchor paragraph, offset clamped to its end
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierCollapsed:
		return "collapsed"
	case TierSwapped:
		return "swapped"
	case TierClamped:
		return "clamped"
	default:
		return "none"
	}
}

// Result is a restored selection.
type Result struct {
	Handle   Handle
	Snapshot Snapshot
	Tier     Tier
}

// Restorer rebuilds live selections from possibly stale snapshots.
type Restorer struct {
	engine Engine
	logger *slog.Logger
}

// RestorerOption configures a Restorer.
type RestorerOption func(*Restorer)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *slog.Logger) RestorerOption {
	return func(r *Restorer) {
		r.logger = l
	}
}

// NewRestorer creates a restorer for the given engine.
func NewRestorer(engine Engine, opts ...RestorerOption) *Restorer {
	r := &Restorer{engine: engine, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Restore materializes the best selection still available for s, trying each
// tier in turn. It reports false when no tier succeeds and never panics.
func (r *Restorer) Restore(s Snapshot, install bool) (Result, bool) {
	if r.engine == nil {
		return Result{}, false
	}

	if res, ok := r.try(TierExact, s.Anchor, s.Endpoint(End), s.EndExplicit, install); ok {
		return res, true
	}

	if res, ok := r.try(TierCollapsed, s.Anchor, s.Anchor, false, install); ok {
		return res, true
	}

	if s.EndExplicit {
		if c, err := Compare(s.Anchor, s.End); err == nil {
			low := s.Anchor
			if c > 0 {
				low = s.End
			}
			if res, ok := r.try(TierSwapped, low, low, false, install); ok {
				return res, true
			}
		}
	}

	start := s.Anchor.Clone()
	start.Offset = 0
	start.AssocPrev = false
	if res, ok := r.try(TierClamped, start, start, false, false); ok {
		end := start
		end.Offset = res.Handle.TextLength(Anchor)
		end.AssocPrev = end.Offset > 0
		if probed, ok := r.try(TierClamped, end, end, false, install); ok {
			return probed, true
		}
		if install {
			if res, ok := r.try(TierClamped, start, start, false, true); ok {
				return res, true
			}
			return Result{}, false
		}
		return res, true
	}

	r.logger.Debug("selection could not be restored",
		slog.Int("root", s.Anchor.Root),
		slog.Int("levels", len(s.Anchor.Levels)),
		slog.Int("offset", s.Anchor.Offset))
	return Result{}, false
}

func (r *Restorer) try(tier Tier, anchor, end Endpoint, endExplicit, install bool) (res Result, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Debug("engine panicked while materializing",
				slog.String("tier", tier.String()),
				slog.String("panic", fmt.Sprint(p)))
			res, ok = Result{}, false
		}
	}()

	h, err := r.engine.Materialize(anchor, end, endExplicit, install)
	if err != nil || h == nil || !h.Valid() {
		if err != nil {
			r.logger.Debug("materialize failed",
				slog.String("tier", tier.String()),
				slog.String("error", err.Error()))
		}
		return Result{}, false
	}
	snap, captured := Capture(h)
	if !captured {
		return Result{}, false
	}
	return Result{Handle: h, Snapshot: snap, Tier: tier}, true
}

package rotation

import (
	"time"

	"github.com/calebrowe/weaver/internal/game/action"
)

// ComboTracker owns the single-target combo state machine for a rotation:
// idle → step1 → ... → finisher, each transition gated by the chain's
// previous action having been the last one executed. The tracker lives on
// the rotation, not the handler, because handlers are re-evaluated fresh
// each tick.
type ComboTracker struct {
	chain   []action.ID
	index   int
	lastAt  time.Time
	timeout time.Duration
}

// NewComboTracker creates a tracker for the given ordered chain.
//
// Precondition: chain must have at least 2 actions; timeout must be > 0.
func NewComboTracker(chain []action.ID, timeout time.Duration) *ComboTracker {
	if len(chain) < 2 {
		panic("rotation.NewComboTracker: precondition violated: chain must have at least 2 actions")
	}
	if timeout <= 0 {
		panic("rotation.NewComboTracker: precondition violated: timeout must be > 0")
	}
	return &ComboTracker{chain: chain, timeout: timeout}
}

// Next returns the action that continues (or starts) the combo. An expired
// combo resets to the chain opener.
func (t *ComboTracker) Next(now time.Time) action.ID {
	if t.expired(now) {
		t.index = 0
	}
	return t.chain[t.index]
}

// InFlight reports whether a combo is mid-chain (past the opener and not
// expired).
func (t *ComboTracker) InFlight(now time.Time) bool {
	return t.index > 0 && !t.expired(now)
}

// Advance records that id was executed at now. Executing the expected chain
// action moves to the next step; the finisher, or any off-chain action,
// resets to idle; the opener always restarts the chain.
func (t *ComboTracker) Advance(id action.ID, now time.Time) {
	switch {
	case !t.expired(now) && id == t.chain[t.index]:
		t.index++
		if t.index == len(t.chain) {
			t.index = 0
		}
	case id == t.chain[0]:
		t.index = 1
	default:
		t.index = 0
	}
	t.lastAt = now
}

func (t *ComboTracker) expired(now time.Time) bool {
	return t.index > 0 && now.Sub(t.lastAt) > t.timeout
}

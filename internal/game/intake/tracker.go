// Package intake tracks HP-loss and HP-gain events per entity over a rolling
// window and answers the point-in-time damage-rate, trend, and
// spike-imminence queries the decision handlers gate on. The Tracker is the
// only cross-tick state in the engine besides the pending-heal ledger.
package intake

import (
	"time"

	"github.com/calebrowe/weaver/internal/game/actor"
)

// Event is one observed HP change.
type Event struct {
	Amount int
	At     time.Time
}

// Tracker maintains bounded rolling buffers of damage and healing events per
// entity. It is not safe for concurrent use; the engine's single-threaded
// tick discipline serialises access.
type Tracker struct {
	window  time.Duration
	damage  map[actor.ID][]Event
	healing map[actor.ID][]Event
}

// NewTracker creates a Tracker with the given rolling window.
//
// Precondition: window must be > 0.
// Postcondition: Returns a non-nil Tracker with empty buffers.
func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		panic("intake.NewTracker: precondition violated: window must be > 0")
	}
	return &Tracker{
		window:  window,
		damage:  make(map[actor.ID][]Event),
		healing: make(map[actor.ID][]Event),
	}
}

// Window returns the configured rolling window.
func (t *Tracker) Window() time.Duration { return t.window }

// RecordDamage appends an HP-loss event for id.
//
// Precondition: amount must be > 0; events must be recorded in
// non-decreasing time order per entity.
func (t *Tracker) RecordDamage(id actor.ID, amount int, at time.Time) {
	if amount <= 0 {
		return
	}
	t.damage[id] = appendPruned(t.damage[id], Event{Amount: amount, At: at}, at, t.window)
}

// RecordHealing appends an HP-gain event for id.
func (t *Tracker) RecordHealing(id actor.ID, amount int, at time.Time) {
	if amount <= 0 {
		return
	}
	t.healing[id] = appendPruned(t.healing[id], Event{Amount: amount, At: at}, at, t.window)
}

// DamageRate returns the damage per second taken by id over the window
// ending at now.
//
// Postcondition: Returns 0 for entities with no recorded damage in window.
func (t *Tracker) DamageRate(id actor.ID, now time.Time) float64 {
	return rateSince(t.damage[id], now.Add(-t.window), t.window.Seconds())
}

// HealingRate returns the healing per second received by id over the window
// ending at now.
func (t *Tracker) HealingRate(id actor.ID, now time.Time) float64 {
	return rateSince(t.healing[id], now.Add(-t.window), t.window.Seconds())
}

// Trend returns the damage-rate acceleration for id: the rate over the most
// recent half-window minus the rate over the older half. Positive values
// mean incoming damage is increasing.
func (t *Tracker) Trend(id actor.ID, now time.Time) float64 {
	half := t.window / 2
	halfSec := half.Seconds()
	recent := rateSince(t.damage[id], now.Add(-half), halfSec)
	older := rateBetween(t.damage[id], now.Add(-t.window), now.Add(-half), halfSec)
	return recent - older
}

// SpikeImminent reports whether id's recent-half damage rate exceeds
// multiplier times its whole-window rate. Entities with a whole-window rate
// below minRate never register a spike (avoids flagging trivial chip damage).
//
// Precondition: multiplier must be >= 1.
func (t *Tracker) SpikeImminent(id actor.ID, now time.Time, multiplier, minRate float64) bool {
	whole := t.DamageRate(id, now)
	if whole < minRate {
		return false
	}
	half := t.window / 2
	recent := rateSince(t.damage[id], now.Add(-half), half.Seconds())
	return recent > whole*multiplier
}

// Prune evicts events older than the window for every tracked entity.
// Called once per tick by the scheduler; Record* calls also prune their own
// entity's buffer, so Prune only matters for entities no longer taking
// damage.
func (t *Tracker) Prune(now time.Time) {
	cutoff := now.Add(-t.window)
	for id, evs := range t.damage {
		kept := pruneBefore(evs, cutoff)
		if len(kept) == 0 {
			delete(t.damage, id)
			continue
		}
		t.damage[id] = kept
	}
	for id, evs := range t.healing {
		kept := pruneBefore(evs, cutoff)
		if len(kept) == 0 {
			delete(t.healing, id)
			continue
		}
		t.healing[id] = kept
	}
}

// appendPruned drops events older than window relative to now, then appends ev.
func appendPruned(evs []Event, ev Event, now time.Time, window time.Duration) []Event {
	kept := pruneBefore(evs, now.Add(-window))
	return append(kept, ev)
}

// pruneBefore returns the suffix of evs at or after cutoff. Events are in
// time order, so this is a single scan for the first kept index.
func pruneBefore(evs []Event, cutoff time.Time) []Event {
	first := len(evs)
	for i := range evs {
		if !evs[i].At.Before(cutoff) {
			first = i
			break
		}
	}
	if first == 0 {
		return evs
	}
	return append(evs[:0:0], evs[first:]...)
}

// rateSince sums amounts at or after cutoff and divides by spanSeconds.
func rateSince(evs []Event, cutoff time.Time, spanSeconds float64) float64 {
	if spanSeconds <= 0 {
		return 0
	}
	total := 0
	for i := range evs {
		if evs[i].At.Before(cutoff) {
			continue
		}
		total += evs[i].Amount
	}
	return float64(total) / spanSeconds
}

// rateBetween sums amounts in [from, to) and divides by spanSeconds.
func rateBetween(evs []Event, from, to time.Time, spanSeconds float64) float64 {
	if spanSeconds <= 0 {
		return 0
	}
	total := 0
	for i := range evs {
		if evs[i].At.Before(from) || !evs[i].At.Before(to) {
			continue
		}
		total += evs[i].Amount
	}
	return float64(total) / spanSeconds
}

// Package predict maintains the pending-heal ledger: heals a handler has
// committed to but the host has not yet confirmed. Predicted HP (actual HP
// plus pending heals) is what overheal-avoidance decisions gate on.
//
// Ownership contract: the registering handler and the scheduler share the
// ledger through explicit calls. A handler registers before executing and
// MUST roll back its registration if the execute primitive fails. The
// scheduler reconciles observed HP gains against pending entries
// incrementally; an entry clears only once cumulative observed gain covers
// its amount, so a regen tick never wipes a heal still in flight. There is
// no automatic expiry beyond the stale-tick safety valve.
package predict

import "github.com/calebrowe/weaver/internal/game/actor"

// Receipt identifies one registration for rollback.
type Receipt struct {
	target actor.ID
	serial uint64
}

type entry struct {
	serial uint64
	amount int
	tick   uint64
}

// Ledger tracks pending heal amounts per target. It is not safe for
// concurrent use; the single-threaded tick discipline serialises access.
type Ledger struct {
	pending map[actor.ID][]entry
	serial  uint64
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{pending: make(map[actor.ID][]entry)}
}

// Register records a pending heal of amount on target at tick and returns a
// Receipt the caller must use to roll back on a failed cast.
//
// Precondition: amount must be > 0.
func (l *Ledger) Register(target actor.ID, amount int, tick uint64) Receipt {
	if amount <= 0 {
		panic("predict.Ledger.Register: precondition violated: amount must be > 0")
	}
	l.serial++
	l.pending[target] = append(l.pending[target], entry{serial: l.serial, amount: amount, tick: tick})
	return Receipt{target: target, serial: l.serial}
}

// Rollback removes the registration identified by r. Rolling back an
// already-cleared receipt is a no-op.
//
// Postcondition: the ledger no longer contains r's registration.
func (l *Ledger) Rollback(r Receipt) {
	evs := l.pending[r.target]
	for i := range evs {
		if evs[i].serial == r.serial {
			l.pending[r.target] = append(evs[:i], evs[i+1:]...)
			break
		}
	}
	if len(l.pending[r.target]) == 0 {
		delete(l.pending, r.target)
	}
}

// MarkLanded reconciles an observed HP gain against target's pending heals,
// oldest registration first. An entry clears only once cumulative observed
// gain covers its full amount; a smaller gain (a regen or HoT tick) reduces
// the oldest entry and leaves the rest in flight, so one committed heal is
// never credited as landed by an unrelated trickle of healing.
//
// Precondition: observed must be > 0.
func (l *Ledger) MarkLanded(target actor.ID, observed int) {
	if observed <= 0 {
		panic("predict.Ledger.MarkLanded: precondition violated: observed must be > 0")
	}
	evs := l.pending[target]
	kept := evs[:0]
	for _, e := range evs {
		if observed >= e.amount {
			observed -= e.amount
			continue
		}
		e.amount -= observed
		observed = 0
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		delete(l.pending, target)
		return
	}
	l.pending[target] = kept
}

// ExpireStale clears registrations older than maxAge ticks. This is a safety
// valve for casts the host silently dropped (target died mid-cast, server
// rejection after the optimistic true return); without it a ghost pending
// heal would suppress real healing indefinitely.
func (l *Ledger) ExpireStale(currentTick uint64, maxAge uint64) {
	for target, evs := range l.pending {
		kept := evs[:0]
		for _, e := range evs {
			if currentTick-e.tick <= maxAge {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(l.pending, target)
			continue
		}
		l.pending[target] = kept
	}
}

// Pending returns the total pending heal amount for target.
func (l *Ledger) Pending(target actor.ID) int {
	total := 0
	for _, e := range l.pending[target] {
		total += e.amount
	}
	return total
}

// Count returns the number of registrations across all targets.
func (l *Ledger) Count() int {
	n := 0
	for _, evs := range l.pending {
		n += len(evs)
	}
	return n
}

// PredictedHP returns current HP plus pending heals, capped at max HP.
//
// Postcondition: Returns a value in [currentHP, maxHP] when currentHP <= maxHP.
func (l *Ledger) PredictedHP(target actor.ID, currentHP, maxHP int) int {
	hp := currentHP + l.Pending(target)
	if hp > maxHP {
		return maxHP
	}
	return hp
}

// PredictedHPFraction returns PredictedHP as a fraction of max HP.
//
// Postcondition: Returns 0 when maxHP <= 0.
func (l *Ledger) PredictedHPFraction(target actor.ID, currentHP, maxHP int) float64 {
	if maxHP <= 0 {
		return 0
	}
	return float64(l.PredictedHP(target, currentHP, maxHP)) / float64(maxHP)
}

// PredictedMissing returns the missing HP after pending heals land.
//
// Postcondition: Returns >= 0.
func (l *Ledger) PredictedMissing(target actor.ID, currentHP, maxHP int) int {
	missing := maxHP - l.PredictedHP(target, currentHP, maxHP)
	if missing < 0 {
		return 0
	}
	return missing
}

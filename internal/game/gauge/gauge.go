// Package gauge derives per-job resource state (stack counters, proc flags,
// charge counts) from the authoritative status and cooldown snapshot. Gauges
// are recomputed fresh every tick and never cached across ticks; handlers
// read them and issue actions, which implicitly changes the next tick's
// derived value.
package gauge

import (
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
)

// Status effects the gauges and handlers key on.
const (
	// Sage.
	StatusSeal     actor.StatusID = "sage.seal"     // stacking heal resource, consumed by Sealburst
	StatusFreecast actor.StatusID = "sage.freecast" // next casted spell is instant
	StatusSoothe   actor.StatusID = "sage.soothe"   // HoT presence on the target
	StatusClarity  actor.StatusID = "sage.clarity"  // MP regen
	StatusBlight   actor.StatusID = "sage.blight"   // damage DoT on the enemy

	// Warden.
	StatusLastStand  actor.StatusID = "warden.last_stand"
	StatusUndying    actor.StatusID = "warden.undying" // must be healed to live
	StatusBulwark    actor.StatusID = "warden.bulwark"
	StatusSentinel   actor.StatusID = "warden.sentinel"
	StatusRampart    actor.StatusID = "warden.rampart"
	StatusIronhide   actor.StatusID = "warden.ironhide"
	StatusReprisal   actor.StatusID = "warden.reprisal"
	StatusBloodsworn actor.StatusID = "warden.bloodsworn"

	// Reaver.
	StatusVenom actor.StatusID = "reaver.venom" // damage DoT on the enemy

	// Shields, any source. Stacks encode absorb amount in hundreds of HP so
	// triage can compute shield-adjusted effective HP.
	StatusBarrier actor.StatusID = "shield.barrier"
)

// SealsMax is the sage's seal-stack cap.
const SealsMax = 3

// Sage is the healer gauge, derived per tick.
type Sage struct {
	// Seals is the current seal-stack count, 0..SealsMax.
	Seals int
	// Freecast reports the instant-cast escape valve is active.
	Freecast bool
	// ClarityActive reports the MP regen buff is running.
	ClarityActive bool
	// SwiftmendCharges / SwiftmendMax mirror the charge-based heal's state.
	SwiftmendCharges int
	SwiftmendMax     int
}

// DeriveSage computes the sage gauge from the controlled actor's statuses
// and the action service's charge state.
//
// Precondition: self and svc must not be nil.
func DeriveSage(self *actor.ActorState, svc action.Service) Sage {
	cur, max := svc.Charges(action.SageSwiftmend)
	seals := self.StatusStacks(StatusSeal)
	if seals > SealsMax {
		seals = SealsMax
	}
	return Sage{
		Seals:            seals,
		Freecast:         self.HasStatus(StatusFreecast),
		ClarityActive:    self.HasStatus(StatusClarity),
		SwiftmendCharges: cur,
		SwiftmendMax:     max,
	}
}

// Warden is the tank gauge, derived per tick.
type Warden struct {
	// Invulnerable reports Last Stand is already running.
	Invulnerable bool
	// Undying reports the must-be-healed-to-live window is active; using the
	// invulnerability during it would waste both.
	Undying bool
	// MitigationUp reports any personal mitigation is currently active.
	MitigationUp bool
	// MPFraction is the resource pool used by the Bulwark harvest heuristic.
	MPFraction float64
}

// DeriveWarden computes the tank gauge from the controlled actor's statuses.
//
// Precondition: self must not be nil.
func DeriveWarden(self *actor.ActorState) Warden {
	mitigation := self.HasStatus(StatusBulwark) ||
		self.HasStatus(StatusSentinel) ||
		self.HasStatus(StatusRampart) ||
		self.HasStatus(StatusIronhide)
	return Warden{
		Invulnerable: self.HasStatus(StatusLastStand),
		Undying:      self.HasStatus(StatusUndying),
		MitigationUp: mitigation,
		MPFraction:   self.MPFraction(),
	}
}

// ShieldAmount estimates the total absorb remaining on a from its shield
// statuses. Barrier stacks encode hundreds of HP.
func ShieldAmount(a *actor.ActorState) int {
	return a.StatusStacks(StatusBarrier) * 100
}

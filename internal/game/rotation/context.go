package rotation

import (
	"time"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
	"github.com/calebrowe/weaver/internal/game/intake"
	"github.com/calebrowe/weaver/internal/game/predict"
	"github.com/calebrowe/weaver/internal/game/triage"
	"github.com/calebrowe/weaver/internal/observability"
)

// Gate vetoes handlers per tick. The scripting package provides the Lua
// implementation; a nil Gate never vetoes.
type Gate interface {
	Allow(handler string, hpFrac, rate float64, moving bool) bool
}

// Context is the per-tick decision context. Everything is read-only to
// handlers except the two explicitly mutable slices: the Reserved set and
// the Pending ledger. A Context is built at tick start and discarded at
// tick end.
type Context struct {
	Now  time.Time
	Tick uint64

	// Snapshot slices, read-only.
	Self    *actor.ActorState
	Party   []actor.PartyMemberView
	Enemies []actor.EnemyView

	// External services.
	Actions action.Service
	Catalog action.Catalog

	// Long-lived trackers, read-only to handlers.
	Intake *intake.Tracker

	// Mutable shared slices.
	Pending  *predict.Ledger
	Reserved *Reservations

	// Ambient.
	Log     *observability.DecisionLog
	Cfg     *config.Config
	Gate    Gate
	Weights triage.Weights

	// Per-job gauges, derived by the active rotation's Prepare.
	Sage   gauge.Sage
	Warden gauge.Warden
}

// DamageRate returns id's damage per second over the intake window.
func (c *Context) DamageRate(id actor.ID) float64 {
	return c.Intake.DamageRate(id, c.Now)
}

// Trend returns id's damage-rate acceleration.
func (c *Context) Trend(id actor.ID) float64 {
	return c.Intake.Trend(id, c.Now)
}

// SpikeImminent reports whether id's recent damage intake looks like the
// start of a spike.
func (c *Context) SpikeImminent(id actor.ID) bool {
	return c.Intake.SpikeImminent(id, c.Now, c.Cfg.Engine.SpikeMultiplier, c.Cfg.Engine.SpikeMinRate)
}

// PartyDamageRate returns the summed damage rate across the party.
func (c *Context) PartyDamageRate() float64 {
	total := 0.0
	for i := range c.Party {
		total += c.DamageRate(c.Party[i].ID)
	}
	return total
}

// PredictedHPFrac returns m's HP fraction after pending heals land.
func (c *Context) PredictedHPFrac(m *actor.PartyMemberView) float64 {
	return c.Pending.PredictedHPFraction(m.ID, m.CurrentHP, m.MaxHP)
}

// PredictedMissing returns m's missing HP after pending heals land.
func (c *Context) PredictedMissing(m *actor.PartyMemberView) int {
	return c.Pending.PredictedMissing(m.ID, m.CurrentHP, m.MaxHP)
}

// Allowed consults the veto gate; a nil gate always allows.
func (c *Context) Allowed(handler string, hpFrac, rate float64, moving bool) bool {
	if c.Gate == nil {
		return true
	}
	return c.Gate.Allow(handler, hpFrac, rate, moving)
}

// Def looks up the catalog definition for id.
//
// Postcondition: Returns (Definition{}, false) for ids missing from the
// catalog; handlers treat that as precondition-not-met.
func (c *Context) Def(id action.ID) (action.Definition, bool) {
	return c.Catalog.Lookup(id)
}

// SelfView returns the party view of the controlled actor.
//
// Postcondition: Returns (zero, false) if the party list does not contain
// the controlled actor.
func (c *Context) SelfView() (actor.PartyMemberView, bool) {
	for i := range c.Party {
		if c.Party[i].ID == c.Self.ID {
			return c.Party[i], true
		}
	}
	return actor.PartyMemberView{}, false
}

// MainTank reports whether any nearby enemy is attacking the controlled
// actor.
func (c *Context) MainTank() bool {
	for i := range c.Enemies {
		if c.Enemies[i].TargetID == c.Self.ID {
			return true
		}
	}
	return false
}

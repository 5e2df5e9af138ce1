// Package action defines ability identities, static ability data, and the
// external service through which the engine queries readiness and issues
// casts. Execution is fire-and-forget: the host resolves the cast
// asynchronously and the engine only sees an immediate best-effort
// success/failure return.
package action

import "github.com/calebrowe/weaver/internal/game/actor"

// ID identifies one ability.
type ID string

// Kind distinguishes abilities sharing the global cooldown (GCD) from
// abilities that weave between GCD casts (OGCD).
type Kind int

const (
	KindGCD Kind = iota
	KindOGCD
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	if k == KindOGCD {
		return "oGCD"
	}
	return "GCD"
}

// Targeting describes how an ability selects its effect area.
type Targeting int

const (
	// TargetSingle affects one entity.
	TargetSingle Targeting = iota
	// TargetSelfRadius affects all allies/enemies within Radius of the caster.
	TargetSelfRadius
	// TargetGround affects a placed circle of Radius at a chosen position.
	TargetGround
)

// Definition is the static data for one ability. Definitions are descriptive
// catalog entries; handlers read them for cast time, range, and estimated
// effect sizes, never mutate them.
type Definition struct {
	ID        ID
	Name      string
	Kind      Kind
	Targeting Targeting
	// CastTime is seconds of cast; 0 means instant.
	CastTime float64
	// Range is the maximum distance to the target, in yalms.
	Range float64
	// Radius is the effect radius for AoE targeting modes.
	Radius float64
	MPCost int
	// HealAmount is the estimated HP restored per target, used for
	// overheal-safety gating. Zero for non-healing abilities.
	HealAmount int
	// MinLevel gates the ability by job level.
	MinLevel int
}

// Instant reports whether the ability can be used while moving without an
// instant-cast escape valve.
func (d Definition) Instant() bool { return d.CastTime <= 0 }

// Service is the external action/cooldown interface. All Execute calls are
// synchronous-return and fire-and-forget; a true return means "committed,
// not yet confirmed".
type Service interface {
	// IsReady reports whether the ability can be used right now (off
	// cooldown, at least one charge, resources permitting).
	IsReady(id ID) bool

	// CooldownRemaining returns seconds until the ability is next usable,
	// or 0 if ready.
	CooldownRemaining(id ID) float64

	// Charges returns the current and maximum charge counts. Abilities
	// without charges report (0, 0) or (1, 1) at the host's discretion;
	// handlers must treat max == 0 as "not charge-based".
	Charges(id ID) (current, max int)

	// ExecuteGCD issues a global-cooldown ability at target.
	ExecuteGCD(id ID, target actor.ID) bool

	// ExecuteOGCD issues an off-global ability at target.
	ExecuteOGCD(id ID, target actor.ID) bool

	// ExecuteGroundTargeted issues a ground-placed ability at pos.
	ExecuteGroundTargeted(id ID, pos actor.Position) bool
}

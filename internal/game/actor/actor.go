// Package actor defines the read-only combat-state snapshot consumed by the
// rotation engine: the controlled actor, party member views, enemies, and
// their active statuses. Snapshots are produced once per tick by an external
// provider and are never mutated by the engine.
package actor

import "math"

// ID identifies an entity (player, party member, or enemy) for one session.
// IDs are opaque strings; ordering comparisons use plain string order, which
// is the deterministic tie-break used throughout the engine.
type ID string

// Job identifies a playable job/class.
type Job string

// Jobs with a registered rotation.
const (
	JobSage   Job = "sage"
	JobWarden Job = "warden"
	JobReaver Job = "reaver"
)

// Role is the coarse party-role classification derived from a Job.
type Role int

const (
	RoleTank Role = iota
	RoleHealer
	RoleDPS
)

// String returns a human-readable role label.
func (r Role) String() string {
	switch r {
	case RoleTank:
		return "tank"
	case RoleHealer:
		return "healer"
	case RoleDPS:
		return "dps"
	default:
		return "unknown"
	}
}

// RoleForJob returns the party role a job fills.
//
// Postcondition: Returns RoleDPS for any unrecognised job.
func RoleForJob(j Job) Role {
	switch j {
	case JobSage:
		return RoleHealer
	case JobWarden:
		return RoleTank
	default:
		return RoleDPS
	}
}

// Position is a world-space location.
type Position struct {
	X float64
	Y float64
	Z float64
}

// DistanceTo returns the euclidean distance to o.
func (p Position) DistanceTo(o Position) float64 {
	dx, dy, dz := p.X-o.X, p.Y-o.Y, p.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// StatusID identifies a status effect (buff, debuff, HoT, shield).
type StatusID string

// Status is one active status effect on an actor.
type Status struct {
	ID        StatusID
	Remaining float64 // seconds until expiry; <0 means permanent
	Stacks    int
}

// ActorState is the per-tick snapshot of one actor. It is owned by the
// snapshot provider and read-only to the engine.
type ActorState struct {
	ID        ID
	Name      string
	Job       Job
	Level     int
	CurrentHP int
	MaxHP     int
	CurrentMP int
	MaxMP     int
	Position  Position
	Statuses  []Status
}

// IsAlive reports whether the actor has HP remaining.
func (a *ActorState) IsAlive() bool { return a.CurrentHP > 0 }

// HPFraction returns CurrentHP/MaxHP in [0,1].
//
// Postcondition: Returns 0 when MaxHP <= 0.
func (a *ActorState) HPFraction() float64 {
	if a.MaxHP <= 0 {
		return 0
	}
	return float64(a.CurrentHP) / float64(a.MaxHP)
}

// MPFraction returns CurrentMP/MaxMP in [0,1].
//
// Postcondition: Returns 0 when MaxMP <= 0.
func (a *ActorState) MPFraction() float64 {
	if a.MaxMP <= 0 {
		return 0
	}
	return float64(a.CurrentMP) / float64(a.MaxMP)
}

// MissingHP returns MaxHP - CurrentHP, floored at zero.
func (a *ActorState) MissingHP() int {
	missing := a.MaxHP - a.CurrentHP
	if missing < 0 {
		return 0
	}
	return missing
}

// HasStatus reports whether the status with id is active on this actor.
func (a *ActorState) HasStatus(id StatusID) bool {
	for i := range a.Statuses {
		if a.Statuses[i].ID == id {
			return true
		}
	}
	return false
}

// StatusRemaining returns the remaining duration in seconds for status id,
// or 0 if the status is not active.
func (a *ActorState) StatusRemaining(id StatusID) float64 {
	for i := range a.Statuses {
		if a.Statuses[i].ID == id {
			return a.Statuses[i].Remaining
		}
	}
	return 0
}

// StatusStacks returns the stack count for status id, or 0 if not active.
func (a *ActorState) StatusStacks(id StatusID) int {
	for i := range a.Statuses {
		if a.Statuses[i].ID == id {
			return a.Statuses[i].Stacks
		}
	}
	return 0
}

// PartyMemberView is the per-tick view of one party member: the member's
// actor snapshot plus role classification and distance to the controlled
// actor. Derived each tick; never persisted.
type PartyMemberView struct {
	ActorState
	Role     Role
	Distance float64
}

// EnemyView is the per-tick view of one nearby enemy.
type EnemyView struct {
	ID        ID
	Name      string
	CurrentHP int
	MaxHP     int
	Position  Position
	Distance  float64
	// TargetID is the entity this enemy is currently attacking, if known.
	TargetID ID
	// Statuses holds debuffs visible on the enemy (DoTs for upkeep checks).
	Statuses []Status
}

// StatusRemaining returns the remaining duration in seconds for status id
// on this enemy, or 0 if not present.
func (e *EnemyView) StatusRemaining(id StatusID) float64 {
	for i := range e.Statuses {
		if e.Statuses[i].ID == id {
			return e.Statuses[i].Remaining
		}
	}
	return 0
}

// SnapshotProvider is the external source of per-tick combat state. All
// methods must be cheap and non-blocking; each is called at most once per
// tick.
type SnapshotProvider interface {
	// ControlledActor returns the snapshot of the player-controlled actor.
	// Returns (nil, false) when there is no valid controlled actor (loading
	// screens, zone transitions); the engine aborts the tick quietly.
	ControlledActor() (*ActorState, bool)

	// PartyMembers returns the current party, including the controlled actor.
	PartyMembers() []PartyMemberView

	// NearbyEnemies returns enemies within radius of the controlled actor.
	NearbyEnemies(radius float64) []EnemyView

	// IsMoving reports whether the controlled actor is currently moving.
	// Casted abilities are skipped while moving unless an instant-cast
	// escape valve is active.
	IsMoving() bool
}

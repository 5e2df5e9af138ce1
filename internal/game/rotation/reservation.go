package rotation

import "github.com/calebrowe/weaver/internal/game/actor"

// Reservations is the per-tick set of target ids already claimed by a
// handler this pass. Handlers check it before selecting a target and the
// scheduler resets it at tick start, so no handler ever observes a stale
// claim from a previous tick. Claims are made only after a
// verified-successful execute.
type Reservations struct {
	claimed map[actor.ID]struct{}
}

// NewReservations creates an empty reservation set.
func NewReservations() *Reservations {
	return &Reservations{claimed: make(map[actor.ID]struct{})}
}

// Reset discards all claims. Called at the start of every tick.
//
// Postcondition: IsReserved returns false for every id.
func (r *Reservations) Reset() {
	clear(r.claimed)
}

// Reserve claims id for the remainder of this tick.
//
// Postcondition: IsReserved(id) is true.
func (r *Reservations) Reserve(id actor.ID) {
	r.claimed[id] = struct{}{}
}

// IsReserved reports whether id has been claimed this tick.
func (r *Reservations) IsReserved(id actor.ID) bool {
	_, ok := r.claimed[id]
	return ok
}

// Len returns the number of claimed targets.
func (r *Reservations) Len() int { return len(r.claimed) }

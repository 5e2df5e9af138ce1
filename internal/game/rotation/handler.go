// Package rotation is the decision core: the uniform handler contract, the
// per-tick context, the target-reservation set, and the scheduler that
// evaluates each job's ordered handler list until at most one action
// executes per tick.
package rotation

import (
	"fmt"

	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/predict"
	"github.com/calebrowe/weaver/internal/observability"
)

// Handler is one ability-family decision unit. Handlers are stateless pure
// functions of the tick context except for narrow counters (combo step,
// last-provoke time) owned by the rotation that constructed them.
type Handler interface {
	// Name identifies the handler for toggles, veto hooks, and debug state.
	Name() string

	// Priority orders evaluation; lower values run first. Priorities are
	// unique within a rotation; duplicates are rejected at construction.
	Priority() int

	// TryExecute returns true iff the handler committed and successfully
	// issued exactly one action this tick. On success it must reserve the
	// healed target, register any pending heal, and record a decision. On
	// an execute-primitive failure it must roll back pending registrations
	// and must not have reserved the target.
	TryExecute(ctx *Context, isMoving bool) bool

	// DebugState is the write-only "why did/didn't I act" string for the
	// diagnostics side channel.
	DebugState() string
}

// baseHandler carries the identity and debug-state plumbing shared by every
// concrete handler.
type baseHandler struct {
	name     string
	priority int
	debug    string
}

func (h *baseHandler) Name() string       { return h.name }
func (h *baseHandler) Priority() int      { return h.priority }
func (h *baseHandler) DebugState() string { return h.debug }

func (h *baseHandler) setDebug(format string, args ...any) {
	h.debug = fmt.Sprintf(format, args...)
}

// castable reports whether def can be issued under the current movement
// state. Casted abilities are skipped while moving unless the instant-cast
// escape valve is active.
func castable(def action.Definition, isMoving, freecast bool) bool {
	if def.Instant() {
		return true
	}
	return !isMoving || freecast
}

// execute dispatches to the right execute primitive for def's kind.
func execute(ctx *Context, def action.Definition, target actor.ID) bool {
	if def.Kind == action.KindOGCD {
		return ctx.Actions.ExecuteOGCD(def.ID, target)
	}
	return ctx.Actions.ExecuteGCD(def.ID, target)
}

// commitHeal performs the shared success path for a single-target heal:
// register the pending heal, issue the cast, roll back on failure, and only
// then reserve the target and record the decision.
//
// Postcondition: Returns true iff the cast was issued; on false the
// pending-heal ledger is unchanged and the target is not reserved.
func commitHeal(ctx *Context, h *baseHandler, def action.Definition, target actor.PartyMemberView, reason string) bool {
	var receipt predict.Receipt
	registered := false
	if def.HealAmount > 0 {
		receipt = ctx.Pending.Register(target.ID, def.HealAmount, ctx.Tick)
		registered = true
	}
	if !execute(ctx, def, target.ID) {
		if registered {
			ctx.Pending.Rollback(receipt)
		}
		h.setDebug("%s: execute failed", def.Name)
		return false
	}
	ctx.Reserved.Reserve(target.ID)
	ctx.Log.Record(observability.Decision{
		Tick:         ctx.Tick,
		Handler:      h.name,
		Target:       string(target.ID),
		TargetHPFrac: target.HPFraction(),
		Action:       string(def.ID),
		Reason:       reason,
	})
	h.setDebug("%s -> %s: %s", def.Name, target.Name, reason)
	return true
}

// commitAction performs the shared success path for a non-healing action
// (mitigation, provoke, damage): issue the cast and record the decision.
func commitAction(ctx *Context, h *baseHandler, def action.Definition, target actor.ID, hpFrac float64, reason string) bool {
	if !execute(ctx, def, target) {
		h.setDebug("%s: execute failed", def.Name)
		return false
	}
	ctx.Log.Record(observability.Decision{
		Tick:         ctx.Tick,
		Handler:      h.name,
		Target:       string(target),
		TargetHPFrac: hpFrac,
		Action:       string(def.ID),
		Reason:       reason,
	})
	h.setDebug("%s -> %s: %s", def.Name, target, reason)
	return true
}

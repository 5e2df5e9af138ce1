package rotation

import (
	"fmt"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/predict"
	"github.com/calebrowe/weaver/internal/game/triage"
	"github.com/calebrowe/weaver/internal/observability"
)

// AoEHealHandler commits a multi-target heal only when enough members would
// receive it without overheal. Two candidates are evaluated: the
// self-centered Radiance and the ground-targeted Benison Field centered on
// the lowest-HP member; whichever reaches the minimum-target bar wins, the
// higher count breaking ties.
type AoEHealHandler struct {
	baseHandler
	cfg config.HealerConfig
}

// NewAoEHealHandler constructs the handler.
func NewAoEHealHandler(priority int, cfg config.HealerConfig) *AoEHealHandler {
	return &AoEHealHandler{
		baseHandler: baseHandler{name: "aoe_heal", priority: priority},
		cfg:         cfg,
	}
}

// aoeCandidate is one evaluated AoE option.
type aoeCandidate struct {
	def     action.Definition
	center  actor.Position
	ground  bool
	covered []actor.PartyMemberView
}

// TryExecute implements Handler.
func (h *AoEHealHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}

	best, ok := h.pickCandidate(ctx)
	if !ok {
		h.setDebug("injured count below %d", h.cfg.AoEMinTargets)
		return false
	}

	if ctx.Self.CurrentMP < best.def.MPCost {
		h.setDebug("mp short for %s", best.def.Name)
		return false
	}
	if !castable(best.def, isMoving, ctx.Sage.Freecast) {
		h.setDebug("moving, %s has cast time", best.def.Name)
		return false
	}

	worst, _ := triage.LowestHP(best.covered)
	if !ctx.Allowed(h.name, worst.HPFraction(), ctx.DamageRate(worst.ID), isMoving) {
		h.setDebug("vetoed")
		return false
	}

	return h.commit(ctx, best)
}

// pickCandidate evaluates both AoE options and returns the better one that
// reaches the minimum-target bar.
func (h *AoEHealHandler) pickCandidate(ctx *Context) (aoeCandidate, bool) {
	var options []aoeCandidate

	if def, ok := ctx.Def(action.SageRadiance); ok && ctx.Self.Level >= def.MinLevel && ctx.Actions.IsReady(def.ID) {
		covered := h.coveredBy(ctx, def, ctx.Self.Position)
		options = append(options, aoeCandidate{def: def, center: ctx.Self.Position, covered: covered})
	}
	if def, ok := ctx.Def(action.SageBenison); ok && ctx.Self.Level >= def.MinLevel && ctx.Actions.IsReady(def.ID) {
		if lowest, found := triage.LowestHP(ctx.Party); found {
			covered := h.coveredBy(ctx, def, lowest.Position)
			options = append(options, aoeCandidate{def: def, center: lowest.Position, ground: true, covered: covered})
		}
	}

	var best aoeCandidate
	found := false
	for _, opt := range options {
		if len(opt.covered) < h.cfg.AoEMinTargets {
			continue
		}
		if !found || len(opt.covered) > len(best.covered) {
			best, found = opt, true
		}
	}
	return best, found
}

// coveredBy returns unreserved living members inside def's radius around
// center for whom the estimated heal is overheal-safe: their predicted
// missing HP is at least the per-target heal amount.
func (h *AoEHealHandler) coveredBy(ctx *Context, def action.Definition, center actor.Position) []actor.PartyMemberView {
	var out []actor.PartyMemberView
	for _, m := range ctx.Party {
		if !m.IsAlive() || ctx.Reserved.IsReserved(m.ID) {
			continue
		}
		if m.Position.DistanceTo(center) > def.Radius {
			continue
		}
		if ctx.PredictedMissing(&m) < def.HealAmount {
			continue
		}
		out = append(out, m)
	}
	return out
}

// commit registers pending heals for every covered member, issues the cast,
// and rolls all registrations back if the execute primitive fails.
func (h *AoEHealHandler) commit(ctx *Context, c aoeCandidate) bool {
	receipts := make([]predict.Receipt, 0, len(c.covered))
	for _, m := range c.covered {
		receipts = append(receipts, ctx.Pending.Register(m.ID, c.def.HealAmount, ctx.Tick))
	}

	var ok bool
	if c.ground {
		ok = ctx.Actions.ExecuteGroundTargeted(c.def.ID, c.center)
	} else {
		ok = ctx.Actions.ExecuteGCD(c.def.ID, ctx.Self.ID)
	}
	if !ok {
		for _, r := range receipts {
			ctx.Pending.Rollback(r)
		}
		h.setDebug("%s: execute failed", c.def.Name)
		return false
	}

	worst, _ := triage.LowestHP(c.covered)
	for _, m := range c.covered {
		ctx.Reserved.Reserve(m.ID)
	}
	ctx.Log.Record(observability.Decision{
		Tick:         ctx.Tick,
		Handler:      h.name,
		Target:       string(worst.ID),
		TargetHPFrac: worst.HPFraction(),
		Action:       string(c.def.ID),
		Reason:       fmt.Sprintf("aoe heal covering %d", len(c.covered)),
	})
	h.setDebug("%s covering %d members", c.def.Name, len(c.covered))
	return true
}

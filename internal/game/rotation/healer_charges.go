package rotation

import (
	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/triage"
)

// ChargeHealHandler spends the free oGCD heal's charges under three distinct
// overheal-safety policies selected by current state: a strict ratio
// normally, a looser one at max charges (a capped charge wastes
// regeneration), and the loosest during a detected damage spike.
type ChargeHealHandler struct {
	baseHandler
	cfg config.HealerConfig
}

// NewChargeHealHandler constructs the handler.
func NewChargeHealHandler(priority int, cfg config.HealerConfig) *ChargeHealHandler {
	return &ChargeHealHandler{
		baseHandler: baseHandler{name: "charge_heal", priority: priority},
		cfg:         cfg,
	}
}

// TryExecute implements Handler.
func (h *ChargeHealHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}
	def, ok := ctx.Def(action.SageSwiftmend)
	if !ok || ctx.Self.Level < def.MinLevel {
		h.setDebug("swiftmend locked")
		return false
	}
	if ctx.Sage.SwiftmendCharges == 0 || !ctx.Actions.IsReady(def.ID) {
		h.setDebug("no charges")
		return false
	}

	target, ok := h.candidate(ctx, def)
	if !ok {
		h.setDebug("no candidate")
		return false
	}

	ratio, policy := h.policyFor(ctx, target.ID)
	frac := ctx.PredictedHPFrac(&target)
	if frac >= ratio {
		h.setDebug("hp %.0f%% above %s ratio %.0f%%", frac*100, policy, ratio*100)
		return false
	}
	if !ctx.Allowed(h.name, frac, ctx.DamageRate(target.ID), isMoving) {
		h.setDebug("vetoed")
		return false
	}
	// Instant oGCD: no movement gate.
	return commitHeal(ctx, &h.baseHandler, def, target, "charge heal ("+policy+")")
}

// candidate returns the lowest-HP unreserved member in range.
func (h *ChargeHealHandler) candidate(ctx *Context, def action.Definition) (actor.PartyMemberView, bool) {
	var eligible []actor.PartyMemberView
	for _, m := range ctx.Party {
		if ctx.Reserved.IsReserved(m.ID) {
			continue
		}
		if def.Range > 0 && m.Distance > def.Range {
			continue
		}
		eligible = append(eligible, m)
	}
	return triage.LowestHP(eligible)
}

// policyFor selects the overheal-safe ratio for the current state.
func (h *ChargeHealHandler) policyFor(ctx *Context, target actor.ID) (float64, string) {
	switch {
	case ctx.SpikeImminent(target):
		return h.cfg.ChargeSpikeRatio, "spike"
	case ctx.Sage.SwiftmendMax > 0 && ctx.Sage.SwiftmendCharges == ctx.Sage.SwiftmendMax:
		return h.cfg.ChargeMaxRatio, "max charges"
	default:
		return h.cfg.ChargeNormalRatio, "normal"
	}
}

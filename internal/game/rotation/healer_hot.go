package rotation

import (
	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
	"github.com/calebrowe/weaver/internal/game/triage"
)

// HoTMaintainHandler re-applies the heal-over-time only when it is absent or
// near expiry on a member below the HP gate. During sustained party-wide
// damage the gate is raised so the HoT is applied more liberally.
type HoTMaintainHandler struct {
	baseHandler
	cfg config.HealerConfig
}

// NewHoTMaintainHandler constructs the handler.
func NewHoTMaintainHandler(priority int, cfg config.HealerConfig) *HoTMaintainHandler {
	return &HoTMaintainHandler{
		baseHandler: baseHandler{name: "hot_maintain", priority: priority},
		cfg:         cfg,
	}
}

// TryExecute implements Handler.
func (h *HoTMaintainHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}
	def, ok := ctx.Def(action.SageSoothe)
	if !ok || ctx.Self.Level < def.MinLevel {
		h.setDebug("soothe locked")
		return false
	}
	if ctx.Self.CurrentMP < def.MPCost || !ctx.Actions.IsReady(def.ID) {
		h.setDebug("soothe not ready")
		return false
	}

	gate := h.cfg.HoTThreshold
	liberal := ctx.PartyDamageRate() > h.cfg.HoTLiberalRate
	if liberal {
		gate = h.cfg.HoTLiberalThreshold
	}

	target, ok := h.candidate(ctx, def, gate)
	if !ok {
		h.setDebug("hot coverage complete below %.0f%%", gate*100)
		return false
	}
	if !castable(def, isMoving, ctx.Sage.Freecast) {
		h.setDebug("moving")
		return false
	}
	if !ctx.Allowed(h.name, target.HPFraction(), ctx.DamageRate(target.ID), isMoving) {
		h.setDebug("vetoed")
		return false
	}

	reason := "hot upkeep"
	if liberal {
		reason = "hot upkeep (raised gate, party under fire)"
	}
	return commitHeal(ctx, &h.baseHandler, def, target, reason)
}

// candidate selects the most endangered unreserved member below gate whose
// HoT is missing or about to fall off.
func (h *HoTMaintainHandler) candidate(ctx *Context, def action.Definition, gate float64) (actor.PartyMemberView, bool) {
	var eligible []actor.PartyMemberView
	for _, m := range ctx.Party {
		if !m.IsAlive() || ctx.Reserved.IsReserved(m.ID) {
			continue
		}
		if def.Range > 0 && m.Distance > def.Range {
			continue
		}
		if m.HPFraction() >= gate {
			continue
		}
		if m.HasStatus(gauge.StatusSoothe) && m.StatusRemaining(gauge.StatusSoothe) >= h.cfg.HoTRefreshSec {
			continue
		}
		eligible = append(eligible, m)
	}
	return triage.Select(eligible, ctx, ctx.Weights, shieldOf)
}

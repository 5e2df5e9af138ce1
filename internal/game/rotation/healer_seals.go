package rotation

import (
	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
	"github.com/calebrowe/weaver/internal/game/triage"
)

// SealSpenderHandler prefers the seal-building heal over free alternatives
// only inside the narrow band where it completes the seal set (exactly one
// stack short), and only on a target with a real HP deficit so the resource
// is never farmed on nearly-full members.
type SealSpenderHandler struct {
	baseHandler
	cfg config.HealerConfig
}

// NewSealSpenderHandler constructs the handler.
func NewSealSpenderHandler(priority int, cfg config.HealerConfig) *SealSpenderHandler {
	return &SealSpenderHandler{
		baseHandler: baseHandler{name: "seal_spender", priority: priority},
		cfg:         cfg,
	}
}

// TryExecute implements Handler.
func (h *SealSpenderHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}
	if ctx.Sage.Seals != gauge.SealsMax-1 {
		h.setDebug("seals %d/%d outside band", ctx.Sage.Seals, gauge.SealsMax)
		return false
	}
	def, ok := ctx.Def(action.SageSealburst)
	if !ok || ctx.Self.Level < def.MinLevel {
		h.setDebug("sealburst locked")
		return false
	}
	if !ctx.Actions.IsReady(def.ID) {
		h.setDebug("sealburst on cooldown")
		return false
	}

	target, ok := h.candidate(ctx, def)
	if !ok {
		h.setDebug("no target with deficit >= %d", h.cfg.SealSpendMinDeficit)
		return false
	}
	if !ctx.Allowed(h.name, target.HPFraction(), ctx.DamageRate(target.ID), isMoving) {
		h.setDebug("vetoed")
		return false
	}
	return commitHeal(ctx, &h.baseHandler, def, target, "completing seal set")
}

// candidate returns the lowest-HP unreserved in-range member whose
// predicted deficit meets the minimum.
func (h *SealSpenderHandler) candidate(ctx *Context, def action.Definition) (actor.PartyMemberView, bool) {
	var eligible []actor.PartyMemberView
	for _, m := range ctx.Party {
		if ctx.Reserved.IsReserved(m.ID) {
			continue
		}
		if def.Range > 0 && m.Distance > def.Range {
			continue
		}
		if ctx.PredictedMissing(&m) < h.cfg.SealSpendMinDeficit {
			continue
		}
		eligible = append(eligible, m)
	}
	return triage.LowestHP(eligible)
}

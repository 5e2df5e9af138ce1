package rotation

import (
	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
)

// CleanseHandler removes the single highest-priority cleansable debuff in
// the party, ties broken by soonest expiry, and only when the best found
// priority meets the configured minimum.
type CleanseHandler struct {
	baseHandler
	cfg         config.HealerConfig
	minPriority DebuffPriority
}

// NewCleanseHandler constructs the handler.
//
// Precondition: cfg.CleanseMinPriority must parse; config validation
// guarantees this.
func NewCleanseHandler(priority int, cfg config.HealerConfig) *CleanseHandler {
	min, err := ParseDebuffPriority(cfg.CleanseMinPriority)
	if err != nil {
		panic("rotation.NewCleanseHandler: " + err.Error())
	}
	return &CleanseHandler{
		baseHandler: baseHandler{name: "cleanse", priority: priority},
		cfg:         cfg,
		minPriority: min,
	}
}

// TryExecute implements Handler.
func (h *CleanseHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}
	def, ok := ctx.Def(action.SagePurify)
	if !ok || ctx.Self.Level < def.MinLevel {
		h.setDebug("purify locked")
		return false
	}
	if ctx.Self.CurrentMP < def.MPCost || !ctx.Actions.IsReady(def.ID) {
		h.setDebug("purify not ready")
		return false
	}

	target, best, found := h.worstDebuff(ctx, def)
	if !found {
		h.setDebug("nothing to cleanse")
		return false
	}
	if best < h.minPriority {
		h.setDebug("best debuff %s below configured %s", best, h.minPriority)
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
	return commitHeal(ctx, &h.baseHandler, def, target, "cleanse "+best.String())
}

// worstDebuff scans in-range members for the highest-priority cleansable
// debuff, ties broken by soonest expiry.
func (h *CleanseHandler) worstDebuff(ctx *Context, def action.Definition) (actor.PartyMemberView, DebuffPriority, bool) {
	var (
		bestMember actor.PartyMemberView
		bestPri    DebuffPriority
		bestExpiry float64
		found      bool
	)
	for _, m := range ctx.Party {
		if !m.IsAlive() {
			continue
		}
		if def.Range > 0 && m.Distance > def.Range {
			continue
		}
		for _, st := range m.Statuses {
			pri, cleansable := CleansableDebuffs[st.ID]
			if !cleansable {
				continue
			}
			better := !found ||
				pri > bestPri ||
				(pri == bestPri && st.Remaining < bestExpiry)
			if better {
				bestMember, bestPri, bestExpiry, found = m, pri, st.Remaining, true
			}
		}
	}
	return bestMember, bestPri, found
}

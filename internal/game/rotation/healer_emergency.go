package rotation

import (
	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/triage"
)

// EmergencyHealHandler fires the big single-target heal on the most
// endangered qualifying member. The HP threshold is not static: it escalates
// additively with the target's observed damage rate, capped at a ceiling. A
// secondary proactive tier fires at a higher HP threshold under sustained
// damage, independent of the emergency tier; emergency takes precedence in
// the logged reason.
type EmergencyHealHandler struct {
	baseHandler
	cfg config.HealerConfig
}

// NewEmergencyHealHandler constructs the handler.
func NewEmergencyHealHandler(priority int, cfg config.HealerConfig) *EmergencyHealHandler {
	return &EmergencyHealHandler{
		baseHandler: baseHandler{name: "emergency_heal", priority: priority},
		cfg:         cfg,
	}
}

// TryExecute implements Handler. Precondition checks run cheapest first:
// toggle, level, resource, candidate search (existence + range + threshold),
// then the movement gate.
func (h *EmergencyHealHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}

	def := h.healDef(ctx)
	if ctx.Self.Level < def.MinLevel {
		h.setDebug("level %d below %d", ctx.Self.Level, def.MinLevel)
		return false
	}
	if ctx.Self.CurrentMP < def.MPCost || !ctx.Actions.IsReady(def.ID) {
		h.setDebug("%s not ready", def.Name)
		return false
	}

	candidates, emergency := h.qualifying(ctx, def)
	if len(candidates) == 0 {
		h.setDebug("no one below threshold")
		return false
	}

	target, ok := triage.Select(candidates, ctx, ctx.Weights, shieldOf)
	if !ok {
		h.setDebug("no living candidate")
		return false
	}

	rate := ctx.DamageRate(target.ID)
	if !castable(def, isMoving, ctx.Sage.Freecast) {
		h.setDebug("moving, %s has cast time", def.Name)
		return false
	}
	if !ctx.Allowed(h.name, target.HPFraction(), rate, isMoving) {
		h.setDebug("vetoed")
		return false
	}

	reason := "proactive: sustained damage"
	if emergency[target.ID] {
		reason = "emergency: below escalated threshold"
	}
	return commitHeal(ctx, &h.baseHandler, def, target, reason)
}

// healDef picks the strongest emergency heal the job level unlocks.
func (h *EmergencyHealHandler) healDef(ctx *Context) action.Definition {
	if def, ok := ctx.Def(action.SageGreaterMend); ok && ctx.Self.Level >= def.MinLevel {
		return def
	}
	def, _ := ctx.Def(action.SageMend)
	return def
}

// qualifying returns unreserved in-range members below either tier, plus
// the set qualifying on the emergency tier specifically.
func (h *EmergencyHealHandler) qualifying(ctx *Context, def action.Definition) ([]actor.PartyMemberView, map[actor.ID]bool) {
	var out []actor.PartyMemberView
	emergency := make(map[actor.ID]bool)
	for _, m := range ctx.Party {
		if !m.IsAlive() || ctx.Reserved.IsReserved(m.ID) {
			continue
		}
		if def.Range > 0 && m.Distance > def.Range {
			continue
		}
		rate := ctx.DamageRate(m.ID)
		frac := ctx.PredictedHPFrac(&m)

		effective := EscalatedThreshold(h.cfg.EmergencyBaseThreshold, h.cfg.EmergencyTiers, rate, h.cfg.EmergencyCeiling)
		isEmergency := frac < effective
		isProactive := frac < h.cfg.ProactiveThreshold && rate > h.cfg.ProactiveMinRate
		if !isEmergency && !isProactive {
			continue
		}
		if isEmergency {
			emergency[m.ID] = true
		}
		out = append(out, m)
	}
	return out, emergency
}

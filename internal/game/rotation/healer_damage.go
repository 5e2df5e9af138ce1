package rotation

import (
	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
)

// HealerDamageHandler is the sage's bottom-priority filler: keep the damage
// DoT rolling, then cast the filler nuke, with an MP floor so healing is
// never starved for damage.
type HealerDamageHandler struct {
	baseHandler
	cfg config.HealerConfig
}

// NewHealerDamageHandler constructs the handler.
func NewHealerDamageHandler(priority int, cfg config.HealerConfig) *HealerDamageHandler {
	return &HealerDamageHandler{
		baseHandler: baseHandler{name: "healer_damage", priority: priority},
		cfg:         cfg,
	}
}

// TryExecute implements Handler.
func (h *HealerDamageHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}
	target, ok := h.target(ctx)
	if !ok {
		h.setDebug("no enemy in range")
		return false
	}

	// DoT upkeep before filler.
	if def, ok := ctx.Def(action.SageBlight); ok && ctx.Self.Level >= def.MinLevel {
		if h.dotWanted(target) &&
			ctx.Self.CurrentMP >= def.MPCost &&
			ctx.Actions.IsReady(def.ID) &&
			castable(def, isMoving, ctx.Sage.Freecast) {
			return commitAction(ctx, &h.baseHandler, def, target.ID, enemyHPFrac(target), "dot upkeep")
		}
	}

	if ctx.Self.MPFraction() < h.cfg.DamageMinMPFraction {
		h.setDebug("mp below damage floor")
		return false
	}
	def, ok := ctx.Def(action.SageLance)
	if !ok || ctx.Self.CurrentMP < def.MPCost || !ctx.Actions.IsReady(def.ID) {
		h.setDebug("lance not ready")
		return false
	}
	if !castable(def, isMoving, ctx.Sage.Freecast) {
		h.setDebug("moving")
		return false
	}
	if !ctx.Allowed(h.name, enemyHPFrac(target), 0, isMoving) {
		h.setDebug("vetoed")
		return false
	}
	return commitAction(ctx, &h.baseHandler, def, target.ID, enemyHPFrac(target), "damage filler")
}

// dotWanted reports whether the DoT is absent or near expiry on target.
func (h *HealerDamageHandler) dotWanted(target actor.EnemyView) bool {
	return target.StatusRemaining(gauge.StatusBlight) < h.cfg.DoTRefreshSec
}

// target picks the lowest-id living enemy within casting range.
func (h *HealerDamageHandler) target(ctx *Context) (actor.EnemyView, bool) {
	var best actor.EnemyView
	found := false
	for _, e := range ctx.Enemies {
		if e.CurrentHP <= 0 {
			continue
		}
		if !found || e.ID < best.ID {
			best, found = e, true
		}
	}
	return best, found
}

func enemyHPFrac(e actor.EnemyView) float64 {
	if e.MaxHP <= 0 {
		return 0
	}
	return float64(e.CurrentHP) / float64(e.MaxHP)
}

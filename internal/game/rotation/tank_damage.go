package rotation

import (
	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
)

// TankDamageHandler is the warden's filler: continue an in-flight combo,
// switch to the AoE when enough enemies are clustered and the combo is
// idle, otherwise advance the single-target chain.
type TankDamageHandler struct {
	baseHandler
	cfg   config.TankConfig
	combo *ComboTracker
}

// NewTankDamageHandler constructs the handler.
//
// Precondition: combo must not be nil.
func NewTankDamageHandler(priority int, cfg config.TankConfig, combo *ComboTracker) *TankDamageHandler {
	if combo == nil {
		panic("rotation.NewTankDamageHandler: precondition violated: combo must not be nil")
	}
	return &TankDamageHandler{
		baseHandler: baseHandler{name: "tank_damage", priority: priority},
		cfg:         cfg,
		combo:       combo,
	}
}

// TryExecute implements Handler.
func (h *TankDamageHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}

	// A clustered pull takes the AoE, but never at the cost of dropping a
	// combo mid-chain.
	if len(livingEnemies(ctx)) >= h.cfg.AoEEnemyThreshold && !h.combo.InFlight(ctx.Now) {
		if h.tryAoE(ctx, isMoving) {
			return true
		}
	}
	return h.tryCombo(ctx, isMoving)
}

func (h *TankDamageHandler) tryAoE(ctx *Context, isMoving bool) bool {
	def, ok := ctx.Def(action.WardenWhirlwind)
	if !ok || ctx.Self.Level < def.MinLevel {
		return false
	}
	if ctx.Self.CurrentMP < def.MPCost || !ctx.Actions.IsReady(def.ID) {
		return false
	}
	if !ctx.Allowed(h.name, ctx.Self.HPFraction(), ctx.DamageRate(ctx.Self.ID), isMoving) {
		h.setDebug("vetoed")
		return false
	}
	return commitAction(ctx, &h.baseHandler, def, ctx.Self.ID, ctx.Self.HPFraction(), "aoe: enemies clustered")
}

func (h *TankDamageHandler) tryCombo(ctx *Context, isMoving bool) bool {
	target, ok := nearestEnemy(ctx)
	if !ok {
		h.setDebug("no enemy")
		return false
	}
	next := h.combo.Next(ctx.Now)
	def, ok := ctx.Def(next)
	if !ok || ctx.Self.Level < def.MinLevel {
		h.setDebug("combo step locked")
		return false
	}
	if ctx.Self.CurrentMP < def.MPCost || !ctx.Actions.IsReady(def.ID) {
		h.setDebug("combo step not ready")
		return false
	}
	if def.Range > 0 && target.Distance > def.Range {
		h.setDebug("out of range")
		return false
	}
	if !ctx.Allowed(h.name, enemyHPFrac(target), 0, isMoving) {
		h.setDebug("vetoed")
		return false
	}
	if !commitAction(ctx, &h.baseHandler, def, target.ID, enemyHPFrac(target), "combo") {
		return false
	}
	h.combo.Advance(def.ID, ctx.Now)
	return true
}

// livingEnemies filters the snapshot to enemies with HP remaining.
func livingEnemies(ctx *Context) []actor.EnemyView {
	var out []actor.EnemyView
	for _, e := range ctx.Enemies {
		if e.CurrentHP > 0 {
			out = append(out, e)
		}
	}
	return out
}

// nearestEnemy returns the closest living enemy, ties broken by lowest id.
func nearestEnemy(ctx *Context) (actor.EnemyView, bool) {
	var best actor.EnemyView
	found := false
	for _, e := range ctx.Enemies {
		if e.CurrentHP <= 0 {
			continue
		}
		if !found || e.Distance < best.Distance ||
			(e.Distance == best.Distance && e.ID < best.ID) {
			best, found = e, true
		}
	}
	return best, found
}

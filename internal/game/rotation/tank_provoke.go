package rotation

import (
	"time"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
)

// ProvokeHandler snaps aggro back when an enemy wanders off the tank. A
// redelay keeps it from fighting a co-tank swap or burning the cooldown on
// a scripted untargetable phase.
type ProvokeHandler struct {
	baseHandler
	cfg         config.TankConfig
	enmity      EnmitySource
	lastProvoke time.Time
}

// NewProvokeHandler constructs the handler.
//
// Precondition: enmity must not be nil.
func NewProvokeHandler(priority int, cfg config.TankConfig, enmity EnmitySource) *ProvokeHandler {
	if enmity == nil {
		panic("rotation.NewProvokeHandler: precondition violated: enmity must not be nil")
	}
	return &ProvokeHandler{
		baseHandler: baseHandler{name: "provoke", priority: priority},
		cfg:         cfg,
		enmity:      enmity,
	}
}

// TryExecute implements Handler.
func (h *ProvokeHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}
	def, ok := ctx.Def(action.WardenProvoke)
	if !ok || ctx.Self.Level < def.MinLevel || !ctx.Actions.IsReady(def.ID) {
		h.setDebug("not ready")
		return false
	}
	if !h.lastProvoke.IsZero() && ctx.Now.Sub(h.lastProvoke) < time.Duration(h.cfg.ProvokeRedelaySec*float64(time.Second)) {
		h.setDebug("redelay")
		return false
	}

	target, ok := h.loose(ctx, def)
	if !ok {
		h.setDebug("aggro held")
		return false
	}
	if !ctx.Allowed(h.name, ctx.Self.HPFraction(), ctx.DamageRate(ctx.Self.ID), isMoving) {
		h.setDebug("vetoed")
		return false
	}
	if !commitAction(ctx, &h.baseHandler, def, target.ID, enemyHPFrac(target), "aggro lost") {
		return false
	}
	h.lastProvoke = ctx.Now
	return true
}

// loose returns the nearest in-range enemy that is attacking someone other
// than the tank.
func (h *ProvokeHandler) loose(ctx *Context, def action.Definition) (actor.EnemyView, bool) {
	var best actor.EnemyView
	found := false
	for _, e := range ctx.Enemies {
		if e.CurrentHP <= 0 {
			continue
		}
		if def.Range > 0 && e.Distance > def.Range {
			continue
		}
		if !h.enmity.LosingAggro(e, ctx.Self.ID) {
			continue
		}
		if !found || e.Distance < best.Distance {
			best, found = e, true
		}
	}
	return best, found
}

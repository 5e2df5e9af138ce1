package rotation

import (
	"time"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
)

// Reaver handler priorities. Unique per rotation; lower runs first.
const (
	reaverPriDoT    = 10
	reaverPriDamage = 20
)

// DoTUpkeepHandler keeps the reaver's damage-over-time applied to its
// current target, refreshing shortly before expiry so ticks are never
// dropped.
type DoTUpkeepHandler struct {
	baseHandler
	cfg config.MeleeConfig
}

// NewDoTUpkeepHandler constructs the handler.
func NewDoTUpkeepHandler(priority int, cfg config.MeleeConfig) *DoTUpkeepHandler {
	return &DoTUpkeepHandler{
		baseHandler: baseHandler{name: "dot_upkeep", priority: priority},
		cfg:         cfg,
	}
}

// TryExecute implements Handler.
func (h *DoTUpkeepHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}
	def, ok := ctx.Def(action.ReaverVenom)
	if !ok || ctx.Self.Level < def.MinLevel {
		h.setDebug("locked")
		return false
	}
	if ctx.Self.CurrentMP < def.MPCost || !ctx.Actions.IsReady(def.ID) {
		h.setDebug("not ready")
		return false
	}
	target, found := nearestEnemy(ctx)
	if !found {
		h.setDebug("no enemy")
		return false
	}
	if def.Range > 0 && target.Distance > def.Range {
		h.setDebug("out of range")
		return false
	}
	if target.StatusRemaining(gauge.StatusVenom) >= h.cfg.DoTRefreshSec {
		h.setDebug("dot rolling")
		return false
	}
	if !ctx.Allowed(h.name, enemyHPFrac(target), 0, isMoving) {
		h.setDebug("vetoed")
		return false
	}
	return commitAction(ctx, &h.baseHandler, def, target.ID, enemyHPFrac(target), "dot upkeep")
}

// MeleeDamageHandler runs the reaver's filler: the AoE on clustered pulls
// when the combo is idle, otherwise the single-target chain.
type MeleeDamageHandler struct {
	baseHandler
	cfg   config.MeleeConfig
	combo *ComboTracker
}

// NewMeleeDamageHandler constructs the handler.
//
// Precondition: combo must not be nil.
func NewMeleeDamageHandler(priority int, cfg config.MeleeConfig, combo *ComboTracker) *MeleeDamageHandler {
	if combo == nil {
		panic("rotation.NewMeleeDamageHandler: precondition violated: combo must not be nil")
	}
	return &MeleeDamageHandler{
		baseHandler: baseHandler{name: "melee_damage", priority: priority},
		cfg:         cfg,
		combo:       combo,
	}
}

// TryExecute implements Handler.
func (h *MeleeDamageHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}

	if len(livingEnemies(ctx)) >= h.cfg.AoEEnemyThreshold && !h.combo.InFlight(ctx.Now) {
		if h.tryAoE(ctx, isMoving) {
			return true
		}
	}
	return h.tryCombo(ctx, isMoving)
}

func (h *MeleeDamageHandler) tryAoE(ctx *Context, isMoving bool) bool {
	def, ok := ctx.Def(action.ReaverMaelstrom)
	if !ok || ctx.Self.Level < def.MinLevel {
		return false
	}
	if ctx.Self.CurrentMP < def.MPCost || !ctx.Actions.IsReady(def.ID) {
		return false
	}
	if !ctx.Allowed(h.name, ctx.Self.HPFraction(), 0, isMoving) {
		h.setDebug("vetoed")
		return false
	}
	return commitAction(ctx, &h.baseHandler, def, ctx.Self.ID, ctx.Self.HPFraction(), "aoe: enemies clustered")
}

func (h *MeleeDamageHandler) tryCombo(ctx *Context, isMoving bool) bool {
	target, found := nearestEnemy(ctx)
	if !found {
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

// NewReaverRotation builds the melee DPS rotation: DoT upkeep, then the
// combo/AoE filler.
func NewReaverRotation(cfg config.MeleeConfig) (*JobRotation, error) {
	combo := NewComboTracker(
		[]action.ID{action.ReaverSlash, action.ReaverRend, action.ReaverEviscerate},
		time.Duration(cfg.ComboTimeoutSec*float64(time.Second)),
	)
	handlers := []Handler{
		NewDoTUpkeepHandler(reaverPriDoT, cfg),
		NewMeleeDamageHandler(reaverPriDamage, cfg, combo),
	}
	return NewJobRotation(actor.JobReaver, handlers, nil)
}

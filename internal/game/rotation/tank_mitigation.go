package rotation

import (
	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/triage"
)

// InvulnHandler is the top of the tank's mitigation ladder: the
// invulnerability fires below a hard HP floor, never while an
// invulnerability or a must-be-healed-to-live status is already running.
type InvulnHandler struct {
	baseHandler
	cfg config.TankConfig
}

// NewInvulnHandler constructs the handler.
func NewInvulnHandler(priority int, cfg config.TankConfig) *InvulnHandler {
	return &InvulnHandler{
		baseHandler: baseHandler{name: "invulnerability", priority: priority},
		cfg:         cfg,
	}
}

// TryExecute implements Handler.
func (h *InvulnHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}
	def, ok := ctx.Def(action.WardenLastStand)
	if !ok || ctx.Self.Level < def.MinLevel {
		h.setDebug("locked")
		return false
	}
	frac := ctx.Pending.PredictedHPFraction(ctx.Self.ID, ctx.Self.CurrentHP, ctx.Self.MaxHP)
	if frac >= h.cfg.InvulnFloor {
		h.setDebug("hp %.0f%% above floor", frac*100)
		return false
	}
	if ctx.Warden.Invulnerable || ctx.Warden.Undying {
		h.setDebug("already covered")
		return false
	}
	if !ctx.Actions.IsReady(def.ID) {
		h.setDebug("on cooldown")
		return false
	}
	if !ctx.Allowed(h.name, frac, ctx.DamageRate(ctx.Self.ID), isMoving) {
		h.setDebug("vetoed")
		return false
	}
	return commitAction(ctx, &h.baseHandler, def, ctx.Self.ID, frac, "hp below invuln floor")
}

// GreatShieldHandler spends the large shield cooldown on any of three
// branches: a hard HP floor; main-tanking under moderate sustained damage;
// or the MP-pooling heuristic that harvests the shield's on-break bonus
// when the resource pool is high and damage is nonzero.
type GreatShieldHandler struct {
	baseHandler
	cfg config.TankConfig
}

// NewGreatShieldHandler constructs the handler.
func NewGreatShieldHandler(priority int, cfg config.TankConfig) *GreatShieldHandler {
	return &GreatShieldHandler{
		baseHandler: baseHandler{name: "great_shield", priority: priority},
		cfg:         cfg,
	}
}

// TryExecute implements Handler.
func (h *GreatShieldHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}
	def, ok := ctx.Def(action.WardenBulwark)
	if !ok || ctx.Self.Level < def.MinLevel {
		h.setDebug("locked")
		return false
	}
	if ctx.Self.CurrentMP < def.MPCost || !ctx.Actions.IsReady(def.ID) {
		h.setDebug("not ready")
		return false
	}

	frac := ctx.Self.HPFraction()
	rate := ctx.DamageRate(ctx.Self.ID)

	var reason string
	switch {
	case frac < h.cfg.ShieldFloor:
		reason = "hp below shield floor"
	case ctx.MainTank() && rate > h.cfg.ShieldModerateRate:
		reason = "main tank under moderate damage"
	case ctx.Warden.MPFraction >= h.cfg.ShieldHarvestMPFraction && rate > 0:
		reason = "mp pool high, harvesting break bonus"
	default:
		h.setDebug("no branch: hp %.0f%%, rate %.0f", frac*100, rate)
		return false
	}

	if !ctx.Allowed(h.name, frac, rate, isMoving) {
		h.setDebug("vetoed")
		return false
	}
	return commitAction(ctx, &h.baseHandler, def, ctx.Self.ID, frac, reason)
}

// MajorMitigationHandler spends the big mitigation cooldown as the shared
// usage policy dictates, keeping uses spread out instead of hoarded.
type MajorMitigationHandler struct {
	baseHandler
	cfg    config.TankConfig
	policy *MitigationPolicy
}

// NewMajorMitigationHandler constructs the handler.
//
// Precondition: policy must not be nil.
func NewMajorMitigationHandler(priority int, cfg config.TankConfig, policy *MitigationPolicy) *MajorMitigationHandler {
	if policy == nil {
		panic("rotation.NewMajorMitigationHandler: precondition violated: policy must not be nil")
	}
	return &MajorMitigationHandler{
		baseHandler: baseHandler{name: "major_mitigation", priority: priority},
		cfg:         cfg,
		policy:      policy,
	}
}

// TryExecute implements Handler.
func (h *MajorMitigationHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}
	def, ok := ctx.Def(action.WardenSentinel)
	if !ok || ctx.Self.Level < def.MinLevel {
		h.setDebug("locked")
		return false
	}
	if !ctx.Actions.IsReady(def.ID) {
		h.setDebug("on cooldown")
		return false
	}

	frac := ctx.Self.HPFraction()
	rate := ctx.DamageRate(ctx.Self.ID)
	if !h.policy.ShouldUse(frac, rate, ctx.Now) {
		h.setDebug("policy declines: hp %.0f%%, rate %.0f", frac*100, rate)
		return false
	}
	if !ctx.Allowed(h.name, frac, rate, isMoving) {
		h.setDebug("vetoed")
		return false
	}
	if !commitAction(ctx, &h.baseHandler, def, ctx.Self.ID, frac, "policy window") {
		return false
	}
	h.policy.MarkUsed(ctx.Now)
	return true
}

// MinorMitigationHandler rolls the short personal cooldowns whenever the
// tank is below the minor gate and actually taking damage.
type MinorMitigationHandler struct {
	baseHandler
	cfg config.TankConfig
}

// NewMinorMitigationHandler constructs the handler.
func NewMinorMitigationHandler(priority int, cfg config.TankConfig) *MinorMitigationHandler {
	return &MinorMitigationHandler{
		baseHandler: baseHandler{name: "minor_mitigation", priority: priority},
		cfg:         cfg,
	}
}

// TryExecute implements Handler.
func (h *MinorMitigationHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}

	frac := ctx.Self.HPFraction()
	rate := ctx.DamageRate(ctx.Self.ID)
	if frac >= h.cfg.MinorMitigationHPGate || rate <= 0 {
		h.setDebug("no pressure: hp %.0f%%, rate %.0f", frac*100, rate)
		return false
	}

	for _, id := range []action.ID{action.WardenRampart, action.WardenIronhide} {
		def, ok := ctx.Def(id)
		if !ok || ctx.Self.Level < def.MinLevel || !ctx.Actions.IsReady(id) {
			continue
		}
		if !ctx.Allowed(h.name, frac, rate, isMoving) {
			h.setDebug("vetoed")
			return false
		}
		return commitAction(ctx, &h.baseHandler, def, ctx.Self.ID, frac, "short cooldown under pressure")
	}
	h.setDebug("all short cooldowns down")
	return false
}

// PartyMitigationHandler spends the party-wide cooldown when enough members
// are injured at once.
type PartyMitigationHandler struct {
	baseHandler
	cfg config.TankConfig
}

// NewPartyMitigationHandler constructs the handler.
func NewPartyMitigationHandler(priority int, cfg config.TankConfig) *PartyMitigationHandler {
	return &PartyMitigationHandler{
		baseHandler: baseHandler{name: "party_mitigation", priority: priority},
		cfg:         cfg,
	}
}

// TryExecute implements Handler.
func (h *PartyMitigationHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.cfg.Handlers, h.name) {
		h.setDebug("disabled")
		return false
	}
	def, ok := ctx.Def(action.WardenReprisal)
	if !ok || ctx.Self.Level < def.MinLevel || !ctx.Actions.IsReady(def.ID) {
		h.setDebug("not ready")
		return false
	}

	injured := triage.CountInjuredInRange(ctx.Party, ctx.Cfg.Engine.EnemyScanRadius, h.cfg.PartyMitThreshold)
	if injured < h.cfg.PartyMitMinInjured {
		h.setDebug("injured %d below %d", injured, h.cfg.PartyMitMinInjured)
		return false
	}
	if ctx.PartyDamageRate() <= 0 {
		h.setDebug("party not taking damage")
		return false
	}
	frac := ctx.Self.HPFraction()
	if !ctx.Allowed(h.name, frac, ctx.DamageRate(ctx.Self.ID), isMoving) {
		h.setDebug("vetoed")
		return false
	}
	return commitAction(ctx, &h.baseHandler, def, ctx.Self.ID, frac, "party-wide pressure")
}

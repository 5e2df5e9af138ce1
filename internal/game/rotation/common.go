package rotation

import (
	"fmt"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
)

// EscalatedThreshold raises base by the largest tier bonus whose min rate
// rate meets or exceeds, capped at ceiling. A target at 35% HP taking 900
// damage/sec is in more danger than one at 35% taking 50/sec; the effective
// emergency threshold reflects that.
//
// Postcondition: The result is non-decreasing in rate for fixed tiers and
// never exceeds max(base, ceiling).
func EscalatedThreshold(base float64, tiers []config.EscalationTier, rate, ceiling float64) float64 {
	bonus := 0.0
	for _, t := range tiers {
		if rate >= t.MinRate && t.Bonus > bonus {
			bonus = t.Bonus
		}
	}
	threshold := base + bonus
	if threshold > ceiling {
		threshold = ceiling
	}
	return threshold
}

// DebuffPriority orders cleansable debuffs by urgency.
type DebuffPriority int

const (
	DebuffLow DebuffPriority = iota
	DebuffMedium
	DebuffHigh
	DebuffLethal
)

// String returns a human-readable priority label.
func (p DebuffPriority) String() string {
	switch p {
	case DebuffLethal:
		return "lethal"
	case DebuffHigh:
		return "high"
	case DebuffMedium:
		return "medium"
	case DebuffLow:
		return "low"
	default:
		return "unknown"
	}
}

// ParseDebuffPriority parses a configured priority name.
//
// Postcondition: Returns an error for unknown names.
func ParseDebuffPriority(s string) (DebuffPriority, error) {
	switch s {
	case "lethal":
		return DebuffLethal, nil
	case "high":
		return DebuffHigh, nil
	case "medium":
		return DebuffMedium, nil
	case "low":
		return DebuffLow, nil
	default:
		return DebuffLow, fmt.Errorf("unknown debuff priority %q", s)
	}
}

// CleansableDebuffs maps removable debuffs to their cleanse priority.
var CleansableDebuffs = map[actor.StatusID]DebuffPriority{
	"debuff.doom":      DebuffLethal,
	"debuff.paralysis": DebuffHigh,
	"debuff.poison":    DebuffMedium,
	"debuff.bleed":     DebuffMedium,
	"debuff.heavy":     DebuffLow,
}

// BuffSpec describes one self-buff a rotation keeps up.
type BuffSpec struct {
	Action action.ID
	Status actor.StatusID
	// MinRemaining re-applies when the buff has less than this many seconds
	// left; 0 re-applies only when absent.
	MinRemaining float64
}

// RegenSpec describes the generic MP-regen fallback tried after job buffs.
type RegenSpec struct {
	Action action.ID
	Status actor.StatusID
	// MPFractionBelow gates the regen to actual need.
	MPFractionBelow float64
}

// tryBuffsThenRegen is the sequencing shared by every job archetype: keep
// job-specific buffs applied, then fall back to the MP-regen cooldown when
// the pool is low. Free function parameterized by per-job specs rather than
// an overridable base class.
func tryBuffsThenRegen(ctx *Context, h *baseHandler, buffs []BuffSpec, regen *RegenSpec) bool {
	for _, b := range buffs {
		def, ok := ctx.Def(b.Action)
		if !ok || ctx.Self.Level < def.MinLevel {
			continue
		}
		if !ctx.Actions.IsReady(b.Action) {
			continue
		}
		if ctx.Self.HasStatus(b.Status) && ctx.Self.StatusRemaining(b.Status) >= b.MinRemaining {
			continue
		}
		if commitAction(ctx, h, def, ctx.Self.ID, ctx.Self.HPFraction(), "buff upkeep") {
			return true
		}
	}

	if regen == nil {
		return false
	}
	def, ok := ctx.Def(regen.Action)
	if !ok || ctx.Self.Level < def.MinLevel {
		return false
	}
	if ctx.Self.MPFraction() >= regen.MPFractionBelow {
		h.setDebug("mp %.0f%% above regen gate", ctx.Self.MPFraction()*100)
		return false
	}
	if ctx.Self.HasStatus(regen.Status) || !ctx.Actions.IsReady(regen.Action) {
		return false
	}
	return commitAction(ctx, h, def, ctx.Self.ID, ctx.Self.HPFraction(), "mp regen")
}

// SelfBuffHandler keeps job buffs and the MP-regen fallback running. Both
// the healer and tank rotations instantiate it with their own specs.
type SelfBuffHandler struct {
	baseHandler
	toggles map[string]bool
	buffs   []BuffSpec
	regen   *RegenSpec
}

// NewSelfBuffHandler constructs a SelfBuffHandler.
func NewSelfBuffHandler(name string, priority int, toggles map[string]bool, buffs []BuffSpec, regen *RegenSpec) *SelfBuffHandler {
	return &SelfBuffHandler{
		baseHandler: baseHandler{name: name, priority: priority},
		toggles:     toggles,
		buffs:       buffs,
		regen:       regen,
	}
}

// TryExecute applies the first missing buff, then the regen fallback.
func (h *SelfBuffHandler) TryExecute(ctx *Context, isMoving bool) bool {
	if !config.HandlerEnabled(h.toggles, h.name) {
		h.setDebug("disabled")
		return false
	}
	if !ctx.Allowed(h.name, ctx.Self.HPFraction(), ctx.DamageRate(ctx.Self.ID), isMoving) {
		h.setDebug("vetoed")
		return false
	}
	return tryBuffsThenRegen(ctx, &h.baseHandler, h.buffs, h.regen)
}

// shieldOf adapts gauge.ShieldAmount to the triage estimator signature.
func shieldOf(a *actor.ActorState) int { return gauge.ShieldAmount(a) }

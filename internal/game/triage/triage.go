// Package triage ranks candidate heal targets. The weighted score combines
// missing HP, current damage rate, the rate-of-change trend, a tank-role
// bonus, and a penalty for targets already covered by shields
// (shield-adjusted effective HP). Ties break by lowest entity id so repeated
// calls with identical input always pick the same target.
package triage

import "github.com/calebrowe/weaver/internal/game/actor"

// rateNorm is the damage rate (HP/sec) that maps to a full-weight score
// contribution. Rates above it saturate at 1.0.
const rateNorm = 1000.0

// Weights configures the triage scoring function. All weights are
// non-negative multipliers over normalized [0,1] terms except ShieldPenalty,
// which subtracts.
type Weights struct {
	MissingHP     float64 `mapstructure:"missing_hp"`
	DamageRate    float64 `mapstructure:"damage_rate"`
	Trend         float64 `mapstructure:"trend"`
	TankBonus     float64 `mapstructure:"tank_bonus"`
	ShieldPenalty float64 `mapstructure:"shield_penalty"`
}

// Preset names accepted by PresetWeights.
const (
	PresetBalanced     = "balanced"
	PresetTankFocus    = "tank-focus"
	PresetSpreadDamage = "spread-damage"
	PresetRaidWide     = "raid-wide"
	PresetCustom       = "custom"
)

// PresetWeights returns the named weight preset.
//
// Postcondition: Returns (Weights{}, false) for unknown names, including
// "custom" (custom weights come from configuration, not a preset).
func PresetWeights(name string) (Weights, bool) {
	switch name {
	case PresetBalanced:
		return Weights{MissingHP: 1.0, DamageRate: 0.6, Trend: 0.3, TankBonus: 0.15, ShieldPenalty: 0.4}, true
	case PresetTankFocus:
		return Weights{MissingHP: 0.8, DamageRate: 0.7, Trend: 0.3, TankBonus: 0.5, ShieldPenalty: 0.3}, true
	case PresetSpreadDamage:
		return Weights{MissingHP: 1.2, DamageRate: 0.3, Trend: 0.1, TankBonus: 0.05, ShieldPenalty: 0.5}, true
	case PresetRaidWide:
		return Weights{MissingHP: 1.0, DamageRate: 0.4, Trend: 0.5, TankBonus: 0.0, ShieldPenalty: 0.6}, true
	default:
		return Weights{}, false
	}
}

// TrendSource answers per-entity damage-rate queries for the current tick.
type TrendSource interface {
	DamageRate(id actor.ID) float64
	Trend(id actor.ID) float64
}

// ShieldEstimator returns the absorb amount currently shielding a.
type ShieldEstimator func(a *actor.ActorState) int

// Score computes the triage score for one candidate. Higher means more
// urgent. All terms are normalized to [0,1] before weighting; the shield
// term is the shield amount as a fraction of max HP.
func Score(m actor.PartyMemberView, src TrendSource, w Weights, shields ShieldEstimator) float64 {
	missing := 1.0 - m.HPFraction()

	rate := src.DamageRate(m.ID) / rateNorm
	if rate > 1 {
		rate = 1
	}

	trend := src.Trend(m.ID) / rateNorm
	if trend > 1 {
		trend = 1
	}
	if trend < 0 {
		trend = 0
	}

	score := w.MissingHP*missing + w.DamageRate*rate + w.Trend*trend
	if m.Role == actor.RoleTank {
		score += w.TankBonus
	}
	if shields != nil && m.MaxHP > 0 {
		shieldFrac := float64(shields(&m.ActorState)) / float64(m.MaxHP)
		if shieldFrac > 1 {
			shieldFrac = 1
		}
		score -= w.ShieldPenalty * shieldFrac
	}
	return score
}

// Select returns the highest-scoring living candidate. Exact score ties
// break by lowest entity id, deterministically.
//
// Postcondition: Returns (zero, false) when no candidate is alive.
func Select(candidates []actor.PartyMemberView, src TrendSource, w Weights, shields ShieldEstimator) (actor.PartyMemberView, bool) {
	var best actor.PartyMemberView
	bestScore := 0.0
	found := false
	for _, m := range candidates {
		if !m.IsAlive() {
			continue
		}
		s := Score(m, src, w, shields)
		switch {
		case !found, s > bestScore:
			best, bestScore, found = m, s, true
		case s == bestScore && m.ID < best.ID:
			best = m
		}
	}
	return best, found
}

// LowestHP returns the living candidate with the lowest HP fraction, ties
// broken by lowest entity id.
//
// Postcondition: Returns (zero, false) when no candidate is alive.
func LowestHP(candidates []actor.PartyMemberView) (actor.PartyMemberView, bool) {
	var best actor.PartyMemberView
	bestFrac := 0.0
	found := false
	for _, m := range candidates {
		if !m.IsAlive() {
			continue
		}
		f := m.HPFraction()
		switch {
		case !found, f < bestFrac:
			best, bestFrac, found = m, f, true
		case f == bestFrac && m.ID < best.ID:
			best = m
		}
	}
	return best, found
}

// CountInjuredWithin counts living candidates below the HP-fraction
// threshold whose position is within radius of center. Used for
// ground-targeted AoE heal gating.
func CountInjuredWithin(candidates []actor.PartyMemberView, center actor.Position, radius, threshold float64) int {
	n := 0
	for _, m := range candidates {
		if !m.IsAlive() || m.HPFraction() >= threshold {
			continue
		}
		if m.Position.DistanceTo(center) <= radius {
			n++
		}
	}
	return n
}

// CountInjuredInRange counts living candidates below the HP-fraction
// threshold within maxDistance of the controlled actor. Used for
// self-centered AoE heal gating.
func CountInjuredInRange(candidates []actor.PartyMemberView, maxDistance, threshold float64) int {
	n := 0
	for _, m := range candidates {
		if !m.IsAlive() || m.HPFraction() >= threshold {
			continue
		}
		if m.Distance <= maxDistance {
			n++
		}
	}
	return n
}

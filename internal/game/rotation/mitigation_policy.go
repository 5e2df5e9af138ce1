package rotation

import (
	"time"

	"github.com/calebrowe/weaver/internal/config"
)

// MitigationPolicy smooths major-cooldown usage against HP and damage rate
// so the big mitigation is neither hoarded nor burned on chip damage. Owned
// by the tank rotation; the major-mitigation handler consults it and marks
// successful uses.
type MitigationPolicy struct {
	hpGate      float64
	rateGate    float64
	minInterval time.Duration
	lastUsed    time.Time
	used        bool
}

// NewMitigationPolicy builds a policy from the tank configuration.
func NewMitigationPolicy(cfg config.TankConfig) *MitigationPolicy {
	return &MitigationPolicy{
		hpGate:      cfg.MitigationHPGate,
		rateGate:    cfg.MitigationRateGate,
		minInterval: time.Duration(cfg.MitigationMinIntervalSec * float64(time.Second)),
	}
}

// ShouldUse reports whether the major mitigation is worth spending now.
// Sustained pressure (below the HP gate while taking real damage) or a deep
// HP deficit qualifies; uses inside the smoothing interval never do.
func (p *MitigationPolicy) ShouldUse(hpFrac, rate float64, now time.Time) bool {
	if p.used && now.Sub(p.lastUsed) < p.minInterval {
		return false
	}
	if hpFrac < p.hpGate && rate > p.rateGate {
		return true
	}
	return hpFrac < p.hpGate/2
}

// MarkUsed records a successful use at now for interval smoothing.
func (p *MitigationPolicy) MarkUsed(now time.Time) {
	p.lastUsed = now
	p.used = true
}

package rotation

import (
	"time"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
)

// Warden handler priorities. Unique per rotation; lower runs first.
const (
	wardenPriInvuln   = 10
	wardenPriShield   = 20
	wardenPriMajorMit = 30
	wardenPriMinorMit = 40
	wardenPriPartyMit = 50
	wardenPriProvoke  = 60
	wardenPriBuffs    = 70
	wardenPriDamage   = 80
)

// NewWardenRotation builds the tank rotation: survival cooldowns descend
// from the invulnerability to party-wide mitigation, then aggro upkeep,
// then the damage combo.
//
// Precondition: enmity must not be nil.
func NewWardenRotation(cfg config.TankConfig, enmity EnmitySource) (*JobRotation, error) {
	policy := NewMitigationPolicy(cfg)
	combo := NewComboTracker(
		[]action.ID{action.WardenSlash, action.WardenRend, action.WardenEviscerate},
		time.Duration(cfg.ComboTimeoutSec*float64(time.Second)),
	)
	handlers := []Handler{
		NewInvulnHandler(wardenPriInvuln, cfg),
		NewGreatShieldHandler(wardenPriShield, cfg),
		NewMajorMitigationHandler(wardenPriMajorMit, cfg, policy),
		NewMinorMitigationHandler(wardenPriMinorMit, cfg),
		NewPartyMitigationHandler(wardenPriPartyMit, cfg),
		NewProvokeHandler(wardenPriProvoke, cfg, enmity),
		NewSelfBuffHandler("self_buff", wardenPriBuffs, cfg.Handlers, []BuffSpec{
			{Action: action.WardenBloodsworn, Status: gauge.StatusBloodsworn},
		}, nil),
		NewTankDamageHandler(wardenPriDamage, cfg, combo),
	}
	return NewJobRotation(actor.JobWarden, handlers, func(ctx *Context) {
		ctx.Warden = gauge.DeriveWarden(ctx.Self)
	})
}

package rotation

import (
	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
)

// Sage handler priorities. Unique per rotation; lower runs first.
const (
	sagePriEmergency = 10
	sagePriCleanse   = 20
	sagePriAoE       = 30
	sagePriCharge    = 40
	sagePriSeal      = 50
	sagePriHoT       = 60
	sagePriBuffs     = 70
	sagePriDamage    = 80
)

// NewSageRotation builds the healer rotation: triage-driven healing first,
// damage filler last.
func NewSageRotation(cfg config.HealerConfig) (*JobRotation, error) {
	handlers := []Handler{
		NewEmergencyHealHandler(sagePriEmergency, cfg),
		NewCleanseHandler(sagePriCleanse, cfg),
		NewAoEHealHandler(sagePriAoE, cfg),
		NewChargeHealHandler(sagePriCharge, cfg),
		NewSealSpenderHandler(sagePriSeal, cfg),
		NewHoTMaintainHandler(sagePriHoT, cfg),
		NewSelfBuffHandler("self_buff", sagePriBuffs, cfg.Handlers, nil, &RegenSpec{
			Action:          action.SageClarity,
			Status:          gauge.StatusClarity,
			MPFractionBelow: cfg.ClarityMPFraction,
		}),
		NewHealerDamageHandler(sagePriDamage, cfg),
	}
	return NewJobRotation(actor.JobSage, handlers, func(ctx *Context) {
		ctx.Sage = gauge.DeriveSage(ctx.Self, ctx.Actions)
	})
}

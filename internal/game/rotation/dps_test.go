package rotation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
	"github.com/calebrowe/weaver/internal/game/rotation"
)

// reaver returns a full-resource controlled melee DPS.
func reaver(id string) *actor.ActorState {
	return &actor.ActorState{
		ID: actor.ID(id), Name: id, Job: actor.JobReaver, Level: 70,
		CurrentHP: 45000, MaxHP: 45000, CurrentMP: 10000, MaxMP: 10000,
	}
}

// TestDoTUpkeep_RefreshWindow verifies the DoT is applied when missing,
// refreshed inside the window, and left alone while rolling.
func TestDoTUpkeep_RefreshWindow(t *testing.T) {
	cfg := config.Default()
	h := rotation.NewDoTUpkeepHandler(10, cfg.Melee)

	withVenom := func(remaining float64) *rotation.Context {
		self := reaver("reaver-1")
		svc := newFakeService()
		ctx := testContext(&cfg, self, svc, []actor.PartyMemberView{selfView(self)})
		e := enemy("boss", 100000, 2, "warden-1")
		if remaining > 0 {
			e.Statuses = []actor.Status{{ID: gauge.StatusVenom, Remaining: remaining}}
		}
		ctx.Enemies = []actor.EnemyView{e}
		return ctx
	}

	t.Run("missing dot is applied", func(t *testing.T) {
		ctx := withVenom(0)
		require.True(t, h.TryExecute(ctx, false))
	})

	t.Run("expiring dot is refreshed", func(t *testing.T) {
		ctx := withVenom(3)
		require.True(t, h.TryExecute(ctx, false))
	})

	t.Run("rolling dot is left alone", func(t *testing.T) {
		ctx := withVenom(12)
		assert.False(t, h.TryExecute(ctx, false))
	})
}

// TestMeleeDamage_ComboAndAoE verifies the reaver filler mirrors the tank's
// cluster logic with its own chain.
func TestMeleeDamage_ComboAndAoE(t *testing.T) {
	cfg := config.Default()
	newHandler := func() *rotation.MeleeDamageHandler {
		combo := rotation.NewComboTracker(
			[]action.ID{action.ReaverSlash, action.ReaverRend, action.ReaverEviscerate},
			time.Duration(cfg.Melee.ComboTimeoutSec*float64(time.Second)),
		)
		return rotation.NewMeleeDamageHandler(20, cfg.Melee, combo)
	}

	t.Run("single target advances the chain", func(t *testing.T) {
		self := reaver("reaver-1")
		svc := newFakeService()
		ctx := testContext(&cfg, self, svc, []actor.PartyMemberView{selfView(self)})
		ctx.Enemies = []actor.EnemyView{enemy("boss", 100000, 2, "warden-1")}
		h := newHandler()

		for _, want := range []action.ID{action.ReaverSlash, action.ReaverRend, action.ReaverEviscerate} {
			require.True(t, h.TryExecute(ctx, false))
			assert.Equal(t, want, svc.executed[len(svc.executed)-1].id)
		}
	})

	t.Run("clustered pull takes the aoe", func(t *testing.T) {
		self := reaver("reaver-1")
		svc := newFakeService()
		ctx := testContext(&cfg, self, svc, []actor.PartyMemberView{selfView(self)})
		ctx.Enemies = []actor.EnemyView{
			enemy("add-1", 20000, 2, "warden-1"),
			enemy("add-2", 20000, 2, "warden-1"),
			enemy("add-3", 20000, 2, "warden-1"),
		}
		h := newHandler()

		require.True(t, h.TryExecute(ctx, false))
		assert.Equal(t, action.ReaverMaelstrom, svc.executed[0].id)
	})
}

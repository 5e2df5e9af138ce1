package rotation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/rotation"
)

// TestEmergencyHeal_RollbackOnFailedExecute verifies the pending-heal
// registration disappears and the target stays unreserved when the execute
// primitive fails.
func TestEmergencyHeal_RollbackOnFailedExecute(t *testing.T) {
	cfg := config.Default()
	self := sage("sage-1")
	svc := newFakeService()
	svc.fail[action.SageGreaterMend] = true

	ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{selfView(self), ally("ally-1", 2000)})
	h := rotation.NewEmergencyHealHandler(10, cfg.Healer)

	assert.False(t, h.TryExecute(ctx, false))
	assert.Zero(t, ctx.Pending.Count(), "a failed cast must leave no ledger entry")
	assert.False(t, ctx.Reserved.IsReserved("ally-1"), "a failed cast must not reserve the target")
}

// TestEmergencyHeal_ReservesOnSuccess verifies the success path registers
// the pending heal and claims the target.
func TestEmergencyHeal_ReservesOnSuccess(t *testing.T) {
	cfg := config.Default()
	self := sage("sage-1")
	svc := newFakeService()

	ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{selfView(self), ally("ally-1", 2000)})
	h := rotation.NewEmergencyHealHandler(10, cfg.Healer)

	require.True(t, h.TryExecute(ctx, false))
	assert.True(t, ctx.Reserved.IsReserved("ally-1"))
	assert.Equal(t, 9000, ctx.Pending.Pending("ally-1"), "the estimated heal must be pending")
}

// TestReservation_ExcludesTargetFromLaterHandlers verifies a later handler
// in the same tick cannot select an already-claimed target.
func TestReservation_ExcludesTargetFromLaterHandlers(t *testing.T) {
	cfg := config.Default()
	self := sage("sage-1")
	svc := newFakeService()
	svc.charges[action.SageSwiftmend] = [2]int{1, 2}

	ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{selfView(self), ally("ally-1", 2000)})

	first := rotation.NewEmergencyHealHandler(10, cfg.Healer)
	second := rotation.NewChargeHealHandler(40, cfg.Healer)

	require.True(t, first.TryExecute(ctx, false))
	require.True(t, ctx.Reserved.IsReserved("ally-1"))

	assert.False(t, second.TryExecute(ctx, false),
		"the claimed target must be invisible to later handlers this tick")
	require.Len(t, svc.executed, 1)
}

// TestEmergencyHeal_MovementGate verifies casted heals are skipped while
// moving unless the instant-cast valve is active.
func TestEmergencyHeal_MovementGate(t *testing.T) {
	cfg := config.Default()
	self := sage("sage-1")

	t.Run("moving blocks the cast", func(t *testing.T) {
		svc := newFakeService()
		ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{selfView(self), ally("ally-1", 2000)})
		h := rotation.NewEmergencyHealHandler(10, cfg.Healer)

		assert.False(t, h.TryExecute(ctx, true))
		assert.Empty(t, svc.executed)
	})

	t.Run("the instant-cast valve overrides movement", func(t *testing.T) {
		svc := newFakeService()
		ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{selfView(self), ally("ally-1", 2000)})
		ctx.Sage.Freecast = true
		h := rotation.NewEmergencyHealHandler(10, cfg.Healer)

		assert.True(t, h.TryExecute(ctx, true))
	})
}

// TestAoEHeal_MinimumTargetBoundary verifies the gate at exactly minimum-1
// and minimum covered members.
func TestAoEHeal_MinimumTargetBoundary(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, 3, cfg.Healer.AoEMinTargets)
	self := sage("sage-1")

	t.Run("one short of the minimum declines", func(t *testing.T) {
		svc := newFakeService()
		ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{
			selfView(self), ally("ally-a", 5000), ally("ally-b", 5000),
		})
		h := rotation.NewAoEHealHandler(30, cfg.Healer)

		assert.False(t, h.TryExecute(ctx, false),
			"two covered members must not fire a three-target minimum")
		assert.Empty(t, svc.executed)
	})

	t.Run("exactly the minimum commits and reserves all covered", func(t *testing.T) {
		svc := newFakeService()
		ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{
			selfView(self), ally("ally-a", 5000), ally("ally-b", 5000), ally("ally-c", 5000),
		})
		h := rotation.NewAoEHealHandler(30, cfg.Healer)

		require.True(t, h.TryExecute(ctx, false))
		assert.Equal(t, 3, ctx.Pending.Count(), "each covered member gets a pending registration")
		for _, id := range []actor.ID{"ally-a", "ally-b", "ally-c"} {
			assert.True(t, ctx.Reserved.IsReserved(id))
		}
	})
}

// TestAoEHeal_OverhealSafetyExcludesNearlyFull verifies members whose
// predicted deficit is under the per-target heal never count toward the bar.
func TestAoEHeal_OverhealSafetyExcludesNearlyFull(t *testing.T) {
	cfg := config.Default()
	self := sage("sage-1")
	svc := newFakeService()

	// Two deep deficits plus one member missing less than the per-target
	// heal: coverage is 2, below the bar.
	ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{
		selfView(self), ally("ally-a", 5000), ally("ally-b", 5000), ally("ally-c", 9000),
	})
	h := rotation.NewAoEHealHandler(30, cfg.Healer)

	assert.False(t, h.TryExecute(ctx, false))
}

// TestAoEHeal_RollbackOnFailedExecute verifies every per-member
// registration is rolled back when the cast fails.
func TestAoEHeal_RollbackOnFailedExecute(t *testing.T) {
	cfg := config.Default()
	self := sage("sage-1")
	svc := newFakeService()
	svc.fail[action.SageRadiance] = true
	svc.notReady[action.SageBenison] = true

	ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{
		selfView(self), ally("ally-a", 5000), ally("ally-b", 5000), ally("ally-c", 5000),
	})
	h := rotation.NewAoEHealHandler(30, cfg.Healer)

	assert.False(t, h.TryExecute(ctx, false))
	assert.Zero(t, ctx.Pending.Count())
	assert.Zero(t, ctx.Reserved.Len())
}

// TestChargeHeal_OverhealPolicies verifies the ratio loosens at max charges
// and during a spike.
func TestChargeHeal_OverhealPolicies(t *testing.T) {
	cfg := config.Default()
	self := sage("sage-1")

	// 85% predicted HP: above the normal 70% ratio, below the max-charge 90%.
	target := ally("ally-1", 8500)

	t.Run("normal ratio declines at 85%", func(t *testing.T) {
		svc := newFakeService()
		svc.charges[action.SageSwiftmend] = [2]int{1, 2}
		ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{target})
		h := rotation.NewChargeHealHandler(40, cfg.Healer)

		assert.False(t, h.TryExecute(ctx, false))
	})

	t.Run("max charges loosen the ratio", func(t *testing.T) {
		svc := newFakeService()
		svc.charges[action.SageSwiftmend] = [2]int{2, 2}
		ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{target})
		h := rotation.NewChargeHealHandler(40, cfg.Healer)

		assert.True(t, h.TryExecute(ctx, false),
			"a capped charge wastes regeneration; 85% must qualify under the 90% ratio")
	})

	t.Run("an imminent spike loosens the ratio further", func(t *testing.T) {
		svc := newFakeService()
		svc.charges[action.SageSwiftmend] = [2]int{1, 2}
		spiky := ally("ally-1", 9300)
		ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{spiky})

		// A burst in the recent half-window over light chip damage.
		ctx.Intake.RecordDamage("ally-1", 100, ctx.Now.Add(-4*time.Second))
		ctx.Intake.RecordDamage("ally-1", 4000, ctx.Now.Add(-100*time.Millisecond))
		require.True(t, ctx.SpikeImminent("ally-1"))

		h := rotation.NewChargeHealHandler(40, cfg.Healer)
		assert.True(t, h.TryExecute(ctx, false),
			"93% must qualify under the 95% spike ratio")
	})
}

// TestSealSpender_Band verifies the exactly-one-short seal band and the
// deficit floor.
func TestSealSpender_Band(t *testing.T) {
	cfg := config.Default()
	newCtx := func(seals int, hp int) (*rotation.Context, *fakeService) {
		self := sage("sage-1")
		svc := newFakeService()
		ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{selfView(self), ally("ally-1", hp)})
		ctx.Sage.Seals = seals
		return ctx, svc
	}
	h := rotation.NewSealSpenderHandler(50, cfg.Healer)

	t.Run("fires at one short with a real deficit", func(t *testing.T) {
		ctx, svc := newCtx(2, 6000)
		require.True(t, h.TryExecute(ctx, false))
		require.Len(t, svc.executed, 1)
		assert.Equal(t, action.SageSealburst, svc.executed[0].id)
	})

	t.Run("outside the band declines", func(t *testing.T) {
		for _, seals := range []int{0, 1, 3} {
			ctx, _ := newCtx(seals, 6000)
			assert.False(t, h.TryExecute(ctx, false), "seals=%d must decline", seals)
		}
	})

	t.Run("a shallow deficit declines", func(t *testing.T) {
		ctx, _ := newCtx(2, 9000)
		assert.False(t, h.TryExecute(ctx, false),
			"missing 1000 is under the 2000 minimum deficit")
	})
}

// TestCleanse_PriorityAndTieBreak verifies highest priority wins, the
// soonest expiry breaks ties, and the configured floor holds.
func TestCleanse_PriorityAndTieBreak(t *testing.T) {
	cfg := config.Default()
	self := sage("sage-1")
	h := rotation.NewCleanseHandler(20, cfg.Healer)

	withDebuff := func(id string, status actor.StatusID, remaining float64) actor.PartyMemberView {
		m := ally(id, 9000)
		m.Statuses = []actor.Status{{ID: status, Remaining: remaining}}
		return m
	}

	t.Run("higher priority debuff wins", func(t *testing.T) {
		svc := newFakeService()
		ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{
			selfView(self),
			withDebuff("ally-a", "debuff.poison", 10),
			withDebuff("ally-b", "debuff.paralysis", 10),
		})
		require.True(t, h.TryExecute(ctx, false))
		require.Len(t, svc.executed, 1)
		assert.Equal(t, "ally-b", svc.executed[0].target)
	})

	t.Run("equal priority breaks on soonest expiry", func(t *testing.T) {
		svc := newFakeService()
		ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{
			selfView(self),
			withDebuff("ally-a", "debuff.poison", 12),
			withDebuff("ally-b", "debuff.poison", 3),
		})
		require.True(t, h.TryExecute(ctx, false))
		assert.Equal(t, "ally-b", svc.executed[0].target)
	})

	t.Run("below the configured floor declines", func(t *testing.T) {
		svc := newFakeService()
		ctx := sageContext(&cfg, self, svc, []actor.PartyMemberView{
			selfView(self),
			withDebuff("ally-a", "debuff.heavy", 10),
		})
		assert.False(t, h.TryExecute(ctx, false),
			"a low-priority debuff is under the default medium floor")
	})
}

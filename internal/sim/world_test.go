package sim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
	"github.com/calebrowe/weaver/internal/game/rotation"
	"github.com/calebrowe/weaver/internal/observability"
	"github.com/calebrowe/weaver/internal/sim"
)

// testEncounter returns a two-member party with one boss on the tank.
func testEncounter(player string, waves []sim.WaveSpec, debuffs []sim.DebuffSpec) sim.Encounter {
	return sim.Encounter{
		Name:        "test",
		DurationSec: 120,
		Player:      player,
		Party: []sim.MemberSpec{
			{ID: "sage-1", Name: "Sage One", Job: "sage", Level: 70, HP: 40000, MP: 10000},
			{ID: "warden-1", Name: "Warden One", Job: "warden", Level: 70, HP: 60000, MP: 10000},
		},
		Enemies: []sim.EnemySpec{
			{ID: "boss", Name: "Boss", HP: 500000, Target: "warden-1"},
		},
		Waves:   waves,
		Debuffs: debuffs,
	}
}

func newWorld(t *testing.T, enc sim.Encounter) *sim.World {
	t.Helper()
	require.NoError(t, enc.Validate())
	return sim.NewWorld(enc, action.DefaultCatalog(), zap.NewNop())
}

func memberHP(t *testing.T, w *sim.World, id actor.ID) int {
	t.Helper()
	for _, m := range w.PartyMembers() {
		if m.ID == id {
			return m.CurrentHP
		}
	}
	t.Fatalf("member %s not in snapshot", id)
	return 0
}

// TestWorld_WaveDamageRepeats verifies scripted waves fire at their times
// and repeat on schedule.
func TestWorld_WaveDamageRepeats(t *testing.T) {
	w := newWorld(t, testEncounter("sage-1", []sim.WaveSpec{
		{AtSec: 1, Target: "tank", Amount: 1000, RepeatSec: 2, Count: 3},
	}, nil))

	w.Advance(0.5)
	assert.Equal(t, 60000, memberHP(t, w, "warden-1"), "nothing fires before at_sec")

	w.Advance(0.6) // elapsed 1.1: first hit
	assert.Equal(t, 59000, memberHP(t, w, "warden-1"))

	w.Advance(2.0) // elapsed 3.1: second hit
	assert.Equal(t, 58000, memberHP(t, w, "warden-1"))

	w.Advance(10.0) // count exhausted after the third
	assert.Equal(t, 57000, memberHP(t, w, "warden-1"))
}

// TestWorld_BarrierAbsorbs verifies shield stacks soak damage before HP.
func TestWorld_BarrierAbsorbs(t *testing.T) {
	w := newWorld(t, testEncounter("warden-1", []sim.WaveSpec{
		{AtSec: 1, Target: "tank", Amount: 1500},
	}, nil))

	require.True(t, w.ExecuteOGCD(action.WardenBulwark, "warden-1"))
	w.Advance(1.1)

	assert.Equal(t, 60000, memberHP(t, w, "warden-1"), "the barrier must soak the full hit")
	for _, m := range w.PartyMembers() {
		if m.ID == "warden-1" {
			assert.Equal(t, 5, m.StatusStacks(gauge.StatusBarrier), "1500 damage costs 15 of 20 stacks")
		}
	}
}

// TestWorld_LastStandFloorsHP verifies a lethal hit under the
// invulnerability leaves the tank at 1 HP with no death counted.
func TestWorld_LastStandFloorsHP(t *testing.T) {
	w := newWorld(t, testEncounter("warden-1", []sim.WaveSpec{
		{AtSec: 1, Target: "tank", Amount: 70000},
	}, nil))

	require.True(t, w.ExecuteOGCD(action.WardenLastStand, "warden-1"))
	w.Advance(1.1)

	assert.Equal(t, 1, memberHP(t, w, "warden-1"))
	assert.Zero(t, w.Deaths)
}

// TestWorld_DeathIsCounted verifies a lethal hit without a save zeroes HP
// and increments the counter.
func TestWorld_DeathIsCounted(t *testing.T) {
	w := newWorld(t, testEncounter("sage-1", []sim.WaveSpec{
		{AtSec: 1, Target: "tank", Amount: 70000},
	}, nil))

	w.Advance(1.1)
	assert.Equal(t, 0, memberHP(t, w, "warden-1"))
	assert.Equal(t, 1, w.Deaths)
}

// TestWorld_HealsLandAfterDelay verifies a committed cast changes snapshot
// HP only after cast time plus the landing delay.
func TestWorld_HealsLandAfterDelay(t *testing.T) {
	w := newWorld(t, testEncounter("sage-1", []sim.WaveSpec{
		{AtSec: 0.5, Target: "tank", Amount: 5000},
	}, nil))

	w.Advance(1.0)
	require.Equal(t, 55000, memberHP(t, w, "warden-1"))

	// Mend: 2.0s cast, lands 0.3s after the cast resolves.
	require.True(t, w.ExecuteGCD(action.SageMend, "warden-1"))

	w.Advance(2.0) // elapsed 3.0 < 3.3
	assert.Equal(t, 55000, memberHP(t, w, "warden-1"), "the heal must still be in flight")

	w.Advance(0.5) // elapsed 3.5
	assert.Equal(t, 59500, memberHP(t, w, "warden-1"))
}

// TestWorld_GCDLockout verifies globals share one recast while off-globals
// stay available.
func TestWorld_GCDLockout(t *testing.T) {
	w := newWorld(t, testEncounter("sage-1", nil, nil))

	require.True(t, w.ExecuteGCD(action.SageLance, "boss"))
	assert.False(t, w.IsReady(action.SageMend), "globals share the recast")
	assert.True(t, w.IsReady(action.SageSwiftmend), "off-globals do not")

	w.Advance(2.6)
	assert.True(t, w.IsReady(action.SageMend))
}

// TestWorld_SwiftmendCharges verifies charges deplete per cast and recharge
// on their own staggered timers.
func TestWorld_SwiftmendCharges(t *testing.T) {
	w := newWorld(t, testEncounter("sage-1", []sim.WaveSpec{
		{AtSec: 0.1, Target: "tank", Amount: 20000},
	}, nil))
	w.Advance(0.2)

	cur, max := w.Charges(action.SageSwiftmend)
	require.Equal(t, 2, cur)
	require.Equal(t, 2, max)

	require.True(t, w.ExecuteOGCD(action.SageSwiftmend, "warden-1"))
	w.Advance(1.0)
	require.True(t, w.ExecuteOGCD(action.SageSwiftmend, "warden-1"))

	cur, _ = w.Charges(action.SageSwiftmend)
	assert.Zero(t, cur)
	assert.False(t, w.IsReady(action.SageSwiftmend))

	w.Advance(29.5) // elapsed 30.7: first recharge due, second not yet
	cur, _ = w.Charges(action.SageSwiftmend)
	assert.Equal(t, 1, cur)

	w.Advance(1.0)
	cur, _ = w.Charges(action.SageSwiftmend)
	assert.Equal(t, 2, cur)
}

// TestWorld_PurifyRemovesDebuff verifies the scripted debuff lands and the
// cleanse removes it.
func TestWorld_PurifyRemovesDebuff(t *testing.T) {
	w := newWorld(t, testEncounter("sage-1", nil, []sim.DebuffSpec{
		{AtSec: 1, Target: "warden-1", Status: "debuff.poison", DurationSec: 20},
	}))

	w.Advance(1.1)
	for _, m := range w.PartyMembers() {
		if m.ID == "warden-1" {
			require.True(t, m.HasStatus("debuff.poison"))
		}
	}

	require.True(t, w.ExecuteGCD(action.SagePurify, "warden-1"))
	for _, m := range w.PartyMembers() {
		if m.ID == "warden-1" {
			assert.False(t, m.HasStatus("debuff.poison"))
		}
	}
}

// TestWorld_ProvokeRetargets verifies a provoked enemy switches to the
// player.
func TestWorld_ProvokeRetargets(t *testing.T) {
	enc := testEncounter("warden-1", nil, nil)
	enc.Enemies[0].Target = "sage-1"
	w := newWorld(t, enc)

	require.True(t, w.ExecuteOGCD(action.WardenProvoke, "boss"))
	enemies := w.NearbyEnemies(50)
	require.Len(t, enemies, 1)
	assert.Equal(t, actor.ID("warden-1"), enemies[0].TargetID)
}

// TestWorld_MovementWindows verifies the scripted windows drive IsMoving.
func TestWorld_MovementWindows(t *testing.T) {
	enc := testEncounter("sage-1", nil, nil)
	enc.Movement = []sim.WindowSpec{{FromSec: 2, ToSec: 4}}
	w := newWorld(t, enc)

	assert.False(t, w.IsMoving())
	w.Advance(2.5)
	assert.True(t, w.IsMoving())
	w.Advance(2.0)
	assert.False(t, w.IsMoving())
}

// TestWorld_DriverLoop runs the full pipeline for thirty simulated seconds:
// scripted tank damage, the sage rotation deciding against live snapshots,
// heals landing with delay. Nobody may die and the rotation must act.
func TestWorld_DriverLoop(t *testing.T) {
	cfg := config.Default()
	w := newWorld(t, testEncounter("sage-1", []sim.WaveSpec{
		{AtSec: 1, Target: "tank", Amount: 1500, RepeatSec: 1.5, Count: 18},
	}, nil))

	log := observability.NewDecisionLog(zap.NewNop(), 256)
	sched, err := rotation.NewScheduler(zap.NewNop(), w, w, action.DefaultCatalog(), &cfg, log, nil)
	require.NoError(t, err)
	require.NoError(t, rotation.RegisterDefaults(sched, &cfg))
	require.True(t, sched.UpdateActiveRotation(actor.JobSage))

	start := time.Now()
	dt := float64(cfg.Engine.TickIntervalMs) / 1000
	actions := 0
	for w.Elapsed() < 30 {
		w.Advance(dt)
		if sched.Execute(start.Add(time.Duration(w.Elapsed() * float64(time.Second)))) {
			actions++
		}
	}

	assert.Zero(t, w.Deaths, "scripted pressure at this level must be survivable")
	assert.Positive(t, actions, "the rotation must commit actions over thirty seconds")
	assert.NotEmpty(t, w.Casts)
}

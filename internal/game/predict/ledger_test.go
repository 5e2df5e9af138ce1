package predict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/predict"
)

const target = actor.ID("member-1")

// TestLedger_RegisterAndPending verifies pending totals accumulate per target.
func TestLedger_RegisterAndPending(t *testing.T) {
	l := predict.NewLedger()

	l.Register(target, 3000, 1)
	l.Register(target, 2000, 1)
	l.Register("member-2", 500, 1)

	assert.Equal(t, 5000, l.Pending(target))
	assert.Equal(t, 500, l.Pending("member-2"))
	assert.Equal(t, 3, l.Count())
}

// TestLedger_Rollback verifies a rolled-back registration no longer
// contributes, and that rolling back twice is a no-op.
func TestLedger_Rollback(t *testing.T) {
	l := predict.NewLedger()

	r1 := l.Register(target, 3000, 1)
	l.Register(target, 2000, 1)

	l.Rollback(r1)
	assert.Equal(t, 2000, l.Pending(target), "only the rolled-back entry may disappear")

	l.Rollback(r1)
	assert.Equal(t, 2000, l.Pending(target), "double rollback must be a no-op")
}

// TestLedger_MarkLanded verifies a covering gain clears the target's
// entries and only that target's.
func TestLedger_MarkLanded(t *testing.T) {
	l := predict.NewLedger()

	l.Register(target, 3000, 1)
	l.Register(target, 2000, 2)
	l.Register("member-2", 500, 2)

	l.MarkLanded(target, 5000)

	assert.Zero(t, l.Pending(target))
	assert.Equal(t, 500, l.Pending("member-2"))
}

// TestLedger_MarkLanded_PartialGain verifies a small observed gain (a regen
// or HoT tick) reduces the oldest entry instead of wiping a heal still in
// flight.
func TestLedger_MarkLanded_PartialGain(t *testing.T) {
	l := predict.NewLedger()
	l.Register(target, 9000, 1)

	l.MarkLanded(target, 10)
	assert.Equal(t, 8990, l.Pending(target),
		"a 10-HP tick must not clear a 9000-HP heal in flight")
	assert.Equal(t, 1, l.Count())

	l.MarkLanded(target, 8990)
	assert.Zero(t, l.Pending(target), "cumulative gain covering the amount clears the entry")
}

// TestLedger_MarkLanded_OldestFirst verifies gains are credited to the
// oldest registration before newer ones.
func TestLedger_MarkLanded_OldestFirst(t *testing.T) {
	l := predict.NewLedger()
	l.Register(target, 3000, 1)
	l.Register(target, 2000, 2)

	l.MarkLanded(target, 3500)

	assert.Equal(t, 1500, l.Pending(target))
	assert.Equal(t, 1, l.Count(), "the older entry must clear, the newer one shrink")
}

// TestLedger_MarkLanded_PanicsOnNonPositiveGain verifies the precondition.
func TestLedger_MarkLanded_PanicsOnNonPositiveGain(t *testing.T) {
	l := predict.NewLedger()
	require.Panics(t, func() { l.MarkLanded(target, 0) })
}

// TestLedger_ExpireStale verifies the stale-tick safety valve drops only
// entries older than the age limit.
func TestLedger_ExpireStale(t *testing.T) {
	l := predict.NewLedger()

	l.Register(target, 3000, 1)
	l.Register(target, 2000, 40)

	l.ExpireStale(50, 30)

	assert.Equal(t, 2000, l.Pending(target), "the tick-1 entry must expire at tick 50 with maxAge 30")
}

// TestLedger_PredictedHP verifies the cap at max HP and the derived
// fraction/missing queries.
func TestLedger_PredictedHP(t *testing.T) {
	l := predict.NewLedger()
	l.Register(target, 4000, 1)

	assert.Equal(t, 9000, l.PredictedHP(target, 5000, 10000))
	assert.InDelta(t, 0.9, l.PredictedHPFraction(target, 5000, 10000), 0.001)
	assert.Equal(t, 1000, l.PredictedMissing(target, 5000, 10000))

	l.Register(target, 4000, 1)
	assert.Equal(t, 10000, l.PredictedHP(target, 5000, 10000), "predicted HP must cap at max")
	assert.Zero(t, l.PredictedMissing(target, 5000, 10000))
}

// TestLedger_Register_PanicsOnNonPositiveAmount verifies the precondition.
func TestLedger_Register_PanicsOnNonPositiveAmount(t *testing.T) {
	l := predict.NewLedger()
	require.Panics(t, func() { l.Register(target, 0, 1) })
}

// TestLedger_Rollback_Property verifies that registering and immediately
// rolling back leaves the ledger exactly as it was, for arbitrary prior
// contents.
func TestLedger_Rollback_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := predict.NewLedger()

		prior := rapid.SliceOfN(rapid.IntRange(1, 9999), 0, 20).Draw(rt, "prior")
		for _, a := range prior {
			l.Register(target, a, 1)
		}
		before := l.Pending(target)
		beforeCount := l.Count()

		r := l.Register(target, rapid.IntRange(1, 9999).Draw(rt, "amount"), 2)
		l.Rollback(r)

		assert.Equal(rt, before, l.Pending(target),
			"register+rollback must leave the pending total unchanged")
		assert.Equal(rt, beforeCount, l.Count(),
			"register+rollback must leave the entry count unchanged")
	})
}

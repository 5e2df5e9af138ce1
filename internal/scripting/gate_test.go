package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calebrowe/weaver/internal/scripting"
)

func writeProfile(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.lua")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// TestVetoGate_ExplicitFalseVetoes verifies only a boolean false return
// vetoes the handler.
func TestVetoGate_ExplicitFalseVetoes(t *testing.T) {
	path := writeProfile(t, `
function allow_emergency_heal(hp_frac, rate, moving)
  return hp_frac > 0.5
end
`)
	gate, err := scripting.LoadVetoGate(path, 0, zap.NewNop())
	require.NoError(t, err)
	defer gate.Close()

	assert.False(t, gate.Allow("emergency_heal", 0.2, 100, false))
	assert.True(t, gate.Allow("emergency_heal", 0.8, 100, false))
}

// TestVetoGate_MissingFunctionAllows verifies the fail-open default for
// handlers the profile never mentions.
func TestVetoGate_MissingFunctionAllows(t *testing.T) {
	path := writeProfile(t, `function allow_cleanse() return false end`)
	gate, err := scripting.LoadVetoGate(path, 0, zap.NewNop())
	require.NoError(t, err)
	defer gate.Close()

	assert.True(t, gate.Allow("emergency_heal", 0.1, 500, false))
	assert.False(t, gate.Allow("cleanse", 0.1, 500, false))
}

// TestVetoGate_ErrorFailsOpen verifies a hook that raises keeps the handler
// enabled.
func TestVetoGate_ErrorFailsOpen(t *testing.T) {
	path := writeProfile(t, `
function allow_aoe_heal(hp_frac, rate, moving)
  error("boom")
end
`)
	gate, err := scripting.LoadVetoGate(path, 0, zap.NewNop())
	require.NoError(t, err)
	defer gate.Close()

	assert.True(t, gate.Allow("aoe_heal", 0.5, 0, false))
}

// TestVetoGate_NonBooleanReturnAllows verifies non-boolean returns are not
// treated as vetoes.
func TestVetoGate_NonBooleanReturnAllows(t *testing.T) {
	path := writeProfile(t, `function allow_seal_spender() return "no" end`)
	gate, err := scripting.LoadVetoGate(path, 0, zap.NewNop())
	require.NoError(t, err)
	defer gate.Close()

	assert.True(t, gate.Allow("seal_spender", 0.5, 0, false))
}

// TestVetoGate_MovementArgument verifies the moving flag reaches the hook.
func TestVetoGate_MovementArgument(t *testing.T) {
	path := writeProfile(t, `
function allow_hot_maintain(hp_frac, rate, moving)
  return not moving
end
`)
	gate, err := scripting.LoadVetoGate(path, 0, zap.NewNop())
	require.NoError(t, err)
	defer gate.Close()

	assert.True(t, gate.Allow("hot_maintain", 0.5, 0, false))
	assert.False(t, gate.Allow("hot_maintain", 0.5, 0, true))
}

// TestVetoGate_InstructionLimit verifies a runaway hook is cut off and fails
// open, and that the budget resets so the next call still works.
func TestVetoGate_InstructionLimit(t *testing.T) {
	path := writeProfile(t, `
function allow_spin(hp_frac, rate, moving)
  while true do end
end

function allow_quick(hp_frac, rate, moving)
  return false
end
`)
	gate, err := scripting.LoadVetoGate(path, 1000, zap.NewNop())
	require.NoError(t, err)
	defer gate.Close()

	assert.True(t, gate.Allow("spin", 0.5, 0, false), "a terminated hook must fail open")
	assert.False(t, gate.Allow("quick", 0.5, 0, false), "the budget must reset between calls")
}

// TestLoadVetoGate_BadProfile verifies a syntax error surfaces at load time.
func TestLoadVetoGate_BadProfile(t *testing.T) {
	path := writeProfile(t, `function allow_( broken`)
	_, err := scripting.LoadVetoGate(path, 0, zap.NewNop())
	require.Error(t, err)
}

package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// VetoGate evaluates optional user-defined Lua hooks of the form
//
//	function allow_<handler>(hp_frac, rate, moving) ... end
//
// An explicit false return vetoes the handler for the current tick. A
// missing function, a non-boolean return, or a Lua error is fail-open: the
// handler runs. Not safe for concurrent use.
type VetoGate struct {
	state  *lua.LState
	logger *zap.Logger
	limit  int
}

// LoadVetoGate compiles the Lua profile at path into a sandboxed VM.
//
// Precondition: logger must not be nil.
// Postcondition: Returns a ready VetoGate or a non-nil error if the profile
// fails to load. The caller must Close the gate when done.
func LoadVetoGate(path string, instLimit int, logger *zap.Logger) (*VetoGate, error) {
	if logger == nil {
		panic("scripting.LoadVetoGate: precondition violated: logger must not be nil")
	}
	L := NewSandboxedState(instLimit)
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading veto profile %q: %w", path, err)
	}
	return &VetoGate{state: L, logger: logger, limit: instLimit}, nil
}

// Allow reports whether handler may run this tick given the candidate's HP
// fraction, damage rate, and the movement flag.
//
// Postcondition: Returns true unless the profile defines
// allow_<handler> and that function returns boolean false.
func (g *VetoGate) Allow(handler string, hpFrac, rate float64, moving bool) bool {
	fn := g.state.GetGlobal("allow_" + handler)
	if fn == lua.LNil {
		return true
	}

	ResetBudget(g.state, g.limit)
	err := g.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LNumber(hpFrac), lua.LNumber(rate), lua.LBool(moving))
	if err != nil {
		// Fail open: a broken hook must not disable the rotation.
		g.logger.Debug("veto hook error", zap.String("handler", handler), zap.Error(err))
		return true
	}
	ret := g.state.Get(-1)
	g.state.Pop(1)

	return ret != lua.LFalse
}

// Close releases the Lua VM.
func (g *VetoGate) Close() {
	g.state.Close()
}

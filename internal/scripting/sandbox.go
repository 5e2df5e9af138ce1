// Package scripting provides a sandboxed GopherLua environment for user
// veto hooks: small functions that can decline a decision handler for the
// current tick. It has no dependency on game domain packages; the rotation
// layer talks to it through a one-method interface.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// hook call when no override is configured.
const DefaultInstructionLimit = 50_000

// opcodeBudget is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua calls Done() once per opcode, which
// makes this an exact instruction-count limit.
type opcodeBudget struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done returns the underlying cancellation channel. Each call decrements the
// remaining counter; at zero the budget cancels, terminating the VM on the
// next opcode boundary.
func (b *opcodeBudget) Done() <-chan struct{} {
	if b.remaining.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

func newOpcodeBudget(limit int) context.Context {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &opcodeBudget{Context: base, cancel: cancel, remaining: rem}
}

// NewSandboxedState creates a GopherLua LState with only the safe stdlib
// loaded (base, table, string, math), dangerous globals stripped, and
// execution limited to instLimit opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil LState. The caller owns it and must call
// Close when done.
func NewSandboxedState(instLimit int) *lua.LState {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetContext(newOpcodeBudget(limit))

	return L
}

// ResetBudget installs a fresh opcode budget on L. Callers invoking hooks
// repeatedly must reset between calls so one call cannot starve the next.
func ResetBudget(L *lua.LState, instLimit int) {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	L.SetContext(newOpcodeBudget(limit))
}

package observability

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Decision is one entry in the decision-log event stream: which handler
// acted, on whom, with what, and why. The stream is append-only; the engine
// never reads it back.
type Decision struct {
	// EventID is a unique id for offline correlation, assigned on Record.
	EventID string
	Tick    uint64
	Handler string
	Target  string
	// TargetHPFrac is the target's HP fraction at decision time.
	TargetHPFrac float64
	Action       string
	Reason       string
}

// DecisionLog emits structured decision events and keeps a bounded
// in-memory ring of recent entries for diagnostics. Not safe for concurrent
// use; the single-threaded tick discipline serialises access.
type DecisionLog struct {
	logger *zap.Logger
	ring   []Decision
	next   int
	filled bool
}

// NewDecisionLog creates a DecisionLog retaining the last capacity entries.
//
// Precondition: logger must not be nil; capacity must be > 0.
func NewDecisionLog(logger *zap.Logger, capacity int) *DecisionLog {
	if logger == nil {
		panic("observability.NewDecisionLog: precondition violated: logger must not be nil")
	}
	if capacity <= 0 {
		panic("observability.NewDecisionLog: precondition violated: capacity must be > 0")
	}
	return &DecisionLog{
		logger: logger,
		ring:   make([]Decision, capacity),
	}
}

// Record assigns d an event id, logs it, and appends it to the ring.
//
// Postcondition: d appears as the most recent entry of Recent.
func (dl *DecisionLog) Record(d Decision) {
	d.EventID = uuid.NewString()

	dl.logger.Info("decision",
		zap.String("event_id", d.EventID),
		zap.Uint64("tick", d.Tick),
		zap.String("handler", d.Handler),
		zap.String("target", d.Target),
		zap.Float64("target_hp_frac", d.TargetHPFrac),
		zap.String("action", d.Action),
		zap.String("reason", d.Reason),
	)

	dl.ring[dl.next] = d
	dl.next++
	if dl.next == len(dl.ring) {
		dl.next = 0
		dl.filled = true
	}
}

// Recent returns up to n most-recent decisions, newest first.
func (dl *DecisionLog) Recent(n int) []Decision {
	size := dl.next
	if dl.filled {
		size = len(dl.ring)
	}
	if n > size {
		n = size
	}
	out := make([]Decision, 0, n)
	for i := 1; i <= n; i++ {
		idx := dl.next - i
		if idx < 0 {
			idx += len(dl.ring)
		}
		out = append(out, dl.ring[idx])
	}
	return out
}

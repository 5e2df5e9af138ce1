package rotation

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/intake"
	"github.com/calebrowe/weaver/internal/game/predict"
	"github.com/calebrowe/weaver/internal/game/triage"
	"github.com/calebrowe/weaver/internal/observability"
)

// Rotation is one job's ordered handler collection plus its per-tick gauge
// derivation.
type Rotation interface {
	// Job identifies which job this rotation drives.
	Job() actor.Job

	// Handlers returns the handler set. The scheduler evaluates a
	// priority-sorted copy.
	Handlers() []Handler

	// Prepare derives the job's gauges onto ctx before the handler pass.
	Prepare(ctx *Context)
}

// JobRotation is the plain-ordered-list Rotation used by the built-in jobs.
type JobRotation struct {
	job      actor.Job
	handlers []Handler
	prepare  func(ctx *Context)
}

// NewJobRotation constructs a JobRotation with handlers sorted by ascending
// priority.
//
// Precondition: job must be non-empty; handlers must be non-empty.
// Postcondition: Returns an error if two handlers share a priority; a tie
// is a construction bug, not a runtime ordering to fall back on.
func NewJobRotation(job actor.Job, handlers []Handler, prepare func(ctx *Context)) (*JobRotation, error) {
	if job == "" {
		panic("rotation.NewJobRotation: precondition violated: job must be non-empty")
	}
	if len(handlers) == 0 {
		panic("rotation.NewJobRotation: precondition violated: handlers must be non-empty")
	}

	sorted := make([]Handler, len(handlers))
	copy(sorted, handlers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() < sorted[j].Priority() })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Priority() == sorted[i-1].Priority() {
			return nil, fmt.Errorf("rotation %q: handlers %q and %q share priority %d",
				job, sorted[i-1].Name(), sorted[i].Name(), sorted[i].Priority())
		}
	}

	if prepare == nil {
		prepare = func(*Context) {}
	}
	return &JobRotation{job: job, handlers: sorted, prepare: prepare}, nil
}

// Job returns the rotation's job id.
func (r *JobRotation) Job() actor.Job { return r.job }

// Handlers returns the priority-ordered handler list.
func (r *JobRotation) Handlers() []Handler { return r.handlers }

// Prepare derives gauges onto ctx.
func (r *JobRotation) Prepare(ctx *Context) { r.prepare(ctx) }

// Scheduler owns the job → rotation registry and runs the per-tick decision
// pass: build a fresh context, evaluate handlers in ascending priority, stop
// at the first success. At most one action executes per tick.
type Scheduler struct {
	logger   *zap.Logger
	provider actor.SnapshotProvider
	actions  action.Service
	catalog  action.Catalog
	cfg      *config.Config
	log      *observability.DecisionLog
	gate     Gate
	weights  triage.Weights

	tracker  *intake.Tracker
	pending  *predict.Ledger
	reserved *Reservations

	rotations map[actor.Job]Rotation
	active    Rotation
	activeJob actor.Job

	lastHP map[actor.ID]int
	tick   uint64
}

// NewScheduler constructs a Scheduler. gate may be nil (no veto hooks).
//
// Precondition: logger, provider, actions, catalog, cfg, and log must not
// be nil.
// Postcondition: Returns a Scheduler with no rotations registered, or an
// error when the configured triage preset is unknown.
func NewScheduler(
	logger *zap.Logger,
	provider actor.SnapshotProvider,
	actions action.Service,
	catalog action.Catalog,
	cfg *config.Config,
	log *observability.DecisionLog,
	gate Gate,
) (*Scheduler, error) {
	if logger == nil {
		panic("rotation.NewScheduler: precondition violated: logger must not be nil")
	}
	if provider == nil {
		panic("rotation.NewScheduler: precondition violated: provider must not be nil")
	}
	if actions == nil {
		panic("rotation.NewScheduler: precondition violated: actions must not be nil")
	}
	if catalog == nil {
		panic("rotation.NewScheduler: precondition violated: catalog must not be nil")
	}
	if cfg == nil {
		panic("rotation.NewScheduler: precondition violated: cfg must not be nil")
	}
	if log == nil {
		panic("rotation.NewScheduler: precondition violated: log must not be nil")
	}

	weights, err := resolveWeights(cfg.Triage)
	if err != nil {
		return nil, err
	}

	window := time.Duration(cfg.Engine.IntakeWindowSec * float64(time.Second))
	return &Scheduler{
		logger:    logger,
		provider:  provider,
		actions:   actions,
		catalog:   catalog,
		cfg:       cfg,
		log:       log,
		gate:      gate,
		weights:   weights,
		tracker:   intake.NewTracker(window),
		pending:   predict.NewLedger(),
		reserved:  NewReservations(),
		rotations: make(map[actor.Job]Rotation),
		lastHP:    make(map[actor.ID]int),
	}, nil
}

// resolveWeights maps the triage configuration to scoring weights.
func resolveWeights(cfg config.TriageConfig) (triage.Weights, error) {
	if cfg.Preset == triage.PresetCustom {
		return triage.Weights{
			MissingHP:     cfg.Custom.MissingHP,
			DamageRate:    cfg.Custom.DamageRate,
			Trend:         cfg.Custom.Trend,
			TankBonus:     cfg.Custom.TankBonus,
			ShieldPenalty: cfg.Custom.ShieldPenalty,
		}, nil
	}
	w, ok := triage.PresetWeights(cfg.Preset)
	if !ok {
		return triage.Weights{}, fmt.Errorf("unknown triage preset %q", cfg.Preset)
	}
	return w, nil
}

// Register adds a rotation to the registry.
//
// Postcondition: Returns an error if r's job is already registered.
func (s *Scheduler) Register(r Rotation) error {
	if r == nil {
		panic("rotation.Scheduler.Register: precondition violated: rotation must not be nil")
	}
	if _, exists := s.rotations[r.Job()]; exists {
		return fmt.Errorf("rotation for job %q already registered", r.Job())
	}
	s.rotations[r.Job()] = r
	s.logger.Info("rotation registered",
		zap.String("job", string(r.Job())),
		zap.Int("handlers", len(r.Handlers())))
	return nil
}

// UpdateActiveRotation selects the rotation for job. Intended to be called
// on job-change events; calling it every tick is a cheap comparison.
//
// Postcondition: Returns true iff a rotation is available for job. On false
// the caller must skip Execute this tick.
func (s *Scheduler) UpdateActiveRotation(job actor.Job) bool {
	if s.active != nil && s.activeJob == job {
		return true
	}
	r, ok := s.rotations[job]
	if !ok {
		s.active = nil
		s.activeJob = ""
		return false
	}
	s.active = r
	s.activeJob = job
	s.logger.Info("active rotation changed", zap.String("job", string(job)))
	return true
}

// Execute runs one full decision pass at now.
//
// Postcondition: Returns true iff exactly one handler executed an action.
// Returns false (no error) for the common idle tick, for a missing
// controlled actor, and when no rotation is active.
func (s *Scheduler) Execute(now time.Time) bool {
	if s.active == nil {
		return false
	}
	self, ok := s.provider.ControlledActor()
	if !ok || self == nil {
		// Expected transient state (loading screens, zone transitions).
		return false
	}

	s.tick++
	party := s.provider.PartyMembers()

	s.observeIntake(party, now)
	s.tracker.Prune(now)
	s.pending.ExpireStale(s.tick, uint64(s.cfg.Engine.PendingStaleTicks))
	s.reserved.Reset()

	ctx := &Context{
		Now:      now,
		Tick:     s.tick,
		Self:     self,
		Party:    party,
		Enemies:  s.provider.NearbyEnemies(s.cfg.Engine.EnemyScanRadius),
		Actions:  s.actions,
		Catalog:  s.catalog,
		Intake:   s.tracker,
		Pending:  s.pending,
		Reserved: s.reserved,
		Log:      s.log,
		Cfg:      s.cfg,
		Gate:     s.gate,
		Weights:  s.weights,
	}
	s.active.Prepare(ctx)

	isMoving := s.provider.IsMoving()
	for _, h := range s.active.Handlers() {
		if h.TryExecute(ctx, isMoving) {
			return true
		}
	}
	return false
}

// observeIntake turns snapshot HP deltas into tracker events and reconciles
// the pending ledger: an observed HP gain is credited against pending heals
// incrementally, oldest first. Baselines for members no longer in the party
// are dropped so a rejoin at lower HP is not read as damage.
func (s *Scheduler) observeIntake(party []actor.PartyMemberView, now time.Time) {
	present := make(map[actor.ID]bool, len(party))
	for i := range party {
		m := &party[i]
		present[m.ID] = true
		prev, seen := s.lastHP[m.ID]
		if seen {
			switch delta := prev - m.CurrentHP; {
			case delta > 0:
				s.tracker.RecordDamage(m.ID, delta, now)
			case delta < 0:
				s.tracker.RecordHealing(m.ID, -delta, now)
				s.pending.MarkLanded(m.ID, -delta)
			}
		}
		s.lastHP[m.ID] = m.CurrentHP
	}
	for id := range s.lastHP {
		if !present[id] {
			delete(s.lastHP, id)
		}
	}
}

// DebugStates returns the per-handler debug strings for the active
// rotation, keyed by handler name. Write-only diagnostics for the host UI.
func (s *Scheduler) DebugStates() map[string]string {
	out := make(map[string]string)
	if s.active == nil {
		return out
	}
	for _, h := range s.active.Handlers() {
		out[h.Name()] = h.DebugState()
	}
	return out
}

// Tick returns the number of completed decision passes.
func (s *Scheduler) Tick() uint64 { return s.tick }

package rotation_test

import (
	"time"

	"go.uber.org/zap"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
	"github.com/calebrowe/weaver/internal/game/intake"
	"github.com/calebrowe/weaver/internal/game/predict"
	"github.com/calebrowe/weaver/internal/game/rotation"
	"github.com/calebrowe/weaver/internal/game/triage"
	"github.com/calebrowe/weaver/internal/observability"
)

// executedCall records one Execute* invocation on the fake action service.
type executedCall struct {
	kind   string
	id     action.ID
	target string
}

// fakeService satisfies action.Service with everything ready unless told
// otherwise, recording every committed execute.
type fakeService struct {
	notReady map[action.ID]bool
	fail     map[action.ID]bool
	charges  map[action.ID][2]int
	executed []executedCall
}

func newFakeService() *fakeService {
	return &fakeService{
		notReady: make(map[action.ID]bool),
		fail:     make(map[action.ID]bool),
		charges:  make(map[action.ID][2]int),
	}
}

func (s *fakeService) IsReady(id action.ID) bool {
	if s.notReady[id] {
		return false
	}
	if c, ok := s.charges[id]; ok {
		return c[0] > 0
	}
	return true
}

func (s *fakeService) CooldownRemaining(action.ID) float64 { return 0 }

func (s *fakeService) Charges(id action.ID) (int, int) {
	c := s.charges[id]
	return c[0], c[1]
}

func (s *fakeService) ExecuteGCD(id action.ID, target actor.ID) bool {
	return s.record("gcd", id, string(target))
}

func (s *fakeService) ExecuteOGCD(id action.ID, target actor.ID) bool {
	return s.record("ogcd", id, string(target))
}

func (s *fakeService) ExecuteGroundTargeted(id action.ID, pos actor.Position) bool {
	return s.record("ground", id, "")
}

func (s *fakeService) record(kind string, id action.ID, target string) bool {
	if s.fail[id] {
		return false
	}
	s.executed = append(s.executed, executedCall{kind: kind, id: id, target: target})
	return true
}

// fakeProvider satisfies actor.SnapshotProvider from plain fields.
type fakeProvider struct {
	self    *actor.ActorState
	party   []actor.PartyMemberView
	enemies []actor.EnemyView
	moving  bool
	gone    bool
}

func (p *fakeProvider) ControlledActor() (*actor.ActorState, bool) {
	if p.gone {
		return nil, false
	}
	return p.self, true
}
func (p *fakeProvider) PartyMembers() []actor.PartyMemberView   { return p.party }
func (p *fakeProvider) NearbyEnemies(float64) []actor.EnemyView { return p.enemies }
func (p *fakeProvider) IsMoving() bool                          { return p.moving }

// sage returns a full-resource controlled healer.
func sage(id string) *actor.ActorState {
	return &actor.ActorState{
		ID: actor.ID(id), Name: id, Job: actor.JobSage, Level: 70,
		CurrentHP: 40000, MaxHP: 40000, CurrentMP: 10000, MaxMP: 10000,
	}
}

// warden returns a full-resource controlled tank.
func warden(id string) *actor.ActorState {
	return &actor.ActorState{
		ID: actor.ID(id), Name: id, Job: actor.JobWarden, Level: 70,
		CurrentHP: 60000, MaxHP: 60000, CurrentMP: 10000, MaxMP: 10000,
	}
}

// ally returns a party member view at the given HP out of 10000, standing
// next to the controlled actor.
func ally(id string, hp int) actor.PartyMemberView {
	return actor.PartyMemberView{
		ActorState: actor.ActorState{
			ID: actor.ID(id), Name: id, Job: actor.JobReaver, Level: 70,
			CurrentHP: hp, MaxHP: 10000, CurrentMP: 5000, MaxMP: 5000,
		},
		Role:     actor.RoleDPS,
		Distance: 5,
	}
}

func selfView(self *actor.ActorState) actor.PartyMemberView {
	return actor.PartyMemberView{ActorState: *self, Role: actor.RoleForJob(self.Job)}
}

// testContext builds a ready-to-use decision context around self and party.
func testContext(cfg *config.Config, self *actor.ActorState, svc *fakeService, party []actor.PartyMemberView) *rotation.Context {
	weights, _ := triage.PresetWeights(triage.PresetBalanced)
	return &rotation.Context{
		Now:      time.Now(),
		Tick:     1,
		Self:     self,
		Party:    party,
		Actions:  svc,
		Catalog:  action.DefaultCatalog(),
		Intake:   intake.NewTracker(time.Duration(cfg.Engine.IntakeWindowSec * float64(time.Second))),
		Pending:  predict.NewLedger(),
		Reserved: rotation.NewReservations(),
		Log:      observability.NewDecisionLog(zap.NewNop(), 64),
		Cfg:      cfg,
		Weights:  weights,
	}
}

// sageContext is testContext plus the derived healer gauge.
func sageContext(cfg *config.Config, self *actor.ActorState, svc *fakeService, party []actor.PartyMemberView) *rotation.Context {
	ctx := testContext(cfg, self, svc, party)
	ctx.Sage = gauge.DeriveSage(self, svc)
	return ctx
}

// wardenContext is testContext plus the derived tank gauge.
func wardenContext(cfg *config.Config, self *actor.ActorState, svc *fakeService, party []actor.PartyMemberView) *rotation.Context {
	ctx := testContext(cfg, self, svc, party)
	ctx.Warden = gauge.DeriveWarden(self)
	return ctx
}

// onlyHandlers returns a toggle map enabling just the named handlers out of
// the full sage set.
func onlyHandlers(names ...string) map[string]bool {
	all := []string{
		"emergency_heal", "cleanse", "aoe_heal", "charge_heal",
		"seal_spender", "hot_maintain", "self_buff", "healer_damage",
	}
	m := make(map[string]bool, len(all))
	for _, n := range all {
		m[n] = false
	}
	for _, n := range names {
		m[n] = true
	}
	return m
}

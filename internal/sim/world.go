package sim

import (
	"strings"

	"go.uber.org/zap"

	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/actor"
	"github.com/calebrowe/weaver/internal/game/gauge"
)

// gcdRecastSec is the shared global-cooldown recast.
const gcdRecastSec = 2.5

// healLandDelaySec is the gap between a committed cast and the HP change
// becoming visible in snapshots. Nonzero so the pending-heal ledger is
// exercised the way a real server round trip would.
const healLandDelaySec = 0.3

// recastSec holds per-ability cooldowns for off-global abilities and
// long-recast globals. Absent ids recast on the GCD alone.
var recastSec = map[action.ID]float64{
	action.SageSwiftmend: 30,
	action.SageSealburst: 1,
	action.SageClarity:   60,

	action.WardenLastStand:  300,
	action.WardenBulwark:    90,
	action.WardenSentinel:   60,
	action.WardenRampart:    30,
	action.WardenIronhide:   25,
	action.WardenReprisal:   60,
	action.WardenProvoke:    30,
	action.WardenBloodsworn: 60,
}

// statusGrant maps self/target buff abilities to the status they apply.
var statusGrant = map[action.ID]struct {
	status actor.StatusID
	dur    float64
	stacks int
}{
	action.SageSoothe:       {gauge.StatusSoothe, 15, 0},
	action.SageClarity:      {gauge.StatusClarity, 15, 0},
	action.WardenLastStand:  {gauge.StatusLastStand, 10, 0},
	action.WardenSentinel:   {gauge.StatusSentinel, 15, 0},
	action.WardenRampart:    {gauge.StatusRampart, 10, 0},
	action.WardenIronhide:   {gauge.StatusIronhide, 8, 0},
	action.WardenReprisal:   {gauge.StatusReprisal, 10, 0},
	action.WardenBloodsworn: {gauge.StatusBloodsworn, 20, 0},
	action.WardenBulwark:    {gauge.StatusBarrier, 20, 20},
}

// enemyStatusGrant maps damage-over-time abilities to the debuff they apply
// on the enemy.
var enemyStatusGrant = map[action.ID]struct {
	status actor.StatusID
	dur    float64
}{
	action.SageBlight:  {gauge.StatusBlight, 30},
	action.ReaverVenom: {gauge.StatusVenom, 30},
}

// enemyDamage is the flat damage dealt per cast by offensive abilities.
var enemyDamage = map[action.ID]int{
	action.SageBlight:       300,
	action.SageLance:        500,
	action.WardenSlash:      400,
	action.WardenRend:       500,
	action.WardenEviscerate: 700,
	action.WardenWhirlwind:  350,
	action.ReaverVenom:      300,
	action.ReaverSlash:      500,
	action.ReaverRend:       650,
	action.ReaverEviscerate: 900,
	action.ReaverMaelstrom:  400,
}

const (
	swiftmendMaxCharges = 2
	soothTickHealPerSec = 200
	mpRegenPerSec       = 60
	clarityRegenPerSec  = 240
)

type enemyState struct {
	id       actor.ID
	name     string
	hp       int
	maxHP    int
	pos      actor.Position
	target   actor.ID
	statuses []actor.Status
}

type flightHeal struct {
	target actor.ID
	amount int
	landAt float64
}

type waveState struct {
	spec   WaveSpec
	fired  int
	nextAt float64
}

// World runs a scripted encounter and exposes it through the snapshot and
// action-service interfaces. Single-goroutine: the driver alternates Advance
// and scheduler passes on one loop.
type World struct {
	logger  *zap.Logger
	enc     Encounter
	catalog action.Catalog

	elapsed float64
	player  actor.ID
	tank    actor.ID

	members map[actor.ID]*actor.ActorState
	order   []actor.ID
	enemies []*enemyState

	readyAt    map[action.ID]float64
	gcdReadyAt float64

	swiftCharges int
	recharges    []float64

	inFlight []flightHeal
	waves    []waveState
	debuffed []bool

	// Casts counts committed executes per ability for the driver summary.
	Casts map[action.ID]int
	// Deaths counts party members that hit zero HP.
	Deaths int
}

// NewWorld builds a world from a validated encounter.
//
// Precondition: logger and catalog must not be nil; enc must have passed
// Validate.
func NewWorld(enc Encounter, catalog action.Catalog, logger *zap.Logger) *World {
	if logger == nil {
		panic("sim.NewWorld: precondition violated: logger must not be nil")
	}
	if catalog == nil {
		panic("sim.NewWorld: precondition violated: catalog must not be nil")
	}
	w := &World{
		logger:       logger,
		enc:          enc,
		catalog:      catalog,
		player:       actor.ID(enc.Player),
		tank:         enc.tankID(),
		members:      make(map[actor.ID]*actor.ActorState, len(enc.Party)),
		readyAt:      make(map[action.ID]float64),
		swiftCharges: swiftmendMaxCharges,
		debuffed:     make([]bool, len(enc.Debuffs)),
		Casts:        make(map[action.ID]int),
	}
	for _, m := range enc.Party {
		id := actor.ID(m.ID)
		w.members[id] = &actor.ActorState{
			ID:        id,
			Name:      m.Name,
			Job:       actor.Job(m.Job),
			Level:     m.Level,
			CurrentHP: m.HP,
			MaxHP:     m.HP,
			CurrentMP: m.MP,
			MaxMP:     m.MP,
			Position:  actor.Position{X: m.X, Y: m.Y, Z: m.Z},
		}
		w.order = append(w.order, id)
	}
	for _, e := range enc.Enemies {
		w.enemies = append(w.enemies, &enemyState{
			id:     actor.ID(e.ID),
			name:   e.Name,
			hp:     e.HP,
			maxHP:  e.HP,
			pos:    actor.Position{X: e.X, Y: e.Y, Z: e.Z},
			target: actor.ID(e.Target),
		})
	}
	for _, spec := range enc.Waves {
		w.waves = append(w.waves, waveState{spec: spec, nextAt: spec.AtSec})
	}
	return w
}

// Elapsed returns seconds since encounter start.
func (w *World) Elapsed() float64 { return w.elapsed }

// Done reports whether the scripted duration has run out.
func (w *World) Done() bool { return w.elapsed >= w.enc.DurationSec }

// Advance moves the encounter forward by dt seconds: fire due damage waves
// and debuffs, land in-flight heals, tick HoTs and MP regen, expire
// statuses, and recharge ability charges.
func (w *World) Advance(dt float64) {
	w.elapsed += dt

	w.fireWaves()
	w.applyDebuffs()
	w.landHeals()
	w.tickStatuses(dt)
	w.rechargeCharges()
}

func (w *World) fireWaves() {
	for i := range w.waves {
		wv := &w.waves[i]
		count := wv.spec.Count
		if count <= 0 {
			count = 1
		}
		for wv.fired < count && wv.nextAt <= w.elapsed {
			w.damageTargets(wv.spec.Target, wv.spec.Amount)
			wv.fired++
			wv.nextAt += wv.spec.RepeatSec
		}
	}
}

func (w *World) damageTargets(target string, amount int) {
	switch target {
	case "party":
		for _, id := range w.order {
			w.damageMember(id, amount)
		}
	case "tank":
		if w.tank != "" {
			w.damageMember(w.tank, amount)
		}
	default:
		w.damageMember(actor.ID(target), amount)
	}
}

func (w *World) damageMember(id actor.ID, amount int) {
	m, ok := w.members[id]
	if !ok || m.CurrentHP <= 0 {
		return
	}

	// Barrier stacks absorb first; each stack is worth 100 HP.
	if stacks := m.StatusStacks(gauge.StatusBarrier); stacks > 0 {
		absorbed := stacks * 100
		if absorbed >= amount {
			w.setStatusStacks(m, gauge.StatusBarrier, stacks-(amount+99)/100)
			return
		}
		amount -= absorbed
		w.removeStatus(m, gauge.StatusBarrier)
	}

	m.CurrentHP -= amount
	if m.CurrentHP <= 0 {
		if m.HasStatus(gauge.StatusLastStand) {
			m.CurrentHP = 1
			return
		}
		m.CurrentHP = 0
		w.Deaths++
		w.logger.Info("party member died",
			zap.String("member", string(id)),
			zap.Float64("at_sec", w.elapsed))
	}
}

func (w *World) applyDebuffs() {
	for i, d := range w.enc.Debuffs {
		if w.debuffed[i] || d.AtSec > w.elapsed {
			continue
		}
		w.debuffed[i] = true
		if m, ok := w.members[actor.ID(d.Target)]; ok {
			m.Statuses = append(m.Statuses, actor.Status{
				ID:        actor.StatusID(d.Status),
				Remaining: d.DurationSec,
			})
		}
	}
}

func (w *World) landHeals() {
	remaining := w.inFlight[:0]
	for _, h := range w.inFlight {
		if h.landAt > w.elapsed {
			remaining = append(remaining, h)
			continue
		}
		w.healMember(h.target, h.amount)
	}
	w.inFlight = remaining
}

func (w *World) healMember(id actor.ID, amount int) {
	m, ok := w.members[id]
	if !ok || m.CurrentHP <= 0 {
		return
	}
	m.CurrentHP += amount
	if m.CurrentHP > m.MaxHP {
		m.CurrentHP = m.MaxHP
	}
}

func (w *World) tickStatuses(dt float64) {
	for _, m := range w.members {
		if m.CurrentHP > 0 {
			if m.HasStatus(gauge.StatusSoothe) {
				w.healMember(m.ID, int(soothTickHealPerSec*dt))
			}
			regen := mpRegenPerSec
			if m.HasStatus(gauge.StatusClarity) {
				regen = clarityRegenPerSec
			}
			m.CurrentMP += int(float64(regen) * dt)
			if m.CurrentMP > m.MaxMP {
				m.CurrentMP = m.MaxMP
			}
		}
		m.Statuses = expireStatuses(m.Statuses, dt)
	}
	for _, e := range w.enemies {
		e.statuses = expireStatuses(e.statuses, dt)
	}
}

func expireStatuses(in []actor.Status, dt float64) []actor.Status {
	out := in[:0]
	for _, s := range in {
		if s.Remaining < 0 {
			out = append(out, s)
			continue
		}
		s.Remaining -= dt
		if s.Remaining > 0 {
			out = append(out, s)
		}
	}
	return out
}

func (w *World) rechargeCharges() {
	kept := w.recharges[:0]
	for _, at := range w.recharges {
		if at <= w.elapsed && w.swiftCharges < swiftmendMaxCharges {
			w.swiftCharges++
			continue
		}
		kept = append(kept, at)
	}
	w.recharges = kept
}

func (w *World) setStatusStacks(m *actor.ActorState, id actor.StatusID, stacks int) {
	if stacks <= 0 {
		w.removeStatus(m, id)
		return
	}
	for i := range m.Statuses {
		if m.Statuses[i].ID == id {
			m.Statuses[i].Stacks = stacks
			return
		}
	}
}

func (w *World) removeStatus(m *actor.ActorState, id actor.StatusID) {
	out := m.Statuses[:0]
	for _, s := range m.Statuses {
		if s.ID != id {
			out = append(out, s)
		}
	}
	m.Statuses = out
}

// ControlledActor implements actor.SnapshotProvider.
func (w *World) ControlledActor() (*actor.ActorState, bool) {
	m, ok := w.members[w.player]
	if !ok {
		return nil, false
	}
	cp := *m
	cp.Statuses = append([]actor.Status(nil), m.Statuses...)
	return &cp, true
}

// PartyMembers implements actor.SnapshotProvider.
func (w *World) PartyMembers() []actor.PartyMemberView {
	self := w.members[w.player]
	out := make([]actor.PartyMemberView, 0, len(w.order))
	for _, id := range w.order {
		m := w.members[id]
		view := actor.PartyMemberView{
			ActorState: *m,
			Role:       actor.RoleForJob(m.Job),
			Distance:   self.Position.DistanceTo(m.Position),
		}
		view.Statuses = append([]actor.Status(nil), m.Statuses...)
		out = append(out, view)
	}
	return out
}

// NearbyEnemies implements actor.SnapshotProvider.
func (w *World) NearbyEnemies(radius float64) []actor.EnemyView {
	self := w.members[w.player]
	var out []actor.EnemyView
	for _, e := range w.enemies {
		d := self.Position.DistanceTo(e.pos)
		if d > radius {
			continue
		}
		out = append(out, actor.EnemyView{
			ID:        e.id,
			Name:      e.name,
			CurrentHP: e.hp,
			MaxHP:     e.maxHP,
			Position:  e.pos,
			Distance:  d,
			TargetID:  e.target,
			Statuses:  append([]actor.Status(nil), e.statuses...),
		})
	}
	return out
}

// IsMoving implements actor.SnapshotProvider by consulting the scripted
// movement windows.
func (w *World) IsMoving() bool {
	for _, win := range w.enc.Movement {
		if w.elapsed >= win.FromSec && w.elapsed < win.ToSec {
			return true
		}
	}
	return false
}

// IsReady implements action.Service.
func (w *World) IsReady(id action.ID) bool {
	if id == action.SageSwiftmend {
		return w.swiftCharges > 0
	}
	if w.readyAt[id] > w.elapsed {
		return false
	}
	def, ok := w.catalog.Lookup(id)
	if ok && def.Kind == action.KindGCD && w.gcdReadyAt > w.elapsed {
		return false
	}
	return true
}

// CooldownRemaining implements action.Service.
func (w *World) CooldownRemaining(id action.ID) float64 {
	rem := w.readyAt[id] - w.elapsed
	if rem < 0 {
		return 0
	}
	return rem
}

// Charges implements action.Service.
func (w *World) Charges(id action.ID) (current, max int) {
	if id == action.SageSwiftmend {
		return w.swiftCharges, swiftmendMaxCharges
	}
	return 0, 0
}

// ExecuteGCD implements action.Service.
func (w *World) ExecuteGCD(id action.ID, target actor.ID) bool {
	return w.execute(id, target)
}

// ExecuteOGCD implements action.Service.
func (w *World) ExecuteOGCD(id action.ID, target actor.ID) bool {
	return w.execute(id, target)
}

// ExecuteGroundTargeted implements action.Service. The effect covers every
// living member within the ability radius of pos.
func (w *World) ExecuteGroundTargeted(id action.ID, pos actor.Position) bool {
	def, ok := w.catalog.Lookup(id)
	if !ok || !w.IsReady(id) || !w.spend(def) {
		return false
	}
	w.startCooldown(def)
	w.Casts[id]++
	for _, mid := range w.order {
		m := w.members[mid]
		if m.CurrentHP > 0 && pos.DistanceTo(m.Position) <= def.Radius {
			w.queueHeal(mid, def)
		}
	}
	return true
}

func (w *World) execute(id action.ID, target actor.ID) bool {
	def, ok := w.catalog.Lookup(id)
	if !ok || !w.IsReady(id) || !w.spend(def) {
		return false
	}
	w.startCooldown(def)
	w.Casts[id]++

	switch {
	case def.Targeting == action.TargetSelfRadius && def.HealAmount > 0:
		self := w.members[w.player]
		for _, mid := range w.order {
			m := w.members[mid]
			if m.CurrentHP > 0 && self.Position.DistanceTo(m.Position) <= def.Radius {
				w.queueHeal(mid, def)
			}
		}
	case def.HealAmount > 0:
		w.queueHeal(target, def)
	}

	if grant, ok := statusGrant[id]; ok {
		if m, exists := w.members[target]; exists {
			w.removeStatus(m, grant.status)
			m.Statuses = append(m.Statuses, actor.Status{
				ID: grant.status, Remaining: grant.dur, Stacks: grant.stacks,
			})
		}
	}

	switch id {
	case action.SagePurify:
		w.cleanse(target)
	case action.WardenProvoke:
		w.provoke(target)
	default:
		w.strike(id, def, target)
	}
	return true
}

func (w *World) spend(def action.Definition) bool {
	m, ok := w.members[w.player]
	if !ok || m.CurrentMP < def.MPCost {
		return false
	}
	m.CurrentMP -= def.MPCost
	return true
}

func (w *World) startCooldown(def action.Definition) {
	if def.ID == action.SageSwiftmend {
		w.swiftCharges--
		w.recharges = append(w.recharges, w.elapsed+recastSec[def.ID])
		return
	}
	if def.Kind == action.KindGCD {
		w.gcdReadyAt = w.elapsed + gcdRecastSec
	}
	if rc, ok := recastSec[def.ID]; ok {
		w.readyAt[def.ID] = w.elapsed + rc
	}
}

func (w *World) queueHeal(target actor.ID, def action.Definition) {
	w.inFlight = append(w.inFlight, flightHeal{
		target: target,
		amount: def.HealAmount,
		landAt: w.elapsed + def.CastTime + healLandDelaySec,
	})
}

// cleanse removes the first debuff-prefixed status from target.
func (w *World) cleanse(target actor.ID) {
	m, ok := w.members[target]
	if !ok {
		return
	}
	for _, s := range m.Statuses {
		if strings.HasPrefix(string(s.ID), "debuff.") {
			w.removeStatus(m, s.ID)
			return
		}
	}
}

func (w *World) provoke(target actor.ID) {
	for _, e := range w.enemies {
		if e.id == target {
			e.target = w.player
			return
		}
	}
}

// strike applies flat damage and any DoT debuff to the targeted enemy. AoE
// strikes hit every enemy within the ability radius of the caster.
func (w *World) strike(id action.ID, def action.Definition, target actor.ID) {
	dmg, offensive := enemyDamage[id]
	if !offensive {
		return
	}
	if def.Targeting == action.TargetSelfRadius {
		self := w.members[w.player]
		for _, e := range w.enemies {
			if e.hp > 0 && self.Position.DistanceTo(e.pos) <= def.Radius {
				e.hp -= dmg
				if e.hp < 0 {
					e.hp = 0
				}
			}
		}
		return
	}
	for _, e := range w.enemies {
		if e.id != target || e.hp <= 0 {
			continue
		}
		e.hp -= dmg
		if e.hp < 0 {
			e.hp = 0
		}
		if grant, ok := enemyStatusGrant[id]; ok {
			kept := e.statuses[:0]
			for _, s := range e.statuses {
				if s.ID != grant.status {
					kept = append(kept, s)
				}
			}
			e.statuses = append(kept, actor.Status{ID: grant.status, Remaining: grant.dur})
		}
		return
	}
}

// Package sim is a scripted-encounter host: a YAML encounter file describes
// the party, the enemies, and a damage script, and World implements the
// snapshot-provider and action-service interfaces against that script. It
// exists for the simulation driver and the end-to-end tests; it is not a
// game client.
package sim

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/calebrowe/weaver/internal/game/actor"
)

// MemberSpec describes one party member at encounter start.
type MemberSpec struct {
	ID    string  `yaml:"id"`
	Name  string  `yaml:"name"`
	Job   string  `yaml:"job"`
	Level int     `yaml:"level"`
	HP    int     `yaml:"hp"`
	MP    int     `yaml:"mp"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`
}

// EnemySpec describes one enemy at encounter start.
type EnemySpec struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	HP     int     `yaml:"hp"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z"`
	Target string  `yaml:"target"`
}

// WaveSpec is one scripted damage event. Target is a member id, "tank" for
// the first tank in the party, or "party" for everyone.
type WaveSpec struct {
	AtSec     float64 `yaml:"at_sec"`
	Target    string  `yaml:"target"`
	Amount    int     `yaml:"amount"`
	RepeatSec float64 `yaml:"repeat_sec"`
	Count     int     `yaml:"count"`
}

// DebuffSpec applies a status to a member at a scripted time.
type DebuffSpec struct {
	AtSec       float64 `yaml:"at_sec"`
	Target      string  `yaml:"target"`
	Status      string  `yaml:"status"`
	DurationSec float64 `yaml:"duration_sec"`
}

// WindowSpec is a movement window during which the controlled actor counts
// as moving.
type WindowSpec struct {
	FromSec float64 `yaml:"from_sec"`
	ToSec   float64 `yaml:"to_sec"`
}

// Encounter is a complete scripted fight.
type Encounter struct {
	Name        string       `yaml:"name"`
	DurationSec float64      `yaml:"duration_sec"`
	Player      string       `yaml:"player"`
	Party       []MemberSpec `yaml:"party"`
	Enemies     []EnemySpec  `yaml:"enemies"`
	Waves       []WaveSpec   `yaml:"waves"`
	Debuffs     []DebuffSpec `yaml:"debuffs"`
	Movement    []WindowSpec `yaml:"movement"`
}

// Validate checks the encounter for script errors, aggregating every
// violation found rather than stopping at the first.
func (e *Encounter) Validate() error {
	var violations []string

	if e.DurationSec <= 0 {
		violations = append(violations, "duration_sec must be > 0")
	}
	if len(e.Party) == 0 {
		violations = append(violations, "party must not be empty")
	}

	members := make(map[string]bool, len(e.Party))
	for i, m := range e.Party {
		if m.ID == "" {
			violations = append(violations, fmt.Sprintf("party[%d]: id must not be empty", i))
			continue
		}
		if members[m.ID] {
			violations = append(violations, fmt.Sprintf("party[%d]: duplicate id %q", i, m.ID))
		}
		members[m.ID] = true
		if m.HP <= 0 {
			violations = append(violations, fmt.Sprintf("party[%d]: hp must be > 0", i))
		}
	}

	if e.Player == "" {
		violations = append(violations, "player must name a party member")
	} else if !members[e.Player] {
		violations = append(violations, fmt.Sprintf("player %q is not in the party", e.Player))
	}

	for i, w := range e.Waves {
		if w.Amount <= 0 {
			violations = append(violations, fmt.Sprintf("waves[%d]: amount must be > 0", i))
		}
		if w.Target != "party" && w.Target != "tank" && !members[w.Target] {
			violations = append(violations, fmt.Sprintf("waves[%d]: unknown target %q", i, w.Target))
		}
		if w.Count > 1 && w.RepeatSec <= 0 {
			violations = append(violations, fmt.Sprintf("waves[%d]: repeat_sec must be > 0 when count > 1", i))
		}
	}
	for i, d := range e.Debuffs {
		if d.Status == "" {
			violations = append(violations, fmt.Sprintf("debuffs[%d]: status must not be empty", i))
		}
		if !members[d.Target] {
			violations = append(violations, fmt.Sprintf("debuffs[%d]: unknown target %q", i, d.Target))
		}
	}
	for i, w := range e.Movement {
		if w.ToSec <= w.FromSec {
			violations = append(violations, fmt.Sprintf("movement[%d]: to_sec must be > from_sec", i))
		}
	}

	if len(violations) > 0 {
		return fmt.Errorf("invalid encounter: %s", strings.Join(violations, "; "))
	}
	return nil
}

// LoadEncounter reads and validates an encounter script. Enemies without an
// id are assigned a generated one.
func LoadEncounter(path string) (Encounter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Encounter{}, fmt.Errorf("reading encounter %s: %w", path, err)
	}
	return ParseEncounter(data)
}

// ParseEncounter unmarshals and validates an encounter script.
func ParseEncounter(data []byte) (Encounter, error) {
	var enc Encounter
	if err := yaml.Unmarshal(data, &enc); err != nil {
		return Encounter{}, fmt.Errorf("unmarshalling encounter: %w", err)
	}
	for i := range enc.Enemies {
		if enc.Enemies[i].ID == "" {
			enc.Enemies[i].ID = uuid.NewString()
		}
	}
	if err := enc.Validate(); err != nil {
		return Encounter{}, err
	}
	return enc, nil
}

// tankID returns the id of the first tank in the party, or "".
func (e *Encounter) tankID() actor.ID {
	for _, m := range e.Party {
		if actor.RoleForJob(actor.Job(m.Job)) == actor.RoleTank {
			return actor.ID(m.ID)
		}
	}
	return ""
}

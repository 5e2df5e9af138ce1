// Package config provides Viper-based configuration loading for the
// rotation engine. Every threshold the decision handlers gate on lives
// here: the numeric breakpoints are tuning, not invariants, and the engine
// reads them read-only each tick.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EngineConfig holds tick-loop and tracker settings.
type EngineConfig struct {
	// TickIntervalMs is the simulated tick interval in milliseconds.
	TickIntervalMs int `mapstructure:"tick_interval_ms"`
	// IntakeWindowSec is the rolling damage/heal window in seconds.
	IntakeWindowSec float64 `mapstructure:"intake_window_sec"`
	// SpikeMultiplier is the recent-vs-whole-window rate ratio that counts
	// as an imminent damage spike.
	SpikeMultiplier float64 `mapstructure:"spike_multiplier"`
	// SpikeMinRate is the whole-window rate floor below which spikes are
	// never flagged.
	SpikeMinRate float64 `mapstructure:"spike_min_rate"`
	// PendingStaleTicks is the safety-valve age after which an unconfirmed
	// pending heal is expired.
	PendingStaleTicks int `mapstructure:"pending_stale_ticks"`
	// EnemyScanRadius is the radius used for nearby-enemy queries.
	EnemyScanRadius float64 `mapstructure:"enemy_scan_radius"`
}

// EscalationTier raises the emergency heal threshold by Bonus when the
// target's damage rate reaches MinRate.
type EscalationTier struct {
	MinRate float64 `mapstructure:"min_rate"`
	Bonus   float64 `mapstructure:"bonus"`
}

// HealerConfig holds the sage rotation's thresholds.
type HealerConfig struct {
	// Handlers toggles individual handlers by name; absent names default on.
	Handlers map[string]bool `mapstructure:"handlers"`

	// EmergencyBaseThreshold is the HP fraction below which the emergency
	// heal always fires.
	EmergencyBaseThreshold float64 `mapstructure:"emergency_base_threshold"`
	// EmergencyTiers escalate the threshold additively with damage rate;
	// the highest matching tier's bonus applies.
	EmergencyTiers []EscalationTier `mapstructure:"emergency_tiers"`
	// EmergencyCeiling caps the escalated threshold.
	EmergencyCeiling float64 `mapstructure:"emergency_ceiling"`
	// ProactiveThreshold / ProactiveMinRate define the secondary tier that
	// fires at higher HP under sustained damage.
	ProactiveThreshold float64 `mapstructure:"proactive_threshold"`
	ProactiveMinRate   float64 `mapstructure:"proactive_min_rate"`

	// HoTRefreshSec re-applies the HoT when remaining duration drops below it.
	HoTRefreshSec float64 `mapstructure:"hot_refresh_sec"`
	// HoTThreshold is the HP gate for applying the HoT.
	HoTThreshold float64 `mapstructure:"hot_threshold"`
	// HoTLiberalRate / HoTLiberalThreshold loosen the gate during sustained
	// party-wide damage.
	HoTLiberalRate      float64 `mapstructure:"hot_liberal_rate"`
	HoTLiberalThreshold float64 `mapstructure:"hot_liberal_threshold"`

	// AoEMinTargets is the minimum injured count before an AoE heal commits.
	AoEMinTargets int `mapstructure:"aoe_min_targets"`

	// Charge-heal overheal-safe ratios: a target qualifies when predicted
	// HP fraction is below the ratio. Three policies by current state.
	ChargeNormalRatio float64 `mapstructure:"charge_normal_ratio"`
	ChargeMaxRatio    float64 `mapstructure:"charge_max_ratio"`
	ChargeSpikeRatio  float64 `mapstructure:"charge_spike_ratio"`

	// SealSpendMinDeficit is the minimum missing HP before the seal-band
	// heal may be used to finish building seals.
	SealSpendMinDeficit int `mapstructure:"seal_spend_min_deficit"`

	// CleanseMinPriority is the lowest debuff priority worth a cleanse:
	// "lethal", "high", "medium", or "low".
	CleanseMinPriority string `mapstructure:"cleanse_min_priority"`

	// DoTRefreshSec re-applies the damage DoT below this remaining duration.
	DoTRefreshSec float64 `mapstructure:"dot_refresh_sec"`
	// DamageMinMPFraction stops damage filler below this MP fraction.
	DamageMinMPFraction float64 `mapstructure:"damage_min_mp_fraction"`
	// ClarityMPFraction triggers the MP regen buff below this MP fraction.
	ClarityMPFraction float64 `mapstructure:"clarity_mp_fraction"`
}

// TankConfig holds the warden rotation's thresholds.
type TankConfig struct {
	Handlers map[string]bool `mapstructure:"handlers"`

	// InvulnFloor is the hard HP floor for the invulnerability.
	InvulnFloor float64 `mapstructure:"invuln_floor"`
	// ShieldFloor always triggers Bulwark below this HP fraction.
	ShieldFloor float64 `mapstructure:"shield_floor"`
	// ShieldModerateRate triggers Bulwark while main-tanking above this
	// damage rate.
	ShieldModerateRate float64 `mapstructure:"shield_moderate_rate"`
	// ShieldHarvestMPFraction spends Bulwark to harvest its on-break bonus
	// when MP is at least this full and damage is nonzero.
	ShieldHarvestMPFraction float64 `mapstructure:"shield_harvest_mp_fraction"`

	// MitigationHPGate / MitigationRateGate feed the major-mitigation usage
	// policy.
	MitigationHPGate   float64 `mapstructure:"mitigation_hp_gate"`
	MitigationRateGate float64 `mapstructure:"mitigation_rate_gate"`
	// MitigationMinIntervalSec smooths major-cooldown usage.
	MitigationMinIntervalSec float64 `mapstructure:"mitigation_min_interval_sec"`

	// MinorMitigationHPGate triggers the short self cooldowns.
	MinorMitigationHPGate float64 `mapstructure:"minor_mitigation_hp_gate"`

	// PartyMitMinInjured / PartyMitThreshold gate the party-wide cooldown.
	PartyMitMinInjured int     `mapstructure:"party_mit_min_injured"`
	PartyMitThreshold  float64 `mapstructure:"party_mit_threshold"`

	// ProvokeRedelaySec is the minimum delay between provokes.
	ProvokeRedelaySec float64 `mapstructure:"provoke_redelay_sec"`

	// AoEEnemyThreshold switches the damage filler to the AoE.
	AoEEnemyThreshold int `mapstructure:"aoe_enemy_threshold"`
	// ComboTimeoutSec bounds the gap between combo steps before the chain
	// resets to its opener.
	ComboTimeoutSec float64 `mapstructure:"combo_timeout_sec"`
}

// MeleeConfig holds the reaver rotation's thresholds.
type MeleeConfig struct {
	Handlers map[string]bool `mapstructure:"handlers"`

	DoTRefreshSec     float64 `mapstructure:"dot_refresh_sec"`
	AoEEnemyThreshold int     `mapstructure:"aoe_enemy_threshold"`
	ComboTimeoutSec   float64 `mapstructure:"combo_timeout_sec"`
}

// TriageConfig selects the target-scoring weights.
type TriageConfig struct {
	// Preset is one of "balanced", "tank-focus", "spread-damage",
	// "raid-wide", or "custom".
	Preset string `mapstructure:"preset"`
	// Custom weights apply when Preset is "custom".
	Custom CustomWeights `mapstructure:"custom"`
}

// CustomWeights mirrors triage.Weights for configuration binding.
type CustomWeights struct {
	MissingHP     float64 `mapstructure:"missing_hp"`
	DamageRate    float64 `mapstructure:"damage_rate"`
	Trend         float64 `mapstructure:"trend"`
	TankBonus     float64 `mapstructure:"tank_bonus"`
	ShieldPenalty float64 `mapstructure:"shield_penalty"`
}

// ScriptingConfig holds the optional Lua veto-hook profile.
type ScriptingConfig struct {
	// ProfilePath is the Lua profile file; empty disables scripting.
	ProfilePath string `mapstructure:"profile_path"`
	// InstructionLimit bounds Lua opcodes per hook call; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level engine configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Healer    HealerConfig    `mapstructure:"healer"`
	Tank      TankConfig      `mapstructure:"tank"`
	Melee     MeleeConfig     `mapstructure:"melee"`
	Triage    TriageConfig    `mapstructure:"triage"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// HandlerEnabled reports whether name is toggled on in m. Absent names
// default to enabled.
func HandlerEnabled(m map[string]bool, name string) bool {
	if v, ok := m[name]; ok {
		return v
	}
	return true
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateHealer(c.Healer); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTank(c.Tank); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTriage(c.Triage); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.TickIntervalMs < 1 {
		errs = append(errs, fmt.Sprintf("engine.tick_interval_ms must be >= 1, got %d", e.TickIntervalMs))
	}
	if e.IntakeWindowSec <= 0 {
		errs = append(errs, fmt.Sprintf("engine.intake_window_sec must be > 0, got %g", e.IntakeWindowSec))
	}
	if e.SpikeMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("engine.spike_multiplier must be >= 1, got %g", e.SpikeMultiplier))
	}
	if e.PendingStaleTicks < 1 {
		errs = append(errs, fmt.Sprintf("engine.pending_stale_ticks must be >= 1, got %d", e.PendingStaleTicks))
	}
	if e.EnemyScanRadius <= 0 {
		errs = append(errs, fmt.Sprintf("engine.enemy_scan_radius must be > 0, got %g", e.EnemyScanRadius))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHealer(h HealerConfig) error {
	var errs []string
	if h.EmergencyBaseThreshold <= 0 || h.EmergencyBaseThreshold >= 1 {
		errs = append(errs, fmt.Sprintf("healer.emergency_base_threshold must be in (0,1), got %g", h.EmergencyBaseThreshold))
	}
	if h.EmergencyCeiling < h.EmergencyBaseThreshold {
		errs = append(errs, "healer.emergency_ceiling must be >= healer.emergency_base_threshold")
	}
	for i, tier := range h.EmergencyTiers {
		if tier.MinRate < 0 || tier.Bonus < 0 {
			errs = append(errs, fmt.Sprintf("healer.emergency_tiers[%d] must have non-negative min_rate and bonus", i))
		}
	}
	if h.AoEMinTargets < 1 {
		errs = append(errs, fmt.Sprintf("healer.aoe_min_targets must be >= 1, got %d", h.AoEMinTargets))
	}
	validPriorities := map[string]bool{"lethal": true, "high": true, "medium": true, "low": true}
	if !validPriorities[h.CleanseMinPriority] {
		errs = append(errs, fmt.Sprintf("healer.cleanse_min_priority must be one of [lethal, high, medium, low], got %q", h.CleanseMinPriority))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTank(t TankConfig) error {
	var errs []string
	if t.InvulnFloor <= 0 || t.InvulnFloor >= 1 {
		errs = append(errs, fmt.Sprintf("tank.invuln_floor must be in (0,1), got %g", t.InvulnFloor))
	}
	if t.ShieldFloor <= t.InvulnFloor {
		errs = append(errs, "tank.shield_floor must be > tank.invuln_floor")
	}
	if t.PartyMitMinInjured < 1 {
		errs = append(errs, fmt.Sprintf("tank.party_mit_min_injured must be >= 1, got %d", t.PartyMitMinInjured))
	}
	if t.ProvokeRedelaySec < 0 {
		errs = append(errs, "tank.provoke_redelay_sec must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTriage(t TriageConfig) error {
	validPresets := map[string]bool{
		"balanced": true, "tank-focus": true, "spread-damage": true,
		"raid-wide": true, "custom": true,
	}
	if !validPresets[t.Preset] {
		return fmt.Errorf("triage.preset must be one of [balanced, tank-focus, spread-damage, raid-wide, custom], got %q", t.Preset)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with WEAVER_ prefix
	v.SetEnvPrefix("WEAVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration, matching SetDefaults.
//
// Postcondition: Default().Validate() returns nil.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config.Default: built-in defaults invalid: %v", err))
	}
	return cfg
}

// SetDefaults installs the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("engine.tick_interval_ms", 100)
	v.SetDefault("engine.intake_window_sec", 5.0)
	v.SetDefault("engine.spike_multiplier", 1.8)
	v.SetDefault("engine.spike_min_rate", 150.0)
	v.SetDefault("engine.pending_stale_ticks", 30)
	v.SetDefault("engine.enemy_scan_radius", 30.0)

	v.SetDefault("healer.emergency_base_threshold", 0.30)
	v.SetDefault("healer.emergency_tiers", []map[string]any{
		{"min_rate": 600.0, "bonus": 0.10},
		{"min_rate": 800.0, "bonus": 0.20},
	})
	v.SetDefault("healer.emergency_ceiling", 0.50)
	v.SetDefault("healer.proactive_threshold", 0.55)
	v.SetDefault("healer.proactive_min_rate", 300.0)
	v.SetDefault("healer.hot_refresh_sec", 4.0)
	v.SetDefault("healer.hot_threshold", 0.85)
	v.SetDefault("healer.hot_liberal_rate", 400.0)
	v.SetDefault("healer.hot_liberal_threshold", 0.95)
	v.SetDefault("healer.aoe_min_targets", 3)
	v.SetDefault("healer.charge_normal_ratio", 0.70)
	v.SetDefault("healer.charge_max_ratio", 0.90)
	v.SetDefault("healer.charge_spike_ratio", 0.95)
	v.SetDefault("healer.seal_spend_min_deficit", 2000)
	v.SetDefault("healer.cleanse_min_priority", "medium")
	v.SetDefault("healer.dot_refresh_sec", 4.0)
	v.SetDefault("healer.damage_min_mp_fraction", 0.25)
	v.SetDefault("healer.clarity_mp_fraction", 0.70)

	v.SetDefault("tank.invuln_floor", 0.12)
	v.SetDefault("tank.shield_floor", 0.35)
	v.SetDefault("tank.shield_moderate_rate", 300.0)
	v.SetDefault("tank.shield_harvest_mp_fraction", 0.80)
	v.SetDefault("tank.mitigation_hp_gate", 0.70)
	v.SetDefault("tank.mitigation_rate_gate", 200.0)
	v.SetDefault("tank.mitigation_min_interval_sec", 20.0)
	v.SetDefault("tank.minor_mitigation_hp_gate", 0.80)
	v.SetDefault("tank.party_mit_min_injured", 2)
	v.SetDefault("tank.party_mit_threshold", 0.75)
	v.SetDefault("tank.provoke_redelay_sec", 6.0)
	v.SetDefault("tank.aoe_enemy_threshold", 3)
	v.SetDefault("tank.combo_timeout_sec", 15.0)

	v.SetDefault("melee.dot_refresh_sec", 5.0)
	v.SetDefault("melee.aoe_enemy_threshold", 3)
	v.SetDefault("melee.combo_timeout_sec", 15.0)

	v.SetDefault("triage.preset", "balanced")

	v.SetDefault("scripting.profile_path", "")
	v.SetDefault("scripting.instruction_limit", 0)
}

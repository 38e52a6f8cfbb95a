// Package encounter implements boss phase progression and hazard zone
// lifecycle for scripted battles. Phase and hazard definitions are static
// YAML content; a Director owns the mutable per-battle state.
package encounter

import (
	"fmt"
	"strings"

	"github.com/coldfront-games/flurry/internal/game/actor"
)

// TriggerKind selects how a boss phase fires.
type TriggerKind string

const (
	// TriggerHealthPct fires when the boss drops to or below a warmth fraction.
	TriggerHealthPct TriggerKind = "health_pct"
	// TriggerCombatTime fires after accumulated engaged combat time.
	TriggerCombatTime TriggerKind = "combat_time"
	// TriggerAddsKilled fires after a number of encounter adds have died.
	TriggerAddsKilled TriggerKind = "adds_killed"
	// TriggerScripted fires when a named Lua hook returns a truthy value.
	TriggerScripted TriggerKind = "scripted"
)

// PhaseDef is one entry in a boss's ordered phase table.
//
// Phases are checked in table order every tick; the first unfired phase whose
// trigger matches fires, and at most one phase fires per tick. A fired phase
// is recorded in the brain's bitfield and never fires again until the
// encounter resets.
type PhaseDef struct {
	Name    string      `yaml:"name"`
	Trigger TriggerKind `yaml:"trigger"`

	// HealthPct is the warmth fraction threshold for health_pct triggers.
	HealthPct float64 `yaml:"health_pct"`
	// CombatTimeMs is the engaged-time threshold for combat_time triggers.
	CombatTimeMs float64 `yaml:"combat_time_ms"`
	// AddsKilled is the kill-count threshold for adds_killed triggers.
	AddsKilled int `yaml:"adds_killed"`
	// Hook names the Lua function evaluated for scripted triggers.
	Hook string `yaml:"hook"`

	// BarSwap replaces ability bar slots on fire. Entry i replaces slot i
	// with the named ability; an empty entry leaves the slot untouched.
	BarSwap []string `yaml:"bar_swap"`

	// DamageMult and SpeedMult apply while this phase is the current phase.
	// 0 means unset and reads as 1.0.
	DamageMult float64 `yaml:"damage_mult"`
	SpeedMult  float64 `yaml:"speed_mult"`
}

// Validate checks required fields and per-trigger thresholds.
func (p *PhaseDef) Validate() error {
	var errs []string
	if p.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	switch p.Trigger {
	case TriggerHealthPct:
		if p.HealthPct <= 0 || p.HealthPct >= 1 {
			errs = append(errs, fmt.Sprintf("health_pct must be in (0, 1), got %g", p.HealthPct))
		}
	case TriggerCombatTime:
		if p.CombatTimeMs <= 0 {
			errs = append(errs, "combat_time_ms must be > 0")
		}
	case TriggerAddsKilled:
		if p.AddsKilled <= 0 {
			errs = append(errs, "adds_killed must be > 0")
		}
	case TriggerScripted:
		if p.Hook == "" {
			errs = append(errs, "scripted trigger requires a hook name")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown trigger %q", p.Trigger))
	}
	if len(p.BarSwap) > actor.BarSlots {
		errs = append(errs, fmt.Sprintf("bar_swap has %d entries, bar holds %d", len(p.BarSwap), actor.BarSlots))
	}
	if p.DamageMult < 0 || p.SpeedMult < 0 {
		errs = append(errs, "multipliers must be >= 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("phase %q: %s", p.Name, strings.Join(errs, "; "))
	}
	return nil
}

// Mults returns the phase's damage and speed multipliers, substituting 1.0
// for unset values.
func (p *PhaseDef) Mults() (damage, speed float64) {
	damage, speed = p.DamageMult, p.SpeedMult
	if damage == 0 {
		damage = 1
	}
	if speed == 0 {
		speed = 1
	}
	return damage, speed
}

// Package ability defines the static, shared ability descriptors equipped on
// actor bars. Descriptors are immutable for the simulation's lifetime and are
// referenced by pointer from every bar slot that equips them.
//
// An ability is a bundle of effect capabilities (damage, healing, interrupt,
// statuses, terrain paint, wall work) rather than a single-purpose record; the
// utility scorer queries capabilities individually so any combination scores
// correctly.
package ability

import (
	"fmt"
	"strings"
)

// TargetType classifies what an ability may be aimed at.
type TargetType int

const (
	TargetEnemy TargetType = iota
	TargetAlly
	TargetSelf
	TargetGround
)

// String returns the YAML token for the target type.
func (t TargetType) String() string {
	switch t {
	case TargetEnemy:
		return "enemy"
	case TargetAlly:
		return "ally"
	case TargetSelf:
		return "self"
	case TargetGround:
		return "ground"
	default:
		return "unknown"
	}
}

// Projectile classifies how an ability's payload travels.
type Projectile int

const (
	// ProjectileDirect flies in a straight line and is stopped by walls.
	ProjectileDirect Projectile = iota
	// ProjectileArcing lobs over walls; cover never applies.
	ProjectileArcing
	// ProjectileInstant resolves with no travel; cover applies like direct.
	ProjectileInstant
)

// String returns the YAML token for the projectile kind.
func (p Projectile) String() string {
	switch p {
	case ProjectileDirect:
		return "direct"
	case ProjectileArcing:
		return "arcing"
	case ProjectileInstant:
		return "instant"
	default:
		return "unknown"
	}
}

// WallSpec describes a wall-construction payload. The wall is raised
// perpendicular to the caster's facing at Offset units ahead.
type WallSpec struct {
	Offset    float64 `yaml:"offset"`
	Length    float64 `yaml:"length"`
	Height    float64 `yaml:"height"`
	Thickness float64 `yaml:"thickness"`
}

// WallBreakSpec describes a wall-damage payload applied in a radius.
type WallBreakSpec struct {
	Radius float64 `yaml:"radius"`
	Amount float64 `yaml:"amount"`
}

// TerrainSpec describes a ground-effect terrain paint payload.
type TerrainSpec struct {
	Kind   string  `yaml:"kind"` // e.g. "ice", "slush", "powder"
	Radius float64 `yaml:"radius"`
}

// Ability is one static ability descriptor.
//
// Invariant: never mutated after Validate succeeds; the simulation core only
// reads it.
type Ability struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	Target     TargetType `yaml:"-"`
	TargetRaw  string     `yaml:"target"`
	Projectile Projectile `yaml:"-"`
	ProjRaw    string     `yaml:"projectile"`

	Damage     float64 `yaml:"damage"`
	Healing    float64 `yaml:"healing"`
	CastRange  float64 `yaml:"cast_range"`
	CastTimeMs float64 `yaml:"cast_time_ms"` // 0 = instant
	EnergyCost float64 `yaml:"energy_cost"`
	RechargeMs float64 `yaml:"recharge_ms"`
	AoERadius  float64 `yaml:"aoe_radius"` // 0 = single target

	// Soak partially bypasses target padding: effective padding becomes
	// padding*(1-Soak) before the reduction is recomputed.
	Soak float64 `yaml:"soak"`

	// Interrupts marks abilities that break the target's in-progress cast.
	Interrupts bool `yaml:"interrupts"`

	// Debuffs and Buffs list status effect IDs applied on resolution.
	Debuffs []string `yaml:"debuffs"`
	Buffs   []string `yaml:"buffs"`

	Wall      *WallSpec      `yaml:"wall"`
	WallBreak *WallBreakSpec `yaml:"wall_break"`
	Terrain   *TerrainSpec   `yaml:"terrain"`
}

// Capability queries used by the utility scorer and cast pipeline.

// HasDamage reports whether the ability deals direct damage.
func (a *Ability) HasDamage() bool { return a.Damage > 0 }

// HasHealing reports whether the ability restores warmth.
func (a *Ability) HasHealing() bool { return a.Healing > 0 }

// HasInterrupt reports whether the ability breaks casts.
func (a *Ability) HasInterrupt() bool { return a.Interrupts }

// HasDebuffs reports whether the ability applies hostile statuses.
func (a *Ability) HasDebuffs() bool { return len(a.Debuffs) > 0 }

// HasBuffs reports whether the ability applies friendly statuses.
func (a *Ability) HasBuffs() bool { return len(a.Buffs) > 0 }

// HasTerrain reports whether the ability paints ground terrain.
func (a *Ability) HasTerrain() bool { return a.Terrain != nil }

// HasWall reports whether the ability builds or breaks walls.
func (a *Ability) HasWall() bool { return a.Wall != nil || a.WallBreak != nil }

// Instant reports whether the ability resolves with no activation time.
func (a *Ability) Instant() bool { return a.CastTimeMs <= 0 }

// Validate resolves raw YAML tokens and checks field constraints.
//
// Postcondition: nil return guarantees non-empty ID, resolved Target and
// Projectile, non-negative numeric fields, and at least one effect capability.
func (a *Ability) Validate() error {
	var errs []string
	if a.ID == "" {
		errs = append(errs, "id must not be empty")
	}

	switch a.TargetRaw {
	case "enemy":
		a.Target = TargetEnemy
	case "ally":
		a.Target = TargetAlly
	case "self":
		a.Target = TargetSelf
	case "ground":
		a.Target = TargetGround
	default:
		errs = append(errs, fmt.Sprintf("target must be one of [enemy, ally, self, ground], got %q", a.TargetRaw))
	}

	switch a.ProjRaw {
	case "direct", "":
		a.Projectile = ProjectileDirect
	case "arcing":
		a.Projectile = ProjectileArcing
	case "instant":
		a.Projectile = ProjectileInstant
	default:
		errs = append(errs, fmt.Sprintf("projectile must be one of [direct, arcing, instant], got %q", a.ProjRaw))
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"damage", a.Damage}, {"healing", a.Healing}, {"cast_range", a.CastRange},
		{"cast_time_ms", a.CastTimeMs}, {"energy_cost", a.EnergyCost},
		{"recharge_ms", a.RechargeMs}, {"aoe_radius", a.AoERadius},
	} {
		if f.v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0, got %v", f.name, f.v))
		}
	}
	if a.Soak < 0 || a.Soak > 1 {
		errs = append(errs, fmt.Sprintf("soak must be in [0, 1], got %v", a.Soak))
	}

	if !a.HasDamage() && !a.HasHealing() && !a.HasInterrupt() &&
		!a.HasDebuffs() && !a.HasBuffs() && !a.HasTerrain() && !a.HasWall() {
		errs = append(errs, "ability has no effect capability")
	}

	if len(errs) > 0 {
		return fmt.Errorf("ability %q: %s", a.ID, strings.Join(errs, "; "))
	}
	return nil
}

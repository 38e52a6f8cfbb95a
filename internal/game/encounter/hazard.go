package encounter

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/status"
)

// Shape is a hazard zone's containment shape.
type Shape string

const (
	ShapeCircle     Shape = "circle"
	ShapeRing       Shape = "ring"
	ShapeCone       Shape = "cone"
	ShapeLine       Shape = "line"
	ShapeMovingLine Shape = "moving_line"
)

// ringInnerFraction is the inner radius of a ring as a fraction of the outer.
const ringInnerFraction = 0.5

// HazardEffect is what a zone does to affected actors on each pulse.
type HazardEffect string

const (
	HazardDamage    HazardEffect = "damage"
	HazardSlow      HazardEffect = "slow"
	HazardKnockdown HazardEffect = "knockdown"
	HazardFreeze    HazardEffect = "freeze"
	HazardBlind     HazardEffect = "blind"
	HazardPull      HazardEffect = "pull"
	HazardKnockback HazardEffect = "knockback"
)

// statusEffects lists the hazard effects delivered by applying a status.
var statusEffects = map[HazardEffect]bool{
	HazardSlow:      true,
	HazardKnockdown: true,
	HazardFreeze:    true,
	HazardBlind:     true,
}

// HazardDef is the static definition of one hazard zone.
type HazardDef struct {
	ID     string  `yaml:"id"`
	Shape  Shape   `yaml:"shape"`
	X      float64 `yaml:"x"`
	Z      float64 `yaml:"z"`
	Radius float64 `yaml:"radius"`

	// WarningMs is how long the zone telegraphs before its effect starts.
	WarningMs float64 `yaml:"warning_ms"`
	// TickIntervalMs is the time between effect pulses once active.
	TickIntervalMs float64 `yaml:"tick_interval_ms"`
	// DurationMs is the active lifetime after the warning phase.
	DurationMs float64 `yaml:"duration_ms"`

	Effect HazardEffect `yaml:"effect"`
	// SafeZone inverts containment: actors inside the shape are spared and
	// actors outside receive the effect.
	SafeZone bool `yaml:"safe_zone"`

	// Damage is the warmth removed per pulse for damage zones.
	Damage float64 `yaml:"damage"`
	// StatusID names the effect applied per pulse for slow, knockdown,
	// freeze, and blind zones.
	StatusID string `yaml:"status_id"`
	// Strength is the displacement per pulse for pull and knockback zones.
	Strength float64 `yaml:"strength"`
}

// Validate checks required fields and per-effect parameters.
func (d *HazardDef) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	switch d.Shape {
	case ShapeCircle, ShapeRing, ShapeCone, ShapeLine, ShapeMovingLine:
	default:
		errs = append(errs, fmt.Sprintf("unknown shape %q", d.Shape))
	}
	if d.Radius <= 0 {
		errs = append(errs, "radius must be > 0")
	}
	if d.WarningMs < 0 {
		errs = append(errs, "warning_ms must be >= 0")
	}
	if d.TickIntervalMs <= 0 {
		errs = append(errs, "tick_interval_ms must be > 0")
	}
	if d.DurationMs <= 0 {
		errs = append(errs, "duration_ms must be > 0")
	}
	switch d.Effect {
	case HazardDamage:
		if d.Damage <= 0 {
			errs = append(errs, "damage zones need damage > 0")
		}
	case HazardSlow, HazardKnockdown, HazardFreeze, HazardBlind:
		if d.StatusID == "" {
			errs = append(errs, fmt.Sprintf("%s zones need a status_id", d.Effect))
		}
	case HazardPull, HazardKnockback:
		if d.Strength <= 0 {
			errs = append(errs, fmt.Sprintf("%s zones need strength > 0", d.Effect))
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown effect %q", d.Effect))
	}
	if len(errs) > 0 {
		return fmt.Errorf("hazard %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Contains reports whether (x, z) is strictly inside the zone's shape.
// Cone, line, and moving-line shapes share the circular test; only circle
// and ring have distinct geometry.
func (d *HazardDef) Contains(x, z float64) bool {
	dist := math.Hypot(x-d.X, z-d.Z)
	if d.Shape == ShapeRing {
		return dist >= d.Radius*ringInnerFraction && dist < d.Radius
	}
	return dist < d.Radius
}

// Affects reports whether an actor standing at (x, z) receives the zone's
// effect, honoring safe-zone inversion.
func (d *HazardDef) Affects(x, z float64) bool {
	return d.Contains(x, z) != d.SafeZone
}

// Zone is the live state of one spawned hazard.
type Zone struct {
	Def *HazardDef

	ageMs       float64
	active      bool
	tickAccumMs float64
	expired     bool
}

// NewZone spawns a zone from a validated definition.
//
// Precondition: def must not be nil and must have passed Validate.
func NewZone(def *HazardDef) *Zone {
	if def == nil {
		panic("encounter: nil hazard def")
	}
	return &Zone{Def: def}
}

// Active reports whether the warning phase has completed.
func (z *Zone) Active() bool { return z.active }

// Expired reports whether the zone has run out its duration.
func (z *Zone) Expired() bool { return z.expired }

// Update advances the zone by dtMs, pulsing its effect onto actors at the
// configured interval once the warning phase has elapsed.
//
// Precondition: effects must not be nil when the zone applies a status.
func (z *Zone) Update(dtMs float64, actors []*actor.Actor, effects *status.Registry, logger *zap.Logger) {
	if z.expired {
		return
	}
	z.ageMs += dtMs
	if z.ageMs < z.Def.WarningMs {
		return
	}
	if !z.active {
		z.active = true
		// Only time past the warning boundary counts toward the first pulse.
		z.tickAccumMs = z.ageMs - z.Def.WarningMs
		logger.Debug("hazard active",
			zap.String("hazard", z.Def.ID),
			zap.String("effect", string(z.Def.Effect)),
		)
	} else {
		z.tickAccumMs += dtMs
	}
	if z.ageMs >= z.Def.WarningMs+z.Def.DurationMs {
		z.expired = true
		return
	}
	for z.tickAccumMs >= z.Def.TickIntervalMs {
		z.tickAccumMs -= z.Def.TickIntervalMs
		z.pulse(actors, effects, logger)
	}
}

func (z *Zone) pulse(actors []*actor.Actor, effects *status.Registry, logger *zap.Logger) {
	for _, a := range actors {
		if !a.Alive() || !z.Def.Affects(a.X, a.Z) {
			continue
		}
		switch z.Def.Effect {
		case HazardDamage:
			a.ApplyDamage(z.Def.Damage)
			a.RecordDamage("hazard:"+z.Def.ID, z.Def.ID, z.Def.Damage)
		case HazardPull:
			z.displace(a, -1)
		case HazardKnockback:
			z.displace(a, 1)
		default:
			if !statusEffects[z.Def.Effect] {
				continue
			}
			def, ok := effects.Get(z.Def.StatusID)
			if !ok {
				logger.Warn("hazard references unknown status",
					zap.String("hazard", z.Def.ID),
					zap.String("status", z.Def.StatusID),
				)
				continue
			}
			if _, err := a.Statuses.Apply(def); err != nil {
				logger.Warn("hazard status apply failed",
					zap.String("hazard", z.Def.ID),
					zap.Error(err),
				)
			}
		}
	}
}

// displace moves a along the center-to-actor axis. sign -1 pulls toward the
// center, +1 pushes away. A pull never overshoots the center.
func (z *Zone) displace(a *actor.Actor, sign float64) {
	dx := a.X - z.Def.X
	dz := a.Z - z.Def.Z
	dist := math.Hypot(dx, dz)
	if dist == 0 {
		return
	}
	step := z.Def.Strength
	if sign < 0 && step > dist {
		step = dist
	}
	a.X += sign * step * dx / dist
	a.Z += sign * step * dz / dist
}

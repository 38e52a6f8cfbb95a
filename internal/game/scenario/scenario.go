// Package scenario loads battle setup files: the combatants on each side,
// their roles, bars, and stats, and any encounter bindings. A scenario plus a
// seed fully determines a run.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coldfront-games/flurry/internal/game/ability"
	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/rng"
)

// SpawnDef anchors an actor to a spawn point with engagement radii. Actors
// without one are arena combatants and are always engaged. Zero radii fall
// back to the configured engagement defaults at build time.
type SpawnDef struct {
	AggroRadius float64 `yaml:"aggro_radius"`
	LeashRadius float64 `yaml:"leash_radius"`
}

// EngageDefaults supplies radii for spawn blocks that omit them.
type EngageDefaults struct {
	AggroRadius float64
	LeashRadius float64
}

// spawnJitterSpread is the maximum offset, in units, applied to each spawn
// coordinate so runs with different seeds do not start from identical
// formations.
const spawnJitterSpread = 0.75

// ActorDef is one combatant in a scenario file. Zero stat fields keep the
// unarmed baseline defaults.
type ActorDef struct {
	Name      string `yaml:"name"`
	Team      int    `yaml:"team"`
	Role      string `yaml:"role"`
	Formation string `yaml:"formation"`
	Boss      bool   `yaml:"boss"`
	Player    bool   `yaml:"player"`

	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`

	Warmth           float64 `yaml:"warmth"`
	Energy           float64 `yaml:"energy"`
	MoveSpeed        float64 `yaml:"move_speed"`
	Padding          float64 `yaml:"padding"`
	AttackRange      float64 `yaml:"attack_range"`
	AttackDamage     float64 `yaml:"attack_damage"`
	AttackIntervalMs float64 `yaml:"attack_interval_ms"`

	// Bar lists ability IDs slot by slot.
	Bar []string `yaml:"bar"`

	// Encounter binds a boss to an encounter definition by ID.
	Encounter string `yaml:"encounter"`

	Spawn *SpawnDef `yaml:"spawn"`
}

// Scenario is one loadable battle setup.
type Scenario struct {
	ID         string     `yaml:"id"`
	Ticks      int        `yaml:"ticks"`
	PlayerTeam int        `yaml:"player_team"`
	Actors     []ActorDef `yaml:"actors"`
}

// Validate checks structural invariants. Ability and encounter references are
// resolved later against the loaded registries.
func (s *Scenario) Validate() error {
	var errs []string
	if s.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if s.Ticks <= 0 {
		errs = append(errs, fmt.Sprintf("ticks must be > 0, got %d", s.Ticks))
	}
	if len(s.Actors) < 2 {
		errs = append(errs, "a scenario needs at least two actors")
	}
	teams := map[int]bool{}
	for i := range s.Actors {
		a := &s.Actors[i]
		if a.Name == "" {
			errs = append(errs, fmt.Sprintf("actor %d: name must not be empty", i))
		}
		if _, err := parseRole(a.Role); err != nil && !a.Player {
			errs = append(errs, fmt.Sprintf("actor %q: %v", a.Name, err))
		}
		if _, err := parseFormation(a.Formation); err != nil && !a.Player {
			errs = append(errs, fmt.Sprintf("actor %q: %v", a.Name, err))
		}
		if len(a.Bar) > actor.BarSlots {
			errs = append(errs, fmt.Sprintf("actor %q: bar has %d slots, max is %d", a.Name, len(a.Bar), actor.BarSlots))
		}
		if a.Encounter != "" && !a.Boss {
			errs = append(errs, fmt.Sprintf("actor %q: only bosses bind encounters", a.Name))
		}
		if a.Spawn != nil && a.Spawn.AggroRadius > 0 && a.Spawn.LeashRadius > 0 &&
			a.Spawn.LeashRadius <= a.Spawn.AggroRadius {
			errs = append(errs, fmt.Sprintf("actor %q: leash_radius must exceed aggro_radius", a.Name))
		}
		teams[a.Team] = true
	}
	if len(teams) < 2 {
		errs = append(errs, "a scenario needs actors on at least two teams")
	}
	if len(errs) > 0 {
		return fmt.Errorf("scenario %q: %s", s.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Load reads and validates one scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %q: %w", path, err)
	}
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Binding ties a spawned boss to its encounter definition.
type Binding struct {
	BossID      string
	EncounterID string
}

// Build instantiates the scenario's actors and brains, resolving bar slots
// against the ability registry. Unknown ability IDs are an error; the sim
// treats empty slots as unavailable, so silence here would hide typos.
//
// When roll is non-nil each actor's placement is jittered within
// spawnJitterSpread of its scripted coordinates; the spawn anchor follows the
// jittered point. A nil roll places actors exactly.
//
// Precondition: s must have passed Validate; abilities must not be nil.
func Build(s *Scenario, abilities *ability.Registry, roll *rng.Roller, defaults EngageDefaults) ([]*actor.Actor, *actor.BrainTable, []Binding, error) {
	actors := make([]*actor.Actor, 0, len(s.Actors))
	brains := actor.NewBrainTable()
	var bindings []Binding

	for i := range s.Actors {
		def := &s.Actors[i]
		a := actor.New(def.Name, def.Team)
		a.Boss = def.Boss
		a.PlayerControlled = def.Player
		x, z := def.X, def.Z
		if roll != nil {
			x += roll.Jitter("spawn x", spawnJitterSpread)
			z += roll.Jitter("spawn z", spawnJitterSpread)
		}
		a.X, a.Z = x, z
		a.PrevX, a.PrevZ = x, z

		if def.Warmth > 0 {
			a.Warmth, a.MaxWarmth = def.Warmth, def.Warmth
		}
		if def.Energy > 0 {
			a.Energy, a.MaxEnergy = def.Energy, def.Energy
		}
		if def.MoveSpeed > 0 {
			a.MoveSpeed = def.MoveSpeed
		}
		a.Padding = def.Padding
		if def.AttackRange > 0 {
			a.AttackRange = def.AttackRange
		}
		if def.AttackDamage > 0 {
			a.AttackDamage = def.AttackDamage
		}
		if def.AttackIntervalMs > 0 {
			a.AttackIntervalMs = def.AttackIntervalMs
		}

		for slot, id := range def.Bar {
			if id == "" {
				continue
			}
			ab, ok := abilities.Get(id)
			if !ok {
				return nil, nil, nil, fmt.Errorf("actor %q: unknown ability %q in bar slot %d", def.Name, id, slot)
			}
			a.Bar[slot] = ab
		}

		if !def.Player {
			role, _ := parseRole(def.Role)
			formation, _ := parseFormation(def.Formation)
			brain := actor.NewBrainState(role, formation)
			if def.Spawn != nil {
				aggro, leash := def.Spawn.AggroRadius, def.Spawn.LeashRadius
				if aggro <= 0 {
					aggro = defaults.AggroRadius
				}
				if leash <= 0 {
					leash = defaults.LeashRadius
				}
				brain.SetSpawn(x, z, aggro, leash)
			}
			brains.Attach(a.ID, brain)
		}

		if def.Encounter != "" {
			bindings = append(bindings, Binding{BossID: a.ID, EncounterID: def.Encounter})
		}
		actors = append(actors, a)
	}
	return actors, brains, bindings, nil
}

func parseRole(s string) (actor.Role, error) {
	switch s {
	case "damage":
		return actor.RoleDamage, nil
	case "support":
		return actor.RoleSupport, nil
	case "disruptor":
		return actor.RoleDisruptor, nil
	default:
		return 0, fmt.Errorf("role must be one of [damage, support, disruptor], got %q", s)
	}
}

func parseFormation(s string) (actor.Formation, error) {
	switch s {
	case "frontline":
		return actor.FormationFrontline, nil
	case "midline":
		return actor.FormationMidline, nil
	case "backline":
		return actor.FormationBackline, nil
	default:
		return 0, fmt.Errorf("formation must be one of [frontline, midline, backline], got %q", s)
	}
}

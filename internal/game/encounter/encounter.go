package encounter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/coldfront-games/flurry/internal/game/ability"
	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/status"
	"github.com/coldfront-games/flurry/internal/scripting"
)

// HazardSpawn schedules one hazard zone relative to engaged combat time.
type HazardSpawn struct {
	// AtMs is the boss combat time at which the zone spawns.
	AtMs float64   `yaml:"at_ms"`
	Zone HazardDef `yaml:"zone"`
}

// Def is one encounter's static definition: an ordered boss phase table and
// a combat-time hazard schedule.
type Def struct {
	ID      string        `yaml:"id"`
	Phases  []PhaseDef    `yaml:"phases"`
	Hazards []HazardSpawn `yaml:"hazards"`
}

// Validate checks the encounter and every phase and hazard it contains.
func (d *Def) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if len(d.Phases) > 32 {
		errs = append(errs, fmt.Sprintf("at most 32 phases, got %d", len(d.Phases)))
	}
	for i := range d.Phases {
		if err := d.Phases[i].Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	for i := range d.Hazards {
		if d.Hazards[i].AtMs < 0 {
			errs = append(errs, fmt.Sprintf("hazard %d: at_ms must be >= 0", i))
		}
		if err := d.Hazards[i].Zone.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("encounter %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Registry holds encounter definitions keyed by ID.
type Registry struct {
	encounters map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{encounters: make(map[string]*Def)}
}

// Register adds def, overwriting any existing entry with the same ID.
func (r *Registry) Register(def *Def) {
	r.encounters[def.ID] = def
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.encounters[id]
	return d, ok
}

// Count returns the number of registered encounters.
func (r *Registry) Count() int { return len(r.encounters) }

// LoadDirectory reads every *.yaml file in dir as an encounter Def.
//
// Postcondition: Returns a non-nil Registry, or an error naming the first
// file that fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading encounter dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}

// Director owns one running encounter's mutable state: which hazards have
// spawned and the live zones. Phase firing state lives on the boss's brain
// so an engagement reset clears it with everything else.
type Director struct {
	def       *Def
	abilities *ability.Registry
	effects   *status.Registry
	scripts   *scripting.Manager
	logger    *zap.Logger

	zones      []*Zone
	nextHazard int
}

// NewDirector creates a Director for def. scripts may be nil when the
// encounter has no scripted triggers.
//
// Precondition: def, abilities, effects, and logger must not be nil.
func NewDirector(def *Def, abilities *ability.Registry, effects *status.Registry, scripts *scripting.Manager, logger *zap.Logger) *Director {
	if def == nil {
		panic("encounter: nil def")
	}
	if abilities == nil {
		panic("encounter: nil ability registry")
	}
	if effects == nil {
		panic("encounter: nil status registry")
	}
	if logger == nil {
		panic("encounter: nil logger")
	}
	return &Director{
		def:       def,
		abilities: abilities,
		effects:   effects,
		scripts:   scripts,
		logger:    logger,
	}
}

// AdvancePhases checks the phase table in order and fires the first unfired
// phase whose trigger matches. At most one phase fires per call; fired phases
// are recorded in the brain's bitfield and never re-fire.
//
// Postcondition: on fire, brain.CurrentPhase is the fired index and the
// boss's bar slots named in the phase's swap list hold the new abilities.
func (d *Director) AdvancePhases(boss *actor.Actor, brain *actor.BrainState) (int, bool) {
	for i := range d.def.Phases {
		if brain.PhaseFired(i) {
			continue
		}
		p := &d.def.Phases[i]
		if !d.triggered(p, boss, brain) {
			continue
		}
		brain.MarkPhaseFired(i)
		brain.CurrentPhase = i
		d.swapBar(boss, p)
		d.logger.Info("boss phase fired",
			zap.String("encounter", d.def.ID),
			zap.String("phase", p.Name),
			zap.Int("index", i),
			zap.Float64("warmth_fraction", boss.WarmthFraction()),
		)
		return i, true
	}
	return -1, false
}

func (d *Director) triggered(p *PhaseDef, boss *actor.Actor, brain *actor.BrainState) bool {
	switch p.Trigger {
	case TriggerHealthPct:
		return boss.WarmthFraction() <= p.HealthPct
	case TriggerCombatTime:
		return brain.CombatTimeMs >= p.CombatTimeMs
	case TriggerAddsKilled:
		return brain.AddsKilled >= p.AddsKilled
	case TriggerScripted:
		if d.scripts == nil {
			return false
		}
		ret, err := d.scripts.CallHook(d.def.ID, p.Hook)
		if err != nil {
			return false
		}
		return lua.LVAsBool(ret)
	}
	return false
}

// swapBar replaces the slots named in p.BarSwap and clears their cooldowns.
// Unknown ability IDs leave the slot untouched.
func (d *Director) swapBar(boss *actor.Actor, p *PhaseDef) {
	for slot, id := range p.BarSwap {
		if slot >= actor.BarSlots || id == "" {
			continue
		}
		ab, ok := d.abilities.Get(id)
		if !ok {
			d.logger.Warn("phase swap references unknown ability",
				zap.String("phase", p.Name),
				zap.String("ability", id),
			)
			continue
		}
		boss.Bar[slot] = ab
		boss.Cooldowns[slot] = 0
	}
}

// PhaseMults returns the current phase's damage and speed multipliers, or
// (1, 1) before any phase has fired.
func (d *Director) PhaseMults(brain *actor.BrainState) (damage, speed float64) {
	if brain.CurrentPhase < 0 || brain.CurrentPhase >= len(d.def.Phases) {
		return 1, 1
	}
	return d.def.Phases[brain.CurrentPhase].Mults()
}

// UpdateHazards spawns zones whose scheduled time has arrived, advances every
// live zone, and drops expired ones.
//
// Precondition: combatTimeMs is the boss's accumulated engaged time; spawns
// are scheduled against it in definition order.
func (d *Director) UpdateHazards(dtMs, combatTimeMs float64, actors []*actor.Actor) {
	for d.nextHazard < len(d.def.Hazards) && d.def.Hazards[d.nextHazard].AtMs <= combatTimeMs {
		spawn := &d.def.Hazards[d.nextHazard]
		d.zones = append(d.zones, NewZone(&spawn.Zone))
		d.logger.Debug("hazard spawned",
			zap.String("encounter", d.def.ID),
			zap.String("hazard", spawn.Zone.ID),
		)
		d.nextHazard++
	}
	live := d.zones[:0]
	for _, z := range d.zones {
		z.Update(dtMs, actors, d.effects, d.logger)
		if !z.Expired() {
			live = append(live, z)
		}
	}
	d.zones = live
}

// Zones returns the live zones, warning-phase ones included.
func (d *Director) Zones() []*Zone { return d.zones }

// Reset clears all live zones and rewinds the hazard schedule. Brain-held
// phase state is cleared by the engagement reset.
func (d *Director) Reset() {
	d.zones = nil
	d.nextHazard = 0
}

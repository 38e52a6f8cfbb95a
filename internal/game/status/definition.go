// Package status implements buff and debuff definitions and the per-actor set
// of active effects. Definitions are static YAML content shared by reference;
// only ActiveSet state mutates during a battle.
package status

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Effect kinds as they appear in content files.
const (
	KindBuff   = "buff"
	KindDebuff = "debuff"
)

// EffectDef is the static definition of a buff or debuff, loaded from YAML.
//
// Multiplier fields use 0 to mean "not set" (treated as 1.0 at query time) so
// that content files only spell out the modifiers they change.
type EffectDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind"`        // "buff" | "debuff"
	DurationMs  int    `yaml:"duration_ms"` // 0 = until removed
	MaxStacks   int    `yaml:"max_stacks"`  // 0 = unstackable

	DamageDealtMult  float64 `yaml:"damage_dealt_mult"`
	DamageTakenMult  float64 `yaml:"damage_taken_mult"`
	HealingTakenMult float64 `yaml:"healing_taken_mult"`
	SpeedMult        float64 `yaml:"speed_mult"`

	// MissChance is the percent chance (0-100) that the afflicted actor's
	// direct hits miss outright.
	MissChance int `yaml:"miss_chance"`
	// BlockHits is the number of incoming hits fully absorbed before the
	// effect is consumed.
	BlockHits int `yaml:"block_hits"`
	// InterruptOnDamage marks effects that break the afflicted actor's
	// in-progress cast when it takes damage.
	InterruptOnDamage bool `yaml:"interrupt_on_damage"`
	// Immunities lists effect IDs this effect grants immunity to while active.
	Immunities []string `yaml:"immunities"`
}

// Validate checks required fields and value ranges.
//
// Postcondition: nil return guarantees non-empty ID, Kind in {buff, debuff},
// non-negative durations/stacks, and MissChance in [0, 100].
func (d *EffectDef) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if d.Kind != KindBuff && d.Kind != KindDebuff {
		errs = append(errs, fmt.Sprintf("kind must be buff or debuff, got %q", d.Kind))
	}
	if d.DurationMs < 0 {
		errs = append(errs, "duration_ms must be >= 0")
	}
	if d.MaxStacks < 0 {
		errs = append(errs, "max_stacks must be >= 0")
	}
	if d.MissChance < 0 || d.MissChance > 100 {
		errs = append(errs, fmt.Sprintf("miss_chance must be 0-100, got %d", d.MissChance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("status effect %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// IsDebuff reports whether the effect is hostile.
func (d *EffectDef) IsDebuff() bool { return d.Kind == KindDebuff }

// Registry holds all known EffectDefs keyed by ID.
type Registry struct {
	defs map[string]*EffectDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*EffectDef)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *EffectDef) {
	r.defs[def.ID] = def
}

// Get returns the EffectDef for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*EffectDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns a snapshot slice of all registered EffectDefs.
func (r *Registry) All() []*EffectDef {
	out := make([]*EffectDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as an EffectDef,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to
// parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
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
		var def EffectDef
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

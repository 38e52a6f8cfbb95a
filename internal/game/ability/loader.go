package ability

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds all known Abilities keyed by ID.
type Registry struct {
	abilities map[string]*Ability
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{abilities: make(map[string]*Ability)}
}

// Register adds ab to the registry, overwriting any existing entry with the same ID.
//
// Precondition: ab must not be nil and ab.Validate must have succeeded.
func (r *Registry) Register(ab *Ability) {
	r.abilities[ab.ID] = ab
}

// Get returns the Ability for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Ability, bool) {
	a, ok := r.abilities[id]
	return a, ok
}

// Count returns the number of registered abilities.
func (r *Registry) Count() int { return len(r.abilities) }

// LoadDirectory reads every *.yaml file in dir, parses each as an Ability,
// validates it, and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first file
// that fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ability dir %q: %w", dir, err)
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
		var ab Ability
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&ab); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := ab.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&ab)
	}
	return reg, nil
}

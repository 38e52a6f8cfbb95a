package status

import "fmt"

// ActiveEffect tracks one applied effect on an actor.
type ActiveEffect struct {
	Def         *EffectDef
	Stacks      int
	RemainingMs float64 // -1 = until removed
	// BlocksLeft counts remaining hit absorptions for blocking effects.
	BlocksLeft int
}

// ActiveSet tracks all effects currently applied to one actor.
// It is not safe for concurrent use; the tick driver serialises access.
type ActiveSet struct {
	effects map[string]*ActiveEffect
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{effects: make(map[string]*ActiveEffect)}
}

// Apply adds or refreshes an effect. Re-applying a stackable effect increments
// stacks (capped at MaxStacks); an unstackable effect keeps one stack. The
// remaining duration is extended to the definition's DurationMs when longer.
// Application is skipped when another active effect grants immunity to def.ID.
//
// Precondition: def must not be nil.
// Postcondition: returns true iff the effect is active afterwards; false means
// the application was blocked by an immunity.
func (s *ActiveSet) Apply(def *EffectDef) (bool, error) {
	if def == nil {
		return false, fmt.Errorf("status.Apply: def must not be nil")
	}
	if s.ImmuneTo(def.ID) {
		return false, nil
	}

	duration := float64(def.DurationMs)
	if def.DurationMs == 0 {
		duration = -1
	}

	if existing, ok := s.effects[def.ID]; ok {
		if def.MaxStacks > 0 && existing.Stacks < def.MaxStacks {
			existing.Stacks++
		}
		if duration < 0 || duration > existing.RemainingMs {
			existing.RemainingMs = duration
		}
		existing.BlocksLeft = def.BlockHits
		return true, nil
	}

	s.effects[def.ID] = &ActiveEffect{
		Def:         def,
		Stacks:      1,
		RemainingMs: duration,
		BlocksLeft:  def.BlockHits,
	}
	return true, nil
}

// Remove deletes the effect with the given ID. No-op when absent.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) {
	delete(s.effects, id)
}

// Clear removes every active effect. Used on engagement reset and respawn.
func (s *ActiveSet) Clear() {
	s.effects = make(map[string]*ActiveEffect)
}

// Tick advances all timed effects by dtMs and removes the ones that expire.
// Effects with RemainingMs < 0 are untouched.
//
// Postcondition: every ID in the returned slice satisfies Has(id) == false.
func (s *ActiveSet) Tick(dtMs float64) []string {
	var expired []string
	for id, ae := range s.effects {
		if ae.RemainingMs < 0 {
			continue
		}
		ae.RemainingMs -= dtMs
		if ae.RemainingMs <= 0 {
			expired = append(expired, id)
			delete(s.effects, id)
		}
	}
	return expired
}

// Has reports whether the effect with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.effects[id]
	return ok
}

// Stacks returns the current stack count for effect id, or 0 if absent.
func (s *ActiveSet) Stacks(id string) int {
	if ae, ok := s.effects[id]; ok {
		return ae.Stacks
	}
	return 0
}

// ImmuneTo reports whether any active effect grants immunity to effect id.
func (s *ActiveSet) ImmuneTo(id string) bool {
	for _, ae := range s.effects {
		for _, im := range ae.Def.Immunities {
			if im == id {
				return true
			}
		}
	}
	return false
}

// All returns the active effects as a freshly allocated slice. The pointed-to
// ActiveEffect values are shared; callers must not modify them.
func (s *ActiveSet) All() []*ActiveEffect {
	out := make([]*ActiveEffect, 0, len(s.effects))
	for _, ae := range s.effects {
		out = append(out, ae)
	}
	return out
}

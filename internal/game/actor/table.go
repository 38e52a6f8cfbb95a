package actor

import "fmt"

// BrainTable maps stable actor IDs to brain states. Keying by ID rather than
// array position removes the possibility of the actor array and the AI state
// silently desynchronizing; a missing entry for an AI-controlled actor is a
// programming defect and fails loudly.
type BrainTable struct {
	brains map[string]*BrainState
}

// NewBrainTable creates an empty BrainTable.
func NewBrainTable() *BrainTable {
	return &BrainTable{brains: make(map[string]*BrainState)}
}

// Attach registers brain for the actor with the given ID, replacing any
// existing entry.
//
// Precondition: id must be non-empty; brain must not be nil.
func (t *BrainTable) Attach(id string, brain *BrainState) {
	if id == "" {
		panic("actor.BrainTable.Attach: id must not be empty")
	}
	if brain == nil {
		panic("actor.BrainTable.Attach: brain must not be nil")
	}
	t.brains[id] = brain
}

// Detach removes the brain for id. No-op when absent.
func (t *BrainTable) Detach(id string) {
	delete(t.brains, id)
}

// Get returns the brain for id, or (nil, false) for actors without one
// (player-controlled actors have no brain).
func (t *BrainTable) Get(id string) (*BrainState, bool) {
	b, ok := t.brains[id]
	return b, ok
}

// MustGet returns the brain for id and panics when it is missing. Call sites
// that reach MustGet have already established the actor is AI-controlled, so
// a miss means the entity store and the brain table have desynchronized.
func (t *BrainTable) MustGet(id string) *BrainState {
	b, ok := t.brains[id]
	if !ok {
		panic(fmt.Sprintf("actor.BrainTable: no brain state for actor %q; entity store and brain table are out of sync", id))
	}
	return b
}

// Len returns the number of registered brains.
func (t *BrainTable) Len() int { return len(t.brains) }

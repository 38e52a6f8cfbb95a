package actor

// Role selects which ability categories an AI actor favors.
type Role int

const (
	RoleDamage Role = iota
	RoleSupport
	RoleDisruptor
)

// String returns the content token for the role.
func (r Role) String() string {
	switch r {
	case RoleDamage:
		return "damage"
	case RoleSupport:
		return "support"
	case RoleDisruptor:
		return "disruptor"
	default:
		return "unknown"
	}
}

// Formation selects an AI actor's preferred battle line.
type Formation int

const (
	FormationFrontline Formation = iota
	FormationMidline
	FormationBackline
)

// String returns the content token for the formation.
func (f Formation) String() string {
	switch f {
	case FormationFrontline:
		return "frontline"
	case FormationMidline:
		return "midline"
	case FormationBackline:
		return "backline"
	default:
		return "unknown"
	}
}

// EngageState is the aggro/leash lifecycle state for encounter-bound actors.
// The transition logic lives in the engage package; the data lives here with
// the rest of the brain state.
type EngageState int

const (
	EngageIdle EngageState = iota
	EngageAlerted
	EngageEngaged
	EngageLeashing
	EngageResetting
)

// String returns a human-readable state label.
func (s EngageState) String() string {
	switch s {
	case EngageIdle:
		return "idle"
	case EngageAlerted:
		return "alerted"
	case EngageEngaged:
		return "engaged"
	case EngageLeashing:
		return "leashing"
	case EngageResetting:
		return "resetting"
	default:
		return "unknown"
	}
}

// BrainState is the per-actor AI state, created at spawn and mutated every
// tick by the decision engine, movement planner, and engagement machine.
type BrainState struct {
	Role      Role
	Formation Formation

	// NextDecisionTick is the scheduler tick at which the decision engine
	// next evaluates candidates.
	NextDecisionTick uint64

	FocusTargetID string

	Kiting     bool
	KiteTimeMs float64
	LastStand  bool

	Engagement    EngageState
	EngageTimerMs float64
	PullerID      string

	// HasSpawn is false for arena-mode combatants, which bypass the
	// engagement machine and are always treated as engaged.
	HasSpawn       bool
	SpawnX, SpawnZ float64
	AggroRadius    float64
	LeashRadius    float64

	WaveIndex int

	// Boss phase tracking.
	PhasesFired  uint32 // bitfield; bit i set means phase i has fired
	CurrentPhase int    // -1 = no phase active
	CombatTimeMs float64
	AddsKilled   int

	// ChosenSlot/ChosenTargetID hold this tick's selected-but-out-of-range
	// action; they only steer movement and are cleared each decision pass.
	ChosenSlot     int
	ChosenTargetID string
}

// NewBrainState creates a brain with the given role and formation and all
// tracking fields at their defaults.
func NewBrainState(role Role, formation Formation) *BrainState {
	return &BrainState{
		Role:         role,
		Formation:    formation,
		CurrentPhase: -1,
		ChosenSlot:   -1,
	}
}

// SetSpawn records the spawn anchor and engagement radii, marking the actor
// encounter-bound.
func (b *BrainState) SetSpawn(x, z, aggro, leash float64) {
	b.HasSpawn = true
	b.SpawnX = x
	b.SpawnZ = z
	b.AggroRadius = aggro
	b.LeashRadius = leash
}

// PhaseFired reports whether phase index i has already fired.
//
// Precondition: 0 <= i < 32.
func (b *BrainState) PhaseFired(i int) bool {
	return b.PhasesFired&(1<<uint(i)) != 0
}

// MarkPhaseFired records phase index i in the bitfield so it never re-fires.
//
// Precondition: 0 <= i < 32.
// Postcondition: PhaseFired(i) is true.
func (b *BrainState) MarkPhaseFired(i int) {
	b.PhasesFired |= 1 << uint(i)
}

// Reset returns the brain to spawn defaults, keeping role, formation, spawn
// anchor, and radii. Used on engagement reset and respawn.
func (b *BrainState) Reset() {
	b.NextDecisionTick = 0
	b.FocusTargetID = ""
	b.Kiting = false
	b.KiteTimeMs = 0
	b.LastStand = false
	b.Engagement = EngageIdle
	b.EngageTimerMs = 0
	b.PullerID = ""
	b.PhasesFired = 0
	b.CurrentPhase = -1
	b.CombatTimeMs = 0
	b.AddsKilled = 0
	b.ChosenSlot = -1
	b.ChosenTargetID = ""
}

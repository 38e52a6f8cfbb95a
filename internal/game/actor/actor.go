// Package actor defines the live combatant entity and the per-actor AI brain
// state. Actors are owned by the simulation's entity store; the combat core
// borrows them mutably for the duration of one tick and never retains them.
package actor

import (
	"math"

	"github.com/google/uuid"

	"github.com/coldfront-games/flurry/internal/game/ability"
	"github.com/coldfront-games/flurry/internal/game/status"
)

// BarSlots is the fixed size of an actor's ability bar.
const BarSlots = 8

// AttributionCap is the fixed capacity of the rolling damage-attribution list.
const AttributionCap = 6

// CastProgress tracks an ability activation in flight.
type CastProgress struct {
	Slot       int
	AbilityID  string
	TargetID   string // empty for self/ground abilities
	GroundX    float64
	GroundZ    float64
	ElapsedMs  float64
	CastTimeMs float64
}

// Done reports whether the activation time has fully elapsed.
func (c *CastProgress) Done() bool { return c.ElapsedMs >= c.CastTimeMs }

// PendingCast is an ability queued against a target after an out-of-range
// cast attempt. It is retried every tick until it fires or the target dies.
type PendingCast struct {
	Slot     int
	TargetID string
}

// DamageSource is one entry in an actor's rolling damage-attribution list.
type DamageSource struct {
	SourceID  string
	AbilityID string
	Amount    float64
	Hits      int
}

// Actor is one live combatant. Only warmth, energy, position, statuses, cast
// state, and attribution are mutated by the combat core; the ability bar and
// its descriptors are read-only.
type Actor struct {
	ID   string
	Name string
	Team int
	// Boss marks encounter bosses for phase processing and adds-killed
	// accounting.
	Boss bool
	// PlayerControlled actors skip AI decision-making entirely.
	PlayerControlled bool

	X, Z         float64
	PrevX, PrevZ float64
	Facing       float64 // radians, world space

	Warmth    float64
	MaxWarmth float64
	Energy    float64
	MaxEnergy float64

	MoveSpeed float64 // units per second
	// Padding is the defensive stat; reduction = padding/(padding+100).
	Padding float64

	// Equipment-derived auto-attack stats.
	AttackRange      float64
	AttackDamage     float64
	AttackIntervalMs float64
	AttackTimerMs    float64

	Bar       [BarSlots]*ability.Ability
	Cooldowns [BarSlots]float64 // remaining ms per slot

	Casting  *CastProgress
	Pending  *PendingCast
	Statuses *status.ActiveSet

	DamageLog []DamageSource
}

// New creates an actor with a fresh UUID, full warmth/energy, and an empty
// status set. Combat stats default to an unarmed baseline; callers overwrite
// fields from content after construction.
func New(name string, team int) *Actor {
	return &Actor{
		ID:               uuid.NewString(),
		Name:             name,
		Team:             team,
		Warmth:           100,
		MaxWarmth:        100,
		Energy:           50,
		MaxEnergy:        50,
		MoveSpeed:        30,
		AttackRange:      10,
		AttackDamage:     5,
		AttackIntervalMs: 1500,
		Statuses:         status.NewActiveSet(),
	}
}

// Alive reports whether the actor has warmth remaining.
func (a *Actor) Alive() bool { return a.Warmth > 0 }

// IsCasting reports whether an ability activation is in flight.
func (a *Actor) IsCasting() bool { return a.Casting != nil }

// WarmthFraction returns current warmth as a fraction of max; 0 if MaxWarmth == 0.
func (a *Actor) WarmthFraction() float64 {
	if a.MaxWarmth <= 0 {
		return 0
	}
	return a.Warmth / a.MaxWarmth
}

// DistanceTo returns the planar distance to other.
func (a *Actor) DistanceTo(other *Actor) float64 {
	dx := other.X - a.X
	dz := other.Z - a.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// DistanceToPoint returns the planar distance to (x, z).
func (a *Actor) DistanceToPoint(x, z float64) float64 {
	dx := x - a.X
	dz := z - a.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Moving reports whether the actor changed position since the previous tick.
func (a *Actor) Moving() bool {
	return a.X != a.PrevX || a.Z != a.PrevZ
}

// ApplyDamage reduces warmth by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: Warmth >= 0.
func (a *Actor) ApplyDamage(amount float64) {
	a.Warmth -= amount
	if a.Warmth < 0 {
		a.Warmth = 0
	}
}

// Heal raises warmth by amount, clamped to MaxWarmth.
//
// Precondition: amount >= 0.
// Postcondition: Warmth <= MaxWarmth.
func (a *Actor) Heal(amount float64) {
	a.Warmth += amount
	if a.Warmth > a.MaxWarmth {
		a.Warmth = a.MaxWarmth
	}
}

// RecordDamage attaches a damage-source record to the rolling attribution
// list. A matching source+ability pair increments its hit counter instead of
// duplicating; otherwise the oldest entry is evicted once the list holds
// AttributionCap entries.
//
// Postcondition: len(DamageLog) <= AttributionCap.
func (a *Actor) RecordDamage(sourceID, abilityID string, amount float64) {
	for i := range a.DamageLog {
		if a.DamageLog[i].SourceID == sourceID && a.DamageLog[i].AbilityID == abilityID {
			a.DamageLog[i].Hits++
			a.DamageLog[i].Amount += amount
			return
		}
	}
	if len(a.DamageLog) >= AttributionCap {
		copy(a.DamageLog, a.DamageLog[1:])
		a.DamageLog = a.DamageLog[:AttributionCap-1]
	}
	a.DamageLog = append(a.DamageLog, DamageSource{
		SourceID:  sourceID,
		AbilityID: abilityID,
		Amount:    amount,
		Hits:      1,
	})
}

// AbilityAt returns the ability equipped in slot, or (nil, false) when the
// slot is out of range or empty. An empty slot is "ability unavailable", not
// an error.
func (a *Actor) AbilityAt(slot int) (*ability.Ability, bool) {
	if slot < 0 || slot >= BarSlots || a.Bar[slot] == nil {
		return nil, false
	}
	return a.Bar[slot], true
}

// CanAfford reports whether current energy covers the ability's cost.
func (a *Actor) CanAfford(ab *ability.Ability) bool {
	return a.Energy >= ab.EnergyCost
}

// OffCooldown reports whether slot is ready to cast.
func (a *Actor) OffCooldown(slot int) bool {
	if slot < 0 || slot >= BarSlots {
		return false
	}
	return a.Cooldowns[slot] <= 0
}

// TickCooldowns advances all slot cooldowns by dtMs. The auto-attack timer is
// untouched; it accumulates upward in the driver and resets on each swing.
func (a *Actor) TickCooldowns(dtMs float64) {
	for i := range a.Cooldowns {
		if a.Cooldowns[i] > 0 {
			a.Cooldowns[i] -= dtMs
			if a.Cooldowns[i] < 0 {
				a.Cooldowns[i] = 0
			}
		}
	}
}

// Interrupt cancels the in-flight cast, if any. Cooldown and energy already
// spent are not refunded.
//
// Postcondition: IsCasting() is false.
func (a *Actor) Interrupt() {
	a.Casting = nil
}

// RestoreFull returns the actor to spawn condition: full warmth and energy,
// no statuses, no cooldowns, nothing in flight. Used on engagement reset.
func (a *Actor) RestoreFull() {
	a.Warmth = a.MaxWarmth
	a.Energy = a.MaxEnergy
	a.Statuses.Clear()
	for i := range a.Cooldowns {
		a.Cooldowns[i] = 0
	}
	a.Casting = nil
	a.Pending = nil
	a.AttackTimerMs = 0
	a.DamageLog = nil
}

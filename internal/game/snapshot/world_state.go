// Package snapshot builds the per-actor, per-tick view of the battlefield the
// decision and movement layers consume. Snapshots are ephemeral: rebuilt every
// tick from the live actor slice and never persisted.
package snapshot

import (
	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/rng"
)

// MaxTracked is the hard capacity of the ally and enemy lists. Entities beyond
// capacity are silently excluded; this is a documented approximation, not a
// soft limit.
const MaxTracked = 128

// wallBlockHeight is the wall height above which a sampled heading counts as
// blocked.
const wallBlockHeight = 1.5

// threatRange is the enemy distance within which ice underfoot becomes a
// liability.
const threatRange = 25.0

// WorldState is one actor's view of the battlefield for one tick. The ally
// list includes the acting actor itself, so self is a legal heal target
// during candidate enumeration.
//
// Invariant: AllyCount <= MaxTracked and EnemyCount <= MaxTracked.
type WorldState struct {
	Self  *actor.Actor
	Brain *actor.BrainState

	Allies     [MaxTracked]*actor.Actor
	Enemies    [MaxTracked]*actor.Actor
	AllyCount  int
	EnemyCount int

	AllyWarmth  float64
	EnemyWarmth float64

	// LowestAlly/LowestEnemy are the living actors with the lowest warmth
	// fraction on each side; ties go to the first seen in iteration order.
	LowestAlly  *actor.Actor
	LowestEnemy *actor.Actor

	NearestEnemy *actor.Actor
	NearestDist  float64

	// CastingEnemy is the first enemy observed mid-cast in iteration order.
	CastingEnemy *actor.Actor
	// EnemyHealer is the first enemy in the support role in iteration order.
	EnemyHealer *actor.Actor

	CentroidX, CentroidZ float64
	HasCentroid          bool

	// Borrowed collaborators, set once by the tick driver. Brains is
	// refreshed on every Rebuild.
	Terrain    Terrain
	Buildings  Buildings
	VFX        Telemetry
	Roll       *rng.Roller
	Brains     *actor.BrainTable
	PlayerTeam int

	DeltaMs float64
}

// Rebuild repopulates ws for self in a single pass over actors. Dead actors
// are skipped; survivors are classified against self's team. No side effects
// beyond ws itself.
//
// Precondition: self must be in actors and alive; brains must not be nil.
// Postcondition: all aggregate fields reflect exactly the living actors, with
// first-seen tie-breaking in actors order.
func (ws *WorldState) Rebuild(self *actor.Actor, brain *actor.BrainState, actors []*actor.Actor, brains *actor.BrainTable, dtMs float64) {
	ws.Self = self
	ws.Brain = brain
	ws.Brains = brains
	ws.AllyCount = 0
	ws.EnemyCount = 0
	ws.AllyWarmth = 0
	ws.EnemyWarmth = 0
	ws.LowestAlly = nil
	ws.LowestEnemy = nil
	ws.NearestEnemy = nil
	ws.NearestDist = 0
	ws.CastingEnemy = nil
	ws.EnemyHealer = nil
	ws.CentroidX = 0
	ws.CentroidZ = 0
	ws.HasCentroid = false
	ws.DeltaMs = dtMs

	var sumX, sumZ float64
	livingEnemies := 0

	for _, a := range actors {
		if !a.Alive() {
			continue
		}
		if a.Team == self.Team {
			if ws.AllyCount < MaxTracked {
				ws.Allies[ws.AllyCount] = a
				ws.AllyCount++
			}
			ws.AllyWarmth += a.Warmth
			if ws.LowestAlly == nil || a.WarmthFraction() < ws.LowestAlly.WarmthFraction() {
				ws.LowestAlly = a
			}
			continue
		}

		if ws.EnemyCount < MaxTracked {
			ws.Enemies[ws.EnemyCount] = a
			ws.EnemyCount++
		}
		ws.EnemyWarmth += a.Warmth
		livingEnemies++
		sumX += a.X
		sumZ += a.Z

		if ws.LowestEnemy == nil || a.WarmthFraction() < ws.LowestEnemy.WarmthFraction() {
			ws.LowestEnemy = a
		}
		d := self.DistanceTo(a)
		if ws.NearestEnemy == nil || d < ws.NearestDist {
			ws.NearestEnemy = a
			ws.NearestDist = d
		}
		if ws.CastingEnemy == nil && a.IsCasting() {
			ws.CastingEnemy = a
		}
		if ws.EnemyHealer == nil {
			if b, ok := brains.Get(a.ID); ok && b.Role == actor.RoleSupport {
				ws.EnemyHealer = a
			}
		}
	}

	// The sums cover every living enemy, tracked or not, so the divisor must
	// too; EnemyCount saturates at MaxTracked.
	if livingEnemies > 0 {
		ws.CentroidX = sumX / float64(livingEnemies)
		ws.CentroidZ = sumZ / float64(livingEnemies)
		ws.HasCentroid = true
	}
}

// EnemyByID returns the tracked living enemy with the given ID, or nil.
func (ws *WorldState) EnemyByID(id string) *actor.Actor {
	for i := 0; i < ws.EnemyCount; i++ {
		if ws.Enemies[i].ID == id {
			return ws.Enemies[i]
		}
	}
	return nil
}

// LastStand reports whether the fight is judged unwinnable enough to disable
// retreat: enemies outnumber allies by two or more, the ally team's warmth is
// below 30% of the enemy team's, or the acting actor is the last living ally.
func (ws *WorldState) LastStand() bool {
	if ws.AllyCount == 1 && ws.EnemyCount >= 1 {
		return true
	}
	if ws.EnemyCount >= ws.AllyCount+2 {
		return true
	}
	if ws.EnemyCount > 0 && ws.AllyWarmth < 0.3*ws.EnemyWarmth {
		return true
	}
	return false
}

// DirectionQuality scores a heading from the acting actor by sampling terrain
// at three evenly spaced points along the ray. Ice near a threat, walls,
// building collisions, and headings that lose line of sight behind a building
// all penalize; higher is better.
//
// Postcondition: deterministic for a fixed snapshot; no side effects.
func (ws *WorldState) DirectionQuality(dirX, dirZ, sampleDist float64) float64 {
	q := 0.0
	for i := 1; i <= 3; i++ {
		t := sampleDist * float64(i) / 3
		px := ws.Self.X + dirX*t
		pz := ws.Self.Z + dirZ*t

		s := 1.0
		if ws.Terrain != nil {
			s = ws.Terrain.SpeedMultiplierAt(px, pz)
			if ws.Terrain.WallHeightAt(px, pz) > wallBlockHeight {
				s -= 0.8
			}
			if ws.Terrain.IsIcyAt(px, pz) && ws.NearestEnemy != nil && ws.NearestDist < threatRange {
				s -= 0.5
			}
		}
		if ws.Buildings != nil {
			if _, hit := ws.Buildings.CollisionAt(px, pz); hit {
				s -= 0.9
			} else if !ws.Buildings.CheckLineOfSight(ws.Self.X, ws.Self.Z, px, pz) {
				// A sample point hidden behind a building is reachable but
				// blind; penalize it less than walking into the building.
				s -= 0.4
			}
		}
		q += s
	}
	return q / 3
}

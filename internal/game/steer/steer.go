// Package steer implements the tactical movement planner. Each tick it turns
// a world snapshot into a normalized local-space movement intent, which an
// external movement and collision resolver applies to the actor's position.
// The planner never writes positions itself.
package steer

import (
	"math"

	"go.uber.org/zap"

	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/snapshot"
	"github.com/coldfront-games/flurry/internal/game/status"
)

// MovementIntent is the planner's per-tick output.
type MovementIntent struct {
	// LocalX and LocalZ form the movement direction in the actor's local
	// space, scaled by the desired speed fraction.
	LocalX, LocalZ float64
	// Facing is the world-space facing angle in radians.
	Facing float64
	// ApplyPenalties is false only while leashing, when terrain speed
	// penalties are ignored.
	ApplyPenalties bool
}

// Preferred engagement distances per formation.
const (
	frontlineRange = 8.0
	midlineRange   = 25.0
	backlineRange  = 40.0
)

// advanceSlack is the tolerance factor before a frontliner closes distance.
const advanceSlack = 1.2

// meleeThreat is the distance at which an enemy is considered in contact.
const meleeThreat = 10.0

// MaxKiteMs caps continuous backpedaling; beyond it the last-stand override
// forces the actor to turn and fight.
const MaxKiteMs = 6000.0

// spreadRadius is the ally separation distance that damps area-effect
// clustering.
const spreadRadius = 6.0

// qualityMargin is the minimum terrain-quality improvement before the planner
// deviates from its primary heading.
const qualityMargin = 0.15

// qualitySampleDist is how far ahead terrain quality is sampled.
const qualitySampleDist = 12.0

// Planner computes movement intents. One Planner serves the whole simulation.
type Planner struct {
	logger *zap.Logger
}

// NewPlanner creates a Planner.
func NewPlanner(logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{logger: logger}
}

// Plan computes this tick's movement intent for ws.Self. Priority: steer to a
// queued ability's target, then to the chosen out-of-range action's target,
// then formation positioning against the nearest enemy. Kite-time tracking
// and the last-stand flag on ws.Brain are updated as a side effect.
//
// Precondition: ws.Brain must not be nil.
func (p *Planner) Plan(ws *snapshot.WorldState, dtMs float64) MovementIntent {
	self, brain := ws.Self, ws.Brain

	brain.LastStand = ws.LastStand() || brain.KiteTimeMs > MaxKiteMs

	intent := MovementIntent{Facing: self.Facing, ApplyPenalties: true}
	if ws.NearestEnemy == nil {
		brain.Kiting = false
		brain.KiteTimeMs = 0
		return intent
	}

	var dirX, dirZ, speed float64
	retreating := false

	if target := p.approachTarget(ws); target != nil {
		dirX, dirZ = norm(target.X-self.X, target.Z-self.Z)
		speed = 1.0
		intent.Facing = math.Atan2(target.Z-self.Z, target.X-self.X)
	} else {
		dirX, dirZ, speed, retreating = p.formationVector(ws)
		intent.Facing = math.Atan2(ws.NearestEnemy.Z-self.Z, ws.NearestEnemy.X-self.X)
	}

	// Retreat is disabled outright in a last stand.
	if retreating && brain.LastStand {
		dirX, dirZ, speed = 0, 0, 0
		retreating = false
	}

	if retreating {
		brain.Kiting = true
		brain.KiteTimeMs += dtMs
	} else {
		brain.Kiting = false
		brain.KiteTimeMs = 0
	}

	if speed > 0 {
		dirX, dirZ = p.deflectAroundBuildings(ws, dirX, dirZ)
		dirX, dirZ = p.separateFromAllies(ws, dirX, dirZ)
		dirX, dirZ = p.nudgeTowardBetterGround(ws, dirX, dirZ)
	}

	// Standing on ice near a threat, movement is damped sharply so the actor
	// does not skate into a knockdown.
	if ws.Terrain != nil && ws.Terrain.IsIcyAt(self.X, self.Z) && ws.NearestDist < meleeThreat*2 {
		speed *= 0.25
	}

	speed *= status.SpeedMult(self.Statuses)

	wx, wz := dirX*speed, dirZ*speed
	intent.LocalX, intent.LocalZ = worldToLocal(wx, wz, intent.Facing)
	return intent
}

// approachTarget returns the actor this tick's movement should close on, or
// nil when formation positioning applies. Queued targets win over chosen
// ones; backline actors never chase, they let the retry fire when the fight
// comes to them.
func (p *Planner) approachTarget(ws *snapshot.WorldState) *actor.Actor {
	self, brain := ws.Self, ws.Brain
	if brain.Formation == actor.FormationBackline && !brain.LastStand {
		return nil
	}
	if self.Pending != nil {
		if t := findByID(ws, self.Pending.TargetID); t != nil {
			return t
		}
	}
	if brain.ChosenSlot >= 0 && brain.ChosenTargetID != "" {
		if t := findByID(ws, brain.ChosenTargetID); t != nil {
			return t
		}
	}
	return nil
}

// formationVector computes the formation-driven direction, speed fraction,
// and whether the motion is a retreat.
func (p *Planner) formationVector(ws *snapshot.WorldState) (dirX, dirZ, speed float64, retreating bool) {
	self, brain := ws.Self, ws.Brain
	enemy := ws.NearestEnemy
	dist := ws.NearestDist
	toX, toZ := norm(enemy.X-self.X, enemy.Z-self.Z)

	switch brain.Formation {
	case actor.FormationFrontline:
		if dist > frontlineRange*advanceSlack {
			return toX, toZ, 1.0, false
		}
		return 0, 0, 0, false

	case actor.FormationMidline:
		frac := self.WarmthFraction()
		if frac < 0.35 || (dist <= meleeThreat && frac < 0.7) {
			return -toX, -toZ, 1.0, true
		}
		switch {
		case dist > midlineRange*1.5:
			return toX, toZ, 1.0, false
		case dist > midlineRange:
			return toX, toZ, 0.5, false
		case dist < midlineRange*0.7:
			return -toX, -toZ, 0.4, true
		default:
			return 0, 0, 0, false
		}

	case actor.FormationBackline:
		if self.Team == ws.PlayerTeam {
			// Holds ground near the player; only modest adjustment when
			// pressured.
			if dist < backlineRange*0.5 {
				return -toX, -toZ, 0.3, true
			}
			return 0, 0, 0, false
		}
		if dist < backlineRange*advanceSlack {
			return -toX, -toZ, 1.0, true
		}
		return 0, 0, 0, false
	}
	return 0, 0, 0, false
}

// deflectAroundBuildings bends a heading that would walk into a building.
// Four blend ratios toward each perpendicular are sampled, left before right;
// the first unobstructed heading wins. An unresolvable heading is returned
// unchanged and left to the collision resolver.
func (p *Planner) deflectAroundBuildings(ws *snapshot.WorldState, dirX, dirZ float64) (float64, float64) {
	if ws.Buildings == nil {
		return dirX, dirZ
	}
	if p.headingClear(ws, dirX, dirZ) {
		return dirX, dirZ
	}
	// Left perpendicular first, then right.
	perps := [2][2]float64{{-dirZ, dirX}, {dirZ, -dirX}}
	for _, perp := range perps {
		for _, blend := range []float64{0.25, 0.5, 0.75, 1.0} {
			bx, bz := norm(dirX*(1-blend)+perp[0]*blend, dirZ*(1-blend)+perp[1]*blend)
			if p.headingClear(ws, bx, bz) {
				return bx, bz
			}
		}
	}
	return dirX, dirZ
}

func (p *Planner) headingClear(ws *snapshot.WorldState, dirX, dirZ float64) bool {
	self := ws.Self
	_, hit := ws.Buildings.CollisionAt(self.X+dirX*qualitySampleDist, self.Z+dirZ*qualitySampleDist)
	return !hit
}

// separateFromAllies adds a push away from allies inside the spread radius so
// the team does not bunch into area effects.
func (p *Planner) separateFromAllies(ws *snapshot.WorldState, dirX, dirZ float64) (float64, float64) {
	self := ws.Self
	pushX, pushZ := 0.0, 0.0
	for i := 0; i < ws.AllyCount; i++ {
		ally := ws.Allies[i]
		if ally.ID == self.ID {
			continue
		}
		d := self.DistanceTo(ally)
		if d >= spreadRadius || d == 0 {
			continue
		}
		w := (spreadRadius - d) / spreadRadius
		ax, az := norm(self.X-ally.X, self.Z-ally.Z)
		pushX += ax * w
		pushZ += az * w
	}
	if pushX == 0 && pushZ == 0 {
		return dirX, dirZ
	}
	return norm(dirX+pushX*0.5, dirZ+pushZ*0.5)
}

// nudgeTowardBetterGround compares terrain quality ahead against two rotated
// headings and deviates only when the improvement clears a fixed margin.
func (p *Planner) nudgeTowardBetterGround(ws *snapshot.WorldState, dirX, dirZ float64) (float64, float64) {
	if ws.Terrain == nil {
		return dirX, dirZ
	}
	bestX, bestZ := dirX, dirZ
	best := ws.DirectionQuality(dirX, dirZ, qualitySampleDist)
	for _, angle := range []float64{-math.Pi / 6, math.Pi / 6} {
		rx, rz := rotate(dirX, dirZ, angle)
		if q := ws.DirectionQuality(rx, rz, qualitySampleDist); q > best+qualityMargin {
			best = q
			bestX, bestZ = rx, rz
		}
	}
	return bestX, bestZ
}

// findByID scans both tracked lists for a living actor with the given ID.
func findByID(ws *snapshot.WorldState, id string) *actor.Actor {
	for i := 0; i < ws.AllyCount; i++ {
		if ws.Allies[i].ID == id {
			return ws.Allies[i]
		}
	}
	return ws.EnemyByID(id)
}

// worldToLocal converts a world-space vector into the actor's local space via
// inverse rotation by the facing angle.
func worldToLocal(wx, wz, facing float64) (float64, float64) {
	sin, cos := math.Sincos(facing)
	return wx*cos + wz*sin, -wx*sin + wz*cos
}

func rotate(x, z, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - z*sin, x*sin + z*cos
}

func norm(x, z float64) (float64, float64) {
	l := math.Sqrt(x*x + z*z)
	if l == 0 {
		return 0, 0
	}
	return x / l, z / l
}

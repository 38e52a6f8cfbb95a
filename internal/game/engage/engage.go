// Package engage implements the aggro and leash lifecycle for encounter-bound
// actors: idle, alerted, engaged, leashing, resetting. It gates whether combat
// logic runs each tick and overrides movement while an actor returns to its
// spawn anchor.
package engage

import (
	"math"

	"go.uber.org/zap"

	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/snapshot"
	"github.com/coldfront-games/flurry/internal/game/steer"
)

// AlertPauseMs is the dramatic pause between noticing an intruder and acting.
const AlertPauseMs = 1500.0

// ResetDelayMs is how long a leashed actor stands at spawn before restoring.
const ResetDelayMs = 3000.0

// leashSpeedMult is the speed fraction applied while returning to spawn.
const leashSpeedMult = 2.0

// arriveThreshold is the spawn distance below which leashing completes.
const arriveThreshold = 2.0

// Machine advances engagement state. One Machine serves the whole simulation;
// all per-actor state lives on the brain.
type Machine struct {
	logger *zap.Logger
}

// NewMachine creates a Machine.
func NewMachine(logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{logger: logger}
}

// Update advances ws.Self's engagement state by dtMs. It returns whether
// combat logic may run this tick and, while leashing, a movement override
// that replaces the planner's intent. Actors without a spawn anchor bypass
// the machine and are always engaged.
//
// The aggro boundary is inclusive: an enemy exactly at the radius alerts.
//
// Precondition: ws.Brain must not be nil.
func (m *Machine) Update(ws *snapshot.WorldState, dtMs float64) (bool, *steer.MovementIntent) {
	self, brain := ws.Self, ws.Brain

	if !brain.HasSpawn {
		brain.Engagement = actor.EngageEngaged
		brain.CombatTimeMs += dtMs
		return true, nil
	}

	switch brain.Engagement {
	case actor.EngageIdle:
		if ws.NearestEnemy != nil && ws.NearestDist <= brain.AggroRadius {
			brain.Engagement = actor.EngageAlerted
			brain.EngageTimerMs = 0
			brain.PullerID = ws.NearestEnemy.ID
			m.logger.Debug("actor alerted",
				zap.String("actor", self.Name),
				zap.String("puller", ws.NearestEnemy.Name))
		}
		return false, nil

	case actor.EngageAlerted:
		brain.EngageTimerMs += dtMs
		if brain.EngageTimerMs >= AlertPauseMs {
			brain.Engagement = actor.EngageEngaged
			brain.EngageTimerMs = 0
			brain.CombatTimeMs = 0
		}
		return false, nil

	case actor.EngageEngaged:
		brain.CombatTimeMs += dtMs
		fromSpawn := self.DistanceToPoint(brain.SpawnX, brain.SpawnZ)
		if fromSpawn > brain.LeashRadius && ws.EnemyCount > 0 {
			brain.Engagement = actor.EngageLeashing
			m.logger.Debug("actor leashing",
				zap.String("actor", self.Name),
				zap.Float64("from_spawn", fromSpawn))
			return false, m.leashIntent(self, brain)
		}
		return true, nil

	case actor.EngageLeashing:
		if self.DistanceToPoint(brain.SpawnX, brain.SpawnZ) < arriveThreshold {
			brain.Engagement = actor.EngageResetting
			brain.EngageTimerMs = 0
			return false, nil
		}
		return false, m.leashIntent(self, brain)

	case actor.EngageResetting:
		brain.EngageTimerMs += dtMs
		if brain.EngageTimerMs >= ResetDelayMs {
			self.RestoreFull()
			brain.Reset()
			m.logger.Debug("actor reset", zap.String("actor", self.Name))
		}
		return false, nil
	}
	return false, nil
}

// leashIntent points the actor straight at its spawn anchor at the leash
// speed multiplier, ignoring terrain penalties.
func (m *Machine) leashIntent(self *actor.Actor, brain *actor.BrainState) *steer.MovementIntent {
	facing := math.Atan2(brain.SpawnZ-self.Z, brain.SpawnX-self.X)
	return &steer.MovementIntent{
		LocalX:         leashSpeedMult,
		Facing:         facing,
		ApplyPenalties: false,
	}
}

// Package decide implements the per-actor decision engine: enumerating legal
// ability and target pairs at decision interval boundaries, scoring them with
// role-weighted utilities, and either casting immediately or committing to a
// chosen action that steers movement until the target is in range.
package decide

import (
	"go.uber.org/zap"

	"github.com/coldfront-games/flurry/internal/game/ability"
	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/cast"
	"github.com/coldfront-games/flurry/internal/game/scoring"
	"github.com/coldfront-games/flurry/internal/game/snapshot"
)

// DecisionInterval is the number of AI ticks between decision passes.
const DecisionInterval = 3

// DefaultMinUtility is the threshold below which the best candidate is
// discarded rather than acted on.
const DefaultMinUtility = 0.25

// Out-of-range candidates are kept but penalized so a nearby decent option
// usually beats a distant great one.
const (
	enemyRangePenalty = 0.7
	allyRangePenalty  = 0.6
)

// Engine selects and executes one action per decision window for each AI
// actor. One Engine serves the whole simulation.
type Engine struct {
	pipe       *cast.Pipeline
	minUtility float64
	interval   uint64
	logger     *zap.Logger
}

// NewEngine creates an Engine casting through pipe. minUtility <= 0 selects
// DefaultMinUtility; interval <= 0 selects DecisionInterval.
//
// Precondition: pipe must not be nil.
func NewEngine(pipe *cast.Pipeline, minUtility float64, interval int, logger *zap.Logger) *Engine {
	if pipe == nil {
		panic("decide: pipe must not be nil")
	}
	if minUtility <= 0 {
		minUtility = DefaultMinUtility
	}
	if interval <= 0 {
		interval = DecisionInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{pipe: pipe, minUtility: minUtility, interval: uint64(interval), logger: logger}
}

// candidate is one scored ability/target pair.
type candidate struct {
	slot    int
	ab      *ability.Ability
	target  *actor.Actor // nil for ground aims
	gx, gz  float64
	inRange bool
	utility float64
}

// Decide runs one decision pass for ws.Self if tick has reached the actor's
// next decision boundary. It refreshes the brain's focus target to the
// weakest living enemy, then either casts the best candidate immediately,
// records it as the chosen action for movement steering when out of range,
// or does nothing when no candidate clears the utility threshold.
//
// Precondition: ws.Brain must not be nil.
func (e *Engine) Decide(ws *snapshot.WorldState, tick uint64) {
	self, brain := ws.Self, ws.Brain
	if tick < brain.NextDecisionTick {
		return
	}
	brain.NextDecisionTick = tick + e.interval

	// Every brain marks the weakest living enemy, so a whole team converges
	// on one victim through the focus-fire scoring bonus.
	if ws.LowestEnemy != nil {
		brain.FocusTargetID = ws.LowestEnemy.ID
	} else {
		brain.FocusTargetID = ""
	}

	// An in-flight or queued ability owns the actor until it resolves.
	if self.IsCasting() || self.Pending != nil {
		return
	}

	brain.ChosenSlot = -1
	brain.ChosenTargetID = ""

	best := candidate{slot: -1, utility: e.minUtility}
	for slot := 0; slot < actor.BarSlots; slot++ {
		ab, ok := self.AbilityAt(slot)
		if !ok || !self.OffCooldown(slot) || !self.CanAfford(ab) {
			continue
		}
		for _, c := range e.enumerate(slot, ab, ws) {
			if c.utility > best.utility {
				best = c
			}
		}
	}
	if best.slot < 0 {
		return
	}

	if !best.inRange {
		brain.ChosenSlot = best.slot
		if best.target != nil {
			brain.ChosenTargetID = best.target.ID
		}
		return
	}

	res := e.pipe.Cast(self, best.slot, best.target, best.gx, best.gz)
	e.logger.Debug("decision executed",
		zap.String("actor", self.Name),
		zap.String("ability", best.ab.ID),
		zap.Float64("utility", best.utility),
		zap.Stringer("result", res))
}

// enumerate yields every scored candidate for one bar slot.
func (e *Engine) enumerate(slot int, ab *ability.Ability, ws *snapshot.WorldState) []candidate {
	self, role := ws.Self, ws.Brain.Role
	var out []candidate

	switch ab.Target {
	case ability.TargetEnemy:
		for i := 0; i < ws.EnemyCount; i++ {
			t := ws.Enemies[i]
			u := e.enemyUtility(ab, t, ws, role)
			in := self.DistanceTo(t) <= ab.CastRange
			if !in {
				u *= enemyRangePenalty
			}
			out = append(out, candidate{slot: slot, ab: ab, target: t, inRange: in, utility: u})
		}
	case ability.TargetAlly:
		for i := 0; i < ws.AllyCount; i++ {
			t := ws.Allies[i]
			u := e.allyUtility(ab, t, ws, role)
			in := self.DistanceTo(t) <= ab.CastRange
			if !in {
				u *= allyRangePenalty
			}
			out = append(out, candidate{slot: slot, ab: ab, target: t, inRange: in, utility: u})
		}
	case ability.TargetSelf:
		u := e.allyUtility(ab, self, ws, role)
		out = append(out, candidate{slot: slot, ab: ab, target: self, inRange: true, utility: u})
	case ability.TargetGround:
		if !ws.HasCentroid {
			return nil
		}
		u := scoring.RoleWeight(role, scoring.CategoryGround) * scoring.Ground(ab, ws, ws.Roll)
		u += scoring.RoleWeight(role, scoring.CategoryWall) * scoring.Wall(ab, ws)
		in := ab.CastRange <= 0 || self.DistanceToPoint(ws.CentroidX, ws.CentroidZ) <= ab.CastRange
		if !in {
			u *= enemyRangePenalty
		}
		out = append(out, candidate{slot: slot, ab: ab, gx: ws.CentroidX, gz: ws.CentroidZ, inRange: in, utility: u})
	}
	return out
}

// enemyUtility sums the role-weighted hostile category scores for one pair.
func (e *Engine) enemyUtility(ab *ability.Ability, target *actor.Actor, ws *snapshot.WorldState, role actor.Role) float64 {
	u := 0.0
	if ab.HasDamage() {
		u += scoring.RoleWeight(role, scoring.CategoryDamage) * scoring.Damage(ab, target, ws)
	}
	if ab.HasInterrupt() {
		u += scoring.RoleWeight(role, scoring.CategoryInterrupt) * scoring.Interrupt(ab, target, ws)
	}
	if ab.HasDebuffs() {
		u += scoring.RoleWeight(role, scoring.CategoryDebuff) * scoring.Debuff(ab, target, ws)
	}
	if ab.HasWall() {
		u += scoring.RoleWeight(role, scoring.CategoryWall) * scoring.Wall(ab, ws)
	}
	if ab.HasTerrain() {
		u += scoring.RoleWeight(role, scoring.CategoryGround) * scoring.Ground(ab, ws, ws.Roll)
	}
	return u
}

// allyUtility sums the role-weighted friendly category scores for one pair.
func (e *Engine) allyUtility(ab *ability.Ability, target *actor.Actor, ws *snapshot.WorldState, role actor.Role) float64 {
	u := 0.0
	if ab.HasHealing() {
		u += scoring.RoleWeight(role, scoring.CategoryHeal) * scoring.Heal(ab, target, ws)
	}
	if ab.HasBuffs() {
		u += scoring.RoleWeight(role, scoring.CategoryBuff) * scoring.Buff(ab, target, ws)
	}
	if ab.HasWall() {
		u += scoring.RoleWeight(role, scoring.CategoryWall) * scoring.Wall(ab, ws)
	}
	if ab.HasTerrain() {
		u += scoring.RoleWeight(role, scoring.CategoryGround) * scoring.Ground(ab, ws, ws.Roll)
	}
	return u
}

// RetryPending retries ws.Self's queued ability. Runs every tick, not just at
// decision boundaries. The queue clears when the target has died or the cast
// fires; an unaffordable or still-out-of-range retry leaves it queued.
func (e *Engine) RetryPending(ws *snapshot.WorldState) {
	self := ws.Self
	p := self.Pending
	if p == nil {
		return
	}

	target := findByID(ws, p.TargetID)
	if target == nil || !target.Alive() {
		self.Pending = nil
		return
	}
	ab, ok := self.AbilityAt(p.Slot)
	if !ok {
		self.Pending = nil
		return
	}
	if !self.CanAfford(ab) || self.DistanceTo(target) > ab.CastRange {
		return
	}

	switch res := e.pipe.Cast(self, p.Slot, target, 0, 0); res {
	case cast.Success, cast.CastingStarted:
		self.Pending = nil
		e.logger.Debug("queued cast fired",
			zap.String("actor", self.Name), zap.String("ability", ab.ID))
	case cast.TargetDead, cast.NoTarget:
		self.Pending = nil
	}
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

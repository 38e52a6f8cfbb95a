// Package sim owns the tick loop: it rebuilds each actor's snapshot, gates
// combat through the engagement machine, advances casts, runs the decision
// engine and movement planner, and applies auto-attacks. Actors are processed
// in array order, so an earlier actor's mutations this tick are visible to
// every later actor's snapshot. That ordering is load-bearing for matching
// outcomes across runs and must not be parallelized.
package sim

import (
	"math"

	"go.uber.org/zap"

	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/cast"
	"github.com/coldfront-games/flurry/internal/game/decide"
	"github.com/coldfront-games/flurry/internal/game/encounter"
	"github.com/coldfront-games/flurry/internal/game/engage"
	"github.com/coldfront-games/flurry/internal/game/rng"
	"github.com/coldfront-games/flurry/internal/game/snapshot"
	"github.com/coldfront-games/flurry/internal/game/status"
	"github.com/coldfront-games/flurry/internal/game/steer"
)

// MoveApplier turns a movement intent into a position change. The core never
// writes final positions itself; collision resolution belongs to the applier.
type MoveApplier interface {
	Apply(a *actor.Actor, intent steer.MovementIntent, dtMs float64)
}

// Mover is the default MoveApplier: straight-line integration of the intent
// with terrain speed penalties and no collision.
type Mover struct {
	terrain snapshot.Terrain
}

// NewMover creates a Mover. terrain may be nil, disabling speed penalties.
func NewMover(terrain snapshot.Terrain) *Mover {
	return &Mover{terrain: terrain}
}

// Apply rotates the local-frame intent into world space and steps the actor.
// The intent's magnitude scales the actor's move speed; leashing intents
// exceed 1.0 on purpose.
func (m *Mover) Apply(a *actor.Actor, intent steer.MovementIntent, dtMs float64) {
	a.PrevX, a.PrevZ = a.X, a.Z
	a.Facing = intent.Facing
	if intent.LocalX == 0 && intent.LocalZ == 0 {
		return
	}
	sin, cos := math.Sincos(intent.Facing)
	wx := intent.LocalX*cos - intent.LocalZ*sin
	wz := intent.LocalX*sin + intent.LocalZ*cos

	speed := a.MoveSpeed
	if intent.ApplyPenalties && m.terrain != nil {
		speed *= m.terrain.SpeedMultiplierAt(a.X, a.Z)
	}
	step := speed * dtMs / 1000
	a.X += wx * step
	a.Z += wz * step
}

// Deps wires a Driver. Actors, Brains, Roll, and Logger are required; the
// rest default to no-ops or nil-safe substitutes.
type Deps struct {
	Actors []*actor.Actor
	Brains *actor.BrainTable

	// Terrain is the read-only query surface shared by snapshots and the
	// default mover. TerrainOps is the mutating surface the cast pipeline
	// uses; one object usually implements both.
	Terrain    snapshot.Terrain
	TerrainOps cast.Terrain
	Buildings  snapshot.Buildings
	VFX        snapshot.Telemetry

	Effects *status.Registry
	Roll    *rng.Roller
	Logger  *zap.Logger

	// Mover replaces the default straight-line mover when set.
	Mover MoveApplier

	TickMs     float64
	MinUtility float64
	PlayerTeam int

	// DecisionInterval is the number of ticks between decision passes;
	// <= 0 selects the engine default.
	DecisionInterval int
}

// Driver advances the whole battle one fixed step at a time. It exclusively
// owns the actor slice for the duration of each Tick.
type Driver struct {
	actors []*actor.Actor
	brains *actor.BrainTable

	pipe    *cast.Pipeline
	engine  *decide.Engine
	planner *steer.Planner
	machine *engage.Machine
	mover   MoveApplier
	logger  *zap.Logger

	directors map[string]*encounter.Director

	ws     snapshot.WorldState
	tickMs float64
	tick   uint64
}

// NewDriver builds a Driver and its internal pipeline, decision engine,
// planner, and engagement machine from deps.
//
// Precondition: deps.Actors, deps.Brains, deps.Effects, deps.TerrainOps,
// deps.Roll, and deps.Logger must not be nil; deps.TickMs must be > 0.
func NewDriver(deps Deps) *Driver {
	if deps.Brains == nil {
		panic("sim: nil brain table")
	}
	if deps.Roll == nil {
		panic("sim: nil roller")
	}
	if deps.Logger == nil {
		panic("sim: nil logger")
	}
	if deps.TickMs <= 0 {
		panic("sim: tick_ms must be > 0")
	}

	pipe := cast.NewPipeline(deps.Effects, deps.TerrainOps, deps.VFX, deps.Roll, deps.Logger)
	pipe.Actors = func() []*actor.Actor { return deps.Actors }
	mover := deps.Mover
	if mover == nil {
		mover = NewMover(deps.Terrain)
	}

	d := &Driver{
		actors:    deps.Actors,
		brains:    deps.Brains,
		pipe:      pipe,
		engine:    decide.NewEngine(pipe, deps.MinUtility, deps.DecisionInterval, deps.Logger),
		planner:   steer.NewPlanner(deps.Logger),
		machine:   engage.NewMachine(deps.Logger),
		mover:     mover,
		logger:    deps.Logger,
		directors: make(map[string]*encounter.Director),
		tickMs:    deps.TickMs,
	}
	d.ws.Terrain = deps.Terrain
	d.ws.Buildings = deps.Buildings
	d.ws.VFX = snapshot.OrNop(deps.VFX)
	d.ws.Roll = deps.Roll
	d.ws.PlayerTeam = deps.PlayerTeam
	return d
}

// Pipeline exposes the cast pipeline for externally driven actors.
func (d *Driver) Pipeline() *cast.Pipeline { return d.pipe }

// CurrentTick returns the number of completed ticks.
func (d *Driver) CurrentTick() uint64 { return d.tick }

// BindEncounter attaches a phase and hazard director to the boss with the
// given actor ID. The director runs only while that boss is engaged.
func (d *Driver) BindEncounter(bossID string, dir *encounter.Director) {
	d.directors[bossID] = dir
}

// Tick advances the battle by one fixed step.
func (d *Driver) Tick() {
	d.tick++
	dt := d.tickMs

	aliveBefore := make(map[string]bool, len(d.actors))
	for _, a := range d.actors {
		aliveBefore[a.ID] = a.Alive()
	}

	for _, a := range d.actors {
		if !a.Alive() {
			continue
		}
		a.TickCooldowns(dt)
		a.Statuses.Tick(dt)

		brain, hasBrain := d.brains.Get(a.ID)
		if !hasBrain {
			// Externally driven actors still progress their in-flight casts.
			d.advanceCast(a, dt)
			continue
		}

		d.ws.Rebuild(a, brain, d.actors, d.brains, dt)
		combatActive, override := d.machine.Update(&d.ws, dt)

		if dir, bound := d.directors[a.ID]; bound {
			if combatActive {
				dir.AdvancePhases(a, brain)
				dir.UpdateHazards(dt, brain.CombatTimeMs, d.actors)
			} else if brain.Engagement == actor.EngageIdle {
				dir.Reset()
			}
		}

		// In-flight casts keep running even while the engagement machine is
		// moving the actor; a leash or alert pause must not freeze the bar.
		d.advanceCast(a, dt)

		if override != nil {
			d.mover.Apply(a, *override, dt)
			continue
		}
		if !combatActive {
			continue
		}

		if a.PlayerControlled {
			continue
		}

		d.engine.RetryPending(&d.ws)
		d.engine.Decide(&d.ws, d.tick)

		intent := d.planner.Plan(&d.ws, dt)
		d.scalePhaseSpeed(a, brain, &intent)
		d.mover.Apply(a, intent, dt)

		d.autoAttack(a, brain, dt)
	}

	d.accountAddDeaths(aliveBefore)
}

// Run executes n consecutive ticks.
func (d *Driver) Run(n int) {
	for i := 0; i < n; i++ {
		d.Tick()
	}
}

// advanceCast accrues activation time and resolves the cast when it finishes.
func (d *Driver) advanceCast(a *actor.Actor, dt float64) {
	if !a.IsCasting() {
		return
	}
	a.Casting.ElapsedMs += dt
	if !a.Casting.Done() {
		return
	}
	d.pipe.FinishCast(a, d.findActor(a.Casting.TargetID))
}

// autoAttack lands a basic swing when the attack timer fills and the nearest
// enemy is inside attack range. Casting suppresses swings.
func (d *Driver) autoAttack(a *actor.Actor, brain *actor.BrainState, dt float64) {
	if a.IsCasting() || a.AttackDamage <= 0 {
		return
	}
	a.AttackTimerMs += dt
	target := d.ws.NearestEnemy
	if target == nil || !target.Alive() || d.ws.NearestDist > a.AttackRange {
		return
	}
	if a.AttackTimerMs < a.AttackIntervalMs {
		return
	}
	a.AttackTimerMs = 0

	amount := a.AttackDamage
	if dir, bound := d.directors[a.ID]; bound {
		dmgMult, _ := dir.PhaseMults(brain)
		amount *= dmgMult
	}
	d.pipe.BasicHit(a, target, amount)
}

// scalePhaseSpeed applies the active boss phase's speed multiplier to the
// movement intent magnitude.
func (d *Driver) scalePhaseSpeed(a *actor.Actor, brain *actor.BrainState, intent *steer.MovementIntent) {
	dir, bound := d.directors[a.ID]
	if !bound {
		return
	}
	_, speedMult := dir.PhaseMults(brain)
	intent.LocalX *= speedMult
	intent.LocalZ *= speedMult
}

// accountAddDeaths credits this tick's non-boss deaths on a boss's team to
// that boss's adds-killed counter.
func (d *Driver) accountAddDeaths(aliveBefore map[string]bool) {
	for bossID := range d.directors {
		boss := d.findActor(bossID)
		if boss == nil {
			continue
		}
		brain, ok := d.brains.Get(bossID)
		if !ok {
			continue
		}
		for _, a := range d.actors {
			if a.ID == bossID || a.Team != boss.Team {
				continue
			}
			if aliveBefore[a.ID] && !a.Alive() {
				brain.AddsKilled++
				d.logger.Debug("encounter add died",
					zap.String("boss", boss.Name),
					zap.String("add", a.Name),
					zap.Int("adds_killed", brain.AddsKilled))
			}
		}
	}
}

func (d *Driver) findActor(id string) *actor.Actor {
	if id == "" {
		return nil
	}
	for _, a := range d.actors {
		if a.ID == id {
			return a
		}
	}
	return nil
}

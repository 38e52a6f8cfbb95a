// Package cast implements the ability resolution pipeline: validation of one
// cast attempt, the damage and healing math, status application, and terrain
// mutation. Activation-timed abilities transition the caster through an
// explicit casting state; the tick driver calls FinishCast when the timer
// elapses.
package cast

import (
	"go.uber.org/zap"

	"github.com/coldfront-games/flurry/internal/game/ability"
	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/rng"
	"github.com/coldfront-games/flurry/internal/game/snapshot"
	"github.com/coldfront-games/flurry/internal/game/status"
)

// Result is the closed outcome set of a cast attempt. None of these are
// faults; the decision engine consumes them as ordinary control values.
type Result int

const (
	Success Result = iota
	CastingStarted
	NoEnergy
	OutOfRange
	NoTarget
	TargetDead
	CasterDead
	OnCooldown
	AlreadyCasting
)

// String returns the result token used in logs.
func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case CastingStarted:
		return "castingStarted"
	case NoEnergy:
		return "noEnergy"
	case OutOfRange:
		return "outOfRange"
	case NoTarget:
		return "noTarget"
	case TargetDead:
		return "targetDead"
	case CasterDead:
		return "casterDead"
	case OnCooldown:
		return "onCooldown"
	case AlreadyCasting:
		return "alreadyCasting"
	default:
		return "unknown"
	}
}

// Terrain is the terrain surface the pipeline reads for cover and mutates for
// ground effects. Declared locally so the pipeline does not depend on any
// concrete terrain implementation.
type Terrain interface {
	HasWallBetween(x1, z1, x2, z2, minHeight float64) bool
	PaintAreaTerrain(x, z, radius float64, kind string)
	BuildWallPerpendicular(x, z, facing, offset, length, height, thickness float64, team int)
	DamageWallsInRadius(x, z, radius, amount float64)
}

// Walls at or above this height grant cover against direct and instant hits.
const coverWallHeight = 1.5

// coverDamageMult is applied to direct and instant hits fired through a wall.
const coverDamageMult = 0.4

// Pipeline resolves cast attempts against live actors. One Pipeline serves
// the whole simulation; it holds no per-actor state.
type Pipeline struct {
	effects *status.Registry
	terrain Terrain
	vfx     snapshot.Telemetry
	roll    *rng.Roller
	logger  *zap.Logger

	// Actors supplies the live actor set for area resolution. Injected after
	// construction; nil means area payloads reach only the primary target.
	Actors func() []*actor.Actor
}

// NewPipeline creates a Pipeline over the given collaborators. A nil vfx is
// replaced with a no-op sink; telemetry must never fail a cast.
//
// Precondition: effects, terrain, and roll must not be nil.
func NewPipeline(effects *status.Registry, terrain Terrain, vfx snapshot.Telemetry, roll *rng.Roller, logger *zap.Logger) *Pipeline {
	if effects == nil || terrain == nil || roll == nil {
		panic("cast: effects, terrain, and roll must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		effects: effects,
		terrain: terrain,
		vfx:     snapshot.OrNop(vfx),
		roll:    roll,
		logger:  logger,
	}
}

// Cast validates and executes one ability use from caster's bar slot. Enemy
// and ally targeted abilities require target; ground abilities aim at
// (groundX, groundZ); self abilities ignore both.
//
// Validation order, first failure wins: caster alive, not already casting,
// slot off cooldown, ability equipped, energy, target present and alive,
// target in range. A failed range check queues the ability against the target
// for per-tick retry before reporting OutOfRange.
//
// Postcondition: on Success or CastingStarted the energy cost is deducted and
// the slot cooldown is set from the recharge time.
func (p *Pipeline) Cast(caster *actor.Actor, slot int, target *actor.Actor, groundX, groundZ float64) Result {
	if !caster.Alive() {
		return CasterDead
	}
	if caster.IsCasting() {
		return AlreadyCasting
	}
	if !caster.OffCooldown(slot) {
		return OnCooldown
	}
	ab, ok := caster.AbilityAt(slot)
	if !ok {
		// An empty slot is "nothing to cast", not a defect.
		return NoTarget
	}
	if !caster.CanAfford(ab) {
		p.vfx.RecordQueueNoEnergy(caster.ID, ab.ID)
		return NoEnergy
	}

	targetID := ""
	switch ab.Target {
	case ability.TargetEnemy, ability.TargetAlly:
		if target == nil {
			p.vfx.RecordQueueFailure(caster.ID, ab.ID)
			return NoTarget
		}
		if !target.Alive() {
			p.vfx.RecordQueueFailure(caster.ID, ab.ID)
			return TargetDead
		}
		if caster.DistanceTo(target) > ab.CastRange {
			caster.Pending = &actor.PendingCast{Slot: slot, TargetID: target.ID}
			p.vfx.RecordQueueOutOfRange(caster.ID, ab.ID)
			return OutOfRange
		}
		targetID = target.ID
	case ability.TargetSelf:
		target = caster
		targetID = caster.ID
	case ability.TargetGround:
		target = nil
		if ab.CastRange > 0 && caster.DistanceToPoint(groundX, groundZ) > ab.CastRange {
			p.vfx.RecordQueueOutOfRange(caster.ID, ab.ID)
			return OutOfRange
		}
	}

	caster.Energy -= ab.EnergyCost
	caster.Cooldowns[slot] = ab.RechargeMs
	p.vfx.RecordQueueSuccess(caster.ID, ab.ID)

	if !ab.Instant() {
		caster.Casting = &actor.CastProgress{
			Slot:       slot,
			AbilityID:  ab.ID,
			TargetID:   targetID,
			GroundX:    groundX,
			GroundZ:    groundZ,
			CastTimeMs: ab.CastTimeMs,
		}
		p.logger.Debug("cast started",
			zap.String("caster", caster.Name),
			zap.String("ability", ab.ID),
			zap.Float64("cast_time_ms", ab.CastTimeMs))
		return CastingStarted
	}

	p.resolve(caster, ab, target, groundX, groundZ)
	return Success
}

// FinishCast resolves a completed activation and clears the casting state.
// target must be the live actor for the in-flight TargetID, or nil when the
// target despawned or the ability is self or ground aimed.
//
// Precondition: caster.Casting is non-nil and Done.
func (p *Pipeline) FinishCast(caster *actor.Actor, target *actor.Actor) {
	prog := caster.Casting
	caster.Casting = nil

	ab, ok := caster.AbilityAt(prog.Slot)
	if !ok || ab.ID != prog.AbilityID {
		// The bar was swapped mid-cast by a phase transition. The activation
		// fizzles; energy and cooldown stay spent.
		p.logger.Debug("cast fizzled on bar swap",
			zap.String("caster", caster.Name),
			zap.String("ability", prog.AbilityID))
		return
	}
	if ab.Target == ability.TargetSelf {
		target = caster
	}
	if (ab.Target == ability.TargetEnemy || ab.Target == ability.TargetAlly) &&
		(target == nil || !target.Alive()) {
		p.logger.Debug("cast completed against dead target",
			zap.String("caster", caster.Name),
			zap.String("ability", ab.ID))
		return
	}
	p.resolve(caster, ab, target, prog.GroundX, prog.GroundZ)
}

// resolve executes every payload the ability carries. target is nil only for
// ground abilities; their hostile payloads land through the area pass.
func (p *Pipeline) resolve(caster *actor.Actor, ab *ability.Ability, target *actor.Actor, groundX, groundZ float64) {
	if target != nil && target != caster && ab.Projectile != ability.ProjectileInstant {
		p.vfx.SpawnProjectile(caster.X, caster.Z, target.X, target.Z, ab.ID)
	}

	if ab.HasDamage() && target != nil && target.Team != caster.Team {
		p.resolveDamage(caster, ab, target)
	}
	if ab.HasHealing() && target != nil {
		amount := ab.Healing * status.HealingTakenMult(target.Statuses)
		target.Heal(amount)
		p.vfx.SpawnHeal(target.X, target.Z, amount)
	}
	if ab.HasInterrupt() && target != nil && target.IsCasting() {
		p.logger.Debug("cast interrupted",
			zap.String("caster", caster.Name),
			zap.String("target", target.Name),
			zap.String("ability", ab.ID))
		target.Interrupt()
	}

	p.applyStatuses(caster, ab, target)
	if ab.AoERadius > 0 {
		p.resolveArea(caster, ab, target, groundX, groundZ)
	}
	p.resolveTerrain(caster, ab, target, groundX, groundZ)
}

// resolveArea splashes the ability's hostile payloads over every living enemy
// within AoERadius of the impact point: the primary target for enemy casts,
// the aim point for ground casts. The primary target is excluded; it already
// took the full payload.
func (p *Pipeline) resolveArea(caster *actor.Actor, ab *ability.Ability, primary *actor.Actor, groundX, groundZ float64) {
	if p.Actors == nil {
		return
	}
	cx, cz := groundX, groundZ
	if primary != nil {
		cx, cz = primary.X, primary.Z
	}
	for _, a := range p.Actors() {
		if a == primary || a == caster || !a.Alive() || a.Team == caster.Team {
			continue
		}
		if a.DistanceToPoint(cx, cz) > ab.AoERadius {
			continue
		}
		if ab.HasDamage() {
			p.resolveDamage(caster, ab, a)
		}
		p.applyDebuffs(caster, ab, a)
	}
}

// resolveDamage runs the damage chain: caster debuff and buff multipliers,
// target defensive multiplier, padding reduction with optional soak, cover,
// the miss roll, and block absorption, then applies the remainder and records
// attribution.
func (p *Pipeline) resolveDamage(caster *actor.Actor, ab *ability.Ability, target *actor.Actor) {
	dmg := ab.Damage
	dmg *= status.DealtDebuffMult(caster.Statuses)
	buffMult := status.DealtBuffMult(caster.Statuses)
	dmg *= buffMult
	dmg *= status.DamageTakenMult(target.Statuses)

	// Padding reduction with diminishing returns. Soak recomputes the
	// reduction against lowered padding and reapplies the caster buff
	// multiplier once more, a long-standing quirk kept for matching outcomes.
	preArmor := dmg
	padding := target.Padding
	dmg = preArmor * (1 - padding/(padding+100))
	if ab.Soak > 0 {
		eff := padding * (1 - ab.Soak)
		dmg = preArmor * (1 - eff/(eff+100)) * buffMult
	}

	if ab.Projectile != ability.ProjectileArcing &&
		p.terrain.HasWallBetween(caster.X, caster.Z, target.X, target.Z, coverWallHeight) {
		dmg *= coverDamageMult
	}

	if chance := status.MissChance(caster.Statuses); chance > 0 {
		if p.roll.Percent("blinded hit") < chance {
			p.vfx.SpawnDamageNumber(target.X, target.Z, 0, true)
			p.logger.Debug("hit missed",
				zap.String("caster", caster.Name),
				zap.String("target", target.Name),
				zap.String("ability", ab.ID))
			return
		}
	}

	if status.ConsumeBlock(target.Statuses) {
		p.vfx.SpawnDamageNumber(target.X, target.Z, 0, false)
		p.logger.Debug("hit blocked",
			zap.String("caster", caster.Name),
			zap.String("target", target.Name),
			zap.String("ability", ab.ID))
		return
	}

	if dmg < 0 {
		dmg = 0
	}
	target.ApplyDamage(dmg)
	target.RecordDamage(caster.ID, ab.ID, dmg)
	p.vfx.SpawnDamageNumber(target.X, target.Z, dmg, false)

	if dmg > 0 && target.IsCasting() && status.InterruptsOnDamage(target.Statuses) {
		target.Interrupt()
	}

	p.logger.Debug("damage resolved",
		zap.String("caster", caster.Name),
		zap.String("target", target.Name),
		zap.String("ability", ab.ID),
		zap.Float64("damage", dmg),
		zap.Float64("warmth", target.Warmth))
}

// BasicAttackID is the attribution key for auto-attack swings.
const BasicAttackID = "attack"

// BasicHit lands one auto-attack swing from caster on target through the
// shared damage chain: caster multipliers, target defensive multiplier,
// padding reduction, the miss roll, and block absorption. Swings happen at
// melee range, so cover is not checked.
//
// Precondition: caster and target must be alive and on different teams.
func (p *Pipeline) BasicHit(caster, target *actor.Actor, amount float64) {
	dmg := amount
	dmg *= status.DealtDebuffMult(caster.Statuses)
	dmg *= status.DealtBuffMult(caster.Statuses)
	dmg *= status.DamageTakenMult(target.Statuses)
	dmg *= 1 - target.Padding/(target.Padding+100)

	if chance := status.MissChance(caster.Statuses); chance > 0 {
		if p.roll.Percent("blinded swing") < chance {
			p.vfx.SpawnDamageNumber(target.X, target.Z, 0, true)
			return
		}
	}
	if status.ConsumeBlock(target.Statuses) {
		p.vfx.SpawnDamageNumber(target.X, target.Z, 0, false)
		return
	}
	if dmg < 0 {
		dmg = 0
	}
	target.ApplyDamage(dmg)
	target.RecordDamage(caster.ID, BasicAttackID, dmg)
	p.vfx.SpawnDamageNumber(target.X, target.Z, dmg, false)

	if dmg > 0 && target.IsCasting() && status.InterruptsOnDamage(target.Statuses) {
		target.Interrupt()
	}
}

// applyStatuses applies the ability's debuff list to the target and its buff
// list to the ally target, or to the caster for every other target type.
// Unknown effect IDs are skipped; immunities are honored by the active set.
func (p *Pipeline) applyStatuses(caster *actor.Actor, ab *ability.Ability, target *actor.Actor) {
	if target != nil {
		p.applyDebuffs(caster, ab, target)
	}

	recipient := caster
	if ab.Target == ability.TargetAlly && target != nil {
		recipient = target
	}
	for _, id := range ab.Buffs {
		def, ok := p.effects.Get(id)
		if !ok {
			p.logger.Warn("unknown buff in ability", zap.String("ability", ab.ID), zap.String("effect", id))
			continue
		}
		if _, err := recipient.Statuses.Apply(def); err != nil {
			p.logger.Error("applying buff", zap.String("effect", id), zap.Error(err))
		}
	}
}

// applyDebuffs applies the ability's debuff list to one victim. Unknown effect
// IDs are skipped; immunities are honored by the active set.
func (p *Pipeline) applyDebuffs(caster *actor.Actor, ab *ability.Ability, victim *actor.Actor) {
	for _, id := range ab.Debuffs {
		def, ok := p.effects.Get(id)
		if !ok {
			p.logger.Warn("unknown debuff in ability", zap.String("ability", ab.ID), zap.String("effect", id))
			continue
		}
		applied, err := victim.Statuses.Apply(def)
		if err != nil {
			p.logger.Error("applying debuff", zap.String("effect", id), zap.Error(err))
			continue
		}
		if !applied {
			p.logger.Debug("debuff blocked by immunity",
				zap.String("victim", victim.Name), zap.String("effect", id))
		}
	}
}

// resolveTerrain routes ground-effect payloads into terrain mutation. Paint
// centers on the aim point for ground abilities and on the caster otherwise;
// wall construction is always raised ahead of the caster's facing; wall
// breaking centers on the target when one exists.
func (p *Pipeline) resolveTerrain(caster *actor.Actor, ab *ability.Ability, target *actor.Actor, groundX, groundZ float64) {
	if ab.Terrain != nil {
		x, z := groundX, groundZ
		if ab.Target != ability.TargetGround {
			x, z = caster.X, caster.Z
		}
		p.terrain.PaintAreaTerrain(x, z, ab.Terrain.Radius, ab.Terrain.Kind)
	}
	if ab.Wall != nil {
		p.terrain.BuildWallPerpendicular(caster.X, caster.Z, caster.Facing,
			ab.Wall.Offset, ab.Wall.Length, ab.Wall.Height, ab.Wall.Thickness, caster.Team)
	}
	if ab.WallBreak != nil {
		x, z := groundX, groundZ
		if target != nil {
			x, z = target.X, target.Z
		}
		p.terrain.DamageWallsInRadius(x, z, ab.WallBreak.Radius, ab.WallBreak.Amount)
	}
}

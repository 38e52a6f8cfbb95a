// Package scoring maps (ability, target, snapshot, role) to bounded utility
// scores. Every function is pure given its inputs — the only randomness is
// the roller passed explicitly to Ground — which keeps the scorer
// deterministic and unit-testable in isolation.
package scoring

import (
	"github.com/coldfront-games/flurry/internal/game/ability"
	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/rng"
	"github.com/coldfront-games/flurry/internal/game/snapshot"
)

// Warmth fraction bands used by the heal scorer.
const (
	HealthyFraction  = 0.85
	LowFraction      = 0.5
	CriticalFraction = 0.25
)

// coverWallHeight is the minimum wall height that grants cover against
// direct and instant projectiles.
const coverWallHeight = 1.5

// Category identifies one ability effect family for role weighting.
type Category int

const (
	CategoryDamage Category = iota
	CategoryHeal
	CategoryInterrupt
	CategoryDebuff
	CategoryBuff
	CategoryGround
	CategoryWall
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Damage scores using ab's damage on target.
//
// The score rises with raw damage (capped), the focus-fire target, the
// target's warmth deficit, kill-shot potential, and the enemy healer; direct
// and instant projectiles are halved when a wall covers the target, and a
// moving target on ice earns a large knockdown-setup bonus.
//
// Postcondition: result is in [0, 1] and non-decreasing in the target's
// warmth deficit, all else equal.
func Damage(ab *ability.Ability, target *actor.Actor, ws *snapshot.WorldState) float64 {
	score := 0.4

	bonus := ab.Damage * 0.004
	if bonus > 0.3 {
		bonus = 0.3
	}
	score += bonus

	if ws.Brain != nil && ws.Brain.FocusTargetID == target.ID {
		score += 0.25
	}

	deficit := 1 - target.WarmthFraction()
	score += deficit * 0.2
	if ab.Damage >= target.Warmth {
		score += 0.3 // kill shot
	}

	if ws.EnemyHealer != nil && target.ID == ws.EnemyHealer.ID {
		score += 0.15
	}

	if target.Moving() && ws.Terrain != nil && ws.Terrain.IsIcyAt(target.X, target.Z) {
		score += 0.3 // knockdown setup
	}

	if ab.Projectile != ability.ProjectileArcing && ws.Terrain != nil &&
		ws.Terrain.HasWallBetween(ws.Self.X, ws.Self.Z, target.X, target.Z, coverWallHeight) {
		score *= 0.5
	}

	return clamp01(score)
}

// Heal scores using ab's healing on target.
//
// Postcondition: exactly 0 when target is at or above the healthy fraction or
// ab heals nothing; otherwise in (0, 1].
func Heal(ab *ability.Ability, target *actor.Actor, ws *snapshot.WorldState) float64 {
	if !ab.HasHealing() {
		return 0
	}
	frac := target.WarmthFraction()
	if frac >= HealthyFraction {
		return 0
	}

	score := 0.2
	if frac < LowFraction {
		score += 0.15
	}
	if frac < CriticalFraction {
		score += 0.15
	}

	if ws.LowestAlly != nil && target.ID == ws.LowestAlly.ID {
		score += 0.15
	}

	// Efficiency discount for expected overheal, waived when the target is
	// urgently low.
	missing := target.MaxWarmth - target.Warmth
	if over := ab.Healing - missing; over > 0 && frac >= LowFraction {
		discount := over / ab.Healing * 0.3
		if discount > 0.3 {
			discount = 0.3
		}
		score -= discount
	}

	if ws.Brain != nil && ws.Brain.Role == actor.RoleSupport {
		score += 0.15
	}
	if ws.Brains != nil {
		if tb, ok := ws.Brains.Get(target.ID); ok && tb.Role == actor.RoleDamage && frac < LowFraction {
			score += 0.1
		}
	}

	return clamp01(score)
}

// Interrupt scores using ab to break target's cast.
//
// Postcondition: exactly 0 unless target is actively casting.
func Interrupt(ab *ability.Ability, target *actor.Actor, ws *snapshot.WorldState) float64 {
	if !ab.HasInterrupt() || !target.IsCasting() {
		return 0
	}
	score := 0.6
	if cast, ok := target.AbilityAt(target.Casting.Slot); ok {
		if cast.HasHealing() {
			score += 0.25
		}
		if cast.Damage >= 30 {
			score += 0.15
		}
	}
	return clamp01(score)
}

// Debuff scores ab's hostile status payloads on target. Payloads the target
// already carries contribute nothing.
func Debuff(ab *ability.Ability, target *actor.Actor, _ *snapshot.WorldState) float64 {
	score := 0.0
	for _, id := range ab.Debuffs {
		if !target.Statuses.Has(id) {
			score += 0.12
		}
	}
	if score > 0.36 {
		score = 0.36
	}
	return score
}

// Buff scores ab's friendly status payloads on target, worth slightly more
// when enemies are in contact.
func Buff(ab *ability.Ability, target *actor.Actor, ws *snapshot.WorldState) float64 {
	score := 0.0
	for _, id := range ab.Buffs {
		if !target.Statuses.Has(id) {
			score += 0.12
		}
	}
	if score > 0.36 {
		score = 0.36
	}
	if score > 0 && ws.NearestEnemy != nil {
		score += 0.1
	}
	return clamp01(score)
}

// Ground scores ab's terrain-paint payload. The score is randomly damped —
// rolls under 35 return 0 — so terrain effects are not spammed every
// decision window.
func Ground(ab *ability.Ability, ws *snapshot.WorldState, roll *rng.Roller) float64 {
	if !ab.HasTerrain() {
		return 0
	}
	if roll.Percent("terrain effect damping") < 35 {
		return 0
	}
	score := 0.35
	if ws.EnemyCount >= 3 {
		score += 0.1
	}
	return score
}

// Wall scores ab's wall-construction or wall-break payload. Breaking scores
// only when a wall actually covers the nearest enemy.
func Wall(ab *ability.Ability, ws *snapshot.WorldState) float64 {
	score := 0.0
	if ab.Wall != nil && ws.NearestEnemy != nil {
		score += 0.25
	}
	if ab.WallBreak != nil && ws.NearestEnemy != nil && ws.Terrain != nil &&
		ws.Terrain.HasWallBetween(ws.Self.X, ws.Self.Z, ws.NearestEnemy.X, ws.NearestEnemy.Z, coverWallHeight) {
		score += 0.4
	}
	return clamp01(score)
}

// RoleWeight returns the multiplier a role applies to a category's score.
//
// Postcondition: Returns > 0 for every valid role/category pair.
func RoleWeight(role actor.Role, cat Category) float64 {
	switch role {
	case actor.RoleDamage:
		switch cat {
		case CategoryDamage:
			return 1.2
		case CategoryHeal:
			return 0.5
		case CategoryInterrupt:
			return 0.8
		case CategoryDebuff:
			return 0.9
		case CategoryBuff:
			return 0.8
		case CategoryGround:
			return 0.9
		case CategoryWall:
			return 0.7
		}
	case actor.RoleSupport:
		switch cat {
		case CategoryDamage:
			return 0.7
		case CategoryHeal:
			return 1.3
		case CategoryInterrupt:
			return 0.9
		case CategoryDebuff:
			return 0.8
		case CategoryBuff:
			return 1.2
		case CategoryGround:
			return 0.8
		case CategoryWall:
			return 1.0
		}
	case actor.RoleDisruptor:
		switch cat {
		case CategoryDamage:
			return 0.9
		case CategoryHeal:
			return 0.6
		case CategoryInterrupt:
			return 1.3
		case CategoryDebuff:
			return 1.2
		case CategoryBuff:
			return 0.9
		case CategoryGround:
			return 1.2
		case CategoryWall:
			return 1.1
		}
	}
	return 1.0
}

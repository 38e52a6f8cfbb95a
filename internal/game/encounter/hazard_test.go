package encounter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/encounter"
	"github.com/coldfront-games/flurry/internal/game/status"
)

func damageZone() *encounter.HazardDef {
	return &encounter.HazardDef{
		ID:             "ice_burst",
		Shape:          encounter.ShapeCircle,
		Radius:         10,
		WarningMs:      1000,
		TickIntervalMs: 500,
		DurationMs:     2000,
		Effect:         encounter.HazardDamage,
		Damage:         10,
	}
}

func victimAt(x, z float64) *actor.Actor {
	a := actor.New("victim", 0)
	a.X, a.Z = x, z
	return a
}

func TestZone_WarningDelaysFirstPulse(t *testing.T) {
	def := damageZone()
	require.NoError(t, def.Validate())
	z := encounter.NewZone(def)
	v := victimAt(1, 0)
	actors := []*actor.Actor{v}
	effects := status.NewRegistry()
	logger := zap.NewNop()

	z.Update(900, actors, effects, logger)
	assert.False(t, z.Active())
	assert.Equal(t, 100.0, v.Warmth, "no effect during the warning phase")

	z.Update(100, actors, effects, logger)
	assert.True(t, z.Active())
	assert.Equal(t, 100.0, v.Warmth, "activation alone does not pulse")

	z.Update(500, actors, effects, logger)
	assert.Equal(t, 90.0, v.Warmth)

	z.Update(500, actors, effects, logger)
	assert.Equal(t, 80.0, v.Warmth)
}

func TestZone_ExpiresAfterDuration(t *testing.T) {
	def := damageZone()
	z := encounter.NewZone(def)
	v := victimAt(1, 0)
	actors := []*actor.Actor{v}
	effects := status.NewRegistry()
	logger := zap.NewNop()

	z.Update(1000, actors, effects, logger)
	z.Update(1000, actors, effects, logger)
	assert.Equal(t, 80.0, v.Warmth)
	assert.False(t, z.Expired())

	z.Update(1000, actors, effects, logger)
	assert.True(t, z.Expired())
	assert.Equal(t, 80.0, v.Warmth, "the expiring tick does not pulse")

	// Further updates are no-ops.
	z.Update(1000, actors, effects, logger)
	assert.Equal(t, 80.0, v.Warmth)
}

func TestZone_SafeZoneInversion(t *testing.T) {
	def := damageZone()
	def.SafeZone = true
	z := encounter.NewZone(def)
	inside := victimAt(0, 0)
	outside := victimAt(20, 0)
	actors := []*actor.Actor{inside, outside}
	effects := status.NewRegistry()
	logger := zap.NewNop()

	z.Update(1000, actors, effects, logger)
	z.Update(500, actors, effects, logger)

	assert.Equal(t, 100.0, inside.Warmth, "strictly inside a safe zone is spared")
	assert.Equal(t, 90.0, outside.Warmth, "strictly outside a safe zone is hit")
}

func TestZone_RingContainment(t *testing.T) {
	def := damageZone()
	def.Shape = encounter.ShapeRing

	assert.False(t, def.Contains(2, 0), "inside the ring's hole")
	assert.True(t, def.Contains(7, 0), "in the band")
	assert.False(t, def.Contains(12, 0), "outside the ring")
}

func TestZone_ConeAndLineShareCircularContainment(t *testing.T) {
	for _, shape := range []encounter.Shape{encounter.ShapeCone, encounter.ShapeLine, encounter.ShapeMovingLine} {
		def := damageZone()
		def.Shape = shape
		assert.True(t, def.Contains(7, 0), "shape %s", shape)
		assert.False(t, def.Contains(12, 0), "shape %s", shape)
	}
}

func TestZone_StatusEffectPulse(t *testing.T) {
	effects := status.NewRegistry()
	chilled := &status.EffectDef{ID: "chilled", Kind: status.KindDebuff, DurationMs: 3000, SpeedMult: 0.6}
	require.NoError(t, chilled.Validate())
	effects.Register(chilled)

	def := damageZone()
	def.Effect = encounter.HazardSlow
	def.StatusID = "chilled"
	def.Damage = 0

	z := encounter.NewZone(def)
	v := victimAt(1, 0)
	logger := zap.NewNop()

	z.Update(1000, []*actor.Actor{v}, effects, logger)
	z.Update(500, []*actor.Actor{v}, effects, logger)

	assert.True(t, v.Statuses.Has("chilled"))
	assert.Equal(t, 100.0, v.Warmth)
}

func TestZone_PullAndKnockback(t *testing.T) {
	pull := damageZone()
	pull.Effect = encounter.HazardPull
	pull.Damage = 0
	pull.Strength = 50

	z := encounter.NewZone(pull)
	v := victimAt(3, 0)
	effects := status.NewRegistry()
	logger := zap.NewNop()
	z.Update(1000, []*actor.Actor{v}, effects, logger)
	z.Update(500, []*actor.Actor{v}, effects, logger)
	assert.Equal(t, 0.0, v.X, "pull never overshoots the center")
	assert.Equal(t, 0.0, v.Z)

	kb := damageZone()
	kb.Effect = encounter.HazardKnockback
	kb.Damage = 0
	kb.Strength = 2

	z = encounter.NewZone(kb)
	v = victimAt(3, 0)
	z.Update(1000, []*actor.Actor{v}, effects, logger)
	z.Update(500, []*actor.Actor{v}, effects, logger)
	assert.Equal(t, 5.0, v.X)
	assert.Equal(t, 0.0, v.Z)
}

func TestZone_DeadActorsSkipped(t *testing.T) {
	def := damageZone()
	z := encounter.NewZone(def)
	v := victimAt(1, 0)
	v.Warmth = 0
	effects := status.NewRegistry()
	logger := zap.NewNop()

	z.Update(1000, []*actor.Actor{v}, effects, logger)
	z.Update(500, []*actor.Actor{v}, effects, logger)
	assert.Equal(t, 0.0, v.Warmth)
	assert.Empty(t, v.DamageLog)
}

func TestHazardDef_Validate(t *testing.T) {
	assert.NoError(t, damageZone().Validate())

	noDamage := damageZone()
	noDamage.Damage = 0
	assert.Error(t, noDamage.Validate())

	noStatus := damageZone()
	noStatus.Effect = encounter.HazardFreeze
	assert.Error(t, noStatus.Validate())

	badShape := damageZone()
	badShape.Shape = "triangle"
	assert.Error(t, badShape.Validate())
}

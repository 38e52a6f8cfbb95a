package cast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coldfront-games/flurry/internal/game/ability"
	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/cast"
	"github.com/coldfront-games/flurry/internal/game/rng"
	"github.com/coldfront-games/flurry/internal/game/status"
	"github.com/coldfront-games/flurry/internal/testutil"
)

func effectRegistry() *status.Registry {
	reg := status.NewRegistry()
	for _, def := range []*status.EffectDef{
		{ID: "numbed", Kind: status.KindDebuff, DurationMs: 4000, DamageDealtMult: 0.5},
		{ID: "fired_up", Kind: status.KindBuff, DurationMs: 6000, DamageDealtMult: 1.3},
		{ID: "braced", Kind: status.KindBuff, DurationMs: 5000, DamageTakenMult: 0.75, Immunities: []string{"snowblind"}},
		{ID: "snowblind", Kind: status.KindDebuff, DurationMs: 3000, MissChance: 100},
		{ID: "cocoa", Kind: status.KindBuff, DurationMs: 8000, HealingTakenMult: 1.5},
		{ID: "packed_shield", Kind: status.KindBuff, DurationMs: 10000, BlockHits: 1},
		{ID: "exposed", Kind: status.KindDebuff, DurationMs: 5000, InterruptOnDamage: true},
		{ID: "chilled", Kind: status.KindDebuff, DurationMs: 4000, SpeedMult: 0.6},
	} {
		reg.Register(def)
	}
	return reg
}

type fixture struct {
	pipe *cast.Pipeline
	terr *testutil.Terrain
	vfx  *testutil.Telemetry
}

func newFixture(seed int64) *fixture {
	terr := &testutil.Terrain{}
	vfx := &testutil.Telemetry{}
	roll := rng.NewRoller(rng.NewSeededSource(seed), zap.NewNop())
	return &fixture{
		pipe: cast.NewPipeline(effectRegistry(), terr, vfx, roll, zap.NewNop()),
		terr: terr,
		vfx:  vfx,
	}
}

func snowball() *ability.Ability {
	return &ability.Ability{
		ID: "snowball", Target: ability.TargetEnemy, Projectile: ability.ProjectileDirect,
		Damage: 50, CastRange: 100, EnergyCost: 10, RechargeMs: 2000,
	}
}

func combatants() (*actor.Actor, *actor.Actor) {
	caster := actor.New("caster", 0)
	caster.Energy, caster.MaxEnergy = 100, 100
	target := actor.New("target", 1)
	target.X = 10
	return caster, target
}

func TestCast_ValidationOrder(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	ab := snowball()
	caster.Bar[0] = ab

	dead := actor.New("dead", 0)
	dead.Warmth = 0
	assert.Equal(t, cast.CasterDead, f.pipe.Cast(dead, 0, target, 0, 0))

	caster.Casting = &actor.CastProgress{Slot: 1, AbilityID: "x", CastTimeMs: 1000}
	assert.Equal(t, cast.AlreadyCasting, f.pipe.Cast(caster, 0, target, 0, 0))
	caster.Casting = nil

	caster.Cooldowns[0] = 500
	assert.Equal(t, cast.OnCooldown, f.pipe.Cast(caster, 0, target, 0, 0))
	caster.Cooldowns[0] = 0

	assert.Equal(t, cast.NoTarget, f.pipe.Cast(caster, 3, target, 0, 0), "empty slot")

	caster.Energy = 5
	assert.Equal(t, cast.NoEnergy, f.pipe.Cast(caster, 0, target, 0, 0))
	assert.Len(t, f.vfx.QueueNoEnr, 1)
	caster.Energy = 100

	assert.Equal(t, cast.NoTarget, f.pipe.Cast(caster, 0, nil, 0, 0))

	target.Warmth = 0
	assert.Equal(t, cast.TargetDead, f.pipe.Cast(caster, 0, target, 0, 0))
	target.Warmth = 100
}

func TestCast_OutOfRangeQueuesThenSucceeds(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	ab := snowball()
	ab.Damage = 40
	caster.Bar[0] = ab
	target.X = 150

	require.Equal(t, cast.OutOfRange, f.pipe.Cast(caster, 0, target, 0, 0))
	require.NotNil(t, caster.Pending)
	assert.Equal(t, 0, caster.Pending.Slot)
	assert.Equal(t, target.ID, caster.Pending.TargetID)
	assert.Len(t, f.vfx.QueueOOR, 1)
	assert.Equal(t, 100.0, caster.Energy, "no cost charged for a queued attempt")

	target.X = 80
	assert.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	assert.Equal(t, 90.0, caster.Energy)
	assert.Equal(t, 2000.0, caster.Cooldowns[0])
}

// TestCast_PaddingRoundTrip pins the armor formula: padding 100 against
// damage 50 halves it.
func TestCast_PaddingRoundTrip(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	caster.Bar[0] = snowball()
	target.Padding = 100
	target.Warmth, target.MaxWarmth = 200, 200

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	assert.InDelta(t, 175, target.Warmth, 1e-9)
	require.Len(t, f.vfx.DamageShown, 1)
	assert.InDelta(t, 25, f.vfx.DamageShown[0], 1e-9)
}

// TestCast_SoakClosedForm verifies soak halves effective padding before the
// reduction is recomputed: padding 100, soak 0.5 gives reduction 50/150.
func TestCast_SoakClosedForm(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	ab := snowball()
	ab.Soak = 0.5
	caster.Bar[0] = ab
	target.Padding = 100
	target.Warmth, target.MaxWarmth = 200, 200

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	want := 50.0 * (1 - 50.0/150.0)
	assert.InDelta(t, 200-want, target.Warmth, 1e-9)
}

// TestCast_SoakReappliesBuffMultiplier pins the double-applied caster buff on
// soak hits.
func TestCast_SoakReappliesBuffMultiplier(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	ab := snowball()
	ab.Soak = 0.5
	caster.Bar[0] = ab
	target.Padding = 100
	target.Warmth, target.MaxWarmth = 500, 500

	fired, _ := effectRegistry().Get("fired_up")
	_, err := caster.Statuses.Apply(fired)
	require.NoError(t, err)

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	want := 50.0 * 1.3 * (1 - 50.0/150.0) * 1.3
	assert.InDelta(t, 500-want, target.Warmth, 1e-9)
}

func TestCast_CasterMultipliers(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	caster.Bar[0] = snowball()
	target.Warmth, target.MaxWarmth = 500, 500

	reg := effectRegistry()
	numbed, _ := reg.Get("numbed")
	fired, _ := reg.Get("fired_up")
	braced, _ := reg.Get("braced")
	caster.Statuses.Apply(numbed)
	caster.Statuses.Apply(fired)
	target.Statuses.Apply(braced)

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	want := 50.0 * 0.5 * 1.3 * 0.75
	assert.InDelta(t, 500-want, target.Warmth, 1e-9)
}

func TestCast_CoverHalvesDirectButNotArcing(t *testing.T) {
	wall := testutil.Wall{Circle: testutil.Circle{X: 5, Z: 0, R: 1}, Height: 3}

	f := newFixture(1)
	f.terr.Walls = []testutil.Wall{wall}
	caster, target := combatants()
	caster.Bar[0] = snowball()
	target.Warmth, target.MaxWarmth = 500, 500

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	assert.InDelta(t, 500-50*0.4, target.Warmth, 1e-9)

	f2 := newFixture(1)
	f2.terr.Walls = []testutil.Wall{wall}
	caster2, target2 := combatants()
	arc := snowball()
	arc.Projectile = ability.ProjectileArcing
	caster2.Bar[0] = arc
	target2.Warmth, target2.MaxWarmth = 500, 500

	require.Equal(t, cast.Success, f2.pipe.Cast(caster2, 0, target2, 0, 0))
	assert.InDelta(t, 450, target2.Warmth, 1e-9)
}

func TestCast_BlindedCasterAlwaysMisses(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	caster.Bar[0] = snowball()

	blind, _ := effectRegistry().Get("snowblind")
	caster.Statuses.Apply(blind)

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	assert.Equal(t, 100.0, target.Warmth, "a miss deals no damage")
	assert.Equal(t, 1, f.vfx.Misses)
	assert.Empty(t, target.DamageLog)
	assert.Equal(t, 90.0, caster.Energy, "a miss still spends the cast")
}

func TestCast_BlockAbsorbsOneHit(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	caster.Bar[0] = snowball()
	target.Warmth, target.MaxWarmth = 500, 500

	shield, _ := effectRegistry().Get("packed_shield")
	target.Statuses.Apply(shield)

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	assert.Equal(t, 500.0, target.Warmth)
	assert.False(t, target.Statuses.Has("packed_shield"), "block consumed")

	caster.Cooldowns[0] = 0
	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	assert.InDelta(t, 450, target.Warmth, 1e-9)
}

func TestCast_HealScalesAndClamps(t *testing.T) {
	f := newFixture(1)
	caster := actor.New("healer", 0)
	caster.Energy = 50
	ally := actor.New("ally", 0)
	ally.Warmth = 40

	heal := &ability.Ability{
		ID: "warm_cocoa", Target: ability.TargetAlly,
		Healing: 30, CastRange: 80, EnergyCost: 5,
	}
	caster.Bar[0] = heal

	cocoa, _ := effectRegistry().Get("cocoa")
	ally.Statuses.Apply(cocoa)

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, ally, 0, 0))
	assert.InDelta(t, 85, ally.Warmth, 1e-9, "30 healing boosted by 1.5")
	require.Len(t, f.vfx.HealsShown, 1)

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, ally, 0, 0))
	assert.Equal(t, 100.0, ally.Warmth, "healing clamps at max warmth")
}

func TestCast_StatusApplicationHonorsImmunity(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	ab := &ability.Ability{
		ID: "flurry_of_powder", Target: ability.TargetEnemy,
		CastRange: 50, Debuffs: []string{"snowblind", "chilled"},
	}
	caster.Bar[0] = ab

	braced, _ := effectRegistry().Get("braced")
	target.Statuses.Apply(braced)

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	assert.False(t, target.Statuses.Has("snowblind"), "braced grants snowblind immunity")
	assert.True(t, target.Statuses.Has("chilled"))
}

func TestCast_SelfBuff(t *testing.T) {
	f := newFixture(1)
	caster := actor.New("caster", 0)
	ab := &ability.Ability{ID: "psych_up", Target: ability.TargetSelf, Buffs: []string{"fired_up"}}
	caster.Bar[0] = ab

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, nil, 0, 0))
	assert.True(t, caster.Statuses.Has("fired_up"))
}

func TestCast_ExposedTargetLosesCastOnDamage(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	caster.Bar[0] = snowball()

	target.Bar[0] = &ability.Ability{ID: "big_heal", Target: ability.TargetAlly, Healing: 60, CastTimeMs: 2000}
	target.Casting = &actor.CastProgress{Slot: 0, AbilityID: "big_heal", CastTimeMs: 2000}
	exposed, _ := effectRegistry().Get("exposed")
	target.Statuses.Apply(exposed)

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	assert.False(t, target.IsCasting(), "damage while exposed breaks the cast")
}

func TestCast_ActivationTimeDefersResolution(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	ab := snowball()
	ab.CastTimeMs = 1000
	caster.Bar[0] = ab

	require.Equal(t, cast.CastingStarted, f.pipe.Cast(caster, 0, target, 0, 0))
	require.True(t, caster.IsCasting())
	assert.Equal(t, target.ID, caster.Casting.TargetID)
	assert.Equal(t, 90.0, caster.Energy, "cost charged at cast start")
	assert.Equal(t, 2000.0, caster.Cooldowns[0])
	assert.Equal(t, 100.0, target.Warmth, "no damage before completion")

	caster.Casting.ElapsedMs = 1000
	f.pipe.FinishCast(caster, target)
	assert.False(t, caster.IsCasting())
	assert.Less(t, target.Warmth, 100.0)
}

func TestFinishCast_DeadTargetFizzles(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	ab := snowball()
	ab.CastTimeMs = 1000
	caster.Bar[0] = ab

	require.Equal(t, cast.CastingStarted, f.pipe.Cast(caster, 0, target, 0, 0))
	target.Warmth = 0
	caster.Casting.ElapsedMs = 1000
	f.pipe.FinishCast(caster, target)
	assert.False(t, caster.IsCasting())
	assert.Empty(t, f.vfx.DamageShown)
}

func TestFinishCast_BarSwapFizzles(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	ab := snowball()
	ab.CastTimeMs = 1000
	caster.Bar[0] = ab

	require.Equal(t, cast.CastingStarted, f.pipe.Cast(caster, 0, target, 0, 0))
	caster.Bar[0] = &ability.Ability{ID: "other", Target: ability.TargetEnemy, Damage: 99}
	caster.Casting.ElapsedMs = 1000
	f.pipe.FinishCast(caster, target)
	assert.False(t, caster.IsCasting())
	assert.Equal(t, 100.0, target.Warmth)
}

func TestCast_GroundPaintAndRange(t *testing.T) {
	f := newFixture(1)
	caster := actor.New("caster", 0)
	ab := &ability.Ability{
		ID: "ice_sheet", Target: ability.TargetGround, CastRange: 60,
		Terrain: &ability.TerrainSpec{Kind: "ice", Radius: 8},
	}
	caster.Bar[0] = ab

	assert.Equal(t, cast.OutOfRange, f.pipe.Cast(caster, 0, nil, 100, 0))
	assert.Nil(t, caster.Pending, "ground aims are not queued")

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, nil, 40, 10))
	require.Len(t, f.terr.Painted, 1)
	assert.Equal(t, testutil.PaintCall{X: 40, Z: 10, Radius: 8, Kind: "ice"}, f.terr.Painted[0])
}

// TestCast_GroundAreaHitsEnemiesAroundImpact covers the aim-point splash:
// living enemies inside the radius take damage and debuffs, everyone else is
// untouched.
func TestCast_GroundAreaHitsEnemiesAroundImpact(t *testing.T) {
	f := newFixture(1)
	caster := actor.New("caster", 0)
	near := actor.New("near", 1)
	near.X, near.Z = 42, 10
	far := actor.New("far", 1)
	far.X, far.Z = 60, 10
	ally := actor.New("ally", 0)
	ally.X, ally.Z = 40, 8

	all := []*actor.Actor{caster, near, far, ally}
	f.pipe.Actors = func() []*actor.Actor { return all }

	ab := &ability.Ability{
		ID: "powder_burst", Target: ability.TargetGround, CastRange: 60,
		Damage: 30, AoERadius: 6, Debuffs: []string{"chilled"},
	}
	caster.Bar[0] = ab

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, nil, 40, 10))
	assert.InDelta(t, 70, near.Warmth, 1e-9)
	assert.True(t, near.Statuses.Has("chilled"))
	assert.Equal(t, 100.0, far.Warmth, "outside the radius")
	assert.Equal(t, 100.0, ally.Warmth, "allies are never splashed")
	assert.False(t, ally.Statuses.Has("chilled"))
	assert.Equal(t, 100.0, caster.Warmth)
}

// TestCast_EnemyTargetSplashesAroundPrimary verifies that an enemy-targeted
// area ability centers the splash on the primary, who is hit exactly once.
func TestCast_EnemyTargetSplashesAroundPrimary(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	second := actor.New("second", 1)
	second.X = 13

	all := []*actor.Actor{caster, target, second}
	f.pipe.Actors = func() []*actor.Actor { return all }

	ab := snowball()
	ab.Damage = 30
	ab.AoERadius = 6
	ab.Debuffs = []string{"chilled"}
	caster.Bar[0] = ab

	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, target, 0, 0))
	assert.InDelta(t, 70, target.Warmth, 1e-9, "primary takes the payload once")
	assert.InDelta(t, 70, second.Warmth, 1e-9)
	assert.True(t, target.Statuses.Has("chilled"))
	assert.True(t, second.Statuses.Has("chilled"))
}

func TestCast_WallBuildAndBreak(t *testing.T) {
	f := newFixture(1)
	caster, target := combatants()
	caster.Facing = 1.5

	build := &ability.Ability{
		ID: "snow_wall", Target: ability.TargetSelf,
		Wall: &ability.WallSpec{Offset: 5, Length: 12, Height: 2, Thickness: 1},
	}
	caster.Bar[0] = build
	require.Equal(t, cast.Success, f.pipe.Cast(caster, 0, nil, 0, 0))
	require.Len(t, f.terr.BuiltWalls, 1)
	got := f.terr.BuiltWalls[0]
	assert.Equal(t, 1.5, got.Facing)
	assert.Equal(t, 12.0, got.Length)
	assert.Equal(t, 0, got.Team)

	breaker := &ability.Ability{
		ID: "wall_ram", Target: ability.TargetEnemy, CastRange: 50,
		WallBreak: &ability.WallBreakSpec{Radius: 4, Amount: 80},
	}
	caster.Bar[1] = breaker
	require.Equal(t, cast.Success, f.pipe.Cast(caster, 1, target, 0, 0))
	require.Len(t, f.terr.WallDamages, 1)
	assert.Equal(t, testutil.WallDamageCall{X: target.X, Z: target.Z, Radius: 4, Amount: 80}, f.terr.WallDamages[0])
}

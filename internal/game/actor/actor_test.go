package actor_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/coldfront-games/flurry/internal/game/ability"
	"github.com/coldfront-games/flurry/internal/game/actor"
)

func TestActor_ApplyDamage_FloorsAtZero(t *testing.T) {
	a := actor.New("Pim", 0)
	a.ApplyDamage(30)
	assert.Equal(t, 70.0, a.Warmth)
	a.ApplyDamage(500)
	assert.Equal(t, 0.0, a.Warmth)
	assert.False(t, a.Alive())
}

func TestActor_Heal_ClampsAtMax(t *testing.T) {
	a := actor.New("Pim", 0)
	a.Warmth = 40
	a.Heal(1000)
	assert.Equal(t, a.MaxWarmth, a.Warmth)
}

func TestActor_Property_WarmthStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := actor.New("X", 0)
		for _, amt := range rapid.SliceOf(rapid.Float64Range(0, 300)).Draw(rt, "amounts") {
			if rapid.Bool().Draw(rt, "heal") {
				a.Heal(amt)
			} else {
				a.ApplyDamage(amt)
			}
			assert.GreaterOrEqual(rt, a.Warmth, 0.0)
			assert.LessOrEqual(rt, a.Warmth, a.MaxWarmth)
		}
	})
}

// TestActor_RecordDamage_CapAndMerge verifies the attribution list caps at 6
// entries with oldest-first eviction, and that a repeat source+ability pair
// increments its hit counter instead of duplicating.
func TestActor_RecordDamage_CapAndMerge(t *testing.T) {
	a := actor.New("Target", 1)
	for i := 0; i < 8; i++ {
		a.RecordDamage(fmt.Sprintf("src%d", i), "snowball", 10)
	}
	require.Len(t, a.DamageLog, actor.AttributionCap)
	// src0 and src1 were evicted.
	assert.Equal(t, "src2", a.DamageLog[0].SourceID)
	assert.Equal(t, "src7", a.DamageLog[5].SourceID)

	a.RecordDamage("src7", "snowball", 10)
	require.Len(t, a.DamageLog, actor.AttributionCap)
	assert.Equal(t, 2, a.DamageLog[5].Hits)
	assert.Equal(t, 20.0, a.DamageLog[5].Amount)
}

func TestActor_AbilityAt_EmptySlot(t *testing.T) {
	a := actor.New("Pim", 0)
	_, ok := a.AbilityAt(0)
	assert.False(t, ok)
	_, ok = a.AbilityAt(-1)
	assert.False(t, ok)
	_, ok = a.AbilityAt(actor.BarSlots)
	assert.False(t, ok)

	ab := &ability.Ability{ID: "snowball", Damage: 30}
	a.Bar[2] = ab
	got, ok := a.AbilityAt(2)
	require.True(t, ok)
	assert.Same(t, ab, got)
}

func TestActor_Cooldowns(t *testing.T) {
	a := actor.New("Pim", 0)
	assert.True(t, a.OffCooldown(3))
	a.Cooldowns[3] = 1000
	assert.False(t, a.OffCooldown(3))
	a.TickCooldowns(400)
	assert.False(t, a.OffCooldown(3))
	a.TickCooldowns(700)
	assert.True(t, a.OffCooldown(3))
	assert.Equal(t, 0.0, a.Cooldowns[3])
}

// TestActor_TickCooldowns_LeavesAttackTimer pins that cooldown ticking never
// touches the upward-counting auto-attack timer.
func TestActor_TickCooldowns_LeavesAttackTimer(t *testing.T) {
	a := actor.New("Pim", 0)
	a.AttackTimerMs = 300
	a.TickCooldowns(100)
	assert.Equal(t, 300.0, a.AttackTimerMs)
}

func TestActor_RestoreFull(t *testing.T) {
	a := actor.New("Pim", 0)
	a.Warmth = 10
	a.Energy = 0
	a.Cooldowns[1] = 900
	a.Casting = &actor.CastProgress{Slot: 1, CastTimeMs: 500}
	a.Pending = &actor.PendingCast{Slot: 2, TargetID: "x"}
	a.AttackTimerMs = 450
	a.RecordDamage("src", "snowball", 5)

	a.RestoreFull()
	assert.Equal(t, a.MaxWarmth, a.Warmth)
	assert.Equal(t, a.MaxEnergy, a.Energy)
	assert.True(t, a.OffCooldown(1))
	assert.Nil(t, a.Casting)
	assert.Nil(t, a.Pending)
	assert.Equal(t, 0.0, a.AttackTimerMs)
	assert.Empty(t, a.DamageLog)
}

func TestBrainState_PhaseBitfield(t *testing.T) {
	b := actor.NewBrainState(actor.RoleDamage, actor.FormationFrontline)
	assert.False(t, b.PhaseFired(0))
	b.MarkPhaseFired(0)
	b.MarkPhaseFired(3)
	assert.True(t, b.PhaseFired(0))
	assert.False(t, b.PhaseFired(1))
	assert.True(t, b.PhaseFired(3))
}

func TestBrainState_Reset_KeepsIdentity(t *testing.T) {
	b := actor.NewBrainState(actor.RoleSupport, actor.FormationBackline)
	b.SetSpawn(10, 20, 50, 120)
	b.FocusTargetID = "enemy"
	b.Engagement = actor.EngageEngaged
	b.CombatTimeMs = 9000
	b.MarkPhaseFired(2)

	b.Reset()
	assert.Equal(t, actor.RoleSupport, b.Role)
	assert.Equal(t, actor.FormationBackline, b.Formation)
	assert.True(t, b.HasSpawn)
	assert.Equal(t, 50.0, b.AggroRadius)
	assert.Equal(t, actor.EngageIdle, b.Engagement)
	assert.Empty(t, b.FocusTargetID)
	assert.Zero(t, b.CombatTimeMs)
	assert.False(t, b.PhaseFired(2))
	assert.Equal(t, -1, b.ChosenSlot)
}

// TestBrainTable_MustGet_PanicsOnDesync verifies the loud-failure contract
// for a missing brain entry.
func TestBrainTable_MustGet_PanicsOnDesync(t *testing.T) {
	table := actor.NewBrainTable()
	assert.Panics(t, func() { table.MustGet("missing") })

	b := actor.NewBrainState(actor.RoleDamage, actor.FormationMidline)
	table.Attach("a1", b)
	assert.Same(t, b, table.MustGet("a1"))

	got, ok := table.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, got)
}

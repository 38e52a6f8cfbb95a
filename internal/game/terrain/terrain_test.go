package terrain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coldfront-games/flurry/internal/game/terrain"
)

func TestField_FlatGroundDefaults(t *testing.T) {
	f := terrain.New()
	assert.Equal(t, 1.0, f.SpeedMultiplierAt(10, -4))
	assert.False(t, f.IsIcyAt(0, 0))
	assert.Equal(t, 0.0, f.WallHeightAt(0, 0))
	assert.False(t, f.HasWallBetween(0, 0, 50, 0, 0.5))
}

func TestField_PaintedPatchesAffectSpeedAndIce(t *testing.T) {
	f := terrain.New()
	f.PaintAreaTerrain(0, 0, 10, "ice")

	assert.Equal(t, 0.9, f.SpeedMultiplierAt(3, 4))
	assert.True(t, f.IsIcyAt(3, 4))
	assert.False(t, f.IsIcyAt(20, 0))

	// A later slush paint over the same spot wins.
	f.PaintAreaTerrain(0, 0, 5, "slush")
	assert.Equal(t, 0.45, f.SpeedMultiplierAt(1, 1))
	assert.False(t, f.IsIcyAt(1, 1))
	assert.True(t, f.IsIcyAt(8, 0), "outer ring keeps the earlier ice")
}

func TestField_WallBlocksSegment(t *testing.T) {
	f := terrain.New()
	// Caster at origin facing +X raises a wall 6 ahead, 10 long, 2 tall.
	f.BuildWallPerpendicular(0, 0, 0, 6, 10, 2, 1, 0)

	assert.Equal(t, 2.0, f.WallHeightAt(6, 0))
	assert.Equal(t, 2.0, f.WallHeightAt(6, 4.9), "the wall runs perpendicular to the facing")
	assert.Equal(t, 0.0, f.WallHeightAt(6, 6))

	assert.True(t, f.HasWallBetween(0, 0, 12, 0, 1.5))
	assert.False(t, f.HasWallBetween(0, 0, 12, 0, 2.5), "too short to block the taller threshold")
	assert.False(t, f.HasWallBetween(0, 10, 12, 10, 1.5), "a parallel path misses the wall")
}

func TestField_WallFacingRotates(t *testing.T) {
	f := terrain.New()
	f.BuildWallPerpendicular(0, 0, math.Pi/2, 6, 10, 2, 1, 0)

	assert.Equal(t, 2.0, f.WallHeightAt(0, 6))
	assert.Equal(t, 2.0, f.WallHeightAt(4.9, 6))
	assert.Equal(t, 0.0, f.WallHeightAt(6, 0))
}

func TestField_DamageGrindsWallsDown(t *testing.T) {
	f := terrain.New()
	f.BuildWallPerpendicular(0, 0, 0, 6, 10, 2, 1, 0)
	assert.Equal(t, 1, f.WallCount())

	f.DamageWallsInRadius(6, 0, 3, 1.5)
	assert.Equal(t, 0.5, f.WallHeightAt(6, 0))
	assert.Equal(t, 1, f.WallCount())

	f.DamageWallsInRadius(6, 0, 3, 1.0)
	assert.Equal(t, 0, f.WallCount())
	assert.Equal(t, 0.0, f.WallHeightAt(6, 0))
}

func TestField_DamageOutOfRangeLeavesWall(t *testing.T) {
	f := terrain.New()
	f.BuildWallPerpendicular(0, 0, 0, 6, 10, 2, 1, 0)

	f.DamageWallsInRadius(50, 50, 3, 5)
	assert.Equal(t, 1, f.WallCount())
	assert.Equal(t, 2.0, f.WallHeightAt(6, 0))
}

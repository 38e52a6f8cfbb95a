// Package testutil provides configurable battlefield stubs shared by the
// simulation core's tests: a scriptable terrain grid, a circle-obstacle
// building set, and a recording telemetry sink.
package testutil

import (
	"math"

	"github.com/coldfront-games/flurry/internal/game/snapshot"
)

// Terrain is a scriptable snapshot.Terrain. The zero value is open, flat
// ground with speed multiplier 1 everywhere.
type Terrain struct {
	// Speed overrides the default 1.0 multiplier when non-nil.
	Speed func(x, z float64) float64
	// IcyPatches lists circle centers+radii that report icy ground.
	IcyPatches []Circle
	// Walls lists circle footprints with a wall height.
	Walls []Wall

	// Mutation log, appended to by the mutator methods.
	Painted     []PaintCall
	BuiltWalls  []BuildWallCall
	WallDamages []WallDamageCall
}

// Circle is a circular region on the ground plane.
type Circle struct {
	X, Z, R float64
}

// Wall is a circular wall footprint with a height.
type Wall struct {
	Circle
	Height float64
}

// PaintCall records one PaintAreaTerrain invocation.
type PaintCall struct {
	X, Z, Radius float64
	Kind         string
}

// BuildWallCall records one BuildWallPerpendicular invocation.
type BuildWallCall struct {
	X, Z, Facing, Offset, Length, Height, Thickness float64
	Team                                            int
}

// WallDamageCall records one DamageWallsInRadius invocation.
type WallDamageCall struct {
	X, Z, Radius, Amount float64
}

func (c Circle) contains(x, z float64) bool {
	dx, dz := x-c.X, z-c.Z
	return math.Sqrt(dx*dx+dz*dz) <= c.R
}

// SpeedMultiplierAt implements snapshot.Terrain.
func (t *Terrain) SpeedMultiplierAt(x, z float64) float64 {
	if t.Speed != nil {
		return t.Speed(x, z)
	}
	return 1.0
}

// WallHeightAt implements snapshot.Terrain.
func (t *Terrain) WallHeightAt(x, z float64) float64 {
	for _, w := range t.Walls {
		if w.contains(x, z) {
			return w.Height
		}
	}
	return 0
}

// HasWallBetween implements snapshot.Terrain by sampling 16 points along the
// segment.
func (t *Terrain) HasWallBetween(x1, z1, x2, z2, minHeight float64) bool {
	for i := 0; i <= 16; i++ {
		f := float64(i) / 16
		x := x1 + (x2-x1)*f
		z := z1 + (z2-z1)*f
		if t.WallHeightAt(x, z) >= minHeight {
			return true
		}
	}
	return false
}

// IsIcyAt implements snapshot.Terrain.
func (t *Terrain) IsIcyAt(x, z float64) bool {
	for _, p := range t.IcyPatches {
		if p.contains(x, z) {
			return true
		}
	}
	return false
}

// PaintAreaTerrain records the mutation.
func (t *Terrain) PaintAreaTerrain(x, z, radius float64, kind string) {
	t.Painted = append(t.Painted, PaintCall{X: x, Z: z, Radius: radius, Kind: kind})
}

// BuildWallPerpendicular records the mutation.
func (t *Terrain) BuildWallPerpendicular(x, z, facing, offset, length, height, thickness float64, team int) {
	t.BuiltWalls = append(t.BuiltWalls, BuildWallCall{
		X: x, Z: z, Facing: facing, Offset: offset,
		Length: length, Height: height, Thickness: thickness, Team: team,
	})
}

// DamageWallsInRadius records the mutation.
func (t *Terrain) DamageWallsInRadius(x, z, radius, amount float64) {
	t.WallDamages = append(t.WallDamages, WallDamageCall{X: x, Z: z, Radius: radius, Amount: amount})
}

// Buildings is a snapshot.Buildings stub over circular obstacles.
type Buildings struct {
	Obstacles []snapshot.Obstacle
}

// CheckLineOfSight reports whether no obstacle footprint intersects the
// segment, sampled at 16 points.
func (b *Buildings) CheckLineOfSight(x1, z1, x2, z2 float64) bool {
	for i := 0; i <= 16; i++ {
		f := float64(i) / 16
		if _, hit := b.CollisionAt(x1+(x2-x1)*f, z1+(z2-z1)*f); hit {
			return false
		}
	}
	return true
}

// CollisionAt implements snapshot.Buildings.
func (b *Buildings) CollisionAt(x, z float64) (snapshot.Obstacle, bool) {
	for _, o := range b.Obstacles {
		dx, dz := x-o.X, z-o.Z
		if math.Sqrt(dx*dx+dz*dz) <= o.Radius {
			return o, true
		}
	}
	return snapshot.Obstacle{}, false
}

// Telemetry records every fire-and-forget call for assertion.
type Telemetry struct {
	Projectiles  []string
	DamageShown  []float64
	Misses       int
	HealsShown   []float64
	QueueSuccess []string
	QueueFailure []string
	QueueOOR     []string
	QueueNoEnr   []string
}

// SpawnProjectile implements snapshot.Telemetry.
func (t *Telemetry) SpawnProjectile(_, _, _, _ float64, abilityID string) {
	t.Projectiles = append(t.Projectiles, abilityID)
}

// SpawnDamageNumber implements snapshot.Telemetry.
func (t *Telemetry) SpawnDamageNumber(_, _, amount float64, miss bool) {
	if miss {
		t.Misses++
		return
	}
	t.DamageShown = append(t.DamageShown, amount)
}

// SpawnHeal implements snapshot.Telemetry.
func (t *Telemetry) SpawnHeal(_, _, amount float64) {
	t.HealsShown = append(t.HealsShown, amount)
}

// RecordQueueSuccess implements snapshot.Telemetry.
func (t *Telemetry) RecordQueueSuccess(_, abilityID string) {
	t.QueueSuccess = append(t.QueueSuccess, abilityID)
}

// RecordQueueFailure implements snapshot.Telemetry.
func (t *Telemetry) RecordQueueFailure(_, abilityID string) {
	t.QueueFailure = append(t.QueueFailure, abilityID)
}

// RecordQueueOutOfRange implements snapshot.Telemetry.
func (t *Telemetry) RecordQueueOutOfRange(_, abilityID string) {
	t.QueueOOR = append(t.QueueOOR, abilityID)
}

// RecordQueueNoEnergy implements snapshot.Telemetry.
func (t *Telemetry) RecordQueueNoEnergy(_, abilityID string) {
	t.QueueNoEnr = append(t.QueueNoEnr, abilityID)
}

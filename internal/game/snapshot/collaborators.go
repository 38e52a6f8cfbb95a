package snapshot

// Terrain is the read-only query surface of the terrain grid. Mesh, rendering,
// and generation live outside this core.
type Terrain interface {
	// SpeedMultiplierAt returns the movement speed multiplier at (x, z).
	SpeedMultiplierAt(x, z float64) float64
	// WallHeightAt returns the wall height at (x, z); 0 means no wall.
	WallHeightAt(x, z float64) float64
	// HasWallBetween reports whether a wall of at least minHeight intersects
	// the segment (x1,z1)-(x2,z2).
	HasWallBetween(x1, z1, x2, z2, minHeight float64) bool
	// IsIcyAt reports whether the terrain at (x, z) is ice.
	IsIcyAt(x, z float64) bool
}

// Obstacle is a building collision footprint.
type Obstacle struct {
	X, Z   float64
	Radius float64
}

// Buildings is the optional building/line-of-sight query surface.
type Buildings interface {
	CheckLineOfSight(x1, z1, x2, z2 float64) bool
	// CollisionAt returns the obstacle overlapping (x, z), if any.
	CollisionAt(x, z float64) (Obstacle, bool)
}

// Telemetry is the fire-and-forget visual/telemetry surface. Calls must never
// block or fail the pipeline; a missing collaborator is a no-op, not an error.
type Telemetry interface {
	SpawnProjectile(fromX, fromZ, toX, toZ float64, abilityID string)
	SpawnDamageNumber(x, z, amount float64, miss bool)
	SpawnHeal(x, z, amount float64)
	RecordQueueSuccess(actorID, abilityID string)
	RecordQueueFailure(actorID, abilityID string)
	RecordQueueOutOfRange(actorID, abilityID string)
	RecordQueueNoEnergy(actorID, abilityID string)
}

// nopTelemetry discards every call.
type nopTelemetry struct{}

func (nopTelemetry) SpawnProjectile(_, _, _, _ float64, _ string) {}
func (nopTelemetry) SpawnDamageNumber(_, _, _ float64, _ bool)    {}
func (nopTelemetry) SpawnHeal(_, _, _ float64)                    {}
func (nopTelemetry) RecordQueueSuccess(_, _ string)               {}
func (nopTelemetry) RecordQueueFailure(_, _ string)               {}
func (nopTelemetry) RecordQueueOutOfRange(_, _ string)            {}
func (nopTelemetry) RecordQueueNoEnergy(_, _ string)              {}

// OrNop returns t, or a discarding Telemetry when t is nil.
func OrNop(t Telemetry) Telemetry {
	if t == nil {
		return nopTelemetry{}
	}
	return t
}

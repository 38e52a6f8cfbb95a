// Package terrain implements the battlefield ground model the simulation
// consumes: painted surface regions with speed multipliers, destructible wall
// segments, and the line-sampled cover query. It satisfies both the read-only
// snapshot surface and the mutating cast surface.
package terrain

import "math"

// Surface speed multipliers per painted kind. Unpainted ground is 1.0.
var kindSpeed = map[string]float64{
	"ice":    0.9,
	"slush":  0.45,
	"powder": 0.7,
}

// losSamples is the number of sample intervals used for segment queries.
const losSamples = 16

// Region is one painted circular surface patch. Later paints win where
// patches overlap.
type Region struct {
	X, Z, Radius float64
	Kind         string
}

// WallSegment is one built wall: a thick line segment with a height that
// wall-break damage chips away.
type WallSegment struct {
	X1, Z1, X2, Z2 float64
	Height         float64
	Thickness      float64
	Team           int
}

// Field is a mutable battlefield. The zero value is open, flat ground.
type Field struct {
	regions []Region
	walls   []WallSegment
}

// New creates an empty Field.
func New() *Field {
	return &Field{}
}

// SpeedMultiplierAt returns the movement multiplier at (x, z). The most
// recently painted patch covering the point wins.
func (f *Field) SpeedMultiplierAt(x, z float64) float64 {
	for i := len(f.regions) - 1; i >= 0; i-- {
		r := f.regions[i]
		if inCircle(x, z, r.X, r.Z, r.Radius) {
			if s, ok := kindSpeed[r.Kind]; ok {
				return s
			}
			return 1.0
		}
	}
	return 1.0
}

// IsIcyAt reports whether the surface at (x, z) is ice.
func (f *Field) IsIcyAt(x, z float64) bool {
	for i := len(f.regions) - 1; i >= 0; i-- {
		r := f.regions[i]
		if inCircle(x, z, r.X, r.Z, r.Radius) {
			return r.Kind == "ice"
		}
	}
	return false
}

// WallHeightAt returns the height of the tallest wall covering (x, z), or 0.
func (f *Field) WallHeightAt(x, z float64) float64 {
	var best float64
	for _, w := range f.walls {
		if distToSegment(x, z, w) <= w.Thickness/2 && w.Height > best {
			best = w.Height
		}
	}
	return best
}

// HasWallBetween reports whether a wall of at least minHeight crosses the
// segment (x1,z1)-(x2,z2), sampled at fixed intervals.
func (f *Field) HasWallBetween(x1, z1, x2, z2, minHeight float64) bool {
	for i := 0; i <= losSamples; i++ {
		t := float64(i) / losSamples
		if f.WallHeightAt(x1+(x2-x1)*t, z1+(z2-z1)*t) >= minHeight {
			return true
		}
	}
	return false
}

// PaintAreaTerrain adds a painted patch centered on (x, z).
func (f *Field) PaintAreaTerrain(x, z, radius float64, kind string) {
	f.regions = append(f.regions, Region{X: x, Z: z, Radius: radius, Kind: kind})
}

// BuildWallPerpendicular raises a wall segment perpendicular to facing,
// offset units ahead of (x, z).
func (f *Field) BuildWallPerpendicular(x, z, facing, offset, length, height, thickness float64, team int) {
	sin, cos := math.Sincos(facing)
	cx := x + cos*offset
	cz := z + sin*offset
	// Perpendicular to the facing direction.
	px, pz := -sin, cos
	half := length / 2
	f.walls = append(f.walls, WallSegment{
		X1: cx - px*half, Z1: cz - pz*half,
		X2: cx + px*half, Z2: cz + pz*half,
		Height:    height,
		Thickness: thickness,
		Team:      team,
	})
}

// DamageWallsInRadius lowers every wall whose segment passes within radius of
// (x, z) by amount, removing walls ground down to nothing.
func (f *Field) DamageWallsInRadius(x, z, radius, amount float64) {
	kept := f.walls[:0]
	for _, w := range f.walls {
		if distToSegment(x, z, w) <= radius+w.Thickness/2 {
			w.Height -= amount
		}
		if w.Height > 0 {
			kept = append(kept, w)
		}
	}
	f.walls = kept
}

// WallCount returns the number of standing wall segments.
func (f *Field) WallCount() int { return len(f.walls) }

func inCircle(x, z, cx, cz, r float64) bool {
	dx, dz := x-cx, z-cz
	return dx*dx+dz*dz <= r*r
}

// distToSegment returns the distance from (x, z) to the wall's center line.
func distToSegment(x, z float64, w WallSegment) float64 {
	dx, dz := w.X2-w.X1, w.Z2-w.Z1
	lenSq := dx*dx + dz*dz
	if lenSq == 0 {
		return math.Hypot(x-w.X1, z-w.Z1)
	}
	t := ((x-w.X1)*dx + (z-w.Z1)*dz) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(x-(w.X1+t*dx), z-(w.Z1+t*dz))
}

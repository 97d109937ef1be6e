package collision

import (
	"math"

	"github.com/milk9111/tankbattle/body"
	"github.com/milk9111/tankbattle/geom"
)

// Overlap describes a penetration between two polygons. Normal is a unit
// vector pointing from the first polygon towards the second.
type Overlap struct {
	Normal geom.Vector
	Depth  float64
}

// Detect runs a separating-axis test over the edge normals of a and b.
// Touching polygons (zero overlap on some axis) are disjoint. The result is
// symmetric: Detect(b, a) has the same depth and the negated normal, except
// for exactly concentric shapes, which share the canonical normal.
func Detect(a, b geom.Polygon) (Overlap, bool) {
	if len(a) < 3 || len(b) < 3 {
		return Overlap{}, false
	}
	if !geom.Bounds(a).Intersects(geom.Bounds(b)) {
		return Overlap{}, false
	}

	best := Overlap{Depth: math.Inf(1)}
	found := false
	for _, poly := range [2]geom.Polygon{a, b} {
		for i := range poly {
			edge := poly[(i+1)%len(poly)].Sub(poly[i])
			if edge.X == 0 && edge.Y == 0 {
				continue
			}
			axis := canonical(edge.Perp().Normalize())
			minA, maxA := project(a, axis)
			minB, maxB := project(b, axis)
			depth := math.Min(maxA, maxB) - math.Max(minA, minB)
			if !(depth > 0) {
				return Overlap{}, false
			}
			if depth < best.Depth || (depth == best.Depth && axisLess(axis, best.Normal)) {
				best = Overlap{Normal: axis, Depth: depth}
				found = true
			}
		}
	}
	if !found {
		return Overlap{}, false
	}

	minA, maxA := project(a, best.Normal)
	minB, maxB := project(b, best.Normal)
	if (minB + maxB) < (minA + maxA) {
		best.Normal = best.Normal.Neg()
	}
	return best, true
}

// DetectBodies runs Detect on the current shapes of a and b.
func DetectBodies(a, b *body.Body) (Overlap, bool) {
	return Detect(a.Vertices(), b.Vertices())
}

func project(p geom.Polygon, axis geom.Vector) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range p {
		d := v.Dot(axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// canonical flips axis into the half-plane x > 0 (or x == 0, y > 0) so
// opposite edges yield the same axis.
func canonical(axis geom.Vector) geom.Vector {
	if axis.X < 0 || (axis.X == 0 && axis.Y < 0) {
		return axis.Neg()
	}
	return axis
}

func axisLess(a, b geom.Vector) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Polygon is a closed vertex loop. Consecutive vertices, and the last with
// the first, form its edges.
type Polygon []Vector

// Clone returns an independent copy of p.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// SignedArea is positive for counter-clockwise winding.
func SignedArea(p Polygon) float64 {
	var sum float64
	for i := range p {
		sum += p[i].Cross(p[(i+1)%len(p)])
	}
	return sum / 2
}

// Centroid returns the area-weighted centroid. Zero-area input yields NaN.
func Centroid(p Polygon) Vector {
	return cp.CentroidForPoly(len(p), p)
}

// Translate moves every vertex of p by d in place.
func Translate(p Polygon, d Vector) {
	for i := range p {
		p[i] = p[i].Add(d)
	}
}

// Rotate rotates every vertex of p about pivot by angle radians in place.
func Rotate(p Polygon, angle float64, pivot Vector) {
	if angle == 0 {
		return
	}
	rot := cp.ForAngle(angle)
	for i := range p {
		p[i] = p[i].Sub(pivot).Rotate(rot).Add(pivot)
	}
}

// Contains reports whether pt lies inside p using the even-odd crossing rule.
func Contains(p Polygon, pt Vector) bool {
	inside := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := a.X + (pt.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Bounds returns the axis-aligned bounding box of p.
func Bounds(p Polygon) cp.BB {
	if len(p) == 0 {
		return cp.BB{}
	}
	bb := cp.BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
	for _, v := range p {
		bb.L = math.Min(bb.L, v.X)
		bb.R = math.Max(bb.R, v.X)
		bb.B = math.Min(bb.B, v.Y)
		bb.T = math.Max(bb.T, v.Y)
	}
	return bb
}

// Rect returns a counter-clockwise w x h rectangle centered on center.
func Rect(center Vector, w, h float64) Polygon {
	hw, hh := w/2, h/2
	return Polygon{
		{X: center.X + hw, Y: center.Y + hh},
		{X: center.X - hw, Y: center.Y + hh},
		{X: center.X - hw, Y: center.Y - hh},
		{X: center.X + hw, Y: center.Y - hh},
	}
}

// RectCorners returns the counter-clockwise rectangle spanning min to max.
func RectCorners(min, max Vector) Polygon {
	return Polygon{
		{X: min.X, Y: min.Y},
		{X: max.X, Y: min.Y},
		{X: max.X, Y: max.Y},
		{X: min.X, Y: max.Y},
	}
}

// Arc returns n+1 points on a circle of radius r around center, starting at
// angle start and sweeping by sweep radians.
func Arc(center Vector, r, start, sweep float64, n int) Polygon {
	if n < 1 {
		n = 1
	}
	out := make(Polygon, 0, n+1)
	for i := 0; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		out = append(out, center.Add(Heading(a).Mult(r)))
	}
	return out
}

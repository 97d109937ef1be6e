package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Vector is a 2D value vector. It is Chipmunk's vector type, so Add, Sub,
// Mult, Neg, Dot, Cross, Perp, Length and Normalize come from cp.
type Vector = cp.Vector

// Zero is the zero vector.
var Zero = Vector{}

// V builds a vector.
func V(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// Heading returns the unit vector pointing at angle radians.
func Heading(angle float64) Vector {
	return cp.ForAngle(angle)
}

// RotateVector rotates v about the origin by angle radians.
func RotateVector(v Vector, angle float64) Vector {
	return v.Rotate(cp.ForAngle(angle))
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Vector) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// IsFinite reports whether both components are finite numbers.
func IsFinite(v Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

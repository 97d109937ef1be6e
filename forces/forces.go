// Package forces holds the physical laws a scene applies to its bodies each
// tick. A law is a pure function of its operands' current state.
package forces

import (
	"github.com/milk9111/tankbattle/body"
	"github.com/milk9111/tankbattle/geom"
)

// Variadic is the arity of laws that accept one or more operands and apply
// to each independently.
const Variadic = -1

// Law adds forces to its operands.
type Law interface {
	Arity() int
	Apply(bodies []*body.Body)
}

// Drag opposes motion: F = -Gamma * v.
type Drag struct {
	Gamma float64
}

func (Drag) Arity() int { return Variadic }

func (d Drag) Apply(bodies []*body.Body) {
	for _, b := range bodies {
		b.AddForce(b.Velocity().Mult(-d.Gamma))
	}
}

// Uniform pulls every finite-mass operand with the same acceleration.
type Uniform struct {
	Acceleration geom.Vector
}

func (Uniform) Arity() int { return Variadic }

func (u Uniform) Apply(bodies []*body.Body) {
	for _, b := range bodies {
		if b.IsImmovable() {
			continue
		}
		b.AddForce(u.Acceleration.Mult(b.Mass()))
	}
}

// Gravity is Newtonian attraction between two bodies. Pairs closer than
// MinDistance are left alone so the force stays bounded.
type Gravity struct {
	G           float64
	MinDistance float64
}

func (Gravity) Arity() int { return 2 }

func (g Gravity) Apply(bodies []*body.Body) {
	a, b := bodies[0], bodies[1]
	if a.IsImmovable() || b.IsImmovable() {
		return
	}
	d := b.Centroid().Sub(a.Centroid())
	r := d.Length()
	if r == 0 || r < g.MinDistance {
		return
	}
	f := d.Mult(g.G * a.Mass() * b.Mass() / (r * r * r))
	a.AddForce(f)
	b.AddForce(f.Neg())
}

// Spring pulls two centroids together with stiffness K and zero rest length.
type Spring struct {
	K float64
}

func (Spring) Arity() int { return 2 }

func (s Spring) Apply(bodies []*body.Body) {
	a, b := bodies[0], bodies[1]
	f := b.Centroid().Sub(a.Centroid()).Mult(s.K)
	a.AddForce(f)
	b.AddForce(f.Neg())
}

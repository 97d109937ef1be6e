package body

import (
	"errors"
	"math"

	"github.com/milk9111/tankbattle/geom"
)

// Immovable is the mass of walls and static obstacles. Forces and impulses
// have no effect on an immovable body, but its velocity and rotation may
// still be set directly.
var Immovable = math.Inf(1)

const (
	DefaultHealth = 10.0
)

var (
	ErrDegenerateShape = errors.New("body: shape needs at least 3 vertices")
	ErrInvalidMass     = errors.New("body: mass must be positive")
	ErrAlreadyAttached = errors.New("body: already owned by a scene")
)

// Color is an RGB fill with channels in [0, 1].
type Color struct {
	R, G, B float64
}

// Body is a simulated rigid polygon.
type Body struct {
	shape    geom.Polygon
	centroid geom.Vector
	rotation float64

	velocity      geom.Vector
	magnitude     float64
	rotationSpeed float64
	force         geom.Vector
	impulse       geom.Vector
	mass          float64

	color Color
	kind  Kind

	health   float64
	timer    float64
	collided bool
	removed  bool
	attached bool
}

// New creates a body from a copy of shape. A nil kind is treated as Wall.
func New(shape geom.Polygon, mass float64, color Color, kind Kind) (*Body, error) {
	if len(shape) < 3 {
		return nil, ErrDegenerateShape
	}
	if !(mass > 0) {
		return nil, ErrInvalidMass
	}
	if kind == nil {
		kind = Wall{}
	}
	s := shape.Clone()
	return &Body{
		shape:    s,
		centroid: geom.Centroid(s),
		mass:     mass,
		color:    color,
		kind:     kind,
		health:   DefaultHealth,
		timer:    math.Inf(1),
	}, nil
}

// Tick integrates the body over dt seconds.
//
// The velocity update is semi-implicit: v' = v + dt*F/m + J/m, and the
// body moves by dt times the average of v and v'. A non-zero magnitude then
// overwrites the velocity with magnitude along the new heading. Force and
// impulse are cleared.
func (b *Body) Tick(dt float64) {
	if b == nil {
		return
	}
	old := b.velocity
	if inv := b.InverseMass(); inv != 0 {
		b.velocity = b.velocity.Add(b.force.Mult(dt * inv)).Add(b.impulse.Mult(inv))
	}

	avg := old.Add(b.velocity).Mult(0.5)
	geom.Translate(b.shape, avg.Mult(dt))
	b.centroid = geom.Centroid(b.shape)

	b.SetRotation(b.rotation + dt*b.rotationSpeed)
	if b.magnitude != 0 {
		b.velocity = geom.Heading(b.rotation).Mult(b.magnitude)
	}

	if bullet, ok := b.kind.(Bullet); ok {
		b.alignToVelocity(bullet.QuadrantAware)
	}

	b.force = geom.Zero
	b.impulse = geom.Zero
}

func (b *Body) alignToVelocity(quadrantAware bool) {
	v := b.velocity
	if v.X == 0 && v.Y == 0 {
		return
	}
	if quadrantAware {
		b.SetRotation(math.Atan2(v.Y, v.X))
		return
	}
	b.SetRotation(math.Atan(v.Y / v.X))
}

// AddForce accumulates a continuous force for the current tick.
func (b *Body) AddForce(f geom.Vector) {
	b.force = b.force.Add(f)
}

// AddImpulse accumulates an instantaneous impulse for the current tick.
func (b *Body) AddImpulse(j geom.Vector) {
	b.impulse = b.impulse.Add(j)
}

// SetRotation sets the absolute rotation, turning the shape about its
// centroid by the difference from the current rotation.
func (b *Body) SetRotation(angle float64) {
	geom.Rotate(b.shape, angle-b.rotation, b.centroid)
	b.rotation = angle
}

// OverrideRotation sets the logical rotation without touching the shape,
// for shapes that were built already rotated.
func (b *Body) OverrideRotation(angle float64) {
	b.rotation = angle
}

// SetCentroid moves the body so its centroid sits at c.
func (b *Body) SetCentroid(c geom.Vector) {
	b.Translate(c.Sub(b.centroid))
}

// Translate moves the body by d.
func (b *Body) Translate(d geom.Vector) {
	geom.Translate(b.shape, d)
	b.centroid = b.centroid.Add(d)
}

// SetShape replaces the body's polygon with a copy of shape. The new shape
// is taken to already be at the body's current rotation.
func (b *Body) SetShape(shape geom.Polygon) error {
	if len(shape) < 3 {
		return ErrDegenerateShape
	}
	b.shape = shape.Clone()
	b.centroid = geom.Centroid(b.shape)
	return nil
}

func (b *Body) SetVelocity(v geom.Vector)  { b.velocity = v }
func (b *Body) SetMagnitude(m float64)     { b.magnitude = m }
func (b *Body) SetRotationSpeed(w float64) { b.rotationSpeed = w }
func (b *Body) SetForce(f geom.Vector)     { b.force = f }
func (b *Body) SetImpulse(j geom.Vector)   { b.impulse = j }
func (b *Body) SetColor(c Color)           { b.color = c }
func (b *Body) SetHealth(h float64)        { b.health = h }
func (b *Body) SetTimer(t float64)         { b.timer = t }
func (b *Body) AddTimer(dt float64)        { b.timer += dt }
func (b *Body) Shape() geom.Polygon        { return b.shape.Clone() }
func (b *Body) Centroid() geom.Vector      { return b.centroid }
func (b *Body) Rotation() float64          { return b.rotation }
func (b *Body) Velocity() geom.Vector      { return b.velocity }
func (b *Body) Magnitude() float64         { return b.magnitude }
func (b *Body) RotationSpeed() float64     { return b.rotationSpeed }
func (b *Body) Force() geom.Vector         { return b.force }
func (b *Body) Impulse() geom.Vector       { return b.impulse }
func (b *Body) Mass() float64              { return b.mass }
func (b *Body) Color() Color               { return b.color }
func (b *Body) Kind() Kind                 { return b.kind }
func (b *Body) Tag() Tag                   { return b.kind.Tag() }
func (b *Body) Health() float64            { return b.health }
func (b *Body) Timer() float64             { return b.timer }
func (b *Body) Removed() bool              { return b.removed }
func (b *Body) Collided() bool             { return b.collided }
func (b *Body) IsImmovable() bool          { return math.IsInf(b.mass, 1) }

// InverseMass is zero for immovable bodies.
func (b *Body) InverseMass() float64 {
	if b.IsImmovable() {
		return 0
	}
	return 1 / b.mass
}

// Damage subtracts amount from health and returns what is left. Health may
// go negative; deciding what that means is up to the caller.
func (b *Body) Damage(amount float64) float64 {
	b.health -= amount
	return b.health
}

// Alive reports whether health is above zero.
func (b *Body) Alive() bool {
	return b.health > 0
}

// MarkCollided raises the just-collided flag.
func (b *Body) MarkCollided() {
	b.collided = true
}

// ConsumeCollided returns the just-collided flag and clears it.
func (b *Body) ConsumeCollided() bool {
	c := b.collided
	b.collided = false
	return c
}

// Remove flags the body for the next sweep. It is idempotent and leaves
// the shape untouched.
func (b *Body) Remove() {
	b.removed = true
}

// Attach claims the body for a scene. A body belongs to at most one scene.
func (b *Body) Attach() error {
	if b.attached {
		return ErrAlreadyAttached
	}
	b.attached = true
	return nil
}

// Detach releases the body from its scene.
func (b *Body) Detach() {
	b.attached = false
}

// Vertices returns the body's polygon without copying. Callers must not
// modify it.
func (b *Body) Vertices() geom.Polygon {
	return b.shape
}

package scene

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/milk9111/tankbattle/body"
	"github.com/milk9111/tankbattle/collision"
	"github.com/milk9111/tankbattle/forces"
	"github.com/milk9111/tankbattle/geom"
)

var (
	ErrNilBody        = errors.New("scene: body is nil")
	ErrTickInProgress = errors.New("scene: cannot mutate during tick")
	ErrStaleHandle    = errors.New("scene: stale handle")
	ErrBodyRemoved    = errors.New("scene: body is removed")
	ErrArity          = errors.New("scene: wrong number of operands")
	ErrSameBody       = errors.New("scene: body cannot collide with itself")
)

type forceBinding struct {
	law      forces.Law
	operands []Handle
}

type collisionBinding struct {
	policy collision.Policy
	a, b   Handle
}

// Scene owns bodies and the force and collision bindings between them.
// Bindings refer to bodies by handle and are dropped when any of their
// bodies is swept.
type Scene struct {
	bodies     arena
	order      []Handle
	forces     []forceBinding
	collisions []collisionBinding
	events     EventQueue
	ticking    bool
	operands   []*body.Body
	logger     *slog.Logger
}

type Option func(*Scene)

func WithLogger(l *slog.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddBody takes ownership of b and appends it to the body order.
func (s *Scene) AddBody(b *body.Body) (Handle, error) {
	if b == nil {
		return 0, ErrNilBody
	}
	if s.ticking {
		return 0, ErrTickInProgress
	}
	if err := b.Attach(); err != nil {
		return 0, fmt.Errorf("scene: add body: %w", err)
	}
	h := s.bodies.insert(b)
	s.order = append(s.order, h)
	return h, nil
}

// Body resolves h. Bodies marked removed still resolve until the sweep.
func (s *Scene) Body(h Handle) (*body.Body, bool) {
	return s.bodies.get(h)
}

// BodyAt returns the i-th body in addition order, or nil.
func (s *Scene) BodyAt(i int) *body.Body {
	if i < 0 || i >= len(s.order) {
		return nil
	}
	b, _ := s.bodies.get(s.order[i])
	return b
}

// HandleAt returns the handle of the i-th body in addition order.
func (s *Scene) HandleAt(i int) (Handle, bool) {
	if i < 0 || i >= len(s.order) {
		return 0, false
	}
	return s.order[i], true
}

// Len returns the number of owned bodies, including ones awaiting the sweep.
func (s *Scene) Len() int {
	return len(s.order)
}

// Bodies returns the bodies not marked removed, in addition order.
func (s *Scene) Bodies() []*body.Body {
	out := make([]*body.Body, 0, len(s.order))
	for _, h := range s.order {
		if b, ok := s.bodies.get(h); ok && !b.Removed() {
			out = append(out, b)
		}
	}
	return out
}

// Handles returns the handles of bodies not marked removed.
func (s *Scene) Handles() []Handle {
	out := make([]Handle, 0, len(s.order))
	for _, h := range s.order {
		if b, ok := s.bodies.get(h); ok && !b.Removed() {
			out = append(out, h)
		}
	}
	return out
}

// RemoveBody marks the body for the next sweep. It is safe to call at any
// time, including from inside a tick.
func (s *Scene) RemoveBody(h Handle) error {
	b, ok := s.bodies.get(h)
	if !ok {
		return ErrStaleHandle
	}
	b.Remove()
	return nil
}

// AddForce binds law to the given bodies. It is applied once per tick in
// registration order.
func (s *Scene) AddForce(law forces.Law, operands ...Handle) error {
	if s.ticking {
		return ErrTickInProgress
	}
	arity := law.Arity()
	if (arity == forces.Variadic && len(operands) == 0) || (arity != forces.Variadic && arity != len(operands)) {
		return fmt.Errorf("%w: want %d, got %d", ErrArity, arity, len(operands))
	}
	for _, h := range operands {
		if err := s.eligible(h); err != nil {
			return err
		}
	}
	s.forces = append(s.forces, forceBinding{
		law:      law,
		operands: append([]Handle(nil), operands...),
	})
	return nil
}

// AddCollision binds policy to the pair (a, b). The policy runs at most once
// per tick, whenever the two shapes overlap, until either body is removed.
func (s *Scene) AddCollision(policy collision.Policy, a, b Handle) error {
	if s.ticking {
		return ErrTickInProgress
	}
	if a == b {
		return ErrSameBody
	}
	if err := s.eligible(a); err != nil {
		return err
	}
	if err := s.eligible(b); err != nil {
		return err
	}
	s.collisions = append(s.collisions, collisionBinding{policy: policy, a: a, b: b})
	return nil
}

func (s *Scene) eligible(h Handle) error {
	b, ok := s.bodies.get(h)
	if !ok {
		return ErrStaleHandle
	}
	if b.Removed() {
		return ErrBodyRemoved
	}
	return nil
}

// ForceCount returns the number of force bindings.
func (s *Scene) ForceCount() int {
	return len(s.forces)
}

// CollisionCount returns the number of collision bindings.
func (s *Scene) CollisionCount() int {
	return len(s.collisions)
}

// Events returns the events of the last tick.
func (s *Scene) Events() *EventQueue {
	return &s.events
}

// Tick advances the scene by dt seconds: forces, then collisions, then
// integration of every body not marked removed, then the sweep. dt is not
// validated.
func (s *Scene) Tick(dt float64) {
	s.events.flush()
	s.ticking = true
	defer func() { s.ticking = false }()

	s.applyForces()
	s.resolveCollisions()
	for _, h := range s.order {
		if b, ok := s.bodies.get(h); ok && !b.Removed() {
			b.Tick(dt)
		}
	}
	s.sweep()
}

func (s *Scene) applyForces() {
	for i := range s.forces {
		fb := &s.forces[i]
		s.operands = s.operands[:0]
		for _, h := range fb.operands {
			b, ok := s.live(h)
			if !ok {
				break
			}
			s.operands = append(s.operands, b)
		}
		if len(s.operands) != len(fb.operands) {
			continue
		}
		fb.law.Apply(s.operands)
	}
}

func (s *Scene) resolveCollisions() {
	for i := range s.collisions {
		cb := s.collisions[i]
		a, okA := s.live(cb.a)
		b, okB := s.live(cb.b)
		if !okA || !okB {
			continue
		}
		o, hit := collision.DetectBodies(a, b)
		if !hit {
			continue
		}
		if eff := cb.policy.Resolve(a, b, o); eff != collision.EffectNone {
			s.events.Push(Collided{A: cb.a, B: cb.b, Effect: eff, Overlap: o})
		}
	}
}

func (s *Scene) live(h Handle) (*body.Body, bool) {
	b, ok := s.bodies.get(h)
	if !ok || b.Removed() {
		return nil, false
	}
	return b, true
}

func (s *Scene) sweep() {
	swept := 0
	kept := s.order[:0]
	for _, h := range s.order {
		b, ok := s.bodies.get(h)
		if ok && !b.Removed() {
			kept = append(kept, h)
			continue
		}
		if ok {
			s.events.Push(Removed{Handle: h, Tag: b.Tag()})
			b.Detach()
		}
		s.bodies.release(h)
		swept++
	}
	s.order = kept
	if swept == 0 {
		return
	}

	keptForces := s.forces[:0]
	for _, fb := range s.forces {
		if s.allAlive(fb.operands...) {
			keptForces = append(keptForces, fb)
		}
	}
	clear(s.forces[len(keptForces):])
	s.forces = keptForces

	collisions := s.collisions[:0]
	for _, cb := range s.collisions {
		if s.allAlive(cb.a, cb.b) {
			collisions = append(collisions, cb)
		}
	}
	clear(s.collisions[len(collisions):])
	s.collisions = collisions

	s.logger.Debug("scene sweep", "removed", swept, "bodies", len(s.order), "forces", len(s.forces), "collisions", len(s.collisions))
}

func (s *Scene) allAlive(hs ...Handle) bool {
	for _, h := range hs {
		if !s.bodies.alive(h) {
			return false
		}
	}
	return true
}

// Renderable is what a renderer needs to draw one body.
type Renderable struct {
	Handle  Handle
	Tag     body.Tag
	Color   body.Color
	Polygon geom.Polygon
}

// Renderables returns a copy of every live body's shape and color.
func (s *Scene) Renderables() []Renderable {
	out := make([]Renderable, 0, len(s.order))
	for _, h := range s.order {
		b, ok := s.live(h)
		if !ok {
			continue
		}
		out = append(out, Renderable{
			Handle:  h,
			Tag:     b.Tag(),
			Color:   b.Color(),
			Polygon: b.Shape(),
		})
	}
	return out
}

// Status is the game-facing state of a body.
type Status struct {
	Health   float64
	Removed  bool
	Collided bool
}

// Status reports h's health and flags.
func (s *Scene) Status(h Handle) (Status, bool) {
	b, ok := s.bodies.get(h)
	if !ok {
		return Status{}, false
	}
	return Status{Health: b.Health(), Removed: b.Removed(), Collided: b.Collided()}, true
}

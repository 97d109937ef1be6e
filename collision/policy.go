package collision

import (
	"github.com/milk9111/tankbattle/body"
)

// Effect reports what a policy did to its bodies.
type Effect int

const (
	EffectNone Effect = iota
	EffectBounce
	EffectDestroy
	EffectDamage
	EffectCustom
)

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectBounce:
		return "bounce"
	case EffectDestroy:
		return "destroy"
	case EffectDamage:
		return "damage"
	case EffectCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Policy responds to an overlap between a and b. o.Normal points from a to b.
type Policy interface {
	Resolve(a, b *body.Body, o Overlap) Effect
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(a, b *body.Body, o Overlap) Effect

func (f PolicyFunc) Resolve(a, b *body.Body, o Overlap) Effect {
	return f(a, b, o)
}

// Physics bounces the bodies apart with the given coefficient of
// restitution and pushes them out of each other along the normal, split by
// inverse mass. Immovable bodies are never pushed or given an impulse.
type Physics struct {
	Elasticity float64
}

func (p Physics) Resolve(a, b *body.Body, o Overlap) Effect {
	invA, invB := a.InverseMass(), b.InverseMass()
	invSum := invA + invB
	if invSum == 0 {
		return EffectNone
	}
	n := o.Normal

	// negative when the bodies approach each other
	rel := b.Velocity().Sub(a.Velocity()).Dot(n)
	if rel < 0 {
		j := -(1 + p.Elasticity) * rel / invSum
		if invA > 0 {
			a.AddImpulse(n.Mult(-j))
		}
		if invB > 0 {
			b.AddImpulse(n.Mult(j))
		}
	}

	push := n.Mult(o.Depth / invSum)
	if invA > 0 {
		a.Translate(push.Mult(-invA))
	}
	if invB > 0 {
		b.Translate(push.Mult(invB))
	}
	return EffectBounce
}

// Destructive removes both bodies.
type Destructive struct{}

func (Destructive) Resolve(a, b *body.Body, _ Overlap) Effect {
	a.Remove()
	b.Remove()
	return EffectDestroy
}

// PartialDestructive damages a, raises its just-collided flag and removes b.
// It never decides what a's remaining health means.
type PartialDestructive struct {
	Damage float64
}

func (p PartialDestructive) Resolve(a, b *body.Body, _ Overlap) Effect {
	a.Damage(p.Damage)
	a.MarkCollided()
	b.Remove()
	return EffectDamage
}

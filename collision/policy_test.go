package collision

import (
	"testing"

	"github.com/milk9111/tankbattle/body"
	"github.com/milk9111/tankbattle/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(t *testing.T, center geom.Vector, mass float64, kind body.Kind) *body.Body {
	t.Helper()
	b, err := body.New(geom.Rect(center, 10, 10), mass, body.Color{}, kind)
	require.NoError(t, err)
	return b
}

func TestPhysicsHeadOnEqualMass(t *testing.T) {
	const v = 40.0
	a := square(t, geom.V(0, 0), 3, body.Tank{})
	b := square(t, geom.V(9, 0), 3, body.Tank{})
	a.SetVelocity(geom.V(v, 0))
	b.SetVelocity(geom.V(-v, 0))

	o, ok := DetectBodies(a, b)
	require.True(t, ok)
	assert.Equal(t, EffectBounce, Physics{Elasticity: 1}.Resolve(a, b, o))

	a.Tick(0)
	b.Tick(0)
	assert.InDelta(t, -v, a.Velocity().X, 1e-9)
	assert.InDelta(t, v, b.Velocity().X, 1e-9)
	assert.InDelta(t, 2*v, b.Velocity().Sub(a.Velocity()).Dot(o.Normal), 1e-9)
}

func TestPhysicsRestitution(t *testing.T) {
	cases := []struct {
		name string
		e    float64
	}{
		{"inelastic", 0},
		{"half", 0.5},
		{"elastic", 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := square(t, geom.V(0, 0), 2, body.Tank{})
			b := square(t, geom.V(9, 0), 6, body.Tank{})
			a.SetVelocity(geom.V(10, 0))

			o, ok := DetectBodies(a, b)
			require.True(t, ok)
			approach := b.Velocity().Sub(a.Velocity()).Dot(o.Normal)
			Physics{Elasticity: c.e}.Resolve(a, b, o)
			a.Tick(0)
			b.Tick(0)

			separate := b.Velocity().Sub(a.Velocity()).Dot(o.Normal)
			assert.InDelta(t, -c.e*approach, separate, 1e-9)
			// momentum is conserved
			assert.InDelta(t, 2*10.0, 2*a.Velocity().X+6*b.Velocity().X, 1e-9)
		})
	}
}

func TestPhysicsImmovableReceivesNothing(t *testing.T) {
	wall := square(t, geom.V(0, 0), body.Immovable, body.Wall{})
	ball := square(t, geom.V(8, 0), 1, body.Bullet{})
	ball.SetVelocity(geom.V(-20, 0))

	o, ok := DetectBodies(wall, ball)
	require.True(t, ok)
	Physics{Elasticity: 1}.Resolve(wall, ball, o)

	assert.Equal(t, geom.Zero, wall.Impulse())
	assert.Equal(t, geom.V(0, 0), wall.Centroid())
	ball.Tick(0)
	assert.InDelta(t, 20, ball.Velocity().X, 1e-9)
	// pushed fully out of the wall
	assert.InDelta(t, 10, ball.Centroid().X, 1e-9)
}

func TestPhysicsSeparatingGetsNoImpulse(t *testing.T) {
	a := square(t, geom.V(0, 0), 1, body.Tank{})
	b := square(t, geom.V(9, 0), 1, body.Tank{})
	a.SetVelocity(geom.V(-5, 0))
	b.SetVelocity(geom.V(5, 0))

	o, _ := DetectBodies(a, b)
	Physics{Elasticity: 1}.Resolve(a, b, o)
	assert.Equal(t, geom.Zero, a.Impulse())
	assert.Equal(t, geom.Zero, b.Impulse())
	// positional correction still separates them
	_, ok := DetectBodies(a, b)
	assert.False(t, ok)
}

func TestPhysicsBothImmovable(t *testing.T) {
	a := square(t, geom.V(0, 0), body.Immovable, body.Wall{})
	b := square(t, geom.V(5, 0), body.Immovable, body.Wall{})
	o, _ := DetectBodies(a, b)
	assert.Equal(t, EffectNone, Physics{Elasticity: 1}.Resolve(a, b, o))
}

func TestDestructive(t *testing.T) {
	a := square(t, geom.V(0, 0), 1, body.Bullet{})
	b := square(t, geom.V(5, 0), 1, body.Bullet{})
	assert.Equal(t, EffectDestroy, Destructive{}.Resolve(a, b, Overlap{}))
	assert.True(t, a.Removed())
	assert.True(t, b.Removed())
}

func TestPartialDestructive(t *testing.T) {
	tank := square(t, geom.V(0, 0), 100, body.Tank{})
	bullet := square(t, geom.V(5, 0), 5, body.Bullet{})
	tank.SetHealth(10)

	assert.Equal(t, EffectDamage, PartialDestructive{Damage: 10}.Resolve(tank, bullet, Overlap{}))
	assert.LessOrEqual(t, tank.Health(), 0.0)
	assert.True(t, tank.Collided())
	assert.False(t, tank.Removed())
	assert.True(t, bullet.Removed())
}

func TestPolicyFunc(t *testing.T) {
	called := false
	p := PolicyFunc(func(a, b *body.Body, o Overlap) Effect {
		called = true
		return EffectCustom
	})
	assert.Equal(t, EffectCustom, p.Resolve(nil, nil, Overlap{}))
	assert.True(t, called)
	assert.Equal(t, "custom", EffectCustom.String())
}

package scene

import (
	"testing"

	"github.com/milk9111/tankbattle/body"
	"github.com/milk9111/tankbattle/collision"
	"github.com/milk9111/tankbattle/forces"
	"github.com/milk9111/tankbattle/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addRect(t *testing.T, s *Scene, center geom.Vector, w, h, mass float64, kind body.Kind) (Handle, *body.Body) {
	t.Helper()
	b, err := body.New(geom.Rect(center, w, h), mass, body.Color{R: 1}, kind)
	require.NoError(t, err)
	handle, err := s.AddBody(b)
	require.NoError(t, err)
	return handle, b
}

func TestSceneBodyLifecycle(t *testing.T) {
	cases := []struct {
		name        string
		create      int
		removeIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_remove_middle", 3, 1},
		{"none_removed", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := New()
			handles := make([]Handle, 0, c.create)
			for i := 0; i < c.create; i++ {
				h, _ := addRect(t, s, geom.V(float64(i)*100, 0), 10, 10, 1, body.Wall{})
				handles = append(handles, h)
			}
			require.Equal(t, c.create, s.Len())

			want := c.create
			if c.removeIndex >= 0 {
				require.NoError(t, s.RemoveBody(handles[c.removeIndex]))
				// still owned until the sweep, but no longer live
				assert.Equal(t, c.create, s.Len())
				assert.Len(t, s.Bodies(), c.create-1)
				want--
			}

			s.Tick(0.01)
			assert.Equal(t, want, s.Len())
			for i, h := range handles {
				_, ok := s.Body(h)
				assert.Equal(t, i != c.removeIndex, ok, "handle %d", i)
			}
		})
	}
}

func TestSweepKeepsAdditionOrder(t *testing.T) {
	s := New()
	var hs []Handle
	for i := 0; i < 5; i++ {
		h, _ := addRect(t, s, geom.V(float64(i)*50, 0), 10, 10, 1, body.Wall{})
		hs = append(hs, h)
	}
	require.NoError(t, s.RemoveBody(hs[1]))
	require.NoError(t, s.RemoveBody(hs[3]))
	s.Tick(0)

	assert.Equal(t, []Handle{hs[0], hs[2], hs[4]}, s.Handles())
	got, ok := s.HandleAt(1)
	require.True(t, ok)
	assert.Equal(t, hs[2], got)
	assert.Nil(t, s.BodyAt(3))
	_, ok = s.HandleAt(-1)
	assert.False(t, ok)
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	s := New()
	old, _ := addRect(t, s, geom.Zero, 10, 10, 1, body.Wall{})
	require.NoError(t, s.RemoveBody(old))
	s.Tick(0)

	fresh, _ := addRect(t, s, geom.Zero, 10, 10, 1, body.Wall{})
	assert.Equal(t, old.id(), fresh.id())
	assert.NotEqual(t, old, fresh)
	_, ok := s.Body(old)
	assert.False(t, ok)
	assert.ErrorIs(t, s.RemoveBody(old), ErrStaleHandle)
	assert.True(t, fresh.Valid())
	assert.False(t, Handle(0).Valid())
}

func TestBodyOwnedOnce(t *testing.T) {
	s := New()
	other := New()
	b, err := body.New(geom.Rect(geom.Zero, 1, 1), 1, body.Color{}, body.Wall{})
	require.NoError(t, err)

	_, err = s.AddBody(b)
	require.NoError(t, err)
	_, err = s.AddBody(b)
	assert.ErrorIs(t, err, body.ErrAlreadyAttached)
	_, err = other.AddBody(b)
	assert.ErrorIs(t, err, body.ErrAlreadyAttached)
	_, err = s.AddBody(nil)
	assert.ErrorIs(t, err, ErrNilBody)
}

func TestBindingValidation(t *testing.T) {
	s := New()
	a, _ := addRect(t, s, geom.Zero, 10, 10, 1, body.Tank{})
	b, bb := addRect(t, s, geom.V(100, 0), 10, 10, 1, body.Bullet{})

	assert.ErrorIs(t, s.AddForce(forces.Spring{K: 1}, a), ErrArity)
	assert.ErrorIs(t, s.AddForce(forces.Drag{Gamma: 1}), ErrArity)
	assert.ErrorIs(t, s.AddCollision(collision.Destructive{}, a, a), ErrSameBody)
	assert.ErrorIs(t, s.AddCollision(collision.Destructive{}, a, Handle(99)), ErrStaleHandle)

	bb.Remove()
	assert.ErrorIs(t, s.AddCollision(collision.Destructive{}, a, b), ErrBodyRemoved)
	assert.ErrorIs(t, s.AddForce(forces.Drag{Gamma: 1}, b), ErrBodyRemoved)
	assert.Equal(t, 0, s.CollisionCount())
	assert.Equal(t, 0, s.ForceCount())
}

func TestForcesCommittedBeforeIntegration(t *testing.T) {
	s := New()
	h, b := addRect(t, s, geom.Zero, 2, 2, 2, body.Bullet{})
	b.SetVelocity(geom.V(10, 0))
	require.NoError(t, s.AddForce(forces.Drag{Gamma: 1}, h))

	s.Tick(0.5)

	// F = -10, a = -5, v' = 10 - 2.5
	assert.InDelta(t, 7.5, b.Velocity().X, 1e-9)
	assert.InDelta(t, 0.5*(10+7.5)/2, b.Centroid().X, 1e-9)
	assert.Equal(t, geom.Zero, b.Force())
}

func TestCollisionResolvedBeforeIntegration(t *testing.T) {
	const v = 30.0
	s := New()
	ha, a := addRect(t, s, geom.V(0, 0), 10, 10, 4, body.Tank{})
	hb, b := addRect(t, s, geom.V(9, 0), 10, 10, 4, body.Tank{})
	a.SetVelocity(geom.V(v, 0))
	b.SetVelocity(geom.V(-v, 0))
	require.NoError(t, s.AddCollision(collision.Physics{Elasticity: 1}, ha, hb))

	s.Tick(0.1)

	assert.InDelta(t, -v, a.Velocity().X, 1e-9)
	assert.InDelta(t, v, b.Velocity().X, 1e-9)
	// averaged velocity is zero, so only the positional correction moved them
	assert.InDelta(t, -0.5, a.Centroid().X, 1e-9)
	assert.InDelta(t, 9.5, b.Centroid().X, 1e-9)

	evts := s.Events().Drain()
	require.Len(t, evts, 1)
	col, ok := evts[0].(Collided)
	require.True(t, ok)
	assert.Equal(t, collision.EffectBounce, col.Effect)
	assert.Equal(t, ha, col.A)
}

func TestDestructiveRemovesBothExactlyOnce(t *testing.T) {
	s := New()
	ha, a := addRect(t, s, geom.V(0, 0), 10, 10, 1, body.Bullet{})
	hb, b := addRect(t, s, geom.V(5, 0), 10, 10, 1, body.Bullet{})
	hc, _ := addRect(t, s, geom.V(500, 0), 10, 10, 1, body.Wall{})
	require.NoError(t, s.AddCollision(collision.Destructive{}, ha, hb))
	require.NoError(t, s.AddCollision(collision.Destructive{}, hb, ha))
	require.NoError(t, s.AddCollision(collision.Destructive{}, ha, hc))

	s.Tick(0.01)

	assert.True(t, a.Removed())
	assert.True(t, b.Removed())
	assert.Equal(t, []Handle{hc}, s.Handles())
	assert.Equal(t, 0, s.CollisionCount())

	var collided, removed int
	for _, e := range s.Events().Drain() {
		switch e.(type) {
		case Collided:
			collided++
		case Removed:
			removed++
		}
	}
	assert.Equal(t, 1, collided)
	assert.Equal(t, 2, removed)
}

func TestPartialDestructiveInertAfterBulletGone(t *testing.T) {
	s := New()
	ht, tank := addRect(t, s, geom.V(0, 0), 80, 80, 100, body.Tank{})
	hb, bullet := addRect(t, s, geom.V(45, 0), 25, 10, 5, body.Bullet{})
	tank.SetHealth(10)
	require.NoError(t, s.AddCollision(collision.PartialDestructive{Damage: 10}, ht, hb))

	s.Tick(0.01)
	assert.LessOrEqual(t, tank.Health(), 0.0)
	assert.True(t, bullet.Removed())
	assert.True(t, tank.Collided())
	_, ok := s.Body(hb)
	assert.False(t, ok)
	assert.Equal(t, 0, s.CollisionCount())

	s.Tick(0.01)
	assert.Equal(t, 0.0, tank.Health())
	_, ok = s.Body(ht)
	assert.True(t, ok, "the core never removes a tank for low health")
}

func TestMutationDuringTick(t *testing.T) {
	s := New()
	ha, _ := addRect(t, s, geom.V(0, 0), 10, 10, 1, body.Tank{})
	hb, _ := addRect(t, s, geom.V(5, 0), 10, 10, 1, body.Tank{})
	hc, c := addRect(t, s, geom.V(500, 0), 10, 10, 1, body.Wall{})

	var addErr, bindErr, removeErr error
	policy := collision.PolicyFunc(func(a, b *body.Body, o collision.Overlap) collision.Effect {
		extra, _ := body.New(geom.Rect(geom.Zero, 1, 1), 1, body.Color{}, body.Wall{})
		_, addErr = s.AddBody(extra)
		bindErr = s.AddCollision(collision.Destructive{}, ha, hc)
		removeErr = s.RemoveBody(hc)
		return collision.EffectCustom
	})
	require.NoError(t, s.AddCollision(policy, ha, hb))

	s.Tick(0.01)

	assert.ErrorIs(t, addErr, ErrTickInProgress)
	assert.ErrorIs(t, bindErr, ErrTickInProgress)
	assert.NoError(t, removeErr)
	assert.True(t, c.Removed())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.CollisionCount())

	_, err := s.AddBody(func() *body.Body {
		b, _ := body.New(geom.Rect(geom.Zero, 1, 1), 1, body.Color{}, body.Wall{})
		return b
	}())
	assert.NoError(t, err, "mutation allowed again after the tick")
}

func TestRemovedBodyIsNotIntegrated(t *testing.T) {
	s := New()
	h, b := addRect(t, s, geom.Zero, 2, 2, 1, body.Bullet{})
	b.SetVelocity(geom.V(100, 0))
	before := b.Centroid()
	require.NoError(t, s.RemoveBody(h))
	s.Tick(1)
	assert.Equal(t, before, b.Centroid())
}

func TestForceBindingPrunedWithOperand(t *testing.T) {
	s := New()
	ha, _ := addRect(t, s, geom.V(0, 0), 2, 2, 1, body.Tank{})
	hb, _ := addRect(t, s, geom.V(10, 0), 2, 2, 1, body.Tank{})
	require.NoError(t, s.AddForce(forces.Spring{K: 1}, ha, hb))
	require.NoError(t, s.AddForce(forces.Drag{Gamma: 0.1}, ha))
	require.Equal(t, 2, s.ForceCount())

	require.NoError(t, s.RemoveBody(hb))
	s.Tick(0.01)
	assert.Equal(t, 1, s.ForceCount())
}

func TestBulletAgainstWallTunnelingIsBounded(t *testing.T) {
	const (
		dt    = 1.0 / 60
		speed = 250.0
		wallX = 100.0
	)
	s := New()
	left, _ := addRect(t, s, geom.V(-10, 0), 20, 400, body.Immovable, body.Wall{})
	right, _ := addRect(t, s, geom.V(wallX+10, 0), 20, 400, body.Immovable, body.Wall{})
	// front edge two units short of the wall: it reaches the wall this frame
	hb, bullet := addRect(t, s, geom.V(wallX-2-12.5, 0), 25, 10, 5, body.Bullet{})
	bullet.SetVelocity(geom.V(speed, 0))
	require.NoError(t, s.AddCollision(collision.Physics{Elasticity: 1}, hb, left))
	require.NoError(t, s.AddCollision(collision.Physics{Elasticity: 1}, hb, right))

	for i := 0; i < 10; i++ {
		s.Tick(dt)
		front := geom.Bounds(bullet.Vertices()).R
		assert.LessOrEqual(t, front, wallX+dt*speed, "tick %d", i)
	}
	assert.Less(t, bullet.Velocity().X, 0.0, "bullet bounced off the wall")
	assert.InDelta(t, speed, bullet.Velocity().Length(), 1e-9)
}

func TestRenderablesAndStatus(t *testing.T) {
	s := New()
	ha, a := addRect(t, s, geom.Zero, 2, 2, 1, body.Tank{Player: 1})
	hb, _ := addRect(t, s, geom.V(10, 0), 2, 2, 1, body.Wall{})
	a.SetHealth(42)
	require.NoError(t, s.RemoveBody(hb))

	rs := s.Renderables()
	require.Len(t, rs, 1)
	assert.Equal(t, ha, rs[0].Handle)
	assert.Equal(t, body.TagTank, rs[0].Tag)
	assert.Equal(t, body.Color{R: 1}, rs[0].Color)
	rs[0].Polygon[0] = geom.V(999, 999)
	assert.NotEqual(t, geom.V(999, 999), a.Vertices()[0])

	st, ok := s.Status(ha)
	require.True(t, ok)
	assert.Equal(t, Status{Health: 42}, st)
	st, ok = s.Status(hb)
	require.True(t, ok)
	assert.True(t, st.Removed)

	s.Tick(0)
	_, ok = s.Status(hb)
	assert.False(t, ok)
}

func TestEventsLastOneTick(t *testing.T) {
	s := New()
	h, _ := addRect(t, s, geom.Zero, 2, 2, 1, body.Bullet{})
	require.NoError(t, s.RemoveBody(h))
	s.Tick(0)
	assert.Equal(t, 1, s.Events().Len())
	s.Tick(0)
	assert.Equal(t, 0, s.Events().Len())
	assert.Nil(t, s.Events().Drain())
}

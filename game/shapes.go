package game

import (
	"math"

	"github.com/milk9111/tankbattle/common"
	"github.com/milk9111/tankbattle/config"
	"github.com/milk9111/tankbattle/geom"
)

const heartSegments = 18

// bulletShape returns a bullet lying along the shooter's heading, its back
// edge spawnOffset past the front of the tank.
func bulletShape(cfg config.Config, centroid geom.Vector, rotation float64) geom.Polygon {
	back := cfg.Tank.Side/2 + cfg.Bullet.SpawnOffset
	hw := cfg.Bullet.Width / 2
	shape := geom.RectCorners(
		geom.V(centroid.X+back, centroid.Y-hw),
		geom.V(centroid.X+back+cfg.Bullet.Length, centroid.Y+hw),
	)
	geom.Rotate(shape, rotation, centroid)
	return shape
}

// heartShape returns a heart of the given size whose lobes meet at center
// and whose tip is size below it.
func heartShape(center geom.Vector, size float64) geom.Polygon {
	r := size / 2
	right := geom.Arc(geom.V(center.X+r, center.Y), r, 0, math.Pi, heartSegments)
	left := geom.Arc(geom.V(center.X-r, center.Y), r, 0, math.Pi, heartSegments)

	shape := make(geom.Polygon, 0, len(right)+len(left))
	shape = append(shape, geom.V(center.X, center.Y-size))
	shape = append(shape, right...)
	// the lobes share the point at center
	shape = append(shape, left[1:]...)
	return shape
}

// healthFraction maps health onto [0, 1] of the bar.
func healthFraction(health, max float64) float64 {
	return common.Clamp(health/max, 0, 1)
}

// healthBarShape returns player's bar filled to frac. Player 1's bar grows
// from the top-left corner, player 2's from the top-right.
func healthBarShape(cfg config.Config, player Player, frac float64) geom.Polygon {
	hb := cfg.HealthBar
	top := cfg.Arena.Height - hb.OffsetY
	bottom := top - hb.Height
	if player == Player1 {
		left := hb.OffsetX
		right := common.Lerp(left, left+hb.Width, frac)
		return geom.RectCorners(geom.V(left, bottom), geom.V(right, top))
	}
	right := cfg.Arena.Width - hb.OffsetX
	left := common.Lerp(right, right-hb.Width, frac)
	return geom.RectCorners(geom.V(left, bottom), geom.V(right, top))
}

func heartCenter(cfg config.Config, player Player) geom.Vector {
	y := cfg.Arena.Height - cfg.HealthBar.OffsetY - cfg.HealthBar.HeartSize/2
	if player == Player1 {
		return geom.V(cfg.HealthBar.OffsetX, y)
	}
	return geom.V(cfg.Arena.Width-cfg.HealthBar.OffsetX, y)
}

func triangle(center geom.Vector, size float64) geom.Polygon {
	h := size * math.Sqrt(3) / 2
	return geom.Polygon{
		geom.V(center.X-size/2, center.Y-h/3),
		geom.V(center.X+size/2, center.Y-h/3),
		geom.V(center.X, center.Y+2*h/3),
	}
}

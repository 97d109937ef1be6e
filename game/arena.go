package game

import (
	"github.com/milk9111/tankbattle/body"
	"github.com/milk9111/tankbattle/config"
	"github.com/milk9111/tankbattle/geom"
)

type obstacleSpec struct {
	shape body.ObstacleShape
	// position as a fraction of the arena
	fx, fy float64
	w, h   float64
}

var obstacles = []obstacleSpec{
	{shape: body.ObstacleRectangle, fx: 0.5, fy: 0.5, w: 120, h: 240},
	{shape: body.ObstacleRectangle, fx: 0.25, fy: 0.25, w: 160, h: 60},
	{shape: body.ObstacleRectangle, fx: 0.75, fy: 0.75, w: 160, h: 60},
	{shape: body.ObstacleTriangle, fx: 0.5, fy: 0.2, w: 120},
	{shape: body.ObstacleTriangle, fx: 0.5, fy: 0.8, w: 120},
}

// arenaBodies builds the immovable walls around the arena and the
// obstacles inside it.
func arenaBodies(cfg config.Config) ([]*body.Body, error) {
	w, h, t := cfg.Arena.Width, cfg.Arena.Height, cfg.Arena.WallThickness
	walls := []geom.Polygon{
		geom.RectCorners(geom.V(0, 0), geom.V(w, t)),
		geom.RectCorners(geom.V(0, h-t), geom.V(w, h)),
		geom.RectCorners(geom.V(0, t), geom.V(t, h-t)),
		geom.RectCorners(geom.V(w-t, t), geom.V(w, h-t)),
	}

	out := make([]*body.Body, 0, len(walls)+len(obstacles))
	for _, shape := range walls {
		b, err := body.New(shape, body.Immovable, cfg.Colors.Wall.Color, body.Wall{})
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	for _, o := range obstacles {
		center := geom.V(o.fx*w, o.fy*h)
		var shape geom.Polygon
		switch o.shape {
		case body.ObstacleTriangle:
			shape = triangle(center, o.w)
		default:
			shape = geom.Rect(center, o.w, o.h)
		}
		b, err := body.New(shape, body.Immovable, cfg.Colors.Obstacle.Color, body.Obstacle{Shape: o.shape})
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func startPosition(cfg config.Config, player Player) geom.Vector {
	if player == Player1 {
		return geom.V(cfg.Arena.Width/6, cfg.Arena.Height*0.7)
	}
	return geom.V(cfg.Arena.Width*5/6, cfg.Arena.Height*0.45)
}

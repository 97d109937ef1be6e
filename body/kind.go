package body

import "github.com/milk9111/tankbattle/ai"

// Tag is the small-integer type tag handed to renderers and game logic.
type Tag int

const (
	TagWall              Tag = 0
	TagBullet            Tag = 1
	TagTank              Tag = 2
	TagRectangleObstacle Tag = 3
	TagTriangleObstacle  Tag = 4
	TagHealthBar         Tag = 5
)

func (t Tag) String() string {
	switch t {
	case TagWall:
		return "wall"
	case TagBullet:
		return "bullet"
	case TagTank:
		return "tank"
	case TagRectangleObstacle:
		return "rectangle_obstacle"
	case TagTriangleObstacle:
		return "triangle_obstacle"
	case TagHealthBar:
		return "health_bar"
	default:
		return "unknown"
	}
}

// Kind is the closed set of body kinds. Switch on the concrete type to read
// per-kind data.
type Kind interface {
	Tag() Tag
	isKind()
}

type Wall struct{}

// Bullet is a projectile. QuadrantAware selects atan2 when the bullet's
// rotation is re-derived from its velocity; the legacy heading uses
// atan(vy/vx), which cannot tell a bullet flying left from one flying right.
type Bullet struct {
	Shooter       int
	QuadrantAware bool
}

type TankVariant int

const (
	TankDefault TankVariant = iota
)

// Tank is a player or AI tank. Brain is nil for human-driven tanks.
type Tank struct {
	Variant TankVariant
	Player  int
	Brain   *ai.Machine
}

type HealthBar struct {
	Player int
}

type ObstacleShape int

const (
	ObstacleRectangle ObstacleShape = iota
	ObstacleTriangle
)

type Obstacle struct {
	Shape ObstacleShape
}

func (Wall) Tag() Tag      { return TagWall }
func (Bullet) Tag() Tag    { return TagBullet }
func (Tank) Tag() Tag      { return TagTank }
func (HealthBar) Tag() Tag { return TagHealthBar }

func (o Obstacle) Tag() Tag {
	if o.Shape == ObstacleTriangle {
		return TagTriangleObstacle
	}
	return TagRectangleObstacle
}

func (Wall) isKind()      {}
func (Bullet) isKind()    {}
func (Tank) isKind()      {}
func (HealthBar) isKind() {}
func (Obstacle) isKind()  {}

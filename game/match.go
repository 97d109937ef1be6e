// Package game wires the physics core into a two-tank match: it builds the
// arena, turns player actions into body mutations, spawns bullets with
// their collision bindings and decides when the match is over.
package game

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/milk9111/tankbattle/ai"
	"github.com/milk9111/tankbattle/body"
	"github.com/milk9111/tankbattle/collision"
	"github.com/milk9111/tankbattle/common"
	"github.com/milk9111/tankbattle/config"
	"github.com/milk9111/tankbattle/forces"
	"github.com/milk9111/tankbattle/geom"
	"github.com/milk9111/tankbattle/scene"
)

var (
	ErrUnknownPlayer = errors.New("game: unknown player")
	ErrUnknownAction = errors.New("game: unknown action")
	ErrMatchOver     = errors.New("game: match is over")
)

type Player int

const (
	Player1 Player = iota
	Player2
)

var players = [...]Player{Player1, Player2}

func (p Player) String() string {
	switch p {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return fmt.Sprintf("player(%d)", int(p))
	}
}

func (p Player) valid() bool {
	return p == Player1 || p == Player2
}

func (p Player) opponent() Player {
	return 1 - p
}

type Action int

const (
	ActionForward Action = iota
	ActionBackward
	ActionTurnLeft
	ActionTurnRight
	ActionFire
)

type KeyState int

const (
	Pressed KeyState = iota
	Released
)

// Outcome is the result of a match.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomePlayer1
	OutcomePlayer2
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlayer1:
		return "player1"
	case OutcomePlayer2:
		return "player2"
	case OutcomeDraw:
		return "draw"
	default:
		return "none"
	}
}

// aimTolerance is how far off target an aiming AI may be and still fire.
const aimTolerance = 0.05

type Option func(*Match)

func WithLogger(l *slog.Logger) Option {
	return func(m *Match) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithBrain hands player's tank to an AI running table. A nil table uses
// the built-in one.
func WithBrain(p Player, table *ai.Table) Option {
	return func(m *Match) {
		if p.valid() {
			m.brains[p] = ai.NewMachine(table)
		}
	}
}

// Match is one game between two tanks.
type Match struct {
	cfg    config.Config
	scene  *scene.Scene
	logger *slog.Logger

	tanks  [2]scene.Handle
	bars   [2]scene.Handle
	hearts [2]scene.Handle
	arena  []scene.Handle

	bullets      []scene.Handle
	bulletDrag   forces.Law
	bulletScript forces.Law
	brains       [2]*ai.Machine

	elapsed float64
	ticks   int
	hits    [2]int
	fired   [2]int
	outcome Outcome
}

// NewMatch lays out a match: bodies 0 and 1 are the tanks, 2 and 3 their
// health bars, 4 and 5 their hearts, then the arena walls and obstacles.
func NewMatch(cfg config.Config, opts ...Option) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Match{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.scene = scene.New(scene.WithLogger(m.logger))

	if cfg.Bullet.Drag > 0 {
		m.bulletDrag = forces.Drag{Gamma: cfg.Bullet.Drag}
	}
	if cfg.Bullet.ForceScript != "" {
		script, err := forces.NewScript([]byte(cfg.Bullet.ForceScript), forces.WithScriptLogger(m.logger))
		if err != nil {
			return nil, fmt.Errorf("game: bullet force script: %w", err)
		}
		m.bulletScript = script
	}

	for _, p := range players {
		h, err := m.addTank(p)
		if err != nil {
			return nil, err
		}
		m.tanks[p] = h
	}
	for _, p := range players {
		shape := healthBarShape(cfg, p, 1)
		h, err := m.addStatic(shape, m.playerColor(p), body.HealthBar{Player: int(p)})
		if err != nil {
			return nil, err
		}
		m.bars[p] = h
	}
	for _, p := range players {
		shape := heartShape(heartCenter(cfg, p), cfg.HealthBar.HeartSize)
		h, err := m.addStatic(shape, m.dimColor(p), body.HealthBar{Player: int(p)})
		if err != nil {
			return nil, err
		}
		m.hearts[p] = h
	}

	walls, err := arenaBodies(cfg)
	if err != nil {
		return nil, err
	}
	for _, b := range walls {
		h, err := m.scene.AddBody(b)
		if err != nil {
			return nil, err
		}
		m.arena = append(m.arena, h)
	}

	tankContact := collision.Physics{Elasticity: cfg.Tank.Elasticity}
	for _, t := range m.tanks {
		for _, a := range m.arena {
			if err := m.scene.AddCollision(tankContact, t, a); err != nil {
				return nil, err
			}
		}
	}
	if err := m.scene.AddCollision(tankContact, m.tanks[Player1], m.tanks[Player2]); err != nil {
		return nil, err
	}

	m.logger.Debug("match created", "bodies", m.scene.Len(), "collisions", m.scene.CollisionCount())
	return m, nil
}

func (m *Match) addTank(p Player) (scene.Handle, error) {
	shape := geom.Rect(startPosition(m.cfg, p), m.cfg.Tank.Side, m.cfg.Tank.Side)
	kind := body.Tank{Variant: body.TankDefault, Player: int(p), Brain: m.brains[p]}
	b, err := body.New(shape, m.cfg.Tank.Mass, m.playerColor(p), kind)
	if err != nil {
		return 0, err
	}
	b.SetHealth(m.cfg.Tank.MaxHealth)
	b.SetTimer(0)
	if p == Player2 {
		b.SetRotation(math.Pi)
	}
	return m.scene.AddBody(b)
}

func (m *Match) addStatic(shape geom.Polygon, color body.Color, kind body.Kind) (scene.Handle, error) {
	b, err := body.New(shape, body.Immovable, color, kind)
	if err != nil {
		return 0, err
	}
	return m.scene.AddBody(b)
}

func (m *Match) playerColor(p Player) body.Color {
	if p == Player1 {
		return m.cfg.Colors.Player1.Color
	}
	return m.cfg.Colors.Player2.Color
}

func (m *Match) dimColor(p Player) body.Color {
	if p == Player1 {
		return m.cfg.Colors.Player1Dim.Color
	}
	return m.cfg.Colors.Player2Dim.Color
}

// Tank returns player's tank body.
func (m *Match) Tank(p Player) *body.Body {
	if !p.valid() {
		return nil
	}
	b, _ := m.scene.Body(m.tanks[p])
	return b
}

// Scene exposes the underlying scene.
func (m *Match) Scene() *scene.Scene {
	return m.scene
}

func (m *Match) Config() config.Config {
	return m.cfg
}

// Input applies one discrete key event for player.
func (m *Match) Input(p Player, action Action, state KeyState) error {
	if !p.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPlayer, int(p))
	}
	if m.Over() {
		return ErrMatchOver
	}
	tank := m.Tank(p)

	switch action {
	case ActionForward, ActionBackward:
		if state == Released {
			tank.SetVelocity(geom.Zero)
			tank.SetMagnitude(0)
			return nil
		}
		speed := m.cfg.Tank.Speed
		if action == ActionBackward {
			speed = -speed
		}
		tank.SetMagnitude(speed)
	case ActionTurnLeft, ActionTurnRight:
		if state == Released {
			tank.SetRotationSpeed(0)
			return nil
		}
		w := m.cfg.Tank.RotationSpeed
		if action == ActionTurnRight {
			w = -w
		}
		tank.SetRotationSpeed(w)
	case ActionFire:
		if state == Pressed {
			_, err := m.fire(p)
			return err
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownAction, int(action))
	}
	return nil
}

// fire spawns a bullet from p's tank if it has reloaded.
func (m *Match) fire(p Player) (bool, error) {
	tank := m.Tank(p)
	if tank.Timer() <= m.cfg.ReloadTime {
		return false, nil
	}
	tank.SetTimer(0)

	rot := tank.Rotation()
	shape := bulletShape(m.cfg, tank.Centroid(), rot)
	kind := body.Bullet{Shooter: int(p), QuadrantAware: m.cfg.Bullet.QuadrantAware}
	b, err := body.New(shape, m.cfg.Bullet.Mass, m.playerColor(p), kind)
	if err != nil {
		return false, err
	}
	b.OverrideRotation(rot)
	b.SetVelocity(geom.Heading(rot).Mult(m.cfg.Bullet.Speed))
	b.SetTimer(0)

	h, err := m.scene.AddBody(b)
	if err != nil {
		return false, err
	}
	if err := m.bindBullet(h); err != nil {
		return false, err
	}
	m.bullets = append(m.bullets, h)
	m.fired[p]++
	m.logger.Debug("bullet fired", "player", p, "handle", h)
	return true, nil
}

func (m *Match) bindBullet(h scene.Handle) error {
	hit := collision.PartialDestructive{Damage: m.cfg.Bullet.Damage}
	for _, t := range m.tanks {
		if err := m.scene.AddCollision(hit, t, h); err != nil {
			return err
		}
	}
	for _, other := range m.bullets {
		if b, ok := m.scene.Body(other); !ok || b.Removed() {
			continue
		}
		if err := m.scene.AddCollision(collision.Destructive{}, other, h); err != nil {
			return err
		}
	}
	bounce := collision.Physics{Elasticity: m.cfg.Bullet.Elasticity}
	for _, a := range m.arena {
		if err := m.scene.AddCollision(bounce, h, a); err != nil {
			return err
		}
	}
	if m.bulletDrag != nil {
		if err := m.scene.AddForce(m.bulletDrag, h); err != nil {
			return err
		}
	}
	if m.bulletScript != nil {
		if err := m.scene.AddForce(m.bulletScript, h); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the match by dt seconds. dt is clamped to
// [0, MaxFrameDT]. It does nothing once the match is over.
func (m *Match) Step(dt float64) {
	if m.Over() {
		return
	}
	if math.IsNaN(dt) {
		dt = 0
	}
	dt = common.Clamp(dt, 0, m.cfg.MaxFrameDT)
	m.elapsed += dt
	m.ticks++

	for _, t := range m.tanks {
		if b, ok := m.scene.Body(t); ok {
			b.AddTimer(dt)
		}
	}
	m.ageBullets(dt)
	for _, p := range players {
		m.think(p, dt)
	}

	m.scene.Tick(dt)

	for _, evt := range m.scene.Events().Drain() {
		c, ok := evt.(scene.Collided)
		if !ok || c.Effect != collision.EffectDamage {
			continue
		}
		for _, p := range players {
			if c.A == m.tanks[p] {
				m.hits[p]++
			}
		}
	}
	for _, p := range players {
		m.updateHealthBar(p)
	}
	m.decide()
}

func (m *Match) ageBullets(dt float64) {
	live := m.bullets[:0]
	for _, h := range m.bullets {
		b, ok := m.scene.Body(h)
		if !ok || b.Removed() {
			continue
		}
		b.AddTimer(dt)
		if b.Timer() > m.cfg.Bullet.Lifetime {
			b.Remove()
			continue
		}
		live = append(live, h)
	}
	clear(m.bullets[len(live):])
	m.bullets = live
}

// think runs p's brain, if any, and applies its command to the tank.
func (m *Match) think(p Player, dt float64) {
	tank := m.Tank(p)
	kind, _ := tank.Kind().(body.Tank)
	brain := kind.Brain
	if brain == nil {
		return
	}
	cmd := brain.Update(dt, tank.ConsumeCollided())

	tank.SetMagnitude(cmd.Drive * m.cfg.Tank.Speed)
	if cmd.Drive == 0 {
		tank.SetVelocity(geom.Zero)
	}

	maxTurn := m.cfg.Tank.RotationSpeed
	if !cmd.AimAtTarget {
		tank.SetRotationSpeed(cmd.Turn * maxTurn)
		return
	}

	target := m.Tank(p.opponent()).Centroid().Sub(tank.Centroid())
	off := common.WrapAngle(math.Atan2(target.Y, target.X) - tank.Rotation())
	turn := 0.0
	if dt > 0 {
		turn = common.Clamp(off/dt, -maxTurn, maxTurn)
	}
	tank.SetRotationSpeed(turn)
	if cmd.Fire && math.Abs(off) < aimTolerance {
		if _, err := m.fire(p); err != nil {
			m.logger.Error("ai fire", "player", p, "err", err)
		}
	}
}

func (m *Match) updateHealthBar(p Player) {
	bar, ok := m.scene.Body(m.bars[p])
	if !ok || bar.Removed() {
		return
	}
	frac := healthFraction(m.Tank(p).Health(), m.cfg.Tank.MaxHealth)
	if frac <= 0 {
		bar.Remove()
		return
	}
	if err := bar.SetShape(healthBarShape(m.cfg, p, frac)); err != nil {
		m.logger.Error("health bar", "player", p, "err", err)
	}
}

func (m *Match) decide() {
	dead1 := !m.Tank(Player1).Alive()
	dead2 := !m.Tank(Player2).Alive()
	switch {
	case dead1 && dead2:
		m.outcome = OutcomeDraw
	case dead1:
		m.outcome = OutcomePlayer2
	case dead2:
		m.outcome = OutcomePlayer1
	default:
		return
	}
	m.logger.Info("match over",
		"outcome", m.outcome,
		"elapsed", m.elapsed,
		"ticks", m.ticks,
		"hits_taken1", m.hits[Player1],
		"hits_taken2", m.hits[Player2],
	)
}

// Outcome returns the result so far.
func (m *Match) Outcome() Outcome {
	return m.outcome
}

// Winner returns the winning player. ok is false while the match runs and
// on a draw.
func (m *Match) Winner() (Player, bool) {
	switch m.outcome {
	case OutcomePlayer1:
		return Player1, true
	case OutcomePlayer2:
		return Player2, true
	default:
		return 0, false
	}
}

func (m *Match) Over() bool {
	return m.outcome != OutcomeNone
}

// Elapsed returns the simulated seconds.
func (m *Match) Elapsed() float64 {
	return m.elapsed
}

func (m *Match) Ticks() int {
	return m.ticks
}

// HitsTaken returns how many bullets have struck p's tank.
func (m *Match) HitsTaken(p Player) int {
	if !p.valid() {
		return 0
	}
	return m.hits[p]
}

// Fired returns how many bullets p has fired.
func (m *Match) Fired(p Player) int {
	if !p.valid() {
		return 0
	}
	return m.fired[p]
}

// Bullets returns the number of bullets in flight.
func (m *Match) Bullets() int {
	n := 0
	for _, h := range m.bullets {
		if b, ok := m.scene.Body(h); ok && !b.Removed() {
			n++
		}
	}
	return n
}

// Renderables returns what to draw this frame.
func (m *Match) Renderables() []scene.Renderable {
	return m.scene.Renderables()
}

// Status returns player's tank health and flags.
func (m *Match) Status(p Player) (scene.Status, bool) {
	if !p.valid() {
		return scene.Status{}, false
	}
	return m.scene.Status(m.tanks[p])
}

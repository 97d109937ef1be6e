package forces

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/tankbattle/body"
	"github.com/milk9111/tankbattle/geom"
)

var scriptInputs = []string{"mass", "px", "py", "vx", "vy", "rotation", "health"}

// Script is a law written in tengo. For each operand the script sees the
// globals mass, px, py, vx, vy, rotation and health, and assigns fx and fy:
//
//	fx = -0.5 * vx
//	fy = -0.5 * vy
//
// Immovable operands are skipped. A failing run is logged and adds no force.
type Script struct {
	compiled *tengo.Compiled
	logger   *slog.Logger
}

type ScriptOption func(*Script)

func WithScriptLogger(l *slog.Logger) ScriptOption {
	return func(s *Script) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScript compiles src once; Apply re-runs the compiled program.
func NewScript(src []byte, opts ...ScriptOption) (*Script, error) {
	script := tengo.NewScript(src)
	for _, name := range scriptInputs {
		if err := script.Add(name, 0.0); err != nil {
			return nil, fmt.Errorf("forces: script input %s: %w", name, err)
		}
	}
	_ = script.Add("fx", 0.0)
	_ = script.Add("fy", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("forces: compile script: %w", err)
	}
	s := &Script{
		compiled: compiled,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (*Script) Arity() int { return Variadic }

func (s *Script) Apply(bodies []*body.Body) {
	if s == nil || s.compiled == nil {
		return
	}
	for _, b := range bodies {
		if b.IsImmovable() {
			continue
		}
		fx, fy, err := s.eval(b)
		if err != nil {
			s.logger.Debug("force script failed", "err", err)
			continue
		}
		b.AddForce(geom.V(fx, fy))
	}
}

func (s *Script) eval(b *body.Body) (float64, float64, error) {
	c, v := b.Centroid(), b.Velocity()
	values := map[string]float64{
		"mass":     b.Mass(),
		"px":       c.X,
		"py":       c.Y,
		"vx":       v.X,
		"vy":       v.Y,
		"rotation": b.Rotation(),
		"health":   b.Health(),
		"fx":       0,
		"fy":       0,
	}
	for name, val := range values {
		if !s.compiled.IsDefined(name) {
			continue
		}
		if err := s.compiled.Set(name, val); err != nil {
			return 0, 0, err
		}
	}
	if err := s.compiled.Run(); err != nil {
		return 0, 0, err
	}
	return s.compiled.Get("fx").Float(), s.compiled.Get("fy").Float(), nil
}

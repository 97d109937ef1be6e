// Package config holds the tuning values of a match. A Config is a plain
// value: it is loaded once, validated and then passed by value into the
// match, so nothing in the simulation reads process-wide state.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrInvalid = errors.New("config: invalid value")

type ArenaConfig struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	WallThickness float64 `yaml:"wall_thickness"`
}

type TankConfig struct {
	Side          float64 `yaml:"side"`
	Mass          float64 `yaml:"mass"`
	Speed         float64 `yaml:"speed"`
	RotationSpeed float64 `yaml:"rotation_speed"`
	MaxHealth     float64 `yaml:"max_health"`
	// Elasticity of tank contacts with walls and obstacles.
	Elasticity float64 `yaml:"elasticity"`
}

type BulletConfig struct {
	Length      float64 `yaml:"length"`
	Width       float64 `yaml:"width"`
	Mass        float64 `yaml:"mass"`
	Speed       float64 `yaml:"speed"`
	Lifetime    float64 `yaml:"lifetime"`
	Damage      float64 `yaml:"damage"`
	Drag        float64 `yaml:"drag"`
	Elasticity  float64 `yaml:"elasticity"`
	SpawnOffset float64 `yaml:"spawn_offset"`
	// QuadrantAware derives the bullet heading with atan2 instead of atan.
	QuadrantAware bool `yaml:"quadrant_aware"`
	// ForceScript is optional tengo source applied to every bullet as an
	// extra force law. It reads mass, px, py, vx, vy, rotation, health and
	// sets fx, fy.
	ForceScript string `yaml:"force_script"`
}

type HealthBarConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	OffsetX   float64 `yaml:"offset_x"`
	OffsetY   float64 `yaml:"offset_y"`
	HeartSize float64 `yaml:"heart_size"`
}

type ColorConfig struct {
	Player1    Color `yaml:"player1"`
	Player1Dim Color `yaml:"player1_dim"`
	Player2    Color `yaml:"player2"`
	Player2Dim Color `yaml:"player2_dim"`
	Wall       Color `yaml:"wall"`
	Obstacle   Color `yaml:"obstacle"`
}

type Config struct {
	Arena      ArenaConfig     `yaml:"arena"`
	Tank       TankConfig      `yaml:"tank"`
	Bullet     BulletConfig    `yaml:"bullet"`
	HealthBar  HealthBarConfig `yaml:"health_bar"`
	ReloadTime float64         `yaml:"reload_time"`
	MaxFrameDT float64         `yaml:"max_frame_dt"`
	Colors     ColorConfig     `yaml:"colors"`
}

var (
	defaultOnce sync.Once
	defaultCfg  Config
	defaultErr  error
)

// Default returns the embedded configuration.
func Default() Config {
	defaultOnce.Do(func() {
		defaultErr = decode(defaultYAML, &defaultCfg)
		if defaultErr == nil {
			defaultErr = defaultCfg.Validate()
		}
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("config: embedded default.yaml: %v", defaultErr))
	}
	return defaultCfg
}

// Parse overlays data on the defaults. Keys missing from data keep their
// default value; unknown keys are an error.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := decode(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads path and overlays it on the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: unmarshal: %w", err)
	}
	return nil
}

// Validate reports every value outside its allowed range.
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v: %w", name, v, ErrInvalid))
		}
	}
	nonNegative := func(name string, v float64) {
		if !(v >= 0) {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %v: %w", name, v, ErrInvalid))
		}
	}

	positive("arena.width", c.Arena.Width)
	positive("arena.height", c.Arena.Height)
	positive("arena.wall_thickness", c.Arena.WallThickness)

	positive("tank.side", c.Tank.Side)
	positive("tank.mass", c.Tank.Mass)
	nonNegative("tank.speed", c.Tank.Speed)
	nonNegative("tank.rotation_speed", c.Tank.RotationSpeed)
	positive("tank.max_health", c.Tank.MaxHealth)
	nonNegative("tank.elasticity", c.Tank.Elasticity)

	positive("bullet.length", c.Bullet.Length)
	positive("bullet.width", c.Bullet.Width)
	positive("bullet.mass", c.Bullet.Mass)
	positive("bullet.speed", c.Bullet.Speed)
	positive("bullet.lifetime", c.Bullet.Lifetime)
	nonNegative("bullet.damage", c.Bullet.Damage)
	nonNegative("bullet.drag", c.Bullet.Drag)
	nonNegative("bullet.elasticity", c.Bullet.Elasticity)
	nonNegative("bullet.spawn_offset", c.Bullet.SpawnOffset)

	positive("health_bar.width", c.HealthBar.Width)
	positive("health_bar.height", c.HealthBar.Height)
	positive("health_bar.heart_size", c.HealthBar.HeartSize)

	nonNegative("reload_time", c.ReloadTime)
	positive("max_frame_dt", c.MaxFrameDT)

	if c.Arena.Width <= 2*c.Arena.WallThickness+2*c.Tank.Side ||
		c.Arena.Height <= 2*c.Arena.WallThickness+2*c.Tank.Side {
		errs = append(errs, fmt.Errorf("arena too small for two tanks: %w", ErrInvalid))
	}
	return errors.Join(errs...)
}

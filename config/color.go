package config

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/tankbattle/body"
)

// Color is a body fill color written in YAML as an SVG color name
// ("crimson") or as "#rrggbb".
type Color struct {
	body.Color
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = parsed
	return nil
}

// ParseColor resolves a color name or "#rrggbb" to channels in [0, 1].
func ParseColor(s string) (body.Color, error) {
	s = strings.TrimSpace(s)
	if named, ok := colornames.Map[strings.ToLower(s)]; ok {
		return rgb(named.R, named.G, named.B), nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return body.Color{}, fmt.Errorf("invalid color: %q", s)
	}
	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(hex[start:start+2], 16, 8)
		return uint8(v), err
	}
	r, err := parse(0)
	if err != nil {
		return body.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	g, err := parse(2)
	if err != nil {
		return body.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	b, err := parse(4)
	if err != nil {
		return body.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return rgb(r, g, b), nil
}

func rgb(r, g, b uint8) body.Color {
	return body.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Package scene loads lighting scenes from JSON data files: grid geometry,
// wall layout, light sources and display settings.
package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"chosenoffset.com/gridlight/internal/grid"
	"chosenoffset.com/gridlight/internal/light"
	"chosenoffset.com/gridlight/internal/tonemap"
)

// Config holds one scene definition.
type Config struct {
	// Grid geometry
	Width  int `json:"width"`
	Height int `json:"height"`

	// Decay rates
	BaseDecay float32 `json:"base_decay"` // empty cells
	WallDecay float32 `json:"wall_decay"` // wall cells

	// Wall cells (also added to the wall mask)
	Walls []Cell `json:"walls"`

	// Light sources
	Lights []LightConfig `json:"lights"`

	// Display settings
	Normalization string  `json:"normalization"` // standard, brightness-limit, perceptual
	NormLimit     float32 `json:"norm_limit"`
	WallMinimum   float32 `json:"wall_minimum"`
	Scale         int     `json:"scale"` // viewer/export pixels per cell
}

// Cell is a grid coordinate in scene data.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LightConfig defines one light in scene data.
type LightConfig struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Color     string  `json:"color"` // hex RRGGBB
	Intensity float32 `json:"intensity"`
	DecayRate float32 `json:"decay_rate"`
}

// DefaultConfig returns the scene used when no file is given: a 100x100
// grid with light haze, a warm torch in the center and a modest wall floor.
func DefaultConfig() *Config {
	return &Config{
		Width:         100,
		Height:        100,
		BaseDecay:     0.1,
		WallDecay:     0.6,
		Normalization: "perceptual",
		NormLimit:     1.0,
		WallMinimum:   0.12,
		Scale:         8,
		Lights: []LightConfig{
			{ID: "torch", X: 50, Y: 50, Color: "ffcc66", Intensity: 1.0, DecayRate: 1.0},
		},
	}
}

// LoadConfig loads a scene from a JSON file. A missing file yields the
// default scene; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read scene config: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse scene config: %w", err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: scene grid %dx%d", grid.ErrInvalidDimensions, config.Width, config.Height)
	}
	return config, nil
}

// BuildGrids constructs the decay grid and wall mask for the scene.
func (c *Config) BuildGrids() (*grid.Grid, *grid.WallMask, error) {
	decay, err := grid.New(c.Width, c.Height)
	if err != nil {
		return nil, nil, err
	}
	decay.Fill(c.BaseDecay)

	walls := grid.NewWallMask(c.Width, c.Height)
	for _, w := range c.Walls {
		if !decay.InBounds(w.X, w.Y) {
			return nil, nil, fmt.Errorf("%w: wall (%d, %d) outside %dx%d scene",
				grid.ErrOutOfBounds, w.X, w.Y, c.Width, c.Height)
		}
		decay.Set(w.X, w.Y, c.WallDecay)
		walls.Set(w.X, w.Y, true)
	}
	return decay, walls, nil
}

// Sources parses the scene's lights into light sources.
func (c *Config) Sources() ([]light.Source, error) {
	out := make([]light.Source, 0, len(c.Lights))
	for i, lc := range c.Lights {
		color, err := light.ParseHexColor(lc.Color)
		if err != nil {
			return nil, fmt.Errorf("light %d (%s): %w", i, lc.ID, err)
		}
		rate := lc.DecayRate
		if rate == 0 {
			rate = 1
		}
		out = append(out, light.Source{
			X: lc.X, Y: lc.Y,
			Color:     color,
			Intensity: lc.Intensity,
			DecayRate: rate,
		})
	}
	return out, nil
}

// Normalizer builds the configured normalizer.
func (c *Config) Normalizer() (*tonemap.Normalizer, error) {
	var mode tonemap.Mode
	switch c.Normalization {
	case "", "standard":
		mode = tonemap.Standard
	case "brightness-limit":
		mode = tonemap.BrightnessLimit
	case "perceptual":
		mode = tonemap.Perceptual
	default:
		return nil, fmt.Errorf("unknown normalization mode %q", c.Normalization)
	}

	n := tonemap.New(mode)
	if c.NormLimit > 0 {
		n.Limit = c.NormLimit
	}
	n.WallMinimum = c.WallMinimum
	return n, nil
}

// Package grid provides the uniform one-dimensional grid that physics modules
// lay their fields over.
package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/san-kum/turbosim/internal/dynamo"
)

// Config is the Grid section of a simulation file. Either N or Dr sets the
// resolution; N wins when both are present.
type Config struct {
	N    int     `yaml:"N"`
	RMin float64 `yaml:"r_min"`
	RMax float64 `yaml:"r_max"`
	Dr   float64 `yaml:"dr,omitempty"`
}

// Grid is a set of N evenly spaced points on [RMin, RMax].
type Grid struct {
	N    int
	RMin float64
	RMax float64

	r []float64
}

func New(cfg Config) (*Grid, error) {
	if cfg.RMax <= cfg.RMin {
		return nil, fmt.Errorf("%w: grid r_max (%g) must exceed r_min (%g)", dynamo.ErrInvalidConfig, cfg.RMax, cfg.RMin)
	}

	n := cfg.N
	if n == 0 && cfg.Dr > 0 {
		n = int(math.Round((cfg.RMax-cfg.RMin)/cfg.Dr)) + 1
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: grid needs at least 2 points, got %d", dynamo.ErrInvalidConfig, n)
	}

	g := &Grid{
		N:    n,
		RMin: cfg.RMin,
		RMax: cfg.RMax,
		r:    dynamo.Linspace(cfg.RMin, cfg.RMax, n).Data(),
	}
	return g, nil
}

func (g *Grid) Len() int { return g.N }

// Coordinates returns the point positions. Callers must not modify them.
func (g *Grid) Coordinates() []float64 { return g.r }

// GenerateField returns a zeroed field with one value per grid point.
func (g *Grid) GenerateField() *dynamo.Array {
	return dynamo.NewArray(g.N)
}

// CreateInterpolator returns a function that linearly interpolates a field
// defined on this grid at position. Positions outside the grid take the
// nearest end value. Fields of the wrong length yield NaN.
func (g *Grid) CreateInterpolator(position float64) dynamo.Interpolator {
	var pl interp.PiecewiseLinear
	return func(field []float64) float64 {
		if len(field) != g.N {
			return math.NaN()
		}
		if err := pl.Fit(g.r, field); err != nil {
			return math.NaN()
		}
		return pl.Predict(position)
	}
}

// Contains reports whether position lies within [RMin, RMax].
func (g *Grid) Contains(position float64) bool {
	return position >= g.RMin && position <= g.RMax
}

// Package generate builds random treasure grids from a seed.
package generate

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/wricardo/treasure-path/game/grid"
)

// ErrInvalidParams indicates negative placement counts.
var ErrInvalidParams = errors.New("generate: invalid parameters")

// Params controls random placement. A zero Seed picks a fresh one.
type Params struct {
	Seed      uint64 `json:"seed,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Obstacles int    `json:"obstacles"`
	Rewards   int    `json:"rewards"`
	Hazards   int    `json:"hazards"`
}

// DefaultParams returns a 20x20 board with 40 obstacles, 10 rewards and 10 hazards.
func DefaultParams() Params {
	return Params{
		Width:     20,
		Height:    20,
		Obstacles: 40,
		Rewards:   10,
		Hazards:   10,
	}
}

// Board is a generated grid with its endpoints
type Board struct {
	Grid  *grid.Grid
	Start grid.Coordinate
	Goal  grid.Coordinate
	Seed  uint64
}

// Generate places obstacles, then rewards, then hazards at random coordinates.
// Draws land with replacement, so a reward or hazard drawn onto a cell that is
// already special is dropped. Start is the top-left corner, goal the bottom-right,
// and both are forced open.
func Generate(p Params) (*Board, error) {
	if p.Obstacles < 0 || p.Rewards < 0 || p.Hazards < 0 {
		return nil, fmt.Errorf("%w: negative counts %d/%d/%d", ErrInvalidParams, p.Obstacles, p.Rewards, p.Hazards)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", grid.ErrInvalidDimensions, p.Width, p.Height)
	}

	seed := p.Seed
	if seed == 0 {
		seed = rand.Uint64() | 1
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	draw := func(n int) []grid.Coordinate {
		out := make([]grid.Coordinate, n)
		for i := range out {
			out[i] = grid.Coordinate{X: rng.IntN(p.Width), Y: rng.IntN(p.Height)}
		}
		return out
	}

	placement := grid.Placement{
		Obstacles: draw(p.Obstacles),
		Rewards:   draw(p.Rewards),
		Hazards:   draw(p.Hazards),
	}
	g, err := grid.New(p.Width, p.Height, placement)
	if err != nil {
		return nil, err
	}

	start := grid.Coordinate{X: 0, Y: 0}
	goal := grid.Coordinate{X: p.Width - 1, Y: p.Height - 1}
	if err := g.Normalize(start, goal); err != nil {
		return nil, err
	}

	return &Board{Grid: g, Start: start, Goal: goal, Seed: seed}, nil
}

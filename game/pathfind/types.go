package pathfind

import (
	"errors"

	"github.com/wricardo/treasure-path/game/grid"
)

var (
	// ErrUnreachable indicates the goal was never reached from the start.
	ErrUnreachable = errors.New("pathfind: goal is unreachable from start")
	// ErrSearchLimit indicates the search exceeded its iteration bound.
	ErrSearchLimit = errors.New("pathfind: search iteration limit exceeded")
	// ErrNegativeCost indicates a cost function returned a negative step cost.
	ErrNegativeCost = errors.New("pathfind: negative traversal cost")
)

// Terrain is the read-only view of a grid the search needs. *grid.Grid satisfies it.
type Terrain interface {
	Width() int
	Height() int
	InBounds(c grid.Coordinate) bool
	At(c grid.Coordinate) (grid.CellKind, error)
	Neighbors(c grid.Coordinate) []grid.Coordinate
	TraversalCost(c grid.Coordinate) (int, error)
}

// CostFunc returns the cost of entering c, or grid.ErrImpassable.
type CostFunc func(t Terrain, c grid.Coordinate) (int, error)

// UniformCost charges the grid's own traversal cost: 1 for every passable cell.
func UniformCost(t Terrain, c grid.Coordinate) (int, error) {
	return t.TraversalCost(c)
}

// HazardAverse charges penalty extra on hazard cells so routes prefer to avoid them.
func HazardAverse(penalty int) CostFunc {
	return func(t Terrain, c grid.Coordinate) (int, error) {
		cost, err := t.TraversalCost(c)
		if err != nil {
			return 0, err
		}
		kind, err := t.At(c)
		if err != nil {
			return 0, err
		}
		if kind == grid.Hazard {
			cost += penalty
		}
		return cost, nil
	}
}

// Predecessors maps each discovered coordinate to the one it was reached from.
// The start coordinate is recorded as its own predecessor.
type Predecessors map[grid.Coordinate]grid.Coordinate

// Result contains the outcome of Find
type Result struct {
	Path     grid.Path `json:"path"`
	Cost     int       `json:"cost"`
	Expanded int       `json:"expanded"`
}

// Options defines parameters for the search.
type Options struct {
	Cost          CostFunc
	MaxIterations int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithCost replaces the step cost function.
func WithCost(cost CostFunc) Option {
	return func(o *Options) { o.Cost = cost }
}

// WithMaxIterations overrides the frontier pop bound (default width*height*4).
func WithMaxIterations(n int) Option {
	return func(o *Options) { o.MaxIterations = n }
}

// Stats reports what a single search did.
type Stats struct {
	Expanded int
	Pops     int
	Cost     int
	Found    bool
}

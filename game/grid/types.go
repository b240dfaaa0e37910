package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds indicates a coordinate outside [0,width)×[0,height).
	ErrOutOfBounds = errors.New("grid: coordinate out of bounds")
	// ErrImpassable indicates a cell that has no finite traversal cost.
	ErrImpassable = errors.New("grid: cell is impassable")
	// ErrInvalidDimensions indicates a non-positive width or height.
	ErrInvalidDimensions = errors.New("grid: width and height must be positive")
	// ErrInvalidLayout indicates a malformed layout (ragged rows or unknown characters).
	ErrInvalidLayout = errors.New("grid: invalid layout")
)

// CellKind represents the content of a single grid cell
type CellKind string

const (
	Open     CellKind = "open"
	Obstacle CellKind = "obstacle"
	Reward   CellKind = "reward"
	Hazard   CellKind = "hazard"
	Visited  CellKind = "visited"
)

// Layout characters for each cell kind
const (
	OpenChar     = '.'
	ObstacleChar = '#'
	RewardChar   = 'G'
	HazardChar   = 'H'
	VisitedChar  = 'v'
)

// Char returns the layout character for the kind
func (k CellKind) Char() byte {
	switch k {
	case Obstacle:
		return ObstacleChar
	case Reward:
		return RewardChar
	case Hazard:
		return HazardChar
	case Visited:
		return VisitedChar
	default:
		return OpenChar
	}
}

// KindFromChar maps a layout character to its cell kind
func KindFromChar(c byte) (CellKind, bool) {
	switch c {
	case OpenChar:
		return Open, true
	case ObstacleChar:
		return Obstacle, true
	case RewardChar:
		return Reward, true
	case HazardChar:
		return Hazard, true
	case VisitedChar:
		return Visited, true
	}
	return "", false
}

// Coordinate represents x,y grid coordinates
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String formats the coordinate as (x,y)
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add offsets the coordinate by dx, dy
func (c Coordinate) Add(dx, dy int) Coordinate {
	return Coordinate{X: c.X + dx, Y: c.Y + dy}
}

// Manhattan returns the Manhattan distance between two coordinates
func Manhattan(a, b Coordinate) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Adjacent reports whether two coordinates are one axis-aligned unit step apart
func Adjacent(a, b Coordinate) bool {
	return Manhattan(a, b) == 1
}

// Path is an ordered sequence of coordinates from start to goal inclusive
type Path []Coordinate

// Steps returns the number of moves along the path
func (p Path) Steps() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Placement lists special cells for grid construction.
// Precedence is obstacle > reward > hazard > open.
type Placement struct {
	Obstacles []Coordinate `json:"obstacles,omitempty"`
	Rewards   []Coordinate `json:"rewards,omitempty"`
	Hazards   []Coordinate `json:"hazards,omitempty"`
}

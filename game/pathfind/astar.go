package pathfind

import (
	"errors"
	"fmt"

	"github.com/wricardo/treasure-path/game/grid"
)

// Search runs A* from start to goal and returns the predecessor map it built.
// An unreachable goal is not an error here; it shows up as the goal missing from
// the map, which ReconstructPath reports as ErrUnreachable.
func Search(t Terrain, start, goal grid.Coordinate, opts ...Option) (Predecessors, error) {
	pred, _, err := search(t, start, goal, opts...)
	return pred, err
}

// Find plans a route from start to goal. It fails with ErrUnreachable when no route exists.
func Find(t Terrain, start, goal grid.Coordinate, opts ...Option) (*Result, error) {
	pred, stats, err := search(t, start, goal, opts...)
	if err != nil {
		return nil, err
	}

	path, err := ReconstructPath(pred, start, goal)
	if err != nil {
		return nil, err
	}

	return &Result{
		Path:     path,
		Cost:     stats.Cost,
		Expanded: stats.Expanded,
	}, nil
}

func search(t Terrain, start, goal grid.Coordinate, opts ...Option) (Predecessors, Stats, error) {
	// --- Apply options ---
	cfg := Options{
		Cost:          UniformCost,
		MaxIterations: t.Width() * t.Height() * 4,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var stats Stats
	if !t.InBounds(start) {
		return nil, stats, fmt.Errorf("start %s: %w", start, grid.ErrOutOfBounds)
	}
	if !t.InBounds(goal) {
		return nil, stats, fmt.Errorf("goal %s: %w", goal, grid.ErrOutOfBounds)
	}

	// --- Initialize state ---
	pred := Predecessors{start: start}
	costSoFar := map[grid.Coordinate]int{start: 0}
	open := &frontier{}
	open.push(start, 0, grid.Manhattan(start, goal))

	for !open.empty() {
		if stats.Pops >= cfg.MaxIterations {
			return pred, stats, fmt.Errorf("%w: %d pops", ErrSearchLimit, stats.Pops)
		}
		current := open.pop()
		stats.Pops++

		// A cheaper entry for this node was pushed after this one
		if current.cost > costSoFar[current.node] {
			continue
		}

		if current.node == goal {
			stats.Found = true
			stats.Cost = current.cost
			return pred, stats, nil
		}
		stats.Expanded++

		for _, next := range t.Neighbors(current.node) {
			step, err := cfg.Cost(t, next)
			if errors.Is(err, grid.ErrImpassable) {
				continue
			}
			if err != nil {
				return pred, stats, err
			}
			if step < 0 {
				return pred, stats, fmt.Errorf("%w: %d at %s", ErrNegativeCost, step, next)
			}

			newCost := current.cost + step
			if known, seen := costSoFar[next]; !seen || newCost < known {
				costSoFar[next] = newCost
				pred[next] = current.node
				open.push(next, newCost, newCost+grid.Manhattan(next, goal))
			}
		}
	}

	return pred, stats, nil
}

// ReconstructPath walks predecessor links from goal back to start.
// start == goal yields a single-element path without consulting the map.
func ReconstructPath(pred Predecessors, start, goal grid.Coordinate) (grid.Path, error) {
	if start == goal {
		return grid.Path{start}, nil
	}
	if _, ok := pred[goal]; !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnreachable, start, goal)
	}

	path := grid.Path{goal}
	current := goal
	for current != start {
		previous, ok := pred[current]
		if !ok || previous == current || len(path) > len(pred) {
			return nil, fmt.Errorf("%w: broken predecessor chain at %s", ErrUnreachable, current)
		}
		path = append(path, previous)
		current = previous
	}

	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

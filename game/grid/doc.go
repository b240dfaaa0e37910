// Package grid provides the cost grid that routes are planned over and replayed on.
//
// A Grid is a fixed-size 2D array of cell kinds:
//   - Open cells are free to cross
//   - Obstacle cells are impassable
//   - Reward cells hold gold that is collected when stepped on
//   - Hazard cells deal damage when stepped on
//   - Visited cells mark where a replay has already been
//
// The grid answers bounds-checked cell queries, exposes the 4-neighbourhood of a
// coordinate, and reports the traversal cost used by the path finder. It carries no
// knowledge of player stats: the effects of rewards and hazards are applied by the
// traversal package during replay.
//
// Layout Format:
//
// Grids can be written as rows of characters, one per cell:
//
//	.  open
//	#  obstacle
//	G  reward (gold)
//	H  hazard
//	v  visited
//
// Usage:
//
//	g, err := grid.New(20, 20, grid.Placement{
//		Obstacles: []grid.Coordinate{{X: 3, Y: 4}},
//		Rewards:   []grid.Coordinate{{X: 5, Y: 5}},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	cost, err := g.TraversalCost(grid.Coordinate{X: 5, Y: 5})
package grid

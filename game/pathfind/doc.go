// Package pathfind computes least-cost routes over a grid.Grid with A*.
//
// Search expands the frontier in order of cost-so-far plus Manhattan distance to the
// goal, which is admissible and consistent for 4-directional unit-cost movement, so the
// first time the goal is popped its cost is optimal. Equal priorities pop in insertion
// order, which makes the chosen route deterministic when several shortest routes exist.
//
// Search returns a predecessor map; ReconstructPath walks it back from the goal.
// Find combines both and reports the route cost and the number of expanded nodes.
//
// Complexity:
//
//   - Time:  O(N log N) for N cells, with lazy duplicate frontier entries
//   - Space: O(N) for cost and predecessor maps
//
// Cost Policy:
//
// The default cost function charges 1 for every passable cell, so reward and hazard
// cells are as cheap as open ones and their effects are paid only during replay.
// HazardAverse adds a penalty on hazard cells so routes steer around them when a
// detour of at most that many extra steps exists.
package pathfind

// Package traversal replays a planned route over a grid, applying each cell's effect
// to the player in path order.
//
// A Session processes one node per Step: it inspects the cell, applies the reward or
// hazard effect, marks the cell visited, and stops for good once health drops to zero
// or below. Nodes after that step are never inspected or mutated. Replay drives a
// Session to completion and returns the final Report.
//
// Route costs live in package pathfind; this package only owns gameplay effects.
package traversal

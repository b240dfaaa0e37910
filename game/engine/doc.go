// Package engine runs a single treasure-path game: it builds a board from a
// Scenario, plans the least-cost route with package pathfind, and replays that
// route node by node with package traversal.
//
// Core Types:
//
// Scenario is the JSON description of a board (a fixed layout or seeded random
// placement) and its rules. GameEngine owns the pristine board, the planned
// route, and a replay session over a working copy of the board. GameState is
// the JSON view handed to transports.
//
// Usage:
//
//	scenario, err := engine.LoadScenario("scenarios/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(scenario)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	events, err := gameEngine.Run()
//	report := gameEngine.GetReport()
//
// Game Rules:
//
// The player starts with 100 health and no gold and follows the planned route
// from start to goal. Gold cells add one gold, hazard cells take ten health, and
// every stepped cell becomes visited. The game ends at the goal, or earlier as
// soon as health reaches zero. A goal walled off by obstacles ends the game
// before the first step.
package engine

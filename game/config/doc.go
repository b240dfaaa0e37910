// Package config loads treasure-path scenarios from a directory of JSON files.
//
// Each file holds one engine.Scenario, named by its file name without the .json
// extension. A scenario either spells out its board as layout rows ('.' open,
// '#' obstacle, 'G' gold, 'H' hazard) or asks for seeded random placement:
//
//	{
//	  "name": "Classic",
//	  "description": "Random 20x20 board",
//	  "random": {"seed": 42, "width": 20, "height": 20, "obstacles": 40, "rewards": 10, "hazards": 10},
//	  "cost_policy": "uniform"
//	}
//
// Loaded scenarios are cached. The default scenario is classic.json when present,
// otherwise the first valid file, otherwise a built-in random board.
//
// Usage:
//
//	manager, err := config.NewManager("scenarios", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	scenario, err := manager.LoadScenario("classic")
//	scenarios, err := manager.ListScenarios()
package config

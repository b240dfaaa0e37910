// Command validate provides a small CLI that validates scenario JSON
// files in the ../scenarios directory (or the directory given as the first argument). It checks:
//   - JSON structure, rejecting unknown fields
//   - Scenario rules (layout or random board, endpoints, health and cost settings)
//   - Connectivity: the goal is reachable from the start via passable cells
//   - Agreement between the flood fill and the route planner
//   - Whether the planned route is survivable
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/treasure-path/game/engine"
	"github.com/wricardo/treasure-path/game/grid"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateScenario loads and validates a single scenario file.
func validateScenario(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var scenario engine.Scenario
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&scenario); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateScenario(&scenario); err != nil {
		result.fail("%v", err)
		return result
	}

	board, err := scenario.BuildGrid()
	if err != nil {
		result.fail("Failed to build grid: %v", err)
		return result
	}

	// A scenario with a no_route message is unreachable on purpose
	reachable := floodFill(board.Grid, board.Start)
	goalReachable := reachable[board.Goal]
	if !goalReachable && scenario.Messages.NoRoute == "" {
		result.fail("Connectivity failure: goal %s unreachable from start %s", board.Goal, board.Start)
	}

	rewards, stranded := 0, 0
	for y := 0; y < board.Grid.Height(); y++ {
		for x := 0; x < board.Grid.Width(); x++ {
			c := grid.Coordinate{X: x, Y: y}
			if kind, _ := board.Grid.At(c); kind == grid.Reward {
				rewards++
				if !reachable[c] {
					stranded++
				}
			}
		}
	}

	eng, err := engine.NewEngine(&scenario)
	if err != nil {
		result.fail("Failed to create engine: %v", err)
		return result
	}
	plan, planErr := eng.Plan()
	if (planErr == nil) != goalReachable {
		result.fail("Route planner disagrees with connectivity check (planner error: %v)", planErr)
	}
	if !result.Valid {
		return result
	}

	result.info("Name: %s", scenario.Name)
	result.info("Grid: %dx%d", board.Grid.Width(), board.Grid.Height())
	result.info("Start %s, goal %s", board.Start, board.Goal)
	result.info("Obstacles: %d, gold: %d, hazards: %d",
		board.Grid.Count(grid.Obstacle), rewards, board.Grid.Count(grid.Hazard))
	if !goalReachable {
		result.info("Connectivity: goal unreachable, no_route message set")
		return result
	}
	result.info("Connectivity: goal reachable, %d/%d gold cells reachable", rewards-stranded, rewards)

	summary := eng.GetRouteSummary()
	health := engine.ProjectedHealth(summary, &scenario)
	result.info("Route: %d steps, cost %d, %d gold, %d hazards", summary.Steps, plan.Cost, summary.Rewards, summary.Hazards)
	if health <= 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("⚠ Planned route is lethal (projected health %d)", health))
	} else {
		result.info("Projected health: %d", health)
	}

	return result
}

// floodFill returns every cell reachable from start with 4-directional
// movement over passable cells.
func floodFill(g *grid.Grid, start grid.Coordinate) map[grid.Coordinate]bool {
	visited := make(map[grid.Coordinate]bool)
	if _, err := g.TraversalCost(start); err != nil {
		return visited
	}

	queue := []grid.Coordinate{start}
	visited[start] = true
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range g.Neighbors(current) {
			if visited[next] {
				continue
			}
			if _, err := g.TraversalCost(next); errors.Is(err, grid.ErrImpassable) {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return visited
}

// main scans the scenarios directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	scenarioDir := "../scenarios"
	if len(os.Args) > 1 {
		scenarioDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(scenarioDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No scenario files found in %s\n", scenarioDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateScenario(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All scenarios are valid!")
	} else {
		fmt.Println("❌ Some scenarios have errors")
		os.Exit(1)
	}
}

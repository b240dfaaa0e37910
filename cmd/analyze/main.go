// Command analyze prints quick, human-readable reports about the scenario
// files in the scenarios directory. For each scenario it builds the board,
// plans the route under both cost policies, and replays the scenario's own
// route to show the outcome a session would reach.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/treasure-path/game/engine"
	"github.com/wricardo/treasure-path/game/grid"
)

// Analysis is the summary printed for one scenario
type Analysis struct {
	File      string
	Scenario  *engine.Scenario
	Width     int
	Height    int
	Seed      uint64
	Obstacles int
	Rewards   int
	Hazards   int
	Start     grid.Coordinate
	Goal      grid.Coordinate
	Reachable bool

	// Route under the scenario's own cost policy
	Cost      int
	Expanded  int
	Summary   engine.RouteSummary
	Projected int
	State     *engine.GameState

	// Route under the other policy, for comparison
	AltPolicy  string
	AltCost    int
	AltSummary engine.RouteSummary
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "report reachability, route cost and replay outcome for scenario files",
		ArgsUsage: "[scenario.json ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "scenarios",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("SCENARIOS_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = scenarioFiles(cmd.String("dir"))
				if err != nil {
					return err
				}
			}

			failed := 0
			for _, file := range files {
				fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
				a, err := analyzeScenario(file)
				if err != nil {
					fmt.Printf("Error: %v\n", err)
					failed++
					continue
				}
				printAnalysis(os.Stdout, a)
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d scenarios failed to load", failed, len(files)), 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func scenarioFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

func analyzeScenario(path string) (*Analysis, error) {
	scenario, err := engine.LoadScenario(path)
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewEngine(scenario)
	if err != nil {
		return nil, err
	}

	// Count cells before the replay marks them visited
	state := eng.GetState()
	a := &Analysis{
		File:      filepath.Base(path),
		Scenario:  eng.GetScenario(),
		Width:     state.Width,
		Height:    state.Height,
		Seed:      state.Seed,
		Obstacles: engine.CountCellKind(state.Grid, grid.Obstacle),
		Rewards:   engine.CountCellKind(state.Grid, grid.Reward),
		Hazards:   engine.CountCellKind(state.Grid, grid.Hazard),
		Start:     state.Start,
		Goal:      state.Goal,
		Reachable: state.Reachable,
	}
	if !a.Reachable {
		a.State = state
		return a, nil
	}

	plan, _ := eng.Plan()
	a.Cost = plan.Cost
	a.Expanded = plan.Expanded
	a.Summary = eng.GetRouteSummary()
	a.Projected = engine.ProjectedHealth(a.Summary, a.Scenario)

	if _, err := eng.Run(); err != nil {
		return nil, err
	}
	a.State = eng.GetState()

	// Compare against the other cost policy on the same board
	alt := a.Scenario.Clone()
	if alt.CostPolicy == engine.CostPolicyHazardAverse {
		alt.CostPolicy = engine.CostPolicyUniform
	} else {
		alt.CostPolicy = engine.CostPolicyHazardAverse
	}
	altEng, err := engine.NewEngine(alt)
	if err != nil {
		return nil, err
	}
	if altPlan, err := altEng.Plan(); err == nil {
		a.AltPolicy = alt.CostPolicy
		a.AltCost = altPlan.Cost
		a.AltSummary = altEng.GetRouteSummary()
	}

	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	policy := a.Scenario.CostPolicy
	if policy == "" {
		policy = engine.CostPolicyUniform
	}
	rules := a.Scenario.Rules()

	fmt.Fprintf(w, "Name: %s\n", a.Scenario.Name)
	fmt.Fprintf(w, "Grid: %d x %d", a.Width, a.Height)
	if a.Scenario.Random != nil {
		fmt.Fprintf(w, " (random, seed %d)", a.Seed)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Obstacles: %d  Gold: %d  Hazards: %d\n", a.Obstacles, a.Rewards, a.Hazards)
	fmt.Fprintf(w, "Start: %s  Goal: %s\n", a.Start, a.Goal)
	fmt.Fprintf(w, "Rules: health %d, hazard -%d, gold +%d, policy %s\n",
		rules.StartingHealth, rules.HazardDamage, rules.RewardGold, policy)

	if !a.Reachable {
		fmt.Fprintf(w, "⚠️  CRITICAL: goal %s is unreachable from %s\n", a.Goal, a.Start)
		return
	}

	fmt.Fprintf(w, "Route: %d steps, cost %d, %d nodes expanded\n", a.Summary.Steps, a.Cost, a.Expanded)
	fmt.Fprintf(w, "On route: %d gold, %d hazards (projected health %d)\n", a.Summary.Rewards, a.Summary.Hazards, a.Projected)
	if a.AltPolicy != "" {
		fmt.Fprintf(w, "Under %s: %d steps, cost %d, %d gold, %d hazards\n",
			a.AltPolicy, a.AltSummary.Steps, a.AltCost, a.AltSummary.Rewards, a.AltSummary.Hazards)
	}

	switch {
	case a.State.ReachedGoal:
		fmt.Fprintf(w, "✅ Replay reaches the goal with %d health and %d gold\n", a.State.Health, a.State.Gold)
	case a.State.TerminatedEarly:
		fmt.Fprintf(w, "⚠️  WARNING: replay dies after %d of %d nodes with %d gold\n",
			a.State.StepIndex, len(a.State.Path), a.State.Gold)
	}

	fmt.Fprintln(w, strings.Join(a.State.Grid, "\n"))
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/treasure-path/game/config"
	"github.com/wricardo/treasure-path/game/engine"
)

func runCommand(app *application) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "plan a route and replay it step by step in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scenario", Usage: "scenario name in the scenarios directory (default scenario when empty)"},
			&cli.StringFlag{Name: "file", Usage: "load the scenario from a JSON file instead"},
			&cli.IntFlag{Name: "seed", Usage: "seed for random scenarios (0 keeps the scenario's own)"},
			&cli.StringFlag{Name: "cost-policy", Usage: "override the cost policy: uniform or hazard_averse"},
			&cli.IntFlag{Name: "hazard-penalty", Usage: "extra search cost per hazard under hazard_averse"},
			&cli.DurationFlag{Name: "delay", Value: 200 * time.Millisecond, Usage: "pause between replay steps"},
		},
		Action: app.runScenario,
	}
}

func (app *application) runScenario(ctx context.Context, cmd *cli.Command) error {
	scenario, err := loadRunScenario(cmd.String("file"), cmd.String("scenarios-dir"), cmd.String("scenario"))
	if err != nil {
		return err
	}

	if seed := cmd.Int("seed"); seed != 0 {
		if scenario.Random == nil {
			return fmt.Errorf("--seed only applies to random scenarios; %q has a fixed layout", scenario.Name)
		}
		scenario.Random.Seed = uint64(seed)
	}
	if policy := cmd.String("cost-policy"); policy != "" {
		scenario.CostPolicy = policy
	}
	if penalty := cmd.Int("hazard-penalty"); penalty != 0 {
		scenario.HazardPenalty = penalty
	}

	return replay(ctx, os.Stdout, scenario, cmd.Duration("delay"))
}

// loadRunScenario reads a scenario file, or a named scenario from dir
func loadRunScenario(file, dir, name string) (*engine.Scenario, error) {
	if file != "" {
		return engine.LoadScenario(file)
	}

	scenarios, err := config.NewManager(dir, nil)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return scenarios.GetDefault().Clone(), nil
	}
	scenario, err := scenarios.LoadScenario(name)
	if err != nil {
		return nil, err
	}
	// The manager caches scenarios; flags must not leak into the cache
	return scenario.Clone(), nil
}

// replay plans the scenario and prints the board after every step
func replay(ctx context.Context, w io.Writer, scenario *engine.Scenario, delay time.Duration) error {
	eng, err := engine.NewEngine(scenario)
	if err != nil {
		return err
	}

	state := eng.GetState()
	fmt.Fprintf(w, "%s (%dx%d)", state.ScenarioName, state.Width, state.Height)
	if state.Seed != 0 {
		fmt.Fprintf(w, " seed %d", state.Seed)
	}
	fmt.Fprintln(w)
	if state.Message != "" {
		fmt.Fprintln(w, state.Message)
	}
	renderBoard(w, state)

	if !state.Reachable {
		return nil
	}

	summary := eng.GetRouteSummary()
	fmt.Fprintf(w, "Route: %d steps, cost %d, %d gold and %d hazards on the way\n\n",
		summary.Steps, state.PlanCost, summary.Rewards, summary.Hazards)

	for !eng.IsGameOver() {
		event, err := eng.Step()
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "#%d %s health=%d gold=%d", event.Index, event.Position, event.Player.Health, event.Player.Gold)
		if event.Message != "" {
			fmt.Fprintf(w, " %s", event.Message)
		}
		fmt.Fprintln(w)
		renderBoard(w, eng.GetState())

		if delay > 0 && !eng.IsGameOver() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	report := eng.GetReport()
	switch {
	case report.ReachedGoal:
		fmt.Fprintf(w, "Reached the goal with %d health and %d gold.\n", report.Player.Health, report.Player.Gold)
	case report.TerminatedEarly:
		fmt.Fprintf(w, "Ran out of health after %d of %d nodes with %d gold.\n", report.StepsTaken, report.PathLength, report.Player.Gold)
	}
	return nil
}

// renderBoard prints the grid rows with the player's position marked '*'
func renderBoard(w io.Writer, state *engine.GameState) {
	for y, row := range state.Grid {
		if y == state.Position.Y && state.Position.X < len(row) {
			b := []byte(row)
			b[state.Position.X] = '*'
			row = string(b)
		}
		fmt.Fprintln(w, row)
	}
	fmt.Fprintln(w)
}

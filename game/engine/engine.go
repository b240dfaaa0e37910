package engine

import (
	"errors"
	"fmt"

	"github.com/wricardo/treasure-path/game/generate"
	"github.com/wricardo/treasure-path/game/grid"
	"github.com/wricardo/treasure-path/game/pathfind"
	"github.com/wricardo/treasure-path/game/traversal"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state
	GetState() *GameState
	Reset() *GameState
	IsGameOver() bool
	GetReport() traversal.Report

	// Route replay
	Step() (*traversal.StepEvent, error)
	Run() ([]traversal.StepEvent, error)

	// Planning
	Plan() (*pathfind.Result, error)
	GetRouteSummary() RouteSummary

	// Configuration
	GetScenario() *Scenario
}

// GameEngine implements the Engine interface
type GameEngine struct {
	scenario *Scenario
	rules    traversal.Rules
	board    *generate.Board

	plan    *pathfind.Result
	planErr error

	grid    *grid.Grid
	session *traversal.Session
	state   *GameState
}

// NewEngine builds the scenario board, plans the route and prepares a replay.
// An unreachable goal does not fail construction; the game starts already over.
func NewEngine(scenario *Scenario) (*GameEngine, error) {
	if err := ValidateScenario(scenario); err != nil {
		return nil, err
	}

	sc := scenario.Clone()
	board, err := sc.BuildGrid()
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	// Pin the seed so that resets rebuild the same board
	if sc.Random != nil {
		sc.Random.Seed = board.Seed
	}

	e := &GameEngine{
		scenario: sc,
		rules:    sc.Rules(),
		board:    board,
	}

	e.plan, e.planErr = pathfind.Find(board.Grid, board.Start, board.Goal, pathfind.WithCost(sc.CostFunc()))
	if e.planErr != nil && !errors.Is(e.planErr, pathfind.ErrUnreachable) {
		return nil, fmt.Errorf("plan route: %w", e.planErr)
	}

	e.init()
	return e, nil
}

// NewEngineWithDefaults creates an engine over a freshly generated random board
func NewEngineWithDefaults() (*GameEngine, error) {
	return NewEngine(DefaultScenario())
}

// init opens a replay on a fresh copy of the board
func (e *GameEngine) init() {
	e.grid = e.board.Grid.Clone()

	var path grid.Path
	if e.plan != nil {
		path = e.plan.Path
	}
	e.session = traversal.NewSession(e.grid, path, e.rules)

	e.state = &GameState{
		ScenarioName:   e.scenario.Name,
		Grid:           e.grid.Rows(),
		Width:          e.grid.Width(),
		Height:         e.grid.Height(),
		Start:          e.board.Start,
		Goal:           e.board.Goal,
		Seed:           e.board.Seed,
		Path:           path,
		Reachable:      e.plan != nil,
		Position:       e.board.Start,
		Health:         e.rules.StartingHealth,
		StartingHealth: e.rules.StartingHealth,
		Message:        e.scenario.Messages.Welcome,
		History:        []HistoryEntry{},
	}

	if e.plan != nil {
		e.state.PlanCost = e.plan.Cost
		e.state.Expanded = e.plan.Expanded
		return
	}

	e.state.GameOver = true
	e.state.Message = e.scenario.Messages.NoRoute
	if e.state.Message == "" {
		e.state.Message = fmt.Sprintf("No route from %s to %s. The goal is walled off.", e.board.Start, e.board.Goal)
	}
}

// GetState returns the live game state. It changes on every Step and Reset;
// use Snapshot to hand it to another goroutine.
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Reset replays the route from the start on a fresh copy of the board
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative totals across resets
	totalSteps := e.state.TotalSteps
	runs := e.state.Runs

	e.init()

	e.state.TotalSteps = totalSteps
	e.state.Runs = runs
	return e.state
}

// IsGameOver returns whether the replay has finished
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// GetReport returns the replay outcome so far
func (e *GameEngine) GetReport() traversal.Report {
	return e.session.Report()
}

// Step advances the replay by one route node
func (e *GameEngine) Step() (*traversal.StepEvent, error) {
	if e.state.GameOver {
		return nil, ErrGameOver
	}

	event, err := e.session.Step()
	if err != nil {
		return nil, err
	}
	e.applyStep(event)
	return &event, nil
}

// Run steps until the replay finishes and returns every event it produced
func (e *GameEngine) Run() ([]traversal.StepEvent, error) {
	if e.state.GameOver {
		return nil, ErrGameOver
	}

	var events []traversal.StepEvent
	for !e.state.GameOver {
		event, err := e.Step()
		if err != nil {
			return events, err
		}
		events = append(events, *event)
	}
	return events, nil
}

// Plan returns the planned route, or pathfind.ErrUnreachable
func (e *GameEngine) Plan() (*pathfind.Result, error) {
	return e.plan, e.planErr
}

// GetRouteSummary counts rewards and hazards on the planned route over the pristine board
func (e *GameEngine) GetRouteSummary() RouteSummary {
	if e.plan == nil {
		return RouteSummary{}
	}
	return SummarizeRoute(e.board.Grid, e.plan.Path)
}

// GetScenario returns the scenario the engine was built from, with any random seed pinned
func (e *GameEngine) GetScenario() *Scenario {
	return e.scenario
}

package engine

import (
	"errors"

	"github.com/wricardo/treasure-path/game/generate"
	"github.com/wricardo/treasure-path/game/grid"
)

const (
	// Validation constants
	MinGridSize          = 1
	MaxGridSize          = 100
	MaxStartingHealth    = 10000
	DefaultHazardPenalty = 10

	CostPolicyUniform      = "uniform"
	CostPolicyHazardAverse = "hazard_averse"
)

var (
	// ErrInvalidScenario wraps every scenario validation failure.
	ErrInvalidScenario = errors.New("engine: invalid scenario")
	// ErrGameOver is returned when stepping a finished game.
	ErrGameOver = errors.New("engine: game is over")
)

// Scenario describes a playable board and its rules, loaded from JSON.
// Exactly one of Layout or Random must be set.
type Scenario struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Layout      []string         `json:"layout,omitempty"`
	Random      *generate.Params `json:"random,omitempty"`
	Start       *grid.Coordinate `json:"start,omitempty"`
	Goal        *grid.Coordinate `json:"goal,omitempty"`

	// Zero starting health means the default. Damage and gold are pointers
	// so that an explicit 0 survives the round trip: nil means the default.
	StartingHealth int  `json:"starting_health,omitempty"`
	HazardDamage   *int `json:"hazard_damage,omitempty"`
	RewardGold     *int `json:"reward_gold,omitempty"`

	CostPolicy    string `json:"cost_policy,omitempty"`
	HazardPenalty int    `json:"hazard_penalty,omitempty"`

	Messages struct {
		Welcome string `json:"welcome,omitempty"`
		NoRoute string `json:"no_route,omitempty"`
	} `json:"messages"`
}

// HistoryEntry records one processed route node
type HistoryEntry struct {
	Index     int             `json:"index"`
	Position  grid.Coordinate `json:"position"`
	Cell      grid.CellKind   `json:"cell"`
	Health    int             `json:"health"`
	Gold      int             `json:"gold"`
	Message   string          `json:"message,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// GameState is the JSON view of a game in progress
type GameState struct {
	ScenarioName string          `json:"scenario_name"`
	Grid         []string        `json:"grid"`
	Width        int             `json:"width"`
	Height       int             `json:"height"`
	Start        grid.Coordinate `json:"start"`
	Goal         grid.Coordinate `json:"goal"`
	Seed         uint64          `json:"seed,omitempty"`

	Path      grid.Path       `json:"path"`
	Reachable bool            `json:"reachable"`
	PlanCost  int             `json:"plan_cost"`
	Expanded  int             `json:"expanded"`
	Position  grid.Coordinate `json:"position"`
	StepIndex int             `json:"step_index"`

	Health         int `json:"health"`
	StartingHealth int `json:"starting_health"`
	Gold           int `json:"gold"`

	Message         string `json:"message"`
	GameOver        bool   `json:"game_over"`
	ReachedGoal     bool   `json:"reached_goal"`
	TerminatedEarly bool   `json:"terminated_early"`

	// History covers the current run only; TotalSteps and Runs survive resets.
	History    []HistoryEntry `json:"history"`
	TotalSteps int            `json:"total_steps"`
	Runs       int            `json:"runs"`
}

// RouteSummary counts what a planned route passes over
type RouteSummary struct {
	Steps   int `json:"steps"`
	Rewards int `json:"rewards"`
	Hazards int `json:"hazards"`
}

package service

import (
	"time"

	"github.com/wricardo/treasure-path/game/engine"
	"github.com/wricardo/treasure-path/game/grid"
	"github.com/wricardo/treasure-path/game/traversal"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	ScenarioName   string            `json:"scenario_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
	Scenario       *engine.Scenario  `json:"scenario"`
}

// StepResult contains the result of a single replay step
type StepResult struct {
	Event     traversal.StepEvent `json:"event"`
	GameState *engine.GameState   `json:"game_state"`
	Report    traversal.Report    `json:"report"`
	RunID     string              `json:"run_id,omitempty"`
}

// RunOptions configures a multi-step replay
type RunOptions struct {
	// Reset restarts the replay from the start before stepping
	Reset bool `json:"reset"`
	// MaxSteps stops after this many steps; zero runs to the end
	MaxSteps int `json:"max_steps"`
}

// RunResult contains the result of a multi-step replay
type RunResult struct {
	StepsExecuted int                   `json:"steps_executed"`
	Events        []traversal.StepEvent `json:"events"`
	GameState     *engine.GameState     `json:"game_state"`
	Report        traversal.Report      `json:"report"`
	Truncated     bool                  `json:"truncated,omitempty"`
	RunID         string                `json:"run_id,omitempty"`
}

// HistoryOptions configures step history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated step history
type HistoryResponse struct {
	Steps       []engine.HistoryEntry `json:"steps"`
	TotalSteps  int                   `json:"total_steps"`
	Page        int                   `json:"page"`
	PageSize    int                   `json:"page_size"`
	TotalPages  int                   `json:"total_pages"`
	HasNext     bool                  `json:"has_next"`
	HasPrevious bool                  `json:"has_previous"`
}

// ScenarioInfo provides information about a scenario file
type ScenarioInfo struct {
	Filename    string `json:"filename"`
	ScenarioID  string `json:"scenario_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Random      bool   `json:"random"`
	CostPolicy  string `json:"cost_policy,omitempty"`
}

// PathRequest asks for a route without opening a session.
// Layout, when set, takes precedence over Scenario.
type PathRequest struct {
	Scenario      string           `json:"scenario,omitempty"`
	Layout        []string         `json:"layout,omitempty"`
	Start         *grid.Coordinate `json:"start,omitempty"`
	Goal          *grid.Coordinate `json:"goal,omitempty"`
	CostPolicy    string           `json:"cost_policy,omitempty"`
	HazardPenalty int              `json:"hazard_penalty,omitempty"`
}

// PathResult is a planned route and the replay it would produce
type PathResult struct {
	Scenario string              `json:"scenario"`
	Start    grid.Coordinate     `json:"start"`
	Goal     grid.Coordinate     `json:"goal"`
	Path     grid.Path           `json:"path"`
	Cost     int                 `json:"cost"`
	Expanded int                 `json:"expanded"`
	Summary  engine.RouteSummary `json:"summary"`
	Outcome  traversal.Report    `json:"outcome"`
	Grid     []string            `json:"grid"`
}

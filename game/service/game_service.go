package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/treasure-path/game/engine"
	"github.com/wricardo/treasure-path/game/results"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrScenarioNotFound     = errors.New("scenario not found")
	ErrInvalidScenarioName  = errors.New("invalid scenario name")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, scenarioName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Route replay
	Step(ctx context.Context, sessionID string) (*StepResult, error)
	Run(ctx context.Context, sessionID string, opts RunOptions) (*RunResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Scenarios
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, name string) (*engine.Scenario, error)
	SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error

	// Planning without a session
	FindPath(ctx context.Context, req PathRequest) (*PathResult, error)

	// Finished runs
	Leaderboard(ctx context.Context, scenario string, limit int) ([]results.Record, error)
	RecentRuns(ctx context.Context, limit int) ([]results.Record, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, scenario *engine.Scenario) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ScenarioManager handles scenario loading
type ScenarioManager interface {
	LoadScenario(name string) (*engine.Scenario, error)
	ListScenarios() ([]*ScenarioInfo, error)
	GetDefault() *engine.Scenario
	SaveScenario(name string, scenario *engine.Scenario) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Scenario       *engine.Scenario
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// RunID of the record saved for the current run, empty until the run finishes
	RunID string
}

package results

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRecordNotFound is returned when no record has the requested run ID.
var ErrRecordNotFound = errors.New("results: record not found")

// DefaultMaxRecent bounds how many records a store keeps. Both backends
// drop the oldest record from the recency list, the leaderboards and
// lookups once the cap is passed.
const DefaultMaxRecent = 1000

// Record is the outcome of one finished replay
type Record struct {
	RunID           string    `json:"run_id"`
	SessionID       string    `json:"session_id"`
	Scenario        string    `json:"scenario"`
	Gold            int       `json:"gold"`
	Health          int       `json:"health"`
	Steps           int       `json:"steps"`
	PlanCost        int       `json:"plan_cost"`
	ReachedGoal     bool      `json:"reached_goal"`
	TerminatedEarly bool      `json:"terminated_early"`
	FinishedAt      time.Time `json:"finished_at"`
}

// NewRecord returns a record with a fresh run ID and the current time
func NewRecord(sessionID, scenario string) Record {
	return Record{
		RunID:      uuid.NewString(),
		SessionID:  sessionID,
		Scenario:   scenario,
		FinishedAt: time.Now().UTC(),
	}
}

// Store persists finished runs
type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, runID string) (Record, error)
	// Recent returns up to n records, newest first.
	Recent(ctx context.Context, n int) ([]Record, error)
	// Leaderboard returns up to n records for a scenario in the order of better.
	Leaderboard(ctx context.Context, scenario string, n int) ([]Record, error)
	Close() error
}

// Config selects and configures the store backend
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	MaxRecent     int
}

// NewStore returns a Redis-backed store if RedisAddr is set,
// otherwise an in-process MemoryStore.
func NewStore(cfg Config) (Store, error) {
	if cfg.MaxRecent <= 0 {
		cfg.MaxRecent = DefaultMaxRecent
	}
	if cfg.RedisAddr != "" {
		return NewRedisStore(cfg)
	}
	return NewMemoryStore(cfg.MaxRecent), nil
}

// better reports whether a ranks above b on a leaderboard.
// Gold decides, then surviving health, then the earlier finish.
func better(a, b Record) bool {
	if a.Gold != b.Gold {
		return a.Gold > b.Gold
	}
	if a.Health != b.Health {
		return a.Health > b.Health
	}
	if !a.FinishedAt.Equal(b.FinishedAt) {
		return a.FinishedAt.Before(b.FinishedAt)
	}
	return a.RunID < b.RunID
}

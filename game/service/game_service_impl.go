package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wricardo/treasure-path/game/engine"
	"github.com/wricardo/treasure-path/game/pathfind"
	"github.com/wricardo/treasure-path/game/results"
	"github.com/wricardo/treasure-path/game/traversal"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	scenarios ScenarioManager
	store     results.Store
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewGameService creates a new game service instance.
// A nil store keeps results in memory; a nil logger discards logs.
func NewGameService(sessions SessionManager, scenarios ScenarioManager, store results.Store, logger *zap.Logger) GameService {
	if store == nil {
		store = results.NewMemoryStore(results.DefaultMaxRecent)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions:  sessions,
		scenarios: scenarios,
		store:     store,
		logger:    logger,
	}
}

// scenarioID returns the identifier for a scenario display name, used for consistent API responses
func (s *gameServiceImpl) scenarioID(name string) string {
	available, err := s.scenarios.ListScenarios()
	if err == nil {
		for _, info := range available {
			if info.Name == name {
				return info.ScenarioID
			}
		}
	}
	if name == "" {
		return "default"
	}
	return name
}

// sessionInfo copies a session for callers outside the lock. Callers hold s.mu for writing.
func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ScenarioName:   s.scenarioID(sess.Scenario.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Snapshot(),
		Scenario:       sess.Engine.GetScenario().Clone(),
	}
}

// loadScenario resolves a scenario by name, falling back to the default for an empty name
func (s *gameServiceImpl) loadScenario(name string) (*engine.Scenario, error) {
	if name == "" {
		return s.scenarios.GetDefault(), nil
	}

	scenario, err := s.scenarios.LoadScenario(name)
	if err == nil {
		return scenario, nil
	}
	if !errors.Is(err, ErrScenarioNotFound) {
		return nil, fmt.Errorf("failed to load scenario %s: %w", name, err)
	}

	// Provide helpful error message with available options
	available, listErr := s.scenarios.ListScenarios()
	if listErr == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, info := range available {
			ids = append(ids, info.ScenarioID)
		}
		return nil, fmt.Errorf("%w: '%s'. Available scenarios: %v", ErrScenarioNotFound, name, ids)
	}
	return nil, fmt.Errorf("%w: '%s'. Use /api/scenarios to list available scenarios", ErrScenarioNotFound, name)
}

// getSession looks up a session and touches its access time.
// Callers hold s.mu for writing since the touch races with readers of the session.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, scenarioName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenario, err := s.loadScenario(scenarioName)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("scenario", scenario.Name),
		zap.Bool("reachable", sess.Engine.GetState().Reachable),
	)

	info := s.sessionInfo(sess)
	if scenarioName != "" {
		info.ScenarioName = scenarioName
	}
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

// Step processes the next node of a session's route
func (s *gameServiceImpl) Step(ctx context.Context, sessionID string) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	event, err := sess.Engine.Step()
	if err != nil {
		return nil, err
	}

	result := &StepResult{
		Event:     *event,
		GameState: sess.Engine.GetState().Snapshot(),
		Report:    sess.Engine.GetReport(),
	}
	if event.Done {
		result.RunID = s.recordRun(ctx, sess)
	}
	return result, nil
}

// Run steps a session until its replay finishes or MaxSteps is reached
func (s *gameServiceImpl) Run(ctx context.Context, sessionID string, opts RunOptions) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if opts.Reset {
		sess.Engine.Reset()
		sess.RunID = ""
	}
	if sess.Engine.IsGameOver() {
		return nil, engine.ErrGameOver
	}

	result := &RunResult{Events: []traversal.StepEvent{}}
	for !sess.Engine.IsGameOver() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opts.MaxSteps > 0 && result.StepsExecuted >= opts.MaxSteps {
			result.Truncated = true
			break
		}

		event, err := sess.Engine.Step()
		if err != nil {
			return nil, err
		}
		result.Events = append(result.Events, *event)
		result.StepsExecuted++
	}

	result.GameState = sess.Engine.GetState().Snapshot()
	result.Report = sess.Engine.GetReport()
	if sess.Engine.IsGameOver() {
		result.RunID = s.recordRun(ctx, sess)
	}
	return result, nil
}

// recordRun saves the finished run once and returns its run ID.
// Store failures are logged; the replay itself already succeeded.
func (s *gameServiceImpl) recordRun(ctx context.Context, sess *Session) string {
	if sess.RunID != "" {
		return sess.RunID
	}

	state := sess.Engine.GetState()
	report := sess.Engine.GetReport()

	rec := results.NewRecord(sess.ID, s.scenarioID(sess.Scenario.Name))
	rec.Gold = report.Player.Gold
	rec.Health = report.Player.Health
	rec.Steps = report.StepsTaken
	rec.PlanCost = state.PlanCost
	rec.ReachedGoal = report.ReachedGoal
	rec.TerminatedEarly = report.TerminatedEarly

	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Warn("failed to save run result",
			zap.String("session_id", sess.ID),
			zap.String("run_id", rec.RunID),
			zap.Error(err),
		)
		return ""
	}

	sess.RunID = rec.RunID
	s.logger.Info("run finished",
		zap.String("session_id", sess.ID),
		zap.String("run_id", rec.RunID),
		zap.String("scenario", rec.Scenario),
		zap.Int("gold", rec.Gold),
		zap.Int("health", rec.Health),
		zap.Bool("reached_goal", rec.ReachedGoal),
	)
	return rec.RunID
}

// Reset restarts a session's replay from the start
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.RunID = ""
	return sess.Engine.Reset().Snapshot(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState().Snapshot(), nil
}

// GetHistory returns paginated step history for the current run
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetState().History
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	steps := []engine.HistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			steps = append(steps, history[i])
		}
	} else if start < total {
		steps = append(steps, history[start:end]...)
	}

	return &HistoryResponse{
		Steps:       steps,
		TotalSteps:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListScenarios returns available scenarios
func (s *gameServiceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	return s.scenarios.ListScenarios()
}

// LoadScenario loads a specific scenario
func (s *gameServiceImpl) LoadScenario(ctx context.Context, name string) (*engine.Scenario, error) {
	return s.scenarios.LoadScenario(name)
}

// SaveScenario saves a scenario to disk
func (s *gameServiceImpl) SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error {
	return s.scenarios.SaveScenario(name, scenario)
}

// FindPath plans a route and projects its replay without creating a session
func (s *gameServiceImpl) FindPath(ctx context.Context, req PathRequest) (*PathResult, error) {
	var scenario *engine.Scenario
	if len(req.Layout) > 0 {
		scenario = &engine.Scenario{
			Name:        "adhoc",
			Description: "Layout supplied with the path request",
			Layout:      req.Layout,
		}
	} else {
		loaded, err := s.loadScenario(req.Scenario)
		if err != nil {
			return nil, err
		}
		scenario = loaded.Clone()
	}

	if req.Start != nil {
		scenario.Start = req.Start
	}
	if req.Goal != nil {
		scenario.Goal = req.Goal
	}
	if req.CostPolicy != "" {
		scenario.CostPolicy = req.CostPolicy
	}
	if req.HazardPenalty > 0 {
		scenario.HazardPenalty = req.HazardPenalty
	}

	eng, err := engine.NewEngine(scenario)
	if err != nil {
		return nil, err
	}

	plan, err := eng.Plan()
	if err != nil {
		return nil, fmt.Errorf("%s to %s: %w", eng.GetState().Start, eng.GetState().Goal, err)
	}
	if _, err := eng.Run(); err != nil {
		return nil, err
	}

	state := eng.GetState()
	return &PathResult{
		Scenario: scenario.Name,
		Start:    state.Start,
		Goal:     state.Goal,
		Path:     plan.Path,
		Cost:     plan.Cost,
		Expanded: plan.Expanded,
		Summary:  eng.GetRouteSummary(),
		Outcome:  eng.GetReport(),
		Grid:     state.Grid,
	}, nil
}

// Leaderboard returns the best runs for a scenario
func (s *gameServiceImpl) Leaderboard(ctx context.Context, scenario string, limit int) ([]results.Record, error) {
	if scenario == "" {
		scenario = s.scenarioID(s.scenarios.GetDefault().Name)
	}
	return s.store.Leaderboard(ctx, scenario, limit)
}

// RecentRuns returns the most recently finished runs
func (s *gameServiceImpl) RecentRuns(ctx context.Context, limit int) ([]results.Record, error) {
	return s.store.Recent(ctx, limit)
}

// IsUnreachable reports whether err means no route exists
func IsUnreachable(err error) bool {
	return errors.Is(err, pathfind.ErrUnreachable)
}

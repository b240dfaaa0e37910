package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/treasure-path/game/config"
	"github.com/wricardo/treasure-path/game/engine"
	"github.com/wricardo/treasure-path/game/pathfind"
	"github.com/wricardo/treasure-path/game/results"
	"github.com/wricardo/treasure-path/game/service"
	"github.com/wricardo/treasure-path/game/session"
	"github.com/wricardo/treasure-path/game/traversal"
	"github.com/wricardo/treasure-path/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc func(ctx context.Context, scenarioName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	StepFunc  func(ctx context.Context, sessionID string) (*service.StepResult, error)
	RunFunc   func(ctx context.Context, sessionID string, opts service.RunOptions) (*service.RunResult, error)
	ResetFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)

	GetGameStateFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHistoryFunc   func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	ListScenariosFunc func(ctx context.Context) ([]*service.ScenarioInfo, error)
	LoadScenarioFunc  func(ctx context.Context, name string) (*engine.Scenario, error)
	SaveScenarioFunc  func(ctx context.Context, name string, scenario *engine.Scenario) error

	FindPathFunc    func(ctx context.Context, req service.PathRequest) (*service.PathResult, error)
	LeaderboardFunc func(ctx context.Context, scenario string, limit int) ([]results.Record, error)
	RecentRunsFunc  func(ctx context.Context, limit int) ([]results.Record, error)
}

func (m *MockGameService) CreateSession(ctx context.Context, scenarioName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, scenarioName)
	}
	return &service.SessionInfo{ID: "ab12", ScenarioName: scenarioName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ScenarioName: "test", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Step(ctx context.Context, sessionID string) (*service.StepResult, error) {
	if m.StepFunc != nil {
		return m.StepFunc(ctx, sessionID)
	}
	return &service.StepResult{GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Run(ctx context.Context, sessionID string, opts service.RunOptions) (*service.RunResult, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, sessionID, opts)
	}
	return &service.RunResult{GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Steps: []engine.HistoryEntry{}, Page: opts.Page, PageSize: opts.Limit, TotalPages: 1}, nil
}

func (m *MockGameService) ListScenarios(ctx context.Context) ([]*service.ScenarioInfo, error) {
	if m.ListScenariosFunc != nil {
		return m.ListScenariosFunc(ctx)
	}
	return []*service.ScenarioInfo{}, nil
}

func (m *MockGameService) LoadScenario(ctx context.Context, name string) (*engine.Scenario, error) {
	if m.LoadScenarioFunc != nil {
		return m.LoadScenarioFunc(ctx, name)
	}
	return &engine.Scenario{Name: name, Description: "Test scenario"}, nil
}

func (m *MockGameService) SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error {
	if m.SaveScenarioFunc != nil {
		return m.SaveScenarioFunc(ctx, name, scenario)
	}
	return nil
}

func (m *MockGameService) FindPath(ctx context.Context, req service.PathRequest) (*service.PathResult, error) {
	if m.FindPathFunc != nil {
		return m.FindPathFunc(ctx, req)
	}
	return &service.PathResult{}, nil
}

func (m *MockGameService) Leaderboard(ctx context.Context, scenario string, limit int) ([]results.Record, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, scenario, limit)
	}
	return []results.Record{}, nil
}

func (m *MockGameService) RecentRuns(ctx context.Context, limit int) ([]results.Record, error) {
	if m.RecentRunsFunc != nil {
		return m.RecentRunsFunc(ctx, limit)
	}
	return []results.Record{}, nil
}

// Test helpers

func doRequest(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	server := NewServer(&MockGameService{}, nil)
	rec := doRequest(t, server, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	server := NewServer(&MockGameService{}, nil)
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestCreateSession(t *testing.T) {
	var got string
	mock := &MockGameService{
		CreateSessionFunc: func(ctx context.Context, scenarioName string) (*service.SessionInfo, error) {
			got = scenarioName
			return &service.SessionInfo{ID: "ab12", ScenarioName: scenarioName}, nil
		},
	}
	server := NewServer(mock, nil)

	rec := doRequest(t, server, "POST", "/api/sessions", map[string]string{"scenario_id": "classic"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "classic", got)

	var info service.SessionInfo
	decodeBody(t, rec, &info)
	assert.Equal(t, "ab12", info.ID)

	// An empty body picks the default scenario
	rec = doRequest(t, server, "POST", "/api/sessions", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "", got)

	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSessionsSortAndLimit(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", CreatedAt: now.Add(-3 * time.Minute), LastAccessedAt: now.Add(-1 * time.Minute)},
				{ID: "b", CreatedAt: now.Add(-1 * time.Minute), LastAccessedAt: now.Add(-3 * time.Minute)},
				{ID: "c", CreatedAt: now.Add(-2 * time.Minute), LastAccessedAt: now.Add(-2 * time.Minute)},
			}, nil
		},
	}
	server := NewServer(mock, nil)

	tests := []struct {
		name  string
		query string
		want  []string
		total int
	}{
		{"default accessed desc", "", []string{"a", "c", "b"}, 3},
		{"created asc", "?sort=created&order=asc", []string{"a", "c", "b"}, 3},
		{"created desc limit", "?sort=created&limit=2", []string{"b", "c"}, 3},
		{"bad limit ignored", "?limit=zero", []string{"a", "c", "b"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, server, "GET", "/api/sessions"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			decodeBody(t, rec, &body)

			ids := make([]string, 0, len(body.Sessions))
			for _, s := range body.Sessions {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), body.Count)
			assert.Equal(t, tt.total, body.Total)
		})
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"session not found", fmt.Errorf("session zz99: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{"scenario not found", service.ErrScenarioNotFound, http.StatusNotFound},
		{"game over", engine.ErrGameOver, http.StatusConflict},
		{"finished", traversal.ErrSessionFinished, http.StatusConflict},
		{"unreachable", fmt.Errorf("(0,0) to (3,1): %w", pathfind.ErrUnreachable), http.StatusUnprocessableEntity},
		{"invalid scenario", fmt.Errorf("%w: name is required", engine.ErrInvalidScenario), http.StatusBadRequest},
		{"invalid name", service.ErrInvalidScenarioName, http.StatusBadRequest},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))

			mock := &MockGameService{
				StepFunc: func(ctx context.Context, sessionID string) (*service.StepResult, error) {
					return nil, tt.err
				},
			}
			rec := doRequest(t, NewServer(mock, nil), "POST", "/api/sessions/ab12/step", nil)
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]interface{}
			decodeBody(t, rec, &body)
			assert.Equal(t, tt.err.Error(), body["error"])
			assert.Equal(t, float64(tt.want), body["code"])
		})
	}
}

func TestRunDecodesOptions(t *testing.T) {
	var got service.RunOptions
	mock := &MockGameService{
		RunFunc: func(ctx context.Context, sessionID string, opts service.RunOptions) (*service.RunResult, error) {
			got = opts
			return &service.RunResult{GameState: &engine.GameState{}}, nil
		},
	}
	server := NewServer(mock, nil)

	rec := doRequest(t, server, "POST", "/api/sessions/ab12/run", map[string]interface{}{"reset": true, "max_steps": 3})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.RunOptions{Reset: true, MaxSteps: 3}, got)

	rec = doRequest(t, server, "POST", "/api/sessions/ab12/run", map[string]interface{}{"max_steps": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryQueryParams(t *testing.T) {
	var got service.HistoryOptions
	mock := &MockGameService{
		GetHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			got = opts
			return &service.HistoryResponse{}, nil
		},
	}
	server := NewServer(mock, nil)

	doRequest(t, server, "GET", "/api/sessions/ab12/history", nil)
	assert.Equal(t, service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}, got)

	doRequest(t, server, "GET", "/api/sessions/ab12/history?page=2&limit=5&order=asc", nil)
	assert.Equal(t, service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}, got)

	doRequest(t, server, "GET", "/api/sessions/ab12/history?page=-1&order=sideways", nil)
	assert.Equal(t, service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}, got)
}

func TestSaveScenario(t *testing.T) {
	var gotName string
	var gotScenario *engine.Scenario
	mock := &MockGameService{
		SaveScenarioFunc: func(ctx context.Context, name string, scenario *engine.Scenario) error {
			gotName, gotScenario = name, scenario
			return nil
		},
	}
	server := NewServer(mock, nil)

	rec := doRequest(t, server, "POST", "/api/scenarios", map[string]interface{}{
		"id":          "tiny",
		"name":        "Tiny",
		"description": "two cells",
		"layout":      []string{".."},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "tiny", gotName)
	assert.Equal(t, "Tiny", gotScenario.Name)
	assert.Equal(t, []string{".."}, gotScenario.Layout)

	rec = doRequest(t, server, "POST", "/api/scenarios", map[string]interface{}{"name": "Tiny"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetScenarioStripsExtension(t *testing.T) {
	var got string
	mock := &MockGameService{
		LoadScenarioFunc: func(ctx context.Context, name string) (*engine.Scenario, error) {
			got = name
			return &engine.Scenario{Name: name}, nil
		},
	}
	rec := doRequest(t, NewServer(mock, nil), "GET", "/api/scenarios/classic.json", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "classic", got)
}

func TestLeaderboardAndRuns(t *testing.T) {
	var gotScenario string
	var gotLimit int
	mock := &MockGameService{
		LeaderboardFunc: func(ctx context.Context, scenario string, limit int) ([]results.Record, error) {
			gotScenario, gotLimit = scenario, limit
			return []results.Record{{RunID: "r1", Gold: 3}}, nil
		},
		RecentRunsFunc: func(ctx context.Context, limit int) ([]results.Record, error) {
			gotLimit = limit
			return []results.Record{{RunID: "r1"}, {RunID: "r2"}}, nil
		},
	}
	server := NewServer(mock, nil)

	rec := doRequest(t, server, "GET", "/api/leaderboard?scenario=classic&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "classic", gotScenario)
	assert.Equal(t, 5, gotLimit)

	rec = doRequest(t, server, "GET", "/api/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, gotLimit)

	var body struct {
		Count int              `json:"count"`
		Runs  []results.Record `json:"runs"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, 2, body.Count)
}

func TestRateLimit(t *testing.T) {
	server := NewServer(&MockGameService{}, nil, WithRateLimit(1, 2))

	send := func(addr string) int {
		req := httptest.NewRequest("GET", "/health", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("192.0.2.1:1000"))
	assert.Equal(t, http.StatusOK, send("192.0.2.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("192.0.2.1:1002"))

	// Another client has its own bucket
	assert.Equal(t, http.StatusOK, send("192.0.2.2:1000"))
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := newRateLimiter(10, 10)
	rl.allow("192.0.2.1")
	rl.allow("192.0.2.2")

	rl.sweep(time.Now().Add(rl.staleAfter + time.Second))

	count := 0
	rl.limiters.Range(func(k, v interface{}) bool {
		count++
		return true
	})
	assert.Equal(t, 0, count)
}

func TestRecoveryMiddleware(t *testing.T) {
	mock := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			panic("boom")
		},
	}
	rec := doRequest(t, NewServer(mock, nil), "GET", "/api/sessions/ab12/state", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebSocketRequiresSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, service.ErrSessionNotFound
		},
	}
	hub := websocket.NewHub(nil)
	server := NewServer(mock, hub)

	rec := doRequest(t, server, "GET", "/ws", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, server, "GET", "/ws?session=zz99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, NewServer(&MockGameService{}, nil), "GET", "/ws?session=ab12", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// newIntegrationServer wires the real session, scenario and service layers
func newIntegrationServer(t *testing.T) (*httptest.Server, *websocket.Hub) {
	t.Helper()
	dir := t.TempDir()
	scenarios := map[string]string{
		"line":   `{"name": "Line", "description": "one gold, one hazard", "layout": [".G.H."]}`,
		"walled": `{"name": "Walled", "description": "no way through", "layout": ["..#.", "..#."]}`,
	}
	for name, body := range scenarios {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0644))
	}

	scenarioMgr, err := config.NewManager(dir, nil)
	require.NoError(t, err)
	svc := service.NewGameService(session.NewManager(nil), scenarioMgr, results.NewMemoryStore(10), nil)

	hub := websocket.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	ts := httptest.NewServer(NewServer(svc, hub))
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts, hub
}

func postJSON(t *testing.T, url string, body interface{}, v interface{}) int {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestIntegration_ReplayOverHTTP(t *testing.T) {
	ts, hub := newIntegrationServer(t)

	var info service.SessionInfo
	require.Equal(t, http.StatusCreated, postJSON(t, ts.URL+"/api/sessions", map[string]string{"scenario_id": "line"}, &info))
	require.NotEmpty(t, info.ID)
	assert.True(t, info.GameState.Reachable)
	assert.Len(t, info.GameState.Path, 5)

	conn, _, err := gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?session="+info.ID, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount(info.ID) == 1 }, time.Second, 5*time.Millisecond)

	// First step processes the start cell
	var step service.StepResult
	require.Equal(t, http.StatusOK, postJSON(t, ts.URL+"/api/sessions/"+info.ID+"/step", nil, &step))
	assert.Equal(t, 0, step.Event.Index)
	assert.False(t, step.Event.Done)

	readEvent := func() websocket.Message {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg websocket.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}
	assert.Equal(t, websocket.EventStep, readEvent().Event)
	assert.Equal(t, websocket.EventStateUpdate, readEvent().Event)

	// Run the remainder
	var run service.RunResult
	require.Equal(t, http.StatusOK, postJSON(t, ts.URL+"/api/sessions/"+info.ID+"/run", nil, &run))
	assert.Equal(t, 4, run.StepsExecuted)
	assert.True(t, run.Report.ReachedGoal)
	assert.Equal(t, 1, run.Report.Player.Gold)
	assert.Equal(t, 90, run.Report.Player.Health)
	assert.NotEmpty(t, run.RunID)

	// Stepping a finished replay conflicts
	assert.Equal(t, http.StatusConflict, postJSON(t, ts.URL+"/api/sessions/"+info.ID+"/step", nil, nil))

	resp, err := http.Get(ts.URL + "/api/leaderboard?scenario=line")
	require.NoError(t, err)
	defer resp.Body.Close()
	var board struct {
		Runs []results.Record `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&board))
	require.Len(t, board.Runs, 1)
	assert.Equal(t, run.RunID, board.Runs[0].RunID)
	assert.Equal(t, info.ID, board.Runs[0].SessionID)
}

func TestIntegration_FindPath(t *testing.T) {
	ts, _ := newIntegrationServer(t)

	var result service.PathResult
	require.Equal(t, http.StatusOK, postJSON(t, ts.URL+"/api/path", service.PathRequest{Scenario: "line"}, &result))
	assert.Equal(t, 4, result.Cost)
	assert.Equal(t, 1, result.Summary.Rewards)
	assert.Equal(t, 1, result.Summary.Hazards)
	assert.True(t, result.Outcome.ReachedGoal)

	assert.Equal(t, http.StatusUnprocessableEntity, postJSON(t, ts.URL+"/api/path", service.PathRequest{Scenario: "walled"}, nil))
	assert.Equal(t, http.StatusNotFound, postJSON(t, ts.URL+"/api/path", service.PathRequest{Scenario: "nope"}, nil))
	assert.Equal(t, http.StatusBadRequest, postJSON(t, ts.URL+"/api/path", service.PathRequest{Layout: []string{"..", "."}}, nil))
}

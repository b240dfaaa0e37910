package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wricardo/treasure-path/game/engine"
	"github.com/wricardo/treasure-path/game/grid"
	"github.com/wricardo/treasure-path/game/service"
	"github.com/wricardo/treasure-path/transport/mcp"
)

func writeScenarios(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"line.json":   `{"name": "Line", "description": "one gold, one hazard", "layout": [".G.H."]}`,
		"deadly.json": `{"name": "Deadly", "description": "two hazards", "layout": [".HH."], "starting_health": 15}`,
		"walled.json": `{"name": "Walled", "description": "no way through", "layout": ["..#.", "..#."]}`,
		"rand.json":   `{"name": "Rand", "description": "small random board", "random": {"seed": 3, "width": 6, "height": 6, "obstacles": 2, "rewards": 2, "hazards": 2}}`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return dir
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Treasure Path Server", AppName)
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		logger, err := newLogger(debug)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

func TestCommandLayout(t *testing.T) {
	cmd := (&application{}).command()

	assert.Equal(t, Version, cmd.Version)
	names := make([]string, 0, len(cmd.Commands))
	for _, sub := range cmd.Commands {
		names = append(names, sub.Name)
	}
	assert.Equal(t, []string{"serve", "mcp", "run"}, names)
	assert.NotNil(t, cmd.Action, "serve is the default action")
}

func TestInitializeServices(t *testing.T) {
	logger := zaptest.NewLogger(t)

	svcs, err := initializeServices(serviceConfig{ScenariosDir: writeScenarios(t)}, logger)
	require.NoError(t, err)
	defer svcs.Close()

	info, err := svcs.game.CreateSession(context.Background(), "line")
	require.NoError(t, err)
	assert.Equal(t, 1, svcs.sessions.Count())

	result, err := svcs.game.Run(context.Background(), info.ID, service.RunOptions{})
	require.NoError(t, err)
	assert.True(t, result.GameState.ReachedGoal)
}

func TestInitializeServices_Errors(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := initializeServices(serviceConfig{ScenariosDir: "/non/existent/path"}, logger)
	assert.Error(t, err)

	_, err = initializeServices(serviceConfig{ScenariosDir: writeScenarios(t), RedisAddr: "127.0.0.1:1"}, logger)
	assert.ErrorContains(t, err, "results store")
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://localhost:8080"))

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"jsonrpc": "2.0", "id": 1, "method": "tools/list"}`)
	handler(rec, httptest.NewRequest(http.MethodPost, "/mcp", body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, rec.Body.String(), `"find_path"`)
}

func TestExternalAPIAvailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	assert.True(t, externalAPIAvailable(ts.URL))
	assert.False(t, externalAPIAvailable("http://127.0.0.1:1"))
}

func TestStartInternalAPI(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	baseURL, srv, err := startInternalAPI(context.Background(), handler, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer srv.Close()

	assert.True(t, strings.HasPrefix(baseURL, "http://127.0.0.1:"))
	assert.True(t, externalAPIAvailable(baseURL))
}

func TestReplay(t *testing.T) {
	dir := writeScenarios(t)

	tests := []struct {
		name string
		file string
		want []string
	}{
		{
			name: "reaches goal",
			file: "line.json",
			want: []string{"Line (5x1)", "Route: 4 steps, cost 4, 1 gold and 1 hazards", "#0 (0,0)", "Gold collected!", "Reached the goal with 90 health and 1 gold."},
		},
		{
			name: "dies on hazards",
			file: "deadly.json",
			want: []string{"Ouch! Lost 10 health.", "Ran out of health after"},
		},
		{
			name: "unreachable goal",
			file: "walled.json",
			want: []string{"No route from (0,0) to (3,1)"},
		},
		{
			name: "random board",
			file: "rand.json",
			want: []string{"Rand (6x6) seed 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario, err := engine.LoadScenario(filepath.Join(dir, tt.file))
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, replay(context.Background(), &buf, scenario, 0))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestReplayHonorsCancellation(t *testing.T) {
	scenario, err := engine.LoadScenario(filepath.Join(writeScenarios(t), "line.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err = replay(ctx, &buf, scenario, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, buf.String(), "#0 (0,0)")
}

func TestRenderBoard(t *testing.T) {
	var buf bytes.Buffer
	renderBoard(&buf, &engine.GameState{Grid: []string{"..", ".G"}, Position: grid.Coordinate{X: 1, Y: 1}})
	assert.Equal(t, "..\n.*\n\n", buf.String())
}

func TestLoadRunScenario(t *testing.T) {
	dir := writeScenarios(t)

	scenario, err := loadRunScenario("", dir, "line")
	require.NoError(t, err)
	assert.Equal(t, "Line", scenario.Name)

	// Mutating the result must not touch the manager's cache
	scenario.CostPolicy = engine.CostPolicyHazardAverse
	again, err := loadRunScenario("", dir, "line")
	require.NoError(t, err)
	assert.Empty(t, again.CostPolicy)

	scenario, err = loadRunScenario(filepath.Join(dir, "walled.json"), "", "")
	require.NoError(t, err)
	assert.Equal(t, "Walled", scenario.Name)

	_, err = loadRunScenario("", dir, "missing")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	dir := writeScenarios(t)
	app := &application{}

	err := app.command().Run(context.Background(), []string{
		"treasure-path", "--scenarios-dir", dir, "run", "--scenario", "line", "--delay", "0s",
	})
	assert.NoError(t, err)

	err = app.command().Run(context.Background(), []string{
		"treasure-path", "--scenarios-dir", dir, "run", "--scenario", "line", "--seed", "5",
	})
	assert.ErrorContains(t, err, "--seed only applies to random scenarios")

	err = app.command().Run(context.Background(), []string{
		"treasure-path", "--scenarios-dir", dir, "run", "--scenario", "line", "--cost-policy", "cheapest",
	})
	assert.ErrorIs(t, err, engine.ErrInvalidScenario)
}

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/treasure-path/game/engine"
	"github.com/wricardo/treasure-path/game/grid"
	"github.com/wricardo/treasure-path/game/results"
	"github.com/wricardo/treasure-path/game/service"
	"github.com/wricardo/treasure-path/game/traversal"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Treasure Path",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Treasure Path - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Each session plans the cheapest route from start to goal with A* and then replays it.
Gold cells (G) add gold, hazard cells (H) cost health, obstacles (#) are never entered.

AVAILABLE TOOLS:
- create_session: Create a session from a scenario
- get_session / list_sessions: Inspect sessions
- game_state: Current board, route and player status
- step: Replay the next node of the route
- run: Replay the rest of the route (optionally reset first)
- reset_game: Restart the replay
- step_history: Steps replayed so far
- list_scenarios: Available scenario files
- find_path: Plan a route for a scenario or an inline layout without a session
- leaderboard / recent_runs: Finished runs
- game_instructions: Rules and legend`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new session with optional scenario selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario_id": map[string]interface{}{
					"type":        "string",
					"description": "Scenario to use (see list_scenarios); the default scenario when omitted",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Replay
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, planned route and player status",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Replay the next node of the planned route",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run",
		Description: "Replay the remaining route until the goal or death",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Restart the replay from the start first",
				},
				"max_steps": map[string]interface{}{
					"type":        "integer",
					"description": "Stop after this many steps (0 = no limit)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Restart the replay from the start",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step_history",
		Description: "Get the steps replayed in the current run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Steps per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"description": "asc or desc (default desc)",
					"enum":        []string{"asc", "desc"},
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStepHistory)

	// Scenarios and planning
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List available scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Plan a route without creating a session. Provide scenario_id or layout.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario_id": map[string]interface{}{
					"type":        "string",
					"description": "Scenario to plan on",
				},
				"layout": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Inline board rows using . # G H",
				},
				"cost_policy": map[string]interface{}{
					"type":        "string",
					"description": "uniform (default) or hazard_averse",
					"enum":        []string{engine.CostPolicyUniform, engine.CostPolicyHazardAverse},
				},
				"hazard_penalty": map[string]interface{}{
					"type":        "integer",
					"description": "Extra cost per hazard cell under hazard_averse",
				},
			},
		},
	}, c.handleFindPath)

	// Results
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Best finished runs for a scenario",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario_id": map[string]interface{}{
					"type":        "string",
					"description": "Scenario (default scenario when omitted)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Number of runs (default 10)",
				},
			},
		},
	}, c.handleLeaderboard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "recent_runs",
		Description: "Most recently finished runs across all scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Number of runs (default 20)",
				},
			},
		},
	}, c.handleRecentRuns)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules, legend and a suggested workflow",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Argument helpers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads a JSON number argument, which arrives as float64
func intArg(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func boolArg(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func requireSessionID(args map[string]interface{}) (string, *mcp.CallToolResult) {
	id := stringArg(args, "session_id")
	if id == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return url.PathEscape(id), nil
}

// Handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]string{}
	if id := stringArg(args, "scenario_id"); id != "" {
		body["scenario_id"] = id
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active sessions: %d\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.GameOver {
			status = "finished"
		}
		fmt.Fprintf(&b, "- %s (scenario: %s, %s, last access %s)\n",
			s.ID, s.ScenarioName, status, s.LastAccessedAt.Format("2006-01-02 15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID+"/state", nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var result service.StepResult
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/step", nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(formatStepLine(result.Event.Index, result.Event.Position.String(), result.Event.Effect.Kind,
		result.Event.Player.Health, result.Event.Player.Gold, result.Event.Message))
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}

	opts := service.RunOptions{
		Reset:    boolArg(args, "reset"),
		MaxSteps: intArg(args, "max_steps"),
	}

	var result service.RunResult
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/run", opts, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Executed %d steps", result.StepsExecuted)
	if result.Truncated {
		b.WriteString(" (stopped at max_steps)")
	}
	b.WriteString("\n")
	for _, e := range result.Events {
		if e.Message != "" {
			b.WriteString(formatStepLine(e.Index, e.Position.String(), e.Effect.Kind, e.Player.Health, e.Player.Gold, e.Message))
		}
	}
	b.WriteString("\n")
	b.WriteString(formatReport(result.Report))
	if result.RunID != "" {
		fmt.Fprintf(&b, "Run recorded: %s\n", result.RunID)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+sessionID+"/reset", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(response.Message + "\n\n" + formatGameState(response.State)), nil
}

func (c *Client) handleStepHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}

	query := url.Values{}
	if page := intArg(args, "page"); page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if limit := intArg(args, "limit"); limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	if order := stringArg(args, "order"); order != "" {
		query.Set("order", order)
	}
	path := "/api/sessions/" + sessionID + "/history"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Steps: %d (page %d of %d)\n", history.TotalSteps, history.Page, history.TotalPages)
	for _, h := range history.Steps {
		b.WriteString(formatStepLine(h.Index, h.Position.String(), h.Cell, h.Health, h.Gold, h.Message))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []*service.ScenarioInfo
	if err := c.apiCall(ctx, "GET", "/api/scenarios", nil, &scenarios); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available scenarios:\n")
	for _, s := range scenarios {
		kind := "fixed layout"
		if s.Random {
			kind = "random"
		}
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %s)", s.ScenarioID, s.Name, s.Width, s.Height, kind)
		if s.CostPolicy != "" {
			fmt.Fprintf(&b, " [%s]", s.CostPolicy)
		}
		if s.Description != "" {
			fmt.Fprintf(&b, "\n  %s", s.Description)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	req := service.PathRequest{
		Scenario:      stringArg(args, "scenario_id"),
		CostPolicy:    stringArg(args, "cost_policy"),
		HazardPenalty: intArg(args, "hazard_penalty"),
	}
	if rows, ok := args["layout"].([]interface{}); ok {
		for _, row := range rows {
			s, ok := row.(string)
			if !ok {
				return mcp.NewToolResultError("layout must be an array of strings"), nil
			}
			req.Layout = append(req.Layout, s)
		}
	}

	var result service.PathResult
	if err := c.apiCall(ctx, "POST", "/api/path", req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Route %s -> %s: %d steps, cost %d, %d nodes expanded\n",
		result.Start, result.Goal, result.Summary.Steps, result.Cost, result.Expanded)
	fmt.Fprintf(&b, "Passes %d gold and %d hazards\n", result.Summary.Rewards, result.Summary.Hazards)
	fmt.Fprintf(&b, "Path: %s\n", formatPath(result.Path))
	b.WriteString(formatReport(result.Outcome))
	b.WriteString("\n")
	b.WriteString(strings.Join(result.Grid, "\n"))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	query := url.Values{}
	if s := stringArg(args, "scenario_id"); s != "" {
		query.Set("scenario", s)
	}
	if limit := intArg(args, "limit"); limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	path := "/api/leaderboard"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var response struct {
		Runs []results.Record `json:"runs"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatRecords("Leaderboard", response.Runs)), nil
}

func (c *Client) handleRecentRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/runs"
	if limit := intArg(arguments(request), "limit"); limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var response struct {
		Runs []results.Record `json:"runs"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatRecords("Recent runs", response.Runs)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `TREASURE PATH - RULES

BOARD LEGEND:
  .  open cell
  #  obstacle, never entered
  G  gold: +1 gold (or the scenario's reward_gold)
  H  hazard: -10 health (or the scenario's hazard_damage)
  v  visited: already stepped on, no further effect
  *  current position (in game_state output)

HOW A SESSION WORKS:
1. The board is built from the scenario (fixed layout or seeded random placement).
2. A* finds the cheapest 4-connected route from start to goal.
   - cost_policy "uniform": every step costs 1, hazards are not avoided.
   - cost_policy "hazard_averse": hazards cost 1 + hazard_penalty, so the route detours when cheaper.
3. The route is replayed node by node. Every node, including the start, is processed once.
4. The replay stops at the goal, or early when health reaches 0.

COORDINATES:
  (x, y) with x the column and y the row; (0,0) is the top-left.

SUGGESTED WORKFLOW:
  list_scenarios -> create_session -> game_state -> step (a few times) -> run -> leaderboard
  Use find_path to compare cost policies without creating a session.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session ID: %s\nScenario: %s\nCreated: %s\n\n%s",
		session.ID, session.ScenarioName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Position: %s | Health: %d/%d | Gold: %d | Step: %d/%d | Total steps: %d\n",
		state.Position, state.Health, state.StartingHealth, state.Gold,
		state.StepIndex, len(state.Path), state.TotalSteps)
	fmt.Fprintf(&b, "Start: %s | Goal: %s", state.Start, state.Goal)
	if state.Reachable {
		fmt.Fprintf(&b, " | Plan cost: %d\n\n", state.PlanCost)
	} else {
		b.WriteString(" | No route\n\n")
	}

	for y, row := range state.Grid {
		line := []byte(row)
		if y == state.Position.Y && state.Position.X >= 0 && state.Position.X < len(line) {
			line[state.Position.X] = '*'
		}
		b.Write(line)
		b.WriteString("\n")
	}

	if state.GameOver {
		switch {
		case state.ReachedGoal:
			b.WriteString("\nGOAL REACHED")
		case state.TerminatedEarly:
			b.WriteString("\nGAME OVER (out of health)")
		default:
			b.WriteString("\nGAME OVER")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func formatStepLine(index int, pos string, kind grid.CellKind, health, gold int, message string) string {
	line := fmt.Sprintf("#%d %s %c health=%d gold=%d", index, pos, kind.Char(), health, gold)
	if message != "" {
		line += " - " + message
	}
	return line + "\n"
}

func formatReport(report traversal.Report) string {
	outcome := "in progress"
	switch {
	case report.ReachedGoal:
		outcome = "reached the goal"
	case report.TerminatedEarly:
		outcome = "ran out of health"
	}
	return fmt.Sprintf("Outcome: %s after %d/%d nodes, health %d, gold %d\n",
		outcome, report.StepsTaken, report.PathLength, report.Player.Health, report.Player.Gold)
}

func formatPath(path grid.Path) string {
	parts := make([]string, 0, len(path))
	for _, c := range path {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}

func formatRecords(title string, records []results.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d runs):\n", title, len(records))
	for i, r := range records {
		outcome := "goal"
		if r.TerminatedEarly {
			outcome = "died"
		} else if !r.ReachedGoal {
			outcome = "unfinished"
		}
		fmt.Fprintf(&b, "%d. gold=%d health=%d steps=%d %s [%s, session %s, %s]\n",
			i+1, r.Gold, r.Health, r.Steps, outcome, r.Scenario, r.SessionID,
			r.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

// Package mcp exposes treasure-path to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call is translated into a REST request
// against the api package and the JSON response is rendered as plain text.
// The same MCP server can be served over stdio or mounted on the HTTP server
// at /mcp.
//
// Tools:
//   - create_session, get_session, list_sessions
//   - game_state, step, run, reset_game, step_history
//   - list_scenarios, find_path
//   - leaderboard, recent_runs
//   - game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp

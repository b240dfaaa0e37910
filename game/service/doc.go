// Package service provides the business logic layer for treasure-path.
//
// The service package implements:
//   - Multi-session management, one engine per session
//   - Scenario loading, listing and saving
//   - Stepwise and full route replay
//   - One-off route planning without a session
//   - Recording finished runs for the leaderboard
//
// Core Interfaces:
//
// GameService is the main service interface used by the HTTP, WebSocket and
// MCP transports. SessionManager stores live sessions and ScenarioManager
// resolves scenario files. Both are implemented outside this package so that
// the service can be tested with in-memory fakes.
//
// Usage:
//
//	sessions := session.NewManager(logger)
//	scenarios, err := config.NewManager("scenarios", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	store, err := results.NewStore(results.Config{})
//	svc := service.NewGameService(sessions, scenarios, store, logger)
//
//	info, err := svc.CreateSession(ctx, "classic")
//	step, err := svc.Step(ctx, info.ID)
//	run, err := svc.Run(ctx, info.ID, service.RunOptions{})
//
// A session's run is saved to the results store once, when the replay ends.
// Store failures are logged and never fail the step that finished the run.
package service

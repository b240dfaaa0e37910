// Package api provides the HTTP REST API for treasure-path.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                 create a session, body {"scenario_id": "classic"}
//   - GET    /api/sessions                 list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}            session info with game state
//   - DELETE /api/sessions/{id}            delete a session
//
// Replay:
//   - GET  /api/sessions/{id}/state        current game state
//   - POST /api/sessions/{id}/step         process the next route node
//   - POST /api/sessions/{id}/run          process the rest, body {"reset": false, "max_steps": 0}
//   - POST /api/sessions/{id}/reset        restart the replay
//   - GET  /api/sessions/{id}/history      paginated step history (?page=&limit=&order=)
//
// Scenarios, planning and results:
//   - GET  /api/scenarios                  list scenario files
//   - GET  /api/scenarios/{name}           scenario definition
//   - POST /api/scenarios                  save a scenario, body is the scenario plus "id"
//   - POST /api/path                       plan a route without a session
//   - GET  /api/leaderboard                best runs (?scenario=&limit=)
//   - GET  /api/runs                       most recent runs (?limit=)
//
// Live updates are served on /ws?session={id}; see package websocket.
//
// Errors are returned as JSON with the HTTP status repeated in the body:
//
//	{
//	  "error": "session zz99: session not found",
//	  "code": 404
//	}
//
// Unknown sessions and scenarios map to 404, stepping a finished replay to 409,
// an unreachable goal to 422 and invalid scenarios to 400.
//
// Every request gets an X-Request-ID header and is logged through zap.
// WithRateLimit adds a per-IP token bucket.
package api

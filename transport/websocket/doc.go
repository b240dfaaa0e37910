// Package websocket pushes live replay updates to browser clients.
//
// A central Hub tracks connections per session. Clients connect with
// ?session=<id> and receive JSON messages of the form
//
//	{"session_id": "ab12", "event": "step", "data": {...}}
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// Incoming client messages are read only to service pings and close frames.
// Broadcasts are queued and dropped, with a warning, when the queue is full;
// a client whose send buffer is full is disconnected.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	hub.BroadcastStep(sessionID, event)
package websocket

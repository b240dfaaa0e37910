// Package results stores the outcome of finished treasure-path runs.
//
// A Record captures the final gold, health and step count of one replay. Stores keep
// the most recent records and a per-scenario leaderboard ordered by gold. Two
// backends are available: MemoryStore for a single process and RedisStore, which
// keeps records as JSON strings, recency in a capped list and rankings in a sorted
// set per scenario. NewStore picks Redis when an address is configured.
//
// Only run outcomes are stored. Boards and replay state are never persisted.
package results

package results

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(scenario string, gold, health int, at time.Time) Record {
	rec := NewRecord("s1", scenario)
	rec.Gold = gold
	rec.Health = health
	rec.FinishedAt = at
	return rec
}

// exerciseStore runs the shared behaviour checks against any backend
func exerciseStore(t *testing.T, store Store, scenario string) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	first := record(scenario, 3, 100, base)
	second := record(scenario, 5, 40, base.Add(time.Minute))
	third := record(scenario, 5, 90, base.Add(2*time.Minute))
	other := record(scenario+"-other", 9, 100, base.Add(3*time.Minute))

	for _, rec := range []Record{first, second, third, other} {
		require.NoError(t, store.Save(ctx, rec))
	}

	got, err := store.Get(ctx, second.RunID)
	require.NoError(t, err)
	assert.Equal(t, second.Gold, got.Gold)
	assert.Equal(t, second.Scenario, got.Scenario)
	assert.True(t, second.FinishedAt.Equal(got.FinishedAt))

	_, err = store.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrRecordNotFound)

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, other.RunID, recent[0].RunID)
	assert.Equal(t, third.RunID, recent[1].RunID)

	board, err := store.Leaderboard(ctx, scenario, 10)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, third.RunID, board[0].RunID)
	assert.Equal(t, second.RunID, board[1].RunID)
	assert.Equal(t, first.RunID, board[2].RunID)

	top, err := store.Leaderboard(ctx, scenario, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, third.RunID, top[0].RunID)

	empty, err := store.Leaderboard(ctx, "nobody-played-this", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// exerciseEviction expects a store capped at three records
func exerciseEviction(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// The oldest runs score best, so a board that skipped eviction would still list them
	var saved []Record
	for i := 0; i < 5; i++ {
		rec := record("capped", 10-i, 100, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Save(ctx, rec))
		saved = append(saved, rec)
	}

	for _, rec := range saved[:2] {
		_, err := store.Get(ctx, rec.RunID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	}

	recent, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	board, err := store.Leaderboard(ctx, "capped", 0)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, saved[2].RunID, board[0].RunID)
	assert.Equal(t, saved[4].RunID, board[2].RunID)
}

// exerciseTies checks that equal gold and health rank the earlier finish first
func exerciseTies(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	late := record("tied", 4, 70, base.Add(time.Hour))
	early := record("tied", 4, 70, base)
	lower := record("tied", 4, 60, base.Add(-time.Hour))
	for _, rec := range []Record{late, early, lower} {
		require.NoError(t, store.Save(ctx, rec))
	}

	top, err := store.Leaderboard(ctx, "tied", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, early.RunID, top[0].RunID)

	board, err := store.Leaderboard(ctx, "tied", 0)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, []string{early.RunID, late.RunID, lower.RunID},
		[]string{board[0].RunID, board[1].RunID, board[2].RunID})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(100)
	defer store.Close()
	exerciseStore(t, store, "classic")
	exerciseTies(t, store)
}

func TestMemoryStore_EvictsFromLeaderboard(t *testing.T) {
	exerciseEviction(t, NewMemoryStore(3))
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2)

	a := record("classic", 1, 100, time.Now())
	b := record("classic", 2, 100, time.Now())
	c := record("classic", 3, 100, time.Now())
	for _, rec := range []Record{a, b, c} {
		require.NoError(t, store.Save(ctx, rec))
	}

	_, err := store.Get(ctx, a.RunID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	recent, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, c.RunID, recent[0].RunID)
}

func TestNewStore_DefaultsToMemory(t *testing.T) {
	store, err := NewStore(Config{})
	require.NoError(t, err)
	_, ok := store.(*MemoryStore)
	assert.True(t, ok)
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("abcd", "classic")
	_, err := uuid.Parse(rec.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "abcd", rec.SessionID)
	assert.False(t, rec.FinishedAt.IsZero())
}

func TestLeaderboardScore(t *testing.T) {
	assert.Greater(t, leaderboardScore(Record{Gold: 2, Health: 0}), leaderboardScore(Record{Gold: 1, Health: 100}))
	assert.Greater(t, leaderboardScore(Record{Gold: 1, Health: 50}), leaderboardScore(Record{Gold: 1, Health: 10}))
	assert.Equal(t, leaderboardScore(Record{Gold: 1, Health: -20}), leaderboardScore(Record{Gold: 1, Health: 0}))
}

func TestBetter(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	early := Record{RunID: "b", Gold: 1, Health: 50, FinishedAt: base}
	late := Record{RunID: "a", Gold: 1, Health: 50, FinishedAt: base.Add(time.Second)}

	assert.True(t, better(early, late))
	assert.False(t, better(late, early))

	same := early
	same.RunID = "c"
	assert.True(t, better(early, same))
	assert.False(t, better(early, early))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	// Unique prefix so parallel runs never see each other's keys
	store, err := NewStore(Config{RedisAddr: addr, KeyPrefix: "treasure-test:" + uuid.NewString() + ":"})
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store, "classic")
	exerciseTies(t, store)

	capped, err := NewStore(Config{RedisAddr: addr, KeyPrefix: "treasure-test:" + uuid.NewString() + ":", MaxRecent: 3})
	require.NoError(t, err)
	defer capped.Close()

	exerciseEviction(t, capped)
}

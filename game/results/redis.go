package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "treasure:"

// RedisStore keeps records in Redis
type RedisStore struct {
	client    *goredis.Client
	prefix    string
	maxRecent int
}

// NewRedisStore connects to Redis and verifies the connection with a ping
func NewRedisStore(cfg Config) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("results: redis ping %s: %w", cfg.RedisAddr, err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	maxRecent := cfg.MaxRecent
	if maxRecent <= 0 {
		maxRecent = DefaultMaxRecent
	}
	return &RedisStore{client: client, prefix: prefix, maxRecent: maxRecent}, nil
}

func (r *RedisStore) runKey(id string) string { return r.prefix + "run:" + id }
func (r *RedisStore) recentKey() string      { return r.prefix + "runs:recent" }
func (r *RedisStore) boardKey(scenario string) string {
	return r.prefix + "leaderboard:" + scenario
}

// leaderboardScore packs gold and surviving health into one sorted-set score.
// Ties on the score are broken by finish time when the board is read.
func leaderboardScore(rec Record) float64 {
	health := rec.Health
	if health < 0 {
		health = 0
	}
	if health > 99999 {
		health = 99999
	}
	return float64(rec.Gold)*100000 + float64(health)
}

func (r *RedisStore) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("results: marshal record: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, r.runKey(rec.RunID), data, 0)
		pipe.LPush(ctx, r.recentKey(), rec.RunID)
		pipe.ZAdd(ctx, r.boardKey(rec.Scenario), goredis.Z{Score: leaderboardScore(rec), Member: rec.RunID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("results: save %s: %w", rec.RunID, err)
	}
	if err := r.evict(ctx); err != nil {
		return fmt.Errorf("results: evict: %w", err)
	}
	return nil
}

// maxEvictAttempts bounds retries when another writer touches the recency list mid-eviction
const maxEvictAttempts = 3

// evict drops every run past the cap from the recency list, its leaderboard
// and its record key. The recency list is watched so a concurrent Save cannot
// slip an unseen id into the trimmed range; a lost race is left to the next Save.
func (r *RedisStore) evict(ctx context.Context) error {
	txf := func(tx *goredis.Tx) error {
		ids, err := tx.LRange(ctx, r.recentKey(), int64(r.maxRecent), -1).Result()
		if err != nil || len(ids) == 0 {
			return err
		}
		stale, err := r.loadWith(ctx, tx, ids)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.LTrim(ctx, r.recentKey(), 0, int64(r.maxRecent-1))
			for _, rec := range stale {
				pipe.ZRem(ctx, r.boardKey(rec.Scenario), rec.RunID)
			}
			keys := make([]string, len(ids))
			for i, id := range ids {
				keys[i] = r.runKey(id)
			}
			pipe.Del(ctx, keys...)
			return nil
		})
		return err
	}

	for i := 0; i < maxEvictAttempts; i++ {
		err := r.client.Watch(ctx, txf, r.recentKey())
		if !errors.Is(err, goredis.TxFailedErr) {
			return err
		}
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, runID string) (Record, error) {
	data, err := r.client.Get(ctx, r.runKey(runID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("results: decode %s: %w", runID, err)
	}
	return rec, nil
}

func (r *RedisStore) Recent(ctx context.Context, n int) ([]Record, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	ids, err := r.client.LRange(ctx, r.recentKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	return r.load(ctx, ids)
}

func (r *RedisStore) Leaderboard(ctx context.Context, scenario string, n int) ([]Record, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	top, err := r.client.ZRevRangeWithScores(ctx, r.boardKey(scenario), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	// Equal scores tie on gold and health; widen the range to every member
	// sharing the cutoff score so the finish time can settle the order.
	ids := make([]string, 0, len(top))
	if n > 0 && len(top) == n {
		cutoff := strconv.FormatFloat(top[len(top)-1].Score, 'f', -1, 64)
		ids, err = r.client.ZRevRangeByScore(ctx, r.boardKey(scenario), &goredis.ZRangeBy{Min: cutoff, Max: "+inf"}).Result()
		if err != nil {
			return nil, err
		}
	} else {
		for _, z := range top {
			ids = append(ids, z.Member.(string))
		}
	}

	out, err := r.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return better(out[i], out[j]) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// load fetches records in id order, skipping ids whose record is gone
func (r *RedisStore) load(ctx context.Context, ids []string) ([]Record, error) {
	return r.loadWith(ctx, r.client, ids)
}

func (r *RedisStore) loadWith(ctx context.Context, c goredis.Cmdable, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return []Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.runKey(id)
	}
	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("results: decode %s: %w", ids[i], err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/i474232898/hive-thermal/internal/weather"
)

const keyPrefix = "hivethermal:conditions:"

// RedisStore keeps snapshots in a sorted set per location, scored by
// observation time, so several service instances can share one lookup cache.
type RedisStore struct {
	client     *redis.Client
	maxHistory int
	maxAge     time.Duration
}

// NewRedisStore wraps a connected client. Retention limits behave like the
// memory store's; maxAge additionally sets the key TTL.
func NewRedisStore(client *redis.Client, maxHistory int, maxAge time.Duration) *RedisStore {
	return &RedisStore{client: client, maxHistory: maxHistory, maxAge: maxAge}
}

// ageCutoff returns the exclusive score below which members are trimmed. It
// never passes the snapshot being saved, so a late observation outlives the
// trim the same way the memory store keeps its newest entry.
func ageCutoff(now, observed time.Time, maxAge time.Duration) float64 {
	return math.Min(score(now.Add(-maxAge)), score(observed))
}

func redisKey(loc weather.Location) string {
	return keyPrefix + loc.Key()
}

func score(t time.Time) float64 {
	return float64(t.UTC().Unix())
}

// SaveSnapshot adds the snapshot and trims the set to the retention limits.
func (s *RedisStore) SaveSnapshot(ctx context.Context, loc weather.Location, snapshot weather.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	key := redisKey(loc)

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, &redis.Z{Score: score(snapshot.Timestamp), Member: payload})
	if s.maxHistory > 0 {
		pipe.ZRemRangeByRank(ctx, key, 0, int64(-s.maxHistory-1))
	}
	if s.maxAge > 0 {
		cutoff := ageCutoff(time.Now(), snapshot.Timestamp, s.maxAge)
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatFloat(cutoff, 'f', 0, 64))
		pipe.Expire(ctx, key, s.maxAge)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	return nil
}

// GetLatest returns the snapshot with the newest observation time.
func (s *RedisStore) GetLatest(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	members, err := s.client.ZRevRange(ctx, redisKey(loc), 0, 0).Result()
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("redis latest: %w", err)
	}
	if len(members) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return decodeSnapshot(members[0])
}

// GetRange returns snapshots observed between from and to (inclusive).
func (s *RedisStore) GetRange(ctx context.Context, loc weather.Location, from, to time.Time) ([]weather.Snapshot, error) {
	members, err := s.client.ZRangeByScore(ctx, redisKey(loc), &redis.ZRangeBy{
		Min: strconv.FormatFloat(score(from), 'f', 0, 64),
		Max: strconv.FormatFloat(score(to), 'f', 0, 64),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis range: %w", err)
	}

	snapshots := make([]weather.Snapshot, 0, len(members))
	for _, m := range members {
		snap, err := decodeSnapshot(m)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	// Second resolution on scores; re-check the exact bounds.
	snapshots = inRange(snapshots, from, to)
	if len(snapshots) == 0 {
		return nil, ErrNotFound
	}
	return snapshots, nil
}

func decodeSnapshot(member string) (weather.Snapshot, error) {
	var snap weather.Snapshot
	if err := json.Unmarshal([]byte(member), &snap); err != nil {
		return weather.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

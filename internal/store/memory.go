package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/hive-thermal/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no conditions for location")
)

// MemoryStore is a concurrency-safe in-memory store of condition snapshots.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: time-ordered snapshots
	data map[string][]weather.Snapshot

	// retention configuration
	maxHistory int           // max number of snapshots per location
	maxAge     time.Duration // optional max age for snapshots
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]weather.Snapshot),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot appends a new snapshot for a location and enforces retention.
func (s *MemoryStore) SaveSnapshot(_ context.Context, loc weather.Location, snapshot weather.Snapshot) error {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[key], snapshot)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	// Enforce retention by age, always keeping the newest snapshot.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for i < len(history)-1 && history[i].Timestamp.Before(cutoff) {
			i++
		}
		history = history[i:]
	}

	s.data[key] = history
	return nil
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(_ context.Context, loc weather.Location) (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[loc.Key()]
	if len(history) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// GetRange returns all snapshots for a location observed between from and to
// (inclusive).
func (s *MemoryStore) GetRange(_ context.Context, loc weather.Location, from, to time.Time) ([]weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := inRange(s.data[loc.Key()], from, to)
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

func inRange(history []weather.Snapshot, from, to time.Time) []weather.Snapshot {
	var result []weather.Snapshot
	for _, snap := range history {
		if !snap.Timestamp.Before(from) && !snap.Timestamp.After(to) {
			result = append(result, snap)
		}
	}
	return result
}

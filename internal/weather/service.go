package weather

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/hive-thermal/internal/thermal"
)

var (
	// ErrNoProviders is returned when the service has no providers to query.
	ErrNoProviders = errors.New("no weather providers configured")

	// ErrNoReadings is returned when every provider failed for a location.
	ErrNoReadings = errors.New("no successful provider readings")
)

// Conditions is the result of resolving a location for the thermal model.
type Conditions struct {
	Environment thermal.EnvironmentSample `json:"environment"`
	Snapshot    *Snapshot                 `json:"snapshot,omitempty"`

	// Stale is set when a refresh failed and an older snapshot was used.
	Stale bool `json:"stale,omitempty"`
	// Fallback is set when no snapshot was available and the configured
	// default environment was returned instead.
	Fallback bool `json:"fallback,omitempty"`
}

// Service orchestrates fetching from multiple providers, caching snapshots
// in a store and turning them into thermal inputs.
type Service struct {
	store     Store
	providers []Provider
	elevation ElevationProvider
	geocoder  Geocoder
	maxAge    time.Duration
	fallback  thermal.EnvironmentSample
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithElevation sets the elevation lookup used when providers report none.
func WithElevation(e ElevationProvider) Option { return func(s *Service) { s.elevation = e } }

// WithGeocoder sets the geocoder used for locations without coordinates.
func WithGeocoder(g Geocoder) Option { return func(s *Service) { s.geocoder = g } }

// WithMaxAge sets how long a stored snapshot is served before refreshing.
// Zero or negative always refreshes.
func WithMaxAge(d time.Duration) Option { return func(s *Service) { s.maxAge = d } }

// WithFallback sets the environment returned when nothing can be resolved.
func WithFallback(env thermal.EnvironmentSample) Option {
	return func(s *Service) { s.fallback = env }
}

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

// NewService creates a new Service.
func NewService(store Store, providers []Provider, opts ...Option) *Service {
	s := &Service{
		store:     store,
		providers: providers,
		maxAge:    15 * time.Minute,
		fallback:  thermal.EnvironmentSample{AmbientC: 20, Daytime: true},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh fetches data from all providers concurrently for the given location,
// aggregates successful readings, fills in elevation, and stores a snapshot.
func (s *Service) Refresh(ctx context.Context, loc Location) (Snapshot, error) {
	log := s.logger.With(zap.String("location", loc.Key()))
	if len(s.providers) == 0 {
		log.Error("no providers available to fetch weather data")
		return Snapshot{}, ErrNoProviders
	}

	target := s.geocode(ctx, loc)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
	)
	for _, p := range s.providers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, target)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Warn("provider fetch failed", zap.String("provider", p.Name()), zap.Error(err))
				return
			}

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(readings) == 0 {
		// Do not overwrite the last good snapshot.
		log.Warn("no successful provider readings; keeping last good snapshot if any")
		return Snapshot{}, ErrNoReadings
	}

	snapshot := AggregateReadings(target, readings)
	if snapshot.ElevationM == nil && s.elevation != nil && target.HasCoordinates() {
		elev, err := s.elevation.Elevation(ctx, *target.Lat, *target.Lon)
		if err != nil {
			log.Warn("elevation lookup failed", zap.Error(err))
		} else {
			snapshot.ElevationM = &elev
		}
	}
	snapshot.FetchedAt = s.now().UTC()

	if err := s.store.SaveSnapshot(ctx, loc, snapshot); err != nil {
		log.Warn("failed to store snapshot", zap.Error(err))
	}
	log.Debug("stored snapshot",
		zap.Float64("temperatureC", snapshot.Temperature),
		zap.Int("providers", len(readings)))
	return snapshot, nil
}

// FetchAndStore refreshes the location and discards the snapshot.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	_, err := s.Refresh(ctx, loc)
	return err
}

func (s *Service) geocode(ctx context.Context, loc Location) Location {
	if loc.HasCoordinates() || s.geocoder == nil || loc.City == "" {
		return loc
	}
	resolved, err := s.geocoder.Geocode(ctx, loc)
	if err != nil {
		s.logger.Warn("geocoding failed; continuing with city/country",
			zap.String("location", loc.Key()), zap.Error(err))
		return loc
	}
	return resolved
}

// Resolve returns thermal inputs for a location. A stored snapshot younger
// than the max age is served directly; otherwise providers are queried. When
// the refresh fails an older snapshot is used, and without one the fallback
// environment is returned. Only context cancellation is reported as an error.
func (s *Service) Resolve(ctx context.Context, loc Location) (Conditions, error) {
	cached, cacheErr := s.store.GetLatest(ctx, loc)
	if cacheErr == nil && s.fresh(cached) {
		return Conditions{Environment: cached.Environment(), Snapshot: &cached}, nil
	}

	snap, err := s.Refresh(ctx, loc)
	if err == nil {
		return Conditions{Environment: snap.Environment(), Snapshot: &snap}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Conditions{}, ctxErr
	}

	if cacheErr == nil {
		s.logger.Warn("serving stale snapshot", zap.String("location", loc.Key()), zap.Error(err))
		return Conditions{Environment: cached.Environment(), Snapshot: &cached, Stale: true}, nil
	}

	s.logger.Warn("using fallback environment", zap.String("location", loc.Key()), zap.Error(err))
	return Conditions{Environment: s.fallback, Fallback: true}, nil
}

func (s *Service) fresh(snap Snapshot) bool {
	if s.maxAge <= 0 {
		return false
	}
	return s.now().Sub(snap.FetchedAt) < s.maxAge
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(ctx context.Context, loc Location) (Snapshot, error) {
	return s.store.GetLatest(ctx, loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(ctx context.Context, loc Location, from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(ctx, loc, from, to)
}

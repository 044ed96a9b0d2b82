// Package scheduler runs the apiary monitor: on a fixed interval it refreshes
// watched locations, re-solves every configured apiary against its current
// conditions and publishes the result.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/hive-thermal/internal/catalog"
	"github.com/i474232898/hive-thermal/internal/publish"
	"github.com/i474232898/hive-thermal/internal/thermal"
	"github.com/i474232898/hive-thermal/internal/weather"
)

const jobTimeout = 30 * time.Second

// Conditions is the part of weather.Service the monitor depends on.
type Conditions interface {
	Resolve(ctx context.Context, loc weather.Location) (weather.Conditions, error)
	FetchAndStore(ctx context.Context, loc weather.Location) error
}

// Result is the monitor's view of one apiary after a run.
type Result struct {
	RunID       string                    `json:"runId"`
	Apiary      string                    `json:"apiary"`
	Species     string                    `json:"species"`
	SolvedAt    time.Time                 `json:"solvedAt"`
	Environment thermal.EnvironmentSample `json:"environment"`
	Stale       bool                      `json:"stale,omitempty"`
	Fallback    bool                      `json:"fallback,omitempty"`
	Result      *thermal.SolveResult      `json:"result,omitempty"`
	Error       string                    `json:"error,omitempty"`
}

// Scheduler periodically solves the configured apiaries.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Conditions
	model     *thermal.Model
	species   *catalog.Catalog
	apiaries  []catalog.Apiary
	locations []weather.Location
	interval  time.Duration
	publisher publish.Publisher
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.RWMutex
	latest map[string]Result
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocations adds locations whose conditions are refreshed every run
// without being solved.
func WithLocations(locs []weather.Location) Option {
	return func(s *Scheduler) { s.locations = locs }
}

func WithPublisher(p publish.Publisher) Option { return func(s *Scheduler) { s.publisher = p } }
func WithLogger(l *zap.Logger) Option { return func(s *Scheduler) { s.logger = l } }

// New creates a new Scheduler.
func New(apiaries []catalog.Apiary, interval time.Duration, service Conditions, model *thermal.Model, species *catalog.Catalog, opts ...Option) *Scheduler {
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		model:     model,
		species:   species,
		apiaries:  apiaries,
		interval:  interval,
		publisher: publish.Nop{},
		logger:    zap.NewNop(),
		now:       time.Now,
		latest:    make(map[string]Result),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("monitor")
	return s
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.apiaries) == 0 && len(s.locations) == 0 {
		s.logger.Info("no apiaries or locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*jobTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunOnce performs a single monitor pass and returns the apiary results in
// configuration order.
func (s *Scheduler) RunOnce(ctx context.Context) []Result {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("run", runID))
	log.Info("running apiary monitor",
		zap.Int("apiaries", len(s.apiaries)), zap.Int("locations", len(s.locations)))

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()

			if err := s.service.FetchAndStore(ctx, loc); err != nil {
				log.Warn("refresh failed", zap.String("location", loc.Key()), zap.Error(err))
			}
		}()
	}

	results := make([]Result, len(s.apiaries))
	for i, a := range s.apiaries {
		i, a := i, a
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()

			results[i] = s.solve(ctx, runID, a)
			s.report(ctx, log, results[i])
		}()
	}
	wg.Wait()

	log.Info("completed apiary monitor")
	return results
}

func (s *Scheduler) solve(ctx context.Context, runID string, a catalog.Apiary) Result {
	res := Result{RunID: runID, Apiary: a.Name, Species: a.Species, SolvedAt: s.now().UTC()}

	profile, err := s.species.Get(a.Species)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if a.Hive == nil {
		h := catalog.DefaultHive()
		a.Hive = &h
	}

	cond, err := s.service.Resolve(ctx, a.Location)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Environment, res.Stale, res.Fallback = cond.Environment, cond.Stale, cond.Fallback

	out, err := s.model.Solve(profile, *a.Hive, cond.Environment)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Result = &out
	return res
}

func (s *Scheduler) report(ctx context.Context, log *zap.Logger, res Result) {
	log = log.With(zap.String("apiary", res.Apiary), zap.String("species", res.Species))
	switch {
	case res.Error != "":
		log.Error("apiary solve failed", zap.String("error", res.Error))
	case !res.Result.WithinIdealBand:
		log.Warn("hive outside ideal band",
			zap.Float64("hiveTempC", res.Result.HiveTempC),
			zap.Float64("ambientC", res.Environment.AmbientC),
			zap.Bool("fallback", res.Fallback))
	default:
		log.Debug("hive within ideal band", zap.Float64("hiveTempC", res.Result.HiveTempC))
	}

	s.mu.Lock()
	s.latest[res.Apiary] = res
	s.mu.Unlock()

	if err := s.publisher.Publish(ctx, res.Apiary, res); err != nil {
		log.Warn("publish failed", zap.Error(err))
	}
}

// Latest returns the most recent result for every apiary, sorted by name.
func (s *Scheduler) Latest() []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Result, 0, len(s.latest))
	for _, r := range s.latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Apiary < out[j].Apiary })
	return out
}

// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/contrib-leaderboard/internal/adapters/cache"
	repository "github.com/okian/contrib-leaderboard/internal/adapters/repository"
	"github.com/okian/contrib-leaderboard/internal/domain/model"
	"github.com/okian/contrib-leaderboard/internal/domain/scoring"
	"github.com/okian/contrib-leaderboard/internal/domain/stats"
	"github.com/okian/contrib-leaderboard/internal/domain/types"
	"github.com/okian/contrib-leaderboard/pkg/logger"
	"github.com/okian/contrib-leaderboard/pkg/metrics"
)

// Datasets the standings can be computed from.
const (
	DatasetAll      = "all"
	DatasetFinished = "finished"
)

// Runner executes one fetch cycle for a project.
type Runner interface {
	Run(ctx context.Context, projectID string) (*model.Datasets, error)
}

// Service implements the API dependencies for the leaderboard system.
type Service struct {
	mu sync.RWMutex

	// Core components
	pipeline Runner
	cache    cache.Cache
	store    repository.Store
	scorer   *scoring.WeightedScorer
	group    singleflight.Group
	// generation is bumped by Refresh; runs started under an older value
	// must not write their result back.
	generation atomic.Uint64

	// Configuration
	projectID string
	dataset   string
	location  *time.Location
	now       func() time.Time
	warmup    bool

	// State
	started        bool
	publishedCycle string
	lastRefresh    time.Time
	lastErr        error

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPipeline sets the fetch cycle runner.
func WithPipeline(r Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.pipeline = r
		}
	}
}

// WithCache sets the dataset cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithStore sets the standings store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithScorer sets the points table used for the explanation.
func WithScorer(sc *scoring.WeightedScorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithProjectID sets the annotation project served.
func WithProjectID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.projectID = id
		}
	}
}

// WithLeaderboardDataset selects the dataset standings are computed from.
func WithLeaderboardDataset(name string) Option {
	return func(s *Service) {
		if name == DatasetAll || name == DatasetFinished {
			s.dataset = name
		}
	}
}

// WithLocation sets the time zone of calendar-day views.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithWarmup makes Start load the datasets in the background.
func WithWarmup(enabled bool) Option {
	return func(s *Service) {
		s.warmup = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cache:    cache.NewMemoryCache(),
		store:    repository.NewSnapshotStore(),
		scorer:   scoring.NewWeightedScorer(),
		dataset:  DatasetAll,
		location: time.UTC,
		now:      time.Now,
		logger:   logger.Nop(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start marks the service as running and optionally warms the cache.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.pipeline == nil {
		return ErrNoPipeline
	}

	s.logger.Info(ctx, "starting leaderboard service...",
		logger.String("project", s.projectID),
		logger.String("cache", s.cache.Name()),
		logger.String("dataset", s.dataset),
	)

	if s.warmup {
		go func() {
			if _, err := s.Datasets(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn(ctx, "initial load failed", logger.Error(err))
			}
		}()
	}

	s.started = true
	s.logger.Info(ctx, "leaderboard service started")
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "failed to close cache", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "leaderboard service stopped")
}

// Datasets returns the cached datasets, running the pipeline on a miss.
// Concurrent misses share a single pipeline run.
func (s *Service) Datasets(ctx context.Context) (*model.Datasets, error) {
	ds, ok, err := s.cache.Get(ctx, s.projectID)
	if err != nil {
		s.logger.Warn(ctx, "cache read failed, treating as miss", logger.Error(err))
		metrics.RecordErrorByComponent("cache", "read")
	}
	if ok {
		metrics.RecordCacheHit()
		s.publish(ctx, ds)
		return ds, nil
	}
	metrics.RecordCacheMiss()
	return s.load(ctx)
}

// Refresh discards the cached datasets and reruns the pipeline. When the run
// fails the project stays uncached.
func (s *Service) Refresh(ctx context.Context) (*model.Datasets, error) {
	metrics.RecordRefreshRequest()
	s.generation.Add(1)
	if err := s.cache.Invalidate(ctx, s.projectID); err != nil {
		metrics.RecordErrorByComponent("cache", "invalidate")
		return nil, fmt.Errorf("invalidate cache: %w", err)
	}
	metrics.RecordCacheInvalidation()
	s.group.Forget(s.projectID)
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) (*model.Datasets, error) {
	if s.pipeline == nil {
		return nil, ErrNoPipeline
	}
	v, err, shared := s.group.Do(s.projectID, func() (any, error) {
		// The run is shared by every waiter, so one caller going away must not cancel it.
		ctx := context.WithoutCancel(ctx)
		gen := s.generation.Load()
		ds, err := s.pipeline.Run(ctx, s.projectID)
		if s.generation.Load() != gen {
			s.logger.Info(ctx, "discarding run superseded by a refresh", logger.String("project", s.projectID))
			return ds, err
		}
		if err != nil {
			s.setLastErr(err)
			return nil, err
		}
		if err := s.cache.Set(ctx, s.projectID, ds); err != nil {
			s.logger.Warn(ctx, "cache write failed", logger.Error(err))
			metrics.RecordErrorByComponent("cache", "write")
		}
		s.setLastErr(nil)
		s.publish(ctx, ds)
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug(ctx, "joined in-flight pipeline run", logger.String("project", s.projectID))
	}
	ds, _ := v.(*model.Datasets)
	return ds, nil
}

// publish pushes the standings of a new cycle into the store.
func (s *Service) publish(ctx context.Context, ds *model.Datasets) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ds.CycleID != "" && ds.CycleID == s.publishedCycle {
		return
	}

	rows := ds.All
	if s.dataset == DatasetFinished {
		rows = ds.Finished
	}
	standings := stats.Standings(rows)
	entries := make([]repository.Entry, 0, len(standings))
	for _, st := range standings {
		entries = append(entries, repository.Entry{Author: st.Author, Points: st.Points, Assets: st.Assets})
	}
	if err := s.store.Replace(ctx, entries); err != nil {
		s.logger.Error(ctx, "failed to publish standings", logger.Error(err))
		return
	}
	s.publishedCycle = ds.CycleID
	s.lastRefresh = ds.FetchedAt
	metrics.UpdateLastRefresh(ds.FetchedAt)
	s.logger.Info(ctx, "standings published",
		logger.String("cycle", ds.CycleID),
		logger.Int("contributors", len(entries)),
	)
}

func (s *Service) setLastErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if _, err := s.Datasets(ctx); err != nil {
		return nil, err
	}
	entries, err := s.store.TopN(ctx, n)
	if err != nil {
		return nil, err
	}

	// Convert to API format
	apiEntries := make([]types.Entry, len(entries))
	for i, entry := range entries {
		apiEntries[i] = toAPIEntry(entry)
	}
	return apiEntries, nil
}

// Rank returns the rank and points for a given author.
func (s *Service) Rank(ctx context.Context, author string) (types.Entry, error) {
	if _, err := s.Datasets(ctx); err != nil {
		return types.Entry{}, err
	}
	entry, err := s.store.Rank(ctx, author)
	if err != nil {
		return types.Entry{}, err
	}
	return toAPIEntry(entry), nil
}

// Performance returns the ranking tab.
func (s *Service) Performance(ctx context.Context) (stats.PerformanceView, error) {
	ds, err := s.Datasets(ctx)
	if err != nil {
		return stats.PerformanceView{}, err
	}
	return stats.Performance(ds.All, s.now(), s.location), nil
}

// SourceChampions returns the top contributors of one source category.
func (s *Service) SourceChampions(ctx context.Context, source string) ([]stats.Standing, error) {
	ds, err := s.Datasets(ctx)
	if err != nil {
		return nil, err
	}
	for _, known := range stats.Sources(ds.All) {
		if known == source {
			return stats.SourceChampions(ds.All, source), nil
		}
	}
	return nil, fmt.Errorf("source %q %w", source, types.ErrNotFound)
}

// Throughput returns the trend tab for the inclusive YYYY-MM-DD range; empty
// bounds default to the data's first and last day.
func (s *Service) Throughput(ctx context.Context, start, end string) (stats.ThroughputView, error) {
	from, err := stats.ParseDate(start, s.location)
	if err != nil {
		return stats.ThroughputView{}, err
	}
	to, err := stats.ParseDate(end, s.location)
	if err != nil {
		return stats.ThroughputView{}, err
	}
	ds, err := s.Datasets(ctx)
	if err != nil {
		return stats.ThroughputView{}, err
	}
	return stats.Throughput(ds.All, stats.DateRange{Start: from, End: to}, s.location)
}

// Points returns the points explanation.
func (s *Service) Points() types.PointsTable {
	rules := s.scorer.Rules()
	out := types.PointsTable{Explanation: s.scorer.Explain(), Rules: make([]types.PointsRule, 0, len(rules))}
	for _, r := range rules {
		out.Rules = append(out.Rules, types.PointsRule{Source: r.Source, Points: r.Points})
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]interface{}{
		"started":      s.started,
		"project":      s.projectID,
		"cache":        s.cache.Name(),
		"dataset":      s.dataset,
		"timezone":     s.location.String(),
		"contributors": s.store.Count(ctx),
		"cycle":        s.publishedCycle,
	}
	if !s.lastRefresh.IsZero() {
		out["lastRefresh"] = s.lastRefresh.UTC().Format(time.RFC3339)
	}
	if s.lastErr != nil {
		out["lastError"] = s.lastErr.Error()
	}
	return out
}

func toAPIEntry(e repository.Entry) types.Entry {
	return types.Entry{Rank: e.Rank, Author: e.Author, Points: e.Points, Assets: e.Assets}
}

// Package ingest runs one fetch cycle: fetch, reconcile, derive, partition.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/contrib-leaderboard/internal/domain/derive"
	"github.com/okian/contrib-leaderboard/internal/domain/model"
	"github.com/okian/contrib-leaderboard/internal/domain/reconcile"
	"github.com/okian/contrib-leaderboard/internal/domain/types"
	"github.com/okian/contrib-leaderboard/pkg/logger"
	"github.com/okian/contrib-leaderboard/pkg/metrics"
)

// Fetch resources, used as metric labels.
const (
	ResourceAssets = "assets"
	ResourceLabels = "labels"
)

// Fetcher retrieves raw records from the annotation platform.
type Fetcher interface {
	FetchAssets(ctx context.Context, projectID string) ([]model.Asset, error)
	FetchLabels(ctx context.Context, projectID string, externalIDs []string) ([]model.LabelEvent, error)
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithReconciler sets the label reconciler.
func WithReconciler(r *reconcile.Reconciler) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.reconciler = r
		}
	}
}

// WithDeriver sets the field deriver.
func WithDeriver(d *derive.Deriver) Option {
	return func(p *Pipeline) {
		if d != nil {
			p.deriver = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline turns platform records into the two datasets.
type Pipeline struct {
	fetcher    Fetcher
	reconciler *reconcile.Reconciler
	deriver    *derive.Deriver
	logger     logger.Logger
	now        func() time.Time
}

// New creates a Pipeline reading from fetcher.
func New(fetcher Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:    fetcher,
		reconciler: reconcile.New(),
		deriver:    derive.New(),
		logger:     logger.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one cycle for projectID. A fetch failure aborts the cycle and
// is returned wrapped in types.ErrUpstream; no partial datasets are produced.
func (p *Pipeline) Run(ctx context.Context, projectID string) (*model.Datasets, error) {
	start := time.Now()
	cycleID := uuid.NewString()
	log := p.logger.With(logger.String("cycle", cycleID), logger.String("project", projectID))

	ds, err := p.run(ctx, log, projectID)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordPipelineRun("failure", latency)
		log.Error(ctx, "pipeline cycle failed", logger.Error(err))
		return nil, err
	}
	metrics.RecordPipelineRun("success", latency)

	ds.CycleID = cycleID
	ds.ProjectID = projectID
	ds.FetchedAt = p.now()
	log.Info(ctx, "pipeline cycle finished",
		logger.Int("assets", len(ds.All)),
		logger.Int("finished", len(ds.Finished)),
		logger.Duration("took", time.Since(start)),
	)
	return ds, nil
}

func (p *Pipeline) run(ctx context.Context, log logger.Logger, projectID string) (*model.Datasets, error) {
	t := time.Now()
	assets, err := p.fetcher.FetchAssets(ctx, projectID)
	metrics.RecordFetchLatency(ResourceAssets, float64(time.Since(t).Milliseconds()))
	if err != nil {
		metrics.RecordFetchError(ResourceAssets)
		return nil, fmt.Errorf("%w: fetch assets: %w", types.ErrUpstream, err)
	}
	log.Debug(ctx, "assets fetched", logger.Int("count", len(assets)))

	var labels []model.LabelEvent
	if len(assets) > 0 {
		externalIDs := make([]string, 0, len(assets))
		for i := range assets {
			externalIDs = append(externalIDs, assets[i].ExternalID)
		}
		t = time.Now()
		labels, err = p.fetcher.FetchLabels(ctx, projectID, externalIDs)
		metrics.RecordFetchLatency(ResourceLabels, float64(time.Since(t).Milliseconds()))
		if err != nil {
			metrics.RecordFetchError(ResourceLabels)
			return nil, fmt.Errorf("%w: fetch labels: %w", types.ErrUpstream, err)
		}
		log.Debug(ctx, "labels fetched", logger.Int("count", len(labels)))
	}
	metrics.UpdateFetchedCounts(len(assets), len(labels))

	all := p.reconciler.Reconcile(ctx, assets, labels)
	p.deriver.DeriveAll(ctx, all)
	finished := model.Partition(all)
	metrics.UpdateFinishedAssets(len(finished))

	return &model.Datasets{All: all, Finished: finished}, nil
}

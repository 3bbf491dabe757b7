package service

import (
	"context"
	"fmt"

	"github.com/okian/contrib-leaderboard/internal/adapters/cache"
	"github.com/okian/contrib-leaderboard/internal/adapters/kili"
	repository "github.com/okian/contrib-leaderboard/internal/adapters/repository"
	"github.com/okian/contrib-leaderboard/internal/config"
	"github.com/okian/contrib-leaderboard/internal/domain/derive"
	"github.com/okian/contrib-leaderboard/internal/domain/reconcile"
	"github.com/okian/contrib-leaderboard/internal/domain/scoring"
	"github.com/okian/contrib-leaderboard/internal/ingest"
	"github.com/okian/contrib-leaderboard/pkg/logger"
)

// BuildPipeline assembles the Kili client and the domain stages from cfg.
func BuildPipeline(cfg *config.Config, log logger.Logger) (*ingest.Pipeline, error) {
	resolver, err := derive.NewAuthorResolver(cfg.AuthorStrategy)
	if err != nil {
		return nil, err
	}
	classifier, err := derive.NewSourceClassifier(cfg.SourceStrategy, cfg.SentinelField, cfg.SentinelValue)
	if err != nil {
		return nil, err
	}

	client := kili.NewClient(cfg.KiliEndpoint, cfg.APIKey,
		kili.WithPageSize(cfg.PageSize),
		kili.WithTimeout(cfg.RequestTimeout()),
		kili.WithLogger(log.Named("kili")),
	)
	reconciler := reconcile.New(
		reconcile.WithExcludedAuthors(cfg.ExcludedAuthors),
		reconcile.WithIdentity(resolver.Resolve),
		reconcile.WithLogger(log.Named("reconcile")),
	)
	deriver := derive.New(
		derive.WithAuthorResolver(resolver),
		derive.WithSourceClassifier(classifier),
		derive.WithScorer(BuildScorer(cfg)),
		derive.WithLogger(log.Named("derive")),
	)

	return ingest.New(client,
		ingest.WithReconciler(reconciler),
		ingest.WithDeriver(deriver),
		ingest.WithLogger(log.Named("ingest")),
	), nil
}

// BuildScorer returns the points table configured in cfg.
func BuildScorer(cfg *config.Config) *scoring.WeightedScorer {
	return scoring.NewWeightedScorer(scoring.WithSourceWeights(cfg.SourceWeights))
}

// BuildCache returns the dataset cache selected by cfg.
func BuildCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		c, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL())
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	default:
		return cache.NewMemoryCache(cache.WithTTL(cfg.CacheTTL())), nil
	}
}

// NewFromConfig builds a Service with every component taken from cfg.
func NewFromConfig(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Service, error) {
	pipeline, err := BuildPipeline(cfg, log)
	if err != nil {
		return nil, err
	}
	c, err := BuildCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithPipeline(pipeline),
		WithCache(c),
		WithStore(repository.NewSnapshotStore()),
		WithScorer(BuildScorer(cfg)),
		WithProjectID(cfg.ProjectID),
		WithLeaderboardDataset(cfg.LeaderboardDataset),
		WithLocation(cfg.Location()),
		WithLogger(log.Named("service")),
	}
	return New(append(base, opts...)...), nil
}

// Package derive computes the per-asset fields the views are built from.
package derive

import (
	"context"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
	"github.com/okian/contrib-leaderboard/internal/domain/scoring"
	"github.com/okian/contrib-leaderboard/pkg/logger"
)

// Option applies a configuration option to the Deriver.
type Option func(*Deriver)

// WithAuthorResolver sets how contributors are named.
func WithAuthorResolver(r AuthorResolver) Option {
	return func(d *Deriver) {
		if r != nil {
			d.author = r
		}
	}
}

// WithSourceClassifier sets how the generic "problem" source is reclassified.
func WithSourceClassifier(c SourceClassifier) Option {
	return func(d *Deriver) {
		if c != nil {
			d.source = c
		}
	}
}

// WithScorer sets the points table.
func WithScorer(s scoring.Scorer) Option {
	return func(d *Deriver) {
		if s != nil {
			d.scorer = s
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Deriver) {
		if l != nil {
			d.logger = l
		}
	}
}

// Deriver fills status, source, domain, author, hours and points on
// reconciled assets. It is safe for concurrent use.
type Deriver struct {
	author AuthorResolver
	source SourceClassifier
	scorer scoring.Scorer
	logger logger.Logger
}

// New creates a Deriver using email local parts, the always-AIME classifier
// and the default points table unless overridden.
func New(opts ...Option) *Deriver {
	d := &Deriver{
		author: AuthorResolverFunc(EmailLocalPart),
		source: AlwaysAIME{},
		scorer: scoring.NewWeightedScorer(),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive updates a in place. Malformed payloads leave the affected fields missing.
func (d *Deriver) Derive(ctx context.Context, a *model.Asset) {
	a.Status = ExtractStatus(a.Response)
	a.HoursToLabel = HoursToLabel(a.SecondsToLabel)

	metadata, ok := DecodeObject(a.Metadata)
	if !ok && len(a.Metadata) > 0 {
		d.logger.Debug(ctx, "asset metadata is not an object", logger.String("asset", a.ID))
	}

	a.Source = ""
	if raw := ExtractSource(metadata); raw != "" {
		a.Source = d.source.Classify(raw, metadata)
	}
	a.Domain = ExtractDomain(metadata)

	a.Author, a.Email = "", ""
	if a.Attribution != nil {
		a.Author = d.author.Resolve(*a.Attribution)
		a.Email = a.Attribution.Email
	}

	a.Points = nil
	if a.Source != "" {
		if p, ok := d.scorer.Points(a.Source); ok {
			a.Points = &p
		}
	}
}

// DeriveAll derives every asset of the slice in place.
func (d *Deriver) DeriveAll(ctx context.Context, assets []model.Asset) {
	for i := range assets {
		d.Derive(ctx, &assets[i])
	}
}

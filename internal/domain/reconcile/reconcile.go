// Package reconcile merges label events into their assets.
package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
	"github.com/okian/contrib-leaderboard/pkg/logger"
	"github.com/okian/contrib-leaderboard/pkg/metrics"
)

// Gap kinds reported when an asset cannot be fully reconciled.
const (
	GapNoLabels      = "no_labels"
	GapNoAttribution = "no_attribution"
)

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithExcludedAuthors sets identities whose events are ignored for
// attribution and duration. Matching is case-insensitive against the event's
// email and its resolved identity.
func WithExcludedAuthors(authors []string) Option {
	return func(r *Reconciler) {
		r.excluded = make(map[string]struct{}, len(authors))
		for _, a := range authors {
			a = strings.ToLower(strings.TrimSpace(a))
			if a != "" {
				r.excluded[a] = struct{}{}
			}
		}
	}
}

// WithIdentity sets the function used to resolve an author's display identity
// when checking exclusions.
func WithIdentity(fn func(model.Author) string) Option {
	return func(r *Reconciler) {
		if fn != nil {
			r.identity = fn
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reconciler picks the representative response, the attribution event and the
// total duration for each asset.
type Reconciler struct {
	excluded map[string]struct{}
	identity func(model.Author) string
	logger   logger.Logger
}

// New creates a Reconciler with no excluded authors.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		excluded: map[string]struct{}{},
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Excluded reports whether events by a are left out of attribution and duration.
func (r *Reconciler) Excluded(a model.Author) bool {
	if len(r.excluded) == 0 {
		return false
	}
	if _, ok := r.excluded[strings.ToLower(strings.TrimSpace(a.Email))]; ok {
		return true
	}
	if r.identity != nil {
		if _, ok := r.excluded[strings.ToLower(r.identity(a))]; ok {
			return true
		}
	}
	return false
}

// Reconcile returns a copy of assets with Response, Attribution, CreatedAt and
// SecondsToLabel filled from labels. Labels must be in fetch order; assets
// without usable labels are kept with zero duration and no attribution.
func (r *Reconciler) Reconcile(ctx context.Context, assets []model.Asset, labels []model.LabelEvent) []model.Asset {
	byAsset := make(map[string][]int, len(assets))
	for i := range labels {
		byAsset[labels[i].AssetID] = append(byAsset[labels[i].AssetID], i)
	}

	out := make([]model.Asset, len(assets))
	for i := range assets {
		a := assets[i]
		a.Response, a.Attribution, a.CreatedAt, a.SecondsToLabel = nil, nil, nil, 0

		events := byAsset[a.ID]
		if len(events) == 0 {
			r.gap(ctx, GapNoLabels, a)
			out[i] = a
			continue
		}
		a.Response = labels[events[len(events)-1]].Response

		var (
			best  = -1
			total float64
		)
		for _, idx := range events {
			ev := labels[idx]
			if r.Excluded(ev.Author) {
				continue
			}
			total += ev.SecondsToLabel
			// strict comparison keeps the earliest event on ties
			if best < 0 || ev.SecondsToLabel > labels[best].SecondsToLabel {
				best = idx
			}
		}
		a.SecondsToLabel = total

		if best < 0 {
			r.gap(ctx, GapNoAttribution, a)
			out[i] = a
			continue
		}
		author := labels[best].Author
		createdAt := labels[best].CreatedAt
		a.Attribution = &author
		if !createdAt.IsZero() {
			a.CreatedAt = timePtr(createdAt)
		}
		out[i] = a
	}
	return out
}

func (r *Reconciler) gap(ctx context.Context, kind string, a model.Asset) {
	metrics.RecordReconcileGap(kind)
	r.logger.Debug(ctx, "asset left partially reconciled",
		logger.String("kind", kind),
		logger.String("asset", a.ID),
		logger.String("externalId", a.ExternalID),
	)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

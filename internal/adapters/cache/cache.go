// Package cache keeps the datasets of the last successful cycle per project.
package cache

import (
	"context"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
)

// Cache stores datasets keyed by project id. Implementations must be safe for
// concurrent use. A miss is reported with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, projectID string) (ds *model.Datasets, ok bool, err error)
	Set(ctx context.Context, projectID string, ds *model.Datasets) error
	Invalidate(ctx context.Context, projectID string) error
	Name() string
}

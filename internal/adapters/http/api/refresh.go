package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
)

// RefreshDependencies defines the interface for cache refreshes.
type RefreshDependencies interface {
	Refresh(ctx context.Context) (*model.Datasets, error)
}

// RefreshHandler handles refresh requests.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

type refreshResponse struct {
	Status    string    `json:"status"`
	CycleID   string    `json:"cycle_id"`
	FetchedAt time.Time `json:"fetched_at"`
	Assets    int       `json:"assets"`
	Finished  int       `json:"finished"`
}

// HandlePostRefresh handles POST /refresh requests.
func (h *RefreshHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_refresh"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ds, err := h.deps.Refresh(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Status:    "refreshed",
		CycleID:   ds.CycleID,
		FetchedAt: ds.FetchedAt,
		Assets:    len(ds.All),
		Finished:  len(ds.Finished),
	})
}

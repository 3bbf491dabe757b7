package api

import (
	"net/http"

	"github.com/okian/contrib-leaderboard/internal/domain/types"
)

// PointsDependencies defines the interface for the points explanation.
type PointsDependencies interface {
	Points() types.PointsTable
}

// PointsHandler handles points requests.
type PointsHandler struct {
	deps PointsDependencies
}

// NewPointsHandler creates a new points handler.
func NewPointsHandler(deps PointsDependencies) *PointsHandler {
	return &PointsHandler{deps: deps}
}

// HandleGetPoints handles GET /points requests.
func (h *PointsHandler) HandleGetPoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Points())
}

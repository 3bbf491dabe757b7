package api

import (
	"context"
	"net/http"

	"github.com/okian/contrib-leaderboard/internal/domain/stats"
)

// PerformanceDependencies defines the interface for the ranking tab.
type PerformanceDependencies interface {
	Performance(ctx context.Context) (stats.PerformanceView, error)
	SourceChampions(ctx context.Context, source string) ([]stats.Standing, error)
}

// PerformanceHandler handles performance requests.
type PerformanceHandler struct {
	deps PerformanceDependencies
}

// NewPerformanceHandler creates a new performance handler.
func NewPerformanceHandler(deps PerformanceDependencies) *PerformanceHandler {
	return &PerformanceHandler{deps: deps}
}

// HandleGetPerformance handles GET /performance requests.
func (h *PerformanceHandler) HandleGetPerformance(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_performance"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := h.deps.Performance(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type sourceChampionsResponse struct {
	Source    string           `json:"source"`
	Champions []stats.Standing `json:"champions"`
}

// HandleGetSourceChampions handles GET /performance/sources/{source} requests.
func (h *PerformanceHandler) HandleGetSourceChampions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_source_champions"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	source, ok := pathParam(r, "/performance/sources/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	champions, err := h.deps.SourceChampions(r.Context(), source)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sourceChampionsResponse{Source: source, Champions: champions})
}

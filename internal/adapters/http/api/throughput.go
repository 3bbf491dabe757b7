package api

import (
	"context"
	"net/http"

	"github.com/okian/contrib-leaderboard/internal/domain/stats"
)

// ThroughputDependencies defines the interface for the trend tab.
type ThroughputDependencies interface {
	Throughput(ctx context.Context, start, end string) (stats.ThroughputView, error)
}

// ThroughputHandler handles throughput requests.
type ThroughputHandler struct {
	deps ThroughputDependencies
}

// NewThroughputHandler creates a new throughput handler.
func NewThroughputHandler(deps ThroughputDependencies) *ThroughputHandler {
	return &ThroughputHandler{deps: deps}
}

// HandleGetThroughput handles GET /throughput?start=YYYY-MM-DD&end=YYYY-MM-DD requests.
func (h *ThroughputHandler) HandleGetThroughput(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_throughput"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	view, err := h.deps.Throughput(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

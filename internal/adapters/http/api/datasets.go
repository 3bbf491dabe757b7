package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
)

// Dataset names accepted by /datasets/{name}.
const (
	datasetAll      = "all"
	datasetFinished = "finished"
)

// DatasetsDependencies defines the interface for dataset reads.
type DatasetsDependencies interface {
	Datasets(ctx context.Context) (*model.Datasets, error)
}

// DatasetsHandler serves the raw dataset rows.
type DatasetsHandler struct {
	deps DatasetsDependencies
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(deps DatasetsDependencies) *DatasetsHandler {
	return &DatasetsHandler{deps: deps}
}

type datasetResponse struct {
	Name      string        `json:"name"`
	CycleID   string        `json:"cycle_id"`
	ProjectID string        `json:"project_id"`
	FetchedAt time.Time     `json:"fetched_at"`
	Count     int           `json:"count"`
	Assets    []model.Asset `json:"assets"`
}

// HandleGetDataset handles GET /datasets/{all|finished} requests.
func (h *DatasetsHandler) HandleGetDataset(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_dataset"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name, ok := pathParam(r, "/datasets/")
	if !ok || (name != datasetAll && name != datasetFinished) {
		http.NotFound(w, r)
		return
	}
	ds, err := h.deps.Datasets(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	rows := ds.All
	if name == datasetFinished {
		rows = ds.Finished
	}
	writeJSON(w, http.StatusOK, datasetResponse{
		Name:      name,
		CycleID:   ds.CycleID,
		ProjectID: ds.ProjectID,
		FetchedAt: ds.FetchedAt,
		Count:     len(rows),
		Assets:    rows,
	})
}

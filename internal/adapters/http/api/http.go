// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
	"github.com/okian/contrib-leaderboard/internal/domain/stats"
	"github.com/okian/contrib-leaderboard/internal/domain/types"
)

// defaultMaxLimit caps /leaderboard when no limit is configured.
const defaultMaxLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Read operations expose leaderboard data.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, author string) (Entry, error)

	// Datasets returns the current datasets; Refresh reruns the pipeline.
	Datasets(ctx context.Context) (*model.Datasets, error)
	Refresh(ctx context.Context) (*model.Datasets, error)

	// Views of the dashboard tabs.
	Performance(ctx context.Context) (stats.PerformanceView, error)
	SourceChampions(ctx context.Context, source string) ([]stats.Standing, error)
	Throughput(ctx context.Context, start, end string) (stats.ThroughputView, error)
	Points() types.PointsTable
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	datasetsHandler    *DatasetsHandler
	performanceHandler *PerformanceHandler
	throughputHandler  *ThroughputHandler
	refreshHandler     *RefreshHandler
	pointsHandler      *PointsHandler
	dashboardHandler   *dashboardHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps
// /leaderboard; values below 1 fall back to 100.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
		datasetsHandler:    NewDatasetsHandler(deps),
		performanceHandler: NewPerformanceHandler(deps),
		throughputHandler:  NewThroughputHandler(deps),
		refreshHandler:     NewRefreshHandler(deps),
		pointsHandler:      NewPointsHandler(deps),
		dashboardHandler:   newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/datasets/", MetricsMiddleware(s.datasetsHandler.HandleGetDataset, "datasets"))
	mux.HandleFunc("/performance", MetricsMiddleware(s.performanceHandler.HandleGetPerformance, "performance"))
	mux.HandleFunc("/performance/sources/", MetricsMiddleware(s.performanceHandler.HandleGetSourceChampions, "source_champions"))
	mux.HandleFunc("/throughput", MetricsMiddleware(s.throughputHandler.HandleGetThroughput, "throughput"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandlePostRefresh, "refresh"))
	mux.HandleFunc("/points", MetricsMiddleware(s.pointsHandler.HandleGetPoints, "points"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

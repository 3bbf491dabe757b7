package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
	"github.com/okian/contrib-leaderboard/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Runner executes one fetch cycle for a project.
type Runner interface {
	Run(ctx context.Context, projectID string) (*model.Datasets, error)
}

// finishedPayload is written instead of the full datasets when only
// finished rows are requested.
type finishedPayload struct {
	CycleID   string        `json:"cycle_id"`
	ProjectID string        `json:"project_id"`
	FetchedAt time.Time     `json:"fetched_at"`
	Finished  []model.Asset `json:"finished_assets"`
}

// Run fetches the datasets once through runner and writes them to the
// configured file.
func Run(ctx context.Context, config *Config, runner Runner, log logger.Logger) (*Stats, error) {
	if runner == nil {
		return nil, ErrNoRunner
	}
	if config.ProjectID == "" {
		return nil, ErrNoProject
	}
	if log == nil {
		log = logger.Nop()
	}
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	stats := &Stats{StartTime: time.Now()}
	log.Info(ctx, "starting dataset export",
		logger.String("project", config.ProjectID),
		logger.Bool("finishedOnly", config.FinishedOnly),
		logger.Duration("timeout", config.Timeout))

	ds, err := runner.Run(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("pipeline run failed: %w", err)
	}
	stats.CycleID = ds.CycleID
	stats.Assets = len(ds.All)
	stats.Finished = len(ds.Finished)
	stats.Contributors = countContributors(ds.All)

	var payload any = ds
	stats.Written = stats.Assets
	if config.FinishedOnly {
		payload = finishedPayload{CycleID: ds.CycleID, ProjectID: ds.ProjectID, FetchedAt: ds.FetchedAt, Finished: ds.Finished}
		stats.Written = stats.Finished
	}

	filename := config.OutputFile
	if filename == "" {
		filename = DefaultFilename(config.ProjectID, stats.StartTime)
	}
	if err := writeJSON(filename, payload, config.Pretty); err != nil {
		return nil, err
	}
	stats.OutputFile = filename

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// DefaultFilename names the output of an export started at t.
func DefaultFilename(projectID string, t time.Time) string {
	return "datasets_" + projectID + "_" + t.UTC().Format("20060102_150405") + ".json"
}

func writeJSON(filename string, payload any, pretty bool) (err error) {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("%w: create directory: %w", ErrWriteOutput, err)
		}
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("%w: create file: %w", ErrWriteOutput, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close file: %w", ErrWriteOutput, cerr)
		}
	}()

	enc := json.NewEncoder(file)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("%w: encode: %w", ErrWriteOutput, err)
	}
	return nil
}

func countContributors(assets []model.Asset) int {
	seen := make(map[string]struct{})
	for i := range assets {
		if assets[i].Attributed() {
			seen[assets[i].Author] = struct{}{}
		}
	}
	return len(seen)
}

// displayFinalStats logs the summary of the run.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "export completed",
		logger.String("cycle", stats.CycleID),
		logger.String("file", stats.OutputFile),
		logger.Int("assets", stats.Assets),
		logger.Int("finished", stats.Finished),
		logger.Int("contributors", stats.Contributors),
		logger.Int("written", stats.Written),
		logger.String("duration", stats.Duration.String()))
}

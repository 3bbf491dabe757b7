package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	service "github.com/okian/contrib-leaderboard/internal/app"
	"github.com/okian/contrib-leaderboard/internal/config"
	"github.com/okian/contrib-leaderboard/internal/export"
	"github.com/okian/contrib-leaderboard/pkg/logger"
)

const defaultTimeout = 5 * time.Minute

func main() {
	var (
		outputFile = flag.String("out", "", "Output file (default: datasets_<project>_TIMESTAMP.json)")
		projectID  = flag.String("project", "", "Project id, overrides LEADERBOARD_PROJECT_ID")
		finished   = flag.Bool("finished", false, "Write only the finished dataset")
		pretty     = flag.Bool("pretty", false, "Indent the JSON output")
		timeout    = flag.Duration("timeout", defaultTimeout, "Deadline of the whole run")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		export.ShowHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *projectID != "" {
		_ = os.Setenv("LEADERBOARD_PROJECT_ID", *projectID)
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Get()

	pipeline, err := service.BuildPipeline(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build pipeline", logger.Error(err))
		os.Exit(1)
	}

	if _, err := export.Run(ctx, &export.Config{
		ProjectID:    cfg.ProjectID,
		OutputFile:   *outputFile,
		FinishedOnly: *finished,
		Pretty:       *pretty,
		Timeout:      *timeout,
	}, pipeline, log.Named("export")); err != nil {
		log.Error(ctx, "export failed", logger.Error(err))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"neows-pipeline/internal/api"
	"neows-pipeline/internal/config"
	"neows-pipeline/internal/database"
	"neows-pipeline/internal/export"
	"neows-pipeline/internal/model"
	"neows-pipeline/internal/pipeline"
	"neows-pipeline/internal/transform"
	"neows-pipeline/internal/version"
	"neows-pipeline/internal/writer"
)

// Exit codes, one per pipeline stage, so wrappers can tell failures apart.
const (
	exitOK        = 0
	exitUnknown   = 1
	exitUsage     = 2
	exitFetch     = 3
	exitTransform = 4
	exitLoad      = 5
	exitBrowse    = 6
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config file (environment-only when empty)")
	mode := flag.String("mode", "feed", "pipeline mode: feed or browse")
	start := flag.String("start", "", "window start date (YYYY-MM-DD), required for feed mode")
	end := flag.String("end", "", "window end date (YYYY-MM-DD), defaults to the start date")
	pages := flag.Int("pages", 1, "number of pages to fetch in browse mode")
	demo := flag.Bool("demo", false, "force demo mode (read local fixtures)")
	live := flag.Bool("live", false, "force live mode (call the NASA API)")
	noExport := flag.Bool("no-export", false, "skip writing the report file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return exitOK
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if *demo && *live {
		logger.Error("-demo and -live are mutually exclusive")
		return exitUsage
	}

	switch *mode {
	case "feed":
		return runFeed(logger, *configPath, *start, *end, *demo, *live, *noExport)
	case "browse":
		logger.Warn("browse mode is not implemented, no pages fetched", "pages", *pages)
		return exitBrowse
	default:
		logger.Error("unknown mode", "mode", *mode)
		return exitUnknown
	}
}

func runFeed(logger *slog.Logger, configPath, start, end string, demo, live, noExport bool) int {
	if start == "" {
		logger.Error("feed mode requires -start")
		return exitUsage
	}
	w, err := model.ParseWindow(start, end)
	if err != nil {
		logger.Error("invalid window", "error", err)
		return exitUsage
	}

	// Load configuration
	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return exitUsage
	}

	// Flag overrides beat DEMO_MODE from the environment.
	demoMode := cfg.Demo.Enabled
	if demo {
		demoMode = true
	}
	if live {
		demoMode = false
	}

	logger.Info("starting pipeline",
		"version", version.Version,
		"commit", version.Commit,
		"window", w.String(),
		"demo", demoMode,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return exitLoad
	}
	defer pool.Close()

	store := writer.NewStore(pool, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		return exitLoad
	}

	source := api.NewFetcher(demoMode, cfg.Demo.FixtureDir, cfg.API.BaseURL, cfg.API.Key, logger,
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
	)

	var exporter pipeline.EventExporter
	if !noExport {
		e, err := export.New(cfg.Export.Dir, cfg.Export.Format, logger)
		if err != nil {
			logger.Error("invalid export settings", "error", err)
			return exitUsage
		}
		exporter = e
	}

	runner := pipeline.New(source, store, exporter, logger)
	res, err := runner.Run(ctx, w)
	if err != nil {
		logger.Error("pipeline run failed", "error", err)
		return exitCodeFor(err)
	}

	logger.Info("feed run succeeded",
		"run_id", res.RunID,
		"inserted", res.Inserted,
		"export", res.ExportPath,
		"duration", res.Duration,
	)
	return exitOK
}

// loadConfig reads the YAML file when a path is given, otherwise builds the
// configuration from environment variables alone.
func loadConfig(path string) (*config.PipelineConfig, error) {
	if path != "" {
		return config.LoadAndValidate(path)
	}
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exitCodeFor maps a failed run to its stage exit code.
func exitCodeFor(err error) int {
	var fetchErr *api.FetchError
	var parseErr *api.ParseError
	var transformErr *transform.TransformError
	var exportErr *export.ExportError
	var loadErr *writer.LoadError

	switch {
	case errors.As(err, &fetchErr), errors.As(err, &parseErr):
		return exitFetch
	case errors.As(err, &transformErr), errors.As(err, &exportErr):
		return exitTransform
	case errors.As(err, &loadErr):
		return exitLoad
	default:
		return exitUnknown
	}
}

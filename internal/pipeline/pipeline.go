package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"neows-pipeline/internal/api"
	"neows-pipeline/internal/model"
	"neows-pipeline/internal/transform"
	"neows-pipeline/internal/writer"
)

// FeedSource fetches the close-approach feed for a window.
type FeedSource interface {
	GetFeed(ctx context.Context, w model.Window) (*api.FeedResponse, error)
}

// EventLoader replaces a window's warehouse rows with events.
type EventLoader interface {
	ReplaceWindow(ctx context.Context, w model.Window, events []model.CloseApproachEvent) (writer.LoadResult, error)
}

// EventExporter writes events to a report file and returns its path.
type EventExporter interface {
	Export(events []model.CloseApproachEvent) (string, error)
}

// ExporterFunc is a function adapter for EventExporter.
type ExporterFunc func(events []model.CloseApproachEvent) (string, error)

func (f ExporterFunc) Export(events []model.CloseApproachEvent) (string, error) {
	return f(events)
}

// Runner wires one feed run: fetch, flatten, export, load.
type Runner struct {
	source   FeedSource
	loader   EventLoader
	exporter EventExporter
	logger   *slog.Logger
}

// New creates a Runner. A nil exporter skips the report file step.
func New(source FeedSource, loader EventLoader, exporter EventExporter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		source:   source,
		loader:   loader,
		exporter: exporter,
		logger:   logger,
	}
}

// Result summarizes one completed run.
type Result struct {
	RunID      string
	Window     model.Window
	Dates      int // date buckets in the feed
	Events     int // flattened close-approach events
	Skipped    int // skip warnings emitted while flattening
	Deleted    int64
	Inserted   int64
	Duplicates int
	Conflicts  int64
	ExportPath string // empty when export is disabled
	Duration   time.Duration
}

// Run executes one feed run for the window.
func (r *Runner) Run(ctx context.Context, w model.Window) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Window: w}
	logger := r.logger.With("run_id", res.RunID)
	start := time.Now()

	logger.Info("run started", "window", w.String())

	feed, err := r.source.GetFeed(ctx, w)
	if err != nil {
		return nil, err
	}

	flat, err := transform.Flatten(feed)
	if err != nil {
		return nil, err
	}
	for _, warn := range flat.Warnings {
		logger.Warn("record skipped",
			"date", warn.DateKey,
			"object_id", warn.ObjectID,
			"reason", warn.Reason,
		)
	}
	res.Dates = flat.Dates
	res.Events = len(flat.Events)
	res.Skipped = len(flat.Warnings)

	if r.exporter != nil {
		path, err := r.exporter.Export(flat.Events)
		if err != nil {
			return nil, err
		}
		res.ExportPath = path
	}

	load, err := r.loader.ReplaceWindow(ctx, w, flat.Events)
	if err != nil {
		return nil, err
	}
	res.Deleted = load.Deleted
	res.Inserted = load.Inserted
	res.Duplicates = load.Duplicates
	res.Conflicts = load.Conflicts

	res.Duration = time.Since(start)
	logger.Info("run complete",
		"window", w.String(),
		"dates", res.Dates,
		"events", res.Events,
		"skipped", res.Skipped,
		"deleted", res.Deleted,
		"inserted", res.Inserted,
		"duplicates", res.Duplicates,
		"conflicts", res.Conflicts,
		"export", res.ExportPath,
		"duration", res.Duration,
	)
	return res, nil
}

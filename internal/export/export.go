package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"neows-pipeline/internal/model"
)

// Formats accepted by New.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// baseName is the fixed output name. Each run replaces the previous export.
const baseName = "neows_latest"

// header lists the output columns in warehouse order.
var header = []string{
	"object_id",
	"name",
	"close_approach_date",
	"absolute_magnitude_h",
	"diameter_min_km",
	"diameter_max_km",
	"is_potentially_hazardous",
	"relative_velocity_kps",
	"miss_distance_km",
	"orbiting_body",
}

// ExportError wraps a failure to produce a report file.
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return "export " + e.Format + " " + e.Path + ": " + e.Err.Error()
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Exporter writes events to a single report file in one format.
type Exporter struct {
	dir    string
	format string
	logger *slog.Logger
}

// New creates an Exporter writing <dir>/neows_latest.<format>.
func New(dir, format string, logger *slog.Logger) (*Exporter, error) {
	switch format {
	case FormatCSV, FormatXLSX, FormatJSON:
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{dir: dir, format: format, logger: logger}, nil
}

// Export writes events to the report file, creating the export directory if
// needed, and returns the file path.
func (e *Exporter) Export(events []model.CloseApproachEvent) (string, error) {
	path := filepath.Join(e.dir, baseName+"."+e.format)
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", &ExportError{Format: e.format, Path: path, Err: err}
	}

	var err error
	switch e.format {
	case FormatCSV:
		err = writeCSV(path, events)
	case FormatXLSX:
		err = writeXLSX(path, events)
	case FormatJSON:
		err = writeJSON(path, events)
	}
	if err != nil {
		return "", &ExportError{Format: e.format, Path: path, Err: err}
	}

	e.logger.Info("events exported", "path", path, "format", e.format, "events", len(events))
	return path, nil
}

// row renders one event as strings in header order.
func row(ev model.CloseApproachEvent) []string {
	return []string{
		ev.ObjectID,
		ev.Name,
		ev.CloseApproachDate.Format(model.DateLayout),
		formatFloat(ev.AbsoluteMagnitudeH),
		formatFloat(ev.DiameterMinKM),
		formatFloat(ev.DiameterMaxKM),
		strconv.FormatBool(ev.IsPotentiallyHazardous),
		formatFloat(ev.RelativeVelocityKPS),
		formatFloat(ev.MissDistanceKM),
		ev.OrbitingBody,
	}
}

// formatFloat keeps the shortest exact decimal form, so 0.0153 stays 0.0153.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

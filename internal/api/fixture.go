package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"neows-pipeline/internal/model"
)

// FixtureStore serves committed sample feeds instead of the live API.
// Files are keyed by the exact window: feed_<start>_<end>.json.
type FixtureStore struct {
	dir    string
	logger *slog.Logger
}

// NewFixtureStore creates a fixture-backed feed source rooted at dir.
func NewFixtureStore(dir string, logger *slog.Logger) *FixtureStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FixtureStore{dir: dir, logger: logger}
}

// GetFeed loads the sample feed for the exact window. A window without a
// matching fixture yields a *FetchError; a fixture that does not decode
// into the feed envelope yields a *ParseError.
func (s *FixtureStore) GetFeed(ctx context.Context, w model.Window) (*FeedResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Window: w, Err: err}
	}

	path := filepath.Join(s.dir, FixtureName(w))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FetchError{Window: w, Err: fmt.Errorf("no sample feed for window: %w", err)}
	}

	var resp FeedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &ParseError{Window: w, Err: err}
	}
	if resp.NearEarthObjects == nil {
		return nil, &ParseError{Window: w, Err: errors.New("missing near_earth_objects")}
	}

	s.logger.Debug("sample feed loaded",
		"path", path,
		"element_count", resp.ElementCount,
	)

	return &resp, nil
}

// FixtureName returns the fixture file name for a window.
func FixtureName(w model.Window) string {
	return fmt.Sprintf("feed_%s_%s.json",
		w.Start.Format(model.DateLayout),
		w.End.Format(model.DateLayout),
	)
}

package api

import (
	"context"
	"log/slog"

	"neows-pipeline/internal/model"
)

// feedSource is satisfied by both the live Client and the FixtureStore.
type feedSource interface {
	GetFeed(ctx context.Context, w model.Window) (*FeedResponse, error)
}

// Fetcher resolves feed windows from either the live NeoWs API or the
// committed sample fixtures. The source is chosen once, at construction.
type Fetcher struct {
	source feedSource
}

// NewFetcher builds the feed source for a run. Demo mode serves fixtures
// from fixtureDir and never touches the network; live mode issues real
// requests through a Client built from baseURL, apiKey and opts.
func NewFetcher(demo bool, fixtureDir, baseURL, apiKey string, logger *slog.Logger, opts ...ClientOption) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	f := &Fetcher{}
	if demo {
		f.source = NewFixtureStore(fixtureDir, logger)
	} else {
		opts = append([]ClientOption{WithLogger(logger)}, opts...)
		f.source = NewClient(baseURL, apiKey, opts...)
	}
	return f
}

// GetFeed fetches the window from the selected source.
func (f *Fetcher) GetFeed(ctx context.Context, w model.Window) (*FeedResponse, error) {
	return f.source.GetFeed(ctx, w)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"neows-pipeline/internal/model"
)

const (
	// DemoKey is NASA's public rate-limited API key.
	DemoKey = "DEMO_KEY"

	feedPath = "/feed"
)

// GetFeed fetches the close-approach feed for an inclusive date window.
// Transient failures (timeouts, 5xx, 429) are retried with backoff; any
// other failure, or retry exhaustion, yields a *FetchError. A body that
// does not decode into the feed envelope yields a *ParseError.
func (c *Client) GetFeed(ctx context.Context, w model.Window) (*FeedResponse, error) {
	query := url.Values{}
	query.Set("start_date", w.Start.Format(model.DateLayout))
	query.Set("end_date", w.End.Format(model.DateLayout))
	query.Set("api_key", c.apiKey)

	body, err := c.doWithRetry(ctx, http.MethodGet, feedPath, query)
	if err != nil {
		return nil, &FetchError{Window: w, Err: err}
	}

	var resp FeedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Window: w, Err: err}
	}
	if resp.NearEarthObjects == nil {
		return nil, &ParseError{Window: w, Err: errors.New("missing near_earth_objects")}
	}

	c.logger.Debug("feed fetched",
		"window", w.String(),
		"element_count", resp.ElementCount,
		"dates", len(resp.NearEarthObjects),
	)

	return &resp, nil
}

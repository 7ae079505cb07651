// Package api provides the NASA NeoWs REST client and feed sources.
//
// Endpoints:
//   - Feed: https://api.nasa.gov/neo/rest/v1/feed?start_date&end_date&api_key
//
// The public DEMO_KEY works without registration but is heavily rate limited
// (429s are retried with backoff). FixtureStore serves committed sample
// payloads instead of the live API for offline runs.
package api

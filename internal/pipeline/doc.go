// Package pipeline orchestrates one feed run end to end.
//
// A run:
//   - Fetches the close-approach feed for the requested window
//   - Flattens it into per-approach events
//   - Writes the report file when an exporter is configured
//   - Replaces the window's warehouse rows atomically
//
// Errors pass through with their package types intact so the caller can
// map them to exit codes.
package pipeline

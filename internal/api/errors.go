package api

import "neows-pipeline/internal/model"

// FetchError reports a feed retrieval that failed for a window, either
// immediately (4xx, missing fixture) or after retries were exhausted.
type FetchError struct {
	Window model.Window
	Err    error
}

func (e *FetchError) Error() string {
	return "fetch feed " + e.Window.String() + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a feed body that is not valid JSON or lacks the
// expected envelope.
type ParseError struct {
	Window model.Window
	Err    error
}

func (e *ParseError) Error() string {
	return "parse feed " + e.Window.String() + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

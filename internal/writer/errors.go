package writer

import "neows-pipeline/internal/model"

// LoadError wraps any store failure during a window replace. The transaction
// is rolled back before it surfaces, so the table keeps its pre-call state.
type LoadError struct {
	Window model.Window
	Err    error
}

func (e *LoadError) Error() string {
	return "load window " + e.Window.String() + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Package transform flattens raw NeoWs feed payloads into close-approach events.
//
// The feed groups objects under YYYY-MM-DD date keys; each object carries zero
// or more close-approach sub-records. Flatten emits one event per
// (date, object, sub-record) combination. Records without an object id or a
// parseable approach date are dropped and reported as warnings; only an
// unusable top-level structure aborts the transform.
package transform

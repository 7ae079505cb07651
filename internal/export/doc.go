// Package export writes flattened close-approach events to report files.
//
// One file per run, neows_latest.<format> in the export directory, replaced
// on every run. CSV and XLSX exports carry a header row in warehouse column
// order; JSON exports are an array of objects keyed by column name.
package export

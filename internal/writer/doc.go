// Package writer persists flattened close-approach events into the neows table.
//
// Loading is replace-on-reload: each run deletes the requested date window and
// batch-inserts the fresh events inside one transaction. Re-running the same
// or an overlapping window can therefore never duplicate rows or leave a
// half-replaced range behind; rows outside the window are never touched.
package writer

// Package database provides connection pool management for the PostgreSQL
// warehouse.
//
// The pipeline keeps a single pgx pool for its one table (neows). The pool is
// opened, pinged, used for one run, and closed; sizing comes from config.
package database

package writer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"neows-pipeline/internal/model"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS neows (
    object_id                TEXT             NOT NULL,
    name                     TEXT             NOT NULL,
    close_approach_date      DATE             NOT NULL,
    absolute_magnitude_h     DOUBLE PRECISION NOT NULL,
    diameter_min_km          DOUBLE PRECISION NOT NULL,
    diameter_max_km          DOUBLE PRECISION NOT NULL,
    is_potentially_hazardous BOOLEAN          NOT NULL,
    relative_velocity_kps    DOUBLE PRECISION NOT NULL,
    miss_distance_km         DOUBLE PRECISION NOT NULL,
    orbiting_body            TEXT             NOT NULL,
    PRIMARY KEY (close_approach_date, object_id)
)`

const createIndexSQL = `CREATE INDEX IF NOT EXISTS neows_object_id_idx ON neows (object_id)`

const deleteWindowSQL = `DELETE FROM neows WHERE close_approach_date BETWEEN $1 AND $2`

const insertEventSQL = `
INSERT INTO neows (object_id, name, close_approach_date, absolute_magnitude_h, diameter_min_km, diameter_max_km, is_potentially_hazardous, relative_velocity_kps, miss_distance_km, orbiting_body)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (close_approach_date, object_id) DO NOTHING`

// db is the subset of pgxpool.Pool the store uses, narrowed so tests can
// substitute a fake transaction source.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Store writes close-approach events to the neows table.
type Store struct {
	db     db
	logger *slog.Logger
}

// NewStore creates a Store backed by the warehouse pool.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: pool, logger: logger}
}

// LoadResult reports what one ReplaceWindow call did.
type LoadResult struct {
	Deleted    int64 // rows removed by the window pre-delete
	Inserted   int64 // rows actually written
	Duplicates int   // in-batch key collisions resolved last-write-wins
	Conflicts  int64 // inserts skipped against existing rows outside the window
}

// EnsureSchema creates the neows table and its object id index if absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create neows table: %w", err)
	}
	if _, err := s.db.Exec(ctx, createIndexSQL); err != nil {
		return fmt.Errorf("create object id index: %w", err)
	}
	return nil
}

// ReplaceWindow atomically replaces the window's rows with events: delete
// in-window, then batch insert, in one transaction. Any failure rolls back
// fully and yields a *LoadError. Composite key collisions inside the batch
// resolve last-write-wins before insert; collisions with rows the pre-delete
// never touched (dates outside the window) are skipped and counted.
func (s *Store) ReplaceWindow(ctx context.Context, w model.Window, events []model.CloseApproachEvent) (LoadResult, error) {
	deduped, dupes := dedupeLastWins(events)
	res := LoadResult{Duplicates: dupes}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return LoadResult{}, &LoadError{Window: w, Err: fmt.Errorf("begin: %w", err)}
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, deleteWindowSQL, w.Start, w.End)
	if err != nil {
		return LoadResult{}, &LoadError{Window: w, Err: fmt.Errorf("delete window: %w", err)}
	}
	res.Deleted = ct.RowsAffected()

	res.Inserted, res.Conflicts, err = insertEvents(ctx, tx, deduped)
	if err != nil {
		return LoadResult{}, &LoadError{Window: w, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return LoadResult{}, &LoadError{Window: w, Err: fmt.Errorf("commit: %w", err)}
	}

	s.logger.Info("window replaced",
		"window", w.String(),
		"deleted", res.Deleted,
		"inserted", res.Inserted,
		"duplicates", res.Duplicates,
		"conflicts", res.Conflicts,
	)
	return res, nil
}

// insertEvents queues one insert per event and drains the batch results,
// counting rows skipped by ON CONFLICT DO NOTHING.
func insertEvents(ctx context.Context, tx pgx.Tx, events []model.CloseApproachEvent) (inserted, conflicts int64, err error) {
	if len(events) == 0 {
		return 0, 0, nil
	}

	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(insertEventSQL,
			ev.ObjectID,
			ev.Name,
			ev.CloseApproachDate,
			ev.AbsoluteMagnitudeH,
			ev.DiameterMinKM,
			ev.DiameterMaxKM,
			ev.IsPotentiallyHazardous,
			ev.RelativeVelocityKPS,
			ev.MissDistanceKM,
			ev.OrbitingBody,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		ct, err := results.Exec()
		if err != nil {
			return 0, 0, fmt.Errorf("insert event: %w", err)
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		} else {
			inserted++
		}
	}

	return inserted, conflicts, nil
}

// dedupeLastWins collapses events sharing a composite key. The later event in
// input order wins, holding the position of the first occurrence.
func dedupeLastWins(events []model.CloseApproachEvent) ([]model.CloseApproachEvent, int) {
	if len(events) < 2 {
		return events, 0
	}

	type key struct {
		date string
		id   string
	}
	out := make([]model.CloseApproachEvent, 0, len(events))
	seen := make(map[key]int, len(events))
	for _, ev := range events {
		k := key{ev.CloseApproachDate.Format(model.DateLayout), ev.ObjectID}
		if i, ok := seen[k]; ok {
			out[i] = ev
			continue
		}
		seen[k] = len(out)
		out = append(out, ev)
	}
	return out, len(events) - len(out)
}

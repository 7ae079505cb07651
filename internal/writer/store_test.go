package writer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"neows-pipeline/internal/model"
)

// rowKey is the composite primary key of the neows table.
type rowKey struct {
	date string
	id   string
}

// fakeDB is an in-memory warehouse stand-in. Transactions stage a copy of
// the row map and publish it only on Commit, so rollback behavior and the
// delete-then-insert ordering are observable from the outside.
type fakeDB struct {
	rows    map[rowKey]model.CloseApproachEvent
	execLog []string

	failExec   bool
	failBegin  bool
	failDelete bool
	failInsert int // fail the Nth insert in a batch (1-based), 0 disables
	failCommit bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: make(map[rowKey]model.CloseApproachEvent)}
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.failBegin {
		return nil, errors.New("begin refused")
	}
	staged := make(map[rowKey]model.CloseApproachEvent, len(f.rows))
	for k, v := range f.rows {
		staged[k] = v
	}
	return &fakeTx{db: f, staged: staged}, nil
}

func (f *fakeDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if f.failExec {
		return pgconn.CommandTag{}, errors.New("exec refused")
	}
	f.execLog = append(f.execLog, sql)
	return pgconn.NewCommandTag(""), nil
}

type fakeTx struct {
	db     *fakeDB
	staged map[rowKey]model.CloseApproachEvent
}

func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if sql != deleteWindowSQL {
		return pgconn.CommandTag{}, fmt.Errorf("unexpected sql in tx: %s", sql)
	}
	if t.db.failDelete {
		return pgconn.CommandTag{}, errors.New("delete refused")
	}

	w := model.Window{Start: arguments[0].(time.Time), End: arguments[1].(time.Time)}
	var deleted int64
	for k, v := range t.staged {
		if w.Contains(v.CloseApproachDate) {
			delete(t.staged, k)
			deleted++
		}
	}
	return pgconn.NewCommandTag(fmt.Sprintf("DELETE %d", deleted)), nil
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return &fakeBatchResults{tx: t, queries: b.QueuedQueries}
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.db.failCommit {
		return errors.New("commit refused")
	}
	t.db.rows = t.staged
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	return nil
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("not supported")
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not supported")
}

func (t *fakeTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not supported")
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (t *fakeTx) Conn() *pgx.Conn {
	return nil
}

type fakeBatchResults struct {
	tx      *fakeTx
	queries []*pgx.QueuedQuery
	next    int
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	if r.next >= len(r.queries) {
		return pgconn.CommandTag{}, errors.New("no queued query left")
	}
	q := r.queries[r.next]
	r.next++

	if n := r.tx.db.failInsert; n > 0 && r.next >= n {
		return pgconn.CommandTag{}, errors.New("insert refused")
	}
	if q.SQL != insertEventSQL {
		return pgconn.CommandTag{}, fmt.Errorf("unexpected sql in batch: %s", q.SQL)
	}

	args := q.Arguments
	ev := model.CloseApproachEvent{
		ObjectID:               args[0].(string),
		Name:                   args[1].(string),
		CloseApproachDate:      args[2].(time.Time),
		AbsoluteMagnitudeH:     args[3].(float64),
		DiameterMinKM:          args[4].(float64),
		DiameterMaxKM:          args[5].(float64),
		IsPotentiallyHazardous: args[6].(bool),
		RelativeVelocityKPS:    args[7].(float64),
		MissDistanceKM:         args[8].(float64),
		OrbitingBody:           args[9].(string),
	}

	k := rowKey{ev.CloseApproachDate.Format(model.DateLayout), ev.ObjectID}
	if _, exists := r.tx.staged[k]; exists {
		// ON CONFLICT (close_approach_date, object_id) DO NOTHING
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	r.tx.staged[k] = ev
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (r *fakeBatchResults) QueryRow() pgx.Row {
	return nil
}

func (r *fakeBatchResults) Close() error {
	return nil
}

func newTestStore(f *fakeDB) *Store {
	return &Store{db: f, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testEvent(t *testing.T, id, dateStr string) model.CloseApproachEvent {
	t.Helper()
	d, err := model.ParseDate(dateStr)
	if err != nil {
		t.Fatalf("parse date %q: %v", dateStr, err)
	}
	return model.CloseApproachEvent{
		ObjectID:            id,
		Name:                "(" + id + ")",
		CloseApproachDate:   d,
		AbsoluteMagnitudeH:  21.9,
		DiameterMinKM:       0.0153,
		DiameterMaxKM:       0.0342,
		RelativeVelocityKPS: 18.08,
		MissDistanceKM:      65301756.59,
		OrbitingBody:        "Earth",
	}
}

func testWindow(t *testing.T, start, end string) model.Window {
	t.Helper()
	w, err := model.ParseWindow(start, end)
	if err != nil {
		t.Fatalf("parse window: %v", err)
	}
	return w
}

func TestStore_ReplaceWindow_InsertsEvents(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(f)
	w := testWindow(t, "2025-10-07", "2025-10-08")

	events := []model.CloseApproachEvent{
		testEvent(t, "1", "2025-10-07"),
		testEvent(t, "2", "2025-10-07"),
		testEvent(t, "1", "2025-10-08"),
	}

	res, err := s.ReplaceWindow(context.Background(), w, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Deleted != 0 {
		t.Errorf("Deleted = %d, want 0", res.Deleted)
	}
	if res.Inserted != 3 {
		t.Errorf("Inserted = %d, want 3", res.Inserted)
	}
	if res.Duplicates != 0 || res.Conflicts != 0 {
		t.Errorf("Duplicates = %d, Conflicts = %d, want 0, 0", res.Duplicates, res.Conflicts)
	}
	if len(f.rows) != 3 {
		t.Fatalf("stored rows = %d, want 3", len(f.rows))
	}

	got, ok := f.rows[rowKey{"2025-10-07", "1"}]
	if !ok {
		t.Fatal("row (2025-10-07, 1) not stored")
	}
	if got.Name != "(1)" {
		t.Errorf("Name = %q, want %q", got.Name, "(1)")
	}
	if got.MissDistanceKM != 65301756.59 {
		t.Errorf("MissDistanceKM = %v, want 65301756.59", got.MissDistanceKM)
	}
	if got.OrbitingBody != "Earth" {
		t.Errorf("OrbitingBody = %q, want %q", got.OrbitingBody, "Earth")
	}
}

func TestStore_ReplaceWindow_Idempotent(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(f)
	w := testWindow(t, "2025-10-07", "2025-10-08")

	events := []model.CloseApproachEvent{
		testEvent(t, "1", "2025-10-07"),
		testEvent(t, "2", "2025-10-08"),
	}

	if _, err := s.ReplaceWindow(context.Background(), w, events); err != nil {
		t.Fatalf("first run: %v", err)
	}

	res, err := s.ReplaceWindow(context.Background(), w, events)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	// The rerun replaces its own rows: same deletes as inserts, no conflicts.
	if res.Deleted != 2 {
		t.Errorf("Deleted = %d, want 2", res.Deleted)
	}
	if res.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2", res.Inserted)
	}
	if res.Conflicts != 0 {
		t.Errorf("Conflicts = %d, want 0", res.Conflicts)
	}
	if len(f.rows) != 2 {
		t.Errorf("stored rows = %d, want 2", len(f.rows))
	}
}

func TestStore_ReplaceWindow_EmptyReloadClearsRange(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(f)
	w := testWindow(t, "2025-10-07", "")

	if _, err := s.ReplaceWindow(context.Background(), w, []model.CloseApproachEvent{testEvent(t, "1", "2025-10-07")}); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	if len(f.rows) != 1 {
		t.Fatalf("seeded rows = %d, want 1", len(f.rows))
	}

	res, err := s.ReplaceWindow(context.Background(), w, nil)
	if err != nil {
		t.Fatalf("empty reload: %v", err)
	}
	if res.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", res.Deleted)
	}
	if res.Inserted != 0 {
		t.Errorf("Inserted = %d, want 0", res.Inserted)
	}
	if len(f.rows) != 0 {
		t.Errorf("stored rows = %d, want 0 after empty reload", len(f.rows))
	}
}

func TestStore_ReplaceWindow_DateRangeIsolation(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(f)

	outside := testEvent(t, "7", "2025-10-06")
	outside.Name = "original"
	f.rows[rowKey{"2025-10-06", "7"}] = outside

	w := testWindow(t, "2025-10-07", "2025-10-08")

	// One event lands inside the window; the other collides with the
	// untouched out-of-window row and must be skipped, not applied.
	straggler := testEvent(t, "7", "2025-10-06")
	straggler.Name = "replacement"
	events := []model.CloseApproachEvent{
		testEvent(t, "1", "2025-10-07"),
		straggler,
	}

	res, err := s.ReplaceWindow(context.Background(), w, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Deleted != 0 {
		t.Errorf("Deleted = %d, want 0", res.Deleted)
	}
	if res.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", res.Inserted)
	}
	if res.Conflicts != 1 {
		t.Errorf("Conflicts = %d, want 1", res.Conflicts)
	}

	got, ok := f.rows[rowKey{"2025-10-06", "7"}]
	if !ok {
		t.Fatal("out-of-window row was deleted")
	}
	if got.Name != "original" {
		t.Errorf("out-of-window row Name = %q, want %q (must not be altered)", got.Name, "original")
	}
}

func TestStore_ReplaceWindow_LastWriteWins(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(f)
	w := testWindow(t, "2025-10-07", "")

	first := testEvent(t, "1", "2025-10-07")
	first.Name = "first"
	second := testEvent(t, "1", "2025-10-07")
	second.Name = "second"

	res, err := s.ReplaceWindow(context.Background(), w, []model.CloseApproachEvent{first, second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", res.Duplicates)
	}
	if res.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", res.Inserted)
	}

	got := f.rows[rowKey{"2025-10-07", "1"}]
	if got.Name != "second" {
		t.Errorf("stored Name = %q, want %q (later event wins)", got.Name, "second")
	}
}

func TestStore_ReplaceWindow_RollsBackOnInsertFailure(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(f)
	w := testWindow(t, "2025-10-07", "")

	seed := []model.CloseApproachEvent{
		testEvent(t, "1", "2025-10-07"),
		testEvent(t, "2", "2025-10-07"),
	}
	if _, err := s.ReplaceWindow(context.Background(), w, seed); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	f.failInsert = 2
	fresh := []model.CloseApproachEvent{
		testEvent(t, "3", "2025-10-07"),
		testEvent(t, "4", "2025-10-07"),
	}

	_, err := s.ReplaceWindow(context.Background(), w, fresh)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %T", err)
	}
	if !strings.Contains(err.Error(), "insert event") {
		t.Errorf("error = %v, want insert failure", err)
	}

	// The pre-delete must have been rolled back with the partial insert.
	if len(f.rows) != 2 {
		t.Fatalf("stored rows = %d, want 2 (pre-call state)", len(f.rows))
	}
	if _, ok := f.rows[rowKey{"2025-10-07", "1"}]; !ok {
		t.Error("original row (2025-10-07, 1) lost after rollback")
	}
	if _, ok := f.rows[rowKey{"2025-10-07", "3"}]; ok {
		t.Error("partial insert (2025-10-07, 3) leaked after rollback")
	}
}

func TestStore_ReplaceWindow_RollsBackOnCommitFailure(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(f)
	w := testWindow(t, "2025-10-07", "")

	if _, err := s.ReplaceWindow(context.Background(), w, []model.CloseApproachEvent{testEvent(t, "1", "2025-10-07")}); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	f.failCommit = true
	_, err := s.ReplaceWindow(context.Background(), w, []model.CloseApproachEvent{testEvent(t, "2", "2025-10-07")})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %T", err)
	}
	if loadErr.Window.String() != "2025-10-07..2025-10-07" {
		t.Errorf("Window = %q, want %q", loadErr.Window.String(), "2025-10-07..2025-10-07")
	}

	if _, ok := f.rows[rowKey{"2025-10-07", "1"}]; !ok {
		t.Error("pre-call row lost after failed commit")
	}
	if _, ok := f.rows[rowKey{"2025-10-07", "2"}]; ok {
		t.Error("uncommitted row leaked after failed commit")
	}
}

func TestStore_ReplaceWindow_BeginAndDeleteFailures(t *testing.T) {
	w := testWindow(t, "2025-10-07", "")

	t.Run("begin fails", func(t *testing.T) {
		f := newFakeDB()
		f.failBegin = true
		s := newTestStore(f)

		_, err := s.ReplaceWindow(context.Background(), w, nil)
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("expected *LoadError, got %v", err)
		}
		if !strings.Contains(err.Error(), "begin") {
			t.Errorf("error = %v, want begin failure", err)
		}
	})

	t.Run("delete fails", func(t *testing.T) {
		f := newFakeDB()
		f.failDelete = true
		s := newTestStore(f)

		_, err := s.ReplaceWindow(context.Background(), w, nil)
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("expected *LoadError, got %v", err)
		}
		if !strings.Contains(err.Error(), "delete window") {
			t.Errorf("error = %v, want delete failure", err)
		}
	})
}

func TestStore_EnsureSchema(t *testing.T) {
	f := newFakeDB()
	s := newTestStore(f)

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.execLog) != 2 {
		t.Fatalf("exec calls = %d, want 2", len(f.execLog))
	}
	if f.execLog[0] != createTableSQL {
		t.Errorf("first exec = %q, want table DDL", f.execLog[0])
	}
	if f.execLog[1] != createIndexSQL {
		t.Errorf("second exec = %q, want index DDL", f.execLog[1])
	}

	f.failExec = true
	if err := s.EnsureSchema(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	} else if !strings.Contains(err.Error(), "create neows table") {
		t.Errorf("error = %v, want table creation failure", err)
	}
}

func TestDedupeLastWins(t *testing.T) {
	t.Run("no duplicates", func(t *testing.T) {
		events := []model.CloseApproachEvent{
			testEvent(t, "1", "2025-10-07"),
			testEvent(t, "1", "2025-10-08"),
			testEvent(t, "2", "2025-10-07"),
		}
		out, dupes := dedupeLastWins(events)
		if len(out) != 3 || dupes != 0 {
			t.Errorf("len(out) = %d, dupes = %d, want 3, 0", len(out), dupes)
		}
	})

	t.Run("later event wins in place", func(t *testing.T) {
		a := testEvent(t, "1", "2025-10-07")
		a.Name = "a"
		b := testEvent(t, "2", "2025-10-07")
		c := testEvent(t, "1", "2025-10-07")
		c.Name = "c"

		out, dupes := dedupeLastWins([]model.CloseApproachEvent{a, b, c})
		if len(out) != 2 {
			t.Fatalf("len(out) = %d, want 2", len(out))
		}
		if dupes != 1 {
			t.Errorf("dupes = %d, want 1", dupes)
		}
		if out[0].Name != "c" {
			t.Errorf("out[0].Name = %q, want %q", out[0].Name, "c")
		}
		if out[1].ObjectID != "2" {
			t.Errorf("out[1].ObjectID = %q, want %q", out[1].ObjectID, "2")
		}
	})

	t.Run("empty and single", func(t *testing.T) {
		if out, dupes := dedupeLastWins(nil); len(out) != 0 || dupes != 0 {
			t.Errorf("nil input: len(out) = %d, dupes = %d", len(out), dupes)
		}
		one := []model.CloseApproachEvent{testEvent(t, "1", "2025-10-07")}
		if out, dupes := dedupeLastWins(one); len(out) != 1 || dupes != 0 {
			t.Errorf("single input: len(out) = %d, dupes = %d", len(out), dupes)
		}
	})
}

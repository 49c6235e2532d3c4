package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/nuvme-configurator/internal/events"
)

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *pgtype.UUID:
			*p = r.values[i].(pgtype.UUID)
		case *pgtype.Timestamptz:
			*p = r.values[i].(pgtype.Timestamptz)
		case *string:
			*p = r.values[i].(string)
		case *int64:
			*p = r.values[i].(int64)
		case *[]byte:
			*p = r.values[i].([]byte)
		default:
			return errors.New("unexpected scan target")
		}
	}
	return nil
}

type stubRows struct {
	rows []stubRow
	idx  int
}

func (r *stubRows) Close() {}
func (r *stubRows) Err() error { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}
func (r *stubRows) Scan(dest ...any) error { return r.rows[r.idx-1].Scan(dest...) }
func (r *stubRows) Values() ([]any, error) { return r.rows[r.idx-1].values, nil }
func (r *stubRows) RawValues() [][]byte { return nil }
func (r *stubRows) Conn() *pgx.Conn { return nil }

type stubDB struct {
	sql  string
	args []any
	row  stubRow
	rows *stubRows
}

func (s *stubDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.sql, s.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (s *stubDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.sql, s.args = sql, args
	return s.rows, nil
}

func (s *stubDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	s.sql, s.args = sql, args
	return s.row
}

func savedRow(id uuid.UUID, session string, total int64, at time.Time) stubRow {
	return stubRow{values: []any{
		pgUUID(id), session, "modernization", "essential", total,
		[]byte(`{"total":1}`), pgtype.Timestamptz{Time: at, Valid: true},
	}}
}

func TestSavedQuotesInsertAssignsID(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	db := &stubDB{row: stubRow{values: []any{pgtype.Timestamptz{Time: at, Valid: true}}}}
	repo := SavedQuotes{DB: db}

	q, err := repo.Insert(context.Background(), SavedQuote{SessionID: "s-1", TotalCents: 2862000})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if q.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if !q.CreatedAt.Equal(at) {
		t.Fatalf("created_at not propagated: %v", q.CreatedAt)
	}
	if db.sql != insertSavedQuote {
		t.Fatalf("unexpected sql %q", db.sql)
	}
	if got := db.args[0].(pgtype.UUID); got.Bytes != q.ID {
		t.Fatalf("id arg mismatch")
	}
	if string(db.args[5].([]byte)) != "{}" {
		t.Fatalf("empty breakdown should default to {}")
	}
}

func TestSavedQuotesGet(t *testing.T) {
	id := uuid.New()
	at := time.Now().UTC()
	db := &stubDB{row: savedRow(id, "s-1", 100, at)}
	q, err := SavedQuotes{DB: db}.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if q.ID != id || q.SessionID != "s-1" || q.TotalCents != 100 || q.PlanID != "essential" {
		t.Fatalf("unexpected quote %+v", q)
	}
	if !json.Valid(q.Breakdown) {
		t.Fatalf("breakdown not json")
	}
}

func TestSavedQuotesGetNotFound(t *testing.T) {
	db := &stubDB{row: stubRow{err: pgx.ErrNoRows}}
	_, err := SavedQuotes{DB: db}.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSavedQuotesListBySession(t *testing.T) {
	now := time.Now().UTC()
	db := &stubDB{rows: &stubRows{rows: []stubRow{
		savedRow(uuid.New(), "s-1", 300, now),
		savedRow(uuid.New(), "s-1", 200, now.Add(-time.Minute)),
	}}}
	list, err := SavedQuotes{DB: db}.ListBySession(context.Background(), "s-1", 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].TotalCents != 300 {
		t.Fatalf("unexpected list %+v", list)
	}
	if db.args[1].(int32) != 20 || db.args[2].(int32) != 0 {
		t.Fatalf("pagination args not forwarded: %v", db.args)
	}
}

func TestRepositoriesRequireDB(t *testing.T) {
	if _, err := (SavedQuotes{}).Insert(context.Background(), SavedQuote{}); err == nil {
		t.Fatalf("expected error without db")
	}
	if err := (Events{}).InsertEvent(context.Background(), events.Event{}); err == nil {
		t.Fatalf("expected error without db")
	}
}

func TestEventsInsert(t *testing.T) {
	db := &stubDB{}
	ev := events.Event{ID: uuid.New(), Topic: events.TopicQuoteSaved, AggregateID: "s-1", Payload: json.RawMessage(`{}`), OccurredAt: time.Now()}
	if err := (Events{DB: db}).InsertEvent(context.Background(), ev); err != nil {
		t.Fatalf("insert event: %v", err)
	}
	if db.sql != insertDomainEvent || db.args[1] != events.TopicQuoteSaved {
		t.Fatalf("unexpected exec %q %v", db.sql, db.args)
	}
}

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@h:5432/db":  "pgx5://u:p@h:5432/db",
		"postgresql://u@h/db":       "pgx5://u@h/db",
		"pgx5://already/configured": "pgx5://already/configured",
	}
	for in, want := range cases {
		if got := migrateURL(in); got != want {
			t.Fatalf("migrateURL(%q) = %q want %q", in, got, want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 migration files got %d", len(entries))
	}
}

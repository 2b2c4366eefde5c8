package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"event-telemetry/internal/events/core/domain"
	"event-telemetry/internal/events/core/ports"
)

// fakeResult implements sql.Result.
type fakeResult struct {
	rows int64
}

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.rows, nil }

// fakeRowScanner implements RowScanner for tests.
type fakeRowScanner struct {
	rows [][]any
	i    int
	err  error
}

func (f *fakeRowScanner) Next() bool {
	return f.i < len(f.rows)
}

func (f *fakeRowScanner) Scan(dest ...any) error {
	if f.i >= len(f.rows) {
		return errors.New("no more rows")
	}
	row := f.rows[f.i]
	if len(dest) != len(row) {
		return errors.New("dest length mismatch")
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *int64:
			*d = row[i].(int64)
		case *string:
			*d = row[i].(string)
		case *time.Time:
			*d = row[i].(time.Time)
		case *sql.NullString:
			if row[i] == nil {
				*d = sql.NullString{}
			} else {
				*d = sql.NullString{String: row[i].(string), Valid: true}
			}
		case *[]byte:
			if row[i] == nil {
				*d = nil
			} else {
				*d = row[i].([]byte)
			}
		default:
			return errors.New("unsupported dest type")
		}
	}
	f.i++
	return nil
}

func (f *fakeRowScanner) Err() error   { return f.err }
func (f *fakeRowScanner) Close() error { return nil }

// fakeDB implements the DB interface.
type fakeDB struct {
	ExecFn  func(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryFn func(ctx context.Context, query string, args ...any) (RowScanner, error)

	execQueries []string
	execArgs    [][]any
	queries     []string
	queryArgs   [][]any
}

func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.execQueries = append(f.execQueries, query)
	f.execArgs = append(f.execArgs, args)
	if f.ExecFn != nil {
		return f.ExecFn(ctx, query, args...)
	}
	return fakeResult{rows: 0}, nil
}

func (f *fakeDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	f.queries = append(f.queries, query)
	f.queryArgs = append(f.queryArgs, args)
	if f.QueryFn != nil {
		return f.QueryFn(ctx, query, args...)
	}
	return &fakeRowScanner{}, nil
}

// ------------------------------------------------------------
// INSERT
// ------------------------------------------------------------

func TestInsertEvents_SingleStatement(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			return fakeResult{rows: 2}, nil
		},
	}
	repo := NewEventRepository(db)

	receivedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []*domain.Event{
		{
			ProjectID:  "proj-1",
			Name:       "signup",
			Timestamp:  receivedAt.Add(-time.Minute),
			ReceivedAt: receivedAt,
			UserID:     "user_1",
			Properties: domain.Properties{"plan": "pro"},
		},
		{
			ProjectID:  "proj-1",
			Name:       "page_view",
			Timestamp:  receivedAt.Add(-time.Second),
			ReceivedAt: receivedAt,
		},
	}

	count, err := repo.InsertEvents(context.Background(), events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count=2, got %d", count)
	}

	if len(db.execQueries) != 1 {
		t.Fatalf("expected a single INSERT statement, got %d", len(db.execQueries))
	}
	query := db.execQueries[0]
	if !strings.Contains(query, "INSERT INTO events") {
		t.Fatalf("unexpected query: %s", query)
	}
	if !strings.Contains(query, "$14") {
		t.Fatalf("expected 14 placeholders for 2 rows, query: %s", query)
	}
	if strings.Contains(query, "$15") {
		t.Fatalf("expected exactly 14 placeholders, query: %s", query)
	}
	if len(db.execArgs[0]) != 14 {
		t.Fatalf("expected 14 args, got %d", len(db.execArgs[0]))
	}
}

func TestInsertEvents_EmptyBatchNoCall(t *testing.T) {
	db := &fakeDB{}
	repo := NewEventRepository(db)

	count, err := repo.InsertEvents(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected count=0, got %d", count)
	}
	if len(db.execQueries) != 0 {
		t.Fatalf("expected no statement for empty batch")
	}
}

func TestInsertEvents_AnonymousUserStoredAsNull(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			return fakeResult{rows: 1}, nil
		},
	}
	repo := NewEventRepository(db)

	_, err := repo.InsertEvents(context.Background(), []*domain.Event{
		{ProjectID: "proj-1", Name: "page_view", ReceivedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// user_id is the 5th column of the row.
	if db.execArgs[0][4] != nil {
		t.Fatalf("expected nil user_id arg, got %v", db.execArgs[0][4])
	}
}

// ------------------------------------------------------------
// QUERY
// ------------------------------------------------------------

func TestQueryEvents_FilterAndPaging(t *testing.T) {
	receivedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if strings.Contains(query, "COUNT(*)") {
				return &fakeRowScanner{rows: [][]any{{int64(7)}}}, nil
			}
			return &fakeRowScanner{rows: [][]any{
				{"proj-1", "signup", receivedAt.Add(-time.Minute), receivedAt, "user_1", nil, []byte(`{"plan":"pro"}`)},
				{"proj-1", "signup", receivedAt.Add(-time.Hour), receivedAt, nil, nil, nil},
			}}, nil
		},
	}
	repo := NewEventRepository(db)

	start := receivedAt.AddDate(0, 0, -1)
	events, total, err := repo.QueryEvents(context.Background(), ports.EventFilter{
		ProjectID: "proj-1",
		StartDate: &start,
		EventName: "signup",
		Limit:     2,
		Offset:    4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 7 {
		t.Fatalf("expected total=7, got %d", total)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].UserID != "user_1" {
		t.Fatalf("expected user_1, got %q", events[0].UserID)
	}
	if events[0].Properties["plan"] != "pro" {
		t.Fatalf("expected decoded properties, got %v", events[0].Properties)
	}
	if events[1].UserID != "" {
		t.Fatalf("expected anonymous second event, got %q", events[1].UserID)
	}

	if len(db.queries) != 2 {
		t.Fatalf("expected count + select queries, got %d", len(db.queries))
	}
	selectQuery := db.queries[1]
	if !strings.Contains(selectQuery, "received_at >= $2") {
		t.Fatalf("expected start date clause, query: %s", selectQuery)
	}
	if !strings.Contains(selectQuery, "name = $3") {
		t.Fatalf("expected name clause, query: %s", selectQuery)
	}
	if !strings.Contains(selectQuery, "ORDER BY received_at DESC") {
		t.Fatalf("expected received_at DESC ordering, query: %s", selectQuery)
	}
}

// ------------------------------------------------------------
// DELETE
// ------------------------------------------------------------

func TestDeleteProjectEvents(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "DELETE FROM events") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != "proj-1" {
				t.Fatalf("expected proj-1 arg, got %v", args[0])
			}
			return fakeResult{rows: 9}, nil
		},
	}
	repo := NewEventRepository(db)

	deleted, err := repo.DeleteProjectEvents(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 9 {
		t.Fatalf("expected deleted=9, got %d", deleted)
	}
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"event-telemetry/internal/events/core/domain"
	"event-telemetry/internal/events/core/ports"

	"github.com/bytedance/sonic"
)

const eventColumns = 7

type EventRepository struct {
	db DB
}

func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{db: db}
}

var _ ports.EventRepositoryPort = (*EventRepository)(nil)

// InsertEvents writes the whole batch with a single multi-row INSERT so the
// batch is atomic: a failed statement persists nothing.
func (r *EventRepository) InsertEvents(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`
INSERT INTO events (
    project_id,
    name,
    timestamp,
    received_at,
    user_id,
    session_id,
    properties
) VALUES `)

	args := make([]any, 0, len(events)*eventColumns)
	for i, e := range events {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * eventColumns
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		propsJSON, err := sonic.Marshal(e.Properties)
		if err != nil {
			return 0, err
		}

		args = append(args,
			e.ProjectID,
			e.Name,
			e.Timestamp,
			e.ReceivedAt,
			nullable(e.UserID),
			nullable(e.SessionID),
			propsJSON,
		)
	}

	res, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func (r *EventRepository) QueryEvents(ctx context.Context, f ports.EventFilter) ([]*domain.Event, int64, error) {
	where, args := buildEventWhere(f)

	total, err := r.countEvents(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
SELECT
    project_id,
    name,
    timestamp,
    received_at,
    user_id,
    session_id,
    properties
FROM events
WHERE %s
ORDER BY received_at DESC
LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var (
			e         domain.Event
			userID    sql.NullString
			sessionID sql.NullString
			props     []byte
		)
		if err := rows.Scan(&e.ProjectID, &e.Name, &e.Timestamp, &e.ReceivedAt, &userID, &sessionID, &props); err != nil {
			return nil, 0, err
		}
		e.UserID = userID.String
		e.SessionID = sessionID.String
		if len(props) > 0 {
			if err := sonic.Unmarshal(props, &e.Properties); err != nil {
				return nil, 0, err
			}
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *EventRepository) DeleteProjectEvents(ctx context.Context, projectID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *EventRepository) countEvents(ctx context.Context, where string, args []any) (int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT COUNT(*) FROM events WHERE "+where, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var total int64
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			return 0, err
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return total, nil
}

func buildEventWhere(f ports.EventFilter) (string, []any) {
	where := "project_id = $1"
	args := []any{f.ProjectID}
	argIndex := 2

	if f.StartDate != nil {
		where += fmt.Sprintf(" AND received_at >= $%d", argIndex)
		args = append(args, *f.StartDate)
		argIndex++
	}
	if f.EndDate != nil {
		where += fmt.Sprintf(" AND received_at <= $%d", argIndex)
		args = append(args, *f.EndDate)
		argIndex++
	}
	if f.EventName != "" {
		where += fmt.Sprintf(" AND name = $%d", argIndex)
		args = append(args, f.EventName)
		argIndex++
	}

	return where, args
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

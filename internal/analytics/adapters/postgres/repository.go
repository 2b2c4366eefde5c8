package postgres

import (
	"context"
	"fmt"
	"time"

	"event-telemetry/internal/analytics/core/domain"
	"event-telemetry/internal/analytics/core/ports"

	"github.com/lib/pq"
)

type AnalyticsRepository struct {
	db DB
}

func NewAnalyticsRepository(db DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

var _ ports.AnalyticsReaderPort = (*AnalyticsRepository)(nil)

func (r *AnalyticsRepository) CountEvents(ctx context.Context, w ports.EventWindow, eventName string) (int64, error) {
	where, args := buildWindowWhere(w)
	if eventName != "" {
		where += fmt.Sprintf(" AND name = $%d", len(args)+1)
		args = append(args, eventName)
	}

	return r.scanCount(ctx, "SELECT COUNT(*) FROM events WHERE "+where, args)
}

func (r *AnalyticsRepository) CountUniqueUsers(ctx context.Context, w ports.EventWindow) (int64, error) {
	where, args := buildWindowWhere(w)
	query := "SELECT COUNT(DISTINCT user_id) FROM events WHERE " + where + " AND user_id IS NOT NULL"

	return r.scanCount(ctx, query, args)
}

func (r *AnalyticsRepository) EventBreakdown(ctx context.Context, w ports.EventWindow) ([]domain.EventCount, error) {
	where, args := buildWindowWhere(w)
	query := `
SELECT
    name,
    COUNT(*) AS count
FROM events
WHERE ` + where + `
GROUP BY name
ORDER BY count DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []domain.EventCount
	for rows.Next() {
		var ec domain.EventCount
		if err := rows.Scan(&ec.Name, &ec.Count); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, ec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return breakdown, nil
}

func (r *AnalyticsRepository) DailyActiveUsers(ctx context.Context, projectID string, start, end time.Time) ([]domain.DailyActiveUsers, error) {
	query := `
SELECT
    to_char(received_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
    COUNT(DISTINCT user_id) AS count
FROM events
WHERE project_id = $1
  AND received_at >= $2
  AND received_at <= $3
  AND user_id IS NOT NULL
GROUP BY day
ORDER BY day`

	rows, err := r.db.QueryContext(ctx, query, projectID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []domain.DailyActiveUsers
	for rows.Next() {
		var d domain.DailyActiveUsers
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return days, nil
}

func (r *AnalyticsRepository) DistinctUsers(ctx context.Context, projectID string, start, end time.Time) ([]string, error) {
	query := `
SELECT DISTINCT user_id
FROM events
WHERE project_id = $1
  AND received_at >= $2
  AND received_at < $3
  AND user_id IS NOT NULL`

	rows, err := r.db.QueryContext(ctx, query, projectID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *AnalyticsRepository) CountActiveCohortUsers(ctx context.Context, projectID string, users []string, start, end time.Time) (int64, error) {
	query := `
SELECT COUNT(DISTINCT user_id)
FROM events
WHERE project_id = $1
  AND user_id = ANY($2)
  AND received_at >= $3
  AND received_at < $4`

	return r.scanCount(ctx, query, []any{projectID, pq.Array(users), start, end})
}

func (r *AnalyticsRepository) scanCount(ctx context.Context, query string, args []any) (int64, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, err
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return count, nil
}

func buildWindowWhere(w ports.EventWindow) (string, []any) {
	where := "project_id = $1"
	args := []any{w.ProjectID}
	argIndex := 2

	if w.StartDate != nil {
		where += fmt.Sprintf(" AND received_at >= $%d", argIndex)
		args = append(args, *w.StartDate)
		argIndex++
	}
	if w.EndDate != nil {
		where += fmt.Sprintf(" AND received_at <= $%d", argIndex)
		args = append(args, *w.EndDate)
		argIndex++
	}

	return where, args
}

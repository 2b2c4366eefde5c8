package ports

import (
	"context"
	"time"

	"event-telemetry/internal/analytics/core/domain"
)

// EventWindow scopes a read to one project and an optional inclusive
// received_at range.
type EventWindow struct {
	ProjectID string
	StartDate *time.Time
	EndDate   *time.Time
}

type AnalyticsReaderPort interface {
	// CountEvents counts matching events; eventName == "" counts all names.
	CountEvents(ctx context.Context, w EventWindow, eventName string) (int64, error)

	// CountUniqueUsers counts distinct non-empty user ids among matching
	// events.
	CountUniqueUsers(ctx context.Context, w EventWindow) (int64, error)

	// EventBreakdown returns per-name counts sorted by count descending.
	EventBreakdown(ctx context.Context, w EventWindow) ([]domain.EventCount, error)

	// DailyActiveUsers returns distinct-user counts per UTC day in
	// [start, end], ascending; anonymous events are excluded and empty
	// days are omitted.
	DailyActiveUsers(ctx context.Context, projectID string, start, end time.Time) ([]domain.DailyActiveUsers, error)

	// DistinctUsers lists distinct non-empty user ids with at least one
	// event in [start, end).
	DistinctUsers(ctx context.Context, projectID string, start, end time.Time) ([]string, error)

	// CountActiveCohortUsers counts how many of the given users have at
	// least one event in [start, end).
	CountActiveCohortUsers(ctx context.Context, projectID string, users []string, start, end time.Time) (int64, error)
}

package ports

import (
	"context"
	"time"

	"event-telemetry/internal/events/core/domain"
)

// EventFilter narrows a range query. StartDate/EndDate bound received_at
// (inclusive); EventName, when set, is an exact match.
type EventFilter struct {
	ProjectID string
	StartDate *time.Time
	EndDate   *time.Time
	EventName string
	Limit     int
	Offset    int
}

type EventRepositoryPort interface {
	// InsertEvents persists the batch as a unit: either every event is
	// stored or none are. Returns the number of rows inserted.
	InsertEvents(ctx context.Context, events []*domain.Event) (int, error)

	// QueryEvents returns matching events ordered by received_at
	// descending, plus the total matching count ignoring pagination.
	QueryEvents(ctx context.Context, f EventFilter) ([]*domain.Event, int64, error)

	// DeleteProjectEvents removes every event of the project and returns
	// the count removed. Zero matches is not an error.
	DeleteProjectEvents(ctx context.Context, projectID string) (int64, error)
}

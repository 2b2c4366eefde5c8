package usecase

import (
	"context"
	"errors"
	"regexp"
	"time"

	"event-telemetry/internal/events/core/domain"
	"event-telemetry/internal/events/core/ports"
)

const (
	// MaxBatchSize is the hard ceiling on events per batch.
	MaxBatchSize = 100

	DefaultPageSize = 50
)

var (
	ErrInvalidProjectID  = errors.New("invalid project id")
	ErrInvalidEvent      = errors.New("invalid event")
	ErrInvalidProperties = errors.New("invalid event properties")
	ErrBatchTooLarge     = errors.New("cannot track more than 100 events at once")
	ErrInvalidDateRange  = errors.New("invalid date range")
)

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,50}$`)

type TrackEventInput struct {
	Name       string
	Timestamp  time.Time
	UserID     string
	SessionID  string
	Properties domain.Properties
}

type TrackEventsInput struct {
	ProjectID string
	Events    []TrackEventInput
}

type QueryEventsInput struct {
	ProjectID string
	StartDate *time.Time
	EndDate   *time.Time
	EventName string
	Limit     int
	Offset    int
}

type QueryEventsResult struct {
	Events  []*domain.Event
	Total   int64
	HasMore bool
}

type TrackEventsUseCase struct {
	repo ports.EventRepositoryPort
	now  func() time.Time
}

func NewTrackEventsUseCase(repo ports.EventRepositoryPort) *TrackEventsUseCase {
	return &TrackEventsUseCase{repo: repo, now: time.Now}
}

// Execute persists a batch of events for one tenant. The whole batch shares
// a single server-assigned ReceivedAt and is inserted atomically. Returns
// the number of events persisted.
func (uc *TrackEventsUseCase) Execute(ctx context.Context, in TrackEventsInput) (int, error) {
	if !projectIDPattern.MatchString(in.ProjectID) {
		return 0, ErrInvalidProjectID
	}
	if len(in.Events) > MaxBatchSize {
		return 0, ErrBatchTooLarge
	}
	if len(in.Events) == 0 {
		return 0, nil
	}

	for _, ev := range in.Events {
		if ev.Name == "" {
			return 0, ErrInvalidEvent
		}
		if err := ev.Properties.Validate(); err != nil {
			return 0, errors.Join(ErrInvalidProperties, err)
		}
	}

	receivedAt := uc.now().UTC()

	events := make([]*domain.Event, len(in.Events))
	for i, ev := range in.Events {
		events[i] = &domain.Event{
			ProjectID:  in.ProjectID,
			Name:       ev.Name,
			Timestamp:  ev.Timestamp.UTC(),
			ReceivedAt: receivedAt,
			UserID:     ev.UserID,
			SessionID:  ev.SessionID,
			Properties: ev.Properties,
		}
	}

	return uc.repo.InsertEvents(ctx, events)
}

// QueryEvents runs a filtered, paginated range query ordered by ReceivedAt
// descending.
func (uc *TrackEventsUseCase) QueryEvents(ctx context.Context, in QueryEventsInput) (*QueryEventsResult, error) {
	if !projectIDPattern.MatchString(in.ProjectID) {
		return nil, ErrInvalidProjectID
	}
	if in.StartDate != nil && in.EndDate != nil && in.StartDate.After(*in.EndDate) {
		return nil, ErrInvalidDateRange
	}

	limit := in.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	events, total, err := uc.repo.QueryEvents(ctx, ports.EventFilter{
		ProjectID: in.ProjectID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		EventName: in.EventName,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, err
	}

	return &QueryEventsResult{
		Events:  events,
		Total:   total,
		HasMore: int64(offset)+int64(len(events)) < total,
	}, nil
}

// DeleteProjectEvents removes the whole event log of a project. Deleting a
// project with no events returns 0, not an error.
func (uc *TrackEventsUseCase) DeleteProjectEvents(ctx context.Context, projectID string) (int64, error) {
	if !projectIDPattern.MatchString(projectID) {
		return 0, ErrInvalidProjectID
	}
	return uc.repo.DeleteProjectEvents(ctx, projectID)
}

package usecase

import (
	"context"
	"errors"
	"regexp"
	"time"

	"event-telemetry/internal/analytics/core/domain"
	"event-telemetry/internal/analytics/core/ports"
)

// retentionDays is the fixed horizon of a retention cohort.
const retentionDays = 30

var (
	ErrInvalidProjectID = errors.New("invalid project id")
	ErrInvalidDateRange = errors.New("invalid date range")
)

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,50}$`)

// DateRange is an optional inclusive window on received_at.
type DateRange struct {
	StartDate *time.Time
	EndDate   *time.Time
}

type AnalyticsUseCase struct {
	reader ports.AnalyticsReaderPort
}

func NewAnalyticsUseCase(reader ports.AnalyticsReaderPort) *AnalyticsUseCase {
	return &AnalyticsUseCase{reader: reader}
}

// GetProjectStats computes total events, distinct users and the per-name
// breakdown for one project. A facet that cannot be read fails the whole
// call; zero matching events yield zeros and an empty breakdown.
func (uc *AnalyticsUseCase) GetProjectStats(ctx context.Context, projectID string, r DateRange) (*domain.ProjectStats, error) {
	w, err := uc.window(projectID, r)
	if err != nil {
		return nil, err
	}

	total, err := uc.reader.CountEvents(ctx, w, "")
	if err != nil {
		return nil, err
	}
	unique, err := uc.reader.CountUniqueUsers(ctx, w)
	if err != nil {
		return nil, err
	}
	breakdown, err := uc.reader.EventBreakdown(ctx, w)
	if err != nil {
		return nil, err
	}
	if breakdown == nil {
		breakdown = []domain.EventCount{}
	}

	return &domain.ProjectStats{
		TotalEvents:    total,
		UniqueUsers:    unique,
		EventBreakdown: breakdown,
	}, nil
}

// GetDailyActiveUsers returns one entry per UTC day in [start, end] that has
// at least one event with a user id, ascending by date.
func (uc *AnalyticsUseCase) GetDailyActiveUsers(ctx context.Context, projectID string, start, end time.Time) ([]domain.DailyActiveUsers, error) {
	if !projectIDPattern.MatchString(projectID) {
		return nil, ErrInvalidProjectID
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}
	return uc.reader.DailyActiveUsers(ctx, projectID, start, end)
}

// GetEventFunnel counts each step independently in the given order. This is
// a sequential-count funnel: step i is not restricted to users who reached
// step i-1. Dropoff is the relative decrease against the previous step.
func (uc *AnalyticsUseCase) GetEventFunnel(ctx context.Context, projectID string, eventNames []string, r DateRange) ([]domain.FunnelStep, error) {
	w, err := uc.window(projectID, r)
	if err != nil {
		return nil, err
	}

	steps := make([]domain.FunnelStep, 0, len(eventNames))
	var previousCount int64

	for _, name := range eventNames {
		count, err := uc.reader.CountEvents(ctx, w, name)
		if err != nil {
			return nil, err
		}

		var dropoff float64
		if previousCount > 0 {
			dropoff = float64(previousCount-count) / float64(previousCount) * 100
		}

		steps = append(steps, domain.FunnelStep{
			EventName:   name,
			Count:       count,
			DropoffRate: dropoff,
		})
		previousCount = count
	}

	return steps, nil
}

// GetUserRetention builds the cohort of users active during the UTC day
// containing cohortDate and reports, for each of the following 30 offset
// days, how many cohort members were active. An empty cohort yields an
// empty slice.
func (uc *AnalyticsUseCase) GetUserRetention(ctx context.Context, projectID string, cohortDate time.Time) ([]domain.RetentionDay, error) {
	if !projectIDPattern.MatchString(projectID) {
		return nil, ErrInvalidProjectID
	}

	cohortStart := cohortDate.UTC().Truncate(24 * time.Hour)
	cohortEnd := cohortStart.AddDate(0, 0, 1)

	cohort, err := uc.reader.DistinctUsers(ctx, projectID, cohortStart, cohortEnd)
	if err != nil {
		return nil, err
	}
	cohortSize := len(cohort)
	if cohortSize == 0 {
		return []domain.RetentionDay{}, nil
	}

	retention := make([]domain.RetentionDay, 0, retentionDays)
	for day := 0; day < retentionDays; day++ {
		dayStart := cohortStart.AddDate(0, 0, day)
		dayEnd := dayStart.AddDate(0, 0, 1)

		active, err := uc.reader.CountActiveCohortUsers(ctx, projectID, cohort, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}

		retention = append(retention, domain.RetentionDay{
			Day:           day,
			UserCount:     active,
			RetentionRate: float64(active) / float64(cohortSize) * 100,
		})
	}

	return retention, nil
}

func (uc *AnalyticsUseCase) window(projectID string, r DateRange) (ports.EventWindow, error) {
	if !projectIDPattern.MatchString(projectID) {
		return ports.EventWindow{}, ErrInvalidProjectID
	}
	if r.StartDate != nil && r.EndDate != nil && r.StartDate.After(*r.EndDate) {
		return ports.EventWindow{}, ErrInvalidDateRange
	}
	return ports.EventWindow{
		ProjectID: projectID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}, nil
}

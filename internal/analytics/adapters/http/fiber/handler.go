package fiber

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"event-telemetry/internal/analytics/core/domain"
	"event-telemetry/internal/analytics/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsUseCase interface {
	GetProjectStats(ctx context.Context, projectID string, r usecase.DateRange) (*domain.ProjectStats, error)
	GetDailyActiveUsers(ctx context.Context, projectID string, start, end time.Time) ([]domain.DailyActiveUsers, error)
	GetEventFunnel(ctx context.Context, projectID string, eventNames []string, r usecase.DateRange) ([]domain.FunnelStep, error)
	GetUserRetention(ctx context.Context, projectID string, cohortDate time.Time) ([]domain.RetentionDay, error)
}

type AnalyticsHandler struct {
	uc AnalyticsUseCase
}

func NewAnalyticsHandler(uc AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// GetProjectStats godoc
// @Summary Project statistics
// @Description Total events, unique users and per-name breakdown within an optional window
// @Tags Analytics
// @Produce json
// @Param projectId path string true "Project ID"
// @Param start_date query string false "RFC3339 lower bound"
// @Param end_date query string false "RFC3339 upper bound"
// @Success 200 {object} ProjectStatsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /projects/{projectId}/stats [get]
func (h *AnalyticsHandler) GetProjectStats(c *fiber.Ctx) error {
	r, err := parseDateRange(c)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	stats, err := h.uc.GetProjectStats(c.UserContext(), c.Params("projectId"), r)
	if err != nil {
		return writeUseCaseError(c, err)
	}

	resp := ProjectStatsResponse{
		TotalEvents:    stats.TotalEvents,
		UniqueUsers:    stats.UniqueUsers,
		EventBreakdown: make([]EventCountResponse, 0, len(stats.EventBreakdown)),
	}
	for _, ec := range stats.EventBreakdown {
		resp.EventBreakdown = append(resp.EventBreakdown, EventCountResponse{
			Name:  ec.Name,
			Count: ec.Count,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// GetDailyActiveUsers godoc
// @Summary Daily active users
// @Description Distinct users per UTC day in [start_date, end_date]; empty days are omitted
// @Tags Analytics
// @Produce json
// @Param projectId path string true "Project ID"
// @Param start_date query string true "RFC3339 lower bound"
// @Param end_date query string true "RFC3339 upper bound"
// @Success 200 {object} DailyActiveUsersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /projects/{projectId}/daily-active-users [get]
func (h *AnalyticsHandler) GetDailyActiveUsers(c *fiber.Ctx) error {
	start, err := parseRequiredDate(c, "start_date")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	end, err := parseRequiredDate(c, "end_date")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	days, err := h.uc.GetDailyActiveUsers(c.UserContext(), c.Params("projectId"), start, end)
	if err != nil {
		return writeUseCaseError(c, err)
	}

	resp := DailyActiveUsersResponse{Days: make([]DayCountResponse, 0, len(days))}
	for _, d := range days {
		resp.Days = append(resp.Days, DayCountResponse{Date: d.Date, Count: d.Count})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// GetEventFunnel godoc
// @Summary Event funnel
// @Description Independent per-step counts for an ordered list of event names with pairwise dropoff
// @Tags Analytics
// @Produce json
// @Param projectId path string true "Project ID"
// @Param steps query string true "Comma-separated ordered event names"
// @Param start_date query string false "RFC3339 lower bound"
// @Param end_date query string false "RFC3339 upper bound"
// @Success 200 {object} FunnelResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /projects/{projectId}/funnel [get]
func (h *AnalyticsHandler) GetEventFunnel(c *fiber.Ctx) error {
	r, err := parseDateRange(c)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var names []string
	for _, s := range strings.Split(c.Query("steps", ""), ",") {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}

	steps, err := h.uc.GetEventFunnel(c.UserContext(), c.Params("projectId"), names, r)
	if err != nil {
		return writeUseCaseError(c, err)
	}

	resp := FunnelResponse{Steps: make([]FunnelStepResponse, 0, len(steps))}
	for _, s := range steps {
		resp.Steps = append(resp.Steps, FunnelStepResponse{
			EventName:   s.EventName,
			Count:       s.Count,
			DropoffRate: s.DropoffRate,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// GetUserRetention godoc
// @Summary User retention
// @Description 30-day retention of the cohort active on the UTC day containing cohort_date
// @Tags Analytics
// @Produce json
// @Param projectId path string true "Project ID"
// @Param cohort_date query string true "RFC3339 cohort reference date"
// @Success 200 {object} RetentionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /projects/{projectId}/retention [get]
func (h *AnalyticsHandler) GetUserRetention(c *fiber.Ctx) error {
	cohortDate, err := parseRequiredDate(c, "cohort_date")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	days, err := h.uc.GetUserRetention(c.UserContext(), c.Params("projectId"), cohortDate)
	if err != nil {
		return writeUseCaseError(c, err)
	}

	resp := RetentionResponse{Days: make([]RetentionDayResponse, 0, len(days))}
	for _, d := range days {
		resp.Days = append(resp.Days, RetentionDayResponse{
			Day:           d.Day,
			UserCount:     d.UserCount,
			RetentionRate: d.RetentionRate,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

func writeUseCaseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidProjectID),
		errors.Is(err, usecase.ErrInvalidDateRange):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}

func parseDateRange(c *fiber.Ctx) (usecase.DateRange, error) {
	var r usecase.DateRange

	if s := c.Query("start_date", ""); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return r, errors.New("invalid 'start_date' parameter")
		}
		r.StartDate = &t
	}
	if s := c.Query("end_date", ""); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return r, errors.New("invalid 'end_date' parameter")
		}
		r.EndDate = &t
	}

	return r, nil
}

func parseRequiredDate(c *fiber.Ctx, name string) (time.Time, error) {
	s := c.Query(name, "")
	if s == "" {
		return time.Time{}, errors.New(name + " is required")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("invalid '" + name + "' parameter")
	}
	return t, nil
}

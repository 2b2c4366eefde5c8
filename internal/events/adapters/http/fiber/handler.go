package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"event-telemetry/internal/events/core/domain"
	"event-telemetry/internal/events/core/usecase"
	projectsHttp "event-telemetry/internal/projects/adapters/http/fiber"

	"github.com/gofiber/fiber/v2"
)

type TrackEventsUseCase interface {
	Execute(ctx context.Context, in usecase.TrackEventsInput) (int, error)
	QueryEvents(ctx context.Context, in usecase.QueryEventsInput) (*usecase.QueryEventsResult, error)
	DeleteProjectEvents(ctx context.Context, projectID string) (int64, error)
}

type EventHandler struct {
	trackUC TrackEventsUseCase
}

func NewEventHandler(trackUC TrackEventsUseCase) *EventHandler {
	return &EventHandler{trackUC: trackUC}
}

// TrackEvents godoc
// @Summary Ingest a batch of events
// @Description Persists up to 100 events for the authenticated project as one atomic batch
// @Tags Events
// @Accept json
// @Produce json
// @Param X-API-Key header string true "Project API key"
// @Param request body TrackEventsRequest true "Event batch"
// @Success 200 {object} TrackEventsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events [post]
func (h *EventHandler) TrackEvents(c *fiber.Ctx) error {
	var req TrackEventsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	projectID := projectsHttp.ProjectIDFromCtx(c)

	events := make([]usecase.TrackEventInput, len(req.Events))
	for i, e := range req.Events {
		events[i] = usecase.TrackEventInput{
			Name:       e.Name,
			Timestamp:  e.Timestamp,
			UserID:     e.UserID,
			SessionID:  e.SessionID,
			Properties: domain.Properties(e.Properties),
		}
	}

	persisted, err := h.trackUC.Execute(c.UserContext(), usecase.TrackEventsInput{
		ProjectID: projectID,
		Events:    events,
	})
	if err != nil {
		return writeUseCaseError(c, err)
	}

	return c.Status(http.StatusOK).JSON(TrackEventsResponse{Persisted: persisted})
}

// QueryEvents godoc
// @Summary Query events
// @Description Paginated range query over a project's event log, newest first
// @Tags Events
// @Produce json
// @Param project_id query string true "Project ID"
// @Param start_date query string false "RFC3339 lower bound on received_at"
// @Param end_date query string false "RFC3339 upper bound on received_at"
// @Param name query string false "Exact event name"
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Page offset"
// @Success 200 {object} QueryEventsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events [get]
func (h *EventHandler) QueryEvents(c *fiber.Ctx) error {
	projectID := c.Query("project_id", "")
	if projectID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "project_id is required",
		})
	}

	startDate, err := parseOptionalDate(c.Query("start_date", ""))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid 'start_date' parameter",
		})
	}
	endDate, err := parseOptionalDate(c.Query("end_date", ""))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid 'end_date' parameter",
		})
	}

	limit, err := parseOptionalInt(c.Query("limit", ""))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid 'limit' parameter",
		})
	}
	offset, err := parseOptionalInt(c.Query("offset", ""))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid 'offset' parameter",
		})
	}

	res, err := h.trackUC.QueryEvents(c.UserContext(), usecase.QueryEventsInput{
		ProjectID: projectID,
		StartDate: startDate,
		EndDate:   endDate,
		EventName: c.Query("name", ""),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return writeUseCaseError(c, err)
	}

	resp := QueryEventsResponse{
		Events:  make([]EventResponse, 0, len(res.Events)),
		Total:   res.Total,
		HasMore: res.HasMore,
	}
	for _, e := range res.Events {
		resp.Events = append(resp.Events, EventResponse{
			ProjectID:  e.ProjectID,
			Name:       e.Name,
			Timestamp:  e.Timestamp,
			ReceivedAt: e.ReceivedAt,
			UserID:     e.UserID,
			SessionID:  e.SessionID,
			Properties: e.Properties,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// DeleteProjectEvents godoc
// @Summary Delete all events of a project
// @Description Cascading bulk delete used by the project-deletion workflow; idempotent
// @Tags Events
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} DeleteProjectEventsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /projects/{projectId}/events [delete]
func (h *EventHandler) DeleteProjectEvents(c *fiber.Ctx) error {
	deleted, err := h.trackUC.DeleteProjectEvents(c.UserContext(), c.Params("projectId"))
	if err != nil {
		return writeUseCaseError(c, err)
	}

	return c.Status(http.StatusOK).JSON(DeleteProjectEventsResponse{Deleted: deleted})
}

func writeUseCaseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidProjectID),
		errors.Is(err, usecase.ErrInvalidEvent),
		errors.Is(err, usecase.ErrInvalidProperties),
		errors.Is(err, usecase.ErrBatchTooLarge),
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

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseOptionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

package fiber

import "time"

// TrackEventsRequest carries one ingestion batch.
// @Description Event batch ingestion DTO
type TrackEventsRequest struct {
	Events []trackEventItem `json:"events"`
}

type trackEventItem struct {
	Name       string         `json:"name"`
	Timestamp  time.Time      `json:"timestamp"`
	UserID     string         `json:"user_id,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

type TrackEventsResponse struct {
	Persisted int `json:"persisted"`
}

type EventResponse struct {
	ProjectID  string         `json:"project_id"`
	Name       string         `json:"name"`
	Timestamp  time.Time      `json:"timestamp"`
	ReceivedAt time.Time      `json:"received_at"`
	UserID     string         `json:"user_id,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

type QueryEventsResponse struct {
	Events  []EventResponse `json:"events"`
	Total   int64           `json:"total"`
	HasMore bool            `json:"has_more"`
}

type DeleteProjectEventsResponse struct {
	Deleted int64 `json:"deleted"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_event"`
	Message string `json:"message" example:"Event payload is invalid"`
}

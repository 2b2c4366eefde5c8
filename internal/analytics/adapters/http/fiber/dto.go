package fiber

type EventCountResponse struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type ProjectStatsResponse struct {
	TotalEvents    int64                `json:"total_events"`
	UniqueUsers    int64                `json:"unique_users"`
	EventBreakdown []EventCountResponse `json:"event_breakdown"`
}

type DailyActiveUsersResponse struct {
	Days []DayCountResponse `json:"days"`
}

type DayCountResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type FunnelResponse struct {
	Steps []FunnelStepResponse `json:"steps"`
}

type FunnelStepResponse struct {
	EventName   string  `json:"event_name"`
	Count       int64   `json:"count"`
	DropoffRate float64 `json:"dropoff_rate"`
}

type RetentionResponse struct {
	Days []RetentionDayResponse `json:"days"`
}

type RetentionDayResponse struct {
	Day           int     `json:"day"`
	UserCount     int64   `json:"user_count"`
	RetentionRate float64 `json:"retention_rate"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message" example:"invalid date range"`
}

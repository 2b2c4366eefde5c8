package domain

// ProjectStats summarizes a project's event log within a window.
type ProjectStats struct {
	TotalEvents    int64
	UniqueUsers    int64
	EventBreakdown []EventCount
}

// EventCount is one row of the per-name breakdown, sorted by count descending.
type EventCount struct {
	Name  string
	Count int64
}

// DailyActiveUsers is the distinct-user count of one UTC calendar day.
// Days without any qualifying event are omitted, not zero-filled.
type DailyActiveUsers struct {
	Date  string // YYYY-MM-DD
	Count int64
}

// FunnelStep reports the independent total count of one event name and the
// relative dropoff against the previous step.
type FunnelStep struct {
	EventName   string
	Count       int64
	DropoffRate float64 // percent
}

// RetentionDay is one offset day of a 30-day retention cohort.
type RetentionDay struct {
	Day           int
	UserCount     int64
	RetentionRate float64 // percent of the cohort
}

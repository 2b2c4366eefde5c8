package domain

import (
	"fmt"
	"time"
)

// Event is a single telemetry record. Once persisted it is never mutated.
type Event struct {
	ProjectID string
	Name      string
	// Timestamp is the client-asserted occurrence time. It may be skewed
	// or out of order and is never used for server-side sequencing.
	Timestamp time.Time
	// ReceivedAt is the server-assigned ingestion time. Every event of an
	// accepted batch carries the same value; all range filtering and
	// indexing runs on it.
	ReceivedAt time.Time
	UserID     string // empty for anonymous events
	SessionID  string
	Properties Properties
}

// Properties is an open map of event attributes. Values are restricted to
// JSON kinds: nil, bool, string, numbers, []any and nested map[string]any.
type Properties map[string]any

// Validate rejects values that cannot be represented as JSON.
func (p Properties) Validate() error {
	for k, v := range p {
		if err := validateValue(v); err != nil {
			return fmt.Errorf("property %q: %w", k, err)
		}
	}
	return nil
}

func validateValue(v any) error {
	switch val := v.(type) {
	case nil, bool, string,
		int, int32, int64, uint, uint32, uint64,
		float32, float64:
		return nil
	case []any:
		for _, item := range val {
			if err := validateValue(item); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for k, item := range val {
			if err := validateValue(item); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}

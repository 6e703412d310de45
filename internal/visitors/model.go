package visitors

import (
	"time"
)

// Event is a single append-only visit record. Events are never updated or
// deleted once written.
type Event struct {
	ID        string    `json:"id"`
	IP        string    `json:"ip"`
	Page      string    `json:"page"`
	Action    string    `json:"action"`
	UserAgent string    `json:"user_agent"`
	Referer   string    `json:"referer"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackVisitorRequest is the public tracking payload.
type TrackVisitorRequest struct {
	Page   string `json:"page"`
	Action string `json:"action"`
}

// Summary rolls visit events up for the dashboard.
type Summary struct {
	Total     int `json:"total"`
	UniqueIPs int `json:"unique_ips"`
	Today     int `json:"today"`
}

// Summarize computes the dashboard roll-up over a set of events. "Today" is
// measured in UTC.
func Summarize(events []Event, now time.Time) Summary {
	seen := make(map[string]struct{})
	dayStart := now.UTC().Truncate(24 * time.Hour)

	s := Summary{Total: len(events)}
	for _, e := range events {
		if _, ok := seen[e.IP]; !ok {
			seen[e.IP] = struct{}{}
			s.UniqueIPs++
		}
		if !e.CreatedAt.UTC().Before(dayStart) {
			s.Today++
		}
	}
	return s
}

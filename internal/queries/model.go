package queries

import (
	"strings"
	"time"
)

// Status tracks a project query through the pipeline.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusBooked    Status = "Booked"
	StatusUpcoming  Status = "Upcoming"
	StatusCompleted Status = "Completed"
	StatusRejected  Status = "Rejected"
)

// ParseStatus maps a raw status string to a Status. Unknown or missing
// values default to Pending.
func ParseStatus(s string) Status {
	switch Status(strings.TrimSpace(s)) {
	case StatusBooked:
		return StatusBooked
	case StatusUpcoming:
		return StatusUpcoming
	case StatusCompleted:
		return StatusCompleted
	case StatusRejected:
		return StatusRejected
	default:
		return StatusPending
	}
}

// Valid reports whether s is one of the five pipeline statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusBooked, StatusUpcoming, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// BudgetTier is the canonical budget bracket chosen on the intake form.
type BudgetTier string

const (
	TierBasic        BudgetTier = "Basic"
	TierProfessional BudgetTier = "Professional"
	TierHighEnd      BudgetTier = "High End"
)

// Budget keeps both the canonical tier and the raw label the client
// submitted. Legacy rows carry free-text labels that must survive verbatim.
type Budget struct {
	Tier  BudgetTier `json:"tier"`
	Label string     `json:"label"`
}

// ParseBudget normalizes a raw budget string into a Budget. Labels that do
// not match a known tier fall back to Basic but keep their original text.
func ParseBudget(raw string) Budget {
	label := strings.TrimSpace(raw)
	if label == "" {
		return Budget{Tier: TierBasic, Label: string(TierBasic)}
	}
	tier := TierBasic
	switch {
	case strings.EqualFold(label, string(TierProfessional)):
		tier = TierProfessional
	case strings.EqualFold(label, string(TierHighEnd)), strings.EqualFold(label, "HighEnd"):
		tier = TierHighEnd
	}
	return Budget{Tier: tier, Label: label}
}

// Query is a prospective client's project inquiry.
type Query struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Company     string    `json:"company"`
	Services    []string  `json:"services"`
	Description string    `json:"description"`
	Budget      Budget    `json:"budget"`
	Timeline    string    `json:"timeline"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateQueryRequest is the intake form payload.
type CreateQueryRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Company     string   `json:"company"`
	Services    []string `json:"services"`
	Description string   `json:"description"`
	Budget      string   `json:"budget"`
	Timeline    string   `json:"timeline"`
}

// Validate validates the intake payload.
func (r *CreateQueryRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Email) == "" {
		return ErrMissingEmail
	}
	return nil
}

const (
	legacyCompanyPrefix  = "Company: "
	legacyTimelineMarker = "Timeline: "
)

// parseLegacyMessage extracts company and timeline from the freeform message
// blob the old site wrote ("Company: X" on the first line, "Timeline: Y"
// somewhere after). New rows store both as columns; this only backfills rows
// that predate the schema change.
func parseLegacyMessage(message string) (company, timeline string) {
	if message == "" {
		return "", ""
	}
	if strings.Contains(message, legacyCompanyPrefix) {
		firstLine, _, _ := strings.Cut(message, "\n")
		company = strings.TrimSpace(strings.TrimPrefix(firstLine, legacyCompanyPrefix))
	}
	if _, after, ok := strings.Cut(message, legacyTimelineMarker); ok {
		timeline = strings.TrimSpace(after)
	}
	return company, timeline
}

// splitServices parses the comma-separated service column written by the
// intake form into an ordered list.
func splitServices(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	services := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			services = append(services, p)
		}
	}
	return services
}

func joinServices(services []string) string {
	return strings.Join(services, ", ")
}

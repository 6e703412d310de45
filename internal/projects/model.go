package projects

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingTitle    = errors.New("projects: title is required")
	ErrProjectNotFound = errors.New("projects: project not found")
)

// UpcomingProject is a portfolio entry announced ahead of launch.
type UpcomingProject struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Client     string    `json:"client"`
	Summary    string    `json:"summary"`
	Tags       []string  `json:"tags"`
	LaunchDate time.Time `json:"launch_date"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateProjectRequest is the admin payload for announcing a project.
type CreateProjectRequest struct {
	Title      string    `json:"title"`
	Client     string    `json:"client"`
	Summary    string    `json:"summary"`
	Tags       []string  `json:"tags"`
	LaunchDate time.Time `json:"launch_date"`
}

// Validate validates the payload.
func (r *CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

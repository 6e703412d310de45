package announcements

import (
	"errors"
	"strings"
	"time"
)

// ErrMissingText rejects an announcement with no content.
var ErrMissingText = errors.New("announcements: text is required")

// Announcement is the single site-wide banner. At most one exists; an absent
// row means the banner is inactive, never an error.
type Announcement struct {
	Text      string    `json:"text"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetAnnouncementRequest is the admin payload for publishing the banner.
type SetAnnouncementRequest struct {
	Text string `json:"text"`
}

// Validate validates the payload.
func (r *SetAnnouncementRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrMissingText
	}
	return nil
}

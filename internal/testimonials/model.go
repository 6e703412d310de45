package testimonials

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingClientName   = errors.New("testimonials: client name is required")
	ErrMissingFeedback     = errors.New("testimonials: feedback is required")
	ErrTestimonialNotFound = errors.New("testimonials: testimonial not found")
)

// Rating bounds. Out-of-range submissions are clamped, not rejected.
const (
	MinRating = 1
	MaxRating = 5
)

// DefaultThemeColor is the card accent applied when a save omits one.
const DefaultThemeColor = "#3b82f6"

// Testimonial is a piece of published client feedback.
type Testimonial struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Role       string    `json:"role"`
	Industry   string    `json:"industry"`
	Feedback   string    `json:"feedback"`
	Impact     string    `json:"impact"`
	Rating     int       `json:"rating"`
	ThemeColor string    `json:"theme_color"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateTestimonialRequest is the admin payload for publishing feedback.
type CreateTestimonialRequest struct {
	ClientName string `json:"client_name"`
	Role       string `json:"role"`
	Industry   string `json:"industry"`
	Feedback   string `json:"feedback"`
	Impact     string `json:"impact"`
	Rating     int    `json:"rating"`
	ThemeColor string `json:"theme_color"`
}

// Validate validates the payload.
func (r *CreateTestimonialRequest) Validate() error {
	if strings.TrimSpace(r.ClientName) == "" {
		return ErrMissingClientName
	}
	if strings.TrimSpace(r.Feedback) == "" {
		return ErrMissingFeedback
	}
	return nil
}

// ThemeColorOrDefault returns the requested accent color, falling back to the
// site default.
func (r *CreateTestimonialRequest) ThemeColorOrDefault() string {
	if strings.TrimSpace(r.ThemeColor) == "" {
		return DefaultThemeColor
	}
	return r.ThemeColor
}

// ClampRating forces a rating into the publishable range.
func ClampRating(rating int) int {
	if rating < MinRating {
		return MinRating
	}
	if rating > MaxRating {
		return MaxRating
	}
	return rating
}

package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tobro-digital/agency-platform/internal/queries"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

// Service sends operator notifications. All sends are fire-and-forget:
// a delivery failure is logged and never blocks the request that caused it.
type Service struct {
	email   EmailSender
	alertTo string
	logger  *logging.Logger
}

// NewService creates a notification service. email or alertTo may be empty,
// in which case every notification is a no-op.
func NewService(email EmailSender, alertTo string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:   email,
		alertTo: alertTo,
		logger:  logger,
	}
}

// QueryReceived alerts the team about a new project query. Runs in its own
// goroutine with a bounded timeout, detached from the request context.
func (s *Service) QueryReceived(q *queries.Query) {
	if s == nil || s.email == nil || s.alertTo == "" || q == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		servicesLine := "none listed"
		if len(q.Services) > 0 {
			servicesLine = strings.Join(q.Services, ", ")
		}
		msg := EmailMessage{
			To:      s.alertTo,
			Subject: fmt.Sprintf("New project query from %s", q.Name),
			Body: fmt.Sprintf("Name: %s\nEmail: %s\nCompany: %s\nServices: %s\nBudget: %s\nTimeline: %s\n\n%s",
				q.Name, q.Email, q.Company, servicesLine, q.Budget.Label, q.Timeline, q.Description),
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: lead alert failed", "error", err, "query_id", q.ID)
		}
	}()
}

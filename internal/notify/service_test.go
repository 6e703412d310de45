package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tobro-digital/agency-platform/internal/queries"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

type capturingSender struct {
	mu   sync.Mutex
	sent []EmailMessage
	err  error
}

func (c *capturingSender) Send(ctx context.Context, msg EmailMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return c.err
}

func (c *capturingSender) messages() []EmailMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]EmailMessage(nil), c.sent...)
}

func waitForSend(t *testing.T, sender *capturingSender) EmailMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msgs := sender.messages(); len(msgs) > 0 {
			return msgs[0]
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected an email to be sent")
	return EmailMessage{}
}

func TestQueryReceived_SendsLeadAlert(t *testing.T) {
	sender := &capturingSender{}
	svc := NewService(sender, "team@tobro.digital", logging.Default())

	svc.QueryReceived(&queries.Query{
		ID:          "q1",
		Name:        "Ada Lovelace",
		Email:       "ada@acme.com",
		Company:     "Acme",
		Services:    []string{"Web Design", "SEO"},
		Description: "We need a relaunch.",
		Budget:      queries.ParseBudget("Professional"),
		Timeline:    "3 months",
	})

	msg := waitForSend(t, sender)
	if msg.To != "team@tobro.digital" {
		t.Errorf("to = %q", msg.To)
	}
	if !strings.Contains(msg.Subject, "Ada Lovelace") {
		t.Errorf("subject = %q", msg.Subject)
	}
	for _, want := range []string{"ada@acme.com", "Acme", "Web Design, SEO", "Professional", "3 months", "We need a relaunch."} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestQueryReceived_NoopWhenUnconfigured(t *testing.T) {
	// None of these may panic or block.
	var nilService *Service
	nilService.QueryReceived(&queries.Query{ID: "q1"})

	NewService(nil, "team@tobro.digital", logging.Default()).QueryReceived(&queries.Query{ID: "q1"})
	NewService(&capturingSender{}, "", logging.Default()).QueryReceived(&queries.Query{ID: "q1"})
	NewService(&capturingSender{}, "team@tobro.digital", logging.Default()).QueryReceived(nil)
}

func TestQueryReceived_SendFailureIsSwallowed(t *testing.T) {
	sender := &capturingSender{err: errors.New("sendgrid down")}
	svc := NewService(sender, "team@tobro.digital", logging.Default())

	svc.QueryReceived(&queries.Query{ID: "q1", Name: "Ada", Email: "ada@acme.com"})
	waitForSend(t, sender)
}

package queries

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tobro-digital/agency-platform/internal/changefeed"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

type recordingPublisher struct {
	published atomic.Int64
}

func (p *recordingPublisher) Publish(ctx context.Context, table string) error {
	if table != changefeed.TableQueries {
		return errors.New("unexpected table: " + table)
	}
	p.published.Add(1)
	return nil
}

type recordingNotifier struct {
	received atomic.Int64
}

func (n *recordingNotifier) QueryReceived(q *Query) { n.received.Add(1) }

func newTestHandler() (*Handler, *InMemoryRepository, *recordingPublisher, *recordingNotifier) {
	repo := NewInMemoryRepository()
	pub := &recordingPublisher{}
	not := &recordingNotifier{}
	return NewHandler(repo, pub, not, logging.Default()), repo, pub, not
}

func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/queries", h.Create)
	r.Get("/admin/queries", h.List)
	r.Get("/admin/analytics", h.Analytics)
	r.Get("/admin/clients", h.Clients)
	r.Patch("/admin/queries/{id}/status", h.UpdateStatus)
	r.Delete("/admin/queries/{id}", h.Delete)
	return r
}

func TestCreateQuery_Success(t *testing.T) {
	handler, _, pub, not := newTestHandler()

	reqBody := CreateQueryRequest{
		Name:     "Ada Lovelace",
		Email:    "ada@acme.com",
		Company:  "Acme",
		Services: []string{"Web Design", "SEO"},
		Budget:   "Professional",
		Timeline: "3 months",
	}
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/queries", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var created Query
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("expected query ID to be set")
	}
	if created.Status != StatusPending {
		t.Errorf("expected new query to be Pending, got %s", created.Status)
	}
	if created.Budget.Tier != TierProfessional {
		t.Errorf("expected Professional tier, got %s", created.Budget.Tier)
	}

	if pub.published.Load() != 1 {
		t.Errorf("expected 1 feed publish, got %d", pub.published.Load())
	}
	if not.received.Load() != 1 {
		t.Errorf("expected 1 lead alert, got %d", not.received.Load())
	}
}

func TestCreateQuery_MissingName(t *testing.T) {
	handler, _, pub, _ := newTestHandler()

	body, _ := json.Marshal(CreateQueryRequest{Email: "ada@acme.com"})
	req := httptest.NewRequest(http.MethodPost, "/queries", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if pub.published.Load() != 0 {
		t.Error("rejected query must not publish a change")
	}
}

func TestCreateQuery_InvalidJSON(t *testing.T) {
	handler, _, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/queries", strings.NewReader("{"))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func seedQueries(t *testing.T, repo *InMemoryRepository) {
	t.Helper()
	ctx := context.Background()
	seeds := []CreateQueryRequest{
		{Name: "Ada Lovelace", Email: "ada@acme.com", Company: "Acme", Services: []string{"Web Design"}, Budget: "Basic"},
		{Name: "Grace Hopper", Email: "grace@navy.mil", Company: "Navy", Services: []string{"SEO"}, Budget: "Professional"},
		{Name: "Ada Lovelace", Email: "ada@acme.com", Company: "Acme", Services: []string{"SEO"}, Budget: "Basic"},
	}
	for _, s := range seeds {
		if _, err := repo.Create(ctx, &s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestListQueries_StatusAndSearchFilters(t *testing.T) {
	handler, repo, _, _ := newTestHandler()
	seedQueries(t, repo)

	// Promote one query so the status filter has something to find.
	all, _ := repo.List(context.Background())
	if err := repo.UpdateStatus(context.Background(), all[0].ID, StatusBooked); err != nil {
		t.Fatalf("update status: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/queries?status=Booked", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	var resp ListQueriesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Queries[0].Status != StatusBooked {
		t.Errorf("expected one booked query, got %+v", resp)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/queries?search=grace", nil)
	w = httptest.NewRecorder()
	handler.List(w, req)

	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Queries[0].Email != "grace@navy.mil" {
		t.Errorf("expected grace's query, got %+v", resp)
	}
}

func TestAnalytics(t *testing.T) {
	handler, repo, _, _ := newTestHandler()
	seedQueries(t, repo)

	all, _ := repo.List(context.Background())
	if err := repo.UpdateStatus(context.Background(), all[0].ID, StatusCompleted); err != nil {
		t.Fatalf("update status: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/analytics", nil)
	w := httptest.NewRecorder()
	handler.Analytics(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var report struct {
		Total              int            `json:"total"`
		ConversionRate     float64        `json:"conversion_rate"`
		Services           map[string]int `json:"service_distribution"`
		MostPopularService string         `json:"most_popular_service"`
	}
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if report.Total != 3 {
		t.Errorf("total = %d, want 3", report.Total)
	}
	if want := 100.0 / 3.0; report.ConversionRate < want-0.01 || report.ConversionRate > want+0.01 {
		t.Errorf("conversion rate = %v, want ~%v", report.ConversionRate, want)
	}
	if report.Services["SEO"] != 2 {
		t.Errorf("SEO demand = %d, want 2", report.Services["SEO"])
	}
	if report.MostPopularService != "SEO" {
		t.Errorf("most popular = %q, want SEO", report.MostPopularService)
	}
}

func TestAnalytics_EmptyCollection(t *testing.T) {
	handler, _, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/admin/analytics", nil)
	w := httptest.NewRecorder()
	handler.Analytics(w, req)

	var report struct {
		Total              int     `json:"total"`
		ConversionRate     float64 `json:"conversion_rate"`
		MostPopularService string  `json:"most_popular_service"`
	}
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.ConversionRate != 0 {
		t.Errorf("empty collection converts at %v, want 0", report.ConversionRate)
	}
	if report.MostPopularService != NoData {
		t.Errorf("most popular = %q, want %q", report.MostPopularService, NoData)
	}
}

func TestClients_GroupsByEmail(t *testing.T) {
	handler, repo, _, _ := newTestHandler()
	seedQueries(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/admin/clients", nil)
	w := httptest.NewRecorder()
	handler.Clients(w, req)

	var resp ListClientsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected 2 clients, got %d", resp.Count)
	}
	for _, c := range resp.Clients {
		if c.Email == "ada@acme.com" && len(c.Queries) != 2 {
			t.Errorf("expected ada to have 2 queries, got %d", len(c.Queries))
		}
	}
}

func TestUpdateStatus(t *testing.T) {
	handler, repo, pub, _ := newTestHandler()
	seedQueries(t, repo)
	pub.published.Store(0)

	all, _ := repo.List(context.Background())
	id := all[0].ID

	body, _ := json.Marshal(UpdateStatusRequest{Status: StatusBooked})
	req := httptest.NewRequest(http.MethodPatch, "/admin/queries/"+id+"/status", bytes.NewReader(body))
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body)
	}

	updated, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Status != StatusBooked {
		t.Errorf("status = %s, want Booked", updated.Status)
	}
	if pub.published.Load() != 1 {
		t.Errorf("expected 1 feed publish, got %d", pub.published.Load())
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	handler, repo, _, _ := newTestHandler()
	seedQueries(t, repo)

	all, _ := repo.List(context.Background())
	body := []byte(`{"status":"Archived"}`)
	req := httptest.NewRequest(http.MethodPatch, "/admin/queries/"+all[0].ID+"/status", bytes.NewReader(body))
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	handler, _, _, _ := newTestHandler()

	body, _ := json.Marshal(UpdateStatusRequest{Status: StatusBooked})
	req := httptest.NewRequest(http.MethodPatch, "/admin/queries/nope/status", bytes.NewReader(body))
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestDeleteQuery(t *testing.T) {
	handler, repo, pub, _ := newTestHandler()
	seedQueries(t, repo)
	pub.published.Store(0)

	all, _ := repo.List(context.Background())
	id := all[0].ID

	req := httptest.NewRequest(http.MethodDelete, "/admin/queries/"+id, nil)
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if _, err := repo.GetByID(context.Background(), id); !errors.Is(err, ErrQueryNotFound) {
		t.Errorf("expected query to be gone, got %v", err)
	}
	if pub.published.Load() != 1 {
		t.Errorf("expected 1 feed publish, got %d", pub.published.Load())
	}
}

func TestDeleteQuery_NotFound(t *testing.T) {
	handler, _, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodDelete, "/admin/queries/nope", nil)
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

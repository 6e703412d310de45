package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tobro-digital/agency-platform/pkg/logging"
)

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, table string) error { return nil }

func newTestHandler() (*Handler, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	return NewHandler(repo, nopPublisher{}, logging.Default()), repo
}

func TestCreateProject(t *testing.T) {
	handler, _ := newTestHandler()

	launch := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	body, _ := json.Marshal(CreateProjectRequest{
		Title:      "Storefront relaunch",
		Client:     "Acme",
		Summary:    "Full redesign with new checkout",
		Tags:       []string{"ecommerce", "design"},
		LaunchDate: launch,
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/projects", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var p UpcomingProject
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID == "" {
		t.Error("expected project ID to be set")
	}
	if !p.LaunchDate.Equal(launch) {
		t.Errorf("launch date = %v, want %v", p.LaunchDate, launch)
	}
	if len(p.Tags) != 2 {
		t.Errorf("tags = %v, want 2 entries", p.Tags)
	}
}

func TestCreateProject_MissingTitle(t *testing.T) {
	handler, _ := newTestHandler()

	body, _ := json.Marshal(CreateProjectRequest{Client: "Acme"})
	req := httptest.NewRequest(http.MethodPost, "/admin/projects", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestListProjects(t *testing.T) {
	handler, repo := newTestHandler()
	ctx := context.Background()

	for _, title := range []string{"alpha", "beta"} {
		if _, err := repo.Create(ctx, &CreateProjectRequest{Title: title}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	var resp ListProjectsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected 2 projects, got %d", resp.Count)
	}
	if resp.Projects[0].Title != "beta" {
		t.Errorf("expected newest first, got %s", resp.Projects[0].Title)
	}
}

func TestDeleteProject_NotFound(t *testing.T) {
	handler, _ := newTestHandler()

	r := chi.NewRouter()
	r.Delete("/admin/projects/{id}", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/admin/projects/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

//go:build integration

package e2e_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/adamwoolhether/fetcher/client"
	"github.com/adamwoolhether/fetcher/client/metrics"
	"github.com/adamwoolhether/fetcher/client/schema"
	"github.com/adamwoolhether/fetcher/config"
)

// -------------------------------------------------------------------------
// Types
// -------------------------------------------------------------------------

type user struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age"   validate:"gte=0"`
}

type itemResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type queryResp struct {
	Search string `json:"search"`
	Page   string `json:"page"`
}

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

func newTestApp(t *testing.T) string {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /echo", echoHandler)
	mux.HandleFunc("GET /items/{id}/{name}", itemHandler)
	mux.HandleFunc("GET /query", queryHandler)
	mux.HandleFunc("GET /error/not-found", notFoundHandler)
	mux.HandleFunc("GET /users/bad", badUserHandler)
	mux.HandleFunc("GET /auth", authHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv.URL
}

// newClient builds a client from a config file pointing at baseURL.
func newClient(t *testing.T, baseURL string, extra ...client.Option) *client.Client {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fetcher.yaml")
	body := "base_url: " + baseURL + "\nrequest_id: true\nheaders:\n  accept: application/json\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	c, err := config.Build(path, extra...)
	if err != nil {
		t.Fatalf("building client: %v", err)
	}

	return c
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// -------------------------------------------------------------------------
// Handlers
// -------------------------------------------------------------------------

func echoHandler(w http.ResponseWriter, r *http.Request) {
	var u user
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusCreated, u)
}

func itemHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, itemResp{
		ID:   r.PathValue("id"),
		Name: r.PathValue("name"),
	})
}

func queryHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, queryResp{
		Search: r.URL.Query().Get("search"),
		Page:   r.URL.Query().Get("page"),
	})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusNotFound, map[string]string{"error": "widget not found"})
}

func badUserHandler(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"name": "", "email": "nope", "age": 3})
}

func authHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer secret" {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"requestID": r.Header.Get("X-Request-Id")})
}

// -------------------------------------------------------------------------
// Tests
// -------------------------------------------------------------------------

func TestE2E_JSONRoundTrip(t *testing.T) {
	baseURL := newTestApp(t)
	c := newClient(t, baseURL)

	sent := user{Name: "Alice", Email: "alice@test.com", Age: 30}

	resp, err := c.Post(context.Background(), "/echo", sent, &client.Config{
		Schema: schema.Struct[user](),
	})
	if err != nil {
		t.Fatalf("executing request: %v", err)
	}

	if resp.Status != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.Status)
	}
	if diff := cmp.Diff(sent, resp.Data); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestE2E_PathParams(t *testing.T) {
	baseURL := newTestApp(t)
	c := newClient(t, baseURL)

	resp, err := c.Get(context.Background(), "/items/42/widget", nil)
	if err != nil {
		t.Fatalf("executing request: %v", err)
	}

	got, err := client.DataAs[itemResp](resp)
	if err != nil {
		t.Fatalf("reading data: %v", err)
	}

	if diff := cmp.Diff(itemResp{ID: "42", Name: "widget"}, got); diff != "" {
		t.Errorf("item mismatch (-want +got):\n%s", diff)
	}
}

func TestE2E_QueryParams(t *testing.T) {
	baseURL := newTestApp(t)
	c := newClient(t, baseURL)

	type search struct {
		Search string `url:"search"`
		Page   int    `url:"page"`
	}

	resp, err := c.Get(context.Background(), "/query?search=golang", &client.Config{
		Params: search{Search: "ignored-dup", Page: 2},
	})
	if err != nil {
		t.Fatalf("executing request: %v", err)
	}

	got, err := client.DataAs[queryResp](resp)
	if err != nil {
		t.Fatalf("reading data: %v", err)
	}

	// The first occurrence wins when a key is repeated.
	if diff := cmp.Diff(queryResp{Search: "golang", Page: "2"}, got); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestE2E_ErrorHandling(t *testing.T) {
	baseURL := newTestApp(t)
	c := newClient(t, baseURL)

	_, err := c.Get(context.Background(), "/error/not-found", nil)

	var serr *client.StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if serr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", serr.StatusCode)
	}
	if !strings.Contains(serr.Body, "widget not found") {
		t.Errorf("expected body in error, got %q", serr.Body)
	}
}

func TestE2E_FieldValidationErrors(t *testing.T) {
	baseURL := newTestApp(t)
	c := newClient(t, baseURL)

	_, err := c.Get(context.Background(), "/users/bad", &client.Config{Schema: schema.Struct[user]()})

	var verr *client.SchemaValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected SchemaValidationError, got %v", err)
	}

	got := map[string]string{}
	for _, issue := range verr.Issues {
		got[schema.FormatPath(issue.Path)] = issue.Message
	}

	exp := map[string]string{
		"name":  "This field is required",
		"email": "email must be a valid email address",
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestE2E_Interceptors(t *testing.T) {
	baseURL := newTestApp(t)

	reg := prometheus.NewRegistry()
	c := newClient(t, baseURL, client.WithMetrics(metrics.New(reg)))

	_, err := c.Get(context.Background(), "/auth", nil)
	if !errors.Is(err, client.ErrAuthFailure) {
		t.Fatalf("expected auth failure, got %v", err)
	}

	c.Interceptors.Request.Use(func(_ context.Context, cfg client.Config) (client.Config, error) {
		return client.Config{Headers: client.Headers{"Authorization": "Bearer secret"}}, nil
	}, nil)

	resp, err := c.Get(context.Background(), "/auth", nil)
	if err != nil {
		t.Fatalf("executing request: %v", err)
	}

	data, err := client.DataAs[map[string]string](resp)
	if err != nil {
		t.Fatalf("reading data: %v", err)
	}
	if data["requestID"] == "" {
		t.Error("expected request id header from config")
	}

	n, err := testutil.GatherAndCount(reg, "fetcher_requests_total")
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 request series, got %d", n)
	}
}

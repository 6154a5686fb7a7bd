package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/adamwoolhether/fetcher"
	"github.com/adamwoolhether/fetcher/client"
)

func TestNew_Independent(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag":"` + r.Header.Get("X-Tag") + `"}`))
	}))
	defer ts.Close()

	a, err := fetcher.Create(client.Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	b, err := fetcher.New(client.WithBaseURL(ts.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	a.Interceptors.Request.Use(func(_ context.Context, cfg client.Config) (client.Config, error) {
		return client.Config{Headers: client.Headers{"X-Tag": "a"}}, nil
	}, nil)

	testCases := map[string]struct {
		c   *client.Client
		exp string
	}{
		"withInterceptor":    {c: a, exp: "a"},
		"withoutInterceptor": {c: b, exp: ""},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			resp, err := tc.c.Get(t.Context(), "/", nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := resp.Data.(map[string]any)["tag"]; got != tc.exp {
				t.Errorf("exp tag %q, got %v", tc.exp, got)
			}
		})
	}

	if n := hits.Load(); n != 2 {
		t.Errorf("exp 2 hits, got %d", n)
	}
}

func TestNew_BadOption(t *testing.T) {
	if _, err := fetcher.New(client.WithTransport(nil)); err == nil {
		t.Fatal("expected error for nil transport")
	}
}

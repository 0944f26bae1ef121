package search_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/typevault/typevault/pkg/search"
)

func newLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s, want /search", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "Inter foundry" {
			t.Errorf("q = %q, want %q", got, "Inter foundry")
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "Inter", "url": "https://rsms.me/inter", "content": "A typeface for interfaces"},
				{"title": "Inter on Google Fonts", "url": "https://fonts.google.com/specimen/Inter"},
			},
		})
	}))
	defer srv.Close()

	client := search.New(srv.URL, 5, newLogger())

	results, err := client.Search(context.Background(), "Inter foundry")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Title != "Inter" || results[0].URL != "https://rsms.me/inter" {
		t.Errorf("first result = %+v", results[0])
	}
	if results[0].Content != "A typeface for interfaces" {
		t.Errorf("content = %q", results[0].Content)
	}
}

func TestSearchTruncatesToLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits := make([]map[string]string, 10)
		for i := range hits {
			hits[i] = map[string]string{"title": "hit", "url": "https://example.com"}
		}
		json.NewEncoder(w).Encode(map[string]any{"results": hits})
	}))
	defer srv.Close()

	client := search.New(srv.URL, 3, newLogger())

	results, err := client.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("results = %d, want limit of 3", len(results))
	}
}

func TestSearchEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream engines unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := search.New(srv.URL, 5, newLogger())

	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestSearchMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := search.New(srv.URL, 5, newLogger())

	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Error("expected error for malformed body")
	}
}

package virlo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/contentcompass/compass/pkg/models"
)

const testKey = "test-key-0123456789"

const trendsBody = `{"results": 1, "data": [{"trends": [{"trend": {"name": "Silent Vlogging"}}]}]}`

// newTestClient points a client with millisecond backoff at srv.
func newTestClient(srv *httptest.Server) *Client {
	c := New(srv.URL, 5*time.Second, nil)
	c.retryDelay = time.Millisecond
	return c
}

func TestFetchTrends(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(trendsBody))
	}))
	defer srv.Close()

	payload, err := newTestClient(srv).Fetch(context.Background(), models.KindTrends, nil, testKey)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotPath != "/trends/digest" {
		t.Errorf("path = %q, want /trends/digest", gotPath)
	}
	if gotAuth != "Bearer "+testKey {
		t.Errorf("auth header = %q, want bearer credential", gotAuth)
	}
	if payload.Results != 1 {
		t.Errorf("payload.Results = %d, want 1", payload.Results)
	}
	if names := payload.TrendNames(5); len(names) != 1 || names[0] != "Silent Vlogging" {
		t.Errorf("trend names = %v", names)
	}
}

func TestFetchHashtagsDefaults(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hashtags" {
			t.Errorf("path = %q, want /hashtags", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"results": 0, "data": []}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Fetch(context.Background(), models.KindHashtags, nil, testKey)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	dateRe := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	for _, name := range []string{"startDate", "endDate"} {
		if v := gotQuery[name]; len(v) != 1 || !dateRe.MatchString(v[0]) {
			t.Errorf("%s = %v, want one YYYY-MM-DD value", name, v)
		}
	}
	if got := gotQuery["limit"]; len(got) != 1 || got[0] != "50" {
		t.Errorf("limit = %v, want 50", got)
	}
	if got := gotQuery["orderBy"]; len(got) != 1 || got[0] != "views" {
		t.Errorf("orderBy = %v, want views", got)
	}
	if got := gotQuery["sort"]; len(got) != 1 || got[0] != "desc" {
		t.Errorf("sort = %v, want desc", got)
	}
}

func TestFetchHashtagsOverrides(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"results": 0, "data": []}`))
	}))
	defer srv.Close()

	params := models.Params{"limit": "25", "order_by": "count"}
	if _, err := newTestClient(srv).Fetch(context.Background(), models.KindHashtags, params, testKey); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if got := gotQuery["limit"]; len(got) != 1 || got[0] != "25" {
		t.Errorf("limit = %v, want 25", got)
	}
	if got := gotQuery["orderBy"]; len(got) != 1 || got[0] != "count" {
		t.Errorf("orderBy = %v, want count", got)
	}
}

func TestFetchVideosNiche(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos/digest" {
			t.Errorf("path = %q, want /videos/digest", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"results": 0, "data": []}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)

	if _, err := c.Fetch(context.Background(), models.KindVideos, nil, testKey); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := gotQuery["limit"]; len(got) != 1 || got[0] != "10" {
		t.Errorf("limit = %v, want 10", got)
	}
	if _, ok := gotQuery["niche"]; ok {
		t.Error("niche sent without being requested")
	}

	if _, err := c.Fetch(context.Background(), models.KindVideos, models.Params{"niche": "Fitness"}, testKey); err != nil {
		t.Fatalf("Fetch with niche: %v", err)
	}
	if got := gotQuery["niche"]; len(got) != 1 || got[0] != "Fitness" {
		t.Errorf("niche = %v, want Fitness", got)
	}
}

func TestFetchUnsupportedKind(t *testing.T) {
	c := New("", 0, nil)
	if _, err := c.Fetch(context.Background(), models.ResourceKind("sounds"), nil, testKey); err == nil {
		t.Error("Fetch(sounds) succeeded, want error")
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"results": 2, "data": []}`))
	}))
	defer srv.Close()

	payload, err := newTestClient(srv).Fetch(context.Background(), models.KindNiches, nil, testKey)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if payload.Results != 2 {
		t.Errorf("payload.Results = %d, want 2", payload.Results)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestRetryOnRateLimit(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"results": 0, "data": []}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).Fetch(context.Background(), models.KindTrends, nil, testKey); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2", got)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "bad key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Fetch(context.Background(), models.KindTrends, nil, testKey)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1 (no retry on 4xx)", got)
	}
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Fetch(context.Background(), models.KindVideos, nil, testKey)
	if err == nil {
		t.Fatal("Fetch succeeded, want exhaustion error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("error = %v, want wrapped 502 APIError", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestContextCancelledStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv).Fetch(ctx, models.KindTrends, nil, testKey)
	if err == nil {
		t.Fatal("Fetch succeeded with cancelled context")
	}
}

package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"guidepress/internal/cache"
	"guidepress/internal/config"
	"guidepress/internal/logging"
	"guidepress/internal/services"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Fetch.RequestDelayMS = 0
	cfg.Fetch.RetryDelayMS = 0
	cfg.Fetch.RetryAttempts = 2
	return &cfg
}

func TestPageSendsUserAgent(t *testing.T) {
	var gotAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	client := NewClient(testConfig(), logging.NewNop())
	result, err := client.Page(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if result.FromCache {
		t.Fatal("unexpected cache hit")
	}
	if result.ContentType != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type: %q", result.ContentType)
	}
	if agent := gotAgent.Load(); agent != config.Default().Fetch.UserAgent {
		t.Fatalf("unexpected user agent: %v", agent)
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	client := NewClient(testConfig(), logging.NewNop())
	result, err := client.Page(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if string(result.Body) != "recovered" {
		t.Fatalf("unexpected body: %q", result.Body)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(), logging.NewNop())
	_, err := client.Page(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected ErrFetch marker, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

type fakeCache struct {
	entries map[string]*cache.Entry
	puts    int
}

func (f *fakeCache) Get(_ context.Context, url string, _ time.Duration) (*cache.Entry, bool, error) {
	entry, ok := f.entries[url]
	return entry, ok, nil
}

func (f *fakeCache) Put(_ context.Context, url, contentType string, body []byte) error {
	if f.entries == nil {
		f.entries = make(map[string]*cache.Entry)
	}
	f.entries[url] = &cache.Entry{URL: url, ContentType: contentType, Body: body}
	f.puts++
	return nil
}

func TestFetchServesFromCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network request despite cache hit")
	}))
	defer server.Close()

	store := &fakeCache{entries: map[string]*cache.Entry{
		server.URL: {URL: server.URL, ContentType: "text/html", Body: []byte("cached")},
	}}
	client := NewClient(testConfig(), logging.NewNop(), WithCache(store, time.Hour))

	result, err := client.Page(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if !result.FromCache {
		t.Fatal("expected cache hit")
	}
	if string(result.Body) != "cached" {
		t.Fatalf("unexpected body: %q", result.Body)
	}
}

func TestFetchPopulatesCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer server.Close()

	store := &fakeCache{}
	client := NewClient(testConfig(), logging.NewNop(), WithCache(store, time.Hour))

	if _, err := client.Image(context.Background(), server.URL); err != nil {
		t.Fatalf("Image: %v", err)
	}
	if store.puts != 1 {
		t.Fatalf("expected 1 cache write, got %d", store.puts)
	}
	if entry := store.entries[server.URL]; entry == nil || entry.ContentType != "image/png" {
		t.Fatalf("unexpected cache entry: %+v", store.entries[server.URL])
	}
}

func TestFetchHonoursCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.Fetch.RequestDelayMS = 5000
	client := NewClient(cfg, logging.NewNop())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	// Prime lastRequest so the second call has to wait out the delay.
	if _, err := client.Page(context.Background(), server.URL); err != nil {
		t.Fatalf("prime: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Page(ctx, server.URL)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

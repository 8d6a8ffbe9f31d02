package cache

import (
	"context"
	"testing"
	"time"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Put(ctx, "https://example.com/a", "text/html", []byte("<html/>")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, ok, err := store.Get(ctx, "https://example.com/a", time.Hour)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if entry.ContentType != "text/html" {
		t.Fatalf("unexpected content type: %q", entry.ContentType)
	}
	if string(entry.Body) != "<html/>" {
		t.Fatalf("unexpected body: %q", entry.Body)
	}
	if entry.FetchedAt.IsZero() {
		t.Fatal("expected fetched_at to be set")
	}
}

func TestGetMissAndStale(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, ok, err := store.Get(ctx, "https://example.com/missing", time.Hour); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "https://example.com/old", "", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// A zero-width freshness window makes any entry stale.
	if _, ok, err := store.Get(ctx, "https://example.com/old", time.Nanosecond); err != nil || ok {
		t.Fatalf("expected stale entry to miss, got ok=%v err=%v", ok, err)
	}
}

func TestPutReplacesExisting(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	url := "https://example.com/img.png"
	if err := store.Put(ctx, url, "image/png", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, url, "image/png", []byte("version2")); err != nil {
		t.Fatal(err)
	}

	entry, ok, err := store.Get(ctx, url, time.Hour)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(entry.Body) != "version2" {
		t.Fatalf("expected replacement, got %q", entry.Body)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 1 {
		t.Fatalf("expected 1 entry, got %d", stats.Entries)
	}
	if stats.TotalBytes != int64(len("version2")) {
		t.Fatalf("unexpected total bytes: %d", stats.TotalBytes)
	}
}

func TestClear(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, url := range []string{"https://a.example/1", "https://a.example/2"} {
		if err := store.Put(ctx, url, "", []byte("body")); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 0 {
		t.Fatalf("expected empty cache, got %d entries", stats.Entries)
	}
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(context.Background(), "https://example.com/r", "", []byte("gone")); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	if err := Reset(dir); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	// Resetting an already-empty directory succeeds.
	if err := Reset(dir); err != nil {
		t.Fatalf("Reset empty: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open after reset: %v", err)
	}
	defer reopened.Close()
	if _, ok, err := reopened.Get(context.Background(), "https://example.com/r", time.Hour); err != nil || ok {
		t.Fatalf("expected empty cache after reset, got ok=%v err=%v", ok, err)
	}
}

func TestOpenLocksDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, err := Open(dir); err == nil {
		t.Fatal("expected second Open on the same directory to fail")
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(context.Background(), "https://example.com/p", "text/html", []byte("persisted")); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	entry, ok, err := reopened.Get(context.Background(), "https://example.com/p", time.Hour)
	if err != nil || !ok {
		t.Fatalf("Get after reopen: ok=%v err=%v", ok, err)
	}
	if string(entry.Body) != "persisted" {
		t.Fatalf("unexpected body: %q", entry.Body)
	}
}

package services

import (
	"context"
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("connection refused")
	err := Wrap(ErrFetch, "fetching", "get page", "https://example.com/guide", inner)

	if !errors.Is(err, ErrFetch) {
		t.Fatal("expected error to match ErrFetch")
	}
	if !errors.Is(err, inner) {
		t.Fatal("expected error to wrap the inner error")
	}
	want := "fetch error: fetching: get page: https://example.com/guide: connection refused"
	if err.Error() != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", err.Error(), want)
	}
}

func TestWrapNilMarkerAndEmptyParts(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatal("nil marker should default to ErrValidation")
	}
	if err.Error() != "validation error: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithRunID(WithStage(WithPageURL(context.Background(), "https://example.com/p"), "fetching"), "run-1")

	if got, ok := RunIDFromContext(ctx); !ok || got != "run-1" {
		t.Fatalf("run id: got %q ok=%v", got, ok)
	}
	if got, ok := StageFromContext(ctx); !ok || got != "fetching" {
		t.Fatalf("stage: got %q ok=%v", got, ok)
	}
	if got, ok := PageURLFromContext(ctx); !ok || got != "https://example.com/p" {
		t.Fatalf("page url: got %q ok=%v", got, ok)
	}
	if _, ok := RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on fresh context")
	}
}

package services

import "context"

type contextKey int

const (
	runIDContextKey contextKey = iota
	stageContextKey
	pageURLContextKey
)

// WithRunID stamps a conversion run identifier onto the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDContextKey, runID)
}

// RunIDFromContext extracts the conversion run identifier, if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(runIDContextKey).(string)
	return value, ok && value != ""
}

// WithStage stamps the active pipeline stage name onto the context.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageContextKey, stage)
}

// StageFromContext extracts the active pipeline stage name, if present.
func StageFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(stageContextKey).(string)
	return value, ok && value != ""
}

// WithPageURL stamps the page currently being processed onto the context.
func WithPageURL(ctx context.Context, pageURL string) context.Context {
	return context.WithValue(ctx, pageURLContextKey, pageURL)
}

// PageURLFromContext extracts the page currently being processed, if present.
func PageURLFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(pageURLContextKey).(string)
	return value, ok && value != ""
}

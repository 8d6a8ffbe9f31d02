package pipeline

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"guidepress/internal/scrape"
	"guidepress/internal/services"
)

// TOC fetches only the landing page and returns the guide title and
// navigation tree, previewing what a conversion would include.
func (c *Converter) TOC(ctx context.Context, rawURL string) (string, []scrape.TOCEntry, error) {
	ctx = services.WithRunID(ctx, uuid.NewString()[:8])

	base, err := url.Parse(rawURL)
	if err != nil || base.Scheme == "" {
		return "", nil, services.Wrap(services.ErrValidation, "validating", "parse url", rawURL, err)
	}
	return c.loadGuide(services.WithStage(ctx, "fetching"), rawURL, base)
}

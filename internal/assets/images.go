package assets

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"guidepress/internal/fetch"
	"guidepress/internal/logging"
)

// Image is a downloaded article image ready for packing.
type Image struct {
	URL       string
	Filename  string
	MediaType string
	Content   []byte
}

// Fetcher downloads a single image. *fetch.Client satisfies it.
type Fetcher interface {
	Image(ctx context.Context, url string) (*fetch.Result, error)
}

// Collector downloads images across chapters, deduplicating by absolute URL.
type Collector struct {
	fetcher Fetcher
	logger  *slog.Logger
	images  map[string]*Image
	order   []string
}

// NewCollector creates a Collector using the given fetcher.
func NewCollector(fetcher Fetcher, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Collector{
		fetcher: fetcher,
		logger:  logger,
		images:  make(map[string]*Image),
	}
}

// Rewrite downloads every image referenced by the tree rooted at root and
// points the img elements at their archive-local paths. Images that fail to
// download keep their remote src and are dropped by the sanitizing pass.
// srcset and loading attributes are removed because readers mishandle them.
func (c *Collector) Rewrite(ctx context.Context, root *html.Node, base *url.URL) error {
	doc := goquery.NewDocumentFromNode(root)

	var walkErr error
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if err := ctx.Err(); err != nil {
			walkErr = err
			return false
		}

		src, _ := img.Attr("src")
		if src == "" {
			return true
		}

		imgURL := resolveSrc(base, src)
		if imgURL == "" {
			return true
		}

		if cached, ok := c.images[imgURL]; ok {
			img.SetAttr("src", cached.Filename)
			img.RemoveAttr("srcset")
			img.RemoveAttr("loading")
			return true
		}

		result, err := c.fetcher.Image(ctx, imgURL)
		if err != nil {
			c.logger.Warn("image download failed",
				logging.String("url", imgURL),
				logging.Error(err))
			return ctx.Err() == nil
		}

		mediaType, ext := MediaTypeFor(result.ContentType, imgURL)
		image := &Image{
			URL:       imgURL,
			Filename:  Filename(imgURL, ext),
			MediaType: mediaType,
			Content:   result.Body,
		}
		c.images[imgURL] = image
		c.order = append(c.order, imgURL)

		img.SetAttr("src", image.Filename)
		img.RemoveAttr("srcset")
		img.RemoveAttr("loading")
		return true
	})

	return walkErr
}

// Images returns the downloaded images in first-seen order.
func (c *Collector) Images() []*Image {
	images := make([]*Image, 0, len(c.order))
	for _, imgURL := range c.order {
		images = append(images, c.images[imgURL])
	}
	return images
}

func resolveSrc(base *url.URL, src string) string {
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

// Filename derives the archive path for an image from a hash of its URL, so
// repeated runs name the same image identically.
func Filename(imgURL, ext string) string {
	digest := md5.Sum([]byte(imgURL))
	return fmt.Sprintf("images/img_%s.%s", hex.EncodeToString(digest[:])[:12], ext)
}

// MediaTypeFor determines an image's media type and file extension from the
// response content type, falling back to the URL suffix, then to JPEG.
func MediaTypeFor(contentType, imgURL string) (mediaType, ext string) {
	lower := strings.ToLower(imgURL)
	switch {
	case strings.Contains(contentType, "image/jpeg"),
		strings.HasSuffix(lower, ".jpg"),
		strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg", "jpg"
	case strings.Contains(contentType, "image/png"), strings.HasSuffix(lower, ".png"):
		return "image/png", "png"
	case strings.Contains(contentType, "image/gif"), strings.HasSuffix(lower, ".gif"):
		return "image/gif", "gif"
	case strings.Contains(contentType, "image/svg"), strings.HasSuffix(lower, ".svg"):
		return "image/svg+xml", "svg"
	case strings.Contains(contentType, "image/webp"), strings.HasSuffix(lower, ".webp"):
		return "image/webp", "webp"
	default:
		return "image/jpeg", "jpg"
	}
}

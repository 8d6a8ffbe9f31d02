package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"guidepress/internal/assets"
	"guidepress/internal/config"
	"guidepress/internal/epub"
	"guidepress/internal/fetch"
	"guidepress/internal/logging"
	"guidepress/internal/sanitize"
	"guidepress/internal/scrape"
	"guidepress/internal/services"
	"guidepress/internal/textutil"
)

const fallbackTitle = "IBM Think Guide"

// minArticleLength is the minimum extracted article size, in bytes, for a
// page to become a chapter. Shorter pages are stubs or error shells.
const minArticleLength = 100

// Fetcher downloads pages and images. *fetch.Client satisfies it.
type Fetcher interface {
	Page(ctx context.Context, url string) (*fetch.Result, error)
	Image(ctx context.Context, url string) (*fetch.Result, error)
}

// Options adjust a single conversion run.
type Options struct {
	// OutputPath overrides the derived output location.
	OutputPath string
	// MaxPages limits how many pages are converted; zero applies the
	// configured limit, negative means no limit.
	MaxPages int
}

// Summary reports what a conversion produced.
type Summary struct {
	Title      string
	OutputPath string
	Chapters   int
	Sections   int
	Images     int
	ImageBytes int64
	OutputSize int64
	Skipped    []string
	Duration   time.Duration
}

// Converter runs guide conversions.
type Converter struct {
	cfg      *config.Config
	client   Fetcher
	logger   *slog.Logger
	progress io.Writer
}

// Option configures a Converter.
type Option func(*Converter)

// WithProgress enables a progress bar written to w during page fetching.
func WithProgress(w io.Writer) Option {
	return func(c *Converter) {
		c.progress = w
	}
}

// New creates a Converter.
func New(cfg *config.Config, client Fetcher, logger *slog.Logger, opts ...Option) *Converter {
	if logger == nil {
		logger = logging.NewNop()
	}
	conv := &Converter{
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(conv)
	}
	return conv
}

// chapterPage is a fetched guide page awaiting link cleanup and assembly.
type chapterPage struct {
	title    string
	filename string
	tree     *html.Node
	content  string
}

// Run converts the guide rooted at rawURL and writes the EPUB.
func (c *Converter) Run(ctx context.Context, rawURL string, opts Options) (*Summary, error) {
	start := time.Now()
	ctx = services.WithRunID(ctx, uuid.NewString()[:8])
	logger := logging.WithContext(ctx, c.logger)

	base, err := url.Parse(rawURL)
	if err != nil || base.Scheme == "" {
		return nil, services.Wrap(services.ErrValidation, "validating", "parse url", rawURL, err)
	}

	title, entries, err := c.loadGuide(services.WithStage(ctx, "fetching"), rawURL, base)
	if err != nil {
		return nil, err
	}
	logger.Info("guide loaded",
		logging.String("title", title),
		logging.Int("toc_entries", len(scrape.Flatten(entries))))

	links := scrape.Flatten(entries)
	if len(links) == 0 {
		links = []scrape.TOCEntry{{Title: title, URL: rawURL}}
		entries = links
	}
	links = c.limitPages(links, opts.MaxPages)
	entries = pruneToLinks(entries, links)

	// Chapter filenames are fixed up front from navigation order; cross-page
	// links are rewritten after fetching, against the pages that survived.
	chapterFiles := make(map[string]string, len(links))
	for i, link := range links {
		chapterFiles[link.URL] = fmt.Sprintf("chapter_%03d.xhtml", i+1)
	}

	collector := assets.NewCollector(c.client, c.logger)
	pages, skipped := c.fetchPages(ctx, links, chapterFiles, collector)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, services.Wrap(services.ErrFetch, "fetching", "fetch pages", "no guide pages could be fetched", nil)
	}
	entries = pruneToFetched(entries, pages)
	if err := c.finalizePages(pages, chapterFiles); err != nil {
		return nil, err
	}

	ctx = services.WithStage(ctx, "assembling")
	book := epub.NewBook(epub.Metadata{
		Title:     title,
		Author:    c.cfg.Book.Author,
		Language:  c.cfg.Book.Language,
		Publisher: c.cfg.Book.Publisher,
	})
	if err := c.applyBookAssets(book); err != nil {
		return nil, err
	}

	sections := c.assemble(book, entries, pages)
	for _, img := range collector.Images() {
		book.AddResource(epub.Resource{
			Filename:  img.Filename,
			MediaType: img.MediaType,
			Content:   img.Content,
		})
	}

	outputPath, err := c.resolveOutputPath(opts.OutputPath, title)
	if err != nil {
		return nil, err
	}
	if err := book.Write(outputPath); err != nil {
		return nil, err
	}

	summary := &Summary{
		Title:      title,
		OutputPath: outputPath,
		Chapters:   len(pages),
		Sections:   sections,
		Images:     len(collector.Images()),
		Skipped:    skipped,
		Duration:   time.Since(start),
	}
	for _, img := range collector.Images() {
		summary.ImageBytes += int64(len(img.Content))
	}
	if info, err := os.Stat(outputPath); err == nil {
		summary.OutputSize = info.Size()
	}

	logger.Info("conversion complete",
		logging.String("output", outputPath),
		logging.Int("chapters", summary.Chapters),
		logging.Int("images", summary.Images),
		logging.Duration("duration", summary.Duration))
	return summary, nil
}

// loadGuide fetches the landing page and extracts the book title and
// navigation tree.
func (c *Converter) loadGuide(ctx context.Context, rawURL string, base *url.URL) (string, []scrape.TOCEntry, error) {
	result, err := c.client.Page(ctx, rawURL)
	if err != nil {
		return "", nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		return "", nil, services.Wrap(services.ErrParse, "parsing", "parse landing page", rawURL, err)
	}

	title := textutil.CollapseWhitespace(scrape.ExtractTitle(doc, fallbackTitle))
	entries := scrape.ParseTOC(doc, base)
	return title, entries, nil
}

func (c *Converter) limitPages(links []scrape.TOCEntry, maxPages int) []scrape.TOCEntry {
	limit := c.cfg.Fetch.MaxPages
	if maxPages != 0 {
		limit = maxPages
	}
	if limit <= 0 || limit >= len(links) {
		return links
	}
	c.logger.Info("limiting pages", logging.Int("limit", limit), logging.Int("total", len(links)))
	return links[:limit]
}

// fetchPages downloads and cleans every linked page, in navigation order.
// Failures are recorded and skipped.
func (c *Converter) fetchPages(ctx context.Context, links []scrape.TOCEntry, chapterFiles map[string]string, collector *assets.Collector) (map[string]*chapterPage, []string) {
	ctx = services.WithStage(ctx, "fetching")
	bar := c.newProgressBar(len(links))

	pages := make(map[string]*chapterPage, len(links))
	var skipped []string
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		pageCtx := services.WithPageURL(ctx, link.URL)
		logger := logging.WithContext(pageCtx, c.logger)

		page, err := c.convertPage(pageCtx, link, chapterFiles, collector)
		if err != nil {
			logger.Warn("page skipped", logging.Error(err))
			skipped = append(skipped, link.URL)
		} else {
			pages[link.URL] = page
			logger.Debug("page converted", logging.String("file", page.filename))
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return pages, skipped
}

// convertPage fetches one page, extracts its article, and rewrites its
// images. Link cleanup and rendering wait until the fetched set is known.
func (c *Converter) convertPage(ctx context.Context, link scrape.TOCEntry, chapterFiles map[string]string, collector *assets.Collector) (*chapterPage, error) {
	result, err := c.client.Page(ctx, link.URL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "parsing", "parse page", link.URL, err)
	}

	article, err := scrape.ExtractArticle(doc)
	if err != nil {
		return nil, err
	}
	if size := len(strings.TrimSpace(article)); size < minArticleLength {
		return nil, services.Wrap(services.ErrParse, "parsing", "extract article",
			fmt.Sprintf("only %d bytes of content", size), nil)
	}

	tree, err := sanitize.Document(article)
	if err != nil {
		return nil, err
	}
	pageURL, err := url.Parse(link.URL)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "parsing", "parse page url", link.URL, err)
	}
	if err := collector.Rewrite(ctx, tree, pageURL); err != nil {
		return nil, err
	}

	title := textutil.CollapseWhitespace(link.Title)
	if title == "" {
		title = scrape.ExtractTitle(doc, fallbackTitle)
	}
	return &chapterPage{
		title:    title,
		filename: chapterFiles[link.URL],
		tree:     tree,
	}, nil
}

// finalizePages rewrites cross-page links against the pages that actually
// converted and renders each chapter body. Links to pages that were skipped
// keep their original web URL so no chapter references a missing file.
func (c *Converter) finalizePages(pages map[string]*chapterPage, chapterFiles map[string]string) error {
	converted := make(map[string]string, len(pages))
	for pageURL := range pages {
		converted[pageURL] = chapterFiles[pageURL]
	}
	for _, page := range pages {
		sanitize.CleanLinks(page.tree, converted)
		sanitize.Clean(page.tree)
		content, err := sanitize.InnerBody(page.tree)
		if err != nil {
			return err
		}
		page.content = content
		page.tree = nil
	}
	return nil
}

// assemble adds chapters and section header pages to the book in
// depth-first navigation order and installs the matching nav tree. Returns
// the number of section pages generated.
func (c *Converter) assemble(book *epub.Book, entries []scrape.TOCEntry, pages map[string]*chapterPage) int {
	titleCaser := cases.Title(language.Und)
	sections := 0

	var build func(items []scrape.TOCEntry) []epub.NavItem
	build = func(items []scrape.TOCEntry) []epub.NavItem {
		nav := make([]epub.NavItem, 0, len(items))
		for _, item := range items {
			if item.IsLink() {
				page, ok := pages[item.URL]
				if !ok {
					continue
				}
				book.AddChapter(epub.Chapter{
					Title:    page.title,
					Filename: page.filename,
					Content:  page.content,
				})
				nav = append(nav, epub.NavItem{
					Title:    page.title,
					Href:     page.filename,
					Children: build(item.Children),
				})
				continue
			}

			sections++
			filename := fmt.Sprintf("section_%03d.xhtml", sections)
			sectionTitle := titleCaser.String(textutil.CollapseWhitespace(item.Title))
			book.AddChapter(epub.Chapter{
				Title:       sectionTitle,
				Filename:    filename,
				Content:     epub.SectionPage(sectionTitle),
				OmitHeading: true,
			})
			nav = append(nav, epub.NavItem{
				Title:    sectionTitle,
				Href:     filename,
				Children: build(item.Children),
			})
		}
		return nav
	}

	book.SetNav(build(entries))
	return sections
}

// applyBookAssets installs the configured cover image and stylesheet.
func (c *Converter) applyBookAssets(book *epub.Book) error {
	if path := c.cfg.Book.CoverImage; path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "assembling", "resolve cover image", path, err)
		}
		content, err := os.ReadFile(expanded)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "assembling", "read cover image", path, err)
		}
		mediaType, ext := assets.MediaTypeFor("", expanded)
		book.SetCoverImage(epub.Resource{
			Filename:  "images/cover." + ext,
			MediaType: mediaType,
			Content:   content,
		})
	}

	if path := c.cfg.Book.Stylesheet; path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "assembling", "resolve stylesheet", path, err)
		}
		css, err := os.ReadFile(expanded)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "assembling", "read stylesheet", path, err)
		}
		book.SetStylesheet(css)
	}
	return nil
}

// resolveOutputPath derives the output file location and enforces the
// overwrite policy.
func (c *Converter) resolveOutputPath(override, title string) (string, error) {
	path := override
	if path == "" {
		path = filepath.Join(c.cfg.Output.Dir, textutil.Slug(title)+".epub")
	} else if !strings.HasSuffix(path, ".epub") {
		path += ".epub"
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "assembling", "resolve output path", path, err)
	}
	if !c.cfg.Output.OverwriteExisting {
		if _, err := os.Stat(expanded); err == nil {
			return "", services.Wrap(services.ErrValidation, "assembling", "check output path",
				fmt.Sprintf("%s already exists (set output.overwrite_existing to replace it)", expanded), nil)
		}
	}
	return expanded, nil
}

func (c *Converter) newProgressBar(total int) *progressbar.ProgressBar {
	if c.progress == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.progress),
		progressbar.OptionSetDescription("fetching pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// pruneToLinks trims the navigation tree to the given link set.
func pruneToLinks(entries, links []scrape.TOCEntry) []scrape.TOCEntry {
	keep := make(map[string]bool, len(links))
	for _, link := range links {
		keep[link.URL] = true
	}
	return scrape.Prune(entries, keep)
}

// pruneToFetched trims the navigation tree to pages that were fetched.
func pruneToFetched(entries []scrape.TOCEntry, pages map[string]*chapterPage) []scrape.TOCEntry {
	keep := make(map[string]bool, len(pages))
	for pageURL := range pages {
		keep[pageURL] = true
	}
	return scrape.Prune(entries, keep)
}

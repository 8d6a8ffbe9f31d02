package scrape

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"guidepress/internal/textutil"
)

// sidebarSelector matches the primary guide navigation component.
const sidebarSelector = "nav.cmp-side-navigation"

// fallbackNavPattern matches class names of generic navigation containers
// used when the primary sidebar component is absent.
var fallbackNavPattern = regexp.MustCompile(`sidebar|nav|toc`)

// caretLabel is screen-reader text embedded in collapsible section headings.
const caretLabel = "Caret right"

// ParseTOC extracts the navigation tree from a guide landing page. Relative
// hrefs are resolved against base. Returns an empty slice when the page has
// no recognizable navigation.
func ParseTOC(doc *goquery.Document, base *url.URL) []TOCEntry {
	sidebar := doc.Find(sidebarSelector).First()
	if sidebar.Length() == 0 {
		sidebar = findFallbackNav(doc)
	}
	if sidebar.Length() == 0 {
		return nil
	}
	return parseLevel(sidebar, base, 0)
}

func findFallbackNav(doc *goquery.Document) *goquery.Selection {
	return doc.Find("nav, aside").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return fallbackNavPattern.MatchString(class)
	}).First()
}

// parseLevel parses one nesting level of the sidebar. Each level uses its own
// ul/li class suffix, so the walk is driven by class names rather than raw
// nesting depth.
func parseLevel(container *goquery.Selection, base *url.URL, level int) []TOCEntry {
	list := container.Find(fmt.Sprintf("ul.cmp-side-navigation__level%d", level)).First()
	if list.Length() == 0 {
		return nil
	}

	var entries []TOCEntry
	list.ChildrenFiltered(fmt.Sprintf("li.cmp-side-navigation__section--level%d", level)).
		Each(func(_ int, item *goquery.Selection) {
			if entry, ok := parseItem(item, base, level); ok {
				entries = append(entries, entry)
			}
		})
	return entries
}

func parseItem(item *goquery.Selection, base *url.URL, level int) (TOCEntry, bool) {
	link := item.ChildrenFiltered(fmt.Sprintf("a.cmp-side-navigation__item--level%d", level)).First()
	if link.Length() > 0 {
		href, _ := link.Attr("href")
		title := textutil.CollapseWhitespace(link.Text())
		if href != "" && title != "" {
			return TOCEntry{
				Title: title,
				URL:   resolveHref(base, href),
				Href:  href,
				Level: level,
			}, true
		}
	}

	collapsible := item.ChildrenFiltered("span.cmp-side-navigation__item--collapsible").First()
	if collapsible.Length() > 0 {
		title := collapsibleTitle(collapsible)
		if title != "" {
			return TOCEntry{
				Title:    title,
				Level:    level,
				Children: parseLevel(item, base, level+1),
			}, true
		}
	}

	return TOCEntry{}, false
}

// collapsibleTitle collects the heading text of a collapsible section,
// skipping embedded SVG icons and their "Caret right" accessibility label.
func collapsibleTitle(span *goquery.Selection) string {
	var parts []string
	span.Contents().Each(func(_ int, node *goquery.Selection) {
		if isElement(node, "svg") {
			return
		}
		text := strings.TrimSpace(node.Text())
		if text == "" || text == caretLabel {
			return
		}
		parts = append(parts, text)
	})
	return textutil.CollapseWhitespace(strings.Join(parts, " "))
}

func isElement(s *goquery.Selection, name string) bool {
	if len(s.Nodes) == 0 {
		return false
	}
	node := s.Nodes[0]
	return node.Type == html.ElementNode && node.Data == name
}

func resolveHref(base *url.URL, href string) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if base == nil {
		return parsed.String()
	}
	return base.ResolveReference(parsed).String()
}

// ExtractTitle returns the page's first h1, falling back to the document
// title, then to fallback.
func ExtractTitle(doc *goquery.Document, fallback string) string {
	if h1 := textutil.CollapseWhitespace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if title := textutil.CollapseWhitespace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return fallback
}

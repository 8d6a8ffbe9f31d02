package scrape

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const sidebarHTML = `
<html><body>
<nav class="cmp-side-navigation">
  <ul class="cmp-side-navigation__level0">
    <li class="cmp-side-navigation__section--level0">
      <a class="cmp-side-navigation__item--level0" href="/think/topics/artificial-intelligence">What is AI?</a>
    </li>
    <li class="cmp-side-navigation__section--level0">
      <span class="cmp-side-navigation__item--collapsible">
        <svg viewBox="0 0 16 16"><title>Caret right</title></svg><span>Caret right</span>
        Machine   learning
      </span>
      <ul class="cmp-side-navigation__level1">
        <li class="cmp-side-navigation__section--level1">
          <a class="cmp-side-navigation__item--level1" href="/think/topics/machine-learning">ML overview</a>
        </li>
        <li class="cmp-side-navigation__section--level1">
          <a class="cmp-side-navigation__item--level1" href="https://www.ibm.com/think/topics/deep-learning">Deep learning</a>
        </li>
      </ul>
    </li>
    <li class="cmp-side-navigation__section--level0">
      <a class="cmp-side-navigation__item--level0" href="">Empty href skipped</a>
    </li>
  </ul>
</nav>
</body></html>`

func parseDoc(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func baseURL(t *testing.T) *url.URL {
	t.Helper()
	base, err := url.Parse("https://www.ibm.com/think/topics/artificial-intelligence")
	if err != nil {
		t.Fatal(err)
	}
	return base
}

func TestParseTOCSidebar(t *testing.T) {
	entries := ParseTOC(parseDoc(t, sidebarHTML), baseURL(t))

	if len(entries) != 2 {
		t.Fatalf("expected 2 top-level entries, got %d: %+v", len(entries), entries)
	}

	first := entries[0]
	if !first.IsLink() {
		t.Fatal("first entry should be a link")
	}
	if first.Title != "What is AI?" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.URL != "https://www.ibm.com/think/topics/artificial-intelligence" {
		t.Fatalf("relative href not resolved: %q", first.URL)
	}

	section := entries[1]
	if !section.IsSection() {
		t.Fatal("second entry should be a section")
	}
	if section.Title != "Machine learning" {
		t.Fatalf("collapsible title not cleaned: %q", section.Title)
	}
	if len(section.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(section.Children))
	}
	if section.Children[0].Level != 1 {
		t.Fatalf("unexpected child level: %d", section.Children[0].Level)
	}
	if section.Children[1].URL != "https://www.ibm.com/think/topics/deep-learning" {
		t.Fatalf("absolute href mangled: %q", section.Children[1].URL)
	}
}

func TestParseTOCFallbackNav(t *testing.T) {
	markup := `
<html><body>
<aside class="guide-sidebar">
  <ul class="cmp-side-navigation__level0">
    <li class="cmp-side-navigation__section--level0">
      <a class="cmp-side-navigation__item--level0" href="/think/topics/a">A</a>
    </li>
  </ul>
</aside>
</body></html>`
	entries := ParseTOC(parseDoc(t, markup), baseURL(t))
	if len(entries) != 1 || entries[0].Title != "A" {
		t.Fatalf("fallback nav not used: %+v", entries)
	}
}

func TestParseTOCMissingNav(t *testing.T) {
	entries := ParseTOC(parseDoc(t, "<html><body><p>no nav here</p></body></html>"), baseURL(t))
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %+v", entries)
	}
}

func TestFlattenAndPrune(t *testing.T) {
	entries := ParseTOC(parseDoc(t, sidebarHTML), baseURL(t))

	links := Flatten(entries)
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	if links[1].Title != "ML overview" {
		t.Fatalf("unexpected flatten order: %+v", links)
	}

	keep := map[string]bool{links[0].URL: true, links[1].URL: true}
	pruned := Prune(entries, keep)
	if len(pruned) != 2 {
		t.Fatalf("expected 2 pruned top-level entries, got %d", len(pruned))
	}
	if len(pruned[1].Children) != 1 {
		t.Fatalf("section should keep only surviving child, got %d", len(pruned[1].Children))
	}

	empty := Prune(entries, map[string]bool{links[0].URL: true})
	if len(empty) != 1 {
		t.Fatalf("section with no surviving children should disappear, got %+v", empty)
	}
}

func TestExtractTitle(t *testing.T) {
	doc := parseDoc(t, "<html><head><title>Fallback title</title></head><body><h1>  Real\n title </h1></body></html>")
	if got := ExtractTitle(doc, "default"); got != "Real title" {
		t.Fatalf("unexpected title: %q", got)
	}

	doc = parseDoc(t, "<html><head><title>Fallback title</title></head><body></body></html>")
	if got := ExtractTitle(doc, "default"); got != "Fallback title" {
		t.Fatalf("unexpected fallback: %q", got)
	}

	doc = parseDoc(t, "<html><body></body></html>")
	if got := ExtractTitle(doc, "default"); got != "default" {
		t.Fatalf("unexpected default: %q", got)
	}
}

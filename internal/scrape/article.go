package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"guidepress/internal/services"
)

// articleSelector matches the content container on guide article pages.
const articleSelector = "div.body-article-8"

// fallbackContentPattern matches class names of generic content containers.
var fallbackContentPattern = regexp.MustCompile(`content|article|body`)

// strippedClassPatterns match containers removed from article content:
// page furniture first, then the usual ad/tracking suspects.
var strippedClassPatterns = []*regexp.Regexp{
	regexp.MustCompile(`article-content-slot`),
	regexp.MustCompile(`share-module`),
	regexp.MustCompile(`author-signature`),
	regexp.MustCompile(`advertisement`),
	regexp.MustCompile(`ad-`),
	regexp.MustCompile(`tracking`),
	regexp.MustCompile(`social-share`),
	regexp.MustCompile(`cookie-`),
	regexp.MustCompile(`banner`),
	regexp.MustCompile(`popup`),
	regexp.MustCompile(`modal`),
}

// strippedTags are removed from article content wholesale.
const strippedTags = "script, style, nav, footer, aside, iframe, noscript"

// ExtractArticle returns the article HTML of a guide page: every
// div.body-article-8 container with page furniture removed, joined by
// newlines. Falls back to generic content containers, then to the page body.
func ExtractArticle(doc *goquery.Document) (string, error) {
	articles := doc.Find(articleSelector)
	if articles.Length() == 0 {
		articles = doc.Find("article, main, div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			class, _ := s.Attr("class")
			return fallbackContentPattern.MatchString(class)
		})
	}

	if articles.Length() == 0 {
		body := doc.Find("body").First()
		if body.Length() == 0 {
			return "", services.Wrap(services.ErrParse, "parsing", "extract article", "page has no content container", nil)
		}
		stripFurniture(body)
		return outerHTML(body)
	}

	var parts []string
	var htmlErr error
	articles.Each(func(_ int, article *goquery.Selection) {
		stripFurniture(article)
		part, err := outerHTML(article)
		if err != nil {
			htmlErr = err
			return
		}
		parts = append(parts, part)
	})
	if htmlErr != nil {
		return "", htmlErr
	}
	return strings.Join(parts, "\n"), nil
}

func stripFurniture(content *goquery.Selection) {
	content.Find(strippedTags).Remove()
	content.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		for _, pattern := range strippedClassPatterns {
			if pattern.MatchString(class) {
				return true
			}
		}
		return false
	}).Remove()
}

func outerHTML(s *goquery.Selection) (string, error) {
	markup, err := goquery.OuterHtml(s)
	if err != nil {
		return "", services.Wrap(services.ErrParse, "parsing", "serialize article", "", err)
	}
	return markup, nil
}

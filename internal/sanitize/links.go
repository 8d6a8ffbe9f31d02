package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// CleanLinks repairs anchors in a chapter tree. Links to other pages of the
// same guide are rewritten to the chapter file named in chapterFiles (keyed
// by absolute page URL). Script, mailto, CMS-internal, and dangling relative
// links are unwrapped to plain text, as are fragment links whose target id
// does not exist in the tree.
func CleanLinks(root *html.Node, chapterFiles map[string]string) {
	var anchors []*html.Node
	walk(root, func(n *html.Node) {
		if isElement(n, "a") && hasAttr(n, "href") {
			anchors = append(anchors, n)
		}
	})

	for _, link := range anchors {
		if link.Parent == nil {
			continue
		}
		href := attrValue(link, "href")

		if strings.HasPrefix(href, "http") {
			if file, ok := chapterFiles[href]; ok {
				setAttr(link, "href", file)
				continue
			}
		}

		switch {
		case strings.HasPrefix(href, "javascript:"),
			strings.HasPrefix(href, "mailto:"),
			strings.Contains(href, "adobe-cms"),
			strings.HasSuffix(href, ".html") && !strings.HasPrefix(href, "http"):
			unwrap(link)
		case strings.HasPrefix(href, "#"):
			if !idExists(root, strings.TrimPrefix(href, "#")) {
				unwrap(link)
			}
		}
	}
}

func idExists(root *html.Node, id string) bool {
	if id == "" {
		return false
	}
	found := false
	walk(root, func(n *html.Node) {
		if !found && n.Type == html.ElementNode && attrValue(n, "id") == id {
			found = true
		}
	})
	return found
}

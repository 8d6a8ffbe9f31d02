package sanitize

import (
	"strings"

	"golang.org/x/net/html"

	"guidepress/internal/services"
)

const mathmlNamespace = "http://www.w3.org/1998/Math/MathML"

var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// inlineTags are text-level elements that must not contain headings.
var inlineTags = []string{"p", "span", "a", "strong", "em", "i", "b", "u"}

// invalidAttrs are attributes that fail EPUB content validation. The AEM
// component attributes are also caught by prefix below; the explicit list
// covers the non-prefixed stragglers.
var invalidAttrs = map[string]bool{
	"slot":           true,
	"viewbox":        true,
	"driverlocation": true,
	"cta-type":       true,
	"icon-placement": true,
}

// Document parses markup into a full document tree.
func Document(markup string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "sanitizing", "parse markup", "", err)
	}
	return doc, nil
}

// InnerBody renders the children of the document's body element. Used to
// turn a cleaned tree back into a chapter fragment.
func InnerBody(doc *html.Node) (string, error) {
	bodies := elements(doc, "body")
	if len(bodies) == 0 {
		return "", services.Wrap(services.ErrParse, "sanitizing", "render markup", "document has no body", nil)
	}
	var sb strings.Builder
	for child := bodies[0].FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&sb, child); err != nil {
			return "", services.Wrap(services.ErrParse, "sanitizing", "render markup", "", err)
		}
	}
	return sb.String(), nil
}

// Clean mutates the tree rooted at root into EPUB-compliant markup. It
// assumes image sources have already been rewritten to archive-local paths,
// so any img still pointing at a remote or data: URI is a failed download
// and gets removed.
func Clean(root *html.Node) {
	removeElements(root, "svg")
	repairMath(root)
	removeElements(root, "iframe", "video", "audio", "script")
	convertCodeSnippets(root)
	stripTableAttrs(root)
	unwrapPictures(root)
	removeBrokenImages(root)
	removeRemoteResources(root)
	liftNestedHeadings(root)
	liftHeadingsFromInline(root)
	moveListsOutOfHeadings(root)
	removeEmptyContainers(root)
	stripInvalidAttrs(root)
}

func removeElements(root *html.Node, names ...string) {
	for _, n := range elements(root, names...) {
		detach(n)
	}
}

// repairMath stamps the MathML namespace onto math elements and prunes
// empty or malformed children that trip EPUB validators.
func repairMath(root *html.Node) {
	for _, math := range elements(root, "math") {
		if !hasAttr(math, "xmlns") {
			setAttr(math, "xmlns", mathmlNamespace)
		}
		var descendants []*html.Node
		walk(math, func(n *html.Node) {
			if n != math && n.Type == html.ElementNode {
				descendants = append(descendants, n)
			}
		})
		for _, child := range descendants {
			if strings.TrimSpace(textContent(child)) != "" {
				continue
			}
			if len(child.Attr) == 0 || !hasChildElement(child) {
				detach(child)
			}
		}
	}
}

func hasChildElement(n *html.Node) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// convertCodeSnippets replaces cds-code-snippet custom elements with plain
// code markup. Snippets typed "multi" become pre-wrapped blocks.
func convertCodeSnippets(root *html.Node) {
	for _, snippet := range elements(root, "cds-code-snippet") {
		content := strings.TrimSpace(textContent(snippet))
		code := newElement("code")
		code.AppendChild(newText(content))
		if attrValue(snippet, "type") == "multi" {
			pre := newElement("pre")
			pre.AppendChild(code)
			replaceWith(snippet, pre)
		} else {
			replaceWith(snippet, code)
		}
	}
}

func stripTableAttrs(root *html.Node) {
	for _, table := range elements(root, "table") {
		removeAttr(table, "cellpadding")
		removeAttr(table, "cellspacing")
		removeAttr(table, "border")
	}
}

// unwrapPictures replaces each picture element with its inner img, dropping
// the source variants. Pictures without an img are removed outright.
func unwrapPictures(root *html.Node) {
	for _, picture := range elements(root, "picture") {
		imgs := elements(picture, "img")
		if len(imgs) == 0 {
			detach(picture)
			continue
		}
		img := imgs[0]
		detach(img)
		replaceWith(picture, img)
	}
}

// removeBrokenImages drops img elements whose src is a data URI, a remote
// URL, or a percent-mangled path.
func removeBrokenImages(root *html.Node) {
	for _, img := range elements(root, "img") {
		src := attrValue(img, "src")
		switch {
		case strings.HasPrefix(src, "data:"),
			strings.HasPrefix(src, "http://"),
			strings.HasPrefix(src, "https://"),
			strings.HasPrefix(src, "//"),
			strings.Contains(src, "%%"),
			src != "" && strings.Contains(src, "%") && !strings.HasPrefix(src, "http"):
			detach(img)
		}
	}
}

// removeRemoteResources drops link elements and any src-bearing element
// that still references a remote URL.
func removeRemoteResources(root *html.Node) {
	for _, link := range elements(root, "link") {
		if isRemote(attrValue(link, "href")) {
			detach(link)
		}
	}
	var remote []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && isRemote(attrValue(n, "src")) {
			remote = append(remote, n)
		}
	})
	for _, n := range remote {
		detach(n)
	}
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "//")
}

// liftNestedHeadings replaces a heading that contains another heading with
// the inner one.
func liftNestedHeadings(root *html.Node) {
	for _, outer := range elements(root, headingTags...) {
		if outer.Parent == nil {
			continue
		}
		inner := elements(outer, headingTags...)
		for _, nested := range inner {
			if nested == outer {
				continue
			}
			detach(nested)
			replaceWith(outer, nested)
			break
		}
	}
}

// liftHeadingsFromInline moves headings out of text-level containers,
// placing each heading immediately before its former container.
func liftHeadingsFromInline(root *html.Node) {
	for _, inline := range elements(root, inlineTags...) {
		if inline.Parent == nil {
			continue
		}
		for _, heading := range elements(inline, headingTags...) {
			insertBefore(inline, heading)
		}
	}
}

// moveListsOutOfHeadings relocates lists found inside headings to directly
// after the heading, preserving their order.
func moveListsOutOfHeadings(root *html.Node) {
	for _, heading := range elements(root, headingTags...) {
		if heading.Parent == nil {
			continue
		}
		ref := heading
		for _, list := range elements(heading, "ul", "ol") {
			insertAfter(ref, list)
			ref = list
		}
	}
}

// removeEmptyContainers drops p, div, and span elements that hold neither
// text nor an image.
func removeEmptyContainers(root *html.Node) {
	for _, n := range elements(root, "p", "div", "span") {
		if strings.TrimSpace(textContent(n)) != "" {
			continue
		}
		if len(elements(n, "img")) > 0 {
			continue
		}
		detach(n)
	}
}

func stripInvalidAttrs(root *html.Node) {
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if invalidAttrs[a.Key] ||
				strings.HasPrefix(a.Key, "data-cmp") ||
				strings.HasPrefix(a.Key, "data-asset") {
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	})
}

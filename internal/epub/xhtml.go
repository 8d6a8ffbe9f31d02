package epub

import (
	"fmt"
	"html"
	"strings"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

// chapterDocument wraps a body fragment in a complete XHTML document. A
// heading carrying the chapter title is injected unless the chapter opts
// out.
func chapterDocument(ch *Chapter) []byte {
	var sb strings.Builder
	writeXHTMLHead(&sb, ch.Title)
	if !ch.OmitHeading {
		fmt.Fprintf(&sb, "<h1>%s</h1>\n", html.EscapeString(ch.Title))
	}
	sb.WriteString(ch.Content)
	sb.WriteString("\n</body>\n</html>\n")
	return []byte(sb.String())
}

// coverDocument renders the generated title page.
func (b *Book) coverDocument() []byte {
	var sb strings.Builder
	writeXHTMLHead(&sb, b.meta.Title)
	sb.WriteString(`<div class="cover">` + "\n")
	if b.coverImage != nil {
		fmt.Fprintf(&sb, "  <img src=\"%s\" alt=\"%s\"/>\n",
			html.EscapeString(b.coverImage.Filename), html.EscapeString(b.meta.Title))
	}
	fmt.Fprintf(&sb, "  <h1>%s</h1>\n", html.EscapeString(b.meta.Title))
	if b.meta.Author != "" {
		fmt.Fprintf(&sb, "  <p class=\"author\">%s</p>\n", html.EscapeString(b.meta.Author))
	}
	sb.WriteString("</div>\n</body>\n</html>\n")
	return []byte(sb.String())
}

// SectionPage builds the body fragment for a section header page: a lone
// centered title separating the section's chapters.
func SectionPage(title string) string {
	return fmt.Sprintf("<div class=\"section-header\">\n  <h1>%s</h1>\n</div>", html.EscapeString(title))
}

func writeXHTMLHead(sb *strings.Builder, title string) {
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml">`)
	sb.WriteString("\n<head>\n")
	fmt.Fprintf(sb, "  <title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(sb, "  <link rel=\"stylesheet\" type=\"text/css\" href=\"%s\"/>\n", stylesheetFile)
	sb.WriteString("</head>\n<body>\n")
}

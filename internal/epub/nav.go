package epub

import (
	"encoding/xml"
	"fmt"
	"html"
	"strconv"
	"strings"

	"guidepress/internal/services"
)

// buildNav renders the EPUB 3 navigation document from the nav tree.
func (b *Book) buildNav() []byte {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">`)
	sb.WriteString("\n<head>\n")
	fmt.Fprintf(&sb, "  <title>%s</title>\n", html.EscapeString(b.meta.Title))
	fmt.Fprintf(&sb, "  <link rel=\"stylesheet\" type=\"text/css\" href=\"%s\"/>\n", stylesheetFile)
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString("  <nav epub:type=\"toc\" id=\"toc\">\n")
	sb.WriteString("    <h1>Table of Contents</h1>\n")
	writeNavList(&sb, b.navItems(), 2)
	sb.WriteString("  </nav>\n</body>\n</html>\n")
	return []byte(sb.String())
}

func writeNavList(sb *strings.Builder, items []NavItem, indent int) {
	pad := strings.Repeat("  ", indent)
	sb.WriteString(pad + "<ol>\n")
	for _, item := range items {
		fmt.Fprintf(sb, "%s  <li>\n%s    <a href=\"%s\">%s</a>\n",
			pad, pad, html.EscapeString(item.Href), html.EscapeString(item.Title))
		if len(item.Children) > 0 {
			writeNavList(sb, item.Children, indent+2)
		}
		sb.WriteString(pad + "  </li>\n")
	}
	sb.WriteString(pad + "</ol>\n")
}

type ncxDocument struct {
	XMLName  xml.Name    `xml:"ncx"`
	Xmlns    string      `xml:"xmlns,attr"`
	Version  string      `xml:"version,attr"`
	Head     ncxHead     `xml:"head"`
	DocTitle ncxDocTitle `xml:"docTitle"`
	NavMap   ncxNavMap   `xml:"navMap"`
}

type ncxHead struct {
	Metas []ncxMeta `xml:"meta"`
}

type ncxMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type ncxDocTitle struct {
	Text string `xml:"text"`
}

type ncxNavMap struct {
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

type ncxNavPoint struct {
	ID        string        `xml:"id,attr"`
	PlayOrder string        `xml:"playOrder,attr"`
	Label     ncxNavLabel   `xml:"navLabel"`
	Content   ncxNavContent `xml:"content"`
	Children  []ncxNavPoint `xml:"navPoint"`
}

type ncxNavLabel struct {
	Text string `xml:"text"`
}

type ncxNavContent struct {
	Src string `xml:"src,attr"`
}

// buildNCX renders legacy NCX navigation for EPUB 2 readers.
func (b *Book) buildNCX() ([]byte, error) {
	items := b.navItems()
	doc := ncxDocument{
		Xmlns:   "http://www.daisy.org/z3986/2005/ncx/",
		Version: "2005-1",
		Head: ncxHead{Metas: []ncxMeta{
			{Name: "dtb:uid", Content: b.meta.Identifier},
			{Name: "dtb:depth", Content: strconv.Itoa(navDepth(items))},
			{Name: "dtb:totalPageCount", Content: "0"},
			{Name: "dtb:maxPageNumber", Content: "0"},
		}},
		DocTitle: ncxDocTitle{Text: b.meta.Title},
	}

	order := 0
	doc.NavMap.NavPoints = buildNavPoints(items, &order)

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, services.Wrap(services.ErrAssembly, "assembling", "marshal ncx", "", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func buildNavPoints(items []NavItem, order *int) []ncxNavPoint {
	points := make([]ncxNavPoint, 0, len(items))
	for _, item := range items {
		*order++
		point := ncxNavPoint{
			ID:        fmt.Sprintf("navpoint-%d", *order),
			PlayOrder: strconv.Itoa(*order),
			Label:     ncxNavLabel{Text: item.Title},
			Content:   ncxNavContent{Src: item.Href},
		}
		point.Children = buildNavPoints(item.Children, order)
		points = append(points, point)
	}
	return points
}

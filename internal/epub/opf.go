package epub

import (
	"encoding/xml"
	"strings"

	"guidepress/internal/services"
)

// Archive layout constants. Content files live under contentDir; hrefs in
// the OPF, nav, and NCX documents are relative to it.
const (
	contentDir     = "OEBPS"
	opfFile        = "content.opf"
	navFile        = "nav.xhtml"
	ncxFile        = "toc.ncx"
	coverFile      = "cover.xhtml"
	stylesheetFile = "style/nav.css"
)

// Element names carrying a dc: or xmlns: prefix are emitted literally; the
// matching namespace declarations sit on the package and metadata elements.
type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Xmlns            string      `xml:"xmlns,attr"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
	Spine            opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	XmlnsDC     string        `xml:"xmlns:dc,attr"`
	Identifier  opfIdentifier `xml:"dc:identifier"`
	Title       string        `xml:"dc:title"`
	Language    string        `xml:"dc:language"`
	Creator     string        `xml:"dc:creator,omitempty"`
	Publisher   string        `xml:"dc:publisher,omitempty"`
	Description string        `xml:"dc:description,omitempty"`
	Metas       []opfMeta     `xml:"meta"`
}

type opfIdentifier struct {
	ID    string `xml:"id,attr"`
	Value string `xml:",chardata"`
}

type opfMeta struct {
	Property string `xml:"property,attr,omitempty"`
	Name     string `xml:"name,attr,omitempty"`
	Content  string `xml:"content,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfSpine struct {
	Toc      string            `xml:"toc,attr"`
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

type opfSpineItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// buildOPF renders the package document. Spine order is cover, nav, then
// the chapters in the order they were added.
func (b *Book) buildOPF() ([]byte, error) {
	pkg := opfPackage{
		Xmlns:            "http://www.idpf.org/2007/opf",
		Version:          "3.0",
		UniqueIdentifier: "book-id",
		Metadata: opfMetadata{
			XmlnsDC:     "http://purl.org/dc/elements/1.1/",
			Identifier:  opfIdentifier{ID: "book-id", Value: b.meta.Identifier},
			Title:       b.meta.Title,
			Language:    b.meta.Language,
			Creator:     b.meta.Author,
			Publisher:   b.meta.Publisher,
			Description: b.meta.Description,
			Metas: []opfMeta{
				{Property: "dcterms:modified", Value: b.meta.Modified.Format("2006-01-02T15:04:05Z")},
			},
		},
		Spine: opfSpine{Toc: "ncx"},
	}

	manifest := &pkg.Manifest
	manifest.Items = append(manifest.Items,
		opfManifestItem{ID: "nav", Href: navFile, MediaType: "application/xhtml+xml", Properties: "nav"},
		opfManifestItem{ID: "ncx", Href: ncxFile, MediaType: "application/x-dtbncx+xml"},
		opfManifestItem{ID: "style_nav", Href: stylesheetFile, MediaType: "text/css"},
		opfManifestItem{ID: "cover", Href: coverFile, MediaType: "application/xhtml+xml"},
	)

	pkg.Spine.ItemRefs = append(pkg.Spine.ItemRefs,
		opfSpineItemRef{IDRef: "cover"},
		opfSpineItemRef{IDRef: "nav"},
	)

	for _, ch := range b.chapters {
		item := opfManifestItem{
			ID:        resourceID(ch.Filename),
			Href:      ch.Filename,
			MediaType: "application/xhtml+xml",
		}
		if ch.mathml {
			item.Properties = "mathml"
		}
		manifest.Items = append(manifest.Items, item)
		pkg.Spine.ItemRefs = append(pkg.Spine.ItemRefs, opfSpineItemRef{IDRef: item.ID})
	}

	for _, res := range b.resources {
		manifest.Items = append(manifest.Items, opfManifestItem{
			ID:        resourceID(res.Filename),
			Href:      res.Filename,
			MediaType: res.MediaType,
		})
	}
	if b.coverImage != nil {
		manifest.Items = append(manifest.Items, opfManifestItem{
			ID:         resourceID(b.coverImage.Filename),
			Href:       b.coverImage.Filename,
			MediaType:  b.coverImage.MediaType,
			Properties: "cover-image",
		})
	}

	body, err := xml.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, services.Wrap(services.ErrAssembly, "assembling", "marshal package document", "", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// resourceID derives a manifest id from an archive path.
func resourceID(filename string) string {
	return strings.NewReplacer("/", "_", ".", "_").Replace(filename)
}

package epub

import (
	_ "embed"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:embed stylesheet.css
var defaultStylesheet []byte

// Metadata describes the book for the OPF package document.
type Metadata struct {
	Title       string
	Author      string
	Language    string
	Publisher   string
	Description string

	// Identifier is the package's unique identifier. Generated as a
	// urn:uuid value when empty.
	Identifier string

	// Modified stamps dcterms:modified. Defaults to the current time.
	Modified time.Time
}

// Chapter is one content document in the book.
type Chapter struct {
	Title    string
	Filename string
	// Content is the XHTML body fragment. The chapter wrapper and heading
	// are added at write time.
	Content string
	// Bare chapters carry no injected heading; section header pages and
	// pre-composed pages set this.
	OmitHeading bool

	mathml bool
}

// Resource is a binary asset packed into the archive, typically an image.
type Resource struct {
	Filename  string
	MediaType string
	Content   []byte
}

// NavItem is one entry of the navigation tree. Every item points at a
// content file; section headers point at their generated header page.
type NavItem struct {
	Title    string
	Href     string
	Children []NavItem
}

// Book accumulates content and writes the finished archive.
type Book struct {
	meta       Metadata
	chapters   []*Chapter
	resources  []*Resource
	nav        []NavItem
	stylesheet []byte
	coverImage *Resource
}

// NewBook creates a book, filling in identifier and modification time when
// the metadata leaves them unset.
func NewBook(meta Metadata) *Book {
	if meta.Identifier == "" {
		meta.Identifier = "urn:uuid:" + uuid.NewString()
	}
	if meta.Language == "" {
		meta.Language = "en"
	}
	if meta.Modified.IsZero() {
		meta.Modified = time.Now().UTC()
	}
	return &Book{
		meta:       meta,
		stylesheet: defaultStylesheet,
	}
}

// AddChapter appends a chapter in spine order. Chapters containing MathML
// are flagged so the manifest can declare the property.
func (b *Book) AddChapter(chapter Chapter) {
	chapter.mathml = strings.Contains(chapter.Content, "<math")
	b.chapters = append(b.chapters, &chapter)
}

// AddResource packs an asset such as a downloaded image.
func (b *Book) AddResource(res Resource) {
	b.resources = append(b.resources, &res)
}

// SetNav installs the navigation tree rendered into nav.xhtml and toc.ncx.
// Without one, navigation falls back to the flat chapter list.
func (b *Book) SetNav(items []NavItem) {
	b.nav = items
}

// SetStylesheet replaces the built-in stylesheet.
func (b *Book) SetStylesheet(css []byte) {
	if len(css) > 0 {
		b.stylesheet = css
	}
}

// SetCoverImage places an image on the generated cover page and marks it
// with the cover-image property.
func (b *Book) SetCoverImage(res Resource) {
	b.coverImage = &res
}

// Chapters returns the chapters in spine order.
func (b *Book) Chapters() []*Chapter {
	return b.chapters
}

// navItems returns the explicit navigation tree, or a flat list built from
// the chapters.
func (b *Book) navItems() []NavItem {
	if len(b.nav) > 0 {
		return b.nav
	}
	items := make([]NavItem, 0, len(b.chapters))
	for _, ch := range b.chapters {
		items = append(items, NavItem{Title: ch.Title, Href: ch.Filename})
	}
	return items
}

func navDepth(items []NavItem) int {
	depth := 0
	for _, item := range items {
		d := 1
		if len(item.Children) > 0 {
			d += navDepth(item.Children)
		}
		if d > depth {
			depth = d
		}
	}
	return depth
}

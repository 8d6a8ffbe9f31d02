package scrape

// TOCEntry is a node in the guide's navigation tree. A link entry has a URL
// and no children; a section entry groups child entries under a heading and
// has no URL of its own.
type TOCEntry struct {
	Title    string
	URL      string
	Href     string
	Level    int
	Children []TOCEntry
}

// IsLink reports whether the entry points at a page.
func (e TOCEntry) IsLink() bool {
	return e.URL != ""
}

// IsSection reports whether the entry is a heading grouping child entries.
func (e TOCEntry) IsSection() bool {
	return e.URL == ""
}

// Flatten returns the link entries of the tree in depth-first order.
func Flatten(entries []TOCEntry) []TOCEntry {
	var links []TOCEntry
	var walk func(items []TOCEntry)
	walk = func(items []TOCEntry) {
		for _, item := range items {
			if item.IsLink() {
				links = append(links, item)
				continue
			}
			walk(item.Children)
		}
	}
	walk(entries)
	return links
}

// Prune returns a copy of the tree containing only link entries whose URL is
// in keep. Sections left without children disappear.
func Prune(entries []TOCEntry, keep map[string]bool) []TOCEntry {
	var pruned []TOCEntry
	for _, entry := range entries {
		if entry.IsLink() {
			if keep[entry.URL] {
				pruned = append(pruned, entry)
			}
			continue
		}
		children := Prune(entry.Children, keep)
		if len(children) > 0 {
			section := entry
			section.Children = children
			pruned = append(pruned, section)
		}
	}
	return pruned
}

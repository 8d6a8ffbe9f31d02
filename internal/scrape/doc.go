// Package scrape extracts the navigable structure and article content from
// guide pages.
//
// Guide landing pages carry a sidebar navigation (nav.cmp-side-navigation)
// with one CSS class per nesting level; ParseTOC turns it into a tree of
// links and collapsible sections. Article pages keep their content in
// div.body-article-8 containers; ExtractArticle pulls those out and strips
// the sharing widgets, ad slots, and scripts that surround them. Both have
// permissive fallbacks because guide markup drifts.
package scrape

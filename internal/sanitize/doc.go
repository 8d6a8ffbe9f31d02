// Package sanitize rewrites extracted article markup into EPUB-compliant
// XHTML-ready trees.
//
// Guide pages arrive full of web-only constructs that EPUB checkers reject:
// inline SVG, iframes, <picture> wrappers around placeholder data URIs,
// custom elements like cds-code-snippet, AEM data-cmp-* attributes, and
// headings nested inside paragraphs. Clean removes or repairs all of them.
// CleanLinks separately handles anchors: dead fragments and script/mailto
// links are unwrapped to plain text, and links between pages of the same
// guide are rewritten to point at the corresponding chapter file.
package sanitize

// Package epub assembles EPUB 3 archives from prepared chapter content.
//
// A Book collects chapters, images, and a navigation tree, then writes a
// complete archive: the stored mimetype entry first, the OCF container
// pointer, an OPF package document, both EPUB 3 (nav.xhtml) and legacy NCX
// navigation, a generated cover page, a stylesheet, and the content files
// under OEBPS/. Output is written to a temp file and renamed into place so
// an interrupted run never leaves a truncated book behind.
package epub

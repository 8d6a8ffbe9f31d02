// Package pipeline drives a guide conversion end to end.
//
// A Converter fetches the landing page, walks the sidebar navigation,
// downloads each linked page and its images, cleans the extracted articles,
// and assembles the result into an EPUB. Pages run strictly in navigation
// order; a page that fails to download is logged and skipped rather than
// aborting the run.
package pipeline

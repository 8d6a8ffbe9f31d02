// Package assets downloads article images and rewrites their references.
//
// A Collector walks a chapter tree, resolves each img src against the page
// URL, downloads the image once per unique URL, and rewrites the src to a
// deterministic archive-local path derived from a hash of the source URL.
// The collected images are later packed into the book alongside the
// chapters that reference them.
package assets

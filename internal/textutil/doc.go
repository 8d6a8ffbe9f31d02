// Package textutil provides text processing utilities for title cleanup and
// filename generation.
//
// The primary use cases are:
//   - Collapsing whitespace in titles scraped from HTML
//   - Deriving filename-safe slugs from book titles
package textutil

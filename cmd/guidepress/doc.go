// Command guidepress converts multi-page web guides into EPUB books.
package main

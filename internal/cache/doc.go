// Package cache persists fetched pages and images in a SQLite database so
// repeated conversions of the same guide do not refetch unchanged resources.
//
// Entries are keyed by URL and expire after a configurable age; stale entries
// are transparently replaced on the next fetch. A file lock on the cache
// directory keeps concurrent guidepress runs from sharing one database
// mid-write.
package cache

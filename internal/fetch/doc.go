// Package fetch provides the HTTP client used for guide pages and images.
//
// The client sends a configurable User-Agent, enforces separate timeouts for
// pages and images, inserts a fixed delay between network requests, and
// retries failed requests a fixed number of times with a fixed delay. When a
// cache store is attached, fresh cached responses are served without touching
// the network.
package fetch

// Package tmdb provides the minimal TMDB API client used for dataset
// acquisition.
//
// It authenticates requests and exposes the discover endpoint sorted by
// revenue plus movie detail retrieval with credits appended. Rate-limited
// responses are retried after the server's Retry-After interval. Options
// allow tests to supply custom HTTP clients without modifying production
// code.
package tmdb

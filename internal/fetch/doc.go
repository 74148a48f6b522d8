// Package fetch acquires a top-revenue movie dataset from TMDB and writes
// it as a CSV suitable for `marquee add`. Discovery walks a configured year
// range page by page; each movie is resolved to its full record and rows
// without usable financials are dropped at the source.
package fetch

// Package extract converts raw encyclopedia markup into a title and an
// ordered sequence of classified content blocks.
//
// The extractor depends only on the Tree capability interface ("find by
// attribute", "first heading with class", "text content"); the goquery-backed
// implementation in this package is the default. Parsing is lenient: malformed
// markup degrades to whatever structure is recoverable and never fails.
package extract

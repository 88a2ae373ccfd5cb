// Package tables detects tabular structure on a page purely from glyph
// coordinates. No graphical lines or markup are consulted: the detector
// groups text runs into rows by vertical proximity, clusters run positions
// into columns, and identifies runs of consecutive rows with stable column
// structure as table candidates.
//
// Each candidate gets a structural confidence score in [0, 1] combining
// column-count stability, cell fill, header/body font contrast, presence of
// a numeric column, and the absence of overlapping candidates. Candidates
// below the configured threshold are rejected silently: a page of ordinary
// prose simply yields zero tables.
//
// Detection operates on a single page at a time and never merges tables
// across pages.
package tables

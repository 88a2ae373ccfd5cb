// Package index segments page text into sentence-level chunks with stable
// global indices and page-space coordinates, producing the citation map that
// lets callers jump from a chunk index back to its source location.
//
// Text runs are first arranged in reading order (top to bottom, then left to
// right within a vertical tolerance band), then concatenated and split at
// sentence boundaries using punctuation heuristics with guards for
// abbreviations and decimal numbers. Chunk boundaries are always snapped to
// run boundaries, so every chunk is the union of whole runs and its bounding
// box is the union of its contributing runs' boxes.
//
// A chunk is flagged as a heading when the dominant font size of its runs
// exceeds the page's modal body font size by a configurable ratio.
//
// The boundary heuristic is tuned for clinical-research prose. It is
// approximate by nature; callers should treat boundary placement as a close
// estimate rather than a guarantee.
package index

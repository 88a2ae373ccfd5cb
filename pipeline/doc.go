// Package pipeline orchestrates a full document run: page-parallel
// detection, a single sequential re-index pass, then classification,
// routing and analyzer enhancement per detected item.
//
// Only a broken page iterator aborts a run. Everything else degrades: a
// page whose detection fails contributes nothing, an item whose analyzers
// all fail keeps its geometric extraction, and all recovered failures are
// counted in the run stats.
package pipeline

// Package model defines the core data types shared across the document
// processing pipeline: positioned text runs, indexed text chunks, detected
// tables and figures, raster paint events, and the analyzer result types
// consumed by the consensus aggregator.
//
// All coordinates are in native page units at 100% scale, with the origin at
// the top-left corner of the page and Y increasing downward. Callers that
// display results at other zoom levels are responsible for their own scale
// transforms; nothing in this module depends on a display scale.
//
// The types here are plain data. Once produced by their owning component
// (the indexer, a detector, or the aggregator) they are treated as
// immutable: a re-run replaces values rather than mutating them in place.
package model

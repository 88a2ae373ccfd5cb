// Package consensus fans a detected item out to its routed analyzers and
// merges their independent extractions into one consensus record.
//
// Every analyzer call runs concurrently with its own timeout; a failing call
// never cancels its siblings. The fan-in waits for all calls to settle
// before merging, because disagreement between analyzers is exactly what the
// merge resolves. When every analyzer fails the item keeps its geometric
// extraction and simply carries no consensus.
package consensus

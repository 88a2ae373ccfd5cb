// Package classify assigns coarse content-type labels to detected tables and
// figures, and routes each label to the analyzers that should examine it.
//
// Classification is purely lexical: weighted keyword matches against a
// table's headers and leading rows, or a figure's caption text. It never
// inspects raster data and makes no network calls, so the same input always
// yields the same label. Routing is a static mapping; every route ends with
// the structural validation analyzer so each detected item is examined at
// least once even when classification yields unknown.
package classify

// Package figures recovers raster figures from a page's paint event stream.
// Each raster-paint event is decoded from its declared color space into a
// four-channel RGBA buffer, placed in page space via the event's transform,
// and filtered against a minimum pixel size so decorative glyphs and icons
// are not reported as figures.
//
// Extraction operates on the event's native pixel data and page-space
// transform only. It is deliberately independent of any display scale: the
// same paint stream always produces the same figures regardless of zoom
// state at capture time.
//
// An unsupported color space skips that single raster; the rest of the page
// proceeds. Skips are reported as warnings, not errors.
package figures

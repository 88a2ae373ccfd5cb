package model

// TextRun represents a single positioned string fragment from a rendered
// page, with its font metadata. Runs are produced once per page render by
// the document collaborator and are not retained after indexing.
type TextRun struct {
	Text     string
	Page     int // 1-indexed page number
	BBox     BBox
	FontName string
	FontSize float64
	Bold     bool
}

// PaintEvent represents a single raster paint operation captured during page
// rendering, before compositing. Raster holds the native pixel buffer in the
// declared color space; Transform places the raster's unit square in page
// space.
type PaintEvent struct {
	Raster           []byte
	Width            int
	Height           int
	ColorSpace       ColorSpace
	BitsPerComponent int

	// Palette holds RGB triples for indexed color spaces; each entry is
	// three bytes. Nil for direct color spaces.
	Palette [][3]byte

	Transform Matrix
}

// ColorSpace identifies the declared color space of a paint event's raster.
type ColorSpace string

const (
	ColorSpaceRGB     ColorSpace = "rgb"
	ColorSpaceGray    ColorSpace = "gray"
	ColorSpaceCMYK    ColorSpace = "cmyk"
	ColorSpaceIndexed ColorSpace = "indexed"
)

// PageContent is the per-page input to the pipeline: the text runs and the
// raster paint events captured for one rendered page.
type PageContent struct {
	Number int // 1-indexed page number
	Width  float64
	Height float64
	Runs   []TextRun
	Paints []PaintEvent
}

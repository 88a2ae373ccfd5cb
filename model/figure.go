package model

import "image"

// RGBAImage is a decoded raster with exactly four channels per pixel, in
// R, G, B, A order. It is produced by color-space conversion during figure
// extraction; the alpha channel is always fully opaque for converted
// rasters.
type RGBAImage struct {
	Width  int
	Height int
	Pix    []uint8 // len == Width*Height*4
}

// NewRGBAImage allocates an RGBA image of the given dimensions.
func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// At returns the R, G, B, A values of the pixel at (x, y).
func (img *RGBAImage) At(x, y int) (r, g, b, a uint8) {
	i := (y*img.Width + x) * 4
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]
}

// Set assigns the pixel at (x, y).
func (img *RGBAImage) Set(x, y int, r, g, b, a uint8) {
	i := (y*img.Width + x) * 4
	img.Pix[i] = r
	img.Pix[i+1] = g
	img.Pix[i+2] = b
	img.Pix[i+3] = a
}

// ToImage converts to a standard library *image.RGBA sharing no pixel
// storage with the receiver.
func (img *RGBAImage) ToImage() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	copy(out.Pix, img.Pix)
	return out
}

// ExtractedFigure is a raster figure recovered from a page's paint event
// stream. Figures smaller than the extractor's minimum size are never
// emitted.
type ExtractedFigure struct {
	ID     string
	Page   int
	Raster *RGBAImage
	BBox   BBox

	// Caption holds caption-adjacent text when available; used for
	// content classification.
	Caption string

	// Consensus is nil until (and unless) analyzer enhancement succeeds.
	Consensus *ConsensusResult
}

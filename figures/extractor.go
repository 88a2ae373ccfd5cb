package figures

import (
	"bytes"
	"image"
	"image/png"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/docsieve/docsieve/model"
)

// Config holds figure extraction settings.
type Config struct {
	// MinWidth is the minimum raster width in device pixels. Smaller
	// rasters are treated as decorative and skipped.
	MinWidth int

	// MinHeight is the minimum raster height in device pixels.
	MinHeight int
}

// DefaultConfig returns the default extraction settings.
func DefaultConfig() Config {
	return Config{
		MinWidth:  50,
		MinHeight: 50,
	}
}

// Warning records a raster that was skipped during extraction. A warning
// never aborts the page; the remaining rasters are still processed.
type Warning struct {
	// Raster is the index of the paint event within the page.
	Raster int

	// Err describes why the raster was skipped.
	Err error
}

// Extractor converts page paint events into extracted figures.
type Extractor struct {
	config Config
}

// New creates an Extractor with default settings.
func New() *Extractor {
	return &Extractor{config: DefaultConfig()}
}

// NewWithConfig creates an Extractor with the given settings.
func NewWithConfig(config Config) *Extractor {
	return &Extractor{config: config}
}

// Extract converts every qualifying paint event on the page into a figure.
// Rasters below the minimum size are treated as decorative and skipped
// silently; rasters whose color space cannot be converted are reported as
// warnings and skipped.
func (e *Extractor) Extract(page *model.PageContent) ([]*model.ExtractedFigure, []Warning, error) {
	if page == nil || len(page.Paints) == 0 {
		return nil, nil, nil
	}

	var figures []*model.ExtractedFigure
	var warnings []Warning

	for i := range page.Paints {
		event := &page.Paints[i]
		if event.Width < e.config.MinWidth || event.Height < e.config.MinHeight {
			continue
		}

		img, err := toRGBA(event)
		if err != nil {
			warnings = append(warnings, Warning{Raster: i, Err: err})
			continue
		}

		bbox := event.Transform.TransformBBox()
		fig := &model.ExtractedFigure{
			ID:      uuid.New().String(),
			Page:    page.Number,
			Raster:  img,
			BBox:    bbox,
			Caption: CaptionFor(page, bbox),
		}
		figures = append(figures, fig)
	}

	return figures, warnings, nil
}

// captionSearchDepth is how far below a figure, in page units, caption text
// is considered to belong to it.
const captionSearchDepth = 40.0

// CaptionFor returns the text of the runs directly below the figure's
// bounding box, in reading order. An empty string means no caption was found.
func CaptionFor(page *model.PageContent, bbox model.BBox) string {
	zone := model.BBox{
		X:      bbox.X,
		Y:      bbox.Bottom(),
		Width:  bbox.Width,
		Height: captionSearchDepth,
	}

	var captionRuns []model.TextRun
	for _, run := range page.Runs {
		if strings.TrimSpace(run.Text) == "" {
			continue
		}
		if run.BBox.Intersects(zone) {
			captionRuns = append(captionRuns, run)
		}
	}
	if len(captionRuns) == 0 {
		return ""
	}

	sort.SliceStable(captionRuns, func(i, j int) bool {
		if captionRuns[i].BBox.Y != captionRuns[j].BBox.Y {
			return captionRuns[i].BBox.Y < captionRuns[j].BBox.Y
		}
		return captionRuns[i].BBox.X < captionRuns[j].BBox.X
	})

	parts := make([]string, 0, len(captionRuns))
	for _, run := range captionRuns {
		parts = append(parts, run.Text)
	}
	return strings.Join(parts, " ")
}

// EncodePNG serializes the figure's raster to PNG bytes, suitable for
// embedding in an analyzer vision payload.
func EncodePNG(img *model.RGBAImage) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.ToImage()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Downscale returns a copy of the raster resized so that neither dimension
// exceeds maxDim, preserving aspect ratio. Rasters already within the bound
// are returned unchanged.
func Downscale(img *model.RGBAImage, maxDim int) *model.RGBAImage {
	if img.Width <= maxDim && img.Height <= maxDim {
		return img
	}

	w, h := img.Width, img.Height
	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	src := img.ToImage()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	out := model.NewRGBAImage(w, h)
	copy(out.Pix, dst.Pix)
	return out
}

package figures

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/docsieve/docsieve/model"
)

// ErrUnsupportedColorSpace is returned when a paint event declares a color
// space the extractor cannot convert. The raster is skipped; sibling rasters
// on the page are unaffected.
var ErrUnsupportedColorSpace = errors.New("unsupported color space")

// toRGBA converts a paint event's native pixel buffer into a four-channel
// RGBA image according to its declared color space.
func toRGBA(event *model.PaintEvent) (*model.RGBAImage, error) {
	switch event.ColorSpace {
	case model.ColorSpaceGray:
		return grayToRGBA(event)
	case model.ColorSpaceRGB:
		return rgbToRGBA(event)
	case model.ColorSpaceCMYK:
		return cmykToRGBA(event)
	case model.ColorSpaceIndexed:
		return indexedToRGBA(event)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedColorSpace, event.ColorSpace)
	}
}

// grayToRGBA replicates each gray value into R, G and B with full alpha.
// 1-bit and 4-bit buffers are expanded to 8-bit first.
func grayToRGBA(event *model.PaintEvent) (*model.RGBAImage, error) {
	gray, err := expandGray(event)
	if err != nil {
		return nil, err
	}

	img := model.NewRGBAImage(event.Width, event.Height)
	for i, v := range gray {
		img.Pix[i*4+0] = v
		img.Pix[i*4+1] = v
		img.Pix[i*4+2] = v
		img.Pix[i*4+3] = 255
	}
	return img, nil
}

// expandGray returns one 8-bit gray value per pixel for 1, 4 or 8 bits per
// component.
func expandGray(event *model.PaintEvent) ([]byte, error) {
	w, h := event.Width, event.Height
	out := make([]byte, w*h)

	switch event.BitsPerComponent {
	case 8:
		if len(event.Raster) < w*h {
			return nil, fmt.Errorf("gray raster: got %d bytes, expected %d", len(event.Raster), w*h)
		}
		copy(out, event.Raster[:w*h])

	case 4:
		bytesPerRow := (w + 1) / 2
		if len(event.Raster) < bytesPerRow*h {
			return nil, fmt.Errorf("4-bit gray raster: got %d bytes, expected %d", len(event.Raster), bytesPerRow*h)
		}
		for y := 0; y < h; y++ {
			rowStart := y * bytesPerRow
			for x := 0; x < w; x++ {
				var nibble byte
				if x%2 == 0 {
					nibble = (event.Raster[rowStart+x/2] >> 4) & 0x0F
				} else {
					nibble = event.Raster[rowStart+x/2] & 0x0F
				}
				out[y*w+x] = nibble * 17 // scale 0-15 to 0-255
			}
		}

	case 1:
		bytesPerRow := (w + 7) / 8
		if len(event.Raster) < bytesPerRow*h {
			return nil, fmt.Errorf("1-bit gray raster: got %d bytes, expected %d", len(event.Raster), bytesPerRow*h)
		}
		for y := 0; y < h; y++ {
			rowStart := y * bytesPerRow
			for x := 0; x < w; x++ {
				bit := (event.Raster[rowStart+x/8] >> (7 - x%8)) & 1
				if bit == 0 {
					out[y*w+x] = 0
				} else {
					out[y*w+x] = 255
				}
			}
		}

	default:
		return nil, fmt.Errorf("gray raster: unsupported bits per component %d", event.BitsPerComponent)
	}

	return out, nil
}

// rgbToRGBA copies 8-bit RGB triples and adds a full alpha channel.
func rgbToRGBA(event *model.PaintEvent) (*model.RGBAImage, error) {
	if event.BitsPerComponent != 8 {
		return nil, fmt.Errorf("rgb raster: unsupported bits per component %d", event.BitsPerComponent)
	}

	w, h := event.Width, event.Height
	if len(event.Raster) < w*h*3 {
		return nil, fmt.Errorf("rgb raster: got %d bytes, expected %d", len(event.Raster), w*h*3)
	}

	img := model.NewRGBAImage(w, h)
	for i := 0; i < w*h; i++ {
		img.Pix[i*4+0] = event.Raster[i*3+0]
		img.Pix[i*4+1] = event.Raster[i*3+1]
		img.Pix[i*4+2] = event.Raster[i*3+2]
		img.Pix[i*4+3] = 255
	}
	return img, nil
}

// cmykToRGBA converts 8-bit CMYK quads to RGB with full alpha.
func cmykToRGBA(event *model.PaintEvent) (*model.RGBAImage, error) {
	if event.BitsPerComponent != 8 {
		return nil, fmt.Errorf("cmyk raster: unsupported bits per component %d", event.BitsPerComponent)
	}

	w, h := event.Width, event.Height
	if len(event.Raster) < w*h*4 {
		return nil, fmt.Errorf("cmyk raster: got %d bytes, expected %d", len(event.Raster), w*h*4)
	}

	img := model.NewRGBAImage(w, h)
	for i := 0; i < w*h; i++ {
		c := event.Raster[i*4+0]
		m := event.Raster[i*4+1]
		y := event.Raster[i*4+2]
		k := event.Raster[i*4+3]

		r, g, b := color.CMYKToRGB(c, m, y, k)
		img.Pix[i*4+0] = r
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = 255
	}
	return img, nil
}

// indexedToRGBA resolves 8-bit palette indices against the event's RGB
// palette.
func indexedToRGBA(event *model.PaintEvent) (*model.RGBAImage, error) {
	if event.BitsPerComponent != 8 {
		return nil, fmt.Errorf("indexed raster: unsupported bits per component %d", event.BitsPerComponent)
	}
	if len(event.Palette) == 0 {
		return nil, fmt.Errorf("indexed raster: missing palette")
	}

	w, h := event.Width, event.Height
	if len(event.Raster) < w*h {
		return nil, fmt.Errorf("indexed raster: got %d bytes, expected %d", len(event.Raster), w*h)
	}

	img := model.NewRGBAImage(w, h)
	for i := 0; i < w*h; i++ {
		idx := int(event.Raster[i])
		if idx >= len(event.Palette) {
			return nil, fmt.Errorf("indexed raster: index %d outside palette of %d entries", idx, len(event.Palette))
		}
		entry := event.Palette[idx]
		img.Pix[i*4+0] = entry[0]
		img.Pix[i*4+1] = entry[1]
		img.Pix[i*4+2] = entry[2]
		img.Pix[i*4+3] = 255
	}
	return img, nil
}

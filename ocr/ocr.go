//go:build ocr

// Package ocr recovers caption text from figure rasters when a page carries
// no caption-adjacent text runs, typically in scanned documents.
//
// This implementation wraps the Tesseract engine via gosseract and requires
// Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Build with the "ocr" tag to enable it; without the tag a stub that always
// errors is compiled instead.
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/docsieve/docsieve/figures"
	"github.com/docsieve/docsieve/model"
)

// Reader performs OCR over figure rasters. Close it when done to release
// engine resources.
type Reader struct {
	client *gosseract.Client
}

// New creates a Reader bound to a Tesseract instance.
func New() (*Reader, error) {
	return &Reader{client: gosseract.NewClient()}, nil
}

// Close releases the underlying engine.
func (r *Reader) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// CaptionText recognizes the text embedded in a figure raster and returns it
// trimmed. An empty string with nil error means the raster contains no
// recognizable text.
func (r *Reader) CaptionText(img *model.RGBAImage) (string, error) {
	data, err := figures.EncodePNG(img)
	if err != nil {
		return "", fmt.Errorf("encode raster: %w", err)
	}

	if err := r.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// SetLanguage sets the recognition language(s). Multiple languages join with
// "+" (e.g. "eng+fra"); the engine default is "eng".
func (r *Reader) SetLanguage(lang string) error {
	return r.client.SetLanguage(lang)
}

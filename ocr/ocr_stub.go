//go:build !ocr

// Package ocr recovers caption text from figure rasters when a page carries
// no caption-adjacent text runs, typically in scanned documents.
//
// This is the stub compiled when the "ocr" build tag is not set; every
// operation returns ErrNotEnabled. Rebuild with:
//
//	go build -tags ocr
//
// which requires Tesseract to be installed on the system.
package ocr

import (
	"errors"

	"github.com/docsieve/docsieve/model"
)

// ErrNotEnabled is returned when OCR support was not compiled in.
var ErrNotEnabled = errors.New("ocr support not enabled; rebuild with -tags ocr")

// Reader is the stub recognizer.
type Reader struct{}

// New returns ErrNotEnabled.
func New() (*Reader, error) {
	return nil, ErrNotEnabled
}

// Close is a no-op. Safe on a nil Reader.
func (r *Reader) Close() error {
	return nil
}

// CaptionText returns ErrNotEnabled.
func (r *Reader) CaptionText(img *model.RGBAImage) (string, error) {
	return "", ErrNotEnabled
}

// SetLanguage returns ErrNotEnabled.
func (r *Reader) SetLanguage(lang string) error {
	return ErrNotEnabled
}

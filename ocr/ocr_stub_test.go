//go:build !ocr

package ocr

import (
	"errors"
	"testing"

	"github.com/docsieve/docsieve/model"
)

func TestNewReturnsError(t *testing.T) {
	reader, err := New()
	if !errors.Is(err, ErrNotEnabled) {
		t.Errorf("expected ErrNotEnabled, got: %v", err)
	}
	if reader != nil {
		t.Error("expected nil reader when OCR is disabled")
	}
}

func TestStubOperations(t *testing.T) {
	var reader *Reader
	if err := reader.Close(); err != nil {
		t.Errorf("Close on nil reader: %v", err)
	}

	r := &Reader{}
	if _, err := r.CaptionText(model.NewRGBAImage(10, 10)); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("CaptionText: expected ErrNotEnabled, got %v", err)
	}
	if err := r.SetLanguage("eng"); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("SetLanguage: expected ErrNotEnabled, got %v", err)
	}
}

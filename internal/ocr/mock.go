package ocr

import (
	"context"
	"image"
	"time"
)

// MockEngine returns canned text without touching any external engine.
// It backs the "mock" engine type and lets tests exercise the pipeline
// without a tesseract installation.
type MockEngine struct {
	// Text is returned verbatim from every Recognize call.
	Text string

	// Err, when set, is returned instead.
	Err error

	// LastConfig records the configuration of the most recent call.
	LastConfig RecognitionConfig
}

// Recognize validates the configuration and returns the canned result.
func (m *MockEngine) Recognize(ctx context.Context, img image.Image, cfg RecognitionConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m.LastConfig = cfg
	if m.Err != nil {
		return nil, WrapOCRError("Recognize", m.Err, "mock engine failure")
	}
	now := time.Now()
	return &Result{Text: m.Text, ProcessedAt: now}, nil
}

// Close implements Engine.
func (m *MockEngine) Close() error {
	return nil
}

package ocr

import (
	"context"
	"fmt"

	"imgocr/internal/config"
)

// NewEngine builds the recognition engine selected by the configuration.
// The tesseract subprocess engine is the default; its binary path comes from
// cfg.TesseractCmd (TESSERACT_CMD) or a PATH lookup, resolved here once so
// callers receive either a working engine or ErrEngineNotFound up front.
func NewEngine(ctx context.Context, cfg *config.Config) (Engine, error) {
	switch cfg.Engine {
	case config.EngineTesseract, "":
		return NewTesseractEngine(cfg.TesseractCmd)
	case config.EngineGosseract:
		return NewGosseractEngine(), nil
	case config.EngineVision:
		return NewVisionEngine(ctx)
	case config.EngineMock:
		return &MockEngine{Text: "mock recognition output\n"}, nil
	default:
		return nil, NewOCRError("NewEngine", ErrUnknownEngine, fmt.Sprintf("%q", cfg.Engine))
	}
}

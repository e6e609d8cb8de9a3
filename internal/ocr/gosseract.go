package ocr

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine drives libtesseract in-process through the gosseract
// bindings. No binary lookup is involved; the library is linked in.
//
// gosseract fixes the recognition algorithm at client initialization, so
// EngineMode is validated but otherwise left at the library default; only
// the subprocess engine honors it.
type GosseractEngine struct{}

// NewGosseractEngine returns an in-process tesseract engine.
func NewGosseractEngine() *GosseractEngine {
	return &GosseractEngine{}
}

// Recognize stages the image to a temporary PNG and runs a fresh gosseract
// client over it. A client per call keeps the engine stateless.
func (g *GosseractEngine) Recognize(ctx context.Context, img image.Image, cfg RecognitionConfig) (*Result, error) {
	const op = "Recognize"
	startTime := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, WrapOCRError(op, err, "recognition canceled")
	}

	tmpPath, cleanup, err := writeTempImage(img)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to stage image for gosseract")
	}
	defer cleanup()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(cfg.languages()...); err != nil {
		return nil, NewOCRError(op, ErrRecognitionFailed, fmt.Sprintf("setting languages %q: %v", cfg.LanguageSpec(), err))
	}
	if cfg.PageSegMode != nil {
		if err := client.SetPageSegMode(gosseract.PageSegMode(*cfg.PageSegMode)); err != nil {
			return nil, NewOCRError(op, ErrRecognitionFailed, fmt.Sprintf("setting page segmentation mode %d: %v", *cfg.PageSegMode, err))
		}
	}
	if err := client.SetImage(tmpPath); err != nil {
		return nil, NewOCRError(op, ErrRecognitionFailed, fmt.Sprintf("setting image: %v", err))
	}

	text, err := client.Text()
	if err != nil {
		return nil, NewOCRError(op, ErrRecognitionFailed, err.Error())
	}

	processedAt := time.Now()
	return &Result{
		Text:               text,
		ProcessedAt:        processedAt,
		ProcessingDuration: processedAt.Sub(startTime),
	}, nil
}

// Close releases engine resources. Clients are per-call, so there are none.
func (g *GosseractEngine) Close() error {
	return nil
}

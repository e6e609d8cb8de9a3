// Package ocr provides text recognition by delegating to an external OCR
// engine behind a narrow Engine interface.
//
// Four implementations exist:
//   - TesseractEngine: invokes the tesseract binary as a subprocess (default).
//   - GosseractEngine: drives libtesseract in-process via gosseract.
//   - VisionEngine: calls the Google Cloud Vision API.
//   - MockEngine: returns canned text, for tests and dry runs.
//
// Engine location for the default implementation follows the tesseract
// convention: an explicit TESSERACT_CMD path wins, otherwise the binary is
// looked up on PATH. Resolution happens once at engine construction so the
// recognition call itself never consults the environment.
package ocr

import (
	"context"
	"image"
	"strconv"
	"strings"
	"time"
)

// Engine is the capability boundary to an external recognition engine.
// Implementations must treat recognition parameters they do not support
// as engine defaults rather than failing.
type Engine interface {
	// Recognize extracts text from the image. It performs a single
	// invocation with no retries; any engine failure is surfaced directly.
	Recognize(ctx context.Context, img image.Image, cfg RecognitionConfig) (*Result, error)

	// Close releases any resources held by the engine.
	Close() error
}

// OrientationDetector is implemented by engines that can estimate page
// rotation, used for deskewing before recognition.
type OrientationDetector interface {
	// DetectOrientation returns the clockwise rotation in degrees needed
	// to bring the page upright (0, 90, 180 or 270).
	DetectOrientation(ctx context.Context, img image.Image) (int, error)
}

// RecognitionConfig carries the parameters passed through to the engine.
type RecognitionConfig struct {
	// Languages is an ordered list of language codes (e.g. "eng", "deu").
	// Order is preserved; multi-language fusion is the engine's business.
	// Empty means "eng".
	Languages []string

	// PageSegMode is the engine's page segmentation mode hint. Nil means
	// the engine applies its own default. The value is opaque to this
	// package.
	PageSegMode *int

	// EngineMode selects the engine's recognition algorithm variant.
	// Nil means the engine default; when set it must lie in [0, 3].
	EngineMode *int
}

// Validate checks the configuration invariants.
func (c RecognitionConfig) Validate() error {
	if c.EngineMode != nil && (*c.EngineMode < 0 || *c.EngineMode > 3) {
		return NewOCRError("Validate", ErrInvalidEngineMode, strconv.Itoa(*c.EngineMode))
	}
	return nil
}

// languages returns the configured language list, defaulting to English.
func (c RecognitionConfig) languages() []string {
	if len(c.Languages) == 0 {
		return []string{"eng"}
	}
	return c.Languages
}

// LanguageSpec joins the languages with "+" in order, the form the
// tesseract CLI expects (e.g. "eng+deu").
func (c RecognitionConfig) LanguageSpec() string {
	return strings.Join(c.languages(), "+")
}

// ParseLanguages splits a "+"-joined language spec into an ordered list,
// dropping empty segments.
func ParseLanguages(spec string) []string {
	var langs []string
	for _, l := range strings.Split(spec, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

// Result contains the outcome of one recognition call.
type Result struct {
	// Text is the extracted text, possibly multi-line, verbatim as the
	// engine produced it.
	Text string `json:"text"`

	// ProcessedAt is the timestamp when recognition completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the engine call took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

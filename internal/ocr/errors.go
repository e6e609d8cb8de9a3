package ocr

import (
	"errors"
	"fmt"
)

// Common recognition errors
var (
	// ErrEngineNotFound is returned when the external recognition engine
	// cannot be located or does not run. The wrapping OCRError names the
	// path that was tried.
	ErrEngineNotFound = errors.New("OCR engine not found")

	// ErrRecognitionFailed is returned when the engine ran but reported a
	// failure. The underlying engine error is carried verbatim and never
	// interpreted or retried.
	ErrRecognitionFailed = errors.New("recognition failed")

	// ErrInvalidEngineMode is returned when an engine mode outside [0, 3]
	// is configured.
	ErrInvalidEngineMode = errors.New("engine mode must be between 0 and 3")

	// ErrUnknownEngine is returned by the factory for an unrecognized
	// engine name.
	ErrUnknownEngine = errors.New("unknown OCR engine type")

	// ErrMissingCredentials is returned when the vision engine is selected
	// but neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is
	// configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")
)

// OCRError wraps errors with additional context about the recognition failure.
type OCRError struct {
	// Op is the operation that failed (e.g. "Recognize", "NewTesseractEngine").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewOCRError creates a new OCRError with the specified operation and underlying error.
func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return NewOCRError(op, err, details)
}

package preprocess

import "errors"

// Common preprocessing errors
var (
	// ErrImageDecode is returned when the input file cannot be opened or
	// parsed as an image in a supported format.
	ErrImageDecode = errors.New("cannot decode input file as an image")

	// ErrThresholdOutOfRange is returned when a binarization threshold
	// outside [0, 255] is configured.
	ErrThresholdOutOfRange = errors.New("binarization threshold must be between 0 and 255")

	// ErrInvalidDenoiseFilter is returned when an unknown denoise filter
	// name is configured.
	ErrInvalidDenoiseFilter = errors.New(`denoise filter must be "median" or "blur"`)
)

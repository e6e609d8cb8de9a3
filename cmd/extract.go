package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"imgocr/internal/logger"
	"imgocr/internal/ocr"
	"imgocr/internal/preprocess"
)

// imageExtensions are the formats the preprocessing pipeline can decode.
// Other extensions produce a warning, not an error, since the decoder
// sniffs the actual content.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

func init() {
	rootCmd.Flags().StringP("lang", "l", "", "Recognition language(s), '+'-separated (default: eng)")
	rootCmd.Flags().Int("psm", 0, "Tesseract page segmentation mode")
	rootCmd.Flags().Int("oem", 0, "Tesseract OCR engine mode (0-3)")
	rootCmd.Flags().Bool("no-grayscale", false, "Skip the grayscale conversion step")
	rootCmd.Flags().Bool("no-sharpen", false, "Skip the sharpening step")
	rootCmd.Flags().Int("threshold", 0, "Binarize with this threshold (0-255)")
	rootCmd.Flags().String("denoise", "", "Denoise filter to apply: median or blur")
	rootCmd.Flags().Bool("deskew", false, "Detect and correct page rotation before recognition")
	rootCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().Int("timeout", 120, "Recognition timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	lang, _ := cmd.Flags().GetString("lang")
	noGrayscale, _ := cmd.Flags().GetBool("no-grayscale")
	noSharpen, _ := cmd.Flags().GetBool("no-sharpen")
	denoise, _ := cmd.Flags().GetString("denoise")
	deskew, _ := cmd.Flags().GetBool("deskew")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	prepCfg := preprocess.Config{
		Grayscale: !noGrayscale,
		Sharpen:   !noSharpen,
		Denoise:   denoise,
	}
	if cmd.Flags().Changed("threshold") {
		threshold, _ := cmd.Flags().GetInt("threshold")
		prepCfg.Threshold = &threshold
	}
	if err := prepCfg.Validate(); err != nil {
		return handlePreprocessError(err, log)
	}

	recCfg := ocr.RecognitionConfig{}
	if lang == "" {
		lang = appConfig.DefaultLanguage
	}
	recCfg.Languages = ocr.ParseLanguages(lang)
	if cmd.Flags().Changed("psm") {
		psm, _ := cmd.Flags().GetInt("psm")
		recCfg.PageSegMode = &psm
	}
	if cmd.Flags().Changed("oem") {
		oem, _ := cmd.Flags().GetInt("oem")
		recCfg.EngineMode = &oem
	}
	if err := recCfg.Validate(); err != nil {
		if errors.Is(err, ocr.ErrInvalidEngineMode) {
			return fmt.Errorf("invalid --oem value: engine mode must be between 0 and 3")
		}
		return err
	}

	log.Info().
		Str("file", imagePath).
		Str("engine", appConfig.Engine).
		Str("lang", recCfg.LanguageSpec()).
		Bool("grayscale", prepCfg.Grayscale).
		Bool("sharpen", prepCfg.Sharpen).
		Str("denoise", prepCfg.Denoise).
		Bool("deskew", deskew).
		Int("timeout", timeoutSecs).
		Msg("Starting text extraction")

	if err := validateImageFile(imagePath, log); err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	engine, err := createEngine(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close OCR engine")
		}
	}()

	img, err := preprocess.Load(imagePath)
	if err != nil {
		return handlePreprocessError(err, log)
	}

	if deskew {
		img, err = deskewImage(ctx, engine, img, log)
		if err != nil {
			return handleRecognitionError(err, log)
		}
	}

	img, err = preprocess.Apply(img, prepCfg)
	if err != nil {
		return handlePreprocessError(err, log)
	}

	startTime := time.Now()
	result, err := engine.Recognize(ctx, img, recCfg)
	if err != nil {
		return handleRecognitionError(err, log)
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Int("text_length", len(result.Text)).
		Msg("Text extraction completed successfully")

	return writeResult(result.Text, outputPath, log)
}

// validateImageFile checks that the path exists and is a plausible image file.
func validateImageFile(imagePath string, log zerolog.Logger) error {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Image file not found")
			return fmt.Errorf("image file not found: %s", imagePath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Permission denied accessing image file")
			return fmt.Errorf("permission denied accessing image file: %s", imagePath)
		}
		return fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", imagePath).
			Msg("Path is not a regular file")
		return fmt.Errorf("path is not a regular file: %s", imagePath)
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", imagePath).
			Msg("Image file is empty")
		return fmt.Errorf("image file is empty: %s", imagePath)
	}

	if ext := strings.ToLower(filepath.Ext(imagePath)); !imageExtensions[ext] {
		log.Warn().
			Str("file", imagePath).
			Str("extension", ext).
			Msg("File does not have a common image extension")
	}

	return nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling recognition")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// createEngine builds the configured OCR engine, translating setup
// failures into actionable messages.
func createEngine(ctx context.Context, log zerolog.Logger) (ocr.Engine, error) {
	engine, err := ocr.NewEngine(ctx, appConfig)
	if err != nil {
		switch {
		case errors.Is(err, ocr.ErrEngineNotFound):
			log.Error().Err(err).Msg("OCR engine binary not found")
			return nil, fmt.Errorf("OCR engine is not available. Please verify:\n\n"+
				"1. tesseract is installed (e.g. 'apt install tesseract-ocr' or 'brew install tesseract')\n"+
				"2. The binary is on PATH, or TESSERACT_CMD points to it:\n"+
				"   export TESSERACT_CMD=/usr/local/bin/tesseract\n\n"+
				"Original error: %w", err)
		case errors.Is(err, ocr.ErrMissingCredentials):
			log.Error().Err(err).Msg("Google Cloud credentials validation failed")
			return nil, fmt.Errorf("Google Cloud credentials are not configured. Please set one of:\n\n"+
				"1. GOOGLE_APPLICATION_CREDENTIALS with a path to a service account JSON file\n"+
				"2. GOOGLE_CREDENTIALS with inline JSON credentials\n"+
				"3. Application Default Credentials via 'gcloud auth application-default login'\n\n"+
				"Original error: %w", err)
		case errors.Is(err, ocr.ErrUnknownEngine):
			log.Error().Err(err).Msg("Unknown OCR engine configured")
			return nil, fmt.Errorf("unknown OCR engine %q. Supported values for OCR_ENGINE are: tesseract, gosseract, vision, mock", appConfig.Engine)
		}
		log.Error().Err(err).Msg("Failed to create OCR engine")
		return nil, fmt.Errorf("failed to create OCR engine: %w", err)
	}

	log.Debug().Str("engine", appConfig.Engine).Msg("OCR engine created successfully")
	return engine, nil
}

// deskewImage corrects page rotation when the engine can detect orientation.
func deskewImage(ctx context.Context, engine ocr.Engine, img image.Image, log zerolog.Logger) (image.Image, error) {
	detector, ok := engine.(ocr.OrientationDetector)
	if !ok {
		log.Warn().
			Str("engine", appConfig.Engine).
			Msg("Engine does not support orientation detection, skipping deskew")
		return img, nil
	}

	angle, err := detector.DetectOrientation(ctx, img)
	if err != nil {
		return nil, err
	}

	log.Info().Int("rotation", angle).Msg("Detected page orientation")
	return preprocess.Deskew(img, angle), nil
}

// handlePreprocessError provides user-friendly messages for pipeline failures.
func handlePreprocessError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Image preprocessing failed")

	switch {
	case errors.Is(err, preprocess.ErrImageDecode):
		return fmt.Errorf("could not decode the image. Supported formats are PNG, JPEG, GIF, TIFF and BMP: %w", err)
	case errors.Is(err, preprocess.ErrThresholdOutOfRange):
		return fmt.Errorf("invalid --threshold value: threshold must be between 0 and 255")
	case errors.Is(err, preprocess.ErrInvalidDenoiseFilter):
		return fmt.Errorf("invalid --denoise value: supported filters are %q and %q", preprocess.DenoiseMedian, preprocess.DenoiseBlur)
	default:
		return fmt.Errorf("image preprocessing failed: %w", err)
	}
}

// handleRecognitionError provides user-friendly messages for OCR failures.
func handleRecognitionError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Text recognition failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("recognition timed out. Try increasing --timeout or processing a smaller image")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("recognition was canceled")
	case errors.Is(err, ocr.ErrRecognitionFailed):
		return fmt.Errorf("the OCR engine failed to process the image: %w", err)
	default:
		return fmt.Errorf("text recognition failed: %w", err)
	}
}

// writeResult routes the recognized text to a file or stdout. Nothing is
// written when recognition fails, so stdout stays clean for piping.
func writeResult(text, outputPath string, log zerolog.Logger) error {
	if outputPath == "" {
		if _, err := os.Stdout.WriteString(text); err != nil {
			log.Error().Err(err).Msg("Failed to write to stdout")
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to create output directory")
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, []byte(text), 0644); err != nil {
		log.Error().
			Err(err).
			Str("output_file", outputPath).
			Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Info().
		Str("output_file", outputPath).
		Int("bytes", len(text)).
		Msg("Recognized text written to file")
	return nil
}

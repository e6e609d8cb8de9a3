package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"imgocr/internal/config"
	"imgocr/internal/logger"
)

var version = "1.0.0"

// appConfig is populated by Execute before any command runs.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "imgocr [image-file]",
	Short: "Extract text from an image using OCR",
	Long: `imgocr preprocesses a raster image and runs optical character
recognition on it, printing the recognized text to stdout.

Preprocessing converts the image to grayscale and sharpens it before
recognition. Both steps can be disabled, and an optional threshold
step binarizes the image into pure black and white. Recognition is
delegated to an OCR engine, by default the tesseract binary on PATH.

Environment variables:
  OCR_ENGINE       - Engine to use: tesseract, gosseract, vision, mock (default: tesseract)
  TESSERACT_CMD    - Path to the tesseract binary (default: looked up on PATH)
  OCR_DEFAULT_LANG - Default recognition language (default: eng)`,
	Example: `  # Extract text from a scanned page
  imgocr scan.png

  # German plus English, saving the text to a file
  imgocr letter.jpg -l deu+eng -o letter.txt

  # Raw photo without binarization-friendly preprocessing
  imgocr photo.jpg --no-grayscale --no-sharpen

  # Binarize with a custom threshold and remove speckle noise first
  imgocr fax.png --threshold 100 --denoise median`,
	Version:       version,
	Args:          cobra.ExactArgs(1),
	RunE:          runExtract,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Any command failure is reported on stderr and
// exits with status 1.
func Execute(cfg *config.Config) {
	appConfig = cfg
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"imgocr/internal/logger"
	"imgocr/internal/sample"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a sample image with known text",
	Long: `Generate a test image containing known text, useful for verifying
that the OCR engine is installed and working:

  imgocr sample -o test.png
  imgocr test.png`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringP("output", "o", sample.DefaultPath, "Output image path")
}

func runSample(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("sample")

	outputPath, _ := cmd.Flags().GetString("output")

	if err := sample.Save(outputPath); err != nil {
		log.Error().
			Err(err).
			Str("output_file", outputPath).
			Msg("Failed to generate sample image")
		return fmt.Errorf("failed to generate sample image: %w", err)
	}

	log.Info().
		Str("output_file", outputPath).
		Msg("Sample image generated")
	fmt.Printf("Sample image written to %s\n", outputPath)
	return nil
}

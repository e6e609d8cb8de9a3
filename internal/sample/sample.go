// Package sample renders a known test image ("Hello OCR 123") used as an
// end-to-end fixture and by the sample subcommand.
package sample

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultPath is where the sample subcommand writes the fixture by default.
const DefaultPath = "samples/hello_ocr.png"

const (
	canvasWidth  = 900
	canvasHeight = 240

	// The basicfont face is a small bitmap font; nearest-neighbor
	// upscaling keeps the glyph edges crisp for the OCR engine.
	scaleFactor = 4
)

// Text lines rendered on the fixture. Tests assert on their tokens.
const (
	LineTitle = "Hello OCR 123"
	LineBody  = "This is a test image."
)

// Render draws black text on a white canvas and upscales it so the bitmap
// font is comfortably legible for recognition.
func Render() image.Image {
	canvas := image.NewNRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(40, 70)
	drawer.DrawString(LineTitle)
	drawer.Dot = fixed.P(40, 130)
	drawer.DrawString(LineBody)

	return imaging.Resize(canvas, canvasWidth*scaleFactor, canvasHeight*scaleFactor, imaging.NearestNeighbor)
}

// Save renders the fixture and writes it to path, creating parent
// directories as needed. The format follows the file extension.
func Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating sample directory: %w", err)
		}
	}
	if err := imaging.Save(Render(), path); err != nil {
		return fmt.Errorf("saving sample image: %w", err)
	}
	return nil
}

// Package preprocess implements the deterministic image transforms applied
// before recognition: grayscale conversion, sharpening, optional denoising
// and threshold binarization.
//
// Transforms run in a fixed order (grayscale, sharpen, denoise, binarize)
// and each one is skipped entirely when disabled. Every enabled transform
// produces a new image; the input is never mutated.
package preprocess

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/disintegration/imaging"
)

// Denoise filter names accepted by Config.Denoise.
const (
	DenoiseMedian = "median"
	DenoiseBlur   = "blur"
)

// gaussianBlurSigma is the sigma used by the "blur" denoise filter.
const gaussianBlurSigma = 0.8

// sharpenKernel is the fixed 3x3 convolution kernel used by the sharpen
// step: positive center, negative four-connected neighbors, zero corners.
var sharpenKernel = [9]float64{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// Config controls which transforms run and how.
type Config struct {
	// Grayscale converts the image to a single luminance channel
	// (0.299R + 0.587G + 0.114B).
	Grayscale bool

	// Sharpen convolves the image with sharpenKernel.
	Sharpen bool

	// Threshold, when non-nil, binarizes the image: intensities strictly
	// below the threshold become 0, everything else becomes 255.
	// Must lie in [0, 255].
	Threshold *int

	// Denoise selects an optional noise filter ("median" or "blur")
	// applied between sharpening and binarization. Empty disables it.
	Denoise string
}

// DefaultConfig returns the default pipeline configuration: grayscale and
// sharpen enabled, no denoising, no binarization.
func DefaultConfig() Config {
	return Config{Grayscale: true, Sharpen: true}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.Threshold != nil && (*c.Threshold < 0 || *c.Threshold > 255) {
		return fmt.Errorf("%w: got %d", ErrThresholdOutOfRange, *c.Threshold)
	}
	switch c.Denoise {
	case "", DenoiseMedian, DenoiseBlur:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidDenoiseFilter, c.Denoise)
	}
	return nil
}

// Load decodes the image at path. Any open or decode failure maps to
// ErrImageDecode: the caller cannot distinguish a missing file from an
// unsupported format, and does not need to.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, path, err)
	}
	return img, nil
}

// Apply runs the configured transforms over img and returns the result.
// When every transform is disabled the input image is returned unchanged.
func Apply(img image.Image, cfg Config) (image.Image, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out := img
	grayscaled := false

	if cfg.Grayscale {
		out = imaging.Grayscale(out)
		grayscaled = true
	}

	if cfg.Sharpen {
		// Convolve3x3 replicates the outermost pixels when the kernel
		// window extends past the image edge, so border pixels are
		// sharpened against copies of themselves.
		out = imaging.Convolve3x3(out, sharpenKernel, nil)
	}

	switch cfg.Denoise {
	case DenoiseMedian:
		out = medianFilter(out)
	case DenoiseBlur:
		out = imaging.Blur(out, gaussianBlurSigma)
	}

	if cfg.Threshold != nil {
		// Binarization needs a single intensity channel. When grayscale
		// was disabled we still reduce to luminance first rather than
		// rejecting the configuration.
		if !grayscaled {
			out = imaging.Grayscale(out)
		}
		out = binarize(out, uint8(*cfg.Threshold))
	}

	return out, nil
}

// Deskew rotates the image clockwise by angle degrees on a white background,
// undoing the rotation an orientation detector reported. Angles that are a
// multiple of 360 return the image unchanged.
func Deskew(img image.Image, angle int) image.Image {
	if angle%360 == 0 {
		return img
	}
	return imaging.Rotate(img, -float64(angle), color.White)
}

// binarize maps every pixel with intensity strictly below threshold to black
// and everything else to white. The image is expected to be grayscale, so the
// red channel serves as the intensity.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.R < threshold {
			return color.NRGBA{A: 255}
		}
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	})
}

// medianFilter applies a 3x3 per-channel median, replicating edge pixels.
// The imaging library has no median filter, so this is done by hand.
func medianFilter(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewNRGBA(bounds)

	clamp := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v > max {
			return max
		}
		return v
	}

	var window [4][9]uint8 // r, g, b, a
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sx := clamp(x+dx, w-1)
					sy := clamp(y+dy, h-1)
					i := src.PixOffset(sx, sy)
					window[0][n] = src.Pix[i]
					window[1][n] = src.Pix[i+1]
					window[2][n] = src.Pix[i+2]
					window[3][n] = src.Pix[i+3]
					n++
				}
			}
			o := dst.PixOffset(x, y)
			for ch := 0; ch < 4; ch++ {
				v := window[ch]
				sort.Slice(v[:], func(a, b int) bool { return v[a] < v[b] })
				dst.Pix[o+ch] = v[4]
			}
		}
	}

	return dst
}

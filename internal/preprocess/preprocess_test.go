package preprocess

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func intPtr(v int) *int { return &v }

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"defaults", DefaultConfig(), nil},
		{"threshold lower bound", Config{Threshold: intPtr(0)}, nil},
		{"threshold mid", Config{Threshold: intPtr(128)}, nil},
		{"threshold upper bound", Config{Threshold: intPtr(255)}, nil},
		{"threshold negative", Config{Threshold: intPtr(-1)}, ErrThresholdOutOfRange},
		{"threshold too large", Config{Threshold: intPtr(256)}, ErrThresholdOutOfRange},
		{"denoise median", Config{Denoise: DenoiseMedian}, nil},
		{"denoise blur", Config{Denoise: DenoiseBlur}, nil},
		{"denoise unknown", Config{Denoise: "sobel"}, ErrInvalidDenoiseFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// testImage builds a small gradient so every transform has something to act on.
func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8(x * 32),
				G: uint8(y * 32),
				B: uint8((x + y) * 16),
				A: 255,
			})
		}
	}
	return img
}

func TestApplyPassThrough(t *testing.T) {
	src := testImage()
	got, err := Apply(src, Config{Grayscale: false, Sharpen: false})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := imaging.Clone(src)
	nrgba := imaging.Clone(got)
	if !bytes.Equal(nrgba.Pix, want.Pix) {
		t.Error("Apply() with all steps disabled modified the image")
	}
}

func TestApplyGrayscale(t *testing.T) {
	got, err := Apply(testImage(), Config{Grayscale: true})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	nrgba := imaging.Clone(got)
	for i := 0; i < len(nrgba.Pix); i += 4 {
		r, g, b := nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2]
		if r != g || g != b {
			t.Fatalf("pixel %d not gray: r=%d g=%d b=%d", i/4, r, g, b)
		}
	}
}

func TestApplyGrayscaleIdempotent(t *testing.T) {
	once, err := Apply(testImage(), Config{Grayscale: true})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	twice, err := Apply(once, Config{Grayscale: true})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	a, b := imaging.Clone(once), imaging.Clone(twice)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("grayscale conversion is not idempotent")
	}
}

func TestApplyBinarize(t *testing.T) {
	got, err := Apply(testImage(), Config{Grayscale: true, Threshold: intPtr(128)})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	nrgba := imaging.Clone(got)
	for i := 0; i < len(nrgba.Pix); i += 4 {
		v := nrgba.Pix[i]
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d has intermediate value %d after binarization", i/4, v)
		}
		if nrgba.Pix[i] != nrgba.Pix[i+1] || nrgba.Pix[i+1] != nrgba.Pix[i+2] {
			t.Fatalf("pixel %d not pure black or white", i/4)
		}
	}
}

func TestApplyBinarizeBoundary(t *testing.T) {
	// One pixel just below the threshold, one exactly at it.
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 127, G: 127, B: 127, A: 255})
	img.Set(1, 0, color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	got, err := Apply(img, Config{Threshold: intPtr(128)})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	nrgba := imaging.Clone(got)
	if nrgba.Pix[0] != 0 {
		t.Errorf("pixel below threshold = %d, want 0 (black)", nrgba.Pix[0])
	}
	if nrgba.Pix[4] != 255 {
		t.Errorf("pixel at threshold = %d, want 255 (white)", nrgba.Pix[4])
	}
}

func TestApplyBinarizeForcesGrayscale(t *testing.T) {
	// Color input with grayscale disabled still yields a binary image.
	got, err := Apply(testImage(), Config{Grayscale: false, Threshold: intPtr(100)})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	nrgba := imaging.Clone(got)
	for i := 0; i < len(nrgba.Pix); i += 4 {
		v := nrgba.Pix[i]
		if (v != 0 && v != 255) || nrgba.Pix[i+1] != v || nrgba.Pix[i+2] != v {
			t.Fatalf("pixel %d not binarized: %v", i/4, nrgba.Pix[i:i+4])
		}
	}
}

func TestApplySharpenUniformImage(t *testing.T) {
	// Sharpening has no effect where there are no edges.
	img := imaging.New(6, 6, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	got, err := Apply(img, Config{Sharpen: true})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	nrgba := imaging.Clone(got)
	if !bytes.Equal(nrgba.Pix, img.Pix) {
		t.Error("sharpening modified a uniform image")
	}
}

func TestApplyMedianRemovesSpeckle(t *testing.T) {
	img := imaging.New(5, 5, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(2, 2, color.NRGBA{A: 255}) // lone black pixel

	got, err := Apply(img, Config{Denoise: DenoiseMedian})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	c := imaging.Clone(got).NRGBAAt(2, 2)
	if c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("speckle survived median filter: %v", c)
	}
}

func TestApplyInvalidConfig(t *testing.T) {
	_, err := Apply(testImage(), Config{Threshold: intPtr(300)})
	if !errors.Is(err, ErrThresholdOutOfRange) {
		t.Fatalf("Apply() error = %v, want ErrThresholdOutOfRange", err)
	}
}

func TestDeskew(t *testing.T) {
	img := testImage()

	if got := Deskew(img, 0); got != image.Image(img) {
		t.Error("Deskew(0) should return the image unchanged")
	}
	if got := Deskew(img, 360); got != image.Image(img) {
		t.Error("Deskew(360) should return the image unchanged")
	}

	rotated := Deskew(img, 90)
	b := rotated.Bounds()
	if b.Dx() != img.Bounds().Dy() || b.Dy() != img.Bounds().Dx() {
		t.Errorf("Deskew(90) bounds = %v, want transposed dimensions", b)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ok.png")
	if err := imaging.Save(testImage(), path); err != nil {
		t.Fatalf("saving fixture: %v", err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("Load() width = %d, want 8", img.Bounds().Dx())
	}

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(garbage); !errors.Is(err, ErrImageDecode) {
		t.Errorf("Load(garbage) error = %v, want ErrImageDecode", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, ErrImageDecode) {
		t.Errorf("Load(missing) error = %v, want ErrImageDecode", err)
	}
}

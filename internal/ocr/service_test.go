package ocr

import (
	"context"
	"errors"
	"image"
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestRecognitionConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RecognitionConfig
		wantErr error
	}{
		{"empty", RecognitionConfig{}, nil},
		{"oem lower bound", RecognitionConfig{EngineMode: intPtr(0)}, nil},
		{"oem upper bound", RecognitionConfig{EngineMode: intPtr(3)}, nil},
		{"oem negative", RecognitionConfig{EngineMode: intPtr(-1)}, ErrInvalidEngineMode},
		{"oem too large", RecognitionConfig{EngineMode: intPtr(4)}, ErrInvalidEngineMode},
		{"psm is opaque", RecognitionConfig{PageSegMode: intPtr(99)}, nil},
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

func TestLanguageSpec(t *testing.T) {
	tests := []struct {
		name      string
		languages []string
		want      string
	}{
		{"default", nil, "eng"},
		{"single", []string{"deu"}, "deu"},
		{"ordered pair", []string{"deu", "eng"}, "deu+eng"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := RecognitionConfig{Languages: tt.languages}
			if got := cfg.LanguageSpec(); got != tt.want {
				t.Errorf("LanguageSpec() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLanguages(t *testing.T) {
	tests := []struct {
		spec string
		want []string
	}{
		{"eng", []string{"eng"}},
		{"deu+eng", []string{"deu", "eng"}},
		{" deu + eng ", []string{"deu", "eng"}},
		{"eng++deu", []string{"eng", "deu"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			if got := ParseLanguages(tt.spec); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLanguages(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestMockEngine(t *testing.T) {
	ctx := context.Background()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	engine := &MockEngine{Text: "hello\n"}
	cfg := RecognitionConfig{Languages: []string{"deu"}}

	result, err := engine.Recognize(ctx, img, cfg)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if result.Text != "hello\n" {
		t.Errorf("Recognize() text = %q, want %q", result.Text, "hello\n")
	}
	if got := engine.LastConfig.LanguageSpec(); got != "deu" {
		t.Errorf("LastConfig language = %q, want %q", got, "deu")
	}

	engine.Err = errors.New("boom")
	if _, err := engine.Recognize(ctx, img, cfg); err == nil {
		t.Error("Recognize() with Err set returned nil error")
	}

	if _, err := engine.Recognize(ctx, img, RecognitionConfig{EngineMode: intPtr(7)}); !errors.Is(err, ErrInvalidEngineMode) {
		t.Errorf("Recognize() with bad config error = %v, want ErrInvalidEngineMode", err)
	}

	if err := engine.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestOCRErrorWrapping(t *testing.T) {
	base := NewOCRError("Recognize", ErrRecognitionFailed, "tesseract exited with status 1")

	if !errors.Is(base, ErrRecognitionFailed) {
		t.Error("errors.Is failed to match the sentinel through OCRError")
	}

	wrapped := WrapOCRError("Recognize", base, "outer context")
	if wrapped != error(base) {
		t.Error("WrapOCRError re-wrapped an existing OCRError")
	}

	if WrapOCRError("Recognize", nil, "details") != nil {
		t.Error("WrapOCRError(nil) should return nil")
	}
}

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"time"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/disintegration/imaging"
	"google.golang.org/api/option"
)

// VisionEngine recognizes text using the Google Cloud Vision API's document
// text detection. Page segmentation and engine mode are tesseract concepts
// and do not apply here; languages become Vision language hints.
type VisionEngine struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionEngine creates a Vision-backed engine with credentials from the
// environment. It expects either a GOOGLE_APPLICATION_CREDENTIALS path or
// GOOGLE_CREDENTIALS JSON in env, falling back to application default
// credentials.
func NewVisionEngine(ctx context.Context) (*VisionEngine, error) {
	const op = "NewVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		// Use credentials file
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionEngine{client: client}, nil
}

// NewVisionEngineWithClient creates a Vision engine with an explicit client (for testing).
func NewVisionEngineWithClient(client *vision.ImageAnnotatorClient) *VisionEngine {
	return &VisionEngine{client: client}
}

// Recognize encodes the image to PNG and submits it for document text detection.
func (v *VisionEngine) Recognize(ctx context.Context, img image.Image, cfg RecognitionConfig) (*Result, error) {
	const op = "Recognize"
	startTime := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, WrapOCRError(op, err, "failed to encode image for Vision API")
	}

	visionImg, err := vision.NewImageFromReader(&buf)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to build Vision API image")
	}

	imageCtx := &visionpb.ImageContext{
		LanguageHints: cfg.languages(),
	}

	annotation, err := v.client.DetectDocumentText(ctx, visionImg, imageCtx)
	if err != nil {
		return nil, NewOCRError(op, ErrRecognitionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}

	var text string
	if annotation != nil {
		text = annotation.GetText()
	}

	processedAt := time.Now()
	return &Result{
		Text:               text,
		ProcessedAt:        processedAt,
		ProcessingDuration: processedAt.Sub(startTime),
	}, nil
}

// Close closes the underlying Vision client.
func (v *VisionEngine) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

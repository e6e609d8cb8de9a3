package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"imgocr/internal/logger"
)

// TesseractEngine invokes the tesseract binary as a subprocess.
type TesseractEngine struct {
	cmd string
}

// NewTesseractEngine resolves the tesseract binary and verifies it runs.
// An explicit command path (typically from TESSERACT_CMD) takes precedence;
// otherwise the binary is looked up on PATH. Both resolution and the
// --version probe failing map to ErrEngineNotFound.
func NewTesseractEngine(command string) (*TesseractEngine, error) {
	const op = "NewTesseractEngine"

	resolved := command
	if resolved == "" {
		path, err := exec.LookPath("tesseract")
		if err != nil {
			return nil, NewOCRError(op, ErrEngineNotFound,
				`"tesseract" is not on PATH; install tesseract-ocr or set TESSERACT_CMD to the binary path`)
		}
		resolved = path
	}

	engine := &TesseractEngine{cmd: resolved}
	if err := engine.probe(); err != nil {
		return nil, NewOCRError(op, ErrEngineNotFound,
			fmt.Sprintf("%s does not run as a tesseract binary: %v", resolved, err))
	}

	return engine, nil
}

// Command returns the resolved binary path.
func (t *TesseractEngine) Command() string {
	return t.cmd
}

// probe runs "tesseract --version" to confirm the binary is usable.
func (t *TesseractEngine) probe() error {
	out, err := exec.Command(t.cmd, "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("%v: %s", err, bytes.TrimSpace(out))
	}
	return nil
}

// Recognize writes the image to a temporary PNG and runs
// "tesseract <file> stdout" with the exported recognition flags.
func (t *TesseractEngine) Recognize(ctx context.Context, img image.Image, cfg RecognitionConfig) (*Result, error) {
	const op = "Recognize"
	log := logger.WithComponent("tesseract")
	startTime := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := writeTempImage(img)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to stage image for tesseract")
	}
	defer cleanup()

	args := append([]string{tmpPath, "stdout"}, exportArgs(cfg)...)
	log.Debug().
		Str("cmd", t.cmd).
		Strs("args", args).
		Msg("Invoking tesseract")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.cmd, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, WrapOCRError(op, ctx.Err(), "tesseract invocation interrupted")
		}
		return nil, NewOCRError(op, ErrRecognitionFailed,
			fmt.Sprintf("%s exited with %v: %s", t.cmd, err, strings.TrimSpace(stderr.String())))
	}

	processedAt := time.Now()
	return &Result{
		Text:               stdout.String(),
		ProcessedAt:        processedAt,
		ProcessingDuration: processedAt.Sub(startTime),
	}, nil
}

// DetectOrientation runs tesseract in OSD-only mode (--psm 0) and parses the
// reported rotation. Implements OrientationDetector.
func (t *TesseractEngine) DetectOrientation(ctx context.Context, img image.Image) (int, error) {
	const op = "DetectOrientation"

	tmpPath, cleanup, err := writeTempImage(img)
	if err != nil {
		return 0, WrapOCRError(op, err, "failed to stage image for tesseract")
	}
	defer cleanup()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.cmd, tmpPath, "stdout", "--psm", "0")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, NewOCRError(op, ErrRecognitionFailed,
			fmt.Sprintf("%s exited with %v: %s", t.cmd, err, strings.TrimSpace(stderr.String())))
	}

	angle, ok := parseOSDRotation(stdout.String())
	if !ok {
		return 0, NewOCRError(op, ErrRecognitionFailed, "OSD output contains no rotation estimate")
	}
	return angle, nil
}

// Close releases engine resources. The subprocess engine holds none.
func (t *TesseractEngine) Close() error {
	return nil
}

// exportArgs converts the recognition config into tesseract command line
// flags, e.g. ["-l", "eng+deu", "--psm", "6", "--oem", "1"]. Unset optional
// parameters are omitted so the engine applies its own defaults.
func exportArgs(cfg RecognitionConfig) []string {
	args := []string{"-l", cfg.LanguageSpec()}
	if cfg.PageSegMode != nil {
		args = append(args, "--psm", strconv.Itoa(*cfg.PageSegMode))
	}
	if cfg.EngineMode != nil {
		args = append(args, "--oem", strconv.Itoa(*cfg.EngineMode))
	}
	return args
}

// parseOSDRotation extracts the "Rotate: N" line from tesseract OSD output.
func parseOSDRotation(osd string) (int, bool) {
	for _, line := range strings.Split(osd, "\n") {
		if !strings.Contains(line, "Rotate:") {
			continue
		}
		_, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		angle, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		return angle, true
	}
	return 0, false
}

// writeTempImage encodes the image to a temporary PNG file. Tesseract reads
// from disk, not from pipes, so in-memory images have to be staged.
func writeTempImage(img image.Image) (path string, cleanup func(), err error) {
	tmp, err := os.CreateTemp("", "imgocr-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp image: %w", err)
	}
	path = tmp.Name()
	cleanup = func() { _ = os.Remove(path) }

	if err := imaging.Encode(tmp, img, imaging.PNG); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("encoding temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp image: %w", err)
	}

	return path, cleanup, nil
}

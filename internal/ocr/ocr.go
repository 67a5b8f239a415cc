// Package ocr recognizes text in rendered page images.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"docqa/internal/command"
	"docqa/internal/logger"
)

// ErrOCR wraps per-page recognition failures.
var ErrOCR = errors.New("ocr failed")

// Engine recognizes the text of a single image file.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
	Name() string
}

// Recognizer runs an Engine over every page of a document.
type Recognizer struct {
	engine Engine
}

func NewRecognizer(engine Engine) *Recognizer {
	return &Recognizer{engine: engine}
}

// Recognize returns one entry per input page. A page whose image is missing
// or cannot be recognized maps to "".
func (r *Recognizer) Recognize(ctx context.Context, images map[int]string) map[int]string {
	text, _ := r.RecognizeDetailed(ctx, images)
	return text
}

// RecognizeDetailed is Recognize plus the per-page failures.
func (r *Recognizer) RecognizeDetailed(ctx context.Context, images map[int]string) (map[int]string, map[int]error) {
	text := make(map[int]string, len(images))
	errs := make(map[int]error)

	pages := slices.Sorted(maps.Keys(images))
	logger.Info("🔍 Running %s OCR on %d pages", r.engine.Name(), len(pages))

	for _, page := range pages {
		text[page] = ""
		path := images[page]

		if _, err := os.Stat(path); err != nil {
			logger.Warn("Page %d: image %s not readable: %v", page, path, err)
			errs[page] = fmt.Errorf("%w: page %d: %w", ErrOCR, page, err)
			continue
		}
		if err := ctx.Err(); err != nil {
			errs[page] = fmt.Errorf("%w: page %d: %w", ErrOCR, page, err)
			continue
		}

		out, err := r.engine.Recognize(ctx, path)
		if err != nil {
			logger.Error("Error performing OCR on page %d: %v", page, err)
			errs[page] = fmt.Errorf("%w: page %d: %w", ErrOCR, page, err)
			continue
		}
		text[page] = strings.TrimSpace(out)
		logger.Debug("Page %d: %d characters recognized", page, len(text[page]))
	}
	return text, errs
}

// Tesseract shells out to the tesseract CLI.
type Tesseract struct {
	runner command.Runner
	binary string
}

func NewTesseract(runner command.Runner, binary string) *Tesseract {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	if binary == "" {
		binary = "tesseract"
	}
	return &Tesseract{runner: runner, binary: binary}
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	out, err := t.runner.Run(ctx, t.binary, imagePath, "stdout")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// VisionGenerator is satisfied by llm.Client.
type VisionGenerator interface {
	GenerateWithImages(ctx context.Context, prompt string, imagePaths ...string) (string, error)
}

// Vision transcribes pages with a multimodal Ollama model.
type Vision struct {
	gen    VisionGenerator
	prompt string
}

func NewVision(gen VisionGenerator, prompt string) *Vision {
	return &Vision{gen: gen, prompt: prompt}
}

func (v *Vision) Name() string { return "vision" }

func (v *Vision) Recognize(ctx context.Context, imagePath string) (string, error) {
	return v.gen.GenerateWithImages(ctx, v.prompt, imagePath)
}

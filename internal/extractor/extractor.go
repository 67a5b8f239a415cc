// Package extractor pulls per-page text out of documents and renders PDF
// pages to images for the OCR fallback.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"docqa/internal/command"
	"docqa/internal/logger"
)

var (
	// ErrNotFound indicates the input file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrUnsupportedType indicates an input extension we cannot read.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrExtraction wraps absorbed extraction failures reported in Pages.Errors.
	ErrExtraction = errors.New("extraction failed")
)

const (
	DefaultDPI      = 300
	DefaultPdftoppm = "pdftoppm"
)

// Pages is the result of extracting one document. Both maps are keyed by
// zero-based page number.
type Pages struct {
	Text   map[int]string
	Images map[int]string

	// ScratchDir holds the rendered images, empty when none were written.
	ScratchDir string

	// Errors lists failures that were absorbed into empty text or images.
	Errors []error
}

// TextPages returns the page numbers with text entries in ascending order.
func (p *Pages) TextPages() []int {
	return slices.Sorted(maps.Keys(p.Text))
}

// ImagePages returns the page numbers with images in ascending order.
func (p *Pages) ImagePages() []int {
	return slices.Sorted(maps.Keys(p.Images))
}

// Err joins the absorbed errors, nil if extraction was clean.
func (p *Pages) Err() error {
	return errors.Join(p.Errors...)
}

// Cleanup removes the scratch directory.
func (p *Pages) Cleanup() {
	if p.ScratchDir == "" {
		return
	}
	if err := os.RemoveAll(p.ScratchDir); err != nil {
		logger.Warn("Failed to remove scratch dir %s: %v", p.ScratchDir, err)
	}
}

// Extractor reads PDF, Markdown and plain-text files.
type Extractor struct {
	runner   command.Runner
	pdftoppm string
	dpi      int
	tempDir  string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRunner replaces the command runner used for rasterization.
func WithRunner(r command.Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithPdftoppm sets the pdftoppm binary.
func WithPdftoppm(path string) Option {
	return func(e *Extractor) {
		if path != "" {
			e.pdftoppm = path
		}
	}
}

// WithDPI sets the rasterization resolution.
func WithDPI(dpi int) Option {
	return func(e *Extractor) {
		if dpi > 0 {
			e.dpi = dpi
		}
	}
}

// WithTempDir sets the parent of per-document scratch directories.
func WithTempDir(dir string) Option {
	return func(e *Extractor) { e.tempDir = dir }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		runner:   command.ExecRunner{},
		pdftoppm: DefaultPdftoppm,
		dpi:      DefaultDPI,
		tempDir:  os.TempDir(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns per-page text and, for PDFs, per-page images. Only a
// missing or unsupported file is an error; everything else degrades to
// empty entries recorded in Pages.Errors.
func (e *Extractor) Extract(ctx context.Context, path string) (*Pages, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedType, path)
	}

	logger.Info("📄 Extracting %s (%d bytes)", filepath.Base(path), info.Size())

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return e.extractPDF(ctx, path), nil
	case ".md", ".markdown":
		return singlePage(readMarkdown(path)), nil
	case ".txt", ".text":
		return singlePage(readPlain(path)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}

func (e *Extractor) extractPDF(ctx context.Context, path string) *Pages {
	pages := &Pages{}

	text, errs := readPDFText(path)
	pages.Text = text
	pages.Errors = append(pages.Errors, errs...)

	images, dir, err := e.rasterize(ctx, path)
	if err != nil {
		logger.Error("Error converting PDF to images: %v", err)
		pages.Errors = append(pages.Errors, fmt.Errorf("%w: rasterize: %w", ErrExtraction, err))
		images = map[int]string{}
	}
	pages.Images = images
	pages.ScratchDir = dir

	logger.Debug("Extracted %d text pages and %d images", len(pages.Text), len(pages.Images))
	return pages
}

func singlePage(text string, err error) *Pages {
	pages := &Pages{
		Text:   map[int]string{0: text},
		Images: map[int]string{},
	}
	if err != nil {
		logger.Error("Error extracting text: %v", err)
		pages.Errors = []error{fmt.Errorf("%w: %w", ErrExtraction, err)}
	}
	return pages
}

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

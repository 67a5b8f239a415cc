// Package app wires extraction, OCR, chunking, storage and generation into
// the document question-answering pipeline.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/extractor"
	"docqa/internal/logger"
	"docqa/internal/metrics"
	"docqa/internal/vectorstore"
)

type Extractor interface {
	Extract(ctx context.Context, path string) (*extractor.Pages, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, images map[int]string) map[int]string
}

type Store interface {
	CreateCollection(name string, overwrite bool) error
	AddDocuments(ctx context.Context, name string, chunks []chunker.Chunk) error
	Query(ctx context.Context, name, text string, k int) ([]vectorstore.Result, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelManager makes sure the configured models exist on the LLM server.
type ModelManager interface {
	EnsureModels(ctx context.Context, pull bool, models ...string) error
}

// Deps are the collaborators of an App. Metrics may be nil.
type Deps struct {
	Extractor Extractor
	OCR       Recognizer
	Chunker   chunker.Chunker
	Store     Store
	Generator Generator
	Metrics   *metrics.Metrics
	Prompts   config.Prompts
}

// App holds immutable collaborators only; per-user state lives in Session.
type App struct {
	cfg       *config.Config
	extractor Extractor
	ocr       Recognizer
	chunker   chunker.Chunker
	store     Store
	answerer  *Answerer
	metrics   *metrics.Metrics

	now func() time.Time
}

func New(cfg *config.Config, deps Deps) *App {
	return &App{
		cfg:       cfg,
		extractor: deps.Extractor,
		ocr:       deps.OCR,
		chunker:   deps.Chunker,
		store:     deps.Store,
		answerer:  NewAnswerer(deps.Generator, deps.Prompts, deps.Metrics),
		metrics:   deps.Metrics,
		now:       time.Now,
	}
}

// EnsureModels checks that the LLM server is reachable and has every model
// the configuration needs, pulling missing ones when allowed.
func EnsureModels(ctx context.Context, cfg *config.Config, mm ModelManager) error {
	models := []string{cfg.OllamaModel, cfg.OllamaEmbedModel}
	if cfg.OCREngine == "ollama" {
		models = append(models, cfg.OCRModel)
	}
	if err := mm.EnsureModels(ctx, cfg.PullModels, models...); err != nil {
		return fmt.Errorf("ollama model check failed: %w", err)
	}
	return nil
}

// Init prepares the scratch directory.
func (a *App) Init() error {
	if err := os.MkdirAll(a.cfg.TempDir, 0o755); err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	logger.Debug("Temp dir: %s, vector DB: %s", a.cfg.TempDir, a.cfg.VectorDBPath)
	return nil
}

func (a *App) Answerer() *Answerer { return a.answerer }

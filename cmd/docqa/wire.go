package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/philippgille/chromem-go"

	"docqa/internal/app"
	"docqa/internal/chunker"
	"docqa/internal/command"
	"docqa/internal/embedding"
	"docqa/internal/extractor"
	"docqa/internal/llm"
	"docqa/internal/metrics"
	"docqa/internal/ocr"
	"docqa/internal/vectorstore"
)

// pipeline is everything a document command needs.
type pipeline struct {
	app     *app.App
	store   *vectorstore.Store
	metrics *metrics.Metrics
}

func newPipeline(ctx context.Context) (*pipeline, error) {
	client := llm.NewClient(cfg.OllamaURL, cfg.OllamaModel, cfg.GenerationTimeout, llm.Options{
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
	})
	if err := app.EnsureModels(ctx, cfg, client); err != nil {
		return nil, err
	}

	emb, err := embedding.New(ctx, embeddingBackend(),
		embedding.WithDimensions(cfg.EmbedDimensions),
		embedding.WithBatchSize(cfg.EmbedBatchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	store, err := vectorstore.Open(cfg.VectorDBPath, cfg.VectorDBCompress, emb)
	if err != nil {
		return nil, err
	}

	runner := command.ExecRunner{}
	m := metrics.New()
	a := app.New(cfg, app.Deps{
		Extractor: extractor.New(
			extractor.WithRunner(runner),
			extractor.WithPdftoppm(cfg.PdftoppmPath),
			extractor.WithDPI(cfg.RenderDPI),
			extractor.WithTempDir(cfg.TempDir),
		),
		OCR:       ocr.NewRecognizer(ocrEngine(client, runner)),
		Chunker:   chunker.NewWordChunker(chunker.WithTargetSize(cfg.ChunkSize), chunker.WithOverlap(cfg.ChunkOverlap)),
		Store:     store,
		Generator: client,
		Metrics:   m,
		Prompts:   prompts,
	})
	if err := a.Init(); err != nil {
		return nil, err
	}
	return &pipeline{app: a, store: store, metrics: m}, nil
}

func embeddingBackend() embedding.Backend {
	if cfg.EmbedAPI == "embeddings" {
		return embedding.Func(chromem.NewEmbeddingFuncOllama(cfg.OllamaEmbedModel, strings.TrimRight(cfg.OllamaURL, "/")+"/api"))
	}
	return embedding.NewOllama(cfg.OllamaURL, cfg.OllamaEmbedModel)
}

func ocrEngine(client *llm.Client, runner command.Runner) ocr.Engine {
	if cfg.OCREngine == "ollama" {
		return ocr.NewVision(client.WithModel(cfg.OCRModel), prompts.OCR)
	}
	return ocr.NewTesseract(runner, cfg.TesseractPath)
}

// openStore opens the vector database for collection management only.
func openStore() (*vectorstore.Store, error) {
	return vectorstore.Open(cfg.VectorDBPath, cfg.VectorDBCompress, nil)
}

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	OllamaURL        string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel      string `env:"OLLAMA_MODEL" envDefault:"llama3"`
	OllamaEmbedModel string `env:"OLLAMA_EMBED_MODEL" envDefault:"nomic-embed-text"`
	PullModels       bool   `env:"PULL_MODELS" envDefault:"true"`

	// EmbedAPI selects the Ollama embedding endpoint: "embed" batches texts,
	// "embeddings" is the older one-text-per-request API.
	EmbedAPI        string `env:"EMBED_API" envDefault:"embed"`
	EmbedDimensions int    `env:"EMBED_DIMENSIONS" envDefault:"0"`
	EmbedBatchSize  int    `env:"EMBED_BATCH_SIZE" envDefault:"32"`

	VectorDBPath     string `env:"VECTOR_DB_PATH" envDefault:"./vectordb"`
	VectorDBCompress bool   `env:"VECTOR_DB_COMPRESS" envDefault:"false"`
	TempDir          string `env:"TEMP_DIR" envDefault:"./temp"`

	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"512"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"128"`

	// Native text below this many non-whitespace characters triggers OCR.
	OCRFallbackThreshold int    `env:"OCR_FALLBACK_THRESHOLD" envDefault:"100"`
	OCREngine            string `env:"OCR_ENGINE" envDefault:"tesseract"`
	OCRModel             string `env:"OCR_MODEL" envDefault:"llava"`
	TesseractPath        string `env:"TESSERACT_PATH" envDefault:"tesseract"`
	PdftoppmPath         string `env:"PDFTOPPM_PATH" envDefault:"pdftoppm"`
	RenderDPI            int    `env:"RENDER_DPI" envDefault:"300"`

	RetrievalK        int           `env:"RETRIEVAL_K" envDefault:"5"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`
	Temperature       float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	TopP              float64       `env:"LLM_TOP_P" envDefault:"0.9"`
	MaxTokens         int           `env:"LLM_MAX_TOKENS" envDefault:"1024"`

	PromptsFile string `env:"PROMPTS_FILE"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8000"`
}

func Init(cfg interface{}) error {
	return env.Parse(cfg)
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := Init(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize))
	}
	if c.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP must not be negative, got %d", c.ChunkOverlap))
	}
	if c.RetrievalK <= 0 {
		errs = append(errs, fmt.Errorf("RETRIEVAL_K must be positive, got %d", c.RetrievalK))
	}
	if c.EmbedBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("EMBED_BATCH_SIZE must be positive, got %d", c.EmbedBatchSize))
	}
	if c.RenderDPI <= 0 {
		errs = append(errs, fmt.Errorf("RENDER_DPI must be positive, got %d", c.RenderDPI))
	}
	if c.GenerationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("GENERATION_TIMEOUT must be positive, got %s", c.GenerationTimeout))
	}
	switch c.OCREngine {
	case "tesseract", "ollama":
	default:
		errs = append(errs, fmt.Errorf("OCR_ENGINE must be tesseract or ollama, got %q", c.OCREngine))
	}
	switch c.EmbedAPI {
	case "embed", "embeddings":
	default:
		errs = append(errs, fmt.Errorf("EMBED_API must be embed or embeddings, got %q", c.EmbedAPI))
	}
	return errors.Join(errs...)
}

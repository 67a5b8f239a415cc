package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, 512, cfg.ChunkSize)
	assert.Equal(t, 128, cfg.ChunkOverlap)
	assert.Equal(t, 100, cfg.OCRFallbackThreshold)
	assert.Equal(t, 5, cfg.RetrievalK)
	assert.Equal(t, 60*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 300, cfg.RenderDPI)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	assert.InDelta(t, 0.9, cfg.TopP, 1e-9)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, "embed", cfg.EmbedAPI)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "256")
	t.Setenv("CHUNK_OVERLAP", "16")
	t.Setenv("GENERATION_TIMEOUT", "5s")
	t.Setenv("OCR_ENGINE", "ollama")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.ChunkSize)
	assert.Equal(t, 16, cfg.ChunkOverlap)
	assert.Equal(t, 5*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, "ollama", cfg.OCREngine)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, "CHUNK_SIZE"},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, "CHUNK_OVERLAP"},
		{"zero k", func(c *Config) { c.RetrievalK = 0 }, "RETRIEVAL_K"},
		{"unknown engine", func(c *Config) { c.OCREngine = "paddle" }, "OCR_ENGINE"},
		{"unknown embed api", func(c *Config) { c.EmbedAPI = "vectors" }, "EMBED_API"},
		{"zero timeout", func(c *Config) { c.GenerationTimeout = 0 }, "GENERATION_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			require.NoError(t, Init(cfg))
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadPrompts(t *testing.T) {
	t.Run("empty path gives defaults", func(t *testing.T) {
		p, err := LoadPrompts("")
		require.NoError(t, err)
		assert.Equal(t, DefaultPrompts(), p)
	})

	t.Run("missing file gives defaults", func(t *testing.T) {
		p, err := LoadPrompts(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultPrompts(), p)
	})

	t.Run("partial override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rag: |\n  Q={question}\n  C={context}\n"), 0o644))

		p, err := LoadPrompts(path)
		require.NoError(t, err)
		assert.Equal(t, "Q={question}\nC={context}\n", p.RAG)
		assert.Equal(t, DefaultSummarizationPrompt, p.Summarization)
	})

	t.Run("override missing placeholder", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("summarization: just summarize\n"), 0o644))

		_, err := LoadPrompts(path)
		assert.Error(t, err)
	})
}

func TestFill(t *testing.T) {
	out := Fill("Context:\n{context}\nQ: {question}", map[string]string{
		"context":  "Chunk 1:\nsays {question}",
		"question": "why?",
	})
	assert.Equal(t, "Context:\nChunk 1:\nsays {question}\nQ: why?", out)
}

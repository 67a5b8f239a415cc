package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModels struct {
	pull   bool
	models []string
	err    error
}

func (f *fakeModels) EnsureModels(_ context.Context, pull bool, models ...string) error {
	f.pull = pull
	f.models = models
	return f.err
}

func TestEnsureModels(t *testing.T) {
	t.Run("tesseract engine skips the vision model", func(t *testing.T) {
		cfg := testConfig()
		cfg.OllamaModel, cfg.OllamaEmbedModel, cfg.OCRModel = "llama3", "nomic-embed-text", "llava"
		cfg.OCREngine, cfg.PullModels = "tesseract", true

		mm := &fakeModels{}
		require.NoError(t, EnsureModels(context.Background(), cfg, mm))
		assert.True(t, mm.pull)
		assert.Equal(t, []string{"llama3", "nomic-embed-text"}, mm.models)
	})

	t.Run("ollama engine adds the vision model", func(t *testing.T) {
		cfg := testConfig()
		cfg.OllamaModel, cfg.OllamaEmbedModel, cfg.OCRModel = "llama3", "nomic-embed-text", "llava"
		cfg.OCREngine = "ollama"

		mm := &fakeModels{}
		require.NoError(t, EnsureModels(context.Background(), cfg, mm))
		assert.Equal(t, []string{"llama3", "nomic-embed-text", "llava"}, mm.models)
	})

	t.Run("failure is wrapped", func(t *testing.T) {
		boom := errors.New("connection refused")
		err := EnsureModels(context.Background(), testConfig(), &fakeModels{err: boom})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "ollama model check failed")
	})
}

func TestInit_CreatesTempDir(t *testing.T) {
	cfg := testConfig()
	cfg.TempDir = filepath.Join(t.TempDir(), "scratch", "nested")

	a := New(cfg, Deps{})
	require.NoError(t, a.Init())

	info, err := os.Stat(cfg.TempDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend returns [len(text), 1, 0] for every text and fails on any
// batch containing "fail".
type stubBackend struct {
	mu      sync.Mutex
	batches [][]string
	dims    int
}

func (s *stubBackend) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	s.batches = append(s.batches, texts)
	s.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		if strings.Contains(t, "fail") {
			return nil, errors.New("backend down")
		}
		v := make([]float32, s.dims)
		v[0] = float32(len(t))
		out[i] = v
	}
	return out, nil
}

func TestNew_ProbesDimension(t *testing.T) {
	backend := &stubBackend{dims: 3}
	e, err := New(context.Background(), backend)
	require.NoError(t, err)

	assert.Equal(t, 3, e.Dimensions())
	assert.Len(t, backend.batches, 1)
}

func TestNew_ConfiguredDimensionSkipsProbe(t *testing.T) {
	backend := &stubBackend{dims: 3}
	e, err := New(context.Background(), backend, WithDimensions(3))
	require.NoError(t, err)

	assert.Equal(t, 3, e.Dimensions())
	assert.Empty(t, backend.batches)
}

func TestNew_ProbeFailure(t *testing.T) {
	_, err := New(context.Background(), Func(func(context.Context, string) ([]float32, error) {
		return nil, errors.New("no model")
	}))
	assert.ErrorIs(t, err, ErrEmbedding)
}

func TestEmbed(t *testing.T) {
	e, err := New(context.Background(), &stubBackend{dims: 3}, WithDimensions(3))
	require.NoError(t, err)

	v, err := e.Embed(context.Background(), "abcd")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 0, 0}, v)

	v, err = e.Embed(context.Background(), "   \n")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0}, v)

	v, err = e.Embed(context.Background(), "please fail")
	assert.ErrorIs(t, err, ErrEmbedding)
	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestEmbed_WrongDimension(t *testing.T) {
	e, err := New(context.Background(), &stubBackend{dims: 5}, WithDimensions(3))
	require.NoError(t, err)

	v, err := e.Embed(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestEmbedBatch_FiltersBlanks(t *testing.T) {
	e, err := New(context.Background(), &stubBackend{dims: 2}, WithDimensions(2))
	require.NoError(t, err)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "", "  ", "bbb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {3, 0}}, vecs)

	vecs, err = e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestEmbedBatch_SubBatchesAndFailures(t *testing.T) {
	backend := &stubBackend{dims: 2}
	e, err := New(context.Background(), backend, WithDimensions(2), WithBatchSize(2), WithConcurrency(1))
	require.NoError(t, err)

	texts := []string{"a", "bb", "fail", "dddd", "eeeee"}
	vecs, err := e.EmbedBatch(context.Background(), texts)

	assert.ErrorIs(t, err, ErrEmbedding)
	require.Len(t, vecs, len(texts))
	assert.Equal(t, [][]float32{{1, 0}, {2, 0}, {0, 0}, {0, 0}, {5, 0}}, vecs)
	assert.Len(t, backend.batches, 3)
	for _, v := range vecs {
		assert.Len(t, v, e.Dimensions())
	}
}

func TestEmbeddingFunc(t *testing.T) {
	e, err := New(context.Background(), &stubBackend{dims: 2}, WithDimensions(2))
	require.NoError(t, err)
	fn := e.EmbeddingFunc()

	v, err := fn(context.Background(), "xyz")
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 0}, v)

	v, err = fn(context.Background(), "fail")
	assert.Error(t, err)
	assert.Nil(t, v)
}

func TestOllama_Embed(t *testing.T) {
	var got struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"embeddings": [[0.1, 0.2], [0.3, 0.4]]}`))
	}))
	defer srv.Close()

	vecs, err := NewOllama(srv.URL+"/", "nomic-embed-text").Embed(context.Background(), []string{"one", "two"})
	require.NoError(t, err)

	assert.Equal(t, "nomic-embed-text", got.Model)
	assert.Equal(t, []string{"one", "two"}, got.Input)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, vecs)
}

func TestOllama_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	e, err := New(context.Background(), NewOllama(srv.URL, "missing"), WithDimensions(4))
	require.NoError(t, err)

	v, err := e.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmbedding)
	assert.ErrorContains(t, err, "status 404")
	assert.Equal(t, make([]float32, 4), v)
}

// Package embedding turns text into fixed-length vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"

	"docqa/internal/logger"
)

// ErrEmbedding wraps backend failures. Callers still receive zero vectors
// of the right shape alongside it.
var ErrEmbedding = errors.New("embedding failed")

const (
	DefaultBatchSize   = 32
	DefaultConcurrency = 4
)

// Backend computes embeddings for a batch of non-empty texts, one vector
// per input in order.
type Backend interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder wraps a Backend with a fixed dimension, blank-input handling and
// batching.
type Embedder struct {
	backend     Backend
	dims        int
	batchSize   int
	concurrency int
}

type Option func(*Embedder)

// WithDimensions fixes the vector length and skips the probe call.
func WithDimensions(n int) Option {
	return func(e *Embedder) {
		if n > 0 {
			e.dims = n
		}
	}
}

func WithBatchSize(n int) Option {
	return func(e *Embedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithConcurrency bounds the number of sub-batches in flight.
func WithConcurrency(n int) Option {
	return func(e *Embedder) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates an Embedder. Unless WithDimensions is given, the backend is
// asked once for a probe embedding to learn the dimension.
func New(ctx context.Context, backend Backend, opts ...Option) (*Embedder, error) {
	e := &Embedder{
		backend:     backend,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.dims == 0 {
		vecs, err := backend.Embed(ctx, []string{"dimension probe"})
		if err != nil {
			return nil, fmt.Errorf("%w: probe dimension: %w", ErrEmbedding, err)
		}
		if len(vecs) != 1 || len(vecs[0]) == 0 {
			return nil, fmt.Errorf("%w: probe returned no vector", ErrEmbedding)
		}
		e.dims = len(vecs[0])
		logger.Debug("Embedding dimension probed: %d", e.dims)
	}
	return e, nil
}

// Dimensions is the length of every vector this Embedder returns.
func (e *Embedder) Dimensions() int { return e.dims }

func (e *Embedder) zero() []float32 { return make([]float32, e.dims) }

// Embed returns the vector for text. Blank text yields a zero vector and no
// error; a backend failure yields a zero vector and the error.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return e.zero(), nil
	}
	vecs, err := e.backend.Embed(ctx, []string{text})
	if err != nil {
		logger.Error("Error generating embedding: %v", err)
		return e.zero(), fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if len(vecs) != 1 {
		return e.zero(), fmt.Errorf("%w: backend returned %d vectors for 1 input", ErrEmbedding, len(vecs))
	}
	return e.checked(vecs[0]), nil
}

// EmbedBatch drops blank entries and returns one vector per remaining text
// in order. Sub-batches that fail contribute zero vectors and their errors
// are joined into the returned error.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	kept := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			kept = append(kept, t)
		}
	}
	out := make([][]float32, len(kept))
	if len(kept) == 0 {
		return out, nil
	}

	sem := make(chan struct{}, e.concurrency)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for start := 0; start < len(kept); start += e.batchSize {
		end := min(start+e.batchSize, len(kept))

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			vecs, err := e.backend.Embed(ctx, kept[start:end])
			if err == nil && len(vecs) != end-start {
				err = fmt.Errorf("backend returned %d vectors for %d inputs", len(vecs), end-start)
			}
			if err != nil {
				logger.Error("Error generating embeddings for batch %d-%d: %v", start, end-1, err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%w: batch %d-%d: %w", ErrEmbedding, start, end-1, err))
				mu.Unlock()
				for i := start; i < end; i++ {
					out[i] = e.zero()
				}
				return
			}
			for i, v := range vecs {
				out[start+i] = e.checked(v)
			}
		}(start, end)
	}
	wg.Wait()

	return out, errors.Join(errs...)
}

// checked replaces a vector of the wrong length with a zero vector.
func (e *Embedder) checked(v []float32) []float32 {
	if len(v) != e.dims {
		logger.Warn("Embedding has %d dimensions, expected %d; using zero vector", len(v), e.dims)
		return e.zero()
	}
	return v
}

// EmbeddingFunc adapts the Embedder to chromem-go. Unlike Embed it reports
// failures as errors only, so chromem never stores a zero vector silently.
func (e *Embedder) EmbeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

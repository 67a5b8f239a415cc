// Package vectorstore keeps chunk embeddings in named chromem-go collections
// and answers nearest-neighbour queries.
package vectorstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"
	"strconv"

	"github.com/philippgille/chromem-go"

	"docqa/internal/chunker"
	"docqa/internal/embedding"
	"docqa/internal/logger"
)

var (
	// ErrStore wraps failures of the underlying database.
	ErrStore = errors.New("vector store failed")

	// ErrCollectionNotFound indicates a query or delete on an unknown collection.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrNoEmbedder is returned by AddDocuments and Query on a store opened
	// without an embedder.
	ErrNoEmbedder = errors.New("store has no embedder")
)

// Embedder is the subset of embedding.Embedder the store needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbeddingFunc() chromem.EmbeddingFunc
}

var _ Embedder = (*embedding.Embedder)(nil)

// MaxDistance is the largest cosine distance, given to chunks whose
// similarity is undefined.
const MaxDistance float32 = 2

// Result is one retrieved chunk. Distance is 1 - cosine similarity.
type Result struct {
	ID       string
	Text     string
	Metadata map[string]string
	Distance float32
}

type Store struct {
	db  *chromem.DB
	emb Embedder
}

// Open loads or creates a persistent database under dir. emb may be nil
// when the store is only used to manage collections.
func Open(dir string, compress bool, emb Embedder) (*Store, error) {
	db, err := chromem.NewPersistentDB(dir, compress)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStore, dir, err)
	}
	logger.Debug("Vector database opened at %s with %d collections", dir, len(db.ListCollections()))
	return &Store{db: db, emb: emb}, nil
}

// NewInMemory creates a store that is lost when the process exits.
func NewInMemory(emb Embedder) *Store {
	return &Store{db: chromem.NewDB(), emb: emb}
}

func (s *Store) embeddingFunc() chromem.EmbeddingFunc {
	if s.emb == nil {
		return nil
	}
	return s.emb.EmbeddingFunc()
}

// CreateCollection makes name available. With overwrite an existing
// collection is dropped first; otherwise it is reused.
func (s *Store) CreateCollection(name string, overwrite bool) error {
	if overwrite {
		if err := s.db.DeleteCollection(name); err != nil {
			return fmt.Errorf("%w: delete collection %s: %w", ErrStore, name, err)
		}
	} else if s.db.GetCollection(name, s.embeddingFunc()) != nil {
		return nil
	}

	if _, err := s.db.CreateCollection(name, map[string]string{}, s.embeddingFunc()); err != nil {
		return fmt.Errorf("%w: create collection %s: %w", ErrStore, name, err)
	}
	logger.Debug("Collection %s created", name)
	return nil
}

// AddDocuments embeds the chunks and upserts them as chunk_<index>.
// Chunks whose text is blank are skipped.
func (s *Store) AddDocuments(ctx context.Context, name string, chunks []chunker.Chunk) error {
	if s.emb == nil {
		return ErrNoEmbedder
	}
	coll := s.db.GetCollection(name, s.embeddingFunc())
	if coll == nil {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}

	texts := make([]string, 0, len(chunks))
	kept := make([]chunker.Chunk, 0, len(chunks))
	for _, ch := range chunks {
		if ch.Text == "" {
			continue
		}
		texts = append(texts, ch.Text)
		kept = append(kept, ch)
	}
	if len(kept) == 0 {
		return nil
	}

	vecs, err := s.emb.EmbedBatch(ctx, texts)
	if err != nil {
		if !errors.Is(err, embedding.ErrEmbedding) || len(vecs) != len(kept) {
			logger.Error("Error adding documents to collection: %v", err)
			return fmt.Errorf("%w: embed chunks: %w", ErrStore, err)
		}
		// Failed chunks carry zero vectors and rank last in Query.
		logger.Warn("Some chunks of %s were stored without embeddings: %v", name, err)
	}
	if len(vecs) != len(kept) {
		return fmt.Errorf("%w: %d embeddings for %d chunks", ErrStore, len(vecs), len(kept))
	}

	docs := make([]chromem.Document, len(kept))
	for i, ch := range kept {
		docs[i] = chromem.Document{
			ID:        "chunk_" + strconv.Itoa(ch.Index),
			Content:   ch.Text,
			Embedding: vecs[i],
			Metadata: map[string]string{
				"chunk_id":  strconv.Itoa(ch.Index),
				"start_idx": strconv.Itoa(ch.Start),
				"end_idx":   strconv.Itoa(ch.End),
			},
		}
	}

	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		logger.Error("Error adding documents to collection: %v", err)
		return fmt.Errorf("%w: add documents: %w", ErrStore, err)
	}
	logger.Info("💾 Stored %d chunks in collection %s", len(docs), name)
	return nil
}

// Query returns up to k chunks of the collection closest to text, nearest
// first. Any failure yields an empty slice and the error.
func (s *Store) Query(ctx context.Context, name, text string, k int) ([]Result, error) {
	if s.emb == nil {
		return []Result{}, ErrNoEmbedder
	}
	coll := s.db.GetCollection(name, s.embeddingFunc())
	if coll == nil {
		return []Result{}, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}

	if k <= 0 || coll.Count() == 0 {
		return []Result{}, nil
	}

	emb, err := s.emb.Embed(ctx, text)
	if err != nil {
		logger.Error("Error querying collection: %v", err)
		return []Result{}, fmt.Errorf("%w: embed query: %w", ErrStore, err)
	}

	// Rank the whole collection here: chunks stored with zero vectors have
	// NaN similarity, which chromem's top-k selection does not order.
	res, err := coll.QueryEmbedding(ctx, emb, coll.Count(), nil, nil)
	if err != nil {
		logger.Error("Error querying collection: %v", err)
		return []Result{}, fmt.Errorf("%w: query: %w", ErrStore, err)
	}

	results := make([]Result, len(res))
	for i, r := range res {
		results[i] = Result{
			ID:       r.ID,
			Text:     r.Content,
			Metadata: r.Metadata,
			Distance: distance(r.Similarity),
		}
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return results[:min(k, len(results))], nil
}

// distance converts cosine similarity to 1 - similarity. An undefined
// similarity, from a zero vector on either side, maps to MaxDistance.
func distance(similarity float32) float32 {
	if math.IsNaN(float64(similarity)) {
		return MaxDistance
	}
	return 1 - similarity
}

// Count returns the number of chunks in a collection, 0 if it does not exist.
func (s *Store) Count(name string) int {
	coll := s.db.GetCollection(name, s.embeddingFunc())
	if coll == nil {
		return 0
	}
	return coll.Count()
}

func (s *Store) DeleteCollection(name string) error {
	if s.db.GetCollection(name, s.embeddingFunc()) == nil {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("%w: delete collection %s: %w", ErrStore, name, err)
	}
	return nil
}

// ListCollections returns collection names with their chunk counts, sorted
// by name.
func (s *Store) ListCollections() []CollectionInfo {
	colls := s.db.ListCollections()
	out := make([]CollectionInfo, 0, len(colls))
	for name, c := range colls {
		out = append(out, CollectionInfo{Name: name, Count: c.Count()})
	}
	slices.SortFunc(out, func(a, b CollectionInfo) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

type CollectionInfo struct {
	Name  string
	Count int
}

// Export writes the named collections (all when none are given) to a
// gob snapshot file.
func (s *Store) Export(path string, compress bool, collections ...string) error {
	if err := s.db.ExportToFile(path, compress, "", collections...); err != nil {
		return fmt.Errorf("%w: export: %w", ErrStore, err)
	}
	return nil
}

// Import loads collections from a snapshot written by Export.
func (s *Store) Import(path string, collections ...string) error {
	if err := s.db.ImportFromFile(path, "", collections...); err != nil {
		return fmt.Errorf("%w: import: %w", ErrStore, err)
	}
	return nil
}

package app

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/embedding"
	"docqa/internal/extractor"
	"docqa/internal/vectorstore"
)

type fakeExtractor struct {
	mu    sync.Mutex
	pages *extractor.Pages
	err   error
	calls int
}

func (f *fakeExtractor) Extract(context.Context, string) (*extractor.Pages, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type fakeOCR struct {
	text  map[int]string
	calls int
}

func (f *fakeOCR) Recognize(_ context.Context, images map[int]string) map[int]string {
	f.calls++
	out := make(map[int]string, len(images))
	for n := range images {
		out[n] = f.text[n]
	}
	return out
}

type fakeStore struct {
	mu        sync.Mutex
	created   []string
	added     map[string][]chunker.Chunk
	results   []vectorstore.Result
	createErr error
	queries   int
}

func (f *fakeStore) CreateCollection(name string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, name)
	return nil
}

func (f *fakeStore) AddDocuments(_ context.Context, name string, chunks []chunker.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.added == nil {
		f.added = make(map[string][]chunker.Chunk)
	}
	f.added[name] = chunks
	return nil
}

func (f *fakeStore) Query(context.Context, string, string, int) ([]vectorstore.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	return f.results, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

var errTransport = errors.New("connection refused")

func testConfig() *config.Config {
	return &config.Config{
		ChunkSize:            512,
		ChunkOverlap:         128,
		OCRFallbackThreshold: 100,
		RetrievalK:           5,
		TempDir:              "",
	}
}

var fixedNow = time.Unix(1700000000, 0)

func newTestApp(deps Deps) *App {
	if deps.Chunker == nil {
		deps.Chunker = chunker.NewWordChunker()
	}
	if deps.Prompts == (config.Prompts{}) {
		deps.Prompts = config.DefaultPrompts()
	}
	a := New(testConfig(), deps)
	a.now = func() time.Time { return fixedNow }
	return a
}

func textPages(pages ...string) *extractor.Pages {
	p := &extractor.Pages{Text: map[int]string{}, Images: map[int]string{}}
	for i, t := range pages {
		p.Text[i] = t
	}
	return p
}

// bagOfWords is a deterministic embedding over hashed words with a constant
// last component so vectors are never zero.
func bagOfWords(_ context.Context, text string) ([]float32, error) {
	const dims = 128
	v := make([]float32, dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,?!\"'")))
		v[h.Sum32()%(dims-1)]++
	}
	v[dims-1] = 0.1
	return v, nil
}

func newMemoryStore(t *testing.T) *vectorstore.Store {
	t.Helper()
	emb, err := embedding.New(context.Background(), embedding.Func(bagOfWords))
	require.NoError(t, err)
	return vectorstore.NewInMemory(emb)
}

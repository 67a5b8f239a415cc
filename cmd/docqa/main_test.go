package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/chunker"
	"docqa/internal/embedding"
	"docqa/internal/vectorstore"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--env-file="}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func constant(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func seedStore(t *testing.T, dir string, names ...string) {
	t.Helper()
	emb, err := embedding.New(context.Background(), embedding.Func(constant), embedding.WithDimensions(2))
	require.NoError(t, err)
	store, err := vectorstore.Open(dir, false, emb)
	require.NoError(t, err)
	for _, name := range names {
		require.NoError(t, store.CreateCollection(name, true))
		require.NoError(t, store.AddDocuments(context.Background(), name, []chunker.Chunk{
			{Index: 0, Text: "first chunk"},
			{Index: 1, Text: "second chunk"},
		}))
	}
}

func TestRootCommandRegistered(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"process", "chat", "ask", "collections", "export", "import", "serve", "watch"} {
		assert.Contains(t, names, want)
	}
}

func TestCollectionsList_Empty(t *testing.T) {
	t.Setenv("VECTOR_DB_PATH", t.TempDir())

	out, err := execute(t, "collections", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No collections.")
}

func TestCollectionsLifecycle(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VECTOR_DB_PATH", dir)
	seedStore(t, dir, "doc_a_1", "doc_b_2")

	out, err := execute(t, "collections", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "doc_a_1\t2 chunks")
	assert.Contains(t, out, "doc_b_2\t2 chunks")

	snapshot := filepath.Join(t.TempDir(), "snapshot.gob")
	_, err = execute(t, "export", snapshot, "doc_a_1")
	require.NoError(t, err)

	out, err = execute(t, "collections", "delete", "doc_a_1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted doc_a_1")

	out, err = execute(t, "collections", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "doc_a_1")

	_, err = execute(t, "import", snapshot)
	require.NoError(t, err)
	out, err = execute(t, "collections", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "doc_a_1\t2 chunks")
}

func TestCollectionsDelete_Unknown(t *testing.T) {
	t.Setenv("VECTOR_DB_PATH", t.TempDir())

	_, err := execute(t, "collections", "delete", "missing")
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("VECTOR_DB_PATH", t.TempDir())
	t.Setenv("CHUNK_SIZE", "0")

	_, err := execute(t, "collections", "list")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "CHUNK_SIZE"))
}

func TestArgValidation(t *testing.T) {
	_, err := execute(t, "process")
	assert.Error(t, err)

	_, err = execute(t, "ask", "only-collection")
	assert.Error(t, err)
}

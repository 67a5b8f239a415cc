package chunker

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleText builds n words of varying length from a fixed seed.
func sampleText(n int) string {
	r := rand.New(rand.NewSource(42))
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("%s%d", strings.Repeat("w", 1+r.Intn(9)), i)
	}
	return strings.Join(words, " ")
}

func TestNewWordChunker(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := NewWordChunker()
		assert.Equal(t, Config{TargetSize: DefaultTargetSize, Overlap: DefaultOverlap}, c.Config())
		assert.Equal(t, "words", c.Name())
	})

	t.Run("options", func(t *testing.T) {
		c := NewWordChunker(WithTargetSize(100), WithOverlap(3))
		assert.Equal(t, Config{TargetSize: 100, Overlap: 3}, c.Config())
	})

	t.Run("invalid options ignored", func(t *testing.T) {
		c := NewWordChunker(WithTargetSize(0), WithOverlap(-1))
		assert.Equal(t, Config{TargetSize: DefaultTargetSize, Overlap: DefaultOverlap}, c.Config())
	})
}

func TestChunk_Empty(t *testing.T) {
	c := NewWordChunker()
	for _, in := range []string{"", "   ", "\n\t  \n"} {
		chunks := c.Chunk(in)
		assert.NotNil(t, chunks)
		assert.Empty(t, chunks, "input %q", in)
	}
}

func TestChunk_SmallText(t *testing.T) {
	c := NewWordChunker(WithTargetSize(100), WithOverlap(2))
	chunks := c.Chunk("  It was   a dark\nand stormy night. ")

	require.Len(t, chunks, 1)
	assert.Equal(t, Chunk{Index: 0, Start: 0, End: 6, Text: "It was a dark and stormy night."}, chunks[0])
}

func TestChunk_Boundary(t *testing.T) {
	// Each word serializes to 5 bytes, so four words fill a 20 byte chunk exactly.
	c := NewWordChunker(WithTargetSize(20), WithOverlap(2))
	chunks := c.Chunk("aaaa bbbb cccc dddd eeee ffff")

	require.Len(t, chunks, 2)
	assert.Equal(t, Chunk{Index: 0, Start: 0, End: 3, Text: "aaaa bbbb cccc dddd"}, chunks[0])
	assert.Equal(t, Chunk{Index: 1, Start: 2, End: 5, Text: "cccc dddd eeee ffff"}, chunks[1])
}

func TestChunk_OverlapClampedToChunkLength(t *testing.T) {
	c := NewWordChunker(WithTargetSize(20), WithOverlap(10))
	chunks := c.Chunk("aaaa bbbb cccc dddd eeee ffff")

	require.Len(t, chunks, 3)
	assert.Equal(t, "aaaa bbbb cccc dddd", chunks[0].Text)
	assert.Equal(t, "aaaa bbbb cccc dddd eeee", chunks[1].Text)
	assert.Equal(t, "aaaa bbbb cccc dddd eeee ffff", chunks[2].Text)
	assert.Equal(t, 0, chunks[2].Start)
	assert.Equal(t, 5, chunks[2].End)
}

func TestChunk_WordLongerThanTarget(t *testing.T) {
	c := NewWordChunker(WithTargetSize(5), WithOverlap(0))
	chunks := c.Chunk("supercalifragilistic expialidocious ok")

	require.Len(t, chunks, 3)
	assert.Equal(t, "supercalifragilistic", chunks[0].Text)
	assert.Equal(t, "expialidocious", chunks[1].Text)
	assert.Equal(t, "ok", chunks[2].Text)
}

func TestChunk_Coverage(t *testing.T) {
	text := sampleText(700)
	words := strings.Fields(text)

	for _, overlap := range []int{0, 1, 5, 20} {
		t.Run(fmt.Sprintf("overlap=%d", overlap), func(t *testing.T) {
			chunks := NewWordChunker(WithTargetSize(120), WithOverlap(overlap)).Chunk(text)
			require.NotEmpty(t, chunks)

			assert.Equal(t, 0, chunks[0].Start)
			assert.Equal(t, len(words)-1, chunks[len(chunks)-1].End)
			for i, ch := range chunks {
				assert.Equal(t, i, ch.Index)
				assert.Equal(t, strings.Join(words[ch.Start:ch.End+1], " "), ch.Text)
				if i > 0 {
					assert.LessOrEqual(t, ch.Start, chunks[i-1].End+1, "gap before chunk %d", i)
					assert.Greater(t, ch.End, chunks[i-1].End)
				}
			}
		})
	}
}

func TestChunk_SizeBound(t *testing.T) {
	const target = 120
	text := sampleText(700)
	words := strings.Fields(text)
	chunks := NewWordChunker(WithTargetSize(target), WithOverlap(3)).Chunk(text)
	require.Greater(t, len(chunks), 2)

	for _, ch := range chunks[:len(chunks)-1] {
		size := serializedSize(strings.Fields(ch.Text))
		assert.LessOrEqual(t, size, target, "chunk %d", ch.Index)

		next := words[ch.End+1]
		assert.Greater(t, size+len(next)+1, target, "chunk %d closed before it was full", ch.Index)
	}
}

func TestChunk_OverlapBound(t *testing.T) {
	text := sampleText(400)

	for _, overlap := range []int{0, 4, 1000} {
		t.Run(fmt.Sprintf("overlap=%d", overlap), func(t *testing.T) {
			chunks := NewWordChunker(WithTargetSize(80), WithOverlap(overlap)).Chunk(text)
			require.Greater(t, len(chunks), 1)

			for k := 0; k+1 < len(chunks); k++ {
				prev, next := chunks[k], chunks[k+1]
				prevLen := prev.End - prev.Start + 1
				carried := prev.End - next.Start + 1
				assert.Equal(t, min(overlap, prevLen), carried, "between chunk %d and %d", k, k+1)
			}
		})
	}
}

func TestChunk_FiveHundredWords(t *testing.T) {
	text := sampleText(500)
	chunks := NewWordChunker(WithTargetSize(512), WithOverlap(128)).Chunk(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].Index, chunks[i-1].Index)
	}
}

func TestTailWords(t *testing.T) {
	words := []string{"a", "b", "c"}
	assert.Nil(t, TailWords(words, 0))
	assert.Equal(t, []string{"c"}, TailWords(words, 1))
	assert.Equal(t, []string{"a", "b", "c"}, TailWords(words, 5))

	tail := TailWords(words, 2)
	tail[0] = "x"
	assert.Equal(t, "b", words[1])
}

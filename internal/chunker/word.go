package chunker

import (
	"strings"

	"docqa/internal/logger"
)

const (
	DefaultTargetSize = 512
	DefaultOverlap    = 128
)

// WordChunker greedily packs whitespace-separated words into chunks and
// seeds each new chunk with the tail words of the previous one.
type WordChunker struct {
	config Config
}

// Option configures a WordChunker.
type Option func(*WordChunker)

// WithTargetSize sets the chunk size limit. Non-positive values are ignored.
func WithTargetSize(size int) Option {
	return func(c *WordChunker) {
		if size > 0 {
			c.config.TargetSize = size
		}
	}
}

// WithOverlap sets the number of carried words. Negative values are ignored.
func WithOverlap(words int) Option {
	return func(c *WordChunker) {
		if words >= 0 {
			c.config.Overlap = words
		}
	}
}

func NewWordChunker(opts ...Option) *WordChunker {
	c := &WordChunker{config: Config{
		TargetSize: DefaultTargetSize,
		Overlap:    DefaultOverlap,
	}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *WordChunker) Name() string {
	return "words"
}

// Config returns the effective parameters.
func (c *WordChunker) Config() Config {
	return c.config
}

// Chunk splits text. A chunk is closed as soon as the next word would push
// its serialized size (word bytes plus one separator each) past TargetSize;
// the last min(Overlap, len(chunk)) words then start the next chunk. The
// final accumulation is always emitted, however short.
func (c *WordChunker) Chunk(text string) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []Chunk{}
	}

	var chunks []Chunk
	current := make([]string, 0, 64)
	size := 0

	for i, word := range words {
		wordSize := len(word) + 1

		if size+wordSize > c.config.TargetSize && len(current) > 0 {
			chunks = append(chunks, Chunk{
				Index: len(chunks),
				Start: i - len(current),
				End:   i - 1,
				Text:  strings.Join(current, " "),
			})

			carry := TailWords(current, c.config.Overlap)
			current = append(make([]string, 0, len(carry)+64), carry...)
			size = serializedSize(current)
		}

		current = append(current, word)
		size += wordSize
	}

	if len(current) > 0 {
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: len(words) - len(current),
			End:   len(words) - 1,
			Text:  strings.Join(current, " "),
		})
	}

	logger.Debug("✅ [%s] Created %d chunks from %d words", c.Name(), len(chunks), len(words))
	return chunks
}

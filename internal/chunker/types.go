package chunker

// Chunk is a contiguous run of words from a document.
type Chunk struct {
	Index int    // dense, zero-based, in emission order
	Start int    // first word offset in the source word sequence
	End   int    // last word offset (inclusive)
	Text  string // words joined by single spaces
}

// Chunker splits text into retrieval units.
type Chunker interface {
	Chunk(text string) []Chunk

	// Name returns the chunker name for logging.
	Name() string
}

// Config holds the shared chunking parameters.
type Config struct {
	TargetSize int // serialized chunk size in bytes, one separator per word
	Overlap    int // words carried from the tail of the previous chunk
}

package chunker

// TailWords returns the last n words, clamped to len(words). The result
// shares no memory with the input.
func TailWords(words []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(words) {
		n = len(words)
	}
	tail := make([]string, n)
	copy(tail, words[len(words)-n:])
	return tail
}

func serializedSize(words []string) int {
	size := 0
	for _, w := range words {
		size += len(w) + 1
	}
	return size
}

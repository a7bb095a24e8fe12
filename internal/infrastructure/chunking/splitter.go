package chunking

const DefaultChunkSize = 4096

// Splitter cuts text into consecutive fixed-size rune slices. Chunks never
// overlap and concatenate back to the input; the last one may be shorter.
type Splitter struct {
	ChunkSize int
}

func NewSplitter(chunkSize int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Splitter{ChunkSize: chunkSize}
}

func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}

	out := make([]string, 0, len(text)/s.ChunkSize+1)
	start, count := 0, 0
	for idx := range text {
		if count == s.ChunkSize {
			out = append(out, text[start:idx])
			start, count = idx, 0
		}
		count++
	}
	return append(out, text[start:])
}

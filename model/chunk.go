package model

import "fmt"

// TextChunk is a sentence-level unit assembled from text runs, globally
// indexed for citation. Index values are contiguous starting at 0 in
// document reading order: page ascending, then vertical position ascending,
// then horizontal position ascending.
type TextChunk struct {
	Index      int
	Text       string
	Page       int
	BBox       BBox
	IsHeading  bool
	IsBold     bool
	Confidence float64 // 0-1
}

// CitationMap provides O(1) lookup from a chunk index to its TextChunk.
// It is built once per document by the indexer and is read-only afterwards.
type CitationMap struct {
	chunks []TextChunk
}

// NewCitationMap builds a citation map from an indexed chunk sequence. The
// chunks must already carry contiguous indices starting at 0; a gap or
// repeat is a construction error.
func NewCitationMap(chunks []TextChunk) (*CitationMap, error) {
	for i, c := range chunks {
		if c.Index != i {
			return nil, fmt.Errorf("chunk at position %d has index %d, want %d", i, c.Index, i)
		}
	}
	return &CitationMap{chunks: chunks}, nil
}

// Get returns the chunk with the given index.
func (m *CitationMap) Get(index int) (TextChunk, bool) {
	if index < 0 || index >= len(m.chunks) {
		return TextChunk{}, false
	}
	return m.chunks[index], true
}

// Len returns the number of chunks in the map.
func (m *CitationMap) Len() int {
	return len(m.chunks)
}

// Chunks returns the full chunk sequence in index order. The returned slice
// is shared; callers must not modify it.
func (m *CitationMap) Chunks() []TextChunk {
	return m.chunks
}

package knowledge

import (
	"fmt"

	"askhr/internal/domain"
	"askhr/internal/vectorstore/memory"
)

// KnowledgeBase is an immutable set of chunks plus the vector space fitted
// on exactly those chunks.
type KnowledgeBase struct {
	space domain.VectorSpace
	index *memory.Index
}

func emptyKnowledgeBase() *KnowledgeBase {
	ix, _ := memory.NewIndex(nil, nil)
	return &KnowledgeBase{index: ix}
}

// newKnowledgeBase fits a fresh vector space on chunks and embeds each one.
func newKnowledgeBase(vectorizer domain.Vectorizer, chunks []domain.Chunk) (*KnowledgeBase, error) {
	if len(chunks) == 0 {
		return emptyKnowledgeBase(), nil
	}
	corpus := make([]string, len(chunks))
	for i, ch := range chunks {
		corpus[i] = ch.Text
	}
	space, err := vectorizer.Fit(corpus)
	if err != nil {
		return nil, fmt.Errorf("fit %s vectorizer: %w", vectorizer.Name(), err)
	}
	vectors := make([]domain.SparseVector, len(corpus))
	for i, text := range corpus {
		vectors[i] = space.Transform(text)
	}
	ix, err := memory.NewIndex(chunks, vectors)
	if err != nil {
		return nil, err
	}
	return &KnowledgeBase{space: space, index: ix}, nil
}

// Len returns the number of chunks.
func (kb *KnowledgeBase) Len() int { return kb.index.Len() }

// Empty reports whether there is nothing to search.
func (kb *KnowledgeBase) Empty() bool { return kb.space == nil || kb.index.Len() == 0 }

// Documents returns a copy of the chunk sequence.
func (kb *KnowledgeBase) Documents() []domain.Chunk { return kb.index.Chunks() }

// Vocabulary returns the fitted terms, or nil for an empty knowledge base.
func (kb *KnowledgeBase) Vocabulary() []string {
	if kb.space == nil {
		return nil
	}
	return kb.space.Vocabulary()
}

// RetrieveTopK returns the k chunks most similar to query, best first.
// It never fails: an empty knowledge base yields no results and a query with
// no known terms scores zero against every chunk.
func (kb *KnowledgeBase) RetrieveTopK(query string, k int) []domain.ScoredChunk {
	if kb.Empty() || k <= 0 {
		return []domain.ScoredChunk{}
	}
	return kb.index.Search(kb.space.Transform(query), k)
}

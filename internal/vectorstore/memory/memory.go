package memory

import (
	"errors"
	"math"
	"sort"

	"askhr/internal/domain"
)

// Index is an immutable in-memory vector index using brute-force cosine
// similarity. Chunks and vectors are parallel slices in stored order.
type Index struct {
	chunks  []domain.Chunk
	vectors []domain.SparseVector
	norms   []float64
}

// NewIndex copies chunks and vectors into a read-only index.
func NewIndex(chunks []domain.Chunk, vectors []domain.SparseVector) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, errors.New("chunks and vectors length mismatch")
	}
	ix := &Index{
		chunks:  append([]domain.Chunk(nil), chunks...),
		vectors: append([]domain.SparseVector(nil), vectors...),
		norms:   make([]float64, len(vectors)),
	}
	for i, v := range ix.vectors {
		ix.norms[i] = norm(v)
	}
	return ix, nil
}

// Len returns the number of stored chunks.
func (ix *Index) Len() int { return len(ix.chunks) }

// Chunks returns a copy of the stored chunks in order.
func (ix *Index) Chunks() []domain.Chunk {
	return append([]domain.Chunk(nil), ix.chunks...)
}

// Search ranks every chunk by cosine similarity to vector and returns the
// best min(topK, Len()) of them. Equal scores keep stored order.
func (ix *Index) Search(vector domain.SparseVector, topK int) []domain.ScoredChunk {
	if topK <= 0 || len(ix.chunks) == 0 {
		return []domain.ScoredChunk{}
	}
	qnorm := norm(vector)
	scores := make([]float64, len(ix.vectors))
	for i := range ix.vectors {
		if qnorm == 0 || ix.norms[i] == 0 {
			continue
		}
		scores[i] = dot(ix.vectors[i], vector) / (qnorm * ix.norms[i])
	}
	idxs := argsortDesc(scores)
	topK = min(topK, len(idxs))
	results := make([]domain.ScoredChunk, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.ScoredChunk{Chunk: ix.chunks[j], Score: scores[j]})
	}
	return results
}

// dot merges two ascending sparse vectors.
func dot(a, b domain.SparseVector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

func norm(v domain.SparseVector) float64 {
	sum := 0.0
	for _, w := range v.Values {
		sum += w * w
	}
	return math.Sqrt(sum)
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}

package domain

// Upload is a raw file handed to the system for indexing.
type Upload struct {
	Name string
	Data []byte
}

// Document is an upload after text extraction.
type Document struct {
	Source string
	Text   string
}

// Chunk is a bounded passage of a document used for indexing.
type Chunk struct {
	Text    string `json:"text"`
	Source  string `json:"source"`
	ChunkID int    `json:"chunk_id"`
}

// ScoredChunk is a chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// SparseVector holds the non-zero weights of a term vector.
// Indices are ascending and unique.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero entries.
func (v SparseVector) Len() int { return len(v.Indices) }

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Vectorizer fits a vector space on a corpus. Every call starts from scratch.
type Vectorizer interface {
	Name() string
	Fit(corpus []string) (VectorSpace, error)
}

// VectorSpace projects text into a fitted vocabulary.
type VectorSpace interface {
	Dimension() int
	Vocabulary() []string
	Transform(text string) SparseVector
}

// Codec stores and restores the chunk sequence of a knowledge base.
// Saving an empty sequence removes the record.
type Codec interface {
	Save(chunks []Chunk) error
	Load() ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

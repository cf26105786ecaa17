package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"askhr/internal/answer"
	"askhr/internal/domain"
	"askhr/internal/ingest"
	"askhr/internal/knowledge"
)

// Status tells callers which of the distinct answer outcomes occurred.
type Status string

const (
	StatusNoKnowledgeBase Status = "no_knowledge_base"
	StatusNoResults       Status = "no_results"
	StatusAnswered        Status = "answered"
)

// Answer is the outcome of a question against the knowledge base.
type Answer struct {
	Status  Status               `json:"status"`
	Text    string               `json:"answer"`
	Results []domain.ScoredChunk `json:"results"`
}

// BuildReport describes a freshly built knowledge base.
type BuildReport struct {
	Chunks  int      `json:"chunks"`
	Sources []string `json:"sources"`
	Summary string   `json:"summary,omitempty"`
}

// Options tune the service.
type Options struct {
	TopK                int
	MinScore            float64
	SummaryMaxSentences int
	Extensions          []string
}

// RAGService ties ingestion, the index store and answer composition together.
type RAGService struct {
	chunker    domain.Chunker
	store      *knowledge.Store
	summarizer domain.Summarizer
	opts       Options
	log        zerolog.Logger
}

func NewRAGService(chunker domain.Chunker, store *knowledge.Store, summarizer domain.Summarizer, opts Options, logger zerolog.Logger) *RAGService {
	if opts.TopK <= 0 {
		opts.TopK = knowledge.DefaultTopK
	}
	return &RAGService{chunker: chunker, store: store, summarizer: summarizer, opts: opts, log: logger}
}

// IngestPaths reads files, directories or globs and rebuilds the knowledge
// base from them.
func (s *RAGService) IngestPaths(paths []string) (BuildReport, error) {
	uploads, err := ingest.ReadPaths(paths, s.opts.Extensions)
	if err != nil {
		return BuildReport{}, err
	}
	return s.IngestUploads(uploads)
}

// IngestUploads rebuilds the knowledge base from uploaded files. When the
// result is active but could not be saved, the report is still filled in and
// the error wraps domain.ErrPersistenceWrite.
func (s *RAGService) IngestUploads(uploads []domain.Upload) (BuildReport, error) {
	chunks, err := ingest.BuildDocuments(uploads, s.chunker, s.log)
	if err != nil {
		return BuildReport{}, err
	}
	kb, buildErr := s.store.Build(chunks)
	if kb == nil {
		return BuildReport{}, buildErr
	}
	if buildErr != nil {
		s.log.Warn().Err(buildErr).Msg("knowledge base is active but was not saved")
	}
	report := BuildReport{Chunks: kb.Len(), Sources: sources(kb.Documents())}
	if s.summarizer != nil && kb.Len() > 0 {
		report.Summary = s.overview(kb.Documents())
	}
	return report, buildErr
}

// Ask retrieves passages for question and composes an answer from them.
func (s *RAGService) Ask(question string, k int) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, domain.ErrEmptyQuery
	}
	kb := s.store.Snapshot()
	if kb.Empty() {
		return Answer{Status: StatusNoKnowledgeBase, Text: answer.NoKnowledgeBaseMessage, Results: []domain.ScoredChunk{}}, nil
	}
	results := s.rank(kb, question, k)
	if len(results) == 0 {
		return Answer{Status: StatusNoResults, Text: answer.NoResultsMessage, Results: results}, nil
	}
	return Answer{Status: StatusAnswered, Text: answer.Compose(question, results), Results: results}, nil
}

// Query returns ranked passages, dropping those under the minimum score.
func (s *RAGService) Query(query string, k int) []domain.ScoredChunk {
	return s.rank(s.store.Snapshot(), query, k)
}

func (s *RAGService) rank(kb *knowledge.KnowledgeBase, query string, k int) []domain.ScoredChunk {
	if k <= 0 {
		k = s.opts.TopK
	}
	results := kb.RetrieveTopK(query, k)
	if s.opts.MinScore <= 0 {
		return results
	}
	kept := results[:0]
	for _, r := range results {
		if r.Score >= s.opts.MinScore {
			kept = append(kept, r)
		}
	}
	return kept
}

// Clear empties the knowledge base and removes its record.
func (s *RAGService) Clear() error {
	err := s.store.Clear()
	if errors.Is(err, domain.ErrPersistenceWrite) {
		s.log.Warn().Err(err).Msg("knowledge base cleared in memory only")
	}
	return err
}

// Documents returns the indexed chunks.
func (s *RAGService) Documents() []domain.Chunk { return s.store.Documents() }

// Sources returns the distinct document names in index order.
func (s *RAGService) Sources() []string { return sources(s.store.Documents()) }

func (s *RAGService) overview(chunks []domain.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
		b.WriteString("\n")
	}
	summary, err := s.summarizer.Summarize(b.String(), s.opts.SummaryMaxSentences)
	if err != nil {
		s.log.Warn().Err(err).Msg("summary failed")
		return ""
	}
	return summary
}

func sources(chunks []domain.Chunk) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, c := range chunks {
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		out = append(out, c.Source)
	}
	return out
}

// Describe renders a one-line status of the knowledge base.
func (s *RAGService) Describe() string {
	docs := s.store.Documents()
	if len(docs) == 0 {
		return "No HR policy data loaded yet."
	}
	return fmt.Sprintf("Loaded %d text chunks from %d document(s).", len(docs), len(sources(docs)))
}

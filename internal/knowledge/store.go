package knowledge

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"askhr/internal/domain"
)

// DefaultTopK is used when a caller asks for a non-positive number of results.
const DefaultTopK = 4

// Store owns the active knowledge base and keeps it in sync with the
// persisted record.
type Store struct {
	vectorizer domain.Vectorizer
	codec      domain.Codec
	log        zerolog.Logger

	mu sync.RWMutex
	kb *KnowledgeBase

	// writeMu pairs each swap with its save so the record always matches
	// the last knowledge base swapped in.
	writeMu sync.Mutex
}

// Open creates a store and restores the persisted knowledge base, if any.
// Load failures leave the store empty and are logged.
func Open(vectorizer domain.Vectorizer, codec domain.Codec, logger zerolog.Logger) *Store {
	s := &Store{vectorizer: vectorizer, codec: codec, log: logger, kb: emptyKnowledgeBase()}
	chunks, err := codec.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("could not load knowledge base, starting empty")
		return s
	}
	if len(chunks) == 0 {
		return s
	}
	kb, err := newKnowledgeBase(vectorizer, chunks)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not index stored chunks, starting empty")
		return s
	}
	s.swap(kb)
	s.log.Info().Int("chunks", kb.Len()).Int("terms", len(kb.Vocabulary())).Msg("knowledge base restored")
	return s
}

// Build replaces the knowledge base with one fitted on chunks and persists
// it. If persisting fails the new knowledge base stays active and the
// returned error wraps domain.ErrPersistenceWrite.
func (s *Store) Build(chunks []domain.Chunk) (*KnowledgeBase, error) {
	kb, err := newKnowledgeBase(s.vectorizer, chunks)
	if err != nil {
		return nil, err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.swap(kb)
	s.log.Info().Int("chunks", kb.Len()).Int("terms", len(kb.Vocabulary())).Msg("knowledge base built")
	if err := s.codec.Save(kb.Documents()); err != nil {
		return kb, fmt.Errorf("%w: %w", domain.ErrPersistenceWrite, err)
	}
	return kb, nil
}

// Clear empties the knowledge base and deletes the persisted record.
func (s *Store) Clear() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.swap(emptyKnowledgeBase())
	s.log.Info().Msg("knowledge base cleared")
	if err := s.codec.Save(nil); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistenceWrite, err)
	}
	return nil
}

// Snapshot returns the active knowledge base. It stays valid after later
// rebuilds.
func (s *Store) Snapshot() *KnowledgeBase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kb
}

// Documents returns the chunks of the active knowledge base.
func (s *Store) Documents() []domain.Chunk { return s.Snapshot().Documents() }

// RetrieveTopK ranks the active knowledge base against query.
func (s *Store) RetrieveTopK(query string, k int) []domain.ScoredChunk {
	if k <= 0 {
		k = DefaultTopK
	}
	return s.Snapshot().RetrieveTopK(query, k)
}

func (s *Store) swap(kb *KnowledgeBase) {
	s.mu.Lock()
	s.kb = kb
	s.mu.Unlock()
}

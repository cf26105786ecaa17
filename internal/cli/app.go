package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"askhr/internal/chunker"
	"askhr/internal/config"
	"askhr/internal/domain"
	"askhr/internal/embedding/tfidf"
	"askhr/internal/knowledge"
	"askhr/internal/logging"
	"askhr/internal/persistence/jsonfile"
	"askhr/internal/service"
	"askhr/internal/summarizer"
)

// app is the assembled set of components a command works with.
type app struct {
	cfg *config.AppConfig
	log zerolog.Logger
	svc *service.RAGService
}

func newApp(cfg *config.AppConfig) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "window", "":
		ch, err = chunker.NewWindowChunker(cfg.Chunker.MaxChars, cfg.Chunker.OverlapChars)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown chunker %q", domain.ErrInvalidConfiguration, cfg.Chunker.Type)
	}

	var vec domain.Vectorizer
	switch cfg.Embedder.Type {
	case "tfidf", "":
		vec = tfidf.NewVectorizer()
	default:
		return nil, fmt.Errorf("%w: unknown embedder %q", domain.ErrInvalidConfiguration, cfg.Embedder.Type)
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	case "none":
	default:
		return nil, fmt.Errorf("%w: unknown summarizer %q", domain.ErrInvalidConfiguration, cfg.Summarizer.Type)
	}

	store := knowledge.Open(vec, jsonfile.New(cfg.Store.Path, logger), logger)
	svc := service.NewRAGService(ch, store, sum, service.Options{
		TopK:                cfg.Retrieval.TopK,
		MinScore:            cfg.Retrieval.MinScore,
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
		Extensions:          cfg.Ingest.Extensions,
	}, logger)
	logger.Debug().Str("store", cfg.Store.Path).Int("chunks", len(svc.Documents())).Msg("knowledge base opened")
	return &app{cfg: cfg, log: logger, svc: svc}, nil
}

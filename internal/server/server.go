package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"askhr/internal/domain"
	"askhr/internal/service"
)

// RAGPort is the HTTP-facing subset of the RAG service.
type RAGPort interface {
	IngestUploads(uploads []domain.Upload) (service.BuildReport, error)
	Ask(question string, k int) (service.Answer, error)
	Clear() error
	Documents() []domain.Chunk
	Describe() string
}

// Server exposes the knowledge base over HTTP.
type Server struct {
	svc       RAGPort
	maxUpload int64
	log       zerolog.Logger
}

type queryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type buildResponse struct {
	service.BuildReport
	Warning string `json:"warning,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
}

func New(svc RAGPort, maxUploadMB int64, logger zerolog.Logger) *Server {
	return &Server{svc: svc, maxUpload: maxUploadMB << 20, log: logger}
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /documents", s.handleDocuments)
	mux.HandleFunc("POST /build", s.handleBuild)
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("POST /clear", s.handleClear)

	return hlog.NewHandler(s.log)(
		hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
			hlog.FromRequest(r).Info().Str("method", r.Method).Str("path", r.URL.Path).
				Int("status", status).Int("size", size).Dur("dur", dur).Msg("http")
		})(mux),
	)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("api server listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down api server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"chunks": len(s.svc.Documents()),
		"detail": s.svc.Describe(),
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.svc.Documents()})
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "failed to parse form"})
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "missing files field"})
		return
	}
	uploads := make([]domain.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "unreadable upload " + fh.Filename})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "unreadable upload " + fh.Filename})
			return
		}
		uploads = append(uploads, domain.Upload{Name: fh.Filename, Data: data})
	}

	report, err := s.svc.IngestUploads(uploads)
	switch {
	case errors.Is(err, domain.ErrPersistenceWrite):
		writeJSON(w, http.StatusOK, buildResponse{BuildReport: report, Warning: "knowledge base was built but not saved"})
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Msg("build failed")
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, buildResponse{BuildReport: report})
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return
	}
	start := time.Now()
	ans, err := s.svc.Ask(req.Query, req.K)
	if errors.Is(err, domain.ErrEmptyQuery) {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
		return
	}
	hlog.FromRequest(r).Debug().Str("q", req.Query).Int("k", req.K).Str("status", string(ans.Status)).
		Dur("dur", time.Since(start)).Msg("served")
	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Clear()
	switch {
	case errors.Is(err, domain.ErrPersistenceWrite):
		hlog.FromRequest(r).Warn().Err(err).Msg("record not removed")
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "cleared",
			"warning": "knowledge base was cleared but the saved record was not removed",
		})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

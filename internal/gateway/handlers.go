package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mkessel/daynote/internal/blob"
	"github.com/mkessel/daynote/internal/chat"
	"github.com/mkessel/daynote/internal/llm"
	"github.com/mkessel/daynote/internal/store"
	"github.com/mkessel/daynote/internal/version"
)

// maxUploadBytes caps blob uploads and transcription payloads.
const maxUploadBytes = 20 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeDomainError maps pipeline errors to HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var cfgErr *llm.ConfigError
	var provErr *llm.ProviderError
	switch {
	case errors.Is(err, chat.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, chat.ErrConversationNotFound), errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, chat.ErrNoUserMessage), errors.Is(err, chat.ErrUnknownModel):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &cfgErr):
		writeError(w, http.StatusServiceUnavailable, "not_configured", err.Error())
	case errors.Is(err, llm.ErrAllVariantsExhausted), errors.As(err, &provErr):
		writeError(w, http.StatusBadGateway, "provider_error", err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
		"uptime":  time.Since(s.startedAt).Seconds(),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "chat is not configured")
		return
	}

	var req chat.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()

	result, err := s.runner.Generate(ctx, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type transcribeRequest struct {
	Audio string `json:"audio"` // base64-encoded audio
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "transcription is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Audio == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "audio is required")
		return
	}

	text, err := s.transcriber.Transcribe(r.Context(), req.Audio)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

type scrapeRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if s.scraper == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "scraping is not configured")
		return
	}

	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "url is required")
		return
	}

	writeJSON(w, http.StatusOK, s.scraper.Scrape(r.Context(), req.URL))
}

func (s *Server) handleBlobUpload(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "blob storage is not configured")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", "upload exceeds size limit")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "empty body")
		return
	}

	ref, err := s.blobs.Put(data, contentType)
	if err != nil {
		s.log.Error().Err(err).Msg("blob upload failed")
		writeError(w, http.StatusInternalServerError, "internal", "failed to store blob")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"ref": ref})
}

func (s *Server) handleBlobGet(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "blob storage is not configured")
		return
	}

	data, contentType, err := s.blobs.Get(r.PathValue("ref"))
	if errors.Is(err, blob.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "no such blob")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("blob read failed")
		writeError(w, http.StatusInternalServerError, "internal", "failed to read blob")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "session store is not configured")
		return
	}

	sessions, err := s.sessions.Sessions(s.auth.Owner)
	if err != nil {
		s.log.Error().Err(err).Msg("session listing failed")
		writeError(w, http.StatusInternalServerError, "internal", "failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleSessionClear(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "session store is not configured")
		return
	}

	err := s.sessions.Clear(s.auth.Owner, r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "search is not configured")
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "q is required")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	hits, err := s.searcher.Search(q, limit)
	if err != nil {
		s.log.Error().Err(err).Str("query", q).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "internal", "search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

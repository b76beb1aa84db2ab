// Package gateway is the inbound HTTP and WebSocket surface.
//
// All state-touching routes sit behind bearer-token auth; the token maps
// to the single configured owner identity, which scopes every session and
// note lookup below it.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mkessel/daynote/internal/chat"
	"github.com/mkessel/daynote/internal/config"
	"github.com/mkessel/daynote/internal/domain"
	"github.com/mkessel/daynote/internal/logging"
	"github.com/mkessel/daynote/internal/scrape"
	"github.com/mkessel/daynote/internal/search"
	"github.com/mkessel/daynote/internal/version"
)

// generateTimeout bounds one full chat turn, scraping included.
const generateTimeout = 5 * time.Minute

// TurnRunner drives one chat turn end to end.
type TurnRunner interface {
	Generate(ctx context.Context, req chat.GenerateRequest) (*chat.GenerateResult, error)
}

// Transcriber converts base64 audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioBase64 string) (string, error)
}

// SessionStore lists and clears the owner's sessions.
type SessionStore interface {
	Sessions(ownerID string) ([]domain.ChatSession, error)
	Clear(ownerID, sessionID string) error
}

// BlobStore stores and serves uploaded attachments.
type BlobStore interface {
	Put(data []byte, contentType string) (string, error)
	Get(ref string) ([]byte, string, error)
}

// Searcher runs full-text queries over indexed messages.
type Searcher interface {
	Search(q string, k int) ([]search.Hit, error)
}

// Server is the daynote gateway HTTP + WebSocket server.
type Server struct {
	cfg  config.Config
	auth ResolvedAuth
	log  *logging.Logger

	runner      TurnRunner
	transcriber Transcriber
	scraper     chat.PageScraper
	sessions    SessionStore
	blobs       BlobStore
	searcher    Searcher

	startedAt  time.Time
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// ServerOption configures the gateway server.
type ServerOption func(*Server)

// WithRunner sets the chat turn runner.
func WithRunner(r TurnRunner) ServerOption {
	return func(s *Server) { s.runner = r }
}

// WithTranscriber sets the audio transcription backend.
func WithTranscriber(t Transcriber) ServerOption {
	return func(s *Server) { s.transcriber = t }
}

// WithScraper sets the URL scraper behind /api/scrape.
func WithScraper(sc chat.PageScraper) ServerOption {
	return func(s *Server) { s.scraper = sc }
}

// WithSessions sets the session store behind /api/sessions.
func WithSessions(st SessionStore) ServerOption {
	return func(s *Server) { s.sessions = st }
}

// WithBlobs sets the blob store behind /api/blobs.
func WithBlobs(b BlobStore) ServerOption {
	return func(s *Server) { s.blobs = b }
}

// WithSearcher sets the search index behind /api/search.
func WithSearcher(x Searcher) ServerOption {
	return func(s *Server) { s.searcher = x }
}

// New creates a gateway server.
func New(cfg config.Config, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:  cfg,
		auth: ResolveAuth(cfg.Gateway.Auth),
		log:  log.Sub("gateway"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// routes sets up all HTTP routes.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.withAuth(s.handleWebSocket))

	mux.HandleFunc("POST /api/chat/generate", s.withAuth(s.handleGenerate))
	mux.HandleFunc("POST /api/transcribe", s.withAuth(s.handleTranscribe))
	mux.HandleFunc("POST /api/scrape", s.withAuth(s.handleScrape))
	mux.HandleFunc("POST /api/blobs", s.withAuth(s.handleBlobUpload))
	mux.HandleFunc("GET /api/blobs/{ref}", s.handleBlobGet)
	mux.HandleFunc("GET /api/sessions", s.withAuth(s.handleSessions))
	mux.HandleFunc("DELETE /api/sessions/{id}/messages", s.withAuth(s.handleSessionClear))
	mux.HandleFunc("GET /api/search", s.withAuth(s.handleSearch))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "unknown route")
	})

	return withMiddleware(mux, s.log)
}

// Start begins listening. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	bind := s.cfg.Gateway.Bind
	if bind == "" {
		bind = "127.0.0.1"
	}
	addr := fmt.Sprintf("%s:%d", bind, s.cfg.Gateway.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: generateTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.auth.Token == "" {
		s.log.Warn().Msg("no gateway token configured, all requests will be rejected")
	}

	s.startedAt = time.Now()
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("version", version.Version).
		Msg("gateway server ready")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down gateway server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}

var _ chat.PageScraper = (*scrape.Scraper)(nil)

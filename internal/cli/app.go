package cli

import (
	"fmt"

	"github.com/mkessel/daynote/internal/blob"
	"github.com/mkessel/daynote/internal/chat"
	"github.com/mkessel/daynote/internal/config"
	"github.com/mkessel/daynote/internal/llm"
	"github.com/mkessel/daynote/internal/scrape"
	"github.com/mkessel/daynote/internal/search"
	"github.com/mkessel/daynote/internal/store"
)

// app wires the full service stack from config. Both the serve command
// and the one-shot commands build the same stack; one-shot commands just
// skip the gateway.
type app struct {
	cfg config.Config

	db          *store.DB
	chats       *store.ChatStore
	notes       *store.NoteStore
	blobs       *blob.Store
	index       *search.Index
	scraper     *scrape.Scraper
	transcriber *llm.Transcriber
	runner      *chat.Runner
}

func openApp() (*app, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating data directories: %w", err)
	}

	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = paths.DB
	}
	db, err := store.Open(dbPath, log)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	blobDir := cfg.Blobs.Dir
	if blobDir == "" {
		blobDir = paths.Blobs
	}
	blobs, err := blob.NewStore(blobDir, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	index, err := search.Open(paths.Search, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		cfg:         cfg,
		db:          db,
		chats:       store.NewChatStore(db),
		notes:       store.NewNoteStore(db),
		blobs:       blobs,
		index:       index,
		scraper:     scrape.New(cfg.Scrape, log),
		transcriber: llm.NewTranscriber(cfg.Transcribe.GeminiAPIKey, cfg.Transcribe.Models, log),
	}

	baseURL := cfg.Blobs.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Gateway.Port)
	}
	resolver := blob.NewURLResolver(blobs, baseURL)

	assembler, err := chat.NewAssembler(a.notes, resolver, a.scraper, cfg.Chat, log)
	if err != nil {
		a.close()
		return nil, err
	}
	router := chat.NewRouter(cfg.LLM, log)
	a.runner = chat.NewRunner(a.chats, assembler, router, cfg.Chat, log)
	a.runner.SetIndexer(a.index)

	return a, nil
}

func (a *app) close() {
	a.index.Close()
	a.db.Close()
}

// owner returns the identity all local commands act as.
func (a *app) owner() string {
	if a.cfg.Gateway.Auth.Owner != "" {
		return a.cfg.Gateway.Auth.Owner
	}
	return "local"
}

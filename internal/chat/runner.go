package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkessel/daynote/internal/config"
	"github.com/mkessel/daynote/internal/domain"
	"github.com/mkessel/daynote/internal/llm"
	"github.com/mkessel/daynote/internal/logging"
	"github.com/mkessel/daynote/internal/store"
)

// MessageIndexer receives persisted messages for full-text indexing.
// Indexing is best effort and never fails a turn.
type MessageIndexer interface {
	IndexMessage(sess *domain.ChatSession, msg domain.Message)
}

// SessionStore is the persistence surface the runner needs.
type SessionStore interface {
	GetOrCreateByDate(ownerID, date string) (*domain.ChatSession, error)
	Get(id string) (*domain.ChatSession, error)
	Append(sessionID string, msg domain.Message) error
	History(sessionID string, limit int) ([]domain.Message, error)
}

// GenerateRequest is one chat turn. SessionID addresses an existing
// session; when empty the turn lands in the owner's session for Date (or
// today). An empty Text regenerates a reply to the session's last user
// message.
type GenerateRequest struct {
	SessionID   string              `json:"sessionId,omitempty"`
	Date        string              `json:"date,omitempty"`
	Model       string              `json:"model,omitempty"`
	Text        string              `json:"text"`
	Attachments []domain.Attachment `json:"attachments,omitempty"`
	NoteIDs     []string            `json:"noteIds,omitempty"`
}

// GenerateResult is a completed chat turn.
type GenerateResult struct {
	SessionID string `json:"sessionId"`
	Model     string `json:"model"`
	Reply     string `json:"reply"`
}

// Runner drives one full chat turn: resolve the session, assemble
// context, route to a backend, and persist the exchange. The assistant
// message is appended only after generation succeeds; a failed turn
// leaves the session without a reply rather than with partial state.
type Runner struct {
	store     SessionStore
	assembler *Assembler
	router    *Router
	cfg       config.ChatConfig
	log       *logging.Logger
	indexer   MessageIndexer

	now func() time.Time
}

// SetIndexer attaches a message indexer. Without one, turns are persisted
// but not indexed.
func (r *Runner) SetIndexer(idx MessageIndexer) { r.indexer = idx }

// NewRunner creates a chat turn runner.
func NewRunner(st SessionStore, assembler *Assembler, router *Router, cfg config.ChatConfig, log *logging.Logger) *Runner {
	return &Runner{
		store:     st,
		assembler: assembler,
		router:    router,
		cfg:       cfg,
		log:       log.Sub("chat"),
		now:       time.Now,
	}
}

// Generate runs one chat turn for the authenticated identity.
func (r *Runner) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	identity, ok := domain.IdentityFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	owner := identity.Subject

	backend, err := r.router.Route(req.Model)
	if err != nil {
		return nil, err
	}

	sess, err := r.resolveSession(owner, req)
	if err != nil {
		return nil, err
	}

	userText, attachments, appended, err := r.resolveUserTurn(sess, req)
	if err != nil {
		return nil, err
	}

	assembled, err := r.assembler.Assemble(ctx, owner, userText, attachments, req.NoteIDs)
	if err != nil {
		return nil, fmt.Errorf("assembling context: %w", err)
	}

	if !appended {
		userMsg := domain.Message{
			Role:        domain.RoleUser,
			Content:     userText,
			Timestamp:   r.now(),
			Attachments: assembled.Attachments,
		}
		if err := r.store.Append(sess.ID, userMsg); err != nil {
			return nil, fmt.Errorf("persisting user message: %w", err)
		}
		if r.indexer != nil {
			r.indexer.IndexMessage(sess, userMsg)
		}
	}

	history, err := r.history(sess.ID)
	if err != nil {
		return nil, err
	}

	reply, err := backend.Generate(ctx, llm.Request{
		System:      BuildSystemPrompt(r.cfg),
		History:     history,
		UserText:    userText,
		NoteContext: assembled.NoteContext,
		ImageURLs:   assembled.ImageURLs,
		Pages:       assembled.Pages,
		MaxTokens:   r.cfg.MaxTokens,
	})
	if err != nil {
		r.log.Error().Str("model", backend.Name()).Err(err).Msg("generation failed")
		return nil, err
	}

	assistantMsg := domain.Message{
		Role:      domain.RoleAssistant,
		Content:   reply,
		Timestamp: r.now(),
	}
	if err := r.store.Append(sess.ID, assistantMsg); err != nil {
		return nil, fmt.Errorf("persisting reply: %w", err)
	}
	if r.indexer != nil {
		r.indexer.IndexMessage(sess, assistantMsg)
	}

	r.log.Info().Str("session", sess.ID).Str("model", backend.Name()).Msg("turn completed")
	return &GenerateResult{SessionID: sess.ID, Model: backend.Name(), Reply: reply}, nil
}

func (r *Runner) resolveSession(owner string, req GenerateRequest) (*domain.ChatSession, error) {
	if req.SessionID != "" {
		sess, err := r.store.Get(req.SessionID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("loading session: %w", err)
		}
		if sess.OwnerID != owner {
			return nil, ErrConversationNotFound
		}
		return sess, nil
	}

	date := req.Date
	if date == "" {
		date = r.now().Format(time.DateOnly)
	}
	return r.store.GetOrCreateByDate(owner, date)
}

// resolveUserTurn picks the text and attachments the reply responds to.
// New text means a fresh user turn; empty text regenerates against the
// session's last message, which must be from the user. The appended result
// reports whether that message is already persisted.
func (r *Runner) resolveUserTurn(sess *domain.ChatSession, req GenerateRequest) (string, []domain.Attachment, bool, error) {
	if req.Text != "" || len(req.Attachments) > 0 {
		return req.Text, req.Attachments, false, nil
	}

	tail, err := r.store.History(sess.ID, 1)
	if err != nil {
		return "", nil, false, fmt.Errorf("loading history: %w", err)
	}
	if len(tail) == 0 || tail[0].Role != domain.RoleUser {
		return "", nil, false, ErrNoUserMessage
	}
	return tail[0].Content, tail[0].Attachments, true, nil
}

// history returns the recent message window for the backend, excluding the
// trailing user message which rides separately as the final turn.
func (r *Runner) history(sessionID string) ([]llm.Message, error) {
	msgs, err := r.store.History(sessionID, r.cfg.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if n := len(msgs); n > 0 && msgs[n-1].Role == domain.RoleUser {
		msgs = msgs[:n-1]
	}

	out := make([]llm.Message, len(msgs))
	for i, m := range msgs {
		out[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return out, nil
}

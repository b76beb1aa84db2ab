package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkessel/daynote/internal/domain"
)

// MemoryChatStore is an in-memory chat store for tests.
type MemoryChatStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.ChatSession
}

// NewMemoryChatStore creates an empty in-memory chat store.
func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{sessions: make(map[string]*domain.ChatSession)}
}

// GetOrCreateByDate finds the owner's session for a date key or creates it.
func (s *MemoryChatStore) GetOrCreateByDate(ownerID, date string) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.OwnerID == ownerID && sess.Date == date {
			return copySession(sess), nil
		}
	}

	sess := &domain.ChatSession{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Date:          date,
		LastMessageAt: time.Now(),
	}
	s.sessions[sess.ID] = sess
	return copySession(sess), nil
}

// Get returns a session with its full message sequence.
func (s *MemoryChatStore) Get(id string) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySession(sess), nil
}

// Append adds one message, extends the search blob, and bumps
// last_message_at.
func (s *MemoryChatStore) Append(sessionID string, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	sess.Messages = append(sess.Messages, msg)
	sess.SearchBlob = domain.AppendSearchBlob(sess.SearchBlob, msg.Content)
	sess.LastMessageAt = time.Now()
	return nil
}

// History returns the session's most recent limit messages in insertion
// order. A limit of 0 returns everything.
func (s *MemoryChatStore) History(sessionID string, limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	msgs := sess.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Sessions lists the owner's sessions, most recent activity first.
func (s *MemoryChatStore) Sessions(ownerID string) ([]domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.ChatSession
	for _, sess := range s.sessions {
		if sess.OwnerID == ownerID {
			out = append(out, *copySession(sess))
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].LastMessageAt.After(out[i].LastMessageAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// Clear empties a session's messages and search blob.
func (s *MemoryChatStore) Clear(ownerID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.OwnerID != ownerID {
		return ErrNotFound
	}
	sess.Messages = nil
	sess.SearchBlob = ""
	return nil
}

func copySession(sess *domain.ChatSession) *domain.ChatSession {
	out := *sess
	out.Messages = make([]domain.Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return &out
}

// MemoryNoteStore is an in-memory note store for tests.
type MemoryNoteStore struct {
	mu    sync.Mutex
	notes map[string]domain.Note
}

// NewMemoryNoteStore creates an empty in-memory note store.
func NewMemoryNoteStore() *MemoryNoteStore {
	return &MemoryNoteStore{notes: make(map[string]domain.Note)}
}

// Put inserts or updates a note.
func (s *MemoryNoteStore) Put(note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = time.Now()
	}
	s.notes[note.ID] = *note
	return nil
}

// ByIDs returns the owner's notes matching the given IDs, skipping IDs
// that are missing or belong to someone else.
func (s *MemoryNoteStore) ByIDs(ownerID string, ids []string) ([]domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Note
	for _, id := range ids {
		if note, ok := s.notes[id]; ok && note.OwnerID == ownerID {
			out = append(out, note)
		}
	}
	return out, nil
}

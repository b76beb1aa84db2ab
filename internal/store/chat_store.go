package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkessel/daynote/internal/domain"
)

// ChatStore persists chat sessions and their append-only message sequences
// in SQLite. SQLite serializes writers, so concurrent appends to one
// session cannot interleave; a rejected write surfaces as an error rather
// than being retried here.
type ChatStore struct {
	db *DB
}

// NewChatStore creates a chat store using the given database.
func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

// GetOrCreateByDate finds the owner's session for a date key or creates it.
// At most one session exists per owner+date.
func (s *ChatStore) GetOrCreateByDate(ownerID, date string) (*domain.ChatSession, error) {
	sess, err := s.getByOwnerDate(ownerID, date)
	if err == nil {
		return sess, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	sess = &domain.ChatSession{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Date:          date,
		LastMessageAt: time.Now(),
	}
	_, err = s.db.sql.Exec(
		`INSERT INTO chat_sessions (id, owner_id, date, last_message_at, search_blob)
		 VALUES (?, ?, ?, ?, '')`,
		sess.ID, ownerID, date, sess.LastMessageAt.UTC().Format(time.DateTime),
	)
	if err != nil {
		// Lost a create race: the unique owner+date index rejected us.
		if existing, lookupErr := s.getByOwnerDate(ownerID, date); lookupErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Get returns a session with its full message sequence.
func (s *ChatStore) Get(id string) (*domain.ChatSession, error) {
	var sess domain.ChatSession
	var lastMessageAt string
	err := s.db.sql.QueryRow(
		`SELECT id, owner_id, date, last_message_at, search_blob
		 FROM chat_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.OwnerID, &sess.Date, &lastMessageAt, &sess.SearchBlob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	sess.LastMessageAt, _ = time.Parse(time.DateTime, lastMessageAt)

	sess.Messages, err = s.loadMessages(id, 0)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Append adds one message to a session's sequence, extends the search blob
// with the message text, and bumps last_message_at in one transaction so a
// failed turn leaves no partial state.
func (s *ChatStore) Append(sessionID string, msg domain.Message) error {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var attachmentsJSON sql.NullString
	if len(msg.Attachments) > 0 {
		data, err := json.Marshal(msg.Attachments)
		if err != nil {
			return fmt.Errorf("encoding attachments: %w", err)
		}
		attachmentsJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var blob string
	err = tx.QueryRow(`SELECT search_blob FROM chat_sessions WHERE id = ?`, sessionID).Scan(&blob)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading session for append: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO messages (session_id, role, content, timestamp, attachments)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, msg.Role, msg.Content, ts.UTC().Format(time.DateTime), attachmentsJSON,
	); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE chat_sessions SET search_blob = ?, last_message_at = ? WHERE id = ?`,
		domain.AppendSearchBlob(blob, msg.Content), time.Now().UTC().Format(time.DateTime), sessionID,
	); err != nil {
		return fmt.Errorf("updating session: %w", err)
	}

	return tx.Commit()
}

// History returns the session's most recent limit messages in insertion
// order. A limit of 0 returns everything.
func (s *ChatStore) History(sessionID string, limit int) ([]domain.Message, error) {
	return s.loadMessages(sessionID, limit)
}

// Sessions lists the owner's sessions, most recent activity first, without
// message bodies.
func (s *ChatStore) Sessions(ownerID string) ([]domain.ChatSession, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, owner_id, date, last_message_at, search_blob
		 FROM chat_sessions WHERE owner_id = ? ORDER BY last_message_at DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ChatSession
	for rows.Next() {
		var sess domain.ChatSession
		var lastMessageAt string
		if err := rows.Scan(&sess.ID, &sess.OwnerID, &sess.Date, &lastMessageAt, &sess.SearchBlob); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sess.LastMessageAt, _ = time.Parse(time.DateTime, lastMessageAt)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Clear empties a session's messages and search blob, keeping the session
// row. The owner must match.
func (s *ChatStore) Clear(ownerID, sessionID string) error {
	tx, err := s.db.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE chat_sessions SET search_blob = '' WHERE id = ? AND owner_id = ?`,
		sessionID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}

	return tx.Commit()
}

// loadMessages loads a session's messages in insertion order, keeping only
// the most recent limit when limit > 0.
func (s *ChatStore) loadMessages(sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT role, content, timestamp, attachments
		 FROM messages WHERE session_id = ? ORDER BY id DESC`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.sql.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var msg domain.Message
		var ts string
		var attachmentsJSON sql.NullString
		if err := rows.Scan(&msg.Role, &msg.Content, &ts, &attachmentsJSON); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Timestamp, _ = time.Parse(time.DateTime, ts)
		if attachmentsJSON.Valid && attachmentsJSON.String != "" {
			_ = json.Unmarshal([]byte(attachmentsJSON.String), &msg.Attachments)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows came back newest-first; restore insertion order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *ChatStore) getByOwnerDate(ownerID, date string) (*domain.ChatSession, error) {
	var sess domain.ChatSession
	var lastMessageAt string
	err := s.db.sql.QueryRow(
		`SELECT id, owner_id, date, last_message_at, search_blob
		 FROM chat_sessions WHERE owner_id = ? AND date = ?`, ownerID, date,
	).Scan(&sess.ID, &sess.OwnerID, &sess.Date, &lastMessageAt, &sess.SearchBlob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	sess.LastMessageAt, _ = time.Parse(time.DateTime, lastMessageAt)
	return &sess, nil
}

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkessel/daynote/internal/domain"
)

// NoteStore persists the owner's notes.
type NoteStore struct {
	db *DB
}

// NewNoteStore creates a note store using the given database.
func NewNoteStore(db *DB) *NoteStore {
	return &NoteStore{db: db}
}

// Put inserts a note, assigning an ID when one is not set, or updates the
// existing note in place.
func (s *NoteStore) Put(note *domain.Note) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = time.Now()
	}
	_, err := s.db.sql.Exec(
		`INSERT INTO notes (id, owner_id, title, content, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title,
			content = excluded.content, updated_at = excluded.updated_at`,
		note.ID, note.OwnerID, note.Title, note.Content,
		note.UpdatedAt.UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	return nil
}

// Get returns one of the owner's notes.
func (s *NoteStore) Get(ownerID, id string) (*domain.Note, error) {
	var note domain.Note
	var updatedAt string
	err := s.db.sql.QueryRow(
		`SELECT id, owner_id, title, content, updated_at
		 FROM notes WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&note.ID, &note.OwnerID, &note.Title, &note.Content, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading note: %w", err)
	}
	note.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return &note, nil
}

// ByIDs returns the owner's notes matching the given IDs. IDs that do not
// exist, or that belong to someone else, are silently skipped.
func (s *NoteStore) ByIDs(ownerID string, ids []string) ([]domain.Note, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, ownerID)

	rows, err := s.db.sql.Query(
		`SELECT id, owner_id, title, content, updated_at
		 FROM notes WHERE id IN (`+placeholders+`) AND owner_id = ?`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Note)
	for rows.Next() {
		var note domain.Note
		var updatedAt string
		if err := rows.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Content, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		note.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
		byID[note.ID] = note
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve the caller's ID order.
	var notes []domain.Note
	for _, id := range ids {
		if note, ok := byID[id]; ok {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

// List returns all of the owner's notes, most recently updated first.
func (s *NoteStore) List(ownerID string) ([]domain.Note, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, owner_id, title, content, updated_at
		 FROM notes WHERE owner_id = ? ORDER BY updated_at DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var note domain.Note
		var updatedAt string
		if err := rows.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Content, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		note.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// Delete removes one of the owner's notes.
func (s *NoteStore) Delete(ownerID, id string) error {
	res, err := s.db.sql.Exec(`DELETE FROM notes WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

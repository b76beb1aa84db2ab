// Package blob stores uploaded binary attachments on the filesystem.
//
// A blob is written once under a generated reference and never mutated.
// References are opaque to callers; the gateway serves blob bytes back out
// under /api/blobs/{ref}.
package blob

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mkessel/daynote/internal/logging"
)

// ErrNotFound is returned when a blob reference does not resolve.
var ErrNotFound = errors.New("blob not found")

// Store writes and reads blobs under a single directory.
type Store struct {
	dir string
	log *logging.Logger
}

// NewStore creates a blob store rooted at dir, creating it if needed.
func NewStore(dir string, log *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &Store{dir: dir, log: log.Sub("blob")}, nil
}

// Put stores data under a fresh reference. The content type is encoded in
// the reference as a file extension so reads need no sidecar metadata.
func (s *Store) Put(data []byte, contentType string) (string, error) {
	ext := extensionFor(contentType)
	ref := uuid.New().String() + ext

	path := filepath.Join(s.dir, ref)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}

	s.log.Debug().Str("ref", ref).Int("bytes", len(data)).Msg("blob stored")
	return ref, nil
}

// Get returns a blob's bytes and content type.
func (s *Store) Get(ref string) ([]byte, string, error) {
	path, err := s.safePath(ref)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading blob: %w", err)
	}
	return data, contentTypeFor(ref), nil
}

// Exists reports whether a reference resolves to a stored blob.
func (s *Store) Exists(ref string) bool {
	path, err := s.safePath(ref)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// safePath resolves a reference to a path inside the store directory,
// rejecting references that would escape it.
func (s *Store) safePath(ref string) (string, error) {
	if ref == "" || strings.Contains(ref, "/") || strings.Contains(ref, "\\") || strings.Contains(ref, "..") {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, ref), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "audio/webm":
		return ".webm"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

func contentTypeFor(ref string) string {
	if ct := mime.TypeByExtension(filepath.Ext(ref)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
